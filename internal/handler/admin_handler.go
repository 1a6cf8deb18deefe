package handler

import (
	"net/http"
	"strconv"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	refundLogic *logic.RefundLogic
	config      *config.Config
}

func NewAdminHandler(refundLogic *logic.RefundLogic, cfg *config.Config) *AdminHandler {
	return &AdminHandler{refundLogic: refundLogic, config: cfg}
}

// RefundCampaign 为失败活动发起退款
func (h *AdminHandler) RefundCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	confirmed, err := h.refundLogic.RefundBackers(c.Request.Context(), id, req.Caller)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "refunds processed", gin.H{
		"confirmed": confirmed,
	})
}

// GetConfig 查看治理参数，便于前端与运维核对
func (h *AdminHandler) GetConfig(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"platformFeeBps":   h.config.Governance.PlatformFeeBps,
		"minVoters":        h.config.Governance.MinVoters,
		"votingWindow":     h.config.Governance.VotingWindow.String(),
		"maxResubmissions": h.config.Governance.MaxResubmissions,
		"network":          h.config.Stellar.Network,
		"coreContract":     h.config.Stellar.CoreContractId,
		"sbtContract":      h.config.Stellar.SbtContractId,
	})
}
