package handler

import (
	"net/http"

	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/gin-gonic/gin"
)

type SbtHandler struct {
	sbtLogic *logic.SbtLogic
}

func NewSbtHandler(sbtLogic *logic.SbtLogic) *SbtHandler {
	return &SbtHandler{sbtLogic: sbtLogic}
}

// MintSbt 铸造声誉代币
func (h *SbtHandler) MintSbt(c *gin.Context) {
	var req MintSbtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.sbtLogic.MintSbt(c.Request.Context(), req.Caller, req.Recipient,
		model.SbtRole(req.Role), req.CampaignId, req.MetadataURI)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "token minted", gin.H{
		"token": ToSbtTokenResponseList([]model.SbtTokenModel{*token})[0],
	})
}

// GetProfile 获取声誉档案
func (h *SbtHandler) GetProfile(c *gin.Context) {
	profile, err := h.sbtLogic.GetProfile(c.Param("address"))
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"address":    profile.Address,
		"reputation": profile.Reputation,
		"roles":      profile.Roles,
		"tokens":     ToSbtTokenResponseList(profile.Tokens),
	})
}

// GetReputation 获取声誉总分
func (h *SbtHandler) GetReputation(c *gin.Context) {
	address := c.Param("address")
	reputation, err := h.sbtLogic.Reputation(address)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"address":    address,
		"reputation": reputation,
	})
}
