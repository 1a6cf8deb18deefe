package handler

import (
	"net/http"
	"strconv"

	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignLogic   *logic.CampaignLogic
	contributeLogic *logic.ContributeLogic
}

func NewCampaignHandler(campaignLogic *logic.CampaignLogic, contributeLogic *logic.ContributeLogic) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic:   campaignLogic,
		contributeLogic: contributeLogic,
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign := &model.CampaignModel{
		Title:          req.Title,
		Description:    req.Description,
		IpfsMetadata:   req.IpfsMetadata,
		Category:       req.Category,
		CreatorAddress: req.Creator,
		TotalGoal:      req.TotalGoal,
		EndTime:        req.EndTime,
	}
	milestones := make([]model.MilestoneModel, len(req.Milestones))
	for i, m := range req.Milestones {
		milestones[i] = model.MilestoneModel{
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
		}
	}

	detail, err := h.campaignLogic.CreateCampaign(c.Request.Context(), campaign, milestones)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "campaign created", gin.H{
		"campaign":   ToCampaignResponse(detail.Campaign),
		"milestones": ToMilestoneResponseList(detail.Milestones),
	})
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	status := c.Query("status")
	creator := c.Query("creator")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	campaigns, total, err := h.campaignLogic.ListCampaigns(status, creator, page, pageSize)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"campaigns": ToCampaignResponseList(campaigns),
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPage,
		},
	})
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	detail, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"campaign":   ToCampaignResponse(detail.Campaign),
		"milestones": ToMilestoneResponseList(detail.Milestones),
	})
}

// FundCampaign 出资
func (h *CampaignHandler) FundCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.contributeLogic.Contribute(c.Request.Context(), id, req.Backer, req.Amount, req.IdempotencyKey)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "contribution recorded", gin.H{
		"backer": ToBackerResponse(result.Backer, result.VotingPower),
		"txHash": result.TxHash,
	})
}

// GetBacker 获取支持者信息
func (h *CampaignHandler) GetBacker(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	result, err := h.contributeLogic.GetBacker(id, c.Param("address"))
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"backer": ToBackerResponse(result.Backer, result.VotingPower),
	})
}

// CloseCampaign 关闭活动
func (h *CampaignHandler) CloseCampaign(c *gin.Context) {
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

	campaign, err := h.campaignLogic.CloseCampaign(c.Request.Context(), id, req.Caller)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign closed", gin.H{
		"campaign": ToCampaignResponse(campaign),
	})
}

// CancelCampaign 取消活动
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
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

	campaign, err := h.campaignLogic.CancelCampaign(id, req.Caller)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign cancelled", gin.H{
		"campaign": ToCampaignResponse(campaign),
	})
}
