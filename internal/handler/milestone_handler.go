package handler

import (
	"net/http"
	"strconv"

	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/voting"
	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
	releaseLogic   *logic.ReleaseLogic
	engine         *voting.Engine
	store          *store.Store
}

func NewMilestoneHandler(milestoneLogic *logic.MilestoneLogic, releaseLogic *logic.ReleaseLogic, engine *voting.Engine, st *store.Store) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneLogic: milestoneLogic,
		releaseLogic:   releaseLogic,
		engine:         engine,
		store:          st,
	}
}

// pathIds 解析活动与里程碑ID
func pathIds(c *gin.Context) (int64, int64, bool) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return 0, 0, false
	}
	milestoneId, err := strconv.ParseInt(c.Param("mid"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid milestone id")
		return 0, 0, false
	}
	return campaignId, milestoneId, true
}

// GetMilestone 获取里程碑详情
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	campaignId, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	milestone, err := h.milestoneLogic.GetMilestone(campaignId, milestoneId)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"milestone": ToMilestoneResponse(milestone),
	})
}

// SubmitProof 提交完成证明
func (h *MilestoneHandler) SubmitProof(c *gin.Context) {
	campaignId, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	var req ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	milestone, err := h.milestoneLogic.SubmitProof(c.Request.Context(),
		campaignId, milestoneId, req.Creator, req.IpfsProof)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "proof submitted, verification pending", gin.H{
		"milestone": ToMilestoneResponse(milestone),
	})
}

// SubmitVerdict AI验证结论回调
func (h *MilestoneHandler) SubmitVerdict(c *gin.Context) {
	campaignId, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	var req VerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	milestone, err := h.milestoneLogic.RecordVerdict(c.Request.Context(),
		campaignId, milestoneId, req.OracleId,
		model.VerificationStatus(req.Status), req.Confidence, req.Notes)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "verdict recorded", gin.H{
		"milestone": ToMilestoneResponse(milestone),
	})
}

// CastVote 投票
func (h *MilestoneHandler) CastVote(c *gin.Context) {
	_, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.CastVote(milestoneId, req.Voter, *req.Approve)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "vote recorded", gin.H{
		"vote": result,
	})
}

// GetVotes 获取投票列表与计票
func (h *MilestoneHandler) GetVotes(c *gin.Context) {
	_, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	tally, err := h.engine.Tally(milestoneId)
	if err != nil {
		FaultResponse(c, err)
		return
	}
	votes, err := h.store.ListVotes(milestoneId)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"tally": tally,
		"votes": ToVoteResponseList(votes),
	})
}

// ReleaseFunds 释放里程碑资金
func (h *MilestoneHandler) ReleaseFunds(c *gin.Context) {
	campaignId, milestoneId, ok := pathIds(c)
	if !ok {
		return
	}

	result, err := h.releaseLogic.ReleaseFunds(c.Request.Context(), campaignId, milestoneId)
	if err != nil {
		FaultResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "funds released", gin.H{
		"milestone": ToMilestoneResponse(result.Milestone),
		"payout":    result.Payout,
		"fee":       result.Fee,
		"txHash":    result.TxHash,
	})
}
