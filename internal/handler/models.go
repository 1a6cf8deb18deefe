package handler

import (
	"time"

	"github.com/Greninja7505/GreenForge/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 请求模型

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Title        string             `json:"title" binding:"required"`
	Description  string             `json:"description"`
	IpfsMetadata string             `json:"ipfsMetadata"`
	Category     string             `json:"category"`
	Creator      string             `json:"creator" binding:"required"`
	TotalGoal    int64              `json:"totalGoal" binding:"required"`
	EndTime      time.Time          `json:"endTime" binding:"required"`
	Milestones   []MilestoneRequest `json:"milestones" binding:"required"`
}

// MilestoneRequest 里程碑定义
type MilestoneRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Amount      int64  `json:"amount" binding:"required"`
}

// FundRequest 出资请求。idempotencyKey 可选，
// 客户端在超时重试间复用同一个键可避免链上重复扣款。
type FundRequest struct {
	Backer         string `json:"backer" binding:"required"`
	Amount         int64  `json:"amount" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// ProofRequest 提交证明请求
type ProofRequest struct {
	Creator   string `json:"creator" binding:"required"`
	IpfsProof string `json:"ipfsProof" binding:"required"`
}

// VerdictRequest AI验证结论回调请求
type VerdictRequest struct {
	OracleId   string `json:"oracleId" binding:"required"`
	Status     string `json:"status" binding:"required"`
	Confidence int    `json:"confidence"`
	Notes      string `json:"notes"`
}

// VoteRequest 投票请求
type VoteRequest struct {
	Voter   string `json:"voter" binding:"required"`
	Approve *bool  `json:"approve" binding:"required"`
}

// CallerRequest 携带调用者身份的请求
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// MintSbtRequest 铸造SBT请求
type MintSbtRequest struct {
	Caller      string `json:"caller" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	Role        string `json:"role" binding:"required"`
	CampaignId  int64  `json:"campaignId"`
	MetadataURI string `json:"metadataUri"`
}

// 响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	IpfsMetadata     string     `json:"ipfsMetadata"`
	Category         string     `json:"category"`
	Creator          string     `json:"creator"`
	TotalGoal        int64      `json:"totalGoal"`
	FundsRaised      int64      `json:"fundsRaised"`
	FundsLocked      int64      `json:"fundsLocked"`
	FundsReleased    int64      `json:"fundsReleased"`
	BackerCount      int64      `json:"backerCount"`
	Status           string     `json:"status"`
	CurrentMilestone int        `json:"currentMilestone"`
	EndTime          time.Time  `json:"endTime"`
	FundedAt         *time.Time `json:"fundedAt,omitempty"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
	TxHash           string     `json:"txHash"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	ID                int64      `json:"id"`
	CampaignID        int64      `json:"campaignId"`
	Ordinal           int        `json:"ordinal"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Amount            int64      `json:"amount"`
	Status            string     `json:"status"`
	IpfsProof         string     `json:"ipfsProof"`
	SubmissionCount   int        `json:"submissionCount"`
	ProofSubmittedAt  *time.Time `json:"proofSubmittedAt,omitempty"`
	Verdict           string     `json:"verdict"`
	VerdictConfidence int        `json:"verdictConfidence"`
	VerdictNotes      string     `json:"verdictNotes"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	VotesFor          int64      `json:"votesFor"`
	VotesAgainst      int64      `json:"votesAgainst"`
	VoterCount        int64      `json:"voterCount"`
	VotingOpenAt      *time.Time `json:"votingOpenAt,omitempty"`
	ReleasedAt        *time.Time `json:"releasedAt,omitempty"`
}

// BackerResponse 支持者响应模型
type BackerResponse struct {
	CampaignID         int64     `json:"campaignId"`
	Address            string    `json:"address"`
	Amount             int64     `json:"amount"`
	VotingPower        int64     `json:"votingPower"`
	FirstContributedAt time.Time `json:"firstContributedAt"`
	LastContributedAt  time.Time `json:"lastContributedAt"`
}

// VoteResponse 投票响应模型
type VoteResponse struct {
	MilestoneID int64     `json:"milestoneId"`
	Voter       string    `json:"voter"`
	Approve     bool      `json:"approve"`
	Weight      int64     `json:"weight"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SbtTokenResponse SBT代币响应模型
type SbtTokenResponse struct {
	ID         int64     `json:"id"`
	Recipient  string    `json:"recipient"`
	Role       string    `json:"role"`
	Reputation int64     `json:"reputation"`
	CampaignID int64     `json:"campaignId,omitempty"`
	TxHash     string    `json:"txHash"`
	CreatedAt  time.Time `json:"createdAt"`
}

// 转换函数

// ToCampaignResponse 将数据库模型转换为响应模型
func ToCampaignResponse(campaign *model.CampaignModel) CampaignResponse {
	return CampaignResponse{
		ID:               campaign.Id,
		Title:            campaign.Title,
		Description:      campaign.Description,
		IpfsMetadata:     campaign.IpfsMetadata,
		Category:         campaign.Category,
		Creator:          campaign.CreatorAddress,
		TotalGoal:        campaign.TotalGoal,
		FundsRaised:      campaign.FundsRaised,
		FundsLocked:      campaign.FundsLocked,
		FundsReleased:    campaign.FundsReleased,
		BackerCount:      campaign.BackerCount,
		Status:           string(campaign.Status),
		CurrentMilestone: campaign.CurrentMilestone,
		EndTime:          campaign.EndTime,
		FundedAt:         campaign.FundedAt,
		ClosedAt:         campaign.ClosedAt,
		TxHash:           campaign.TransactionHash,
		CreatedAt:        campaign.CreatedAt,
		UpdatedAt:        campaign.UpdatedAt,
	}
}

// ToCampaignResponseList 将数据库模型列表转换为响应模型列表
func ToCampaignResponseList(campaigns []model.CampaignModel) []CampaignResponse {
	result := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		result[i] = ToCampaignResponse(&campaign)
	}
	return result
}

// ToMilestoneResponse 将里程碑数据库模型转换为响应模型
func ToMilestoneResponse(milestone *model.MilestoneModel) MilestoneResponse {
	return MilestoneResponse{
		ID:                milestone.Id,
		CampaignID:        milestone.CampaignId,
		Ordinal:           milestone.Ordinal,
		Title:             milestone.Title,
		Description:       milestone.Description,
		Amount:            milestone.Amount,
		Status:            string(milestone.Status),
		IpfsProof:         milestone.IpfsProof,
		SubmissionCount:   milestone.SubmissionCount,
		ProofSubmittedAt:  milestone.ProofSubmittedAt,
		Verdict:           string(milestone.Verdict),
		VerdictConfidence: milestone.VerdictConfidence,
		VerdictNotes:      milestone.VerdictNotes,
		VerifiedAt:        milestone.VerifiedAt,
		VotesFor:          milestone.VotesFor,
		VotesAgainst:      milestone.VotesAgainst,
		VoterCount:        milestone.VoterCount,
		VotingOpenAt:      milestone.VotingOpenAt,
		ReleasedAt:        milestone.ReleasedAt,
	}
}

// ToMilestoneResponseList 将里程碑数据库模型列表转换为响应模型列表
func ToMilestoneResponseList(milestones []model.MilestoneModel) []MilestoneResponse {
	result := make([]MilestoneResponse, len(milestones))
	for i, milestone := range milestones {
		result[i] = ToMilestoneResponse(&milestone)
	}
	return result
}

// ToBackerResponse 将支持者数据库模型转换为响应模型
func ToBackerResponse(backer *model.BackerModel, votingPower int64) BackerResponse {
	return BackerResponse{
		CampaignID:         backer.CampaignId,
		Address:            backer.Address,
		Amount:             backer.Amount,
		VotingPower:        votingPower,
		FirstContributedAt: backer.FirstContributedAt,
		LastContributedAt:  backer.LastContributedAt,
	}
}

// ToVoteResponseList 将投票数据库模型列表转换为响应模型列表
func ToVoteResponseList(votes []model.VoteModel) []VoteResponse {
	result := make([]VoteResponse, len(votes))
	for i, vote := range votes {
		result[i] = VoteResponse{
			MilestoneID: vote.MilestoneId,
			Voter:       vote.VoterAddress,
			Approve:     vote.Approve,
			Weight:      vote.Weight,
			CreatedAt:   vote.CreatedAt,
		}
	}
	return result
}

// ToSbtTokenResponseList 将SBT数据库模型列表转换为响应模型列表
func ToSbtTokenResponseList(tokens []model.SbtTokenModel) []SbtTokenResponse {
	result := make([]SbtTokenResponse, len(tokens))
	for i, token := range tokens {
		result[i] = SbtTokenResponse{
			ID:         token.Id,
			Recipient:  token.RecipientAddress,
			Role:       string(token.Role),
			Reputation: token.Role.ReputationValue(),
			CampaignID: token.CampaignId,
			TxHash:     token.TxHash,
			CreatedAt:  token.CreatedAt,
		}
	}
	return result
}
