package model

import (
	"time"
)

// MilestoneModel 里程碑模型
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64  `json:"campaign_id" gorm:"not null;index:idx_milestone_campaign_ordinal,unique"`
	Ordinal     int    `json:"ordinal" gorm:"not null;index:idx_milestone_campaign_ordinal,unique"` // 活动内序号，从0开始
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Amount      int64  `json:"amount" gorm:"not null"` // 本期释放金额（stroops）

	Status MilestoneStatus `json:"status" gorm:"default:'pending';index"`

	// 证明信息
	IpfsProof        string     `json:"ipfs_proof"` // 完成证明的IPFS哈希
	SubmissionCount  int        `json:"submission_count" gorm:"default:0"`
	ProofSubmittedAt *time.Time `json:"proof_submitted_at"`

	// AI验证结论
	Verdict           VerificationStatus `json:"verdict" gorm:"default:'not_submitted'"`
	VerdictConfidence int                `json:"verdict_confidence" gorm:"default:0"` // 0-100
	VerdictOracle     string             `json:"verdict_oracle"`
	VerdictNotes      string             `json:"verdict_notes" gorm:"type:text"`
	VerifiedAt        *time.Time         `json:"verified_at"`

	// 投票统计（累计二次方投票权重）
	VotesFor     int64      `json:"votes_for" gorm:"default:0"`
	VotesAgainst int64      `json:"votes_against" gorm:"default:0"`
	VoterCount   int64      `json:"voter_count" gorm:"default:0"`
	VotingOpenAt *time.Time `json:"voting_open_at"`

	// 释放信息
	ReleasedAt *time.Time `json:"released_at"`
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending        MilestoneStatus = "pending"         // 未开始
	MilestoneStatusInProgress     MilestoneStatus = "in_progress"     // 进行中
	MilestoneStatusProofSubmitted MilestoneStatus = "proof_submitted" // 证明已提交，等待验证
	MilestoneStatusAIVerified     MilestoneStatus = "ai_verified"     // AI验证通过
	MilestoneStatusVotingOpen     MilestoneStatus = "voting_open"     // 社区投票中
	MilestoneStatusApproved       MilestoneStatus = "approved"        // 投票通过，待释放
	MilestoneStatusReleased       MilestoneStatus = "released"        // 资金已释放（终态）
	MilestoneStatusDisputed       MilestoneStatus = "disputed"        // 验证可疑，争议中
	MilestoneStatusRejected       MilestoneStatus = "rejected"        // 被拒绝，可重新提交
)

// VerificationStatus AI验证结论
type VerificationStatus string

const (
	VerificationNotSubmitted VerificationStatus = "not_submitted"
	VerificationPending      VerificationStatus = "pending"
	VerificationCompleted    VerificationStatus = "completed"
	VerificationPartial      VerificationStatus = "partial"
	VerificationSuspicious   VerificationStatus = "suspicious"
	VerificationRejected     VerificationStatus = "rejected"
)

// ValidVerdict 结论是否为五个可提交值之一
func ValidVerdict(v VerificationStatus) bool {
	switch v {
	case VerificationPending, VerificationCompleted, VerificationPartial,
		VerificationSuspicious, VerificationRejected:
		return true
	}
	return false
}

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
