package model

import (
	"time"
)

// CampaignModel 众筹活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title        string `json:"title" gorm:"not null" binding:"required"`
	Description  string `json:"description" gorm:"type:text"`
	IpfsMetadata string `json:"ipfs_metadata"` // 项目元数据的IPFS哈希
	Category     string `json:"category"`

	// 众筹信息（金额单位：stroops）
	TotalGoal     int64 `json:"total_goal" gorm:"not null" binding:"required,min=1"`
	FundsRaised   int64 `json:"funds_raised" gorm:"default:0"`
	FundsLocked   int64 `json:"funds_locked" gorm:"default:0"`   // 托管中的金额
	FundsReleased int64 `json:"funds_released" gorm:"default:0"` // 已释放给创建者的金额
	BackerCount   int64 `json:"backer_count" gorm:"default:0"`

	// 状态
	Status           CampaignStatus `json:"status" gorm:"default:'draft';index"`
	CurrentMilestone int            `json:"current_milestone" gorm:"default:0"` // 当前进行中的里程碑序号

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`
	CreatorName    string `json:"creator_name"`

	// 时间信息
	EndTime  time.Time  `json:"end_time"`
	FundedAt *time.Time `json:"funded_at"`
	ClosedAt *time.Time `json:"closed_at"`

	// 区块链信息
	ChainCampaignId int64  `json:"chain_campaign_id"` // 链上活动ID
	TransactionHash string `json:"transaction_hash"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"     // 待上链
	CampaignStatusActive    CampaignStatus = "active"    // 募资中
	CampaignStatusFunded    CampaignStatus = "funded"    // 达到目标，里程碑推进中
	CampaignStatusCompleted CampaignStatus = "completed" // 全部里程碑已释放
	CampaignStatusFailed    CampaignStatus = "failed"    // 未达目标
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
)

// Terminal 是否为终止状态
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusFailed, CampaignStatusCancelled:
		return true
	}
	return false
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
