package model

import (
	"time"
)

// ReleaseRecordModel 资金释放记录，幂等键在重试间复用以防止重复转账
type ReleaseRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId     int64  `json:"campaign_id" gorm:"not null;index"`
	MilestoneId    int64  `json:"milestone_id" gorm:"not null;index"`
	IdempotencyKey string `json:"idempotency_key" gorm:"not null;uniqueIndex"`
	Payout         int64  `json:"payout" gorm:"not null"` // 创建者实收金额
	Fee            int64  `json:"fee" gorm:"not null"`    // 平台手续费
	Status         string `json:"status" gorm:"default:'pending'"` // pending, confirmed, failed
	TxHash         string `json:"tx_hash"`
	FailureReason  string `json:"failure_reason" gorm:"type:text"`
}

// ReleaseStatus 释放记录状态
const (
	ReleaseStatusPending   = "pending"
	ReleaseStatusConfirmed = "confirmed"
	ReleaseStatusFailed    = "failed"
)

// TableName 自定义表名
func (ReleaseRecordModel) TableName() string {
	return "release_record"
}
