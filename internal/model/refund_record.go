package model

import (
	"time"
)

// RefundRecordModel 退款记录
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId     int64  `json:"campaign_id" gorm:"not null;index"`
	Address        string `json:"address" gorm:"not null"`
	Amount         int64  `json:"amount" gorm:"not null"`
	IdempotencyKey string `json:"idempotency_key" gorm:"not null;uniqueIndex"`
	Status         string `json:"status" gorm:"default:'pending';index"` // pending, confirmed, failed
	TxHash         string `json:"tx_hash"`
	FailureReason  string `json:"failure_reason" gorm:"type:text"`
}

// RefundStatus 退款状态
const (
	RefundStatusPending   = "pending"
	RefundStatusConfirmed = "confirmed"
	RefundStatusFailed    = "failed"
)

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
