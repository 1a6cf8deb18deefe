package model

import (
	"time"
)

// EventModel 出站通知/审计事件记录
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType   EventType `json:"event_type" gorm:"not null;index"`
	CampaignId  int64     `json:"campaign_id" gorm:"index"`
	MilestoneId int64     `json:"milestone_id"`
	Recipient   string    `json:"recipient"` // 通知接收者身份
	Data        string    `json:"data" gorm:"type:text"`
	Processed   bool      `json:"processed" gorm:"default:false;index"`
}

// EventType 事件类型
type EventType string

const (
	EventDonationReceived  EventType = "donation_received"
	EventProofSubmitted    EventType = "proof_submitted"
	EventProofRejected     EventType = "proof_rejected"
	EventVotingOpened      EventType = "voting_opened"
	EventMilestoneReleased EventType = "milestone_released"
	EventCampaignFailed    EventType = "campaign_failed"
	EventRefundIssued      EventType = "refund_issued"
)

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
