package model

import (
	"time"
)

// BackerModel 支持者记录，按 (campaign_id, address) 唯一，金额为累计值
type BackerModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index:idx_backer_campaign_address,unique"`
	Address    string `json:"address" gorm:"not null;index:idx_backer_campaign_address,unique"`
	Amount     int64  `json:"amount" gorm:"not null"` // 累计贡献金额（stroops）

	FirstContributedAt time.Time `json:"first_contributed_at"`
	LastContributedAt  time.Time `json:"last_contributed_at"`
}

// TableName 自定义表名
func (BackerModel) TableName() string {
	return "backer"
}
