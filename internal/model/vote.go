package model

import (
	"time"
)

// VoteModel 里程碑投票记录，(milestone_id, voter_address) 唯一约束保证一人一票
type VoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	MilestoneId  int64  `json:"milestone_id" gorm:"not null;index:idx_vote_milestone_voter,unique"`
	VoterAddress string `json:"voter_address" gorm:"not null;index:idx_vote_milestone_voter,unique"`
	Approve      bool   `json:"approve"`
	Weight       int64  `json:"weight" gorm:"not null"` // 投票时计算的二次方投票权重
}

// TableName 自定义表名
func (VoteModel) TableName() string {
	return "vote"
}
