package model

import (
	"time"
)

// SbtTokenModel 灵魂绑定声誉代币记录，不可转让，按接收者只增不减
type SbtTokenModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RecipientAddress string  `json:"recipient_address" gorm:"not null;index"`
	Role             SbtRole `json:"role" gorm:"not null"`
	CampaignId       int64   `json:"campaign_id"` // 可选关联活动
	MetadataURI      string  `json:"metadata_uri"`
	TxHash           string  `json:"tx_hash"`
}

// SbtRole 声誉角色
type SbtRole string

const (
	SbtRoleCreator     SbtRole = "creator"
	SbtRoleBacker      SbtRole = "backer"
	SbtRoleSuperBacker SbtRole = "super_backer"
	SbtRoleDeveloper   SbtRole = "developer"
	SbtRoleDesigner    SbtRole = "designer"
	SbtRoleTester      SbtRole = "tester"
	SbtRoleMentor      SbtRole = "mentor"
	SbtRoleValidator   SbtRole = "validator"
	SbtRoleAmbassador  SbtRole = "ambassador"
	SbtRolePioneer     SbtRole = "pioneer"
)

// ReputationValue 各角色对应的声誉分值
func (r SbtRole) ReputationValue() int64 {
	switch r {
	case SbtRoleCreator:
		return 100
	case SbtRoleSuperBacker:
		return 50
	case SbtRoleMentor:
		return 40
	case SbtRoleDeveloper:
		return 30
	case SbtRoleDesigner:
		return 25
	case SbtRoleTester:
		return 20
	case SbtRoleValidator:
		return 15
	case SbtRoleBacker:
		return 10
	case SbtRoleAmbassador:
		return 10
	case SbtRolePioneer:
		return 10
	default:
		return 0
	}
}

// ValidSbtRole 角色是否合法
func ValidSbtRole(r SbtRole) bool {
	return r.ReputationValue() > 0
}

// TableName 自定义表名
func (SbtTokenModel) TableName() string {
	return "sbt_token"
}
