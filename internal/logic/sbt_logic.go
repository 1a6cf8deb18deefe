package logic

import (
	"context"
	"strconv"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
)

// 链上SBT角色编码，与合约枚举一致
var sbtRoleCodes = map[model.SbtRole]int{
	model.SbtRoleCreator:     0,
	model.SbtRoleBacker:      1,
	model.SbtRoleSuperBacker: 2,
	model.SbtRoleDeveloper:   3,
	model.SbtRoleDesigner:    4,
	model.SbtRoleTester:      5,
	model.SbtRoleMentor:      6,
	model.SbtRoleValidator:   7,
	model.SbtRoleAmbassador:  8,
	model.SbtRolePioneer:     9,
}

// SbtLogic 声誉代币逻辑
type SbtLogic struct {
	store   *store.Store
	gateway gateway.Gateway
	config  *config.Config
}

// NewSbtLogic 创建SBT逻辑
func NewSbtLogic(st *store.Store, gw gateway.Gateway, cfg *config.Config) *SbtLogic {
	return &SbtLogic{store: st, gateway: gw, config: cfg}
}

// Profile 声誉档案
type Profile struct {
	Address    string                `json:"address"`
	Reputation int64                 `json:"reputation"`
	Roles      []model.SbtRole       `json:"roles"`
	Tokens     []model.SbtTokenModel `json:"tokens"`
}

// MintSbt 铸造声誉代币，仅管理员可调用
func (l *SbtLogic) MintSbt(ctx context.Context, caller, recipient string, role model.SbtRole, campaignId int64, metadataURI string) (*model.SbtTokenModel, error) {
	if caller != l.config.Governance.AdminAddress {
		return nil, fault.New(fault.KindUnauthorized, "only admin can mint reputation tokens")
	}
	if recipient == "" {
		return nil, fault.New(fault.KindValidation, "recipient address is required")
	}
	if !model.ValidSbtRole(role) {
		return nil, fault.New(fault.KindValidation, "unknown reputation role %q", role)
	}

	// 键由接收者、角色与活动派生：管理员重试或重复提交同一次授予时链上去重
	idemKey := "sbt-" + recipient + "-" + string(role) + "-" + strconv.FormatInt(campaignId, 10)
	args := []string{
		"--recipient", recipient,
		"--role", strconv.Itoa(sbtRoleCodes[role]),
	}
	if campaignId > 0 {
		args = append(args, "--campaign_id", strconv.FormatInt(campaignId, 10))
	}
	if metadataURI != "" {
		args = append(args, "--metadata_uri", metadataURI)
	}
	result, err := l.gateway.Invoke(ctx, gateway.TargetSbt, "mint", args, idemKey)
	if err != nil {
		return nil, err
	}

	token := &model.SbtTokenModel{
		RecipientAddress: recipient,
		Role:             role,
		CampaignId:       campaignId,
		MetadataURI:      metadataURI,
		TxHash:           result.TxHash,
	}
	if err := l.store.AppendSbt(token); err != nil {
		return nil, err
	}
	return token, nil
}

// GetProfile 获取地址的声誉档案：全部代币、持有角色与声誉总分
func (l *SbtLogic) GetProfile(address string) (*Profile, error) {
	if address == "" {
		return nil, fault.New(fault.KindValidation, "address is required")
	}
	tokens, err := l.store.ListSbtByRecipient(address)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Address: address, Tokens: tokens, Roles: []model.SbtRole{}}
	seen := map[model.SbtRole]bool{}
	for _, t := range tokens {
		profile.Reputation += t.Role.ReputationValue()
		if !seen[t.Role] {
			seen[t.Role] = true
			profile.Roles = append(profile.Roles, t.Role)
		}
	}
	return profile, nil
}

// Reputation 获取地址声誉总分
func (l *SbtLogic) Reputation(address string) (int64, error) {
	profile, err := l.GetProfile(address)
	if err != nil {
		return 0, err
	}
	return profile.Reputation, nil
}
