package logic

import (
	"context"
	"strconv"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/voting"
	"github.com/google/uuid"
)

// ContributeLogic 出资逻辑
type ContributeLogic struct {
	store    *store.Store
	gateway  gateway.Gateway
	notifier notify.Notifier
	config   *config.Config
}

// NewContributeLogic 创建出资逻辑
func NewContributeLogic(st *store.Store, gw gateway.Gateway, n notify.Notifier, cfg *config.Config) *ContributeLogic {
	return &ContributeLogic{store: st, gateway: gw, notifier: n, config: cfg}
}

// ContributeResult 出资结果
type ContributeResult struct {
	Backer      *model.BackerModel `json:"backer"`
	VotingPower int64              `json:"voting_power"`
	TxHash      string             `json:"tx_hash"`
}

// Contribute 出资。资金锁入链上托管，账本同步累计；
// 支持者获得 floor(sqrt(累计金额)) 的投票权重。
// idemKey 由客户端提供并在超时重试间复用，链上据此去重；
// 缺省时服务端生成一次性键，该次调用不具备重试安全性。
func (l *ContributeLogic) Contribute(ctx context.Context, campaignId int64, backer string, amount int64, idemKey string) (*ContributeResult, error) {
	if amount <= 0 {
		return nil, fault.New(fault.KindValidation, "contribution amount must be positive, got %d", amount)
	}

	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignStatusActive && campaign.Status != model.CampaignStatusFunded {
		return nil, fault.New(fault.KindWrongState,
			"campaign %d is %s, contributions are closed", campaignId, campaign.Status)
	}

	if idemKey == "" {
		idemKey = "fund-" + uuid.NewString()
	}
	result, err := l.gateway.Invoke(ctx, gateway.TargetCore, "fund_campaign", []string{
		"--campaign_id", strconv.FormatInt(campaignId, 10),
		"--backer", backer,
		"--amount", strconv.FormatInt(amount, 10),
	}, idemKey)
	if err != nil {
		return nil, err
	}

	record, err := l.store.RecordContribution(campaignId, backer, amount)
	if err != nil {
		// 链上已入账但本地记账失败，必须大声暴露而不是吞掉
		logger.Error("Contribution for campaign %d confirmed on chain but ledger write failed: %v", campaignId, err)
		return nil, err
	}

	l.notifier.Emit(model.EventDonationReceived, campaignId, 0, campaign.CreatorAddress,
		map[string]interface{}{"backer": backer, "amount": amount})

	return &ContributeResult{
		Backer:      record,
		VotingPower: voting.VotingPower(record.Amount),
		TxHash:      result.TxHash,
	}, nil
}

// GetBacker 获取支持者信息及其当前投票权重
func (l *ContributeLogic) GetBacker(campaignId int64, address string) (*ContributeResult, error) {
	record, err := l.store.GetBacker(campaignId, address)
	if err != nil {
		return nil, err
	}
	return &ContributeResult{
		Backer:      record,
		VotingPower: voting.VotingPower(record.Amount),
	}, nil
}
