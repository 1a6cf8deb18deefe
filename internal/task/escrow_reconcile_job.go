package task

import (
	"context"
	"strconv"
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// EscrowReconcileJob 托管对账任务。用只读合约调用核对账本与链上托管余额，
// 发现偏差只告警不自动修正，留给人工裁决。
type EscrowReconcileJob struct {
	store   *store.Store
	config  *config.Config
	gateway gateway.Gateway
}

// NewEscrowReconcileJob 创建托管对账任务
func NewEscrowReconcileJob(st *store.Store, cfg *config.Config, gw gateway.Gateway) *EscrowReconcileJob {
	return &EscrowReconcileJob{
		store:   st,
		config:  cfg,
		gateway: gw,
	}
}

// GetName 获取任务名称
func (j *EscrowReconcileJob) GetName() string {
	return "escrow_reconciler"
}

// GetSchedule 获取调度配置
func (j *EscrowReconcileJob) GetSchedule() gocron.JobDefinition {
	// 对账不需要和状态推进同频，放慢十倍
	return gocron.DurationJob(10 * time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *EscrowReconcileJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.store.DB().
		Where("status IN ? AND chain_campaign_id > 0",
			[]model.CampaignStatus{model.CampaignStatusActive, model.CampaignStatusFunded}).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns for reconciliation: %v", err)
		return
	}

	for _, campaign := range campaigns {
		ctx, cancel := context.WithTimeout(context.Background(), j.config.Stellar.QueryTimeout)
		result, err := j.gateway.Query(ctx, gateway.TargetCore, "get_campaign", []string{
			"--campaign_id", strconv.FormatInt(campaign.ChainCampaignId, 10),
		})
		cancel()
		if err != nil {
			logger.Warn("Escrow query for campaign %d failed: %v", campaign.Id, err)
			continue
		}

		chainLocked, ok := result.Data["funds_locked"].(float64)
		if !ok {
			logger.Warn("Escrow query for campaign %d returned no funds_locked field", campaign.Id)
			continue
		}
		if int64(chainLocked) != campaign.FundsLocked {
			logger.Error("Escrow drift on campaign %d: ledger %d, chain %d",
				campaign.Id, campaign.FundsLocked, int64(chainLocked))
		}
	}
}
