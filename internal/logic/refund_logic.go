package logic

import (
	"context"
	"strconv"
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/store"
)

// RefundLogic 退款逻辑。活动失败后按支持者累计出资全额退款，
// 每个支持者一条带稳定幂等键的记录，可重试直到全部确认。
type RefundLogic struct {
	store    *store.Store
	gateway  gateway.Gateway
	notifier notify.Notifier
	config   *config.Config
}

// NewRefundLogic 创建退款逻辑
func NewRefundLogic(st *store.Store, gw gateway.Gateway, n notify.Notifier, cfg *config.Config) *RefundLogic {
	return &RefundLogic{store: st, gateway: gw, notifier: n, config: cfg}
}

// RefundBackers 为失败活动建立退款队列，仅管理员可调用。
// 已建立过队列的活动直接返回现有进度，重复调用不会产生重复退款。
func (l *RefundLogic) RefundBackers(ctx context.Context, campaignId int64, caller string) (int, error) {
	if caller != l.config.Governance.AdminAddress {
		return 0, fault.New(fault.KindUnauthorized, "only admin can initiate refunds")
	}

	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return 0, err
	}
	if campaign.Status != model.CampaignStatusFailed {
		return 0, fault.New(fault.KindWrongState,
			"campaign %d is %s, refunds only apply to failed campaigns", campaignId, campaign.Status)
	}

	exists, err := l.store.HasRefundRecords(campaignId)
	if err != nil {
		return 0, err
	}
	if !exists {
		backers, err := l.store.ListBackers(campaignId)
		if err != nil {
			return 0, err
		}
		records := make([]model.RefundRecordModel, 0, len(backers))
		for _, b := range backers {
			records = append(records, model.RefundRecordModel{
				CampaignId: campaignId,
				Address:    b.Address,
				Amount:     b.Amount,
				// 键由活动与地址派生，重建队列也不会重复转账
				IdempotencyKey: "refund-" + strconv.FormatInt(campaignId, 10) + "-" + b.Address,
				Status:         model.RefundStatusPending,
			})
		}
		if err := l.store.CreateRefundRecords(records); err != nil {
			return 0, err
		}
		logger.Info("Queued %d refunds for failed campaign %d", len(records), campaignId)
	}

	return l.ProcessPendingRefunds(ctx, campaignId)
}

// ProcessPendingRefunds 处理活动的未完成退款，返回本轮确认数。
// 单笔失败不阻塞其余退款，记录保留幂等键等待下一轮重试。
// 全部确认后活动迁移 failed -> cancelled，资金归零。
func (l *RefundLogic) ProcessPendingRefunds(ctx context.Context, campaignId int64) (int, error) {
	confirmed := 0
	for _, status := range []string{model.RefundStatusPending, model.RefundStatusFailed} {
		records, err := l.store.ListRefundsByStatus(status)
		if err != nil {
			return confirmed, err
		}
		for _, record := range records {
			if record.CampaignId != campaignId {
				continue
			}
			if l.processOne(ctx, &record) {
				confirmed++
			}
		}
	}

	remaining, err := l.store.CountUnconfirmedRefunds(campaignId)
	if err != nil {
		return confirmed, err
	}
	if remaining == 0 {
		now := time.Now()
		if _, err := l.store.TransitionCampaign(campaignId,
			model.CampaignStatusFailed, model.CampaignStatusCancelled, map[string]interface{}{
				"funds_locked": 0,
				"closed_at":    now,
			}); err != nil {
			if fault.KindOf(err) != fault.KindIllegalTransition {
				return confirmed, err
			}
		} else {
			logger.Info("Campaign %d fully refunded and closed", campaignId)
		}
	}
	return confirmed, nil
}

// processOne 退一笔。返回是否确认成功。
func (l *RefundLogic) processOne(ctx context.Context, record *model.RefundRecordModel) bool {
	result, err := l.gateway.Invoke(ctx, gateway.TargetCore, "refund", []string{
		"--campaign_id", strconv.FormatInt(record.CampaignId, 10),
		"--backer", record.Address,
		"--amount", strconv.FormatInt(record.Amount, 10),
	}, record.IdempotencyKey)
	if err != nil {
		logger.Warn("Refund to %s for campaign %d failed, will retry: %v",
			record.Address, record.CampaignId, err)
		if uerr := l.store.UpdateRefundRecord(record.Id, map[string]interface{}{
			"status":         model.RefundStatusFailed,
			"failure_reason": err.Error(),
		}); uerr != nil {
			logger.Error("Failed to mark refund record %d failed: %v", record.Id, uerr)
		}
		return false
	}

	if err := l.store.UpdateRefundRecord(record.Id, map[string]interface{}{
		"status":  model.RefundStatusConfirmed,
		"tx_hash": result.TxHash,
	}); err != nil {
		logger.Error("Refund %d confirmed on chain but record update failed: %v", record.Id, err)
		return false
	}

	l.notifier.Emit(model.EventRefundIssued, record.CampaignId, 0, record.Address,
		map[string]interface{}{"amount": record.Amount, "tx_hash": result.TxHash})
	return true
}
