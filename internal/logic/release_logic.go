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
	"github.com/Greninja7505/GreenForge/internal/voting"
)

// ReleaseLogic 资金释放逻辑
type ReleaseLogic struct {
	store    *store.Store
	gateway  gateway.Gateway
	engine   *voting.Engine
	notifier notify.Notifier
	config   *config.Config
}

// NewReleaseLogic 创建释放逻辑
func NewReleaseLogic(st *store.Store, gw gateway.Gateway, e *voting.Engine, n notify.Notifier, cfg *config.Config) *ReleaseLogic {
	return &ReleaseLogic{store: st, gateway: gw, engine: e, notifier: n, config: cfg}
}

// ReleaseResult 释放结果
type ReleaseResult struct {
	Milestone *model.MilestoneModel `json:"milestone"`
	Payout    int64                 `json:"payout"`
	Fee       int64                 `json:"fee"`
	TxHash    string                `json:"tx_hash"`
}

// ReleaseFunds 释放已批准里程碑的资金。扣除平台手续费后支付给创建者，
// 幂等键在重试间复用，链上不会重复转账。失败的释放记录保留幂等键等待重试。
func (l *ReleaseLogic) ReleaseFunds(ctx context.Context, campaignId, milestoneId int64) (*ReleaseResult, error) {
	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	milestone, err := l.store.GetMilestone(milestoneId)
	if err != nil {
		return nil, err
	}
	if milestone.CampaignId != campaignId {
		return nil, fault.New(fault.KindNotFound,
			"milestone %d does not belong to campaign %d", milestoneId, campaignId)
	}

	if milestone.Status == model.MilestoneStatusReleased {
		return nil, fault.New(fault.KindAlreadyReleased, "milestone %d already released", milestoneId)
	}
	if milestone.Status != model.MilestoneStatusApproved {
		return nil, fault.New(fault.KindNotApproved,
			"milestone %d is %s, not approved for release", milestoneId, milestone.Status)
	}
	if !l.engine.Approvable(milestone.VotesFor, milestone.VotesAgainst, milestone.VoterCount) {
		return nil, fault.New(fault.KindNotApproved,
			"milestone %d tally no longer satisfies the approval rule", milestoneId)
	}

	if campaign.FundsLocked < milestone.Amount {
		logger.Error("Escrow shortfall on campaign %d: locked %d, milestone %d needs %d",
			campaignId, campaign.FundsLocked, milestoneId, milestone.Amount)
		return nil, fault.New(fault.KindInsufficientEscrow,
			"campaign %d escrow %d cannot cover milestone amount %d",
			campaignId, campaign.FundsLocked, milestone.Amount)
	}

	fee := milestone.Amount * l.config.Governance.PlatformFeeBps / 10000
	payout := milestone.Amount - fee

	// 未确认的旧记录持有本次释放的幂等键，复用它而不是造新键。
	// 键由里程碑与提交轮次派生，并发的首次释放在唯一索引上收敛到同一个键，
	// 链上的重复调用被判定为重放而不是第二次转账。
	record, err := l.store.GetOpenReleaseRecord(milestoneId)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record, err = l.store.EnsureReleaseRecord(&model.ReleaseRecordModel{
			CampaignId:  campaignId,
			MilestoneId: milestoneId,
			IdempotencyKey: "release-" + strconv.FormatInt(milestoneId, 10) +
				"-" + strconv.Itoa(milestone.SubmissionCount),
			Payout: payout,
			Fee:    fee,
			Status: model.ReleaseStatusPending,
		})
		if err != nil {
			return nil, err
		}
	}

	result, err := l.gateway.Invoke(ctx, gateway.TargetCore, "release_funds", []string{
		"--campaign_id", strconv.FormatInt(campaignId, 10),
		"--milestone_id", strconv.FormatInt(milestoneId, 10),
		"--creator", campaign.CreatorAddress,
		"--payout", strconv.FormatInt(payout, 10),
		"--fee", strconv.FormatInt(fee, 10),
		"--platform", l.config.Stellar.PlatformAccount,
	}, record.IdempotencyKey)
	if err != nil {
		if uerr := l.store.UpdateReleaseRecord(record.Id, map[string]interface{}{
			"status":         model.ReleaseStatusFailed,
			"failure_reason": err.Error(),
		}); uerr != nil {
			logger.Error("Failed to mark release record %d failed: %v", record.Id, uerr)
		}
		return nil, err
	}

	if err := l.store.UpdateReleaseRecord(record.Id, map[string]interface{}{
		"status":  model.ReleaseStatusConfirmed,
		"tx_hash": result.TxHash,
	}); err != nil {
		logger.Error("Release %d confirmed on chain but record update failed: %v", record.Id, err)
	}

	// 并发释放在此裁决：CAS 输者拿到 AlreadyReleased，托管只扣减一次
	now := time.Now()
	updated, err := l.store.TransitionMilestone(milestoneId,
		model.MilestoneStatusApproved, model.MilestoneStatusReleased,
		map[string]interface{}{"released_at": now})
	if err != nil {
		if fault.KindOf(err) == fault.KindIllegalTransition {
			return nil, fault.New(fault.KindAlreadyReleased, "milestone %d already released", milestoneId)
		}
		return nil, err
	}

	if err := l.store.ApplyRelease(campaignId, milestone.Amount); err != nil {
		logger.Error("Milestone %d released but escrow bookkeeping failed: %v", milestoneId, err)
	}

	l.advanceCampaign(ctx, campaign, updated)

	l.notifier.Emit(model.EventMilestoneReleased, campaignId, milestoneId, campaign.CreatorAddress,
		map[string]interface{}{"payout": payout, "fee": fee, "tx_hash": result.TxHash})

	return &ReleaseResult{Milestone: updated, Payout: payout, Fee: fee, TxHash: result.TxHash}, nil
}

// advanceCampaign 推进活动：激活下一个里程碑，或在全部释放后完成活动
// 并为创建者铸造声誉SBT。
func (l *ReleaseLogic) advanceCampaign(ctx context.Context, campaign *model.CampaignModel, released *model.MilestoneModel) {
	next, err := l.store.GetMilestoneByOrdinal(campaign.Id, released.Ordinal+1)
	if err == nil {
		if _, err := l.store.TransitionMilestone(next.Id,
			model.MilestoneStatusPending, model.MilestoneStatusInProgress, nil); err != nil {
			logger.Error("Failed to activate milestone %d of campaign %d: %v", next.Id, campaign.Id, err)
			return
		}
		if _, err := l.store.TransitionCampaign(campaign.Id, campaign.Status, campaign.Status,
			map[string]interface{}{"current_milestone": next.Ordinal}); err != nil {
			logger.Error("Failed to advance current milestone of campaign %d: %v", campaign.Id, err)
		}
		return
	}
	if fault.KindOf(err) != fault.KindNotFound {
		logger.Error("Failed to look up next milestone of campaign %d: %v", campaign.Id, err)
		return
	}

	// 没有下一个里程碑：全部释放完毕，活动完成
	now := time.Now()
	if _, err := l.store.TransitionCampaign(campaign.Id, campaign.Status,
		model.CampaignStatusCompleted, map[string]interface{}{"closed_at": now}); err != nil {
		logger.Error("Failed to complete campaign %d after final release: %v", campaign.Id, err)
		return
	}
	logger.Info("Campaign %d completed, all milestones released", campaign.Id)

	idemKey := "sbt-creator-" + strconv.FormatInt(campaign.Id, 10)
	result, err := l.gateway.Invoke(ctx, gateway.TargetSbt, "mint", []string{
		"--recipient", campaign.CreatorAddress,
		"--role", strconv.FormatInt(int64(sbtRoleCodes[model.SbtRoleCreator]), 10),
		"--campaign_id", strconv.FormatInt(campaign.Id, 10),
	}, idemKey)
	if err != nil {
		logger.Error("Failed to mint creator SBT for campaign %d: %v", campaign.Id, err)
		return
	}
	if err := l.store.AppendSbt(&model.SbtTokenModel{
		RecipientAddress: campaign.CreatorAddress,
		Role:             model.SbtRoleCreator,
		CampaignId:       campaign.Id,
		TxHash:           result.TxHash,
	}); err != nil {
		logger.Error("Creator SBT minted but ledger write failed for campaign %d: %v", campaign.Id, err)
	}
}
