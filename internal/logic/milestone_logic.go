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
	"github.com/Greninja7505/GreenForge/internal/oracle"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// 链上verdict编码，与合约枚举一致
var verdictCodes = map[model.VerificationStatus]string{
	model.VerificationNotSubmitted: "0",
	model.VerificationPending:      "1",
	model.VerificationCompleted:    "2",
	model.VerificationPartial:      "3",
	model.VerificationSuspicious:   "4",
	model.VerificationRejected:     "5",
}

// MilestoneLogic 里程碑证明与验证逻辑
type MilestoneLogic struct {
	store    *store.Store
	gateway  gateway.Gateway
	oracle   oracle.Oracle
	notifier notify.Notifier
	config   *config.Config
	pool     *ants.Pool // 异步评估协程池，nil 时同步评估
}

// NewMilestoneLogic 创建里程碑逻辑
func NewMilestoneLogic(st *store.Store, gw gateway.Gateway, o oracle.Oracle, n notify.Notifier, cfg *config.Config) *MilestoneLogic {
	l := &MilestoneLogic{store: st, gateway: gw, oracle: o, notifier: n, config: cfg}
	if cfg.Oracle.Workers > 0 {
		pool, err := ants.NewPool(cfg.Oracle.Workers)
		if err != nil {
			logger.Error("Failed to create oracle worker pool, falling back to sync evaluation: %v", err)
		} else {
			l.pool = pool
		}
	}
	return l
}

// getOwnedMilestone 获取里程碑并校验归属
func (l *MilestoneLogic) getOwnedMilestone(campaignId, milestoneId int64) (*model.CampaignModel, *model.MilestoneModel, error) {
	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return nil, nil, err
	}
	milestone, err := l.store.GetMilestone(milestoneId)
	if err != nil {
		return nil, nil, err
	}
	if milestone.CampaignId != campaignId {
		return nil, nil, fault.New(fault.KindNotFound,
			"milestone %d does not belong to campaign %d", milestoneId, campaignId)
	}
	return campaign, milestone, nil
}

// GetMilestone 获取里程碑详情
func (l *MilestoneLogic) GetMilestone(campaignId, milestoneId int64) (*model.MilestoneModel, error) {
	_, milestone, err := l.getOwnedMilestone(campaignId, milestoneId)
	return milestone, err
}

// SubmitProof 提交完成证明。仅创建者可提交，里程碑须处于 in_progress，
// 或 rejected（重新提交，受次数上限约束）。提交后转入 proof_submitted
// 并异步请求预言机评估。
func (l *MilestoneLogic) SubmitProof(ctx context.Context, campaignId, milestoneId int64, creator, proofRef string) (*model.MilestoneModel, error) {
	if proofRef == "" {
		return nil, fault.New(fault.KindValidation, "proof reference is required")
	}

	campaign, milestone, err := l.getOwnedMilestone(campaignId, milestoneId)
	if err != nil {
		return nil, err
	}
	if creator != campaign.CreatorAddress {
		return nil, fault.New(fault.KindNotCreator,
			"only the campaign creator can submit proof for milestone %d", milestoneId)
	}

	from := milestone.Status
	switch from {
	case model.MilestoneStatusInProgress:
	case model.MilestoneStatusRejected:
		if milestone.SubmissionCount >= l.config.Governance.MaxResubmissions {
			return nil, fault.New(fault.KindWrongState,
				"milestone %d exceeded %d proof submissions", milestoneId, l.config.Governance.MaxResubmissions)
		}
	default:
		return nil, fault.New(fault.KindWrongState,
			"milestone %d is %s, proof cannot be submitted", milestoneId, from)
	}

	idemKey := "proof-" + strconv.FormatInt(milestoneId, 10) + "-" + strconv.Itoa(milestone.SubmissionCount+1)
	if _, err := l.gateway.Invoke(ctx, gateway.TargetCore, "submit_proof", []string{
		"--campaign_id", strconv.FormatInt(campaignId, 10),
		"--milestone_id", strconv.FormatInt(milestoneId, 10),
		"--creator", creator,
		"--ipfs_hash", proofRef,
	}, idemKey); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := l.store.TransitionMilestone(milestoneId, from,
		model.MilestoneStatusProofSubmitted, map[string]interface{}{
			"ipfs_proof":         proofRef,
			"proof_submitted_at": now,
			"verdict":            model.VerificationPending,
			"verdict_confidence": 0,
			"verdict_notes":      "",
			"submission_count":   gorm.Expr("submission_count + 1"),
		})
	if err != nil {
		return nil, err
	}

	l.notifier.Emit(model.EventProofSubmitted, campaignId, milestoneId, campaign.CreatorAddress,
		map[string]interface{}{"proof": proofRef})

	l.dispatchEvaluation(campaignId, milestoneId, updated.Title, updated.Description, proofRef)

	return updated, nil
}

// dispatchEvaluation 请求预言机评估。异步为首选路径，避免把慢的外部调用
// 压在客户端连接上；评估失败或超时时里程碑保持 proof_submitted 等待重试。
func (l *MilestoneLogic) dispatchEvaluation(campaignId, milestoneId int64, title, description, proofRef string) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.config.Oracle.Timeout)
		defer cancel()

		verdict, err := l.oracle.Evaluate(ctx, oracle.EvaluateRequest{
			CampaignId:     campaignId,
			MilestoneId:    milestoneId,
			MilestoneTitle: title,
			Description:    description,
			ProofRef:       proofRef,
		})
		if err != nil {
			logger.Error("Oracle evaluation for milestone %d failed, awaiting manual retry: %v", milestoneId, err)
			return
		}

		if _, err := l.RecordVerdict(ctx, campaignId, milestoneId,
			l.oracle.Identity(), verdict.Status, verdict.Confidence, verdict.Notes); err != nil {
			logger.Error("Failed to record oracle verdict for milestone %d: %v", milestoneId, err)
		}
	}

	if l.pool != nil {
		if err := l.pool.Submit(task); err != nil {
			logger.Error("Failed to submit oracle evaluation to pool: %v", err)
		}
		return
	}
	task()
}

// RecordVerdict 记录验证结论，仅授权预言机或管理员可调用，
// 且里程碑必须处于 proof_submitted。结论路由：
// completed/partial 开启社区投票，suspicious 进入争议，rejected 可重新提交。
func (l *MilestoneLogic) RecordVerdict(ctx context.Context, campaignId, milestoneId int64, oracleId string, status model.VerificationStatus, confidence int, notes string) (*model.MilestoneModel, error) {
	if oracleId != l.config.Governance.OracleId && oracleId != l.config.Governance.AdminAddress {
		return nil, fault.New(fault.KindUnauthorizedOracle, "oracle %q is not authorized", oracleId)
	}
	if err := oracle.ValidateVerdict(status, confidence); err != nil {
		return nil, err
	}
	if status == model.VerificationPending {
		return nil, fault.New(fault.KindValidation, "pending is not a final verdict")
	}

	campaign, milestone, err := l.getOwnedMilestone(campaignId, milestoneId)
	if err != nil {
		return nil, err
	}
	if milestone.Status != model.MilestoneStatusProofSubmitted {
		return nil, fault.New(fault.KindWrongState,
			"milestone %d is %s, no verdict expected", milestoneId, milestone.Status)
	}

	idemKey := "verdict-" + strconv.FormatInt(milestoneId, 10) + "-" + strconv.Itoa(milestone.SubmissionCount)
	if _, err := l.gateway.Invoke(ctx, gateway.TargetCore, "submit_ai_verdict", []string{
		"--campaign_id", strconv.FormatInt(campaignId, 10),
		"--milestone_id", strconv.FormatInt(milestoneId, 10),
		"--oracle", oracleId,
		"--status", verdictCodes[status],
		"--confidence", strconv.Itoa(confidence),
	}, idemKey); err != nil {
		return nil, err
	}

	now := time.Now()
	verdictFields := map[string]interface{}{
		"verdict":            status,
		"verdict_confidence": confidence,
		"verdict_oracle":     oracleId,
		"verdict_notes":      notes,
		"verified_at":        now,
	}

	switch status {
	case model.VerificationCompleted, model.VerificationPartial:
		// 通过：ai_verified 后立即自动开票，保留审计轨迹
		if _, err := l.store.TransitionMilestone(milestoneId,
			model.MilestoneStatusProofSubmitted, model.MilestoneStatusAIVerified, verdictFields); err != nil {
			return nil, err
		}
		return l.openVoting(campaignId, milestoneId, campaign.CreatorAddress)

	case model.VerificationSuspicious:
		updated, err := l.store.TransitionMilestone(milestoneId,
			model.MilestoneStatusProofSubmitted, model.MilestoneStatusDisputed, verdictFields)
		if err != nil {
			return nil, err
		}
		logger.Warn("Milestone %d flagged suspicious by oracle %s (confidence %d)", milestoneId, oracleId, confidence)
		return updated, nil

	default: // rejected
		updated, err := l.store.TransitionMilestone(milestoneId,
			model.MilestoneStatusProofSubmitted, model.MilestoneStatusRejected, verdictFields)
		if err != nil {
			return nil, err
		}
		l.notifier.Emit(model.EventProofRejected, campaignId, milestoneId, campaign.CreatorAddress,
			map[string]interface{}{"confidence": confidence, "notes": notes})
		return updated, nil
	}
}

// openVoting 开启社区投票：清空旧周期的投票并重置计票
func (l *MilestoneLogic) openVoting(campaignId, milestoneId int64, creator string) (*model.MilestoneModel, error) {
	if err := l.store.ClearVotes(milestoneId); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := l.store.TransitionMilestone(milestoneId,
		model.MilestoneStatusAIVerified, model.MilestoneStatusVotingOpen, map[string]interface{}{
			"votes_for":      0,
			"votes_against":  0,
			"voter_count":    0,
			"voting_open_at": now,
		})
	if err != nil {
		return nil, err
	}

	l.notifier.Emit(model.EventVotingOpened, campaignId, milestoneId, creator, nil)
	logger.Info("Voting opened for milestone %d of campaign %d", milestoneId, campaignId)
	return updated, nil
}

// Release 关闭协程池
func (l *MilestoneLogic) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
