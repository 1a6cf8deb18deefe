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
	"github.com/Greninja7505/GreenForge/internal/store"
)

// CampaignLogic 活动生命周期逻辑
type CampaignLogic struct {
	store   *store.Store
	gateway gateway.Gateway
	config  *config.Config
}

// NewCampaignLogic 创建活动逻辑
func NewCampaignLogic(st *store.Store, gw gateway.Gateway, cfg *config.Config) *CampaignLogic {
	return &CampaignLogic{store: st, gateway: gw, config: cfg}
}

// CampaignDetail 活动详情
type CampaignDetail struct {
	Campaign   *model.CampaignModel   `json:"campaign"`
	Milestones []model.MilestoneModel `json:"milestones"`
}

// CreateCampaign 创建活动。先落库为 draft，链上注册成功后迁移为 active
// 并激活第一个里程碑；链上调用失败时活动保留在 draft，由部署任务重试。
func (l *CampaignLogic) CreateCampaign(ctx context.Context, campaign *model.CampaignModel, milestones []model.MilestoneModel) (*CampaignDetail, error) {
	campaign.Status = model.CampaignStatusDraft
	campaign.FundsRaised = 0
	campaign.FundsLocked = 0
	campaign.FundsReleased = 0
	for i := range milestones {
		milestones[i].Status = model.MilestoneStatusPending
		milestones[i].Verdict = model.VerificationNotSubmitted
	}

	if err := l.store.CreateCampaign(campaign, milestones); err != nil {
		return nil, err
	}

	if err := l.Deploy(ctx, campaign.Id); err != nil {
		// 保留 draft 等待重试，不让链上瞬时故障吞掉活动
		logger.Warn("Campaign %d created but chain registration failed, left in draft: %v", campaign.Id, err)
	}

	return l.GetCampaign(campaign.Id)
}

// Deploy 在链上注册 draft 活动并激活。幂等键由活动ID派生，重试不会重复注册。
func (l *CampaignLogic) Deploy(ctx context.Context, campaignId int64) error {
	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignStatusDraft {
		return fault.New(fault.KindWrongState, "campaign %d is %s, not draft", campaignId, campaign.Status)
	}

	milestones, err := l.store.ListMilestones(campaignId)
	if err != nil {
		return err
	}

	args := []string{
		"--creator", campaign.CreatorAddress,
		"--title", campaign.Title,
		"--description", campaign.Description,
		"--ipfs_metadata", campaign.IpfsMetadata,
		"--total_goal", strconv.FormatInt(campaign.TotalGoal, 10),
	}
	for _, ms := range milestones {
		args = append(args, "--milestone", ms.Title+":"+ms.Description+":"+strconv.FormatInt(ms.Amount, 10))
	}

	idemKey := "campaign-deploy-" + strconv.FormatInt(campaignId, 10)
	result, err := l.gateway.Invoke(ctx, gateway.TargetCore, "create_campaign", args, idemKey)
	if err != nil {
		return err
	}

	extra := map[string]interface{}{"transaction_hash": result.TxHash}
	if id, ok := result.Data["campaign_id"].(float64); ok {
		extra["chain_campaign_id"] = int64(id)
	}
	if _, err := l.store.TransitionCampaign(campaignId,
		model.CampaignStatusDraft, model.CampaignStatusActive, extra); err != nil {
		return err
	}

	// 第一个里程碑随活动激活进入 in_progress
	if len(milestones) > 0 {
		if _, err := l.store.TransitionMilestone(milestones[0].Id,
			model.MilestoneStatusPending, model.MilestoneStatusInProgress, nil); err != nil {
			logger.Error("Failed to activate first milestone of campaign %d: %v", campaignId, err)
		}
	}

	logger.Info("Campaign %d registered on chain and activated", campaignId)
	return nil
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(id int64) (*CampaignDetail, error) {
	campaign, err := l.store.GetCampaign(id)
	if err != nil {
		return nil, err
	}
	milestones, err := l.store.ListMilestones(id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetail{Campaign: campaign, Milestones: milestones}, nil
}

// ListCampaigns 获取活动列表
func (l *CampaignLogic) ListCampaigns(status, creator string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	return l.store.ListCampaigns(status, creator, page, pageSize)
}

// CloseCampaign 关闭活动：全部里程碑已释放后由创建者或管理员调用，
// 活动进入 completed 终态。
func (l *CampaignLogic) CloseCampaign(ctx context.Context, campaignId int64, caller string) (*model.CampaignModel, error) {
	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if caller != campaign.CreatorAddress && caller != l.config.Governance.AdminAddress {
		return nil, fault.New(fault.KindNotCreator, "only creator or admin can close campaign %d", campaignId)
	}

	remaining, err := l.store.CountMilestonesNotIn(campaignId,
		[]model.MilestoneStatus{model.MilestoneStatusReleased})
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, fault.New(fault.KindWrongState,
			"campaign %d has %d unreleased milestones", campaignId, remaining)
	}

	idemKey := "campaign-close-" + strconv.FormatInt(campaignId, 10)
	if _, err := l.gateway.Invoke(ctx, gateway.TargetCore, "close_campaign", []string{
		"--campaign_id", strconv.FormatInt(campaignId, 10),
		"--caller", caller,
	}, idemKey); err != nil {
		return nil, err
	}

	now := time.Now()
	return l.store.TransitionCampaign(campaignId, campaign.Status,
		model.CampaignStatusCompleted, map[string]interface{}{"closed_at": now})
}

// CancelCampaign 取消活动：任何未到终态且尚无已释放里程碑的活动
// 可由创建者或管理员取消。已有资金释放的活动不可取消。
func (l *CampaignLogic) CancelCampaign(campaignId int64, caller string) (*model.CampaignModel, error) {
	campaign, err := l.store.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if caller != campaign.CreatorAddress && caller != l.config.Governance.AdminAddress {
		return nil, fault.New(fault.KindNotCreator, "only creator or admin can cancel campaign %d", campaignId)
	}
	if campaign.Status.Terminal() {
		return nil, fault.New(fault.KindWrongState,
			"campaign %d is already %s", campaignId, campaign.Status)
	}

	released, err := l.store.CountMilestonesNotIn(campaignId, []model.MilestoneStatus{
		model.MilestoneStatusPending, model.MilestoneStatusInProgress,
		model.MilestoneStatusProofSubmitted, model.MilestoneStatusAIVerified,
		model.MilestoneStatusVotingOpen, model.MilestoneStatusApproved,
		model.MilestoneStatusDisputed, model.MilestoneStatusRejected,
	})
	if err != nil {
		return nil, err
	}
	if released > 0 {
		return nil, fault.New(fault.KindWrongState,
			"campaign %d already released funds, cannot cancel", campaignId)
	}

	now := time.Now()
	return l.store.TransitionCampaign(campaignId, campaign.Status,
		model.CampaignStatusCancelled, map[string]interface{}{"closed_at": now})
}
