package task

import (
	"context"
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// CampaignDeployJob 活动上链任务。创建时链上注册失败的活动停留在 draft，
// 本任务周期性重试；幂等键由活动ID派生，重试不会重复注册。
type CampaignDeployJob struct {
	store         *store.Store
	config        *config.Config
	campaignLogic *logic.CampaignLogic
}

// NewCampaignDeployJob 创建活动上链任务
func NewCampaignDeployJob(st *store.Store, cfg *config.Config, campaignLogic *logic.CampaignLogic) *CampaignDeployJob {
	return &CampaignDeployJob{
		store:         st,
		config:        cfg,
		campaignLogic: campaignLogic,
	}
}

// GetName 获取任务名称
func (j *CampaignDeployJob) GetName() string {
	return "campaign_deploy_retrier"
}

// GetSchedule 获取调度配置
func (j *CampaignDeployJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignDeployJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.store.DB().Where("status = ?", model.CampaignStatusDraft).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch draft campaigns: %v", err)
		return
	}
	if len(campaigns) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.config.Stellar.InvokeTimeout)
	defer cancel()

	deployed := 0
	for _, campaign := range campaigns {
		if err := j.campaignLogic.Deploy(ctx, campaign.Id); err != nil {
			logger.Warn("Failed to register campaign %d on chain, will retry: %v", campaign.Id, err)
			continue
		}
		deployed++
	}

	logger.Info("Campaign deploy task completed, registered %d of %d drafts", deployed, len(campaigns))
}
