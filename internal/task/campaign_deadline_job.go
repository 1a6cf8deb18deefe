package task

import (
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// CampaignDeadlineJob 募资截止任务。超过截止时间仍未达目标的活动
// 迁入 failed，等待管理员发起退款。
type CampaignDeadlineJob struct {
	store    *store.Store
	config   *config.Config
	notifier notify.Notifier
}

// NewCampaignDeadlineJob 创建募资截止任务
func NewCampaignDeadlineJob(st *store.Store, cfg *config.Config, n notify.Notifier) *CampaignDeadlineJob {
	return &CampaignDeadlineJob{
		store:    st,
		config:   cfg,
		notifier: n,
	}
}

// GetName 获取任务名称
func (j *CampaignDeadlineJob) GetName() string {
	return "campaign_deadline_checker"
}

// GetSchedule 获取调度配置
func (j *CampaignDeadlineJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignDeadlineJob) Execute() {
	now := time.Now()

	// 只看 active：funded 的活动已达目标，截止后里程碑照常推进
	var campaigns []model.CampaignModel
	err := j.store.DB().
		Where("status = ? AND end_time <= ? AND funds_raised < total_goal",
			model.CampaignStatusActive, now).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch expired campaigns: %v", err)
		return
	}

	for _, campaign := range campaigns {
		if _, err := j.store.TransitionCampaign(campaign.Id,
			model.CampaignStatusActive, model.CampaignStatusFailed, nil); err != nil {
			if fault.KindOf(err) != fault.KindIllegalTransition {
				logger.Error("Failed to fail expired campaign %d: %v", campaign.Id, err)
			}
			continue
		}

		logger.Info("Campaign %d failed at deadline (raised %d of %d)",
			campaign.Id, campaign.FundsRaised, campaign.TotalGoal)
		j.notifier.Emit(model.EventCampaignFailed, campaign.Id, 0, campaign.CreatorAddress,
			map[string]interface{}{"raised": campaign.FundsRaised, "goal": campaign.TotalGoal})
	}
}
