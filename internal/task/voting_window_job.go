package task

import (
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/voting"
	"github.com/go-co-op/gocron/v2"
)

// VotingWindowJob 投票窗口任务。投票开启超过窗口时长的里程碑按当前计票
// 定案：满足审批规则则 approved，否则 rejected（创建者可重新提交证明）。
type VotingWindowJob struct {
	store  *store.Store
	config *config.Config
	engine *voting.Engine
}

// NewVotingWindowJob 创建投票窗口任务
func NewVotingWindowJob(st *store.Store, cfg *config.Config, engine *voting.Engine) *VotingWindowJob {
	return &VotingWindowJob{
		store:  st,
		config: cfg,
		engine: engine,
	}
}

// GetName 获取任务名称
func (j *VotingWindowJob) GetName() string {
	return "voting_window_closer"
}

// GetSchedule 获取调度配置
func (j *VotingWindowJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *VotingWindowJob) Execute() {
	cutoff := time.Now().Add(-j.config.Governance.VotingWindow)

	var milestones []model.MilestoneModel
	err := j.store.DB().
		Where("status = ? AND voting_open_at <= ?", model.MilestoneStatusVotingOpen, cutoff).
		Find(&milestones).Error
	if err != nil {
		logger.Error("Failed to fetch expired voting windows: %v", err)
		return
	}

	for _, ms := range milestones {
		to := model.MilestoneStatusRejected
		if j.engine.Approvable(ms.VotesFor, ms.VotesAgainst, ms.VoterCount) {
			to = model.MilestoneStatusApproved
		}

		if _, err := j.store.TransitionMilestone(ms.Id,
			model.MilestoneStatusVotingOpen, to, nil); err != nil {
			// 窗口到期与最后一票并发定案时 CAS 输掉是正常的
			if fault.KindOf(err) != fault.KindIllegalTransition {
				logger.Error("Failed to close voting on milestone %d: %v", ms.Id, err)
			}
			continue
		}

		logger.Info("Voting window closed for milestone %d: %s (for: %d, against: %d, voters: %d)",
			ms.Id, to, ms.VotesFor, ms.VotesAgainst, ms.VoterCount)
	}
}
