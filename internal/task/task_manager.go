package task

import (
	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/voting"
	"github.com/go-co-op/gocron/v2"
)

// Job 后台任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// TaskManager 任务管理器
type TaskManager struct {
	scheduler gocron.Scheduler
	store     *store.Store
	gateway   gateway.Gateway
	notifier  notify.Notifier
	config    *config.Config
}

// NewTaskManager 创建新的任务管理器
func NewTaskManager(st *store.Store, gw gateway.Gateway, n notify.Notifier, cfg *config.Config) *TaskManager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &TaskManager{
		scheduler: s,
		store:     st,
		gateway:   gw,
		notifier:  n,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(st *store.Store, gw gateway.Gateway, n notify.Notifier, cfg *config.Config) *TaskManager {
	manager := NewTaskManager(st, gw, n, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *TaskManager) RegisterJobs() {
	campaignLogic := logic.NewCampaignLogic(m.store, m.gateway, m.config)
	refundLogic := logic.NewRefundLogic(m.store, m.gateway, m.notifier, m.config)
	engine := voting.NewEngine(m.store, m.config)

	m.register(NewCampaignDeployJob(m.store, m.config, campaignLogic))
	m.register(NewCampaignDeadlineJob(m.store, m.config, m.notifier))
	m.register(NewVotingWindowJob(m.store, m.config, engine))
	m.register(NewRefundRetryJob(m.store, m.config, refundLogic))
	m.register(NewEscrowReconcileJob(m.store, m.config, m.gateway))
}

// register 以单例模式注册任务，上一轮未结束时跳过本轮
func (m *TaskManager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *TaskManager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
