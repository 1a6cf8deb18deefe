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

// RefundRetryJob 退款重试任务。逐个活动处理未确认的退款记录，
// 直到全部确认并关闭活动。
type RefundRetryJob struct {
	store       *store.Store
	config      *config.Config
	refundLogic *logic.RefundLogic
}

// NewRefundRetryJob 创建退款重试任务
func NewRefundRetryJob(st *store.Store, cfg *config.Config, refundLogic *logic.RefundLogic) *RefundRetryJob {
	return &RefundRetryJob{
		store:       st,
		config:      cfg,
		refundLogic: refundLogic,
	}
}

// GetName 获取任务名称
func (j *RefundRetryJob) GetName() string {
	return "refund_retrier"
}

// GetSchedule 获取调度配置
func (j *RefundRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *RefundRetryJob) Execute() {
	var campaignIds []int64
	err := j.store.DB().Model(&model.RefundRecordModel{}).
		Where("status <> ?", model.RefundStatusConfirmed).
		Distinct("campaign_id").
		Pluck("campaign_id", &campaignIds).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns with open refunds: %v", err)
		return
	}
	if len(campaignIds) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(len(campaignIds))*j.config.Stellar.InvokeTimeout)
	defer cancel()

	for _, id := range campaignIds {
		confirmed, err := j.refundLogic.ProcessPendingRefunds(ctx, id)
		if err != nil {
			logger.Error("Refund retry for campaign %d aborted: %v", id, err)
			continue
		}
		if confirmed > 0 {
			logger.Info("Refund retry confirmed %d refunds for campaign %d", confirmed, id)
		}
	}
}
