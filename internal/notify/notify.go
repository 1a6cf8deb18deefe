package notify

import (
	"encoding/json"

	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/panjf2000/ants/v2"
)

// Notifier 出站通知端口。调用方发出事件后立即返回，
// 投递失败只记日志，绝不影响触发它的核心操作。
type Notifier interface {
	Emit(event model.EventType, campaignId, milestoneId int64, recipient string, data map[string]interface{})
}

// PoolNotifier 基于协程池的通知分发器，事件同时落事件表用于审计
type PoolNotifier struct {
	store *store.Store
	pool  *ants.Pool
}

// NewPoolNotifier 创建通知分发器
func NewPoolNotifier(st *store.Store, poolSize int) (*PoolNotifier, error) {
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &PoolNotifier{store: st, pool: pool}, nil
}

// Emit 发出事件
func (n *PoolNotifier) Emit(event model.EventType, campaignId, milestoneId int64, recipient string, data map[string]interface{}) {
	payload := ""
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			payload = string(raw)
		}
	}

	record := &model.EventModel{
		EventType:   event,
		CampaignId:  campaignId,
		MilestoneId: milestoneId,
		Recipient:   recipient,
		Data:        payload,
	}

	err := n.pool.Submit(func() {
		if err := n.store.AppendEvent(record); err != nil {
			logger.Error("Failed to append event %s for campaign %d: %v", event, campaignId, err)
			return
		}
		// 实际投递（邮件、webhook）由外部通知服务消费事件表完成
		logger.Debug("Emitted event %s for campaign %d to %s", event, campaignId, recipient)
	})
	if err != nil {
		logger.Error("Failed to submit notification %s to pool: %v", event, err)
	}
}

// Release 关闭协程池
func (n *PoolNotifier) Release() {
	n.pool.Release()
}

// NopNotifier 测试用空实现
type NopNotifier struct{}

// Emit 空实现
func (NopNotifier) Emit(event model.EventType, campaignId, milestoneId int64, recipient string, data map[string]interface{}) {
}
