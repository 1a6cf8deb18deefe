package store

import (
	"errors"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
	"gorm.io/gorm"
)

// GetOpenReleaseRecord 查找里程碑上未确认的释放记录。
// 重试释放时复用其中的幂等键，保证链上不会重复转账。
func (s *Store) GetOpenReleaseRecord(milestoneId int64) (*model.ReleaseRecordModel, error) {
	var record model.ReleaseRecordModel
	err := s.db.Where("milestone_id = ? AND status <> ?", milestoneId, model.ReleaseStatusConfirmed).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// CreateReleaseRecord 创建释放记录
func (s *Store) CreateReleaseRecord(record *model.ReleaseRecordModel) error {
	return s.db.Create(record).Error
}

// GetReleaseRecordByKey 按幂等键获取释放记录
func (s *Store) GetReleaseRecordByKey(key string) (*model.ReleaseRecordModel, error) {
	var record model.ReleaseRecordModel
	if err := s.db.Where("idempotency_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotFound, "release record %q not found", key)
		}
		return nil, err
	}
	return &record, nil
}

// EnsureReleaseRecord 创建释放记录；幂等键已被占用时返回现有记录。
// 并发的首次释放在唯一索引上碰撞后收敛到同一个键，链上只会转账一次。
func (s *Store) EnsureReleaseRecord(record *model.ReleaseRecordModel) (*model.ReleaseRecordModel, error) {
	err := s.db.Create(record).Error
	if err == nil {
		return record, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.GetReleaseRecordByKey(record.IdempotencyKey)
	}
	return nil, err
}

// UpdateReleaseRecord 更新释放记录
func (s *Store) UpdateReleaseRecord(id int64, updates map[string]interface{}) error {
	return s.db.Model(&model.ReleaseRecordModel{}).Where("id = ?", id).Updates(updates).Error
}

// CreateRefundRecords 批量创建退款记录
func (s *Store) CreateRefundRecords(records []model.RefundRecordModel) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(&records).Error
}

// ListRefundsByStatus 按状态查询退款记录
func (s *Store) ListRefundsByStatus(status string) ([]model.RefundRecordModel, error) {
	var records []model.RefundRecordModel
	if err := s.db.Where("status = ?", status).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRefundRecord 更新退款记录
func (s *Store) UpdateRefundRecord(id int64, updates map[string]interface{}) error {
	return s.db.Model(&model.RefundRecordModel{}).Where("id = ?", id).Updates(updates).Error
}

// CountUnconfirmedRefunds 统计活动未确认的退款数
func (s *Store) CountUnconfirmedRefunds(campaignId int64) (int64, error) {
	var count int64
	if err := s.db.Model(&model.RefundRecordModel{}).
		Where("campaign_id = ? AND status <> ?", campaignId, model.RefundStatusConfirmed).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasRefundRecords 活动是否已有退款记录
func (s *Store) HasRefundRecords(campaignId int64) (bool, error) {
	var count int64
	if err := s.db.Model(&model.RefundRecordModel{}).
		Where("campaign_id = ?", campaignId).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AppendSbt 追加SBT记录（只增不减）
func (s *Store) AppendSbt(token *model.SbtTokenModel) error {
	return s.db.Create(token).Error
}

// ListSbtByRecipient 获取接收者全部SBT
func (s *Store) ListSbtByRecipient(address string) ([]model.SbtTokenModel, error) {
	var tokens []model.SbtTokenModel
	if err := s.db.Where("recipient_address = ?", address).
		Order("created_at ASC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// AppendEvent 追加出站事件
func (s *Store) AppendEvent(event *model.EventModel) error {
	return s.db.Create(event).Error
}

// MarkEventProcessed 标记事件已处理
func (s *Store) MarkEventProcessed(id int64) error {
	return s.db.Model(&model.EventModel{}).Where("id = ?", id).
		Update("processed", true).Error
}
