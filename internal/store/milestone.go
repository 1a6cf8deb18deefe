package store

import (
	"errors"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
	"gorm.io/gorm"
)

// GetMilestone 获取里程碑
func (s *Store) GetMilestone(id int64) (*model.MilestoneModel, error) {
	var milestone model.MilestoneModel
	if err := s.db.First(&milestone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotFound, "milestone %d not found", id)
		}
		return nil, err
	}
	return &milestone, nil
}

// GetMilestoneByOrdinal 按活动内序号获取里程碑
func (s *Store) GetMilestoneByOrdinal(campaignId int64, ordinal int) (*model.MilestoneModel, error) {
	var milestone model.MilestoneModel
	if err := s.db.Where("campaign_id = ? AND ordinal = ?", campaignId, ordinal).
		First(&milestone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotFound,
				"milestone %d of campaign %d not found", ordinal, campaignId)
		}
		return nil, err
	}
	return &milestone, nil
}

// ListMilestones 获取活动全部里程碑，按序号排序
func (s *Store) ListMilestones(campaignId int64) ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	if err := s.db.Where("campaign_id = ?", campaignId).
		Order("ordinal ASC").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

// CountMilestonesNotIn 统计不处于指定状态的里程碑数量
func (s *Store) CountMilestonesNotIn(campaignId int64, statuses []model.MilestoneStatus) (int64, error) {
	var count int64
	if err := s.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND status NOT IN ?", campaignId, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TransitionMilestone CAS状态迁移：仅当前状态等于 from 时写入才成功，
// 并发请求下后写者观察到 IllegalTransition 而不是覆盖前者。
func (s *Store) TransitionMilestone(id int64, from, to model.MilestoneStatus, extra map[string]interface{}) (*model.MilestoneModel, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.Model(&model.MilestoneModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		milestone, err := s.GetMilestone(id)
		if err != nil {
			return nil, err
		}
		return nil, fault.New(fault.KindIllegalTransition,
			"milestone %d is %s, expected %s", id, milestone.Status, from)
	}
	return s.GetMilestone(id)
}
