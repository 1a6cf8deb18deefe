package store

import (
	"errors"
	"time"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
	"gorm.io/gorm"
)

// CreateCampaign 创建活动及其里程碑，单事务写入。
// 校验：目标金额为正、至少一个里程碑、各里程碑金额为正且合计等于目标金额。
func (s *Store) CreateCampaign(campaign *model.CampaignModel, milestones []model.MilestoneModel) error {
	if campaign.Title == "" {
		return fault.New(fault.KindValidation, "title is required")
	}
	if campaign.CreatorAddress == "" {
		return fault.New(fault.KindValidation, "creator address is required")
	}
	if campaign.TotalGoal <= 0 {
		return fault.New(fault.KindValidation, "total goal must be positive, got %d", campaign.TotalGoal)
	}
	if len(milestones) == 0 {
		return fault.New(fault.KindValidation, "at least one milestone is required")
	}

	var sum int64
	for i := range milestones {
		if milestones[i].Amount <= 0 {
			return fault.New(fault.KindValidation, "milestone %d amount must be positive", i)
		}
		sum += milestones[i].Amount
	}
	if sum != campaign.TotalGoal {
		return fault.New(fault.KindValidation,
			"milestone amounts (%d) must equal total goal (%d)", sum, campaign.TotalGoal)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		for i := range milestones {
			milestones[i].CampaignId = campaign.Id
			milestones[i].Ordinal = i
		}
		if err := tx.Create(&milestones).Error; err != nil {
			return err
		}
		return nil
	})
}

// GetCampaign 获取活动
func (s *Store) GetCampaign(id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := s.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotFound, "campaign %d not found", id)
		}
		return nil, err
	}
	return &campaign, nil
}

// ListCampaigns 按条件分页查询活动列表
func (s *Store) ListCampaigns(status, creator string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	query := s.db.Model(&model.CampaignModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if creator != "" {
		query = query.Where("creator_address = ?", creator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var campaigns []model.CampaignModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// TransitionCampaign CAS状态迁移：仅当前状态等于 from 时写入才成功
func (s *Store) TransitionCampaign(id int64, from, to model.CampaignStatus, extra map[string]interface{}) (*model.CampaignModel, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.Model(&model.CampaignModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		campaign, err := s.GetCampaign(id)
		if err != nil {
			return nil, err
		}
		return nil, fault.New(fault.KindIllegalTransition,
			"campaign %d is %s, expected %s", id, campaign.Status, from)
	}
	return s.GetCampaign(id)
}

// RecordContribution 记录贡献：累计支持者金额并更新活动募集额，单事务完成。
// 活动达到目标金额时自动迁移 active -> funded。
func (s *Store) RecordContribution(campaignId int64, address string, amount int64) (*model.BackerModel, error) {
	if amount <= 0 {
		return nil, fault.New(fault.KindValidation, "contribution amount must be positive, got %d", amount)
	}
	if address == "" {
		return nil, fault.New(fault.KindValidation, "backer address is required")
	}

	var backer model.BackerModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.KindNotFound, "campaign %d not found", campaignId)
			}
			return err
		}

		if campaign.Status != model.CampaignStatusActive && campaign.Status != model.CampaignStatusFunded {
			return fault.New(fault.KindWrongState,
				"campaign %d is %s, contributions are closed", campaignId, campaign.Status)
		}

		now := time.Now()
		newBacker := false

		// 累计已有支持者金额，不存在则插入
		res := tx.Model(&model.BackerModel{}).
			Where("campaign_id = ? AND address = ?", campaignId, address).
			Updates(map[string]interface{}{
				"amount":              gorm.Expr("amount + ?", amount),
				"last_contributed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			newBacker = true
			backer = model.BackerModel{
				CampaignId:         campaignId,
				Address:            address,
				Amount:             amount,
				FirstContributedAt: now,
				LastContributedAt:  now,
			}
			if err := tx.Create(&backer).Error; err != nil {
				return err
			}
		}

		campaignUpdates := map[string]interface{}{
			"funds_raised": gorm.Expr("funds_raised + ?", amount),
			"funds_locked": gorm.Expr("funds_locked + ?", amount),
		}
		if newBacker {
			campaignUpdates["backer_count"] = gorm.Expr("backer_count + 1")
		}
		if err := tx.Model(&model.CampaignModel{}).
			Where("id = ?", campaignId).
			Updates(campaignUpdates).Error; err != nil {
			return err
		}

		// 达到目标金额则进入 funded
		if campaign.Status == model.CampaignStatusActive &&
			campaign.FundsRaised+amount >= campaign.TotalGoal {
			tx.Model(&model.CampaignModel{}).
				Where("id = ? AND status = ?", campaignId, model.CampaignStatusActive).
				Updates(map[string]interface{}{
					"status":    model.CampaignStatusFunded,
					"funded_at": now,
				})
		}

		if !newBacker {
			if err := tx.Where("campaign_id = ? AND address = ?", campaignId, address).
				First(&backer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &backer, nil
}

// ApplyRelease 释放资金后扣减托管并累计已释放金额。
// WHERE 里的托管余额守卫保证并发释放不会把托管扣成负数。
func (s *Store) ApplyRelease(campaignId, amount int64) error {
	res := s.db.Model(&model.CampaignModel{}).
		Where("id = ? AND funds_locked >= ?", campaignId, amount).
		Updates(map[string]interface{}{
			"funds_locked":   gorm.Expr("funds_locked - ?", amount),
			"funds_released": gorm.Expr("funds_released + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fault.New(fault.KindInsufficientEscrow,
			"campaign %d escrow cannot cover %d", campaignId, amount)
	}
	return nil
}

// GetBacker 获取支持者记录
func (s *Store) GetBacker(campaignId int64, address string) (*model.BackerModel, error) {
	var backer model.BackerModel
	if err := s.db.Where("campaign_id = ? AND address = ?", campaignId, address).
		First(&backer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotABacker,
				"%s has not contributed to campaign %d", address, campaignId)
		}
		return nil, err
	}
	return &backer, nil
}

// ListBackers 获取活动全部支持者
func (s *Store) ListBackers(campaignId int64) ([]model.BackerModel, error) {
	var backers []model.BackerModel
	if err := s.db.Where("campaign_id = ?", campaignId).
		Order("first_contributed_at ASC").
		Find(&backers).Error; err != nil {
		return nil, err
	}
	return backers, nil
}
