package store

import (
	"errors"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
	"gorm.io/gorm"
)

// InsertVote 插入投票并累加计票，单事务完成。
// (milestone_id, voter_address) 唯一索引是防止重复投票的最终裁决：
// 并发重复投票在这里竞争，输者得到 AlreadyVoted，计票不会被污染。
// 计票更新带投票中状态守卫：里程碑已被并发的自动批准关闭时，
// 零行生效会回滚插入并返回 MilestoneNotVotable。
func (s *Store) InsertVote(vote *model.VoteModel) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.New(fault.KindAlreadyVoted,
					"%s already voted on milestone %d", vote.VoterAddress, vote.MilestoneId)
			}
			return err
		}

		updates := map[string]interface{}{
			"voter_count": gorm.Expr("voter_count + 1"),
		}
		if vote.Approve {
			updates["votes_for"] = gorm.Expr("votes_for + ?", vote.Weight)
		} else {
			updates["votes_against"] = gorm.Expr("votes_against + ?", vote.Weight)
		}

		res := tx.Model(&model.MilestoneModel{}).
			Where("id = ? AND status = ?", vote.MilestoneId, model.MilestoneStatusVotingOpen).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fault.New(fault.KindMilestoneNotVotable,
				"milestone %d is not open for voting", vote.MilestoneId)
		}
		return nil
	})
}

// GetVote 获取某支持者在某里程碑上的投票
func (s *Store) GetVote(milestoneId int64, voter string) (*model.VoteModel, error) {
	var vote model.VoteModel
	if err := s.db.Where("milestone_id = ? AND voter_address = ?", milestoneId, voter).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindNotFound,
				"no vote by %s on milestone %d", voter, milestoneId)
		}
		return nil, err
	}
	return &vote, nil
}

// ClearVotes 清空里程碑投票，重新提交证明开启新一轮投票周期时调用
func (s *Store) ClearVotes(milestoneId int64) error {
	return s.db.Where("milestone_id = ?", milestoneId).Delete(&model.VoteModel{}).Error
}

// ListVotes 获取里程碑全部投票
func (s *Store) ListVotes(milestoneId int64) ([]model.VoteModel, error) {
	var votes []model.VoteModel
	if err := s.db.Where("milestone_id = ?", milestoneId).
		Order("created_at ASC").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}
