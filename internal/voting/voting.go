package voting

import (
	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/model"
	"github.com/Greninja7505/GreenForge/internal/store"
)

// VotingPower 二次方投票权重 = floor(sqrt(贡献金额))，牛顿迭代整数平方根。
// 权重随资本亚线性增长，限制大额支持者的支配力。
func VotingPower(contribution int64) int64 {
	if contribution <= 0 {
		return 0
	}
	n := uint64(contribution)
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return int64(x)
}

// Engine 二次方投票引擎
type Engine struct {
	store  *store.Store
	config *config.Config
}

// NewEngine 创建投票引擎
func NewEngine(st *store.Store, cfg *config.Config) *Engine {
	return &Engine{store: st, config: cfg}
}

// VoteResult 投票结果
type VoteResult struct {
	MilestoneId  int64 `json:"milestone_id"`
	Weight       int64 `json:"weight"`
	Approve      bool  `json:"approve"`
	VotesFor     int64 `json:"votes_for"`
	VotesAgainst int64 `json:"votes_against"`
	VoterCount   int64 `json:"voter_count"`
	Approved     bool  `json:"approved"` // 本票是否使里程碑进入 approved
}

// TallyResult 计票结果
type TallyResult struct {
	VotesFor     int64 `json:"votes_for"`
	VotesAgainst int64 `json:"votes_against"`
	VoterCount   int64 `json:"voter_count"`
	Approvable   bool  `json:"approvable"`
}

// CastVote 投票。权重在投票时按支持者当前累计贡献计算，不做缓存。
// 重复投票由存储层唯一约束裁决，这里不做竞态检查。
func (e *Engine) CastVote(milestoneId int64, voter string, approve bool) (*VoteResult, error) {
	milestone, err := e.store.GetMilestone(milestoneId)
	if err != nil {
		return nil, err
	}

	backer, err := e.store.GetBacker(milestone.CampaignId, voter)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusVotingOpen {
		return nil, fault.New(fault.KindMilestoneNotVotable,
			"milestone %d is %s, voting is not open", milestoneId, milestone.Status)
	}

	weight := VotingPower(backer.Amount)
	vote := &model.VoteModel{
		MilestoneId:  milestoneId,
		VoterAddress: voter,
		Approve:      approve,
		Weight:       weight,
	}
	if err := e.store.InsertVote(vote); err != nil {
		return nil, err
	}

	milestone, err = e.store.GetMilestone(milestoneId)
	if err != nil {
		return nil, err
	}

	result := &VoteResult{
		MilestoneId:  milestoneId,
		Weight:       weight,
		Approve:      approve,
		VotesFor:     milestone.VotesFor,
		VotesAgainst: milestone.VotesAgainst,
		VoterCount:   milestone.VoterCount,
	}

	// 计票首次满足审批规则时关闭投票。CAS保证并发投票只有一票触发迁移。
	if e.Approvable(milestone.VotesFor, milestone.VotesAgainst, milestone.VoterCount) {
		if _, err := e.store.TransitionMilestone(milestoneId,
			model.MilestoneStatusVotingOpen, model.MilestoneStatusApproved, nil); err == nil {
			result.Approved = true
			logger.Info("Milestone %d approved by community vote (for: %d, against: %d, voters: %d)",
				milestoneId, milestone.VotesFor, milestone.VotesAgainst, milestone.VoterCount)
		}
	}

	return result, nil
}

// Tally 只读计票
func (e *Engine) Tally(milestoneId int64) (*TallyResult, error) {
	milestone, err := e.store.GetMilestone(milestoneId)
	if err != nil {
		return nil, err
	}
	return &TallyResult{
		VotesFor:     milestone.VotesFor,
		VotesAgainst: milestone.VotesAgainst,
		VoterCount:   milestone.VoterCount,
		Approvable:   e.Approvable(milestone.VotesFor, milestone.VotesAgainst, milestone.VoterCount),
	}, nil
}

// Approvable 审批规则：赞成权重严格大于反对权重，且投票人数达到法定下限。
// 平票不通过。
func (e *Engine) Approvable(votesFor, votesAgainst, voterCount int64) bool {
	return votesFor > votesAgainst && voterCount >= e.config.Governance.MinVoters
}
