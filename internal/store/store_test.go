package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
		NamingStrategy: &schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return New(db)
}

func seedCampaign(t *testing.T, s *Store, goal int64, amounts ...int64) *model.CampaignModel {
	t.Helper()

	campaign := &model.CampaignModel{
		Title:          "Mangrove restoration",
		CreatorAddress: "GCREATOR",
		TotalGoal:      goal,
		EndTime:        time.Now().Add(30 * 24 * time.Hour),
	}
	milestones := make([]model.MilestoneModel, len(amounts))
	for i, amount := range amounts {
		milestones[i] = model.MilestoneModel{
			Title:  "Phase",
			Amount: amount,
			Status: model.MilestoneStatusPending,
		}
	}
	if err := s.CreateCampaign(campaign, milestones); err != nil {
		t.Fatalf("failed to seed campaign: %v", err)
	}
	return campaign
}

func TestCreateCampaignValidation(t *testing.T) {
	tests := []struct {
		name     string
		campaign model.CampaignModel
		amounts  []int64
		wantKind fault.Kind
	}{
		{
			name:     "missing title",
			campaign: model.CampaignModel{CreatorAddress: "G1", TotalGoal: 100},
			amounts:  []int64{100},
			wantKind: fault.KindValidation,
		},
		{
			name:     "missing creator",
			campaign: model.CampaignModel{Title: "t", TotalGoal: 100},
			amounts:  []int64{100},
			wantKind: fault.KindValidation,
		},
		{
			name:     "zero goal",
			campaign: model.CampaignModel{Title: "t", CreatorAddress: "G1"},
			amounts:  []int64{100},
			wantKind: fault.KindValidation,
		},
		{
			name:     "no milestones",
			campaign: model.CampaignModel{Title: "t", CreatorAddress: "G1", TotalGoal: 100},
			wantKind: fault.KindValidation,
		},
		{
			name:     "milestone sum mismatch",
			campaign: model.CampaignModel{Title: "t", CreatorAddress: "G1", TotalGoal: 100},
			amounts:  []int64{60, 60},
			wantKind: fault.KindValidation,
		},
		{
			name:     "negative milestone amount",
			campaign: model.CampaignModel{Title: "t", CreatorAddress: "G1", TotalGoal: 100},
			amounts:  []int64{150, -50},
			wantKind: fault.KindValidation,
		},
	}

	s := newTestStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			milestones := make([]model.MilestoneModel, len(tt.amounts))
			for i, a := range tt.amounts {
				milestones[i] = model.MilestoneModel{Title: "m", Amount: a}
			}
			err := s.CreateCampaign(&tt.campaign, milestones)
			if fault.KindOf(err) != tt.wantKind {
				t.Errorf("got %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestCreateCampaignAssignsOrdinals(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 300, 100, 100, 100)

	milestones, err := s.ListMilestones(campaign.Id)
	if err != nil {
		t.Fatalf("ListMilestones: %v", err)
	}
	if len(milestones) != 3 {
		t.Fatalf("got %d milestones, want 3", len(milestones))
	}
	for i, ms := range milestones {
		if ms.Ordinal != i {
			t.Errorf("milestone %d has ordinal %d", i, ms.Ordinal)
		}
		if ms.CampaignId != campaign.Id {
			t.Errorf("milestone %d not linked to campaign", i)
		}
	}
}

func TestTransitionCampaignCAS(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)

	if _, err := s.TransitionCampaign(campaign.Id,
		model.CampaignStatusDraft, model.CampaignStatusActive, nil); err != nil {
		t.Fatalf("draft -> active: %v", err)
	}

	// 第二次同样的迁移必须失败：前置状态已不成立
	_, err := s.TransitionCampaign(campaign.Id,
		model.CampaignStatusDraft, model.CampaignStatusActive, nil)
	if fault.KindOf(err) != fault.KindIllegalTransition {
		t.Errorf("repeated transition: got %v, want IllegalTransition", err)
	}
}

func TestRecordContributionAccumulates(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 1000, 1000)
	if _, err := s.TransitionCampaign(campaign.Id,
		model.CampaignStatusDraft, model.CampaignStatusActive, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := s.RecordContribution(campaign.Id, "GALICE", 300); err != nil {
		t.Fatalf("first contribution: %v", err)
	}
	backer, err := s.RecordContribution(campaign.Id, "GALICE", 200)
	if err != nil {
		t.Fatalf("second contribution: %v", err)
	}
	if backer.Amount != 500 {
		t.Errorf("backer amount = %d, want 500", backer.Amount)
	}

	got, err := s.GetCampaign(campaign.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.FundsRaised != 500 || got.FundsLocked != 500 {
		t.Errorf("funds raised/locked = %d/%d, want 500/500", got.FundsRaised, got.FundsLocked)
	}
	if got.BackerCount != 1 {
		t.Errorf("backer count = %d, want 1 (same address twice)", got.BackerCount)
	}
}

func TestRecordContributionReachesGoal(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 1000, 1000)
	if _, err := s.TransitionCampaign(campaign.Id,
		model.CampaignStatusDraft, model.CampaignStatusActive, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := s.RecordContribution(campaign.Id, "GALICE", 400); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordContribution(campaign.Id, "GBOB", 600); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetCampaign(campaign.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.CampaignStatusFunded {
		t.Errorf("status = %s, want funded", got.Status)
	}
	if got.FundedAt == nil {
		t.Error("funded_at not set")
	}
	if got.BackerCount != 2 {
		t.Errorf("backer count = %d, want 2", got.BackerCount)
	}
}

func TestRecordContributionClosedCampaign(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)

	// draft 不收款
	if _, err := s.RecordContribution(campaign.Id, "GALICE", 10); fault.KindOf(err) != fault.KindWrongState {
		t.Errorf("contribution to draft: got %v, want WrongState", err)
	}
}

func openVoting(t *testing.T, s *Store, msId int64) {
	t.Helper()
	if _, err := s.TransitionMilestone(msId,
		model.MilestoneStatusPending, model.MilestoneStatusVotingOpen, nil); err != nil {
		t.Fatalf("failed to open voting: %v", err)
	}
}

func TestInsertVoteUniqueness(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)
	milestones, _ := s.ListMilestones(campaign.Id)
	msId := milestones[0].Id
	openVoting(t, s, msId)

	if err := s.InsertVote(&model.VoteModel{
		MilestoneId: msId, VoterAddress: "GALICE", Approve: true, Weight: 10,
	}); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	err := s.InsertVote(&model.VoteModel{
		MilestoneId: msId, VoterAddress: "GALICE", Approve: false, Weight: 10,
	})
	if fault.KindOf(err) != fault.KindAlreadyVoted {
		t.Errorf("second vote: got %v, want AlreadyVoted", err)
	}

	ms, err := s.GetMilestone(msId)
	if err != nil {
		t.Fatal(err)
	}
	if ms.VotesFor != 10 || ms.VotesAgainst != 0 || ms.VoterCount != 1 {
		t.Errorf("tally = %d/%d/%d, duplicate vote must not pollute it",
			ms.VotesFor, ms.VotesAgainst, ms.VoterCount)
	}
}

func TestInsertVoteRequiresVotingOpen(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)
	milestones, _ := s.ListMilestones(campaign.Id)
	msId := milestones[0].Id
	openVoting(t, s, msId)

	// 自动批准把里程碑关出投票期后，迟到的插入必须整体回滚
	if _, err := s.TransitionMilestone(msId,
		model.MilestoneStatusVotingOpen, model.MilestoneStatusApproved, nil); err != nil {
		t.Fatal(err)
	}

	err := s.InsertVote(&model.VoteModel{
		MilestoneId: msId, VoterAddress: "GLATE", Approve: false, Weight: 20,
	})
	if fault.KindOf(err) != fault.KindMilestoneNotVotable {
		t.Fatalf("late vote: got %v, want MilestoneNotVotable", err)
	}

	if _, err := s.GetVote(msId, "GLATE"); fault.KindOf(err) != fault.KindNotFound {
		t.Error("rolled-back vote row still present")
	}
	ms, err := s.GetMilestone(msId)
	if err != nil {
		t.Fatal(err)
	}
	if ms.VotesAgainst != 0 || ms.VoterCount != 0 {
		t.Errorf("tally = %d/%d, late vote must not touch it", ms.VotesAgainst, ms.VoterCount)
	}
}

func TestClearVotesResetsForNewCycle(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)
	milestones, _ := s.ListMilestones(campaign.Id)
	msId := milestones[0].Id
	openVoting(t, s, msId)

	if err := s.InsertVote(&model.VoteModel{
		MilestoneId: msId, VoterAddress: "GALICE", Approve: false, Weight: 7,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearVotes(msId); err != nil {
		t.Fatalf("ClearVotes: %v", err)
	}

	// 同一支持者在新周期可以再投
	if err := s.InsertVote(&model.VoteModel{
		MilestoneId: msId, VoterAddress: "GALICE", Approve: true, Weight: 7,
	}); err != nil {
		t.Errorf("vote after ClearVotes: %v", err)
	}
}

func TestApplyReleaseGuardsEscrow(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 1000, 1000)
	if _, err := s.TransitionCampaign(campaign.Id,
		model.CampaignStatusDraft, model.CampaignStatusActive, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordContribution(campaign.Id, "GALICE", 1000); err != nil {
		t.Fatal(err)
	}

	if err := s.ApplyRelease(campaign.Id, 400); err != nil {
		t.Fatalf("first release: %v", err)
	}
	got, _ := s.GetCampaign(campaign.Id)
	if got.FundsLocked != 600 || got.FundsReleased != 400 {
		t.Errorf("locked/released = %d/%d, want 600/400", got.FundsLocked, got.FundsReleased)
	}

	// 超出托管余额必须拒绝
	err := s.ApplyRelease(campaign.Id, 700)
	if fault.KindOf(err) != fault.KindInsufficientEscrow {
		t.Errorf("over-release: got %v, want InsufficientEscrow", err)
	}
}

func TestGetBackerNotABacker(t *testing.T) {
	s := newTestStore(t)
	campaign := seedCampaign(t, s, 100, 100)

	_, err := s.GetBacker(campaign.Id, "GSTRANGER")
	if fault.KindOf(err) != fault.KindNotABacker {
		t.Errorf("got %v, want NotABacker", err)
	}
}

func TestGetOpenReleaseRecord(t *testing.T) {
	s := newTestStore(t)

	record, err := s.GetOpenReleaseRecord(42)
	if err != nil {
		t.Fatal(err)
	}
	if record != nil {
		t.Fatal("expected nil for milestone without records")
	}

	if err := s.CreateReleaseRecord(&model.ReleaseRecordModel{
		CampaignId: 1, MilestoneId: 42, IdempotencyKey: "release-abc",
		Payout: 97, Fee: 3, Status: model.ReleaseStatusFailed,
	}); err != nil {
		t.Fatal(err)
	}

	record, err = s.GetOpenReleaseRecord(42)
	if err != nil {
		t.Fatal(err)
	}
	if record == nil || record.IdempotencyKey != "release-abc" {
		t.Errorf("open record not found for retry, got %+v", record)
	}

	if err := s.UpdateReleaseRecord(record.Id, map[string]interface{}{
		"status": model.ReleaseStatusConfirmed,
	}); err != nil {
		t.Fatal(err)
	}
	record, err = s.GetOpenReleaseRecord(42)
	if err != nil {
		t.Fatal(err)
	}
	if record != nil {
		t.Error("confirmed record must not be reused")
	}
}

func TestEnsureReleaseRecordConverges(t *testing.T) {
	s := newTestStore(t)

	first, err := s.EnsureReleaseRecord(&model.ReleaseRecordModel{
		CampaignId: 1, MilestoneId: 7, IdempotencyKey: "release-7-1",
		Payout: 97, Fee: 3, Status: model.ReleaseStatusPending,
	})
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	// 同一个键的第二次创建必须返回已有记录而不是第二行
	second, err := s.EnsureReleaseRecord(&model.ReleaseRecordModel{
		CampaignId: 1, MilestoneId: 7, IdempotencyKey: "release-7-1",
		Payout: 97, Fee: 3, Status: model.ReleaseStatusPending,
	})
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.Id != first.Id {
		t.Errorf("got record %d, want existing record %d", second.Id, first.Id)
	}
}
