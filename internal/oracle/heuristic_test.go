package oracle

import (
	"context"
	"testing"

	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
)

func TestHeuristicEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		proof       string
		wantStatus  model.VerificationStatus
	}{
		{
			name:       "empty proof rejected",
			title:      "Plant trees along the river",
			proof:      "",
			wantStatus: model.VerificationRejected,
		},
		{
			name:       "placeholder hash rejected",
			title:      "Plant trees along the river",
			proof:      "0000000000",
			wantStatus: model.VerificationRejected,
		},
		{
			name:       "too little context is suspicious",
			title:      "Phase 1",
			proof:      "QmProofHash",
			wantStatus: model.VerificationSuspicious,
		},
		{
			name:        "strong ecological signal completed",
			title:       "Reforestation sprint",
			description: "planted 4000 trees, sequestering carbon across the wetland buffer",
			proof:       "QmProofHash",
			wantStatus:  model.VerificationCompleted,
		},
		{
			name:        "single signal partial",
			title:       "Community workshop series",
			description: "ran five sessions introducing residents to solar installation basics",
			proof:       "QmProofHash",
			wantStatus:  model.VerificationPartial,
		},
		{
			name:        "generic claims partial",
			title:       "Community outreach campaign",
			description: "organized several public meetings and distributed printed flyers",
			proof:       "QmProofHash",
			wantStatus:  model.VerificationPartial,
		},
	}

	o := NewHeuristicOracle("oracle")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := o.Evaluate(context.Background(), EvaluateRequest{
				MilestoneTitle: tt.title,
				Description:    tt.description,
				ProofRef:       tt.proof,
			})
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if verdict.Status != tt.wantStatus {
				t.Errorf("status = %s (confidence %d), want %s",
					verdict.Status, verdict.Confidence, tt.wantStatus)
			}
			if verdict.Confidence < 0 || verdict.Confidence > 100 {
				t.Errorf("confidence %d out of range", verdict.Confidence)
			}
		})
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	o := NewHeuristicOracle("oracle")
	req := EvaluateRequest{
		MilestoneTitle: "Reforestation sprint",
		Description:    "planted trees, carbon capture verified",
		ProofRef:       "QmProofHash",
	}

	first, err := o.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := o.Evaluate(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if again.Status != first.Status || again.Confidence != first.Confidence {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestHeuristicCancelledContext(t *testing.T) {
	o := NewHeuristicOracle("oracle")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Evaluate(ctx, EvaluateRequest{ProofRef: "QmProofHash"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestValidateVerdict(t *testing.T) {
	tests := []struct {
		name       string
		status     model.VerificationStatus
		confidence int
		wantErr    bool
	}{
		{"completed in range", model.VerificationCompleted, 90, false},
		{"rejected at zero", model.VerificationRejected, 0, false},
		{"partial at hundred", model.VerificationPartial, 100, false},
		{"unknown status", model.VerificationStatus("great"), 50, true},
		{"not_submitted is not submittable", model.VerificationNotSubmitted, 50, true},
		{"negative confidence", model.VerificationCompleted, -1, true},
		{"confidence over 100", model.VerificationCompleted, 101, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVerdict(tt.status, tt.confidence)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVerdict(%s, %d) = %v", tt.status, tt.confidence, err)
			}
			if err != nil && fault.KindOf(err) != fault.KindValidation {
				t.Errorf("error kind = %s, want ValidationError", fault.KindOf(err))
			}
		})
	}
}
