package gateway

import (
	"context"
	"testing"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		wantKey string
		wantTx  string
	}{
		{"json object", `{"campaign_id": 7, "tx_hash": "abc123"}`, "campaign_id", "abc123"},
		{"scalar number", `42`, "result", ""},
		{"scalar string", `"ok"`, "result", ""},
		{"bare text", `transaction submitted`, "raw_output", ""},
		{"empty output", ``, "result", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOutput(tt.out)
			if _, ok := result.Data[tt.wantKey]; !ok {
				t.Errorf("parseOutput(%q).Data missing %q: %v", tt.out, tt.wantKey, result.Data)
			}
			if result.TxHash != tt.wantTx {
				t.Errorf("tx_hash = %q, want %q", result.TxHash, tt.wantTx)
			}
		})
	}
}

func TestIsDuplicateAck(t *testing.T) {
	tests := []struct {
		stderr string
		want   bool
	}{
		{"Error: transaction already applied to ledger", true},
		{"error: TxDUPLICATE", true},
		{"duplicate memo detected", true},
		{"Error: insufficient balance", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isDuplicateAck(tt.stderr); got != tt.want {
			t.Errorf("isDuplicateAck(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}

func TestContractIdResolution(t *testing.T) {
	g := NewStellarGateway(config.StellarConfig{
		CoreContractId: "CCORE",
		SbtContractId:  "CSBT",
	})

	if id, err := g.contractId(TargetCore); err != nil || id != "CCORE" {
		t.Errorf("core: %q, %v", id, err)
	}
	if id, err := g.contractId(TargetSbt); err != nil || id != "CSBT" {
		t.Errorf("sbt: %q, %v", id, err)
	}
	if _, err := g.contractId("nft"); fault.KindOf(err) != fault.KindValidation {
		t.Errorf("unknown target: %v", err)
	}

	bare := NewStellarGateway(config.StellarConfig{})
	if _, err := bare.contractId(TargetCore); fault.KindOf(err) != fault.KindGatewayError {
		t.Errorf("undeployed contract: %v", err)
	}
}

func TestMockGatewayIdempotency(t *testing.T) {
	g := NewMockGateway()
	ctx := context.Background()

	first, err := g.Invoke(ctx, TargetCore, "release_funds", []string{"--payout", "97"}, "release-key")
	if err != nil {
		t.Fatal(err)
	}
	if _, dup := first.Data["duplicate"]; dup {
		t.Error("first call flagged as duplicate")
	}

	// 同一幂等键重试：确认成功但标记重复，链上不再转账
	second, err := g.Invoke(ctx, TargetCore, "release_funds", []string{"--payout", "97"}, "release-key")
	if err != nil {
		t.Fatal(err)
	}
	if dup, _ := second.Data["duplicate"].(bool); !dup {
		t.Error("retry with same key not acknowledged as duplicate")
	}

	if g.InvokeCount("release_funds") != 2 {
		t.Errorf("recorded %d calls, want 2", g.InvokeCount("release_funds"))
	}
}

func TestMockGatewayFailureInjection(t *testing.T) {
	g := NewMockGateway()
	g.FailNext = fault.KindGatewayTimeout

	_, err := g.Invoke(context.Background(), TargetCore, "fund_campaign", nil, "k1")
	if fault.KindOf(err) != fault.KindGatewayTimeout {
		t.Fatalf("injected failure: %v", err)
	}

	// 失败只注入一次，下一次调用正常
	if _, err := g.Invoke(context.Background(), TargetCore, "fund_campaign", nil, "k2"); err != nil {
		t.Errorf("call after injected failure: %v", err)
	}
}
