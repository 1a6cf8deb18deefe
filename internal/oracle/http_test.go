package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
)

func newHTTPOracleFor(url string) *HTTPOracle {
	return NewHTTPOracle(config.OracleConfig{
		Endpoint: url,
		ApiKey:   "secret",
		Timeout:  2 * time.Second,
	}, "oracle")
}

func TestHTTPOracleEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProofRef == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(Verdict{
			Status:     model.VerificationCompleted,
			Confidence: 88,
			Notes:      "verified against satellite imagery",
		})
	}))
	defer srv.Close()

	verdict, err := newHTTPOracleFor(srv.URL).Evaluate(context.Background(), EvaluateRequest{
		MilestoneId: 1,
		ProofRef:    "QmProofHash",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if verdict.Status != model.VerificationCompleted || verdict.Confidence != 88 {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestHTTPOracleNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newHTTPOracleFor(srv.URL).Evaluate(context.Background(), EvaluateRequest{ProofRef: "x"})
	if fault.KindOf(err) != fault.KindGatewayError {
		t.Errorf("got %v, want GatewayError", err)
	}
}

func TestHTTPOracleInvalidVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "excellent",
			"confidence": 90,
		})
	}))
	defer srv.Close()

	_, err := newHTTPOracleFor(srv.URL).Evaluate(context.Background(), EvaluateRequest{ProofRef: "x"})
	if fault.KindOf(err) != fault.KindGatewayError {
		t.Errorf("invalid verdict accepted: %v", err)
	}
}

func TestHTTPOracleTimeout(t *testing.T) {
	// 处理器阻塞到测试显式放行，Evaluate 返回后关闭 release，
	// srv.Close 才能等到处理器退出
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newHTTPOracleFor(srv.URL).Evaluate(ctx, EvaluateRequest{ProofRef: "x"})
	if fault.KindOf(err) != fault.KindGatewayTimeout {
		t.Errorf("got %v, want GatewayTimeout", err)
	}
}
