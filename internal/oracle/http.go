package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
)

// HTTPOracle 调用外部AI评估服务。服务接收里程碑上下文与证明引用，
// 返回 {status, confidence, notes}。
type HTTPOracle struct {
	endpoint string
	apiKey   string
	identity string
	client   *http.Client
}

// NewHTTPOracle 创建HTTP预言机
func NewHTTPOracle(cfg config.OracleConfig, identity string) *HTTPOracle {
	return &HTTPOracle{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.ApiKey,
		identity: identity,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Evaluate 评估证明。超时返回 GatewayTimeout，状态机保持
// proof_submitted 等待人工重试，不会静默推进。
func (o *HTTPOracle) Evaluate(ctx context.Context, req EvaluateRequest) (*Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fault.New(fault.KindGatewayTimeout, "oracle evaluation timed out")
		}
		return nil, fault.Wrap(fault.KindGatewayError, err, "oracle evaluation request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.KindGatewayError,
			"oracle evaluation returned status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fault.Wrap(fault.KindGatewayError, err, "malformed oracle response")
	}

	if err := ValidateVerdict(verdict.Status, verdict.Confidence); err != nil {
		return nil, fault.Wrap(fault.KindGatewayError, err,
			"oracle returned invalid verdict %q", verdict.Status)
	}
	return &verdict, nil
}

// Identity 预言机身份
func (o *HTTPOracle) Identity() string {
	return o.identity
}
