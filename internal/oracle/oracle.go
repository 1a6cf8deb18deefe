package oracle

import (
	"context"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/model"
)

// EvaluateRequest 证明评估请求
type EvaluateRequest struct {
	CampaignId     int64  `json:"campaign_id"`
	MilestoneId    int64  `json:"milestone_id"`
	MilestoneTitle string `json:"milestone_title"`
	Description    string `json:"description"`
	ProofRef       string `json:"proof_ref"` // 证明材料的IPFS哈希
}

// Verdict 评估结论
type Verdict struct {
	Status     model.VerificationStatus `json:"status"`
	Confidence int                      `json:"confidence"` // 0-100
	Notes      string                   `json:"notes"`
}

// Oracle 验证预言机接口。实现必须在有界超时内返回，
// 对相同输入的重复评估应当安全（瞬时失败后可重试）。
type Oracle interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*Verdict, error)
	Identity() string // 结论落库时记录的预言机身份
}

// New 按配置构造预言机实现
func New(cfg *config.Config) Oracle {
	switch cfg.Oracle.Mode {
	case "http":
		return NewHTTPOracle(cfg.Oracle, cfg.Governance.OracleId)
	default:
		return NewHeuristicOracle(cfg.Governance.OracleId)
	}
}

// ValidateVerdict 结论合法性检查：五个枚举值之一、置信度0-100
func ValidateVerdict(status model.VerificationStatus, confidence int) error {
	if !model.ValidVerdict(status) {
		return fault.New(fault.KindValidation, "invalid verdict %q", status)
	}
	if confidence < 0 || confidence > 100 {
		return fault.New(fault.KindValidation, "confidence must be 0-100, got %d", confidence)
	}
	return nil
}
