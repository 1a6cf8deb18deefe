package oracle

import (
	"context"
	"strings"

	"github.com/Greninja7505/GreenForge/internal/model"
)

// HeuristicOracle 无外部依赖的启发式评估，开发与降级场景使用。
// 同一输入总是得到同一结论，重试安全。
type HeuristicOracle struct {
	identity string
}

// NewHeuristicOracle 创建启发式预言机
func NewHeuristicOracle(identity string) *HeuristicOracle {
	return &HeuristicOracle{identity: identity}
}

// 生态相关关键词，命中越多可信度越高
var impactKeywords = []string{
	"co2", "carbon", "tree", "trees", "sapling", "ocean", "solar",
	"reforestation", "recycling", "biodiversity", "wetland",
}

// Evaluate 评估证明
func (o *HeuristicOracle) Evaluate(ctx context.Context, req EvaluateRequest) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 空证明或明显占位的哈希直接拒绝
	proof := strings.TrimSpace(req.ProofRef)
	if proof == "" || strings.Trim(proof, "0") == "" {
		return &Verdict{
			Status:     model.VerificationRejected,
			Confidence: 95,
			Notes:      "proof reference is empty or placeholder",
		}, nil
	}

	text := strings.ToLower(req.MilestoneTitle + " " + req.Description)
	words := len(strings.Fields(text))

	hits := 0
	for _, kw := range impactKeywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}

	switch {
	case words < 5:
		return &Verdict{
			Status:     model.VerificationSuspicious,
			Confidence: 40,
			Notes:      "milestone context too short to evaluate, flagged for manual review",
		}, nil
	case hits >= 2:
		return &Verdict{
			Status:     model.VerificationCompleted,
			Confidence: 90,
			Notes:      "proof consistent with stated ecological milestone",
		}, nil
	case hits == 1:
		return &Verdict{
			Status:     model.VerificationPartial,
			Confidence: 70,
			Notes:      "proof plausible but lacks specific impact metrics",
		}, nil
	default:
		return &Verdict{
			Status:     model.VerificationPartial,
			Confidence: 55,
			Notes:      "general claims detected without specific ecological backing",
		}, nil
	}
}

// Identity 预言机身份
func (o *HeuristicOracle) Identity() string {
	return o.identity
}
