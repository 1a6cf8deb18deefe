package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/Greninja7505/GreenForge/internal/logger"
)

// StellarGateway 通过 stellar CLI 子进程调用 Soroban 合约。
// 所有失败（进程启动失败、非零退出、超时、输出不可解析）
// 都归一化为带分类的错误，绝不向上抛未处理异常。
type StellarGateway struct {
	config config.StellarConfig
}

// NewStellarGateway 创建Stellar网关
func NewStellarGateway(cfg config.StellarConfig) *StellarGateway {
	return &StellarGateway{config: cfg}
}

// Invoke 写调用
func (g *StellarGateway) Invoke(ctx context.Context, target, method string, args []string, idemKey string) (*Result, error) {
	contractId, err := g.contractId(target)
	if err != nil {
		return nil, err
	}

	cmd := []string{
		"contract", "invoke",
		"--id", contractId,
		"--source", g.config.SourceAccount,
		"--network", g.config.Network,
	}
	if idemKey != "" {
		cmd = append(cmd, "--memo", idemKey)
	}
	cmd = append(cmd, "--", method)
	cmd = append(cmd, args...)

	ctx, cancel := context.WithTimeout(ctx, g.config.InvokeTimeout)
	defer cancel()

	return g.run(ctx, method, cmd)
}

// Query 只读调用
func (g *StellarGateway) Query(ctx context.Context, target, method string, args []string) (*Result, error) {
	contractId, err := g.contractId(target)
	if err != nil {
		return nil, err
	}

	cmd := []string{
		"contract", "invoke",
		"--id", contractId,
		"--source", g.config.SourceAccount,
		"--network", g.config.Network,
		"--is-view",
		"--", method,
	}
	cmd = append(cmd, args...)

	ctx, cancel := context.WithTimeout(ctx, g.config.QueryTimeout)
	defer cancel()

	return g.run(ctx, method, cmd)
}

// run 执行CLI并归一化结果
func (g *StellarGateway) run(ctx context.Context, method string, args []string) (*Result, error) {
	execCmd := exec.CommandContext(ctx, g.config.CliPath, args...)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		logger.Error("Contract call %s timed out", method)
		return nil, fault.New(fault.KindGatewayTimeout, "contract call %s timed out", method)
	}

	if err != nil {
		stderrText := strings.TrimSpace(stderr.String())

		// 链端确认幂等键重复说明前一次调用已生效，按成功处理
		if isDuplicateAck(stderrText) {
			logger.Warn("Contract call %s acknowledged duplicate idempotency key, treating as success", method)
			return &Result{Data: map[string]interface{}{"duplicate": true}, Raw: stderrText}, nil
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if stderrText == "" {
				stderrText = "contract call failed"
			}
			logger.Error("Contract call %s failed: %s", method, stderrText)
			return nil, fault.New(fault.KindGatewayError, "contract call %s failed: %s", method, stderrText)
		}

		// 进程启动失败（CLI未安装等）
		logger.Error("Failed to launch stellar CLI: %v", err)
		return nil, fault.Wrap(fault.KindGatewayError, err, "failed to launch stellar CLI %q", g.config.CliPath)
	}

	return parseOutput(stdout.String()), nil
}

// contractId 解析合约标识
func (g *StellarGateway) contractId(target string) (string, error) {
	var id string
	switch target {
	case TargetCore:
		id = g.config.CoreContractId
	case TargetSbt:
		id = g.config.SbtContractId
	default:
		return "", fault.New(fault.KindValidation, "unknown contract target %q", target)
	}
	if id == "" {
		return "", fault.New(fault.KindGatewayError, "contract %q not deployed, check stellar config", target)
	}
	return id, nil
}

// parseOutput CLI输出可能是JSON也可能是裸文本
func parseOutput(out string) *Result {
	out = strings.TrimSpace(out)
	result := &Result{Raw: out}

	if out == "" {
		result.Data = map[string]interface{}{"result": "success"}
		return result
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err == nil {
		result.Data = data
		if tx, ok := data["tx_hash"].(string); ok {
			result.TxHash = tx
		}
		return result
	}

	// 非对象JSON（数字、字符串）或裸文本
	var scalar interface{}
	if err := json.Unmarshal([]byte(out), &scalar); err == nil {
		result.Data = map[string]interface{}{"result": scalar}
		return result
	}
	result.Data = map[string]interface{}{"raw_output": out}
	return result
}

// isDuplicateAck 识别链端对重复幂等键的确认
func isDuplicateAck(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "already applied") ||
		strings.Contains(lower, "txduplicate")
}
