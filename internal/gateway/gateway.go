package gateway

import (
	"context"
)

// Result 合约调用的归一化结果
type Result struct {
	Data   map[string]interface{} `json:"data"`
	TxHash string                 `json:"tx_hash"`
	Raw    string                 `json:"raw,omitempty"`
}

// Gateway 合约调用网关。状态机只依赖此接口，不关心调用机制
// （CLI子进程、RPC或测试替身）。
type Gateway interface {
	// Invoke 写调用。idemKey 为幂等键，超时重试必须复用同一个键，
	// 链端对重复键的确认视为成功。
	Invoke(ctx context.Context, target, method string, args []string, idemKey string) (*Result, error)

	// Query 只读调用，无交易费，用于账本与链上状态的对账。
	Query(ctx context.Context, target, method string, args []string) (*Result, error)
}

// 合约标识
const (
	TargetCore = "core" // 核心合约：活动、里程碑、投票、托管
	TargetSbt  = "sbt"  // SBT声誉合约
)
