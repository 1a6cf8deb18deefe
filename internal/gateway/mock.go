package gateway

import (
	"context"
	"sync"

	"github.com/Greninja7505/GreenForge/internal/fault"
)

// MockGateway 测试与本地开发用的网关替身。
// 记录全部调用，按幂等键去重，可注入失败。
type MockGateway struct {
	mu       sync.Mutex
	calls    []MockCall
	seenKeys map[string]bool

	// FailNext 非空时下一次 Invoke 返回该分类的失败
	FailNext fault.Kind
}

// MockCall 记录的一次调用
type MockCall struct {
	Target  string
	Method  string
	Args    []string
	IdemKey string
	View    bool
}

// NewMockGateway 创建网关替身
func NewMockGateway() *MockGateway {
	return &MockGateway{seenKeys: make(map[string]bool)}
}

// Invoke 写调用
func (g *MockGateway) Invoke(ctx context.Context, target, method string, args []string, idemKey string) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailNext != "" {
		kind := g.FailNext
		g.FailNext = ""
		return nil, fault.New(kind, "injected gateway failure on %s", method)
	}

	g.calls = append(g.calls, MockCall{Target: target, Method: method, Args: args, IdemKey: idemKey})

	// 重复幂等键按成功确认，与链端语义一致
	if idemKey != "" {
		if g.seenKeys[idemKey] {
			return &Result{Data: map[string]interface{}{"duplicate": true}}, nil
		}
		g.seenKeys[idemKey] = true
	}

	return &Result{
		Data:   map[string]interface{}{"result": "success"},
		TxHash: "mock_tx_" + method,
	}, nil
}

// Query 只读调用
func (g *MockGateway) Query(ctx context.Context, target, method string, args []string) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, MockCall{Target: target, Method: method, Args: args, View: true})
	return &Result{Data: map[string]interface{}{"result": "success"}}, nil
}

// Calls 返回已记录的调用
func (g *MockGateway) Calls() []MockCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]MockCall, len(g.calls))
	copy(out, g.calls)
	return out
}

// InvokeCount 统计某方法的写调用次数
func (g *MockGateway) InvokeCount(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, c := range g.calls {
		if !c.View && c.Method == method {
			count++
		}
	}
	return count
}
