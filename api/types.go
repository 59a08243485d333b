package api

import "github.com/BaSui01/agentquorum/types"

// =============================================================================
// 协调请求类型
// =============================================================================

// CoordinateRequest 协调请求
// @Description 对 Agent 池发起一次协调调用
type CoordinateRequest struct {
	// 查询文本
	Query string `json:"query" example:"How should a mild fever be managed at home?"`
	// 参与的 Agent ID；为空时使用整个 Agent 池
	AgentIDs []string `json:"agent_ids,omitempty"`
	// 可选的策略覆盖：sequential, parallel, hierarchical, consensus, adaptive
	Strategy string `json:"strategy,omitempty" example:"consensus"`
	// 调用上下文
	Context *types.Context `json:"context,omitempty"`
	// 请求超时，例如 "30s"
	Timeout string `json:"timeout,omitempty" example:"30s"`
}

// =============================================================================
// 策略目录类型
// =============================================================================

// StrategyInfo 策略目录条目，附带性能统计
type StrategyInfo struct {
	Kind                 string        `json:"kind"`
	Name                 string        `json:"name"`
	MinAgents            int           `json:"min_agents"`
	MaxAgents            int           `json:"max_agents"`
	RequiredCapabilities []string      `json:"required_capabilities,omitempty"`
	Performance          StrategyStats `json:"performance"`
}

// StrategyStats 协调延迟统计（毫秒）
type StrategyStats struct {
	Count int     `json:"count"`
	AvgMS float64 `json:"avg_ms"`
	MinMS float64 `json:"min_ms"`
	MaxMS float64 `json:"max_ms"`
}

// AgentInfo Agent 池条目
type AgentInfo struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Tier               int      `json:"tier"`
	Capabilities       []string `json:"capabilities,omitempty"`
	SpecializationTags []string `json:"specialization_tags,omitempty"`
}
