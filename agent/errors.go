package agent

import "github.com/BaSui01/agentquorum/types"

var (
	// ErrNoSuitableStrategy 没有满足条件的协调策略
	ErrNoSuitableStrategy = types.NewError(types.ErrNoSuitableStrategy, "no suitable coordination strategy")

	// ErrStrategyRequirementsUnmet 策略的 Agent 数量或能力要求未满足
	ErrStrategyRequirementsUnmet = types.NewError(types.ErrStrategyRequirementsUnmet, "strategy requirements unmet")

	// ErrAgentExecutionFailure 单个 Agent 执行失败（仅在本地恢复）
	ErrAgentExecutionFailure = types.NewError(types.ErrAgentExecutionFailure, "agent execution failed")

	// ErrInsufficientResponses 过滤后没有可用响应
	ErrInsufficientResponses = types.NewError(types.ErrInsufficientResponses, "insufficient responses")

	// ErrConsensusBuildingFailure 共识算法失败（由兜底结果恢复）
	ErrConsensusBuildingFailure = types.NewError(types.ErrConsensusBuildingFailure, "consensus building failed")

	// ErrSynthesisFailure 无法合成统一响应
	ErrSynthesisFailure = types.NewError(types.ErrSynthesisFailure, "synthesis failed")
)
