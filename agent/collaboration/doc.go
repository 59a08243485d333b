// Package collaboration 提供多 Agent 协调器：选择执行策略、调用 Agent、
// 检测冲突、构建共识并合成统一响应。
//
// 每次协调调用按固定状态机推进：
//
//	SELECT_STRATEGY → VALIDATE_REQUIREMENTS → EXECUTE → DETECT_CONFLICTS →
//	BUILD_CONSENSUS → SYNTHESIZE → RECORD_METRICS → DONE
//
// 任一阶段失败进入 ERROR，返回的 *types.Error 记录失败阶段与尝试的策略。
// 可变状态（性能追踪、冲突/决议日志、历史存储）集中在注入的 State 中，
// 互不相关的 Coordinator 之间不共享任何隐藏状态。
package collaboration
