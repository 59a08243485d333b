// Package synthesis 将一组 Agent 响应合成为统一的最终响应。
//
// 每种执行策略对应一个合成例程：
//   - sequential: 按执行顺序编号的步骤叙述
//   - parallel: 按 AgentID 排序的要点合并
//   - hierarchical: 主 Agent 叙述 + 专家附录
//   - consensus: 迭代合并草稿 + 异议附录
//
// 合成结果只依赖 (responses, resolutions, strategy)，不读取任何外部状态。
package synthesis
