// Package api 定义 AgentQuorum HTTP API 的请求与响应类型。
//
// # API Overview
//
//   - POST /api/v1/coordinate   对 Agent 池发起协调，返回 CoordinationResult
//   - GET  /api/v1/strategies   策略目录与每个策略的延迟统计
//   - GET  /api/v1/agents       当前 Agent 池
//   - GET  /api/v1/history      最近的协调历史，支持 strategy 与 limit 参数
//   - GET  /health, /healthz, /ready, /version
//
// 所有响应使用 handlers.Response 信封：success、data、error、timestamp。
package api
