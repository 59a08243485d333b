// 版权所有 2024 AgentQuorum Authors. 版权所有。
// 此源代码的使用由 MIT 许可证规范，
// 该许可证可以在 LICENSE 文件中找到。

/*
Package handlers 提供 AgentQuorum HTTP API 的请求处理器实现。

# 核心类型

  - CoordinationHandler 协调调用、策略目录、Agent 池与协调历史
  - HealthHandler       服务健康检查（/health, /healthz, /ready, /version）
  - Response            统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo           结构化错误信息，协调失败时带上 strategy 与 stage
  - PingCheck           以 Ping 函数实现的健康检查（历史存储、数据库连接池）

# 错误映射

types.ErrorCode 到 HTTP 状态码的映射见 mapErrorCodeToHTTPStatus：
请求错误 400，策略不可用 422，限流 429，Agent 全部失败 502，超时 504。
5xx 响应不会携带底层错误详情。
*/
package handlers
