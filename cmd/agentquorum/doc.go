/*
Package main 提供 AgentQuorum 服务端程序入口。

# 概述

cmd/agentquorum 是协调引擎的可执行入口，提供 HTTP 协调 API、
一次性 CLI 协调、健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）、Prometheus 指标采集与 OpenTelemetry 追踪。

# 核心类型

  - Server      主服务器，管理 API、Metrics 双端口及优雅关闭
  - Middleware  HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve（启动服务）、run（对池文件执行一次协调并输出 JSON）、version、health
  - 中间件链：Recovery、RequestID、OTelTracing、SecurityHeaders、
    RequestLogger、MetricsMiddleware、RateLimiter（基于 IP）
  - 历史存储：persistence.type 选择 memory / file / redis / database，
    database 通过 internal/database 打开连接池
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
