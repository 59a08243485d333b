// 版权所有 2024 AgentQuorum Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、
协调流程与数据库连接三个维度。

# 概述

Collector 通过 promauto 注册全部指标，默认注册到全局 Registry，
也可用 NewCollectorWithRegisterer 指定独立 Registry（测试中常用）。
所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - 协调指标：按 strategy/status 统计协调次数与端到端耗时。
  - Agent 调用：按 strategy/status 统计调用次数与耗时。
  - 冲突与共识：冲突类型计数、算法/等级计数、算法失败回退计数。
  - 数据库指标：历史库连接池的活跃/空闲连接数。

Collector 实现 collaboration.MetricsRecorder，可直接通过
collaboration.WithMetrics 注入协调器。
*/
package metrics
