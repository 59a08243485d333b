// Package config 提供 AgentQuorum 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → AGENTQUORUM_* 环境变量 的顺序叠加，
// 最后运行注册的验证器。Coordination 段覆盖协调引擎的全部阈值，
// 通过 CoordinatorConfig 与 StoreConfig 转换为各组件的配置结构。
package config
