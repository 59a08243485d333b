// Copyright (c) AgentQuorum Authors.
// Licensed under the MIT License.

/*
Package types 提供 AgentQuorum 多 Agent 协调引擎的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 agent、collaboration、
consensus、synthesis、api 等上层模块提供统一的数据契约，以避免循环依赖。

# 核心类型

  - AgentProfile Agent 描述（能力、层级、专长标签、置信度提示）
  - AgentResponse 单次 Agent 调用产生的不可变响应
  - Context 协调上下文（紧急度、复杂度信号、前序响应）
  - Conflict 响应集合中检测到的分歧
  - ConsensusResult 共识得分、等级与建议动作
  - Resolution 针对冲突的共识结论
  - FinalResponse 合成后的统一响应
  - CoordinationResult 对调用方暴露的唯一结果契约
  - Error / ErrorCode 结构化错误体系，携带策略名、阶段与推理说明

# 主要能力

  - Context 快照：WithPriorResponses 返回副本，阶段之间传递不可变快照
  - 错误工具链：NewError / WithCause / IsErrorCode / GetErrorCode
  - Context 传播：WithTraceID / WithRunID
*/
package types
