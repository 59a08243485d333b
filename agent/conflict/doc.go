// Package conflict 提供 Agent 响应集合的冲突检测。
//
// 检测器由若干 Rule 组成；当前只安装了基于极性词表的矛盾（contradiction）
// 规则，overlap / resource / timing 类型保留为扩展点。
package conflict
