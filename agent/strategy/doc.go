// Package strategy 提供协调策略注册表与策略选择器。
//
// 策略种类是封闭枚举 Kind（sequential / parallel / hierarchical /
// consensus / adaptive），注册表按固定顺序保存每种策略的 Agent 数量边界
// 与能力要求；选择器根据 Agent 池、查询复杂度与上下文信号打分择优。
package strategy
