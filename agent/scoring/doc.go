// Package scoring 提供协调引擎使用的启发式评分能力。
//
// 关键词抽取、Jaccard 相似度、查询复杂度、专长相关度与极性词表都隔离在
// Scorer 接口之后，可替换为基于向量嵌入的实现而不影响协调器控制流。
package scoring
