package types

import "time"

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictContradiction ConflictType = "contradiction"
	ConflictOverlap       ConflictType = "overlap"
	ConflictResource      ConflictType = "resource"
	ConflictTiming        ConflictType = "timing"
)

// Severity 冲突严重程度
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Conflict 响应集合中的分歧
type Conflict struct {
	ID                  string       `json:"id"`
	Type                ConflictType `json:"type"`
	ParticipantAgentIDs []string     `json:"participant_agent_ids"`
	Severity            Severity     `json:"severity"`
	Terms               []string     `json:"terms,omitempty"` // e.g. "yes/no"
	Description         string       `json:"description,omitempty"`
	DetectedAt          time.Time    `json:"detected_at"`
}

// ConsensusLevel 共识等级
type ConsensusLevel string

const (
	ConsensusLow       ConsensusLevel = "low"
	ConsensusMedium    ConsensusLevel = "medium"
	ConsensusHigh      ConsensusLevel = "high"
	ConsensusUnanimous ConsensusLevel = "unanimous"
)

// RecommendedAction 共识建议动作
type RecommendedAction string

const (
	ActionAccept     RecommendedAction = "accept"
	ActionSynthesize RecommendedAction = "synthesize"
	ActionEscalate   RecommendedAction = "escalate"
	ActionVote       RecommendedAction = "vote"
)

// ConsensusAlgorithm 共识算法
type ConsensusAlgorithm string

const (
	AlgorithmWeightedAverage    ConsensusAlgorithm = "weighted_average"
	AlgorithmMajorityRule       ConsensusAlgorithm = "majority_rule"
	AlgorithmSemanticSimilarity ConsensusAlgorithm = "semantic_similarity"
	AlgorithmExpertWeighted     ConsensusAlgorithm = "expert_weighted"
)

// ConsensusResult 共识结果
type ConsensusResult struct {
	Score               float64            `json:"consensus_score"`
	Level               ConsensusLevel     `json:"consensus_level"`
	CommonElements      []string           `json:"common_elements"`
	ConflictingElements []string           `json:"conflicting_elements"`
	RecommendedAction   RecommendedAction  `json:"recommended_action"`
	Algorithm           ConsensusAlgorithm `json:"algorithm"`
	Reasoning           string             `json:"reasoning"`
	// Fallback 为 true 表示算法失败后使用了固定兜底结果
	Fallback bool `json:"fallback,omitempty"`
}

// Resolution 针对某个冲突（或共识策略下整个响应集合）的共识结论
type Resolution struct {
	ID                  string          `json:"id"`
	ConflictID          string          `json:"conflict_id,omitempty"` // 为空表示全集共识
	ParticipantAgentIDs []string        `json:"participant_agent_ids"`
	Consensus           ConsensusResult `json:"consensus"`
}

// FinalResponse 合成后的统一响应
type FinalResponse struct {
	Strategy     string   `json:"strategy"`
	Content      string   `json:"content"`
	Confidence   float64  `json:"confidence"`
	QualityScore float64  `json:"quality_score"`
	Contributors []string `json:"contributors"`
}

// PerformanceTimings 各阶段耗时
type PerformanceTimings struct {
	Selection         time.Duration `json:"selection"`
	Execution         time.Duration `json:"execution"`
	ConflictDetection time.Duration `json:"conflict_detection"`
	Consensus         time.Duration `json:"consensus"`
	Synthesis         time.Duration `json:"synthesis"`
	Total             time.Duration `json:"total"`
}

// Overhead returns the fraction of total time not spent executing agents.
func (t PerformanceTimings) Overhead() float64 {
	if t.Total <= 0 {
		return 0
	}
	overhead := float64(t.Total-t.Execution) / float64(t.Total)
	if overhead < 0 {
		return 0
	}
	return overhead
}

// CoordinationMetadata 协调元数据
type CoordinationMetadata struct {
	ParticipatingAgents  []string  `json:"participating_agents"`
	FailedAgents         []string  `json:"failed_agents,omitempty"`
	CoordinationOverhead float64   `json:"coordination_overhead_fraction"`
	QualityScore         float64   `json:"quality_score"`
	Confidence           float64   `json:"confidence"`
	ConsensusDraft       string    `json:"consensus_draft,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// CoordinationResult 是对调用方暴露的唯一结果契约
type CoordinationResult struct {
	ID           string `json:"id"`
	StrategyName string `json:"strategy_name"`
	// ExecutedStrategy 实际执行的策略（adaptive 委派后的目标策略）
	ExecutedStrategy string               `json:"executed_strategy"`
	Responses        []AgentResponse      `json:"responses"`
	Conflicts        []Conflict           `json:"conflicts"`
	Resolutions      []Resolution         `json:"resolutions"`
	FinalResponse    FinalResponse        `json:"final_response"`
	Timings          PerformanceTimings   `json:"performance_timings"`
	Metadata         CoordinationMetadata `json:"metadata"`
}
