package strategy

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/types"
)

// SelectorConfig 选择器打分权重
type SelectorConfig struct {
	CapabilityWeight    float64 `json:"capability_weight" yaml:"capability_weight"`
	CountWeight         float64 `json:"count_weight" yaml:"count_weight"`
	HighComplexity      float64 `json:"high_complexity" yaml:"high_complexity"`
	UrgencyThreshold    float64 `json:"urgency_threshold" yaml:"urgency_threshold"`
	ParallelUrgencyBias float64 `json:"parallel_urgency_bias" yaml:"parallel_urgency_bias"`
}

// DefaultSelectorConfig 默认选择器配置
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		CapabilityWeight:    0.3,
		CountWeight:         0.3,
		HighComplexity:      0.7,
		UrgencyThreshold:    0.7,
		ParallelUrgencyBias: 0.1,
	}
}

// Candidate 候选策略及其得分
type Candidate struct {
	Strategy Strategy `json:"strategy"`
	Score    float64  `json:"score"`
}

// Selector 策略选择器
type Selector struct {
	registry *Registry
	scorer   scoring.Scorer
	config   SelectorConfig
	logger   *zap.Logger
}

// NewSelector 创建策略选择器
func NewSelector(registry *Registry, scorer scoring.Scorer, config SelectorConfig, logger *zap.Logger) *Selector {
	if registry == nil {
		registry = NewRegistry()
	}
	if scorer == nil {
		scorer = scoring.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		registry: registry,
		scorer:   scorer,
		config:   config,
		logger:   logger.With(zap.String("component", "strategy_selector")),
	}
}

// Registry returns the registry backing the selector.
func (s *Selector) Registry() *Registry { return s.registry }

// Select 选择策略。
// override 非空时直接返回已注册的覆盖策略（要求由协调器校验）；
// 否则按数量边界与能力要求过滤后打分，最高分胜出，平局按注册顺序。
func (s *Selector) Select(profiles []types.AgentProfile, query string, cctx *types.Context, override *Kind) (Strategy, error) {
	if override != nil {
		st, ok := s.registry.Lookup(*override)
		if !ok {
			return Strategy{}, types.NewError(types.ErrNoSuitableStrategy,
				fmt.Sprintf("override strategy %q is not registered", *override)).
				WithStrategy(string(*override))
		}
		s.logger.Debug("strategy override", zap.String("strategy", st.Name))
		return st, nil
	}

	candidates := s.Rank(profiles, query, cctx)
	if len(candidates) == 0 {
		return Strategy{}, types.NewError(types.ErrNoSuitableStrategy, "no strategy admits the agent pool").
			WithReasoning(fmt.Sprintf("pool size %d, capabilities %v", len(profiles), types.CapabilityUnion(profiles)))
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	s.logger.Debug("strategy selected",
		zap.String("strategy", best.Strategy.Name),
		zap.Float64("score", best.Score),
		zap.Int("candidates", len(candidates)),
	)
	return best.Strategy, nil
}

// Rank 返回通过过滤的候选策略（按注册顺序）及其得分
func (s *Selector) Rank(profiles []types.AgentProfile, query string, cctx *types.Context) []Candidate {
	n := len(profiles)
	available := types.CapabilityUnion(profiles)
	complexity := s.scorer.Complexity(query)
	urgency := 0.0
	if cctx != nil {
		urgency = cctx.Urgency
	}

	var out []Candidate
	for _, st := range s.registry.All() {
		if !st.Admits(n) || len(st.MissingCapabilities(available)) > 0 {
			continue
		}
		score := s.config.CapabilityWeight +
			s.config.CountWeight*countOptimality(st, n) +
			s.complexityAlignment(st.Kind, complexity)
		if st.Kind == KindParallel && urgency >= s.config.UrgencyThreshold {
			score += s.config.ParallelUrgencyBias
		}
		out = append(out, Candidate{Strategy: st, Score: score})
	}
	return out
}

// countOptimality = max(0, 1 − |n − midpoint| / range)
func countOptimality(st Strategy, n int) float64 {
	span := float64(st.MaxAgents - st.MinAgents)
	if span <= 0 {
		return 1
	}
	mid := float64(st.MinAgents+st.MaxAgents) / 2
	return math.Max(0, 1-math.Abs(float64(n)-mid)/span)
}

func (s *Selector) complexityAlignment(k Kind, c float64) float64 {
	switch k {
	case KindSequential:
		return 0.2 * (1 - c)
	case KindParallel:
		return 0.2 * (1 - 2*math.Abs(c-0.5))
	case KindHierarchical:
		return 0.25 * c
	case KindConsensus:
		if c > s.config.HighComplexity {
			return 0.3
		}
		return 0.1 * c
	case KindAdaptive:
		return 0.1
	default:
		return 0
	}
}
