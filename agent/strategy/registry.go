package strategy

import (
	"fmt"
	"slices"
	"sync"
)

// Kind 策略种类（封闭枚举）
type Kind string

const (
	KindSequential   Kind = "sequential"
	KindParallel     Kind = "parallel"
	KindHierarchical Kind = "hierarchical"
	KindConsensus    Kind = "consensus"
	KindAdaptive     Kind = "adaptive"
)

// Kinds lists every strategy kind in registration order.
var Kinds = []Kind{KindSequential, KindParallel, KindHierarchical, KindConsensus, KindAdaptive}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// ParseKind converts a name to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !k.Valid() {
		return "", fmt.Errorf("unknown strategy kind: %q", name)
	}
	return k, nil
}

// Strategy 协调策略描述
type Strategy struct {
	Kind                 Kind     `json:"kind" yaml:"kind"`
	Name                 string   `json:"name" yaml:"name"`
	MinAgents            int      `json:"min_agents" yaml:"min_agents"`
	MaxAgents            int      `json:"max_agents" yaml:"max_agents"`
	RequiredCapabilities []string `json:"required_capabilities,omitempty" yaml:"required_capabilities"`
}

// Admits reports whether n agents fall within the strategy's bounds.
func (s Strategy) Admits(n int) bool {
	return n >= s.MinAgents && n <= s.MaxAgents
}

// MissingCapabilities returns the required capabilities absent from available.
func (s Strategy) MissingCapabilities(available []string) []string {
	var missing []string
	for _, c := range s.RequiredCapabilities {
		if !slices.Contains(available, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// DefaultStrategies 默认策略目录（顺序即平局裁决顺序）
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Kind: KindSequential, Name: string(KindSequential), MinAgents: 1, MaxAgents: 10},
		{Kind: KindParallel, Name: string(KindParallel), MinAgents: 2, MaxAgents: 20},
		{Kind: KindHierarchical, Name: string(KindHierarchical), MinAgents: 3, MaxAgents: 15},
		{Kind: KindConsensus, Name: string(KindConsensus), MinAgents: 3, MaxAgents: 10},
		{Kind: KindAdaptive, Name: string(KindAdaptive), MinAgents: 2, MaxAgents: 20},
	}
}

// Registry 策略注册表。启动时注册，调用期间只读。
type Registry struct {
	mu         sync.RWMutex
	strategies map[Kind]Strategy
}

// NewRegistry 创建包含默认目录的注册表
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[Kind]Strategy, len(Kinds))}
	for _, s := range DefaultStrategies() {
		r.strategies[s.Kind] = s
	}
	return r
}

// Register 替换某一种类的策略定义
func (r *Registry) Register(s Strategy) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown strategy kind: %q", s.Kind)
	}
	if s.MinAgents < 1 {
		return fmt.Errorf("strategy %s: min_agents must be >= 1", s.Kind)
	}
	if s.MaxAgents < s.MinAgents {
		return fmt.Errorf("strategy %s: max_agents (%d) < min_agents (%d)", s.Kind, s.MaxAgents, s.MinAgents)
	}
	if s.Name == "" {
		s.Name = string(s.Kind)
	}
	s.RequiredCapabilities = slices.Clone(s.RequiredCapabilities)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Kind] = s
	return nil
}

// Lookup 查找策略
func (r *Registry) Lookup(k Kind) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[k]
	return s, ok
}

// All 按注册顺序返回全部策略
func (r *Registry) All() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, 0, len(r.strategies))
	for _, k := range Kinds {
		if s, ok := r.strategies[k]; ok {
			out = append(out, s)
		}
	}
	return out
}
