package collaboration

import (
	"slices"
	"sync"

	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/types"
)

// StateConfig 协调状态配置
type StateConfig struct {
	// TrackerCapacity 每个策略的延迟样本数
	TrackerCapacity int `json:"tracker_capacity" yaml:"tracker_capacity"`
	// LogCapacity 冲突/决议日志保留条数
	LogCapacity int `json:"log_capacity" yaml:"log_capacity"`
}

// DefaultStateConfig 默认状态配置
func DefaultStateConfig() StateConfig {
	return StateConfig{TrackerCapacity: DefaultTrackerCapacity, LogCapacity: 1000}
}

// State 协调器拥有的全部可变状态
type State struct {
	Tracker *PerformanceTracker
	// History 可选的历史存储，为 nil 时不落盘
	History persistence.HistoryStore

	mu          sync.Mutex
	logCapacity int
	conflicts   []types.Conflict
	resolutions []types.Resolution
}

// NewState 创建协调状态
func NewState(config StateConfig, history persistence.HistoryStore) *State {
	if config.LogCapacity <= 0 {
		config.LogCapacity = DefaultStateConfig().LogCapacity
	}
	return &State{
		Tracker:     NewPerformanceTracker(config.TrackerCapacity),
		History:     history,
		logCapacity: config.LogCapacity,
	}
}

func (s *State) appendLog(conflicts []types.Conflict, resolutions []types.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = trimTail(append(s.conflicts, conflicts...), s.logCapacity)
	s.resolutions = trimTail(append(s.resolutions, resolutions...), s.logCapacity)
}

// Conflicts returns a copy of the conflict log, oldest first.
func (s *State) Conflicts() []types.Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.conflicts)
}

// Resolutions returns a copy of the resolution log, oldest first.
func (s *State) Resolutions() []types.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.resolutions)
}

func trimTail[T any](xs []T, capacity int) []T {
	if len(xs) <= capacity {
		return xs
	}
	return slices.Clone(xs[len(xs)-capacity:])
}
