package collaboration

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/BaSui01/agentquorum/agent/strategy"
)

// DefaultTrackerCapacity 每个策略保留的延迟样本数
const DefaultTrackerCapacity = 100

// Stats 单个策略的延迟统计
type Stats struct {
	Count int           `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// ring 固定容量 FIFO，满时覆盖最旧样本
type ring struct {
	buf  []time.Duration
	next int
	full bool
}

func (r *ring) push(d time.Duration) {
	r.buf[r.next] = d
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// values returns samples oldest first.
func (r *ring) values() []time.Duration {
	if !r.full {
		return append([]time.Duration(nil), r.buf[:r.next]...)
	}
	out := make([]time.Duration, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// PerformanceTracker 按策略记录协调延迟
type PerformanceTracker struct {
	mu       sync.Mutex
	capacity int
	rings    map[strategy.Kind]*ring
}

// NewPerformanceTracker 创建追踪器，capacity <= 0 时使用默认值
func NewPerformanceTracker(capacity int) *PerformanceTracker {
	if capacity <= 0 {
		capacity = DefaultTrackerCapacity
	}
	return &PerformanceTracker{
		capacity: capacity,
		rings:    make(map[strategy.Kind]*ring),
	}
}

// Record appends a latency sample, evicting the oldest when full.
func (t *PerformanceTracker) Record(kind strategy.Kind, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rings[kind]
	if !ok {
		r = &ring{buf: make([]time.Duration, t.capacity)}
		t.rings[kind] = r
	}
	r.push(d)
}

// Samples returns the retained samples for kind, oldest first.
func (t *PerformanceTracker) Samples(kind strategy.Kind) []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.rings[kind]; ok {
		return r.values()
	}
	return nil
}

// Stats returns {count, avg, min, max} for kind.
func (t *PerformanceTracker) Stats(kind strategy.Kind) Stats {
	return summarize(t.Samples(kind))
}

// Snapshot returns stats for every strategy with at least one sample.
func (t *PerformanceTracker) Snapshot() map[strategy.Kind]Stats {
	t.mu.Lock()
	kinds := make([]strategy.Kind, 0, len(t.rings))
	for k := range t.rings {
		kinds = append(kinds, k)
	}
	t.mu.Unlock()

	out := make(map[strategy.Kind]Stats, len(kinds))
	for _, k := range kinds {
		out[k] = t.Stats(k)
	}
	return out
}

func summarize(samples []time.Duration) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	xs := make([]float64, len(samples))
	s := Stats{Count: len(samples), Min: samples[0], Max: samples[0]}
	for i, d := range samples {
		xs[i] = float64(d)
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Avg = time.Duration(stat.Mean(xs, nil))
	return s
}
