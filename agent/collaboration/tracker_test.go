package collaboration

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/types"
)

func TestPerformanceTracker_Stats(t *testing.T) {
	t.Parallel()

	tr := NewPerformanceTracker(0)
	assert.Equal(t, Stats{}, tr.Stats(strategy.KindParallel))

	for _, ms := range []int{30, 10, 20} {
		tr.Record(strategy.KindParallel, time.Duration(ms)*time.Millisecond)
	}
	s := tr.Stats(strategy.KindParallel)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 10*time.Millisecond, s.Min)
	assert.Equal(t, 30*time.Millisecond, s.Max)
	assert.Equal(t, 20*time.Millisecond, s.Avg)

	snap := tr.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, s, snap[strategy.KindParallel])
}

func TestPerformanceTracker_EvictsOldest(t *testing.T) {
	t.Parallel()

	tr := NewPerformanceTracker(DefaultTrackerCapacity)
	for i := 1; i <= 150; i++ {
		tr.Record(strategy.KindSequential, time.Duration(i))
	}
	samples := tr.Samples(strategy.KindSequential)
	assert.Len(t, samples, 100)
	assert.Equal(t, time.Duration(51), samples[0])
	assert.Equal(t, time.Duration(150), samples[99])
	assert.Equal(t, time.Duration(51), tr.Stats(strategy.KindSequential).Min)
}

func TestPerformanceTracker_Concurrent(t *testing.T) {
	t.Parallel()

	tr := NewPerformanceTracker(1000)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Record(strategy.KindConsensus, time.Millisecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, tr.Stats(strategy.KindConsensus).Count)
}

func TestState_LogIsBounded(t *testing.T) {
	t.Parallel()

	s := NewState(StateConfig{LogCapacity: 2}, nil)
	s.appendLog([]types.Conflict{{ID: "1"}, {ID: "2"}}, nil)
	s.appendLog([]types.Conflict{{ID: "3"}}, []types.Resolution{{ID: "r"}})

	conflicts := s.Conflicts()
	assert.Len(t, conflicts, 2)
	assert.Equal(t, "2", conflicts[0].ID)
	assert.Equal(t, "3", conflicts[1].ID)
	assert.Len(t, s.Resolutions(), 1)
}
