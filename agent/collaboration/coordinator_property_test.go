package collaboration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/types"
)

// 顺序策略：第 k 个 Agent 只看到 1..k-1 中成功 Agent 的输出
func TestProperty_SequentialContextContainsOnlyPredecessors(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), zap.NewNop())

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		agents := make([]*testAgent, n)
		for i := range agents {
			tier := rapid.IntRange(1, 3).Draw(t, fmt.Sprintf("tier%d", i))
			agents[i] = newTestAgent(fmt.Sprintf("agent-%02d", i), tier, fmt.Sprintf("step %d", i), 0.5)
			if rapid.Float64Range(0, 1).Draw(t, fmt.Sprintf("fail%d", i)) < 0.2 {
				agents[i].err = errors.New("unavailable")
			}
		}

		result, err := c.Coordinate(context.Background(), Request{
			Query:    "walk through it",
			Agents:   pool(agents...),
			Strategy: kind(strategy.KindSequential),
		})

		byID := make(map[string]*testAgent, n)
		for _, a := range agents {
			byID[a.profile.ID] = a
		}
		order := c.sequentialOrder(&run{query: "walk through it", agents: pool(agents...)})

		var succeeded []string
		for _, ag := range order {
			a := byID[ag.Profile().ID]
			if a.calls.Load() != 1 {
				t.Fatalf("agent %s called %d times", a.profile.ID, a.calls.Load())
			}
			if seen := a.lastSeen(); !slices.Equal(seen, succeeded) {
				t.Fatalf("agent %s saw %v, want %v", a.profile.ID, seen, succeeded)
			}
			if a.err == nil {
				succeeded = append(succeeded, a.profile.ID)
			}
		}

		if len(succeeded) == 0 {
			if !types.IsErrorCode(err, types.ErrInsufficientResponses) {
				t.Fatalf("expected insufficient responses, got %v", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("coordinate: %v", err)
		}
		if got := types.ResponseAgentIDs(result.Responses); !slices.Equal(got, succeeded) {
			t.Fatalf("responses %v, want %v", got, succeeded)
		}
	})
}
