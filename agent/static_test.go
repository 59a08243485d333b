package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentquorum/types"
)

const testPool = `
agents:
  - id: cardiology
    display_name: Cardiology Reviewer
    capabilities: [analysis, review]
    tier: 1
    specialization_tags: [cardiology]
    confidence_hint: 0.8
    response: "Yes, {{query}} is supported."
  - id: triage
    capabilities: [triage]
    specialization_tags: [emergency]
    confidence: 0.6
    response: "Escalate."
  - id: broken
    fail: true
`

func TestParseStaticPool(t *testing.T) {
	t.Parallel()

	agents, err := ParseStaticPool([]byte(testPool))
	require.NoError(t, err)
	require.Len(t, agents, 3)

	p := agents[0].Profile()
	assert.Equal(t, "cardiology", p.ID)
	assert.Equal(t, "Cardiology Reviewer", p.Name())
	assert.Equal(t, []string{"analysis", "review"}, p.Capabilities)
	assert.True(t, p.HasCapability("review"))
	assert.Equal(t, 1, agents[1].Profile().Tier, "tier defaults to 1")

	resp, err := agents[0].Execute(context.Background(), "aspirin", nil)
	require.NoError(t, err)
	assert.Equal(t, "Yes, aspirin is supported.", resp.Content)
	assert.Equal(t, 0.8, resp.Confidence, "falls back to confidence hint")
	assert.Equal(t, "cardiology", resp.AgentID)

	resp, err = agents[1].Execute(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.6, resp.Confidence)

	_, err = agents[2].Execute(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestParseStaticPool_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseStaticPool([]byte("agents:\n  - id: a\n  - id: a\n  - tier: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "id is required")

	_, err = ParseStaticPool([]byte("agents: ["))
	assert.Error(t, err)
}

func TestLoadStaticPool(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPool), 0o644))

	agents, err := LoadStaticPool(path)
	require.NoError(t, err)
	assert.Len(t, Profiles(agents), 3)

	_, err = LoadStaticPool(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStaticAgent_LatencyHonoursContext(t *testing.T) {
	t.Parallel()

	a := NewStaticAgent(StaticSpec{
		AgentProfile: types.AgentProfile{ID: "slow"},
		Response:     "late",
		Latency:      time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Execute(ctx, "q", nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFunc_FillsDefaults(t *testing.T) {
	t.Parallel()

	f := NewFunc(types.AgentProfile{ID: "fn"}, func(_ context.Context, q string, _ *types.Context) (*types.AgentResponse, error) {
		return &types.AgentResponse{Content: q, Confidence: 1.5}, nil
	})
	resp, err := f.Execute(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "fn", resp.AgentID)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.False(t, resp.Timestamp.IsZero())

	nilResp := NewFunc(types.AgentProfile{ID: "nil"}, func(context.Context, string, *types.Context) (*types.AgentResponse, error) {
		return nil, nil
	})
	_, err = nilResp.Execute(context.Background(), "q", nil)
	assert.Error(t, err)

	_, err = NewFunc(types.AgentProfile{ID: "none"}, nil).Execute(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	wrapped := types.NewError(types.ErrInsufficientResponses, "all agents failed").WithStrategy("parallel")
	assert.True(t, errors.Is(wrapped, ErrInsufficientResponses))
	assert.False(t, errors.Is(wrapped, ErrSynthesisFailure))
}
