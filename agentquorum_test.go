package agentquorum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/config"
	"github.com/BaSui01/agentquorum/types"
)

func echoAgent(id string, tier int, content string) agent.Agent {
	return agent.NewFunc(types.AgentProfile{ID: id, Tier: tier},
		func(ctx context.Context, query string, cctx *types.Context) (*types.AgentResponse, error) {
			return &types.AgentResponse{Content: content, Confidence: 0.9}, nil
		})
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(WithLogger(zap.NewNop()))
	require.NoError(t, err)

	result, err := c.Coordinate(context.Background(), collaboration.Request{
		Query:  "Summarize revenue",
		Agents: []agent.Agent{echoAgent("solo", 1, "Revenue grew.")},
	})
	require.NoError(t, err)
	assert.Equal(t, "sequential", result.StrategyName)
	assert.Contains(t, result.FinalResponse.Content, "Revenue grew.")
}

func TestNew_WithHistoryStore(t *testing.T) {
	history := persistence.NewMemoryHistoryStore(persistence.DefaultStoreConfig())
	defer history.Close()

	c, err := New(WithLogger(zap.NewNop()), WithHistoryStore(history))
	require.NoError(t, err)

	_, err = c.Coordinate(context.Background(), collaboration.Request{
		Query:  "q",
		Agents: []agent.Agent{echoAgent("solo", 1, "answer")},
	})
	require.NoError(t, err)

	records, err := history.ListRecords(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Coordination.AcceptThreshold = 0.2
	cfg.Coordination.SynthesizeThreshold = 0.8

	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}
