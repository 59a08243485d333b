package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DefaultCatalog(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	all := r.All()
	require.Len(t, all, 5)
	for i, k := range Kinds {
		assert.Equal(t, k, all[i].Kind, "registration order")
	}

	seq, ok := r.Lookup(KindSequential)
	require.True(t, ok)
	assert.Equal(t, 1, seq.MinAgents)
	assert.True(t, seq.Admits(1))
	assert.False(t, seq.Admits(0))
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(Strategy{Kind: KindConsensus, MinAgents: 2, MaxAgents: 4, RequiredCapabilities: []string{"review"}}))

	st, ok := r.Lookup(KindConsensus)
	require.True(t, ok)
	assert.Equal(t, "consensus", st.Name, "name defaults to kind")
	assert.Equal(t, []string{"review"}, st.RequiredCapabilities)

	assert.Error(t, r.Register(Strategy{Kind: "swarm", MinAgents: 1, MaxAgents: 2}))
	assert.Error(t, r.Register(Strategy{Kind: KindParallel, MinAgents: 0, MaxAgents: 2}))
	assert.Error(t, r.Register(Strategy{Kind: KindParallel, MinAgents: 3, MaxAgents: 2}))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("hierarchical")
	require.NoError(t, err)
	assert.Equal(t, KindHierarchical, k)

	_, err = ParseKind("swarm")
	assert.Error(t, err)
}

func TestStrategy_MissingCapabilities(t *testing.T) {
	t.Parallel()

	st := Strategy{RequiredCapabilities: []string{"analysis", "review"}}
	assert.Equal(t, []string{"review"}, st.MissingCapabilities([]string{"analysis"}))
	assert.Empty(t, st.MissingCapabilities([]string{"analysis", "review", "x"}))
}
