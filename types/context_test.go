package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := WithRunID(WithTraceID(context.Background(), "trace-1"), "run-1")

	traceID, ok := TraceID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "trace-1", traceID)

	runID, ok := RunID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "run-1", runID)

	_, ok = TraceID(context.Background())
	assert.False(t, ok)
}

func TestContext_WithPriorResponsesDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := &Context{Urgency: 0.4, Values: map[string]any{"k": "v"}}
	next := base.WithPriorResponses(AgentResponse{AgentID: "a"})
	last := next.WithPriorResponses(AgentResponse{AgentID: "b"})

	assert.Empty(t, base.PriorResponses)
	assert.Len(t, next.PriorResponses, 1)
	assert.Equal(t, []string{"a", "b"}, ResponseAgentIDs(last.PriorResponses))
	assert.Equal(t, 0.4, last.Urgency)

	last.Values["k"] = "changed"
	assert.Equal(t, "v", base.Values["k"])
}

func TestContext_ContextComplexity(t *testing.T) {
	t.Parallel()

	var nilCtx *Context
	assert.Equal(t, 0.0, nilCtx.ContextComplexity())

	explicit := 1.7
	assert.Equal(t, 1.0, (&Context{Complexity: &explicit}).ContextComplexity())

	inferred := &Context{PriorResponses: make([]AgentResponse, 3)}
	assert.InDelta(t, 0.3, inferred.ContextComplexity(), 1e-9)
}

func TestPerformanceTimings_Overhead(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, PerformanceTimings{}.Overhead())
	assert.InDelta(t, 0.25, PerformanceTimings{Execution: 75, Total: 100}.Overhead(), 1e-9)
}

func TestSortResponsesByAgent(t *testing.T) {
	t.Parallel()

	in := []AgentResponse{{AgentID: "c"}, {AgentID: "a"}, {AgentID: "b"}}
	out := SortResponsesByAgent(in)
	assert.Equal(t, []string{"a", "b", "c"}, ResponseAgentIDs(out))
	assert.Equal(t, "c", in[0].AgentID)
}

func TestCapabilityUnion(t *testing.T) {
	t.Parallel()

	got := CapabilityUnion([]AgentProfile{
		{ID: "a", Capabilities: []string{"analysis", "review"}},
		{ID: "b", Capabilities: []string{"analysis", "triage"}},
	})
	assert.Equal(t, []string{"analysis", "review", "triage"}, got)
}
