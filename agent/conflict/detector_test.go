package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/types"
)

func resp(id, content string) types.AgentResponse {
	return types.AgentResponse{AgentID: id, Content: content, Confidence: 0.8}
}

func TestDetector_YesNoContradiction(t *testing.T) {
	t.Parallel()

	d := NewDetector(zap.NewNop())
	conflicts := d.Detect([]types.AgentResponse{
		resp("b", "No, the dosage is too high."),
		resp("a", "Yes, proceed with the dosage."),
	})

	require.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, types.ConflictContradiction, c.Type)
	assert.Equal(t, types.SeverityMedium, c.Severity)
	assert.Equal(t, []string{"a", "b"}, c.ParticipantAgentIDs)
	assert.Equal(t, []string{"yes/no"}, c.Terms)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.DetectedAt.IsZero())
}

func TestDetector_NoContradiction(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	assert.Empty(t, d.Detect([]types.AgentResponse{
		resp("a", "Rest for two days."),
		resp("b", "Hydrate and rest."),
		resp("c", "Monitor temperature."),
	}))
	assert.Empty(t, d.Detect([]types.AgentResponse{resp("a", "yes no")}), "single response never conflicts")
}

func TestDetector_MergesPairsWithSameParticipants(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	conflicts := d.Detect([]types.AgentResponse{
		resp("a", "Yes, that is correct."),
		resp("b", "No, that is incorrect."),
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, []string{"yes/no", "correct/incorrect"}, conflicts[0].Terms)
	assert.Contains(t, conflicts[0].Description, "correct/incorrect")
}

func TestDetector_DistinctParticipantSets(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	conflicts := d.Detect([]types.AgentResponse{
		resp("a", "Yes."),
		resp("b", "No."),
		resp("c", "You should not operate."),
		resp("d", "You should operate."),
	})
	require.Len(t, conflicts, 2)
	assert.Equal(t, []string{"a", "b"}, conflicts[0].ParticipantAgentIDs)
	assert.Equal(t, []string{"c", "d"}, conflicts[1].ParticipantAgentIDs)
}

func TestDetector_SelfContradictionIgnored(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	assert.Empty(t, d.Detect([]types.AgentResponse{
		resp("a", "Yes and no."),
		resp("b", "Maybe later."),
	}))
}

type staticRule struct{ conflicts []types.Conflict }

func (r staticRule) Type() types.ConflictType { return types.ConflictOverlap }
func (r staticRule) Detect([]types.AgentResponse) []types.Conflict {
	return append([]types.Conflict(nil), r.conflicts...)
}

func TestDetector_CustomRule(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil,
		NewContradictionRule(scoring.DefaultPolarityTable()),
		staticRule{conflicts: []types.Conflict{{Type: types.ConflictOverlap, Severity: types.SeverityLow}}},
	)
	conflicts := d.Detect([]types.AgentResponse{resp("a", "x"), resp("b", "y")})
	require.Len(t, conflicts, 1)
	assert.Equal(t, types.ConflictOverlap, conflicts[0].Type)
	assert.NotEmpty(t, conflicts[0].ID)
}
