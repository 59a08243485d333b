package types

import (
	"slices"
	"time"
)

// AgentProfile describes an agent in the pool. It is owned by the caller and
// treated as immutable for the duration of one coordination call.
type AgentProfile struct {
	ID                 string   `json:"id" yaml:"id"`
	DisplayName        string   `json:"display_name" yaml:"display_name"`
	Capabilities       []string `json:"capabilities,omitempty" yaml:"capabilities"`
	Tier               int      `json:"tier" yaml:"tier"` // 1 = highest authority
	SpecializationTags []string `json:"specialization_tags,omitempty" yaml:"specialization_tags"`
	ConfidenceHint     float64  `json:"confidence_hint" yaml:"confidence_hint"`
}

// HasCapability reports whether the agent declares capability c.
func (p AgentProfile) HasCapability(c string) bool {
	return slices.Contains(p.Capabilities, c)
}

// Name returns the display name, falling back to the ID.
func (p AgentProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}

// CapabilityUnion returns the sorted union of capabilities across profiles.
func CapabilityUnion(profiles []AgentProfile) []string {
	seen := make(map[string]struct{})
	for _, p := range profiles {
		for _, c := range p.Capabilities {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// AgentResponse is produced once per successful agent invocation.
type AgentResponse struct {
	AgentID    string    `json:"agent_id"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// SortResponsesByAgent returns a copy of rs stably ordered by agent ID.
func SortResponsesByAgent(rs []AgentResponse) []AgentResponse {
	out := slices.Clone(rs)
	slices.SortStableFunc(out, func(a, b AgentResponse) int {
		switch {
		case a.AgentID < b.AgentID:
			return -1
		case a.AgentID > b.AgentID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// ResponseAgentIDs lists the agent IDs of rs in order.
func ResponseAgentIDs(rs []AgentResponse) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.AgentID)
	}
	return ids
}
