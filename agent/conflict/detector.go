package conflict

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/types"
)

// Rule 冲突检测规则
type Rule interface {
	Type() types.ConflictType
	Detect(responses []types.AgentResponse) []types.Conflict
}

// Detector 冲突检测器
type Detector struct {
	rules  []Rule
	logger *zap.Logger
	now    func() time.Time
}

// NewDetector 创建冲突检测器；rules 为空时安装默认矛盾规则
func NewDetector(logger *zap.Logger, rules ...Rule) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rules) == 0 {
		rules = []Rule{NewContradictionRule(scoring.DefaultPolarityTable())}
	}
	return &Detector{
		rules:  rules,
		logger: logger.With(zap.String("component", "conflict_detector")),
		now:    time.Now,
	}
}

// Detect 扫描响应集合，返回检测到的冲突（按规则顺序）
func (d *Detector) Detect(responses []types.AgentResponse) []types.Conflict {
	var out []types.Conflict
	for _, rule := range d.rules {
		found := rule.Detect(responses)
		for i := range found {
			if found[i].ID == "" {
				found[i].ID = uuid.New().String()
			}
			if found[i].DetectedAt.IsZero() {
				found[i].DetectedAt = d.now()
			}
		}
		if len(found) > 0 {
			d.logger.Debug("conflicts detected",
				zap.String("type", string(rule.Type())),
				zap.Int("count", len(found)),
			)
		}
		out = append(out, found...)
	}
	return out
}

// ContradictionRule 极性矛盾规则：同一极性对的肯定侧与否定侧
// 同时出现在响应集合中即构成矛盾，严重程度固定为 medium。
type ContradictionRule struct {
	table scoring.PolarityTable
}

// NewContradictionRule 创建矛盾规则
func NewContradictionRule(table scoring.PolarityTable) *ContradictionRule {
	return &ContradictionRule{table: table}
}

// Type implements Rule.
func (r *ContradictionRule) Type() types.ConflictType { return types.ConflictContradiction }

// Detect implements Rule. Conflicts with identical participant sets are merged.
func (r *ContradictionRule) Detect(responses []types.AgentResponse) []types.Conflict {
	if len(responses) < 2 {
		return nil
	}

	type sides struct {
		positive map[string]struct{}
		negative map[string]struct{}
	}
	perPair := make([]sides, len(r.table))
	for i := range perPair {
		perPair[i] = sides{positive: map[string]struct{}{}, negative: map[string]struct{}{}}
	}

	for _, resp := range responses {
		for i, m := range r.table.Match(resp.Content) {
			if m.Positive {
				perPair[i].positive[resp.AgentID] = struct{}{}
			}
			if m.Negative {
				perPair[i].negative[resp.AgentID] = struct{}{}
			}
		}
	}

	var out []types.Conflict
	index := make(map[string]int)
	for i, s := range perPair {
		if len(s.positive) == 0 || len(s.negative) == 0 {
			continue
		}
		participants := unionKeys(s.positive, s.negative)
		// 同一个 Agent 自相矛盾不构成 Agent 之间的冲突
		if len(participants) < 2 {
			continue
		}
		label := r.table[i].Label()
		key := strings.Join(participants, "\x00")
		if j, ok := index[key]; ok {
			out[j].Terms = append(out[j].Terms, label)
			out[j].Description = describe(out[j].Terms)
			continue
		}
		index[key] = len(out)
		out = append(out, types.Conflict{
			Type:                types.ConflictContradiction,
			ParticipantAgentIDs: participants,
			Severity:            types.SeverityMedium,
			Terms:               []string{label},
			Description:         describe([]string{label}),
		})
	}
	return out
}

func unionKeys(a, b map[string]struct{}) []string {
	out := make([]string, 0, len(a)+len(b))
	for k := range a {
		out = append(out, k)
	}
	for k := range b {
		if _, dup := a[k]; !dup {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func describe(terms []string) string {
	return fmt.Sprintf("contradictory statements across responses: %s", strings.Join(terms, ", "))
}
