package synthesis

import (
	"strings"

	"github.com/BaSui01/agentquorum/types"
)

// MergeDraft 迭代合并：以第一个响应（按 AgentID 排序）为底稿，
// 依次追加其余响应中尚未出现过的句子。
func MergeDraft(responses []types.AgentResponse) string {
	sorted := types.SortResponsesByAgent(responses)
	seen := make(map[string]struct{})
	var parts []string
	for _, r := range sorted {
		for _, s := range splitSentences(r.Content) {
			key := normalizeSentence(s)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func splitSentences(text string) []string {
	var (
		out []string
		sb  strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			out = append(out, s)
		}
		sb.Reset()
	}
	for _, r := range text {
		switch r {
		case '\n':
			flush()
		case '.', '!', '?':
			sb.WriteRune(r)
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return out
}

func normalizeSentence(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!? ")
	return strings.Join(strings.Fields(s), " ")
}
