package scoring

import "strings"

// PolarityPair 一组肯定/否定极性短语
type PolarityPair struct {
	Positive []string `json:"positive" yaml:"positive"`
	Negative []string `json:"negative" yaml:"negative"`
}

// Label returns "positive/negative" using the first phrase of each side.
func (p PolarityPair) Label() string {
	pos, neg := "", ""
	if len(p.Positive) > 0 {
		pos = p.Positive[0]
	}
	if len(p.Negative) > 0 {
		neg = p.Negative[0]
	}
	return pos + "/" + neg
}

// PolarityTable 极性词表
type PolarityTable []PolarityPair

// DefaultPolarityTable 默认极性词表
func DefaultPolarityTable() PolarityTable {
	return PolarityTable{
		{Positive: []string{"yes"}, Negative: []string{"no"}},
		{Positive: []string{"true"}, Negative: []string{"false"}},
		{Positive: []string{"correct"}, Negative: []string{"incorrect"}},
		{Positive: []string{"should"}, Negative: []string{"should not", "shouldn't"}},
		{
			Positive: []string{"recommend", "recommended"},
			Negative: []string{"not recommend", "not recommended", "don't recommend"},
		},
		{Positive: []string{"agree"}, Negative: []string{"disagree"}},
		{Positive: []string{"safe"}, Negative: []string{"unsafe", "not safe"}},
		{Positive: []string{"approve", "approved"}, Negative: []string{"reject", "rejected"}},
	}
}

// PolarityMatch 单个文本在某一极性对上的命中情况
type PolarityMatch struct {
	Pair     PolarityPair
	Positive bool
	Negative bool
}

// Match evaluates every pair of the table against text.
// A positive phrase occurrence only counts when it is not part of a negative
// phrase occurrence, so "should not" never matches the "should" side.
func (t PolarityTable) Match(text string) []PolarityMatch {
	tokens := Tokenize(text)
	out := make([]PolarityMatch, 0, len(t))
	for _, pair := range t {
		covered := make([]bool, len(tokens))
		neg := false
		for _, phrase := range pair.Negative {
			for _, start := range phraseOccurrences(tokens, phrase) {
				neg = true
				for i := start; i < start+len(Tokenize(phrase)); i++ {
					covered[i] = true
				}
			}
		}
		pos := false
		for _, phrase := range pair.Positive {
			n := len(Tokenize(phrase))
			for _, start := range phraseOccurrences(tokens, phrase) {
				if !anyCovered(covered, start, start+n) {
					pos = true
					break
				}
			}
			if pos {
				break
			}
		}
		out = append(out, PolarityMatch{Pair: pair, Positive: pos, Negative: neg})
	}
	return out
}

func phraseOccurrences(tokens []string, phrase string) []int {
	words := Tokenize(phrase)
	if len(words) == 0 || len(words) > len(tokens) {
		return nil
	}
	var starts []int
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			starts = append(starts, i)
		}
	}
	return starts
}

func anyCovered(covered []bool, from, to int) bool {
	for i := from; i < to && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

// String renders the table as a comma separated list of labels.
func (t PolarityTable) String() string {
	labels := make([]string, 0, len(t))
	for _, p := range t {
		labels = append(labels, p.Label())
	}
	return strings.Join(labels, ", ")
}
