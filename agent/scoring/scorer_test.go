package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTokenize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"should", "not", "use", "x", "shouldn't"}, Tokenize("Should NOT use X; shouldn't!"))
	assert.Empty(t, Tokenize("  ...  "))
}

func TestLexicalScorer_Keywords(t *testing.T) {
	t.Parallel()
	s := Default()
	assert.Equal(t, []string{"aspirin", "dose", "reduce"}, s.Keywords("Reduce the aspirin dose, reduce it."))
	assert.Empty(t, s.Keywords("it is a no"))
}

func TestLexicalScorer_Similarity(t *testing.T) {
	t.Parallel()
	s := Default()
	assert.Equal(t, 1.0, s.Similarity("patient needs rest", "Rest: patient needs"))
	assert.Equal(t, 0.0, s.Similarity("patient needs rest", "surgery scheduled tomorrow"))
	assert.InDelta(t, 0.5, s.Similarity("alpha beta gamma", "alpha beta delta"), 1e-9)
	assert.Equal(t, 1.0, s.Similarity("", ""))
}

func TestLexicalScorer_Complexity(t *testing.T) {
	t.Parallel()
	s := Default()
	assert.Equal(t, 0.0, s.Complexity(""))
	// 3 words, 1 connective
	assert.InDelta(t, 0.03+0.2, s.Complexity("rest and surgery"), 1e-9)
	assert.Equal(t, 1.0, s.Complexity("and or but however because therefore"))
}

func TestLexicalScorer_Relevance(t *testing.T) {
	t.Parallel()
	s := Default()
	assert.Equal(t, 0.0, s.Relevance("anything", nil))
	assert.Equal(t, 0.5, s.Relevance("cardiology follow up", []string{"cardiology", "oncology"}))
	assert.Equal(t, 1.0, s.Relevance("drug interactions", []string{"drug-safety"}))
}

func TestJaccard_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{3,6}`), rapid.ID[string])
		a := words.Draw(rt, "a")
		b := words.Draw(rt, "b")

		ab := Jaccard(a, b)
		if ab < 0 || ab > 1 {
			rt.Fatalf("jaccard out of range: %f", ab)
		}
		if ab != Jaccard(b, a) {
			rt.Fatalf("jaccard not symmetric")
		}
		if Jaccard(a, a) != 1 {
			rt.Fatalf("self similarity must be 1")
		}
	})
}

func TestPolarityTable_Match(t *testing.T) {
	t.Parallel()
	table := DefaultPolarityTable()

	find := func(ms []PolarityMatch, label string) PolarityMatch {
		for _, m := range ms {
			if m.Pair.Label() == label {
				return m
			}
		}
		t.Fatalf("label %s not found", label)
		return PolarityMatch{}
	}

	m := find(table.Match("You should not operate."), "should/should not")
	assert.False(t, m.Positive)
	assert.True(t, m.Negative)

	m = find(table.Match("You should operate, but should not wait."), "should/should not")
	assert.True(t, m.Positive)
	assert.True(t, m.Negative)

	m = find(table.Match("We do not recommend this."), "recommend/not recommend")
	assert.False(t, m.Positive)
	assert.True(t, m.Negative)

	m = find(table.Match("Yes."), "yes/no")
	assert.True(t, m.Positive)
	assert.False(t, m.Negative)

	assert.Contains(t, table.String(), "true/false")
}
