package scoring

import (
	"slices"
	"strings"
	"unicode"
)

// Scorer 启发式评分接口
type Scorer interface {
	// Keywords 返回去停用词后的关键词集合（有序、去重）
	Keywords(text string) []string
	// Similarity 返回两段文本的相似度 [0,1]
	Similarity(a, b string) float64
	// Complexity 返回查询复杂度 [0,1]
	Complexity(text string) float64
	// Relevance 返回专长标签与查询的相关度 [0,1]
	Relevance(query string, tags []string) float64
}

// LexicalConfig 词法评分配置
type LexicalConfig struct {
	// LengthNorm 复杂度计算中的词数归一化基数
	LengthNorm float64 `json:"length_norm" yaml:"length_norm"`
	// ConnectiveWeight 每个连接词命中的复杂度增量
	ConnectiveWeight float64 `json:"connective_weight" yaml:"connective_weight"`
	// MinKeywordLength 关键词最小长度
	MinKeywordLength int `json:"min_keyword_length" yaml:"min_keyword_length"`
}

// DefaultLexicalConfig 默认配置
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{
		LengthNorm:       100,
		ConnectiveWeight: 0.2,
		MinKeywordLength: 3,
	}
}

// LexicalScorer 基于词法统计的 Scorer 实现
type LexicalScorer struct {
	config LexicalConfig
}

// NewLexicalScorer 创建词法评分器
func NewLexicalScorer(config LexicalConfig) *LexicalScorer {
	if config.LengthNorm <= 0 {
		config.LengthNorm = DefaultLexicalConfig().LengthNorm
	}
	if config.MinKeywordLength <= 0 {
		config.MinKeywordLength = 1
	}
	return &LexicalScorer{config: config}
}

// Default returns a LexicalScorer with default configuration.
func Default() *LexicalScorer {
	return NewLexicalScorer(DefaultLexicalConfig())
}

// Tokenize lower-cases text and splits it into word tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Keywords implements Scorer.
func (s *LexicalScorer) Keywords(text string) []string {
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		tok = strings.Trim(tok, "'")
		if len(tok) < s.config.MinKeywordLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		seen[tok] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Similarity implements Scorer using keyword-set Jaccard similarity.
func (s *LexicalScorer) Similarity(a, b string) float64 {
	return Jaccard(s.Keywords(a), s.Keywords(b))
}

// Complexity implements Scorer: min(1, words/LengthNorm + ConnectiveWeight×connectiveHits).
func (s *LexicalScorer) Complexity(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := connectives[tok]; ok {
			hits++
		}
	}
	c := float64(len(tokens))/s.config.LengthNorm + s.config.ConnectiveWeight*float64(hits)
	if c > 1 {
		return 1
	}
	return c
}

// Relevance implements Scorer: the fraction of tags with a token present in the query.
func (s *LexicalScorer) Relevance(query string, tags []string) float64 {
	if len(tags) == 0 {
		return 0
	}
	queryTokens := make(map[string]struct{})
	for _, tok := range Tokenize(query) {
		queryTokens[tok] = struct{}{}
	}
	matched := 0
	for _, tag := range tags {
		for _, tok := range Tokenize(tag) {
			if _, ok := queryTokens[tok]; ok {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tags))
}

// Jaccard computes |a∩b| / |a∪b| over two keyword sets.
// Two empty sets are identical (1); one empty set shares nothing (0).
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := make(map[string]struct{}, len(a))
	for _, k := range a {
		setA[k] = struct{}{}
	}
	union := len(setA)
	inter := 0
	counted := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, dup := counted[k]; dup {
			continue
		}
		counted[k] = struct{}{}
		if _, ok := setA[k]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

var connectives = toSet(
	"and", "or", "but", "however", "because", "therefore", "although", "though",
	"whereas", "while", "versus", "vs", "compare", "if", "then", "unless", "moreover",
)

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "of", "to", "in", "on",
	"for", "with", "at", "by", "from", "as", "is", "are", "was", "were", "be", "been",
	"being", "it", "its", "this", "that", "these", "those", "there", "here", "i", "you",
	"he", "she", "we", "they", "them", "me", "my", "our", "your", "their", "his", "her",
	"do", "does", "did", "have", "has", "had", "not", "no", "yes", "so", "than", "too",
	"very", "can", "will", "would", "could", "should", "may", "might", "must", "shall",
	"about", "into", "over", "under", "again", "also", "just", "only", "any", "all",
	"some", "such", "each", "other", "more", "most", "which", "who", "whom", "what",
	"when", "where", "why", "how", "because", "while", "although", "however", "therefore",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
