package consensus

import (
	"errors"
	"fmt"
)

// Config 共识构建阈值配置
type Config struct {
	// 加权平均 / 专家加权的动作阈值
	AcceptThreshold     float64 `json:"accept_threshold" yaml:"accept_threshold"`
	SynthesizeThreshold float64 `json:"synthesize_threshold" yaml:"synthesize_threshold"`

	// 语义相似度的动作阈值
	SimilarityAccept     float64 `json:"similarity_accept" yaml:"similarity_accept"`
	SimilaritySynthesize float64 `json:"similarity_synthesize" yaml:"similarity_synthesize"`

	// 多数决分组相似度与接受阈值
	MajorityGroupSimilarity float64 `json:"majority_group_similarity" yaml:"majority_group_similarity"`
	MajorityAccept          float64 `json:"majority_accept" yaml:"majority_accept"`

	// 等级分段
	UnanimousLevel float64 `json:"unanimous_level" yaml:"unanimous_level"`
	HighLevel      float64 `json:"high_level" yaml:"high_level"`
	MediumLevel    float64 `json:"medium_level" yaml:"medium_level"`

	// 专家权重组成
	AuthorityWeight float64 `json:"authority_weight" yaml:"authority_weight"`
	ExpertiseWeight float64 `json:"expertise_weight" yaml:"expertise_weight"`
	RelevanceWeight float64 `json:"relevance_weight" yaml:"relevance_weight"`

	// FallbackScore 算法失败时的兜底分数
	FallbackScore float64 `json:"fallback_score" yaml:"fallback_score"`
}

// DefaultConfig 返回默认阈值
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:         0.8,
		SynthesizeThreshold:     0.6,
		SimilarityAccept:        0.7,
		SimilaritySynthesize:    0.4,
		MajorityGroupSimilarity: 0.7,
		MajorityAccept:          0.5,
		UnanimousLevel:          0.95,
		HighLevel:               0.8,
		MediumLevel:             0.6,
		AuthorityWeight:         0.4,
		ExpertiseWeight:         0.3,
		RelevanceWeight:         0.3,
		FallbackScore:           0.3,
	}
}

// Validate checks every threshold is within [0,1] and bands are ordered.
func (c Config) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}
	check("accept_threshold", c.AcceptThreshold)
	check("synthesize_threshold", c.SynthesizeThreshold)
	check("similarity_accept", c.SimilarityAccept)
	check("similarity_synthesize", c.SimilaritySynthesize)
	check("majority_group_similarity", c.MajorityGroupSimilarity)
	check("majority_accept", c.MajorityAccept)
	check("unanimous_level", c.UnanimousLevel)
	check("high_level", c.HighLevel)
	check("medium_level", c.MediumLevel)
	check("fallback_score", c.FallbackScore)

	if c.SynthesizeThreshold > c.AcceptThreshold {
		errs = append(errs, errors.New("synthesize_threshold must not exceed accept_threshold"))
	}
	if c.SimilaritySynthesize > c.SimilarityAccept {
		errs = append(errs, errors.New("similarity_synthesize must not exceed similarity_accept"))
	}
	if !(c.MediumLevel <= c.HighLevel && c.HighLevel <= c.UnanimousLevel) {
		errs = append(errs, errors.New("level bands must satisfy medium <= high <= unanimous"))
	}
	if c.AuthorityWeight < 0 || c.ExpertiseWeight < 0 || c.RelevanceWeight < 0 {
		errs = append(errs, errors.New("expert weight components must be non-negative"))
	}
	if c.AuthorityWeight+c.ExpertiseWeight+c.RelevanceWeight <= 0 {
		errs = append(errs, errors.New("expert weight components must not all be zero"))
	}
	return errors.Join(errs...)
}
