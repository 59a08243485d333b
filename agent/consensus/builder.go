package consensus

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/types"
)

// FailureRecorder 记录共识算法失败（通常由指标收集器实现）
type FailureRecorder interface {
	RecordConsensusFailure(algorithm string)
}

// Input 共识构建输入
type Input struct {
	Responses []types.AgentResponse
	// Conflict 为 nil 表示对整个响应集合构建共识
	Conflict *types.Conflict
	// Profiles 按 AgentID 索引，用于专家加权
	Profiles map[string]types.AgentProfile
	// Query 原始查询，用于计算专长相关度
	Query string
	// Weights 调用方提供的 Agent 权重，会按参与者归一化
	Weights map[string]float64
}

// Option 构建器选项
type Option func(*Builder)

// WithFailureRecorder 设置失败记录器
func WithFailureRecorder(r FailureRecorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithPolarityTable 替换冲突元素使用的极性词表
func WithPolarityTable(t scoring.PolarityTable) Option {
	return func(b *Builder) { b.polarity = t }
}

// Builder 共识构建器。除日志和失败记录外无副作用，可并发使用。
type Builder struct {
	config   Config
	scorer   scoring.Scorer
	polarity scoring.PolarityTable
	recorder FailureRecorder
	logger   *zap.Logger
}

// NewBuilder 创建共识构建器
func NewBuilder(config Config, scorer scoring.Scorer, logger *zap.Logger, opts ...Option) *Builder {
	if scorer == nil {
		scorer = scoring.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		config:   config,
		scorer:   scorer,
		polarity: scoring.DefaultPolarityTable(),
		logger:   logger.With(zap.String("component", "consensus_builder")),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the thresholds in use.
func (b *Builder) Config() Config { return b.config }

// SelectAlgorithm 按响应数量与冲突信息确定性地选择算法
func SelectAlgorithm(n int, conflict *types.Conflict) types.ConsensusAlgorithm {
	switch {
	case n <= 2:
		return types.AlgorithmWeightedAverage
	case conflict == nil:
		return types.AlgorithmWeightedAverage
	case conflict.Type == types.ConflictContradiction:
		return types.AlgorithmMajorityRule
	case conflict.Type == types.ConflictOverlap:
		return types.AlgorithmSemanticSimilarity
	case conflict.Severity == types.SeverityCritical:
		return types.AlgorithmExpertWeighted
	default:
		return types.AlgorithmWeightedAverage
	}
}

// Build 选择算法并计算共识；失败时返回兜底结果，从不向调用方传播错误。
func (b *Builder) Build(in Input) types.ConsensusResult {
	algorithm := SelectAlgorithm(len(in.Responses), in.Conflict)
	return b.BuildWith(in, algorithm)
}

// BuildWith 使用指定算法计算共识，带 panic 恢复与兜底。
func (b *Builder) BuildWith(in Input, algorithm types.ConsensusAlgorithm) (result types.ConsensusResult) {
	defer func() {
		if r := recover(); r != nil {
			result = b.fallback(algorithm, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := b.Calculate(in, algorithm)
	if err != nil {
		return b.fallback(algorithm, err)
	}
	return res
}

// Resolve 针对一个冲突（conflict 为 nil 时为整个集合）构建共识并包装为 Resolution。
func (b *Builder) Resolve(in Input) types.Resolution {
	participants := types.ResponseAgentIDs(types.SortResponsesByAgent(in.Responses))
	res := types.Resolution{
		ID:                  uuid.New().String(),
		ParticipantAgentIDs: participants,
		Consensus:           b.Build(in),
	}
	if in.Conflict != nil {
		res.ConflictID = in.Conflict.ID
		res.ParticipantAgentIDs = slices.Clone(in.Conflict.ParticipantAgentIDs)
	}
	return res
}

// Calculate 计算共识结果。相同输入总是得到相同结果。
func (b *Builder) Calculate(in Input, algorithm types.ConsensusAlgorithm) (types.ConsensusResult, error) {
	if len(in.Responses) == 0 {
		return types.ConsensusResult{}, errors.New("no responses to build consensus from")
	}
	// 按 AgentID 排序，保证结果与到达顺序无关
	responses := types.SortResponsesByAgent(in.Responses)

	var (
		score  float64
		action types.RecommendedAction
		detail string
	)
	switch algorithm {
	case types.AlgorithmWeightedAverage:
		weights := normalizedWeights(responses, in.Weights)
		score = weightedScore(responses, weights)
		action = b.bandAction(score, b.config.AcceptThreshold, b.config.SynthesizeThreshold)
		detail = "confidence weighted average"

	case types.AlgorithmMajorityRule:
		largest, groups := b.largestGroup(responses)
		score = float64(largest) / float64(len(responses))
		action = types.ActionEscalate
		if score >= b.config.MajorityAccept {
			action = types.ActionAccept
		}
		detail = fmt.Sprintf("largest similarity group %d of %d across %d groups", largest, len(responses), groups)

	case types.AlgorithmSemanticSimilarity:
		score = b.meanPairwiseSimilarity(responses)
		action = b.bandAction(score, b.config.SimilarityAccept, b.config.SimilaritySynthesize)
		detail = "mean pairwise keyword similarity"

	case types.AlgorithmExpertWeighted:
		weights := b.expertWeights(responses, in.Profiles, in.Query)
		score = weightedScore(responses, weights)
		action = b.bandAction(score, b.config.AcceptThreshold, b.config.SynthesizeThreshold)
		detail = "authority/expertise/relevance weighted confidence"

	default:
		return types.ConsensusResult{}, fmt.Errorf("unknown consensus algorithm %q", algorithm)
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return types.ConsensusResult{}, fmt.Errorf("%s produced a non-finite score", algorithm)
	}
	score = clamp01(score)

	return types.ConsensusResult{
		Score:               score,
		Level:               b.Level(score),
		CommonElements:      b.commonElements(responses),
		ConflictingElements: b.conflictingElements(responses),
		RecommendedAction:   action,
		Algorithm:           algorithm,
		Reasoning:           fmt.Sprintf("%s over %d responses: %s, score %.3f", algorithm, len(responses), detail, score),
	}, nil
}

// Level 将分数映射为共识等级
func (b *Builder) Level(score float64) types.ConsensusLevel {
	switch {
	case score >= b.config.UnanimousLevel:
		return types.ConsensusUnanimous
	case score >= b.config.HighLevel:
		return types.ConsensusHigh
	case score >= b.config.MediumLevel:
		return types.ConsensusMedium
	default:
		return types.ConsensusLow
	}
}

func (b *Builder) fallback(algorithm types.ConsensusAlgorithm, cause error) types.ConsensusResult {
	b.logger.Warn("consensus algorithm failed, using fallback",
		zap.String("algorithm", string(algorithm)),
		zap.Error(cause),
	)
	if b.recorder != nil {
		b.recorder.RecordConsensusFailure(string(algorithm))
	}
	return types.ConsensusResult{
		Score:               b.config.FallbackScore,
		Level:               types.ConsensusLow,
		CommonElements:      []string{},
		ConflictingElements: []string{},
		RecommendedAction:   types.ActionEscalate,
		Algorithm:           algorithm,
		Reasoning:           fmt.Sprintf("%s failed: %v", algorithm, cause),
		Fallback:            true,
	}
}

func (b *Builder) bandAction(score, accept, synthesize float64) types.RecommendedAction {
	switch {
	case score >= accept:
		return types.ActionAccept
	case score >= synthesize:
		return types.ActionSynthesize
	default:
		return types.ActionEscalate
	}
}

// signature 用于分组与相似度的关键词集合：词法关键词加上每个命中极性对的一侧标记，
// 这样仅在极性上不同的响应不会得到相同的集合。
type signature struct {
	keywords []string
	// polarity 按极性表下标记录 +1（仅肯定）或 -1（仅否定）
	polarity map[int]int
}

func (b *Builder) signatureOf(content string) signature {
	sig := signature{
		keywords: b.scorer.Keywords(content),
		polarity: make(map[int]int),
	}
	for i, m := range b.polarity.Match(content) {
		switch {
		case m.Positive && !m.Negative:
			sig.polarity[i] = 1
			sig.keywords = append(sig.keywords, "+"+m.Pair.Label())
		case m.Negative && !m.Positive:
			sig.polarity[i] = -1
			sig.keywords = append(sig.keywords, "-"+m.Pair.Label())
		case m.Positive && m.Negative:
			sig.keywords = append(sig.keywords, "±"+m.Pair.Label())
		}
	}
	return sig
}

// opposes reports whether a and b take opposite sides on any polarity pair.
func (a signature) opposes(b signature) bool {
	for i, side := range a.polarity {
		if other, ok := b.polarity[i]; ok && other == -side {
			return true
		}
	}
	return false
}

// agrees 判断两个签名能否归入同一组。两个空签名没有可比较的内容，不算一致。
func (b *Builder) agrees(seed, sig signature) bool {
	if len(seed.keywords) == 0 || len(sig.keywords) == 0 {
		return false
	}
	if seed.opposes(sig) {
		return false
	}
	return scoring.Jaccard(seed.keywords, sig.keywords) >= b.config.MajorityGroupSimilarity
}

// largestGroup 贪心分组：每个响应加入第一个与其种子一致的组，否则自成一组。
func (b *Builder) largestGroup(responses []types.AgentResponse) (largest, groups int) {
	type group struct {
		seed signature
		size int
	}
	var gs []*group
	for _, r := range responses {
		sig := b.signatureOf(r.Content)
		placed := false
		for _, g := range gs {
			if b.agrees(g.seed, sig) {
				g.size++
				placed = true
				break
			}
		}
		if !placed {
			gs = append(gs, &group{seed: sig, size: 1})
		}
	}
	for _, g := range gs {
		largest = max(largest, g.size)
	}
	return largest, len(gs)
}

func (b *Builder) meanPairwiseSimilarity(responses []types.AgentResponse) float64 {
	n := len(responses)
	if n == 1 {
		return 1
	}
	sigs := make([]signature, n)
	for i, r := range responses {
		sigs[i] = b.signatureOf(r.Content)
	}
	var sum float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !sigs[i].opposes(sigs[j]) {
				sum += scoring.Jaccard(sigs[i].keywords, sigs[j].keywords)
			}
			pairs++
		}
	}
	return sum / float64(pairs)
}

func (b *Builder) expertWeights(responses []types.AgentResponse, profiles map[string]types.AgentProfile, query string) []float64 {
	raw := make([]float64, len(responses))
	var total float64
	for i, r := range responses {
		p, ok := profiles[r.AgentID]
		if !ok {
			p = types.AgentProfile{ID: r.AgentID, Tier: 1}
		}
		tier := max(p.Tier, 1)
		w := b.config.AuthorityWeight*(1/float64(tier)) +
			b.config.ExpertiseWeight*types.ClampConfidence(p.ConfidenceHint) +
			b.config.RelevanceWeight*b.scorer.Relevance(query, p.SpecializationTags)
		raw[i] = w
		total += w
	}
	if total <= 0 {
		return uniform(len(responses))
	}
	for i := range raw {
		raw[i] /= total
	}
	return raw
}

// commonElements 返回出现在多于一个响应中的关键词
func (b *Builder) commonElements(responses []types.AgentResponse) []string {
	counts := make(map[string]int)
	for _, r := range responses {
		for _, kw := range b.scorer.Keywords(r.Content) {
			counts[kw]++
		}
	}
	out := []string{}
	for kw, c := range counts {
		if c > 1 {
			out = append(out, kw)
		}
	}
	slices.Sort(out)
	return out
}

// conflictingElements 返回在集合中同时出现正反两侧的极性对
func (b *Builder) conflictingElements(responses []types.AgentResponse) []string {
	pos := make([]bool, len(b.polarity))
	neg := make([]bool, len(b.polarity))
	for _, r := range responses {
		for i, m := range b.polarity.Match(r.Content) {
			pos[i] = pos[i] || m.Positive
			neg[i] = neg[i] || m.Negative
		}
	}
	out := []string{}
	for i, pair := range b.polarity {
		if pos[i] && neg[i] {
			out = append(out, pair.Label())
		}
	}
	return out
}

// normalizedWeights 归一化调用方权重；未提供或总和非正时退化为 1/n。
func normalizedWeights(responses []types.AgentResponse, supplied map[string]float64) []float64 {
	if len(supplied) == 0 {
		return uniform(len(responses))
	}
	w := make([]float64, len(responses))
	var total float64
	for i, r := range responses {
		if v := supplied[r.AgentID]; v > 0 {
			w[i] = v
			total += v
		}
	}
	if total <= 0 {
		return uniform(len(responses))
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

// weightedScore 置信度的加权平均
func weightedScore(responses []types.AgentResponse, weights []float64) float64 {
	xs := make([]float64, len(responses))
	for i, r := range responses {
		xs[i] = types.ClampConfidence(r.Confidence)
	}
	return stat.Mean(xs, weights)
}

func uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
