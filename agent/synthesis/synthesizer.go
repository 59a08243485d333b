package synthesis

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/types"
)

// Config 质量评分配置
type Config struct {
	ConfidenceWeight float64 `json:"confidence_weight" yaml:"confidence_weight"`
	LengthWeight     float64 `json:"length_weight" yaml:"length_weight"`
	// LengthNorm 内容长度（字符数）归一化基数
	LengthNorm int `json:"length_norm" yaml:"length_norm"`
}

// DefaultConfig 默认质量权重 0.6 / 0.4，长度基数 1000
func DefaultConfig() Config {
	return Config{ConfidenceWeight: 0.6, LengthWeight: 0.4, LengthNorm: 1000}
}

// Input 合成输入
type Input struct {
	Kind strategy.Kind
	// Responses 对 sequential 为执行顺序，其余策略顺序无关
	Responses   []types.AgentResponse
	Resolutions []types.Resolution
	// MasterID 仅 hierarchical 使用
	MasterID string
}

// Synthesizer 响应合成器
type Synthesizer struct {
	config   Config
	logger   *zap.Logger
	routines map[strategy.Kind]func(Input) (string, float64, []string)
}

// NewSynthesizer 创建合成器
func NewSynthesizer(config Config, logger *zap.Logger) *Synthesizer {
	if config.LengthNorm <= 0 {
		config.LengthNorm = DefaultConfig().LengthNorm
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{
		config: config,
		logger: logger.With(zap.String("component", "synthesizer")),
	}
	s.routines = map[strategy.Kind]func(Input) (string, float64, []string){
		strategy.KindSequential:   s.sequential,
		strategy.KindParallel:     s.parallel,
		strategy.KindHierarchical: s.hierarchical,
		strategy.KindConsensus:    s.consensus,
	}
	return s
}

// Synthesize 生成最终响应。空输入或未知策略返回 SYNTHESIS_FAILURE。
func (s *Synthesizer) Synthesize(in Input) (types.FinalResponse, error) {
	if len(in.Responses) == 0 {
		return types.FinalResponse{}, types.NewError(types.ErrSynthesisFailure, "no responses to synthesize").
			WithStrategy(string(in.Kind))
	}
	routine, ok := s.routines[in.Kind]
	if !ok {
		return types.FinalResponse{}, types.NewError(types.ErrSynthesisFailure,
			fmt.Sprintf("no synthesis routine for strategy %q", in.Kind)).WithStrategy(string(in.Kind))
	}

	content, confidence, contributors := routine(in)
	if in.Kind != strategy.KindConsensus && len(in.Resolutions) > 0 {
		content += "\n\n" + resolutionsSection(in.Resolutions)
	}

	final := types.FinalResponse{
		Strategy:     string(in.Kind),
		Content:      content,
		Confidence:   confidence,
		QualityScore: s.Quality(confidence, content),
		Contributors: contributors,
	}
	s.logger.Debug("response synthesized",
		zap.String("strategy", final.Strategy),
		zap.Int("contributors", len(contributors)),
		zap.Float64("quality", final.QualityScore),
	)
	return final, nil
}

// Quality = ConfidenceWeight×confidence + LengthWeight×min(1, len/LengthNorm)
func (s *Synthesizer) Quality(confidence float64, content string) float64 {
	length := min(1, float64(utf8.RuneCountInString(content))/float64(s.config.LengthNorm))
	return s.config.ConfidenceWeight*confidence + s.config.LengthWeight*length
}

func (s *Synthesizer) sequential(in Input) (string, float64, []string) {
	var sb strings.Builder
	for i, r := range in.Responses {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Step %d (%s): %s", i+1, r.AgentID, strings.TrimSpace(r.Content))
	}
	return sb.String(), meanConfidence(in.Responses), types.ResponseAgentIDs(in.Responses)
}

func (s *Synthesizer) parallel(in Input) (string, float64, []string) {
	sorted := types.SortResponsesByAgent(in.Responses)
	return bullets(sorted), meanConfidence(sorted), types.ResponseAgentIDs(sorted)
}

func (s *Synthesizer) hierarchical(in Input) (string, float64, []string) {
	var (
		master      *types.AgentResponse
		specialists []types.AgentResponse
	)
	for _, r := range types.SortResponsesByAgent(in.Responses) {
		if in.MasterID != "" && r.AgentID == in.MasterID {
			master = &r
			continue
		}
		specialists = append(specialists, r)
	}

	var (
		sb           strings.Builder
		contributors []string
		confidence   float64
	)
	if master != nil {
		sb.WriteString(strings.TrimSpace(master.Content))
		contributors = append(contributors, master.AgentID)
	}
	if len(specialists) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Specialist contributions:\n")
		sb.WriteString(bullets(specialists))
		contributors = append(contributors, types.ResponseAgentIDs(specialists)...)
	}

	switch {
	case master != nil && len(specialists) > 0:
		confidence = (master.Confidence + meanConfidence(specialists)) / 2
	case master != nil:
		confidence = master.Confidence
	default:
		confidence = meanConfidence(specialists)
	}
	return sb.String(), confidence, contributors
}

func (s *Synthesizer) consensus(in Input) (string, float64, []string) {
	sorted := types.SortResponsesByAgent(in.Responses)

	dissenters := make(map[string]struct{})
	for _, res := range in.Resolutions {
		if res.ConflictID == "" {
			continue
		}
		for _, id := range res.ParticipantAgentIDs {
			dissenters[id] = struct{}{}
		}
	}

	var sb strings.Builder
	sb.WriteString(MergeDraft(sorted))

	var dissent []types.AgentResponse
	for _, r := range sorted {
		if _, ok := dissenters[r.AgentID]; ok {
			dissent = append(dissent, r)
		}
	}
	if len(dissent) > 0 {
		sb.WriteString("\n\nDissenting views:\n")
		sb.WriteString(bullets(dissent))
	}
	if summary := consensusSummary(in.Resolutions); summary != "" {
		sb.WriteString("\n\n")
		sb.WriteString(summary)
	}
	return sb.String(), meanConfidence(sorted), types.ResponseAgentIDs(sorted)
}

func bullets(responses []types.AgentResponse) string {
	lines := make([]string, 0, len(responses))
	for _, r := range responses {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.AgentID, strings.TrimSpace(r.Content)))
	}
	return strings.Join(lines, "\n")
}

func resolutionsSection(resolutions []types.Resolution) string {
	lines := []string{"Resolutions:"}
	for _, res := range resolutions {
		target := "all responses"
		if res.ConflictID != "" {
			target = "conflict " + res.ConflictID
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s, score %.2f, level %s",
			target, strings.Join(res.ParticipantAgentIDs, ", "),
			res.Consensus.RecommendedAction, res.Consensus.Score, res.Consensus.Level))
	}
	return strings.Join(lines, "\n")
}

// consensusSummary 描述全集共识结论（ConflictID 为空的 Resolution）
func consensusSummary(resolutions []types.Resolution) string {
	idx := slices.IndexFunc(resolutions, func(r types.Resolution) bool { return r.ConflictID == "" })
	if idx < 0 {
		return ""
	}
	c := resolutions[idx].Consensus
	return fmt.Sprintf("Consensus: %s (score %.2f, %s)", c.Level, c.Score, c.RecommendedAction)
}

func meanConfidence(responses []types.AgentResponse) float64 {
	if len(responses) == 0 {
		return 0
	}
	xs := make([]float64, len(responses))
	for i, r := range responses {
		xs[i] = r.Confidence
	}
	return stat.Mean(xs, nil)
}
