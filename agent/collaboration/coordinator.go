package collaboration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/conflict"
	"github.com/BaSui01/agentquorum/agent/consensus"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/agent/synthesis"
	"github.com/BaSui01/agentquorum/types"
)

const instrumentationName = "github.com/BaSui01/agentquorum/agent/collaboration"

// Stage 协调状态机阶段
type Stage string

const (
	StageSelectStrategy       Stage = "select_strategy"
	StageValidateRequirements Stage = "validate_requirements"
	StageExecute              Stage = "execute"
	StageDetectConflicts      Stage = "detect_conflicts"
	StageBuildConsensus       Stage = "build_consensus"
	StageSynthesize           Stage = "synthesize"
	StageRecordMetrics        Stage = "record_metrics"
	StageDone                 Stage = "done"
	StageError                Stage = "error"
)

// Config 协调器配置
type Config struct {
	// MaxConcurrency 扇出并发上限，0 表示不限制
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
	// AgentTimeout 单个 Agent 调用超时，0 表示不设置
	AgentTimeout time.Duration `json:"agent_timeout" yaml:"agent_timeout"`

	Selector  strategy.SelectorConfig `json:"selector" yaml:"selector"`
	Scoring   scoring.LexicalConfig   `json:"scoring" yaml:"scoring"`
	Consensus consensus.Config        `json:"consensus" yaml:"consensus"`
	Synthesis synthesis.Config        `json:"synthesis" yaml:"synthesis"`
	State     StateConfig             `json:"state" yaml:"state"`
}

// DefaultConfig 默认协调器配置
func DefaultConfig() Config {
	return Config{
		Selector:  strategy.DefaultSelectorConfig(),
		Scoring:   scoring.DefaultLexicalConfig(),
		Consensus: consensus.DefaultConfig(),
		Synthesis: synthesis.DefaultConfig(),
		State:     DefaultStateConfig(),
	}
}

// MetricsRecorder 协调指标记录（由 internal/metrics.Collector 实现）
type MetricsRecorder interface {
	consensus.FailureRecorder
	RecordCoordination(strategy, status string, duration time.Duration)
	RecordAgentCall(strategy, status string, duration time.Duration)
	RecordConflicts(conflictType string, count int)
	RecordConsensus(algorithm, level string)
}

type noopMetrics struct{}

func (noopMetrics) RecordConsensusFailure(string)                    {}
func (noopMetrics) RecordCoordination(string, string, time.Duration) {}
func (noopMetrics) RecordAgentCall(string, string, time.Duration)    {}
func (noopMetrics) RecordConflicts(string, int)                      {}
func (noopMetrics) RecordConsensus(string, string)                   {}

// Request 一次协调调用
type Request struct {
	Query   string
	Agents  []agent.Agent
	Context *types.Context
	// Strategy 可选的策略覆盖
	Strategy *strategy.Kind
}

// Option 协调器选项
type Option func(*Coordinator)

// WithState 注入协调状态
func WithState(s *State) Option {
	return func(c *Coordinator) { c.state = s }
}

// WithHistoryStore 在默认状态上设置历史存储
func WithHistoryStore(h persistence.HistoryStore) Option {
	return func(c *Coordinator) { c.history = h }
}

// WithMetrics 设置指标记录器
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithScorer 替换启发式评分实现
func WithScorer(s scoring.Scorer) Option {
	return func(c *Coordinator) { c.scorer = s }
}

// WithRegistry 替换策略目录
func WithRegistry(r *strategy.Registry) Option {
	return func(c *Coordinator) { c.registry = r }
}

// WithTracer 设置 OpenTelemetry tracer
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = t }
}

// WithConflictRules 替换冲突检测规则
func WithConflictRules(rules ...conflict.Rule) Option {
	return func(c *Coordinator) { c.rules = rules }
}

type executeFunc func(ctx context.Context, r *run) (*outcome, error)

// Coordinator 多 Agent 协调器
type Coordinator struct {
	config Config
	logger *zap.Logger
	tracer trace.Tracer

	registry    *strategy.Registry
	scorer      scoring.Scorer
	rules       []conflict.Rule
	selector    *strategy.Selector
	detector    *conflict.Detector
	builder     *consensus.Builder
	synthesizer *synthesis.Synthesizer

	state   *State
	history persistence.HistoryStore
	metrics MetricsRecorder

	executors map[strategy.Kind]executeFunc
	now       func() time.Time
}

// NewCoordinator 创建协调器
func NewCoordinator(config Config, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
	}

	c := &Coordinator{
		config:  config,
		logger:  logger.With(zap.String("component", "coordinator")),
		tracer:  otel.Tracer(instrumentationName),
		metrics: noopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = strategy.NewRegistry()
	}
	if c.scorer == nil {
		c.scorer = scoring.NewLexicalScorer(config.Scoring)
	}
	if c.state == nil {
		c.state = NewState(config.State, c.history)
	} else if c.history != nil {
		c.state.History = c.history
	}

	c.selector = strategy.NewSelector(c.registry, c.scorer, config.Selector, logger)
	c.detector = conflict.NewDetector(logger, c.rules...)
	c.builder = consensus.NewBuilder(config.Consensus, c.scorer, logger, consensus.WithFailureRecorder(c.metrics))
	c.synthesizer = synthesis.NewSynthesizer(config.Synthesis, logger)

	c.executors = map[strategy.Kind]executeFunc{
		strategy.KindSequential:   c.executeSequential,
		strategy.KindParallel:     c.executeParallel,
		strategy.KindHierarchical: c.executeHierarchical,
		strategy.KindConsensus:    c.executeConsensus,
		strategy.KindAdaptive:     c.executeAdaptive,
	}
	return c
}

// State returns the coordinator's mutable state.
func (c *Coordinator) State() *State { return c.state }

// Registry returns the strategy catalog.
func (c *Coordinator) Registry() *strategy.Registry { return c.registry }

// Coordinate 执行一次完整的协调调用
func (c *Coordinator) Coordinate(ctx context.Context, req Request) (*types.CoordinationResult, error) {
	start := c.now()
	runID := uuid.New().String()
	if existing, ok := types.RunID(ctx); ok {
		runID = existing
	} else {
		ctx = types.WithRunID(ctx, runID)
	}

	ctx, span := c.tracer.Start(ctx, "coordination.coordinate",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("agents.count", len(req.Agents)),
		))
	defer span.End()

	logger := c.logger.With(zap.String("run_id", runID))
	if traceID, ok := types.TraceID(ctx); ok {
		logger = logger.With(zap.String("trace_id", traceID))
	}
	var timings types.PerformanceTimings
	strategyName := ""

	fail := func(stage Stage, err error) (*types.CoordinationResult, error) {
		e := stageError(stage, strategyName, err)
		logger.Warn("coordination failed",
			zap.String("state", string(StageError)),
			zap.String("stage", string(stage)),
			zap.String("strategy", strategyName),
			zap.Error(e),
		)
		span.RecordError(e)
		span.SetStatus(codes.Error, string(stage))
		label := strategyName
		if label == "" {
			label = "none"
		}
		c.metrics.RecordCoordination(label, "error", c.now().Sub(start))
		return nil, e
	}

	// SELECT_STRATEGY
	if strings.TrimSpace(req.Query) == "" {
		return fail(StageSelectStrategy, types.NewError(types.ErrInvalidRequest, "query is required"))
	}
	if err := validateAgents(req.Agents); err != nil {
		return fail(StageSelectStrategy, err)
	}
	base := req.Context.Clone()
	profiles := agent.Profiles(req.Agents)

	stageStart := c.now()
	selected, err := c.selector.Select(profiles, req.Query, base, req.Strategy)
	timings.Selection = c.now().Sub(stageStart)
	if err != nil {
		return fail(StageSelectStrategy, err)
	}
	strategyName = selected.Name
	span.SetAttributes(attribute.String("strategy", strategyName))

	// VALIDATE_REQUIREMENTS
	if err := validateRequirements(selected, profiles); err != nil {
		return fail(StageValidateRequirements, err)
	}

	// EXECUTE
	r := &run{
		query:    req.Query,
		agents:   req.Agents,
		profiles: profiles,
		base:     base,
		strategy: selected,
		logger:   logger,
	}
	stageStart = c.now()
	out, err := c.executeStage(ctx, r, selected.Kind)
	timings.Execution = c.now().Sub(stageStart)
	if err != nil {
		return fail(StageExecute, err)
	}
	if len(out.responses) == 0 {
		return fail(StageExecute, types.NewError(types.ErrInsufficientResponses, "no agent produced a response").
			WithReasoning(fmt.Sprintf("%d of %d agents failed", len(r.failedAgents()), len(req.Agents))))
	}

	// DETECT_CONFLICTS
	stageStart = c.now()
	_, detectSpan := c.tracer.Start(ctx, "coordination.detect_conflicts")
	conflicts := c.detector.Detect(out.responses)
	detectSpan.SetAttributes(attribute.Int("conflicts.count", len(conflicts)))
	detectSpan.End()
	timings.ConflictDetection = c.now().Sub(stageStart)
	for _, cf := range conflicts {
		c.metrics.RecordConflicts(string(cf.Type), 1)
	}

	// BUILD_CONSENSUS / RESOLVE
	stageStart = c.now()
	resolutions := c.resolve(ctx, r, out, conflicts)
	timings.Consensus = c.now().Sub(stageStart)

	// SYNTHESIZE
	stageStart = c.now()
	final, err := c.synthesizer.Synthesize(synthesis.Input{
		Kind:        out.kind,
		Responses:   out.responses,
		Resolutions: resolutions,
		MasterID:    out.masterID,
	})
	timings.Synthesis = c.now().Sub(stageStart)
	if err != nil {
		return fail(StageSynthesize, err)
	}

	// RECORD_METRICS
	timings.Total = c.now().Sub(start)
	result := &types.CoordinationResult{
		ID:               runID,
		StrategyName:     strategyName,
		ExecutedStrategy: string(out.kind),
		Responses:        out.responses,
		Conflicts:        nonNil(conflicts),
		Resolutions:      nonNil(resolutions),
		FinalResponse:    final,
		Timings:          timings,
		Metadata: types.CoordinationMetadata{
			ParticipatingAgents:  types.ResponseAgentIDs(out.responses),
			FailedAgents:         r.failedAgents(),
			CoordinationOverhead: timings.Overhead(),
			QualityScore:         final.QualityScore,
			Confidence:           final.Confidence,
			ConsensusDraft:       out.draft,
			Timestamp:            c.now(),
		},
	}
	c.record(ctx, selected, req, result)

	logger.Info("coordination completed",
		zap.String("stage", string(StageDone)),
		zap.String("strategy", strategyName),
		zap.String("executed", result.ExecutedStrategy),
		zap.Int("responses", len(result.Responses)),
		zap.Int("conflicts", len(conflicts)),
		zap.Float64("quality", final.QualityScore),
		zap.Duration("duration", timings.Total),
	)
	return result, nil
}

// executeStage dispatches through the fixed executor table.
func (c *Coordinator) executeStage(ctx context.Context, r *run, kind strategy.Kind) (*outcome, error) {
	exec, ok := c.executors[kind]
	if !ok {
		return nil, types.NewError(types.ErrNoSuitableStrategy, fmt.Sprintf("no executor for strategy %q", kind))
	}
	ctx, span := c.tracer.Start(ctx, "coordination.execute",
		trace.WithAttributes(attribute.String("strategy", string(kind))))
	defer span.End()

	out, err := exec(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "execute")
		return nil, err
	}
	span.SetAttributes(attribute.Int("responses.count", len(out.responses)))
	return out, nil
}

// resolve 对每个冲突的参与者构建共识；consensus 策略额外对全集构建一次。
func (c *Coordinator) resolve(ctx context.Context, r *run, out *outcome, conflicts []types.Conflict) []types.Resolution {
	_, span := c.tracer.Start(ctx, "coordination.build_consensus")
	defer span.End()

	profiles := make(map[string]types.AgentProfile, len(r.profiles))
	for _, p := range r.profiles {
		profiles[p.ID] = p
	}
	byAgent := make(map[string]types.AgentResponse, len(out.responses))
	for _, resp := range out.responses {
		byAgent[resp.AgentID] = resp
	}

	var resolutions []types.Resolution
	for i := range conflicts {
		cf := conflicts[i]
		subset := make([]types.AgentResponse, 0, len(cf.ParticipantAgentIDs))
		for _, id := range cf.ParticipantAgentIDs {
			if resp, ok := byAgent[id]; ok {
				subset = append(subset, resp)
			}
		}
		res := c.builder.Resolve(consensus.Input{
			Responses: subset,
			Conflict:  &cf,
			Profiles:  profiles,
			Query:     r.query,
			Weights:   r.base.AgentWeights,
		})
		c.metrics.RecordConsensus(string(res.Consensus.Algorithm), string(res.Consensus.Level))
		resolutions = append(resolutions, res)
	}

	if out.kind == strategy.KindConsensus {
		res := c.builder.Resolve(consensus.Input{
			Responses: out.responses,
			Profiles:  profiles,
			Query:     r.query,
			Weights:   r.base.AgentWeights,
		})
		c.metrics.RecordConsensus(string(res.Consensus.Algorithm), string(res.Consensus.Level))
		resolutions = append(resolutions, res)
	}

	span.SetAttributes(attribute.Int("resolutions.count", len(resolutions)))
	return resolutions
}

// record 更新追踪器、日志与历史存储；历史写入失败只记日志。
func (c *Coordinator) record(ctx context.Context, selected strategy.Strategy, req Request, result *types.CoordinationResult) {
	c.state.Tracker.Record(selected.Kind, result.Timings.Total)
	c.state.appendLog(result.Conflicts, result.Resolutions)
	c.metrics.RecordCoordination(selected.Name, "success", result.Timings.Total)

	if c.state.History == nil {
		return
	}
	rec := &persistence.Record{
		ID:               uuid.New().String(),
		RunID:            result.ID,
		Strategy:         result.StrategyName,
		ExecutedStrategy: result.ExecutedStrategy,
		Query:            req.Query,
		AgentCount:       len(req.Agents),
		ResponseCount:    len(result.Responses),
		FailedAgents:     len(result.Metadata.FailedAgents),
		ConflictCount:    len(result.Conflicts),
		Confidence:       result.FinalResponse.Confidence,
		QualityScore:     result.FinalResponse.QualityScore,
		DurationMS:       result.Timings.Total.Milliseconds(),
		CreatedAt:        result.Metadata.Timestamp,
	}
	if n := len(result.Resolutions); n > 0 {
		last := result.Resolutions[n-1].Consensus
		rec.ConsensusScore = last.Score
		rec.ConsensusLevel = string(last.Level)
	}
	if err := c.state.History.SaveRecord(ctx, rec); err != nil {
		c.logger.Warn("failed to save coordination record",
			zap.String("run_id", result.ID),
			zap.Error(err),
		)
	}
}

func validateAgents(agents []agent.Agent) error {
	seen := make(map[string]struct{}, len(agents))
	for i, a := range agents {
		if a == nil {
			return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("agent at index %d is nil", i))
		}
		id := a.Profile().ID
		if id == "" {
			return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("agent at index %d has no id", i))
		}
		if _, dup := seen[id]; dup {
			return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("duplicate agent id %q", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateRequirements(s strategy.Strategy, profiles []types.AgentProfile) error {
	var reasons []string
	if !s.Admits(len(profiles)) {
		reasons = append(reasons, fmt.Sprintf("agent count %d outside [%d, %d]", len(profiles), s.MinAgents, s.MaxAgents))
	}
	if missing := s.MissingCapabilities(types.CapabilityUnion(profiles)); len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("missing capabilities %v", missing))
	}
	if len(reasons) == 0 {
		return nil
	}
	return types.NewError(types.ErrStrategyRequirementsUnmet, "strategy requirements unmet").
		WithReasoning(strings.Join(reasons, "; "))
}

// stageError 记录失败阶段与策略；非结构化错误包装为 INTERNAL_ERROR。
func stageError(stage Stage, strategyName string, err error) *types.Error {
	e, ok := types.AsError(err)
	if !ok {
		code := types.ErrInternalError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			code = types.ErrTimeout
		}
		e = types.NewError(code, "coordination failed").WithCause(err)
	}
	if e.Stage == "" {
		e.WithStage(string(stage))
	}
	if e.Strategy == "" && strategyName != "" {
		e.WithStrategy(strategyName)
	}
	return e
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return slices.Clip(xs)
}
