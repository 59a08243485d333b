package collaboration

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/agent/synthesis"
	"github.com/BaSui01/agentquorum/types"
)

// generalGroup 未声明专长标签的专家所属分组
const generalGroup = "general"

// run 单次协调调用的执行期数据
type run struct {
	query    string
	agents   []agent.Agent
	profiles []types.AgentProfile
	base     *types.Context
	strategy strategy.Strategy
	logger   *zap.Logger

	mu     sync.Mutex
	failed []string
}

func (r *run) markFailed(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, id)
}

func (r *run) failedAgents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.failed)
	slices.Sort(out)
	return slices.Compact(out)
}

// outcome 执行阶段产物
type outcome struct {
	// kind 实际执行的策略（adaptive 委派后的目标）
	kind      strategy.Kind
	responses []types.AgentResponse
	masterID  string
	draft     string
}

// invoke 调用单个 Agent；失败（含 panic）只记录并返回错误，由调用方排除。
func (c *Coordinator) invoke(ctx context.Context, r *run, a agent.Agent, cctx *types.Context) (*types.AgentResponse, error) {
	profile := a.Profile()
	if c.config.AgentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.AgentTimeout)
		defer cancel()
	}
	ctx, span := c.tracer.Start(ctx, "coordination.agent",
		trace.WithAttributes(attribute.String("agent.id", profile.ID)))
	defer span.End()

	start := time.Now()
	resp, err := safeExecute(ctx, a, r.query, cctx)
	duration := time.Since(start)

	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		c.metrics.RecordAgentCall(r.strategy.Name, "error", duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent failed")
		r.markFailed(profile.ID)
		r.logger.Warn("agent execution failed",
			zap.String("agent_id", profile.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, types.NewError(types.ErrAgentExecutionFailure,
			fmt.Sprintf("agent %s failed", profile.ID)).WithCause(err)
	}
	c.metrics.RecordAgentCall(r.strategy.Name, "success", duration)

	out := *resp
	out.AgentID = profile.ID
	out.Confidence = types.ClampConfidence(out.Confidence)
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	return &out, nil
}

func safeExecute(ctx context.Context, a agent.Agent, query string, cctx *types.Context) (resp *types.AgentResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, fmt.Errorf("agent panic: %v", rec)
		}
	}()
	resp, err = a.Execute(ctx, query, cctx)
	if err == nil && resp == nil {
		err = fmt.Errorf("agent returned no response")
	}
	return resp, err
}

// fanOut 以相同上下文并发调用 agents，结果按 AgentID 排序，与完成顺序无关。
// 调用方上下文在执行期间被取消时返回 ctx.Err()。
func (c *Coordinator) fanOut(ctx context.Context, r *run, agents []agent.Agent, cctx *types.Context) ([]types.AgentResponse, error) {
	results := make([]*types.AgentResponse, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	if c.config.MaxConcurrency > 0 {
		g.SetLimit(c.config.MaxConcurrency)
	}
	for i, a := range agents {
		g.Go(func() error {
			resp, err := c.invoke(gctx, r, a, cctx.Clone())
			if err == nil {
				results[i] = resp
			}
			return nil // 单个 Agent 失败不终止其余调用
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]types.AgentResponse, 0, len(agents))
	for _, resp := range results {
		if resp != nil {
			out = append(out, *resp)
		}
	}
	return types.SortResponsesByAgent(out), nil
}

// executeSequential 按 (tier 升序, 相关度降序, id 升序) 依次执行，
// 第 k 个 Agent 的上下文包含基础上下文与前 k-1 个成功输出。
func (c *Coordinator) executeSequential(ctx context.Context, r *run) (*outcome, error) {
	ordered := c.sequentialOrder(r)
	responses := make([]types.AgentResponse, 0, len(ordered))
	for i, a := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cctx := r.base.WithPriorResponses(responses...)
		resp, err := c.invoke(ctx, r, a, cctx)
		if err != nil {
			continue
		}
		r.logger.Debug("sequential step completed",
			zap.Int("step", i+1),
			zap.String("agent_id", resp.AgentID),
		)
		responses = append(responses, *resp)
	}
	return &outcome{kind: strategy.KindSequential, responses: responses}, nil
}

func (c *Coordinator) sequentialOrder(r *run) []agent.Agent {
	type ranked struct {
		a         agent.Agent
		p         types.AgentProfile
		relevance float64
	}
	items := make([]ranked, len(r.agents))
	for i, a := range r.agents {
		p := a.Profile()
		items[i] = ranked{a: a, p: p, relevance: c.scorer.Relevance(r.query, p.SpecializationTags)}
	}
	slices.SortStableFunc(items, func(x, y ranked) int {
		if d := cmp.Compare(x.p.Tier, y.p.Tier); d != 0 {
			return d
		}
		if d := cmp.Compare(y.relevance, x.relevance); d != 0 {
			return d
		}
		return cmp.Compare(x.p.ID, y.p.ID)
	})
	out := make([]agent.Agent, len(items))
	for i, it := range items {
		out[i] = it.a
	}
	return out
}

func (c *Coordinator) executeParallel(ctx context.Context, r *run) (*outcome, error) {
	responses, err := c.fanOut(ctx, r, r.agents, r.base)
	if err != nil {
		return nil, err
	}
	return &outcome{kind: strategy.KindParallel, responses: responses}, nil
}

// executeConsensus 并行执行后做迭代合并草稿，冲突检测与全集共识由后续阶段完成。
func (c *Coordinator) executeConsensus(ctx context.Context, r *run) (*outcome, error) {
	responses, err := c.fanOut(ctx, r, r.agents, r.base)
	if err != nil {
		return nil, err
	}
	return &outcome{
		kind:      strategy.KindConsensus,
		responses: responses,
		draft:     synthesis.MergeDraft(responses),
	}, nil
}

// executeHierarchical 主 Agent 为 tier 最低者（同 tier 取 id 最小）。
// 专家按专长标签分组（可重叠），各组并发执行，每个专家只调用一次；
// 主 Agent 最后执行，上下文包含全部专家输出。
func (c *Coordinator) executeHierarchical(ctx context.Context, r *run) (*outcome, error) {
	master, specialists := pickMaster(r.agents)
	groups := specializationGroups(specialists)

	calls := make(map[string]func() (*types.AgentResponse, error), len(specialists))
	for _, s := range specialists {
		calls[s.Profile().ID] = sync.OnceValues(func() (*types.AgentResponse, error) {
			return c.invoke(ctx, r, s, r.base.Clone())
		})
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	g := new(errgroup.Group)
	if c.config.MaxConcurrency > 0 {
		g.SetLimit(c.config.MaxConcurrency)
	}
	for _, name := range names {
		members := groups[name]
		g.Go(func() error {
			ok := 0
			for _, m := range members {
				if _, err := calls[m.Profile().ID](); err == nil {
					ok++
				}
			}
			r.logger.Debug("specialist group completed",
				zap.String("group", name),
				zap.Int("members", len(members)),
				zap.Int("succeeded", ok),
			)
			return nil
		})
	}
	_ = g.Wait()

	specialistResponses := make([]types.AgentResponse, 0, len(specialists))
	for _, s := range specialists {
		if resp, err := calls[s.Profile().ID](); err == nil {
			specialistResponses = append(specialistResponses, *resp)
		}
	}
	specialistResponses = types.SortResponsesByAgent(specialistResponses)

	responses := specialistResponses
	masterID := ""
	if master != nil {
		masterID = master.Profile().ID
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.invoke(ctx, r, master, r.base.WithPriorResponses(specialistResponses...))
		if err == nil {
			responses = append(slices.Clone(specialistResponses), *resp)
		}
	}
	return &outcome{kind: strategy.KindHierarchical, responses: responses, masterID: masterID}, nil
}

func pickMaster(agents []agent.Agent) (agent.Agent, []agent.Agent) {
	if len(agents) == 0 {
		return nil, nil
	}
	idx := 0
	for i, a := range agents[1:] {
		p, best := a.Profile(), agents[idx].Profile()
		if p.Tier < best.Tier || (p.Tier == best.Tier && p.ID < best.ID) {
			idx = i + 1
		}
	}
	rest := make([]agent.Agent, 0, len(agents)-1)
	rest = append(rest, agents[:idx]...)
	rest = append(rest, agents[idx+1:]...)
	return agents[idx], rest
}

func specializationGroups(specialists []agent.Agent) map[string][]agent.Agent {
	groups := make(map[string][]agent.Agent)
	for _, s := range specialists {
		tags := s.Profile().SpecializationTags
		if len(tags) == 0 {
			groups[generalGroup] = append(groups[generalGroup], s)
			continue
		}
		seen := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			groups[tag] = append(groups[tag], s)
		}
	}
	return groups
}

// executeAdaptive 分类后委派给具体策略
func (c *Coordinator) executeAdaptive(ctx context.Context, r *run) (*outcome, error) {
	target, err := c.adaptiveTarget(r)
	if err != nil {
		return nil, err
	}
	r.logger.Info("adaptive strategy delegated", zap.String("target", string(target)))
	return c.executors[target](ctx, r)
}

// adaptiveTarget 根据 (n, 查询复杂度, 上下文复杂度, 紧急度, tier 分布) 选择目标策略；
// 目标策略的数量或能力要求不满足时依次回退到 parallel、sequential，都不满足则报错。
func (c *Coordinator) adaptiveTarget(r *run) (strategy.Kind, error) {
	n := len(r.profiles)
	qc := c.scorer.Complexity(r.query)
	cc := r.base.ContextComplexity()
	urgency := r.base.Urgency

	var target strategy.Kind
	switch {
	case n == 1:
		target = strategy.KindSequential
	case qc > c.config.Selector.HighComplexity && n >= 3:
		target = strategy.KindConsensus
	case distinctAuthority(r.profiles) && n >= 3 && cc >= 0.5:
		target = strategy.KindHierarchical
	case urgency >= c.config.Selector.UrgencyThreshold || qc < 0.3:
		target = strategy.KindParallel
	case n <= 3:
		target = strategy.KindSequential
	default:
		target = strategy.KindParallel
	}

	var reasons []string
	tried := make(map[strategy.Kind]struct{}, 3)
	for _, k := range []strategy.Kind{target, strategy.KindParallel, strategy.KindSequential} {
		if _, dup := tried[k]; dup {
			continue
		}
		tried[k] = struct{}{}
		s, ok := c.registry.Lookup(k)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s: not registered", k))
			continue
		}
		if err := validateRequirements(s, r.profiles); err != nil {
			reason := err.Error()
			if e, ok := types.AsError(err); ok && e.Reasoning != "" {
				reason = e.Reasoning
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", k, reason))
			continue
		}
		return k, nil
	}
	return "", types.NewError(types.ErrStrategyRequirementsUnmet, "no adaptive delegate satisfies its requirements").
		WithReasoning(strings.Join(reasons, "; "))
}

func distinctAuthority(profiles []types.AgentProfile) bool {
	if len(profiles) == 0 {
		return false
	}
	lo, hi := profiles[0].Tier, profiles[0].Tier
	for _, p := range profiles[1:] {
		lo = min(lo, p.Tier)
		hi = max(hi, p.Tier)
	}
	return lo != hi
}
