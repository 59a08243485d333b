package types

import (
	"context"
	"maps"
	"slices"
)

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyTraceID contextKey = "trace_id"
	keyRunID   contextKey = "run_id"
)

// WithTraceID adds trace ID to context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID extracts trace ID from context.
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTraceID).(string)
	return v, ok && v != ""
}

// WithRunID adds run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// RunID extracts run ID from context.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRunID).(string)
	return v, ok && v != ""
}

// Context 协调上下文。
// 引擎只读取其中的启发式信号（紧急度、复杂度、前序响应、权重），
// 不对 Values 做任何语义解释。
type Context struct {
	// Urgency 紧急度信号 [0,1]
	Urgency float64 `json:"urgency,omitempty"`
	// Complexity 调用方提供的上下文复杂度 [0,1]，为空时由引擎推断
	Complexity *float64 `json:"complexity,omitempty"`
	// PriorResponses 前序 Agent 的输出
	PriorResponses []AgentResponse `json:"prior_responses,omitempty"`
	// AgentWeights 加权平均共识使用的 Agent 权重
	AgentWeights map[string]float64 `json:"agent_weights,omitempty"`
	// Values 调用方的不透明数据
	Values map[string]any `json:"values,omitempty"`
}

// Clone returns a deep-enough copy: slices and maps are copied, values are shared.
func (c *Context) Clone() *Context {
	if c == nil {
		return &Context{}
	}
	out := &Context{
		Urgency:        c.Urgency,
		PriorResponses: slices.Clone(c.PriorResponses),
		AgentWeights:   maps.Clone(c.AgentWeights),
		Values:         maps.Clone(c.Values),
	}
	if c.Complexity != nil {
		v := *c.Complexity
		out.Complexity = &v
	}
	return out
}

// WithPriorResponses returns a snapshot whose PriorResponses are the receiver's
// followed by rs. The receiver is not modified.
func (c *Context) WithPriorResponses(rs ...AgentResponse) *Context {
	out := c.Clone()
	out.PriorResponses = append(out.PriorResponses, rs...)
	return out
}

// ContextComplexity returns the caller-supplied complexity or a value inferred
// from the amount of material the context carries.
func (c *Context) ContextComplexity() float64 {
	if c == nil {
		return 0
	}
	if c.Complexity != nil {
		return ClampConfidence(*c.Complexity)
	}
	inferred := 0.1*float64(len(c.PriorResponses)) + 0.05*float64(len(c.Values))
	if inferred > 1 {
		return 1
	}
	return inferred
}
