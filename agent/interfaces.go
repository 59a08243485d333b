package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/agentquorum/types"
)

// Agent 可被独立寻址的响应者。
// 在一次协调调用期间，Agent 被视为无状态、不可变的可调用对象。
type Agent interface {
	Profile() types.AgentProfile
	Execute(ctx context.Context, query string, cctx *types.Context) (*types.AgentResponse, error)
}

// ExecuteFunc is the signature adapted by Func.
type ExecuteFunc func(ctx context.Context, query string, cctx *types.Context) (*types.AgentResponse, error)

// Func adapts a plain function to the Agent interface.
type Func struct {
	profile types.AgentProfile
	fn      ExecuteFunc
}

// NewFunc creates a function-backed agent.
func NewFunc(profile types.AgentProfile, fn ExecuteFunc) *Func {
	return &Func{profile: profile, fn: fn}
}

// Profile returns the agent descriptor.
func (f *Func) Profile() types.AgentProfile { return f.profile }

// Execute invokes the wrapped function and fills in missing response fields.
func (f *Func) Execute(ctx context.Context, query string, cctx *types.Context) (*types.AgentResponse, error) {
	if f.fn == nil {
		return nil, fmt.Errorf("agent %s: no execute function", f.profile.ID)
	}
	resp, err := f.fn(ctx, query, cctx)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("agent %s: nil response", f.profile.ID)
	}
	out := *resp
	if out.AgentID == "" {
		out.AgentID = f.profile.ID
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	out.Confidence = types.ClampConfidence(out.Confidence)
	return &out, nil
}

// Profiles extracts the descriptors of a pool in order.
func Profiles(agents []Agent) []types.AgentProfile {
	out := make([]types.AgentProfile, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Profile())
	}
	return out
}
