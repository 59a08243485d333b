// Package agentquorum provides a top-level convenience entry point for
// building a coordination engine with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/agentquorum"
//
//	c, err := agentquorum.New()
//	c, err := agentquorum.New(agentquorum.WithConfig(cfg), agentquorum.WithLogger(logger))
//	result, err := c.Coordinate(ctx, collaboration.Request{Query: q, Agents: pool})
//
// The returned coordinator is the same [collaboration.Coordinator] the HTTP
// server uses.
package agentquorum

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/config"
)

// Option configures the coordinator created by [New].
type Option func(*options)

type options struct {
	logger  *zap.Logger
	cfg     *config.Config
	history persistence.HistoryStore
	metrics collaboration.MetricsRecorder
	tracer  trace.Tracer
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfig uses cfg instead of [config.DefaultConfig]. The config is validated.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithHistoryStore records every successful coordination into h.
func WithHistoryStore(h persistence.HistoryStore) Option {
	return func(o *options) { o.history = h }
}

// WithMetrics reports coordination metrics to m, usually a *metrics.Collector.
func WithMetrics(m collaboration.MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer for coordination spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New creates a [collaboration.Coordinator]. Without options it uses the
// default thresholds and keeps no coordination history.
func New(opts ...Option) (*collaboration.Coordinator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agentquorum: invalid config: %w", err)
	}

	var copts []collaboration.Option
	if o.history != nil {
		copts = append(copts, collaboration.WithHistoryStore(o.history))
	}
	if o.metrics != nil {
		copts = append(copts, collaboration.WithMetrics(o.metrics))
	}
	if o.tracer != nil {
		copts = append(copts, collaboration.WithTracer(o.tracer))
	}
	return collaboration.NewCoordinator(cfg.CoordinatorConfig(), o.logger, copts...), nil
}
