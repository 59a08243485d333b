package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ErrServerClosed 服务组已关闭
var ErrServerClosed = errors.New("server group is closed")

// Config 单个监听端点的配置
type Config struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

// DefaultConfig 返回默认端点配置，WriteTimeout 需覆盖最慢的一次协调调用
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

type endpoint struct {
	name     string
	server   *http.Server
	addr     string
	listener net.Listener
}

// ExitError 某个端点在运行中异常退出
type ExitError struct {
	Name string
	Err  error
}

func (e *ExitError) Error() string { return fmt.Sprintf("server %s exited: %v", e.Name, e.Err) }

func (e *ExitError) Unwrap() error { return e.Err }

// Group 一组同生共死的 HTTP 端点（api 与 metrics）。
// 任一端点启动失败会回收已启动的端点；运行中任一端点异常退出会触发整组关闭。
type Group struct {
	mu              sync.RWMutex
	endpoints       []*endpoint
	started         bool
	closed          bool
	exits           chan *ExitError
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewGroup 创建服务组，shutdownTimeout 为整组排空请求的上限
func NewGroup(shutdownTimeout time.Duration, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	return &Group{
		exits:           make(chan *ExitError, 1),
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With(zap.String("component", "http_server")),
	}
}

// Add 注册一个端点，必须在 Start 之前调用
func (g *Group) Add(name string, handler http.Handler, cfg Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.closed:
		return ErrServerClosed
	case g.started:
		return fmt.Errorf("cannot add %s: group already started", name)
	case slices.ContainsFunc(g.endpoints, func(e *endpoint) bool { return e.name == name }):
		return fmt.Errorf("duplicate endpoint %q", name)
	}

	g.endpoints = append(g.endpoints, &endpoint{
		name: name,
		addr: cfg.Addr,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	})
	return nil
}

// Start 依注册顺序监听全部端点（非阻塞）
func (g *Group) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrServerClosed
	}
	if g.started {
		return errors.New("server group already started")
	}

	for i, e := range g.endpoints {
		ln, err := net.Listen("tcp", e.addr)
		if err != nil {
			for _, prev := range g.endpoints[:i] {
				_ = prev.listener.Close()
				prev.listener = nil
			}
			return fmt.Errorf("listen %s on %s: %w", e.name, e.addr, err)
		}
		e.listener = ln
	}
	g.started = true

	for _, e := range g.endpoints {
		g.logger.Info("starting HTTP server",
			zap.String("server", e.name),
			zap.String("addr", e.listener.Addr().String()),
		)
		go g.serve(e, e.listener)
	}
	return nil
}

func (g *Group) serve(e *endpoint, ln net.Listener) {
	err := e.server.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	g.logger.Error("HTTP server failed", zap.String("server", e.name), zap.Error(err))
	select {
	case g.exits <- &ExitError{Name: e.name, Err: err}:
	default:
	}
}

// Shutdown 按注册的逆序关闭全部端点，重复调用返回 nil
func (g *Group) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	ctx, cancel := context.WithTimeout(ctx, g.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, e := range slices.Backward(g.endpoints) {
		if e.listener == nil {
			continue
		}
		if err := e.server.Shutdown(ctx); err != nil {
			g.logger.Error("HTTP server shutdown failed", zap.String("server", e.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
		e.listener = nil
	}
	g.logger.Info("HTTP servers stopped", zap.Int("count", len(g.endpoints)))
	return errors.Join(errs...)
}

// Wait 阻塞直到收到 SIGINT/SIGTERM、ctx 结束或某个端点异常退出，然后关闭整组。
// 端点异常退出时返回 *ExitError。
func (g *Group) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cause error
	select {
	case <-sigCtx.Done():
		g.logger.Info("shutdown requested", zap.Error(context.Cause(sigCtx)))
	case exit := <-g.exits:
		cause = exit
	}

	if err := g.Shutdown(context.Background()); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Addr 返回端点的实际监听地址；未启动时返回配置地址，未注册时返回空串
func (g *Group) Addr(name string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.endpoints {
		if e.name != name {
			continue
		}
		if e.listener != nil {
			return e.listener.Addr().String()
		}
		return e.addr
	}
	return ""
}

// Running 报告服务组是否已启动且未关闭
func (g *Group) Running() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.started && !g.closed
}
