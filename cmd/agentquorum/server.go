package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/api/handlers"
	"github.com/BaSui01/agentquorum/config"
	"github.com/BaSui01/agentquorum/internal/database"
	"github.com/BaSui01/agentquorum/internal/metrics"
	"github.com/BaSui01/agentquorum/internal/server"
	"github.com/BaSui01/agentquorum/internal/telemetry"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 AgentQuorum 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// api 与 metrics 端点
	servers *server.Group

	// Handlers
	healthHandler       *handlers.HealthHandler
	coordinationHandler *handlers.CoordinationHandler

	// 协调引擎及其依赖
	coordinator *collaboration.Coordinator
	history     persistence.HistoryStore
	db          *database.PoolManager
	otel        *telemetry.Providers

	// 指标收集器
	metricsCollector *metrics.Collector

	// Rate limiter 生命周期管理
	rateLimiterCancel context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	if s.metricsCollector == nil {
		s.metricsCollector = metrics.NewCollector("agentquorum", s.logger)
	}

	// 2. 初始化遥测
	providers, err := telemetry.Init(s.cfg.Telemetry, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.otel = providers

	// 3. 初始化协调引擎与 Handlers
	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	// 4. 启动 API 与 Metrics 端点
	if err := s.startServers(); err != nil {
		return fmt.Errorf("failed to start servers: %w", err)
	}

	s.logger.Info("All servers started",
		zap.String("http_addr", s.servers.Addr("api")),
		zap.String("metrics_addr", s.servers.Addr("metrics")),
		zap.String("history_store", s.cfg.Persistence.Type),
	)
	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initHandlers 初始化历史存储、Agent 池、协调器与 handlers
func (s *Server) initHandlers() error {
	history, db, err := openHistoryStore(s.cfg, s.metricsCollector, s.logger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	s.history = history
	s.db = db

	var pool []agent.Agent
	if s.cfg.Server.PoolFile != "" {
		pool, err = agent.LoadStaticPool(s.cfg.Server.PoolFile)
		if err != nil {
			return err
		}
		s.logger.Info("Agent pool loaded",
			zap.String("file", s.cfg.Server.PoolFile),
			zap.Int("agents", len(pool)),
		)
	} else {
		s.logger.Warn("No agent pool configured, /api/v1/coordinate will reject every request")
	}

	s.coordinator = collaboration.NewCoordinator(s.cfg.CoordinatorConfig(), s.logger,
		collaboration.WithHistoryStore(history),
		collaboration.WithMetrics(s.metricsCollector),
		collaboration.WithTracer(s.otel.Tracer()),
	)

	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("history", history.Ping))
	if db != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", db.Ping))
	}

	s.coordinationHandler = handlers.NewCoordinationHandler(s.coordinator, pool, history, s.logger)

	s.logger.Info("Handlers initialized")
	return nil
}

// routes 构建 API 路由与中间件链
func (s *Server) routes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// 协调 API
	s.coordinationHandler.Routes(mux)

	return Chain(mux,
		Recovery(s.logger),
		RequestID(),
		OTelTracing(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		RateLimiter(ctx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	)
}

// =============================================================================
// 🌐 HTTP 端点
// =============================================================================

// startServers 注册 api 与 metrics 端点并整组启动
func (s *Server) startServers() error {
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	s.servers = server.NewGroup(s.cfg.Server.ShutdownTimeout, s.logger)

	api := server.Config{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  2 * s.cfg.Server.ReadTimeout,
	}
	if err := s.servers.Add("api", s.routes(rateLimiterCtx), api); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsCfg := server.Config{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	if err := s.servers.Add("metrics", mux, metricsCfg); err != nil {
		return err
	}

	return s.servers.Start()
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown(ctx context.Context) {
	if s.servers != nil {
		if err := s.servers.Wait(ctx); err != nil {
			s.logger.Error("HTTP server exited with error", zap.Error(err))
		}
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 0. 停止 rate limiter 清理 goroutine
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	// 1. 关闭 API 与 Metrics 端点
	if s.servers != nil {
		if err := s.servers.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 2. 关闭历史存储与数据库
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Error("History store close error", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Database close error", zap.Error(err))
		}
	}

	// 3. 刷新遥测
	if err := s.otel.Shutdown(ctx); err != nil {
		s.logger.Error("Telemetry shutdown error", zap.Error(err))
	}

	s.logger.Info("Graceful shutdown completed")
}
