// =============================================================================
// AgentQuorum 主入口
// =============================================================================
// 服务入口点，包含 HTTP 协调 API、健康检查、Prometheus 指标与一次性 CLI 协调
//
// 使用方法:
//
//	agentquorum serve                                   # 启动服务
//	agentquorum serve --config config.yaml --pool pool.yaml
//	agentquorum run --pool pool.yaml --query "..."      # 执行一次协调并输出 JSON
//	agentquorum version                                 # 显示版本信息
//	agentquorum health                                  # 健康检查
// =============================================================================

// @title AgentQuorum API
// @version 1.0.0
// @description AgentQuorum coordinates a pool of agents with sequential, parallel,
// @description hierarchical, consensus and adaptive strategies.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/config"
	"github.com/BaSui01/agentquorum/internal/database"
	"github.com/BaSui01/agentquorum/types"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "run":
		if err := runOnce(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Coordination failed: %v\n", err)
			os.Exit(1)
		}
	case "version":
		printVersion(os.Stdout)
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

// loadConfig 按 默认值 → YAML → 环境变量 加载并验证配置
func loadConfig(path string) (*config.Config, config.LoadReport, error) {
	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	return cfg, loader.Report(), err
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	poolPath := fs.String("pool", "", "Path to agent pool file (overrides server.pool_file)")
	_ = fs.Parse(args)

	cfg, report, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *poolPath != "" {
		cfg.Server.PoolFile = *poolPath
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting AgentQuorum",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)
	logger.Info("Configuration loaded",
		zap.String("file", report.File),
		zap.Strings("env_overrides", report.EnvKeys),
	)

	srv := NewServer(cfg, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	srv.WaitForShutdown(context.Background())

	logger.Info("AgentQuorum stopped")
}

// =============================================================================
// ▶️ run 命令
// =============================================================================

// runOnce 加载 Agent 池执行一次协调，结果以 JSON 写入 out
func runOnce(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	poolPath := fs.String("pool", "", "Path to agent pool file")
	query := fs.String("query", "", "Query to coordinate")
	strategyName := fs.String("strategy", "", "Strategy override: sequential, parallel, hierarchical, consensus, adaptive")
	timeout := fs.Duration("timeout", 0, "Overall timeout (0 = none)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *poolPath == "" || *query == "" {
		return errors.New("--pool and --query are required")
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := agent.LoadStaticPool(*poolPath)
	if err != nil {
		return err
	}

	req := collaboration.Request{Query: *query, Agents: pool}
	if *strategyName != "" {
		k, err := strategy.ParseKind(*strategyName)
		if err != nil {
			return err
		}
		req.Strategy = &k
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	logger := initLogger(config.LogConfig{Level: "error", Format: "console", OutputPaths: []string{"stderr"}})
	defer func() { _ = logger.Sync() }()

	coordinator := collaboration.NewCoordinator(cfg.CoordinatorConfig(), logger)
	result, err := coordinator.Coordinate(ctx, req)
	if err != nil {
		if e, ok := types.AsError(err); ok && e.Reasoning != "" {
			return fmt.Errorf("%w (strategy=%s, reasoning=%s)", err, e.Strategy, e.Reasoning)
		}
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	_ = fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "AgentQuorum %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `AgentQuorum - Multi-Agent Coordination & Consensus Engine

Usage:
  agentquorum <command> [options]

Commands:
  serve     Start the HTTP API and metrics servers
  run       Coordinate one query against a pool file and print the result
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)
  --pool <path>     Path to agent pool file (YAML)

Options for 'run':
  --config <path>   Path to configuration file (YAML)
  --pool <path>     Path to agent pool file (YAML), required
  --query <text>    Query to coordinate, required
  --strategy <kind> Strategy override
  --timeout <dur>   Overall timeout, e.g. 30s

Examples:
  agentquorum serve --config /etc/agentquorum/config.yaml
  agentquorum run --pool pool.yaml --query "How should a mild fever be managed?" --strategy consensus
  agentquorum health --addr http://localhost:8080
  agentquorum version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}

// =============================================================================
// 🗄️ 历史存储
// =============================================================================

// openHistoryStore 按 persistence.type 创建历史存储；database 类型同时返回连接池
func openHistoryStore(cfg *config.Config, recorder database.StatsRecorder, logger *zap.Logger) (persistence.HistoryStore, *database.PoolManager, error) {
	storeCfg := cfg.StoreConfig()
	if storeCfg.Type != persistence.StoreTypeDatabase {
		store, err := persistence.NewHistoryStore(storeCfg, nil)
		return store, nil, err
	}

	pm, err := openDatabase(cfg.Database, recorder, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := persistence.NewHistoryStore(storeCfg, pm.DB())
	if err != nil {
		_ = pm.Close()
		return nil, nil, err
	}
	return store, pm, nil
}

// openDatabase 根据配置打开数据库连接池
func openDatabase(dbCfg config.DatabaseConfig, recorder database.StatsRecorder, logger *zap.Logger) (*database.PoolManager, error) {
	if dbCfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}

	poolCfg := database.DefaultPoolConfig()
	if dbCfg.MaxOpenConns > 0 {
		poolCfg.MaxOpenConns = dbCfg.MaxOpenConns
	}
	if dbCfg.MaxIdleConns > 0 {
		poolCfg.MaxIdleConns = min(dbCfg.MaxIdleConns, poolCfg.MaxOpenConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		poolCfg.ConnMaxLifetime = dbCfg.ConnMaxLifetime
	}

	var opts []database.Option
	if recorder != nil {
		opts = append(opts, database.WithStatsRecorder(dbCfg.Driver, recorder))
	}

	pm, err := database.Open(dbCfg.Driver, dbCfg.DSN(), poolCfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logger.Info("Database connected", zap.String("driver", dbCfg.Driver))
	return pm, nil
}
