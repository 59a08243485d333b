package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 是 AgentQuorum 的完整配置结构
type Config struct {
	// Server HTTP 服务配置
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Coordination 协调引擎配置（并发、超时、全部阈值）
	Coordination CoordinationConfig `yaml:"coordination" env:"COORDINATION"`

	// Persistence 协调历史存储配置
	Persistence PersistenceConfig `yaml:"persistence" env:"PERSISTENCE"`

	// Redis 配置（persistence.type=redis 时使用）
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database 数据库配置（persistence.type=database 时使用）
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Metrics 端口
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// 每个 IP 每秒请求数
	RateLimitRPS int `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// 突发请求上限
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// Agent 池文件（YAML，StaticAgent 定义）
	PoolFile string `yaml:"pool_file" env:"POOL_FILE"`
}

// CoordinationConfig 协调引擎配置
type CoordinationConfig struct {
	// 扇出并发上限，0 表示不限制
	MaxConcurrency int `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
	// 单个 Agent 调用超时
	AgentTimeout time.Duration `yaml:"agent_timeout" env:"AGENT_TIMEOUT"`

	// 策略选择器
	CapabilityWeight    float64 `yaml:"capability_weight" env:"CAPABILITY_WEIGHT"`
	CountWeight         float64 `yaml:"count_weight" env:"COUNT_WEIGHT"`
	HighComplexity      float64 `yaml:"high_complexity" env:"HIGH_COMPLEXITY"`
	UrgencyThreshold    float64 `yaml:"urgency_threshold" env:"URGENCY_THRESHOLD"`
	ParallelUrgencyBias float64 `yaml:"parallel_urgency_bias" env:"PARALLEL_URGENCY_BIAS"`

	// 词法评分
	LengthNorm       float64 `yaml:"length_norm" env:"LENGTH_NORM"`
	ConnectiveWeight float64 `yaml:"connective_weight" env:"CONNECTIVE_WEIGHT"`
	MinKeywordLength int     `yaml:"min_keyword_length" env:"MIN_KEYWORD_LENGTH"`

	// 共识阈值
	AcceptThreshold         float64 `yaml:"accept_threshold" env:"ACCEPT_THRESHOLD"`
	SynthesizeThreshold     float64 `yaml:"synthesize_threshold" env:"SYNTHESIZE_THRESHOLD"`
	SimilarityAccept        float64 `yaml:"similarity_accept" env:"SIMILARITY_ACCEPT"`
	SimilaritySynthesize    float64 `yaml:"similarity_synthesize" env:"SIMILARITY_SYNTHESIZE"`
	MajorityGroupSimilarity float64 `yaml:"majority_group_similarity" env:"MAJORITY_GROUP_SIMILARITY"`
	MajorityAccept          float64 `yaml:"majority_accept" env:"MAJORITY_ACCEPT"`
	UnanimousLevel          float64 `yaml:"unanimous_level" env:"UNANIMOUS_LEVEL"`
	HighLevel               float64 `yaml:"high_level" env:"HIGH_LEVEL"`
	MediumLevel             float64 `yaml:"medium_level" env:"MEDIUM_LEVEL"`
	AuthorityWeight         float64 `yaml:"authority_weight" env:"AUTHORITY_WEIGHT"`
	ExpertiseWeight         float64 `yaml:"expertise_weight" env:"EXPERTISE_WEIGHT"`
	RelevanceWeight         float64 `yaml:"relevance_weight" env:"RELEVANCE_WEIGHT"`
	FallbackScore           float64 `yaml:"fallback_score" env:"FALLBACK_SCORE"`

	// 合成质量
	QualityConfidenceWeight float64 `yaml:"quality_confidence_weight" env:"QUALITY_CONFIDENCE_WEIGHT"`
	QualityLengthWeight     float64 `yaml:"quality_length_weight" env:"QUALITY_LENGTH_WEIGHT"`
	QualityLengthNorm       int     `yaml:"quality_length_norm" env:"QUALITY_LENGTH_NORM"`

	// 状态
	TrackerCapacity int `yaml:"tracker_capacity" env:"TRACKER_CAPACITY"`
	LogCapacity     int `yaml:"log_capacity" env:"LOG_CAPACITY"`
}

// PersistenceConfig 历史存储配置
type PersistenceConfig struct {
	// 存储类型: memory, file, redis, database
	Type string `yaml:"type" env:"TYPE"`
	// 文件存储根目录
	BaseDir string `yaml:"base_dir" env:"BASE_DIR"`
	// 内存/文件存储最大记录数
	MaxRecords int `yaml:"max_records" env:"MAX_RECORDS"`
	// 记录保留时长，0 表示永久
	Retention time.Duration `yaml:"retention" env:"RETENTION"`
	// Redis key 前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名（sqlite 时为文件路径）
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, errors.New("invalid HTTP port"))
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, errors.New("invalid metrics port"))
	}
	if c.Coordination.MaxConcurrency < 0 {
		errs = append(errs, errors.New("max_concurrency must not be negative"))
	}
	if c.Coordination.AgentTimeout < 0 {
		errs = append(errs, errors.New("agent_timeout must not be negative"))
	}

	coord := c.CoordinatorConfig()
	if err := coord.Consensus.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("coordination: %w", err))
	}
	if w := coord.Synthesis.ConfidenceWeight + coord.Synthesis.LengthWeight; w <= 0 {
		errs = append(errs, errors.New("coordination: quality weights must sum to a positive value"))
	}

	switch c.Persistence.Type {
	case "", "memory", "file", "redis":
	case "database":
		if c.Database.DSN() == "" {
			errs = append(errs, fmt.Errorf("database driver %q is not supported", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown persistence type %q", c.Persistence.Type))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %w", errors.Join(errs...))
	}
	return nil
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
