// =============================================================================
// 📦 AgentQuorum 默认配置
// =============================================================================
// 默认值与各组件 DefaultConfig 保持一致，并提供到组件配置的转换
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/consensus"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/agent/scoring"
	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/agent/synthesis"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:       DefaultServerConfig(),
		Coordination: DefaultCoordinationConfig(),
		Persistence:  DefaultPersistenceConfig(),
		Redis:        DefaultRedisConfig(),
		Database:     DefaultDatabaseConfig(),
		Log:          DefaultLogConfig(),
		Telemetry:    DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultCoordinationConfig 由各组件默认值展开
func DefaultCoordinationConfig() CoordinationConfig {
	sel := strategy.DefaultSelectorConfig()
	lex := scoring.DefaultLexicalConfig()
	cons := consensus.DefaultConfig()
	syn := synthesis.DefaultConfig()
	st := collaboration.DefaultStateConfig()

	return CoordinationConfig{
		MaxConcurrency: 8,
		AgentTimeout:   30 * time.Second,

		CapabilityWeight:    sel.CapabilityWeight,
		CountWeight:         sel.CountWeight,
		HighComplexity:      sel.HighComplexity,
		UrgencyThreshold:    sel.UrgencyThreshold,
		ParallelUrgencyBias: sel.ParallelUrgencyBias,

		LengthNorm:       lex.LengthNorm,
		ConnectiveWeight: lex.ConnectiveWeight,
		MinKeywordLength: lex.MinKeywordLength,

		AcceptThreshold:         cons.AcceptThreshold,
		SynthesizeThreshold:     cons.SynthesizeThreshold,
		SimilarityAccept:        cons.SimilarityAccept,
		SimilaritySynthesize:    cons.SimilaritySynthesize,
		MajorityGroupSimilarity: cons.MajorityGroupSimilarity,
		MajorityAccept:          cons.MajorityAccept,
		UnanimousLevel:          cons.UnanimousLevel,
		HighLevel:               cons.HighLevel,
		MediumLevel:             cons.MediumLevel,
		AuthorityWeight:         cons.AuthorityWeight,
		ExpertiseWeight:         cons.ExpertiseWeight,
		RelevanceWeight:         cons.RelevanceWeight,
		FallbackScore:           cons.FallbackScore,

		QualityConfidenceWeight: syn.ConfidenceWeight,
		QualityLengthWeight:     syn.LengthWeight,
		QualityLengthNorm:       syn.LengthNorm,

		TrackerCapacity: st.TrackerCapacity,
		LogCapacity:     st.LogCapacity,
	}
}

// DefaultPersistenceConfig 返回默认历史存储配置
func DefaultPersistenceConfig() PersistenceConfig {
	def := persistence.DefaultStoreConfig()
	return PersistenceConfig{
		Type:       string(def.Type),
		BaseDir:    def.BaseDir,
		MaxRecords: def.MaxRecords,
		KeyPrefix:  def.Redis.KeyPrefix,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "agentquorum",
		Password:        "",
		Name:            "agentquorum",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "agentquorum",
		SampleRate:   0.1,
	}
}

// =============================================================================
// 🔄 组件配置转换
// =============================================================================

// CoordinatorConfig 转换为 collaboration.Config
func (c *Config) CoordinatorConfig() collaboration.Config {
	cc := c.Coordination
	return collaboration.Config{
		MaxConcurrency: cc.MaxConcurrency,
		AgentTimeout:   cc.AgentTimeout,
		Selector: strategy.SelectorConfig{
			CapabilityWeight:    cc.CapabilityWeight,
			CountWeight:         cc.CountWeight,
			HighComplexity:      cc.HighComplexity,
			UrgencyThreshold:    cc.UrgencyThreshold,
			ParallelUrgencyBias: cc.ParallelUrgencyBias,
		},
		Scoring: scoring.LexicalConfig{
			LengthNorm:       cc.LengthNorm,
			ConnectiveWeight: cc.ConnectiveWeight,
			MinKeywordLength: cc.MinKeywordLength,
		},
		Consensus: consensus.Config{
			AcceptThreshold:         cc.AcceptThreshold,
			SynthesizeThreshold:     cc.SynthesizeThreshold,
			SimilarityAccept:        cc.SimilarityAccept,
			SimilaritySynthesize:    cc.SimilaritySynthesize,
			MajorityGroupSimilarity: cc.MajorityGroupSimilarity,
			MajorityAccept:          cc.MajorityAccept,
			UnanimousLevel:          cc.UnanimousLevel,
			HighLevel:               cc.HighLevel,
			MediumLevel:             cc.MediumLevel,
			AuthorityWeight:         cc.AuthorityWeight,
			ExpertiseWeight:         cc.ExpertiseWeight,
			RelevanceWeight:         cc.RelevanceWeight,
			FallbackScore:           cc.FallbackScore,
		},
		Synthesis: synthesis.Config{
			ConfidenceWeight: cc.QualityConfidenceWeight,
			LengthWeight:     cc.QualityLengthWeight,
			LengthNorm:       cc.QualityLengthNorm,
		},
		State: collaboration.StateConfig{
			TrackerCapacity: cc.TrackerCapacity,
			LogCapacity:     cc.LogCapacity,
		},
	}
}

// StoreConfig 转换为 persistence.StoreConfig，Redis 连接参数取自 Redis 段
func (c *Config) StoreConfig() persistence.StoreConfig {
	return persistence.StoreConfig{
		Type:       persistence.StoreType(c.Persistence.Type),
		BaseDir:    c.Persistence.BaseDir,
		MaxRecords: c.Persistence.MaxRecords,
		Retention:  c.Persistence.Retention,
		Redis: persistence.RedisStoreConfig{
			Addr:      c.Redis.Addr,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			PoolSize:  c.Redis.PoolSize,
			KeyPrefix: c.Persistence.KeyPrefix,
		},
	}
}
