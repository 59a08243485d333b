package persistence

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeFile     StoreType = "file"
	StoreTypeRedis    StoreType = "redis"
	StoreTypeDatabase StoreType = "database"
)

// StoreConfig is the base configuration for all store implementations
type StoreConfig struct {
	// Type is the storage backend type
	Type StoreType `json:"type" yaml:"type"`

	// BaseDir is the base directory for file-based storage
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	// MaxRecords caps the number of records kept by memory and file stores (0 = unlimited)
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// Retention is how long redis keeps a record (0 = forever)
	Retention time.Duration `json:"retention" yaml:"retention"`

	// Redis configuration (only used when Type is "redis")
	Redis RedisStoreConfig `json:"redis" yaml:"redis"`
}

// RedisStoreConfig contains Redis-specific configuration
type RedisStoreConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	PoolSize int    `json:"pool_size" yaml:"pool_size"`

	// KeyPrefix is the prefix for all Redis keys
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// DefaultStoreConfig returns the default store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:       StoreTypeMemory,
		BaseDir:    "./data/history",
		MaxRecords: 1000,
		Redis: RedisStoreConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "agentquorum:",
		},
	}
}

// Store is the base interface for all persistent stores
type Store interface {
	// Close closes the store and releases resources
	Close() error

	// Ping checks if the store is healthy
	Ping(ctx context.Context) error
}

// Record 一次成功协调调用的摘要
type Record struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	RunID            string    `json:"run_id,omitempty" gorm:"size:64"`
	Strategy         string    `json:"strategy" gorm:"index;size:32"`
	ExecutedStrategy string    `json:"executed_strategy" gorm:"size:32"`
	Query            string    `json:"query" gorm:"type:text"`
	AgentCount       int       `json:"agent_count"`
	ResponseCount    int       `json:"response_count"`
	FailedAgents     int       `json:"failed_agents"`
	ConflictCount    int       `json:"conflict_count"`
	ConsensusScore   float64   `json:"consensus_score"`
	ConsensusLevel   string    `json:"consensus_level,omitempty" gorm:"size:16"`
	Confidence       float64   `json:"confidence"`
	QualityScore     float64   `json:"quality_score"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

// TableName implements gorm's tabler interface.
func (Record) TableName() string { return "coordination_records" }

// HistoryStore 协调历史存储
type HistoryStore interface {
	Store

	// SaveRecord persists a record, assigning ID and CreatedAt when empty
	SaveRecord(ctx context.Context, record *Record) error

	// ListRecords returns records newest first. An empty strategy matches all
	// records; limit <= 0 means no limit.
	ListRecords(ctx context.Context, strategy string, limit int) ([]*Record, error)
}
