package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHistoryStore is a Redis-based implementation of HistoryStore.
// Records are stored as JSON strings and indexed by sorted sets scored by
// creation time, one for all records and one per strategy.
type RedisHistoryStore struct {
	client    redis.UniversalClient
	keyPrefix string
	retention time.Duration
	ownClient bool
}

// NewRedisHistoryStore creates a new Redis-based history store
func NewRedisHistoryStore(config StoreConfig) (*RedisHistoryStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		PoolSize: config.Redis.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := NewRedisHistoryStoreWithClient(client, config.Redis.KeyPrefix, config.Retention)
	store.ownClient = true
	return store, nil
}

// NewRedisHistoryStoreWithClient wraps an existing client. The caller keeps
// ownership of the client; Close does not close it.
func NewRedisHistoryStoreWithClient(client redis.UniversalClient, keyPrefix string, retention time.Duration) *RedisHistoryStore {
	if keyPrefix == "" {
		keyPrefix = "agentquorum:"
	}
	return &RedisHistoryStore{
		client:    client,
		keyPrefix: keyPrefix + "history:",
		retention: retention,
	}
}

// Close closes the store
func (s *RedisHistoryStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

// Ping checks if the store is healthy
func (s *RedisHistoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisHistoryStore) recordKey(id string) string {
	return s.keyPrefix + "data:" + id
}

func (s *RedisHistoryStore) indexKey(strategy string) string {
	if strategy == "" {
		return s.keyPrefix + "all"
	}
	return s.keyPrefix + "strategy:" + strategy
}

// SaveRecord implements HistoryStore.
func (s *RedisHistoryStore) SaveRecord(ctx context.Context, record *Record) error {
	if record == nil {
		return ErrInvalidInput
	}
	prepareRecord(record)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	score := float64(record.CreatedAt.UnixNano())
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(record.ID), data, s.retention)
	pipe.ZAdd(ctx, s.indexKey(""), redis.Z{Score: score, Member: record.ID})
	if record.Strategy != "" {
		pipe.ZAdd(ctx, s.indexKey(record.Strategy), redis.Z{Score: score, Member: record.ID})
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListRecords implements HistoryStore.
func (s *RedisHistoryStore) ListRecords(ctx context.Context, strategy string, limit int) ([]*Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	key := s.indexKey(strategy)
	ids, err := s.client.ZRevRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*Record, 0, len(ids))
	var expired []any
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			expired = append(expired, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
		}
		out = append(out, &r)
	}

	// 过期记录的索引项顺手清理
	if len(expired) > 0 {
		s.client.ZRem(ctx, key, expired...)
	}
	return out, nil
}
