package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testHistoryStore exercises the HistoryStore contract shared by every backend.
func testHistoryStore(t *testing.T, store HistoryStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	assert.ErrorIs(t, store.SaveRecord(ctx, nil), ErrInvalidInput)

	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	strategies := []string{"parallel", "sequential", "parallel", "consensus", "parallel"}
	for i, s := range strategies {
		rec := &Record{
			Strategy:       s,
			Query:          fmt.Sprintf("query %d", i),
			ResponseCount:  i + 1,
			ConsensusScore: 0.5,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SaveRecord(ctx, rec))
		assert.NotEmpty(t, rec.ID)
	}

	all, err := store.ListRecords(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "query 4", all[0].Query, "newest first")
	assert.Equal(t, "query 0", all[4].Query)

	parallel, err := store.ListRecords(ctx, "parallel", 2)
	require.NoError(t, err)
	require.Len(t, parallel, 2)
	assert.Equal(t, "query 4", parallel[0].Query)
	assert.Equal(t, "query 2", parallel[1].Query)

	none, err := store.ListRecords(ctx, "hierarchical", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryHistoryStore(t *testing.T) {
	store := NewMemoryHistoryStore(DefaultStoreConfig())
	testHistoryStore(t, store)

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Ping(context.Background()), ErrStoreClosed)
	assert.ErrorIs(t, store.SaveRecord(context.Background(), &Record{}), ErrStoreClosed)
}

func TestMemoryHistoryStore_MaxRecords(t *testing.T) {
	config := DefaultStoreConfig()
	config.MaxRecords = 3
	store := NewMemoryHistoryStore(config)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveRecord(ctx, &Record{Query: fmt.Sprintf("q%d", i)}))
	}
	records, err := store.ListRecords(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "q4", records[0].Query)
	assert.Equal(t, "q2", records[2].Query)
}

func TestMemoryHistoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryHistoryStore(DefaultStoreConfig())
	ctx := context.Background()
	require.NoError(t, store.SaveRecord(ctx, &Record{Query: "original"}))

	records, _ := store.ListRecords(ctx, "", 1)
	records[0].Query = "mutated"

	again, _ := store.ListRecords(ctx, "", 1)
	assert.Equal(t, "original", again[0].Query)
}

func TestFileHistoryStore(t *testing.T) {
	config := DefaultStoreConfig()
	config.Type = StoreTypeFile
	config.BaseDir = t.TempDir()

	store, err := NewFileHistoryStore(config)
	require.NoError(t, err)
	testHistoryStore(t, store)
	require.NoError(t, store.Close())

	// 重新打开后数据仍在
	reopened, err := NewFileHistoryStore(config)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ListRecords(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestRedisHistoryStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisHistoryStoreWithClient(client, "test:", 0)
	testHistoryStore(t, store)
	require.NoError(t, store.Close())
	assert.True(t, mr.Exists("test:history:all"))
}

func TestRedisHistoryStore_Retention(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisHistoryStoreWithClient(client, "", time.Minute)
	require.NoError(t, store.SaveRecord(ctx, &Record{Strategy: "parallel", Query: "short lived"}))

	mr.FastForward(2 * time.Minute)

	records, err := store.ListRecords(ctx, "parallel", 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	members, err := client.ZCard(ctx, "agentquorum:history:strategy:parallel").Result()
	require.NoError(t, err)
	assert.Zero(t, members, "expired ids are pruned from the index")
}

func TestNewRedisHistoryStore_FromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	config := DefaultStoreConfig()
	config.Type = StoreTypeRedis
	config.Redis.Addr = mr.Addr()

	store, err := NewHistoryStore(config, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGormHistoryStore(t *testing.T) {
	store, err := NewGormHistoryStore(openTestDB(t))
	require.NoError(t, err)
	testHistoryStore(t, store)
	require.NoError(t, store.Close())
}

func TestNewHistoryStore(t *testing.T) {
	t.Run("memory default", func(t *testing.T) {
		store, err := NewHistoryStore(StoreConfig{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryHistoryStore{}, store)
	})
	t.Run("database requires db", func(t *testing.T) {
		_, err := NewHistoryStore(StoreConfig{Type: StoreTypeDatabase}, nil)
		assert.Error(t, err)
	})
	t.Run("database", func(t *testing.T) {
		store, err := NewHistoryStore(StoreConfig{Type: StoreTypeDatabase}, openTestDB(t))
		require.NoError(t, err)
		assert.IsType(t, &GormHistoryStore{}, store)
	})
	t.Run("unsupported", func(t *testing.T) {
		_, err := NewHistoryStore(StoreConfig{Type: "etcd"}, nil)
		assert.Error(t, err)
	})
	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewHistoryStore(StoreConfig{Type: "etcd"}, nil) })
	})
}
