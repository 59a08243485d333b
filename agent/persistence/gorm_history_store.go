package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormHistoryStore stores records in a SQL database through GORM.
// The *gorm.DB lifecycle belongs to the caller.
type GormHistoryStore struct {
	db *gorm.DB
}

// NewGormHistoryStore migrates the records table and returns a store.
func NewGormHistoryStore(db *gorm.DB) (*GormHistoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &GormHistoryStore{db: db}, nil
}

// Close is a no-op; the database handle is shared.
func (s *GormHistoryStore) Close() error { return nil }

// Ping checks if the store is healthy
func (s *GormHistoryStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SaveRecord implements HistoryStore.
func (s *GormHistoryStore) SaveRecord(ctx context.Context, record *Record) error {
	if record == nil {
		return ErrInvalidInput
	}
	prepareRecord(record)
	return s.db.WithContext(ctx).Create(record).Error
}

// ListRecords implements HistoryStore.
func (s *GormHistoryStore) ListRecords(ctx context.Context, strategy string, limit int) ([]*Record, error) {
	q := s.db.WithContext(ctx).Model(&Record{}).Order("created_at DESC")
	if strategy != "" {
		q = q.Where("strategy = ?", strategy)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*Record
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Record{}
	}
	return out, nil
}
