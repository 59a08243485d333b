package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryHistoryStore is an in-memory implementation of HistoryStore.
// Suitable for development and testing.
type MemoryHistoryStore struct {
	records []*Record // oldest first
	max     int
	mu      sync.RWMutex
	closed  bool
}

// NewMemoryHistoryStore creates a new in-memory history store
func NewMemoryHistoryStore(config StoreConfig) *MemoryHistoryStore {
	return &MemoryHistoryStore{max: config.MaxRecords}
}

// Close closes the store
func (s *MemoryHistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}

// Ping checks if the store is healthy
func (s *MemoryHistoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// SaveRecord implements HistoryStore.
func (s *MemoryHistoryStore) SaveRecord(ctx context.Context, record *Record) error {
	if record == nil {
		return ErrInvalidInput
	}
	prepareRecord(record)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	cp := *record
	s.records = append(s.records, &cp)
	if s.max > 0 && len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

// ListRecords implements HistoryStore.
func (s *MemoryHistoryStore) ListRecords(ctx context.Context, strategy string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return selectRecords(s.records, strategy, limit), nil
}

// prepareRecord fills in ID and CreatedAt
func prepareRecord(r *Record) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}

// selectRecords walks an oldest-first slice newest first, copying matches.
func selectRecords(records []*Record, strategy string, limit int) []*Record {
	out := make([]*Record, 0)
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if strategy != "" && r.Strategy != strategy {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
