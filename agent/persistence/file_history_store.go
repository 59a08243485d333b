package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileHistoryStore is a file-based implementation of HistoryStore.
// Records are cached in memory and flushed to a JSON index on every write.
type FileHistoryStore struct {
	path    string
	records []*Record
	max     int
	mu      sync.RWMutex
	closed  bool
}

// NewFileHistoryStore creates a new file-based history store
func NewFileHistoryStore(config StoreConfig) (*FileHistoryStore, error) {
	baseDir := filepath.Join(config.BaseDir, "history")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history store directory: %w", err)
	}

	store := &FileHistoryStore{
		path: filepath.Join(baseDir, "index.json"),
		max:  config.MaxRecords,
	}
	if err := store.loadFromDisk(); err != nil {
		return nil, fmt.Errorf("failed to load history from disk: %w", err)
	}
	return store, nil
}

func (s *FileHistoryStore) loadFromDisk() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var index struct {
		Records []*Record `json:"records"`
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	s.records = index.Records
	return nil
}

// saveToDisk writes the index atomically: temp file then rename.
func (s *FileHistoryStore) saveToDisk() error {
	data, err := json.MarshalIndent(struct {
		Records []*Record `json:"records"`
	}{Records: s.records}, "", "  ")
	if err != nil {
		return err
	}
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}

// Close closes the store
func (s *FileHistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.saveToDisk()
}

// Ping checks if the store is healthy
func (s *FileHistoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// SaveRecord implements HistoryStore.
func (s *FileHistoryStore) SaveRecord(ctx context.Context, record *Record) error {
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
	return s.saveToDisk()
}

// ListRecords implements HistoryStore.
func (s *FileHistoryStore) ListRecords(ctx context.Context, strategy string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return selectRecords(s.records, strategy, limit), nil
}
