package persistence

import (
	"fmt"

	"gorm.io/gorm"
)

// NewHistoryStore creates a new HistoryStore based on the configuration.
// db is only required for StoreTypeDatabase.
func NewHistoryStore(config StoreConfig, db *gorm.DB) (HistoryStore, error) {
	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemoryHistoryStore(config), nil
	case StoreTypeFile:
		return NewFileHistoryStore(config)
	case StoreTypeRedis:
		return NewRedisHistoryStore(config)
	case StoreTypeDatabase:
		if db == nil {
			return nil, fmt.Errorf("database history store requires a database connection")
		}
		return NewGormHistoryStore(db)
	default:
		return nil, fmt.Errorf("unsupported history store type: %s", config.Type)
	}
}

// MustNewHistoryStore creates a new HistoryStore or panics on error.
//
// WARNING: This function should ONLY be used during application initialization.
func MustNewHistoryStore(config StoreConfig, db *gorm.DB) HistoryStore {
	store, err := NewHistoryStore(config, db)
	if err != nil {
		panic(fmt.Sprintf("failed to create history store: %v", err))
	}
	return store
}
