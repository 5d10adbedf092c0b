package storage

import (
	"context"

	"github.com/alterego/alterego/internal/storage/sqlite"
	"github.com/alterego/alterego/internal/types"
)

// HistoryStore records fitness evaluations over time
type HistoryStore interface {
	// RecordRun appends one evaluation
	RecordRun(ctx context.Context, run *types.FitnessRun) error

	// RecentRuns returns up to limit runs, newest first
	RecentRuns(ctx context.Context, limit int) ([]*types.FitnessRun, error)

	// Close releases the underlying database
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".agent/brain/fitness.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".agent/brain/fitness.db",
	}
}

// NewHistoryStore creates a new SQLite history backend
func NewHistoryStore(ctx context.Context, cfg *Config) (HistoryStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}

	return sqlite.New(ctx, cfg.Path)
}
