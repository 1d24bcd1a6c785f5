package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coinsort/coinsort/internal/config"
	"github.com/coinsort/coinsort/internal/engine"
	"github.com/coinsort/coinsort/internal/learning"
	"github.com/coinsort/coinsort/internal/semantic"
	"github.com/coinsort/coinsort/internal/service"
	"github.com/coinsort/coinsort/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Store, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/coinsort/coinsort.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createSemanticClassifier creates the semantic tier from configuration.
// Returns nil when no provider is configured; the engine degrades that
// tier to zero confidence.
func createSemanticClassifier() (engine.SemanticClassifier, error) {
	if !viper.GetBool("semantic.enabled") {
		slog.Debug("semantic classification disabled")
		return nil, nil
	}

	cfg, err := config.LoadSemanticConfig()
	if err != nil {
		return nil, err
	}

	classifier, err := semantic.NewClassifier(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create semantic classifier: %w", err)
	}

	return classifier, nil
}

// createEngine wires the categorization engine from configuration.
func createEngine(store service.Store) (*engine.Engine, error) {
	classifier, err := createSemanticClassifier()
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultConfig()
	if timeout := viper.GetDuration("semantic.timeout"); timeout > 0 {
		cfg.SemanticTimeout = timeout
	}
	if ttl := viper.GetDuration("engine.rule_cache_ttl"); ttl > 0 {
		cfg.RuleCacheTTL = ttl
	}

	return engine.NewWithConfig(store, classifier, slog.Default(), cfg), nil
}

// createLearner wires the feedback processor. The engine is registered
// as an invalidator so corrections take effect immediately.
func createLearner(store service.Store, eng *engine.Engine) *learning.Learner {
	cfg := learning.DefaultConfig()
	if size := viper.GetInt("learning.batch_size"); size > 0 {
		cfg.BatchSize = size
	}
	if pause := viper.GetDuration("learning.batch_pause"); pause > 0 {
		cfg.BatchPause = pause
	}

	return learning.NewWithConfig(store, slog.Default(), cfg, eng)
}
