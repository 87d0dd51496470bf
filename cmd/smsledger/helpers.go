package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/piggybook/smsledger/internal/categorize"
	"github.com/piggybook/smsledger/internal/engine"
	"github.com/piggybook/smsledger/internal/llm"
	"github.com/piggybook/smsledger/internal/parser"
	"github.com/piggybook/smsledger/internal/service"
	"github.com/piggybook/smsledger/internal/storage"
)

// openStorage opens the configured database and brings the schema up to
// date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(viper.GetString("database.path"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// newClassifier builds the external classifier from configuration, or nil
// when classification is disabled or unconfigured. Missing configuration
// is not an error; categorization degrades to the known-merchant table.
func newClassifier(logger *slog.Logger) service.Classifier {
	if !viper.GetBool("gemini.enabled") {
		return nil
	}

	apiKey := viper.GetString("gemini.api_key")
	if apiKey == "" {
		logger.Warn("gemini enabled but no API key configured, classification disabled")
		return nil
	}

	client, err := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey: apiKey,
		APIURL: viper.GetString("gemini.api_url"),
		Model:  viper.GetString("gemini.model"),
	})
	if err != nil {
		logger.Warn("failed to create gemini client, classification disabled", "error", err)
		return nil
	}

	return client
}

// newEngine wires the full extraction pipeline on top of an open store.
func newEngine(store *storage.SQLiteStorage, logger *slog.Logger) *engine.Engine {
	matcher := parser.New(store, logger)
	categorizer := categorize.New(newClassifier(logger), logger)
	return engine.New(matcher, categorizer, store, logger)
}
