// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/piggybook/smsledger/internal/model"
)

// PatternStore supplies extraction patterns to the matching engine and
// manages their review lifecycle.
type PatternStore interface {
	// GetApprovedPatterns returns the APPROVED patterns scoped to a bank
	// address, ordered by priority descending then id ascending. The
	// ordering is deterministic across calls for the same inputs.
	GetApprovedPatterns(ctx context.Context, bankAddress string) ([]model.Pattern, error)
	CreatePattern(ctx context.Context, pattern *model.Pattern) error
	GetPatterns(ctx context.Context, bankAddress string, status model.PatternStatus) ([]model.Pattern, error)
	UpdatePatternStatus(ctx context.Context, id int64, status model.PatternStatus) error
}

// TransactionStore is the sink for successfully extracted transactions.
type TransactionStore interface {
	// SaveTransaction persists a transaction and assigns its identity.
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error)
}

// UnparsedStore is the sink for messages no approved pattern could extract.
type UnparsedStore interface {
	SaveUnparsedMessage(ctx context.Context, msg *model.UnparsedMessage) error
	GetUnparsedMessages(ctx context.Context, onlyUnprocessed bool) ([]model.UnparsedMessage, error)
	MarkUnparsedProcessed(ctx context.Context, id int64, processed bool) error
	DeleteUnparsedMessage(ctx context.Context, id int64) error
}

// Storage aggregates every persistence concern the application uses.
type Storage interface {
	PatternStore
	TransactionStore
	UnparsedStore

	Migrate(ctx context.Context) error
	Close() error
}

// Categorizer assigns a spending category to an extracted merchant. It
// never fails; uncertainty resolves to model.CategoryOthers.
type Categorizer interface {
	Categorize(ctx context.Context, merchant, smsContext string) model.Category
}

// Classifier is the external classification collaborator. It receives a
// bounded prompt and returns a single-token category string.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
