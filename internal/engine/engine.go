// Package engine orchestrates SMS extraction: it combines the pattern
// matching engine with the categorization service and routes results to
// the transaction or unparsed-message sinks.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
	"github.com/piggybook/smsledger/internal/parser"
	"github.com/piggybook/smsledger/internal/service"
)

// Matcher is the pattern matching engine contract the orchestrator
// consumes.
type Matcher interface {
	Match(ctx context.Context, smsText, bankAddress string) (*model.Transaction, error)
}

// Engine is the parse orchestrator.
type Engine struct {
	matcher     Matcher
	categorizer service.Categorizer
	storage     service.Storage
	clock       service.Clock
	logger      *slog.Logger
}

// New creates an orchestrator wired to its collaborators.
func New(matcher Matcher, categorizer service.Categorizer, storage service.Storage, logger *slog.Logger) *Engine {
	return &Engine{
		matcher:     matcher,
		categorizer: categorizer,
		storage:     storage,
		clock:       service.SystemClock{},
		logger:      logger,
	}
}

// Parse extracts a transaction from an SMS without persisting anything.
// On success the transaction carries its final category. A no-match is
// returned as an error wrapping common.ErrNoMatch with the reason
// available via parser.NoMatchReason.
func (e *Engine) Parse(ctx context.Context, smsText, bankAddress string) (*model.Transaction, error) {
	txn, err := e.matcher.Match(ctx, smsText, bankAddress)
	if err != nil {
		return nil, err
	}

	// The pattern's curated category wins when a reviewer set one;
	// otherwise the categorizer decides from merchant and SMS context.
	if !txn.Category.IsValid() {
		txn.Category = e.categorizer.Categorize(ctx, txn.Merchant, smsText)
	}

	txn.SmsText = smsText
	return txn, nil
}

// ParseAndSave extracts a transaction from an SMS and persists it for the
// given user. Messages no approved pattern could extract are saved to the
// unparsed-message sink and reported as an error wrapping
// common.ErrNoMatch; the caller decides how to surface that. Storage
// failures propagate unmodified.
func (e *Engine) ParseAndSave(ctx context.Context, smsText, bankAddress, userID string) (*model.Transaction, error) {
	if strings.TrimSpace(smsText) == "" {
		return nil, fmt.Errorf("%w: sms text is required", common.ErrInvalidInput)
	}
	if strings.TrimSpace(bankAddress) == "" {
		return nil, fmt.Errorf("%w: bank address is required", common.ErrInvalidInput)
	}

	txn, err := e.Parse(ctx, smsText, bankAddress)
	if err != nil {
		if errors.Is(err, common.ErrNoMatch) {
			return nil, e.routeUnparsed(ctx, smsText, bankAddress, userID, err)
		}
		return nil, err
	}

	txn.ID = uuid.NewString()
	txn.UserID = userID
	txn.CreatedAt = e.clock.Now()

	if err := e.storage.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	e.logger.Info("transaction saved",
		"transaction_id", txn.ID,
		"bank_address", txn.BankAddress,
		"category", txn.Category,
		"type", txn.Type,
		"amount", txn.Amount)

	return txn, nil
}

// routeUnparsed persists the failed message for manual triage and returns
// the original no-match error. A storage failure takes precedence; the
// core never hides persistence errors.
func (e *Engine) routeUnparsed(ctx context.Context, smsText, bankAddress, userID string, matchErr error) error {
	reason := parser.NoMatchReason(matchErr)

	msg := &model.UnparsedMessage{
		BankAddress: bankAddress,
		Message:     smsText,
		Reason:      reason,
		UserID:      userID,
		CreatedAt:   e.clock.Now(),
	}

	if err := e.storage.SaveUnparsedMessage(ctx, msg); err != nil {
		return err
	}

	e.logger.Info("message routed to unparsed queue",
		"bank_address", bankAddress,
		"reason", reason)

	return matchErr
}
