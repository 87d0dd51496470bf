// Package parser implements the pattern matching engine that turns raw
// bank SMS text into candidate transactions using approved, bank-scoped
// regex patterns with named capture groups.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
	"github.com/piggybook/smsledger/internal/service"
)

// NoMatchError reports that no approved pattern produced a transaction.
// It is a normal terminal outcome, not a failure: the orchestrator routes
// it to the unparsed-message sink with the reason intact.
type NoMatchError struct {
	Reason string
}

func (e *NoMatchError) Error() string {
	return e.Reason
}

func (e *NoMatchError) Unwrap() error {
	return common.ErrNoMatch
}

// NoMatchReason extracts the human-readable reason from a no-match error,
// falling back to the error text.
func NoMatchReason(err error) string {
	var noMatch *NoMatchError
	if errors.As(err, &noMatch) {
		return noMatch.Reason
	}
	return err.Error()
}

// Parser selects and applies approved patterns for a bank address and
// extracts typed transaction fields.
type Parser struct {
	store    service.PatternStore
	clock    service.Clock
	logger   *slog.Logger
	compiled map[int64]compiledPattern
	mu       sync.RWMutex
}

// compiledPattern caches a compiled regex together with the source text it
// was compiled from, so edited patterns are recompiled.
type compiledPattern struct {
	re          *regexp.Regexp
	regex       string
	bankAddress string
}

// New creates a parser backed by the given pattern store.
func New(store service.PatternStore, logger *slog.Logger) *Parser {
	return &Parser{
		store:    store,
		clock:    service.SystemClock{},
		logger:   logger,
		compiled: make(map[int64]compiledPattern),
	}
}

// Match applies the approved patterns for bankAddress to smsText, in store
// order, and returns the first fully-built transaction. Patterns that
// match but lack a well-formed amount group are skipped; they recognize
// non-transactional notifications. A nil transaction is never returned
// alongside a nil error.
func (p *Parser) Match(ctx context.Context, smsText, bankAddress string) (*model.Transaction, error) {
	if strings.TrimSpace(smsText) == "" {
		return nil, fmt.Errorf("%w: sms text is required", common.ErrInvalidInput)
	}
	if strings.TrimSpace(bankAddress) == "" {
		return nil, fmt.Errorf("%w: bank address is required", common.ErrInvalidInput)
	}

	patterns, err := p.store.GetApprovedPatterns(ctx, bankAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved patterns: %w", err)
	}

	p.evictStale(bankAddress, patterns)

	if len(patterns) == 0 {
		p.logger.Debug("no approved patterns for bank address", "bank_address", bankAddress)
		return nil, &NoMatchError{Reason: "no approved patterns for this bank address"}
	}

	for _, pattern := range patterns {
		re, compileErr := p.compile(pattern)
		if compileErr != nil {
			// Approved patterns are validated at creation; a compile
			// failure here means the stored regex was corrupted.
			p.logger.Warn("skipping uncompilable pattern",
				"pattern_id", pattern.ID,
				"bank_address", pattern.BankAddress,
				"error", compileErr)
			continue
		}

		match := re.FindStringSubmatch(smsText)
		if match == nil {
			continue
		}

		txn, ok := p.buildTransaction(re, match, pattern)
		if !ok {
			p.logger.Debug("pattern matched but produced no transaction, trying next",
				"pattern_id", pattern.ID,
				"bank_address", pattern.BankAddress)
			continue
		}

		p.logger.Info("pattern matched",
			"pattern_id", pattern.ID,
			"bank_address", pattern.BankAddress,
			"type", txn.Type)
		return txn, nil
	}

	return nil, &NoMatchError{Reason: "no approved pattern matched"}
}

// compile returns the case-insensitive compiled regex for a pattern,
// reusing the cached compilation when the pattern text is unchanged.
func (p *Parser) compile(pattern model.Pattern) (*regexp.Regexp, error) {
	p.mu.RLock()
	cached, ok := p.compiled[pattern.ID]
	p.mu.RUnlock()

	if ok && cached.regex == pattern.Regex {
		return cached.re, nil
	}

	re, err := regexp.Compile("(?i)" + pattern.Regex)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.compiled[pattern.ID] = compiledPattern{re: re, regex: pattern.Regex, bankAddress: pattern.BankAddress}
	p.mu.Unlock()

	return re, nil
}

// evictStale drops cached compilations for this bank address whose pattern
// no longer appears in the approved set, so rejected or deleted patterns do
// not pin memory for the process lifetime.
func (p *Parser) evictStale(bankAddress string, patterns []model.Pattern) {
	live := make(map[int64]struct{}, len(patterns))
	for _, pattern := range patterns {
		live[pattern.ID] = struct{}{}
	}

	p.mu.Lock()
	for id, cached := range p.compiled {
		if cached.bankAddress != bankAddress {
			continue
		}
		if _, ok := live[id]; !ok {
			delete(p.compiled, id)
		}
	}
	p.mu.Unlock()
}

// buildTransaction assembles a transaction from a regex match. Bank
// address, bank name and category come only from the pattern row; capture
// groups fill the remaining fields. Returns false when the pattern has no
// extractable amount, which marks it non-transactional for this attempt.
func (p *Parser) buildTransaction(re *regexp.Regexp, match []string, pattern model.Pattern) (*model.Transaction, bool) {
	txn := &model.Transaction{
		BankAddress: pattern.BankAddress,
		BankName:    pattern.BankName,
		Category:    pattern.Category,
	}

	rawAmount, ok := capture(re, match, model.GroupAmount)
	if !ok {
		return nil, false
	}
	amount, err := normalizeAmount(rawAmount)
	if err != nil {
		p.logger.Debug("amount extraction failed",
			"pattern_id", pattern.ID,
			"error", err)
		return nil, false
	}
	txn.Amount = amount

	rawType, _ := capture(re, match, model.GroupType)
	txn.Type = normalizeType(rawType)

	rawMerchant, _ := capture(re, match, model.GroupMerchant)
	txn.Merchant = normalizeMerchant(rawMerchant)

	rawDate, _ := capture(re, match, model.GroupDate)
	txn.Date = normalizeDate(rawDate, p.clock.Now())

	if rawAccount, ok := capture(re, match, model.GroupAccountNumber); ok {
		txn.AccountNumber = rawAccount
	}

	if rawRef, ok := capture(re, match, model.GroupRefNumber); ok {
		txn.RefNumber = rawRef
	}

	if rawBalance, ok := capture(re, match, model.GroupBalance); ok {
		if balance, balErr := normalizeAmount(rawBalance); balErr == nil {
			txn.Balance = &balance
		}
	}

	return txn, true
}

// capture looks up a named group in a match. Absent groups and empty
// captures both report ok=false; absence is expected, never an error.
func capture(re *regexp.Regexp, match []string, name string) (string, bool) {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) {
		return "", false
	}

	value := strings.TrimSpace(match[idx])
	if value == "" {
		return "", false
	}
	return value, true
}
