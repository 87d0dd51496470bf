// Package categorize assigns spending categories to extracted merchants.
// Resolution order: cache, known-merchant table, external classifier. It
// never fails; any uncertainty resolves to the OTHERS category.
package categorize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
	"github.com/piggybook/smsledger/internal/service"
)

// maxContextChars bounds how much raw SMS text is forwarded to the
// external classifier.
const maxContextChars = 200

// responseTable maps classifier response tokens onto categories, in order.
// The aliases absorb common single-token variants the classifier emits.
type responseMapping struct {
	token    string
	category model.Category
}

var responseTable = []responseMapping{
	{"FOOD", model.CategoryFood},
	{"SHOPPING", model.CategoryShopping},
	{"ENTERTAINMENT", model.CategoryEntertainment},
	{"TRANSPORT", model.CategoryTransport},
	{"TRANSPORTATION", model.CategoryTransport},
	{"UTILITIES", model.CategoryUtilities},
	{"UTILITY", model.CategoryUtilities},
	{"OTHERS", model.CategoryOthers},
	{"OTHER", model.CategoryOthers},
}

// Service resolves merchant names to categories.
type Service struct {
	classifier service.Classifier
	cache      *Cache
	logger     *slog.Logger
	retryOpts  service.RetryOptions
}

// New creates a categorization service. A nil classifier disables external
// classification; unknown merchants then deterministically resolve to
// OTHERS.
func New(classifier service.Classifier, logger *slog.Logger) *Service {
	return &Service{
		classifier: classifier,
		cache:      NewCache(),
		logger:     logger,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Second,
		},
	}
}

// Categorize resolves a category for the merchant extracted from an SMS.
// smsContext is the original message text, used only as classifier
// context. The method never returns an error; classification failures are
// logged and resolve to OTHERS without poisoning the cache.
func (s *Service) Categorize(ctx context.Context, merchant, smsContext string) model.Category {
	key := NormalizeMerchant(merchant)

	if category, ok := s.cache.Get(key); ok {
		s.logger.Debug("category from cache", "merchant", key, "category", category)
		return category
	}

	if category, ok := lookupKnownMerchant(key); ok {
		s.cache.Set(key, category)
		s.logger.Debug("category from known merchants", "merchant", key, "category", category)
		return category
	}

	if s.classifier == nil {
		s.logger.Debug("external classification disabled", "merchant", key)
		return model.CategoryOthers
	}

	category, err := s.classify(ctx, merchant, smsContext)
	if err != nil {
		// Classification failures must never block transaction creation.
		common.LogError(err, "external classification failed", common.Fields{
			"merchant": key,
		})
		return model.CategoryOthers
	}

	s.cache.Set(key, category)
	s.logger.Info("category from classifier", "merchant", key, "category", category)
	return category
}

// Cache exposes the merchant cache for inspection and test isolation.
func (s *Service) Cache() *Cache {
	return s.cache
}

// classify calls the external classifier and parses its single-token
// response against the closed category vocabulary.
func (s *Service) classify(ctx context.Context, merchant, smsContext string) (model.Category, error) {
	prompt := buildPrompt(merchant, smsContext)

	var raw string
	err := common.WithRetry(ctx, func() error {
		response, classifyErr := s.classifier.Classify(ctx, prompt)
		if classifyErr != nil {
			return &common.RetryableError{Err: classifyErr, Retryable: true}
		}
		raw = response
		return nil
	}, s.retryOpts)
	if err != nil {
		return model.CategoryOthers, fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	category, ok := parseResponse(raw)
	if !ok {
		return model.CategoryOthers, fmt.Errorf("%w: unrecognized response %q", common.ErrClassificationFailed, raw)
	}
	return category, nil
}

// lookupKnownMerchant checks the static table: exact match first, then
// bidirectional substring containment over the deterministic key order.
func lookupKnownMerchant(normalized string) (model.Category, bool) {
	if category, ok := knownMerchants[normalized]; ok {
		return category, true
	}

	for _, key := range knownMerchantKeys {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return knownMerchants[key], true
		}
	}
	return model.CategoryOthers, false
}

// NormalizeMerchant produces the canonical lookup key for a merchant:
// uppercased, trimmed, payment-rail prefixes stripped, internal whitespace
// collapsed. Equivalent spellings collide on the same cache key.
func NormalizeMerchant(merchant string) string {
	normalized := strings.ToUpper(strings.TrimSpace(merchant))
	if normalized == "" {
		return "UNKNOWN"
	}

	normalized = strings.TrimPrefix(normalized, "UPI-")
	normalized = strings.TrimPrefix(normalized, "BBPS-")

	return strings.Join(strings.Fields(normalized), " ")
}

// buildPrompt constructs the bounded classification prompt: merchant name
// plus truncated message context, requesting exactly one category name.
func buildPrompt(merchant, smsContext string) string {
	if merchant == "" {
		merchant = "Unknown"
	}
	if len(smsContext) > maxContextChars {
		// Back up to a rune boundary so the cut never mangles a
		// multi-byte character.
		cut := maxContextChars
		for cut > 0 && !utf8.RuneStart(smsContext[cut]) {
			cut--
		}
		smsContext = smsContext[:cut]
	}

	return fmt.Sprintf(`You are a transaction categorizer. Categorize this transaction into exactly ONE of these categories:
- FOOD (restaurants, food delivery, groceries, cafes, bakeries)
- SHOPPING (retail stores, online shopping, e-commerce)
- ENTERTAINMENT (movies, streaming, gaming, events, subscriptions)
- TRANSPORT (cab, metro, bus, fuel, parking, flights, trains)
- UTILITIES (electricity, water, gas, internet, phone bills, insurance)
- OTHERS (anything that doesn't fit above)

Merchant: %s
SMS Context: %s

Reply with ONLY the category name in uppercase. Nothing else.`, merchant, smsContext)
}

// parseResponse matches a raw classifier response against the response
// table. The response is uppercased and stripped to letters before the
// ordered exact-token comparison.
func parseResponse(raw string) (model.Category, bool) {
	token := stripToLetters(strings.ToUpper(raw))

	for _, mapping := range responseTable {
		if token == mapping.token {
			return mapping.category, true
		}
	}
	return model.CategoryOthers, false
}

// stripToLetters removes everything but A-Z.
func stripToLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
