package parser

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
)

// fakePatternStore serves a canned pattern list per bank address.
type fakePatternStore struct {
	patterns map[string][]model.Pattern
	err      error
}

func (f *fakePatternStore) GetApprovedPatterns(_ context.Context, bankAddress string) ([]model.Pattern, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.patterns[bankAddress], nil
}

func (f *fakePatternStore) CreatePattern(_ context.Context, _ *model.Pattern) error {
	return nil
}

func (f *fakePatternStore) GetPatterns(_ context.Context, _ string, _ model.PatternStatus) ([]model.Pattern, error) {
	return nil, nil
}

func (f *fakePatternStore) UpdatePatternStatus(_ context.Context, _ int64, _ model.PatternStatus) error {
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func newTestParser(store *fakePatternStore) *Parser {
	p := New(store, slog.Default())
	p.clock = fixedClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	return p
}

func TestParser_Match_HDFCDebit(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				BankName:    "HDFC Bank",
				Regex:       `Rs\.(?P<amount>[\d,]+\.?\d*).*debited.*A/c.*(?P<accountNumber>XX\d+)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "Rs.500 debited from A/c XX1234", "HDFCBK")
	require.NoError(t, err)

	assert.Equal(t, "HDFCBK", txn.BankAddress)
	assert.Equal(t, "HDFC Bank", txn.BankName)
	assert.Equal(t, "500", txn.Amount.String())
	assert.Equal(t, "XX1234", txn.AccountNumber)
	assert.Equal(t, model.TypeDebited, txn.Type)
	assert.Equal(t, "Unknown", txn.Merchant)
}

func TestParser_Match_InvalidInput(t *testing.T) {
	p := newTestParser(&fakePatternStore{})

	tests := []struct {
		name        string
		sms         string
		bankAddress string
	}{
		{name: "empty sms", sms: "", bankAddress: "HDFCBK"},
		{name: "blank sms", sms: "   ", bankAddress: "HDFCBK"},
		{name: "empty bank address", sms: "Rs.500 debited", bankAddress: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Match(context.Background(), tt.sms, tt.bankAddress)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestParser_Match_NoApprovedPatterns(t *testing.T) {
	p := newTestParser(&fakePatternStore{patterns: map[string][]model.Pattern{}})

	_, err := p.Match(context.Background(), "Rs.500 debited from A/c XX1234", "UNKNOWNBK")
	require.ErrorIs(t, err, common.ErrNoMatch)
	assert.Equal(t, "no approved patterns for this bank address", NoMatchReason(err))
}

func TestParser_Match_NoPatternMatched(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				Regex:       `credited with INR (?P<amount>[\d,]+)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	_, err := p.Match(context.Background(), "Your OTP is 123456", "HDFCBK")
	require.ErrorIs(t, err, common.ErrNoMatch)
	assert.Equal(t, "no approved pattern matched", NoMatchReason(err))
}

func TestParser_Match_AmountlessPatternIsNotATransaction(t *testing.T) {
	// A pattern that matches but declares no amount group recognizes a
	// notification, not a transaction. With no other pattern, the result
	// is a no-match even though a regex technically hit.
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				Regex:       `balance alert for A/c (?P<accountNumber>XX\d+)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	_, err := p.Match(context.Background(), "Balance alert for A/c XX1234", "HDFCBK")
	require.ErrorIs(t, err, common.ErrNoMatch)
	assert.Equal(t, "no approved pattern matched", NoMatchReason(err))
}

func TestParser_Match_MalformedAmountTriesNextPattern(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"ICICIB": {
			{
				ID:          1,
				BankAddress: "ICICIB",
				Priority:    10,
				Regex:       `(?P<amount>INR) spent`,
				Status:      model.StatusApproved,
			},
			{
				ID:          2,
				BankAddress: "ICICIB",
				BankName:    "ICICI Bank",
				Regex:       `INR spent (?P<amount>[\d,]+\.?\d*)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "INR spent 1,250.75 at cafe", "ICICIB")
	require.NoError(t, err)
	assert.Equal(t, "1250.75", txn.Amount.String())
	assert.Equal(t, "ICICI Bank", txn.BankName)
}

func TestParser_Match_FirstPatternWins(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"SBIINB": {
			{
				ID:          7,
				BankAddress: "SBIINB",
				BankName:    "SBI",
				Regex:       `Rs (?P<amount>[\d,]+) (?P<type>credited|debited)`,
				Status:      model.StatusApproved,
			},
			{
				ID:          8,
				BankAddress: "SBIINB",
				BankName:    "Should Not Win",
				Regex:       `Rs (?P<amount>[\d,]+)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "Rs 900 credited to your account", "SBIINB")
	require.NoError(t, err)
	assert.Equal(t, "SBI", txn.BankName)
	assert.Equal(t, model.TypeCredited, txn.Type)
}

func TestParser_Match_CaseInsensitiveRegex(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"AXISBK": {
			{
				ID:          1,
				BankAddress: "AXISBK",
				Regex:       `rs\.(?P<amount>[\d,]+) debited`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "RS.300 DEBITED from your account", "AXISBK")
	require.NoError(t, err)
	assert.Equal(t, "300", txn.Amount.String())
}

func TestParser_Match_AllGroups(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"KOTAKB": {
			{
				ID:          1,
				BankAddress: "KOTAKB",
				BankName:    "Kotak Bank",
				Regex: `(?P<type>\w+) Rs\.(?P<amount>[\d,]+\.?\d*) at (?P<merchant>[\w ]+?) on (?P<date>[\d]{4}-[\d]{2}-[\d]{2})\.` +
					` A/c (?P<accountNumber>XX\d+) Bal Rs\.(?P<balance>[\d,]+\.?\d*) Ref (?P<refNumber>\w+)`,
				Status: model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	sms := "Debited Rs.1,200.50 at Big Bazaar on 2024-11-03. A/c XX9876 Bal Rs.10,000.25 Ref UTR42"
	txn, err := p.Match(context.Background(), sms, "KOTAKB")
	require.NoError(t, err)

	assert.Equal(t, model.TypeDebited, txn.Type)
	assert.Equal(t, "1200.5", txn.Amount.String())
	assert.Equal(t, "Big Bazaar", txn.Merchant)
	assert.Equal(t, time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "XX9876", txn.AccountNumber)
	require.NotNil(t, txn.Balance)
	assert.Equal(t, "10000.25", txn.Balance.String())
	assert.Equal(t, "UTR42", txn.RefNumber)
}

func TestParser_Match_CapturesCannotOverridePatternMetadata(t *testing.T) {
	// A regex declaring groups named after pattern-sourced fields must not
	// leak those captures into the transaction. Bank address, bank name and
	// category always come from the pattern row.
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				BankName:    "HDFC Bank",
				Category:    model.CategoryFood,
				Regex:       `(?P<bankName>\w+): Rs\.(?P<amount>[\d,]+) debited (?P<category>\w+)`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "EVILBANK: Rs.500 debited GAMBLING", "HDFCBK")
	require.NoError(t, err)

	assert.Equal(t, "HDFCBK", txn.BankAddress)
	assert.Equal(t, "HDFC Bank", txn.BankName)
	assert.Equal(t, model.CategoryFood, txn.Category)
	assert.Equal(t, "500", txn.Amount.String())
}

func TestParser_Match_AbsentDateUsesClock(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				Regex:       `Rs\.(?P<amount>[\d,]+) debited`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	txn, err := p.Match(context.Background(), "Rs.42 debited", "HDFCBK")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), txn.Date)
}

func TestParser_Match_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("database locked")
	p := newTestParser(&fakePatternStore{err: storeErr})

	_, err := p.Match(context.Background(), "Rs.500 debited", "HDFCBK")
	assert.ErrorIs(t, err, storeErr)
}

func TestParser_CompiledPatternReuse(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				Regex:       `Rs\.(?P<amount>[\d,]+) debited`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	for i := 0; i < 3; i++ {
		_, err := p.Match(context.Background(), "Rs.500 debited", "HDFCBK")
		require.NoError(t, err)
	}
	assert.Len(t, p.compiled, 1)

	// Edited regex text invalidates the cached compilation.
	store.patterns["HDFCBK"][0].Regex = `Rs\.(?P<amount>[\d,]+) spent`
	_, err := p.Match(context.Background(), "Rs.500 spent", "HDFCBK")
	require.NoError(t, err)
	assert.Equal(t, `Rs\.(?P<amount>[\d,]+) spent`, p.compiled[1].regex)
}

func TestParser_CompiledCacheEvictsRemovedPatterns(t *testing.T) {
	store := &fakePatternStore{patterns: map[string][]model.Pattern{
		"HDFCBK": {
			{
				ID:          1,
				BankAddress: "HDFCBK",
				Regex:       `Rs\.(?P<amount>[\d,]+) debited`,
				Status:      model.StatusApproved,
			},
		},
		"SBIINB": {
			{
				ID:          2,
				BankAddress: "SBIINB",
				Regex:       `Rs (?P<amount>[\d,]+) credited`,
				Status:      model.StatusApproved,
			},
		},
	}}

	p := newTestParser(store)
	_, err := p.Match(context.Background(), "Rs.500 debited", "HDFCBK")
	require.NoError(t, err)
	_, err = p.Match(context.Background(), "Rs 900 credited", "SBIINB")
	require.NoError(t, err)
	assert.Len(t, p.compiled, 2)

	// The pattern is rejected or deleted; its cached compilation goes with
	// it on the next lookup for that bank. Other banks are untouched.
	store.patterns["HDFCBK"] = nil
	_, err = p.Match(context.Background(), "Rs.500 debited", "HDFCBK")
	require.ErrorIs(t, err, common.ErrNoMatch)

	assert.Len(t, p.compiled, 1)
	_, ok := p.compiled[1]
	assert.False(t, ok)
	_, ok = p.compiled[2]
	assert.True(t, ok)
}
