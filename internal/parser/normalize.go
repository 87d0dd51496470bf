package parser

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
)

// dateLayouts are the accepted SMS date formats, tried in order. The list
// mirrors the formats observed across bank senders: day-month-year with
// dashes or slashes, ISO, and the compact 2Jan06 style.
var dateLayouts = []string{
	"2-Jan-06",
	"02-Jan-06",
	"02/01/06",
	"2006-01-02",
	"2-Jan-2006",
	"02-Jan-2006",
	"2Jan06",
	"02Jan06",
}

// normalizeAmount converts a captured amount string to an exact decimal.
// Thousands separators are stripped first. Monetary values never touch
// binary floating point.
func normalizeAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", common.ErrMalformedAmount)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", common.ErrMalformedAmount, raw)
	}
	return amount, nil
}

// normalizeDate parses a captured date against the accepted layouts, first
// layout that parses wins. An unparseable date falls back to now; a date on
// an SMS is advisory and must not fail the whole match.
func normalizeDate(raw string, now time.Time) time.Time {
	cleaned := canonicalizeMonthCase(strings.TrimSpace(raw))
	if cleaned == "" {
		return now
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t
		}
	}
	return now
}

// canonicalizeMonthCase rewrites alphabetic runs to title case so month
// abbreviations like "jan" or "JAN" parse against Go's "Jan" layouts.
func canonicalizeMonthCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}

// normalizeType maps a captured type token onto the TransactionType enum.
// Exact ALERT/REMINDER tokens are checked before the CREDIT/DEBIT substring
// rules so notification patterns are not misread as debits. Anything
// unrecognized defaults to DEBITED.
func normalizeType(raw string) model.TransactionType {
	token := strings.ToUpper(strings.TrimSpace(raw))

	switch token {
	case "ALERT":
		return model.TypeAlert
	case "REMINDER":
		return model.TypeReminder
	}

	switch {
	case strings.Contains(token, "CREDIT"):
		return model.TypeCredited
	case strings.Contains(token, "SPENT"), strings.Contains(token, "DEBIT"):
		return model.TypeDebited
	}
	return model.TypeDebited
}

// normalizeMerchant trims a captured merchant name, defaulting to
// "Unknown" when nothing usable was captured.
func normalizeMerchant(raw string) string {
	merchant := strings.TrimSpace(raw)
	if merchant == "" {
		return "Unknown"
	}
	return merchant
}
