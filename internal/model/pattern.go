package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PatternStatus is the review lifecycle state of a pattern.
type PatternStatus string

// Pattern lifecycle states. Contributions start PENDING; only APPROVED
// patterns are eligible for runtime matching.
const (
	StatusPending  PatternStatus = "PENDING"
	StatusApproved PatternStatus = "APPROVED"
	StatusRejected PatternStatus = "REJECTED"
)

// Named capture groups a pattern may declare. This is the extraction
// contract between pattern authors and the parser; any subset may be
// present. A pattern without an amount group is recognized but never
// produces a transaction.
const (
	GroupAccountNumber = "accountNumber"
	GroupType          = "type"
	GroupAmount        = "amount"
	GroupMerchant      = "merchant"
	GroupDate          = "date"
	GroupBalance       = "balance"
	GroupRefNumber     = "refNumber"
)

// Pattern is a bank-scoped extraction rule: a regular expression with
// named capture groups, contributed by users and approved by reviewers.
type Pattern struct {
	CreatedAt   time.Time
	BankAddress string
	BankName    string
	Regex       string
	Sample      string
	CreatedBy   string
	Status      PatternStatus
	Category    Category
	ID          int64
	Priority    int
}

// Validate checks the invariants a pattern must satisfy before it can be
// stored: a bank-address scope and a compilable regex.
func (p *Pattern) Validate() error {
	if strings.TrimSpace(p.BankAddress) == "" {
		return fmt.Errorf("pattern requires a bank address")
	}
	if strings.TrimSpace(p.Regex) == "" {
		return fmt.Errorf("pattern requires a regex")
	}
	if _, err := regexp.Compile(p.Regex); err != nil {
		return fmt.Errorf("pattern regex does not compile: %w", err)
	}
	return nil
}
