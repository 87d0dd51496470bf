package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies what a bank SMS reported.
type TransactionType string

// TransactionType values. TypeDebited is the default when the captured
// token is absent or unrecognized; most banking SMS are debit notices.
const (
	TypeCredited TransactionType = "CREDITED"
	TypeDebited  TransactionType = "DEBITED"
	TypeAlert    TransactionType = "ALERT"
	TypeReminder TransactionType = "REMINDER"
)

// Transaction is a structured financial transaction extracted from a bank
// SMS. BankAddress, BankName and Category are sourced from the matched
// pattern and the categorizer, never from regex captures. A transaction is
// never mutated after the orchestrator builds it.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	ID            string
	BankAddress   string
	BankName      string
	AccountNumber string
	Merchant      string
	RefNumber     string
	SmsText       string
	UserID        string
	Category      Category
	Type          TransactionType
	Amount        decimal.Decimal
	Balance       *decimal.Decimal
}
