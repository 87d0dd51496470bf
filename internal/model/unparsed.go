package model

import "time"

// UnparsedMessage records an SMS that no approved pattern could convert
// into a transaction. It is queued for manual triage; any authenticated
// operator may mark it processed or delete it.
type UnparsedMessage struct {
	CreatedAt   time.Time
	BankAddress string
	Message     string
	Reason      string
	UserID      string
	ID          int64
	Processed   bool
}
