package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybook/smsledger/internal/model"
)

// SaveTransaction persists an extracted transaction. Amounts are stored
// as decimal strings so monetary values round-trip exactly.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	var balance any
	if txn.Balance != nil {
		balance = txn.Balance.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, bank_address, bank_name, category, account_number,
			merchant, type, date, amount, balance, ref_number, sms_text, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.BankAddress, txn.BankName, string(txn.Category), txn.AccountNumber,
		txn.Merchant, string(txn.Type), txn.Date, txn.Amount.String(), balance,
		txn.RefNumber, txn.SmsText, txn.UserID, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// GetTransactionsByUser retrieves a user's transactions, newest first.
func (s *SQLiteStorage) GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bank_address, bank_name, category, account_number, merchant,
			type, date, amount, balance, ref_number, sms_text, user_id, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(rows *sql.Rows) (*model.Transaction, error) {
	var txn model.Transaction
	var bankName, accountNumber, refNumber, userID sql.NullString
	var amountStr string
	var balanceStr sql.NullString

	err := rows.Scan(&txn.ID, &txn.BankAddress, &bankName, &txn.Category,
		&accountNumber, &txn.Merchant, &txn.Type, &txn.Date, &amountStr,
		&balanceStr, &refNumber, &txn.SmsText, &userID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.BankName = bankName.String
	txn.AccountNumber = accountNumber.String
	txn.RefNumber = refNumber.String
	txn.UserID = userID.String

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amountStr, err)
	}
	txn.Amount = amount

	if balanceStr.Valid && balanceStr.String != "" {
		balance, balErr := decimal.NewFromString(balanceStr.String)
		if balErr != nil {
			return nil, fmt.Errorf("failed to parse stored balance %q: %w", balanceStr.String, balErr)
		}
		txn.Balance = &balance
	}

	return &txn, nil
}
