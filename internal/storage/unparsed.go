package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
)

// SaveUnparsedMessage queues a message that could not be extracted for
// manual triage.
func (s *SQLiteStorage) SaveUnparsedMessage(ctx context.Context, msg *model.UnparsedMessage) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("%w: message", ErrNilParameter)
	}
	if err := validateString(msg.BankAddress, "bankAddress"); err != nil {
		return err
	}
	if err := validateString(msg.Message, "message"); err != nil {
		return err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO unparsed_messages (bank_address, message, reason, user_id, processed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.BankAddress, msg.Message, msg.Reason, msg.UserID, msg.Processed, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save unparsed message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get unparsed message id: %w", err)
	}
	msg.ID = id

	return nil
}

// GetUnparsedMessages lists queued messages, oldest first. With
// onlyUnprocessed set, already-triaged messages are excluded.
func (s *SQLiteStorage) GetUnparsedMessages(ctx context.Context, onlyUnprocessed bool) ([]model.UnparsedMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, bank_address, message, reason, user_id, processed, created_at
		FROM unparsed_messages
	`
	if onlyUnprocessed {
		query += " WHERE processed = 0"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unparsed messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []model.UnparsedMessage
	for rows.Next() {
		var msg model.UnparsedMessage
		var userID sql.NullString

		err := rows.Scan(&msg.ID, &msg.BankAddress, &msg.Message, &msg.Reason,
			&userID, &msg.Processed, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unparsed message: %w", err)
		}

		msg.UserID = userID.String
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unparsed messages: %w", err)
	}
	return messages, nil
}

// MarkUnparsedProcessed toggles the processed flag. Any operator may do
// this; there is no per-submitter restriction.
func (s *SQLiteStorage) MarkUnparsedProcessed(ctx context.Context, id int64, processed bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE unparsed_messages SET processed = ? WHERE id = ?
	`, processed, id)
	if err != nil {
		return fmt.Errorf("failed to update unparsed message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unparsed message %d: %w", id, common.ErrNotFound)
	}

	return nil
}

// DeleteUnparsedMessage removes a queued message.
func (s *SQLiteStorage) DeleteUnparsedMessage(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM unparsed_messages WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unparsed message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unparsed message %d: %w", id, common.ErrNotFound)
	}

	return nil
}
