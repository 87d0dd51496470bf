package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
)

// GetApprovedPatterns retrieves the APPROVED patterns for a bank address,
// ordered by priority descending then id ascending. The ordering is
// explicit so runtime matching never depends on insertion order.
func (s *SQLiteStorage) GetApprovedPatterns(ctx context.Context, bankAddress string) ([]model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(bankAddress, "bankAddress"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bank_address, bank_name, regex, sample, category, status, priority, created_by, created_at
		FROM patterns
		WHERE bank_address = ? AND status = ?
		ORDER BY priority DESC, id ASC
	`, bankAddress, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPatterns(rows)
}

// CreatePattern stores a contributed pattern. New patterns always enter
// the lifecycle as PENDING.
func (s *SQLiteStorage) CreatePattern(ctx context.Context, pattern *model.Pattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePattern(pattern); err != nil {
		return err
	}

	if pattern.Status == "" {
		pattern.Status = model.StatusPending
	}
	if err := validateStatus(pattern.Status); err != nil {
		return err
	}
	if pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (bank_address, bank_name, regex, sample, category, status, priority, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, pattern.BankAddress, pattern.BankName, pattern.Regex, pattern.Sample,
		string(pattern.Category), string(pattern.Status), pattern.Priority,
		pattern.CreatedBy, pattern.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pattern: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pattern id: %w", err)
	}
	pattern.ID = id

	return nil
}

// GetPatterns lists patterns, optionally filtered by bank address and
// status. Empty filter values match everything.
func (s *SQLiteStorage) GetPatterns(ctx context.Context, bankAddress string, status model.PatternStatus) ([]model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, bank_address, bank_name, regex, sample, category, status, priority, created_by, created_at
		FROM patterns
		WHERE 1=1
	`
	args := make([]any, 0, 2)

	if bankAddress != "" {
		query += " AND bank_address = ?"
		args = append(args, bankAddress)
	}
	if status != "" {
		if err := validateStatus(status); err != nil {
			return nil, err
		}
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY priority DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPatterns(rows)
}

// UpdatePatternStatus moves a pattern through its review lifecycle.
func (s *SQLiteStorage) UpdatePatternStatus(ctx context.Context, id int64, status model.PatternStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE patterns SET status = ? WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update pattern status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pattern %d: %w", id, common.ErrNotFound)
	}

	return nil
}

func scanPatterns(rows *sql.Rows) ([]model.Pattern, error) {
	var patterns []model.Pattern
	for rows.Next() {
		var p model.Pattern
		var bankName, sample, category, createdBy sql.NullString

		err := rows.Scan(&p.ID, &p.BankAddress, &bankName, &p.Regex, &sample,
			&category, &p.Status, &p.Priority, &createdBy, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}

		p.BankName = bankName.String
		p.Sample = sample.String
		p.Category = model.Category(category.String)
		p.CreatedBy = createdBy.String
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patterns: %w", err)
	}
	return patterns, nil
}
