package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

// SaveAssessment appends one assessment to the history. Monetary values
// are stored as text so they round-trip without losing digits.
func (s *SQLiteStorage) SaveAssessment(ctx context.Context, record *model.AssessmentRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAssessmentRecord(record); err != nil {
		return err
	}

	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode assessment result: %w", err)
	}

	query := `
		INSERT INTO assessments (id, assessed_at, total_income, score, level, result)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.AssessedAt.UTC(),
		record.TotalIncome.String(),
		record.Result.Score.String(),
		string(record.Result.Level),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	slog.Debug("saved assessment", "id", record.ID, "level", record.Result.Level)
	return nil
}

// GetAssessment returns one history record by id.
func (s *SQLiteStorage) GetAssessment(ctx context.Context, id string) (*model.AssessmentRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, assessed_at, total_income, result
		FROM assessments
		WHERE id = ?`

	record, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: assessment %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment: %w", err)
	}

	return record, nil
}

// ListAssessments returns the most recent history records, newest first.
// A non-positive limit falls back to 50.
func (s *SQLiteStorage) ListAssessments(ctx context.Context, limit int) ([]model.AssessmentRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		limit = 50
	}

	query := `
		SELECT id, assessed_at, total_income, result
		FROM assessments
		ORDER BY assessed_at DESC, id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var records []model.AssessmentRecord
	for rows.Next() {
		record, scanErr := scanAssessment(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", scanErr)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}

	slog.Debug("retrieved assessments", "count", len(records))
	return records, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*model.AssessmentRecord, error) {
	var (
		record     model.AssessmentRecord
		income     string
		resultJSON string
	)
	if err := row.Scan(&record.ID, &record.AssessedAt, &income, &resultJSON); err != nil {
		return nil, err
	}

	totalIncome, err := decimal.NewFromString(income)
	if err != nil {
		return nil, fmt.Errorf("%w: bad total_income %q", common.ErrDatabaseCorrupted, income)
	}
	record.TotalIncome = totalIncome

	if err := json.Unmarshal([]byte(resultJSON), &record.Result); err != nil {
		return nil, fmt.Errorf("%w: bad result payload: %v", common.ErrDatabaseCorrupted, err)
	}

	return &record, nil
}
