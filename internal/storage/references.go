package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/oakmere/auditflow/internal/model"
)

// SaveReferenceEntry inserts or replaces one cached reference entry. The
// cache persists entries whole, so an upsert is always a full overwrite.
func (s *SQLiteStorage) SaveReferenceEntry(ctx context.Context, entry *model.ReferenceEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReferenceEntry(entry); err != nil {
		return err
	}

	query := `
		INSERT INTO reference_entries (kind, id, title, content, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source = excluded.source,
			fetched_at = excluded.fetched_at`

	_, err := s.db.ExecContext(ctx, query,
		string(entry.Kind), entry.ID, entry.Title, entry.Content, entry.Source, entry.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save reference entry: %w", err)
	}

	slog.Debug("saved reference entry", "kind", entry.Kind, "id", entry.ID)
	return nil
}

// GetReferenceEntry returns one entry, or nil when the store has never
// seen that kind/id.
func (s *SQLiteStorage) GetReferenceEntry(ctx context.Context, kind model.ReferenceKind, id string) (*model.ReferenceEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT kind, id, title, content, source, fetched_at
		FROM reference_entries
		WHERE kind = ? AND id = ?`

	var entry model.ReferenceEntry
	err := s.db.QueryRowContext(ctx, query, string(kind), id).Scan(
		&entry.Kind, &entry.ID, &entry.Title, &entry.Content, &entry.Source, &entry.FetchedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Entry not persisted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reference entry: %w", err)
	}

	return &entry, nil
}

// ListReferenceEntries returns every persisted entry, ordered for stable
// cache warm loads.
func (s *SQLiteStorage) ListReferenceEntries(ctx context.Context) ([]model.ReferenceEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT kind, id, title, content, source, fetched_at
		FROM reference_entries
		ORDER BY kind, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference entries: %w", err)
	}
	defer rows.Close()

	var entries []model.ReferenceEntry
	for rows.Next() {
		var entry model.ReferenceEntry
		if err := rows.Scan(&entry.Kind, &entry.ID, &entry.Title, &entry.Content, &entry.Source, &entry.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reference entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference entries: %w", err)
	}

	slog.Debug("retrieved reference entries", "count", len(entries))
	return entries, nil
}
