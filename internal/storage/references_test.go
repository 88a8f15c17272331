package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oakmere/auditflow/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testReferenceEntry(kind model.ReferenceKind, id string) *model.ReferenceEntry {
	return &model.ReferenceEntry{
		Kind:      kind,
		ID:        id,
		Title:     "Title for " + id,
		Content:   "Content for " + id,
		Source:    "https://example.test/" + id,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStorage_SaveReferenceEntry(t *testing.T) {
	tests := []struct {
		entry   *model.ReferenceEntry
		name    string
		wantErr bool
	}{
		{
			name:  "save section entry",
			entry: testReferenceEntry(model.KindSection, "162"),
		},
		{
			name:  "save publication entry",
			entry: testReferenceEntry(model.KindPublication, "463"),
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: true,
		},
		{
			name: "unknown kind",
			entry: &model.ReferenceEntry{
				Kind: "statute", ID: "1", FetchedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing id",
			entry: &model.ReferenceEntry{
				Kind: model.KindSection, ID: "  ", FetchedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing fetch time",
			entry: &model.ReferenceEntry{
				Kind: model.KindSection, ID: "162",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			err := store.SaveReferenceEntry(ctx, tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveReferenceEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := store.GetReferenceEntry(ctx, tt.entry.Kind, tt.entry.ID)
			if err != nil {
				t.Fatalf("GetReferenceEntry() error = %v", err)
			}
			if got == nil {
				t.Fatal("expected entry, got nil")
			}
			if got.Title != tt.entry.Title || got.Content != tt.entry.Content || got.Source != tt.entry.Source {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tt.entry)
			}
			if !got.FetchedAt.Equal(tt.entry.FetchedAt) {
				t.Errorf("fetched_at mismatch: got %v, want %v", got.FetchedAt, tt.entry.FetchedAt)
			}
		})
	}
}

func TestSQLiteStorage_SaveReferenceEntryOverwrites(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := testReferenceEntry(model.KindSection, "61")
	if err := store.SaveReferenceEntry(ctx, first); err != nil {
		t.Fatalf("SaveReferenceEntry() error = %v", err)
	}

	updated := *first
	updated.Content = "Revised content"
	updated.FetchedAt = first.FetchedAt.Add(time.Hour)
	if err := store.SaveReferenceEntry(ctx, &updated); err != nil {
		t.Fatalf("SaveReferenceEntry() overwrite error = %v", err)
	}

	got, err := store.GetReferenceEntry(ctx, model.KindSection, "61")
	if err != nil {
		t.Fatalf("GetReferenceEntry() error = %v", err)
	}
	if got.Content != "Revised content" {
		t.Errorf("expected overwritten content, got %q", got.Content)
	}
	if !got.FetchedAt.Equal(updated.FetchedAt) {
		t.Errorf("expected refreshed fetched_at, got %v", got.FetchedAt)
	}

	entries, err := store.ListReferenceEntries(ctx)
	if err != nil {
		t.Fatalf("ListReferenceEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", len(entries))
	}
}

func TestSQLiteStorage_GetReferenceEntryMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	got, err := store.GetReferenceEntry(ctx, model.KindSection, "99999")
	if err != nil {
		t.Fatalf("GetReferenceEntry() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an unseen entry, got %+v", got)
	}

	if _, err := store.GetReferenceEntry(ctx, model.KindSection, ""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestSQLiteStorage_ListReferenceEntries(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	entries, err := store.ListReferenceEntries(ctx)
	if err != nil {
		t.Fatalf("ListReferenceEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list, got %d entries", len(entries))
	}

	for _, entry := range []*model.ReferenceEntry{
		testReferenceEntry(model.KindSection, "61"),
		testReferenceEntry(model.KindPublication, "17"),
		testReferenceEntry(model.KindSection, "162"),
	} {
		if err := store.SaveReferenceEntry(ctx, entry); err != nil {
			t.Fatalf("SaveReferenceEntry() error = %v", err)
		}
	}

	entries, err = store.ListReferenceEntries(ctx)
	if err != nil {
		t.Fatalf("ListReferenceEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Ordered by kind, then id, for stable warm loads.
	wantKeys := []string{"publication/17", "section/162", "section/61"}
	for i, want := range wantKeys {
		if entries[i].Key() != want {
			t.Errorf("position %d: expected %s, got %s", i, want, entries[i].Key())
		}
	}
}
