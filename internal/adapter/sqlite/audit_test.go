package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *AuditStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAuditStore(t *testing.T) {
	t.Run("record and read back", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		if err := store.Record(ctx, "reconcile", "", "2 projects, 0 conflicts"); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if err := store.Record(ctx, "refresh", "web", "cache invalidated"); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		entries, err := store.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entry count = %d, want 2", len(entries))
		}
		// Most recent first.
		if entries[0].Operation != "refresh" || entries[0].Subject != "web" {
			t.Fatalf("entries[0] = %+v, want refresh/web", entries[0])
		}
		if entries[1].Operation != "reconcile" {
			t.Fatalf("entries[1] = %+v, want reconcile", entries[1])
		}
		if entries[0].CreatedAt.IsZero() {
			t.Fatal("CreatedAt should be set")
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()
		for range 5 {
			if err := store.Record(ctx, "reconcile", "", ""); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
		entries, err := store.Recent(ctx, 3)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("entry count = %d, want 3", len(entries))
		}
	})

	t.Run("empty store reads empty", func(t *testing.T) {
		store := openTestStore(t)
		entries, err := store.Recent(context.Background(), 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("entries = %+v, want none", entries)
		}
	})
}
