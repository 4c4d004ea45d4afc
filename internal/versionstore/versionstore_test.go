package versionstore

import (
	"context"
	"testing"
	"time"

	"github.com/ryrobes/rewindex/internal/backend"
	"github.com/ryrobes/rewindex/internal/metadata"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	be := backend.NewBleveBackend("")
	t.Cleanup(func() { _ = be.Close() })

	ctx := context.Background()
	if err := be.CreateIndex(ctx, "files", backend.SchemaFiles); err != nil {
		t.Fatalf("CreateIndex files: %v", err)
	}
	if err := be.CreateIndex(ctx, "versions", backend.SchemaVersions); err != nil {
		t.Fatalf("CreateIndex versions: %v", err)
	}
	return New(be, "files", "versions")
}

func TestUpsertFileAddedThenUpdatedThenUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	outcome, err := s.UpsertFile(ctx, "proj1", "main.go", "package main\n", Stat{SizeBytes: 13, LastModified: time.Now()}, "go", metadata.Metadata{})
	if err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("outcome = %v, want added", outcome)
	}

	outcome, err = s.UpsertFile(ctx, "proj1", "main.go", "package main\n", Stat{SizeBytes: 13, LastModified: time.Now()}, "go", metadata.Metadata{})
	if err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	if outcome != OutcomeUnchanged {
		t.Fatalf("outcome = %v, want unchanged", outcome)
	}

	outcome, err = s.UpsertFile(ctx, "proj1", "main.go", "package main\n\nfunc main() {}\n", Stat{SizeBytes: 30, LastModified: time.Now()}, "go", metadata.Metadata{})
	if err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("outcome = %v, want updated", outcome)
	}

	rec, err := s.Current(ctx, "proj1", "main.go")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec == nil || !rec.IsCurrent {
		t.Fatal("expected current file record with is_current true")
	}
	if rec.PreviousHash == "" {
		t.Error("expected previous_hash to be set after an update")
	}
}

func TestHistoryNewestFirstAndAtAsOf(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	contents := []string{"v1", "v1v2", "v1v2v3"}
	var timestamps []int64
	for _, c := range contents {
		if _, err := s.UpsertFile(ctx, "proj1", "f.txt", c, Stat{}, "plaintext", metadata.Metadata{}); err != nil {
			t.Fatalf("UpsertFile: %v", err)
		}
		rec, err := s.Current(ctx, "proj1", "f.txt")
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		timestamps = append(timestamps, rec.IndexedAt.UnixMilli())
		time.Sleep(2 * time.Millisecond)
	}

	history, err := s.History(ctx, "proj1", "f.txt", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History len = %d, want 3", len(history))
	}
	if history[0].Content != "v1v2v3" {
		t.Errorf("newest-first ordering violated: got %q first", history[0].Content)
	}

	v, err := s.At(ctx, "proj1", "f.txt", timestamps[0])
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if v == nil || v.Content != "v1" {
		t.Errorf("At(ts0) = %+v, want content v1", v)
	}
}

func TestMarkDeletedFlipsIsCurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.UpsertFile(ctx, "proj1", "gone.go", "package x\n", Stat{}, "go", metadata.Metadata{}); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	if err := s.MarkDeleted(ctx, "proj1", "gone.go", time.Now()); err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}

	rec, err := s.Current(ctx, "proj1", "gone.go")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec == nil {
		t.Fatal("expected file record to still exist after delete")
	}
	if rec.IsCurrent {
		t.Error("expected is_current false after MarkDeleted")
	}
	if !rec.Deleted || rec.DeletedAt == nil {
		t.Error("expected deleted flag and deleted_at to be set")
	}
}

func TestMarkRenamedLinksBothRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.UpsertFile(ctx, "proj1", "old.go", "package x\n", Stat{}, "go", metadata.Metadata{}); err != nil {
		t.Fatalf("UpsertFile old: %v", err)
	}
	if _, err := s.UpsertFile(ctx, "proj1", "new.go", "package x\n", Stat{}, "go", metadata.Metadata{}); err != nil {
		t.Fatalf("UpsertFile new: %v", err)
	}

	if err := s.MarkRenamed(ctx, "proj1", "old.go", "new.go"); err != nil {
		t.Fatalf("MarkRenamed: %v", err)
	}

	oldRec, err := s.Current(ctx, "proj1", "old.go")
	if err != nil {
		t.Fatalf("Current old: %v", err)
	}
	if oldRec.RenamedTo != "new.go" {
		t.Errorf("RenamedTo = %q, want new.go", oldRec.RenamedTo)
	}

	newRec, err := s.Current(ctx, "proj1", "new.go")
	if err != nil {
		t.Fatalf("Current new: %v", err)
	}
	if newRec.RenamedFrom != "old.go" {
		t.Errorf("RenamedFrom = %q, want old.go", newRec.RenamedFrom)
	}
}
