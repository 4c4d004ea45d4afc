package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryrobes/rewindex/internal/backend"
	"github.com/ryrobes/rewindex/internal/query"
)

func openTestProject(t *testing.T) (*Project, string) {
	t.Helper()
	root := t.TempDir()
	proj, err := Open(root, WithBackend(backend.NewBleveBackend("")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = proj.Close() })
	return proj, root
}

func TestOpenDerivesStableProjectID(t *testing.T) {
	proj, root := openTestProject(t)
	if proj.ProjectID() == "" || proj.ProjectID() == "default" {
		t.Fatalf("ProjectID() = %q, want a derived uuid", proj.ProjectID())
	}

	// A second Open of the same root (after Close released the lock)
	// derives the same identity from the persisted config.
	if err := proj.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	again, err := Open(root, WithBackend(backend.NewBleveBackend("")))
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer again.Close()
	if again.ProjectID() != proj.ProjectID() {
		t.Errorf("ProjectID changed across reopen: %q vs %q", again.ProjectID(), proj.ProjectID())
	}
}

func TestOpenRefusesSecondConcurrentOpen(t *testing.T) {
	root := t.TempDir()
	proj, err := Open(root, WithBackend(backend.NewBleveBackend("")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer proj.Close()

	if _, err := Open(root, WithBackend(backend.NewBleveBackend(""))); err == nil {
		t.Fatal("expected second Open of the same root to fail while the lock is held")
	}
}

func TestFullScanIndexesAndReports(t *testing.T) {
	proj, root := openTestProject(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	counts, err := proj.FullScan(ctx)
	if err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	if counts.Added != 1 {
		t.Errorf("Added = %d, want 1", counts.Added)
	}

	rec, err := proj.FileCurrent(ctx, "main.go")
	if err != nil {
		t.Fatalf("FileCurrent: %v", err)
	}
	if rec == nil || !rec.IsCurrent {
		t.Fatal("expected main.go to be current after scan")
	}
}

func TestFullScanThenSearchFindsIndexedContent(t *testing.T) {
	proj, root := openTestProject(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(root, "auth.go"), []byte("func Authenticate() bool { return true }\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := proj.FullScan(ctx); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	resp, err := proj.Search(ctx, "Authenticate", query.Filters{}, query.DefaultOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
}

func TestRestoreWritesCurrentContentToOutputPath(t *testing.T) {
	proj, root := openTestProject(t)
	ctx := context.Background()

	src := filepath.Join(root, "a.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := proj.FullScan(ctx); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	out := filepath.Join(root, "restored.txt")
	if err := proj.Restore(ctx, "a.txt", 0, out, false); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("restored content = %q, want %q", got, "hello")
	}
}

func TestRestoreRefusesPathEscapingRoot(t *testing.T) {
	proj, root := openTestProject(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := proj.FullScan(ctx); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	escaped := filepath.Join(root, "..", "escaped.txt")
	if err := proj.Restore(ctx, "a.txt", 0, escaped, false); err == nil {
		t.Fatal("expected restore to an escaping path to fail")
	}
}

func TestPurgeIgnoredRemovesNewlyExcludedPaths(t *testing.T) {
	root := t.TempDir()
	// A real on-disk index, not mem-only: the data must survive across the
	// Close/re-Open below, since the matcher that PurgeIgnored consults is
	// only rebuilt at Open time.
	backendDir := t.TempDir()
	ctx := context.Background()

	proj, err := Open(root, WithBackend(backend.NewBleveBackend(backendDir)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "generated"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "generated", "lib.go"), []byte("package generated\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Index it first, before any ignore rule targets it.
	if _, err := proj.FullScan(ctx); err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	rec, err := proj.FileCurrent(ctx, "generated/lib.go")
	if err != nil {
		t.Fatalf("FileCurrent: %v", err)
	}
	if rec == nil {
		t.Fatal("expected generated/lib.go to be indexed before the ignore rule exists")
	}
	if err := proj.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, ".rewindexignore"), []byte("generated/**\n"), 0o644); err != nil {
		t.Fatalf("WriteFile .rewindexignore: %v", err)
	}

	// The matcher is built at Open time, so the new rule only takes effect
	// on a fresh Open of the same root.
	reopened, err := Open(root, WithBackend(backend.NewBleveBackend(backendDir)))
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer reopened.Close()

	counts, err := reopened.PurgeIgnored(ctx, false)
	if err != nil {
		t.Fatalf("PurgeIgnored: %v", err)
	}
	if counts.Purged != 1 {
		t.Errorf("Purged = %d, want 1", counts.Purged)
	}

	rec, err = reopened.FileCurrent(ctx, "generated/lib.go")
	if err != nil {
		t.Fatalf("FileCurrent after purge: %v", err)
	}
	if rec != nil {
		t.Error("expected generated/lib.go to be purged, still present")
	}
}
