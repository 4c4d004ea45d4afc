package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ryrobes/rewindex/internal/detect"
)

type allowAllMatcher struct{}

func (allowAllMatcher) Eligible(relPath string, isDir bool, size int64) bool {
	return true
}

func TestSupervisorPollingDetectsCreateModifyDelete(t *testing.T) {
	root := t.TempDir()

	sup := NewPolling(allowAllMatcher{}, 20*time.Millisecond, 30*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErrCh := make(chan error, 1)
	go func() { startErrCh <- sup.Start(ctx, root) }()

	// Let the initial scan establish a baseline before creating the file.
	time.Sleep(40 * time.Millisecond)

	target := filepath.Join(root, "new.go")
	if err := os.WriteFile(target, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var gotCreate bool
	select {
	case batch := <-sup.Events():
		for _, ev := range batch {
			if ev.Path == "new.go" && ev.Operation == detect.OpCreate {
				gotCreate = true
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for create event")
	}
	if !gotCreate {
		t.Fatal("expected a CREATE event for new.go")
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestSupervisorStateTransitionsToStopped(t *testing.T) {
	root := t.TempDir()
	sup := NewPolling(allowAllMatcher{}, 20*time.Millisecond, 30*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sup.Start(ctx, root) }()

	time.Sleep(20 * time.Millisecond)
	if sup.State() != StateRunning {
		t.Fatalf("State() = %v, want running", sup.State())
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sup.State() != StateStopped {
		t.Fatalf("State() = %v, want stopped", sup.State())
	}
}

func TestSupervisorStopIsIdempotent(t *testing.T) {
	sup := NewPolling(allowAllMatcher{}, 20*time.Millisecond, 30*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sup.Start(ctx, t.TempDir()) }()

	time.Sleep(10 * time.Millisecond)
	if err := sup.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("second Stop should be a no-op, got: %v", err)
	}
}
