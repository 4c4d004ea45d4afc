package projectlock

import "testing"

func TestTryLockSucceedsThenBlocksASecondHolder(t *testing.T) {
	dir := t.TempDir()

	first := New(dir)
	acquired, err := first.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !acquired {
		t.Fatal("expected first TryLock to succeed")
	}

	second := New(dir)
	acquired2, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock (second): %v", err)
	}
	if acquired2 {
		t.Fatal("expected second TryLock to fail while first holds the lock")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	acquired3, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock (after release): %v", err)
	}
	if !acquired3 {
		t.Fatal("expected TryLock to succeed after the first lock was released")
	}
	_ = second.Unlock()
}

func TestUnlockIsSafeWhenNotLocked(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock on unheld lock should be a no-op, got: %v", err)
	}
}
