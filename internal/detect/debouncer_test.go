package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerSingleEventPassesThrough(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "test.go", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "test.go", events[0].Path)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerCreateThenModifyCoalescesToCreate(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "a.go", Operation: OpCreate})
	d.Add(Event{Path: "a.go", Operation: OpModify})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerCreateThenDeleteCancelsOut(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "b.go", Operation: OpCreate})
	d.Add(Event{Path: "b.go", Operation: OpDelete})

	select {
	case events := <-d.Output():
		assert.Empty(t, events)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for flush")
	}
}

func TestDebouncerModifyThenDeleteCoalescesToDelete(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "c.go", Operation: OpModify})
	d.Add(Event{Path: "c.go", Operation: OpDelete})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpDelete, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerDeleteThenCreateCoalescesToModify(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "d.go", Operation: OpDelete})
	d.Add(Event{Path: "d.go", Operation: OpCreate})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerDistinctPathsAreIndependent(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, nil)
	defer d.Stop()

	d.Add(Event{Path: "a.go", Operation: OpCreate})
	d.Add(Event{Path: "b.go", Operation: OpModify})
	d.Add(Event{Path: "c.go", Operation: OpDelete})

	select {
	case events := <-d.Output():
		require.Len(t, events, 3)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for batch")
	}
}
