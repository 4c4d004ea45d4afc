package detect

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces rapid events for the same path within a single
// window, using one lock-protected pending map and one shared timer rather
// than a timer per path. Coalescing follows a fixed table:
//
//	CREATE + MODIFY = CREATE
//	CREATE + DELETE = nothing
//	MODIFY + DELETE = DELETE
//	DELETE + CREATE = MODIFY
type Debouncer struct {
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingEvent
	timer   *time.Timer
	stopped bool

	output chan []Event
}

type pendingEvent struct {
	event   Event
	firstOp Operation
}

// NewDebouncer creates a Debouncer that flushes coalesced batches after window.
func NewDebouncer(window time.Duration, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		window:  window,
		logger:  logger,
		pending: make(map[string]*pendingEvent),
		output:  make(chan []Event, 16),
	}
}

// Add records an event, coalescing it with any pending event on the same path.
func (d *Debouncer) Add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if existing, ok := d.pending[event.Path]; ok {
		coalesced := coalesce(existing.firstOp, existing.event, event)
		if coalesced == nil {
			delete(d.pending, event.Path)
		} else {
			existing.event = *coalesced
		}
	} else {
		d.pending[event.Path] = &pendingEvent{event: event, firstOp: event.Operation}
	}

	d.scheduleFlushLocked()
}

func coalesce(firstOp Operation, existing, next Event) *Event {
	switch firstOp {
	case OpCreate:
		switch next.Operation {
		case OpModify:
			return &existing
		case OpDelete:
			return nil
		default:
			return &next
		}
	case OpModify:
		switch next.Operation {
		case OpDelete:
			return &next
		default:
			return &next
		}
	case OpDelete:
		if next.Operation == OpCreate {
			result := next
			result.Operation = OpModify
			return &result
		}
		return &next
	default:
		return &next
	}
}

func (d *Debouncer) scheduleFlushLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]Event, 0, len(d.pending))
	for _, pe := range d.pending {
		batch = append(batch, pe.event)
	}
	d.pending = make(map[string]*pendingEvent)

	select {
	case d.output <- batch:
	default:
		d.logger.Warn("debouncer output full, dropping batch", slog.Int("batch_size", len(batch)))
	}
}

// Output returns the channel of coalesced event batches.
func (d *Debouncer) Output() <-chan []Event {
	return d.output
}

// Stop halts the debouncer and closes the output channel. Safe to call once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
