package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/ryrobes/rewindex/internal/detect"
	"github.com/ryrobes/rewindex/internal/watch"
)

// WatchHandle lets a caller stop a running watch and observe its health.
type WatchHandle struct {
	project *Project
}

// Stop halts the watcher supervisor.
func (h *WatchHandle) Stop() error {
	return h.project.sup.Stop()
}

// State reports the watcher's current lifecycle state.
func (h *WatchHandle) State() watch.State {
	return h.project.sup.State()
}

// BatchCallback is invoked once per coalesced batch of applied events.
type BatchCallback func(outcomes []detect.FileOutcome)

// StartWatch implements start_watch(root, callbacks): it starts the
// watcher supervisor, and for every debounced batch it emits, runs the
// batch through the change detector and forwards the per-file outcomes to
// onBatch.
func (p *Project) StartWatch(ctx context.Context, onBatch BatchCallback) (*WatchHandle, error) {
	debounce := time.Duration(p.Config.Indexing.Watch.DebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	p.sup = watch.New(p.matcher, debounce, p.logger)

	go func() {
		if err := p.sup.Start(ctx, p.root); err != nil {
			p.logger.Warn("watcher supervisor stopped", slog.Any("error", err))
		}
	}()

	go func() {
		for batch := range p.sup.Events() {
			outcomes := p.detector.ApplyBatch(ctx, p.ProjectID(), p.root, batch)
			if onBatch != nil {
				onBatch(outcomes)
			}
		}
	}()

	return &WatchHandle{project: p}, nil
}
