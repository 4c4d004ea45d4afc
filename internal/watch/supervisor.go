// Package watch implements the Watcher Supervisor (C7): a fsnotify-backed
// watcher with a polling fallback, debounced via internal/detect, exposing
// a small health state machine (heartbeat, stall detection, and a
// consecutive-error abort threshold for the polling path).
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ryrobes/rewindex/internal/detect"
)

// State is one phase of the supervisor's lifecycle.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StateStalled      State = "stalled"
	StateStopping     State = "stopping"
	StateStopped      State = "stopped"
)

const (
	defaultPollInterval     = 2 * time.Second
	heartbeatInterval       = 1 * time.Second
	heartbeatLogEveryTicks  = 60
	stallThreshold          = 5 * time.Minute
	backlogWarnThreshold    = 500
	maxConsecutivePollErrs  = 5
	stopGracePeriod         = 5 * time.Second
)

// Matcher is the subset of pathmatch.Matcher the supervisor depends on, to
// avoid queuing events for paths that would never be indexed.
type Matcher interface {
	Eligible(relPath string, isDir bool, size int64) bool
}

// Supervisor owns one watcher (fsnotify or polling) plus the debouncer that
// sits on top of it, and reports aggregate health.
type Supervisor struct {
	rootPath string
	matcher  Matcher
	logger   *slog.Logger

	fsWatcher   *fsnotify.Watcher
	poll        *pollingWatcher
	useFsnotify bool

	debouncer *detect.Debouncer
	eventsCh  chan []detect.Event

	mu    sync.RWMutex
	state State

	lastEventAt     atomic.Int64 // unix nano
	droppedBatches  atomic.Uint64
	consecutiveErrs atomic.Int64
	tickCount       atomic.Int64

	stopCh  chan struct{}
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// New builds a Supervisor. Construction never fails: if fsnotify cannot be
// initialized, the polling fallback is selected instead.
func New(matcher Matcher, debounceWindow time.Duration, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Supervisor{
		matcher:   matcher,
		logger:    logger,
		debouncer: detect.NewDebouncer(debounceWindow, logger),
		eventsCh:  make(chan []detect.Event, 64),
		stopCh:    make(chan struct{}),
		state:     StateInitializing,
	}

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		s.fsWatcher = fsw
		s.useFsnotify = true
	} else {
		s.useFsnotify = false
		s.poll = newPollingWatcher(defaultPollInterval, matcher, logger)
	}

	return s
}

// NewPolling builds a Supervisor that always uses the polling fallback at
// the given interval, bypassing fsnotify. Callers that need a short,
// deterministic poll interval (tests, or platforms without inotify) use
// this instead of New.
func NewPolling(matcher Matcher, pollInterval, debounceWindow time.Duration, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		matcher:   matcher,
		logger:    logger,
		debouncer: detect.NewDebouncer(debounceWindow, logger),
		eventsCh:  make(chan []detect.Event, 64),
		stopCh:    make(chan struct{}),
		state:     StateInitializing,
		poll:      newPollingWatcher(pollInterval, matcher, logger),
	}
}

// WatcherType reports which underlying mechanism is active.
func (s *Supervisor) WatcherType() string {
	if s.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Start begins watching root and blocks until the context is canceled, Stop
// is called, or the polling path exceeds its consecutive-error budget.
func (s *Supervisor) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	s.rootPath = absRoot
	s.lastEventAt.Store(time.Now().UnixNano())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.forwardDebounced(ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.heartbeat(ctx)
	}()

	s.setState(StateRunning)

	if s.useFsnotify {
		return s.runFsnotify(ctx)
	}
	return s.runPolling(ctx)
}

func (s *Supervisor) runFsnotify(ctx context.Context) error {
	if err := s.addRecursive(s.rootPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.Stop()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return nil
			}
			s.handleFsnotifyEvent(event)
		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("fsnotify error", slog.Any("error", err))
		}
	}
}

func (s *Supervisor) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if relPath == "." {
			return s.fsWatcher.Add(path)
		}
		info, statErr := d.Info()
		size := int64(-1)
		if statErr == nil {
			size = info.Size()
		}
		if !s.matcher.Eligible(filepath.ToSlash(relPath), true, size) {
			return fs.SkipDir
		}
		return s.fsWatcher.Add(path)
	})
}

func (s *Supervisor) handleFsnotifyEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(s.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}
	relPath = filepath.ToSlash(relPath)

	info, statErr := fsInfo(event.Name)
	isDir := statErr == nil && info.IsDir()
	size := int64(-1)
	if statErr == nil {
		size = info.Size()
	}

	if !s.matcher.Eligible(relPath, isDir, size) {
		return
	}

	var op detect.Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = detect.OpCreate
		if isDir {
			_ = s.fsWatcher.Add(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = detect.OpModify
	case event.Op&fsnotify.Remove != 0:
		op = detect.OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = detect.OpDelete
	default:
		return
	}

	s.lastEventAt.Store(time.Now().UnixNano())
	s.debouncer.Add(detect.Event{Path: relPath, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (s *Supervisor) runPolling(ctx context.Context) error {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		done <- s.poll.Start(pollCtx, s.rootPath)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = s.Stop()
			return ctx.Err()
		case <-s.stopCh:
			cancel()
			return nil
		case ev, ok := <-s.poll.Events():
			if !ok {
				return <-done
			}
			s.consecutiveErrs.Store(0)
			s.lastEventAt.Store(time.Now().UnixNano())
			s.debouncer.Add(ev)
		case err, ok := <-s.poll.Errors():
			if !ok {
				continue
			}
			s.logger.Warn("polling watcher error", slog.Any("error", err))
			if s.consecutiveErrs.Add(1) >= maxConsecutivePollErrs {
				s.logger.Error("polling watcher exceeded consecutive error budget, stopping",
					slog.Int64("consecutive_errors", s.consecutiveErrs.Load()))
				_ = s.Stop()
				return fmt.Errorf("polling watcher aborted after %d consecutive errors", maxConsecutivePollErrs)
			}
		}
	}
}

func (s *Supervisor) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case events, ok := <-s.debouncer.Output():
			if !ok {
				return
			}
			if len(events) == 0 {
				continue
			}
			if len(events) > backlogWarnThreshold {
				s.logger.Warn("debounced batch exceeds backlog warning threshold",
					slog.Int("batch_size", len(events)), slog.Int("threshold", backlogWarnThreshold))
			}
			s.emit(events)
		}
	}
}

// Events returns the channel of debounced, coalesced event batches.
func (s *Supervisor) Events() <-chan []detect.Event {
	return s.eventsCh
}

func (s *Supervisor) emit(events []detect.Event) {
	select {
	case s.eventsCh <- events:
	default:
		n := s.droppedBatches.Add(1)
		s.logger.Warn("supervisor event buffer full, dropping batch",
			slog.Int("batch_size", len(events)), slog.Uint64("total_dropped_batches", n))
	}
}

func (s *Supervisor) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			n := s.tickCount.Add(1)

			last := time.Unix(0, s.lastEventAt.Load())
			stalled := time.Since(last) > stallThreshold
			if stalled {
				s.setState(StateStalled)
			} else if s.State() == StateStalled {
				s.setState(StateRunning)
			}

			if n%heartbeatLogEveryTicks == 0 {
				s.logger.Info("watcher heartbeat",
					slog.String("watcher_type", s.WatcherType()),
					slog.String("state", string(s.State())),
					slog.Time("last_event_at", last),
					slog.Uint64("dropped_batches", s.droppedBatches.Load()),
				)
			}
		}
	}
}

// DroppedBatches returns the number of event batches dropped due to buffer overflow.
func (s *Supervisor) DroppedBatches() uint64 {
	return s.droppedBatches.Load()
}

// Stop halts the supervisor, giving internal goroutines up to a grace
// period to observe the stop signal and exit before returning.
func (s *Supervisor) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	s.setState(StateStopping)
	close(s.stopCh)
	s.debouncer.Stop()

	if s.useFsnotify && s.fsWatcher != nil {
		_ = s.fsWatcher.Close()
	}
	if s.poll != nil {
		_ = s.poll.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGracePeriod):
		s.logger.Warn("watcher supervisor goroutines did not exit within grace period")
	}

	s.setState(StateStopped)
	return nil
}

func fsInfo(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
