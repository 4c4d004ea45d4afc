package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/ryrobes/rewindex/internal/detect"
)

// pollingWatcher discovers changes by periodically re-stating the whole
// tree and diffing against the previous snapshot. It is the fallback used
// when fsnotify cannot be initialized.
type pollingWatcher struct {
	interval time.Duration
	matcher  Matcher
	logger   *slog.Logger

	mu        sync.Mutex
	fileState map[string]pollSnapshot
	rootPath  string

	events  chan detect.Event
	errors  chan error
	stopCh  chan struct{}
	stopped bool
}

type pollSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

func newPollingWatcher(interval time.Duration, matcher Matcher, logger *slog.Logger) *pollingWatcher {
	return &pollingWatcher{
		interval:  interval,
		matcher:   matcher,
		logger:    logger,
		fileState: make(map[string]pollSnapshot),
		events:    make(chan detect.Event, 256),
		errors:    make(chan error, 16),
		stopCh:    make(chan struct{}),
	}
}

func (p *pollingWatcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	p.rootPath = absRoot

	if err := p.scan(); err != nil {
		return fmt.Errorf("initial poll scan: %w", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			if err := p.detectChanges(); err != nil {
				select {
				case p.errors <- err:
				default:
				}
			}
		}
	}
}

func (p *pollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

func (p *pollingWatcher) Events() <-chan detect.Event { return p.events }
func (p *pollingWatcher) Errors() <-chan error         { return p.errors }

func (p *pollingWatcher) scan() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return filepath.WalkDir(p.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(p.rootPath, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !p.matcher.Eligible(relPath, d.IsDir(), info.Size()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		p.fileState[relPath] = pollSnapshot{modTime: info.ModTime(), size: info.Size(), isDir: d.IsDir()}
		return nil
	})
}

func (p *pollingWatcher) detectChanges() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]pollSnapshot, len(p.fileState))

	err := filepath.WalkDir(p.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(p.rootPath, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !p.matcher.Eligible(relPath, d.IsDir(), info.Size()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		snap := pollSnapshot{modTime: info.ModTime(), size: info.Size(), isDir: d.IsDir()}
		current[relPath] = snap

		if prev, ok := p.fileState[relPath]; !ok {
			p.emit(detect.Event{Path: relPath, Operation: detect.OpCreate, IsDir: d.IsDir(), Timestamp: time.Now()})
		} else if prev.modTime != snap.modTime || prev.size != snap.size {
			p.emit(detect.Event{Path: relPath, Operation: detect.OpModify, IsDir: d.IsDir(), Timestamp: time.Now()})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory for changes: %w", err)
	}

	for path, snap := range p.fileState {
		if _, ok := current[path]; !ok {
			p.emit(detect.Event{Path: path, Operation: detect.OpDelete, IsDir: snap.isDir, Timestamp: time.Now()})
		}
	}

	p.fileState = current
	return nil
}

func (p *pollingWatcher) emit(ev detect.Event) {
	if p.stopped {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Warn("polling watcher buffer full, dropping event",
			slog.String("path", ev.Path), slog.String("op", ev.Operation.String()))
	}
}
