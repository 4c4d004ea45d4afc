// Package core is the facade wiring together path eligibility, classification,
// metadata extraction, the version store, the watcher supervisor, and the
// query engine into the operation surface external front-ends call:
// init_project, full_scan, start_watch, status, search, file_current,
// file_history, version, file_at, files_at, timeline, restore, and
// purge_ignored.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ryrobes/rewindex/internal/backend"
	"github.com/ryrobes/rewindex/internal/config"
	"github.com/ryrobes/rewindex/internal/detect"
	"github.com/ryrobes/rewindex/internal/pathmatch"
	"github.com/ryrobes/rewindex/internal/projectlock"
	"github.com/ryrobes/rewindex/internal/query"
	"github.com/ryrobes/rewindex/internal/versionstore"
	"github.com/ryrobes/rewindex/internal/watch"
)

// Project is one opened rewindex project: config, backend indices, and the
// components layered on top of them.
type Project struct {
	root   string
	Config *config.Config
	logger *slog.Logger

	be       backend.Backend
	filesIdx string
	versIdx  string

	store    *versionstore.Store
	matcher  *pathmatch.Matcher
	detector *detect.Detector
	engine   *query.Engine
	lock     *projectlock.Lock

	sup *watch.Supervisor
}

// Option configures Open.
type Option func(*projectOptions)

type projectOptions struct {
	logger  *slog.Logger
	backend backend.Backend // override, used by tests to inject an in-memory backend
}

// WithLogger sets the logger every component uses.
func WithLogger(l *slog.Logger) Option {
	return func(o *projectOptions) { o.logger = l }
}

// WithBackend overrides the backend the project opens indices on. Intended
// for tests; production callers leave this unset and get a Bleve backend
// rooted at the project's configured data directory.
func WithBackend(be backend.Backend) Option {
	return func(o *projectOptions) { o.backend = be }
}

// Open implements init_project: it loads (or defaults) the project's
// config, derives a stable identity on first run, acquires the
// cross-process project lock, and provisions the two logical backend
// indices.
func Open(root string, opts ...Option) (*Project, error) {
	options := projectOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		options.logger.Warn("project config failed to parse, using defaults", slog.Any("error", err))
	}
	if changed, idErr := config.EnsureProjectIdentity(absRoot, cfg); idErr != nil {
		return nil, fmt.Errorf("derive project identity: %w", idErr)
	} else if changed {
		if saveErr := config.Save(absRoot, cfg); saveErr != nil {
			options.logger.Warn("failed to persist derived project identity", slog.Any("error", saveErr))
		}
	}

	dataDir, err := cfg.DataDir(absRoot)
	if err != nil {
		return nil, err
	}

	lock := projectlock.New(dataDir)
	if ok, lockErr := lock.TryLock(); lockErr != nil {
		return nil, fmt.Errorf("acquire project lock: %w", lockErr)
	} else if !ok {
		return nil, fmt.Errorf("project %s is already open by another process", absRoot)
	}

	be := options.backend
	if be == nil {
		be = backend.NewBleveBackend(filepath.Join(dataDir, "index"))
	}

	prefix := cfg.ResolvedIndexPrefix()
	filesIdx := prefix + "_files"
	versIdx := prefix + "_versions"

	ctx := context.Background()
	if err := be.CreateIndex(ctx, filesIdx, backend.SchemaFiles); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create files index: %w", err)
	}
	if err := be.CreateIndex(ctx, versIdx, backend.SchemaVersions); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create versions index: %w", err)
	}

	matcher, err := pathmatch.New(pathmatch.Config{
		Include:       cfg.Indexing.IncludePatterns,
		Exclude:       cfg.Indexing.ExcludePatterns,
		MaxFileSize:   cfg.MaxFileSizeBytes(),
		IndexBinaries: cfg.Indexing.IndexBinaries,
		RootDir:       absRoot,
	})
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("build path matcher: %w", err)
	}

	store := versionstore.New(be, filesIdx, versIdx)

	return &Project{
		root:     absRoot,
		Config:   cfg,
		logger:   options.logger,
		be:       be,
		filesIdx: filesIdx,
		versIdx:  versIdx,
		store:    store,
		matcher:  matcher,
		detector: detect.NewDetector(matcher, store, options.logger),
		engine:   query.New(be, filesIdx, versIdx),
		lock:     lock,
	}, nil
}

// Close releases the project lock and the watcher, if running, and closes
// the backend.
func (p *Project) Close() error {
	if p.sup != nil {
		_ = p.sup.Stop()
	}
	closeErr := p.be.Close()
	lockErr := p.lock.Unlock()
	if closeErr != nil {
		return closeErr
	}
	return lockErr
}

// Root returns the project's absolute root path.
func (p *Project) Root() string { return p.root }

// ProjectID returns the project's stable identity.
func (p *Project) ProjectID() string { return p.Config.Project.ID }
