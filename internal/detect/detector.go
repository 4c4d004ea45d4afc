package detect

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ryrobes/rewindex/internal/classify"
	"github.com/ryrobes/rewindex/internal/metadata"
	"github.com/ryrobes/rewindex/internal/pathmatch"
	"github.com/ryrobes/rewindex/internal/versionstore"
)

// Matcher is the subset of pathmatch.Matcher the Detector depends on.
type Matcher interface {
	Eligible(relPath string, isDir bool, size int64) bool
}

var _ Matcher = (*pathmatch.Matcher)(nil)

// Detector wires debounced events and full-scan reconciliation to the
// per-file C1->C2->C3->C5 pipeline: path eligibility, content
// classification, metadata extraction, and the version store upsert. A
// failure on one file is logged and counted, never propagated to the
// caller driving a batch or a scan.
type Detector struct {
	matcher Matcher
	store   *versionstore.Store
	logger  *slog.Logger

	errorCount atomic.Int64
}

// NewDetector builds a Detector. A nil logger defaults to slog.Default().
func NewDetector(matcher Matcher, store *versionstore.Store, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{matcher: matcher, store: store, logger: logger}
}

// ErrorCount returns the number of per-file failures observed since
// construction. Callers use this to surface a non-fatal health signal.
func (d *Detector) ErrorCount() int64 {
	return d.errorCount.Load()
}

// FileOutcome reports what happened to a single relative path during
// ApplyBatch or FullScan.
type FileOutcome struct {
	RelativePath string
	Outcome      versionstore.UpsertOutcome
	Skipped      bool
	Err          error
}

// ApplyBatch processes one coalesced batch of debounced events, rooted at
// rootDir, for projectID. Events are applied independently; a failure on
// one path does not prevent the rest of the batch from being processed.
func (d *Detector) ApplyBatch(ctx context.Context, projectID, rootDir string, events []Event) []FileOutcome {
	outcomes := make([]FileOutcome, 0, len(events))
	for _, ev := range events {
		outcomes = append(outcomes, d.applyEvent(ctx, projectID, rootDir, ev))
	}
	return outcomes
}

func (d *Detector) applyEvent(ctx context.Context, projectID, rootDir string, ev Event) FileOutcome {
	if ev.IsDir {
		return FileOutcome{RelativePath: ev.Path, Skipped: true}
	}

	if ev.Operation == OpDelete {
		if err := d.store.MarkDeleted(ctx, projectID, ev.Path, time.Now().UTC()); err != nil {
			d.fail(ev.Path, "mark deleted", err)
			return FileOutcome{RelativePath: ev.Path, Err: err}
		}
		return FileOutcome{RelativePath: ev.Path, Outcome: "deleted"}
	}

	return d.indexPath(ctx, projectID, rootDir, ev.Path)
}

// IndexPath runs the C1->C2->C3->C5 pipeline for a single project-relative
// path: eligibility check, binary/language classification, metadata
// extraction, and upsert into the version store. It is the unit both
// ApplyBatch and FullScan drive per path.
func (d *Detector) IndexPath(ctx context.Context, projectID, rootDir, relPath string) FileOutcome {
	return d.indexPath(ctx, projectID, rootDir, relPath)
}

func (d *Detector) indexPath(ctx context.Context, projectID, rootDir, relPath string) FileOutcome {
	absPath := filepath.Join(rootDir, relPath)

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileOutcome{RelativePath: relPath, Skipped: true}
		}
		d.fail(relPath, "stat", err)
		return FileOutcome{RelativePath: relPath, Err: err}
	}
	if info.IsDir() {
		return FileOutcome{RelativePath: relPath, Skipped: true}
	}

	if !d.matcher.Eligible(relPath, false, info.Size()) {
		return FileOutcome{RelativePath: relPath, Skipped: true}
	}

	result, err := classify.Classify(absPath)
	if err != nil {
		d.fail(relPath, "classify", err)
		return FileOutcome{RelativePath: relPath, Err: err}
	}
	if result.Binary {
		return FileOutcome{RelativePath: relPath, Skipped: true}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		d.fail(relPath, "read content", err)
		return FileOutcome{RelativePath: relPath, Err: err}
	}

	md := metadata.Extract(string(content), result.Language)

	outcome, err := d.store.UpsertFile(ctx, projectID, relPath, string(content), versionstore.Stat{
		SizeBytes:    info.Size(),
		LastModified: info.ModTime().UTC(),
	}, result.Language, md)
	if err != nil {
		d.fail(relPath, "upsert", err)
		return FileOutcome{RelativePath: relPath, Err: err}
	}

	return FileOutcome{RelativePath: relPath, Outcome: outcome}
}

// FullScanResult summarizes one reconciliation pass over a full directory scan.
type FullScanResult struct {
	Indexed []FileOutcome
	Deleted []string
	Renamed []RenamePair
}

// FullScan walks rootDir, indexes every eligible path, and reconciles the
// result against previousCurrent (the path->content-hash map of what was
// is_current before this scan) to detect deletes and renames. A per-file
// walk or index failure is logged and counted, never aborting the scan.
func (d *Detector) FullScan(ctx context.Context, projectID, rootDir string, previousCurrent map[string]string) (FullScanResult, error) {
	var result FullScanResult
	presentHashes := make(map[string]string)

	walkErr := filepath.WalkDir(rootDir, func(absPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.fail(absPath, "walk", err)
			return nil
		}
		if absPath == rootDir {
			return nil
		}

		relPath, relErr := filepath.Rel(rootDir, absPath)
		if relErr != nil {
			d.fail(absPath, "relativize path", relErr)
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			info, statErr := entry.Info()
			size := int64(-1)
			if statErr == nil {
				size = info.Size()
			}
			if !d.matcher.Eligible(relPath, true, size) {
				return fs.SkipDir
			}
			return nil
		}

		outcome := d.indexPath(ctx, projectID, rootDir, relPath)
		if outcome.Skipped {
			return nil
		}
		result.Indexed = append(result.Indexed, outcome)
		if outcome.Err == nil {
			if rec, getErr := d.store.Current(ctx, projectID, relPath); getErr == nil && rec != nil {
				presentHashes[relPath] = rec.ContentHash
			}
		}
		return nil
	})
	if walkErr != nil {
		return result, walkErr
	}

	recon := Reconcile(previousCurrent, presentHashes)

	for _, pair := range recon.Renamed {
		if err := d.store.MarkRenamed(ctx, projectID, pair.OldPath, pair.NewPath); err != nil {
			d.fail(pair.OldPath, "mark renamed", err)
			continue
		}
		if err := d.store.MarkDeleted(ctx, projectID, pair.OldPath, time.Now().UTC()); err != nil {
			d.fail(pair.OldPath, "mark deleted after rename", err)
			continue
		}
		result.Renamed = append(result.Renamed, pair)
	}

	for _, path := range recon.Deleted {
		if err := d.store.MarkDeleted(ctx, projectID, path, time.Now().UTC()); err != nil {
			d.fail(path, "mark deleted", err)
			continue
		}
		result.Deleted = append(result.Deleted, path)
	}

	return result, nil
}

func (d *Detector) fail(path, stage string, err error) {
	d.errorCount.Add(1)
	d.logger.Warn("detector: per-file operation failed",
		slog.String("path", path),
		slog.String("stage", stage),
		slog.Any("error", err),
	)
}
