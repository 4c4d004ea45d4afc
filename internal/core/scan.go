package core

import (
	"context"
	"log/slog"

	"github.com/ryrobes/rewindex/internal/detect"
)

// ScanCounts summarizes one full_scan pass.
type ScanCounts struct {
	Added   int
	Updated int
	Skipped int
	Deleted int
	Renamed int
	Errors  int64
}

// FullScan implements full_scan(root): walk the project tree, index every
// eligible file, and reconcile deletes/renames against the snapshot of
// what was current before the scan began.
func (p *Project) FullScan(ctx context.Context) (ScanCounts, error) {
	records, err := p.store.CurrentFiles(ctx, p.ProjectID())
	if err != nil {
		return ScanCounts{}, err
	}
	previous := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.IsCurrent {
			previous[rec.RelativePath] = rec.ContentHash
		}
	}

	result, err := p.detector.FullScan(ctx, p.ProjectID(), p.root, previous)
	if err != nil {
		return ScanCounts{}, err
	}

	counts := ScanCounts{
		Deleted: len(result.Deleted),
		Renamed: len(result.Renamed),
		Errors:  p.detector.ErrorCount(),
	}
	for _, outcome := range result.Indexed {
		switch outcome.Outcome {
		case "added":
			counts.Added++
		case "updated":
			counts.Updated++
		case "unchanged":
			counts.Skipped++
		}
	}

	if err := p.store.Refresh(ctx); err != nil {
		p.logger.Warn("refresh after full scan failed", slog.Any("error", err))
	}
	return counts, nil
}

// IndexPath exposes the single-file pipeline for callers that already know
// which path changed (used by StartWatch's batch handler).
func (p *Project) IndexPath(ctx context.Context, relPath string) detect.FileOutcome {
	return p.detector.IndexPath(ctx, p.ProjectID(), p.root, relPath)
}
