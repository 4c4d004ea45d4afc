package core

import (
	"context"
	"log/slog"
)

// PurgeCounts summarizes one purge_ignored pass.
type PurgeCounts struct {
	Purged  int
	Scanned int
}

// PurgeIgnored implements purge_ignored(root, dry_run): reclaims file and
// version records for paths that now match an ignore rule (e.g. a
// .gitignore pattern added after those paths were indexed). With dryRun
// set, counts what would be purged without deleting anything.
func (p *Project) PurgeIgnored(ctx context.Context, dryRun bool) (PurgeCounts, error) {
	records, err := p.store.CurrentFiles(ctx, p.ProjectID())
	if err != nil {
		return PurgeCounts{}, err
	}

	counts := PurgeCounts{Scanned: len(records)}
	for _, rec := range records {
		if p.matcher.Eligible(rec.RelativePath, false, rec.SizeBytes) {
			continue
		}
		counts.Purged++
		if dryRun {
			continue
		}
		if err := p.store.PurgePath(ctx, p.ProjectID(), rec.RelativePath); err != nil {
			p.logger.Warn("purge_ignored: failed to purge path", slog.String("path", rec.RelativePath), slog.Any("error", err))
		}
	}
	return counts, nil
}
