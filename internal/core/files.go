package core

import (
	"context"

	"github.com/ryrobes/rewindex/internal/versionstore"
)

// FileCurrent implements file_current(root, path).
func (p *Project) FileCurrent(ctx context.Context, relPath string) (*versionstore.FileRecord, error) {
	return p.store.Current(ctx, p.ProjectID(), relPath)
}

// FileHistory implements file_history(root, path, limit).
func (p *Project) FileHistory(ctx context.Context, relPath string, limit int) ([]versionstore.VersionRecord, error) {
	return p.store.History(ctx, p.ProjectID(), relPath, limit)
}

// Version implements version(hash).
func (p *Project) Version(ctx context.Context, contentHash string) (*versionstore.VersionRecord, error) {
	return p.store.VersionByHash(ctx, contentHash)
}

// FileAt implements file_at(root, path, ts_ms): the latest version at or
// before tsMS, falling back to the current record when no version
// predates the cutoff (e.g. ts_ms is before the file's first version but
// the caller still wants whatever the current state is).
func (p *Project) FileAt(ctx context.Context, relPath string, tsMS int64) (*versionstore.VersionRecord, error) {
	v, err := p.store.At(ctx, p.ProjectID(), relPath, tsMS)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	rec, err := p.store.Current(ctx, p.ProjectID(), relPath)
	if err != nil || rec == nil {
		return nil, err
	}
	return &versionstore.VersionRecord{
		FilePath:    rec.RelativePath,
		ContentHash: rec.ContentHash,
		CreatedAt:   rec.IndexedAt,
		IsCurrent:   rec.IsCurrent,
		Content:     rec.Content,
		Language:    rec.Language,
		ProjectID:   rec.ProjectID,
	}, nil
}

// FilesAtEntry is one path's state as of a point-in-time files_at query.
type FilesAtEntry struct {
	RelativePath string
	ContentHash  string
	Language     string
	SizeBytes    int64
}

// FilesAt implements files_at(root, ts_ms): the set of paths with a
// version at or before tsMS, each with the version record active at that
// moment. Paths with no version yet at tsMS are omitted.
func (p *Project) FilesAt(ctx context.Context, tsMS int64) ([]FilesAtEntry, error) {
	records, err := p.store.CurrentFiles(ctx, p.ProjectID())
	if err != nil {
		return nil, err
	}

	entries := make([]FilesAtEntry, 0, len(records))
	for _, rec := range records {
		v, err := p.store.At(ctx, p.ProjectID(), rec.RelativePath, tsMS)
		if err != nil {
			continue
		}
		if v == nil {
			continue
		}
		entries = append(entries, FilesAtEntry{
			RelativePath: v.FilePath,
			ContentHash:  v.ContentHash,
			Language:     v.Language,
			SizeBytes:    int64(len(v.Content)),
		})
	}
	return entries, nil
}
