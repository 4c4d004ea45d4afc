package core

import (
	"context"

	"github.com/ryrobes/rewindex/internal/query"
)

// Search implements search(root, query, filters, options) per §4.8,
// routed over the project's own indices.
func (p *Project) Search(ctx context.Context, queryText string, filters query.Filters, opts query.Options) (*query.Response, error) {
	if opts.Limit == 0 {
		opts.Limit = p.Config.Search.Defaults.Limit
	}
	if opts.ContextLines == 0 {
		opts.ContextLines = p.Config.Search.Defaults.ContextLines
	}
	return p.engine.Search(ctx, p.ProjectID(), queryText, filters, opts)
}

// Timeline implements timeline(root, paths?): a fixed 5-minute-bucket
// series over the versions index, optionally scoped to a subset of paths.
func (p *Project) Timeline(ctx context.Context, paths []string, rangeStartMS, rangeEndMS int64) ([]query.TimelinePoint, error) {
	return p.engine.Timeline(ctx, p.ProjectID(), paths, rangeStartMS, rangeEndMS)
}

// Diff computes a semantic-cleaned diff between two revisions' content, by
// content hash, for the "diff any two revisions" operation.
func (p *Project) Diff(ctx context.Context, hashA, hashB string) ([]query.DiffSegment, error) {
	a, err := p.store.VersionByHash(ctx, hashA)
	if err != nil {
		return nil, err
	}
	b, err := p.store.VersionByHash(ctx, hashB)
	if err != nil {
		return nil, err
	}
	var contentA, contentB string
	if a != nil {
		contentA = a.Content
	}
	if b != nil {
		contentB = b.Content
	}
	return query.Diff(contentA, contentB), nil
}
