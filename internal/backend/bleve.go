package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/ryrobes/rewindex/internal/apperrors"
)

// defaultScrollTTL is used when the caller passes a non-positive ttl to Scroll.
const defaultScrollTTL = 30 * time.Second

// BleveBackend implements Backend atop one embedded bleve index per logical
// index name, all rooted under a single base directory. This is the only
// Backend implementation shipped: nothing beyond the narrow capability
// surface here is needed, and no external inverted-index service client
// exists in the adopted dependency stack.
type BleveBackend struct {
	baseDir string

	mu      sync.RWMutex
	indices map[string]bleve.Index

	scrolls *scrollRegistry
}

// NewBleveBackend creates a backend rooted at baseDir. If baseDir is empty,
// indices are created in-memory (useful for tests).
func NewBleveBackend(baseDir string) *BleveBackend {
	return &BleveBackend{
		baseDir: baseDir,
		indices: make(map[string]bleve.Index),
		scrolls: newScrollRegistry(),
	}
}

func (b *BleveBackend) pathFor(name string) string {
	if b.baseDir == "" {
		return ""
	}
	return filepath.Join(b.baseDir, name)
}

func (b *BleveBackend) IndexExists(_ context.Context, name string) (bool, error) {
	b.mu.RLock()
	_, open := b.indices[name]
	b.mu.RUnlock()
	if open {
		return true, nil
	}
	if b.baseDir == "" {
		return false, nil
	}
	_, err := os.Stat(b.pathFor(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindIOError, "stat index path", err)
	}
	return true, nil
}

func (b *BleveBackend) CreateIndex(_ context.Context, name string, _ SchemaKind) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, open := b.indices[name]; open {
		return nil
	}

	im, err := buildIndexMapping()
	if err != nil {
		return apperrors.Wrap(apperrors.KindIOError, "build index mapping", err)
	}

	var idx bleve.Index
	if b.baseDir == "" {
		idx, err = bleve.NewMemOnly(im)
	} else {
		path := b.pathFor(name)
		if err := os.MkdirAll(b.baseDir, 0o755); err != nil {
			return apperrors.Wrap(apperrors.KindIOError, "create backend base dir", err)
		}
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, im)
		}
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, fmt.Sprintf("create/open index %q", name), err)
	}

	b.indices[name] = idx
	return nil
}

func (b *BleveBackend) DeleteIndex(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx, open := b.indices[name]; open {
		_ = idx.Close()
		delete(b.indices, name)
	}
	if b.baseDir != "" {
		if err := os.RemoveAll(b.pathFor(name)); err != nil {
			return apperrors.Wrap(apperrors.KindIOError, "remove index directory", err)
		}
	}
	return nil
}

func (b *BleveBackend) Count(_ context.Context, name string) (uint64, error) {
	idx, err := b.open(name)
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindBackendReportedError, "count", err)
	}
	return n, nil
}

// Refresh is a no-op: bleve writes are visible to the next query as soon as
// the batch commits, so there is no separate visibility barrier to cross.
func (b *BleveBackend) Refresh(_ context.Context, name string) error {
	_, err := b.open(name)
	return err
}

func (b *BleveBackend) Get(ctx context.Context, name, docID string) (Document, bool, error) {
	idx, err := b.open(name)
	if err != nil {
		return nil, false, err
	}

	req := bleve.NewSearchRequestOptions(bleveQuery.NewDocIDQuery([]string{docID}), 1, 0, false)
	req.Fields = []string{"*"}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.KindBackendReportedError, "get document", err)
	}
	if len(res.Hits) == 0 {
		return nil, false, nil
	}
	return fieldsToSource(res.Hits[0].Fields), true, nil
}

func (b *BleveBackend) Put(_ context.Context, name, docID string, source Document) error {
	idx, err := b.open(name)
	if err != nil {
		return err
	}
	if err := idx.Index(docID, map[string]any(source)); err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "put document", err)
	}
	return nil
}

func (b *BleveBackend) Search(ctx context.Context, name string, q Query) (*SearchResult, error) {
	idx, err := b.open(name)
	if err != nil {
		return nil, err
	}
	return b.search(ctx, idx, q)
}

func (b *BleveBackend) search(ctx context.Context, idx bleve.Index, q Query) (*SearchResult, error) {
	bq := buildBleveQuery(q)

	size := q.Size
	if size <= 0 {
		size = 20
	}
	req := bleve.NewSearchRequestOptions(bq, size, q.From, false)
	req.Fields = []string{"*"}
	if q.Highlight {
		req.Highlight = bleve.NewHighlight()
	}
	if q.Histogram != nil {
		addHistogramFacet(req, *q.Histogram)
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "search", err)
	}

	out := &SearchResult{Total: int(res.Total)}
	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score, Source: fieldsToSource(hit.Fields)}
		for field, frags := range hit.Fragments {
			if field == "content" || field == "file_name_text" {
				h.Highlight = append(h.Highlight, frags...)
			}
		}
		out.Hits = append(out.Hits, h)
	}

	if q.Histogram != nil {
		out.Histogram = readHistogramFacet(res, *q.Histogram)
	}

	return out, nil
}

func (b *BleveBackend) DeleteByQuery(ctx context.Context, name string, q Query) (int, error) {
	idx, err := b.open(name)
	if err != nil {
		return 0, err
	}

	bq := buildBleveQuery(q)
	req := bleve.NewSearchRequestOptions(bq, 10000, 0, false)
	req.Fields = nil

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindBackendReportedError, "delete_by_query search", err)
	}

	batch := idx.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	if err := idx.Batch(batch); err != nil {
		return 0, apperrors.Wrap(apperrors.KindBackendReportedError, "delete_by_query batch", err)
	}
	return len(res.Hits), nil
}

func (b *BleveBackend) Scroll(ctx context.Context, name string, q Query, batchSize int, ttl time.Duration) (string, *SearchResult, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if ttl <= 0 {
		ttl = defaultScrollTTL
	}

	idx, err := b.open(name)
	if err != nil {
		return "", nil, err
	}

	page := q
	page.Size = batchSize
	page.From = 0
	res, err := b.search(ctx, idx, page)
	if err != nil {
		return "", nil, err
	}

	id, cursor := b.scrolls.open(name, q, batchSize, ttl)
	cursor.total = res.Total
	b.scrolls.advance(id, ttl)

	return id, res, nil
}

func (b *BleveBackend) ScrollNext(ctx context.Context, cursorID string) (*SearchResult, bool, error) {
	cursor, ok := b.scrolls.get(cursorID)
	if !ok {
		return nil, true, apperrors.New(apperrors.KindNotFound, "scroll cursor expired or unknown", nil)
	}

	idx, err := b.open(cursor.indexName)
	if err != nil {
		return nil, false, err
	}

	if cursor.from >= cursor.total {
		b.scrolls.close(cursorID)
		return &SearchResult{Total: cursor.total}, true, nil
	}

	page := cursor.query
	page.Size = cursor.batchSize
	page.From = cursor.from

	res, err := b.search(ctx, idx, page)
	if err != nil {
		return nil, false, err
	}

	done := cursor.from+len(res.Hits) >= cursor.total
	if done {
		b.scrolls.close(cursorID)
	} else {
		b.scrolls.advance(cursorID, cursor.ttl)
	}

	return res, done, nil
}

func (b *BleveBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for name, idx := range b.indices {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(b.indices, name)
	}
	return firstErr
}

func (b *BleveBackend) open(name string) (bleve.Index, error) {
	b.mu.RLock()
	idx, ok := b.indices[name]
	b.mu.RUnlock()
	if ok {
		return idx, nil
	}
	return nil, apperrors.New(apperrors.KindNotFound, fmt.Sprintf("index %q is not open; call CreateIndex first", name), nil)
}

func fieldsToSource(fields map[string]any) Document {
	src := make(Document, len(fields))
	for k, v := range fields {
		src[k] = v
	}
	return src
}
