// Package backend defines the Search Backend Abstraction (C4): a narrow
// capability interface over an external inverted-index engine. Any store
// satisfying Backend is admissible; the only implementation shipped here is
// backed by an embedded bleve index.
package backend

import (
	"context"
	"time"
)

// SchemaKind selects the logical document schema for an index: the
// current-files view or the append-only version log.
type SchemaKind string

const (
	SchemaFiles    SchemaKind = "files"
	SchemaVersions SchemaKind = "versions"
)

// Document is a backend-agnostic JSON-like document body.
type Document map[string]any

// RangeClause bounds a date/numeric field. Both bounds are epoch
// milliseconds; either may be nil to leave that side open.
type RangeClause struct {
	Gte *int64
	Lt  *int64
}

// DateHistogramSpec requests a fixed-interval time bucketing over a date
// field, used by the timeline aggregation.
type DateHistogramSpec struct {
	Field        string
	IntervalMS   int64
	MaxBuckets   int
	RangeStartMS int64
	RangeEndMS   int64
}

// Query is the backend-agnostic query shape: a boosted multi-match over
// text fields, AND-composed exact-term and boolean filters, an optional
// date range, and an optional wildcard/prefix match for partial queries.
type Query struct {
	// MatchAll requests every document (used for "*" queries and scrolling).
	MatchAll bool

	// Text is matched against Field (default "content") and, when
	// BoostField is set, additionally against that field with Boost
	// weight: a multi-match over content and a boosted copy of
	// file_name.text.
	Text       string
	Field      string
	BoostField string
	Boost      float64

	// Fuzziness, when non-zero, allows Text to match Field/BoostField
	// within that many edits (bleve caps useful values at 2).
	Fuzziness int

	// Wildcard, when non-empty, is matched against WildcardField using
	// glob-style wildcards (enabled by the "partial" search option).
	Wildcard      string
	WildcardField string

	// Terms AND-composes exact-match filters; multiple values for one
	// field are OR-composed within that field.
	Terms map[string][]string

	// Bools AND-composes exact boolean-field filters (e.g. is_current).
	Bools map[string]bool

	// DateRange bounds a single date field (created_at or last_modified
	// depending on index routing).
	DateRangeField string
	DateRange      *RangeClause

	Size      int
	From      int
	Highlight bool

	Histogram *DateHistogramSpec
}

// Hit is a single search result.
type Hit struct {
	ID        string
	Score     float64
	Source    Document
	Highlight []string
}

// Bucket is one point of a date histogram.
type Bucket struct {
	KeyMS int64
	Count int
}

// SearchResult is the outcome of Search or one page of Scroll.
type SearchResult struct {
	Total     int
	Hits      []Hit
	Histogram []Bucket
}

// Backend is the narrow capability interface (C4). Implementations must be
// safe for concurrent use.
type Backend interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, kind SchemaKind) error
	DeleteIndex(ctx context.Context, name string) error
	Count(ctx context.Context, name string) (uint64, error)
	Refresh(ctx context.Context, name string) error

	Get(ctx context.Context, name, docID string) (Document, bool, error)
	Put(ctx context.Context, name, docID string, source Document) error

	Search(ctx context.Context, name string, q Query) (*SearchResult, error)
	DeleteByQuery(ctx context.Context, name string, q Query) (int, error)

	// Scroll opens a cursor over a result set larger than a single page.
	// Scroll returns the first batch and a cursor id; ScrollNext advances
	// it. The cursor expires after ttl of inactivity.
	Scroll(ctx context.Context, name string, q Query, batchSize int, ttl time.Duration) (cursorID string, result *SearchResult, err error)
	ScrollNext(ctx context.Context, cursorID string) (result *SearchResult, done bool, err error)

	Close() error
}
