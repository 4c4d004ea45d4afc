// Package query implements the Query Engine (C8): index routing between
// the current-files and versions views, multi-match query construction
// over the Search Backend Abstraction, and line-anchored match
// reconstruction for display.
package query

// Filters narrows a search. All fields are optional; the zero value
// matches everything current.
type Filters struct {
	Language        []string
	PathPattern     string // glob; ** is normalized to * for the backend wildcard
	PathPrefix      string
	FileTypes       []string // extensions, e.g. ".go"
	ExcludePaths    string   // glob; hits whose path matches are dropped after retrieval
	HasFunction     string
	HasClass        string
	IsCurrent       *bool // nil leaves the field unconstrained
	CreatedBeforeMS int64 // as-of cutoff; non-zero routes to the versions index
	FilePaths       []string
	ShowDeleted     bool
}

// Options tunes result shape and matching behavior.
type Options struct {
	Limit        int
	ContextLines int
	Highlight    bool
	Fuzziness    string // "" | "AUTO"
	Partial      bool   // enables prefix matching on PathPrefix; PathPattern is always matched as a wildcard
	ShowDeleted  bool
}

// DefaultOptions returns the engine's default option set.
func DefaultOptions() Options {
	return Options{Limit: 20, ContextLines: 3, Highlight: true}
}

// Match is one line-anchored occurrence within a file.
type Match struct {
	Line      int
	Highlight string
	Before    []string
	After     []string
}

// ResultMetadata carries symbol hints alongside a hit.
type ResultMetadata struct {
	SizeBytes int64
	Functions []string
	Classes   []string
	Imports   []string
}

// Result is one file-level hit.
type Result struct {
	FilePath string
	Score    float64
	Language string
	Matches  []Match
	Metadata ResultMetadata
}

// Response is the outcome of Search.
type Response struct {
	Total   int
	Results []Result
}

// TimelinePoint is one bucket of the timeline aggregation.
type TimelinePoint struct {
	BucketStartMS int64
	Count         int
}
