package query

import (
	"context"
	"strings"

	"github.com/ryrobes/rewindex/internal/apperrors"
	"github.com/ryrobes/rewindex/internal/backend"
)

// Engine answers search and timeline queries against the two logical
// indices a Store maintains.
type Engine struct {
	be            backend.Backend
	filesIndex    string
	versionsIndex string
}

// New builds an Engine over an already-provisioned backend.
func New(be backend.Backend, filesIndex, versionsIndex string) *Engine {
	return &Engine{be: be, filesIndex: filesIndex, versionsIndex: versionsIndex}
}

// wantsAllVersions reports whether the caller is asking to search every
// version rather than only the current snapshot of each file.
func (f Filters) wantsAllVersions() bool {
	return f.CreatedBeforeMS > 0 || (f.IsCurrent != nil && !*f.IsCurrent)
}

// fuzzinessFor translates the Options.Fuzziness knob into a bleve edit
// distance. "AUTO" requests the widest distance bleve supports; anything
// else (including "") disables fuzzy matching.
func fuzzinessFor(setting string) int {
	if setting == "AUTO" {
		return 2
	}
	return 0
}

// Search implements §4.8: index routing, multi-match query construction,
// and per-hit line-context reconstruction. A single malformed hit is
// skipped rather than failing the whole response.
func (e *Engine) Search(ctx context.Context, projectID, queryText string, filters Filters, opts Options) (*Response, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}

	useVersions := filters.wantsAllVersions()
	index := e.filesIndex
	dateField := "last_modified"
	if useVersions {
		index = e.versionsIndex
		dateField = "created_at"
	}
	if index == "" {
		return nil, apperrors.InvalidArgument("search index not configured")
	}

	bq := backend.Query{
		Terms:     map[string][]string{"project_id": {projectID}},
		Bools:     map[string]bool{},
		Size:      opts.Limit,
		Highlight: opts.Highlight,
	}

	trimmed := strings.TrimSpace(queryText)
	if trimmed == "" || trimmed == "*" {
		bq.MatchAll = true
	} else {
		bq.Text = queryText
		bq.Field = "content"
		bq.BoostField = "file_name_text"
		bq.Boost = 2.0
		bq.Fuzziness = fuzzinessFor(opts.Fuzziness)
	}

	if filters.PathPattern != "" {
		bq.Wildcard = strings.ReplaceAll(filters.PathPattern, "**", "*")
		bq.WildcardField = "file_path"
	} else if opts.Partial && filters.PathPrefix != "" {
		bq.Wildcard = filters.PathPrefix + "*"
		bq.WildcardField = "file_path"
	}

	if len(filters.Language) > 0 {
		bq.Terms["language"] = filters.Language
	}
	if len(filters.FileTypes) > 0 {
		bq.Terms["extension"] = filters.FileTypes
	}
	if filters.HasFunction != "" {
		bq.Terms["defined_functions"] = []string{filters.HasFunction}
	}
	if filters.HasClass != "" {
		bq.Terms["defined_classes"] = []string{filters.HasClass}
	}
	if len(filters.FilePaths) > 0 {
		bq.Terms["file_path"] = filters.FilePaths
	}

	if !useVersions {
		if filters.IsCurrent != nil {
			bq.Bools["is_current"] = *filters.IsCurrent
		} else if !filters.ShowDeleted && !opts.ShowDeleted {
			bq.Bools["is_current"] = true
		}
	}

	if filters.CreatedBeforeMS > 0 {
		cutoff := filters.CreatedBeforeMS + 1 // RangeClause.Lt is exclusive; the filter semantics are <=
		bq.DateRangeField = dateField
		bq.DateRange = &backend.RangeClause{Lt: &cutoff}
	}

	res, err := e.be.Search(ctx, index, bq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "search", err)
	}

	excludeRE := compileExcludeGlob(filters.ExcludePaths)

	out := &Response{}
	for _, hit := range res.Hits {
		result, ok := assembleResult(hit, queryText, opts)
		if !ok {
			continue
		}
		if excludeRE != nil && excludeRE.MatchString(result.FilePath) {
			continue
		}
		out.Results = append(out.Results, result)
	}
	out.Total = len(out.Results)
	return out, nil
}

func assembleResult(hit backend.Hit, queryText string, opts Options) (Result, bool) {
	src := hit.Source
	filePath, _ := src["file_path"].(string)
	content, _ := src["content"].(string)

	matches := reconstructMatches(content, queryText, hit.Highlight, opts.ContextLines, opts.Highlight)

	return Result{
		FilePath: filePath,
		Score:    hit.Score,
		Language: stringField(src, "language"),
		Matches:  matches,
		Metadata: ResultMetadata{
			SizeBytes: int64Field(src, "size_bytes"),
			Functions: stringSliceField(src, "defined_functions"),
			Classes:   stringSliceField(src, "defined_classes"),
			Imports:   stringSliceField(src, "imports"),
		},
	}, true
}

func stringField(src backend.Document, key string) string {
	s, _ := src[key].(string)
	return s
}

func int64Field(src backend.Document, key string) int64 {
	switch v := src[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func stringSliceField(src backend.Document, key string) []string {
	switch v := src[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
