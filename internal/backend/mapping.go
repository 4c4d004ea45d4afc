package backend

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
)

// keywordFields are not analyzed; each value (or each element of an array
// value) becomes a single exact-match term.
var keywordFields = []string{
	"file_path", "language", "extension", "content_hash", "previous_hash",
	"project_id", "project_root", "git_commit", "git_branch", "git_author",
	"imports", "exports", "defined_functions", "defined_classes",
	"renamed_to", "renamed_from",
}

var booleanFields = []string{"is_current", "has_tests", "deleted"}
var dateFields = []string{"created_at", "last_modified", "indexed_at"}
var numericFields = []string{"size_bytes", "line_count"}

// codeAnalyzedFields use the code-aware analyzer at index and query time.
// file_name_text stands in for a boosted "file_name.text" sub-field; bleve
// field names can't contain a literal dot.
var codeAnalyzedFields = []string{"content", "file_name_text", "todos"}

// buildIndexMapping constructs the shared mapping used by both the
// current-files and versions indices: both declare the same analyzed
// content field, keyword fields, booleans, and dates.
func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer(CodeAnalyzerName, map[string]any{
		"type":      custom.Name,
		"tokenizer": CodeTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			CodeStopFilterName,
		},
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = CodeAnalyzerName

	doc := bleve.NewDocumentMapping()

	for _, f := range codeAnalyzedFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = CodeAnalyzerName
		fm.Store = true
		fm.IncludeTermVectors = true
		doc.AddFieldMappingsAt(f, fm)
	}

	for _, f := range keywordFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = "keyword"
		fm.Store = true
		doc.AddFieldMappingsAt(f, fm)
	}

	for _, f := range booleanFields {
		fm := bleve.NewBooleanFieldMapping()
		fm.Store = true
		doc.AddFieldMappingsAt(f, fm)
	}

	for _, f := range dateFields {
		fm := bleve.NewDateTimeFieldMapping()
		fm.Store = true
		doc.AddFieldMappingsAt(f, fm)
	}

	for _, f := range numericFields {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		doc.AddFieldMappingsAt(f, fm)
	}

	im.DefaultMapping = doc
	return im, nil
}
