// Package metadata implements the Metadata Extractor (C3): lightweight,
// pure, regex-based extraction of imports, definitions, and TODOs from
// source content. Extraction never fails; unrecognized languages fall back
// to TODO scanning only.
package metadata

import (
	"regexp"
	"strings"
)

// Metadata is the extracted summary of a file's content.
type Metadata struct {
	Imports          []string `json:"imports,omitempty"`
	DefinedFunctions []string `json:"defined_functions,omitempty"`
	DefinedClasses   []string `json:"defined_classes,omitempty"`
	Exports          []string `json:"exports,omitempty"`
	Todos            []string `json:"todos,omitempty"`
	HasTests         bool     `json:"has_tests"`
}

var todoPattern = regexp.MustCompile(`(?i)\b(?:TODO|FIXME|HACK)\b[\s:.-]*(.*)`)

var (
	pyImport   = regexp.MustCompile(`(?m)^(?:from|import)\s+([\w.]+)`)
	pyFunc     = regexp.MustCompile(`(?m)^def\s+(\w+)`)
	pyClass    = regexp.MustCompile(`(?m)^class\s+(\w+)`)
	pyTestFunc = regexp.MustCompile(`(?m)^def\s+test_`)

	jsImport     = regexp.MustCompile(`(?:import\s*\(\s*|import\s+(?:[^"';]*?\s+from\s+)?|require\s*\(\s*)["']([^"']+)`)
	jsFuncNamed  = regexp.MustCompile(`function\s+(\w+)`)
	jsFuncArrow  = regexp.MustCompile(`const\s+(\w+)\s*=.*=>`)
	jsClass      = regexp.MustCompile(`class\s+(\w+)`)
	jsExport     = regexp.MustCompile(`export\s+(?:default\s+)?(?:function|class|const)\s+(\w+)`)

	goImport = regexp.MustCompile(`import\s+"([^"]+)"`)
	goFunc   = regexp.MustCompile(`(?m)^func\s+(?:\(\w+\s+\*?\w+\)\s+)?(\w+)`)
	goStruct = regexp.MustCompile(`(?m)^type\s+(\w+)\s+struct`)
)

// Extract derives Metadata from file content for the given language.
// Unknown languages yield only TODOs and the has_tests heuristic.
func Extract(content string, language string) Metadata {
	var m Metadata

	switch language {
	case "python":
		m.Imports = findAll(pyImport, content, 1)
		m.DefinedFunctions = findAll(pyFunc, content, 1)
		m.DefinedClasses = findAll(pyClass, content, 1)
		m.HasTests = pyTestFunc.MatchString(content)
	case "javascript", "typescript":
		m.Imports = findAll(jsImport, content, 1)
		m.DefinedFunctions = dedupeNonEmpty(append(
			findAll(jsFuncNamed, content, 1),
			findAll(jsFuncArrow, content, 1)...,
		))
		m.DefinedClasses = findAll(jsClass, content, 1)
		m.Exports = findAll(jsExport, content, 1)
	case "go":
		m.Imports = findAll(goImport, content, 1)
		m.DefinedFunctions = findAll(goFunc, content, 1)
		m.DefinedClasses = findAll(goStruct, content, 1)
	}

	m.Todos = extractTodos(content)

	lower := strings.ToLower(content)
	m.HasTests = m.HasTests || strings.Contains(lower, "test") || strings.Contains(lower, "spec")

	return m
}

func extractTodos(content string) []string {
	var todos []string
	for _, match := range todoPattern.FindAllStringSubmatch(content, -1) {
		item := strings.TrimSpace(match[1])
		if item != "" {
			todos = append(todos, item)
		}
	}
	return todos
}

func findAll(re *regexp.Regexp, content string, group int) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[group])
	}
	return out
}

func dedupeNonEmpty(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
