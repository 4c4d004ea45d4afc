package versionstore

import (
	"sort"
	"time"

	"github.com/ryrobes/rewindex/internal/backend"
	"github.com/ryrobes/rewindex/internal/metadata"
)

func fileToDoc(rec FileRecord) backend.Document {
	doc := backend.Document{
		"project_id":     rec.ProjectID,
		"file_path":      rec.RelativePath,
		"content_hash":   rec.ContentHash,
		"previous_hash":  rec.PreviousHash,
		"is_current":     rec.IsCurrent,
		"deleted":        rec.Deleted,
		"renamed_from":   rec.RenamedFrom,
		"renamed_to":     rec.RenamedTo,
		"language":       rec.Language,
		"extension":      rec.Extension,
		"file_name":      rec.FileName,
		"file_name_text": rec.FileName,
		"size_bytes":     rec.SizeBytes,
		"line_count":     rec.LineCount,
		"last_modified":  rec.LastModified,
		"indexed_at":     rec.IndexedAt,
		"content":        rec.Content,
		"imports":        rec.Metadata.Imports,
		"defined_functions": rec.Metadata.DefinedFunctions,
		"defined_classes":   rec.Metadata.DefinedClasses,
		"exports":           rec.Metadata.Exports,
		"todos":             joinTodos(rec.Metadata.Todos),
		"has_tests":         rec.Metadata.HasTests,
	}
	if rec.DeletedAt != nil {
		doc["deleted_at"] = *rec.DeletedAt
	}
	return doc
}

func fileFromDoc(doc backend.Document) FileRecord {
	rec := FileRecord{
		ProjectID:    asString(doc["project_id"]),
		RelativePath: asString(doc["file_path"]),
		ContentHash:  asString(doc["content_hash"]),
		PreviousHash: asString(doc["previous_hash"]),
		IsCurrent:    asBool(doc["is_current"]),
		Deleted:      asBool(doc["deleted"]),
		RenamedFrom:  asString(doc["renamed_from"]),
		RenamedTo:    asString(doc["renamed_to"]),
		Language:     asString(doc["language"]),
		Extension:    asString(doc["extension"]),
		FileName:     asString(doc["file_name"]),
		SizeBytes:    asInt64(doc["size_bytes"]),
		LineCount:    int(asInt64(doc["line_count"])),
		LastModified: asTime(doc["last_modified"]),
		IndexedAt:    asTime(doc["indexed_at"]),
		Content:      asString(doc["content"]),
		Metadata: metadata.Metadata{
			Imports:          asStringSlice(doc["imports"]),
			DefinedFunctions: asStringSlice(doc["defined_functions"]),
			DefinedClasses:   asStringSlice(doc["defined_classes"]),
			Exports:          asStringSlice(doc["exports"]),
			Todos:            splitTodos(asString(doc["todos"])),
			HasTests:         asBool(doc["has_tests"]),
		},
	}
	if t, ok := doc["deleted_at"]; ok {
		dt := asTime(t)
		rec.DeletedAt = &dt
	}
	return rec
}

func versionToDoc(v VersionRecord) backend.Document {
	return backend.Document{
		"file_path":     v.FilePath,
		"content_hash":  v.ContentHash,
		"previous_hash": v.PreviousHash,
		"created_at":    v.CreatedAt,
		"is_current":    v.IsCurrent,
		"content":       v.Content,
		"language":      v.Language,
		"project_id":    v.ProjectID,
	}
}

func versionFromDoc(doc backend.Document) VersionRecord {
	return VersionRecord{
		FilePath:     asString(doc["file_path"]),
		ContentHash:  asString(doc["content_hash"]),
		PreviousHash: asString(doc["previous_hash"]),
		CreatedAt:    asTime(doc["created_at"]),
		IsCurrent:    asBool(doc["is_current"]),
		Content:      asString(doc["content"]),
		Language:     asString(doc["language"]),
		ProjectID:    asString(doc["project_id"]),
	}
}

func sortVersionsNewestFirst(versions []VersionRecord) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})
}

func joinTodos(todos []string) string {
	out := ""
	for i, t := range todos {
		if i > 0 {
			out += "\n"
		}
		out += t
	}
	return out
}

func splitTodos(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if s == "" {
			return nil
		}
		return []string{s}
	}
	return nil
}
