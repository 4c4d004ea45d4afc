// Package versionstore implements the Version Store (C5): it sits on top
// of the Search Backend Abstraction (C4) and enforces the content-addressed
// file/version invariants from the data model.
package versionstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ryrobes/rewindex/internal/apperrors"
	"github.com/ryrobes/rewindex/internal/backend"
	"github.com/ryrobes/rewindex/internal/metadata"
)

// UpsertOutcome reports what upsert_file did.
type UpsertOutcome string

const (
	OutcomeAdded     UpsertOutcome = "added"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)

// Stat carries filesystem metadata captured at observation time.
type Stat struct {
	SizeBytes    int64
	LastModified time.Time
}

// FileRecord is the current-view record for one project-relative path.
type FileRecord struct {
	ProjectID    string
	RelativePath string
	ContentHash  string
	PreviousHash string
	IsCurrent    bool
	Deleted      bool
	DeletedAt    *time.Time
	RenamedFrom  string
	RenamedTo    string
	Language     string
	Extension    string
	FileName     string
	SizeBytes    int64
	LineCount    int
	LastModified time.Time
	IndexedAt    time.Time
	Content      string
	Metadata     metadata.Metadata
}

// VersionRecord is one historical snapshot, keyed globally by content hash.
type VersionRecord struct {
	FilePath     string
	ContentHash  string
	PreviousHash string
	CreatedAt    time.Time
	IsCurrent    bool
	Content      string
	Language     string
	ProjectID    string
}

// Store enforces the data model's invariants over a Backend.
type Store struct {
	be          backend.Backend
	filesIndex  string
	versionsIdx string
}

// New returns a Store writing to the given logical index names. Callers are
// responsible for having called CreateIndex on both before use.
func New(be backend.Backend, filesIndex, versionsIndex string) *Store {
	return &Store{be: be, filesIndex: filesIndex, versionsIdx: versionsIndex}
}

func fileDocID(projectID, relativePath string) string {
	return fmt.Sprintf("%s:%s", projectID, relativePath)
}

// HashContent returns the hex SHA-256 digest of the UTF-8 bytes of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func lineCount(content string) int {
	if content == "" {
		return 1
	}
	return strings.Count(content, "\n") + 1
}

// UpsertFile implements the upsert_file algorithm from §4.5: compute the
// content hash, compare against the prior record, and either no-op the
// indexed_at timestamp, or write a new file record, flip the prior version's
// is_current flag, and append a new version record.
func (s *Store) UpsertFile(ctx context.Context, projectID, relativePath, content string, stat Stat, language string, md metadata.Metadata) (UpsertOutcome, error) {
	h := HashContent(content)

	existing, found, err := s.getFileRecord(ctx, projectID, relativePath)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()

	if found && existing.ContentHash == h {
		existing.IndexedAt = now
		existing.LastModified = stat.LastModified
		if err := s.putFileRecord(ctx, existing); err != nil {
			return "", err
		}
		return OutcomeUnchanged, nil
	}

	var prevHash string
	if found {
		prevHash = existing.ContentHash
	}

	rec := FileRecord{
		ProjectID:    projectID,
		RelativePath: relativePath,
		ContentHash:  h,
		PreviousHash: prevHash,
		IsCurrent:    true,
		Language:     language,
		Extension:    extOf(relativePath),
		FileName:     baseOf(relativePath),
		SizeBytes:    stat.SizeBytes,
		LineCount:    lineCount(content),
		LastModified: stat.LastModified,
		IndexedAt:    now,
		Content:      content,
		Metadata:     md,
	}
	if err := s.putFileRecord(ctx, rec); err != nil {
		return "", err
	}

	if prevHash != "" {
		if err := s.flipVersionCurrent(ctx, relativePath, prevHash, false); err != nil {
			return "", err
		}
	}

	if err := s.appendVersion(ctx, VersionRecord{
		FilePath:     relativePath,
		ContentHash:  h,
		PreviousHash: prevHash,
		CreatedAt:    now,
		IsCurrent:    true,
		Content:      content,
		Language:     language,
		ProjectID:    projectID,
	}); err != nil {
		return "", err
	}

	if prevHash == "" {
		return OutcomeAdded, nil
	}
	return OutcomeUpdated, nil
}

// MarkDeleted flips is_current false and records the deletion time on the
// file record. Version records are never removed (invariant 4).
func (s *Store) MarkDeleted(ctx context.Context, projectID, relativePath string, now time.Time) error {
	rec, found, err := s.getFileRecord(ctx, projectID, relativePath)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFound(fmt.Sprintf("file record not found: %s", relativePath))
	}

	rec.IsCurrent = false
	rec.Deleted = true
	t := now.UTC()
	rec.DeletedAt = &t

	if err := s.putFileRecord(ctx, rec); err != nil {
		return err
	}
	return s.flipVersionCurrent(ctx, relativePath, rec.ContentHash, false)
}

// MarkRenamed links the old and new file records bidirectionally. It does
// not itself delete or create records; callers (C6 reconciliation) drive
// the delete of oldPath and upsert of newPath.
func (s *Store) MarkRenamed(ctx context.Context, projectID, oldPath, newPath string) error {
	oldRec, found, err := s.getFileRecord(ctx, projectID, oldPath)
	if err != nil {
		return err
	}
	if found {
		oldRec.RenamedTo = newPath
		if err := s.putFileRecord(ctx, oldRec); err != nil {
			return err
		}
	}

	newRec, found, err := s.getFileRecord(ctx, projectID, newPath)
	if err != nil {
		return err
	}
	if found {
		newRec.RenamedFrom = oldPath
		if err := s.putFileRecord(ctx, newRec); err != nil {
			return err
		}
	}
	return nil
}

// Current returns the current file record for a path, if any.
func (s *Store) Current(ctx context.Context, projectID, relativePath string) (*FileRecord, error) {
	rec, found, err := s.getFileRecord(ctx, projectID, relativePath)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// VersionByHash looks up a version record by its global content hash.
func (s *Store) VersionByHash(ctx context.Context, contentHash string) (*VersionRecord, error) {
	doc, found, err := s.be.Get(ctx, s.versionsIdx, contentHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "get version by hash", err)
	}
	if !found {
		return nil, nil
	}
	rec := versionFromDoc(doc)
	return &rec, nil
}

// History returns up to limit version records for a path, newest-first.
func (s *Store) History(ctx context.Context, projectID, relativePath string, limit int) ([]VersionRecord, error) {
	size := limit
	if size <= 0 {
		size = 10000
	}
	res, err := s.be.Search(ctx, s.versionsIdx, backend.Query{
		Terms: map[string][]string{"file_path": {relativePath}, "project_id": {projectID}},
		Size:  size,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "history search", err)
	}

	versions := make([]VersionRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		versions = append(versions, versionFromDoc(hit.Source))
	}
	sortVersionsNewestFirst(versions)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions, nil
}

// At returns the version record with the latest created_at <= tsMs, or nil.
func (s *Store) At(ctx context.Context, projectID, relativePath string, tsMS int64) (*VersionRecord, error) {
	versions, err := s.History(ctx, projectID, relativePath, 0)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.CreatedAt.UnixMilli() <= tsMS {
			return &v, nil
		}
	}
	return nil, nil
}

// CurrentFiles returns every current-view file record for projectID,
// scrolling through the files index a batch at a time. Used to build the
// before-scan snapshot FullScan reconciles against, and to enumerate files
// for files_at/purge_ignored.
func (s *Store) CurrentFiles(ctx context.Context, projectID string) ([]FileRecord, error) {
	const batchSize = 500
	q := backend.Query{
		Terms: map[string][]string{"project_id": {projectID}},
		Size:  batchSize,
	}

	cursorID, page, err := s.be.Scroll(ctx, s.filesIndex, q, batchSize, 30*time.Second)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "scroll current files", err)
	}

	var records []FileRecord
	for _, hit := range page.Hits {
		records = append(records, fileFromDoc(hit.Source))
	}
	for {
		next, done, err := s.be.ScrollNext(ctx, cursorID)
		if err != nil {
			return records, apperrors.Wrap(apperrors.KindBackendReportedError, "scroll next current files", err)
		}
		for _, hit := range next.Hits {
			records = append(records, fileFromDoc(hit.Source))
		}
		if done {
			break
		}
	}
	return records, nil
}

// PurgePath removes a path's file record and all its version records
// entirely. Unlike MarkDeleted, this erases history; it is used only by
// purge_ignored to reclaim paths that newly match an ignore rule.
func (s *Store) PurgePath(ctx context.Context, projectID, relativePath string) error {
	if _, err := s.be.DeleteByQuery(ctx, s.filesIndex, backend.Query{
		Terms: map[string][]string{"project_id": {projectID}, "file_path": {relativePath}},
	}); err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "purge file record", err)
	}
	if _, err := s.be.DeleteByQuery(ctx, s.versionsIdx, backend.Query{
		Terms: map[string][]string{"project_id": {projectID}, "file_path": {relativePath}},
	}); err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "purge version records", err)
	}
	return nil
}

func (s *Store) getFileRecord(ctx context.Context, projectID, relativePath string) (FileRecord, bool, error) {
	doc, found, err := s.be.Get(ctx, s.filesIndex, fileDocID(projectID, relativePath))
	if err != nil {
		return FileRecord{}, false, apperrors.Wrap(apperrors.KindBackendReportedError, "get file record", err)
	}
	if !found {
		return FileRecord{}, false, nil
	}
	return fileFromDoc(doc), true, nil
}

func (s *Store) putFileRecord(ctx context.Context, rec FileRecord) error {
	if err := s.be.Put(ctx, s.filesIndex, fileDocID(rec.ProjectID, rec.RelativePath), fileToDoc(rec)); err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "put file record", err)
	}
	return nil
}

func (s *Store) appendVersion(ctx context.Context, v VersionRecord) error {
	if err := s.be.Put(ctx, s.versionsIdx, v.ContentHash, versionToDoc(v)); err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "append version", err)
	}
	return nil
}

// flipVersionCurrent sets is_current on the version record identified by
// contentHash when it matches filePath; callers use this to demote the
// prior current version as a new one is appended.
func (s *Store) flipVersionCurrent(ctx context.Context, filePath, contentHash string, isCurrent bool) error {
	if contentHash == "" {
		return nil
	}
	doc, found, err := s.be.Get(ctx, s.versionsIdx, contentHash)
	if err != nil {
		return apperrors.Wrap(apperrors.KindBackendReportedError, "get version for flip", err)
	}
	if !found {
		return nil
	}
	v := versionFromDoc(doc)
	if v.FilePath != filePath {
		return nil
	}
	v.IsCurrent = isCurrent
	return s.appendVersion(ctx, v)
}

// Refresh makes recent writes to both indices visible to subsequent reads.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.be.Refresh(ctx, s.filesIndex); err != nil {
		return err
	}
	return s.be.Refresh(ctx, s.versionsIdx)
}

func extOf(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[i:]
}

func baseOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	return path[i+1:]
}
