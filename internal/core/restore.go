package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryrobes/rewindex/internal/apperrors"
)

// Restore implements restore(root, path, ts_ms?, output_path, overwrite):
// recreate a file's content as of ts_ms (or the current content when ts_ms
// is zero) and write it to outputPath, refusing to clobber an existing
// file unless overwrite is set, and refusing any outputPath that would
// escape the project root.
func (p *Project) Restore(ctx context.Context, relPath string, tsMS int64, outputPath string, overwrite bool) error {
	var content string
	if tsMS > 0 {
		v, err := p.FileAt(ctx, relPath, tsMS)
		if err != nil {
			return err
		}
		if v == nil {
			return apperrors.NotFound(fmt.Sprintf("no version of %s at or before the requested time", relPath))
		}
		content = v.Content
	} else {
		rec, err := p.FileCurrent(ctx, relPath)
		if err != nil {
			return err
		}
		if rec == nil {
			return apperrors.NotFound(fmt.Sprintf("no current record for %s", relPath))
		}
		content = rec.Content
	}

	if outputPath == "" {
		outputPath = filepath.Join(p.root, relPath)
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	rel, err := filepath.Rel(p.root, absOutput)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return apperrors.InvalidArgument("restore output path escapes the project root")
	}

	if !overwrite {
		if _, err := os.Stat(absOutput); err == nil {
			return apperrors.Conflict(fmt.Sprintf("%s already exists; pass overwrite to replace it", absOutput))
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat output path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(absOutput), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(absOutput, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write restored content: %w", err)
	}
	return nil
}
