package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/apperrors"
	"github.com/ryrobes/rewindex/internal/core"
	"github.com/ryrobes/rewindex/internal/query"
)

// resolveFuzzyPath returns relPath unchanged if a current record exists for
// it verbatim; otherwise it searches current files by the given text and
// disambiguates to the single best match, mirroring the original CLI's
// "view" fallback when an exact path lookup misses.
func resolveFuzzyPath(cmd *cobra.Command, proj *core.Project, relPath string) (string, error) {
	ctx := cmd.Context()
	if rec, err := proj.FileCurrent(ctx, relPath); err == nil && rec != nil {
		return relPath, nil
	}

	current := true
	resp, err := proj.Search(ctx, relPath, query.Filters{IsCurrent: &current}, query.Options{Limit: 1, Highlight: false})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", apperrors.NotFound(fmt.Sprintf("file not found: %s", relPath))
	}
	return resp.Results[0].FilePath, nil
}
