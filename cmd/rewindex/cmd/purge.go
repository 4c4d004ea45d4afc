package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPurgeIgnoredCmd() *cobra.Command {
	var dryRun bool
	c := &cobra.Command{
		Use:   "purge-ignored",
		Short: "Remove records for paths that now match an ignore rule",
		Long: `Reclaims file and version records for paths that no longer pass the
project's path-matching rules, e.g. after adding a new exclude pattern.
Use --dry-run to see what would be purged without deleting anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			counts, err := proj.PurgeIgnored(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			verb := "purged"
			if dryRun {
				verb = "would purge"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d scanned paths\n", verb, counts.Purged, counts.Scanned)
			return nil
		},
	}
	c.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be purged without deleting")
	return c
}
