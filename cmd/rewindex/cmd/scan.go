package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a full scan of the project tree",
		Long: `Walks the project tree, indexes every eligible file, and reconciles
deletes and renames against the files that were current before the scan
began.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			counts, err := proj.FullScan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "added: %d  updated: %d  unchanged: %d  deleted: %d  renamed: %d  errors: %d\n",
				counts.Added, counts.Updated, counts.Skipped, counts.Deleted, counts.Renamed, counts.Errors)
			return nil
		},
	}
}
