package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize rewindex for the current project",
		Long: `Derives a stable project identity, writes .rewindex.yaml if it does
not already exist, and provisions the search indices. Safe to run again;
an already-initialized project is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			out := printer(cmd)
			fmt.Fprintf(cmd.OutOrStdout(), "%s project %s\n", out.Green("initialized"), out.Bold(proj.ProjectID()))
			fmt.Fprintf(cmd.OutOrStdout(), "  root: %s\n", proj.Root())
			return nil
		},
	}
}
