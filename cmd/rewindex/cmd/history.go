package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history <path>",
		Short: "Show version history for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			path, err := resolveFuzzyPath(cmd, proj, args[0])
			if err != nil {
				return err
			}

			versions, err := proj.FileHistory(cmd.Context(), path, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintln(out, "no history found.")
				return nil
			}
			for _, v := range versions {
				marker := " "
				if v.IsCurrent {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  %s  lang=%s\n", marker, v.ContentHash, v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), v.Language)
			}
			return nil
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of versions to show")
	return c
}
