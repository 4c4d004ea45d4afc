package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	var asOf string
	var outputPath string
	var overwrite bool

	c := &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a file's content to disk",
		Long: `Writes a file's content (current, or as of --as-of) to --output, or
back to its original location when --output is omitted. Refuses to
overwrite an existing file unless --overwrite is set, and refuses any
output path that would escape the project root.`,
		Args: cobra.ExactArgs(1),
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

			var ts int64
			if asOf != "" {
				ts, err = parseAsOf(asOf)
				if err != nil {
					return err
				}
			}

			if err := proj.Restore(cmd.Context(), path, ts, outputPath, overwrite); err != nil {
				return err
			}

			dest := outputPath
			if dest == "" {
				dest = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s -> %s\n", path, dest)
			return nil
		},
	}

	c.Flags().StringVar(&asOf, "as-of", "", "restore the version active at this point in time (default: current)")
	c.Flags().StringVar(&outputPath, "output", "", "output path (default: overwrite the original location)")
	c.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing file at the output path")
	return c
}
