package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/query"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <hash1> <hash2>",
		Short: "Diff two revisions by content hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			segments, err := proj.Diff(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, seg := range segments {
				prefix := " "
				switch seg.Op {
				case query.DiffInsert:
					prefix = "+"
				case query.DiffDelete:
					prefix = "-"
				}
				for _, line := range splitLines(seg.Text) {
					fmt.Fprintf(out, "%s%s\n", prefix, line)
				}
			}
			return nil
		},
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
