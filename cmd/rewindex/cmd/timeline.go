package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTimelineCmd() *cobra.Command {
	var paths []string
	var since string
	var until string

	c := &cobra.Command{
		Use:   "timeline",
		Short: "Show version activity over time as a bucketed histogram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			var startMS, endMS int64
			if since != "" {
				startMS, err = parseAsOf(since)
				if err != nil {
					return fmt.Errorf("parse --since: %w", err)
				}
			}
			if until != "" {
				endMS, err = parseAsOf(until)
				if err != nil {
					return fmt.Errorf("parse --until: %w", err)
				}
			} else {
				endMS = time.Now().UnixMilli()
			}

			points, err := proj.Timeline(cmd.Context(), paths, startMS, endMS)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(points) == 0 {
				fmt.Fprintln(out, "no version activity in range.")
				return nil
			}
			maxCount := 0
			for _, p := range points {
				if p.Count > maxCount {
					maxCount = p.Count
				}
			}
			const barWidth = 40
			for _, p := range points {
				t := time.UnixMilli(p.BucketStartMS).Format("2006-01-02 15:04")
				filled := 0
				if maxCount > 0 {
					filled = p.Count * barWidth / maxCount
				}
				bar := repeat("#", filled) + repeat(".", barWidth-filled)
				fmt.Fprintf(out, "%s  %s  %d\n", t, bar, p.Count)
			}
			return nil
		},
	}

	c.Flags().StringSliceVar(&paths, "path", nil, "restrict to these paths (repeatable)")
	c.Flags().StringVar(&since, "since", "", "start of the range (relative or ISO 8601)")
	c.Flags().StringVar(&until, "until", "", "end of the range (relative or ISO 8601, default now)")
	return c
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		b = append(b, s...)
	}
	return string(b)
}
