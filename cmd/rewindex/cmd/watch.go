package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/detect"
)

func newWatchCmd() *cobra.Command {
	var skipInitialScan bool

	c := &cobra.Command{
		Use:   "watch",
		Short: "Watch the project tree and index changes as they happen",
		Long: `Runs a full scan (unless --no-initial-scan is given), then starts the
filesystem watcher and indexes batches of changes as they are debounced.
Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipInitialScan {
				counts, err := proj.FullScan(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "initial scan: added %d, updated %d, unchanged %d\n",
					counts.Added, counts.Updated, counts.Skipped)
			}

			out := cmd.OutOrStdout()
			handle, err := proj.StartWatch(ctx, func(outcomes []detect.FileOutcome) {
				for _, o := range outcomes {
					if o.Err != nil {
						fmt.Fprintf(out, "error  %s: %v\n", o.RelativePath, o.Err)
						continue
					}
					if o.Skipped {
						continue
					}
					fmt.Fprintf(out, "%-9s %s\n", o.Outcome, o.RelativePath)
				}
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "watching %s (press ctrl-c to stop)\n", proj.Root())
			<-ctx.Done()
			return handle.Stop()
		},
	}

	c.Flags().BoolVar(&skipInitialScan, "no-initial-scan", false, "skip the full scan before starting the watcher")
	return c
}
