package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend reachability, document counts, and watcher state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			st := proj.Status(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project:  %s (%s)\n", proj.ProjectID(), proj.Root())
			fmt.Fprintf(out, "backend:  reachable=%t\n", st.BackendReachable)
			fmt.Fprintf(out, "files:    %d\n", st.FilesCount)
			fmt.Fprintf(out, "versions: %d\n", st.VersionsCount)
			if st.WatcherRunning {
				fmt.Fprintf(out, "watcher:  running (%s, %s)\n", st.WatcherType, st.WatcherState)
			} else {
				fmt.Fprintln(out, "watcher:  not running")
			}
			return nil
		},
	}
}
