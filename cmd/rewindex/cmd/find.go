package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/query"
)

// newFindFunctionCmd, newFindClassCmd, and newFindTODOsCmd are thin
// wrappers over search with has_function/has_class filters and a
// TODO-only query, carried over from the original CLI's convenience
// subcommands.

func newFindFunctionCmd() *cobra.Command {
	var lang string
	c := &cobra.Command{
		Use:   "find-function <name>",
		Short: "Find files defining a function by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindBy(cmd, args[0], query.Filters{HasFunction: args[0], Language: langFilter(lang)})
		},
	}
	c.Flags().StringVarP(&lang, "lang", "l", "", "filter by language")
	return c
}

func newFindClassCmd() *cobra.Command {
	var lang string
	c := &cobra.Command{
		Use:   "find-class <name>",
		Short: "Find files defining a class by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindBy(cmd, args[0], query.Filters{HasClass: args[0], Language: langFilter(lang)})
		},
	}
	c.Flags().StringVarP(&lang, "lang", "l", "", "filter by language")
	return c
}

func newFindTODOsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find-todos",
		Short: "Find TODO comments across the codebase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindBy(cmd, "TODO", query.Filters{})
		},
	}
}

func langFilter(lang string) []string {
	if lang == "" {
		return nil
	}
	return []string{lang}
}

func runFindBy(cmd *cobra.Command, queryText string, filters query.Filters) error {
	proj, err := openProject()
	if err != nil {
		return err
	}
	defer proj.Close()

	current := true
	filters.IsCurrent = &current

	resp, err := proj.Search(cmd.Context(), queryText, filters, query.DefaultOptions())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range resp.Results {
		fmt.Fprintln(out, r.FilePath)
	}
	return nil
}
