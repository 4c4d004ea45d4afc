package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/query"
)

type searchFlags struct {
	limit        int
	context      int
	lang         string
	path         string
	ext          string
	allVersions  bool
	asOf         string
	includeDel   bool
	highlight    bool
	partial      bool
	fuzzy        bool
	jsonOut      bool
	oneline      bool
	filesOnly    bool
	excludePaths string
}

func newSearchCmd() *cobra.Command {
	var f searchFlags

	c := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the indexed codebase",
		Long: `Searches file content and names. By default searches current files
only; pass --all-versions or --as-of to search across history instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), f)
		},
	}

	c.Flags().IntVarP(&f.limit, "limit", "n", 20, "maximum number of results")
	c.Flags().IntVarP(&f.context, "context", "C", 3, "lines of context around each match")
	c.Flags().StringVarP(&f.lang, "lang", "l", "", "filter by language")
	c.Flags().StringVarP(&f.path, "path", "p", "", "filter by path glob")
	c.Flags().StringVarP(&f.ext, "ext", "e", "", "filter by file extension, e.g. .go")
	c.Flags().StringVar(&f.excludePaths, "exclude", "", "exclude results whose path matches this glob")
	c.Flags().BoolVar(&f.allVersions, "all-versions", false, "search every version, not just current files")
	c.Flags().StringVar(&f.asOf, "as-of", "", "search as of a point in time (\"10m\", \"2 hours\", \"3 days\", or ISO 8601)")
	c.Flags().BoolVar(&f.includeDel, "include-deleted", false, "include deleted files in current-file search")
	c.Flags().BoolVar(&f.highlight, "highlight", true, "highlight matched terms")
	c.Flags().BoolVar(&f.partial, "partial", false, "allow wildcard/prefix matching on path filters")
	c.Flags().BoolVar(&f.fuzzy, "fuzzy", false, "allow fuzzy (edit-distance) term matching")
	c.Flags().BoolVar(&f.jsonOut, "json", false, "output results as JSON")
	c.Flags().BoolVar(&f.oneline, "oneline", false, "one result per line")
	c.Flags().BoolVar(&f.filesOnly, "files-only", false, "print matching file paths only")

	return c
}

func runSearch(cmd *cobra.Command, queryText string, f searchFlags) error {
	proj, err := openProject()
	if err != nil {
		return err
	}
	defer proj.Close()

	var asOfMS int64
	if f.asOf != "" {
		asOfMS, err = parseAsOf(f.asOf)
		if err != nil {
			return err
		}
	}
	useVersions := f.allVersions || f.asOf != ""

	filters := query.Filters{
		ExcludePaths:    f.excludePaths,
		CreatedBeforeMS: asOfMS,
	}
	if f.lang != "" {
		filters.Language = []string{f.lang}
	}
	if f.path != "" {
		filters.PathPattern = f.path
	}
	if f.ext != "" {
		filters.FileTypes = []string{f.ext}
	}
	if f.includeDel || useVersions {
		filters.ShowDeleted = f.includeDel
		if f.allVersions {
			allVersions := false
			filters.IsCurrent = &allVersions
		}
	} else {
		current := true
		filters.IsCurrent = &current
	}

	opts := query.Options{
		Limit:        f.limit,
		ContextLines: f.context,
		Highlight:    f.highlight,
		Partial:      f.partial,
		ShowDeleted:  f.includeDel,
	}
	if f.fuzzy {
		opts.Fuzziness = "AUTO"
	}

	resp, err := proj.Search(cmd.Context(), queryText, filters, opts)
	if err != nil {
		return err
	}

	return renderSearchResponse(cmd, queryText, resp, f)
}

func renderSearchResponse(cmd *cobra.Command, queryText string, resp *query.Response, f searchFlags) error {
	out := cmd.OutOrStdout()

	if f.filesOnly {
		for _, r := range resp.Results {
			fmt.Fprintln(out, r.FilePath)
		}
		return nil
	}

	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "no results for %q\n", queryText)
		return nil
	}

	if f.oneline {
		for _, r := range resp.Results {
			if len(r.Matches) == 0 {
				fmt.Fprintln(out, r.FilePath)
				continue
			}
			m := r.Matches[0]
			ln := ""
			if m.Line > 0 {
				ln = fmt.Sprintf(":%d", m.Line)
			}
			snippet := strings.ReplaceAll(m.Highlight, "\n", " ")
			if len(snippet) > 160 {
				snippet = snippet[:160]
			}
			fmt.Fprintf(out, "%s%s :: %s\n", r.FilePath, ln, snippet)
		}
		return nil
	}

	for _, r := range resp.Results {
		if len(r.Matches) == 0 {
			fmt.Fprintf(out, "\n==> %s\n", r.FilePath)
			continue
		}
		m := r.Matches[0]
		lnSuffix := ""
		if m.Line > 0 {
			lnSuffix = fmt.Sprintf(":%d", m.Line)
		}
		fmt.Fprintf(out, "\n==> %s%s\n", r.FilePath, lnSuffix)

		if m.Line == 0 {
			fmt.Fprintln(out, m.Highlight)
			continue
		}

		startLn := m.Line - len(m.Before)
		n := startLn
		for _, b := range m.Before {
			fmt.Fprintf(out, "     %5d | %s\n", n, b)
			n++
		}
		fmt.Fprintf(out, "%s %5d | %s\n", "▶", m.Line, m.Highlight)
		for _, a := range m.After {
			n++
			fmt.Fprintf(out, "     %5d | %s\n", n, a)
		}
	}
	return nil
}
