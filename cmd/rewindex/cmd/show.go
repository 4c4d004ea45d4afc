package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var version string
	var asOf string
	var jsonOut bool

	c := &cobra.Command{
		Use:   "show <path>",
		Short: "Show current or historical file content",
		Long: `Prints a file's content. With no flags, prints the current content.
--version fetches an exact revision by content hash; --as-of resolves to
the version active at that point in time. The path is matched fuzzily by
filename when it doesn't exist verbatim.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()
			ctx := cmd.Context()

			if version != "" {
				v, err := proj.Version(ctx, version)
				if err != nil {
					return err
				}
				if v == nil {
					return fmt.Errorf("no version found for hash %s", version)
				}
				return printShow(cmd, jsonOut, v.FilePath, v.Content, v.Language, &v.ContentHash)
			}

			path, err := resolveFuzzyPath(cmd, proj, args[0])
			if err != nil {
				return err
			}

			if asOf != "" {
				ts, err := parseAsOf(asOf)
				if err != nil {
					return err
				}
				v, err := proj.FileAt(ctx, path, ts)
				if err != nil {
					return err
				}
				if v == nil {
					return fmt.Errorf("no version of %s at or before %s", path, asOf)
				}
				return printShow(cmd, jsonOut, v.FilePath, v.Content, v.Language, &v.ContentHash)
			}

			rec, err := proj.FileCurrent(ctx, path)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no current record for %s", path)
			}
			return printShow(cmd, jsonOut, rec.RelativePath, rec.Content, rec.Language, nil)
		},
	}

	c.Flags().StringVar(&version, "version", "", "content hash of an exact version to show")
	c.Flags().StringVar(&asOf, "as-of", "", "show the version active at this point in time")
	c.Flags().BoolVar(&jsonOut, "json", false, "output as JSON with metadata")
	return c
}

func printShow(cmd *cobra.Command, jsonOut bool, path, content, language string, hash *string) error {
	out := cmd.OutOrStdout()
	if !jsonOut {
		fmt.Fprintln(out, content)
		return nil
	}
	doc := map[string]any{
		"file_path": path,
		"content":   content,
		"language":  language,
	}
	if hash != nil {
		doc["content_hash"] = *hash
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
