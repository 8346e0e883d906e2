package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/search"
	"github.com/spf13/cobra"
)

type SearchResult struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func RunSearch(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	expand, err := OptionalBoolFlag(cmd, "expand", false)
	if err != nil {
		return err
	}
	limit, err := OptionalIntFlag(cmd, "limit", 10)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query must not be empty")
	}

	progress := newFragmentProgress(cmd.ErrOrStderr(), "expand", asJSON)
	s, err := openSite(cmd, progress.Wrap)
	if err != nil {
		return err
	}
	tree, err := s.site.NewTree()
	if err != nil {
		return err
	}
	if expand {
		if err := s.site.ExpandAll(cmd.Context(), tree); err != nil {
			s.log.WithError(err).Warn("some fragments could not be loaded")
		}
		progress.Done()
	}

	results := search.Search(search.Build(tree), query, limit)
	if results == nil {
		results = []search.Result{}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.WriteJSON(out, SearchResult{Query: query, Results: results})
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "no matches for %q\n", query)
		return nil
	}
	for _, r := range results {
		line := r.Title
		if r.Link != "" {
			line += " " + r.Link
		}
		if len(r.Breadcrumb) > 0 {
			line += " (" + strings.Join(r.Breadcrumb, " > ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
