package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/render"
	"github.com/spf13/cobra"
)

type ResolveResult struct {
	Page string         `json:"page"`
	Path []render.Entry `json:"path"`
}

func RunResolve(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	page := strings.TrimSpace(args[0])

	s, err := openSite(cmd, nil)
	if err != nil {
		return err
	}
	tree, err := s.site.NewTree()
	if err != nil {
		return err
	}
	path, err := s.site.Sync(cmd.Context(), tree, page)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", page, err)
	}

	out := cmd.OutOrStdout()
	result := ResolveResult{Page: page, Path: render.Entries(path)}
	if asJSON {
		return fileutil.WriteJSON(out, result)
	}
	if len(result.Path) == 0 {
		fmt.Fprintf(out, "%s: not in navigation\n", page)
		return nil
	}
	for _, entry := range result.Path {
		line := strings.Repeat("  ", entry.Depth) + entry.Title
		if entry.Link != "" {
			line += " " + entry.Link
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
