package cli

import (
	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/morozRed/doxnav/internal/render"
	"github.com/spf13/cobra"
)

func RunTree(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	expand, err := OptionalBoolFlag(cmd, "expand", false)
	if err != nil {
		return err
	}
	page, err := OptionalStringFlag(cmd, "page")
	if err != nil {
		return err
	}
	depth, err := OptionalIntFlag(cmd, "depth", 0)
	if err != nil {
		return err
	}

	progress := newFragmentProgress(cmd.ErrOrStderr(), "expand", format != FormatText)
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

	var active []*navtree.Node
	if page != "" {
		active, err = s.site.Sync(cmd.Context(), tree, page)
		if err != nil {
			s.log.WithError(err).WithField("page", page).Warn("page branch incomplete")
		}
		if len(active) == 0 {
			s.log.WithField("page", page).Warn("page not found in navigation")
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case FormatJSON:
		return fileutil.WriteJSON(out, render.Snapshot(tree, active))
	case FormatJSONL:
		return fileutil.WriteJSONL(out, render.Snapshot(tree, active))
	case FormatYAML:
		return render.YAML(out, render.Snapshot(tree, active))
	default:
		return render.Text(out, tree, render.TextOptions{
			Color:    colorEnabled(out),
			Active:   active,
			MaxDepth: depth,
		})
	}
}
