package cli

import (
	"bytes"
	"fmt"

	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/morozRed/doxnav/internal/render"
	"github.com/spf13/cobra"
)

func RunExport(cmd *cobra.Command, args []string) error {
	page, err := OptionalStringFlag(cmd, "page")
	if err != nil {
		return err
	}

	s, err := openSite(cmd, nil)
	if err != nil {
		return err
	}
	tree, err := s.site.NewTree()
	if err != nil {
		return err
	}

	var active []*navtree.Node
	if page != "" {
		active, err = s.site.Sync(cmd.Context(), tree, page)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", page, err)
		}
	}

	var buf bytes.Buffer
	msgs := s.site.Messages()
	if err := render.HTML(&buf, tree, active, render.SyncMessages{On: msgs.SyncOn, Off: msgs.SyncOff}); err != nil {
		return err
	}
	buf.WriteString("\n")

	wrote, err := fileutil.WriteIfChanged(args[0], buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	if wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sidebar to %s\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", args[0])
	}
	return nil
}
