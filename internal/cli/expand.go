package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/fragment"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/morozRed/doxnav/internal/render"
	"github.com/spf13/cobra"
)

type ExpandResult struct {
	Node     render.Entry   `json:"node"`
	Children []render.Entry `json:"children"`
}

func RunExpand(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(args[0])

	s, err := openSite(cmd, nil)
	if err != nil {
		return err
	}
	tree, err := s.site.NewTree()
	if err != nil {
		return err
	}

	node := findDeferred(tree, target)
	if node == nil && !fragment.ValidSentinel(target) {
		// Links may sit inside fragments that are not loaded yet.
		if _, err := s.site.Sync(cmd.Context(), tree, target); err != nil {
			return fmt.Errorf("failed to reach %s: %w", target, err)
		}
		node = findDeferred(tree, target)
	}
	if node == nil {
		return fmt.Errorf("no collapsed node matches %q", target)
	}

	if _, err := tree.Expand(cmd.Context(), node, s.site.Loader()); err != nil {
		return err
	}

	descendants := subtree(node)
	out := cmd.OutOrStdout()
	if asJSON {
		entries := render.Entries(append([]*navtree.Node{node}, descendants...))
		return fileutil.WriteJSON(out, ExpandResult{Node: entries[0], Children: entries[1:]})
	}

	fmt.Fprintf(out, "%s (%d nodes)\n", node.Title, len(descendants))
	for _, n := range descendants {
		line := strings.Repeat("  ", n.Depth()-node.Depth()) + n.Title
		if n.Link != "" {
			line += " " + n.Link
		}
		if sentinel, ok := n.Sentinel(); ok {
			line += " [+" + sentinel + "]"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// findDeferred matches a collapsed node by sentinel first, then by link.
func findDeferred(tree *navtree.Tree, target string) *navtree.Node {
	if n := tree.Find(func(n *navtree.Node) bool {
		sentinel, ok := n.Sentinel()
		return ok && sentinel == target
	}); n != nil {
		return n
	}
	return tree.Find(func(n *navtree.Node) bool {
		return n.IsDeferred() && n.Link == target
	})
}

// subtree lists the loaded descendants of n in pre-order.
func subtree(n *navtree.Node) []*navtree.Node {
	var out []*navtree.Node
	for _, child := range n.Children() {
		out = append(out, child)
		out = append(out, subtree(child)...)
	}
	return out
}
