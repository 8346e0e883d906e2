// Package render paints a navigation tree as a terminal outline, an HTML
// sidebar, or a flat serializable snapshot.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/morozRed/doxnav/internal/navtree"
)

type TextOptions struct {
	// Color enables lipgloss styling. Callers decide based on the terminal.
	Color  bool
	Active []*navtree.Node
	// MaxDepth stops the outline below this depth; 0 means unlimited.
	MaxDepth int
}

type textStyles struct {
	enabled  bool
	title    lipgloss.Style
	active   lipgloss.Style
	link     lipgloss.Style
	deferred lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	if !color {
		return textStyles{}
	}
	return textStyles{
		enabled:  true,
		title:    lipgloss.NewStyle().Bold(true),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		link:     lipgloss.NewStyle().Faint(true),
		deferred: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true),
	}
}

func (s textStyles) paint(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Text writes an indented pre-order outline of the loaded tree.
func Text(w io.Writer, tree *navtree.Tree, opts TextOptions) error {
	styles := newTextStyles(opts.Color)
	onPath := activeSet(opts.Active)

	for n, depth := range tree.Traverse() {
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			continue
		}

		marker := "-"
		title := styles.paint(styles.title, n.Title)
		if onPath[n] {
			marker = ">"
			title = styles.paint(styles.active, n.Title)
		}

		var line strings.Builder
		line.WriteString(strings.Repeat("  ", depth))
		line.WriteString(marker)
		line.WriteString(" ")
		line.WriteString(title)
		if n.Link != "" {
			line.WriteString(" ")
			line.WriteString(styles.paint(styles.link, n.Link))
		}
		if sentinel, ok := n.Sentinel(); ok {
			line.WriteString(" ")
			line.WriteString(styles.paint(styles.deferred, "[+"+sentinel+"]"))
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}
