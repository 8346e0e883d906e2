package render

import (
	"io"
	"strings"

	"github.com/morozRed/doxnav/internal/navtree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SyncMessages is the copy shown on the panel synchronisation toggle.
type SyncMessages struct {
	On  string
	Off string
}

// HTML writes the loaded tree as a nested list sidebar. Nodes on active get
// the "expanded" class and the last one "selected"; deferred nodes carry the
// fragment key in data-sentinel so a client script can fetch them.
func HTML(w io.Writer, tree *navtree.Tree, active []*navtree.Node, msgs SyncMessages) error {
	return html.Render(w, Sidebar(tree, active, msgs))
}

// Sidebar builds the sidebar element tree.
func Sidebar(tree *navtree.Tree, active []*navtree.Node, msgs SyncMessages) *html.Node {
	nav := element(atom.Nav, "id", "side-nav", "class", "navtree")

	if msgs.On != "" || msgs.Off != "" {
		sync := element(atom.Div, "id", "nav-sync", "class", "sync")
		toggle := element(atom.A, "href", "#", "title", msgs.On, "data-sync-on", msgs.On, "data-sync-off", msgs.Off)
		sync.AppendChild(toggle)
		nav.AppendChild(sync)
	}

	onPath := activeSet(active)
	var selected *navtree.Node
	if len(active) > 0 {
		selected = active[len(active)-1]
	}

	list := element(atom.Ul)
	list.AppendChild(listItem(tree.Root(), onPath, selected))
	nav.AppendChild(list)
	return nav
}

func listItem(n *navtree.Node, onPath map[*navtree.Node]bool, selected *navtree.Node) *html.Node {
	var classes []string
	if onPath[n] {
		classes = append(classes, "expanded")
	}
	if n == selected {
		classes = append(classes, "selected")
	}

	li := element(atom.Li)
	sentinel, deferred := n.Sentinel()
	if deferred {
		classes = append(classes, "deferred")
		li.Attr = append(li.Attr, html.Attribute{Key: "data-sentinel", Val: sentinel})
	}
	if len(classes) > 0 {
		li.Attr = append(li.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}

	var label *html.Node
	if n.Link != "" {
		label = element(atom.A, "href", n.Link)
	} else {
		label = element(atom.Span, "class", "label")
	}
	label.AppendChild(&html.Node{Type: html.TextNode, Data: n.Title})
	li.AppendChild(label)

	if kids := n.Children(); len(kids) > 0 {
		ul := element(atom.Ul)
		for _, child := range kids {
			ul.AppendChild(listItem(child, onPath, selected))
		}
		li.AppendChild(ul)
	}
	return li
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
