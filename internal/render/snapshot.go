package render

import (
	"io"

	"github.com/morozRed/doxnav/internal/navtree"
	"gopkg.in/yaml.v3"
)

// Entry is one visited node of a traversal, flattened for serialization.
type Entry struct {
	Title    string `json:"title" yaml:"title"`
	Link     string `json:"link,omitempty" yaml:"link,omitempty"`
	Depth    int    `json:"depth" yaml:"depth"`
	Path     []int  `json:"path" yaml:"path,flow"`
	Sentinel string `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
	Active   bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

// Snapshot flattens the loaded tree in pre-order. Nodes on active are marked.
func Snapshot(tree *navtree.Tree, active []*navtree.Node) []Entry {
	onPath := activeSet(active)
	out := make([]Entry, 0)
	for n, depth := range tree.Traverse() {
		sentinel, _ := n.Sentinel()
		out = append(out, Entry{
			Title:    n.Title,
			Link:     n.Link,
			Depth:    depth,
			Path:     navtree.IndexPath(n),
			Sentinel: sentinel,
			Active:   onPath[n],
		})
	}
	return out
}

// Entries converts a node path into entries.
func Entries(nodes []*navtree.Node) []Entry {
	out := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		sentinel, _ := n.Sentinel()
		out = append(out, Entry{
			Title:    n.Title,
			Link:     n.Link,
			Depth:    n.Depth(),
			Path:     navtree.IndexPath(n),
			Sentinel: sentinel,
		})
	}
	return out
}

func YAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

func activeSet(active []*navtree.Node) map[*navtree.Node]bool {
	out := make(map[*navtree.Node]bool, len(active))
	for _, n := range active {
		out[n] = true
	}
	return out
}
