package navtree

import "strings"

// Spec is the construction input for one navigation node.
// Sentinel and Children are mutually exclusive: a node either lists its
// children inline or names the fragment they are loaded from.
type Spec struct {
	Title    string `json:"title" yaml:"title"`
	Link     string `json:"link,omitempty" yaml:"link,omitempty"`
	Children []Spec `json:"children,omitempty" yaml:"children,omitempty"`
	Sentinel string `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
}

// Children is the tagged child list of a node: either inline nodes
// (possibly none) or a deferred fragment key.
type Children struct {
	nodes    []*Node
	sentinel string
}

// Inline returns a child list holding nodes in display order.
func Inline(nodes []*Node) Children {
	return Children{nodes: nodes}
}

// Deferred returns a child list whose contents live in the fragment
// keyed by sentinel.
func Deferred(sentinel string) Children {
	return Children{sentinel: sentinel}
}

// IsDeferred reports whether the children still have to be loaded.
func (c Children) IsDeferred() bool {
	return c.sentinel != ""
}

// Sentinel returns the fragment key of a deferred child list.
func (c Children) Sentinel() string {
	return c.sentinel
}

// Nodes returns the inline children. It is nil for a deferred list.
func (c Children) Nodes() []*Node {
	return c.nodes
}

// Node is one entry of the navigation sidebar.
type Node struct {
	Title string
	Link  string

	children Children
	origin   string
	parent   *Node
	depth    int
	tree     *Tree
}

// Children returns a snapshot of the node's inline children.
func (n *Node) Children() []*Node {
	if n.tree != nil {
		n.tree.mu.RLock()
		defer n.tree.mu.RUnlock()
	}
	return append([]*Node(nil), n.children.nodes...)
}

// Sentinel returns the fragment key while the node is still deferred.
func (n *Node) Sentinel() (string, bool) {
	if n.tree != nil {
		n.tree.mu.RLock()
		defer n.tree.mu.RUnlock()
	}
	return n.children.sentinel, n.children.IsDeferred()
}

// IsDeferred reports whether the node's children have not been loaded yet.
func (n *Node) IsDeferred() bool {
	_, ok := n.Sentinel()
	return ok
}

// Origin returns the sentinel the node was created with, even after the
// fragment has been merged. It is empty for nodes that never were deferred.
func (n *Node) Origin() string {
	return n.origin
}

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Depth is 0 for the root.
func (n *Node) Depth() int {
	return n.depth
}

func (n *Node) HasLink() bool {
	return n.Link != ""
}

// Page returns the link without its anchor.
func (n *Node) Page() string {
	page, _, _ := strings.Cut(n.Link, "#")
	return page
}

// Anchor returns the part of the link after '#', if any.
func (n *Node) Anchor() string {
	_, anchor, _ := strings.Cut(n.Link, "#")
	return anchor
}

func (n *Node) String() string {
	if n.Link == "" {
		return n.Title
	}
	return n.Title + " (" + n.Link + ")"
}
