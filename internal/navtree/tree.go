// Package navtree holds the ordered navigation tree behind a documentation
// sidebar: pre-order traversal for rendering, page-to-branch resolution for
// panel synchronisation, and lazy expansion of fragment-backed subtrees.
package navtree

import (
	"iter"
	"strings"
	"sync"
)

// Tree is a navigation tree rooted at exactly one node. It is read-only after
// Build except for fragment expansion, which swaps the children of a single
// deferred node.
type Tree struct {
	root *Node

	mu      sync.RWMutex
	pending map[*Node]struct{}
}

// Build validates roots and constructs a tree. On a structural violation it
// returns a *MalformedTreeError and no tree.
func Build(roots []Spec) (*Tree, error) {
	if len(roots) != 1 {
		return nil, malformed(nil, "expected exactly one root node, got %d", len(roots))
	}

	t := &Tree{pending: make(map[*Node]struct{})}
	root, err := t.buildNode(roots[0], []int{0}, nil, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *Tree) buildNode(spec Spec, path []int, parent *Node, depth int) (*Node, error) {
	if strings.TrimSpace(spec.Title) == "" {
		return nil, malformed(path, "node has no title")
	}
	if spec.Sentinel != "" && len(spec.Children) > 0 {
		return nil, malformed(path, "node %q has both inline children and sentinel %q", spec.Title, spec.Sentinel)
	}

	node := &Node{
		Title:  spec.Title,
		Link:   spec.Link,
		parent: parent,
		depth:  depth,
		tree:   t,
	}
	if spec.Sentinel != "" {
		node.children = Deferred(spec.Sentinel)
		node.origin = spec.Sentinel
		return node, nil
	}

	kids, err := t.buildList(spec.Children, path, node, depth+1)
	if err != nil {
		return nil, err
	}
	node.children = Inline(kids)
	return node, nil
}

func (t *Tree) buildList(specs []Spec, path []int, parent *Node, depth int) ([]*Node, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	nodes := make([]*Node, 0, len(specs))
	for i, spec := range specs {
		child, err := t.buildNode(spec, append(path[:len(path):len(path)], i), parent, depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

// Root returns the single top-level node.
func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) childrenOf(n *Node) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return n.children.nodes
}

// Traverse returns a pre-order walk of the loaded tree yielding each node
// with its depth. Every call starts a fresh walk.
func (t *Tree) Traverse() iter.Seq2[*Node, int] {
	return func(yield func(*Node, int) bool) {
		stack := []*Node{t.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n, n.depth) {
				return
			}
			kids := t.childrenOf(n)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// Len counts the loaded nodes.
func (t *Tree) Len() int {
	count := 0
	for range t.Traverse() {
		count++
	}
	return count
}

// Find returns the first node in pre-order accepted by match.
func (t *Tree) Find(match func(*Node) bool) *Node {
	for n := range t.Traverse() {
		if match(n) {
			return n
		}
	}
	return nil
}

// DeferredNodes lists the nodes whose children are still to be loaded, in
// pre-order.
func (t *Tree) DeferredNodes() []*Node {
	var out []*Node
	for n := range t.Traverse() {
		if n.IsDeferred() {
			out = append(out, n)
		}
	}
	return out
}

// ResolvePath returns the nodes from the root down to the first node in
// pre-order whose link equals pageID. A miss yields an empty path.
func (t *Tree) ResolvePath(pageID string) []*Node {
	if pageID == "" {
		return nil
	}
	target := t.Find(func(n *Node) bool { return n.Link == pageID })
	if target == nil {
		return nil
	}
	return PathTo(target)
}

// PathTo returns the chain of ancestors of n, root first, ending in n.
func PathTo(n *Node) []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IndexPath returns the child indexes leading from the root to n.
func IndexPath(n *Node) []int {
	var out []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		siblings := cur.parent.tree.childrenOf(cur.parent)
		for i, s := range siblings {
			if s == cur {
				out = append(out, i)
				break
			}
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
