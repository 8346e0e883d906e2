package navtree

import "context"

// FragmentLoader fetches the records of a deferred subtree by sentinel.
type FragmentLoader interface {
	Load(ctx context.Context, sentinel string) ([]Spec, error)
}

// FragmentLoaderFunc adapts a function to FragmentLoader.
type FragmentLoaderFunc func(ctx context.Context, sentinel string) ([]Spec, error)

func (f FragmentLoaderFunc) Load(ctx context.Context, sentinel string) ([]Spec, error) {
	return f(ctx, sentinel)
}

// ExpandSentinel replaces the children of node with fragment. The fragment is
// validated before anything changes, so a malformed fragment leaves the tree
// untouched. Repeating the call overwrites the previous children; an empty
// fragment turns the node into a leaf.
func (t *Tree) ExpandSentinel(node *Node, fragment []Spec) (*Node, error) {
	if node == nil || node.tree != t {
		return nil, ErrForeignNode
	}
	if node.origin == "" {
		return nil, ErrNotDeferred
	}

	kids, err := t.buildList(fragment, nil, node, node.depth+1)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	node.children = Inline(kids)
	t.mu.Unlock()
	return node, nil
}

// Expand loads and merges the fragment of a deferred node. It reports whether
// this call performed the expansion: a node that is already expanded, or one
// whose fetch is still in flight from another caller, yields false and no
// error. A failed fetch returns a *FragmentLoadError and leaves the node
// deferred.
func (t *Tree) Expand(ctx context.Context, node *Node, loader FragmentLoader) (bool, error) {
	if node == nil || node.tree != t {
		return false, ErrForeignNode
	}

	t.mu.Lock()
	sentinel := node.children.sentinel
	if sentinel == "" {
		t.mu.Unlock()
		return false, nil
	}
	if _, busy := t.pending[node]; busy {
		t.mu.Unlock()
		return false, nil
	}
	t.pending[node] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, node)
		t.mu.Unlock()
	}()

	fragment, err := loader.Load(ctx, sentinel)
	if err != nil {
		return false, &FragmentLoadError{Sentinel: sentinel, Title: node.Title, Err: err}
	}
	if _, err := t.ExpandSentinel(node, fragment); err != nil {
		return false, &FragmentLoadError{Sentinel: sentinel, Title: node.Title, Err: err}
	}
	return true, nil
}

// Walk follows child indexes from the root, loading deferred nodes on the way,
// and returns the nodes visited, root first. An index that does not exist is
// a lookup miss and yields an empty path. When a node on the way stays
// deferred (its fetch is owned by another caller) the walk stops there.
func (t *Tree) Walk(ctx context.Context, indices []int, loader FragmentLoader) ([]*Node, error) {
	cur := t.root
	path := []*Node{cur}
	for _, idx := range indices {
		if cur.IsDeferred() {
			if loader == nil {
				return path, nil
			}
			if _, err := t.Expand(ctx, cur, loader); err != nil {
				return path, err
			}
			if cur.IsDeferred() {
				return path, nil
			}
		}
		kids := t.childrenOf(cur)
		if idx < 0 || idx >= len(kids) {
			return nil, nil
		}
		cur = kids[idx]
		path = append(path, cur)
	}
	return path, nil
}
