package navtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedTree matches every *MalformedTreeError.
	ErrMalformedTree = errors.New("malformed navigation tree")
	// ErrFragmentLoad matches every *FragmentLoadError.
	ErrFragmentLoad = errors.New("fragment load failed")

	ErrForeignNode = errors.New("node does not belong to this tree")
	ErrNotDeferred = errors.New("node was not created with a sentinel")
	// ErrFragmentCycle reports a fragment that nests its own sentinel.
	ErrFragmentCycle = errors.New("fragment is nested inside itself")
)

// MalformedTreeError reports a structural violation found while building a
// tree or a fragment. Path holds the child indexes leading to the offending
// record, starting at the input list.
type MalformedTreeError struct {
	Path   []int
	Reason string
}

func (e *MalformedTreeError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedTree, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrMalformedTree, FormatPath(e.Path), e.Reason)
}

func (e *MalformedTreeError) Is(target error) bool {
	return target == ErrMalformedTree
}

// FragmentLoadError reports a failed fetch of a deferred subtree. The tree is
// left as it was before the attempt.
type FragmentLoadError struct {
	Sentinel string
	Title    string
	Err      error
}

func (e *FragmentLoadError) Error() string {
	return fmt.Sprintf("load fragment %q for %q: %v", e.Sentinel, e.Title, e.Err)
}

func (e *FragmentLoadError) Unwrap() error {
	return e.Err
}

func (e *FragmentLoadError) Is(target error) bool {
	return target == ErrFragmentLoad
}

// FormatPath renders child indexes as "0/2/1".
func FormatPath(path []int) string {
	parts := make([]string, 0, len(path))
	for _, idx := range path {
		parts = append(parts, strconv.Itoa(idx))
	}
	return strings.Join(parts, "/")
}

func malformed(path []int, format string, args ...any) *MalformedTreeError {
	return &MalformedTreeError{
		Path:   append([]int(nil), path...),
		Reason: fmt.Sprintf(format, args...),
	}
}
