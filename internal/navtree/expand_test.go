package navtree

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

func TestExpandSentinelOverwritesOnRepeat(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	classes := tree.ResolvePath("annotated.html")[1]
	fragment := []Spec{{Title: "Foo", Link: "foo.html"}, {Title: "Bar", Link: "bar.html"}}

	for i := 0; i < 2; i++ {
		if _, err := tree.ExpandSentinel(classes, fragment); err != nil {
			t.Fatalf("ExpandSentinel #%d failed: %v", i+1, err)
		}
	}

	if got := titles(classes.Children()); !reflect.DeepEqual(got, []string{"Foo", "Bar"}) {
		t.Fatalf("expected fragment exactly once, got %v", got)
	}
	for _, child := range classes.Children() {
		if child.Parent() != classes || child.Depth() != 2 {
			t.Fatalf("unexpected parent/depth for %v", child)
		}
	}
}

func TestExpandSentinelEmptyFragmentMakesLeaf(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	classes := tree.ResolvePath("annotated.html")[1]

	if _, err := tree.ExpandSentinel(classes, nil); err != nil {
		t.Fatalf("ExpandSentinel failed: %v", err)
	}
	if classes.IsDeferred() || len(classes.Children()) != 0 {
		t.Fatalf("expected a childless leaf")
	}

	calls := 0
	loader := FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]Spec, error) {
		calls++
		return nil, nil
	})
	expanded, err := tree.Expand(context.Background(), classes, loader)
	if err != nil || expanded {
		t.Fatalf("expected no further expansion, got %v %v", expanded, err)
	}
	if calls != 0 {
		t.Fatalf("expected loader not to be called, got %d calls", calls)
	}
}

func TestExpandSentinelMalformedFragmentLeavesTree(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	classes := tree.ResolvePath("annotated.html")[1]

	_, err := tree.ExpandSentinel(classes, []Spec{{Title: "ok"}, {Link: "no-title.html"}})
	var mErr *MalformedTreeError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *MalformedTreeError, got %v", err)
	}
	if !reflect.DeepEqual(mErr.Path, []int{1}) {
		t.Fatalf("expected fragment path [1], got %v", mErr.Path)
	}
	if !classes.IsDeferred() {
		t.Fatalf("expected node to stay deferred")
	}
}

func TestExpandSentinelRejectsForeignAndInlineNodes(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	other := mustBuild(t, sampleSpec())

	if _, err := tree.ExpandSentinel(other.Root(), nil); !errors.Is(err, ErrForeignNode) {
		t.Fatalf("expected ErrForeignNode, got %v", err)
	}
	if _, err := tree.ExpandSentinel(tree.Root(), nil); !errors.Is(err, ErrNotDeferred) {
		t.Fatalf("expected ErrNotDeferred, got %v", err)
	}
}

func TestExpandLoadFailureKeepsNodeDeferred(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	classes := tree.ResolvePath("annotated.html")[1]
	notFound := errors.New("404")

	loader := FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]Spec, error) {
		return nil, notFound
	})
	expanded, err := tree.Expand(context.Background(), classes, loader)
	if expanded {
		t.Fatalf("expected no expansion")
	}
	if !errors.Is(err, ErrFragmentLoad) || !errors.Is(err, notFound) {
		t.Fatalf("expected fragment load error wrapping 404, got %v", err)
	}
	var fErr *FragmentLoadError
	if !errors.As(err, &fErr) || fErr.Sentinel != "annotated_dup" || fErr.Title != "Classes" {
		t.Fatalf("unexpected error detail %#v", err)
	}
	if !classes.IsDeferred() {
		t.Fatalf("expected node to stay deferred after failure")
	}

	// A later click may retry.
	retry := FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]Spec, error) {
		return []Spec{{Title: "Foo"}}, nil
	})
	expanded, err = tree.Expand(context.Background(), classes, retry)
	if err != nil || !expanded {
		t.Fatalf("expected retry to expand, got %v %v", expanded, err)
	}
}

func TestExpandDeduplicatesInFlightFetch(t *testing.T) {
	tree := mustBuild(t, sampleSpec())
	classes := tree.ResolvePath("annotated.html")[1]

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	loader := FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]Spec, error) {
		calls.Add(1)
		close(started)
		<-release
		return []Spec{{Title: "Foo"}}, nil
	})

	var wg sync.WaitGroup
	var firstExpanded bool
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstExpanded, firstErr = tree.Expand(context.Background(), classes, loader)
	}()

	<-started
	expanded, err := tree.Expand(context.Background(), classes, loader)
	if err != nil || expanded {
		t.Fatalf("expected second click to be a no-op, got %v %v", expanded, err)
	}
	close(release)
	wg.Wait()

	if firstErr != nil || !firstExpanded {
		t.Fatalf("expected first call to expand, got %v %v", firstExpanded, firstErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", calls.Load())
	}
	if got := titles(classes.Children()); !reflect.DeepEqual(got, []string{"Foo"}) {
		t.Fatalf("unexpected children %v", got)
	}
}

func TestWalkExpandsDeferredNodes(t *testing.T) {
	tree := mustBuild(t, []Spec{{
		Title: "Root",
		Link:  "index.html",
		Children: []Spec{
			{Title: "Readme", Link: "md_Readme.html"},
			{Title: "Classes", Link: "annotated.html", Children: []Spec{
				{Title: "Class List", Link: "annotated.html", Sentinel: "annotated_dup"},
			}},
		},
	}})

	loaded := make([]string, 0)
	loader := FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]Spec, error) {
		loaded = append(loaded, sentinel)
		return []Spec{
			{Title: "ConnectionManager", Link: "classConnectionManager.html"},
			{Title: "ConnectionTCP", Link: "classConnectionTCP.html"},
		}, nil
	})

	path, err := tree.Walk(context.Background(), []int{1, 0, 1}, loader)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	want := []string{"Root", "Classes", "Class List", "ConnectionTCP"}
	if got := titles(path); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(loaded, []string{"annotated_dup"}) {
		t.Fatalf("expected one fragment load, got %v", loaded)
	}

	miss, err := tree.Walk(context.Background(), []int{5}, loader)
	if err != nil || len(miss) != 0 {
		t.Fatalf("expected empty miss, got %v %v", titles(miss), err)
	}

	root, err := tree.Walk(context.Background(), nil, loader)
	if err != nil || len(root) != 1 || root[0] != tree.Root() {
		t.Fatalf("expected root-only path, got %v %v", titles(root), err)
	}
}
