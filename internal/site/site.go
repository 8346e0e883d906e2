// Package site loads the navigation data of a Doxygen HTML output directory
// and hands out per-page-view navigation trees.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/morozRed/doxnav/internal/fragment"
	"github.com/morozRed/doxnav/internal/logging"
	"github.com/morozRed/doxnav/internal/navjs"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/sirupsen/logrus"
)

const (
	DataFile        = "navtreedata.js"
	TreeVar         = "NAVTREE"
	IndexVar        = "NAVTREEINDEX"
	SyncOnVar       = "SYNCONMSG"
	SyncOffVar      = "SYNCOFFMSG"
	indexFilePrefix = "navtreeindex"
)

// Messages carries the localized copy of the synchronisation toggle.
type Messages struct {
	SyncOn  string `json:"sync_on" yaml:"sync_on"`
	SyncOff string `json:"sync_off" yaml:"sync_off"`
}

// Site is the immutable navigation data of one documentation build.
type Site struct {
	Dir string

	roots      []navtree.Spec
	indexPages []string
	messages   Messages
	loader     navtree.FragmentLoader
	log        logrus.FieldLogger

	chunkMu sync.Mutex
	chunks  map[int]map[string][]int
}

type Option func(*Site)

// WithLoader replaces the default on-disk fragment loader.
func WithLoader(loader navtree.FragmentLoader) Option {
	return func(s *Site) {
		s.loader = loader
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Site) {
		s.log = log
	}
}

// Load reads navtreedata.js from dir.
func Load(dir string, opts ...Option) (*Site, error) {
	path := filepath.Join(dir, DataFile)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("navigation data missing at %s (is this a Doxygen HTML directory?)", path)
		}
		return nil, fmt.Errorf("failed to read navigation data: %w", err)
	}

	s := &Site{
		Dir:    dir,
		log:    logging.Discard(),
		chunks: make(map[int]map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = fragment.NewDirLoader(dir, s.log)
	}

	if err := s.decode(path, content); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"dir": dir, "index_chunks": len(s.indexPages)}).Debug("navigation data loaded")
	return s, nil
}

func (s *Site) decode(path string, content []byte) error {
	f, err := navjs.Parse(path, content)
	if err != nil {
		return err
	}

	treeVal, ok := f.Var(TreeVar)
	if !ok {
		return fmt.Errorf("%s does not declare %s", path, TreeVar)
	}
	roots, err := navjs.Records(treeVal)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	// Validate once so that every later NewTree succeeds.
	if _, err := navtree.Build(roots); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.roots = roots

	if v, ok := f.Var(IndexVar); ok {
		pages, err := navjs.Strings(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", path, IndexVar, err)
		}
		s.indexPages = pages
	}
	if v, ok := f.Var(SyncOnVar); ok && v.Kind == navjs.KindString {
		s.messages.SyncOn = v.Str
	}
	if v, ok := f.Var(SyncOffVar); ok && v.Kind == navjs.KindString {
		s.messages.SyncOff = v.Str
	}
	return nil
}

// Roots returns the construction input of the tree.
func (s *Site) Roots() []navtree.Spec {
	return s.roots
}

func (s *Site) Messages() Messages {
	return s.messages
}

func (s *Site) Loader() navtree.FragmentLoader {
	return s.loader
}

// IndexPages lists the first page id of every index chunk.
func (s *Site) IndexPages() []string {
	return append([]string(nil), s.indexPages...)
}

// NewTree builds a fresh tree for one page view.
func (s *Site) NewTree() (*navtree.Tree, error) {
	return navtree.Build(s.roots)
}

// IndexPath looks pageID up in the chunked page index. Chunks are sorted by
// their first page id, so the candidate chunk is the last one starting at or
// before pageID.
func (s *Site) IndexPath(pageID string) ([]int, bool, error) {
	if len(s.indexPages) == 0 || pageID == "" {
		return nil, false, nil
	}
	i := sort.Search(len(s.indexPages), func(i int) bool {
		return s.indexPages[i] > pageID
	}) - 1
	if i < 0 {
		return nil, false, nil
	}

	chunk, err := s.chunk(i)
	if err != nil {
		return nil, false, err
	}
	path, ok := chunk[pageID]
	return path, ok, nil
}

func (s *Site) chunk(i int) (map[string][]int, error) {
	s.chunkMu.Lock()
	defer s.chunkMu.Unlock()
	if c, ok := s.chunks[i]; ok {
		return c, nil
	}

	name := IndexVar + strconv.Itoa(i)
	path := filepath.Join(s.Dir, indexFilePrefix+strconv.Itoa(i)+".js")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index chunk: %w", err)
	}
	f, err := navjs.Parse(path, content)
	if err != nil {
		return nil, err
	}
	v, ok := f.Var(name)
	if !ok {
		return nil, fmt.Errorf("%s does not declare %s", path, name)
	}
	c, err := navjs.IndexChunk(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.chunks[i] = c
	return c, nil
}

// Sync returns the branch to expand for pageID. The page index is consulted
// first, loading fragments along its path; when the index has no entry the
// loaded tree is searched with ResolvePath. A page id whose anchor matches
// nothing falls back to the page without it. A miss is an empty path.
func (s *Site) Sync(ctx context.Context, tree *navtree.Tree, pageID string) ([]*navtree.Node, error) {
	path, err := s.syncPage(ctx, tree, pageID)
	if err != nil || len(path) > 0 {
		return path, err
	}
	if page, _, found := strings.Cut(pageID, "#"); found && page != "" {
		return s.syncPage(ctx, tree, page)
	}
	return nil, nil
}

func (s *Site) syncPage(ctx context.Context, tree *navtree.Tree, pageID string) ([]*navtree.Node, error) {
	indices, ok, err := s.IndexPath(pageID)
	if err != nil {
		s.log.WithError(err).WithField("page", pageID).Warn("page index unavailable, falling back to tree search")
	}
	if ok {
		path, err := tree.Walk(ctx, indices, s.loader)
		if err != nil {
			return path, err
		}
		if len(path) > 0 {
			return path, nil
		}
	}
	return tree.ResolvePath(pageID), nil
}

// ExpandAll loads every deferred node, including deferred nodes that appear
// inside loaded fragments. Fragment failures are collected and do not stop
// the remaining expansions.
func (s *Site) ExpandAll(ctx context.Context, tree *navtree.Tree) error {
	var errs []error
	failed := make(map[*navtree.Node]bool)
	for {
		queue := make([]*navtree.Node, 0)
		for _, n := range tree.DeferredNodes() {
			if !failed[n] {
				queue = append(queue, n)
			}
		}
		if len(queue) == 0 {
			break
		}
		for _, n := range queue {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if sentinel, ok := n.Sentinel(); ok && nestedIn(n, sentinel) {
				err := &navtree.FragmentLoadError{Sentinel: sentinel, Title: n.Title, Err: navtree.ErrFragmentCycle}
				failed[n] = true
				errs = append(errs, err)
				s.log.WithError(err).WithField("node", n.Title).Warn("fragment expansion skipped")
				continue
			}
			expanded, err := tree.Expand(ctx, n, s.loader)
			if err != nil {
				failed[n] = true
				errs = append(errs, err)
				s.log.WithError(err).WithField("node", n.Title).Warn("fragment expansion failed")
				continue
			}
			if !expanded && n.IsDeferred() {
				// another caller owns this fetch
				failed[n] = true
			}
		}
	}
	return errors.Join(errs...)
}

// nestedIn reports whether an ancestor of n was loaded from sentinel.
func nestedIn(n *navtree.Node, sentinel string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Origin() == sentinel {
			return true
		}
	}
	return false
}
