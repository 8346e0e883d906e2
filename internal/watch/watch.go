// Package watch reports changes to the navigation scripts of a Doxygen
// output directory, coalescing bursts of events into one callback.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/morozRed/doxnav/internal/ignore"
	"github.com/morozRed/doxnav/internal/logging"
	"github.com/sirupsen/logrus"
)

// Filter decides whether a changed path is relevant.
type Filter func(path string) bool

// ChangeHandler receives the distinct paths changed during one quiet period.
type ChangeHandler func(paths []string)

// ScriptFilter accepts the .js files a navigation tree is built from.
func ScriptFilter(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".js")
}

// NewFilter accepts scripts below dir that m does not ignore.
func NewFilter(dir string, m *ignore.Matcher) Filter {
	return func(path string) bool {
		if !ScriptFilter(path) {
			return false
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		return !m.ShouldIgnore(rel, false)
	}
}

type Watcher struct {
	dir    string
	delay  time.Duration
	filter Filter
	fs     *fsnotify.Watcher
	log    logrus.FieldLogger
}

// New watches dir. Events are delivered once no further event arrived for
// delay.
func New(dir string, delay time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Watcher{
		dir:    dir,
		delay:  delay,
		filter: NewFilter(dir, ignore.NewMatcher(nil)),
		fs:     fs,
		log:    log,
	}, nil
}

// SetFilter replaces the default filter, which accepts .js files outside
// ignore.DefaultRules.
func (w *Watcher) SetFilter(filter Filter) {
	w.filter = filter
}

// Run delivers batches to handle until ctx is cancelled. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, handle ChangeHandler) error {
	defer w.fs.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || (w.filter != nil && !w.filter(event.Name)) {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("change detected")
			pending[event.Name] = struct{}{}
			timer.Reset(w.delay)
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)
			handle(paths)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
