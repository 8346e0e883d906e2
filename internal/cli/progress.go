package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/morozRed/doxnav/internal/navtree"
)

// fragmentProgress counts fragment loads and, on a terminal, shows a
// spinner on stderr while they run.
type fragmentProgress struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	label   string
	count   int
	start   time.Time
	spinner int
	lastLen int
}

func newFragmentProgress(out io.Writer, label string, quiet bool) *fragmentProgress {
	return &fragmentProgress{
		out:     out,
		enabled: !quiet && isTerminal(out),
		label:   label,
		start:   time.Now(),
	}
}

// Wrap decorates loader so every load is reported.
func (r *fragmentProgress) Wrap(loader navtree.FragmentLoader) navtree.FragmentLoader {
	return navtree.FragmentLoaderFunc(func(ctx context.Context, sentinel string) ([]navtree.Spec, error) {
		specs, err := loader.Load(ctx, sentinel)
		r.Update(sentinel)
		return specs, err
	})
}

func (r *fragmentProgress) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *fragmentProgress) Update(sentinel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	if len(sentinel) > 60 {
		sentinel = sentinel[:57] + "..."
	}
	r.printStatus(fmt.Sprintf("%s %s %d loading %s", frame, r.label, r.count, sentinel))
}

func (r *fragmentProgress) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d fragments in %s)", r.label, r.count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *fragmentProgress) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
