package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/fragment"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/spf13/cobra"
)

type CheckSummary struct {
	Mode       string   `json:"mode"`
	Dir        string   `json:"dir"`
	Source     string   `json:"source"`
	Healthy    bool     `json:"healthy"`
	Nodes      int      `json:"nodes"`
	Fragments  int      `json:"fragments"`
	Collapsed  int      `json:"collapsed"`
	IndexPages int      `json:"index_pages"`
	Missing    []string `json:"missing,omitempty"`
	Malformed  []string `json:"malformed,omitempty"`
	Failed     []string `json:"failed,omitempty"`
}

func RunCheck(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	progress := newFragmentProgress(cmd.ErrOrStderr(), "check", asJSON)
	s, err := openSite(cmd, progress.Wrap)
	if err != nil {
		return err
	}
	tree, err := s.site.NewTree()
	if err != nil {
		return err
	}

	summary := CheckSummary{
		Mode:       "check",
		Dir:        s.cfg.Site.Dir,
		Source:     s.cfg.Site.Dir,
		IndexPages: len(s.site.IndexPages()),
	}
	if s.cfg.Site.BaseURL != "" {
		summary.Source = s.cfg.Site.BaseURL
	}

	expandErr := s.site.ExpandAll(cmd.Context(), tree)
	progress.Done()
	classifyExpandErrors(&summary, expandErr)

	summary.Nodes = tree.Len()
	summary.Fragments = progress.Count()
	summary.Collapsed = len(tree.DeferredNodes())
	summary.Healthy = expandErr == nil

	out := cmd.OutOrStdout()
	if asJSON {
		if err := fileutil.WriteJSON(out, summary); err != nil {
			return err
		}
	} else {
		status := "issues"
		if summary.Healthy {
			status = "ok"
		}
		fmt.Fprintf(out, "check: %s\n", status)
		fmt.Fprintf(out, "source: %s\n", summary.Source)
		fmt.Fprintf(out, "tree: nodes=%d fragments=%d collapsed=%d index_pages=%d\n",
			summary.Nodes, summary.Fragments, summary.Collapsed, summary.IndexPages)
		if len(summary.Missing) > 0 {
			fmt.Fprintf(out, "missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
		}
		if len(summary.Malformed) > 0 {
			fmt.Fprintf(out, "malformed (%d): %s\n", len(summary.Malformed), strings.Join(summary.Malformed, ", "))
		}
		for _, failure := range summary.Failed {
			fmt.Fprintf(out, "failed: %s\n", failure)
		}
	}

	if !summary.Healthy {
		problems := len(summary.Missing) + len(summary.Malformed) + len(summary.Failed)
		return fmt.Errorf("check found %d problem(s)", problems)
	}
	return nil
}

func classifyExpandErrors(summary *CheckSummary, err error) {
	if err == nil {
		return
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	for _, e := range errs {
		var loadErr *navtree.FragmentLoadError
		if !errors.As(e, &loadErr) {
			summary.Failed = append(summary.Failed, e.Error())
			continue
		}
		switch {
		case errors.Is(e, fragment.ErrNotFound):
			summary.Missing = append(summary.Missing, loadErr.Sentinel)
		case errors.Is(e, navtree.ErrMalformedTree):
			summary.Malformed = append(summary.Malformed, loadErr.Sentinel)
		default:
			summary.Failed = append(summary.Failed, e.Error())
		}
	}
	sort.Strings(summary.Missing)
	sort.Strings(summary.Malformed)
}
