package ignore

import "testing"

func TestMatcherDefaultsAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"!menudata.js",
		"*_tmp.js",
		"/legacy/**",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: "jquery.js", ignored: true},
		{path: "search/all_0.js", ignored: true},
		{path: "search", isDir: true, ignored: true},
		{path: "menudata.js", ignored: false},
		{path: "navtreedata.js", ignored: false},
		{path: "navtreeindex3.js", ignored: false},
		{path: "annotated_dup.js", ignored: false},
		{path: "draft_tmp.js", ignored: true},
		{path: "legacy/navtreedata.js", ignored: true},
		{path: "nested/legacy/navtreedata.js", ignored: false},
	}

	for _, tc := range cases {
		if got := m.ShouldIgnore(tc.path, tc.isDir); got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcherNegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"build/",
		"!build/include/",
	})

	if !m.ShouldIgnore("build/out/file.js", false) {
		t.Fatalf("expected build/out/file.js to be ignored")
	}
	if m.ShouldIgnore("build/include/file.js", false) {
		t.Fatalf("expected build/include/file.js to be included")
	}
}
