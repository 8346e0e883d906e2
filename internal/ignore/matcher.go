// Package ignore matches paths inside a Doxygen output directory against
// gitignore-style rules. It keeps the watcher from reloading navigation when
// only the static scripts Doxygen copies next to every build change.
package ignore

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultRules are the scripts Doxygen ships with every HTML build that never
// carry navigation data.
var DefaultRules = []string{
	"jquery.js",
	"dynsections.js",
	"menu.js",
	"menudata.js",
	"navtree.js",
	"resize.js",
	"cookie.js",
	"clipboard.js",
	"search/",
}

type rule struct {
	re       *regexp.Regexp
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies the rules in order; the last matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher prepends DefaultRules to userRules, so a user rule such as
// "!menudata.js" can re-include a default.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// ShouldIgnore reports whether relPath, relative to the output directory,
// is excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var parsed rule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		parsed.negated = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		parsed.anchored = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		parsed.dirOnly = true
		line = rest
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	parsed.pattern = line
	parsed.re = re
	return parsed, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly {
		return r.matchesDir(relPath) || (isDir && r.re.MatchString(filepath.Base(relPath)))
	}
	if r.anchored {
		return r.re.MatchString(relPath)
	}

	if strings.Contains(r.pattern, "/") {
		parts := strings.Split(relPath, "/")
		for i := range parts {
			if r.re.MatchString(strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	for _, segment := range strings.Split(relPath, "/") {
		if r.re.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchesDir reports whether some run of leading (anchored) or inner path
// segments names the directory.
func (r rule) matchesDir(relPath string) bool {
	parts := strings.Split(relPath, "/")
	last := len(parts) - 1
	if r.anchored {
		last = 0
	}
	for start := 0; start <= last; start++ {
		for end := start + 1; end <= len(parts); end++ {
			if r.re.MatchString(strings.Join(parts[start:end], "/")) {
				return true
			}
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		case strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)):
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
