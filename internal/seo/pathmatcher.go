package seo

import (
	"path"
	"strings"
)

// defaultExcludePatterns skip build assets and vendored packages.
var defaultExcludePatterns = []string{
	"/_next/*",
	"/node_modules/*",
}

// PathMatcher filters site-relative file paths with glob patterns.
// "/dir/*" also matches anything nested below /dir.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns (e.g. "/_next/*", "/*.bak.html").
// Falls back to default patterns if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &PathMatcher{patterns: lowered}
}

// Patterns returns the configured patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded reports whether rel, a slash-separated path relative to the
// site root, matches any exclude pattern.
func (m *PathMatcher) IsExcluded(rel string) bool {
	p := "/" + strings.TrimPrefix(strings.ToLower(rel), "/")
	for _, pattern := range m.patterns {
		if matchSegmented(pattern, p) {
			return true
		}
	}
	return false
}

// matchSegmented tries path.Match first, then for "dir/*" patterns a
// prefix match on the directory.
func matchSegmented(pattern, p string) bool {
	if ok, _ := path.Match(pattern, p); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
