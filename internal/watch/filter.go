// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are editor and OS artifacts that never trigger a callback.
var defaultIgnores = []string{
	"**/.#*",
	"**/*~",
	"**/*.swp",
	"**/*.swx",
	"**/.DS_Store",
}

// filter decides which root-relative paths are interesting.
type filter struct {
	patterns []string
	ignores  []string
}

func newFilter(patterns, ignore []string) (*filter, error) {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid watch pattern %q", pat)
		}
	}
	for _, pat := range ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, ignore...)

	return &filter{patterns: patterns, ignores: ignores}, nil
}

// ignored reports whether rel, or the directory rel when dir is set,
// matches an ignore pattern.
func (f *filter) ignored(rel string, dir bool) bool {
	normalized := filepath.ToSlash(rel)
	if matchAny(f.ignores, normalized) {
		return true
	}
	return dir && matchAny(f.ignores, normalized+"/")
}

// selected reports whether a file at rel should trigger a callback. With no
// patterns every non-ignored file is selected.
func (f *filter) selected(rel string) bool {
	if f.ignored(rel, false) {
		return false
	}
	if len(f.patterns) == 0 {
		return true
	}
	return matchAny(f.patterns, filepath.ToSlash(rel))
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if doublestar.MatchUnvalidated(pat, name) {
			return true
		}
	}
	return false
}
