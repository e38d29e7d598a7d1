package rules

import (
	"fmt"

	"github.com/gobwas/glob"
)

// NameSet matches base names against a list of exclusion patterns.
// Entries are glob patterns, so plain names like ".DS_Store" match
// literally and patterns like "*.tmp" match whole families.
type NameSet struct {
	globs []glob.Glob
}

// CompileNames compiles exclusion patterns into a NameSet. A bad
// pattern fails the whole set; exclusions are load-time configuration
// and a silently dropped pattern would quietly widen the traversal.
func CompileNames(patterns []string) (NameSet, error) {
	set := NameSet{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return NameSet{}, fmt.Errorf("bad exclude pattern %q: %w", p, err)
		}
		set.globs = append(set.globs, g)
	}
	return set, nil
}

// Match reports whether name is excluded.
func (s NameSet) Match(name string) bool {
	for _, g := range s.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
