package excluder

import (
	"path/filepath"

	"github.com/gobwas/glob"
)

// Excluder matches file paths against a list of glob patterns.
type Excluder struct {
	root  string
	globs []glob.Glob
}

// New creates an Excluder from a list of glob patterns.
// Patterns use '/' as the path separator and are matched against both the
// base name of a path and its location relative to root.
func New(patterns []string, root string) (*Excluder, error) {
	var globs []glob.Glob
	for _, pat := range patterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return &Excluder{root: root, globs: globs}, nil
}

// IsExcluded returns true if the given path matches any exclude pattern.
func (e *Excluder) IsExcluded(path string) bool {
	if e == nil || len(e.globs) == 0 {
		return false
	}

	name := filepath.Base(path)
	rel := filepath.ToSlash(path)
	if r, err := filepath.Rel(e.root, path); err == nil {
		rel = filepath.ToSlash(r)
	}

	for _, g := range e.globs {
		if g.Match(name) || g.Match(rel) {
			return true
		}
	}
	return false
}
