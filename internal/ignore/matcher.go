// Package ignore answers "is this path part of the analysis?" for the file
// collector and the watcher, combining include globs, exclude globs and the
// root .gitignore.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher decides whether paths under an analysis root are analyzed.
// Patterns use gitignore syntax. It is safe for concurrent reads.
type Matcher struct {
	root    string
	include *gitignore.GitIgnore
	exclude *gitignore.GitIgnore
	git     *gitignore.GitIgnore
	dirs    []string
}

// New builds a matcher for root. An empty include list accepts every file.
// When useGitignore is set, root/.gitignore is honored if present.
func New(root string, include, exclude []string, useGitignore bool) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		root:    abs,
		exclude: gitignore.CompileIgnoreLines(append([]string{".git"}, exclude...)...),
	}
	if len(include) > 0 {
		m.include = gitignore.CompileIgnoreLines(include...)
	}

	if useGitignore {
		path := filepath.Join(abs, ".gitignore")
		if _, statErr := os.Stat(path); statErr == nil {
			git, err := gitignore.CompileIgnoreFile(path)
			if err != nil {
				return nil, err
			}
			m.git = git
		}
	}
	return m, nil
}

// Root returns the absolute analysis root
func (m *Matcher) Root() string {
	return m.root
}

// ExcludeDir excludes an absolute directory and everything below it.
// Must be called before the matcher is shared.
func (m *Matcher) ExcludeDir(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		m.dirs = append(m.dirs, abs)
	}
}

// Excluded reports whether path (a file or directory) is excluded.
// Paths outside the root are always excluded.
func (m *Matcher) Excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	for _, d := range m.dirs {
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return true
		}
	}

	rel, ok := m.rel(abs)
	if !ok {
		return true
	}
	if rel == "." {
		return false
	}
	if m.exclude.MatchesPath(rel) {
		return true
	}
	return m.git != nil && m.git.MatchesPath(rel)
}

// Included reports whether a file matches the include patterns
func (m *Matcher) Included(path string) bool {
	if m.include == nil {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, ok := m.rel(abs)
	if !ok {
		return false
	}
	return m.include.MatchesPath(rel)
}

// Accept reports whether a file takes part in the analysis
func (m *Matcher) Accept(path string) bool {
	return m.Included(path) && !m.Excluded(path)
}

func (m *Matcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
