package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/ignore"
)

// FileCollector walks the analysis root and returns the files the
// matcher accepts
type FileCollector struct {
	matcher        *ignore.Matcher
	followSymlinks bool
}

// NewFileCollector creates a collector for matcher's root
func NewFileCollector(matcher *ignore.Matcher, followSymlinks bool) *FileCollector {
	return &FileCollector{matcher: matcher, followSymlinks: followSymlinks}
}

// Collect returns absolute, sorted paths of every accepted file. Excluded
// directories are not descended into.
func (c *FileCollector) Collect(ctx context.Context) ([]string, error) {
	root := c.matcher.Root()
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable entries below the root are skipped
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != root && c.matcher.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !c.followSymlinks {
				return nil
			}
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if c.matcher.Accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect files under %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// ResolveRoot picks the analysis root: the explicit argument, then the
// configured root, then the working directory. The result is absolute and
// must be a directory.
func ResolveRoot(cfg *config.Config, arg string) (string, error) {
	root := arg
	if root == "" && cfg != nil {
		root = cfg.Analysis.Root
	}
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access analysis root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("analysis root %s is not a directory", abs)
	}
	return abs, nil
}

// NewMatcher builds the path predicate for root from configuration
func NewMatcher(cfg *config.Config, root string) (*ignore.Matcher, error) {
	return ignore.New(root, cfg.Analysis.IncludePatterns, cfg.Analysis.ExcludePatterns, cfg.Analysis.UseGitignore)
}
