// Package scanner discovers C/C++ translation units to analyze:
// recursive directory traversal with include/exclude glob filtering,
// grounded on core/filewalker.go's bounded worker-pool walk — the same
// doublestar-based pattern matching, generalized from "any source
// file, detect its language" to "any file the cxxtoken grammars
// recognize".
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/cppscan/internal/cxxtoken"
)

// Config holds scanner configuration options.
type Config struct {
	// MaxBytes skips files larger than this size. Zero means no limit.
	MaxBytes int64
	// IncludeGlobs, if non-empty, requires a file's path to match at
	// least one pattern (doublestar syntax, "**" included).
	IncludeGlobs []string
	// ExcludeGlobs skips any file matching one of these patterns.
	ExcludeGlobs []string
	// FollowSymlinks lets symlinked entries found while walking a
	// directory through to extension classification; when false they
	// are skipped. Symlinked directories are never descended into, and
	// a target that is itself a symlink is always skipped.
	FollowSymlinks bool
	// Workers bounds the traversal's concurrency; zero picks
	// runtime.NumCPU()*2, the same ratio core/filewalker.go uses for
	// I/O-bound directory walks.
	Workers int
}

var skipDirs = map[string]bool{
	".git": true, "vendor": true, "node_modules": true,
	"build": true, "dist": true, "cmake-build-debug": true, "cmake-build-release": true,
}

// Scanner discovers C/C++ source files under one or more root paths.
type Scanner struct {
	cfg Config
}

// New returns a Scanner for cfg.
func New(cfg Config) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	return &Scanner{cfg: cfg}
}

// Result is one discovered file paired with the grammar that should
// parse it.
type Result struct {
	Path    string
	Grammar cxxtoken.Grammar
}

// Scan walks every target (a file or a directory) and returns every
// recognized C/C++ file found, deduplicated and in a stable order.
func (s *Scanner) Scan(ctx context.Context, targets []string) ([]Result, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}

	paths := make(chan string, 1024)
	results := make(chan Result, 1024)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				if r, ok := s.classify(path); ok {
					select {
					case results <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	walkErr := make(chan error, 1)
	go func() {
		defer close(paths)
		walkErr <- s.walkTargets(ctx, targets, paths)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	seen := make(map[string]bool)
	for r := range results {
		if !seen[r.Path] {
			seen[r.Path] = true
			out = append(out, r)
		}
	}

	if err := <-walkErr; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortResults(out)
	return out, nil
}

func (s *Scanner) walkTargets(ctx context.Context, targets []string, paths chan<- string) error {
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Lstat(target)
		if err != nil {
			return fmt.Errorf("scanner: accessing %s: %w", target, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if info.IsDir() {
			if err := s.walkDir(ctx, target, paths); err != nil {
				return err
			}
			continue
		}
		select {
		case paths <- target:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scanner) walkDir(ctx context.Context, dir string, paths chan<- string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scanner: reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if skipDirs[entry.Name()] {
				continue
			}
			if err := s.walkDir(ctx, full, paths); err != nil {
				return err
			}
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 && !s.cfg.FollowSymlinks {
			continue
		}

		if s.cfg.MaxBytes > 0 {
			if info, err := entry.Info(); err == nil && info.Size() > s.cfg.MaxBytes {
				continue
			}
		}
		if !s.matchesGlobs(full) {
			continue
		}

		select {
		case paths <- full:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scanner) matchesGlobs(path string) bool {
	if len(s.cfg.IncludeGlobs) > 0 {
		matched := false
		for _, pattern := range s.cfg.IncludeGlobs {
			if matchGlob(pattern, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range s.cfg.ExcludeGlobs {
		if matchGlob(pattern, path) {
			return false
		}
	}
	return true
}

func matchGlob(pattern, path string) bool {
	if ok, err := doublestar.PathMatch(pattern, path); err == nil && ok {
		return true
	}
	if ok, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && ok {
		return true
	}
	return false
}

// classify resolves the grammar for a discovered path by extension,
// returning ok=false for anything the cxxtoken package doesn't
// recognize as C or C++.
func (s *Scanner) classify(path string) (Result, bool) {
	g := cxxtoken.ForExtension(filepath.Ext(path))
	if g == nil {
		return Result{}, false
	}
	return Result{Path: path, Grammar: g}, true
}

func sortResults(out []Result) {
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Path > out[j].Path; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
}
