package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/scanner"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("int x;"), 0o644))
	}
}

func TestScanFindsRecognizedExtensionsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.c", "util.cpp", "header.hpp", "README.md", "notes.txt")

	s := scanner.New(scanner.Config{})
	results, err := s.Scan(context.Background(), []string{dir})
	require.NoError(t, err)

	var paths []string
	for _, r := range results {
		paths = append(paths, filepath.Base(r.Path))
	}
	assert.ElementsMatch(t, []string{"main.c", "util.cpp", "header.hpp"}, paths)
}

func TestScanSkipsVendorAndGitDirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "src/app.c", "vendor/dep.c", ".git/hooks/fake.c")

	s := scanner.New(scanner.Config{})
	results, err := s.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "src", "app.c"), results[0].Path)
}

func TestScanRespectsExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.c", "generated.c")

	s := scanner.New(scanner.Config{ExcludeGlobs: []string{"**/generated.c"}})
	results, err := s.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep.c", filepath.Base(results[0].Path))
}

func TestScanRespectsIncludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a/foo.c", "b/bar.c")

	s := scanner.New(scanner.Config{IncludeGlobs: []string{"**/a/**"}})
	results, err := s.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "a", "foo.c"), results[0].Path)
}

func TestScanAcceptsSingleFileTarget(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "only.c")

	s := scanner.New(scanner.Config{})
	results, err := s.Scan(context.Background(), []string{filepath.Join(dir, "only.c")})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestScanDeduplicatesOverlappingTargets(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "dup.c")

	s := scanner.New(scanner.Config{})
	results, err := s.Scan(context.Background(), []string{dir, filepath.Join(dir, "dup.c")})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestScanReturnsErrorForMissingTarget(t *testing.T) {
	s := scanner.New(scanner.Config{})
	_, err := s.Scan(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
