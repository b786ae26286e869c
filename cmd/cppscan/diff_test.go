package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiffCmdRequiresTwoArgs(t *testing.T) {
	cmd := newDiffCmd()
	assert.Error(t, cmd.Args(cmd, []string{"only-one.json"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a.json", "b.json"}))
}

func TestFindingLinesRendersOneLinePerDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"ID":"unreadVariable","Severity":0,"Message":"value assigned to 'x' is never used","Primary":{"File":"t.c","Line":2,"Column":1}}
	]`), 0o644))

	lines, err := findingLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "t.c:2:1")
	assert.Contains(t, lines[0], "unreadVariable")
}

func TestFindingLinesRejectsMissingFile(t *testing.T) {
	_, err := findingLines(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
