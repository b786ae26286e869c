package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/checks"
	"github.com/oxhq/cppscan/internal/config"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/scanner"
)

func TestNewAnalyzeCmdHasUsage(t *testing.T) {
	cmd := newAnalyzeCmd()
	assert.Equal(t, "analyze [files or directories...]", cmd.Use)
	assert.True(t, cmd.DisableFlagParsing)
}

func TestNewCTUCheckCmdRequiresOneArg(t *testing.T) {
	cmd := newCTUCheckCmd()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"db.sqlite"}))
}

func TestRunAnalyzeReportsFormatStringMismatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(file, []byte(`
void f() {
	printf("%u", "not an unsigned int");
}
`), 0o644))

	library, err := loadLibraries(filepath.Join("..", "..", "libraries"), []string{"std"})
	require.NoError(t, err)

	registry := checks.NewRegistry()
	require.NoError(t, registry.Register(checks.FormatString{Library: library}))

	settings := config.DefaultSettings()
	sink := diagnostics.NewSink()

	err = runAnalyzeForTest(t, registry, settings, []string{dir}, sink)
	require.NoError(t, err)

	found := false
	for _, d := range sink.Findings() {
		if d.ID == "invalidPrintfArgType_uint" {
			found = true
		}
	}
	assert.True(t, found, "expected an invalidPrintfArgType_uint finding, got %+v", sink.Findings())
}

// runAnalyzeForTest drives analyzeFile directly (rather than
// runAnalyze's stdout-printing path) so the test can inspect the sink.
func runAnalyzeForTest(t *testing.T, registry *checks.Registry, settings config.Settings, targets []string, sink *diagnostics.Sink) error {
	t.Helper()
	ctx := context.Background()
	files, err := scanner.New(scanner.Config{}).Scan(ctx, targets)
	require.NoError(t, err)
	for _, f := range files {
		if err := analyzeFile(ctx, registry, settings, f, sink, nil, ""); err != nil {
			return err
		}
	}
	return nil
}
