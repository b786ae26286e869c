package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/config"
	"github.com/oxhq/cppscan/internal/diagnostics"
)

func TestDefaultSettingsEnablesErrorButNotStyle(t *testing.T) {
	s := config.DefaultSettings()
	assert.True(t, s.SeverityEnabled(diagnostics.SeverityError))
	assert.False(t, s.SeverityEnabled(diagnostics.SeverityStyle))
}

func TestBuildFromFlagsParsesStandardAndSeverities(t *testing.T) {
	s, rest, err := config.BuildFromFlags([]string{
		"--std", "c++11",
		"--enable-style",
		"--disable-warning",
		"--inconclusive",
		"--pointer-bits", "32",
		"file.cpp",
	})
	require.NoError(t, err)
	assert.Equal(t, config.StandardCpp11, s.Standard)
	assert.True(t, s.Inconclusive)
	assert.True(t, s.SeverityEnabled(diagnostics.SeverityStyle))
	assert.False(t, s.SeverityEnabled(diagnostics.SeverityWarning))
	assert.Equal(t, 32, s.Platform.PointerBits)
	assert.Equal(t, []string{"file.cpp"}, rest)
}

func TestBuildFromFlagsRejectsUnknownStandard(t *testing.T) {
	_, _, err := config.BuildFromFlags([]string{"--std", "c++99"})
	assert.Error(t, err)
}

func TestBuildFromFlagsHelpReturnsErrHelp(t *testing.T) {
	_, _, err := config.BuildFromFlags([]string{"--help"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestLoadLibraryConfigParsesFunctionsAndContainers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "std.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: std
functions:
  printf:
    name: printf
    formatStringArgNo: 1
  scanf:
    name: scanf
    formatStringArgNo: 1
    scanf: true
  abort:
    name: abort
    noreturn: true
containers:
  vector:
    name: vector
    elementTypePos: 1
smartPointers:
  unique_ptr:
    name: unique_ptr
    unique: true
`), 0o644))

	lc, err := config.LoadLibraryConfig(path)
	require.NoError(t, err)

	argNo, scanf, ok := lc.IsFormatFunction("printf")
	require.True(t, ok)
	assert.Equal(t, 1, argNo)
	assert.False(t, scanf)

	_, scanf, ok = lc.IsFormatFunction("scanf")
	require.True(t, ok)
	assert.True(t, scanf)

	assert.True(t, lc.IsNoreturn("abort"))
	assert.False(t, lc.IsNoreturn("printf"))

	_, _, ok = lc.IsFormatFunction("memcpy")
	assert.False(t, ok)
}

func TestMergeLaterConfigWins(t *testing.T) {
	a := &config.LibraryConfig{Functions: map[string]config.FunctionRecord{
		"foo": {Name: "foo", Noreturn: false},
	}}
	b := &config.LibraryConfig{Functions: map[string]config.FunctionRecord{
		"foo": {Name: "foo", Noreturn: true},
	}}
	merged := config.Merge(a, b)
	assert.True(t, merged.IsNoreturn("foo"))
}

func TestLoadDotEnvMissingFileIsNotError(t *testing.T) {
	err := config.LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}
