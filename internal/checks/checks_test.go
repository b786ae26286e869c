package checks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/checks"
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

func parseC(t *testing.T, src string) *cxxtoken.List {
	t.Helper()
	list, err := cxxtoken.Parse(context.Background(), cxxtoken.CGrammar{}, "t.c", 0, []byte(src))
	require.NoError(t, err)
	return list
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := checks.NewRegistry()
	require.NoError(t, r.Register(checks.ReturnDangling{}))
	assert.Error(t, r.Register(checks.ReturnDangling{}))
}

func TestRegistryAllIsSortedByID(t *testing.T) {
	r := checks.NewRegistry()
	require.NoError(t, r.Register(checks.FileUsage{}))
	require.NoError(t, r.Register(checks.ReturnDangling{}))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "fileUsage", all[0].ID())
	assert.Equal(t, "returnDangling", all[1].ID())
}

func TestReturnDanglingDetectsAddressOfLocal(t *testing.T) {
	list := parseC(t, "int* f() { int x = 3; return &x; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.ReturnDangling{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)

	findings := sink.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, "returnDanglingLifetime", findings[0].ID)
	assert.Len(t, findings[0].ErrorPath, 3)
}

func TestReturnDanglingIgnoresReturnedValueCopy(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; return x; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.ReturnDangling{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Findings())
}

func TestFileUsageDetectsWriteOnReadOnlyFile(t *testing.T) {
	list := parseC(t, `void f() { FILE *f = fopen("a", "r"); fwrite(buf, 1, 4, f); fclose(f); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.FileUsage{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)

	var sawWriteReadOnly bool
	for _, d := range sink.Findings() {
		if d.ID == "writeReadOnlyFile" {
			sawWriteReadOnly = true
		}
	}
	assert.True(t, sawWriteReadOnly)
}

func TestRunAllStopsOnCancelledContext(t *testing.T) {
	list := parseC(t, "int f() { return 0; }")
	db := symbols.Build(list, symbols.DefaultSettings())
	r := checks.NewRegistry()
	require.NoError(t, r.Register(checks.ReturnDangling{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := diagnostics.NewSink()
	err := checks.RunAll(ctx, r, db, list, sink)
	assert.Error(t, err)
}
