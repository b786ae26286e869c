package checks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/checks"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

func TestUninitReadDetectsUseBeforeAssignment(t *testing.T) {
	list := parseC(t, "int f() { int x; g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.UninitRead{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)

	var ids []string
	for _, d := range sink.Findings() {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "uninitializedVariable")
}

func TestUninitReadIgnoresInitializedDeclaration(t *testing.T) {
	list := parseC(t, "int f() { int x = 0; g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.UninitRead{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Findings())
}

func TestUninitReadIgnoresReadAfterAssignment(t *testing.T) {
	list := parseC(t, "int f() { int x; x = 3; g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.UninitRead{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Findings())
}
