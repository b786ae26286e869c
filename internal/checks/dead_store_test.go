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

func TestDeadStoreDetectsUnusedAssignment(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; x = 5; return 0; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.DeadStore{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)

	var ids []string
	for _, d := range sink.Findings() {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "unreadVariable")
}

func TestDeadStoreIgnoresAssignmentThatIsRead(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; return x; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.DeadStore{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Findings())
}

func TestDeadStoreIgnoresNonScalarLocals(t *testing.T) {
	list := parseC(t, "int f() { int x[4]; x[0] = 1; return 0; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	err := checks.DeadStore{}.Run(context.Background(), db, list, sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Findings())
}
