package reverse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
	"github.com/oxhq/cppscan/internal/valueflow"
	"github.com/oxhq/cppscan/internal/valueflow/concrete"
	"github.com/oxhq/cppscan/internal/valueflow/forward"
	"github.com/oxhq/cppscan/internal/valueflow/reverse"
)

func parseC(t *testing.T, src string) *cxxtoken.List {
	t.Helper()
	list, err := cxxtoken.Parse(context.Background(), cxxtoken.CGrammar{}, "t.c", 0, []byte(src))
	require.NoError(t, err)
	return list
}

func findByStr(t *testing.T, list *cxxtoken.List, str string, occurrence int) *cxxtoken.Token {
	t.Helper()
	n := 0
	for _, tok := range list.All() {
		if tok.Str() == str {
			if n == occurrence {
				return tok
			}
			n++
		}
	}
	t.Fatalf("occurrence %d of %q not found", occurrence, str)
	return nil
}

// Seeds are deliberately taken from inside a call argument rather than
// a return statement's own operand: walking backward from a seed whose
// immediately preceding token is itself "return" hits spec.md §4.4's
// "stops at ... return" rule on the very first step (the seed's own
// enclosing statement), mirroring original_source/lib/reverseanalyzer.cpp's
// `Token::Match(tok, "return|break|continue")` check.
func TestReverseWalkFindsPriorAssignment(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	used := findByStr(t, list, "x", 1) // the "x" passed to g
	fnScope := db.EnclosingFunctionScope(used)
	require.NotNil(t, fnScope)

	analyzer := concrete.NewSameExpression(used)
	res := reverse.Walk(context.Background(), db, used, fnScope.BodyStart, analyzer, forward.DefaultSettings())

	assert.True(t, res.Action.Has(valueflow.ActionWrite))
}

func TestReverseWalkStopsAtFunctionEntry(t *testing.T) {
	list := parseC(t, "int f() { g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	used := findByStr(t, list, "x", 0)
	fnScope := db.EnclosingFunctionScope(used)
	require.NotNil(t, fnScope)

	analyzer := concrete.NewSameExpression(used)
	res := reverse.Walk(context.Background(), db, used, fnScope.BodyStart, analyzer, forward.DefaultSettings())

	assert.Equal(t, valueflow.TerminateNone, res.Terminate)
	assert.False(t, res.Action.Has(valueflow.ActionWrite))
}

func TestReverseWalkCancelledContextBails(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; g(x); }")
	db := symbols.Build(list, symbols.DefaultSettings())

	used := findByStr(t, list, "x", 1)
	fnScope := db.EnclosingFunctionScope(used)
	require.NotNil(t, fnScope)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := concrete.NewSameExpression(used)
	res := reverse.Walk(ctx, db, used, fnScope.BodyStart, analyzer, forward.DefaultSettings())
	assert.Equal(t, valueflow.TerminateBail, res.Terminate)
}
