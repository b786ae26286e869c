package concrete_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/valueflow"
	"github.com/oxhq/cppscan/internal/valueflow/concrete"
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

func TestSameASTMatchesIdenticalExpressions(t *testing.T) {
	list := parseC(t, "int f() { return a + b; }")
	first := findByStr(t, list, "a", 0)
	plus := first.AstParent()
	require.NotNil(t, plus)

	// a second, independently-parsed occurrence of the same expression
	// shape should compare equal structurally even though it is a
	// distinct token.
	list2 := parseC(t, "int f() { return a + b; }")
	second := findByStr(t, list2, "a", 0)
	plus2 := second.AstParent()

	assert.True(t, concrete.SameAST(plus, plus2))
}

func TestSameASTRejectsDifferentOperators(t *testing.T) {
	list := parseC(t, "int f() { return a + b; }")
	a := findByStr(t, list, "a", 0)
	plus := a.AstParent()

	list2 := parseC(t, "int f() { return a - b; }")
	a2 := findByStr(t, list2, "a", 0)
	minus := a2.AstParent()

	assert.False(t, concrete.SameAST(plus, minus))
}

func TestSameExpressionFiresMatchOnRecurrence(t *testing.T) {
	// "x" occurs 4 times: the declaration, the assignment's LHS, the
	// assignment's RHS operand, and the final return.
	list := parseC(t, "int f() { int x; x = x + 1; return x; }")
	declared := findByStr(t, list, "x", 0)
	returned := findByStr(t, list, "x", 3)

	analyzer := concrete.NewSameExpression(declared)
	action := analyzer.Analyze(returned, valueflow.Forward)
	assert.True(t, action.Matches())
	assert.True(t, action.Has(valueflow.ActionRead))
	assert.False(t, action.Has(valueflow.ActionWrite))
}

func TestSameExpressionInvalidatesOnWrite(t *testing.T) {
	list := parseC(t, "int f() { int x; x = 1; return x; }")
	declared := findByStr(t, list, "x", 0)
	lhs := findByStr(t, list, "x", 1) // the assignment target

	analyzer := concrete.NewSameExpression(declared)
	action := analyzer.Analyze(lhs, valueflow.Forward)
	require.True(t, action.Has(valueflow.ActionWrite))
	analyzer.Update(lhs, action, valueflow.Forward)
	assert.True(t, analyzer.Invalid())
}

func TestSameExpressionCloneIsIndependent(t *testing.T) {
	list := parseC(t, "int f() { int x; x = 1; return x; }")
	declared := findByStr(t, list, "x", 0)
	lhs := findByStr(t, list, "x", 1)

	analyzer := concrete.NewSameExpression(declared)
	clone := analyzer.Clone()
	action := analyzer.Analyze(lhs, valueflow.Forward)
	analyzer.Update(lhs, action, valueflow.Forward)
	require.True(t, analyzer.Invalid())

	assert.False(t, clone.Invalid())
}
