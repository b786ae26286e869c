package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
)

func nameToken(t *testing.T, list *cxxtoken.List, name string) *cxxtoken.Token {
	t.Helper()
	for _, tok := range list.All() {
		if tok.Type() == cxxtoken.TokName && tok.Str() == name {
			return tok
		}
	}
	t.Fatalf("no token named %q", name)
	return nil
}

func TestAddVariableRecognizesFixedArrayDeclarator(t *testing.T) {
	list := parseC(t, "void f() { char buf[16]; buf[0] = 0; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	v, ok := db.VariableOf(nameToken(t, list, "buf"))
	require.True(t, ok)
	assert.True(t, v.Flags.Has(symbols.VarArray))
	require.Len(t, v.Dimensions, 1)
	assert.True(t, v.Dimensions[0].Known)
	assert.EqualValues(t, 16, v.Dimensions[0].Size)
}

func TestAddVariableRecognizesUnsizedArrayDeclarator(t *testing.T) {
	list := parseC(t, "int xs[] = {1, 2, 3};")
	db := symbols.Build(list, symbols.DefaultSettings())

	v, ok := db.VariableOf(nameToken(t, list, "xs"))
	require.True(t, ok)
	assert.True(t, v.Flags.Has(symbols.VarArray))
	require.Len(t, v.Dimensions, 1)
	assert.False(t, v.Dimensions[0].Known)
}

func TestAddVariableRecognizesMultiDimensionalArray(t *testing.T) {
	list := parseC(t, "int grid[3][4];")
	db := symbols.Build(list, symbols.DefaultSettings())

	v, ok := db.VariableOf(nameToken(t, list, "grid"))
	require.True(t, ok)
	require.Len(t, v.Dimensions, 2)
	assert.EqualValues(t, 3, v.Dimensions[0].Size)
	assert.EqualValues(t, 4, v.Dimensions[1].Size)
}

func TestAddVariableScalarDeclarationHasNoArrayFlag(t *testing.T) {
	list := parseC(t, "void f() { int x = 3; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	v, ok := db.VariableOf(nameToken(t, list, "x"))
	require.True(t, ok)
	assert.False(t, v.Flags.Has(symbols.VarArray))
	assert.Empty(t, v.Dimensions)
}
