package symbols_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
)

func parseC(t *testing.T, src string) *cxxtoken.List {
	t.Helper()
	list, err := cxxtoken.Parse(context.Background(), cxxtoken.CGrammar{}, "t.c", 0, []byte(src))
	require.NoError(t, err)
	return list
}

func TestBuildScopesCreatesFunctionScope(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; return x; }")
	db := symbols.Build(list, symbols.DefaultSettings())

	var found bool
	for i := 0; i < 16; i++ {
		s := db.Scope(symbols.ScopeID(i))
		if s == nil {
			break
		}
		if s.Kind == symbols.ScopeFunction {
			found = true
			break
		}
		if i+1 >= 16 {
			break
		}
	}
	assert.True(t, found, "expected a ScopeFunction scope for f's body")
}

func TestBuildClassScopeTracksBases(t *testing.T) {
	list := parseC(t, "struct Base {}; struct Derived : public Base { int x; };")
	db := symbols.Build(list, symbols.DefaultSettings())

	derived := db.Type(symbols.TypeID(1))
	require.Len(t, derived.Bases, 1)
	assert.Equal(t, "Base", derived.Bases[0].NameToken.Str())
	assert.True(t, derived.Bases[0].HasType)
	assert.Equal(t, symbols.TypeID(0), derived.Bases[0].Resolved)

	assert.GreaterOrEqual(t, db.GlobalScope().Kind, symbols.ScopeGlobal)
}

func TestMatchParameterSameType(t *testing.T) {
	a := &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}
	b := &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}
	assert.Equal(t, symbols.MatchSame, a.MatchParameter(b))
}

func TestMatchParameterFallback(t *testing.T) {
	a := &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}
	b := &symbols.ValueType{Primary: symbols.PrimaryLong, Sign: symbols.SignSigned}
	assert.Equal(t, symbols.MatchFallback1, a.MatchParameter(b))
}

func TestMatchParameterUnknown(t *testing.T) {
	a := &symbols.ValueType{Primary: symbols.PrimaryUnknown}
	b := &symbols.ValueType{Primary: symbols.PrimaryInt}
	assert.Equal(t, symbols.MatchUnknown, a.MatchParameter(b))
}

func TestValueTypeAssignmentIsIdempotent(t *testing.T) {
	list := parseC(t, "int f() { int x = 3; return x + 1; }")
	db1 := symbols.Build(list, symbols.DefaultSettings())

	list2 := parseC(t, "int f() { int x = 3; return x + 1; }")
	db2 := symbols.Build(list2, symbols.DefaultSettings())

	var got1, got2 []string
	for _, tok := range list.All() {
		if vt, ok := tok.ValueType().(*symbols.ValueType); ok {
			got1 = append(got1, vt.Primary.String())
		}
	}
	for _, tok := range list2.All() {
		if vt, ok := tok.ValueType().(*symbols.ValueType); ok {
			got2 = append(got2, vt.Primary.String())
		}
	}
	assert.Equal(t, got1, got2)
}

func TestIsImplicitlyVirtualDefaultsWhenBaseMissing(t *testing.T) {
	fn := &symbols.Function{ID: 0}
	assert.True(t, fn.IsImplicitlyVirtual(&symbols.Database{}, true))
	assert.False(t, fn.IsImplicitlyVirtual(&symbols.Database{}, false))
}
