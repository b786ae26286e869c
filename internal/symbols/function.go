package symbols

import "github.com/oxhq/cppscan/internal/cxxtoken"

// FunctionKind classifies the special role a member function plays.
type FunctionKind int

const (
	FuncPlain FunctionKind = iota
	FuncConstructor
	FuncCopyConstructor
	FuncMoveConstructor
	FuncDestructor
	FuncOperatorEqual
	FuncLambda
)

// FuncFlags is a typed bit-set of Function specifiers.
type FuncFlags uint32

const (
	FuncHasBody FuncFlags = 1 << iota
	FuncInline
	FuncConst
	FuncVirtual
	FuncPure
	FuncStatic
	FuncExtern
	FuncFriend
	FuncExplicit
	FuncDefault
	FuncDelete
	FuncOverride
	FuncFinal
	FuncNoexcept
	FuncThrowSpec
	FuncOperator
	FuncLValueRefQual
	FuncRValueRefQual
	FuncVariadic
	FuncVolatile
	FuncTrailingReturn
	FuncConstexpr
	FuncEscape // the function's return value escapes (used by lifetime analysis)
)

func (f FuncFlags) Has(bit FuncFlags) bool { return f&bit != 0 }

// FunctionID indexes into Database.functions.
type FunctionID int

// Function is a resolved function or member-function declaration.
type Function struct {
	ID            FunctionID
	NameToken     *cxxtoken.Token
	ArgListStart  *cxxtoken.Token
	BodyStart     *cxxtoken.Token // nil if only declared, not defined
	RetTypeStart  *cxxtoken.Token
	RetTypeEnd    *cxxtoken.Token
	RetType       TypeID
	HasRetType    bool
	Arguments     []VariableID
	Kind          FunctionKind
	Scope         ScopeID
	Flags         FuncFlags
	DerivedFrom   []FunctionID // base-class functions with the same name+signature, for isImplicitlyVirtual
}

// IsImplicitlyVirtual implements spec.md §4.1's recursive walk: a
// function is implicitly virtual if any base's matching function is
// marked virtual. defaultVal is returned when base information is
// missing, mirroring "missing base info yields the caller-supplied
// default".
func (f *Function) IsImplicitlyVirtual(db *Database, defaultVal bool) bool {
	return f.isImplicitlyVirtual(db, defaultVal, make(map[FunctionID]bool))
}

func (f *Function) isImplicitlyVirtual(db *Database, defaultVal bool, visited map[FunctionID]bool) bool {
	if f.Flags.Has(FuncVirtual) {
		return true
	}
	if visited[f.ID] {
		return false // cycle guard; malformed base lists shouldn't hang
	}
	visited[f.ID] = true
	if len(f.DerivedFrom) == 0 {
		return defaultVal
	}
	for _, baseID := range f.DerivedFrom {
		base := db.Function(baseID)
		if base == nil {
			return defaultVal
		}
		if base.isImplicitlyVirtual(db, defaultVal, visited) {
			return true
		}
	}
	return false
}
