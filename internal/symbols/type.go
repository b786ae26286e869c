package symbols

import "github.com/oxhq/cppscan/internal/cxxtoken"

// TypeID indexes into Database.types.
type TypeID int

// NeedsInit is a tri-state answer to "does this type need explicit
// member initialization to be safely used" (unknown when the type's
// full definition hasn't been seen, e.g. a forward declaration).
type NeedsInit int

const (
	NeedsInitUnknown NeedsInit = iota
	NeedsInitYes
	NeedsInitNo
)

// BaseClass is one entry of a Type's base-class list.
type BaseClass struct {
	NameToken *cxxtoken.Token
	Resolved  TypeID
	HasType   bool
	Access    Access
	Virtual   bool
}

// Type is a class/struct/union/enum/alias definition.
type Type struct {
	ID           TypeID
	DefToken     *cxxtoken.Token
	ClassScope   ScopeID
	HasClassScope bool
	EnclosingScope ScopeID
	Bases        []BaseClass
	Friends      []TypeID
	NeedsInit    NeedsInit
	SizeofHint   int64
	HasSizeof    bool
}

// HasVirtualMember reports whether any function in this type's class
// scope is virtual. No check in this repository calls it.
func (t *Type) HasVirtualMember(db *Database) bool {
	if !t.HasClassScope {
		return false
	}
	scope := db.Scope(t.ClassScope)
	for _, fid := range scope.Functions {
		if fn := db.Function(fid); fn != nil && fn.Flags.Has(FuncVirtual) {
			return true
		}
	}
	return false
}
