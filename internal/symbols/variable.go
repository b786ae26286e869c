package symbols

import "github.com/oxhq/cppscan/internal/cxxtoken"

// VarKind enumerates where a Variable is declared.
type VarKind int

const (
	VarGlobal VarKind = iota
	VarStatic
	VarExtern
	VarArgument
	VarLocal
	VarMember
	VarThrow
)

// VarFlags is a typed bit-set of boolean Variable attributes, following
// DESIGN NOTES §9 ("keep as typed bit-flags with named accessors, not
// raw integers").
type VarFlags uint32

const (
	VarConst VarFlags = 1 << iota
	VarPointer
	VarReference
	VarRValueRef
	VarArray
	VarSTL
	VarSmartPointer
	VarMaybeUnused
	VarInit
)

func (f VarFlags) Has(bit VarFlags) bool { return f&bit != 0 }

// Dimension describes one array dimension of a Variable.
type Dimension struct {
	Known bool
	Size  int64
}

// VariableID indexes into Database.variables.
type VariableID int

// Variable is one declared name: a global, a local, a function
// argument, or a class member.
type Variable struct {
	ID            VariableID
	NameToken     *cxxtoken.Token
	TypeStart     *cxxtoken.Token
	TypeEnd       *cxxtoken.Token
	Kind          VarKind
	Index         int // position within its owning scope
	Access        Access
	ResolvedType  TypeID
	HasResolvedType bool
	ValueType     *ValueType
	Dimensions    []Dimension
	Flags         VarFlags
	declID        uint32
}

// DeclarationID returns the id other tokens use to refer back to this
// variable, or 0 if the variable was never assigned one (meaning it
// cannot be referenced elsewhere in the token stream — e.g. an
// anonymous bit-field).
func (v *Variable) DeclarationID() uint32 { return v.declID }

// Access is a class member's access specifier.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)
