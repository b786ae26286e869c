// Package symbols builds the per-translation-unit symbol database: the
// scope tree, resolved types, variables and functions, and the
// bottom-up ValueType annotations every downstream value-flow pass
// depends on.
package symbols

import "github.com/oxhq/cppscan/internal/cxxtoken"

// ScopeKind enumerates the kinds of lexical scope the database tracks.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeNamespace
	ScopeClass
	ScopeStruct
	ScopeUnion
	ScopeEnum
	ScopeFunction
	ScopeIf
	ScopeElse
	ScopeFor
	ScopeWhile
	ScopeDo
	ScopeSwitch
	ScopeTry
	ScopeCatch
	ScopeLambda
	ScopeUnconditional
)

func (k ScopeKind) String() string {
	names := [...]string{
		"Global", "Namespace", "Class", "Struct", "Union", "Enum",
		"Function", "If", "Else", "For", "While", "Do", "Switch", "Try",
		"Catch", "Lambda", "Unconditional",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// IsExecutable reports whether a scope of this kind contains statements
// (as opposed to Class/Struct/Union/Enum member-declaration scopes).
func (k ScopeKind) IsExecutable() bool {
	switch k {
	case ScopeClass, ScopeStruct, ScopeUnion, ScopeEnum, ScopeNamespace, ScopeGlobal:
		return false
	default:
		return true
	}
}

// Scope is one node of the lexical scope tree. Scopes index into the
// Database's arenas; a zero ScopeID means "no scope" / global.
type ScopeID int

type Scope struct {
	ID         ScopeID
	Kind       ScopeKind
	ClassName  string
	BodyStart  *cxxtoken.Token
	BodyEnd    *cxxtoken.Token
	Parent     ScopeID
	hasParent  bool
	Children   []ScopeID
	Variables  []VariableID
	Functions  []FunctionID
	DefinedType TypeID // set when Kind is Class/Struct/Union/Enum and a Type owns this scope
}

// scopeIDOf converts a token's borrowed ScopeRef (set via
// Token.SetScope, 1-indexed so the zero value means "unresolved") back
// to the ScopeID it denotes, defaulting to the global scope.
func scopeIDOf(ref cxxtoken.ScopeRef) ScopeID {
	if !ref.Valid() {
		return 0
	}
	return ScopeID(ref.Index() - 1)
}

// ParentID returns the enclosing scope and whether one exists (the
// global scope has none).
func (s *Scope) ParentID() (ScopeID, bool) { return s.Parent, s.hasParent }

// Depth returns the number of enclosing scopes by walking Parent links
// through db; used to compute the indent delta file-usage tracking
// needs on scope exit.
func (s *Scope) Depth(db *Database) int {
	depth := 0
	cur := s
	for {
		pid, ok := cur.ParentID()
		if !ok {
			return depth
		}
		cur = db.Scope(pid)
		depth++
	}
}
