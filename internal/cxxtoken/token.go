// Package cxxtoken adapts a tree-sitter C/C++ parse tree into the
// doubly-linked, AST-pointered token stream the rest of this module
// expects: Next/Previous, Link, AstOperand1/2, AstParent, plus the
// writable Scope/Variable/Function/Enumerator/ValueType/Values slots
// the symbol database and value-flow engines fill in later.
package cxxtoken

// TokType classifies a token's lexical category.
type TokType int

const (
	TokUnknown TokType = iota
	TokName
	TokNumber
	TokChar
	TokString
	TokOp
	TokIncDec
	TokKeyword
	TokComma
	TokBracket // ( ) { } [ ]
)

func (t TokType) String() string {
	switch t {
	case TokName:
		return "name"
	case TokNumber:
		return "number"
	case TokChar:
		return "char"
	case TokString:
		return "string"
	case TokOp:
		return "op"
	case TokIncDec:
		return "incdec"
	case TokKeyword:
		return "keyword"
	case TokComma:
		return "comma"
	case TokBracket:
		return "bracket"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a translation unit. Tokens are owned by
// the enclosing List; every other pointer into a Token is a borrow that
// must not outlive the List.
type Token struct {
	str  string
	typ  TokType
	file int
	line int
	col  int

	index int
	list  *List

	link       *Token
	astOp1     *Token
	astOp2     *Token
	astParent  *Token

	scope    ScopeRef
	variable VariableRef
	function FunctionRef

	varID  uint32
	exprID uint32

	valueType any // *symbols.ValueType, kept untyped to avoid an import cycle
	values    []any
}

// ScopeRef/VariableRef/FunctionRef are opaque arena indices set by
// internal/symbols. A zero value means "unresolved".
type ScopeRef struct{ idx int }
type VariableRef struct{ idx int }
type FunctionRef struct{ idx int }

func (r ScopeRef) Valid() bool    { return r.idx != 0 }
func (r VariableRef) Valid() bool { return r.idx != 0 }
func (r FunctionRef) Valid() bool { return r.idx != 0 }

func (r ScopeRef) Index() int    { return r.idx }
func (r VariableRef) Index() int { return r.idx }
func (r FunctionRef) Index() int { return r.idx }

func NewScopeRef(idx int) ScopeRef       { return ScopeRef{idx: idx} }
func NewVariableRef(idx int) VariableRef { return VariableRef{idx: idx} }
func NewFunctionRef(idx int) FunctionRef { return FunctionRef{idx: idx} }

func (t *Token) Str() string  { return t.str }
func (t *Token) Type() TokType { return t.typ }
func (t *Token) File() int    { return t.file }
func (t *Token) Line() int    { return t.line }
func (t *Token) Column() int  { return t.col }
func (t *Token) Index() int   { return t.index }

func (t *Token) Next() *Token {
	if t == nil || t.index+1 >= len(t.list.toks) {
		return nil
	}
	return t.list.toks[t.index+1]
}

func (t *Token) Previous() *Token {
	if t == nil || t.index == 0 {
		return nil
	}
	return t.list.toks[t.index-1]
}

func (t *Token) Link() *Token      { return t.link }
func (t *Token) SetLink(o *Token)  { t.link = o; if o != nil { o.link = t } }

func (t *Token) AstOperand1() *Token { return t.astOp1 }
func (t *Token) AstOperand2() *Token { return t.astOp2 }
func (t *Token) AstParent() *Token   { return t.astParent }

// SetAstOperand links child as an operand of t, maintaining the
// invariant that child.AstParent() == t.
func (t *Token) SetAstOperand1(child *Token) {
	t.astOp1 = child
	if child != nil {
		child.astParent = t
	}
}

func (t *Token) SetAstOperand2(child *Token) {
	t.astOp2 = child
	if child != nil {
		child.astParent = t
	}
}

func (t *Token) Scope() ScopeRef       { return t.scope }
func (t *Token) SetScope(s ScopeRef)   { t.scope = s }
func (t *Token) Variable() VariableRef { return t.variable }
func (t *Token) SetVariable(v VariableRef) { t.variable = v }
func (t *Token) Function() FunctionRef { return t.function }
func (t *Token) SetFunction(f FunctionRef) { t.function = f }

func (t *Token) VarID() uint32      { return t.varID }
func (t *Token) SetVarID(id uint32) { t.varID = id }
func (t *Token) ExprID() uint32     { return t.exprID }
func (t *Token) SetExprID(id uint32) { t.exprID = id }

func (t *Token) ValueType() any     { return t.valueType }
func (t *Token) SetValueType(vt any) { t.valueType = vt }

func (t *Token) Values() []any { return t.values }
func (t *Token) AddValue(v any) { t.values = append(t.values, v) }
func (t *Token) ClearValues()  { t.values = nil }

// IsOp reports whether the token's image matches one of the given
// operator spellings.
func (t *Token) IsOp(spellings ...string) bool {
	if t.typ != TokOp && t.typ != TokBracket && t.typ != TokComma {
		return false
	}
	for _, s := range spellings {
		if t.str == s {
			return true
		}
	}
	return false
}
