package concrete

import (
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/valueflow"
)

// MemberExpression tracks a base object plus a member-name chain
// (`base.member` / `base->member`). Unlike SameExpression it keeps
// partial-read tracking: a read of a sibling member (same base,
// different name) does not invalidate what is known about the tracked
// member.
type MemberExpression struct {
	Base   *cxxtoken.Token
	Member string

	invalid bool
}

// NewMemberExpression seeds a tracker for `base.member`/`base->member`
// rooted at accessTok (the "." or "->" token).
func NewMemberExpression(accessTok *cxxtoken.Token) *MemberExpression {
	return &MemberExpression{Base: accessTok.AstOperand1(), Member: accessTok.AstOperand2().Str()}
}

func (m *MemberExpression) matches(tok *cxxtoken.Token) bool {
	if !tok.IsOp(".", "->") {
		return false
	}
	op2 := tok.AstOperand2()
	return op2 != nil && op2.Str() == m.Member && SameAST(tok.AstOperand1(), m.Base)
}

// isSiblingAccess reports whether tok accesses a different member of
// the same tracked base — the case partial-read tracking must not
// invalidate.
func (m *MemberExpression) isSiblingAccess(tok *cxxtoken.Token) bool {
	if !tok.IsOp(".", "->") {
		return false
	}
	op2 := tok.AstOperand2()
	return op2 != nil && op2.Str() != m.Member && SameAST(tok.AstOperand1(), m.Base)
}

func (m *MemberExpression) Analyze(tok *cxxtoken.Token, dir valueflow.Direction) valueflow.Action {
	if m.isSiblingAccess(tok) {
		return valueflow.ActionNone // a sibling member read/write doesn't touch what we track
	}
	if !m.matches(tok) {
		return valueflow.ActionNone
	}
	if isWriteTarget(tok) {
		return valueflow.ActionWrite | valueflow.ActionMatch
	}
	return valueflow.ActionRead | valueflow.ActionMatch
}

func (m *MemberExpression) Update(tok *cxxtoken.Token, action valueflow.Action, dir valueflow.Direction) {
	if action.Has(valueflow.ActionWrite) {
		m.invalid = true
	}
}

func (m *MemberExpression) Evaluate(kind valueflow.EvalKind, tok *cxxtoken.Token, ctx *cxxtoken.Token) []int64 {
	return nil
}

func (m *MemberExpression) LowerToPossible() bool     { return true }
func (m *MemberExpression) LowerToInconclusive() bool { return true }
func (m *MemberExpression) UpdateScope(endBlock *cxxtoken.Token, modified bool) bool {
	return modified
}
func (m *MemberExpression) IsConditional() bool                        { return false }
func (m *MemberExpression) StopOnCondition(condTok *cxxtoken.Token) bool { return false }
func (m *MemberExpression) Assume(tok *cxxtoken.Token, state bool, flags valueflow.AssumeFlags) {}
func (m *MemberExpression) Reanalyze(tok *cxxtoken.Token, msg string) valueflow.Analyzer {
	if tok.IsOp(".", "->") {
		return NewMemberExpression(tok)
	}
	return NewSameExpression(tok)
}
func (m *MemberExpression) Invalid() bool { return m.invalid }
func (m *MemberExpression) Clone() valueflow.Analyzer {
	cp := *m
	return &cp
}
