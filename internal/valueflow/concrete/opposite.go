package concrete

import (
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/valueflow"
)

// OppositeExpression tracks the logical negation of an expression: it
// matches both the tracked expression itself (so writes still
// invalidate it) and its negation `!expr`, firing Match on the latter.
type OppositeExpression struct {
	inner *SameExpression
}

func NewOppositeExpression(tok *cxxtoken.Token) *OppositeExpression {
	return &OppositeExpression{inner: NewSameExpression(tok)}
}

func (o *OppositeExpression) Analyze(tok *cxxtoken.Token, dir valueflow.Direction) valueflow.Action {
	if isNegation(tok, o.inner.Target) {
		return valueflow.ActionRead | valueflow.ActionMatch
	}
	return o.inner.Analyze(tok, dir)
}

func (o *OppositeExpression) Update(tok *cxxtoken.Token, action valueflow.Action, dir valueflow.Direction) {
	o.inner.Update(tok, action, dir)
}

func (o *OppositeExpression) Evaluate(kind valueflow.EvalKind, tok *cxxtoken.Token, ctx *cxxtoken.Token) []int64 {
	return o.inner.Evaluate(kind, tok, ctx)
}

func (o *OppositeExpression) LowerToPossible() bool     { return o.inner.LowerToPossible() }
func (o *OppositeExpression) LowerToInconclusive() bool { return o.inner.LowerToInconclusive() }
func (o *OppositeExpression) UpdateScope(endBlock *cxxtoken.Token, modified bool) bool {
	return o.inner.UpdateScope(endBlock, modified)
}
func (o *OppositeExpression) IsConditional() bool { return o.inner.IsConditional() }
func (o *OppositeExpression) StopOnCondition(condTok *cxxtoken.Token) bool {
	return o.inner.StopOnCondition(condTok)
}
func (o *OppositeExpression) Assume(tok *cxxtoken.Token, state bool, flags valueflow.AssumeFlags) {
	o.inner.Assume(tok, state, flags)
}
func (o *OppositeExpression) Reanalyze(tok *cxxtoken.Token, msg string) valueflow.Analyzer {
	return NewOppositeExpression(tok)
}
func (o *OppositeExpression) Invalid() bool { return o.inner.Invalid() }
func (o *OppositeExpression) Clone() valueflow.Analyzer {
	cp := *o.inner
	return &OppositeExpression{inner: &cp}
}
