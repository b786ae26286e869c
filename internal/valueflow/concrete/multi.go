package concrete

import (
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/valueflow"
)

// MultiValueFlow joins several single-expression trackers into one
// assumption, used for range intersection across correlated conditions
// (e.g. `if (a < b && b < c)` relates a, b and c). Each member tracks
// its own expression; Assume broadcasts to every member whose target
// appears in the assumed condition, and the joint analyzer is invalid
// once any member is.
type MultiValueFlow struct {
	Members []*SameExpression
}

// NewMultiValueFlow seeds one SameExpression tracker per token in
// exprs.
func NewMultiValueFlow(exprs ...*cxxtoken.Token) *MultiValueFlow {
	m := &MultiValueFlow{}
	for _, e := range exprs {
		m.Members = append(m.Members, NewSameExpression(e))
	}
	return m
}

func (m *MultiValueFlow) Analyze(tok *cxxtoken.Token, dir valueflow.Direction) valueflow.Action {
	var result valueflow.Action
	for _, member := range m.Members {
		result |= member.Analyze(tok, dir)
	}
	return result
}

func (m *MultiValueFlow) Update(tok *cxxtoken.Token, action valueflow.Action, dir valueflow.Direction) {
	for _, member := range m.Members {
		if member.Analyze(tok, dir) != valueflow.ActionNone {
			member.Update(tok, action, dir)
		}
	}
}

func (m *MultiValueFlow) Evaluate(kind valueflow.EvalKind, tok *cxxtoken.Token, ctx *cxxtoken.Token) []int64 {
	for _, member := range m.Members {
		if vals := member.Evaluate(kind, tok, ctx); vals != nil {
			return vals
		}
	}
	return nil
}

func (m *MultiValueFlow) LowerToPossible() bool {
	ok := true
	for _, member := range m.Members {
		ok = member.LowerToPossible() && ok
	}
	return ok
}

func (m *MultiValueFlow) LowerToInconclusive() bool {
	ok := true
	for _, member := range m.Members {
		ok = member.LowerToInconclusive() && ok
	}
	return ok
}

func (m *MultiValueFlow) UpdateScope(endBlock *cxxtoken.Token, modified bool) bool {
	for _, member := range m.Members {
		if member.UpdateScope(endBlock, modified) {
			return true
		}
	}
	return false
}

func (m *MultiValueFlow) IsConditional() bool { return true }

func (m *MultiValueFlow) StopOnCondition(condTok *cxxtoken.Token) bool { return false }

// Assume broadcasts the condition to every member whose tracked
// expression occurs within condTok's AST, implementing the range-
// intersection shape of correlated conditions.
func (m *MultiValueFlow) Assume(tok *cxxtoken.Token, state bool, flags valueflow.AssumeFlags) {
	for _, member := range m.Members {
		if occursIn(tok, member.Target) {
			member.Assume(tok, state, flags)
		}
	}
}

func occursIn(tree, target *cxxtoken.Token) bool {
	if tree == nil {
		return false
	}
	if SameAST(tree, target) {
		return true
	}
	return occursIn(tree.AstOperand1(), target) || occursIn(tree.AstOperand2(), target)
}

func (m *MultiValueFlow) Reanalyze(tok *cxxtoken.Token, msg string) valueflow.Analyzer {
	return NewMultiValueFlow(tok)
}

func (m *MultiValueFlow) Invalid() bool {
	for _, member := range m.Members {
		if member.Invalid() {
			return true
		}
	}
	return false
}

func (m *MultiValueFlow) Clone() valueflow.Analyzer {
	cp := &MultiValueFlow{Members: make([]*SameExpression, len(m.Members))}
	for i, member := range m.Members {
		c := member.Clone().(*SameExpression)
		cp.Members[i] = c
	}
	return cp
}
