package concrete

import (
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/valueflow"
)

// SameExpression tracks a single expression identity (by structural AST
// shape, see SameAST) across a forward or reverse walk. Match fires
// whenever an occurrence of the same expression is encountered;
// occurrences used as an assignment's left-hand side invalidate it.
type SameExpression struct {
	Target *cxxtoken.Token
	VarID  uint32

	invalid     bool
	conditional bool
	assumedTok  *cxxtoken.Token
	assumedTrue bool
}

// NewSameExpression seeds a tracker for the expression rooted at tok.
func NewSameExpression(tok *cxxtoken.Token) *SameExpression {
	return &SameExpression{Target: tok, VarID: tok.VarID()}
}

func (s *SameExpression) Analyze(tok *cxxtoken.Token, dir valueflow.Direction) valueflow.Action {
	if !SameAST(tok, s.Target) {
		return valueflow.ActionNone
	}
	if isWriteTarget(tok) {
		return valueflow.ActionWrite | valueflow.ActionMatch
	}
	return valueflow.ActionRead | valueflow.ActionMatch
}

func (s *SameExpression) Update(tok *cxxtoken.Token, action valueflow.Action, dir valueflow.Direction) {
	if action.Has(valueflow.ActionWrite) {
		s.invalid = true
	}
}

func (s *SameExpression) Evaluate(kind valueflow.EvalKind, tok *cxxtoken.Token, ctx *cxxtoken.Token) []int64 {
	if kind == valueflow.EvalIntegral && s.assumedTok != nil && SameAST(tok, s.assumedTok) {
		if s.assumedTrue {
			return []int64{1}
		}
		return []int64{0}
	}
	return nil
}

func (s *SameExpression) LowerToPossible() bool     { return true }
func (s *SameExpression) LowerToInconclusive() bool { return true }

func (s *SameExpression) UpdateScope(endBlock *cxxtoken.Token, modified bool) bool { return modified }

func (s *SameExpression) IsConditional() bool                    { return s.conditional }
func (s *SameExpression) StopOnCondition(condTok *cxxtoken.Token) bool { return false }

func (s *SameExpression) Assume(tok *cxxtoken.Token, state bool, flags valueflow.AssumeFlags) {
	s.assumedTok = tok
	s.assumedTrue = state
	s.conditional = true
}

func (s *SameExpression) Reanalyze(tok *cxxtoken.Token, msg string) valueflow.Analyzer {
	return NewSameExpression(tok)
}

func (s *SameExpression) Invalid() bool { return s.invalid }

func (s *SameExpression) Clone() valueflow.Analyzer {
	cp := *s
	return &cp
}
