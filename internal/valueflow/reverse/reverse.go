// Package reverse walks a token range backward from a seed toward the
// enclosing function's start, inferring what a tracked expression must
// have been, per spec.md §4.4. It shares the Analyzer contract with
// internal/valueflow/forward but mirrors the iteration direction and
// has its own control-flow rules: entering an if/else body backward
// means assuming its condition; an assignment found backward spawns a
// read-only forward pass on its right-hand side; loop bodies are
// treated as potentially modifying unless the analyzer proves
// otherwise; traversal stops at function entry, a label, break,
// continue, return, or a case label.
package reverse

import (
	"context"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
	"github.com/oxhq/cppscan/internal/valueflow"
	"github.com/oxhq/cppscan/internal/valueflow/forward"
)

type walker struct {
	ctx      context.Context
	db       *symbols.Database
	settings forward.Settings
}

// Walk walks tokens backward starting just before seed, stopping at
// funcStart (the enclosing function's opening brace) or an earlier
// control-flow boundary, whichever comes first.
func Walk(ctx context.Context, db *symbols.Database, seed, funcStart *cxxtoken.Token, a valueflow.Analyzer, settings forward.Settings) valueflow.Result {
	w := &walker{ctx: ctx, db: db, settings: settings}
	res := valueflow.Result{}
	w.walkBackward(seed.Previous(), funcStart, a, &res)
	return res
}

func (w *walker) cancelled() bool {
	select {
	case <-w.ctx.Done():
		return true
	default:
		return false
	}
}

func (w *walker) walkBackward(tok, stop *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	for tok != nil && tok != stop {
		if w.cancelled() {
			res.Terminate = valueflow.TerminateBail
			return
		}

		switch {
		case tok.Str() == "break", tok.Str() == "continue", tok.Str() == "return", tok.Str() == "case":
			res.Terminate = valueflow.TerminateEscape
			return

		case isLabel(tok):
			res.Terminate = valueflow.TerminateBail
			return

		case tok.IsOp("}"):
			open := tok.Link()
			if open == nil {
				tok = tok.Previous()
				continue
			}
			if kind, ok := w.scopeKind(open); ok {
				switch kind {
				case symbols.ScopeFor, symbols.ScopeWhile, symbols.ScopeDo:
					if a.UpdateScope(tok, true) {
						res.Terminate = valueflow.TerminateBail
						return
					}
					tok = open.Previous()
					continue
				case symbols.ScopeIf, symbols.ScopeElse:
					w.enterConditionalBody(open, kind, a, res)
					if res.Terminate != valueflow.TerminateNone {
						return
					}
					tok = open.Previous()
					continue
				}
			}
			// Unknown compound: walk its contents like ordinary statements.
			w.walkStatementsBackward(tok.Previous(), open, a, res)
			if res.Terminate != valueflow.TerminateNone {
				return
			}
			tok = open.Previous()
			continue

		case tok.AstParent() == nil && (tok.AstOperand1() != nil || tok.AstOperand2() != nil):
			w.visitStatement(tok, a, res)
			if res.Terminate != valueflow.TerminateNone {
				return
			}
			tok = w.statementStart(tok).Previous()
			continue

		default:
			tok = tok.Previous()
		}
	}
}

// walkStatementsBackward walks each statement in (start is the last
// token before `end`'s close, walking back to open) one at a time.
func (w *walker) walkStatementsBackward(tok, open *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	w.walkBackward(tok, open, a, res)
}

// enterConditionalBody assumes the if/else condition when the reverse
// walk crosses into its body from the outside.
func (w *walker) enterConditionalBody(open *cxxtoken.Token, kind symbols.ScopeKind, a valueflow.Analyzer, res *valueflow.Result) {
	close := open.Previous()
	if close == nil || !close.IsOp(")") {
		// else-branch with no parenthesized condition of its own; nothing to assume.
		return
	}
	condOpen := close.Link()
	var condTok *cxxtoken.Token
	for t := condOpen.Next(); t != nil && t != close; t = t.Next() {
		if t.AstParent() == nil {
			condTok = t
		}
	}
	if condTok == nil {
		return
	}
	a.Assume(condTok, kind == symbols.ScopeIf, valueflow.AssumeNone)
	w.walkBackward(close.Previous(), condOpen, a, res)
}

func (w *walker) scopeKind(brace *cxxtoken.Token) (symbols.ScopeKind, bool) {
	ref := brace.Scope()
	if !ref.Valid() || w.db == nil {
		return 0, false
	}
	s := w.db.Scope(symbols.ScopeID(ref.Index() - 1))
	if s.BodyStart != brace {
		return 0, false
	}
	return s.Kind, true
}

// visitStatement analyzes a statement's AST top-down and, if it is an
// assignment whose left-hand side could be the tracked expression,
// spawns a forward pass over the right-hand side on a snapshot of the
// analyzer — read-only on the outer (reverse) state, per the Open
// Question resolution in DESIGN.md.
func (w *walker) visitStatement(root *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	visitRecursive(root, func(tok *cxxtoken.Token) bool {
		if isUnevaluated(tok) {
			return false
		}
		action := a.Analyze(tok, valueflow.Reverse)
		if action.Has(valueflow.ActionInconclusive) && !a.LowerToInconclusive() {
			res.Terminate = valueflow.TerminateInconclusive
			return false
		}
		if action.Has(valueflow.ActionInvalid) {
			res.Terminate = valueflow.TerminateModified
			return false
		}
		if !action.IsNone() {
			a.Update(tok, action, valueflow.Reverse)
		}
		return res.Terminate == valueflow.TerminateNone
	})

	if isAssignment(root) && res.Terminate == valueflow.TerminateNone {
		rhs := root.AstOperand2()
		if rhs != nil {
			snapshot := a.Clone()
			_ = forward.Walk(w.ctx, w.db, rhs, root.AstParent(), snapshot, w.settings)
		}
	}
}

// statementStart finds the first token of the statement root belongs
// to, by walking backward to the previous ";"/"{"/"}".
func (w *walker) statementStart(root *cxxtoken.Token) *cxxtoken.Token {
	first := root
	for t := root.Previous(); t != nil; t = t.Previous() {
		if t.IsOp(";", "{", "}") {
			break
		}
		first = t
	}
	return first
}

// visitRecursive visits an AST subtree in pre-order (self before
// operands), stopping early when f returns false.
func visitRecursive(tok *cxxtoken.Token, f func(*cxxtoken.Token) bool) bool {
	if tok == nil {
		return true
	}
	if !f(tok) {
		return false
	}
	if !visitRecursive(tok.AstOperand1(), f) {
		return false
	}
	return visitRecursive(tok.AstOperand2(), f)
}

func isAssignment(tok *cxxtoken.Token) bool {
	switch tok.Str() {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	default:
		return false
	}
}

func isUnevaluated(tok *cxxtoken.Token) bool {
	prev := tok.Previous()
	if prev == nil {
		return false
	}
	switch prev.Str() {
	case "sizeof", "decltype", "typeid", "noexcept":
		return true
	default:
		return false
	}
}

func isLabel(tok *cxxtoken.Token) bool {
	if tok.Type() != cxxtoken.TokName {
		return false
	}
	next := tok.Next()
	if next == nil || !next.IsOp(":") {
		return false
	}
	prev := tok.Previous()
	return prev == nil || prev.IsOp(";", "{", "}")
}
