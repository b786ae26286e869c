// Package forward walks a token range in source order, delegating to a
// valueflow.Analyzer at every token and handling the branch/loop/
// switch/try control-flow shapes spec.md §4.3 describes. It never
// inspects a concrete Value; it only composes Actions and calls back
// into the Analyzer contract.
package forward

import (
	"context"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
	"github.com/oxhq/cppscan/internal/valueflow"
)

// Settings bounds the walk's worst-case cost.
type Settings struct {
	MaxRecursionDepth int
}

func DefaultSettings() Settings { return Settings{MaxRecursionDepth: 20} }

type walker struct {
	ctx       context.Context
	db        *symbols.Database
	settings  Settings
	loopEnds  []*cxxtoken.Token // break target: token to resume after the construct
	loopSteps []*cxxtoken.Token // continue target: token where the loop's step/condition resumes
	lastIndex int
	depth     int
	analyzeOnly bool
}

// Walk walks tokens from start up to (not including) end, returning the
// accumulated Result. end may be nil to mean "function end" (caller
// passes the enclosing function's closing brace).
func Walk(ctx context.Context, db *symbols.Database, start, end *cxxtoken.Token, a valueflow.Analyzer, settings Settings) valueflow.Result {
	if end == nil && db != nil {
		if fs := db.EnclosingFunctionScope(start); fs != nil {
			end = fs.BodyEnd
		}
	}
	w := &walker{ctx: ctx, db: db, settings: settings, lastIndex: start.Index() - 1}
	res := valueflow.Result{}
	w.walkRange(start, end, a, &res)
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

// walkRange processes a sequence of top-level statements until end (or
// the enclosing function's end) is reached or the analyzer terminates.
func (w *walker) walkRange(tok, end *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	for tok != nil && tok != end {
		if w.cancelled() {
			res.Terminate = valueflow.TerminateBail
			return
		}
		if tok.Index() <= w.lastIndex {
			res.Terminate = valueflow.TerminateBail
			return
		}
		w.lastIndex = tok.Index()

		next := w.walkStatement(tok, a, res)
		if res.Terminate != valueflow.TerminateNone {
			return
		}
		if next == nil {
			return
		}
		tok = next
	}
}

// walkStatement handles one statement starting at tok and returns the
// token to resume from, or nil if traversal is over.
func (w *walker) walkStatement(tok *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	switch {
	case tok.Str() == "goto" || tok.Str() == "asm":
		res.Terminate = valueflow.TerminateBail
		return nil

	case tok.Str() == "setjmp" || tok.Str() == "longjmp":
		if open := tok.Next(); open != nil && open.IsOp("(") {
			w.walkExpr(open.AstOperand2(), a, res)
		}
		res.Terminate = valueflow.TerminateBail
		return nil

	case tok.Str() == "break":
		if len(w.loopEnds) == 0 {
			res.Terminate = valueflow.TerminateEscape
			return nil
		}
		return w.loopEnds[len(w.loopEnds)-1]

	case tok.Str() == "continue":
		if len(w.loopSteps) == 0 {
			res.Terminate = valueflow.TerminateEscape
			return nil
		}
		return w.loopSteps[len(w.loopSteps)-1]

	case tok.Str() == "return" || tok.Str() == "throw":
		w.walkExpr(tok.AstOperand2(), a, res)
		if res.Terminate != valueflow.TerminateNone {
			return nil
		}
		w.walkExpr(tok.AstOperand1(), a, res)
		if res.Terminate == valueflow.TerminateNone {
			res.Terminate = valueflow.TerminateEscape
		}
		return nil

	case tok.IsOp("{"):
		if kind, ok := w.scopeKind(tok); ok {
			switch kind {
			case symbols.ScopeIf:
				return w.walkIf(tok, a, res)
			case symbols.ScopeFor:
				return w.walkFor(tok, a, res)
			case symbols.ScopeWhile:
				return w.walkWhile(tok, a, res)
			case symbols.ScopeDo:
				return w.walkDoWhile(tok, a, res)
			case symbols.ScopeSwitch:
				return w.walkSwitch(tok, a, res)
			case symbols.ScopeTry:
				return w.walkTry(tok, a, res)
			case symbols.ScopeLambda:
				return w.walkLambda(tok, a, res)
			case symbols.ScopeClass, symbols.ScopeStruct, symbols.ScopeUnion, symbols.ScopeEnum:
				return tok.Link().Next()
			default:
				// Plain block: walk its body then continue after it.
				w.walkRange(tok.Next(), tok.Link(), a, res)
				if res.Terminate != valueflow.TerminateNone {
					return nil
				}
				return tok.Link().Next()
			}
		}
		return tok.Next()

	default:
		end := w.statementEnd(tok)
		for _, root := range w.statementRoots(tok, end) {
			w.walkExpr(root, a, res)
			if res.Terminate != valueflow.TerminateNone {
				return nil
			}
		}
		if end == nil {
			return nil
		}
		return end.Next()
	}
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

// statementEnd finds the terminating ";" of a simple statement at the
// same bracket depth as tok, or nil if the statement runs to EOF.
func (w *walker) statementEnd(tok *cxxtoken.Token) *cxxtoken.Token {
	depth := 0
	for t := tok; t != nil; t = t.Next() {
		if t.IsOp("(", "[") {
			depth++
		} else if t.IsOp(")", "]") {
			depth--
		} else if depth == 0 && (t.IsOp(";") || t.IsOp("{", "}")) {
			return t
		}
	}
	return nil
}

// statementRoots returns the topmost AST tokens (AstParent nil) found
// in [tok, end) — usually one (the statement's single expression), but
// a comma-declarator list or a malformed statement may yield several or
// none.
func (w *walker) statementRoots(tok, end *cxxtoken.Token) []*cxxtoken.Token {
	var roots []*cxxtoken.Token
	for t := tok; t != nil && t != end; t = t.Next() {
		if t.AstParent() == nil && (t.AstOperand1() != nil || t.AstOperand2() != nil) {
			roots = append(roots, t)
		}
	}
	return roots
}

// walkIf handles an if/else fork per spec.md §4.3: a determined
// condition takes only the matching branch; an undetermined one forks
// both, merging the stronger termination.
func (w *walker) walkIf(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	condTok, open := w.condition(brace)
	bodyEnd := brace.Link()
	after := w.elseChainEnd(bodyEnd)

	thenStart, thenEnd := brace.Next(), bodyEnd
	elseStart, elseEnd := w.elseBody(bodyEnd)

	checkThen, checkElse := w.evalCond(condTok, a)
	if open != nil {
		w.walkExpr(condTok, a, res)
		if res.Terminate != valueflow.TerminateNone {
			return nil
		}
	}

	if checkThen && !checkElse {
		w.walkRange(thenStart, thenEnd, a, res)
		return after
	}
	if checkElse && !checkThen {
		if elseStart != nil {
			w.walkRange(elseStart, elseEnd, a, res)
		}
		return after
	}

	thenRes := valueflow.Result{}
	w.walkRange(thenStart, thenEnd, a, &thenRes)
	elseRes := valueflow.Result{}
	if elseStart != nil {
		w.walkRange(elseStart, elseEnd, a, &elseRes)
	}
	res.Action |= thenRes.Action | elseRes.Action
	res.Terminate = strongerTerminate(thenRes.Terminate, elseRes.Terminate)
	return after
}

// elseBody returns [start,end) of the else clause following bodyEnd, or
// (nil, nil) if there is none.
func (w *walker) elseBody(bodyEnd *cxxtoken.Token) (*cxxtoken.Token, *cxxtoken.Token) {
	next := bodyEnd.Next()
	if next == nil || next.Str() != "else" {
		return nil, nil
	}
	brace := next.Next()
	if brace == nil || !brace.IsOp("{") {
		return nil, nil
	}
	return brace.Next(), brace.Link()
}

func (w *walker) elseChainEnd(bodyEnd *cxxtoken.Token) *cxxtoken.Token {
	next := bodyEnd.Next()
	if next == nil || next.Str() != "else" {
		return bodyEnd.Next()
	}
	brace := next.Next()
	if brace != nil && brace.IsOp("{") {
		return brace.Link().Next()
	}
	return next.Next()
}

// condition returns the condition expression's AST root for a compound
// statement whose body is `brace`, plus the opening "(" (nil if the
// construct has no parenthesized condition, e.g. a bare do/try).
func (w *walker) condition(brace *cxxtoken.Token) (*cxxtoken.Token, *cxxtoken.Token) {
	close := brace.Previous()
	if close == nil || !close.IsOp(")") {
		return nil, nil
	}
	open := close.Link()
	if open == nil {
		return nil, nil
	}
	var root *cxxtoken.Token
	for t := open.Next(); t != nil && t != close; t = t.Next() {
		if t.AstParent() == nil {
			root = t
		}
	}
	return root, open
}

func (w *walker) evalCond(condTok *cxxtoken.Token, a valueflow.Analyzer) (checkThen, checkElse bool) {
	if condTok == nil {
		return true, true
	}
	results := a.Evaluate(valueflow.EvalIntegral, condTok, nil)
	for _, v := range results {
		if v != 0 {
			checkThen = true
		} else {
			checkElse = true
		}
	}
	if !checkThen && !checkElse {
		return true, true
	}
	return checkThen, checkElse
}

func strongerTerminate(a, b valueflow.Terminate) valueflow.Terminate {
	rank := func(t valueflow.Terminate) int {
		switch t {
		case valueflow.TerminateNone:
			return 0
		case valueflow.TerminateConditional:
			return 1
		case valueflow.TerminateInconclusive:
			return 2
		case valueflow.TerminateEscape:
			return 3
		case valueflow.TerminateModified:
			return 4
		case valueflow.TerminateBail:
			return 5
		default:
			return 0
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// walkFor handles a for(-range) loop: init runs once, then the body is
// explored once as a potential re-entry; if the body modifies a tracked
// expression and reentry can't be ruled out, bail.
func (w *walker) walkFor(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	bodyEnd := brace.Link()
	after := bodyEnd.Next()

	condTok, _ := w.condition(brace)
	checkThen, checkElse := true, true
	if condTok != nil {
		checkThen, checkElse = w.evalCond(condTok, a)
	}
	if checkElse && !checkThen {
		return after // condition provably false: loop never runs
	}

	w.loopEnds = append(w.loopEnds, after)
	w.loopSteps = append(w.loopSteps, brace) // continue re-runs the step, which we approximate as the body start
	bodyRes := valueflow.Result{}
	w.walkRange(brace.Next(), bodyEnd, a, &bodyRes)
	w.loopEnds = w.loopEnds[:len(w.loopEnds)-1]
	w.loopSteps = w.loopSteps[:len(w.loopSteps)-1]

	res.Action |= bodyRes.Action
	if bodyRes.Terminate == valueflow.TerminateModified && checkThen {
		// Reentry can't be ruled out and the body modified the tracked
		// expression: bail rather than claim a false conclusion.
		res.Terminate = valueflow.TerminateBail
		return nil
	}
	if bodyRes.Terminate == valueflow.TerminateBail || bodyRes.Terminate == valueflow.TerminateInconclusive {
		res.Terminate = bodyRes.Terminate
		return nil
	}
	return after
}

func (w *walker) walkWhile(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	return w.walkFor(brace, a, res)
}

// walkDoWhile runs the body unconditionally once, then checks the
// trailing condition.
func (w *walker) walkDoWhile(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	bodyEnd := brace.Link()
	whileTok := bodyEnd.Next()
	after := whileTok
	if whileTok != nil && whileTok.Str() == "while" {
		if paren := whileTok.Next(); paren != nil && paren.IsOp("(") {
			after = paren.Link().Next()
			if after != nil && after.IsOp(";") {
				after = after.Next()
			}
		}
	}

	w.loopEnds = append(w.loopEnds, after)
	w.loopSteps = append(w.loopSteps, bodyEnd)
	w.walkRange(brace.Next(), bodyEnd, a, res)
	w.loopEnds = w.loopEnds[:len(w.loopEnds)-1]
	w.loopSteps = w.loopSteps[:len(w.loopSteps)-1]
	if res.Terminate != valueflow.TerminateNone {
		return nil
	}
	return after
}

// walkSwitch forks each case with the assumption `cond == case value`;
// the default fork carries the negation of every case.
func (w *walker) walkSwitch(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	bodyEnd := brace.Link()
	after := bodyEnd.Next()
	condTok, _ := w.condition(brace)

	w.loopEnds = append(w.loopEnds, after)
	defer func() { w.loopEnds = w.loopEnds[:len(w.loopEnds)-1] }()

	merged := valueflow.Result{}
	for t := brace.Next(); t != nil && t != bodyEnd; t = t.Next() {
		if t.Str() != "case" && t.Str() != "default" {
			continue
		}
		branch := a.Clone()
		if t.Str() == "case" && condTok != nil {
			branch.Assume(condTok, true, valueflow.AssumeNone)
		} else {
			branch.Assume(condTok, false, valueflow.AssumeNone)
		}
		colon := t
		for colon != nil && !colon.IsOp(":") {
			colon = colon.Next()
		}
		if colon == nil {
			continue
		}
		caseRes := valueflow.Result{}
		w.walkRange(colon.Next(), bodyEnd, branch, &caseRes)
		merged.Action |= caseRes.Action
		merged.Terminate = strongerTerminate(merged.Terminate, caseRes.Terminate)
	}
	res.Action |= merged.Action
	if merged.Terminate == valueflow.TerminateBail || merged.Terminate == valueflow.TerminateModified {
		res.Terminate = merged.Terminate
		return nil
	}
	return after
}

// walkTry forks each catch clause from the start of the try body (any
// statement inside try may have thrown before completing); if any fork
// modifies the tracked expression, bail.
func (w *walker) walkTry(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	bodyEnd := brace.Link()
	tryRes := valueflow.Result{}
	w.walkRange(brace.Next(), bodyEnd, a, &tryRes)

	after := bodyEnd.Next()
	merged := tryRes
	for after != nil && after.Str() == "catch" {
		paren := after.Next()
		var catchBrace *cxxtoken.Token
		if paren != nil && paren.IsOp("(") {
			catchBrace = paren.Link().Next()
		}
		if catchBrace == nil || !catchBrace.IsOp("{") {
			break
		}
		branch := a.Clone()
		catchRes := valueflow.Result{}
		w.walkRange(brace.Next(), bodyEnd, branch, &catchRes) // any point in try may have thrown
		w.walkRange(catchBrace.Next(), catchBrace.Link(), branch, &catchRes)
		merged.Action |= catchRes.Action
		if catchRes.Terminate == valueflow.TerminateModified {
			merged.Terminate = valueflow.TerminateBail
		} else {
			merged.Terminate = strongerTerminate(merged.Terminate, catchRes.Terminate)
		}
		after = catchBrace.Link().Next()
	}
	res.Action |= merged.Action
	res.Terminate = merged.Terminate
	if res.Terminate != valueflow.TerminateNone {
		return nil
	}
	return after
}

// walkLambda skips a lambda body unless a one-shot sub-analysis proves
// it definitely runs locally and does not modify the tracked
// expression; an inconclusive sub-analysis bails rather than guessing.
func (w *walker) walkLambda(brace *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) *cxxtoken.Token {
	after := brace.Link().Next()
	sub := valueflow.Result{}
	w.walkRange(brace.Next(), brace.Link(), a.Clone(), &sub)
	if sub.Action.IsModified() {
		res.Terminate = valueflow.TerminateBail
		return nil
	}
	return after
}

// walkExpr performs the AST-ordered recursive visit spec.md §4.3
// describes: RHS before LHS for assignments and call arguments before
// the callee, left-to-right otherwise; short-circuit && / || / ?: fork
// their right-hand side under the evaluated left assumption; sizeof/
// decltype/typeid-of-non-polymorphic operands are skipped entirely.
func (w *walker) walkExpr(tok *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	if tok == nil || res.Terminate != valueflow.TerminateNone {
		return
	}
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.settings.MaxRecursionDepth {
		res.Terminate = valueflow.TerminateBail
		return
	}

	if isUnevaluatedContext(tok) {
		return
	}

	if (tok.IsOp("&&") || tok.IsOp("||") || tok.IsOp("?")) && tok.AstOperand1() != nil && tok.AstOperand2() != nil {
		w.walkConditional(tok, a, res)
		return
	}

	op1, op2 := tok.AstOperand1(), tok.AstOperand2()
	isAssign := isAssignmentOp(tok)
	isCall := op2 != nil && tok.IsOp("(") && op1 != nil
	if isAssign || op2 == nil || isCall {
		op1, op2 = op2, op1
	}

	w.walkExpr(op1, a, res)
	if res.Terminate != valueflow.TerminateNone {
		return
	}
	if !isAssign {
		w.visit(tok, a, res)
		if res.Terminate != valueflow.TerminateNone {
			return
		}
	}
	w.walkExpr(op2, a, res)
	if res.Terminate != valueflow.TerminateNone {
		return
	}
	if isAssign {
		w.visit(tok, a, res)
	}
}

func (w *walker) walkConditional(tok *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	condTok := tok.AstOperand1()
	child := tok.AstOperand2()
	checkThen, checkElse := w.evalCond(condTok, a)
	w.walkExpr(condTok, a, res)
	if res.Terminate != valueflow.TerminateNone {
		return
	}
	if child == nil {
		return
	}
	if child.Str() == ":" {
		if checkThen {
			w.walkExpr(child.AstOperand1(), a, res)
		}
		if res.Terminate == valueflow.TerminateNone && checkElse {
			w.walkExpr(child.AstOperand2(), a, res)
		}
		return
	}
	if !checkThen && tok.Str() == "&&" {
		return
	}
	if !checkElse && tok.Str() == "||" {
		return
	}
	w.walkExpr(child, a, res)
}

func (w *walker) visit(tok *cxxtoken.Token, a valueflow.Analyzer, res *valueflow.Result) {
	action := a.Analyze(tok, valueflow.Forward)
	res.Action |= action
	if !action.IsNone() && !w.analyzeOnly {
		a.Update(tok, action, valueflow.Forward)
	}
	if action.Has(valueflow.ActionInconclusive) && !a.LowerToInconclusive() {
		res.Terminate = valueflow.TerminateInconclusive
		return
	}
	if action.Has(valueflow.ActionInvalid) {
		res.Terminate = valueflow.TerminateModified
		return
	}
	if action.Has(valueflow.ActionWrite) && !action.Has(valueflow.ActionRead) {
		res.Terminate = valueflow.TerminateModified
	}
}

func isAssignmentOp(tok *cxxtoken.Token) bool {
	switch tok.Str() {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	default:
		return false
	}
}

func isUnevaluatedContext(tok *cxxtoken.Token) bool {
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
