package checks

import (
	"context"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

// ReturnDangling flags `return &local;` and `return local;` where
// local's address or an array-decaying copy escapes the function it
// is declared in (spec.md §8 scenario 1). It is a structural
// approximation of the source's full lifetime value-flow tracking:
// real coverage of indirect escapes (through a helper that returns a
// reference into its argument) is out of scope for this representative
// consumer.
type ReturnDangling struct{}

func (ReturnDangling) ID() string { return "returnDangling" }

func (ReturnDangling) Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	for _, tok := range tokens.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tok.Type() != cxxtoken.TokKeyword || tok.Str() != "return" {
			continue
		}
		operand := returnOperand(tok)
		if operand == nil {
			continue
		}

		varTok, isAddress := addressedLocal(operand)
		if varTok == nil {
			continue
		}
		v, ok := db.VariableOf(varTok)
		if !ok || v.Kind != symbols.VarLocal || v.Flags.Has(symbols.VarSTL) {
			continue
		}
		// a returned value (not its address, and not an array, which
		// always decays to a dangling pointer) is a copy, not an escape
		if !isAddress && !v.Flags.Has(symbols.VarArray) {
			continue
		}

		file := tokens.File()
		sink.Report(diagnostics.Diagnostic{
			ID:        "returnDanglingLifetime",
			Severity:  diagnostics.SeverityError,
			Certainty: diagnostics.CertaintyNormal,
			CWE:       562, // Return of Stack Variable Address
			Message:   "returning address of local variable '" + v.NameToken.Str() + "' that will be invalid outside the function",
			Primary:   location(file, tok),
			ErrorPath: []diagnostics.PathStep{
				{Location: location(file, v.NameToken), Message: "declared here"},
				{Location: location(file, operand), Message: "address of local variable taken"},
				{Location: location(file, tok), Message: "returned here"},
			},
		})
	}
	return nil
}

// returnOperand finds the expression a `return` statement yields,
// which the AST hangs off the token following `return` (the adapter
// makes `return` the statement's own AST root with operand1 the
// returned expression, matching forwardanalyzer.cpp's handling of
// return/throw statements).
func returnOperand(returnTok *cxxtoken.Token) *cxxtoken.Token {
	if op := returnTok.AstOperand1(); op != nil {
		return op
	}
	next := returnTok.Next()
	if next != nil && next.Str() != ";" {
		return next
	}
	return nil
}

// addressedLocal reports the variable name token beneath an
// `&identifier` expression, or beneath a bare `identifier` (the
// second return value distinguishes the two: true means the operand
// took an explicit address).
func addressedLocal(tok *cxxtoken.Token) (*cxxtoken.Token, bool) {
	if tok.IsOp("&") && tok.AstOperand2() == nil {
		operand := tok.AstOperand1()
		if operand != nil && operand.Type() == cxxtoken.TokName {
			return operand, true
		}
		return nil, false
	}
	if tok.Type() == cxxtoken.TokName {
		return tok, false
	}
	return nil, false
}

func location(file string, tok *cxxtoken.Token) diagnostics.Location {
	if tok == nil {
		return diagnostics.Location{File: file}
	}
	return diagnostics.Location{File: file, Line: tok.Line(), Column: tok.Column()}
}
