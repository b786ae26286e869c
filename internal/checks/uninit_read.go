package checks

import (
	"context"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
	"github.com/oxhq/cppscan/internal/valueflow"
	"github.com/oxhq/cppscan/internal/valueflow/concrete"
	"github.com/oxhq/cppscan/internal/valueflow/forward"
	"github.com/oxhq/cppscan/internal/valueflow/reverse"
)

// UninitRead is the registry's representative consumer of the reverse
// engine: for every scalar local declared without an initializer, it
// reverse-walks from each later read of that name back to the
// enclosing function's entry with a SameExpression analyzer. If the
// walk reaches function entry (TerminateNone) without ever observing
// a Write, the read happened before any assignment ever reached it on
// that path, grounded on checkuninitvar.cpp's forward-declared,
// backward-proven style of reasoning.
type UninitRead struct{}

func (UninitRead) ID() string { return "uninitializedVariable" }

func (UninitRead) Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	file := tokens.File()

	for _, scope := range allFunctionScopes(db) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if scope.BodyStart == nil || scope.BodyEnd == nil {
			continue
		}

		for tok := scope.BodyStart.Next(); tok != nil && tok != scope.BodyEnd; tok = tok.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if tok.Type() != cxxtoken.TokName {
				continue
			}
			v, ok := db.VariableOf(tok)
			if !ok || v.Kind != symbols.VarLocal || v.NameToken == tok {
				continue
			}
			if v.Flags.Has(symbols.VarInit) || v.Flags.Has(symbols.VarReference) ||
				v.Flags.Has(symbols.VarArray) || v.Flags.Has(symbols.VarSTL) {
				continue
			}
			if isWriteTarget(tok) {
				continue
			}

			analyzer := concrete.NewSameExpression(tok)
			res := reverse.Walk(ctx, db, tok, scope.BodyStart, analyzer, forward.DefaultSettings())
			if res.Terminate != valueflow.TerminateNone {
				continue
			}
			if res.Action.Has(valueflow.ActionWrite) {
				continue
			}

			sink.Report(diagnostics.Diagnostic{
				ID:        "uninitializedVariable",
				Severity:  diagnostics.SeverityError,
				Certainty: diagnostics.CertaintyNormal,
				CWE:       457,
				Message:   "'" + v.NameToken.Str() + "' is used before it is assigned a value",
				Primary:   location(file, tok),
				ErrorPath: []diagnostics.PathStep{
					{Location: location(file, v.NameToken), Message: "declared without an initializer here"},
					{Location: location(file, tok), Message: "used here"},
				},
			})
		}
	}
	return nil
}

// isWriteTarget reports whether tok is the left-hand side of a plain
// assignment, the same shape DeadStore reads off the "=" AST root.
func isWriteTarget(tok *cxxtoken.Token) bool {
	parent := tok.AstParent()
	return parent != nil && parent.IsOp("=") && parent.AstOperand1() == tok
}
