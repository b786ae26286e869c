package checks

import (
	"context"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
	"github.com/oxhq/cppscan/internal/valueflow"
	"github.com/oxhq/cppscan/internal/valueflow/concrete"
	"github.com/oxhq/cppscan/internal/valueflow/forward"
)

// DeadStore is the representative value-flow consumer for the forward
// engine and the SameExpression tracker: for every plain assignment
// (including a declaration's initializer) to a scalar local, it walks
// forward to the end of the enclosing function with a SameExpression
// analyzer seeded on the assigned variable. If the walk completes
// without ever seeing a Read action against that expression, the
// stored value was never used before it went out of scope or was
// overwritten.
type DeadStore struct{}

func (DeadStore) ID() string { return "unreadVariable" }

func (DeadStore) Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	file := tokens.File()

	for _, tok := range tokens.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !tok.IsOp("=") {
			continue
		}
		lhs := tok.AstOperand1()
		rhs := tok.AstOperand2()
		if lhs == nil || rhs == nil || lhs.Type() != cxxtoken.TokName {
			continue
		}

		v, ok := db.VariableOf(lhs)
		if !ok || v.Kind != symbols.VarLocal {
			continue
		}
		// Reference/array/STL-typed locals can be "used" through a method
		// call or a second name binding SameAST can't see (e.g. a
		// reference alias); restrict this representative check to plain
		// scalars and pointers, the same conservatism ReturnDangling
		// applies to its own lifetime approximation.
		if v.Flags.Has(symbols.VarReference) || v.Flags.Has(symbols.VarArray) || v.Flags.Has(symbols.VarSTL) {
			continue
		}

		fnScope := db.EnclosingFunctionScope(lhs)
		if fnScope == nil || fnScope.BodyEnd == nil {
			continue
		}
		next := tok.Next()
		if next == nil {
			continue
		}

		analyzer := concrete.NewSameExpression(lhs)
		res := forward.Walk(ctx, db, next, fnScope.BodyEnd, analyzer, forward.DefaultSettings())
		if res.Terminate == valueflow.TerminateBail {
			// the engine couldn't reason past this point (goto, recursion
			// cap, ...); per spec.md §7 a bail retains no diagnostic.
			continue
		}
		if res.Action.Has(valueflow.ActionRead) {
			continue
		}

		sink.Report(diagnostics.Diagnostic{
			ID:        "unreadVariable",
			Severity:  diagnostics.SeverityStyle,
			Certainty: diagnostics.CertaintyNormal,
			CWE:       563,
			Message:   "value assigned to '" + v.NameToken.Str() + "' is never used",
			Primary:   diagnostics.Location{File: file, Line: tok.Line(), Column: tok.Column()},
			ErrorPath: []diagnostics.PathStep{
				{Location: diagnostics.Location{File: file, Line: lhs.Line(), Column: lhs.Column()}, Message: "value assigned here"},
			},
		})
	}
	return nil
}
