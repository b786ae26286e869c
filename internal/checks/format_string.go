package checks

import (
	"context"
	"fmt"

	"github.com/oxhq/cppscan/internal/config"
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/format"
	"github.com/oxhq/cppscan/internal/symbols"
)

// FormatString wires internal/format's printf/scanf specifier scanner
// and argument-type matcher into the Check interface. spec.md §1 names
// the format matcher as the "archetypal consumer of value-flow
// results"; this Check is where that consumption actually happens: for
// every call recognized by the library config as a format function, it
// parses the literal format-string argument and checks every following
// argument's symbols.ValueType against what its conversion specifier
// expects, per original_source/lib/checkio.cpp's checkFormatString.
type FormatString struct {
	Library *config.LibraryConfig
}

func (FormatString) ID() string { return "formatString" }

func (c FormatString) Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	if c.Library == nil {
		return nil
	}
	file := tokens.File()

	for _, tok := range tokens.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tok.Type() != cxxtoken.TokName {
			continue
		}
		open := tok.Next()
		if open == nil || open.Type() != cxxtoken.TokBracket || open.Str() != "(" {
			continue
		}
		argNo, scanf, ok := c.Library.IsFormatFunction(tok.Str())
		if !ok {
			continue
		}

		args := argStarts(open)
		if argNo < 1 || argNo > len(args) {
			continue
		}
		fmtTok := args[argNo-1]
		if fmtTok.Type() != cxxtoken.TokString {
			continue // dynamic format string: nothing statically checkable
		}

		mode := format.Printf
		if scanf {
			mode = format.Scanf
		}
		specs, err := format.Scan(unquote(fmtTok.Str()), mode)
		if err != nil {
			continue // malformed literal; a dedicated check would flag this
		}

		for _, s := range specs {
			if s.InvalidLengthCombination() {
				sink.Report(diagnostics.Diagnostic{
					ID:        "invalidLengthModifierError",
					Severity:  diagnostics.SeverityWarning,
					Certainty: diagnostics.CertaintyNormal,
					CWE:       704, // Incorrect Type Conversion or Cast
					Message:   fmt.Sprintf("'%s' length modifier cannot be used with conversion '%c' in %s", s.Length, s.Conversion, s.Raw),
					Primary:   location(file, tok),
				})
			}
		}

		varArgs := args[argNo:]
		fargs := make([]format.Argument, 0, len(varArgs))
		for _, a := range varArgs {
			fargs = append(fargs, formatArgument(db, a))
		}

		for _, m := range format.Check(specs, fargs) {
			sink.Report(formatDiagnostic(file, tok, m, mode))
		}
	}
	return nil
}

// formatArgument builds a format.Argument for one call-site argument,
// unwrapping a leading `&` so a scanf writeback target's pointed-to
// type is what gets matched against the specifier. When the target
// resolves to a fixed-size array local, its declared dimension is
// carried along so the scanf field-width check can bound against it.
func formatArgument(db *symbols.Database, tok *cxxtoken.Token) format.Argument {
	isAddr := tok.IsOp("&") && tok.AstOperand2() == nil
	target := tok
	if isAddr {
		if operand := tok.AstOperand1(); operand != nil {
			target = operand
		}
	}
	vt, _ := target.ValueType().(*symbols.ValueType)
	arg := format.Argument{Type: vt, IsAddressOf: isAddr}

	if v, ok := db.VariableOf(target); ok && v.Flags.Has(symbols.VarArray) && len(v.Dimensions) > 0 {
		if dim := v.Dimensions[0]; dim.Known {
			arg.HasBufferSize, arg.BufferSize = true, int(dim.Size)
		}
	}
	return arg
}

func formatDiagnostic(file string, callTok *cxxtoken.Token, m format.Mismatch, mode format.Mode) diagnostics.Diagnostic {
	sev := diagnostics.SeverityWarning
	switch m.Severity {
	case format.SeverityError:
		sev = diagnostics.SeverityError
	case format.SeverityPortability:
		sev = diagnostics.SeverityPortability
	}

	id := "invalidPrintfArgType"
	if mode == format.Scanf {
		id = "invalidScanfArgType"
	}
	if prim, sign, ok := m.Specifier.ExpectedPrimary(); ok {
		id += "_" + primarySuffix(prim, sign)
	}

	cwe := 686 // Function Call With Incorrect Argument Type
	if m.ID != "" {
		id = m.ID
	}
	if m.CWE != 0 {
		cwe = m.CWE
	}

	return diagnostics.Diagnostic{
		ID:        id,
		Severity:  sev,
		Certainty: diagnostics.CertaintyNormal,
		CWE:       cwe,
		Message:   m.Message,
		Primary:   location(file, callTok),
	}
}

func primarySuffix(prim symbols.Primary, sign symbols.Sign) string {
	names := map[symbols.Primary]string{
		symbols.PrimaryInt: "int", symbols.PrimaryLong: "long",
		symbols.PrimaryLongLong: "longlong", symbols.PrimaryChar: "char",
		symbols.PrimaryShort: "short", symbols.PrimaryFloat: "float",
		symbols.PrimaryDouble: "double", symbols.PrimaryLongDouble: "longdouble",
	}
	base, ok := names[prim]
	if !ok {
		base = "unknown"
	}
	if sign == symbols.SignUnsigned {
		return "u" + base
	}
	return base
}
