package checks

import (
	"context"
	"strings"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/fileio"
	"github.com/oxhq/cppscan/internal/symbols"
)

// FileUsage wires internal/fileio's stream state machine into the
// Check interface, grounded directly on checkFileUsage in
// original_source/lib/checkio.cpp. Where the source tracks scope depth
// with a hand-rolled '{'/'}' counter, this walks the already-built
// scope tree (Scope.Depth) instead.
type FileUsage struct{}

func (FileUsage) ID() string { return "fileUsage" }

var positioningCalls = map[string]bool{"rewind": true, "fseek": true, "fsetpos": true, "fflush": true}
var readCalls = map[string]bool{"fgetc": true, "fgets": true, "fread": true, "fscanf": true, "getc": true}
var writeCalls = map[string]bool{"fputc": true, "fputs": true, "fwrite": true, "fprintf": true}
var openCalls = map[string]bool{"fopen": true, "freopen": true, "tmpfile": true}
var whitelistCalls = map[string]bool{
	"clearerr": true, "feof": true, "ferror": true, "fgetpos": true,
	"ftell": true, "setbuf": true, "setvbuf": true, "ungetc": true, "ungetwc": true,
}

func (FileUsage) Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	streams := make(map[uint32]*fileio.Stream)
	file := tokens.File()

	for _, scope := range allFunctionScopes(db) {
		if err := ctx.Err(); err != nil {
			return err
		}
		runFunctionScope(ctx, db, scope, streams, sink, file)
		for _, s := range streams {
			s.ResetOnExit()
		}
	}
	return nil
}

func allFunctionScopes(db *symbols.Database) []*symbols.Scope {
	var out []*symbols.Scope
	for i := 0; ; i++ {
		s := db.Scope(symbols.ScopeID(i))
		if s == nil || (i > 0 && s.ID != symbols.ScopeID(i)) {
			break
		}
		if s.Kind == symbols.ScopeFunction {
			out = append(out, s)
		}
	}
	return out
}

func runFunctionScope(ctx context.Context, db *symbols.Database, scope *symbols.Scope, streams map[uint32]*fileio.Stream, sink *diagnostics.Sink, file string) {
	if scope.BodyStart == nil || scope.BodyEnd == nil {
		return
	}
	prevDepth := scope.Depth(db) + 1

	for tok := scope.BodyStart.Next(); tok != nil && tok != scope.BodyEnd; tok = tok.Next() {
		if ctx.Err() != nil {
			return
		}
		depth := db.Scope(scopeIDFor(tok)).Depth(db)
		if depth < prevDepth {
			for _, s := range streams {
				s.ExitScope(depth)
			}
		}
		prevDepth = depth

		if tok.Type() == cxxtoken.TokKeyword {
			switch tok.Str() {
			case "return", "continue", "break":
				for _, s := range streams {
					s.ResetOnExit()
				}
			}
			continue
		}

		if tok.Type() != cxxtoken.TokName {
			continue
		}
		next := tok.Next()
		if next == nil || next.Type() != cxxtoken.TokBracket || next.Str() != "(" {
			continue
		}
		handleCall(tok, next, depth, streams, sink, file)
	}
}

// scopeIDFor converts a token's ScopeRef back to a ScopeID through the
// same convention database.go uses internally.
func scopeIDFor(tok *cxxtoken.Token) symbols.ScopeID {
	ref := tok.Scope()
	if !ref.Valid() {
		return 0
	}
	return symbols.ScopeID(ref.Index() - 1)
}

func handleCall(nameTok, open *cxxtoken.Token, depth int, streams map[uint32]*fileio.Stream, sink *diagnostics.Sink, file string) {
	name := nameTok.Str()
	args := argStarts(open)

	var fileTok *cxxtoken.Token
	var op fileio.Operation
	var modeStr, filename string

	switch {
	case openCalls[name]:
		prev := nameTok.Previous()
		if prev == nil || prev.Str() != "=" {
			return
		}
		fileTok = prev.Previous()
		op = fileio.OpOpen
		if name == "tmpfile" {
			modeStr = "wb+"
		} else if len(args) >= 2 && args[1].Type() == cxxtoken.TokString {
			modeStr = unquote(args[1].Str())
		}
		if name == "fopen" && len(args) >= 1 && args[0].Type() == cxxtoken.TokString {
			filename = unquote(args[0].Str())
		}
	case positioningCalls[name]:
		if len(args) >= 1 {
			fileTok = args[0]
		}
		op = fileio.OpPositioning
	case readCalls[name]:
		if strings.Contains(name, "scanf") {
			if len(args) >= 1 {
				fileTok = args[0]
			}
		} else if len(args) > 0 {
			fileTok = args[len(args)-1]
		}
		op = fileio.OpRead
	case writeCalls[name]:
		if strings.Contains(name, "printf") {
			if len(args) >= 1 {
				fileTok = args[0]
			}
		} else if len(args) > 0 {
			fileTok = args[len(args)-1]
		}
		op = fileio.OpWrite
	case name == "fclose":
		if len(args) >= 1 {
			fileTok = args[0]
		}
		op = fileio.OpClose
	case whitelistCalls[name]:
		if len(args) >= 1 {
			fileTok = args[0]
		}
		op = fileio.OpUnimportant
	default:
		return
	}

	if fileTok == nil || fileTok.VarID() == 0 {
		return
	}
	varID := fileTok.VarID()
	stream, ok := streams[varID]
	if !ok {
		stream = fileio.NewStream(varID, false)
		streams[varID] = stream
	}

	if op == fileio.OpOpen {
		var siblings []*fileio.Stream
		for id, s := range streams {
			if id != varID {
				siblings = append(siblings, s)
			}
		}
		if violation, found := stream.Open(filename, modeStr, depth, siblings); found {
			report(sink, violation, fileTok, file)
		}
		return
	}

	if violation, found := stream.Apply(op, depth, false); found {
		report(sink, violation, nameTok, file)
	}
}

func report(sink *diagnostics.Sink, violation fileio.Violation, tok *cxxtoken.Token, file string) {
	sev := diagnostics.SeverityError
	if violation == fileio.ViolationSeekOnAppendedFile || violation == fileio.ViolationIncompatibleOpen {
		sev = diagnostics.SeverityWarning
	}
	sink.Report(diagnostics.Diagnostic{
		ID:        string(violation),
		Severity:  sev,
		Certainty: diagnostics.CertaintyNormal,
		CWE:       664,
		Message:   string(violation),
		Primary:   location(file, tok),
	})
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}

// argStarts returns the first token of each top-level (depth-0)
// comma-separated argument between open's matching parenthesis,
// following the call-argument convention forwardanalyzer.cpp's
// nextArgument() walks.
func argStarts(open *cxxtoken.Token) []*cxxtoken.Token {
	close := open.Link()
	if close == nil {
		return nil
	}
	var args []*cxxtoken.Token
	var cur *cxxtoken.Token
	depth := 0
	for t := open.Next(); t != nil && t != close; t = t.Next() {
		if cur == nil {
			cur = t
		}
		if t.Type() == cxxtoken.TokBracket {
			switch t.Str() {
			case "(", "{", "[":
				depth++
			case ")", "}", "]":
				depth--
			}
		}
		if t.Type() == cxxtoken.TokComma && depth == 0 {
			args = append(args, cur)
			cur = nil
		}
	}
	if cur != nil {
		args = append(args, cur)
	}
	return args
}
