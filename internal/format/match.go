package format

import (
	"fmt"

	"github.com/oxhq/cppscan/internal/symbols"
)

// Severity mirrors the three-way split checkFormatString uses when
// deciding how confidently to report a mismatch.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityPortability
)

// Mismatch describes one argument whose ValueType disagrees with what
// its conversion specifier expects.
type Mismatch struct {
	Specifier Specifier
	ArgIndex  int // 1-based position among the variadic arguments
	Severity  Severity
	Message   string
	ID        string // overrides the caller's derived diagnostic id when non-empty
	CWE       int    // overrides the caller's default CWE when non-zero
}

// Argument pairs a format-string argument position with its inferred
// type, as produced by walking the call's argument list against the
// symbol database.
type Argument struct {
	Type          *symbols.ValueType
	IsAddressOf   bool // argument was written as &expr, satisfies a writeback conversion
	HasBufferSize bool // argument is a fixed-size array; BufferSize is its element count
	BufferSize    int
}

// Check compares each consuming specifier in specs against the
// corresponding Argument and returns every mismatch found. Arguments
// beyond the number of consuming specifiers, and specifiers beyond the
// number of arguments, are reported as count mismatches rather than
// silently ignored — checkFormatString treats both as real defects.
func Check(specs []Specifier, args []Argument) []Mismatch {
	var out []Mismatch
	argIdx := 0
	maxPos := 0 // highest in-range positional reference seen
	for _, s := range specs {
		if s.StarWidth {
			argIdx++ // '*' width consumes its own int argument first
		}
		if s.StarPrec {
			argIdx++
		}
		if !s.ConsumesArgument() {
			continue
		}

		// a POSIX "n$" positional reference picks its own argument
		// instead of advancing through the sequential cursor, per
		// checkFormatString's wrongPrintfScanfParameterPositionError.
		pos := argIdx
		if s.HasPositional {
			if s.Positional < 1 || s.Positional > len(args) {
				out = append(out, Mismatch{
					Specifier: s, ArgIndex: s.Positional, Severity: SeverityWarning,
					ID:  "wrongPrintfScanfParameterPositionError",
					CWE: 685,
					Message: fmt.Sprintf("%s references parameter %d while %d argument(s) are given", s.Raw, s.Positional, len(args)),
				})
				argIdx++
				continue
			}
			pos = s.Positional - 1
			if s.Positional > maxPos {
				maxPos = s.Positional
			}
		}

		if pos >= len(args) {
			out = append(out, Mismatch{
				Specifier: s, ArgIndex: pos + 1, Severity: SeverityWarning,
				Message: fmt.Sprintf("%s requires an argument but none was given", s.Raw),
			})
			argIdx++
			continue
		}
		arg := args[pos]
		if m, ok := checkOne(s, arg, pos+1); ok {
			out = append(out, m)
		}
		argIdx++
	}
	consumed := argIdx
	if maxPos > consumed {
		consumed = maxPos
	}
	if consumed < len(args) {
		out = append(out, Mismatch{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d argument(s) supplied but the format string consumes only %d", len(args), consumed),
		})
	}
	return out
}

func checkOne(s Specifier, arg Argument, pos int) (Mismatch, bool) {
	if s.Kind == KindWriteback {
		if !arg.IsAddressOf && (arg.Type == nil || !arg.Type.IsPointer()) {
			return Mismatch{
				Specifier: s, ArgIndex: pos, Severity: SeverityError,
				Message: fmt.Sprintf("%s writes through its argument, but argument %d is not a pointer", s.Raw, pos),
			}, true
		}
		if m, ok := checkScanfBufferWidth(s, arg, pos); ok {
			return m, true
		}
		return Mismatch{}, false
	}
	if s.Kind == KindString || s.Kind == KindPointer {
		if arg.Type != nil && !arg.Type.IsPointer() && arg.Type.Primary != symbols.PrimaryUnknown {
			return Mismatch{
				Specifier: s, ArgIndex: pos, Severity: SeverityWarning,
				Message: fmt.Sprintf("%s expects a pointer but argument %d has type %s", s.Raw, pos, arg.Type.Primary),
			}, true
		}
		return Mismatch{}, false
	}

	wantPrim, wantSign, ok := s.ExpectedPrimary()
	if !ok || arg.Type == nil || arg.Type.Primary == symbols.PrimaryUnknown {
		return Mismatch{}, false
	}
	if arg.Type.IsPointer() {
		return Mismatch{
			Specifier: s, ArgIndex: pos, Severity: SeverityError,
			Message: fmt.Sprintf("%s expects a value but argument %d is a pointer", s.Raw, pos),
		}, true
	}
	if !isIntegral(arg.Type.Primary) && !isFloating(arg.Type.Primary) {
		return Mismatch{}, false
	}
	if isFloating(wantPrim) != isFloating(arg.Type.Primary) {
		sev := SeverityError
		return Mismatch{
			Specifier: s, ArgIndex: pos, Severity: sev,
			Message: fmt.Sprintf("%s expects %s but argument %d has type %s", s.Raw, wantPrim, pos, arg.Type.Primary),
		}, true
	}
	if wantSign != symbols.SignUnknown && arg.Type.Sign != symbols.SignUnknown && wantSign != arg.Type.Sign &&
		isIntegral(arg.Type.Primary) {
		return Mismatch{
			Specifier: s, ArgIndex: pos, Severity: SeverityPortability,
			Message: fmt.Sprintf("%s expects a %s value but argument %d is %s", s.Raw, signName(wantSign), pos, signName(arg.Type.Sign)),
		}, true
	}
	return Mismatch{}, false
}

// checkScanfBufferWidth is the §4.6 "field-width vs destination-buffer-
// size" check: %s and %[...] null-terminate what they write, so their
// field width must leave room for that byte; %c never does, so its
// field width (1 when absent) only has to fit the buffer outright.
// Known-size fixed arrays are the only destinations this can reason
// about; pointer targets of unknown size are left unchecked, the same
// conservatism the rest of this package applies when a type is unknown.
func checkScanfBufferWidth(s Specifier, arg Argument, pos int) (Mismatch, bool) {
	if !arg.HasBufferSize {
		return Mismatch{}, false
	}
	switch s.Conversion {
	case 's', '[':
		maxSafe := arg.BufferSize - 1
		if !s.HasWidth {
			return Mismatch{
				Specifier: s, ArgIndex: pos, Severity: SeverityError,
				ID:  "invalidscanf",
				CWE: 120,
				Message: fmt.Sprintf(
					"%s has no field width, but argument %d is a %d-byte buffer; an unbounded read can overflow it",
					s.Raw, pos, arg.BufferSize),
			}, true
		}
		if !s.StarWidth && s.Width > maxSafe {
			return Mismatch{
				Specifier: s, ArgIndex: pos, Severity: SeverityError,
				ID:  "invalidscanf",
				CWE: 120,
				Message: fmt.Sprintf(
					"%s field width %d leaves no room for the terminating null in argument %d's %d-byte buffer",
					s.Raw, s.Width, pos, arg.BufferSize),
			}, true
		}
	case 'c':
		if s.HasWidth && !s.StarWidth && s.Width > arg.BufferSize {
			return Mismatch{
				Specifier: s, ArgIndex: pos, Severity: SeverityError,
				ID:  "invalidscanf",
				CWE: 120,
				Message: fmt.Sprintf(
					"%s field width %d exceeds argument %d's %d-byte buffer",
					s.Raw, s.Width, pos, arg.BufferSize),
			}, true
		}
	}
	return Mismatch{}, false
}

func signName(s symbols.Sign) string {
	switch s {
	case symbols.SignSigned:
		return "signed"
	case symbols.SignUnsigned:
		return "unsigned"
	default:
		return "unknown-signed"
	}
}

// isIntegral/isFloating mirror symbols.Primary's own (unexported)
// classification; duplicated here since ExpectedPrimary only returns
// the Primary value, not the predicate.
func isIntegral(p symbols.Primary) bool {
	switch p {
	case symbols.PrimaryBool, symbols.PrimaryChar, symbols.PrimaryShort, symbols.PrimaryWChar,
		symbols.PrimaryInt, symbols.PrimaryLong, symbols.PrimaryLongLong, symbols.PrimaryUnknownInt:
		return true
	default:
		return false
	}
}

func isFloating(p symbols.Primary) bool {
	switch p {
	case symbols.PrimaryFloat, symbols.PrimaryDouble, symbols.PrimaryLongDouble:
		return true
	default:
		return false
	}
}
