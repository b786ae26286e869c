// Package format scans printf/scanf-family format strings and checks
// each conversion specifier against the ValueType of the argument token
// supplied for it, grounded on original_source/lib/checkio.cpp's
// checkFormatString. Unlike the source it does not special-case every
// libc variant; it covers the conversions the GLOSSARY names and
// leaves unrecognized ones as KindUnknown so callers can skip them
// instead of misreporting.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/cppscan/internal/symbols"
)

// Mode distinguishes printf-family (value consumed) from scanf-family
// (pointer written through) format strings — scanf conversions expect
// an extra level of pointer indirection and no literal flags/precision
// rules apply the same way.
type Mode int

const (
	Printf Mode = iota
	Scanf
)

// LengthModifier is the length prefix preceding a conversion character
// (hh, h, l, ll, L, j, z, t, q).
type LengthModifier int

const (
	LenNone LengthModifier = iota
	LenHH
	LenH
	LenL
	LenLL
	LenL_ // capital L, long double
	LenJ
	LenZ
	LenT
	LenQ
)

// Kind classifies what category of argument a conversion expects.
type Kind int

const (
	KindUnknown Kind = iota
	KindPercentLiteral
	KindSignedInt
	KindUnsignedInt
	KindFloat
	KindChar
	KindString
	KindPointer
	KindWriteback // %n / scanf target: argument must be a pointer to the converted type
)

// Specifier is one parsed conversion from a format string.
type Specifier struct {
	Raw           string // the full specifier text, e.g. "%-08.3ld"
	Offset        int    // byte offset of the leading '%' in the source string
	Positional    int    // 1-based POSIX "n$" argument reference, when HasPositional
	HasPositional bool
	Flags         string
	Width         int
	HasWidth      bool
	StarWidth     bool // width given as '*', consumes an extra int argument
	Precision     int
	HasPrec       bool
	StarPrec      bool
	Length        LengthModifier
	Conversion    rune
	Kind          Kind
}

// ConsumesArgument reports whether this specifier corresponds to a
// variadic argument at all ("%%" and literal text do not).
func (s Specifier) ConsumesArgument() bool {
	return s.Kind != KindPercentLiteral && s.Kind != KindUnknown
}

var lengthModNames = map[LengthModifier]string{
	LenNone: "", LenHH: "hh", LenH: "h", LenL: "l", LenLL: "ll",
	LenL_: "L", LenJ: "j", LenZ: "z", LenT: "t", LenQ: "q",
}

func (l LengthModifier) String() string { return lengthModNames[l] }

// Scan parses every conversion specifier out of a format string literal
// (without the surrounding quotes). It never returns an error for
// unrecognized conversions — those come back with Kind == KindUnknown
// so callers can skip them rather than guess.
func Scan(s string, mode Mode) ([]Specifier, error) {
	var out []Specifier
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		if runes[i] != '%' {
			i++
			continue
		}
		start := i
		i++
		if i >= len(runes) {
			return out, fmt.Errorf("format: dangling %% at offset %d", start)
		}
		if runes[i] == '%' {
			out = append(out, Specifier{Raw: "%%", Offset: start, Kind: KindPercentLiteral})
			i++
			continue
		}

		spec := Specifier{Offset: start}

		// optional POSIX positional reference "n$", consumed before flags;
		// only committed once a trailing '$' confirms it isn't a width or
		// a '0' flag, e.g. "%05d" backtracks and falls through to flags.
		posStart := i
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		}
		if i > posStart && i < len(runes) && runes[i] == '$' {
			n, _ := strconv.Atoi(string(runes[posStart:i]))
			spec.Positional, spec.HasPositional = n, true
			i++
		} else {
			i = posStart
		}

		// flags
		flagStart := i
		for i < len(runes) && strings.ContainsRune("-+ 0#'", runes[i]) {
			i++
		}
		spec.Flags = string(runes[flagStart:i])

		// width
		if i < len(runes) && runes[i] == '*' {
			spec.HasWidth, spec.StarWidth = true, true
			i++
		} else {
			widthStart := i
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
			if i > widthStart {
				spec.HasWidth = true
				fmt.Sscanf(string(runes[widthStart:i]), "%d", &spec.Width)
			}
		}

		// precision
		if i < len(runes) && runes[i] == '.' {
			i++
			spec.HasPrec = true
			if i < len(runes) && runes[i] == '*' {
				spec.StarPrec = true
				i++
			} else {
				precStart := i
				for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
					i++
				}
				fmt.Sscanf(string(runes[precStart:i]), "%d", &spec.Precision)
			}
		}

		// length modifier
		switch {
		case hasPrefix(runes, i, "hh"):
			spec.Length, i = LenHH, i+2
		case hasPrefix(runes, i, "ll"):
			spec.Length, i = LenLL, i+2
		case hasPrefix(runes, i, "h"):
			spec.Length, i = LenH, i+1
		case hasPrefix(runes, i, "l"):
			spec.Length, i = LenL, i+1
		case hasPrefix(runes, i, "L"):
			spec.Length, i = LenL_, i+1
		case hasPrefix(runes, i, "j"):
			spec.Length, i = LenJ, i+1
		case hasPrefix(runes, i, "z"):
			spec.Length, i = LenZ, i+1
		case hasPrefix(runes, i, "t"):
			spec.Length, i = LenT, i+1
		case hasPrefix(runes, i, "q"):
			spec.Length, i = LenQ, i+1
		}

		if i >= len(runes) {
			return out, fmt.Errorf("format: truncated conversion at offset %d", start)
		}

		// scanf '[' set conversion
		if mode == Scanf && runes[i] == '[' {
			setStart := i
			i++
			if i < len(runes) && runes[i] == '^' {
				i++
			}
			if i < len(runes) && runes[i] == ']' {
				i++
			}
			for i < len(runes) && runes[i] != ']' {
				i++
			}
			if i < len(runes) {
				i++
			}
			spec.Conversion = '['
			spec.Kind = KindWriteback
			spec.Raw = string(runes[start:i])
			_ = setStart
			out = append(out, spec)
			continue
		}

		spec.Conversion = runes[i]
		i++
		spec.Raw = string(runes[start:i])
		spec.Kind = classify(spec.Conversion, mode)
		out = append(out, spec)
	}
	return out, nil
}

func hasPrefix(runes []rune, i int, prefix string) bool {
	pr := []rune(prefix)
	if i+len(pr) > len(runes) {
		return false
	}
	for j, c := range pr {
		if runes[i+j] != c {
			return false
		}
	}
	return true
}

func classify(conv rune, mode Mode) Kind {
	if mode == Scanf {
		// every recognized scanf conversion except 'p' writes through a
		// pointer argument, so Check must see it as KindWriteback
		// regardless of the value it converts; 'p' and unrecognized
		// letters are KindUnknown.
		switch conv {
		case 'd', 'i', 'u', 'o', 'x', 'X', 'c', 's', '[', 'n',
			'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
			return KindWriteback
		default:
			return KindUnknown
		}
	}
	switch conv {
	case 'd', 'i':
		return KindSignedInt
	case 'u', 'o', 'x', 'X':
		return KindUnsignedInt
	case 'c':
		return KindChar
	case 's':
		return KindString
	case 'p':
		return KindPointer
	case 'n':
		return KindWriteback
	case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
		return KindFloat
	default:
		return KindUnknown
	}
}

// ExpectedPrimary maps a specifier's conversion+length to the
// ValueType.Primary/Sign a correctly-typed printf argument would carry.
// Scanf specifiers are KindWriteback, for which ok is false.
func (s Specifier) ExpectedPrimary() (prim symbols.Primary, sign symbols.Sign, ok bool) {
	switch s.Kind {
	case KindSignedInt:
		switch s.Length {
		case LenHH:
			return symbols.PrimaryChar, symbols.SignSigned, true
		case LenH:
			return symbols.PrimaryShort, symbols.SignSigned, true
		case LenL, LenJ, LenZ, LenT, LenQ:
			return symbols.PrimaryLong, symbols.SignSigned, true
		case LenLL:
			return symbols.PrimaryLongLong, symbols.SignSigned, true
		default:
			return symbols.PrimaryInt, symbols.SignSigned, true
		}
	case KindUnsignedInt:
		switch s.Length {
		case LenHH:
			return symbols.PrimaryChar, symbols.SignUnsigned, true
		case LenH:
			return symbols.PrimaryShort, symbols.SignUnsigned, true
		case LenL, LenJ, LenZ, LenT, LenQ:
			return symbols.PrimaryLong, symbols.SignUnsigned, true
		case LenLL:
			return symbols.PrimaryLongLong, symbols.SignUnsigned, true
		default:
			return symbols.PrimaryInt, symbols.SignUnsigned, true
		}
	case KindFloat:
		if s.Length == LenL_ {
			return symbols.PrimaryLongDouble, symbols.SignUnknown, true
		}
		return symbols.PrimaryDouble, symbols.SignUnknown, true
	case KindChar:
		return symbols.PrimaryChar, symbols.SignUnknown, true
	default:
		return symbols.PrimaryUnknown, symbols.SignUnknown, false
	}
}

// InvalidLengthCombination reports the third §4.6 diagnostic category:
// a length modifier paired with a conversion it cannot apply to, e.g.
// "%Ld" ('L' is long-double-only) or "%hf" (short only modifies
// integer conversions), grounded on checkio.cpp's invalidLengthModifierError.
func (s Specifier) InvalidLengthCombination() bool {
	switch s.Length {
	case LenNone:
		return false
	case LenL_: // capital L: long double, valid only with floating conversions
		return !strings.ContainsRune("eEfFgGaA", s.Conversion)
	default: // hh/h/l/ll/j/z/t/q: rejected only on a printf floating conversion
		return s.Kind == KindFloat
	}
}
