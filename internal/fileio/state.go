// Package fileio tracks per-variable FILE* usage across a function
// body, flagging use-after-close, read/write mode violations and
// missing repositioning between reads and writes. It is grounded on
// original_source/lib/checkio.cpp's checkFileUsage/Filepointer state
// machine, reshaped into an explicit, stepped state object instead of
// an AST walk baked into one function.
package fileio

// Mode is the access mode a stream was opened with.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeClosed
	ModeRead
	ModeWrite
	ModeReadWrite
)

// Operation is the kind of access a single file call performs.
type Operation int

const (
	OpNone Operation = iota
	OpUnimportant // whitelisted calls (feof, ferror, ...) that never change state
	OpRead
	OpWrite
	OpPositioning // fseek/fsetpos/rewind/fflush
	OpOpen
	OpClose
	OpUnknown
)

// AppendMode records whether a stream was opened in append mode, which
// makes explicit repositioning a no-op.
type AppendMode int

const (
	AppendUnknown AppendMode = iota
	AppendPlain
	AppendReadWrite
)

// ModeFromString derives a Mode from an fopen-style mode string such as
// "r", "w+", "ab".
func ModeFromString(s string) Mode {
	hasPlus, hasW, hasA, hasR := false, false, false, false
	for i, c := range s {
		switch c {
		case '+':
			if i > 0 {
				hasPlus = true
			}
		case 'w':
			hasW = true
		case 'a':
			hasA = true
		case 'r':
			hasR = true
		}
	}
	switch {
	case hasPlus:
		return ModeReadWrite
	case hasW || hasA:
		return ModeWrite
	case hasR:
		return ModeRead
	default:
		return ModeUnknown
	}
}

// Stream is the tracked state of one FILE* variable.
type Stream struct {
	VarID       uint32
	Filename    string
	Mode        Mode
	ModeDepth   int // scope depth at which Mode was last set
	LastOp      Operation
	OpDepth     int // scope depth at which LastOp was last set
	Append      AppendMode
	initialized bool
}

// NewStream seeds tracking for a variable. Locally declared pointers
// default to Closed unless declared with an initializer (constructor
// call), matching checkFileUsage's handling of FILE* var declarations.
func NewStream(varID uint32, hasInitializer bool) *Stream {
	m := ModeClosed
	if hasInitializer {
		m = ModeUnknown
	}
	return &Stream{VarID: varID, Mode: m}
}

// Violation is one detected misuse, named after checkio.cpp's
// individual *Error report functions.
type Violation string

const (
	ViolationUseClosedFile       Violation = "useClosedFile"
	ViolationReadWriteOnlyFile   Violation = "readWriteOnlyFile"
	ViolationWriteReadOnlyFile   Violation = "writeReadOnlyFile"
	ViolationIOWithoutPositioning Violation = "ioWithoutPositioning"
	ViolationSeekOnAppendedFile  Violation = "seekOnAppendedFile"
	ViolationIncompatibleOpen    Violation = "incompatibleFileOpen"
	ViolationFflushOnInputStream Violation = "fflushOnInputStream"
)

// The scope depth is tracked by the caller and passed to Apply/ExitScope;
// Stream keeps no depth of its own beyond ModeDepth/OpDepth.
//
// ExitScope resets whatever state was established inside a scope that
// is now closing, the same "indent < filepointer.mode_indent" rule
// checkFileUsage applies per '}'.
func (s *Stream) ExitScope(depth int) {
	if depth < s.ModeDepth {
		s.ModeDepth = 0
		s.Mode = ModeUnknown
	}
	if depth < s.OpDepth {
		s.OpDepth = 0
		s.LastOp = OpUnknown
	}
}

// ResetOnExit clears all tracked state, used on return/continue/break
// and at the end of each function body.
func (s *Stream) ResetOnExit() {
	s.Mode = ModeUnknown
	s.ModeDepth = 0
	s.LastOp = OpUnknown
	s.OpDepth = 0
}

// Apply advances the stream's state for one operation performed at the
// given scope depth, returning any violation detected. Non-violating
// operations still update LastOp/OpDepth for subsequent calls.
func (s *Stream) Apply(op Operation, depth int, windows bool) (Violation, bool) {
	var violation Violation
	var found bool

	switch op {
	case OpPositioning:
		if s.Mode == ModeClosed {
			violation, found = ViolationUseClosedFile, true
		} else if s.Append == AppendPlain {
			violation, found = ViolationSeekOnAppendedFile, true
		}
	case OpRead:
		switch {
		case s.Mode == ModeClosed:
			violation, found = ViolationUseClosedFile, true
		case s.Mode == ModeWrite:
			violation, found = ViolationReadWriteOnlyFile, true
		case s.LastOp == OpWrite:
			violation, found = ViolationIOWithoutPositioning, true
		}
	case OpWrite:
		switch {
		case s.Mode == ModeClosed:
			violation, found = ViolationUseClosedFile, true
		case s.Mode == ModeRead:
			violation, found = ViolationWriteReadOnlyFile, true
		case s.LastOp == OpRead:
			violation, found = ViolationIOWithoutPositioning, true
		}
	case OpClose:
		if s.Mode == ModeClosed {
			violation, found = ViolationUseClosedFile, true
		} else {
			s.Mode = ModeClosed
		}
		s.ModeDepth = depth
	case OpUnimportant:
		if s.Mode == ModeClosed {
			violation, found = ViolationUseClosedFile, true
		}
	case OpUnknown:
		s.Mode = ModeUnknown
		s.ModeDepth = 0
	}

	if op != OpNone && op != OpUnimportant {
		s.OpDepth = depth
		s.LastOp = op
	}
	return violation, found
}

// Open records a successful fopen/freopen/tmpfile-style call, deriving
// Mode/Append from the mode string and returning whether a sibling
// stream already has the same filename open for writing (the
// incompatibleFileOpen case).
func (s *Stream) Open(filename, modeStr string, depth int, siblings []*Stream) (Violation, bool) {
	for _, other := range siblings {
		if other == s || other.Filename == "" {
			continue
		}
		if other.Filename == filename && (other.Mode == ModeReadWrite || other.Mode == ModeWrite) {
			s.Filename = filename
			s.Mode = ModeFromString(modeStr)
			s.ModeDepth = depth
			return ViolationIncompatibleOpen, true
		}
	}
	s.Filename = filename
	s.Mode = ModeFromString(modeStr)
	s.ModeDepth = depth

	appendRequested := false
	for _, c := range modeStr {
		if c == 'a' {
			appendRequested = true
		}
	}
	switch {
	case appendRequested && s.Mode == ModeReadWrite:
		s.Append = AppendReadWrite
	case appendRequested:
		s.Append = AppendPlain
	default:
		s.Append = AppendUnknown
	}
	return "", false
}
