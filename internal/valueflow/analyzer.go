package valueflow

import "github.com/oxhq/cppscan/internal/cxxtoken"

// Action is the bit-set spec.md §3 describes: what an Analyzer did (or
// would do) at a token. Values combine with bitwise OR, mirroring
// cppcheck's Analyzer::Action.
type Action uint32

const (
	ActionNone Action = 0
	ActionRead Action = 1 << iota
	ActionWrite
	ActionInvalid
	ActionInconclusive
	ActionMatch
	ActionIdempotent
	ActionIncremental
	ActionSymbolicMatch
	ActionInternal
)

func (a Action) Has(bit Action) bool { return a&bit != 0 }
func (a Action) IsNone() bool        { return a == ActionNone }
func (a Action) IsModified() bool    { return a.Has(ActionWrite) || a.Has(ActionInvalid) }
func (a Action) Matches() bool       { return a.Has(ActionMatch) }

// Terminate classifies why a forward/reverse walk stopped.
type Terminate int

const (
	TerminateNone Terminate = iota
	TerminateBail
	TerminateEscape
	TerminateModified
	TerminateInconclusive
	TerminateConditional
)

func (t Terminate) String() string {
	switch t {
	case TerminateBail:
		return "bail"
	case TerminateEscape:
		return "escape"
	case TerminateModified:
		return "modified"
	case TerminateInconclusive:
		return "inconclusive"
	case TerminateConditional:
		return "conditional"
	default:
		return "none"
	}
}

// Result is the accumulated outcome of a walk: the union of every
// Action seen plus the first non-None Terminate encountered. Update folds
// rhs into the receiver the way Analyzer::Result::update does: the
// first non-None terminate wins, actions always OR together.
type Result struct {
	Action    Action
	Terminate Terminate
}

func (r *Result) Update(rhs Result) {
	if r.Terminate == TerminateNone {
		r.Terminate = rhs.Terminate
	}
	r.Action |= rhs.Action
}

// Direction distinguishes a forward walk (source order) from a reverse
// one (against source order, toward the function start).
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// AssumeFlags modifies how Analyzer.Assume records a condition.
type AssumeFlags uint32

const (
	AssumeNone AssumeFlags = 0
	AssumeQuiet AssumeFlags = 1 << iota
	AssumeAbsolute
	AssumeContainerEmpty
)

// EvalKind selects what Analyzer.Evaluate is being asked to fold.
type EvalKind int

const (
	EvalIntegral EvalKind = iota
	EvalContainerEmpty
)

// Analyzer is the capability every value-flow client (forward engine,
// reverse engine, concrete trackers) implements. The engines never
// inspect a concrete Value; they only compose Actions and call back
// into this interface, per spec.md §4.2.
type Analyzer interface {
	// Analyze inspects tok without mutating state.
	Analyze(tok *cxxtoken.Token, dir Direction) Action
	// Update attaches or mutates Values at tok given the already-computed action.
	Update(tok *cxxtoken.Token, action Action, dir Direction)
	// Evaluate tries to fold tok to a set of possible integer outcomes
	// under the analyzer's current assumptions; an empty result means
	// "unknown".
	Evaluate(kind EvalKind, tok *cxxtoken.Token, ctx *cxxtoken.Token) []int64

	// LowerToPossible/LowerToInconclusive downgrade already-known values
	// when crossing an uncertain boundary (e.g. a forked branch); they
	// report whether anything changed.
	LowerToPossible() bool
	LowerToInconclusive() bool

	// UpdateScope decides whether to explore a branch whose body may
	// modify the tracked expression.
	UpdateScope(endBlock *cxxtoken.Token, modified bool) bool

	IsConditional() bool
	StopOnCondition(condTok *cxxtoken.Token) bool
	Assume(tok *cxxtoken.Token, state bool, flags AssumeFlags)

	// Reanalyze spawns a derived analyzer for the expression at tok,
	// used when the engines encounter a mid-traversal assignment that
	// should itself be tracked.
	Reanalyze(tok *cxxtoken.Token, msg string) Analyzer

	// Invalid reports whether the analyzer has self-detected it cannot
	// continue (e.g. its tracked expression's declaration went out of scope).
	Invalid() bool

	// Clone returns a cheap, independent copy of the analyzer's working
	// state for forking a branch (if/else, switch cases, catch clauses).
	Clone() Analyzer
}
