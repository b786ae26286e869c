// Package valueflow defines the Value tagged union and the Analyzer
// contract every value-flow client (forward, reverse, and the concrete
// analyzers built on top of them) implements.
package valueflow

import "github.com/oxhq/cppscan/internal/cxxtoken"

// Kind discriminates the Value tagged union. Exactly one of Value's
// per-kind fields is meaningful for a given Kind — this mirrors
// DESIGN NOTES §9 ("a sum type with one variant per kind ... use the
// discriminant directly").
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindTok
	KindSymbolicInt
	KindContainerSize
	KindIterator
	KindLifetime
	KindUninit
	KindBufferSize
	KindMoveKind
)

// Certainty classifies how strongly a Value holds.
type Certainty int

const (
	Possible Certainty = iota
	Known
	Inconclusive
	Impossible
)

// Bound tags which side of a range a Value represents.
type Bound int

const (
	BoundPoint Bound = iota
	BoundLower
	BoundUpper
)

// LifetimeKind classifies what a Lifetime value's referent is.
type LifetimeKind int

const (
	LifetimeObject LifetimeKind = iota
	LifetimeLambda
	LifetimeIterator
	LifetimeAddress
	LifetimeSubObject
)

// MoveState classifies a MoveKind value.
type MoveState int

const (
	NotMoved MoveState = iota
	Moved
	Forwarded
)

// ErrorPathStep is one (token, explanation) breadcrumb of a
// diagnostic's error path.
type ErrorPathStep struct {
	Token   *cxxtoken.Token
	Message string
}

// Value is the tagged union spec.md §3 describes. Every Value carries
// a Kind plus the shared metadata (Certainty, Bound, VarID, condition,
// path bitmask, error path); only the field matching Kind is populated.
type Value struct {
	Kind Kind

	Int           int64 // MathLib::bigint in the source is a 64-bit signed integer
	Float         float64
	Tok           *cxxtoken.Token
	SymbolicOffset int64
	ContainerSize int64
	IteratorPos   int64 // relative to container begin (negative = before begin)
	LifetimeTok   *cxxtoken.Token
	LifetimeKind  LifetimeKind
	UninitDepth   int
	BufferBytes   int64
	Move          MoveState

	Certainty  Certainty
	Bound      Bound
	VarID      uint32
	Condition  *cxxtoken.Token
	PathMask   uint64
	ErrorPath  []ErrorPathStep
}

// WithErrorStep returns a copy of v with one more breadcrumb appended —
// values are conceptually immutable once attached to a token.
func (v Value) WithErrorStep(tok *cxxtoken.Token, msg string) Value {
	v.ErrorPath = append(append([]ErrorPathStep{}, v.ErrorPath...), ErrorPathStep{Token: tok, Message: msg})
	return v
}

// SameSubKind reports whether v and other are the same Value Kind,
// used to enforce "no value of kind Known coexists on the same token
// with another Known value of the same sub-kind" (spec.md §3).
func (v Value) SameSubKind(other Value) bool { return v.Kind == other.Kind }
