package symbols

// Sign is the signedness of a ValueType's primary arithmetic type.
type Sign int

const (
	SignUnknown Sign = iota
	SignSigned
	SignUnsigned
)

// Primary enumerates the primary type categories a ValueType may carry.
type Primary int

const (
	PrimaryUnknown Primary = iota
	PrimaryPOD
	PrimaryRecord
	PrimarySmartPointer
	PrimaryContainer
	PrimaryIterator
	PrimaryVoid
	PrimaryBool
	PrimaryChar
	PrimaryShort
	PrimaryWChar
	PrimaryInt
	PrimaryLong
	PrimaryLongLong
	PrimaryUnknownInt
	PrimaryFloat
	PrimaryDouble
	PrimaryLongDouble
)

func (p Primary) String() string {
	names := [...]string{
		"unknown", "pod", "record", "smart_pointer", "container",
		"iterator", "void", "bool", "char", "short", "wchar_t", "int",
		"long", "longlong", "unknown_int", "float", "double", "longdouble",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

// isIntegral reports whether p denotes an integral (non-floating,
// non-record) primary type eligible for the usual arithmetic
// conversions.
func (p Primary) isIntegral() bool {
	switch p {
	case PrimaryBool, PrimaryChar, PrimaryShort, PrimaryWChar, PrimaryInt,
		PrimaryLong, PrimaryLongLong, PrimaryUnknownInt:
		return true
	default:
		return false
	}
}

func (p Primary) isFloating() bool {
	switch p {
	case PrimaryFloat, PrimaryDouble, PrimaryLongDouble:
		return true
	default:
		return false
	}
}

// rank orders integral types for the usual arithmetic conversions;
// higher ranks win when joining two operands.
func (p Primary) rank() int {
	order := map[Primary]int{
		PrimaryBool: 0, PrimaryChar: 1, PrimaryShort: 2, PrimaryWChar: 2,
		PrimaryInt: 3, PrimaryUnknownInt: 3, PrimaryLong: 4, PrimaryLongLong: 5,
		PrimaryFloat: 6, PrimaryDouble: 7, PrimaryLongDouble: 8,
	}
	return order[p]
}

// Reference denotes whether a ValueType is a reference and of which kind.
type Reference int

const (
	RefNone Reference = iota
	RefLValue
	RefRValue
)

// ValueType describes the static type of an expression token: its sign,
// primary category, pointer depth, per-indirection constness, reference
// kind, and — for records — the Scope that defines the referenced type.
type ValueType struct {
	Sign             Sign
	Primary          Primary
	PointerDepth      int
	Constness        uint32 // bit i = constness of i-th indirection (0 = the value itself)
	Reference        Reference
	TypeScope        ScopeID
	HasTypeScope     bool
	ContainerInfo    *ContainerInfo
	OriginalTypeName string
}

// ContainerInfo carries the subset of per-container library records
// (spec.md §6) a ValueType needs to answer "what does operator[] / at /
// size / begin yield".
type ContainerInfo struct {
	Name           string
	StdStringLike  bool
	ElementTypePos int
}

func (vt *ValueType) IsPointer() bool { return vt.PointerDepth > 0 }
func (vt *ValueType) IsConst(indirection int) bool {
	return vt.Constness&(1<<uint(indirection)) != 0
}
func (vt *ValueType) SetConst(indirection int) { vt.Constness |= 1 << uint(indirection) }

// MatchResult ranks how well an argument's ValueType matches a
// parameter's ValueType.
type MatchResult int

const (
	MatchUnknown MatchResult = iota
	MatchNoMatch
	MatchFallback2
	MatchFallback1
	MatchSame
)

// MatchParameter implements spec.md §4.1's argument-matching algorithm:
// SAME requires identical primary, sign and pointer depth; FALLBACK1
// allows implicit numeric promotions (integral/floating rank widening,
// or int<->float); FALLBACK2 allows lossy-but-legal conversions
// (signed<->unsigned of the same rank, integral<->enum surfaced as
// Record here); NOMATCH otherwise; UNKNOWN when either side is
// unresolved.
func (vt *ValueType) MatchParameter(param *ValueType) MatchResult {
	if vt == nil || param == nil {
		return MatchUnknown
	}
	if vt.Primary == PrimaryUnknown || param.Primary == PrimaryUnknown {
		return MatchUnknown
	}
	if vt.PointerDepth != param.PointerDepth {
		// A pointer never matches a non-pointer, except by explicit cast,
		// which this simple matcher treats as NOMATCH (conservative).
		return MatchNoMatch
	}
	if vt.Primary == param.Primary && vt.Sign == param.Sign {
		return MatchSame
	}
	if vt.PointerDepth > 0 {
		// Pointer types beyond identical primary+sign never implicitly
		// convert for argument-matching purposes.
		return MatchNoMatch
	}
	if vt.Primary.isIntegral() && param.Primary.isIntegral() {
		if vt.Sign == param.Sign {
			if param.Primary.rank() >= vt.Primary.rank() {
				return MatchFallback1
			}
			return MatchFallback2
		}
		// signed<->unsigned of the same width is a legal, lossy conversion
		if param.Primary.rank() == vt.Primary.rank() {
			return MatchFallback2
		}
		return MatchFallback2
	}
	if vt.Primary.isFloating() && param.Primary.isFloating() {
		if param.Primary.rank() >= vt.Primary.rank() {
			return MatchFallback1
		}
		return MatchFallback2
	}
	if (vt.Primary.isIntegral() && param.Primary.isFloating()) ||
		(vt.Primary.isFloating() && param.Primary.isIntegral()) {
		return MatchFallback1
	}
	if (vt.Primary.isIntegral() && param.Primary == PrimaryRecord) ||
		(vt.Primary == PrimaryRecord && param.Primary.isIntegral()) {
		return MatchFallback2
	}
	return MatchNoMatch
}

// JoinArithmetic computes the usual-arithmetic-conversions result type
// of a binary operator applied to a and b (spec.md §4.1,
// setValueTypeInTokenList).
func JoinArithmetic(a, b *ValueType) *ValueType {
	if a == nil || b == nil {
		return &ValueType{Primary: PrimaryUnknown}
	}
	if a.PointerDepth > 0 && b.PointerDepth == 0 {
		return a
	}
	if b.PointerDepth > 0 && a.PointerDepth == 0 {
		return b
	}
	winner := a
	if b.Primary.rank() > a.Primary.rank() {
		winner = b
	}
	sign := SignSigned
	if a.Sign == SignUnsigned || b.Sign == SignUnsigned {
		sign = SignUnsigned
	}
	result := *winner
	result.Sign = sign
	result.PointerDepth = 0
	result.Reference = RefNone
	return &result
}
