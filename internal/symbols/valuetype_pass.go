package symbols

import (
	"strings"

	"github.com/oxhq/cppscan/internal/cxxtoken"
)

// setValueTypeInTokenList implements spec.md §4.1's bottom-up ValueType
// propagation: literals get their lexeme class, variable references get
// their declared type, binary operators join their operands per the
// usual arithmetic conversions, casts take the target type, and so on.
// It is idempotent: re-running it against the same AST links and
// variable resolutions produces byte-identical ValueType values.
func (db *Database) setValueTypeInTokenList(list *cxxtoken.List) {
	for _, tok := range list.All() {
		db.inferValueType(tok)
	}
}

func (db *Database) inferValueType(tok *cxxtoken.Token) *ValueType {
	if vt, ok := tok.ValueType().(*ValueType); ok {
		return vt
	}

	var vt *ValueType
	switch {
	case tok.Type() == cxxtoken.TokNumber:
		vt = classifyNumberLiteral(tok.Str())
	case tok.Type() == cxxtoken.TokChar:
		vt = &ValueType{Primary: PrimaryChar, Sign: charSign(db.settings)}
	case tok.Type() == cxxtoken.TokString:
		vt = &ValueType{Primary: PrimaryChar, Sign: charSign(db.settings), PointerDepth: 1}
		vt.SetConst(0)
	case tok.Type() == cxxtoken.TokName:
		vt = db.inferNameValueType(tok)
	case tok.AstOperand1() != nil || tok.AstOperand2() != nil:
		vt = db.inferOperatorValueType(tok)
	default:
		vt = &ValueType{Primary: PrimaryUnknown}
	}

	tok.SetValueType(vt)
	return vt
}

func (db *Database) inferNameValueType(tok *cxxtoken.Token) *ValueType {
	if v, ok := db.VariableOf(tok); ok {
		if v.ValueType != nil {
			return v.ValueType
		}
		vt := db.typeFromTokens(v.TypeStart, v.TypeEnd)
		if v.Flags.Has(VarArray) {
			// an array name used as a value decays to a pointer to its
			// element type, the same conversion C applies at a call site.
			decayed := *vt
			decayed.PointerDepth++
			vt = &decayed
		}
		v.ValueType = vt
		return vt
	}
	return &ValueType{Primary: PrimaryUnknown}
}

// inferOperatorValueType handles binary ops (join), casts (target
// type), array subscript (element type), and member access (member's
// type), per spec.md's bottom-up propagation rules.
func (db *Database) inferOperatorValueType(tok *cxxtoken.Token) *ValueType {
	op1 := tok.AstOperand1()
	op2 := tok.AstOperand2()

	if tok.IsOp("[") && op1 != nil {
		base := db.inferValueType(op1)
		if base.PointerDepth > 0 {
			elem := *base
			elem.PointerDepth--
			return &elem
		}
		if base.ContainerInfo != nil {
			return &ValueType{Primary: PrimaryUnknown}
		}
		return &ValueType{Primary: PrimaryUnknown}
	}

	if tok.IsOp(".", "->") && op2 != nil {
		if m, ok := db.VariableOf(op2); ok && m.ValueType != nil {
			return m.ValueType
		}
		return &ValueType{Primary: PrimaryUnknown}
	}

	if tok.IsOp("(") && op2 != nil && tok.Link() != nil && op2.Index() > tok.Link().Index() {
		// a cast "(T) operand": the type written between the parentheses
		return db.typeFromTokens(tok.Next(), tok.Link().Previous())
	}

	if op1 != nil && op2 == nil {
		// unary operator: '*' dereferences, '&' takes address, others pass through
		operand := db.inferValueType(op1)
		switch tok.Str() {
		case "*":
			if operand.PointerDepth > 0 {
				deref := *operand
				deref.PointerDepth--
				return &deref
			}
			return &ValueType{Primary: PrimaryUnknown}
		case "&":
			addr := *operand
			addr.PointerDepth++
			return &addr
		default:
			return operand
		}
	}

	if op1 != nil && op2 != nil {
		return JoinArithmetic(db.inferValueType(op1), db.inferValueType(op2))
	}

	return &ValueType{Primary: PrimaryUnknown}
}

func (db *Database) typeFromTokens(start, end *cxxtoken.Token) *ValueType {
	if start == nil {
		return &ValueType{Primary: PrimaryUnknown}
	}
	vt := &ValueType{Sign: SignSigned}
	depth := 0
	var names []string
	for t := start; t != nil; t = t.Next() {
		switch t.Str() {
		case "unsigned":
			vt.Sign = SignUnsigned
		case "signed":
			vt.Sign = SignSigned
		case "const":
			vt.SetConst(depth)
		case "*":
			depth++
		case "&":
			vt.Reference = RefLValue
		case "&&":
			vt.Reference = RefRValue
		default:
			names = append(names, t.Str())
		}
		if t == end {
			break
		}
	}
	vt.PointerDepth = depth
	vt.Primary = primaryFromName(strings.Join(names, " "))
	if vt.Primary == PrimaryChar {
		vt.Sign = charSign(db.settings)
	}
	if vt.Primary == PrimaryRecord {
		vt.OriginalTypeName = strings.Join(names, " ")
	}
	return vt
}

func primaryFromName(name string) Primary {
	switch name {
	case "void":
		return PrimaryVoid
	case "bool":
		return PrimaryBool
	case "char":
		return PrimaryChar
	case "wchar_t":
		return PrimaryWChar
	case "short", "short int":
		return PrimaryShort
	case "int", "":
		return PrimaryInt
	case "long":
		return PrimaryLong
	case "long long", "long long int":
		return PrimaryLongLong
	case "float":
		return PrimaryFloat
	case "double":
		return PrimaryDouble
	case "long double":
		return PrimaryLongDouble
	default:
		return PrimaryRecord
	}
}

func charSign(s Settings) Sign {
	if s.CharIsUnsigned {
		return SignUnsigned
	}
	return SignSigned
}

func classifyNumberLiteral(text string) *ValueType {
	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, ".e") && !strings.HasPrefix(lower, "0x") {
		p := PrimaryDouble
		if strings.HasSuffix(lower, "f") {
			p = PrimaryFloat
		}
		return &ValueType{Primary: p, Sign: SignSigned}
	}
	sign := SignSigned
	primary := PrimaryInt
	if strings.Contains(lower, "u") {
		sign = SignUnsigned
	}
	switch {
	case strings.Contains(lower, "ll"):
		primary = PrimaryLongLong
	case strings.Contains(lower, "l"):
		primary = PrimaryLong
	}
	return &ValueType{Primary: primary, Sign: sign}
}
