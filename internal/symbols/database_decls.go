package symbols

import (
	"strconv"

	"github.com/oxhq/cppscan/internal/cxxtoken"
)

var typeKeywords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "unsigned": true,
	"signed": true, "wchar_t": true, "auto": true, "const": true,
	"volatile": true, "static": true, "extern": true, "mutable": true,
	"inline": true, "virtual": true, "constexpr": true, "typename": true,
	"struct": true, "class": true, "union": true, "enum": true,
}

// collectDeclarations enumerates Variable and Function declarations in
// every scope by a second, cheap pass over the flat token stream: a
// run of type-looking tokens followed by a name, followed by a
// declarator terminator, is a variable; a name directly followed by a
// balanced `(...)` and then `{` or `;` at class/namespace/global scope
// is a function.
func (db *Database) collectDeclarations(list *cxxtoken.List) {
	toks := list.All()
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.Type() != cxxtoken.TokName && !(tok.Type() == cxxtoken.TokKeyword && typeKeywords[tok.Str()]) {
			continue
		}
		// Skip tokens that are themselves the start of a scope keyword run
		// already consumed as part of a type (handled by scanning forward
		// from the first type token only).
		if prev := tok.Previous(); prev != nil && isTypeToken(prev) {
			continue
		}

		end := i
		for end < len(toks) && (isTypeToken(toks[end]) || toks[end].IsOp("*", "&")) {
			end++
		}
		// isTypeToken accepts any name, so the run also swallows the
		// declared name itself: step back onto it.
		if end > i+1 && toks[end-1].Type() == cxxtoken.TokName {
			end--
		}
		if end >= len(toks) || end == i {
			continue
		}
		nameTok := toks[end]
		if nameTok.Type() != cxxtoken.TokName {
			continue
		}
		after := nameTok.Next()
		if after == nil {
			continue
		}

		if after.IsOp("(") {
			closeParen := after.Link()
			if closeParen == nil {
				continue
			}
			follow := closeParen.Next()
			isFuncBody := follow != nil && follow.IsOp("{")
			isFuncDecl := follow != nil && follow.IsOp(";")
			scope := db.Scope(scopeIDOf(nameTok.Scope()))
			if (isFuncBody || isFuncDecl) && !scope.Kind.IsExecutable() {
				db.addFunction(list, toks[i:end], nameTok, after, closeParen, follow)
				continue
			}
		}

		if after.IsOp("[") {
			dims, terminator := arrayDimensions(after)
			if terminator != nil && terminator.IsOp(";", "=", ",") {
				db.addVariable(toks[i:end], nameTok, terminator, dims)
			}
			continue
		}

		if after.IsOp(";", "=", ",", ")") {
			db.addVariable(toks[i:end], nameTok, after, nil)
		}
	}
}

// arrayDimensions walks one or more bracketed declarator suffixes
// starting at the first '[', returning each dimension (Known/Size set
// when the bound is an integer literal, e.g. "char buf[16]"; left
// unknown for "int xs[]" or a non-constant bound) and the token that
// follows the last ']'.
func arrayDimensions(open *cxxtoken.Token) ([]Dimension, *cxxtoken.Token) {
	var dims []Dimension
	t := open
	for t != nil && t.IsOp("[") {
		closeBracket := t.Link()
		if closeBracket == nil {
			return dims, nil
		}
		dim := Dimension{}
		if inner := t.Next(); inner != nil && inner != closeBracket && inner.Type() == cxxtoken.TokNumber {
			if n, err := strconv.ParseInt(inner.Str(), 0, 64); err == nil {
				dim.Known, dim.Size = true, n
			}
		}
		dims = append(dims, dim)
		t = closeBracket.Next()
	}
	return dims, t
}

func isTypeToken(t *cxxtoken.Token) bool {
	if t.Type() == cxxtoken.TokName {
		return true // could be a user type name; accepted liberally
	}
	return t.Type() == cxxtoken.TokKeyword && typeKeywords[t.Str()]
}

func (db *Database) addFunction(list *cxxtoken.List, typeToks []*cxxtoken.Token, nameTok, argStart, argEnd, bodyOrSemi *cxxtoken.Token) {
	scopeID := scopeIDOf(nameTok.Scope())
	scope := db.Scope(scopeID)

	fid := FunctionID(len(db.functions))
	fn := Function{
		ID: fid, NameToken: nameTok, ArgListStart: argStart, Scope: scopeID,
	}
	if bodyOrSemi.IsOp("{") {
		fn.Flags |= FuncHasBody
		fn.BodyStart = bodyOrSemi
	}
	if len(typeToks) > 0 {
		fn.RetTypeStart, fn.RetTypeEnd = typeToks[0], typeToks[len(typeToks)-1]
	}
	if scope.ClassName != "" {
		switch nameTok.Str() {
		case scope.ClassName:
			fn.Kind = FuncConstructor
		case "~" + scope.ClassName:
			fn.Kind = FuncDestructor
		}
	}
	if nameTok.Str() == "operator=" {
		fn.Kind = FuncOperatorEqual
	}
	for t := argStart.Next(); t != nil && t != argEnd; t = t.Next() {
		if t.Str() == "const" && t.Next() == argEnd {
			fn.Flags |= FuncConst
		}
	}

	fn.Arguments = db.collectArguments(argStart, argEnd, fid)

	db.functions = append(db.functions, fn)
	scope.Functions = append(scope.Functions, fid)
}

func (db *Database) collectArguments(start, end *cxxtoken.Token, owner FunctionID) []VariableID {
	var ids []VariableID
	var current []*cxxtoken.Token
	flush := func() {
		name := lastNameToken(current)
		if name == nil {
			current = nil
			return
		}
		vid := VariableID(len(db.variables))
		v := Variable{ID: vid, NameToken: name, Kind: VarArgument, Index: len(ids)}
		if len(current) > 1 {
			v.TypeStart, v.TypeEnd = current[0], current[len(current)-2]
		}
		v.declID = db.nextDeclID()
		db.byDeclID[v.declID] = vid
		name.SetVarID(v.declID)
		db.variables = append(db.variables, v)
		ids = append(ids, vid)
		current = nil
	}
	for t := start.Next(); t != nil && t != end; t = t.Next() {
		if t.IsOp(",") {
			flush()
			continue
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		flush()
	}
	return ids
}

func lastNameToken(toks []*cxxtoken.Token) *cxxtoken.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Type() == cxxtoken.TokName && !typeKeywords[toks[i].Str()] {
			return toks[i]
		}
	}
	return nil
}

func (db *Database) addVariable(typeToks []*cxxtoken.Token, nameTok, after *cxxtoken.Token, dims []Dimension) {
	scopeID := scopeIDOf(nameTok.Scope())
	scope := db.Scope(scopeID)

	kind := VarLocal
	switch scope.Kind {
	case ScopeGlobal, ScopeNamespace:
		kind = VarGlobal
	case ScopeClass, ScopeStruct, ScopeUnion:
		kind = VarMember
	}
	flags := VarFlags(0)
	for _, t := range typeToks {
		switch t.Str() {
		case "const":
			flags |= VarConst
		case "static":
			kind = VarStatic
		case "extern":
			kind = VarExtern
		}
		if t.IsOp("*") {
			flags |= VarPointer
		}
		if t.IsOp("&") {
			flags |= VarReference
		}
	}
	if after.IsOp("=") {
		flags |= VarInit
	}
	if len(dims) > 0 {
		flags |= VarArray
	}

	vid := VariableID(len(db.variables))
	v := Variable{
		ID: vid, NameToken: nameTok, Kind: kind, Index: len(scope.Variables),
		Flags: flags, Dimensions: dims,
	}
	if len(typeToks) > 0 {
		v.TypeStart, v.TypeEnd = typeToks[0], typeToks[len(typeToks)-1]
	}
	v.declID = db.nextDeclID()
	db.byDeclID[v.declID] = vid
	nameTok.SetVarID(v.declID)
	nameTok.SetVariable(cxxtoken.NewVariableRef(int(vid) + 1))

	db.variables = append(db.variables, v)
	scope.Variables = append(scope.Variables, vid)
}

func (db *Database) nextDeclID() uint32 {
	db.nextDecl++
	return db.nextDecl
}

// resolveNameReferences assigns Token.Variable()/Function() back-
// pointers for every subsequent mention of a declared name, by nearest-
// enclosing-scope lookup — the read side of the declaration-id
// invariant.
func (db *Database) resolveNameReferences(list *cxxtoken.List) {
	for _, tok := range list.All() {
		if tok.Type() != cxxtoken.TokName || tok.Variable().Valid() {
			continue
		}
		if vid, ok := db.lookupVariable(scopeIDOf(tok.Scope()), tok.Str()); ok {
			tok.SetVariable(cxxtoken.NewVariableRef(int(vid) + 1))
			tok.SetVarID(db.Variable(vid).declID)
		}
	}
}

func (db *Database) lookupVariable(from ScopeID, name string) (VariableID, bool) {
	cur := from
	for {
		s := db.Scope(cur)
		for _, vid := range s.Variables {
			if db.Variable(vid).NameToken.Str() == name {
				return vid, true
			}
		}
		parent, ok := s.ParentID()
		if !ok {
			return 0, false
		}
		cur = parent
	}
}
