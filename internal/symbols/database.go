package symbols

import (
	"github.com/oxhq/cppscan/internal/cxxtoken"
)

// Settings is the subset of internal/config.Settings the symbol
// database and its ValueType inference need: the platform's primitive
// widths and the default signedness of a bare `char`.
type Settings struct {
	CharIsUnsigned bool
	IntBits        int
	LongBits       int
	PointerBits    int
}

// DefaultSettings mirrors a typical LP64 platform model.
func DefaultSettings() Settings {
	return Settings{CharIsUnsigned: false, IntBits: 32, LongBits: 64, PointerBits: 64}
}

// Database is the resolved symbol table for one translation unit: the
// scope tree plus the Type/Variable/Function arenas it owns, and the
// declaration-id index used to re-resolve name tokens.
type Database struct {
	settings  Settings
	scopes    []Scope
	types     []Type
	variables []Variable
	functions []Function

	byDeclID map[uint32]VariableID
	nextDecl uint32
}

func (db *Database) Scope(id ScopeID) *Scope {
	if int(id) < 0 || int(id) >= len(db.scopes) {
		return &db.scopes[0]
	}
	return &db.scopes[id]
}
func (db *Database) Type(id TypeID) *Type          { return &db.types[id] }
func (db *Database) Variable(id VariableID) *Variable { return &db.variables[id] }
func (db *Database) Function(id FunctionID) *Function {
	if int(id) < 0 || int(id) >= len(db.functions) {
		return nil
	}
	return &db.functions[id]
}

func (db *Database) GlobalScope() *Scope { return &db.scopes[0] }

// ScopeOf resolves a token's borrowed ScopeRef back to the Scope that
// contains it, defaulting to the global scope when unresolved.
func (db *Database) ScopeOf(tok *cxxtoken.Token) *Scope {
	return db.Scope(scopeIDOf(tok.Scope()))
}

// EnclosingFunctionScope walks outward from tok's scope to the nearest
// ScopeFunction ancestor, returning nil if tok is not inside a function
// body (e.g. a member declaration or global initializer).
func (db *Database) EnclosingFunctionScope(tok *cxxtoken.Token) *Scope {
	s := db.ScopeOf(tok)
	for {
		if s.Kind == ScopeFunction {
			return s
		}
		pid, ok := s.ParentID()
		if !ok {
			return nil
		}
		s = db.Scope(pid)
	}
}

// VariableOf resolves a token's VariableRef (as set by SetVariable) back
// to the Variable it denotes.
func (db *Database) VariableOf(tok *cxxtoken.Token) (*Variable, bool) {
	ref := tok.Variable()
	if !ref.Valid() {
		return nil, false
	}
	return db.Variable(VariableID(ref.Index() - 1)), true
}

// VariableByDeclarationID looks up a variable by the id tokens carry
// via Token.VarID(), satisfying "the variable table indexed by id
// returns v" (spec.md §3 invariant).
func (db *Database) VariableByDeclarationID(id uint32) (*Variable, bool) {
	vid, ok := db.byDeclID[id]
	if !ok {
		return nil, false
	}
	return db.Variable(vid), true
}

// Build performs the single pass over tokens spec.md §4.1 describes:
// scope discovery, scope classification, declaration enumeration, base-
// class resolution, and ValueType propagation.
func Build(list *cxxtoken.List, settings Settings) *Database {
	db := &Database{settings: settings, byDeclID: make(map[uint32]VariableID)}
	db.scopes = append(db.scopes, Scope{ID: 0, Kind: ScopeGlobal})

	db.buildScopes(list)
	db.collectDeclarations(list)
	db.resolveBases()
	db.setValueTypeInTokenList(list)
	db.resolveNameReferences(list)
	return db
}

// buildScopes walks the flat token stream, maintaining a scope stack,
// and creates a new Scope each time it sees a "{" — classifying it from
// the tokens immediately preceding, per spec.md's "discovers scopes by
// matching brace/keyword patterns".
func (db *Database) buildScopes(list *cxxtoken.List) {
	stack := []ScopeID{0}
	top := func() ScopeID { return stack[len(stack)-1] }

	for _, tok := range list.All() {
		cur := top()
		switch {
		case tok.IsOp("{"):
			kind, className := classifyBrace(tok)
			newID := ScopeID(len(db.scopes))
			db.scopes = append(db.scopes, Scope{
				ID: newID, Kind: kind, ClassName: className,
				BodyStart: tok, BodyEnd: tok.Link(),
				Parent: cur, hasParent: true,
			})
			db.Scope(cur).Children = append(db.Scope(cur).Children, newID)
			tok.SetScope(cxxtoken.NewScopeRef(int(newID) + 1))

			if kind == ScopeClass || kind == ScopeStruct || kind == ScopeUnion || kind == ScopeEnum {
				db.defineType(newID, className, cur, tok)
			}
			stack = append(stack, newID)

		case tok.IsOp("}"):
			tok.SetScope(cxxtoken.NewScopeRef(int(cur) + 1))
			if len(stack) > 1 && db.Scope(cur).BodyEnd == tok {
				stack = stack[:len(stack)-1]
			}

		default:
			tok.SetScope(cxxtoken.NewScopeRef(int(cur) + 1))
		}
	}
}

// classifyBrace inspects the tokens immediately before an opening brace
// to decide what kind of scope it introduces, and — for class/struct/
// union declarations — returns the declared name.
func classifyBrace(brace *cxxtoken.Token) (ScopeKind, string) {
	// Walk backward collecting the statement-leading keyword, if any.
	var preceding []*cxxtoken.Token
	t := brace.Previous()
	for t != nil && len(preceding) < 64 {
		if t.IsOp(";", "{", "}") {
			break
		}
		preceding = append(preceding, t)
		t = t.Previous()
	}
	// preceding is in reverse order (closest-to-brace first); reverse it.
	for i, j := 0, len(preceding)-1; i < j; i, j = i+1, j-1 {
		preceding[i], preceding[j] = preceding[j], preceding[i]
	}

	if len(preceding) == 0 {
		return ScopeUnconditional, ""
	}

	if preceding[0].Type() == cxxtoken.TokKeyword {
		switch preceding[0].Str() {
		case "if":
			return ScopeIf, ""
		case "else":
			return ScopeElse, ""
		case "for":
			return ScopeFor, ""
		case "while":
			return ScopeWhile, ""
		case "do":
			return ScopeDo, ""
		case "switch":
			return ScopeSwitch, ""
		case "try":
			return ScopeTry, ""
		case "catch":
			return ScopeCatch, ""
		case "class":
			return ScopeClass, findNameAfter(preceding, "class")
		case "struct":
			return ScopeStruct, findNameAfter(preceding, "struct")
		case "union":
			return ScopeUnion, findNameAfter(preceding, "union")
		case "enum":
			return ScopeEnum, findNameAfter(preceding, "enum")
		case "namespace":
			return ScopeNamespace, findNameAfter(preceding, "namespace")
		}
	}

	// Lambda: `[...] (...) {` or `[...] {`
	if preceding[0].IsOp("[") {
		return ScopeLambda, ""
	}

	// Function body: the brace directly follows a parameter list `)`,
	// possibly with const/noexcept/override specifiers in between.
	for _, tk := range preceding {
		if tk.IsOp(")") {
			return ScopeFunction, ""
		}
	}

	return ScopeUnconditional, ""
}

func findNameAfter(tokens []*cxxtoken.Token, keyword string) string {
	for i, tk := range tokens {
		if tk.Str() == keyword && i+1 < len(tokens) && tokens[i+1].Type() == cxxtoken.TokName {
			return tokens[i+1].Str()
		}
	}
	return ""
}

func (db *Database) defineType(scopeID ScopeID, className string, enclosing ScopeID, defTok *cxxtoken.Token) {
	tid := TypeID(len(db.types))
	typ := Type{
		ID: tid, DefToken: defTok, ClassScope: scopeID, HasClassScope: true,
		EnclosingScope: enclosing, NeedsInit: NeedsInitUnknown,
	}

	// Base-class list: tokens between ':' and '{' (class C : public A, B {).
	colon := defTok.Previous()
	for colon != nil && !colon.IsOp(":") && !colon.IsOp("{", "}", ";") {
		colon = colon.Previous()
	}
	if colon != nil && colon.IsOp(":") {
		access := AccessPrivate
		virtual := false
		for t := colon.Next(); t != nil && t != defTok; t = t.Next() {
			switch {
			case t.Str() == "public":
				access = AccessPublic
			case t.Str() == "protected":
				access = AccessProtected
			case t.Str() == "private":
				access = AccessPrivate
			case t.Str() == "virtual":
				virtual = true
			case t.Type() == cxxtoken.TokName:
				typ.Bases = append(typ.Bases, BaseClass{NameToken: t, Access: access, Virtual: virtual})
			case t.IsOp(","):
				virtual = false
			}
		}
	}

	db.types = append(db.types, typ)
	db.Scope(scopeID).DefinedType = tid
}

// resolveBases fills in BaseClass.Resolved by name lookup through the
// type's enclosing scope chain — findVariableType's scoped-lookup
// shape applied to base-class names.
func (db *Database) resolveBases() {
	for i := range db.types {
		t := &db.types[i]
		for j := range t.Bases {
			if tid, ok := db.findTypeByName(t.EnclosingScope, t.Bases[j].NameToken.Str()); ok {
				t.Bases[j].Resolved = tid
				t.Bases[j].HasType = true
			}
		}
	}
}

// findTypeByName implements findVariableType's walk: outward through
// enclosing scopes until a class/struct/union with a matching name is
// found.
func (db *Database) findTypeByName(from ScopeID, name string) (TypeID, bool) {
	cur := from
	for {
		s := db.Scope(cur)
		if s.ClassName == name && (s.Kind == ScopeClass || s.Kind == ScopeStruct || s.Kind == ScopeUnion) {
			return s.DefinedType, true
		}
		for _, cid := range s.Children {
			c := db.Scope(cid)
			if c.ClassName == name && (c.Kind == ScopeClass || c.Kind == ScopeStruct || c.Kind == ScopeUnion) {
				return c.DefinedType, true
			}
		}
		parent, ok := s.ParentID()
		if !ok {
			return 0, false
		}
		cur = parent
	}
}

// FindFunction implements spec.md §4.1's call-site resolution: given a
// call token (the function-name token immediately before "("),
// enumerate candidates visible from the call's scope and pick the best
// match by arity then argument ValueType::MatchParameter, preferring
// the unique candidate at the best (highest MatchResult) tier. When
// that tier holds more than one candidate the call stays unresolved.
func (db *Database) FindFunction(callTok *cxxtoken.Token, argTypes []*ValueType) (FunctionID, bool) {
	name := callTok.Str()

	var candidates []FunctionID
	cur := scopeIDOf(callTok.Scope())
	for {
		s := db.Scope(cur)
		for _, fid := range s.Functions {
			f := db.Function(fid)
			if f.NameToken != nil && f.NameToken.Str() == name {
				candidates = append(candidates, fid)
			}
		}
		parent, ok := s.ParentID()
		if !ok {
			break
		}
		cur = parent
	}

	var best FunctionID
	bestTier := MatchUnknown - 1
	count := 0
	for _, fid := range candidates {
		f := db.Function(fid)
		if len(f.Arguments) != len(argTypes) {
			continue
		}
		tier := MatchSame
		for i, aid := range f.Arguments {
			arg := db.Variable(aid)
			m := argTypes[i].MatchParameter(arg.ValueType)
			if m < tier {
				tier = m
			}
		}
		if tier == MatchNoMatch {
			continue
		}
		if tier > bestTier {
			bestTier = tier
			best = fid
			count = 1
		} else if tier == bestTier {
			count++
		}
	}
	if count == 1 {
		return best, true
	}
	return 0, false
}
