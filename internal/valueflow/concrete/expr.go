// Package concrete supplies spec.md §4.5's concrete Analyzer
// implementations: SameExpression, OppositeExpression, MemberExpression
// and MultiValueFlow. Each is a small, interchangeable tracker behind
// the shared valueflow.Analyzer interface — the same "several matchers,
// one interface" shape internal/matcher uses for tree-sitter queries vs
// regexes, retargeted from span matching to expression-identity
// matching over the token AST.
package concrete

import "github.com/oxhq/cppscan/internal/cxxtoken"

// SameAST reports whether a and b are the same expression by
// structural comparison of their AST shape (operator/operand spelling,
// recursively) rather than token identity — the Go stand-in for
// cppcheck's structural "isSameExpression" used to identify repeated
// occurrences of one expression across a function body.
func SameAST(a, b *cxxtoken.Token) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Str() != b.Str() {
		return false
	}
	return SameAST(a.AstOperand1(), b.AstOperand1()) && SameAST(a.AstOperand2(), b.AstOperand2())
}

// isWriteTarget reports whether tok is the left-hand side of an
// assignment (and therefore written to, not read, at this occurrence).
func isWriteTarget(tok *cxxtoken.Token) bool {
	parent := tok.AstParent()
	if parent == nil {
		return false
	}
	switch parent.Str() {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return parent.AstOperand1() == tok
	case "++", "--":
		return true
	default:
		return false
	}
}

// isNegation reports whether tok is a logical-not applied directly to
// operand.
func isNegation(tok, operand *cxxtoken.Token) bool {
	return tok != nil && tok.Str() == "!" && SameAST(tok.AstOperand1(), operand)
}
