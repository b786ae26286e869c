package cxxtoken

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Grammar is the minimal per-language contract the adapter needs from a
// tree-sitter grammar: which parser to run and how to classify its
// leaf node types. Mirrors the "language provider" shape the teacher
// repo uses to bridge universal concepts to a concrete grammar, cut
// down to exactly what a token-stream adapter (rather than a query
// translator) needs.
type Grammar interface {
	// Name is the canonical identifier ("c" or "c++").
	Name() string
	// Extensions lists the file extensions recognized for this grammar.
	Extensions() []string
	// SitterLanguage returns the tree-sitter grammar to parse with.
	SitterLanguage() *sitter.Language
	// Classify maps a tree-sitter leaf node type to a TokType.
	Classify(nodeType, text string) TokType
}

// CppGrammar adapts the tree-sitter C++ grammar.
type CppGrammar struct{}

func (CppGrammar) Name() string              { return "c++" }
func (CppGrammar) Extensions() []string      { return []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"} }
func (CppGrammar) SitterLanguage() *sitter.Language { return cpp.GetLanguage() }
func (CppGrammar) Classify(nodeType, text string) TokType {
	return classifyCommon(nodeType, text)
}

// CGrammar adapts the tree-sitter C grammar.
type CGrammar struct{}

func (CGrammar) Name() string              { return "c" }
func (CGrammar) Extensions() []string      { return []string{".c", ".h"} }
func (CGrammar) SitterLanguage() *sitter.Language { return c.GetLanguage() }
func (CGrammar) Classify(nodeType, text string) TokType {
	return classifyCommon(nodeType, text)
}

var bracketRunes = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
}

var incDecOps = map[string]bool{"++": true, "--": true}

var keywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true, "goto": true, "throw": true,
	"try": true, "catch": true, "struct": true, "class": true,
	"union": true, "enum": true, "namespace": true, "template": true,
	"typename": true, "public": true, "private": true, "protected": true,
	"virtual": true, "static": true, "const": true, "volatile": true,
	"friend": true, "explicit": true, "operator": true, "new": true,
	"delete": true, "sizeof": true, "typedef": true, "extern": true,
	"inline": true, "constexpr": true, "override": true, "final": true,
	"noexcept": true, "mutable": true,
}

func classifyCommon(nodeType, text string) TokType {
	switch nodeType {
	case "identifier", "field_identifier", "type_identifier",
		"namespace_identifier", "primitive_type", "sized_type_specifier",
		"signed", "unsigned", "long", "short":
		if keywords[text] {
			return TokKeyword
		}
		return TokName
	case "number_literal":
		return TokNumber
	case "char_literal":
		return TokChar
	case "string_literal", "raw_string_literal", "system_lib_string":
		return TokString
	case ",":
		return TokComma
	}
	if bracketRunes[text] {
		return TokBracket
	}
	if incDecOps[text] {
		return TokIncDec
	}
	if keywords[text] {
		return TokKeyword
	}
	return TokOp
}

// ForExtension resolves the grammar to use for a file name's extension.
// Returns nil if the extension isn't recognized by either grammar.
func ForExtension(ext string) Grammar {
	for _, g := range []Grammar{CGrammar{}, CppGrammar{}} {
		for _, e := range g.Extensions() {
			if e == ext {
				return g
			}
		}
	}
	return nil
}
