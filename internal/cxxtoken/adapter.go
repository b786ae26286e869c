package cxxtoken

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parse runs the given grammar over source and returns a fully linked
// token list: delimiters are matched via Link, and every internal node
// of the tree-sitter tree with one or two named children contributes an
// AstOperand1/AstOperand2/AstParent edge rooted at a representative
// token. This is deliberately a structural approximation of cppcheck's
// AST builder, not a reimplementation of it — macro expansion,
// trigraphs and multi-operand flattening (e.g. n-ary call argument
// lists) are out of scope; see the component notes for this package.
func Parse(ctx context.Context, g Grammar, file string, fileIdx int, source []byte) (*List, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(g.SitterLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}

	l := NewList(file)
	byNode := make(map[*sitter.Node]*Token)

	var walkLeaves func(n *sitter.Node)
	walkLeaves = func(n *sitter.Node) {
		count := int(n.ChildCount())
		if count == 0 {
			text := n.Content(source)
			if text == "" {
				return
			}
			tok := l.push(text, g.Classify(n.Type(), text), fileIdx,
				int(n.StartPoint().Row)+1, int(n.StartPoint().Column)+1)
			byNode[n] = tok
			return
		}
		for i := 0; i < count; i++ {
			walkLeaves(n.Child(i))
		}
	}
	root := tree.RootNode()
	walkLeaves(root)
	l.linkBrackets()

	// representative resolves the single token standing in for an AST
	// subtree: the leaf itself for leaves, or a head token chosen among
	// a compound node's own non-named tokens (its "operator"), falling
	// back to the first named child's representative.
	var representative func(n *sitter.Node) *Token
	representative = func(n *sitter.Node) *Token {
		if tok, ok := byNode[n]; ok {
			return tok
		}
		named := int(n.NamedChildCount())
		var reps []*Token
		for i := 0; i < named; i++ {
			reps = append(reps, representative(n.NamedChild(i)))
		}
		reps = compact(reps)

		head := headToken(n, source, byNode)
		switch len(reps) {
		case 0:
			return head
		case 1:
			if head != nil && head != reps[0] {
				head.SetAstOperand1(reps[0])
				byNode[n] = head
				return head
			}
			byNode[n] = reps[0]
			return reps[0]
		default:
			op := head
			if op == nil {
				op = reps[0]
			}
			if op == reps[0] && len(reps) > 1 {
				op.SetAstOperand1(reps[0])
				op.SetAstOperand2(reps[1])
			} else {
				op.SetAstOperand1(reps[0])
				if len(reps) > 1 {
					op.SetAstOperand2(reps[1])
				}
			}
			byNode[n] = op
			return op
		}
	}

	var buildAst func(n *sitter.Node)
	buildAst = func(n *sitter.Node) {
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			buildAst(n.Child(i))
		}
		if int(n.ChildCount()) > 0 {
			representative(n)
		}
	}
	buildAst(root)

	return l, nil
}

func compact(toks []*Token) []*Token {
	out := toks[:0]
	for _, t := range toks {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// headToken picks a token belonging directly to n (not one of its named
// children) to act as the AST node's representative operator — e.g. the
// "+" in a binary_expression, the "=" in an assignment_expression. Falls
// back to nil when every child of n is itself named (the caller then
// uses the first operand as the representative).
func headToken(n *sitter.Node, source []byte, byNode map[*sitter.Node]*Token) *Token {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		if tok, ok := byNode[c]; ok {
			return tok
		}
	}
	return nil
}
