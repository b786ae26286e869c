package cxxtoken

// List owns every Token produced for one translation unit. All Token
// pointers borrowed from a List become invalid once the List is
// discarded.
type List struct {
	file  string
	toks  []*Token
}

// NewList allocates an empty list for the named file.
func NewList(file string) *List {
	return &List{file: file}
}

// File returns the source file path this list was parsed from.
func (l *List) File() string { return l.file }

// Front returns the first token, or nil if the list is empty.
func (l *List) Front() *Token {
	if len(l.toks) == 0 {
		return nil
	}
	return l.toks[0]
}

// Back returns the last token, or nil if the list is empty.
func (l *List) Back() *Token {
	if len(l.toks) == 0 {
		return nil
	}
	return l.toks[len(l.toks)-1]
}

// Len returns the number of tokens in the list.
func (l *List) Len() int { return len(l.toks) }

// At returns the token at the given index, or nil if out of range.
func (l *List) At(i int) *Token {
	if i < 0 || i >= len(l.toks) {
		return nil
	}
	return l.toks[i]
}

// All returns every token in source order. Callers must not mutate the
// returned slice.
func (l *List) All() []*Token {
	return l.toks
}

// push appends a freshly built token owned by this list and returns it.
func (l *List) push(str string, typ TokType, fileIdx, line, col int) *Token {
	t := &Token{
		str:   str,
		typ:   typ,
		file:  fileIdx,
		line:  line,
		col:   col,
		index: len(l.toks),
		list:  l,
	}
	l.toks = append(l.toks, t)
	return t
}

// linkBrackets walks the flat stream and symmetrically links every
// matched delimiter pair, satisfying the "d.link().link() == d"
// invariant.
func (l *List) linkBrackets() {
	type frame struct {
		open string
		tok  *Token
	}
	var stack []frame
	pairs := map[string]string{"(": ")", "{": "}", "[": "]"}
	closers := map[string]string{")": "(", "}": "{", "]": "["}

	for _, t := range l.toks {
		if t.typ != TokBracket {
			continue
		}
		if _, isOpen := pairs[t.str]; isOpen {
			stack = append(stack, frame{open: t.str, tok: t})
			continue
		}
		if open, isClose := closers[t.str]; isClose {
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].open == open {
					stack[i].tok.SetLink(t)
					stack = stack[:i]
					break
				}
			}
		}
	}
}
