// Package sexp is a small streaming S-expression reader used for chip
// layout files. Layouts of a full die run to tens of thousands of segment
// records, so the input is read rune by rune from a bufio.Reader rather
// than loaded whole.
package sexp

import "strings"

// Sexp is either a Symbol or a *List.
type Sexp interface {
	IsLeaf() bool
	String() string
}

// Symbol is an atom: a bare word, a number or the contents of a quoted string.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// List is a parenthesised sequence of expressions.
type List struct {
	elements []Sexp
}

func (l *List) IsLeaf() bool { return false }

// Items returns the backing elements. Callers must not modify the slice.
func (l *List) Items() []Sexp {
	return l.elements
}

func (l *List) String() string {
	parts := make([]string, len(l.elements))
	for i, e := range l.elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
