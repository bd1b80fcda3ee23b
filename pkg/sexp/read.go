package sexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// Parse reads every top-level expression from r. '#' and ';' start a
// comment that runs to the end of the line. Errors carry the 1-based line
// the offending expression starts on.
func Parse(r io.Reader) ([]Sexp, error) {
	rd := &reader{src: bufio.NewReader(r), line: 1}
	var out []Sexp
	for {
		ch, err := rd.skip()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		e, err := rd.expr(ch)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

type reader struct {
	src  *bufio.Reader
	line int
	last rune
}

func (rd *reader) next() (rune, error) {
	ch, _, err := rd.src.ReadRune()
	if err != nil {
		return 0, err
	}
	rd.last = ch
	if ch == '\n' {
		rd.line++
	}
	return ch, nil
}

// unread pushes back the rune returned by the latest next.
func (rd *reader) unread() {
	if rd.last == '\n' {
		rd.line--
	}
	_ = rd.src.UnreadRune()
}

// skip consumes blanks and comments and returns the first rune after them.
func (rd *reader) skip() (rune, error) {
	for {
		ch, err := rd.next()
		if err != nil {
			return 0, err
		}
		switch {
		case unicode.IsSpace(ch):
		case ch == '#' || ch == ';':
			for ch != '\n' {
				if ch, err = rd.next(); err != nil {
					return 0, err
				}
			}
		default:
			return ch, nil
		}
	}
}

func (rd *reader) expr(first rune) (Sexp, error) {
	switch first {
	case '(':
		return rd.list()
	case ')':
		return nil, fmt.Errorf("line %d: unexpected ')'", rd.line)
	case '"':
		return rd.quoted()
	}
	return rd.atom(first)
}

func (rd *reader) list() (*List, error) {
	open := rd.line
	l := &List{}
	for {
		ch, err := rd.skip()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("line %d: unclosed list", open)
		}
		if err != nil {
			return nil, err
		}
		if ch == ')' {
			return l, nil
		}
		e, err := rd.expr(ch)
		if err != nil {
			return nil, err
		}
		l.elements = append(l.elements, e)
	}
}

func (rd *reader) quoted() (Symbol, error) {
	start := rd.line
	var buf []rune
	escaped := false
	for {
		ch, err := rd.next()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("line %d: unterminated string", start)
		}
		if err != nil {
			return "", err
		}
		switch {
		case escaped:
			switch ch {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			}
			buf = append(buf, ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return Symbol(buf), nil
		default:
			buf = append(buf, ch)
		}
	}
}

func (rd *reader) atom(first rune) (Symbol, error) {
	buf := []rune{first}
	for {
		ch, err := rd.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			rd.unread()
			break
		}
		buf = append(buf, ch)
	}
	return Symbol(buf), nil
}
