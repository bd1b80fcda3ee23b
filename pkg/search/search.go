// Package search resolves free-text find queries to chip objects and the
// box that frames them.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

// Status lines shown after a search.
const (
	TitleNothing  = "Find: nothing found!"
	DetailNothing = "(Enter a list of nodenumbers, names or transistor names)"
	TitleOne      = "Find results:"
	TitleMany     = "Find: multiple objects found"
)

// Status is the two-line message a search reports.
type Status struct {
	Title  string
	Detail string
}

func (s Status) String() string {
	if s.Detail == "" {
		return s.Title
	}
	return s.Title + " " + s.Detail
}

// Result is the outcome of resolving one query.
type Result struct {
	Set     layout.HighlightSet
	Bounds  geom.BoundingBox // empty when nothing matched
	Status  Status
	Dropped []string // tokens that matched nothing
}

// Found reports whether anything matched.
func (r Result) Found() bool {
	return len(r.Set) > 0
}

// Resolver looks query tokens up in a registry.
type Resolver struct {
	reg    layout.Registry
	parser *participle.Parser[query]
}

// NewResolver builds a resolver over reg.
func NewResolver(reg layout.Registry) (*Resolver, error) {
	p, err := participle.Build[query](
		participle.Lexer(QueryLexer),
		participle.Elide("Sep"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build query parser: %w", err)
	}
	return &Resolver{reg: reg, parser: p}, nil
}

// Tokens splits q into lookup words.
func (r *Resolver) Tokens(q string) []string {
	parsed, err := r.parser.ParseString("", q)
	if err != nil {
		// the grammar accepts any input; fall back rather than fail a search
		return strings.FieldsFunc(q, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
		})
	}
	return parsed.Terms
}

// Resolve turns each token into an object. A token is tried as a numeric
// node id, then a node name, then a transistor name; the first hit wins and
// tokens that hit nothing are dropped.
func (r *Resolver) Resolve(q string) Result {
	res := Result{Bounds: geom.NewBoundingBox()}
	var report string

	for _, tok := range r.Tokens(q) {
		if id, err := strconv.Atoi(tok); err == nil {
			if g, ok := r.reg.NodeByID(id); ok {
				res.Set = append(res.Set, layout.NodeRef(id))
				res.Bounds.ExpandBox(g.Bounds)
				report = strings.TrimSpace(fmt.Sprintf("node: %d %s", id, r.reg.NodeName(id)))
				continue
			}
		}
		if id, ok := r.reg.NodeByName(tok); ok {
			if g, ok := r.reg.NodeByID(id); ok {
				res.Set = append(res.Set, layout.NodeRef(id))
				res.Bounds.ExpandBox(g.Bounds)
				report = fmt.Sprintf("node: %d %s", id, tok)
				continue
			}
		}
		if g, ok := r.reg.TransistorByName(tok); ok {
			res.Set = append(res.Set, layout.TransistorRef(tok))
			res.Bounds.ExpandBox(g.Bounds)
			report = "transistor: " + tok
			continue
		}
		res.Dropped = append(res.Dropped, tok)
	}

	switch len(res.Set) {
	case 0:
		res.Status = Status{Title: TitleNothing, Detail: DetailNothing}
	case 1:
		res.Status = Status{Title: TitleOne, Detail: report}
	default:
		res.Status = Status{Title: TitleMany, Detail: fmt.Sprintf("(%d objects)", len(res.Set))}
	}
	return res
}
