package search

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// QueryLexer splits a find query into words. Commas and any whitespace
// separate words; runs of separators count as one.
var QueryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Sep", Pattern: `[\s,]+`},
	{Name: "Word", Pattern: `[^\s,]+`},
})

// query is the parsed form of a find string.
type query struct {
	Terms []string `parser:"@Word*"`
}
