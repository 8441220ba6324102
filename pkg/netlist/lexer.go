package netlist

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// NetlistLexer splits circuit and inventory text into words and line breaks.
// A word starting with '#' or '*' opens a comment running to end of line.
var NetlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `[#*][^\n]*`},
	{Name: "EOL", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t\f\v]+`},
	{Name: "Word", Pattern: `[^\s]+`},
})
