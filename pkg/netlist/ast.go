package netlist

import "github.com/alecthomas/participle/v2/lexer"

// File is a parsed netlist: one Line per non-blank, non-comment line.
type File struct {
	Lines []*Line `parser:"( EOL | @@ )*"`
}

// Line holds the raw words of one component declaration.
// Example: R_R1 A B 1k
type Line struct {
	Pos   lexer.Position
	Words []string `parser:"@Word+"`
}
