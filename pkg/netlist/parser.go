package netlist

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/alecthomas/participle/v2"
)

// Parser turns netlist text into components.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new netlist parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(NetlistLexer),
		participle.Elide("Comment", "Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("netlist: failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses netlist text from a reader. The name is used in positions.
func (p *Parser) Parse(name string, r io.Reader) (*File, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("netlist: parse error: %w", err)
	}
	return file, nil
}

// ParseString parses netlist text from a string
func (p *Parser) ParseString(name, input string) (*File, error) {
	file, err := p.parser.ParseString(name, input)
	if err != nil {
		return nil, fmt.Errorf("netlist: parse error: %w", err)
	}
	return file, nil
}

// ParseFile parses a netlist file from a path
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("netlist: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(filename, file)
}

// Components parses input and decodes every line against the type table.
func (p *Parser) Components(name, input string) ([]component.Component, error) {
	file, err := p.ParseString(name, input)
	if err != nil {
		return nil, err
	}
	return file.Components()
}

// ComponentsFromFile is Components for a file on disk.
func (p *Parser) ComponentsFromFile(filename string) ([]component.Component, error) {
	file, err := p.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return file.Components()
}
