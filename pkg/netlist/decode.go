package netlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/alecthomas/participle/v2/lexer"
)

const groupPrefix = "GROUP="

// ParseError reports a structural problem on one netlist line.
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos.Filename != "" {
		return fmt.Sprintf("netlist: %s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("netlist: %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Components decodes every line of the file, in order.
func (f *File) Components() ([]component.Component, error) {
	out := make([]component.Component, 0, len(f.Lines))
	for _, line := range f.Lines {
		c, err := line.Component()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Component decodes one line: TYPE_NAME terminal... [value] [GROUP=n] [special...].
// All words are upper-cased.
func (l *Line) Component() (component.Component, error) {
	words := make([]string, len(l.Words))
	for i, w := range l.Words {
		words[i] = strings.ToUpper(w)
	}

	head := words[0]
	sep := strings.IndexByte(head, '_')
	if sep <= 0 || sep == len(head)-1 {
		return component.Component{}, l.errorf("expected TYPE_NAME, got %q", head)
	}
	typ, name := head[:sep], head[sep+1:]

	def, ok := component.Lookup(typ)
	if !ok {
		return component.Component{}, l.errorf("unknown component type %q", typ)
	}

	rest := words[1:]
	if len(rest) < def.Terminals {
		return component.Component{}, l.errorf("%s expects %d terminal(s), got %d", typ, def.Terminals, len(rest))
	}

	c := component.Component{
		Type:      typ,
		Name:      name,
		Terminals: append([]string(nil), rest[:def.Terminals]...),
	}
	rest = rest[def.Terminals:]

	// The group marker may appear anywhere after the terminals.
	kept := rest[:0:0]
	for _, w := range rest {
		if !strings.HasPrefix(w, groupPrefix) {
			kept = append(kept, w)
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(w, groupPrefix))
		if err != nil || n <= 0 {
			return component.Component{}, l.errorf("invalid group marker %q", w)
		}
		c.Group = n
	}
	rest = kept

	if def.HasValue {
		if len(rest) == 0 {
			return component.Component{}, l.errorf("%s requires a value", typ)
		}
		c.Value = rest[0]
		rest = rest[1:]
	}

	if len(rest) > 0 {
		if !def.AllowSpecial {
			return component.Component{}, l.errorf("unexpected %q after %s", rest[0], head)
		}
		c.Special = strings.Join(rest, " ")
	}

	return c, nil
}

func (l *Line) errorf(format string, args ...any) error {
	return &ParseError{Pos: l.Pos, Msg: fmt.Sprintf(format, args...)}
}
