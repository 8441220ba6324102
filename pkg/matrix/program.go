package matrix

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
)

// Section name for passive parts and shortcuts.
const SectionMatrix = "MATRIX"

// Command connects every terminal of one component to a bus.
type Command struct {
	Section   string // SectionMatrix or the instrument type
	Component string // inventory component ID
	Satisfies string
	Card      int
	Busses    []int // one per terminal
}

func (c Command) String() string {
	busses := make([]string, len(c.Busses))
	for i, b := range c.Busses {
		busses[i] = fmt.Sprint(b)
	}
	line := fmt.Sprintf("CARD %d %s %s", c.Card, c.Component, strings.Join(busses, " "))
	if c.Satisfies != "" && c.Satisfies != c.Component {
		line += " ; " + c.Satisfies
	}
	return line
}

// Section groups the commands sent to one instrument, or to the matrix.
type Section struct {
	Name     string
	Commands []Command
}

// Program is the full wiring of one solved netlist.
type Program struct {
	Commands []Command
}

// Build translates every physical node of solution through table.
func Build(solution []component.Component, table *AddressTable) (*Program, error) {
	p := &Program{Commands: make([]Command, 0, len(solution))}
	for _, c := range solution {
		cmd := Command{
			Section:   SectionMatrix,
			Component: c.ID(),
			Satisfies: c.Satisfies,
			Card:      table.Card(c.ID(), c.Type),
			Busses:    make([]int, len(c.Terminals)),
		}
		if c.Is(component.ClassInstrument) {
			cmd.Section = c.Type
		}
		for i, node := range c.Terminals {
			bus, err := table.Bus(node)
			if err != nil {
				return nil, fmt.Errorf("matrix: %s terminal %d: %w", c.ID(), i+1, err)
			}
			cmd.Busses[i] = bus
		}
		p.Commands = append(p.Commands, cmd)
	}
	return p, nil
}

// ByInstrument splits the program into sections: the matrix first, then
// each instrument type in order of first appearance.
func (p *Program) ByInstrument() []Section {
	var out []Section
	index := make(map[string]int)
	add := func(name string) {
		if _, ok := index[name]; !ok {
			index[name] = len(out)
			out = append(out, Section{Name: name})
		}
	}
	add(SectionMatrix)
	for _, cmd := range p.Commands {
		add(cmd.Section)
		i := index[cmd.Section]
		out[i].Commands = append(out[i].Commands, cmd)
	}
	if len(out[0].Commands) == 0 {
		out = out[1:]
	}
	return out
}

// String renders the program one section at a time.
func (p *Program) String() string {
	var b strings.Builder
	for _, sec := range p.ByInstrument() {
		fmt.Fprintf(&b, "[%s]\n", sec.Name)
		for _, cmd := range sec.Commands {
			b.WriteString(cmd.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
