package solver

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"go.uber.org/zap"
)

// Flag records two instrument terminals attached to the same node group.
type Flag struct {
	First  string // component ID
	Second string // component ID
	Symbol string
}

func (f Flag) String() string {
	return fmt.Sprintf("%s and %s share node %s", f.First, f.Second, f.Symbol)
}

type triaged struct {
	solve  []int // parts to match, in visitation order
	parked []int // soft instruments placed after the search
	flags  []Flag
}

type attachment struct {
	part int
	sym  Symbol
}

// triage folds wires into t, drops unused instruments and splits the rest
// into parts to solve and instruments to park.
func (r *run) triage(order []int, t *Table) (triaged, error) {
	var out triaged

	for _, i := range order {
		p := r.parts[i]
		if !p.is(component.ClassWire) {
			continue
		}
		if !t.Ref(p.syms[0], p.syms[1]) {
			return out, fmt.Errorf("%w: %s joins %s and %s", ErrContradiction,
				p.comp.ID(), p.comp.Terminals[0], p.comp.Terminals[1])
		}
	}

	significant := make(map[int]bool)
	for _, i := range order {
		p := r.parts[i]
		if p.is(component.ClassWire) || p.is(component.ClassInstrument) {
			continue
		}
		for _, s := range p.syms {
			significant[t.Group(s)] = true
		}
	}
	isGround := func(s Symbol) bool { return t.SameGroup(s, r.ground) }

	var attached []attachment
	for _, i := range order {
		p := r.parts[i]
		if !p.is(component.ClassInstrument) {
			continue
		}
		for _, s := range p.syms {
			if !isGround(s) && significant[t.Group(s)] {
				attached = append(attached, attachment{part: i, sym: s})
			}
		}
	}
	for a := 0; a < len(attached); a++ {
		for b := a + 1; b < len(attached); b++ {
			x, y := attached[a], attached[b]
			if !t.SameGroup(x.sym, y.sym) {
				continue
			}
			f := Flag{
				First:  r.parts[x.part].comp.ID(),
				Second: r.parts[y.part].comp.ID(),
				Symbol: r.in.Name(x.sym),
			}
			if r.cfg.DoubleAttachment == PolicyFail {
				return out, fmt.Errorf("%w: %s", ErrAmbiguousInstrument, f)
			}
			r.log.Warn("instruments attached to the same node",
				zap.String("first", f.First),
				zap.String("second", f.Second),
				zap.String("node", f.Symbol))
			out.flags = append(out.flags, f)
		}
	}

	for _, i := range order {
		p := r.parts[i]
		switch {
		case p.is(component.ClassWire):
			continue
		case p.is(component.ClassInstrument):
			used := true
			for _, s := range p.syms {
				if !isGround(s) && !significant[t.Group(s)] {
					used = false
					break
				}
			}
			if !used {
				r.log.Debug("dropping unused instrument", zap.String("component", p.comp.ID()))
				continue
			}
			if p.def.Soft {
				out.parked = append(out.parked, i)
				continue
			}
			out.solve = append(out.solve, i)
		default:
			out.solve = append(out.solve, i)
		}
	}

	if len(out.solve) == 0 {
		return out, ErrEmptyCircuit
	}
	return out, nil
}
