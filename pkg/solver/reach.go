package solver

import "github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"

// part is a requested component with its terminals interned.
type part struct {
	comp component.Component
	def  component.TypeDef
	syms []Symbol
}

func (p part) is(class component.Class) bool {
	return p.def.Class == class
}

// reachable returns the indices of parts connected to an instrument
// terminal or to ground, in visitation order. Seeds are every instrument
// terminal in request order, then ground.
func reachable(parts []part, ground Symbol, symbols int) []int {
	visited := make([]bool, symbols)
	var queue []Symbol
	push := func(s Symbol) {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}
	for _, p := range parts {
		if p.is(component.ClassInstrument) {
			for _, s := range p.syms {
				push(s)
			}
		}
	}
	push(ground)

	selected := make([]bool, len(parts))
	var order []int
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for i, p := range parts {
			if selected[i] || !carries(p, s) {
				continue
			}
			selected[i] = true
			order = append(order, i)
			for _, other := range p.syms {
				push(other)
			}
		}
	}
	return order
}

func carries(p part, s Symbol) bool {
	for _, t := range p.syms {
		if t == s {
			return true
		}
	}
	return false
}
