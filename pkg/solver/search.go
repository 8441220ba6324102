package solver

import "github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"

// candidate is an inventory component with its terminals resolved to nodes.
type candidate struct {
	comp  component.Component
	nodes []int
	slot  int
}

// pick assigns a candidate to a requested part. Bridge picks are shortcuts
// consumed to reach one of the part's terminals.
type pick struct {
	part   int
	cand   int
	bridge bool
}

// state is one branch of the search. Every attempt works on a clone.
type state struct {
	table *Table
	used  []bool
	picks []pick
}

func (s state) clone() state {
	return state{
		table: s.table.Clone(),
		used:  append([]bool(nil), s.used...),
		picks: append([]pick(nil), s.picks...),
	}
}

type engine struct {
	r         *run
	cands     []candidate
	byKey     map[string][]int
	shortcuts []int
	order     []int

	attempts int
	bridges  int
}

func newEngine(r *run, cands []candidate, order []int) *engine {
	e := &engine{
		r:     r,
		cands: cands,
		byKey: make(map[string][]int),
		order: order,
	}
	for i, c := range cands {
		key := c.comp.Key()
		e.byKey[key] = append(e.byKey[key], i)
		if c.comp.Is(component.ClassShortcut) {
			e.shortcuts = append(e.shortcuts, i)
		}
	}
	return e
}

// search assigns e.order[i:] first-fit: candidates in inventory order,
// orientation 0 before 1, the direct pass before the bridging pass.
func (e *engine) search(st state, i int) (state, bool) {
	if i == len(e.order) {
		return st, true
	}
	pi := e.order[i]
	p := e.r.parts[pi]

	passes := []bool{false}
	if e.r.cfg.Shortcuts {
		passes = append(passes, true)
	}
	for _, bridging := range passes {
		for _, ci := range e.byKey[p.comp.MatchKey()] {
			if st.used[e.cands[ci].slot] {
				continue
			}
			for _, flip := range orientations(p) {
				next, ok := e.try(st, pi, ci, flip, bridging)
				if !ok {
					continue
				}
				if done, ok := e.search(next, i+1); ok {
					return done, true
				}
			}
		}
	}
	return st, false
}

func orientations(p part) []bool {
	if p.def.Reversible && len(p.syms) == 2 {
		return []bool{false, true}
	}
	return []bool{false}
}

// try binds the terminals of part pi to candidate ci on a copy of st.
func (e *engine) try(st state, pi, ci int, flip, bridging bool) (state, bool) {
	e.attempts++
	p := e.r.parts[pi]
	c := e.cands[ci]

	nodes := c.nodes
	if flip {
		nodes = []int{c.nodes[1], c.nodes[0]}
	}

	// equivalent terminals on distinct nodes would short the part
	for a := range p.syms {
		for b := a + 1; b < len(p.syms); b++ {
			if st.table.SameGroup(p.syms[a], p.syms[b]) && nodes[a] != nodes[b] {
				return st, false
			}
		}
	}

	next := st.clone()
	next.used[c.slot] = true
	base := len(next.picks)
	for k, s := range p.syms {
		if next.table.Bind(s, nodes[k]) {
			continue
		}
		if !bridging || !e.bridge(&next, pi, s, nodes[k]) {
			return st, false
		}
	}

	bridges := next.picks[base:]
	next.picks = append(append(next.picks[:base:base], pick{part: pi, cand: ci}), bridges...)
	return next, true
}
