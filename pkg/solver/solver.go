// Package solver decides whether a requested circuit can be built from a
// fixed inventory of pre-wired parts, and if so how.
//
// A Solve runs in phases: reachability prunes components not connected to
// an instrument or ground, triage folds wires and parks soft instruments,
// the backtracking engine assigns every remaining component to an inventory
// part (bridging through spare shortcuts when a direct fit fails), and
// finally the parked instruments are placed on whatever nodes their
// symbols ended up on.
package solver

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"go.uber.org/zap"
)

// Stats describes the work done by the last Solve.
type Stats struct {
	Selected int // components left after reachability
	Solved   int // components matched by the engine
	Parked   int // soft instruments placed after the search
	Attempts int // candidate bindings tried
	Bridges  int // shortcut chains built
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Solver) {
		if log != nil {
			s.log = log
		}
	}
}

// Solver is the facade over the solve phases. A Solver keeps the result of
// its last Solve and is not safe for concurrent use; run one per goroutine.
type Solver struct {
	cfg *Config
	log *zap.Logger

	in       *Interner
	table    *Table
	nodes    []string
	solution []component.Component
	flags    []Flag
	stats    Stats
	err      error
}

// New creates a Solver. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) (*Solver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		cfg:   cfg,
		log:   zap.NewNop(),
		nodes: append([]string(nil), cfg.Alphabet...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// run is the state of one Solve call.
type run struct {
	cfg    *Config
	log    *zap.Logger
	in     *Interner
	parts  []part
	ground Symbol
}

// Solve reports whether requested can be realized with candidates. The
// magic endpoints of the configuration are added to the request. On
// success Solution holds the assignment; on failure Err says why.
func (s *Solver) Solve(requested, candidates []component.Component) bool {
	s.in, s.table, s.solution, s.flags, s.stats, s.err = nil, nil, nil, nil, Stats{}, nil

	solution, err := s.solve(requested, candidates)
	if err != nil {
		s.err, s.table = err, nil
		s.log.Debug("solve failed", zap.Error(err))
		return false
	}
	s.solution = solution
	s.log.Debug("solve succeeded",
		zap.Int("parts", len(solution)),
		zap.Int("attempts", s.stats.Attempts),
		zap.Int("bridges", s.stats.Bridges))
	return true
}

func (s *Solver) solve(requested, candidates []component.Component) ([]component.Component, error) {
	r := &run{cfg: s.cfg, log: s.log, in: NewInterner()}
	r.ground = r.in.Intern(s.cfg.Ground)
	pinned := sortedKeys(s.cfg.Pinned)
	for _, name := range pinned {
		r.in.Intern(name)
	}
	s.in = r.in

	if err := r.load(requested); err != nil {
		return nil, err
	}

	nodeIndex := make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		nodeIndex[n] = i
	}
	cands, nslots, err := resolveCandidates(candidates, nodeIndex)
	if err != nil {
		return nil, err
	}

	table := NewTable(r.in.Len(), len(s.nodes), r.ground, nodeIndex[s.cfg.Ground])
	for _, name := range pinned {
		sym, _ := r.in.Lookup(name)
		if !table.Bind(sym, nodeIndex[s.cfg.Pinned[name]]) {
			return nil, fmt.Errorf("%w: %s pinned to %s", ErrContradiction, name, s.cfg.Pinned[name])
		}
	}
	s.table = table

	order := reachable(r.parts, r.ground, r.in.Len())
	s.stats.Selected = len(order)
	s.log.Debug("reachability",
		zap.Int("requested", len(r.parts)),
		zap.Int("selected", len(order)))

	tri, err := r.triage(order, table)
	s.flags = tri.flags
	if err != nil {
		return nil, err
	}
	s.log.Debug("triage",
		zap.Int("solve", len(tri.solve)),
		zap.Int("parked", len(tri.parked)),
		zap.Int("flags", len(tri.flags)))

	e := newEngine(r, cands, tri.solve)
	done, ok := e.search(state{table: table, used: make([]bool, nslots)}, 0)
	s.stats.Attempts, s.stats.Bridges = e.attempts, e.bridges
	if !ok {
		return nil, ErrNotRealizable
	}
	s.table = done.table
	s.stats.Solved = len(tri.solve)

	solution := make([]component.Component, 0, len(done.picks)+len(tri.parked))
	for _, pk := range done.picks {
		c := cands[pk.cand].comp.Clone()
		c.Satisfies = r.parts[pk.part].comp.ID()
		solution = append(solution, c)
	}

	// Triage parks only instruments whose non-ground groups are significant,
	// and the search binds every significant group. An instrument is thus
	// left out only when all its terminals sit on ground.
	for _, i := range tri.parked {
		p := r.parts[i]
		touched := false
		for _, sym := range p.syms {
			if !done.table.SameGroup(sym, r.ground) && done.table.Bound(sym) {
				touched = true
				break
			}
		}
		if !touched {
			continue
		}
		c := p.comp.Clone()
		c.Satisfies = p.comp.ID()
		for k, sym := range p.syms {
			n, err := done.table.RepresentativeOrSpare(sym)
			if err != nil {
				return nil, fmt.Errorf("%w: placing %s", err, p.comp.ID())
			}
			c.Terminals[k] = s.nodes[n]
		}
		solution = append(solution, c)
		s.stats.Parked++
	}
	return solution, nil
}

// load interns the request plus the magic endpoints it does not override.
func (r *run) load(requested []component.Component) error {
	ids := make(map[string]bool, len(requested))
	all := make([]component.Component, 0, len(requested)+len(r.cfg.Magic))
	for _, c := range requested {
		ids[c.ID()] = true
		all = append(all, c)
	}
	for _, m := range r.cfg.Magic {
		if !ids[m.ID()] {
			all = append(all, m)
		}
	}

	r.parts = make([]part, 0, len(all))
	for _, c := range all {
		def, ok := c.Def()
		if !ok {
			return fmt.Errorf("%w: %s: unknown type", ErrInvalidComponent, c.ID())
		}
		if len(c.Terminals) != def.Terminals {
			return fmt.Errorf("%w: %s: expects %d terminal(s), got %d",
				ErrInvalidComponent, c.ID(), def.Terminals, len(c.Terminals))
		}
		p := part{comp: c.Clone(), def: def, syms: make([]Symbol, len(c.Terminals))}
		for i, term := range c.Terminals {
			p.syms[i] = r.in.Intern(term)
		}
		r.parts = append(r.parts, p)
	}
	return nil
}

func resolveCandidates(inv []component.Component, nodeIndex map[string]int) ([]candidate, int, error) {
	slotOf, nslots := slots(inv)
	cands := make([]candidate, len(inv))
	for i, c := range inv {
		def, ok := c.Def()
		if !ok {
			return nil, 0, fmt.Errorf("%w: inventory %s: unknown type", ErrInvalidComponent, c.ID())
		}
		if len(c.Terminals) != def.Terminals {
			return nil, 0, fmt.Errorf("%w: inventory %s: expects %d terminal(s), got %d",
				ErrInvalidComponent, c.ID(), def.Terminals, len(c.Terminals))
		}
		nodes := make([]int, len(c.Terminals))
		for k, term := range c.Terminals {
			n, ok := nodeIndex[term]
			if !ok {
				return nil, 0, fmt.Errorf("%w: %q on inventory %s", ErrUnknownNode, term, c.ID())
			}
			nodes[k] = n
		}
		cands[i] = candidate{comp: c, nodes: nodes, slot: slotOf[i]}
	}
	return cands, nslots, nil
}

// Solution returns the solved netlist of the last successful Solve: the
// chosen inventory parts and shortcuts, each tagged with the requested
// component it satisfies, followed by the placed instruments.
func (s *Solver) Solution() []component.Component {
	out := make([]component.Component, len(s.solution))
	for i, c := range s.solution {
		out[i] = c.Clone()
	}
	return out
}

// IsConnected reports whether the symbolic node name ended up on a physical
// node in the last Solve.
func (s *Solver) IsConnected(name string) bool {
	if s.in == nil || s.table == nil {
		return false
	}
	sym, ok := s.in.Lookup(name)
	return ok && s.table.Bound(sym)
}

// Assignment maps every bound symbol of the last successful Solve to the
// physical nodes of its group.
func (s *Solver) Assignment() map[string][]string {
	if s.err != nil || s.in == nil || s.table == nil {
		return nil
	}
	out := make(map[string][]string)
	for i := 0; i < s.in.Len(); i++ {
		sym := Symbol(i)
		for _, n := range s.table.Nodes(sym) {
			out[s.in.Name(sym)] = append(out[s.in.Name(sym)], s.nodes[n])
		}
	}
	return out
}

// Err returns why the last Solve failed, or nil.
func (s *Solver) Err() error {
	return s.err
}

// Warnings returns the double attachments flagged by the last Solve.
func (s *Solver) Warnings() []Flag {
	return append([]Flag(nil), s.flags...)
}

// Stats returns counters for the last Solve.
func (s *Solver) Stats() Stats {
	return s.stats
}
