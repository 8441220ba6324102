package solver

// Table is the node binding table. Every symbol belongs to exactly one group
// (initially its own). A physical node is owned by at most one group, and a
// group owns at most one node except when a shortcut bridge extends it.
//
// Groups are plain labels; merging relabels.
type Table struct {
	groupOf []int // symbol -> group label
	owner   []int // node -> group label, 0 when free
	ground  int
}

// NewTable creates a table for n symbols over nodes physical identifiers.
// The ground symbol is bound to the ground node.
func NewTable(symbols, nodes int, groundSym Symbol, groundNode int) *Table {
	t := &Table{
		groupOf: make([]int, symbols),
		owner:   make([]int, nodes),
		ground:  groundNode,
	}
	for s := range t.groupOf {
		t.groupOf[s] = s + 1
	}
	t.owner[groundNode] = t.groupOf[groundSym]
	return t
}

// Clone returns a copy that shares no memory with t.
func (t *Table) Clone() *Table {
	return &Table{
		groupOf: append([]int(nil), t.groupOf...),
		owner:   append([]int(nil), t.owner...),
		ground:  t.ground,
	}
}

// Group returns the group label of s.
func (t *Table) Group(s Symbol) int {
	return t.groupOf[s]
}

func (t *Table) owns(g int) bool {
	for _, o := range t.owner {
		if o == g {
			return true
		}
	}
	return false
}

// Nodes returns the nodes owned by the group of s, in alphabet order.
func (t *Table) Nodes(s Symbol) []int {
	g := t.groupOf[s]
	var out []int
	for n, o := range t.owner {
		if o == g {
			out = append(out, n)
		}
	}
	return out
}

// Bound reports whether the group of s owns a node.
func (t *Table) Bound(s Symbol) bool {
	return t.owns(t.groupOf[s])
}

// Owner returns the group label owning node n, or 0.
func (t *Table) Owner(n int) int {
	return t.owner[n]
}

// Free reports whether node n is unowned.
func (t *Table) Free(n int) bool {
	return t.owner[n] == 0
}

// Ref declares a and b equivalent. It fails without mutation when both
// groups already own nodes.
func (t *Table) Ref(a, b Symbol) bool {
	ga, gb := t.groupOf[a], t.groupOf[b]
	if ga == gb {
		return true
	}
	if t.owns(ga) && t.owns(gb) {
		return false
	}
	for s, g := range t.groupOf {
		if g == gb {
			t.groupOf[s] = ga
		}
	}
	for n, o := range t.owner {
		if o == gb {
			t.owner[n] = ga
		}
	}
	return true
}

// Bind commits s to node n. It fails when n belongs to another group or the
// group of s already owns a different node.
func (t *Table) Bind(s Symbol, n int) bool {
	g := t.groupOf[s]
	switch o := t.owner[n]; {
	case o == g:
		return true
	case o != 0:
		return false
	}
	if t.owns(g) {
		return false
	}
	t.owner[n] = g
	return true
}

// CompatibleOrFree reports whether Bind(s, n) would succeed, without
// mutating the table.
func (t *Table) CompatibleOrFree(s Symbol, n int) bool {
	g := t.groupOf[s]
	if t.owner[n] == g {
		return true
	}
	return t.owner[n] == 0 && !t.owns(g)
}

// SameGroup reports whether a and b are equivalent.
func (t *Table) SameGroup(a, b Symbol) bool {
	return t.groupOf[a] == t.groupOf[b]
}

// Representative returns the first node owned by the group of s.
func (t *Table) Representative(s Symbol) (int, bool) {
	g := t.groupOf[s]
	for n, o := range t.owner {
		if o == g {
			return n, true
		}
	}
	return 0, false
}

// RepresentativeOrSpare returns a node owned by the group of s, or binds
// and returns the first free node other than ground.
func (t *Table) RepresentativeOrSpare(s Symbol) (int, error) {
	if n, ok := t.Representative(s); ok {
		return n, nil
	}
	for n, o := range t.owner {
		if o == 0 && n != t.ground {
			t.owner[n] = t.groupOf[s]
			return n, nil
		}
	}
	return 0, ErrNoSpareNode
}

// attach extends the group of s over the free node n. Only bridges do this.
func (t *Table) attach(s Symbol, n int) bool {
	g := t.groupOf[s]
	if t.owner[n] == g {
		return true
	}
	if t.owner[n] != 0 {
		return false
	}
	t.owner[n] = g
	return true
}
