package solver

type hop struct {
	from int // node one step closer to the target
	via  int // shortcut candidate
}

// bridge connects the free node target to the group of s through a chain
// of unused shortcuts whose inner nodes are free. On success every node on
// the chain joins the group and the shortcuts are consumed. On failure st
// is left untouched.
func (e *engine) bridge(st *state, pi int, s Symbol, target int) bool {
	t := st.table
	if !t.Bound(s) || !t.Free(target) {
		return false
	}
	g := t.Group(s)

	visited := make([]bool, len(t.owner))
	prev := make([]hop, len(t.owner))
	visited[target] = true
	queue := []int{target}
	found := -1

search:
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, ci := range e.shortcuts {
			c := e.cands[ci]
			if st.used[c.slot] {
				continue
			}
			var next int
			switch n {
			case c.nodes[0]:
				next = c.nodes[1]
			case c.nodes[1]:
				next = c.nodes[0]
			default:
				continue
			}
			if next == n || visited[next] {
				continue
			}
			switch o := t.Owner(next); {
			case o == g:
				prev[next] = hop{from: n, via: ci}
				found = next
				break search
			case o != 0:
				continue
			}
			visited[next] = true
			prev[next] = hop{from: n, via: ci}
			queue = append(queue, next)
		}
	}
	if found < 0 {
		return false
	}

	var path []hop
	slotTaken := make(map[int]bool)
	for n := found; n != target; n = prev[n].from {
		h := prev[n]
		slot := e.cands[h.via].slot
		if slotTaken[slot] {
			// two shortcuts of one mutual-exclusion group
			return false
		}
		slotTaken[slot] = true
		path = append(path, h)
	}

	// emit shortcuts from the target outwards
	for i := len(path) - 1; i >= 0; i-- {
		h := path[i]
		st.used[e.cands[h.via].slot] = true
		t.attach(s, h.from)
		st.picks = append(st.picks, pick{part: pi, cand: h.via, bridge: true})
	}
	e.bridges++
	return true
}
