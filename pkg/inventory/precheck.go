package inventory

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
)

// Missing lists the (type, value) pairs the request needs more of than the
// inventory offers. It counts every matchable request component, reachable
// or not, so it may reject an inventory Solve would accept but never the
// other way round. A mutual-exclusion group supplies at most one part of
// each kind.
func Missing(requested, inventory []component.Component) []string {
	need := make(map[string]int)
	label := make(map[string]string)
	for _, c := range requested {
		def, ok := c.Def()
		if !ok || def.Class == component.ClassWire || def.Soft {
			continue
		}
		key := c.MatchKey()
		need[key]++
		label[key] = def.Matches()
		if def.MatchAs == "" && c.Value != "" {
			label[key] += " " + c.Value
		}
	}

	have := make(map[string]int)
	seen := make(map[string]bool)
	for _, c := range inventory {
		key := c.Key()
		if c.Group != 0 {
			gk := strconv.Itoa(c.Group) + "\x00" + key
			if seen[gk] {
				continue
			}
			seen[gk] = true
		}
		have[key]++
	}

	var out []string
	for key, n := range need {
		if have[key] < n {
			out = append(out, fmt.Sprintf("%s: need %d, have %d", label[key], n, have[key]))
		}
	}
	sort.Strings(out)
	return out
}

// Covers is the cheap subset pre-check run before Solve.
func Covers(requested, inventory []component.Component) bool {
	return len(Missing(requested, inventory)) == 0
}
