package solver

import "github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"

// UsageKey names the resource a candidate consumes: either the candidate
// itself or the mutual-exclusion group it belongs to.
type UsageKey struct {
	group bool
	id    int
}

// Standalone is the usage key of an ungrouped candidate.
func Standalone(candidate int) UsageKey { return UsageKey{id: candidate} }

// GroupMember is the usage key shared by every candidate of a group.
func GroupMember(group int) UsageKey { return UsageKey{group: true, id: group} }

// IsGroup reports whether k is a GroupMember key.
func (k UsageKey) IsGroup() bool { return k.group }

// ID returns the candidate index or group id.
func (k UsageKey) ID() int { return k.id }

func usageKeyOf(c component.Component, index int) UsageKey {
	if c.Group != 0 {
		return GroupMember(c.Group)
	}
	return Standalone(index)
}

// slots maps every candidate to a dense usage slot. Candidates of one group
// share a slot.
func slots(inv []component.Component) ([]int, int) {
	index := make(map[UsageKey]int)
	out := make([]int, len(inv))
	for i, c := range inv {
		k := usageKeyOf(c, i)
		slot, ok := index[k]
		if !ok {
			slot = len(index)
			index[k] = slot
		}
		out[i] = slot
	}
	return out, len(index)
}
