package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
)

// Policy decides what happens when two instrument terminals end up on the
// same node group.
type Policy int

const (
	PolicyWarn Policy = iota // log, record a Flag and keep solving
	PolicyFail               // reject the request
)

func (p Policy) String() string {
	switch p {
	case PolicyWarn:
		return "warn"
	case PolicyFail:
		return "fail"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "warn" or "fail", case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return PolicyWarn, nil
	case "fail":
		return PolicyFail, nil
	}
	return PolicyWarn, fmt.Errorf("solver: unknown double attachment policy %q", s)
}

// Config controls one Solver.
type Config struct {
	// Physical node identifiers in allocation order. Spare nodes are handed
	// out in this order.
	Alphabet []string
	Ground   string // member of Alphabet; the symbol of the same name is pre-bound to it

	// Pinned binds symbols to fixed nodes before wires are folded, for
	// endpoints hard-wired to a bus on a given bench.
	Pinned map[string]string

	Shortcuts        bool   // allow the bridging pass
	DoubleAttachment Policy // instruments sharing a node group

	// Magic endpoint components appended to every request.
	Magic []component.Component
}

// DefaultAlphabet is ground followed by the nine lettered busses.
func DefaultAlphabet() []string {
	return []string{"0", "A", "B", "C", "D", "E", "F", "G", "H", "I"}
}

// DefaultMagic returns the placeholder instrument and source endpoints a
// client can wire to by symbol name.
func DefaultMagic() []component.Component {
	return []component.Component{
		{Type: "DMM", Name: "MAGIC", Terminals: []string{"DMM_VHI", "DMM_VLO"}},
		{Type: "IPROBE", Name: "MAGIC", Terminals: []string{"DMM_AHI", "DMM_ALO"}},
		{Type: "PROBE", Name: "MAGIC1", Terminals: []string{"PROBE1"}},
		{Type: "PROBE", Name: "MAGIC2", Terminals: []string{"PROBE2"}},
		{Type: "VDC+6V", Name: "MAGIC", Terminals: []string{"VDC+6V"}},
		{Type: "VDC+25V", Name: "MAGIC", Terminals: []string{"VDC+25V"}},
		{Type: "VDC-25V", Name: "MAGIC", Terminals: []string{"VDC-25V"}},
		{Type: "VDCCOM", Name: "MAGIC", Terminals: []string{"VDCCOM"}},
		{Type: "FGEN", Name: "MAGIC", Terminals: []string{"FGEN"}},
	}
}

// DefaultConfig returns the lab defaults: ten nodes, shortcuts on, warn on
// double attachment, the standard magic endpoints.
func DefaultConfig() *Config {
	return &Config{
		Alphabet:         DefaultAlphabet(),
		Ground:           "0",
		Shortcuts:        true,
		DoubleAttachment: PolicyWarn,
		Magic:            DefaultMagic(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Alphabet) < 2 || len(c.Alphabet) > 10 {
		return fmt.Errorf("solver: alphabet needs 2 to 10 nodes, got %d", len(c.Alphabet))
	}
	seen := make(map[string]bool, len(c.Alphabet))
	for _, n := range c.Alphabet {
		if n == "" {
			return fmt.Errorf("solver: empty node identifier in alphabet")
		}
		if seen[n] {
			return fmt.Errorf("solver: node %q listed twice", n)
		}
		seen[n] = true
	}
	if !seen[c.Ground] {
		return fmt.Errorf("solver: ground %q is not in the alphabet", c.Ground)
	}
	taken := map[string]string{c.Ground: c.Ground}
	for _, sym := range sortedKeys(c.Pinned) {
		node := c.Pinned[sym]
		if !seen[node] {
			return fmt.Errorf("solver: pinned %s: node %q is not in the alphabet", sym, node)
		}
		if other, ok := taken[node]; ok && other != sym {
			return fmt.Errorf("solver: pinned %s: node %q already holds %s", sym, node, other)
		}
		taken[node] = sym
	}
	if c.DoubleAttachment != PolicyWarn && c.DoubleAttachment != PolicyFail {
		return fmt.Errorf("solver: invalid double attachment policy %v", c.DoubleAttachment)
	}

	ids := make(map[string]bool, len(c.Magic))
	for _, m := range c.Magic {
		def, ok := m.Def()
		if !ok {
			return fmt.Errorf("solver: magic %s: unknown type", m.ID())
		}
		if def.Class != component.ClassInstrument {
			return fmt.Errorf("solver: magic %s: not an instrument", m.ID())
		}
		if len(m.Terminals) != def.Terminals {
			return fmt.Errorf("solver: magic %s: expects %d terminal(s), got %d", m.ID(), def.Terminals, len(m.Terminals))
		}
		if ids[m.ID()] {
			return fmt.Errorf("solver: magic %s listed twice", m.ID())
		}
		ids[m.ID()] = true
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
