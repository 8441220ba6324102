// Package component defines the circuit element record shared by requests,
// inventories and solved netlists, together with the per-type definition
// table the parser and the solver agree on.
package component

import (
	"fmt"
	"strings"
)

// Component is one circuit element. Terminals hold symbolic node names in a
// request and physical node identifiers in an inventory or a solution.
type Component struct {
	Type      string
	Name      string
	Value     string
	Special   string
	Terminals []string

	// Group is the mutual-exclusion group of an inventory part; 0 means the
	// part stands alone.
	Group int

	// Satisfies names the requested component a solved part stands for.
	Satisfies string
}

// ID returns the TYPE_NAME token the component was written with.
func (c Component) ID() string {
	return c.Type + "_" + c.Name
}

// Def returns the type definition of the component.
func (c Component) Def() (TypeDef, bool) {
	return Lookup(c.Type)
}

// Is reports whether the component has the given class.
func (c Component) Is(class Class) bool {
	def, ok := c.Def()
	return ok && def.Class == class
}

// Clone returns a copy that shares no memory with c.
func (c Component) Clone() Component {
	out := c
	out.Terminals = append([]string(nil), c.Terminals...)
	return out
}

// Key is the structural identity used to pair requests with inventory
// parts: type plus value. The type is compared case-insensitively.
func (c Component) Key() string {
	return strings.ToUpper(c.Type) + "\x00" + c.Value
}

// MatchKey is the inventory Key a request of this component's type consumes.
func (c Component) MatchKey() string {
	def, ok := c.Def()
	if !ok {
		return c.Key()
	}
	if def.MatchAs != "" {
		// the substitute type carries no value
		return def.MatchAs + "\x00"
	}
	return c.Key()
}

// Text renders the component in netlist syntax.
func (c Component) Text() string {
	parts := []string{c.ID()}
	parts = append(parts, c.Terminals...)
	if c.Value != "" {
		parts = append(parts, c.Value)
	}
	if c.Group != 0 {
		parts = append(parts, fmt.Sprintf("GROUP=%d", c.Group))
	}
	if c.Special != "" {
		parts = append(parts, c.Special)
	}
	return strings.Join(parts, " ")
}

// Dump renders the human readable form "type name value terminal...".
func (c Component) Dump() string {
	value := c.Value
	if value == "" {
		value = "-"
	}
	parts := append([]string{c.Type, c.Name, value}, c.Terminals...)
	line := strings.Join(parts, " ")
	if c.Satisfies != "" {
		line += " <- " + c.Satisfies
	}
	return line
}

// String implements fmt.Stringer.
func (c Component) String() string {
	return c.Text()
}
