package component

import (
	"sort"
	"strings"
)

// Class tells the solver how a component type takes part in matching.
type Class int

const (
	ClassPart       Class = iota // matched one-to-one against an inventory part
	ClassWire                    // declares node equivalence only
	ClassShortcut                // spare jumper contact
	ClassInstrument              // measurement or source endpoint
)

func (c Class) String() string {
	switch c {
	case ClassPart:
		return "part"
	case ClassWire:
		return "wire"
	case ClassShortcut:
		return "shortcut"
	case ClassInstrument:
		return "instrument"
	default:
		return "unknown"
	}
}

// TypeDef describes the fixed shape of one component type.
type TypeDef struct {
	Name         string
	Terminals    int
	HasValue     bool
	AllowSpecial bool
	Reversible   bool
	Class        Class

	// Soft instruments are not matched against the inventory; they are
	// placed afterwards wherever their nodes ended up.
	Soft bool

	// MatchAs names the inventory type a request of this type consumes
	// when it differs from Name.
	MatchAs string
}

// Matches returns the inventory type this definition is matched against.
func (d TypeDef) Matches() string {
	if d.MatchAs != "" {
		return d.MatchAs
	}
	return d.Name
}

// Type names used by the solver.
const (
	TypeWire     = "W"
	TypeShortcut = "SHORTCUT"
	TypeDMM      = "DMM"
	TypeProbe    = "PROBE"
	TypeIProbe   = "IPROBE"
)

var defs = map[string]TypeDef{
	"W":        {Name: "W", Terminals: 2, Reversible: true, Class: ClassWire},
	"R":        {Name: "R", Terminals: 2, HasValue: true, Reversible: true, Class: ClassPart},
	"C":        {Name: "C", Terminals: 2, HasValue: true, Reversible: true, Class: ClassPart},
	"L":        {Name: "L", Terminals: 2, HasValue: true, Reversible: true, Class: ClassPart},
	"D":        {Name: "D", Terminals: 2, HasValue: true, AllowSpecial: true, Class: ClassPart},
	"Q":        {Name: "Q", Terminals: 3, HasValue: true, AllowSpecial: true, Class: ClassPart},
	"OP":       {Name: "OP", Terminals: 5, HasValue: true, AllowSpecial: true, Class: ClassPart},
	"SHORTCUT": {Name: "SHORTCUT", Terminals: 2, Reversible: true, Class: ClassShortcut},

	"DMM":    {Name: "DMM", Terminals: 2, AllowSpecial: true, Class: ClassInstrument, Soft: true},
	"PROBE":  {Name: "PROBE", Terminals: 1, AllowSpecial: true, Class: ClassInstrument, Soft: true},
	"IPROBE": {Name: "IPROBE", Terminals: 2, AllowSpecial: true, Reversible: true, Class: ClassInstrument, MatchAs: TypeShortcut},

	"VDC+6V":  {Name: "VDC+6V", Terminals: 1, AllowSpecial: true, Class: ClassInstrument},
	"VDC+25V": {Name: "VDC+25V", Terminals: 1, AllowSpecial: true, Class: ClassInstrument},
	"VDC-25V": {Name: "VDC-25V", Terminals: 1, AllowSpecial: true, Class: ClassInstrument},
	"VDCCOM":  {Name: "VDCCOM", Terminals: 1, AllowSpecial: true, Class: ClassInstrument},
	"FGEN":    {Name: "FGEN", Terminals: 1, AllowSpecial: true, Class: ClassInstrument},
}

// Lookup returns the definition of a type name. Names are case-insensitive.
func Lookup(name string) (TypeDef, bool) {
	def, ok := defs[strings.ToUpper(name)]
	return def, ok
}

// TypeNames returns all known type names in sorted order.
func TypeNames() []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
