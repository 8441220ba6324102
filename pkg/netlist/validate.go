package netlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
)

var (
	voltageModes = map[string]bool{"V": true, "VOLT": true, "VOLTS": true, "VOLTAGE": true, "DCV": true, "ACV": true, "VDC": true, "VAC": true}
	currentModes = map[string]bool{"A": true, "AMP": true, "AMPS": true, "CURRENT": true, "DCA": true, "ACA": true, "ADC": true, "AAC": true}
)

// Validate checks request-level rules the parser cannot see on a single line:
// names must be unique, terminal counts must fit the type, and a multimeter
// cannot measure voltage and current at the same time. All problems are
// reported together.
func Validate(comps []component.Component) error {
	var errs []error
	seen := make(map[string]bool, len(comps))
	for _, c := range comps {
		id := c.ID()
		def, ok := c.Def()
		if !ok {
			errs = append(errs, fmt.Errorf("netlist: %s: unknown component type %q", id, c.Type))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("netlist: %s: duplicate component", id))
		}
		seen[id] = true

		if len(c.Terminals) != def.Terminals {
			errs = append(errs, fmt.Errorf("netlist: %s: expects %d terminal(s), got %d", id, def.Terminals, len(c.Terminals)))
		}
		if def.HasValue && c.Value == "" {
			errs = append(errs, fmt.Errorf("netlist: %s: missing value", id))
		}
		if c.Special != "" && !def.AllowSpecial {
			errs = append(errs, fmt.Errorf("netlist: %s: unexpected special %q", id, c.Special))
		}
		if def.Name == component.TypeDMM && measuresBoth(c.Special) {
			errs = append(errs, fmt.Errorf("netlist: %s: cannot measure voltage and current at once", id))
		}
	}
	return errors.Join(errs...)
}

func measuresBoth(special string) bool {
	var volts, amps bool
	for _, w := range strings.Fields(strings.ToUpper(special)) {
		volts = volts || voltageModes[w]
		amps = amps || currentModes[w]
	}
	return volts && amps
}
