package netlist

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
)

// Format renders components back into netlist text, one per line.
func Format(comps []component.Component) string {
	var b strings.Builder
	for _, c := range comps {
		b.WriteString(c.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// Dump renders the "type name value terminal..." listing used in logs.
func Dump(comps []component.Component) string {
	var b strings.Builder
	for _, c := range comps {
		b.WriteString(c.Dump())
		b.WriteByte('\n')
	}
	return b.String()
}
