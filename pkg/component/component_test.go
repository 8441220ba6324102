package component

import "testing"

func TestLookupCaseInsensitive(t *testing.T) {
	def, ok := Lookup("r")
	if !ok {
		t.Fatal("expected R to be a known type")
	}
	if def.Terminals != 2 || !def.HasValue || !def.Reversible {
		t.Errorf("unexpected R definition: %+v", def)
	}

	if _, ok := Lookup("XYZ"); ok {
		t.Error("XYZ should not be a known type")
	}
}

func TestIProbeMatchesShortcut(t *testing.T) {
	probe := Component{Type: "IPROBE", Name: "1", Terminals: []string{"A", "B"}}
	jumper := Component{Type: "SHORTCUT", Name: "S1", Terminals: []string{"1", "2"}}

	if probe.MatchKey() != jumper.Key() {
		t.Errorf("IPROBE match key %q should equal SHORTCUT key %q", probe.MatchKey(), jumper.Key())
	}

	r := Component{Type: "R", Name: "1", Value: "1K"}
	if r.MatchKey() != r.Key() {
		t.Errorf("R should match its own key")
	}
}

func TestKeyIgnoresTypeCase(t *testing.T) {
	lower := Component{Type: "r", Name: "R1", Value: "1K"}
	upper := Component{Type: "R", Name: "X1", Value: "1K"}
	if lower.Key() != upper.Key() {
		t.Errorf("Key(%q) = %q, want %q", lower.Type, lower.Key(), upper.Key())
	}
	if lower.MatchKey() != upper.Key() {
		t.Errorf("MatchKey(%q) = %q, want %q", lower.Type, lower.MatchKey(), upper.Key())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := Component{Type: "R", Name: "1", Value: "1K", Terminals: []string{"A", "B"}}
	d := c.Clone()
	d.Terminals[0] = "Z"
	if c.Terminals[0] != "A" {
		t.Errorf("clone shares terminal storage with original")
	}
}

func TestTextAndDump(t *testing.T) {
	c := Component{Type: "R", Name: "X1", Value: "1K", Terminals: []string{"A", "B"}, Group: 2}
	if got, want := c.Text(), "R_X1 A B 1K GROUP=2"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	c.Satisfies = "R_R1"
	if got, want := c.Dump(), "R X1 1K A B <- R_R1"; got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}

	w := Component{Type: "W", Name: "1", Terminals: []string{"A", "0"}}
	if got, want := w.Dump(), "W 1 - A 0"; got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		typ   string
		class Class
		soft  bool
	}{
		{"W", ClassWire, false},
		{"R", ClassPart, false},
		{"OP", ClassPart, false},
		{"SHORTCUT", ClassShortcut, false},
		{"DMM", ClassInstrument, true},
		{"PROBE", ClassInstrument, true},
		{"IPROBE", ClassInstrument, false},
		{"VDC+6V", ClassInstrument, false},
	}
	for _, tt := range tests {
		def, ok := Lookup(tt.typ)
		if !ok {
			t.Fatalf("%s not defined", tt.typ)
		}
		if def.Class != tt.class || def.Soft != tt.soft {
			t.Errorf("%s: class=%s soft=%v, want %s soft=%v", tt.typ, def.Class, def.Soft, tt.class, tt.soft)
		}
	}
}
