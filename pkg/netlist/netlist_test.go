package netlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, input string) []component.Component {
	t.Helper()
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	comps, err := parser.Components("test.cir", input)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return comps
}

func TestParseSimpleCircuit(t *testing.T) {
	comps := mustParse(t, "r_r1 a b 1k\nDMM_1 B 0\n")

	want := []component.Component{
		{Type: "R", Name: "R1", Value: "1K", Terminals: []string{"A", "B"}},
		{Type: "DMM", Name: "1", Terminals: []string{"B", "0"}},
	}
	if diff := cmp.Diff(want, comps); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	input := `
# bench 1
* spice style comment
R_X1 1 2 1K   # trailing comment

W_1 2 3
`
	comps := mustParse(t, input)
	if len(comps) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(comps))
	}
	if comps[1].Type != component.TypeWire {
		t.Errorf("Expected wire, got %s", comps[1].Type)
	}
	if comps[1].Value != "" {
		t.Errorf("Wire should carry no value, got %q", comps[1].Value)
	}
}

func TestParseGroupAndSpecial(t *testing.T) {
	comps := mustParse(t, "SHORTCUT_S1 C D GROUP=2\nDMM_1 A B DC VOLTS\nD_D1 A 0 1N4148 GROUP=3 FAST\n")

	if comps[0].Group != 2 {
		t.Errorf("Expected group 2, got %d", comps[0].Group)
	}
	if comps[1].Special != "DC VOLTS" {
		t.Errorf("Expected special 'DC VOLTS', got %q", comps[1].Special)
	}
	if comps[2].Value != "1N4148" || comps[2].Group != 3 || comps[2].Special != "FAST" {
		t.Errorf("Unexpected diode decode: %+v", comps[2])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown type", "X_1 A B", "unknown component type"},
		{"missing name", "R_ A B 1K", "expected TYPE_NAME"},
		{"no underscore", "R1 A B 1K", "expected TYPE_NAME"},
		{"short terminals", "R_1 A", "expects 2 terminal(s)"},
		{"missing value", "R_1 A B", "requires a value"},
		{"bad group", "SHORTCUT_1 A B GROUP=0", "invalid group marker"},
		{"extra words", "W_1 A B C", "unexpected"},
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Components("bad.cir", tt.input)
			if err == nil {
				t.Fatalf("Expected error for %q", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	_, err = parser.Components("pos.cir", "R_1 A B 1K\nZ_2 A B\n")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %T: %v", err, err)
	}
	if perr.Pos.Line != 2 {
		t.Errorf("Expected line 2, got %d", perr.Pos.Line)
	}
	if !strings.HasPrefix(perr.Error(), "netlist: pos.cir:2:") {
		t.Errorf("Unexpected message: %s", perr.Error())
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.max")
	if err := os.WriteFile(path, []byte("R_X1 1 2 1K\nSHORTCUT_S1 2 3\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	comps, err := parser.ComponentsFromFile(path)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}
	if len(comps) != 2 {
		t.Errorf("Expected 2 components, got %d", len(comps))
	}

	if _, err := parser.ComponentsFromFile(filepath.Join(t.TempDir(), "missing.max")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	input := "R_X1 1 2 1K GROUP=2\nDMM_1 A 0 DC VOLTS\nW_1 A B\n"
	comps := mustParse(t, input)

	if got := Format(comps); got != input {
		t.Errorf("Format mismatch:\nwant %q\ngot  %q", input, got)
	}
	if again := mustParse(t, Format(comps)); !cmp.Equal(comps, again) {
		t.Errorf("Reparsed components differ: %s", cmp.Diff(comps, again))
	}
}

func TestDump(t *testing.T) {
	comps := mustParse(t, "R_X1 1 2 1K\nW_1 A B\n")
	comps[0].Satisfies = "R_R1"

	want := "R X1 1K 1 2 <- R_R1\nW 1 - A B\n"
	if got := Dump(comps); got != want {
		t.Errorf("Dump mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestSexpDecode(t *testing.T) {
	input := `(maxlist BENCH1
  (comp R X1 (nodes A B) (value 1K))
  (comp SHORTCUT S1 (nodes C D) (group 2)))`

	name, comps, err := DecodeSexpString(input)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if name != "BENCH1" {
		t.Errorf("Expected name BENCH1, got %s", name)
	}

	want := []component.Component{
		{Type: "R", Name: "X1", Value: "1K", Terminals: []string{"A", "B"}},
		{Type: "SHORTCUT", Name: "S1", Terminals: []string{"C", "D"}, Group: 2},
	}
	if diff := cmp.Diff(want, comps); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestSexpRoundTrip(t *testing.T) {
	comps := mustParse(t, "R_X1 A B 1K\nC_X2 B C 10N GROUP=4\nDMM_M1 C 0 DC VOLTS\n")

	name, again, err := DecodeSexp(strings.NewReader(EncodeSexp("LAB", comps)))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if name != "LAB" {
		t.Errorf("Expected name LAB, got %s", name)
	}
	if diff := cmp.Diff(comps, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSexpErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not maxlist", "(inventory X (comp R X1 (nodes A B) (value 1K)))"},
		{"unknown type", "(maxlist X (comp ZZ X1 (nodes A B)))"},
		{"terminal count", "(maxlist X (comp R X1 (nodes A) (value 1K)))"},
		{"missing value", "(maxlist X (comp R X1 (nodes A B)))"},
		{"unknown field", "(maxlist X (comp R X1 (nodes A B) (value 1K) (color red)))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeSexpString(tt.input); err == nil {
				t.Errorf("Expected error for %s", tt.input)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ok := mustParse(t, "R_R1 A B 1K\nDMM_1 A B DC VOLTS\n")
	if err := Validate(ok); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	dup := mustParse(t, "R_R1 A B 1K\nR_R1 B C 2K\n")
	if err := Validate(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Expected duplicate error, got %v", err)
	}

	both := mustParse(t, "DMM_1 A B VOLTS AMPS\n")
	if err := Validate(both); err == nil || !strings.Contains(err.Error(), "voltage and current") {
		t.Errorf("Expected measurement conflict, got %v", err)
	}

	broken := []component.Component{{Type: "R", Name: "R9", Terminals: []string{"A"}}}
	err := Validate(broken)
	if err == nil {
		t.Fatal("Expected error for hand-built component")
	}
	if !strings.Contains(err.Error(), "terminal") || !strings.Contains(err.Error(), "missing value") {
		t.Errorf("Expected both problems reported, got %v", err)
	}
}
