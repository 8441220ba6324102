package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func loadRun(t *testing.T, cfg *Config, input string) *run {
	t.Helper()
	r := &run{cfg: cfg, log: zap.NewNop(), in: NewInterner()}
	r.ground = r.in.Intern(cfg.Ground)
	if err := r.load(mustComponents(t, input)); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return r
}

func ids(r *run, idx []int) []string {
	out := make([]string, len(idx))
	for i, p := range idx {
		out[i] = r.parts[p].comp.ID()
	}
	return out
}

func TestReachableOrder(t *testing.T) {
	cfg := digitConfig()
	cfg.Magic = nil
	r := loadRun(t, cfg, "R_R1 0 A 1K\nR_R2 A B 2K\nDMM_1 B 0\nR_FLOAT X Y 1K\nPROBE_1 C\n")

	order := reachable(r.parts, r.ground, r.in.Len())

	// B is the first seed, then 0, then C
	want := []string{"R_R2", "DMM_1", "R_R1", "PROBE_1"}
	if diff := cmp.Diff(want, ids(r, order)); diff != "" {
		t.Errorf("visitation order mismatch (-want +got):\n%s", diff)
	}
}

func TestReachableGroundOnly(t *testing.T) {
	cfg := digitConfig()
	cfg.Magic = nil
	r := loadRun(t, cfg, "R_R1 0 A 1K\nR_R2 A B 2K\n")

	order := reachable(r.parts, r.ground, r.in.Len())
	if diff := cmp.Diff([]string{"R_R1", "R_R2"}, ids(r, order)); diff != "" {
		t.Errorf("ground should seed the walk (-want +got):\n%s", diff)
	}
}

func TestTriageParksAndDrops(t *testing.T) {
	cfg := digitConfig()
	cfg.Magic = nil
	r := loadRun(t, cfg, "R_R1 0 A 1K\nW_1 A B\nDMM_1 B 0\nPROBE_1 Z\nVDC+6V_1 A\n")

	table := NewTable(r.in.Len(), len(cfg.Alphabet), r.ground, 0)
	order := reachable(r.parts, r.ground, r.in.Len())
	tri, err := r.triage(order, table)
	if err != nil {
		t.Fatalf("triage failed: %v", err)
	}

	if diff := cmp.Diff([]string{"R_R1", "VDC+6V_1"}, ids(r, tri.solve)); diff != "" {
		t.Errorf("solve list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"DMM_1"}, ids(r, tri.parked)); diff != "" {
		t.Errorf("parked list mismatch (-want +got):\n%s", diff)
	}

	a, _ := r.in.Lookup("A")
	b, _ := r.in.Lookup("B")
	if !table.SameGroup(a, b) {
		t.Error("the wire should fold A and B")
	}
	// DMM_1 on B and VDC+6V_1 on A share the folded node
	if len(tri.flags) != 1 {
		t.Errorf("Expected one flag, got %v", tri.flags)
	}
}
