package inventory

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) []component.Component {
	t.Helper()
	parser, err := netlist.NewParser()
	require.NoError(t, err)
	comps, err := parser.Components("test", input)
	require.NoError(t, err)
	return comps
}

func TestCovers(t *testing.T) {
	req := parse(t, "R_R1 A B 1K\nR_R2 B 0 1K\nW_1 A C\nDMM_1 A 0\nPROBE_1 B\n")

	assert.True(t, Covers(req, parse(t, "R_X1 A B 1K\nR_X2 C 0 1K\n")))

	missing := Missing(req, parse(t, "R_X1 A B 1K\nR_X2 C 0 2K\n"))
	assert.Equal(t, []string{"R 1K: need 2, have 1"}, missing)
}

func TestCoversGroupsCountOnce(t *testing.T) {
	req := parse(t, "R_R1 A 0 1K\nR_R2 B 0 1K\n")

	grouped := parse(t, "R_X1 A 0 1K GROUP=1\nR_X2 B 0 1K GROUP=1\n")
	assert.False(t, Covers(req, grouped))

	split := parse(t, "R_X1 A 0 1K GROUP=1\nR_X2 B 0 1K GROUP=2\n")
	assert.True(t, Covers(req, split))
}

func TestCoversCurrentProbe(t *testing.T) {
	req := parse(t, "IPROBE_1 A B\n")

	assert.Equal(t, []string{"SHORTCUT: need 1, have 0"}, Missing(req, parse(t, "R_X1 A B 1K\n")))
	assert.True(t, Covers(req, parse(t, "SHORTCUT_S1 A B\n")))
}

func TestCoversSources(t *testing.T) {
	req := parse(t, "R_R1 VDC+6V 0 1K\nVDC+6V_1 VDC+6V\n")
	assert.False(t, Covers(req, parse(t, "R_X1 A 0 1K\n")))
	assert.True(t, Covers(req, parse(t, "R_X1 A 0 1K\nVDC+6V_1 A\n")))
}
