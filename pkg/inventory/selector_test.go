package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/solver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectRequest = "R_R1 A 0 1K\nR_R2 A B 2K\nDMM_1 B 0\n"

func benchRepo(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	for _, inv := range []*Inventory{
		{Name: "small", Components: parse(t, "R_X1 A 0 1K\n")},
		{Name: "split", Components: parse(t, "R_X1 A 0 1K\nR_X2 B C 2K\n")},
		{Name: "good", Components: parse(t, "R_X1 A 0 1K\nR_X2 A B 2K\n")},
		{Name: "bridged", Components: parse(t, "R_X1 A 0 1K\nR_X2 B C 2K\nSHORTCUT_S1 A B\n")},
	} {
		require.NoError(t, repo.Add(inv))
	}
	return repo
}

func TestSelectFirstMatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	sel, err := NewSelector(benchRepo(t), nil, WithWorkers(4), WithMetrics(metrics))
	require.NoError(t, err)

	res, attempts, err := sel.Select(context.Background(), parse(t, selectRequest))
	require.NoError(t, err)

	assert.Equal(t, "good", res.Inventory.Name)
	assert.Equal(t, 2, res.Index)
	assert.NotEqual(t, uuid.Nil, res.ID)
	assert.Len(t, res.Solution, 3)

	require.Len(t, attempts, 4)
	assert.Equal(t, OutcomePrecheck, attempts[0].Outcome)
	assert.Equal(t, OutcomeUnsolved, attempts[1].Outcome)
	assert.ErrorIs(t, attempts[1].Err, solver.ErrNotRealizable)
	assert.Equal(t, OutcomeSolved, attempts[2].Outcome)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.selections.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.attempts.WithLabelValues("small", OutcomePrecheck)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.attempts.WithLabelValues("good", OutcomeSolved)))
}

func TestSelectDeterministic(t *testing.T) {
	repo := NewMemoryRepository()
	for _, name := range []string{"n0", "n1", "n2", "n3", "n4", "n5"} {
		comps := parse(t, "R_X1 A 0 1K\n")
		if name >= "n3" {
			comps = parse(t, "R_X1 A 0 1K\nR_X2 A B 2K\n")
		}
		require.NoError(t, repo.Add(&Inventory{Name: name, Components: comps}))
	}
	sel, err := NewSelector(repo, nil, WithWorkers(6))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		res, _, err := sel.Select(context.Background(), parse(t, selectRequest))
		require.NoError(t, err)
		require.Equal(t, "n3", res.Inventory.Name)
	}
}

func TestSelectBridged(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.Add(&Inventory{Name: "bridged", Components: parse(t, "R_X1 A 0 1K\nR_X2 B C 2K\nSHORTCUT_S1 A B\n")}))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	sel, err := NewSelector(repo, nil, WithMetrics(metrics))
	require.NoError(t, err)

	res, _, err := sel.Select(context.Background(), parse(t, selectRequest))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Bridges)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.bridges))
}

func TestSelectNoMatch(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.Add(&Inventory{Name: "small", Components: parse(t, "R_X1 A 0 1K\n")}))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	sel, err := NewSelector(repo, nil, WithMetrics(metrics))
	require.NoError(t, err)

	res, attempts, err := sel.Select(context.Background(), parse(t, selectRequest))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "small")
	assert.Len(t, attempts, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.selections.WithLabelValues("unmatched")))
}

func TestSelectEmptyRepository(t *testing.T) {
	sel, err := NewSelector(NewMemoryRepository(), nil)
	require.NoError(t, err)
	_, _, err = sel.Select(context.Background(), parse(t, selectRequest))
	assert.ErrorIs(t, err, ErrNoInventory)
}

func TestSelectCanceled(t *testing.T) {
	sel, err := NewSelector(benchRepo(t), nil, WithWorkers(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = sel.Select(ctx, parse(t, selectRequest))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestNewSelectorRejectsBadConfig(t *testing.T) {
	cfg := solver.DefaultConfig()
	cfg.Ground = "GND"
	_, err := NewSelector(NewMemoryRepository(), cfg)
	assert.Error(t, err)
}
