package inventory

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/solver"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the accepted solution of one Select call.
type Result struct {
	ID        uuid.UUID
	Inventory *Inventory
	Index     int // position of Inventory in the repository order
	Solution  []component.Component
	Warnings  []solver.Flag
	Stats     solver.Stats
}

// Attempt records why one inventory was or was not accepted.
type Attempt struct {
	Inventory string
	Outcome   string
	Err       error
}

// Selector tries the inventories of a repository in priority order and
// accepts the first that realizes a request.
type Selector struct {
	repo    Repository
	cfg     *solver.Config
	workers int
	log     *zap.Logger
	metrics *Metrics
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithWorkers bounds the number of concurrent solves. Values below 1 mean
// one per CPU.
func WithWorkers(n int) SelectorOption {
	return func(s *Selector) { s.workers = n }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) SelectorOption {
	return func(s *Selector) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records attempts and outcomes in m.
func WithMetrics(m *Metrics) SelectorOption {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector creates a Selector over repo. A nil cfg means the solver
// defaults.
func NewSelector(repo Repository, cfg *solver.Config, opts ...SelectorOption) (*Selector, error) {
	if cfg == nil {
		cfg = solver.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Selector{repo: repo, cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s, nil
}

// Select returns the solution on the highest priority inventory that passes
// the pre-check and solves. Inventories are solved concurrently, but the
// result is always the one a sequential scan would have found. The attempts
// slice has one entry per inventory in repository order.
func (s *Selector) Select(ctx context.Context, requested []component.Component) (*Result, []Attempt, error) {
	invs := s.repo.Inventories()
	if len(invs) == 0 {
		return nil, nil, ErrNoInventory
	}

	id := uuid.New()
	log := s.log.With(zap.String("request_id", id.String()))
	log.Debug("selecting inventory",
		zap.Int("components", len(requested)),
		zap.Int("inventories", len(invs)))

	attempts := make([]Attempt, len(invs))
	results := make([]*Result, len(invs))
	var best atomic.Int64
	best.Store(int64(len(invs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, inv := range invs {
		i, inv := i, inv
		attempts[i] = Attempt{Inventory: inv.Name, Outcome: OutcomeSkipped}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if best.Load() < int64(i) {
				s.metrics.attempt(inv.Name, OutcomeSkipped)
				return nil
			}
			res, attempt := s.try(inv, requested)
			res.ID, res.Index = id, i
			attempts[i] = attempt
			s.metrics.attempt(inv.Name, attempt.Outcome)
			if attempt.Outcome != OutcomeSolved {
				return nil
			}
			results[i] = res
			for {
				cur := best.Load()
				if cur <= int64(i) || best.CompareAndSwap(cur, int64(i)) {
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, attempts, fmt.Errorf("inventory: select: %w", err)
	}

	for i, res := range results {
		if res == nil {
			log.Debug("inventory rejected",
				zap.String("inventory", invs[i].Name),
				zap.String("outcome", attempts[i].Outcome),
				zap.Error(attempts[i].Err))
			continue
		}
		log.Info("inventory selected",
			zap.String("inventory", res.Inventory.Name),
			zap.Int("parts", len(res.Solution)),
			zap.Int("bridges", res.Stats.Bridges),
			zap.Int("warnings", len(res.Warnings)))
		s.metrics.selection(true, res.Stats.Bridges)
		return res, attempts, nil
	}

	s.metrics.selection(false, 0)
	log.Info("no inventory matched", zap.Int("tried", len(invs)))
	errs := make([]error, 0, len(attempts))
	for _, a := range attempts {
		if a.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Inventory, a.Err))
		}
	}
	return nil, attempts, fmt.Errorf("%w: %w", ErrNoMatch, errors.Join(errs...))
}

func (s *Selector) try(inv *Inventory, requested []component.Component) (*Result, Attempt) {
	attempt := Attempt{Inventory: inv.Name}
	res := &Result{Inventory: inv}

	if missing := Missing(requested, inv.Components); len(missing) > 0 {
		attempt.Outcome = OutcomePrecheck
		attempt.Err = fmt.Errorf("pre-check: %v", missing)
		return res, attempt
	}

	sv, err := solver.New(s.cfg, solver.WithLogger(s.log.With(zap.String("inventory", inv.Name))))
	if err != nil {
		attempt.Outcome, attempt.Err = OutcomeUnsolved, err
		return res, attempt
	}
	start := time.Now()
	ok := sv.Solve(requested, inv.Components)
	if !ok {
		s.metrics.solved(OutcomeUnsolved, time.Since(start))
		attempt.Outcome, attempt.Err = OutcomeUnsolved, sv.Err()
		return res, attempt
	}
	s.metrics.solved(OutcomeSolved, time.Since(start))

	attempt.Outcome = OutcomeSolved
	res.Solution = sv.Solution()
	res.Warnings = sv.Warnings()
	res.Stats = sv.Stats()
	return res, attempt
}
