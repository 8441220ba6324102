package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/inventory"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	solveWorkers int
	showAssign   bool
	showMetrics  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <netlist>",
	Short: "Find the first inventory that realizes a netlist",
	Long: `Solve a netlist against the inventories in priority order and print the
solved netlist: every inventory part chosen, the request component it
satisfies and the physical nodes it sits on.

Examples:
  matrix solve circuit.cir --dir maxlists
  matrix solve circuit.cir -i bench.max --assign
  matrix solve circuit.cir -i a.max -i b.max --workers 1 --metrics`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	addInventoryFlags(solveCmd)

	solveCmd.Flags().IntVarP(&solveWorkers, "workers", "w", 0,
		"concurrent solves (default from config, 0 = one per CPU)")
	solveCmd.Flags().BoolVarP(&showAssign, "assign", "a", false,
		"show the symbol to node assignment")
	solveCmd.Flags().BoolVar(&showMetrics, "metrics", false,
		"print selection metrics")
}

func runSolve(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	reg := prometheus.NewRegistry()
	res, err := selectInventory(cmd, args[0], reg)
	if showMetrics {
		defer printMetrics(out, reg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Request:   %s\n", res.ID)
	fmt.Fprintf(out, "Inventory: %s (priority %d)\n\n", res.Inventory.Name, res.Index+1)
	fmt.Fprint(out, netlist.Dump(res.Solution))

	if len(res.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
	if showAssign {
		fmt.Fprintln(out, "\nAssignment:")
		printAssignment(out, res.Solution)
	}
	if verbose {
		s := res.Stats
		fmt.Fprintf(out, "\nSelected %d, solved %d, parked %d, %d attempt(s), %d bridge(s)\n",
			s.Selected, s.Solved, s.Parked, s.Attempts, s.Bridges)
	}
	return nil
}

// selectInventory loads the request and repository and runs a Selector.
func selectInventory(cmd *cobra.Command, path string, reg prometheus.Registerer) (*inventory.Result, error) {
	req, err := loadRequest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if err := netlist.Validate(req); err != nil {
		return nil, err
	}
	repo, err := loadRepository()
	if err != nil {
		return nil, err
	}
	scfg, err := lab.SolverConfig()
	if err != nil {
		return nil, err
	}

	workers := lab.Inventory.Workers
	if cmd.Flags().Changed("workers") {
		workers = solveWorkers
	}
	sel, err := inventory.NewSelector(repo, scfg,
		inventory.WithWorkers(workers),
		inventory.WithLogger(logger),
		inventory.WithMetrics(inventory.NewMetrics(reg)))
	if err != nil {
		return nil, err
	}

	res, attempts, err := sel.Select(cmd.Context(), req)
	if err != nil {
		for _, a := range attempts {
			logger.Info("inventory attempt",
				zap.String("inventory", a.Inventory),
				zap.String("outcome", a.Outcome),
				zap.Error(a.Err))
		}
		return nil, err
	}
	return res, nil
}

// printAssignment lists the physical nodes each request symbol landed on,
// derived from the terminals of the solved parts.
func printAssignment(w io.Writer, solution []component.Component) {
	nodes := make(map[string]bool)
	for _, c := range solution {
		for _, n := range c.Terminals {
			nodes[n] = true
		}
	}
	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		var users []string
		for _, c := range solution {
			for i, t := range c.Terminals {
				if t == n {
					users = append(users, fmt.Sprintf("%s.%d", c.ID(), i+1))
				}
			}
		}
		fmt.Fprintf(w, "  %-3s %v\n", n, users)
	}
}

func printMetrics(w io.Writer, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		return
	}
	fmt.Fprintln(w, "\nMetrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "  %s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "  %s%s count=%d\n", mf.GetName(), labels, m.GetHistogram().GetSampleCount())
			}
		}
	}
}
