package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/inventory"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <netlist>",
	Short: "Compare the part counts of a netlist against each inventory",
	Long: `Validate a netlist and run the part count pre-check against every
inventory, listing the parts each one lacks. No solving is done.

Examples:
  matrix check circuit.cir -i bench1.max -i bench2.max
  matrix check circuit.cir --dir maxlists`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addInventoryFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	req, err := loadRequest(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	if err := netlist.Validate(req); err != nil {
		return err
	}
	repo, err := loadRepository()
	if err != nil {
		return err
	}

	covered := 0
	for _, inv := range repo.Inventories() {
		missing := inventory.Missing(req, inv.Components)
		if len(missing) == 0 {
			covered++
			fmt.Fprintf(out, "%-20s ok\n", inv.Name)
			continue
		}
		fmt.Fprintf(out, "%-20s missing %d part type(s)\n", inv.Name, len(missing))
		for _, m := range missing {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}
	fmt.Fprintf(out, "\n%d of %d inventories cover the request\n", covered, repo.Len())
	return nil
}
