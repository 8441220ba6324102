package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/spf13/cobra"
)

var (
	parseDump bool
	parseSexp bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <netlist>",
	Short: "Parse and validate a netlist or maxlist",
	Long: `Parse a netlist file (one component per line, or an s-expression
maxlist with the .sexp extension), validate it and print it back.

Examples:
  matrix parse circuit.cir
  matrix parse --dump bench.max
  matrix parse --sexp bench.max > bench.sexp`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseDump, "dump", "d", false,
		"print the component table instead of netlist lines")
	parseCmd.Flags().BoolVar(&parseSexp, "sexp", false,
		"print as an s-expression maxlist")
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	filename := args[0]

	if verbose {
		fmt.Fprintf(out, "Parsing netlist: %s\n\n", filename)
	}

	comps, err := loadRequest(filename)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	if err := netlist.Validate(comps); err != nil {
		return err
	}

	switch {
	case parseSexp:
		fmt.Fprint(out, netlist.EncodeSexp(baseName(filename), comps))
	case parseDump:
		fmt.Fprint(out, netlist.Dump(comps))
	default:
		fmt.Fprint(out, netlist.Format(comps))
	}

	if verbose {
		fmt.Fprintf(out, "\n%d component(s)\n", len(comps))
	}
	return nil
}
