package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceMatrix/internal/config"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/matrix"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	transportName string
	dryRun        bool
	listDevices   bool
)

var programCmd = &cobra.Command{
	Use:   "program [netlist]",
	Short: "Solve a netlist and program the relay matrix",
	Long: `Solve a netlist, translate the solved netlist into relay commands
through the address table and send them to the matrix controller.

The simulator transport keeps the relay state in memory and prints it;
the usb transport talks to the controller board.

Examples:
  matrix program circuit.cir --dir maxlists --dry-run
  matrix program circuit.cir --dir maxlists --transport usb
  matrix program --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if listDevices {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(programCmd)
	addInventoryFlags(programCmd)

	programCmd.Flags().StringVarP(&transportName, "transport", "t", "",
		"controller transport: sim or usb (default from config)")
	programCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"print the program without sending it")
	programCmd.Flags().BoolVarP(&listDevices, "list", "l", false,
		"list connected matrix controllers")
}

func runProgram(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if listDevices {
		devices, err := matrix.EnumerateControllers(lab.Matrix.VendorID, lab.Matrix.ProductID)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Fprintln(out, "No matrix controllers found")
			return nil
		}
		fmt.Fprintf(out, "Found %d controller(s):\n", len(devices))
		for i, d := range devices {
			fmt.Fprintf(out, "  [%d] %04X:%04X %s (serial %s)\n", i, d.VID, d.PID, d.Description, d.SerialNumber)
		}
		return nil
	}

	res, err := selectInventory(cmd, args[0], prometheus.NewRegistry())
	if err != nil {
		return err
	}
	table, err := lab.AddressTable()
	if err != nil {
		return err
	}
	prog, err := matrix.Build(res.Solution, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Inventory: %s\n\n", res.Inventory.Name)
	fmt.Fprint(out, prog.String())
	if dryRun {
		return nil
	}

	name := lab.Matrix.Transport
	if transportName != "" {
		name = transportName
	}

	var (
		transport matrix.Transport
		sim       *matrix.SimTransport
	)
	switch name {
	case config.TransportSim:
		sim = matrix.NewSimTransport()
		transport = sim
	case config.TransportUSB:
		usb, err := matrix.NewUSBTransport(lab.Matrix.VendorID, lab.Matrix.ProductID)
		if err != nil {
			return err
		}
		transport = usb
	default:
		return fmt.Errorf("unknown transport %q", name)
	}

	ctrl := matrix.NewController(transport, logger)
	defer ctrl.Close()
	if err := ctrl.Apply(cmd.Context(), prog); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nProgrammed %d command(s) over %s\n", len(prog.Commands), name)
	if sim != nil {
		for _, line := range sim.Dump() {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	return nil
}
