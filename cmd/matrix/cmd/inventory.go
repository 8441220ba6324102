package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/inventory"
	"github.com/spf13/cobra"
)

var watchFor time.Duration

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect maxlist inventories",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventories in priority order",
	Long: `List the inventories in priority order with their part counts.

Examples:
  matrix inventory list --dir maxlists
  matrix inventory list -i bench1.max -i bench2.sexp`,
	Args: cobra.NoArgs,
	RunE: runInventoryList,
}

var inventoryWatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Reload a maxlist directory whenever it changes",
	Long: `Watch a maxlist directory and report every reload. Runs until
interrupted, or for the --for duration.

Examples:
  matrix inventory watch maxlists
  matrix inventory watch maxlists --for 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryWatch,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryWatchCmd)

	addInventoryFlags(inventoryListCmd)
	inventoryWatchCmd.Flags().DurationVar(&watchFor, "for", 0,
		"stop after this long (0 = until interrupted)")
}

func runInventoryList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	repo, err := loadRepository()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d inventories:\n", repo.Len())
	for i, inv := range repo.Inventories() {
		fmt.Fprintf(out, "  %2d. %-20s %3d part(s)", i+1, inv.Name, len(inv.Components))
		if inv.Path != "" {
			fmt.Fprintf(out, "  %s", inv.Path)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runInventoryWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if watchFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchFor)
		defer cancel()
	}

	repo := inventory.NewMemoryRepository()
	w, err := inventory.NewWatcher(args[0], repo,
		inventory.WithWatchLogger(logger),
		inventory.OnReload(func(count int, err error) {
			if err != nil {
				fmt.Fprintf(out, "reload failed: %v\n", err)
				return
			}
			fmt.Fprintf(out, "loaded %d inventories\n", count)
		}))
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
