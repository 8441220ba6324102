package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/internal/config"
	"github.com/OpenTraceLab/OpenTraceMatrix/internal/logging"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/inventory"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Inventory flags, shared by the commands that need a repository
	inventoryPaths []string
	inventoryDir   string

	lab    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Circuit realizability solver for the remote lab relay matrix",
	Long: `Checks whether a requested circuit can be built from the components
mounted on the relay matrix, picks the first inventory that realizes it and
programs the matrix controller.

Examples:
  matrix parse circuit.cir                            # Parse and validate a netlist
  matrix check circuit.cir -i bench.max               # Compare part counts
  matrix solve circuit.cir --dir maxlists             # Find a realizing inventory
  matrix program circuit.cir --dir maxlists           # Solve and drive the matrix`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		lab, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(lab.Log.Level, lab.Log.Format, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "lab configuration file (YAML)")
}

func addInventoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&inventoryPaths, "inventory", "i", nil,
		"maxlist file, in priority order (repeatable)")
	cmd.Flags().StringVar(&inventoryDir, "dir", "",
		"directory of maxlist files")
}

// loadRequest reads a netlist from a text or s-expression file.
func loadRequest(path string) ([]component.Component, error) {
	if strings.EqualFold(filepath.Ext(path), ".sexp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		_, comps, err := netlist.DecodeSexp(f)
		return comps, err
	}
	parser, err := netlist.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	return parser.ComponentsFromFile(path)
}

// loadRepository builds the repository from the flags, falling back to the
// configuration file.
func loadRepository() (*inventory.MemoryRepository, error) {
	paths, dir := inventoryPaths, inventoryDir
	if len(paths) == 0 && dir == "" {
		paths, dir = lab.Inventory.Paths, lab.Inventory.Dir
	}
	repo := inventory.NewMemoryRepository()
	if len(paths) > 0 {
		if err := repo.LoadFiles(paths...); err != nil {
			return nil, err
		}
	}
	if dir != "" {
		if err := repo.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	if repo.Len() == 0 {
		return nil, inventory.ErrNoInventory
	}
	logger.Debug("inventories loaded", zap.Int("count", repo.Len()))
	return repo, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
