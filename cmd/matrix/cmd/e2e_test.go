package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	requestNetlist = "* divider\nR_R1 A 0 1K\nR_R2 A B 2K\nDMM_1 B 0\n"
	smallMaxlist   = "R_X1 A 0 1K\n"
	splitMaxlist   = "R_X1 A 0 1K\nR_X2 B C 2K\n"
	goodMaxlist    = "R_X1 A 0 1K\nR_X2 A B 2K\n"
)

// benchDir writes the request and three inventories, named so that the
// directory order is small, split, good.
func benchDir(t *testing.T) (dir, request string) {
	t.Helper()
	root := t.TempDir()
	dir = filepath.Join(root, "maxlists")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dir, "1-small.max"): smallMaxlist,
		filepath.Join(dir, "2-split.max"): splitMaxlist,
		filepath.Join(dir, "3-good.max"):  goodMaxlist,
		filepath.Join(root, "divider.cir"): requestNetlist,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(root, "divider.cir")
}

// resetFlags puts every flag back to its default between runs.
func resetFlags() {
	verbose, configPath = false, ""
	inventoryPaths, inventoryDir = nil, ""
	parseDump, parseSexp = false, false
	solveWorkers, showAssign, showMetrics = 0, false, false
	transportName, dryRun, listDevices = "", false, false
	watchFor = 0

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset := func(f *pflag.Flag) { f.Changed = false }
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsE2E(t *testing.T) {
	dir, request := benchDir(t)
	small := filepath.Join(dir, "1-small.max")
	good := filepath.Join(dir, "3-good.max")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "parse",
			args:        []string{"parse", request},
			wantContain: []string{"R_R1 A 0 1K", "R_R2 A B 2K", "DMM_1 B 0"},
		},
		{
			name:        "parse dump",
			args:        []string{"parse", "--dump", request},
			wantContain: []string{"R R1 1K A 0", "DMM 1 - B 0"},
		},
		{
			name:        "parse sexp",
			args:        []string{"parse", "--sexp", good},
			wantContain: []string{"(maxlist 3-good", "(comp R X2 (nodes A B) (value 2K))"},
		},
		{
			name:    "parse missing file",
			args:    []string{"parse", filepath.Join(dir, "nope.cir")},
			wantErr: true,
		},
		{
			name:    "parse missing argument",
			args:    []string{"parse"},
			wantErr: true,
		},
		{
			name: "check",
			args: []string{"check", request, "-i", small, "-i", good},
			wantContain: []string{
				"R 2K: need 1, have 0",
				"3-good",
				"1 of 2 inventories cover the request",
			},
		},
		{
			name: "solve",
			args: []string{"solve", request, "--dir", dir, "--assign", "--metrics"},
			wantContain: []string{
				"Inventory: 3-good (priority 3)",
				"R X1 1K",
				"<- R_R2",
				"DMM 1 -",
				"Assignment:",
				"opentrace_matrix_selections_total result=matched 1",
			},
		},
		{
			name:    "solve without a realizing inventory",
			args:    []string{"solve", request, "-i", small},
			wantErr: true,
		},
		{
			name:    "solve without inventories",
			args:    []string{"solve", request},
			wantErr: true,
		},
		{
			name:        "inventory list",
			args:        []string{"inventory", "list", "--dir", dir},
			wantContain: []string{"3 inventories:", "1-small", "2-split", "3-good"},
		},
		{
			name:        "program dry run",
			args:        []string{"program", request, "--dir", dir, "--dry-run"},
			wantContain: []string{"[MATRIX]", "CARD 0 R_X1", "[DMM]"},
		},
		{
			name: "program simulator",
			args: []string{"program", request, "--dir", dir, "--transport", "sim"},
			wantContain: []string{
				"Programmed 3 command(s) over sim",
				"R_X1 [",
				"R_X2 [",
				"DMM_1 [",
			},
		},
		{
			name:    "program unknown transport",
			args:    []string{"program", request, "--dir", dir, "--transport", "serial"},
			wantErr: true,
		},
		{
			name:        "inventory watch",
			args:        []string{"inventory", "watch", dir, "--for", "100ms"},
			wantContain: []string{"loaded 3 inventories"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none\nOutput: %s", output)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestConfigFileE2E(t *testing.T) {
	dir, request := benchDir(t)
	cfgPath := filepath.Join(t.TempDir(), "lab.yaml")
	cfg := "log:\n  level: error\ninventory:\n  dir: " + dir + "\n  workers: 1\nsolver:\n  shortcuts: false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, "--config", cfgPath, "solve", request)
	if err != nil {
		t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Inventory: 3-good") {
		t.Errorf("Expected the configured inventory directory to be used, got:\n%s", output)
	}

	if _, err := execute(t, "--config", filepath.Join(dir, "missing.yaml"), "solve", request); err == nil {
		t.Error("Expected error for missing config file")
	}
}
