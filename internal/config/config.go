// Package config loads the lab configuration file shared by the matrix
// commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/matrix"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/solver"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	TransportSim = "sim"
	TransportUSB = "usb"
)

var validate = validator.New()

// Config is the lab configuration.
type Config struct {
	Log       Log       `yaml:"log"`
	Solver    Solver    `yaml:"solver"`
	Inventory Inventory `yaml:"inventory"`
	Matrix    Matrix    `yaml:"matrix"`
}

// Log selects the logger.
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Solver mirrors solver.Config in file form.
type Solver struct {
	Alphabet         []string          `yaml:"alphabet" validate:"min=2,max=10,unique,dive,required"`
	Ground           string            `yaml:"ground" validate:"required"`
	Shortcuts        bool              `yaml:"shortcuts"`
	DoubleAttachment string            `yaml:"double_attachment" validate:"omitempty,oneof=warn fail"`
	Pinned           map[string]string `yaml:"pinned,omitempty" validate:"dive,keys,required,endkeys,required"`

	// Magic holds netlist lines such as "DMM_MAGIC DMM_VHI DMM_VLO". When
	// absent the built-in endpoints are used; an empty list disables them.
	Magic []string `yaml:"magic,omitempty"`
}

// Inventory locates the maxlists.
type Inventory struct {
	Paths   []string `yaml:"paths,omitempty" validate:"dive,required"`
	Dir     string   `yaml:"dir,omitempty"`
	Workers int      `yaml:"workers" validate:"gte=0,lte=64"`
}

// Matrix selects the address table and the controller.
type Matrix struct {
	AddressTable string `yaml:"address_table,omitempty"`
	Transport    string `yaml:"transport" validate:"oneof=sim usb"`
	VendorID     uint16 `yaml:"vendor_id" validate:"required"`
	ProductID    uint16 `yaml:"product_id" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	sc := solver.DefaultConfig()
	return &Config{
		Log: Log{Level: "info", Format: "console"},
		Solver: Solver{
			Alphabet:         sc.Alphabet,
			Ground:           sc.Ground,
			Shortcuts:        sc.Shortcuts,
			DoubleAttachment: sc.DoubleAttachment.String(),
		},
		Matrix: Matrix{
			Transport: TransportSim,
			VendorID:  matrix.VendorIDOpenTrace,
			ProductID: matrix.ProductIDMatrixCtl,
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration at path. An empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the struct tags, then the solver section as a whole.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.SolverConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SolverConfig builds the solver configuration.
func (c *Config) SolverConfig() (*solver.Config, error) {
	policy, err := solver.ParsePolicy(c.Solver.DoubleAttachment)
	if err != nil {
		return nil, err
	}
	sc := &solver.Config{
		Alphabet:         append([]string(nil), c.Solver.Alphabet...),
		Ground:           c.Solver.Ground,
		Pinned:           c.Solver.Pinned,
		Shortcuts:        c.Solver.Shortcuts,
		DoubleAttachment: policy,
		Magic:            solver.DefaultMagic(),
	}
	if c.Solver.Magic != nil {
		parser, err := netlist.NewParser()
		if err != nil {
			return nil, err
		}
		sc.Magic, err = parser.Components("magic", strings.Join(c.Solver.Magic, "\n"))
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// AddressTable loads the configured address table, or the default one.
func (c *Config) AddressTable() (*matrix.AddressTable, error) {
	if c.Matrix.AddressTable == "" {
		return matrix.DefaultAddressTable(), nil
	}
	return matrix.LoadAddressTable(c.Matrix.AddressTable)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
