// Package matrix turns a solved netlist into relay switching commands and
// sends them to the matrix controller.
package matrix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MaxBus is the highest bus number the controller addresses.
const MaxBus = 15

var (
	// ErrUnmappedNode means a physical node has no bus address.
	ErrUnmappedNode = errors.New("matrix: node has no bus address")
)

// AddressTable maps physical node identifiers to matrix bus numbers and,
// optionally, components to the relay card they sit on.
type AddressTable struct {
	Nodes map[string]int `yaml:"nodes"`

	// Cards is looked up by component ID first, then by type. Unlisted
	// components go to card 0.
	Cards map[string]int `yaml:"cards,omitempty"`
}

// DefaultAddressTable maps ground to bus 0 and A..I to busses 1..9.
func DefaultAddressTable() *AddressTable {
	t := &AddressTable{Nodes: map[string]int{"0": 0}, Cards: map[string]int{}}
	for i, n := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		t.Nodes[n] = i + 1
	}
	return t
}

// ParseAddressTable decodes a YAML address table and validates it.
func ParseAddressTable(data []byte) (*AddressTable, error) {
	var t AddressTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("matrix: parse address table: %w", err)
	}
	if t.Cards == nil {
		t.Cards = map[string]int{}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadAddressTable reads a YAML address table from path.
func LoadAddressTable(path string) (*AddressTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("matrix: failed to read address table: %w", err)
	}
	return ParseAddressTable(data)
}

// Validate checks bus ranges and that no two nodes share a bus.
func (t *AddressTable) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("matrix: address table has no nodes")
	}
	used := make(map[int]string, len(t.Nodes))
	for _, node := range t.NodeNames() {
		bus := t.Nodes[node]
		if bus < 0 || bus > MaxBus {
			return fmt.Errorf("matrix: node %s: bus %d out of range 0..%d", node, bus, MaxBus)
		}
		if other, ok := used[bus]; ok {
			return fmt.Errorf("matrix: nodes %s and %s share bus %d", other, node, bus)
		}
		used[bus] = node
	}
	for key, card := range t.Cards {
		if card < 0 || card > 255 {
			return fmt.Errorf("matrix: card %d for %s out of range", card, key)
		}
	}
	return nil
}

// NodeNames returns the mapped nodes in sorted order.
func (t *AddressTable) NodeNames() []string {
	names := make([]string, 0, len(t.Nodes))
	for n := range t.Nodes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bus returns the bus address of node.
func (t *AddressTable) Bus(node string) (int, error) {
	bus, ok := t.Nodes[node]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnmappedNode, node)
	}
	return bus, nil
}

// Card returns the relay card of a component.
func (t *AddressTable) Card(id, typ string) int {
	if card, ok := t.Cards[id]; ok {
		return card
	}
	return t.Cards[typ]
}

// Marshal encodes the table as YAML.
func (t *AddressTable) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
