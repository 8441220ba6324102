// Package inventory keeps the named maxlists a bench can be wired as and
// picks the first one a requested circuit fits on.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/netlist"
)

var (
	// ErrNoInventory means the repository holds nothing to try.
	ErrNoInventory = errors.New("inventory: no inventory loaded")

	// ErrNoMatch means no inventory could realize the request.
	ErrNoMatch = errors.New("inventory: circuit cannot be realized with any inventory")
)

// Inventory is one hardware wiring configuration (a maxlist).
type Inventory struct {
	Name       string
	Path       string // source file, empty when built in memory
	Components []component.Component
}

// Clone returns a copy that shares no memory with inv.
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{Name: inv.Name, Path: inv.Path}
	out.Components = make([]component.Component, len(inv.Components))
	for i, c := range inv.Components {
		out.Components[i] = c.Clone()
	}
	return out
}

// Repository yields inventories in the order they should be tried.
type Repository interface {
	Inventories() []*Inventory
	Lookup(name string) (*Inventory, error)
}

// MemoryRepository holds inventories in insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*Inventory
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]*Inventory)}
}

// Add registers inv. Re-adding a name replaces the inventory in place and
// keeps its priority.
func (r *MemoryRepository) Add(inv *Inventory) error {
	if inv == nil || inv.Name == "" {
		return fmt.Errorf("inventory: unnamed inventory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[inv.Name]; !ok {
		r.order = append(r.order, inv.Name)
	}
	r.byName[inv.Name] = inv
	return nil
}

// Remove drops the named inventory and reports whether it was present.
func (r *MemoryRepository) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Replace swaps the whole content for invs, in the given order.
func (r *MemoryRepository) Replace(invs []*Inventory) {
	byName := make(map[string]*Inventory, len(invs))
	order := make([]string, 0, len(invs))
	for _, inv := range invs {
		if _, dup := byName[inv.Name]; !dup {
			order = append(order, inv.Name)
		}
		byName[inv.Name] = inv
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName, r.order = byName, order
}

// Lookup implements the Repository interface.
func (r *MemoryRepository) Lookup(name string) (*Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if inv, ok := r.byName[name]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("inventory: no maxlist named %q", name)
}

// Inventories implements the Repository interface.
func (r *MemoryRepository) Inventories() []*Inventory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Inventory, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of inventories.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// LoadFiles parses the provided file paths and adds each inventory in order.
func (r *MemoryRepository) LoadFiles(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	parser, err := netlist.NewParser()
	if err != nil {
		return err
	}
	for _, path := range paths {
		inv, err := loadFile(parser, path)
		if err != nil {
			return err
		}
		if err := r.Add(inv); err != nil {
			return fmt.Errorf("inventory: add %s: %w", path, err)
		}
	}
	return nil
}

// LoadDir recursively loads every maxlist file under root, in lexical path
// order.
func (r *MemoryRepository) LoadDir(root string) error {
	invs, err := ReadDir(root)
	if err != nil {
		return err
	}
	for _, inv := range invs {
		if err := r.Add(inv); err != nil {
			return fmt.Errorf("inventory: add %s: %w", inv.Path, err)
		}
	}
	return nil
}

// ReadDir parses every maxlist file under root without touching a
// repository.
func ReadDir(root string) ([]*Inventory, error) {
	parser, err := netlist.NewParser()
	if err != nil {
		return nil, err
	}
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsInventoryFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	invs := make([]*Inventory, 0, len(paths))
	for _, path := range paths {
		inv, err := loadFile(parser, path)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, nil
}

func loadFile(parser *netlist.Parser, path string) (*Inventory, error) {
	if strings.EqualFold(filepath.Ext(path), ".sexp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("inventory: open %s: %w", path, err)
		}
		defer f.Close()
		name, comps, err := netlist.DecodeSexp(f)
		if err != nil {
			return nil, fmt.Errorf("inventory: parse %s: %w", path, err)
		}
		return &Inventory{Name: name, Path: path, Components: comps}, nil
	}

	comps, err := parser.ComponentsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: parse %s: %w", path, err)
	}
	base := filepath.Base(path)
	return &Inventory{
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		Path:       path,
		Components: comps,
	}, nil
}

// IsInventoryFile reports whether path has a maxlist extension.
func IsInventoryFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".max", ".maxlist", ".cir", ".txt", ".sexp":
		return true
	default:
		return false
	}
}
