package solver

// Symbol is an interned symbolic node name.
type Symbol int

// Interner maps symbolic node names to dense Symbols. One Interner belongs to
// one Solve call.
type Interner struct {
	ids   map[string]Symbol
	names []string
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]Symbol)}
}

// Intern returns the Symbol for name, allocating one on first use.
func (in *Interner) Intern(name string) Symbol {
	if s, ok := in.ids[name]; ok {
		return s
	}
	s := Symbol(len(in.names))
	in.ids[name] = s
	in.names = append(in.names, name)
	return s
}

// Lookup returns the Symbol for name without allocating.
func (in *Interner) Lookup(name string) (Symbol, bool) {
	s, ok := in.ids[name]
	return s, ok
}

// Name returns the text of s.
func (in *Interner) Name(s Symbol) string {
	return in.names[s]
}

// Len returns the number of interned symbols.
func (in *Interner) Len() int {
	return len(in.names)
}
