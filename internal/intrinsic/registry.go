package intrinsic

import (
	"errors"
	"fmt"
	"sort"

	"stackc/internal/symbols"
)

// Entry is one registration.
type Entry struct {
	Symbol symbols.SymbolID
	Method Method
}

// Registry maps callee symbols to intrinsics. It is immutable once built
// and safe for concurrent readers.
type Registry struct {
	methods map[symbols.SymbolID]Method
	entries []Entry
}

// Lookup returns the intrinsic registered for sym, if any.
func (r *Registry) Lookup(sym symbols.SymbolID) (Method, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.methods[sym]
	return m, ok
}

// Entries lists registrations ordered by symbol.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// RegistryBuilder collects registrations for a Registry.
type RegistryBuilder struct {
	methods map[symbols.SymbolID]Method
	errs    []error
}

// NewRegistryBuilder returns an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{methods: make(map[symbols.SymbolID]Method)}
}

// Register binds m to sym. Invalid or duplicate symbols are reported by Build.
func (b *RegistryBuilder) Register(sym symbols.SymbolID, m Method) *RegistryBuilder {
	switch {
	case m == nil:
		b.errs = append(b.errs, fmt.Errorf("symbol %d: nil intrinsic", sym))
	case !sym.IsValid():
		b.errs = append(b.errs, fmt.Errorf("intrinsic %s: invalid symbol", m.Name()))
	default:
		if prev, ok := b.methods[sym]; ok {
			b.errs = append(b.errs, fmt.Errorf("symbol %d: already bound to %s, cannot bind %s", sym, prev.Name(), m.Name()))
			return b
		}
		b.methods[sym] = m
	}
	return b
}

// Build freezes the registrations. The builder must not be reused.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	r := &Registry{
		methods: b.methods,
		entries: make([]Entry, 0, len(b.methods)),
	}
	for sym, m := range b.methods {
		r.entries = append(r.entries, Entry{Symbol: sym, Method: m})
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].Symbol < r.entries[j].Symbol })
	b.methods = nil
	return r, nil
}
