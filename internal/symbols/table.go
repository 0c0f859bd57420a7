package symbols

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"stackc/internal/types"
)

// Table assigns stable identities to declared members. Declarations happen
// before compilation fans out; afterwards the table is only read.
type Table struct {
	types *types.Interner
	syms  []Symbol
	index map[string]SymbolID
}

// NewTable creates an empty table bound to the type interner.
func NewTable(in *types.Interner) *Table {
	return &Table{
		types: in,
		syms:  make([]Symbol, 1, 64), // reserve 0 as NoSymbolID
		index: make(map[string]SymbolID, 64),
	}
}

// Types returns the interner the table was built over.
func (t *Table) Types() *types.Interner { return t.types }

// Declare registers a member of owner. Names are NFC-normalized so that
// visually identical identifiers share one identity.
func (t *Table) Declare(owner types.TypeID, name string, params []types.TypeID, result types.TypeID, flags Flags) (SymbolID, error) {
	name = norm.NFC.String(name)
	if name == "" {
		return NoSymbolID, fmt.Errorf("symbols: empty member name on %s", t.types.Format(owner))
	}
	key := t.key(owner, name, params)
	if id, ok := t.index[key]; ok {
		return id, fmt.Errorf("symbols: %s already declared", t.QualifiedName(id))
	}
	n, err := safecast.Conv[uint32](len(t.syms))
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbols: table overflow: %w", err)
	}
	id := SymbolID(n)
	t.syms = append(t.syms, Symbol{
		ID:     id,
		Owner:  owner,
		Name:   name,
		Params: append([]types.TypeID(nil), params...),
		Result: result,
		Flags:  flags,
	})
	t.index[key] = id
	return id, nil
}

// Lookup finds the member of owner named name with exactly these parameter types.
func (t *Table) Lookup(owner types.TypeID, name string, params []types.TypeID) (SymbolID, bool) {
	id, ok := t.index[t.key(owner, norm.NFC.String(name), params)]
	return id, ok
}

// Get returns the symbol for id, or nil.
func (t *Table) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.syms) {
		return nil
	}
	return &t.syms[id]
}

// Len reports the number of declared symbols.
func (t *Table) Len() int { return len(t.syms) - 1 }

// QualifiedName renders "Owner.name(P1, P2)".
func (t *Table) QualifiedName(id SymbolID) string {
	sym := t.Get(id)
	if sym == nil {
		return fmt.Sprintf("sym#%d", id)
	}
	var sb strings.Builder
	sb.WriteString(t.types.Format(sym.Owner))
	sb.WriteByte('.')
	sb.WriteString(sym.Name)
	sb.WriteByte('(')
	for i, p := range sym.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.types.Format(p))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (t *Table) key(owner types.TypeID, name string, params []types.TypeID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%s(", owner, name)
	for _, p := range params {
		fmt.Fprintf(&sb, "%d,", p)
	}
	sb.WriteByte(')')
	return sb.String()
}
