package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is a source variable and the storage slot backing it.
type Symbol struct {
	Name string
	Slot string // IR name of the slot, e.g. "%x"
}

// SymbolTable is the flat global variable namespace. A name is declared the
// first time it is referenced; there is no scoping and no declaration syntax.
type SymbolTable struct {
	syms map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string]Symbol)}
}

// Declare records name if it has not been seen yet and returns its symbol.
func (s *SymbolTable) Declare(name string) Symbol {
	if sym, ok := s.syms[name]; ok {
		return sym
	}
	sym := Symbol{Name: name, Slot: "%" + name}
	s.syms[name] = sym
	return sym
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.syms[name]
	return sym, ok
}

func (s *SymbolTable) Len() int { return len(s.syms) }

// Names returns every declared name in ascending byte order. This is the order
// slots are declared and zeroed in, so output is stable across runs.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.syms))
	for name := range s.syms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a human-readable dump of the symbol table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Table:\n")
	for _, name := range s.Names() {
		fmt.Fprintf(&sb, "  %-12s -> %s\n", name, s.syms[name].Slot)
	}
	return sb.String()
}
