package c99js

// Arena is a bump-allocated owner of every parse/type/symbol datum
// created during one compilation. Nothing allocated through an Arena
// is ever individually freed; the whole arena is dropped when
// Compile (see api.go), which creates it, returns. This keeps the
// compiler's own memory management trivial, and keeps the compiler's
// data model entirely separate from the compiled program's data model
// (which lives in the runtime's linear memory, not in any Go heap
// value).
type Arena struct {
	types   []*Type
	symbols []*Symbol
	scopes  []*Scope
	nodes   []Node
}

// NewArena returns an empty arena ready to hand out types, symbols,
// scopes and AST nodes for a single compilation.
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) newType(t *Type) *Type {
	a.types = append(a.types, t)
	return t
}

func (a *Arena) newSymbol(s *Symbol) *Symbol {
	a.symbols = append(a.symbols, s)
	return s
}

func (a *Arena) newScope(s *Scope) *Scope {
	a.scopes = append(a.scopes, s)
	return s
}

// track records a node so the arena can report how much was allocated;
// AST nodes are otherwise plain Go values owned by their parent's
// child slots, never individually freed.
func (a *Arena) track(n Node) {
	a.nodes = append(a.nodes, n)
}

// Stats returns counts useful for diagnostics and tests, never for
// control flow.
func (a *Arena) Stats() (types, symbols, scopes, nodes int) {
	return len(a.types), len(a.symbols), len(a.scopes), len(a.nodes)
}
