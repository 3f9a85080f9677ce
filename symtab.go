package c99js

// SymbolKind distinguishes what an identifier binding denotes.
type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymFunc
	SymTypedef
	SymEnumConst
	SymParam
)

// StorageClass is the C99 storage-class specifier attached to a
// declaration.
type StorageClass int

const (
	SCNone StorageClass = iota
	SCAuto
	SCRegister
	SCStatic
	SCExtern
	SCTypedef
)

// Symbol is one identifier binding: a variable, function, typedef
// name, enum constant, or parameter.
type Symbol struct {
	Name         string
	Kind         SymbolKind
	Type         *Type
	Storage      StorageClass
	Defined      bool // vs. merely declared
	Local        bool
	EnumValue    int64 // valid when Kind == SymEnumConst
	DeclSpan     Span

	// Address bookkeeping filled in by the code generator (see
	// codegen_decl.go): a global byte offset, or a local frame
	// offset relative to the stack-frame base pointer.
	GlobalAddr  int
	HasGlobal   bool
	LocalOffset int
	HasLocal    bool
	FuncPtrID   int
	HasFuncPtr  bool
}

// Scope is one lexical block: an identifier map, a parallel
// struct/union/enum tag map, an optional label list (function scope
// only), a parent pointer, and a depth.
type Scope struct {
	parent      *Scope
	depth       int
	isFuncScope bool

	idents map[string]*Symbol
	tags   map[string]*Type
	labels map[string]bool // declared via `label:` within this function

	// pendingGotos records forward-gotos seen before the label
	// that is their target has been declared (see UnresolvedGotos).
	// The semantic analyzer does not read it: sema_conv.go diagnoses
	// undeclared labels from its own collectLabelPaths map.
	pendingGotos []pendingGoto
}

type pendingGoto struct {
	label string
	span  Span
}

// SymbolTable is the stack of lexical scopes a single compilation
// walks through. Owned by the parser, read-only for the semantic
// analyzer.
type SymbolTable struct {
	arena   *Arena
	current *Scope
}

func NewSymbolTable(arena *Arena) *SymbolTable {
	st := &SymbolTable{arena: arena}
	st.current = st.pushRaw(nil, false)
	return st
}

func (st *SymbolTable) pushRaw(parent *Scope, isFunc bool) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	s := &Scope{
		parent: parent, depth: depth, isFuncScope: isFunc,
		idents: map[string]*Symbol{}, tags: map[string]*Type{},
		labels: map[string]bool{},
	}
	return st.arena.newScope(s)
}

// EnterScope pushes a new lexical block.
func (st *SymbolTable) EnterScope() {
	st.current = st.pushRaw(st.current, false)
}

// EnterFunctionScope pushes a new scope marked as a function scope,
// used to locate the enclosing function when resolving goto labels.
func (st *SymbolTable) EnterFunctionScope() {
	st.current = st.pushRaw(st.current, true)
}

// EnterExistingScope makes s the current scope without creating a new
// one, used by the semantic analyzer to re-enter the exact *Scope the
// parser built for a block/function, so name lookups see the same
// bindings the parser recorded.
func (st *SymbolTable) EnterExistingScope(s *Scope) {
	st.current = s
}

// LeaveScope pops the current scope. Gotos left pending at
// function-scope exit are not reported here; undeclared labels are
// diagnosed by the semantic analyzer (sema_conv.go VisitGoto).
func (st *SymbolTable) LeaveScope() {
	st.current = st.current.parent
}

func (st *SymbolTable) CurrentScope() *Scope { return st.current }

func (st *SymbolTable) AtFileScope() bool { return st.current.parent == nil }

// Declare binds name to sym in the current scope, returning the
// previous binding (if any) so the caller can diagnose illegal
// redeclarations.
func (st *SymbolTable) Declare(name string, sym *Symbol) *Symbol {
	prev := st.current.idents[name]
	st.current.idents[name] = sym
	return prev
}

// Lookup searches the scope chain from innermost to outermost.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for s := st.current; s != nil; s = s.parent {
		if sym, ok := s.idents[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent searches only the innermost scope, for redeclaration
// checks.
func (st *SymbolTable) LookupCurrent(name string) (*Symbol, bool) {
	sym, ok := st.current.idents[name]
	return sym, ok
}

// IsTypedefName is the query the parser uses on every identifier that
// could begin a type:
// a match as a typedef binding makes the identifier a type specifier.
func (st *SymbolTable) IsTypedefName(name string) bool {
	sym, ok := st.Lookup(name)
	return ok && sym.Kind == SymTypedef
}

// DeclareTag binds a struct/union/enum tag in the current scope's tag
// namespace.
func (st *SymbolTable) DeclareTag(name string, t *Type) {
	st.current.tags[name] = t
}

// LookupTag searches the scope chain for a tag binding.
func (st *SymbolTable) LookupTag(name string) (*Type, bool) {
	for s := st.current; s != nil; s = s.parent {
		if t, ok := s.tags[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// LookupTagCurrent searches only the innermost scope.
func (st *SymbolTable) LookupTagCurrent(name string) (*Type, bool) {
	t, ok := st.current.tags[name]
	return t, ok
}

// enclosingFunctionScope walks up to the nearest function scope, used
// by goto/label bookkeeping.
func (s *Scope) enclosingFunctionScope() *Scope {
	for c := s; c != nil; c = c.parent {
		if c.isFuncScope {
			return c
		}
	}
	return nil
}

// DeclareLabel records that `name:` was seen within the current
// function.
func (st *SymbolTable) DeclareLabel(name string) {
	fs := st.current.enclosingFunctionScope()
	if fs == nil {
		return
	}
	fs.labels[name] = true
}

// HasLabel reports whether `name:` has been declared anywhere in the
// enclosing function.
func (st *SymbolTable) HasLabel(name string) bool {
	fs := st.current.enclosingFunctionScope()
	if fs == nil {
		return false
	}
	return fs.labels[name]
}

// RecordPendingGoto notes a goto to a label not yet (or never)
// declared in the enclosing function, for end-of-function reporting.
func (st *SymbolTable) RecordPendingGoto(label string, span Span) {
	fs := st.current.enclosingFunctionScope()
	if fs == nil {
		return
	}
	fs.pendingGotos = append(fs.pendingGotos, pendingGoto{label: label, span: span})
}

// UnresolvedGotos returns the gotos recorded against the function
// scope that never got a matching label, called once the function
// body has been fully walked.
func (fs *Scope) UnresolvedGotos() []pendingGoto {
	var out []pendingGoto
	for _, g := range fs.pendingGotos {
		if !fs.labels[g.label] {
			out = append(out, g)
		}
	}
	return out
}
