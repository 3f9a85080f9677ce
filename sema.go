package c99js

// Analyzer is the single AST walk that annotates every expression with
// a type, decays arrays/functions to pointers at use sites, inserts
// implicit cast nodes at assignment/return/argument/initializer sites,
// and diagnoses the fixed set of semantic errors. It implements
// Visitor and embeds BaseVisitor; sema_conv.go overrides every Visitor
// method, so none of BaseVisitor's no-ops is reached.
type Analyzer struct {
	BaseVisitor
	diag  *DiagChannel
	types *TypeRegistry
	syms  *SymbolTable
	arena *Arena

	retType     *Type
	loopDepth   int
	switchStack []*switchCtx

	blockID      int
	labelPaths   map[string][]int
	curBlockPath []int
}

type switchCtx struct {
	seen       map[int64]bool
	sawDefault bool
}

// Analyze runs the semantic pass over a fully parsed program. Errors
// are accumulated on diag; callers check diag.HasErrors() before
// proceeding to code generation.
func Analyze(prog *ProgramNode, diag *DiagChannel, types *TypeRegistry, syms *SymbolTable, arena *Arena) {
	a := &Analyzer{diag: diag, types: types, syms: syms, arena: arena}
	prog.Accept(a)
}

func (a *Analyzer) typeErrorf(rg Range, format string, args ...any) {
	a.diag.Error(DiagTypeError, rg, format, args...)
}

func (a *Analyzer) semErrorf(rg Range, format string, args ...any) {
	a.diag.Error(DiagSemanticError, rg, format, args...)
}

// exprType/setType read and write a node's type slot through the
// TypedNode interface, a no-op for the statement/declaration kinds
// that don't implement it.
func exprType(n Node) *Type {
	if n == nil {
		return nil
	}
	if tn, ok := n.(TypedNode); ok {
		return tn.ExprType()
	}
	return nil
}

func setType(n Node, t *Type) {
	if tn, ok := n.(TypedNode); ok {
		tn.SetType(t)
	}
}

// decay applies array-to-pointer and function-to-pointer conversion,
// the rule applied at every use site except as the operand of `&` or
// `sizeof`.
func (a *Analyzer) decay(t *Type) *Type {
	if t == nil {
		return t
	}
	switch t.Kind {
	case KArray, KVLA:
		return a.types.Pointer(t.Base)
	case KFunction:
		return a.types.Pointer(t)
	}
	return t
}

// valueType is the type of n once used as a value: its raw type with
// decay applied.
func (a *Analyzer) valueType(n Node) *Type {
	return a.decay(exprType(n))
}

// promote applies integer promotion: any integer rank below int
// becomes int, or unsigned int if int cannot represent every value of
// the original type.
func (a *Analyzer) promote(t *Type) *Type {
	if t == nil || !t.IsInteger() {
		return t
	}
	if t.Rank() < TyInt.Rank() {
		return TyInt
	}
	return t
}

// usualArith implements the usual arithmetic conversions over two
// already-decayed operand types.
func (a *Analyzer) usualArith(lt, rt *Type) *Type {
	if lt == nil || rt == nil {
		return TyInt
	}
	if lt.Kind == KLongDouble || rt.Kind == KLongDouble {
		return TyLongDouble
	}
	if lt.Kind == KDouble || rt.Kind == KDouble {
		return TyDouble
	}
	if lt.Kind == KFloat || rt.Kind == KFloat {
		return TyFloat
	}
	pl, pr := a.promote(lt), a.promote(rt)
	if pl.Rank() == pr.Rank() {
		if pl.Signed == pr.Signed {
			return pl
		}
		if pl.Signed {
			return pr
		}
		return pl
	}
	if pl.Rank() > pr.Rank() {
		return pl
	}
	return pr
}

// sameRepr reports whether an implicit cast between a and b would be
// a no-op at the representation level, so coerce can skip inserting
// one.
func sameRepr(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind == KPointer && b.Kind == KPointer {
		return true
	}
	if a.Kind == b.Kind && a.Kind != KStruct && a.Kind != KUnion {
		return a.Signed == b.Signed
	}
	return false
}

// coerce wraps *slot in a CastNode to target if its value type isn't
// already representation-compatible. slot is the address of the
// Node-typed field holding the expression (AssignNode.Rhs,
// ReturnNode.Expr, a CallNode.Args element, ...), rewritten in place.
func (a *Analyzer) coerce(target *Type, slot *Node) {
	if target == nil || *slot == nil {
		return
	}
	t := a.valueType(*slot)
	if sameRepr(target, t) {
		return
	}
	rg := (*slot).Range()
	*slot = &CastNode{exprBase: exprBase{rg: rg, ty: target}, TargetType: target, Expr: *slot}
}

// checkBreakContext/checkContinueContext enforce break/continue
// legality; continue only ever targets a loop, break targets the
// innermost of either.
func (a *Analyzer) checkBreakContext(rg Range) {
	if a.loopDepth == 0 && len(a.switchStack) == 0 {
		a.semErrorf(rg, "'break' statement not in loop or switch")
	}
}

func (a *Analyzer) checkContinueContext(rg Range) {
	if a.loopDepth == 0 {
		a.semErrorf(rg, "'continue' statement not in a loop")
	}
}

// requireScalar diagnoses a non-scalar controlling expression for
// if/while/for/do/ternary.
func (a *Analyzer) requireScalar(n Node, context string) {
	t := a.valueType(n)
	if t != nil && !t.IsScalar() {
		a.typeErrorf(n.Range(), "%s requires a scalar expression, found %s", context, TypeName(t))
	}
}
