package c99js

// This file holds every Visitor method for Analyzer: expression typing
// and implicit-conversion insertion, statement-level control-flow
// checks, and declaration handling (including initializer checking
// against a target type).

// --- literals ---

func (a *Analyzer) VisitIntLit(n *IntLitNode) error {
	pick := func(signed, unsigned *Type) *Type {
		if n.Unsigned {
			return unsigned
		}
		return signed
	}
	var ty *Type
	switch {
	case n.LongBits >= 2:
		ty = pick(TyLongLong, TyULongLong)
	case n.LongBits == 1:
		ty = pick(TyLong, TyULong)
	case n.Unsigned:
		ty = TyUInt
	case n.Value > 0x7fffffff || n.Value < -0x80000000:
		ty = TyLong
	default:
		ty = TyInt
	}
	n.SetType(ty)
	return nil
}

func (a *Analyzer) VisitFloatLit(n *FloatLitNode) error {
	switch {
	case n.IsFloat:
		n.SetType(TyFloat)
	case n.IsLongDbl:
		n.SetType(TyLongDouble)
	default:
		n.SetType(TyDouble)
	}
	return nil
}

func (a *Analyzer) VisitCharLit(n *CharLitNode) error {
	if n.Wide {
		n.SetType(TyInt)
	} else {
		n.SetType(TyChar)
	}
	return nil
}

func (a *Analyzer) VisitStringLit(n *StringLitNode) error {
	elem := TyChar
	n.SetType(a.types.Array(elem, len(n.Value)+1))
	return nil
}

// --- identifiers & operators ---

func (a *Analyzer) VisitIdent(n *IdentNode) error {
	sym, ok := a.syms.Lookup(n.Name)
	if !ok {
		a.semErrorf(n.Range(), "use of undeclared identifier %q", n.Name)
		n.SetType(TyInt)
		return nil
	}
	n.Sym = sym
	if sym.Kind == SymEnumConst {
		n.SetType(TyInt)
		return nil
	}
	n.SetType(sym.Type)
	return nil
}

func (a *Analyzer) VisitUnary(n *UnaryNode) error {
	n.Expr.Accept(a)
	switch n.Op {
	case UOPreInc, UOPreDec:
		n.SetType(a.valueType(n.Expr))
	case UOAddr:
		n.SetType(a.types.Pointer(exprType(n.Expr)))
	case UODeref:
		t := a.valueType(n.Expr)
		if t == nil || t.Kind != KPointer {
			a.typeErrorf(n.Range(), "indirection requires a pointer operand")
			n.SetType(TyInt)
		} else {
			n.SetType(t.Base)
		}
	case UOPlus, UOMinus, UOBNot:
		n.SetType(a.promote(a.valueType(n.Expr)))
	case UONot:
		a.requireScalar(n.Expr, "logical negation")
		n.SetType(TyInt)
	}
	return nil
}

func (a *Analyzer) VisitPostfix(n *PostfixNode) error {
	n.Expr.Accept(a)
	n.SetType(a.valueType(n.Expr))
	return nil
}

func (a *Analyzer) VisitBinary(n *BinaryNode) error {
	n.Lhs.Accept(a)
	n.Rhs.Accept(a)
	lt := a.valueType(n.Lhs)
	rt := a.valueType(n.Rhs)
	switch n.Op {
	case BOLAnd, BOLOr:
		a.requireScalar(n.Lhs, "logical operator")
		a.requireScalar(n.Rhs, "logical operator")
		n.SetType(TyInt)
	case BOEq, BONe, BOLt, BOLe, BOGt, BOGe:
		n.SetType(TyInt)
	case BOAdd:
		switch {
		case lt != nil && lt.Kind == KPointer && rt != nil && rt.IsInteger():
			n.SetType(lt)
		case rt != nil && rt.Kind == KPointer && lt != nil && lt.IsInteger():
			n.SetType(rt)
		default:
			n.SetType(a.usualArith(lt, rt))
		}
	case BOSub:
		switch {
		case lt != nil && lt.Kind == KPointer && rt != nil && rt.Kind == KPointer:
			n.SetType(TyLong)
		case lt != nil && lt.Kind == KPointer && rt != nil && rt.IsInteger():
			n.SetType(lt)
		default:
			n.SetType(a.usualArith(lt, rt))
		}
	case BOShl, BOShr:
		n.SetType(a.promote(lt))
	case BOAnd, BOXor, BOOr:
		if (lt != nil && !lt.IsInteger()) || (rt != nil && !rt.IsInteger()) {
			a.typeErrorf(n.Range(), "bitwise operator requires integer operands")
		}
		n.SetType(a.usualArith(lt, rt))
	default: // BOMul, BODiv, BOMod
		n.SetType(a.usualArith(lt, rt))
	}
	return nil
}

func (a *Analyzer) VisitAssign(n *AssignNode) error {
	n.Lhs.Accept(a)
	n.Rhs.Accept(a)
	lt := exprType(n.Lhs)
	if n.Op == AOAssign {
		a.coerce(lt, &n.Rhs)
	} else {
		rt := a.usualArith(a.valueType(n.Lhs), a.valueType(n.Rhs))
		setType(n.Rhs, rt) // the compound op's arithmetic result, before converting back to lt
		a.coerce(lt, &n.Rhs)
	}
	n.SetType(lt)
	return nil
}

func (a *Analyzer) VisitTernary(n *TernaryNode) error {
	n.Cond.Accept(a)
	n.Then.Accept(a)
	n.Else.Accept(a)
	a.requireScalar(n.Cond, "ternary condition")
	tt, et := a.valueType(n.Then), a.valueType(n.Else)
	if tt != nil && tt.IsArithmetic() && et != nil && et.IsArithmetic() {
		n.SetType(a.usualArith(tt, et))
	} else if tt != nil {
		n.SetType(tt)
	} else {
		n.SetType(et)
	}
	return nil
}

func (a *Analyzer) VisitComma(n *CommaNode) error {
	for _, it := range n.Items {
		it.Accept(a)
	}
	if len(n.Items) > 0 {
		n.SetType(exprType(n.Items[len(n.Items)-1]))
	}
	return nil
}

func (a *Analyzer) VisitCall(n *CallNode) error {
	n.Callee.Accept(a)
	for _, arg := range n.Args {
		arg.Accept(a)
	}
	ft := exprType(n.Callee)
	if ft != nil && ft.Kind == KPointer && ft.Base != nil && ft.Base.Kind == KFunction {
		ft = ft.Base
	}
	if ft == nil || ft.Kind != KFunction {
		a.typeErrorf(n.Callee.Range(), "called object is not a function")
		n.SetType(TyInt)
		return nil
	}
	for i := range n.Args {
		if i < len(ft.Params) {
			a.coerce(ft.Params[i].Type, &n.Args[i])
			continue
		}
		t := a.valueType(n.Args[i])
		if t != nil && t.Kind == KFloat {
			a.coerce(TyDouble, &n.Args[i])
		} else if t != nil && t.IsInteger() {
			a.coerce(a.promote(t), &n.Args[i])
		}
	}
	if len(n.Args) < len(ft.Params) {
		a.semErrorf(n.Range(), "too few arguments to call")
	}
	if !ft.Variadic && len(n.Args) > len(ft.Params) {
		a.semErrorf(n.Range(), "too many arguments to call")
	}
	n.SetType(ft.Return)
	return nil
}

func (a *Analyzer) VisitMember(n *MemberNode) error {
	n.Target.Accept(a)
	base := exprType(n.Target)
	if n.Arrow {
		base = a.decay(base)
		if base == nil || base.Kind != KPointer {
			a.typeErrorf(n.Range(), "member reference type is not a pointer")
			n.SetType(TyInt)
			return nil
		}
		base = base.Base
	}
	if base == nil || (base.Kind != KStruct && base.Kind != KUnion) {
		a.typeErrorf(n.Range(), "member reference base type is not a struct or union")
		n.SetType(TyInt)
		return nil
	}
	m, ok := base.FindMember(n.Name)
	if !ok {
		a.typeErrorf(n.Range(), "no member named %q", n.Name)
		n.SetType(TyInt)
		return nil
	}
	n.Member = m
	n.SetType(m.Type)
	return nil
}

func (a *Analyzer) VisitSubscript(n *SubscriptNode) error {
	n.Base.Accept(a)
	n.Index.Accept(a)
	bt := a.valueType(n.Base)
	it := a.valueType(n.Index)
	if it == nil || !it.IsInteger() {
		a.typeErrorf(n.Index.Range(), "array subscript is not an integer")
	}
	if bt == nil || bt.Kind != KPointer {
		a.typeErrorf(n.Range(), "subscripted value is not an array or pointer")
		n.SetType(TyInt)
		return nil
	}
	n.SetType(bt.Base)
	return nil
}

func (a *Analyzer) VisitCast(n *CastNode) error {
	n.Expr.Accept(a)
	n.SetType(n.TargetType)
	return nil
}

func (a *Analyzer) VisitSizeofExpr(n *SizeofExprNode) error {
	n.Expr.Accept(a)
	n.SetType(TyULong)
	return nil
}

func (a *Analyzer) VisitSizeofType(n *SizeofTypeNode) error {
	n.SetType(TyULong)
	return nil
}

func (a *Analyzer) VisitCompoundLiteral(n *CompoundLiteralNode) error {
	var initNode Node = n.Init
	a.checkInitializer(n.TargetType, &initNode)
	n.Init = initNode.(*InitListNode)
	n.SetType(n.TargetType)
	return nil
}

func (a *Analyzer) VisitInitList(n *InitListNode) error {
	for _, it := range n.Items {
		it.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitDesignator(n *DesignatorNode) error {
	if n.Index != nil {
		n.Index.Accept(a)
	}
	n.Value.Accept(a)
	n.SetType(exprType(n.Value))
	return nil
}

// checkInitializer recursively type-checks an initializer against
// target, descending into array elements / struct-union members for a
// brace-enclosed InitListNode and inserting an implicit cast for a
// plain scalar initializer. slot is rewritten in place when a cast is
// inserted, exactly like coerce.
func (a *Analyzer) checkInitializer(target *Type, slot *Node) {
	if target == nil || *slot == nil {
		return
	}
	if sl, ok := (*slot).(*StringLitNode); ok && target.Kind == KArray && target.Base.Kind == KChar {
		sl.Accept(a)
		if target.ArrayLen < 0 {
			target.ArrayLen = len(sl.Value) + 1
			target.Size = target.Base.Size * target.ArrayLen
		}
		return
	}
	list, ok := (*slot).(*InitListNode)
	if !ok {
		(*slot).Accept(a)
		a.coerce(target, slot)
		return
	}
	switch target.Kind {
	case KArray:
		idx := 0
		for i := range list.Items {
			item := &list.Items[i]
			if d, ok := (*item).(*DesignatorNode); ok && d.Field == "" {
				if d.Index != nil {
					d.Index.Accept(a)
					if v, ok2 := EvalConstInt(d.Index); ok2 {
						idx = int(v)
					}
				}
				a.checkInitializer(target.Base, &d.Value)
				setType(d, target.Base)
				idx++
				continue
			}
			a.checkInitializer(target.Base, item)
			idx++
		}
		if target.ArrayLen < 0 {
			target.ArrayLen = idx
			target.Size = target.Base.Size * idx
		}
	case KStruct, KUnion:
		mi := 0
		for i := range list.Items {
			item := &list.Items[i]
			if d, ok := (*item).(*DesignatorNode); ok && d.Field != "" {
				if m, ok2 := target.FindMember(d.Field); ok2 {
					a.checkInitializer(m.Type, &d.Value)
					setType(d, m.Type)
				} else {
					a.typeErrorf(d.Range(), "no member named %q", d.Field)
				}
				continue
			}
			if mi < len(target.Members) {
				a.checkInitializer(target.Members[mi].Type, item)
				mi++
			}
			if target.Kind == KUnion {
				break // only the first member of a union initializer is meaningful
			}
		}
	default:
		if len(list.Items) > 0 {
			a.checkInitializer(target, &list.Items[0])
		}
	}
	setType(list, target)
}

// --- statements ---

func (a *Analyzer) VisitBlock(n *BlockNode) error {
	if n.scope != nil {
		prev := a.syms.CurrentScope()
		a.syms.EnterExistingScope(n.scope)
		defer a.syms.EnterExistingScope(prev)
	}
	a.blockID++
	myID := a.blockID
	a.curBlockPath = append(a.curBlockPath, myID)
	for _, it := range n.Items {
		if it != nil {
			it.Accept(a)
		}
	}
	a.curBlockPath = a.curBlockPath[:len(a.curBlockPath)-1]
	return nil
}

func (a *Analyzer) VisitExprStmt(n *ExprStmtNode) error {
	n.Expr.Accept(a)
	return nil
}

func (a *Analyzer) VisitIf(n *IfNode) error {
	n.Cond.Accept(a)
	a.requireScalar(n.Cond, "if condition")
	n.Then.Accept(a)
	if n.Else != nil {
		n.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitSwitch(n *SwitchNode) error {
	n.Expr.Accept(a)
	t := a.valueType(n.Expr)
	if t != nil && !t.IsInteger() {
		a.typeErrorf(n.Expr.Range(), "switch expression must have integer type")
	}
	a.switchStack = append(a.switchStack, &switchCtx{seen: map[int64]bool{}})
	n.Body.Accept(a)
	a.switchStack = a.switchStack[:len(a.switchStack)-1]
	return nil
}

func (a *Analyzer) VisitCase(n *CaseNode) error {
	n.Value.Accept(a)
	if len(a.switchStack) == 0 {
		a.semErrorf(n.Range(), "'case' statement not in a switch")
	} else {
		v, ok := EvalConstInt(n.Value)
		if !ok {
			a.typeErrorf(n.Value.Range(), "case label does not reduce to an integer constant")
		} else {
			ctx := a.switchStack[len(a.switchStack)-1]
			if ctx.seen[v] {
				a.semErrorf(n.Range(), "duplicate case value")
			}
			ctx.seen[v] = true
		}
	}
	n.Stmt.Accept(a)
	return nil
}

func (a *Analyzer) VisitDefault(n *DefaultNode) error {
	if len(a.switchStack) == 0 {
		a.semErrorf(n.Range(), "'default' statement not in a switch")
	} else {
		ctx := a.switchStack[len(a.switchStack)-1]
		if ctx.sawDefault {
			a.semErrorf(n.Range(), "multiple default labels in one switch")
		}
		ctx.sawDefault = true
	}
	n.Stmt.Accept(a)
	return nil
}

func (a *Analyzer) VisitWhile(n *WhileNode) error {
	n.Cond.Accept(a)
	a.requireScalar(n.Cond, "while condition")
	a.loopDepth++
	n.Body.Accept(a)
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitDoWhile(n *DoWhileNode) error {
	a.loopDepth++
	n.Body.Accept(a)
	a.loopDepth--
	n.Cond.Accept(a)
	a.requireScalar(n.Cond, "do/while condition")
	return nil
}

func (a *Analyzer) VisitFor(n *ForNode) error {
	if n.scope != nil {
		prev := a.syms.CurrentScope()
		a.syms.EnterExistingScope(n.scope)
		defer a.syms.EnterExistingScope(prev)
	}
	if n.Init != nil {
		n.Init.Accept(a)
	}
	if n.Cond != nil {
		n.Cond.Accept(a)
		a.requireScalar(n.Cond, "for condition")
	}
	if n.Post != nil {
		n.Post.Accept(a)
	}
	a.loopDepth++
	n.Body.Accept(a)
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitGoto(n *GotoNode) error {
	path, ok := a.labelPaths[n.Label]
	if !ok {
		a.semErrorf(n.Range(), "use of undeclared label %q", n.Label)
		return nil
	}
	if !isPrefixPath(path, a.curBlockPath) {
		a.semErrorf(n.Range(), "goto %q crosses into an unrelated block; only jumps to an enclosing or the same block are supported", n.Label)
	}
	return nil
}

func (a *Analyzer) VisitLabel(n *LabelNode) error {
	n.Stmt.Accept(a)
	return nil
}

func (a *Analyzer) VisitContinue(n *ContinueNode) error {
	a.checkContinueContext(n.Range())
	return nil
}

func (a *Analyzer) VisitBreak(n *BreakNode) error {
	a.checkBreakContext(n.Range())
	return nil
}

func (a *Analyzer) VisitReturn(n *ReturnNode) error {
	if n.Expr != nil {
		n.Expr.Accept(a)
		a.coerce(a.retType, &n.Expr)
	}
	return nil
}

func (a *Analyzer) VisitNullStmt(*NullStmtNode) error { return nil }

// isPrefixPath reports whether label is an ancestor-or-same block
// path relative to use, the constraint the restricted-goto-as-
// labeled-break lowering strategy requires.
func isPrefixPath(label, use []int) bool {
	if len(label) > len(use) {
		return false
	}
	for i, v := range label {
		if use[i] != v {
			return false
		}
	}
	return true
}

// --- declarations ---

func (a *Analyzer) VisitVarDecl(n *VarDeclNode) error {
	if n.Init != nil {
		a.checkInitializer(n.Type, &n.Init)
	}
	return nil
}

func (a *Analyzer) VisitFuncDecl(n *FuncDeclNode) error {
	if n.Body == nil {
		return nil
	}
	prevRet := a.retType
	a.retType = n.Type.Return
	a.labelPaths = collectLabelPaths(n.Body)
	a.blockID = 0
	a.curBlockPath = nil

	if n.scope != nil {
		prevScope := a.syms.CurrentScope()
		a.syms.EnterExistingScope(n.scope)
		defer a.syms.EnterExistingScope(prevScope)
	}
	a.blockID++
	a.curBlockPath = append(a.curBlockPath, a.blockID)
	for _, it := range n.Body.Items {
		if it != nil {
			it.Accept(a)
		}
	}
	a.curBlockPath = nil

	a.retType = prevRet
	return nil
}

func (a *Analyzer) VisitTypedefDecl(*TypedefDeclNode) error { return nil }
func (a *Analyzer) VisitTagDecl(*TagDeclNode) error         { return nil }

func (a *Analyzer) VisitDeclGroup(n *DeclGroupNode) error {
	for _, d := range n.Decls {
		d.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitProgram(n *ProgramNode) error {
	for _, d := range n.Decls {
		if d != nil {
			d.Accept(a)
		}
	}
	return nil
}

// collectLabelPaths walks a function body assigning the same
// block-id-path scheme VisitBlock/VisitFuncDecl use, recording where
// each label sits so VisitGoto can check the restricted-goto
// constraint before the main walk reaches the label itself.
func collectLabelPaths(body *BlockNode) map[string][]int {
	out := map[string][]int{}
	id := 0
	var walkBlock func(*BlockNode, []int)
	var walk func(Node, []int)
	walkBlock = func(b *BlockNode, path []int) {
		for _, it := range b.Items {
			walk(it, path)
		}
	}
	walk = func(n Node, path []int) {
		switch x := n.(type) {
		case *BlockNode:
			id++
			newPath := append(append([]int{}, path...), id)
			walkBlock(x, newPath)
		case *LabelNode:
			out[x.Name] = append([]int{}, path...)
			walk(x.Stmt, path)
		case *IfNode:
			walk(x.Then, path)
			if x.Else != nil {
				walk(x.Else, path)
			}
		case *SwitchNode:
			walk(x.Body, path)
		case *CaseNode:
			walk(x.Stmt, path)
		case *DefaultNode:
			walk(x.Stmt, path)
		case *WhileNode:
			walk(x.Body, path)
		case *DoWhileNode:
			walk(x.Body, path)
		case *ForNode:
			walk(x.Body, path)
		}
	}
	id++
	walkBlock(body, []int{id})
	return out
}
