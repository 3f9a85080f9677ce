package c99js

// EvalConstInt folds an AST expression to a compile-time integer
// constant, used for array bounds, enum values, bitfield widths, and
// case labels. ok is false if expr is not a constant expression this
// compiler can fold (a runtime value, an unresolved identifier, or an
// operator not valid in a constant context).
func EvalConstInt(expr Node) (value int64, ok bool) {
	switch n := expr.(type) {
	case *IntLitNode:
		return n.Value, true
	case *CharLitNode:
		return n.Value, true
	case *FloatLitNode:
		return int64(n.Value), true

	case *UnaryNode:
		v, ok := EvalConstInt(n.Expr)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case UOPlus:
			return v, true
		case UOMinus:
			return -v, true
		case UONot:
			return b2i(v == 0), true
		case UOBNot:
			return ^v, true
		default:
			return 0, false // &, *, ++, -- are never constant
		}

	case *BinaryNode:
		lv, lok := EvalConstInt(n.Lhs)
		if !lok {
			return 0, false
		}
		// Short-circuit && / || without forcing the other operand to
		// be constant-foldable when it doesn't need to be evaluated.
		if n.Op == BOLAnd && lv == 0 {
			return 0, true
		}
		if n.Op == BOLOr && lv != 0 {
			return 1, true
		}
		rv, rok := EvalConstInt(n.Rhs)
		if !rok {
			return 0, false
		}
		switch n.Op {
		case BOMul:
			return lv * rv, true
		case BODiv:
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case BOMod:
			if rv == 0 {
				return 0, false
			}
			return lv % rv, true
		case BOAdd:
			return lv + rv, true
		case BOSub:
			return lv - rv, true
		case BOShl:
			return lv << uint(rv), true
		case BOShr:
			return lv >> uint(rv), true
		case BOLt:
			return b2i(lv < rv), true
		case BOLe:
			return b2i(lv <= rv), true
		case BOGt:
			return b2i(lv > rv), true
		case BOGe:
			return b2i(lv >= rv), true
		case BOEq:
			return b2i(lv == rv), true
		case BONe:
			return b2i(lv != rv), true
		case BOAnd:
			return lv & rv, true
		case BOXor:
			return lv ^ rv, true
		case BOOr:
			return lv | rv, true
		case BOLAnd:
			return b2i(lv != 0 && rv != 0), true
		case BOLOr:
			return b2i(lv != 0 || rv != 0), true
		}
		return 0, false

	case *TernaryNode:
		cv, ok := EvalConstInt(n.Cond)
		if !ok {
			return 0, false
		}
		if cv != 0 {
			return EvalConstInt(n.Then)
		}
		return EvalConstInt(n.Else)

	case *CastNode:
		v, ok := EvalConstInt(n.Expr)
		if !ok {
			return 0, false
		}
		return truncateToType(v, n.TargetType), true

	case *SizeofTypeNode:
		return int64(n.TargetType.Size), true

	case *SizeofExprNode:
		if t := exprTypeOf(n.Expr); t != nil {
			return int64(t.Size), true
		}
		return 0, false

	case *IdentNode:
		if n.Sym != nil && n.Sym.Kind == SymEnumConst {
			return n.Sym.EnumValue, true
		}
		return 0, false
	}
	return 0, false
}

// exprTypeOf reads the type slot off any expression node, used by
// sizeof when its operand's type was already annotated by an earlier
// pass of the same AST walk.
func exprTypeOf(n Node) *Type {
	if tn, ok := n.(TypedNode); ok {
		return tn.ExprType()
	}
	return nil
}

// truncateToType narrows a folded constant to the width/signedness of
// t, mirroring the narrowing an implicit cast performs at runtime.
func truncateToType(v int64, t *Type) int64 {
	if t == nil {
		return v
	}
	switch t.Size {
	case 1:
		v &= 0xff
		if t.Signed && v&0x80 != 0 {
			v -= 0x100
		}
	case 2:
		v &= 0xffff
		if t.Signed && v&0x8000 != 0 {
			v -= 0x10000
		}
	case 4:
		v &= 0xffffffff
		if t.Signed && v&0x80000000 != 0 {
			v -= 0x100000000
		}
	}
	return v
}
