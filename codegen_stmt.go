package c99js

import "fmt"

// This file holds every statement-kind Visitor method of Generator.
// Unlike the expression methods (which hand text back through
// g.exprResult/g.expr), statement methods append directly to g.out --
// a statement can contain an arbitrary number of nested lines, so
// there is nothing useful a single return string would buy.
//
// `break`/`continue` translate straight to JS break/continue: JS gives
// both the same "nearest enclosing loop, except break also stops at a
// switch" targeting rule C does, so no label bookkeeping is needed for
// either. Only `goto` needs one, since it can jump out of arbitrarily
// nested constructs to a point later in an enclosing block -- the
// restricted-goto-as-labeled-break transform below covers exactly
// that case and nothing else (anything wider was already rejected at
// analysis time).

func (g *Generator) VisitBlock(n *BlockNode) error {
	g.out.writeil("{")
	g.out.indent()
	g.emitItemsWithLabels(n.Items)
	g.out.unindent()
	g.out.writeil("}")
	return nil
}

// emitItemsWithLabels walks a flat statement list, splitting it at the
// first LabelNode it finds: everything strictly before the label is
// wrapped in a JS labeled block (`L$n: { ... }`) so that any `goto
// label;` inside it -- however deeply nested -- can reach the label by
// breaking out of that block, and then the label's own statement and
// everything after it is emitted unconditionally, with the same
// splitting applied recursively for any further labels.
func (g *Generator) emitItemsWithLabels(items []Node) {
	for i, it := range items {
		lbl, ok := it.(*LabelNode)
		if !ok {
			continue
		}
		jsLabel := g.labelFor(lbl.Name)
		if i > 0 {
			g.out.writei(jsLabel)
			g.out.writel(": {")
			g.out.indent()
			g.emitItemsWithLabels(items[:i])
			g.out.unindent()
			g.out.writeil("}")
		}
		rest := make([]Node, 0, len(items)-i)
		rest = append(rest, lbl.Stmt)
		rest = append(rest, items[i+1:]...)
		g.emitItemsWithLabels(rest)
		return
	}
	for _, it := range items {
		it.Accept(g)
	}
}

// emitAsBlock renders n, a statement or statement-like body, as a JS
// block whether or not it already is one, so every control construct
// emits a uniformly brace-delimited body.
func (g *Generator) emitAsBlock(n Node) {
	if n == nil {
		g.out.writel(" {}")
		return
	}
	if _, ok := n.(*BlockNode); ok {
		g.out.write(" ")
		n.Accept(g)
		return
	}
	g.out.writel(" {")
	g.out.indent()
	n.Accept(g)
	g.out.unindent()
	g.out.writeil("}")
}

func (g *Generator) VisitExprStmt(n *ExprStmtNode) error {
	if n.Expr == nil {
		return nil
	}
	g.out.writeil(g.expr(n.Expr) + ";")
	return nil
}

func (g *Generator) VisitNullStmt(*NullStmtNode) error {
	return nil
}

func (g *Generator) VisitIf(n *IfNode) error {
	g.out.writei("if (")
	g.out.write(g.expr(n.Cond))
	g.out.write(")")
	g.emitAsBlock(n.Then)
	if n.Else != nil {
		g.out.writei("else")
		g.emitAsBlock(n.Else)
	}
	return nil
}

func (g *Generator) VisitWhile(n *WhileNode) error {
	g.out.writei("while (")
	g.out.write(g.expr(n.Cond))
	g.out.write(")")
	g.emitAsBlock(n.Body)
	return nil
}

func (g *Generator) VisitDoWhile(n *DoWhileNode) error {
	g.out.writei("do")
	g.emitAsBlock(n.Body)
	g.out.writei("while (")
	g.out.write(g.expr(n.Cond))
	g.out.writel(");")
	return nil
}

// VisitFor hoists the init-clause as a plain statement ahead of the
// loop rather than into the JS for-head: every C local already lives
// in frame memory addressed by a compile-time offset, so there is no
// JS lexical binding for a per-iteration `let` to shadow, and hoisting
// keeps init, cond and post each rendered by the same single code path
// (VarDeclNode/DeclGroupNode/ExprStmtNode's own Visit method) used
// everywhere else.
func (g *Generator) VisitFor(n *ForNode) error {
	if n.Init != nil {
		n.Init.Accept(g)
	}
	g.out.writei("for (; ")
	if n.Cond != nil {
		g.out.write(g.expr(n.Cond))
	} else {
		g.out.write("true")
	}
	g.out.write("; ")
	if n.Post != nil {
		g.out.write(g.expr(n.Post))
	}
	g.out.write(")")
	g.emitAsBlock(n.Body)
	return nil
}

func (g *Generator) VisitContinue(*ContinueNode) error {
	g.out.writeil("continue;")
	return nil
}

func (g *Generator) VisitBreak(*BreakNode) error {
	g.out.writeil("break;")
	return nil
}

func (g *Generator) VisitGoto(n *GotoNode) error {
	g.out.writeil("break " + g.labelFor(n.Label) + ";")
	return nil
}

func (g *Generator) VisitLabel(n *LabelNode) error {
	// Reached only when a label has no statements before it in its
	// block (emitItemsWithLabels skips straight to n.Stmt otherwise);
	// the label itself carries no code, just its target statement.
	n.Stmt.Accept(g)
	return nil
}

func (g *Generator) VisitReturn(n *ReturnNode) error {
	retType := TyVoid
	if g.curFunc != nil && g.curFunc.Type != nil {
		retType = g.curFunc.Type.Return
	}
	switch {
	case g.curRetParam != "":
		if n.Expr != nil {
			src := g.addressOf(n.Expr)
			size := 0
			if retType != nil {
				size = retType.Size
			}
			g.out.writeil(fmt.Sprintf("rt.mem.memcpy(%s, %s, %d);", g.curRetParam, src, size))
		}
		g.out.writeil("rt.mem.sp = __sp0;")
		g.out.writeil(fmt.Sprintf("return %s;", g.curRetParam))
	case n.Expr != nil:
		val := toRepr(g.expr(n.Expr), exprType(n.Expr), repr(retType))
		g.out.writeil("rt.mem.sp = __sp0;")
		g.out.writeil(fmt.Sprintf("return %s;", val))
	default:
		g.out.writeil("rt.mem.sp = __sp0;")
		g.out.writeil("return;")
	}
	return nil
}

// --- switch / case / default ---

func (g *Generator) VisitSwitch(n *SwitchNode) error {
	g.out.writei("switch (")
	g.out.write(g.expr(n.Expr))
	g.out.writel(") {")
	g.out.indent()
	g.emitSwitchBody(n.Body)
	g.out.unindent()
	g.out.writeil("}")
	return nil
}

// emitSwitchBody flattens a switch body into a flat JS switch: nested
// blocks are inlined, and each case/default label is rendered as its
// own `case N:`/`default:` line immediately followed by (the recursive
// expansion of) the statement it labels -- including a label chain
// like `case 1: case 2: stmt;`, handled simply by recursing into
// CaseNode.Stmt/DefaultNode.Stmt the same way. Everything else falls
// through to its own Accept, so ordinary fallthrough (no `break`)
// behaves exactly as it does in C.
func (g *Generator) emitSwitchBody(n Node) {
	switch nd := n.(type) {
	case nil:
		return
	case *BlockNode:
		for _, item := range nd.Items {
			g.emitSwitchBody(item)
		}
	case *CaseNode:
		v, _ := EvalConstInt(nd.Value)
		g.out.unindent()
		g.out.writeil(fmt.Sprintf("case %d:", v))
		g.out.indent()
		g.emitSwitchBody(nd.Stmt)
	case *DefaultNode:
		g.out.unindent()
		g.out.writeil("default:")
		g.out.indent()
		g.emitSwitchBody(nd.Stmt)
	default:
		n.Accept(g)
	}
}

func (g *Generator) VisitCase(n *CaseNode) error {
	g.emitSwitchBody(n)
	return nil
}

func (g *Generator) VisitDefault(n *DefaultNode) error {
	g.emitSwitchBody(n)
	return nil
}
