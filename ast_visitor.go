package c99js

import "fmt"

// Visitor is the entry point the visitor-based passes over the AST
// implement: the semantic analyzer (sema.go) and the code generator
// (codegen*.go). The --dump-ast printer (ast_printer.go) walks the
// tree with type switches instead.
type Visitor interface {
	VisitIntLit(*IntLitNode) error
	VisitFloatLit(*FloatLitNode) error
	VisitCharLit(*CharLitNode) error
	VisitStringLit(*StringLitNode) error
	VisitIdent(*IdentNode) error
	VisitUnary(*UnaryNode) error
	VisitPostfix(*PostfixNode) error
	VisitBinary(*BinaryNode) error
	VisitAssign(*AssignNode) error
	VisitTernary(*TernaryNode) error
	VisitComma(*CommaNode) error
	VisitCall(*CallNode) error
	VisitMember(*MemberNode) error
	VisitSubscript(*SubscriptNode) error
	VisitCast(*CastNode) error
	VisitSizeofExpr(*SizeofExprNode) error
	VisitSizeofType(*SizeofTypeNode) error
	VisitCompoundLiteral(*CompoundLiteralNode) error
	VisitInitList(*InitListNode) error
	VisitDesignator(*DesignatorNode) error

	VisitBlock(*BlockNode) error
	VisitExprStmt(*ExprStmtNode) error
	VisitIf(*IfNode) error
	VisitSwitch(*SwitchNode) error
	VisitCase(*CaseNode) error
	VisitDefault(*DefaultNode) error
	VisitWhile(*WhileNode) error
	VisitDoWhile(*DoWhileNode) error
	VisitFor(*ForNode) error
	VisitGoto(*GotoNode) error
	VisitLabel(*LabelNode) error
	VisitContinue(*ContinueNode) error
	VisitBreak(*BreakNode) error
	VisitReturn(*ReturnNode) error
	VisitNullStmt(*NullStmtNode) error

	VisitVarDecl(*VarDeclNode) error
	VisitFuncDecl(*FuncDeclNode) error
	VisitTypedefDecl(*TypedefDeclNode) error
	VisitTagDecl(*TagDeclNode) error
	VisitDeclGroup(*DeclGroupNode) error

	VisitProgram(*ProgramNode) error
}

// BaseVisitor implements Visitor with every method a no-op returning
// nil. Passes that only care about a handful of node kinds embed it
// and override the ones they need, instead of repeating the full
// 41-method interface.
type BaseVisitor struct{}

func (BaseVisitor) VisitIntLit(*IntLitNode) error                   { return nil }
func (BaseVisitor) VisitFloatLit(*FloatLitNode) error               { return nil }
func (BaseVisitor) VisitCharLit(*CharLitNode) error                 { return nil }
func (BaseVisitor) VisitStringLit(*StringLitNode) error             { return nil }
func (BaseVisitor) VisitIdent(*IdentNode) error                     { return nil }
func (BaseVisitor) VisitUnary(*UnaryNode) error                     { return nil }
func (BaseVisitor) VisitPostfix(*PostfixNode) error                 { return nil }
func (BaseVisitor) VisitBinary(*BinaryNode) error                   { return nil }
func (BaseVisitor) VisitAssign(*AssignNode) error                   { return nil }
func (BaseVisitor) VisitTernary(*TernaryNode) error                 { return nil }
func (BaseVisitor) VisitComma(*CommaNode) error                     { return nil }
func (BaseVisitor) VisitCall(*CallNode) error                       { return nil }
func (BaseVisitor) VisitMember(*MemberNode) error                   { return nil }
func (BaseVisitor) VisitSubscript(*SubscriptNode) error             { return nil }
func (BaseVisitor) VisitCast(*CastNode) error                       { return nil }
func (BaseVisitor) VisitSizeofExpr(*SizeofExprNode) error           { return nil }
func (BaseVisitor) VisitSizeofType(*SizeofTypeNode) error           { return nil }
func (BaseVisitor) VisitCompoundLiteral(*CompoundLiteralNode) error { return nil }
func (BaseVisitor) VisitInitList(*InitListNode) error               { return nil }
func (BaseVisitor) VisitDesignator(*DesignatorNode) error           { return nil }
func (BaseVisitor) VisitBlock(*BlockNode) error                     { return nil }
func (BaseVisitor) VisitExprStmt(*ExprStmtNode) error                { return nil }
func (BaseVisitor) VisitIf(*IfNode) error                           { return nil }
func (BaseVisitor) VisitSwitch(*SwitchNode) error                   { return nil }
func (BaseVisitor) VisitCase(*CaseNode) error                       { return nil }
func (BaseVisitor) VisitDefault(*DefaultNode) error                 { return nil }
func (BaseVisitor) VisitWhile(*WhileNode) error                     { return nil }
func (BaseVisitor) VisitDoWhile(*DoWhileNode) error                 { return nil }
func (BaseVisitor) VisitFor(*ForNode) error                         { return nil }
func (BaseVisitor) VisitGoto(*GotoNode) error                       { return nil }
func (BaseVisitor) VisitLabel(*LabelNode) error                     { return nil }
func (BaseVisitor) VisitContinue(*ContinueNode) error               { return nil }
func (BaseVisitor) VisitBreak(*BreakNode) error                     { return nil }
func (BaseVisitor) VisitReturn(*ReturnNode) error                   { return nil }
func (BaseVisitor) VisitNullStmt(*NullStmtNode) error               { return nil }
func (BaseVisitor) VisitVarDecl(*VarDeclNode) error                 { return nil }
func (BaseVisitor) VisitFuncDecl(*FuncDeclNode) error                { return nil }
func (BaseVisitor) VisitTypedefDecl(*TypedefDeclNode) error          { return nil }
func (BaseVisitor) VisitTagDecl(*TagDeclNode) error                  { return nil }
func (BaseVisitor) VisitDeclGroup(*DeclGroupNode) error              { return nil }
func (BaseVisitor) VisitProgram(*ProgramNode) error                  { return nil }

// Inspect traverses an AST in depth-first order, calling f for each
// node; if f returns false the node's children are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *IntLitNode, *FloatLitNode, *CharLitNode, *StringLitNode,
		*IdentNode, *ContinueNode, *BreakNode, *NullStmtNode, *GotoNode:
		// leaves

	case *UnaryNode:
		Inspect(n.Expr, f)
	case *PostfixNode:
		Inspect(n.Expr, f)
	case *BinaryNode:
		Inspect(n.Lhs, f)
		Inspect(n.Rhs, f)
	case *AssignNode:
		Inspect(n.Lhs, f)
		Inspect(n.Rhs, f)
	case *TernaryNode:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *CommaNode:
		for _, it := range n.Items {
			Inspect(it, f)
		}
	case *CallNode:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *MemberNode:
		Inspect(n.Target, f)
	case *SubscriptNode:
		Inspect(n.Base, f)
		Inspect(n.Index, f)
	case *CastNode:
		Inspect(n.Expr, f)
	case *SizeofExprNode:
		Inspect(n.Expr, f)
	case *SizeofTypeNode:
		// nothing: TargetType isn't a Node
	case *CompoundLiteralNode:
		Inspect(n.Init, f)
	case *InitListNode:
		for _, it := range n.Items {
			Inspect(it, f)
		}
	case *DesignatorNode:
		if n.Index != nil {
			Inspect(n.Index, f)
		}
		Inspect(n.Value, f)

	case *BlockNode:
		for _, it := range n.Items {
			Inspect(it, f)
		}
	case *ExprStmtNode:
		Inspect(n.Expr, f)
	case *IfNode:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *SwitchNode:
		Inspect(n.Expr, f)
		Inspect(n.Body, f)
	case *CaseNode:
		Inspect(n.Value, f)
		Inspect(n.Stmt, f)
	case *DefaultNode:
		Inspect(n.Stmt, f)
	case *WhileNode:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *DoWhileNode:
		Inspect(n.Body, f)
		Inspect(n.Cond, f)
	case *ForNode:
		Inspect(n.Init, f)
		Inspect(n.Cond, f)
		Inspect(n.Post, f)
		Inspect(n.Body, f)
	case *LabelNode:
		Inspect(n.Stmt, f)
	case *ReturnNode:
		if n.Expr != nil {
			Inspect(n.Expr, f)
		}

	case *VarDeclNode:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *FuncDeclNode:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *TypedefDeclNode, *TagDeclNode:
		// no Node children

	case *DeclGroupNode:
		for _, d := range n.Decls {
			Inspect(d, f)
		}
	case *ProgramNode:
		for _, d := range n.Decls {
			Inspect(d, f)
		}

	default:
		panic(fmt.Sprintf("Inspect is outdated, missing node %T", n))
	}
}
