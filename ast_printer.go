package c99js

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// astToken classifies a fragment of the AST dump for theming.
type astToken int

const (
	tokNone astToken = iota
	tokKind
	tokLiteral
	tokType
	tokSpan
)

// astPrinterTheme maps a token kind to a lipgloss style.
var astPrinterTheme = map[astToken]lipgloss.Style{
	tokNone:    lipgloss.NewStyle(),
	tokKind:    lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
	tokLiteral: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	tokType:    lipgloss.NewStyle().Foreground(lipgloss.Color("127")),
	tokSpan:    lipgloss.NewStyle().Foreground(lipgloss.Color("228")),
}

// AstPrinter renders --dump-ast output: an indented, optionally
// colorized tree of node kinds, key fields, and resolved types.
type AstPrinter struct {
	lines   *LineIndex
	colored bool
	sb      strings.Builder
	depth   int
}

func NewAstPrinter(lines *LineIndex, colored bool) *AstPrinter {
	return &AstPrinter{lines: lines, colored: colored}
}

func (p *AstPrinter) style(tok astToken, s string) string {
	if !p.colored {
		return s
	}
	return astPrinterTheme[tok].Render(s)
}

func (p *AstPrinter) line(kind string, rg Range, extra string) {
	for i := 0; i < p.depth; i++ {
		p.sb.WriteString("  ")
	}
	p.sb.WriteString(p.style(tokKind, kind))
	if extra != "" {
		p.sb.WriteString(" ")
		p.sb.WriteString(p.style(tokLiteral, extra))
	}
	if p.lines != nil {
		p.sb.WriteString(" ")
		p.sb.WriteString(p.style(tokSpan, "@"+p.lines.Span(rg).String()))
	}
	p.sb.WriteString("\n")
}

// Print renders the full tree for node and returns it.
func Print(node Node, lines *LineIndex, colored bool) string {
	p := NewAstPrinter(lines, colored)
	p.dump(node)
	return p.sb.String()
}

// dump walks the tree printing one line per node with depth-based
// indentation.
func (p *AstPrinter) dump(node Node) {
	if node == nil {
		return
	}
	p.visit(node)
}

func (p *AstPrinter) visit(node Node) {
	kind, extra := p.describe(node)
	p.line(kind, node.Range(), extra)
	p.depth++
	for _, child := range p.children(node) {
		p.dump(child)
	}
	p.depth--
}

func (p *AstPrinter) describe(node Node) (kind, extra string) {
	typeSuffix := func(t *Type) string {
		if t == nil {
			return ""
		}
		return " :: " + TypeName(t)
	}
	switch n := node.(type) {
	case *IntLitNode:
		return "IntLit", fmt.Sprintf("%d%s", n.Value, typeSuffix(n.ExprType()))
	case *FloatLitNode:
		return "FloatLit", fmt.Sprintf("%g%s", n.Value, typeSuffix(n.ExprType()))
	case *CharLitNode:
		return "CharLit", fmt.Sprintf("%d%s", n.Value, typeSuffix(n.ExprType()))
	case *StringLitNode:
		return "StringLit", fmt.Sprintf("%q", n.Value)
	case *IdentNode:
		return "Ident", n.Name + typeSuffix(n.ExprType())
	case *UnaryNode:
		return "Unary", unaryOpName(n.Op) + typeSuffix(n.ExprType())
	case *PostfixNode:
		return "Postfix", postfixOpName(n.Op) + typeSuffix(n.ExprType())
	case *BinaryNode:
		return "Binary", binOpName(n.Op) + typeSuffix(n.ExprType())
	case *AssignNode:
		return "Assign", assignOpName(n.Op) + typeSuffix(n.ExprType())
	case *TernaryNode:
		return "Ternary", ""
	case *CommaNode:
		return "Comma", ""
	case *CallNode:
		return "Call", ""
	case *MemberNode:
		arrow := "."
		if n.Arrow {
			arrow = "->"
		}
		return "Member", arrow + n.Name
	case *SubscriptNode:
		return "Subscript", ""
	case *CastNode:
		return "Cast", TypeName(n.TargetType)
	case *SizeofExprNode:
		return "SizeofExpr", ""
	case *SizeofTypeNode:
		return "SizeofType", TypeName(n.TargetType)
	case *CompoundLiteralNode:
		return "CompoundLiteral", TypeName(n.TargetType)
	case *InitListNode:
		return "InitList", ""
	case *DesignatorNode:
		if n.Field != "" {
			return "Designator", "." + n.Field
		}
		return "Designator", "[]"
	case *BlockNode:
		return "Block", ""
	case *ExprStmtNode:
		return "ExprStmt", ""
	case *IfNode:
		return "If", ""
	case *SwitchNode:
		return "Switch", ""
	case *CaseNode:
		return "Case", ""
	case *DefaultNode:
		return "Default", ""
	case *WhileNode:
		return "While", ""
	case *DoWhileNode:
		return "DoWhile", ""
	case *ForNode:
		return "For", ""
	case *GotoNode:
		return "Goto", n.Label
	case *LabelNode:
		return "Label", n.Name
	case *ContinueNode:
		return "Continue", ""
	case *BreakNode:
		return "Break", ""
	case *ReturnNode:
		return "Return", ""
	case *NullStmtNode:
		return "NullStmt", ""
	case *VarDeclNode:
		return "VarDecl", n.Name + typeSuffix(n.Type)
	case *FuncDeclNode:
		return "FuncDecl", n.Name + typeSuffix(n.Type)
	case *TypedefDeclNode:
		return "TypedefDecl", n.Name + typeSuffix(n.Type)
	case *TagDeclNode:
		return "TagDecl", TypeName(n.Type)
	case *DeclGroupNode:
		return "DeclGroup", ""
	case *ProgramNode:
		return "Program", ""
	default:
		return fmt.Sprintf("%T", n), ""
	}
}

func (p *AstPrinter) children(node Node) []Node {
	var out []Node
	switch n := node.(type) {
	case *UnaryNode:
		out = []Node{n.Expr}
	case *PostfixNode:
		out = []Node{n.Expr}
	case *BinaryNode:
		out = []Node{n.Lhs, n.Rhs}
	case *AssignNode:
		out = []Node{n.Lhs, n.Rhs}
	case *TernaryNode:
		out = []Node{n.Cond, n.Then, n.Else}
	case *CommaNode:
		out = n.Items
	case *CallNode:
		out = append([]Node{n.Callee}, n.Args...)
	case *MemberNode:
		out = []Node{n.Target}
	case *SubscriptNode:
		out = []Node{n.Base, n.Index}
	case *CastNode:
		out = []Node{n.Expr}
	case *SizeofExprNode:
		out = []Node{n.Expr}
	case *CompoundLiteralNode:
		out = []Node{n.Init}
	case *InitListNode:
		out = n.Items
	case *DesignatorNode:
		if n.Index != nil {
			out = append(out, n.Index)
		}
		out = append(out, n.Value)
	case *BlockNode:
		out = n.Items
	case *ExprStmtNode:
		out = []Node{n.Expr}
	case *IfNode:
		out = append(out, n.Cond, n.Then)
		if n.Else != nil {
			out = append(out, n.Else)
		}
	case *SwitchNode:
		out = []Node{n.Expr, n.Body}
	case *CaseNode:
		out = []Node{n.Value, n.Stmt}
	case *DefaultNode:
		out = []Node{n.Stmt}
	case *WhileNode:
		out = []Node{n.Cond, n.Body}
	case *DoWhileNode:
		out = []Node{n.Body, n.Cond}
	case *ForNode:
		if n.Init != nil {
			out = append(out, n.Init)
		}
		if n.Cond != nil {
			out = append(out, n.Cond)
		}
		if n.Post != nil {
			out = append(out, n.Post)
		}
		out = append(out, n.Body)
	case *LabelNode:
		out = []Node{n.Stmt}
	case *ReturnNode:
		if n.Expr != nil {
			out = []Node{n.Expr}
		}
	case *VarDeclNode:
		if n.Init != nil {
			out = []Node{n.Init}
		}
	case *FuncDeclNode:
		if n.Body != nil {
			out = []Node{n.Body}
		}
	case *DeclGroupNode:
		out = n.Decls
	case *ProgramNode:
		out = n.Decls
	}
	return out
}

func unaryOpName(op UnaryOp) string {
	return [...]string{"++", "--", "&", "*", "+", "-", "!", "~"}[op]
}

func postfixOpName(op PostfixOp) string {
	return [...]string{"++", "--"}[op]
}

func binOpName(op BinOp) string {
	return [...]string{
		"*", "/", "%", "+", "-", "<<", ">>",
		"<", "<=", ">", ">=", "==", "!=",
		"&", "^", "|", "&&", "||",
	}[op]
}

func assignOpName(op AssignOp) string {
	return [...]string{
		"=", "*=", "/=", "%=", "+=", "-=", "<<=", ">>=", "&=", "^=", "|=",
	}[op]
}
