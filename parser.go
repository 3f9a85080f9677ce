package c99js

import "fmt"

// Parser is a recursive-descent parser over the token stream produced
// by Lexer, building the AST defined in ast.go and populating the
// shared Arena/TypeRegistry/SymbolTable as it goes (declarations bind
// symbols immediately, a "parse and bind in one pass" shape the parser
// itself relies on for typedef-vs-identifier disambiguation through
// SymbolTable.IsTypedefName).
type Parser struct {
	lex   *Lexer
	diag  *DiagChannel
	arena *Arena
	types *TypeRegistry
	syms  *SymbolTable

	cur     Token
	buf     []Token // extra lookahead beyond cur, filled on demand
	prevEnd int      // end cursor of the token just consumed by advance()
}

func NewParser(lex *Lexer, diag *DiagChannel, arena *Arena, types *TypeRegistry, syms *SymbolTable) *Parser {
	p := &Parser{lex: lex, diag: diag, arena: arena, types: types, syms: syms}
	p.advance()
	return p
}

// ParseProgram parses a full translation unit.
func ParseProgram(lex *Lexer, diag *DiagChannel, arena *Arena, types *TypeRegistry, syms *SymbolTable) *ProgramNode {
	p := NewParser(lex, diag, arena, types, syms)
	return p.parseTranslationUnit()
}

func (p *Parser) parseTranslationUnit() *ProgramNode {
	start := p.cur.Range
	var decls []Node
	for !p.atEOF() {
		d := p.parseExternalDeclaration()
		if d != nil {
			decls = append(decls, d)
		}
	}
	return &ProgramNode{rg: NewRange(start.Start, p.cur.Range.End), Decls: decls}
}

func (p *Parser) atEOF() bool { return p.cur.Kind == TEOF }

// --- token stream plumbing ---

func (p *Parser) advance() {
	p.prevEnd = p.cur.Range.End
	if len(p.buf) > 0 {
		p.cur = p.buf[0]
		p.buf = p.buf[1:]
		return
	}
	tok, err := p.lex.Next()
	if err != nil {
		p.diag.Error(DiagLexError, Range{}, "%v", err)
	}
	if tok == nil {
		p.cur = Token{Kind: TEOF}
		return
	}
	p.cur = *tok
}

// peekAt returns the token `n` positions ahead of cur without
// consuming it (peekAt(0) == cur). Used for the handful of
// disambiguations that need more than one token of lookahead (label
// vs. expression-statement, cast vs. parenthesized expression).
func (p *Parser) peekAt(n int) Token {
	if n == 0 {
		return p.cur
	}
	for len(p.buf) < n {
		tok, err := p.lex.Next()
		if err != nil {
			p.diag.Error(DiagLexError, Range{}, "%v", err)
		}
		if tok == nil {
			p.buf = append(p.buf, Token{Kind: TEOF})
			continue
		}
		p.buf = append(p.buf, *tok)
	}
	return p.buf[n-1]
}

func (p *Parser) at(k TokenKind) bool { return p.cur.Kind == k }

func (p *Parser) accept(k TokenKind) (Token, bool) {
	if p.cur.Kind == k {
		t := p.cur
		p.advance()
		return t, true
	}
	return Token{}, false
}

// expect consumes a token of kind k or reports a parse error and
// returns the current token anyway (error recovery: callers keep
// building the tree with whatever they have rather than aborting).
func (p *Parser) expect(k TokenKind) Token {
	if p.cur.Kind == k {
		t := p.cur
		p.advance()
		return t
	}
	p.errorf("expected %s, found %s", k, p.describeCur())
	return p.cur
}

func (p *Parser) describeCur() string {
	if p.cur.Text != "" {
		return fmt.Sprintf("%q", p.cur.Text)
	}
	return p.cur.Kind.String()
}

func (p *Parser) errorf(format string, args ...any) {
	p.diag.Error(DiagParseError, p.cur.Range, format, args...)
}

// syncTo skips tokens until one of the given kinds (or EOF) is
// current, used to resynchronize after a malformed declaration or
// statement so one error doesn't cascade into hundreds.
func (p *Parser) syncTo(kinds ...TokenKind) {
	for !p.atEOF() {
		for _, k := range kinds {
			if p.cur.Kind == k {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) rangeFrom(start Range) Range {
	return NewRange(start.Start, p.prevEnd)
}
