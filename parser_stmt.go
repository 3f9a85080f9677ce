package c99js

// parseExternalDeclaration parses one top-level declaration: a
// function definition, a prototype, a variable declaration (with
// optional initializer), a typedef, or a standalone tag definition
// (`struct S { ... };`).
func (p *Parser) parseExternalDeclaration() Node {
	start := p.cur.Range
	if !p.atDeclStart() {
		p.errorf("expected a declaration, found %s", p.describeCur())
		p.syncTo(TSemi, TLBrace, TRBrace)
		p.accept(TSemi)
		return nil
	}
	ds, base := p.parseDeclSpecifiers()
	if _, ok := p.accept(TSemi); ok {
		if ds.overrideTy != nil {
			return &TagDeclNode{rg: p.rangeFrom(start), Type: ds.overrideTy}
		}
		return nil
	}
	name, ty := p.parseDeclarator(base, false)
	if ds.storage != SCTypedef && ty.Kind == KFunction && p.at(TLBrace) {
		return p.parseFunctionDefinition(start, ds, name, ty)
	}
	return p.finishDeclGroup(start, ds, base, name, ty)
}

func (p *Parser) parseFunctionDefinition(start Range, ds *declSpecs, name string, ty *Type) Node {
	sym := p.arena.newSymbol(&Symbol{Name: name, Kind: SymFunc, Type: ty, Storage: ds.storage, Defined: true})
	p.syms.Declare(name, sym)
	p.syms.EnterFunctionScope()
	var paramDecls []*VarDeclNode
	for _, prm := range ty.Params {
		if prm.Name == "" {
			continue
		}
		psym := p.arena.newSymbol(&Symbol{Name: prm.Name, Kind: SymParam, Type: prm.Type, Local: true})
		p.syms.Declare(prm.Name, psym)
		paramDecls = append(paramDecls, &VarDeclNode{Name: prm.Name, Type: prm.Type, Sym: psym})
	}
	fnScope := p.syms.CurrentScope()
	body := p.parseBlockBody()
	p.syms.LeaveScope()
	return &FuncDeclNode{rg: p.rangeFrom(start), Name: name, Type: ty, Storage: ds.storage, ParamDecl: paramDecls, Body: body, Sym: sym, scope: fnScope}
}

// parseLocalDeclaration parses a declaration appearing as a
// block-item (no function-definition case: a braced body can never
// follow a block-scope declarator).
func (p *Parser) parseLocalDeclaration() Node {
	start := p.cur.Range
	ds, base := p.parseDeclSpecifiers()
	if _, ok := p.accept(TSemi); ok {
		if ds.overrideTy != nil {
			return &TagDeclNode{rg: p.rangeFrom(start), Type: ds.overrideTy}
		}
		return nil
	}
	name, ty := p.parseDeclarator(base, false)
	return p.finishDeclGroup(start, ds, base, name, ty)
}

func (p *Parser) finishDeclGroup(start Range, ds *declSpecs, base *Type, firstName string, firstTy *Type) Node {
	makeOne := func(name string, ty *Type) Node {
		if ds.storage == SCTypedef {
			p.syms.Declare(name, p.arena.newSymbol(&Symbol{Name: name, Kind: SymTypedef, Type: ty}))
			return &TypedefDeclNode{rg: p.rangeFrom(start), Name: name, Type: ty}
		}
		kind := SymVar
		if ty.Kind == KFunction {
			kind = SymFunc
		}
		sym := p.arena.newSymbol(&Symbol{Name: name, Kind: kind, Type: ty, Storage: ds.storage, Local: !p.syms.AtFileScope()})
		p.syms.Declare(name, sym)
		var init Node
		if _, ok := p.accept(TAssign); ok {
			init = p.parseInitializerOrExpr()
		}
		return &VarDeclNode{rg: p.rangeFrom(start), Name: name, Type: ty, Storage: ds.storage, Init: init, Sym: sym}
	}
	decls := []Node{makeOne(firstName, firstTy)}
	for p.at(TComma) {
		p.advance()
		name, ty := p.parseDeclarator(base, false)
		decls = append(decls, makeOne(name, ty))
	}
	p.expect(TSemi)
	if len(decls) == 1 {
		return decls[0]
	}
	return &DeclGroupNode{rg: p.rangeFrom(start), Decls: decls}
}

// parseInitializerOrExpr parses either a brace-enclosed initializer
// list or a plain assignment-expression initializer.
func (p *Parser) parseInitializerOrExpr() Node {
	if p.at(TLBrace) {
		return p.parseInitList()
	}
	return p.parseAssignment()
}

// parseInitList parses a brace-enclosed initializer list, including
// C99 designated initializers (`.field = ...`, `[index] = ...`) and a
// permitted trailing comma.
func (p *Parser) parseInitList() *InitListNode {
	start := p.cur.Range
	p.expect(TLBrace)
	var items []Node
	for !p.at(TRBrace) && !p.atEOF() {
		items = append(items, p.parseInitializerItem())
		if !p.at(TComma) {
			break
		}
		p.advance()
	}
	p.expect(TRBrace)
	return &InitListNode{exprBase: exprBase{rg: p.rangeFrom(start)}, Items: items}
}

func (p *Parser) parseInitializerItem() Node {
	start := p.cur.Range
	if p.at(TDot) {
		p.advance()
		field := p.expect(TIdent).Text
		p.expect(TAssign)
		val := p.parseInitializerOrExpr()
		return &DesignatorNode{exprBase: exprBase{rg: p.rangeFrom(start)}, Field: field, Value: val}
	}
	if p.at(TLBracket) {
		p.advance()
		idx := p.parseConditional()
		p.expect(TRBracket)
		p.accept(TAssign)
		val := p.parseInitializerOrExpr()
		return &DesignatorNode{exprBase: exprBase{rg: p.rangeFrom(start)}, Index: idx, Value: val}
	}
	return p.parseInitializerOrExpr()
}

// --- statements ---

func (p *Parser) parseBlockBody() *BlockNode {
	start := p.cur.Range
	p.expect(TLBrace)
	var items []Node
	for !p.at(TRBrace) && !p.atEOF() {
		item := p.parseBlockItem()
		if item != nil {
			items = append(items, item)
		}
	}
	p.expect(TRBrace)
	return &BlockNode{rg: p.rangeFrom(start), Items: items}
}

// parseBlock parses a `{ ... }` compound statement, entering and
// leaving its own lexical scope.
func (p *Parser) parseBlock() Node {
	p.syms.EnterScope()
	sc := p.syms.CurrentScope()
	b := p.parseBlockBody()
	b.scope = sc
	p.syms.LeaveScope()
	return b
}

func (p *Parser) parseBlockItem() Node {
	if p.atDeclStart() {
		return p.parseLocalDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() Node {
	start := p.cur.Range
	switch p.cur.Kind {
	case TLBrace:
		return p.parseBlock()
	case TIf:
		return p.parseIf(start)
	case TSwitch:
		return p.parseSwitch(start)
	case TWhile:
		return p.parseWhile(start)
	case TDo:
		return p.parseDoWhile(start)
	case TFor:
		return p.parseFor(start)
	case TGoto:
		p.advance()
		label := p.expect(TIdent).Text
		p.expect(TSemi)
		if !p.syms.HasLabel(label) {
			p.syms.RecordPendingGoto(label, Span{})
		}
		return &GotoNode{rg: p.rangeFrom(start), Label: label}
	case TContinue:
		p.advance()
		p.expect(TSemi)
		return &ContinueNode{rg: p.rangeFrom(start)}
	case TBreak:
		p.advance()
		p.expect(TSemi)
		return &BreakNode{rg: p.rangeFrom(start)}
	case TReturn:
		p.advance()
		var expr Node
		if !p.at(TSemi) {
			expr = p.parseExpression()
		}
		p.expect(TSemi)
		return &ReturnNode{rg: p.rangeFrom(start), Expr: expr}
	case TCase:
		p.advance()
		val := p.parseConditional()
		p.expect(TColon)
		stmt := p.parseStatement()
		return &CaseNode{rg: p.rangeFrom(start), Value: val, Stmt: stmt}
	case TDefault:
		p.advance()
		p.expect(TColon)
		stmt := p.parseStatement()
		return &DefaultNode{rg: p.rangeFrom(start), Stmt: stmt}
	case TSemi:
		p.advance()
		return &NullStmtNode{rg: p.rangeFrom(start)}
	case TIdent:
		if p.peekAt(1).Kind == TColon {
			name := p.cur.Text
			p.advance()
			p.advance()
			p.syms.DeclareLabel(name)
			stmt := p.parseStatement()
			return &LabelNode{rg: p.rangeFrom(start), Name: name, Stmt: stmt}
		}
	}
	expr := p.parseExpression()
	p.expect(TSemi)
	return &ExprStmtNode{rg: p.rangeFrom(start), Expr: expr}
}

func (p *Parser) parseIf(start Range) Node {
	p.advance() // 'if'
	p.expect(TLParen)
	cond := p.parseExpression()
	p.expect(TRParen)
	then := p.parseStatement()
	var els Node
	if _, ok := p.accept(TElse); ok {
		els = p.parseStatement()
	}
	return &IfNode{rg: p.rangeFrom(start), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseSwitch(start Range) Node {
	p.advance() // 'switch'
	p.expect(TLParen)
	expr := p.parseExpression()
	p.expect(TRParen)
	body := p.parseStatement()
	return &SwitchNode{rg: p.rangeFrom(start), Expr: expr, Body: body}
}

func (p *Parser) parseWhile(start Range) Node {
	p.advance() // 'while'
	p.expect(TLParen)
	cond := p.parseExpression()
	p.expect(TRParen)
	body := p.parseStatement()
	return &WhileNode{rg: p.rangeFrom(start), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile(start Range) Node {
	p.advance() // 'do'
	body := p.parseStatement()
	p.expect(TWhile)
	p.expect(TLParen)
	cond := p.parseExpression()
	p.expect(TRParen)
	p.expect(TSemi)
	return &DoWhileNode{rg: p.rangeFrom(start), Body: body, Cond: cond}
}

func (p *Parser) parseFor(start Range) Node {
	p.advance() // 'for'
	p.expect(TLParen)
	p.syms.EnterScope()
	forScope := p.syms.CurrentScope()
	var init Node
	if !p.at(TSemi) {
		if p.atDeclStart() {
			init = p.parseLocalDeclaration() // consumes its own trailing ';'
		} else {
			init = &ExprStmtNode{rg: p.cur.Range, Expr: p.parseExpression()}
			p.expect(TSemi)
		}
	} else {
		p.advance()
	}
	var cond Node
	if !p.at(TSemi) {
		cond = p.parseExpression()
	}
	p.expect(TSemi)
	var post Node
	if !p.at(TRParen) {
		post = p.parseExpression()
	}
	p.expect(TRParen)
	body := p.parseStatement()
	p.syms.LeaveScope()
	return &ForNode{rg: p.rangeFrom(start), Init: init, Cond: cond, Post: post, Body: body, scope: forScope}
}
