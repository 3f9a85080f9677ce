package c99js

// declSpecs accumulates the declaration-specifier keywords seen before
// a declarator: storage class, qualifiers, `inline`, and the
// type-specifier combination (either primitive keyword counts, or a
// struct/union/enum/typedef-name override).
type declSpecs struct {
	storage    StorageClass
	quals      Qualifier
	inline     bool
	overrideTy *Type // set by struct/union/enum specifier or typedef-name

	voidN, charN, intN, floatN, doubleN, boolN int
	signedN, unsignedN, shortN, longN          int
	sawAny                                     bool
}

var typeKeywordKinds = map[TokenKind]bool{
	TVoid: true, TChar: true, TShort: true, TInt: true, TLong: true,
	TFloat: true, TDouble: true, TSigned: true, TUnsigned: true,
	TBool99: true, TStruct: true, TUnion: true, TEnum: true,
}

var storageKeywordKinds = map[TokenKind]StorageClass{
	TTypedef: SCTypedef, TExtern: SCExtern, TStatic: SCStatic,
	TAuto: SCAuto, TRegister: SCRegister,
}

func (p *Parser) isTypeStartToken(t Token) bool {
	if typeKeywordKinds[t.Kind] || storageKeywordKinds[t.Kind] != 0 ||
		t.Kind == TConst || t.Kind == TVolatile || t.Kind == TRestrict || t.Kind == TInline {
		return true
	}
	if t.Kind == TIdent {
		return p.syms.IsTypedefName(t.Text)
	}
	return false
}

// typeStartsAt reports whether a type-name could begin at lookahead
// offset n, used to disambiguate `(type)expr` casts and
// `sizeof(type)` from parenthesized expressions.
func (p *Parser) typeStartsAt(n int) bool {
	return p.isTypeStartToken(p.peekAt(n))
}

func (p *Parser) atDeclStart() bool { return p.isTypeStartToken(p.cur) }

func (p *Parser) parseQualifierList() Qualifier {
	var q Qualifier
	for {
		switch p.cur.Kind {
		case TConst:
			q |= QConst
			p.advance()
		case TVolatile:
			q |= QVolatile
			p.advance()
		case TRestrict:
			q |= QRestrict
			p.advance()
		default:
			return q
		}
	}
}

// parseDeclSpecifiers consumes the full specifier run (storage class,
// qualifiers, `inline`, type specifiers) and resolves the base type.
func (p *Parser) parseDeclSpecifiers() (*declSpecs, *Type) {
	ds := &declSpecs{}
loop:
	for {
		switch p.cur.Kind {
		case TTypedef, TExtern, TStatic, TAuto, TRegister:
			ds.storage = storageKeywordKinds[p.cur.Kind]
			p.advance()
		case TConst:
			ds.quals |= QConst
			p.advance()
		case TVolatile:
			ds.quals |= QVolatile
			p.advance()
		case TRestrict:
			ds.quals |= QRestrict
			p.advance()
		case TInline:
			ds.inline = true
			p.advance()
		case TVoid:
			ds.voidN++
			ds.sawAny = true
			p.advance()
		case TChar:
			ds.charN++
			ds.sawAny = true
			p.advance()
		case TShort:
			ds.shortN++
			ds.sawAny = true
			p.advance()
		case TInt:
			ds.intN++
			ds.sawAny = true
			p.advance()
		case TLong:
			ds.longN++
			ds.sawAny = true
			p.advance()
		case TFloat:
			ds.floatN++
			ds.sawAny = true
			p.advance()
		case TDouble:
			ds.doubleN++
			ds.sawAny = true
			p.advance()
		case TSigned:
			ds.signedN++
			ds.sawAny = true
			p.advance()
		case TUnsigned:
			ds.unsignedN++
			ds.sawAny = true
			p.advance()
		case TBool99:
			ds.boolN++
			ds.sawAny = true
			p.advance()
		case TStruct, TUnion:
			ds.overrideTy = p.parseStructOrUnionSpecifier()
			ds.sawAny = true
		case TEnum:
			ds.overrideTy = p.parseEnumSpecifier()
			ds.sawAny = true
		case TIdent:
			if ds.sawAny || ds.overrideTy != nil {
				break loop
			}
			if sym, ok := p.syms.Lookup(p.cur.Text); ok && sym.Kind == SymTypedef {
				ds.overrideTy = sym.Type
				ds.sawAny = true
				p.advance()
			} else {
				break loop
			}
		default:
			break loop
		}
	}
	base := p.resolveBaseType(ds)
	return ds, base
}

func (p *Parser) resolveBaseType(ds *declSpecs) *Type {
	if ds.overrideTy != nil {
		t := ds.overrideTy
		if ds.quals != 0 {
			clone := *t
			clone.Qualifiers |= ds.quals
			return &clone
		}
		return t
	}
	var base *Type
	switch {
	case ds.voidN > 0:
		base = TyVoid
	case ds.boolN > 0:
		base = TyBool
	case ds.charN > 0:
		if ds.unsignedN > 0 {
			base = TyUChar
		} else {
			base = TyChar
		}
	case ds.floatN > 0:
		base = TyFloat
	case ds.doubleN > 0:
		if ds.longN > 0 {
			base = TyLongDouble
		} else {
			base = TyDouble
		}
	case ds.shortN > 0:
		if ds.unsignedN > 0 {
			base = TyUShort
		} else {
			base = TyShort
		}
	case ds.longN >= 2:
		if ds.unsignedN > 0 {
			base = TyULongLong
		} else {
			base = TyLongLong
		}
	case ds.longN == 1:
		if ds.unsignedN > 0 {
			base = TyULong
		} else {
			base = TyLong
		}
	case ds.intN > 0 || ds.signedN > 0 || ds.unsignedN > 0:
		if ds.unsignedN > 0 {
			base = TyUInt
		} else {
			base = TyInt
		}
	default:
		p.errorf("a type specifier is required")
		base = TyInt
	}
	if ds.quals != 0 {
		clone := *base
		clone.Qualifiers |= ds.quals
		return &clone
	}
	return base
}

// --- struct/union ---

func (p *Parser) parseStructOrUnionSpecifier() *Type {
	kind := KStruct
	if p.cur.Kind == TUnion {
		kind = KUnion
	}
	p.advance()
	name := ""
	if p.at(TIdent) {
		name = p.cur.Text
		p.advance()
	}
	if !p.at(TLBrace) {
		// Reference to a previously (or not yet) declared tag.
		if name == "" {
			p.errorf("expected tag name or '{' after struct/union")
			return p.types.NewTag(kind, "")
		}
		if t, ok := p.syms.LookupTag(name); ok {
			return t
		}
		t := p.types.NewTag(kind, name)
		p.syms.DeclareTag(name, t)
		return t
	}
	var t *Type
	if name != "" {
		if existing, ok := p.syms.LookupTagCurrent(name); ok && !existing.IsComplete() {
			t = existing
		} else {
			t = p.types.NewTag(kind, name)
			p.syms.DeclareTag(name, t)
		}
	} else {
		t = p.types.NewTag(kind, "")
	}
	p.advance() // '{'
	members, size, align, hasFlex := p.parseMemberList(kind)
	p.types.CompleteStructUnion(t, members, size, align, hasFlex)
	p.expect(TRBrace)
	return t
}

// parseMemberList parses struct-declaration-list and computes layout:
// sequential fields at natural alignment for struct, all at offset 0
// for union; bitfields pack LSB-first within a storage unit sized to
// their declared type and never straddle one.
func (p *Parser) parseMemberList(kind TypeKind) (members []*Member, size, align int, hasFlex bool) {
	offset := 0
	bitUnitOffset := -1 // byte offset of the bitfield storage unit in progress, -1 if none open
	bitUsed := 0
	index := 0
	for !p.at(TRBrace) && !p.atEOF() {
		_, memberBase := p.parseDeclSpecifiers()
		for {
			name, ty := p.parseDeclarator(memberBase, false)
			bitWidth := -1
			if p.at(TColon) {
				p.advance()
				w := p.parseConditionalConst()
				bitWidth = int(w)
			}
			if name == "" && bitWidth < 0 && ty.Kind != KStruct && ty.Kind != KUnion {
				p.errorf("expected member declarator")
			}
			if ty.Kind == KArray && ty.ArrayLen < 0 && kind == KStruct {
				hasFlex = true
				members = append(members, &Member{Name: name, Type: ty, Offset: offset, BitWidth: -1, Index: index})
				index++
			} else if bitWidth >= 0 {
				if bitUnitOffset < 0 || bitUsed+bitWidth > ty.Size*8 {
					if bitUnitOffset >= 0 {
						offset = alignUp(offset, 1) // close previous unit, already byte-counted below
					}
					bitUnitOffset = alignUp(offset, ty.Align)
					bitUsed = 0
					offset = bitUnitOffset + ty.Size
					if align < ty.Align {
						align = ty.Align
					}
				}
				m := &Member{Name: name, Type: ty, Offset: bitUnitOffset, BitWidth: bitWidth, BitOffset: bitUsed, Index: index}
				members = append(members, m)
				bitUsed += bitWidth
				index++
			} else {
				bitUnitOffset = -1
				bitUsed = 0
				off := alignUp(offset, ty.Align)
				if kind == KUnion {
					off = 0
				}
				if align < ty.Align {
					align = ty.Align
				}
				members = append(members, &Member{Name: name, Type: ty, Offset: off, BitWidth: -1, Index: index})
				index++
				if kind == KStruct {
					offset = off + ty.Size
				} else if ty.Size > size {
					size = ty.Size
				}
			}
			if !p.at(TComma) {
				break
			}
			p.advance()
		}
		p.expect(TSemi)
	}
	if align == 0 {
		align = 1
	}
	if kind == KStruct {
		size = alignUp(offset, align)
	} else {
		size = alignUp(size, align)
	}
	return members, size, align, hasFlex
}

func alignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	return (off + align - 1) / align * align
}

// parseConditionalConst parses a conditional-expression and folds it,
// used for bitfield widths and array bounds where only a constant is
// valid.
func (p *Parser) parseConditionalConst() int64 {
	expr := p.parseConditional()
	v, ok := EvalConstInt(expr)
	if !ok {
		p.errorf("expected a constant expression")
		return 0
	}
	return v
}

// --- enum ---

func (p *Parser) parseEnumSpecifier() *Type {
	p.advance() // 'enum'
	name := ""
	if p.at(TIdent) {
		name = p.cur.Text
		p.advance()
	}
	if !p.at(TLBrace) {
		if t, ok := p.syms.LookupTag(name); ok {
			return t
		}
		t := p.types.NewEnum(name)
		p.syms.DeclareTag(name, t)
		return t
	}
	t := p.types.NewEnum(name)
	if name != "" {
		p.syms.DeclareTag(name, t)
	}
	p.advance() // '{'
	next := int64(0)
	for !p.at(TRBrace) && !p.atEOF() {
		cname := p.expect(TIdent).Text
		if p.at(TAssign) {
			p.advance()
			next = p.parseConditionalConst()
		}
		t.EnumConsts = append(t.EnumConsts, &EnumConst{Name: cname, Value: next})
		p.syms.Declare(cname, p.arena.newSymbol(&Symbol{Name: cname, Kind: SymEnumConst, Type: t, EnumValue: next}))
		next++
		if !p.at(TComma) {
			break
		}
		p.advance()
	}
	p.expect(TRBrace)
	t.complete = true
	return t
}

// --- declarators ---

// parseDeclarator parses a full (possibly abstract, when abstract is
// true) declarator and returns the bound name (empty for abstract) and
// the resulting type.
func (p *Parser) parseDeclarator(base *Type, abstract bool) (string, *Type) {
	base = p.applyPointerPrefix(base)
	return p.parseDirectDeclarator(base, abstract)
}

func (p *Parser) applyPointerPrefix(base *Type) *Type {
	for p.at(TStar) {
		p.advance()
		q := p.parseQualifierList()
		pt := p.types.Pointer(base)
		pt.Qualifiers = q
		base = pt
	}
	return base
}

func (p *Parser) parseDirectDeclarator(base *Type, abstract bool) (string, *Type) {
	if p.at(TLParen) {
		isGroup := true
		if abstract {
			nxt := p.peekAt(1)
			if nxt.Kind == TRParen || p.isTypeStartToken(nxt) {
				isGroup = false
			}
		}
		if isGroup {
			p.advance() // '('
			placeholder := &Type{}
			name, inner := p.parseDeclarator(placeholder, abstract)
			p.expect(TRParen)
			suffixed := p.parseSuffixChain(base)
			*placeholder = *suffixed
			return name, inner
		}
	}
	name := ""
	if p.at(TIdent) {
		name = p.cur.Text
		p.advance()
	} else if !abstract {
		p.errorf("expected identifier in declarator, found %s", p.describeCur())
	}
	return name, p.parseSuffixChain(base)
}

func (p *Parser) parseSuffixChain(base *Type) *Type {
	if p.at(TLBracket) {
		p.advance()
		for p.at(TConst) || p.at(TVolatile) || p.at(TRestrict) || p.at(TStatic) {
			p.advance()
		}
		length := -1
		var vlaExpr Node
		if p.at(TStar) && p.peekAt(1).Kind == TRBracket {
			p.advance()
		} else if !p.at(TRBracket) {
			expr := p.parseAssignment()
			if v, ok := EvalConstInt(expr); ok {
				length = int(v)
			} else {
				vlaExpr = expr
			}
		}
		p.expect(TRBracket)
		inner := p.parseSuffixChain(base)
		if vlaExpr != nil {
			return p.types.VLA(inner, vlaExpr)
		}
		return p.types.Array(inner, length)
	}
	if p.at(TLParen) {
		p.advance()
		params, variadic, oldStyle := p.parseParamList()
		p.expect(TRParen)
		return p.types.Function(base, params, variadic, oldStyle)
	}
	return base
}

// parseParamList parses a function declarator's parameter-type-list,
// including `(void)`, trailing `...`, and a bare identifier list
// (pre-C89 K&R style, recorded as an old-style prototype with every
// parameter defaulted to int -- the declarations that would normally
// follow such a parameter list before the function body are not
// supported).
func (p *Parser) parseParamList() (params []*Param, variadic, oldStyle bool) {
	if p.at(TRParen) {
		return nil, false, false
	}
	if p.at(TVoid) && p.peekAt(1).Kind == TRParen {
		p.advance()
		return nil, false, false
	}
	if p.at(TIdent) && !p.typeStartsAt(0) {
		oldStyle = true
		for {
			name := p.expect(TIdent).Text
			params = append(params, &Param{Name: name, Type: TyInt})
			if !p.at(TComma) {
				break
			}
			p.advance()
		}
		return params, false, true
	}
	for {
		if p.at(TEllipsis) {
			p.advance()
			variadic = true
			break
		}
		_, base := p.parseDeclSpecifiers()
		name, ty := p.parseDeclarator(base, true)
		if ty.Kind == KArray {
			ty = p.types.Pointer(ty.Base) // array parameter decays to pointer
		}
		if ty.Kind == KFunction {
			ty = p.types.Pointer(ty)
		}
		params = append(params, &Param{Name: name, Type: ty})
		if !p.at(TComma) {
			break
		}
		p.advance()
		if p.at(TEllipsis) {
			p.advance()
			variadic = true
			break
		}
	}
	return params, variadic, false
}

// parseTypeName parses a type-name (specifier-qualifier-list plus an
// optional abstract declarator), used by casts, sizeof(type), and
// compound literals.
func (p *Parser) parseTypeName() *Type {
	_, base := p.parseDeclSpecifiers()
	_, ty := p.parseDeclarator(base, true)
	return ty
}
