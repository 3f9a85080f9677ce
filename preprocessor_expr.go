package c99js

import "strings"

// ppExprParser is a small recursive-descent parser over the pp-token
// stream produced for one #if/#elif condition, implementing the
// integer constant-expression grammar: ternary, logical, bitwise,
// equality, relational, shift, additive, multiplicative, unary,
// primary. Division and modulo by zero evaluate to 0 rather than
// aborting, and any identifier remaining after macro expansion
// (anything that was not itself a macro, including `sizeof` and
// keywords) evaluates to 0 -- the preprocessor never runs semantic
// analysis.
type ppExprParser struct {
	toks []ppTok
	pos  int
}

func evalConstIntExpr(toks []ppTok) (int64, bool) {
	p := &ppExprParser{toks: toks}
	v := p.ternary()
	return v, true
}

func (p *ppExprParser) peek() ppTok {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ppTok{Kind: ppPunct, Text: ""}
}

func (p *ppExprParser) next() ppTok {
	t := p.peek()
	p.pos++
	return t
}

func (p *ppExprParser) at(text string) bool { return p.peek().Text == text }

func (p *ppExprParser) ternary() int64 {
	cond := p.logicalOr()
	if p.at("?") {
		p.next()
		then := p.ternary()
		if p.at(":") {
			p.next()
		}
		els := p.ternary()
		if cond != 0 {
			return then
		}
		return els
	}
	return cond
}

func (p *ppExprParser) logicalOr() int64 {
	v := p.logicalAnd()
	for p.at("||") {
		p.next()
		rhs := p.logicalAnd()
		v = b2i(v != 0 || rhs != 0)
	}
	return v
}

func (p *ppExprParser) logicalAnd() int64 {
	v := p.bitOr()
	for p.at("&&") {
		p.next()
		rhs := p.bitOr()
		v = b2i(v != 0 && rhs != 0)
	}
	return v
}

func (p *ppExprParser) bitOr() int64 {
	v := p.bitXor()
	for p.at("|") {
		p.next()
		v |= p.bitXor()
	}
	return v
}

func (p *ppExprParser) bitXor() int64 {
	v := p.bitAnd()
	for p.at("^") {
		p.next()
		v ^= p.bitAnd()
	}
	return v
}

func (p *ppExprParser) bitAnd() int64 {
	v := p.equality()
	for p.at("&") {
		p.next()
		v &= p.equality()
	}
	return v
}

func (p *ppExprParser) equality() int64 {
	v := p.relational()
	for p.at("==") || p.at("!=") {
		op := p.next().Text
		rhs := p.relational()
		if op == "==" {
			v = b2i(v == rhs)
		} else {
			v = b2i(v != rhs)
		}
	}
	return v
}

func (p *ppExprParser) relational() int64 {
	v := p.shift()
	for p.at("<") || p.at(">") || p.at("<=") || p.at(">=") {
		op := p.next().Text
		rhs := p.shift()
		switch op {
		case "<":
			v = b2i(v < rhs)
		case ">":
			v = b2i(v > rhs)
		case "<=":
			v = b2i(v <= rhs)
		case ">=":
			v = b2i(v >= rhs)
		}
	}
	return v
}

func (p *ppExprParser) shift() int64 {
	v := p.additive()
	for p.at("<<") || p.at(">>") {
		op := p.next().Text
		rhs := p.additive()
		if op == "<<" {
			v <<= uint(rhs)
		} else {
			v >>= uint(rhs)
		}
	}
	return v
}

func (p *ppExprParser) additive() int64 {
	v := p.multiplicative()
	for p.at("+") || p.at("-") {
		op := p.next().Text
		rhs := p.multiplicative()
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v
}

func (p *ppExprParser) multiplicative() int64 {
	v := p.unary()
	for p.at("*") || p.at("/") || p.at("%") {
		op := p.next().Text
		rhs := p.unary()
		switch op {
		case "*":
			v *= rhs
		case "/":
			if rhs == 0 {
				v = 0
			} else {
				v /= rhs
			}
		case "%":
			if rhs == 0 {
				v = 0
			} else {
				v %= rhs
			}
		}
	}
	return v
}

func (p *ppExprParser) unary() int64 {
	switch p.peek().Text {
	case "+":
		p.next()
		return p.unary()
	case "-":
		p.next()
		return -p.unary()
	case "!":
		p.next()
		return b2i(p.unary() == 0)
	case "~":
		p.next()
		return ^p.unary()
	}
	return p.primary()
}

func (p *ppExprParser) primary() int64 {
	t := p.peek()
	switch {
	case t.Text == "(":
		p.next()
		v := p.ternary()
		if p.at(")") {
			p.next()
		}
		return v
	case t.Kind == ppNum:
		p.next()
		return parseConstNumber(t.Text)
	case t.Kind == ppIdent:
		// Any identifier surviving macro expansion (not itself a
		// macro) is 0, per the C99 preprocessor constant-expression
		// rule.
		p.next()
		return 0
	case t.Kind == ppChar:
		p.next()
		return charLiteralValue(t.Text)
	default:
		if t.Text != "" {
			p.next()
		}
		return 0
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseConstNumber strips integer-literal suffixes (u/U/l/L) and
// parses the remaining digits, honoring 0x/0 prefixes.
func parseConstNumber(text string) int64 {
	s := strings.TrimRight(text, "uUlL")
	if s == "" {
		return 0
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0") && len(s) > 1:
		base = 8
		s = s[1:]
	}
	var v int64
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || d >= base {
			break
		}
		v = v*int64(base) + int64(d)
	}
	return v
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

// charLiteralValue extracts the ordinal value of a 'c'-style char
// literal's first (possibly escaped) character, enough for use inside
// #if conditions.
func charLiteralValue(text string) int64 {
	inner := strings.Trim(text, "'")
	if inner == "" {
		return 0
	}
	runes := []rune(inner)
	if runes[0] == '\\' && len(runes) > 1 {
		if v, ok := simpleEscapes[runes[1]]; ok {
			return int64(v)
		}
		return int64(runes[1])
	}
	return int64(runes[0])
}
