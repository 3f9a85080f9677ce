package c99js

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ppTokKind classifies a preprocessing token for macro substitution
// purposes. This is a much coarser token set than the real Lexer's
// TokenKind -- the preprocessor only needs to know enough to find
// identifiers (candidate macro invocations / parameters), split
// arguments at top-level commas, and glue `##` operands.
type ppTokKind int

const (
	ppIdent ppTokKind = iota
	ppNum
	ppStr
	ppChar
	ppPunct
	ppOther
)

type ppTok struct {
	Kind        ppTokKind
	Text        string
	SpaceBefore bool
}

// ppTokenize splits s into preprocessing tokens. It is intentionally
// independent from Lexer (which runs on the already-expanded text and
// needs full C99 fidelity); this one only needs to support macro
// substitution mechanics.
func ppTokenize(s string) []ppTok {
	runes := []rune(s)
	var out []ppTok
	i := 0
	spaceBefore := false
	for i < len(runes) {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			spaceBefore = true
			i++
			continue
		}
		start := i
		switch {
		case isIdentStart(r):
			for i < len(runes) && isIdentCont(runes[i]) {
				i++
			}
			out = append(out, ppTok{Kind: ppIdent, Text: string(runes[start:i]), SpaceBefore: spaceBefore})
		case isDigit(r) || (r == '.' && i+1 < len(runes) && isDigit(runes[i+1])):
			for i < len(runes) && (isIdentCont(runes[i]) || runes[i] == '.') {
				i++
			}
			out = append(out, ppTok{Kind: ppNum, Text: string(runes[start:i]), SpaceBefore: spaceBefore})
		case r == '"':
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				i++
			}
			if i < len(runes) {
				i++
			}
			out = append(out, ppTok{Kind: ppStr, Text: string(runes[start:i]), SpaceBefore: spaceBefore})
		case r == '\'':
			i++
			for i < len(runes) && runes[i] != '\'' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				i++
			}
			if i < len(runes) {
				i++
			}
			out = append(out, ppTok{Kind: ppChar, Text: string(runes[start:i]), SpaceBefore: spaceBefore})
		default:
			n := 1
			two := ""
			if i+1 < len(runes) {
				two = string(runes[i : i+2])
			}
			three := ""
			if i+2 < len(runes) {
				three = string(runes[i : i+3])
			}
			switch {
			case three == "...":
				n = 3
			case two == "##" || two == "->" || two == "<<" || two == ">>" ||
				two == "<=" || two == ">=" || two == "==" || two == "!=" ||
				two == "&&" || two == "||" || two == "+=" || two == "-=":
				n = 2
			}
			i += n
			out = append(out, ppTok{Kind: ppPunct, Text: string(runes[start:i]), SpaceBefore: spaceBefore})
		}
		spaceBefore = false
	}
	return out
}

func joinTokens(toks []ppTok) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && t.SpaceBefore {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// macro is one #define binding, object-like or function-like.
type macro struct {
	name         string
	functionLike bool
	params       []string
	variadic     bool
	body         []ppTok
}

// condFrameState is the state of one entry in the conditional
// inclusion stack.
type condFrameState int

const (
	condInactive condFrameState = iota
	condActive
	condAlreadyMatched
)

type condFrame struct {
	state       condFrameState
	everMatched bool
}

// allowlistedHeaders is the fixed set of standard headers that are
// silently satisfied by the runtime instead of being resolved on disk.
var allowlistedHeaders = map[string]bool{
	"stdio.h": true, "stdlib.h": true, "string.h": true, "math.h": true,
	"ctype.h": true, "assert.h": true, "stdarg.h": true, "stddef.h": true,
	"stdbool.h": true, "stdint.h": true, "limits.h": true, "float.h": true,
	"errno.h": true, "time.h": true, "signal.h": true, "setjmp.h": true,
}

// FileReader abstracts reading include files so tests can substitute
// an in-memory set instead of touching disk.
type FileReader func(path string) ([]byte, error)

// Preprocessor implements macro expansion, conditional
// inclusion, include resolution, line splicing, comment stripping,
// and predefined macros.
type Preprocessor struct {
	diag       *DiagChannel
	searchDirs []string
	reader     FileReader

	macros map[string]*macro

	out     strings.Builder
	markers []lineMarker

	includeDepth int
	expandDepth  int
}

const maxIncludeDepth = 200
const maxExpandDepth = 32

func NewPreprocessor(diag *DiagChannel, searchDirs []string, reader FileReader) *Preprocessor {
	if reader == nil {
		reader = os.ReadFile
	}
	pp := &Preprocessor{diag: diag, searchDirs: searchDirs, reader: reader, macros: map[string]*macro{}}
	pp.definePredefined()
	return pp
}

// Define predefines an object-like macro, used both by
// definePredefined and by the CLI's `-D name[=value]`.
func (pp *Preprocessor) Define(name, value string) {
	if value == "" {
		value = "1"
	}
	pp.macros[name] = &macro{name: name, body: ppTokenize(value)}
}

func (pp *Preprocessor) definePredefined() {
	pp.Define("__STDC__", "1")
	pp.Define("__STDC_VERSION__", "199901L")
	pp.Define("__STDC_HOSTED__", "1")
	pp.Define("NULL", "((void*)0)")
	pp.Define("true", "1")
	pp.Define("false", "0")
	pp.Define("bool", "_Bool")
	pp.Define("EOF", "(-1)")

	// stdint.h fixed-width typedef macros.
	pp.Define("int8_t", "signed char")
	pp.Define("uint8_t", "unsigned char")
	pp.Define("int16_t", "short")
	pp.Define("uint16_t", "unsigned short")
	pp.Define("int32_t", "int")
	pp.Define("uint32_t", "unsigned int")
	pp.Define("int64_t", "long long")
	pp.Define("uint64_t", "unsigned long long")
	pp.Define("size_t", "unsigned long")
	pp.Define("ssize_t", "long")
	pp.Define("intptr_t", "long")
	pp.Define("uintptr_t", "unsigned long")
	pp.Define("ptrdiff_t", "long")
	pp.Define("wchar_t", "int")

	// time.h / signal.h typedef macros
	pp.Define("time_t", "long")
	pp.Define("clock_t", "long")
	pp.Define("sig_atomic_t", "int")

	// limits.h / float.h numeric limits
	pp.Define("CHAR_BIT", "8")
	pp.Define("SCHAR_MIN", "(-128)")
	pp.Define("SCHAR_MAX", "127")
	pp.Define("UCHAR_MAX", "255")
	pp.Define("CHAR_MIN", "(-128)")
	pp.Define("CHAR_MAX", "127")
	pp.Define("SHRT_MIN", "(-32768)")
	pp.Define("SHRT_MAX", "32767")
	pp.Define("USHRT_MAX", "65535")
	pp.Define("INT_MIN", "(-2147483647-1)")
	pp.Define("INT_MAX", "2147483647")
	pp.Define("UINT_MAX", "4294967295U")
	pp.Define("LONG_MIN", "(-2147483647L-1)")
	pp.Define("LONG_MAX", "2147483647L")
	pp.Define("ULONG_MAX", "4294967295UL")
	pp.Define("LLONG_MIN", "(-9223372036854775807LL-1)")
	pp.Define("LLONG_MAX", "9223372036854775807LL")
	pp.Define("ULLONG_MAX", "18446744073709551615ULL")
	pp.Define("FLT_MAX", "3.402823466e+38F")
	pp.Define("FLT_MIN", "1.175494351e-38F")
	pp.Define("FLT_EPSILON", "1.19209290e-07F")
	pp.Define("DBL_MAX", "1.7976931348623158e+308")
	pp.Define("DBL_MIN", "2.2250738585072014e-308")
	pp.Define("DBL_EPSILON", "2.2204460492503131e-16")

	// stdio.h seek constants
	pp.Define("SEEK_SET", "0")
	pp.Define("SEEK_CUR", "1")
	pp.Define("SEEK_END", "2")

	pp.Define("EXIT_SUCCESS", "0")
	pp.Define("EXIT_FAILURE", "1")

	// stdio.h's three standard streams are ordinary small integer
	// constants here, matching the fixed FILE* identities
	// runtime/prelude.js reserves for them (real heap addresses start
	// well above 4096, so 1/2/3 can never collide with one).
	pp.Define("stdin", "1")
	pp.Define("stdout", "2")
	pp.Define("stderr", "3")

	// va_list's actual representation never matters: general
	// va_start/va_arg/va_end consumption is not implemented (see
	// DESIGN.md), so this exists only so a variadic function's body can
	// declare a va_list-typed local without an "unknown type" error.
	pp.Define("va_list", "long")

	// errno is deliberately NOT a macro: it is pre-declared as a
	// builtin `extern int errno;` symbol (see RegisterBuiltins in builtins.go),
	// because it needs to behave as an lvalue the code generator can
	// read/write through the runtime's errno cell, not as arbitrary
	// substituted text.
}

// Markers returns the line-marker table accumulated while processing,
// consumed by LineIndex for diagnostics that point at original source.
func (pp *Preprocessor) Markers() []lineMarker { return pp.markers }

// Run preprocesses mainPath and returns the fully expanded text.
func (pp *Preprocessor) Run(mainPath string) (string, error) {
	content, err := pp.reader(mainPath)
	if err != nil {
		pp.diag.Error(DiagIOError, Range{}, "cannot open input file %q: %v", mainPath, err)
		return "", err
	}
	pp.emitMarker(mainPath, 1)
	pp.processFile(mainPath, content)
	return pp.out.String(), nil
}

func (pp *Preprocessor) emitMarker(file string, line int32) {
	pp.markers = append(pp.markers, lineMarker{atCursor: pp.out.Len(), file: file, line: line})
}

// processFile drives directive recognition and code-line macro
// expansion for one (already spliced/decommented) file.
func (pp *Preprocessor) processFile(path string, raw []byte) {
	pp.includeDepth++
	defer func() { pp.includeDepth-- }()
	if pp.includeDepth > maxIncludeDepth {
		pp.diag.Error(DiagPreprocessorError, Range{}, "#include nested too deeply (possible cycle) in %q", path)
		return
	}

	text := spliceAndStripComments(string(raw))
	lines := strings.Split(text, "\n")

	var stack []*condFrame
	active := func() bool {
		for _, f := range stack {
			if f.state != condActive {
				return false
			}
		}
		return true
	}

	lineNo := 1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		isDirective := strings.HasPrefix(trimmed, "#")

		if isDirective {
			directive := strings.TrimLeft(trimmed[1:], " \t")
			pp.handleDirective(path, lineNo, directive, &stack, active())
		} else if active() {
			toks := ppTokenize(line)
			expanded := pp.expand(toks, map[string]bool{})
			pp.out.WriteString(joinTokens(expanded))
		}
		pp.out.WriteByte('\n')
		lineNo++
	}

	for range stack {
		pp.diag.Error(DiagPreprocessorError, Range{}, "unterminated #if in %q", path)
	}
}

// spliceAndStripComments performs 's line-splicing and
// comment-stripping passes in one scan, preserving embedded newlines
// inside block comments so line numbers downstream stay meaningful.
// String and character literals are tracked so `//`/`/*` inside them
// are left alone.
func spliceAndStripComments(src string) string {
	runes := []rune(src)
	var out strings.Builder
	i := 0
	n := len(runes)
	for i < n {
		// backslash-newline (optionally with \r before \n) splicing
		if runes[i] == '\\' && i+1 < n {
			j := i + 1
			if runes[j] == '\r' && j+1 < n && runes[j+1] == '\n' {
				i = j + 2
				continue
			}
			if runes[j] == '\n' {
				i = j + 1
				continue
			}
		}
		if runes[i] == '"' || runes[i] == '\'' {
			quote := runes[i]
			out.WriteRune(runes[i])
			i++
			for i < n && runes[i] != quote {
				if runes[i] == '\\' && i+1 < n {
					out.WriteRune(runes[i])
					out.WriteRune(runes[i+1])
					i += 2
					continue
				}
				if runes[i] == '\n' {
					break // unterminated literal; stop consuming as a literal
				}
				out.WriteRune(runes[i])
				i++
			}
			if i < n && runes[i] == quote {
				out.WriteRune(runes[i])
				i++
			}
			continue
		}
		if runes[i] == '/' && i+1 < n && runes[i+1] == '/' {
			for i < n && runes[i] != '\n' {
				i++
			}
			out.WriteByte(' ')
			continue
		}
		if runes[i] == '/' && i+1 < n && runes[i+1] == '*' {
			i += 2
			for i < n && !(runes[i] == '*' && i+1 < n && runes[i+1] == '/') {
				if runes[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			i += 2
			out.WriteByte(' ')
			continue
		}
		out.WriteRune(runes[i])
		i++
	}
	return out.String()
}

func (pp *Preprocessor) handleDirective(curFile string, lineNo int, directive string, stack *[]*condFrame, wasActive bool) {
	toks := ppTokenize(directive)
	if len(toks) == 0 {
		return // a bare `#` is a null directive
	}
	name := toks[0].Text
	rest := toks[1:]

	switch name {
	case "if":
		if !wasActive {
			*stack = append(*stack, &condFrame{state: condInactive})
			return
		}
		ok := pp.evalCondition(rest)
		f := &condFrame{state: condInactive}
		if ok {
			f.state = condActive
			f.everMatched = true
		}
		*stack = append(*stack, f)

	case "ifdef", "ifndef":
		if !wasActive {
			*stack = append(*stack, &condFrame{state: condInactive})
			return
		}
		defined := len(rest) > 0 && pp.isDefined(rest[0].Text)
		if name == "ifndef" {
			defined = !defined
		}
		f := &condFrame{state: condInactive}
		if defined {
			f.state = condActive
			f.everMatched = true
		}
		*stack = append(*stack, f)

	case "elif":
		if len(*stack) == 0 {
			pp.diag.Error(DiagPreprocessorError, Range{}, "#elif without #if")
			return
		}
		top := (*stack)[len(*stack)-1]
		parentActive := pp.parentActive(*stack)
		if !parentActive {
			return
		}
		if top.everMatched {
			top.state = condAlreadyMatched
			return
		}
		if pp.evalCondition(rest) {
			top.state = condActive
			top.everMatched = true
		} else {
			top.state = condInactive
		}

	case "else":
		if len(*stack) == 0 {
			pp.diag.Error(DiagPreprocessorError, Range{}, "#else without #if")
			return
		}
		top := (*stack)[len(*stack)-1]
		if !pp.parentActive(*stack) {
			return
		}
		if top.everMatched {
			top.state = condAlreadyMatched
			return
		}
		top.state = condActive
		top.everMatched = true

	case "endif":
		if len(*stack) == 0 {
			pp.diag.Error(DiagPreprocessorError, Range{}, "#endif without #if")
			return
		}
		*stack = (*stack)[:len(*stack)-1]

	default:
		if !wasActive {
			return
		}
		pp.handleActiveDirective(curFile, lineNo, name, rest)
	}
}

func (pp *Preprocessor) parentActive(stack []*condFrame) bool {
	for _, f := range stack[:len(stack)-1] {
		if f.state != condActive {
			return false
		}
	}
	return true
}

func (pp *Preprocessor) handleActiveDirective(curFile string, lineNo int, name string, rest []ppTok) {
	switch name {
	case "include":
		pp.handleInclude(curFile, lineNo, rest)
	case "define":
		pp.handleDefine(rest)
	case "undef":
		if len(rest) > 0 {
			delete(pp.macros, rest[0].Text)
		}
	case "line":
		// `#line <n> ["file"]`: re-baseline line numbers. c99js's
		// LineIndex already consumes the same `# <n> "<file>"`
		// marker format the preprocessor emits for #include, so
		// #line is handled by emitting one directly.
		if len(rest) > 0 {
			file := curFile
			if len(rest) > 1 && rest[1].Kind == ppStr {
				file = unquote(rest[1].Text)
			}
			pp.emitMarker(file, parseInt32(rest[0].Text))
		}
	case "error":
		pp.diag.Error(DiagPreprocessorError, Range{}, "#error %s", joinTokens(rest))
	case "pragma":
		// ignored
	case "warning":
		pp.diag.Warning(DiagPreprocessorError, Range{}, "#warning %s", joinTokens(rest))
	default:
		pp.diag.Error(DiagPreprocessorError, Range{}, "malformed preprocessing directive #%s", name)
	}
}

func (pp *Preprocessor) isDefined(name string) bool {
	_, ok := pp.macros[name]
	return ok
}

// evalCondition implements 's 3-pass #if/#elif evaluation:
// (1) replace every defined(X)/defined X with a literal 0/1 before any
// macro expansion, (2) expand remaining macros, (3) fold as a constant
// integer expression.
func (pp *Preprocessor) evalCondition(toks []ppTok) bool {
	pass1 := pp.resolveDefined(toks)
	pass2 := pp.expand(pass1, map[string]bool{})
	v, _ := evalConstIntExpr(pass2)
	return v != 0
}

func (pp *Preprocessor) resolveDefined(toks []ppTok) []ppTok {
	var out []ppTok
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind == ppIdent && toks[i].Text == "defined" {
			name := ""
			if i+1 < len(toks) && toks[i+1].Text == "(" {
				if i+2 < len(toks) {
					name = toks[i+2].Text
				}
				i += 3 // skip `( name )`
				if i < len(toks) && toks[i].Text == ")" {
					// already consumed via i += 3 landing past ')'
				} else {
					i--
				}
			} else if i+1 < len(toks) {
				name = toks[i+1].Text
				i++
			}
			val := "0"
			if pp.isDefined(name) {
				val = "1"
			}
			out = append(out, ppTok{Kind: ppNum, Text: val})
			continue
		}
		out = append(out, toks[i])
	}
	return out
}

func (pp *Preprocessor) handleInclude(curFile string, lineNo int, rest []ppTok) {
	if len(rest) == 0 {
		pp.diag.Error(DiagPreprocessorError, Range{}, "#include expects \"FILENAME\" or <FILENAME>")
		return
	}
	spelling := joinTokens(rest)
	spelling = strings.TrimSpace(spelling)
	var quoted bool
	var name string
	if strings.HasPrefix(spelling, "\"") {
		quoted = true
		name = unquote(spelling)
	} else if strings.HasPrefix(spelling, "<") && strings.HasSuffix(spelling, ">") {
		quoted = false
		name = spelling[1 : len(spelling)-1]
	} else {
		// Macro-expanded include spelling; expand then retry once.
		expanded := pp.expand(rest, map[string]bool{})
		spelling = strings.TrimSpace(joinTokens(expanded))
		if strings.HasPrefix(spelling, "\"") {
			quoted = true
			name = unquote(spelling)
		} else if strings.HasPrefix(spelling, "<") && strings.HasSuffix(spelling, ">") {
			name = spelling[1 : len(spelling)-1]
		} else {
			pp.diag.Error(DiagPreprocessorError, Range{}, "malformed #include %q", spelling)
			return
		}
	}

	if allowlistedHeaders[name] {
		// Header substitution: replaced by an empty
		// translation; the runtime provides their semantics. The
		// macros above already cover the handful of "typedef macros"
		// user code typically needs from these headers.
		return
	}

	path, ok := pp.resolveInclude(name, curFile, quoted)
	if !ok {
		pp.diag.Error(DiagIOError, Range{}, "cannot find include file %q", name)
		return
	}
	content, err := pp.reader(path)
	if err != nil {
		pp.diag.Error(DiagIOError, Range{}, "cannot open include file %q: %v", path, err)
		return
	}
	pp.emitMarker(path, 1)
	pp.processFile(path, content)
	// Resume curFile at the #include's own (now blank) output line, so
	// the line after it reports lineNo+1.
	pp.emitMarker(curFile, int32(lineNo))
}

// resolveInclude implements 's search order: quoted
// includes try (1) the including file's directory, (2) the working
// directory, (3) the user search list, in that order; angle-bracket
// includes skip step (1).
func (pp *Preprocessor) resolveInclude(name, curFile string, quoted bool) (string, bool) {
	try := func(dir string) (string, bool) {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
		return "", false
	}
	if quoted {
		if p, ok := try(filepath.Dir(curFile)); ok {
			return p, true
		}
		if p, ok := try("."); ok {
			return p, true
		}
	}
	for _, dir := range pp.searchDirs {
		if p, ok := try(dir); ok {
			return p, true
		}
	}
	return "", false
}

func (pp *Preprocessor) handleDefine(rest []ppTok) {
	if len(rest) == 0 {
		pp.diag.Error(DiagPreprocessorError, Range{}, "#define expects a macro name")
		return
	}
	m := &macro{name: rest[0].Text}
	i := 1
	// Function-like iff `(` immediately follows the name with no
	// intervening whitespace.
	if i < len(rest) && rest[i].Text == "(" && !rest[i].SpaceBefore {
		m.functionLike = true
		i++
		for i < len(rest) && rest[i].Text != ")" {
			if rest[i].Text == "," {
				i++
				continue
			}
			if rest[i].Text == "..." {
				m.variadic = true
				i++
				continue
			}
			m.params = append(m.params, rest[i].Text)
			i++
		}
		if i < len(rest) {
			i++ // skip ')'
		}
	}
	m.body = rest[i:]
	pp.macros[m.name] = m
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func parseInt32(s string) int32 {
	var v int32
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		v = v*10 + int32(r-'0')
	}
	return v
}

// expand performs macro substitution with rescanning, bounded to
// maxExpandDepth. `expanding` is the set
// of macro names currently being substituted on this call stack, used
// to stop self-referential expansion (the classic "blue paint" rule,
// simplified to a per-name flag rather than a full per-token hideset).
func (pp *Preprocessor) expand(toks []ppTok, expanding map[string]bool) []ppTok {
	if pp.expandDepth > maxExpandDepth {
		return toks
	}
	var out []ppTok
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != ppIdent {
			out = append(out, t)
			continue
		}
		m, ok := pp.macros[t.Text]
		if !ok || expanding[t.Text] {
			out = append(out, t)
			continue
		}
		if !m.functionLike {
			pp.expandDepth++
			expanding[t.Text] = true
			sub := pp.concatenate(m.body)
			rescanned := pp.expand(sub, expanding)
			delete(expanding, t.Text)
			pp.expandDepth--
			out = append(out, rescanned...)
			continue
		}
		// Function-like: requires a following `(`.
		j := i + 1
		if j >= len(toks) || toks[j].Text != "(" {
			out = append(out, t)
			continue
		}
		args, end, ok := splitArgs(toks, j)
		if !ok {
			out = append(out, t)
			continue
		}
		substituted := pp.substituteFunctionLike(m, args)
		pp.expandDepth++
		expanding[t.Text] = true
		rescanned := pp.expand(substituted, expanding)
		delete(expanding, t.Text)
		pp.expandDepth--
		out = append(out, rescanned...)
		i = end
	}
	return out
}

// splitArgs reads the parenthesized argument list starting at
// toks[openIdx] (which must be "("), splitting on commas recognized
// only at top-level paren depth, and returns the
// index of the matching close paren.
func splitArgs(toks []ppTok, openIdx int) (args [][]ppTok, closeIdx int, ok bool) {
	depth := 0
	var cur []ppTok
	for i := openIdx; i < len(toks); i++ {
		switch toks[i].Text {
		case "(":
			depth++
			if depth == 1 {
				continue
			}
		case ")":
			depth--
			if depth == 0 {
				args = append(args, cur)
				return args, i, true
			}
		case ",":
			if depth == 1 {
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, toks[i])
	}
	return nil, 0, false
}

func (pp *Preprocessor) substituteFunctionLike(m *macro, args [][]ppTok) []ppTok {
	// Normalize a call with zero arguments against a zero-parameter
	// macro: splitArgs always returns one (possibly empty) argument.
	if len(m.params) == 0 && !m.variadic && len(args) == 1 && len(args[0]) == 0 {
		args = nil
	}

	paramIndex := map[string]int{}
	for i, p := range m.params {
		paramIndex[p] = i
	}

	argText := func(idx int) []ppTok {
		if idx < len(args) {
			return args[idx]
		}
		return nil
	}
	expandedArg := func(idx int) []ppTok {
		return pp.expand(append([]ppTok{}, argText(idx)...), map[string]bool{})
	}
	variadicArgs := func() []ppTok {
		if len(args) <= len(m.params) {
			return nil
		}
		var out []ppTok
		for i := len(m.params); i < len(args); i++ {
			if i > len(m.params) {
				out = append(out, ppTok{Kind: ppPunct, Text: ","})
			}
			out = append(out, args[i]...)
		}
		return out
	}

	var out []ppTok
	for i := 0; i < len(m.body); i++ {
		t := m.body[i]

		if t.Text == "#" && i+1 < len(m.body) && m.body[i+1].Kind == ppIdent {
			pname := m.body[i+1].Text
			var raw []ppTok
			if pname == "__VA_ARGS__" {
				raw = variadicArgs()
			} else if idx, ok := paramIndex[pname]; ok {
				raw = argText(idx)
			} else {
				out = append(out, t)
				continue
			}
			out = append(out, ppTok{Kind: ppStr, Text: stringize(raw)})
			i++
			continue
		}

		if t.Kind == ppIdent {
			var sub []ppTok
			isParam := false
			if t.Text == "__VA_ARGS__" {
				sub = variadicArgs()
				isParam = true
			} else if idx, ok := paramIndex[t.Text]; ok {
				isParam = true
				// Operand of ## uses the raw (unexpanded) argument;
				// otherwise the argument is macro-expanded first
				//.
				prevIsHash := i > 0 && m.body[i-1].Text == "##"
				nextIsHash := i+1 < len(m.body) && m.body[i+1].Text == "##"
				if prevIsHash || nextIsHash {
					sub = argText(idx)
				} else {
					sub = expandedArg(idx)
				}
			}
			if isParam {
				out = append(out, sub...)
				continue
			}
		}

		out = append(out, t)
	}
	return pp.concatenate(out)
}

// concatenate performs the `##` token-pasting pass: elide the
// operator and glue the textual spellings of its neighbors into one
// new token.
func (pp *Preprocessor) concatenate(toks []ppTok) []ppTok {
	var out []ppTok
	for i := 0; i < len(toks); i++ {
		if toks[i].Text == "##" && len(out) > 0 && i+1 < len(toks) {
			left := out[len(out)-1]
			right := toks[i+1]
			glued := left.Text + right.Text
			kind := ppOther
			if len(glued) > 0 && isIdentStart(rune(glued[0])) {
				kind = ppIdent
			} else if len(glued) > 0 && isDigit(rune(glued[0])) {
				kind = ppNum
			}
			out[len(out)-1] = ppTok{Kind: kind, Text: glued, SpaceBefore: left.SpaceBefore}
			i++ // skip right operand, already consumed
			continue
		}
		out = append(out, toks[i])
	}
	return out
}

// stringize implements the `#arg` operator: wrap the argument's
// spelling in quotes, backslash-escaping inner quotes and backslashes.
func stringize(toks []ppTok) string {
	raw := joinTokens(toks)
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range raw {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

var _ = fmt.Sprintf // keep fmt import available for future diagnostics formatting
