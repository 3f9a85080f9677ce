package c99js

import "os"

// CompileOptions configures one Compile invocation.
type CompileOptions struct {
	SearchDirs []string          // -I directories consulted by #include resolution
	Defines    map[string]string // -D name[=value], applied after the predefined set

	// Config holds the rest of the pipeline's settings (werror,
	// preprocess-only, optimize level, ...). A nil Config runs with
	// NewCompilerConfig's defaults.
	Config *CompilerConfig
}

// CompileResult is everything one Compile invocation produces. JS is
// only trustworthy once Diags.HasErrors() is false. Diagnostics
// accumulate within a stage, but Compile returns as soon as
// preprocessing, parsing or analysis has reported an error, so those
// results carry no JS; only errors reported by codegen itself leave JS
// set.
type CompileResult struct {
	JS    string
	AST   *ProgramNode
	Lines *LineIndex
	Diags *DiagChannel
}

// Compile runs the full pipeline over the file at path: preprocess,
// lex, parse, analyze, generate.
func Compile(path string, opts CompileOptions) *CompileResult {
	cfg := opts.Config
	if cfg == nil {
		cfg = NewCompilerConfig()
	}

	diag := NewDiagChannel(nil)
	if cfg.GetBool("diag.werror") {
		diag.PromoteWarningsToErrors()
	}

	pp := NewPreprocessor(diag, opts.SearchDirs, os.ReadFile)
	for name, value := range opts.Defines {
		pp.Define(name, value)
	}
	src, err := pp.Run(path)
	if err != nil {
		diag.Error(DiagIOError, Range{}, "%v", err)
		return &CompileResult{Diags: diag}
	}
	lines := NewLineIndex([]byte(src), pp.Markers())
	diag.SetLines(lines)
	if diag.HasErrors() {
		return &CompileResult{Lines: lines, Diags: diag}
	}
	if cfg.GetBool("preprocessOnly") {
		return &CompileResult{JS: src, Lines: lines, Diags: diag}
	}

	arena := NewArena()
	types := NewTypeRegistry(arena)
	syms := NewSymbolTable(arena)
	RegisterBuiltins(syms, arena, types)

	lex := NewLexer(src, diag)
	prog := ParseProgram(lex, diag, arena, types, syms)
	if diag.HasErrors() {
		return &CompileResult{AST: prog, Lines: lines, Diags: diag}
	}

	Analyze(prog, diag, types, syms, arena)
	if diag.HasErrors() {
		return &CompileResult{AST: prog, Lines: lines, Diags: diag}
	}

	js := Generate(prog, diag, types)
	return &CompileResult{JS: js, AST: prog, Lines: lines, Diags: diag}
}
