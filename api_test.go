package c99js

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) *CompileResult {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return Compile(path, CompileOptions{})
}

func TestCompileSuccess(t *testing.T) {
	tests := []struct {
		Name     string
		Source   string
		Contains []string
	}{
		{
			Name:     "trivial main",
			Source:   "int main(void) { return 0; }",
			Contains: []string{"function c$main(", "__rc = c$main()"},
		},
		{
			Name: "calls printf",
			Source: `int main(void) {
				printf("hello, %d\n", 42);
				return 0;
			}`,
			Contains: []string{"rt.printf("},
		},
		{
			Name: "struct passed by value",
			Source: `struct point { int x; int y; };
			int sum(struct point p) { return p.x + p.y; }
			int main(void) {
				struct point a;
				a.x = 1;
				a.y = 2;
				return sum(a);
			}`,
			Contains: []string{"function c$sum("},
		},
		{
			Name: "goto skips forward",
			Source: `int main(void) {
				int i = 0;
				goto done;
				i = 1;
			done:
				return i;
			}`,
			Contains: []string{"break L$0", "L$0:"},
		},
		{
			Name: "switch with fallthrough",
			Source: `int main(void) {
				int x = 1;
				switch (x) {
				case 1:
				case 2:
					return 2;
				default:
					return 0;
				}
			}`,
			Contains: []string{"switch ("},
		},
		{
			Name: "bitfield read and write",
			Source: `struct flags { unsigned a : 3; unsigned b : 5; };
			int main(void) {
				struct flags f;
				f.a = 5;
				f.b = 20;
				return f.a + f.b;
			}`,
			Contains: []string{"function c$main("},
		},
		{
			Name: "aggregate return value",
			Source: `struct point { int x; int y; };
			struct point origin(void) {
				struct point p;
				p.x = 0;
				p.y = 0;
				return p;
			}
			int main(void) {
				struct point p = origin();
				return p.x;
			}`,
			Contains: []string{"function c$origin($ret0)", "return $ret0;"},
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			result := compileSource(t, test.Source)
			require.False(t, result.Diags.HasErrors(), "unexpected diagnostics: %v", result.Diags.Diagnostics())
			for _, substr := range test.Contains {
				assert.Contains(t, result.JS, substr)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Source string
		Kind   DiagKind
	}{
		{
			Name:   "undeclared identifier",
			Source: "int main(void) { return undeclared_thing; }",
			Kind:   DiagSemanticError,
		},
		{
			Name:   "missing semicolon",
			Source: "int main(void) { return 0 }",
			Kind:   DiagParseError,
		},
		{
			Name:   "missing file",
			Source: "",
			Kind:   DiagIOError,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var result *CompileResult
			if test.Name == "missing file" {
				result = Compile(filepath.Join(t.TempDir(), "does-not-exist.c"), CompileOptions{})
			} else {
				result = compileSource(t, test.Source)
			}
			require.True(t, result.Diags.HasErrors())
			var found bool
			for _, d := range result.Diags.Diagnostics() {
				if d.Kind == test.Kind {
					found = true
				}
			}
			assert.True(t, found, "expected a %s diagnostic, got %v", test.Kind, result.Diags.Diagnostics())
		})
	}
}

func TestCompileDefinesAndIncludes(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "greet.h")
	require.NoError(t, os.WriteFile(headerPath, []byte("int greeting_code(void);"), 0o644))

	src := `#include "greet.h"
	int greeting_code(void) { return FLAG; }
	int main(void) { return greeting_code(); }`
	path := filepath.Join(dir, "input.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	result := Compile(path, CompileOptions{
		SearchDirs: []string{dir},
		Defines:    map[string]string{"FLAG": "7"},
	})
	require.False(t, result.Diags.HasErrors(), "unexpected diagnostics: %v", result.Diags.Diagnostics())
	assert.True(t, strings.Contains(result.JS, "function c$greeting_code("))
}

func TestCompileStandardStreamIdentifiers(t *testing.T) {
	result := compileSource(t, `int main(void) {
		fputs("hi\n", stdout);
		fputs("err\n", stderr);
		return 0;
	}`)
	require.False(t, result.Diags.HasErrors(), "unexpected diagnostics: %v", result.Diags.Diagnostics())
	assert.Contains(t, result.JS, "rt.fputs(")
}

func TestCompilePreprocessOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.c")
	require.NoError(t, os.WriteFile(path, []byte("int x = FOO;"), 0o644))

	cfg := NewCompilerConfig()
	cfg.SetBool("preprocessOnly", true)
	result := Compile(path, CompileOptions{Defines: map[string]string{"FOO": "9"}, Config: cfg})

	require.False(t, result.Diags.HasErrors())
	assert.Empty(t, result.AST)
	assert.False(t, strings.Contains(result.JS, "function c$"))
}

func TestCompileWerrorPromotesWarnings(t *testing.T) {
	diag := NewDiagChannel(nil)
	diag.PromoteWarningsToErrors()
	diag.Warning(DiagSemanticError, Range{}, "implicit conversion")
	assert.True(t, diag.HasErrors())
	assert.Equal(t, SevError, diag.Diagnostics()[0].Severity)
}

func TestCompileResultCarriesLineIndex(t *testing.T) {
	result := compileSource(t, "int main(void) { return 0 }")
	require.True(t, result.Diags.HasErrors())
	require.NotNil(t, result.Lines)
	for _, d := range result.Diags.Diagnostics() {
		assert.NotEmpty(t, d.Span.String())
	}
}
