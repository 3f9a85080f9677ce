package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/espresso3389/c99js"
	"github.com/spf13/cobra"
)

var (
	outDir         string
	includeDir     []string
	defines        []string
	dumpAST        bool
	noColor        bool
	werror         bool
	preprocessOnly bool
)

var severityStyle = map[string]lipgloss.Style{
	"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
}

var locStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

var rootCmd = &cobra.Command{
	Use:   "c99js <input.c>",
	Short: "Translate a freestanding C99 translation unit into a JavaScript module",
	Long: `c99js compiles a single C99 source file into a CommonJS module that
runs the translated program against a small JS runtime (runtime/prelude.js),
emulating a flat addressable memory with malloc/free, the printf/scanf
family, and the rest of the allowlisted standard library surface.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the generated module and runtime into")
	rootCmd.Flags().StringArrayVarP(&includeDir, "include", "I", nil, "additional #include search directory (repeatable)")
	rootCmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "predefine name[=value] (repeatable)")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST to stderr instead of writing a module")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.Flags().BoolVar(&werror, "werror", false, "treat warnings as errors")
	rootCmd.Flags().BoolVarP(&preprocessOnly, "preprocess-only", "E", false, "stop after preprocessing and print the expanded source")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	colored := !noColor && isTerminal(os.Stderr)

	cfg := c99js.NewCompilerConfig()
	cfg.SetBool("diag.werror", werror)
	cfg.SetBool("preprocessOnly", preprocessOnly)
	cfg.SetString("output.path", outDir)

	opts := c99js.CompileOptions{
		SearchDirs: includeDir,
		Defines:    parseDefines(defines),
		Config:     cfg,
	}
	result := c99js.Compile(path, opts)
	printDiagnostics(result.Diags, colored)

	if result.Diags.HasErrors() {
		os.Exit(1)
	}

	if preprocessOnly {
		fmt.Println(result.JS)
		return nil
	}

	if dumpAST {
		fmt.Fprintln(os.Stderr, c99js.Print(result.AST, result.Lines, colored))
		return nil
	}

	return writeModule(path, result)
}

// parseDefines splits each -D name[=value] flag into the map Compile
// expects, defaulting a bare "name" to "1" the way cc's -D does.
func parseDefines(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for _, d := range raw {
		if name, value, ok := strings.Cut(d, "="); ok {
			out[name] = value
		} else {
			out[d] = "1"
		}
	}
	return out
}

// writeModule writes the generated JS plus a copy of the embedded
// runtime beside it, so the module's require("./runtime/prelude.js")
// resolves without the caller needing to locate c99js's own install.
func writeModule(srcPath string, result *c99js.CompileResult) error {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	jsPath := filepath.Join(outDir, base+".js")
	runtimeDir := filepath.Join(outDir, "runtime")

	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", runtimeDir, err)
	}
	if err := os.WriteFile(filepath.Join(runtimeDir, "prelude.js"), []byte(c99js.PreludeJS), 0o644); err != nil {
		return fmt.Errorf("writing runtime: %w", err)
	}
	if err := os.WriteFile(jsPath, []byte(result.JS), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", jsPath, err)
	}
	return nil
}

func printDiagnostics(diags *c99js.DiagChannel, colored bool) {
	for _, d := range diags.Diagnostics() {
		sev := d.Severity.String()
		style := severityStyle[sev]
		loc := d.Span.String()
		if !colored {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", loc, sev, d.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", locStyle.Render(loc), style.Render(sev), d.Message)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
