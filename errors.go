package c99js

import "fmt"

// DiagKind enumerates the compiler's error taxonomy. It is a kind,
// not an identifier: every diagnostic belongs to exactly one of these
// buckets and the CLI's exit code only cares whether any bucket other
// than warning-level severities was hit.
type DiagKind int

const (
	DiagIOError DiagKind = iota
	DiagPreprocessorError
	DiagLexError
	DiagParseError
	DiagTypeError
	DiagSemanticError
	DiagInternalError
)

func (k DiagKind) String() string {
	switch k {
	case DiagIOError:
		return "io-error"
	case DiagPreprocessorError:
		return "preprocessor-error"
	case DiagLexError:
		return "lex-error"
	case DiagParseError:
		return "parse-error"
	case DiagTypeError:
		return "type-error"
	case DiagSemanticError:
		return "semantic-error"
	case DiagInternalError:
		return "internal-error"
	default:
		return "unknown-error"
	}
}

// Severity distinguishes a warning (does not affect exit code) from an
// error (does).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported problem, with enough context to print
// `<file>:<line>:<col>: error: <message>`
type Diagnostic struct {
	Kind     DiagKind
	Severity Severity
	Message  string
	Range    Range
	Span     Span
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
}

// parseRecoverable is the internal error used by the parser to signal
// "this alternative didn't match, try the next one" without it being
// mistaken for a hard failure: a distinct type from the diagnostics
// that get surfaced, so Choice-like recovery can type-switch on it.
type parseRecoverable struct {
	Expected string
	Message  string
	Range    Range
}

func (e *parseRecoverable) Error() string {
	return fmt.Sprintf("expected %s: %s", e.Expected, e.Message)
}

// DiagChannel accumulates diagnostics across a stage instead of
// aborting on the first one: the stage keeps running, and only the
// error count at the stage boundary decides whether the pipeline
// continues.
type DiagChannel struct {
	lines  *LineIndex
	diags  []Diagnostic
	werror bool
}

func NewDiagChannel(lines *LineIndex) *DiagChannel {
	return &DiagChannel{lines: lines}
}

func (c *DiagChannel) Report(kind DiagKind, sev Severity, rg Range, format string, args ...any) {
	if sev == SevWarning && c.werror {
		sev = SevError
	}
	span := Span{}
	if c.lines != nil {
		span = c.lines.Span(rg)
	}
	c.diags = append(c.diags, Diagnostic{
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Range:    rg,
		Span:     span,
	})
}

// SetLines backfills the LineIndex used to resolve Span and
// retroactively recomputes every already-reported diagnostic's Span:
// preprocessor-stage diagnostics necessarily fire before the
// preprocessed text -- and hence its LineIndex -- exists.
func (c *DiagChannel) SetLines(lines *LineIndex) {
	c.lines = lines
	for i := range c.diags {
		c.diags[i].Span = lines.Span(c.diags[i].Range)
	}
}

func (c *DiagChannel) Error(kind DiagKind, rg Range, format string, args ...any) {
	c.Report(kind, SevError, rg, format, args...)
}

func (c *DiagChannel) Warning(kind DiagKind, rg Range, format string, args ...any) {
	c.Report(kind, SevWarning, rg, format, args...)
}

// ErrorCount returns the number of error-severity diagnostics, which is
// the failure condition every stage boundary checks before letting the
// pipeline continue.
func (c *DiagChannel) ErrorCount() int {
	n := 0
	for _, d := range c.diags {
		if d.Severity == SevError {
			n++
		}
	}
	return n
}

func (c *DiagChannel) HasErrors() bool { return c.ErrorCount() > 0 }

// PromoteWarningsToErrors implements `diag.werror`: every warning
// already reported starts counting toward ErrorCount/HasErrors, and any
// warning reported afterwards keeps doing so for the rest of this
// channel's life (Report consults c.werror, not just the severity it
// was called with).
func (c *DiagChannel) PromoteWarningsToErrors() {
	c.werror = true
	for i := range c.diags {
		if c.diags[i].Severity == SevWarning {
			c.diags[i].Severity = SevError
		}
	}
}

func (c *DiagChannel) Diagnostics() []Diagnostic { return c.diags }
