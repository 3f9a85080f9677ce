package c99js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagChannelSetLinesBackfillsSpans(t *testing.T) {
	diag := NewDiagChannel(nil)

	// Reported before any LineIndex exists, as the preprocessor does:
	// Span must come back zero-valued until SetLines runs.
	diag.Error(DiagPreprocessorError, NewRange(5, 8), "bad macro")
	require.Len(t, diag.Diagnostics(), 1)
	assert.Equal(t, Span{}, diag.Diagnostics()[0].Span)

	src := []byte("line one\nline two\nline three\n")
	diag.SetLines(NewLineIndex(src, nil))

	got := diag.Diagnostics()[0].Span
	assert.NotEqual(t, Span{}, got)
	assert.Equal(t, int32(1), got.Start.Line)

	// Diagnostics reported after SetLines are resolved immediately.
	diag.Error(DiagSemanticError, NewRange(9, 13), "bad reference")
	assert.Equal(t, int32(2), diag.Diagnostics()[1].Span.Start.Line)
}

func TestDiagChannelErrorCount(t *testing.T) {
	diag := NewDiagChannel(nil)
	assert.False(t, diag.HasErrors())

	diag.Warning(DiagSemanticError, Range{}, "just a warning")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, 0, diag.ErrorCount())

	diag.Error(DiagTypeError, Range{}, "a real problem")
	assert.True(t, diag.HasErrors())
	assert.Equal(t, 1, diag.ErrorCount())
}
