package c99js

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPreprocessor(t *testing.T, files map[string]string, mainPath string) (string, *DiagChannel) {
	t.Helper()
	diag := NewDiagChannel(nil)
	reader := func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, assert.AnError
		}
		return []byte(src), nil
	}
	pp := NewPreprocessor(diag, nil, reader)
	out, err := pp.Run(mainPath)
	require.NoError(t, err)
	return out, diag
}

func TestPredefinedStandardStreamMacros(t *testing.T) {
	src := "int a = stdin; int b = stdout; int c = stderr;"
	out, diag := runPreprocessor(t, map[string]string{"main.c": src}, "main.c")
	require.False(t, diag.HasErrors())
	assert.False(t, strings.Contains(out, "stdin"))
	assert.False(t, strings.Contains(out, "stdout"))
	assert.False(t, strings.Contains(out, "stderr"))
	assert.True(t, strings.Contains(out, "1"))
	assert.True(t, strings.Contains(out, "2"))
	assert.True(t, strings.Contains(out, "3"))
}

func TestPredefinedVaListMacro(t *testing.T) {
	src := "va_list args;"
	out, diag := runPreprocessor(t, map[string]string{"main.c": src}, "main.c")
	require.False(t, diag.HasErrors())
	assert.False(t, strings.Contains(out, "va_list"))
	assert.True(t, strings.Contains(out, "long"))
}
