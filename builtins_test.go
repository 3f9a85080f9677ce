package c99js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltinsErrnoHasFixedGlobalAddress(t *testing.T) {
	arena := NewArena()
	types := NewTypeRegistry(arena)
	syms := NewSymbolTable(arena)
	RegisterBuiltins(syms, arena, types)

	sym, ok := syms.Lookup("errno")
	require.True(t, ok)
	assert.True(t, sym.HasGlobal)
	assert.Equal(t, errnoAddr, sym.GlobalAddr)
	assert.Less(t, errnoAddr, globalRegionBase)
}

func TestRegisterBuiltinsDeclaresMathAndStdlibNames(t *testing.T) {
	arena := NewArena()
	types := NewTypeRegistry(arena)
	syms := NewSymbolTable(arena)
	RegisterBuiltins(syms, arena, types)

	for _, name := range []string{"sin", "sinf", "printf", "malloc", "strlen", "fopen"} {
		_, ok := syms.Lookup(name)
		assert.True(t, ok, "expected %s to be declared", name)
	}
}

func TestIsMathBuiltinAndIsStdlibBuiltin(t *testing.T) {
	assert.True(t, isMathBuiltin("sqrt"))
	assert.True(t, isMathBuiltin("sqrtf"))
	assert.False(t, isMathBuiltin("printf"))

	assert.True(t, isStdlibBuiltin("printf"))
	assert.False(t, isStdlibBuiltin("sqrt"))
}
