package c99js

// builtins.go pre-declares the fixed allowlist of standard-library and
// math functions a translation unit may call even though the headers
// that would normally declare them are replaced by an empty
// translation (spec: "Header substitution"). Declaring them as
// ordinary extern SymFunc bindings before parsing starts lets the
// parser and semantic analyzer treat a call to `printf` exactly like
// a call to any other previously-declared function, instead of
// special-casing "undeclared identifier that happens to be a known
// name" throughout the front end. The code generator consults the
// same tables (isMathBuiltin, isStdlibBuiltin) to decide whether a
// direct call lowers to Math.*, an rt.* shim, or a plain generated
// function call.

// mathBuiltinNames is the fixed allowlist of libm functions (plus their
// "f"-suffixed float variants) lowered directly to Math.*.
var mathBuiltinNames = []string{
	"sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh", "exp", "log", "log10", "log2",
	"pow", "sqrt", "cbrt", "floor", "ceil", "fabs", "fmod",
	"round", "trunc", "hypot",
}

// stdlibBuiltinReturn maps every non-math runtime shim named in
// stdlibBuiltinNames to the return type used for its builtin
// declaration. Parameters are left empty and the declaration is
// marked variadic so every actual argument goes through the default
// argument promotions (spec §4.5 "Varargs") rather than a fixed
// parameter list c99js does not know precisely without the real libc
// headers.
func stdlibBuiltinReturn(types *TypeRegistry, name string) *Type {
	switch name {
	case "malloc", "calloc", "realloc", "memcpy", "memmove", "memset",
		"strcpy", "strncpy", "strcat", "strncat", "strchr", "strrchr", "strstr", "strdup":
		return types.Pointer(TyVoid)
	case "atof", "strtod":
		return TyDouble
	case "atol", "strtol", "strtoul", "ftell", "time", "clock":
		return TyLong
	case "feof", "ferror":
		return TyInt
	case "fopen":
		return types.Pointer(TyVoid)
	case "exit", "abort", "free", "fclose", "rewind", "perror":
		return TyVoid
	default:
		return TyInt
	}
}

var stdlibBuiltinNames = []string{
	// printf / scanf family
	"printf", "fprintf", "sprintf", "snprintf", "vprintf", "vfprintf", "vsprintf",
	"scanf", "sscanf", "fscanf",
	// malloc family
	"malloc", "free", "calloc", "realloc",
	// str*
	"strlen", "strcpy", "strncpy", "strcat", "strncat", "strcmp", "strncmp",
	"strchr", "strrchr", "strstr", "strdup", "strtol", "strtoul", "strtod",
	// mem*
	"memcpy", "memmove", "memset", "memcmp",
	// ctype
	"isalpha", "isdigit", "isalnum", "isspace", "isupper", "islower", "ispunct", "isxdigit",
	"toupper", "tolower",
	// atoi/atof/exit/assert
	"atoi", "atof", "atol", "exit", "abort", "assert",
	// FILE I/O
	"fopen", "fclose", "fread", "fwrite", "fputs", "fputc", "fgets", "fgetc",
	"feof", "ferror", "fseek", "ftell", "rewind",
	// time / errno shims
	"time", "clock", "perror", "strerror",
}

func isMathBuiltin(name string) bool {
	for _, m := range mathBuiltinNames {
		if name == m || name == m+"f" {
			return true
		}
	}
	return false
}

func isStdlibBuiltin(name string) bool {
	for _, s := range stdlibBuiltinNames {
		if name == s {
			return true
		}
	}
	return false
}

// RegisterBuiltins declares every allowlisted function plus the
// builtin `errno` extern int into the translation unit's file scope,
// before parsing begins, so ordinary name lookup finds them.
// `errno` is a pre-declared extern symbol rather than a preprocessor
// macro because the code generator needs lvalue read/write semantics
// through the runtime's errno memory cell (errnoAddr below, the same
// address runtime/prelude.js uses), not textual substitution.
func RegisterBuiltins(syms *SymbolTable, arena *Arena, types *TypeRegistry) {
	declareFn := func(name string, ret *Type) {
		ty := types.Function(ret, nil, true, false)
		syms.Declare(name, arena.newSymbol(&Symbol{Name: name, Kind: SymFunc, Type: ty, Storage: SCExtern, Defined: true}))
	}
	for _, name := range mathBuiltinNames {
		declareFn(name, TyDouble)
		declareFn(name+"f", TyFloat)
	}
	for _, name := range stdlibBuiltinNames {
		declareFn(name, stdlibBuiltinReturn(types, name))
	}
	// errno never appears in the program's own declaration list (it is
	// injected straight into the symbol table, not the AST), so
	// assignAddresses -- which only walks ProgramNode.Decls -- would
	// never reserve it a global slot. Give it one of the fixed low
	// addresses codegen.go's global region reserves below
	// globalRegionBase for exactly this kind of runtime cell.
	syms.Declare("errno", arena.newSymbol(&Symbol{
		Name: "errno", Kind: SymVar, Type: TyInt, Storage: SCExtern, Defined: true,
		GlobalAddr: errnoAddr, HasGlobal: true,
	}))
}

// errnoAddr is the fixed byte offset of the runtime's errno cell,
// inside the low reserved region below globalRegionBase (4096).
const errnoAddr = 4
