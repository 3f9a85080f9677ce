package c99js

import "fmt"

// CompilerConfig is a stringly-keyed, type-tagged settings bag read by
// Compile (api.go); the preprocessor, parser and code generator are not
// handed it. A small
// type-checked map is enough here, and panicking on a type mismatch
// is deliberate (it is a programming error in the compiler itself,
// never a user-facing one — those go through DiagChannel instead).
type CompilerConfig map[string]*cfgVal

// NewCompilerConfig returns a configuration primed with the defaults
// every stage of the pipeline expects to find.
func NewCompilerConfig() *CompilerConfig {
	m := make(CompilerConfig)
	m.SetInt("codegen.optimize", 1)
	m.SetBool("codegen.dumpAST", false)
	m.SetBool("diag.werror", false)
	m.SetString("diag.color", "auto")
	m.SetString("output.path", "")
	m.SetBool("preprocessOnly", false)
	return &m
}

type cfgValType int

const (
	cfgValUndefined cfgValType = iota
	cfgValBool
	cfgValInt
	cfgValString
	cfgValStringSlice
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValUndefined:   "undefined",
		cfgValBool:        "bool",
		cfgValInt:         "int",
		cfgValString:      "string",
		cfgValStringSlice: "[]string",
	}[vt]
}

type cfgVal struct {
	typ        cfgValType
	asBool     bool
	asInt      int
	asString   string
	asStrSlice []string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValUndefined {
		panic(fmt.Sprintf("can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *CompilerConfig) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValBool)
	(*c)[path].asBool = v
}

func (c *CompilerConfig) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValInt)
	(*c)[path].asInt = v
}

func (c *CompilerConfig) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValString)
	(*c)[path].asString = v
}

func (c *CompilerConfig) SetStringSlice(path string, v []string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValStringSlice)
	(*c)[path].asStrSlice = v
}

func (c *CompilerConfig) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *CompilerConfig) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *CompilerConfig) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValString)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}

func (c *CompilerConfig) GetStringSlice(path string) []string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValStringSlice)
		return val.asStrSlice
	}
	panic(fmt.Sprintf("[]string setting `%s` does not exist", path))
}
