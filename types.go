package c99js

import "strconv"

// TypeKind is the tag of the Type discriminated union: a sum type
// dispatched by a kind field over a class hierarchy, matching the
// AST's own kind/visitor dispatch rather than fragmenting fields
// across subclasses.
type TypeKind int

const (
	KVoid TypeKind = iota
	KBool
	KChar
	KShort
	KInt
	KLong
	KLongLong
	KFloat
	KDouble
	KLongDouble
	KEnum
	KPointer
	KArray
	KVLA
	KStruct
	KUnion
	KFunction
	KComplex
)

func (k TypeKind) String() string {
	names := [...]string{
		"void", "bool", "char", "short", "int", "long", "long long",
		"float", "double", "long double", "enum", "pointer", "array",
		"vla", "struct", "union", "function", "complex",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Qualifier is a bitset of the three C99 type qualifiers.
type Qualifier int

const (
	QConst Qualifier = 1 << iota
	QVolatile
	QRestrict
)

// Member describes one field of a struct/union, after anonymous
// struct/union flattening.
type Member struct {
	Name      string
	Type      *Type
	Offset    int
	BitWidth  int // -1 when not a bitfield
	BitOffset int
	Index     int
}

// Param is one parameter of a function type.
type Param struct {
	Name string
	Type *Type
}

// EnumConst is one enumerator of an enum type; the symbol table also
// binds it as an ordinary int-typed identifier.
type EnumConst struct {
	Name  string
	Value int64
}

// Type is the tagged variant over every C type kind // describes. Not every field applies to every Kind; see the
// kind-specific comments below.
type Type struct {
	Kind       TypeKind
	Size       int // bytes
	Align      int // bytes
	Signed     bool
	Qualifiers Qualifier
	Inline     bool // function only

	// ptr / array / vla / complex
	Base *Type

	// array / vla
	ArrayLen int // -1 == incomplete (unknown bound)
	VLASize  Node

	// struct / union
	Tag          string
	Members      []*Member
	HasFlexArray bool
	complete     bool

	// function
	Return     *Type
	Params     []*Param
	Variadic   bool
	OldStyleKR bool

	// enum
	EnumConsts []*EnumConst
}

func (t *Type) IsComplete() bool {
	switch t.Kind {
	case KVoid:
		return false
	case KArray:
		return t.ArrayLen >= 0
	case KStruct, KUnion:
		return t.complete
	default:
		return true
	}
}

func (t *Type) Unqualified() *Type {
	if t.Qualifiers == 0 {
		return t
	}
	clone := *t
	clone.Qualifiers = 0
	return &clone
}

func (t *Type) IsQualified(q Qualifier) bool { return t.Qualifiers&q != 0 }

func (t *Type) IsInteger() bool {
	switch t.Kind {
	case KBool, KChar, KShort, KInt, KLong, KLongLong, KEnum:
		return true
	}
	return false
}

func (t *Type) IsFloating() bool {
	switch t.Kind {
	case KFloat, KDouble, KLongDouble:
		return true
	}
	return false
}

func (t *Type) IsArithmetic() bool { return t.IsInteger() || t.IsFloating() }

func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.Kind == KPointer
}

func (t *Type) IsAggregate() bool { return t.Kind == KStruct || t.Kind == KUnion }

func (t *Type) IsPointerLike() bool {
	return t.Kind == KPointer || t.Kind == KArray || t.Kind == KVLA
}

// Rank orders integer types for the usual arithmetic conversions
//. Equal rank, different signedness is resolved by the
// caller per the "unsigned wins unless signed dominates" rule.
func (t *Type) Rank() int {
	switch t.Kind {
	case KBool:
		return 0
	case KChar:
		return 1
	case KShort:
		return 2
	case KInt, KEnum:
		return 3
	case KLong:
		return 4
	case KLongLong:
		return 5
	}
	return -1
}

// --- Primitive singletons: one process-wide instance per basic type, compared by identity ---

var (
	TyVoid       = &Type{Kind: KVoid}
	TyBool       = &Type{Kind: KBool, Size: 1, Align: 1, Signed: false}
	TyChar       = &Type{Kind: KChar, Size: 1, Align: 1, Signed: true}
	TyUChar      = &Type{Kind: KChar, Size: 1, Align: 1, Signed: false}
	TyShort      = &Type{Kind: KShort, Size: 2, Align: 2, Signed: true}
	TyUShort     = &Type{Kind: KShort, Size: 2, Align: 2, Signed: false}
	TyInt        = &Type{Kind: KInt, Size: 4, Align: 4, Signed: true}
	TyUInt       = &Type{Kind: KInt, Size: 4, Align: 4, Signed: false}
	TyLong       = &Type{Kind: KLong, Size: 4, Align: 4, Signed: true}
	TyULong      = &Type{Kind: KLong, Size: 4, Align: 4, Signed: false}
	TyLongLong   = &Type{Kind: KLongLong, Size: 8, Align: 8, Signed: true}
	TyULongLong  = &Type{Kind: KLongLong, Size: 8, Align: 8, Signed: false}
	TyFloat      = &Type{Kind: KFloat, Size: 4, Align: 4, Signed: true}
	TyDouble     = &Type{Kind: KDouble, Size: 8, Align: 8, Signed: true}
	TyLongDouble = &Type{Kind: KLongDouble, Size: 8, Align: 8, Signed: true}
)

// TypeRegistry constructs derived types (pointer, array, function,
// struct, union, enum) for one compilation, owned by the Arena.
// Primitive types are the package-level singletons above; this is
// only a factory for the kind-specific constructors. Pointers are
// fixed at 4 bytes, long at 4, long long at 8, matching a 32-bit flat
// address space with 64-bit wide-integer support carried via BigInt.
type TypeRegistry struct {
	arena *Arena
}

func NewTypeRegistry(arena *Arena) *TypeRegistry {
	return &TypeRegistry{arena: arena}
}

func (r *TypeRegistry) Pointer(base *Type) *Type {
	return r.arena.newType(&Type{Kind: KPointer, Size: 4, Align: 4, Base: base})
}

// Array returns an array type of the given base and length; len < 0
// means incomplete.
func (r *TypeRegistry) Array(base *Type, length int) *Type {
	t := &Type{Kind: KArray, Base: base, ArrayLen: length, Align: base.Align}
	if length >= 0 {
		t.Size = base.Size * length
	}
	return r.arena.newType(t)
}

func (r *TypeRegistry) VLA(base *Type, sizeExpr Node) *Type {
	return r.arena.newType(&Type{Kind: KVLA, Base: base, ArrayLen: -1, VLASize: sizeExpr, Align: base.Align})
}

// Function returns a function type. Each call returns a fresh Type
// object; function types are compared structurally by Compatible, not
// by identity (there is no tag namespace for them).
func (r *TypeRegistry) Function(ret *Type, params []*Param, variadic, oldStyleKR bool) *Type {
	return r.arena.newType(&Type{
		Kind: KFunction, Return: ret, Params: params,
		Variadic: variadic, OldStyleKR: oldStyleKR,
	})
}

// NewTag allocates a brand new, incomplete struct/union type object
// for tag `name` (empty for anonymous). A tag in one scope resolves to
// exactly one Type object; that identity is simply "this particular
// *Type pointer", which is why every call here returns a fresh object
// rather than interning by name.
func (r *TypeRegistry) NewTag(kind TypeKind, name string) *Type {
	return r.arena.newType(&Type{Kind: kind, Tag: name})
}

func (r *TypeRegistry) NewEnum(name string) *Type {
	return r.arena.newType(&Type{Kind: KEnum, Tag: name, Size: 4, Align: 4, Signed: true})
}

// CompleteStructUnion records the already-computed member layout (see
// parseMemberList in parser_decl.go) and marks the type complete.
func (r *TypeRegistry) CompleteStructUnion(t *Type, members []*Member, size, align int, hasFlex bool) {
	t.Members = members
	t.Size = size
	t.Align = align
	t.HasFlexArray = hasFlex
	t.complete = true
}

// FindMember looks up a (possibly flattened-in) member by name.
func (t *Type) FindMember(name string) (*Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// TypeName renders a human-readable rendition of t, used by
// diagnostics and the --dump-ast printer. It is not used by the code
// generator, which never needs to print a C type back out.
func TypeName(t *Type) string {
	if t == nil {
		return "<nil>"
	}
	prefix := ""
	if t.IsQualified(QConst) {
		prefix += "const "
	}
	if t.IsQualified(QVolatile) {
		prefix += "volatile "
	}
	switch t.Kind {
	case KPointer:
		return prefix + TypeName(t.Base) + "*"
	case KArray:
		if t.ArrayLen < 0 {
			return prefix + TypeName(t.Base) + "[]"
		}
		return prefix + TypeName(t.Base) + "[" + strconv.Itoa(t.ArrayLen) + "]"
	case KVLA:
		return prefix + TypeName(t.Base) + "[*]"
	case KStruct:
		if t.Tag != "" {
			return prefix + "struct " + t.Tag
		}
		return prefix + "struct <anonymous>"
	case KUnion:
		if t.Tag != "" {
			return prefix + "union " + t.Tag
		}
		return prefix + "union <anonymous>"
	case KEnum:
		if t.Tag != "" {
			return prefix + "enum " + t.Tag
		}
		return prefix + "enum <anonymous>"
	case KFunction:
		s := TypeName(t.Return) + "("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += TypeName(p.Type)
		}
		if t.Variadic {
			if len(t.Params) > 0 {
				s += ", "
			}
			s += "..."
		}
		return prefix + s + ")"
	default:
		sign := ""
		if !t.Signed && t.IsInteger() && t.Kind != KBool {
			sign = "unsigned "
		}
		return prefix + sign + t.Kind.String()
	}
}

// Compatible implements C99's type compatibility relation: reflexive
// and symmetric, with transitivity holding for identical type kinds.
// Qualified and unqualified variants of the same type are compatible
// for assignment purposes.
func Compatible(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		// void* is compatible with any object pointer for assignment
		// purposes; that's handled by the caller (sema's assignment
		// conversion), not here -- Compatible is strict type identity.
		return false
	}
	switch a.Kind {
	case KPointer:
		return Compatible(a.Base, b.Base)
	case KArray:
		if a.ArrayLen >= 0 && b.ArrayLen >= 0 && a.ArrayLen != b.ArrayLen {
			return false
		}
		return Compatible(a.Base, b.Base)
	case KFunction:
		if !Compatible(a.Return, b.Return) {
			return false
		}
		if a.Variadic != b.Variadic {
			return false
		}
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Compatible(a.Params[i].Type, b.Params[i].Type) {
				return false
			}
		}
		return true
	case KStruct, KUnion, KEnum:
		// Tagged types only compare compatible by identity: two
		// distinct Type objects, even with an identical tag name and
		// layout declared in different scopes, are incompatible.
		return false
	default:
		return a.Signed == b.Signed
	}
}
