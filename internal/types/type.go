// Package types implements the C-like type system shared by the IR and MC
// builders: builtin scalars, pointers, constant-sized arrays, function
// signatures and records, with size and base-type queries.
package types

import "fmt"

// Kind is the tag of the Type sum type.
type Kind byte

const (
	kindInvalid Kind = iota
	KindBuiltin
	KindPointer
	KindArray
	KindFunction
	KindRecord
)

// Builtin enumerates the scalar builtin types.
type Builtin byte

const (
	builtinInvalid Builtin = iota
	Void
	Bool
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Int64
	UInt64
	Float
	Double
)

var builtinNames = map[Builtin]string{
	Void: "void", Bool: "bool", Char: "char", UChar: "uchar",
	Short: "short", UShort: "ushort", Int: "int", UInt: "uint",
	Int64: "int64", UInt64: "uint64", Float: "float", Double: "double",
}

var builtinSizes = map[Builtin]int{
	Void: 0, Bool: 4, Char: 1, UChar: 1,
	Short: 2, UShort: 2, Int: 4, UInt: 4,
	Int64: 8, UInt64: 8, Float: 4, Double: 8,
}

func (b Builtin) String() string { return builtinNames[b] }

// IsFloat reports whether the builtin is a VFP-resident floating type.
func (b Builtin) IsFloat() bool { return b == Float || b == Double }

// IsInt reports whether the builtin occupies an integer/pointer register.
func (b Builtin) IsInt() bool { return !b.IsFloat() && b != Void }

// Type is a closed sum type over the C-like type grammar. Composite variants
// (Pointer, Array, Function) hold pointers into the owning Table's arena
// rather than embedding, so types form a DAG without copying.
type Type struct {
	kind Kind

	builtin Builtin

	// Pointer
	elem *Type

	// Array
	arrayElem     *Type
	arrayLen      int // 0 for incomplete
	arrayComplete bool

	// Function
	sig *Signature

	// Record
	record *RecordType
}

// Signature describes a function's parameter and result types.
type Signature struct {
	Params  []*Type
	Results []*Type // 0 or 1 element: this C subset has at most one return value.
	Variadic bool
}

// RecordType describes a struct's named, ordered fields.
type RecordType struct {
	Name   string
	Fields []RecordField
}

// RecordField is one member of a RecordType.
type RecordField struct {
	Name   string
	Type   *Type
	Offset int
}

func (t *Type) Kind() Kind { return t.kind }

func (t *Type) IsBuiltin() bool  { return t.kind == KindBuiltin }
func (t *Type) IsPointer() bool  { return t.kind == KindPointer }
func (t *Type) IsArray() bool    { return t.kind == KindArray }
func (t *Type) IsFunction() bool { return t.kind == KindFunction }
func (t *Type) IsRecord() bool   { return t.kind == KindRecord }

// Builtin returns the builtin tag; only valid when IsBuiltin.
func (t *Type) Builtin() Builtin { return t.builtin }

// Elem returns the pointee type; only valid when IsPointer.
func (t *Type) Elem() *Type { return t.elem }

// ArrayElem returns the element type; only valid when IsArray.
func (t *Type) ArrayElem() *Type { return t.arrayElem }

// ArrayLen returns the declared element count; only meaningful when
// ArrayComplete is true.
func (t *Type) ArrayLen() int { return t.arrayLen }

// ArrayComplete reports whether the array has a known constant size, as
// opposed to an incomplete array type (e.g. a bare `int a[]` parameter).
func (t *Type) ArrayComplete() bool { return t.arrayComplete }

// Signature returns the function signature; only valid when IsFunction.
func (t *Type) Signature() *Signature { return t.sig }

// Record returns the record description; only valid when IsRecord.
func (t *Type) Record() *RecordType { return t.record }

// IsInt reports whether values of this type live in an integer register.
func (t *Type) IsInt() bool {
	switch t.kind {
	case KindBuiltin:
		return t.builtin.IsInt()
	case KindPointer:
		return true
	default:
		return false
	}
}

// IsFloat reports whether values of this type live in a VFP register.
func (t *Type) IsFloat() bool {
	return t.kind == KindBuiltin && t.builtin.IsFloat()
}

// Size returns the type's size in bytes. Incomplete arrays and void have
// size 0; callers must not allocate storage for them.
func (t *Type) Size() int {
	switch t.kind {
	case KindBuiltin:
		return builtinSizes[t.builtin]
	case KindPointer:
		return 4 // ARM-family: pointers are one word.
	case KindArray:
		if !t.arrayComplete {
			return 0
		}
		return t.arrayLen * t.arrayElem.Size()
	case KindFunction:
		return 0
	case KindRecord:
		size := 0
		for _, f := range t.record.Fields {
			end := f.Offset + f.Type.Size()
			if end > size {
				size = end
			}
		}
		return size
	default:
		return 0
	}
}

func (t *Type) String() string {
	switch t.kind {
	case KindBuiltin:
		return t.builtin.String()
	case KindPointer:
		return t.elem.String() + "*"
	case KindArray:
		if t.arrayComplete {
			return fmt.Sprintf("%s[%d]", t.arrayElem, t.arrayLen)
		}
		return fmt.Sprintf("%s[]", t.arrayElem)
	case KindFunction:
		return "fn(...)"
	case KindRecord:
		return "struct " + t.record.Name
	default:
		return "invalid"
	}
}

// Table interns Type values so that structurally identical types (e.g. two
// uses of `int*`) share one *Type, the way the IR arena shares Values.
type Table struct {
	builtins  map[Builtin]*Type
	pointers  map[*Type]*Type
	functions []*Type
	records   []*Type
}

// NewTable returns a Table with the builtin scalar types pre-interned.
func NewTable() *Table {
	tbl := &Table{
		builtins: make(map[Builtin]*Type, 12),
		pointers: make(map[*Type]*Type),
	}
	for b := range builtinNames {
		tbl.builtins[b] = &Type{kind: KindBuiltin, builtin: b}
	}
	return tbl
}

// Builtin returns the interned Type for a builtin scalar.
func (tbl *Table) Builtin(b Builtin) *Type { return tbl.builtins[b] }

// Pointer returns the (interned) pointer-to-elem type.
func (tbl *Table) Pointer(elem *Type) *Type {
	if p, ok := tbl.pointers[elem]; ok {
		return p
	}
	p := &Type{kind: KindPointer, elem: elem}
	tbl.pointers[elem] = p
	return p
}

// Array returns a constant-sized array type. Array types are not interned:
// array declarations are per-site and the builder is free to mutate the
// returned Type's arrayLen only before it escapes this constructor.
func (tbl *Table) Array(elem *Type, length int) *Type {
	return &Type{kind: KindArray, arrayElem: elem, arrayLen: length, arrayComplete: true}
}

// IncompleteArray returns an array type with no known length.
func (tbl *Table) IncompleteArray(elem *Type) *Type {
	return &Type{kind: KindArray, arrayElem: elem, arrayComplete: false}
}

// Function returns a function type for the given signature.
func (tbl *Table) Function(sig *Signature) *Type {
	t := &Type{kind: KindFunction, sig: sig}
	tbl.functions = append(tbl.functions, t)
	return t
}

// Record returns a struct type, computing field offsets in declaration
// order with natural alignment equal to each field's size (capped at 4
// bytes, matching the ARM-family EABI used elsewhere in this module).
func (tbl *Table) Record(name string, fieldNames []string, fieldTypes []*Type) *Type {
	fields := make([]RecordField, len(fieldNames))
	offset := 0
	for i, fn := range fieldNames {
		ft := fieldTypes[i]
		align := ft.Size()
		if align > 4 {
			align = 4
		}
		if align > 0 && offset%align != 0 {
			offset += align - offset%align
		}
		fields[i] = RecordField{Name: fn, Type: ft, Offset: offset}
		offset += ft.Size()
	}
	t := &Type{kind: KindRecord, record: &RecordType{Name: name, Fields: fields}}
	tbl.records = append(tbl.records, t)
	return t
}
