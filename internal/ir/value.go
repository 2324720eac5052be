// Package ir implements the value arena, the IR instruction set and the
// AST-to-IR builder: the pre-SSA, basic-block-structured intermediate
// representation that sits between the (out-of-scope) semantic analyzer and
// the MC builder in internal/mc.
package ir

import (
	"fmt"
	"math"

	"github.com/armccomp/armcc/internal/types"
)

// ValueID is the arena index of a Value, stripped of type information.
type ValueID uint32

const invalidValueID ValueID = math.MaxUint32

// Value is a typed handle into a Module's value arena. The upper 32 bits
// hold the Type, the lower 32 the ValueID, so callers can inspect a value's
// type without an arena lookup.
type Value uint64

// ValueInvalid is the sentinel for "no value": its ID is invalidValueID (all
// ones), so it is not Value's zero value.
const ValueInvalid Value = Value(invalidValueID)

// ID returns the arena index this Value refers to.
func (v Value) ID() ValueID { return ValueID(v) }

// Type returns the type this Value was allocated with.
func (v Value) Type() *types.Type {
	idx := uint32(v >> 32)
	if idx == 0 {
		return nil
	}
	return typeTableInstance.byIndex[idx]
}

// Valid reports whether this is a real arena entry.
func (v Value) Valid() bool { return v.ID() != invalidValueID }

func (v Value) withType(t *types.Type) Value {
	return Value(v.ID()) | Value(typeTableInstance.indexOf(t))<<32
}

// typeTableInstance interns *types.Type <-> uint32 purely so Value can pack a
// type reference into its upper bits; it holds no compiler state.
var typeTableInstance = newValueTypeTable()

type valueTypeTable struct {
	byIndex []*types.Type
	index   map[*types.Type]uint32
}

func newValueTypeTable() *valueTypeTable {
	return &valueTypeTable{byIndex: []*types.Type{nil}, index: map[*types.Type]uint32{nil: 0}}
}

func (t *valueTypeTable) indexOf(ty *types.Type) uint32 {
	if i, ok := t.index[ty]; ok {
		return i
	}
	i := uint32(len(t.byIndex))
	t.byIndex = append(t.byIndex, ty)
	t.index[ty] = i
	return i
}

// ValueKind is the tag of the Value sum type.
type ValueKind byte

const (
	valueKindInvalid ValueKind = iota
	ValueKindConst
	ValueKindGlobalVariable
	ValueKindVariable
	ValueKindBasicBlock
	ValueKindFunction
	ValueKindInstruction
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindConst:
		return "const"
	case ValueKindGlobalVariable:
		return "global"
	case ValueKindVariable:
		return "variable"
	case ValueKindBasicBlock:
		return "block"
	case ValueKindFunction:
		return "function"
	case ValueKindInstruction:
		return "instruction"
	default:
		return "invalid"
	}
}

// ConstKind distinguishes the literal payload carried by a Const value.
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
)

// valueData is the arena record behind every Value. Heavy, mutable payloads
// (instruction lists, block pred/succ sets, function bodies) live in their
// own pools and are referenced here by index, so the value arena itself stays
// a flat, cheap-to-scan table.
type valueData struct {
	kind ValueKind
	name string

	// ValueKindConst
	constKind  ConstKind
	constInt   int64
	constFloat float64
	constBool  bool

	// ValueKindGlobalVariable
	globalInit ConstValue // ConstInt with Int 0 and no Elements means "zero-initialize" (bss)

	// ValueKindBasicBlock / Function / Instruction: index into the owning
	// pool.
	blockID BasicBlockID
	funcID  FunctionID
	instrID InstructionID
}

// ConstValue is a flattened constant, used both for scalar Const values and
// for global-variable initializers (including flattened array constants).
type ConstValue struct {
	Kind     ConstKind
	Int      int64
	Float    float64
	Bool     bool
	Elements []ConstValue // non-nil for a flattened array initializer
}

func (d *valueData) reset() { *d = valueData{} }

func (m *Module) newValue(kind ValueKind, ty *types.Type) Value {
	id := ValueID(m.values.Allocated())
	vd := m.values.Allocate()
	vd.kind = kind
	return (Value(id)).withType(ty)
}

// ValueKind returns the arena-recorded kind of v.
func (m *Module) ValueKind(v Value) ValueKind {
	return m.values.View(int(v.ID())).kind
}

// ValueName returns the debug name recorded for v, if any.
func (m *Module) ValueName(v Value) string {
	return m.values.View(int(v.ID())).name
}

func (v Value) String() string {
	return fmt.Sprintf("v%d", v.ID())
}
