package ir

import "github.com/armccomp/armcc/internal/types"

// FunctionID is the arena index of a Function.
type FunctionID uint32

// function is the mutable payload behind a ValueKindFunction Value.
type function struct {
	id         FunctionID
	name       string
	retTy      *types.Type
	params     []Value // Variable values, the incoming ABI-level arguments
	isExternal bool
	isVariadic bool

	blocks []BasicBlockID
	entry  BasicBlockID
}

func (f *function) reset() { *f = function{id: f.id} }

// Function is the read-only view of a function handed to consumers outside
// the builder.
type Function struct {
	m  *Module
	id FunctionID
}

func (f Function) ID() FunctionID { return f.id }

func (f Function) raw() *function { return f.m.functions.View(int(f.id)) }

// Name returns the function's declared name.
func (f Function) Name() string { return f.raw().name }

// ReturnType returns the function's declared return type.
func (f Function) ReturnType() *types.Type { return f.raw().retTy }

// Params returns the incoming parameter Values, in declaration order.
func (f Function) Params() []Value { return f.raw().params }

// IsExternal reports whether this function has no body (a declaration
// only, e.g. a libc call the program links against).
func (f Function) IsExternal() bool { return f.raw().isExternal }

// IsVariadic reports whether the function's last parameter is a variadic
// tail, consulted by the MC builder's call-site ABI resolution.
func (f Function) IsVariadic() bool { return f.raw().isVariadic }

// Blocks returns the function's basic blocks, in the order they were
// appended.
func (f Function) Blocks() []BasicBlock {
	raw := f.raw().blocks
	out := make([]BasicBlock, len(raw))
	for i, id := range raw {
		out[i] = f.m.block(id)
	}
	return out
}

// Entry returns the function's entry block. Invalid for an external
// function.
func (f Function) Entry() BasicBlock { return f.m.block(f.raw().entry) }

func (m *Module) function(id FunctionID) Function { return Function{m: m, id: id} }
