package mc

import "github.com/armccomp/armcc/internal/ir"

// AsmModule is the MC-side mirror of an ir.Module, exposing initialised
// globals, zero-initialised (bss) globals, and functions.
type AsmModule struct {
	Globals    []*AsmGlobal
	BSSGlobals []*AsmGlobal
	Functions  []*AsmFunction
}

// AsmGlobal is one global variable's MC-side representation.
type AsmGlobal struct {
	Name string
	Size int
	Init ir.ConstValue
}

// AsmFunction is one function's MC-side representation: its basic blocks,
// entry block, and the stack-frame layout computed while lowering it.
type AsmFunction struct {
	Name       string
	Blocks     []*AsmBlock
	Entry      *AsmBlock
	StackState *StackState
	ABI        *ABI
	IsExternal bool
}

// StackState tracks a function's frame layout as locals are allocated: the
// running negative offset from fp used for Local slots, and the running
// positive offset used for CallParam slots when marshalling an outgoing
// call with more arguments than fit in registers.
type StackState struct {
	LocalSize    int64 // bytes below fp consumed by Local/Spill slots so far
	CallParamMax int64 // largest outgoing CallParam footprint seen so far
}

// AllocLocal reserves size bytes of frame-local storage and returns its
// StackOperand (a negative fp-relative offset).
func (s *StackState) AllocLocal(size int64) StackOperand {
	s.LocalSize = alignTo(s.LocalSize+size, 4)
	return StackOperand{Kind: Local, Offset: -s.LocalSize}
}

// NoteCallParams records how much outgoing-argument stack space a call site
// needs, so the frame reserves the maximum across every call in the
// function.
func (s *StackState) NoteCallParams(size int64) {
	if size > s.CallParamMax {
		s.CallParamMax = size
	}
}

// AsmBlock is one basic block's MC-side representation: its instructions in
// order, predecessor/successor ids, and a forward link used while the
// builder lowers blocks sequentially.
type AsmBlock struct {
	ID    ir.BasicBlockID
	Name  string
	Insts []*Instruction
	Preds []ir.BasicBlockID
	Succs []ir.BasicBlockID
	Next  *AsmBlock
}

// Append appends instr to the end of the block; the builder emits every
// lowered instruction through it.
func (b *AsmBlock) Append(instr *Instruction) {
	b.Insts = append(b.Insts, instr)
}

// InsertBeforeTerminator inserts instr just before the block's last
// instruction (its closing branch). Phi deconstruction uses it to place each
// predecessor's parallel moves ahead of that branch.
func (b *AsmBlock) InsertBeforeTerminator(instr *Instruction) {
	if len(b.Insts) == 0 {
		b.Insts = append(b.Insts, instr)
		return
	}
	last := len(b.Insts) - 1
	b.Insts = append(b.Insts, nil)
	copy(b.Insts[last+1:], b.Insts[last:])
	b.Insts[last] = instr
}
