package ir

import "fmt"

// BasicBlockID is the arena index of a BasicBlock.
type BasicBlockID uint32

// predInfo records one predecessor edge: the predecessor block and the
// terminator instruction in it that branches to this block.
type predInfo struct {
	block  BasicBlockID
	branch InstructionID
}

// basicBlock is the mutable, heavy payload behind a ValueKindBasicBlock
// Value. Instructions are stored as a doubly linked list via
// rootInstr/tailInstr and each instruction's own prev/next links;
// predecessor/successor sets are maintained incrementally as terminators
// are inserted.
type basicBlock struct {
	id   BasicBlockID
	name string

	rootInstr, tailInstr InstructionID

	preds []predInfo
	succs []BasicBlockID

	// appended reports whether this block has been linked into its
	// function's block list yet. Blocks may be allocated (reserved) ahead
	// of being appended, to support forward-only control flow without
	// patch-up.
	appended bool
	sealed   bool // true once its terminator has been emitted

	fn FunctionID
}

func (bb *basicBlock) reset() { *bb = basicBlock{id: bb.id} }

// BasicBlock is the read-only view of a block handed to consumers outside
// the builder (the MC builder, the textual printer).
type BasicBlock struct {
	m  *Module
	id BasicBlockID
}

// ID returns the block's arena index.
func (b BasicBlock) ID() BasicBlockID { return b.id }

// Name returns the block's debug name (e.g. "entry", "while.cond").
func (b BasicBlock) Name() string { return b.m.blocks.View(int(b.id)).name }

// Preds returns the block's predecessor ids.
func (b BasicBlock) Preds() []BasicBlockID {
	raw := b.m.blocks.View(int(b.id)).preds
	ids := make([]BasicBlockID, len(raw))
	for i, p := range raw {
		ids[i] = p.block
	}
	return ids
}

// Succs returns the block's successor ids.
func (b BasicBlock) Succs() []BasicBlockID {
	return append([]BasicBlockID(nil), b.m.blocks.View(int(b.id)).succs...)
}

// Instructions returns the block's instructions in textual order.
func (b BasicBlock) Instructions() []*Instruction {
	bb := b.m.blocks.View(int(b.id))
	var out []*Instruction
	for id := bb.rootInstr; id != invalidInstructionID; {
		instr := b.m.instructions.View(int(id))
		out = append(out, instr)
		id = instr.next
	}
	return out
}

// Terminator returns the block's terminating instruction, which must exist
// once the block is sealed (invariant: "exactly one terminator... the last
// instruction of B").
func (b BasicBlock) Terminator() *Instruction {
	bb := b.m.blocks.View(int(b.id))
	if bb.tailInstr == invalidInstructionID {
		return nil
	}
	return b.m.instructions.View(int(bb.tailInstr))
}

func (b BasicBlock) String() string {
	return fmt.Sprintf("%s(id=%d)", b.Name(), b.id)
}

// block returns the read-only view for an internal BasicBlockID.
func (m *Module) block(id BasicBlockID) BasicBlock {
	return BasicBlock{m: m, id: id}
}
