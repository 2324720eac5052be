package ir

import "github.com/armccomp/armcc/internal/types"

// Opcode is the tag of the Instruction sum type: Alloca, Load, Store, GEP,
// BinOp, Call, Phi, Jump, Branch, Return, Cast.
type Opcode byte

const (
	opcodeInvalid Opcode = iota
	OpAlloca
	OpLoad
	OpStore
	OpGEP
	OpBinOp
	OpCall
	OpPhi
	OpJump
	OpBranch
	OpReturn
	OpCast
)

func (o Opcode) String() string {
	switch o {
	case OpAlloca:
		return "alloca"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpGEP:
		return "gep"
	case OpBinOp:
		return "binop"
	case OpCall:
		return "call"
	case OpPhi:
		return "phi"
	case OpJump:
		return "jump"
	case OpBranch:
		return "branch"
	case OpReturn:
		return "return"
	case OpCast:
		return "cast"
	default:
		return "invalid"
	}
}

// BinOpKind mirrors ast.BinOp for the operators that reach IR BinOp nodes
// (assignment and short-circuit && / || never do: they are lowered away).
type BinOpKind byte

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinLT
	BinLE
	BinGT
	BinGE
	BinEQ
	BinNE
)

// CastKind enumerates the Cast instruction's variants.
type CastKind byte

const (
	CastType  CastKind = iota // no-op re-tag
	CastF2I                   // float -> int, truncating
	CastI2F                   // int -> float
	CastFPExt                 // float -> double
	CastZExt                  // narrow int -> wide int, zero-extending
)

// PhiIncoming is one (value, predecessor block) pair of a Phi instruction.
type PhiIncoming struct {
	Value Value
	Block BasicBlockID
}

// InstructionID is the arena index of an Instruction.
type InstructionID uint32

// Instruction is a single IR instruction: a flattened struct where every
// variant's operands live in this one struct rather than behind per-opcode
// Go types, with Opcode selecting which fields are meaningful.
type Instruction struct {
	id     InstructionID
	opcode Opcode
	typ    *types.Type

	// result is ValueInvalid for instructions with no result (Store, Jump,
	// Branch, Return, and a void Call).
	result Value

	// Alloca
	allocaType *types.Type

	// Load / Store
	addr Value
	val  Value // Store's stored value

	// GEP
	base    Value
	indices []Value

	// BinOp
	binOp       BinOpKind
	lhs, rhs    Value

	// Call
	callee   FunctionID
	args     []Value
	mustTail bool

	// Phi
	incomings []PhiIncoming

	// Jump
	target BasicBlockID

	// Branch
	cond            Value
	trueBB, falseBB BasicBlockID

	// Cast
	castKind CastKind
	castOp   Value

	// block membership, in textual-order doubly linked list.
	block      BasicBlockID
	prev, next InstructionID
}

const invalidInstructionID InstructionID = 0xffffffff
const invalidBasicBlockID BasicBlockID = 0xffffffff

func (i *Instruction) reset() { *i = Instruction{id: i.id, prev: invalidInstructionID, next: invalidInstructionID} }

// Opcode returns the instruction's tag.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// ID returns this instruction's arena index.
func (i *Instruction) ID() InstructionID { return i.id }

// Result returns the Value this instruction defines, or ValueInvalid.
func (i *Instruction) Result() Value { return i.result }

// Block returns the block this instruction is inserted in.
func (i *Instruction) Block() BasicBlockID { return i.block }

// AllocaType returns the allocated type; valid only for OpAlloca.
func (i *Instruction) AllocaType() *types.Type { return i.allocaType }

// Addr returns the Load/Store address operand.
func (i *Instruction) Addr() Value { return i.addr }

// StoredValue returns the Store value operand.
func (i *Instruction) StoredValue() Value { return i.val }

// GEPBase returns the GEP base pointer operand.
func (i *Instruction) GEPBase() Value { return i.base }

// GEPIndices returns the GEP index operands, outermost first.
func (i *Instruction) GEPIndices() []Value { return i.indices }

// BinOpKind returns the BinOp operator; valid only for OpBinOp.
func (i *Instruction) BinOpKind() BinOpKind { return i.binOp }

// BinOpOperands returns the BinOp's (lhs, rhs) operands.
func (i *Instruction) BinOpOperands() (Value, Value) { return i.lhs, i.rhs }

// Callee returns the called function; valid only for OpCall.
func (i *Instruction) Callee() FunctionID { return i.callee }

// Args returns the call argument operands in left-to-right order.
func (i *Instruction) Args() []Value { return i.args }

// MustTail reports whether this call must be lowered as a tail call.
func (i *Instruction) MustTail() bool { return i.mustTail }

// Incomings returns a Phi's (value, predecessor) pairs.
func (i *Instruction) Incomings() []PhiIncoming { return i.incomings }

// JumpTarget returns the Jump's destination block.
func (i *Instruction) JumpTarget() BasicBlockID { return i.target }

// BranchCond returns the Branch's condition operand.
func (i *Instruction) BranchCond() Value { return i.cond }

// BranchTargets returns the Branch's (true, false) destination blocks.
func (i *Instruction) BranchTargets() (BasicBlockID, BasicBlockID) { return i.trueBB, i.falseBB }

// ReturnValue returns the Return's value operand, or ValueInvalid for a bare
// `return;`.
func (i *Instruction) ReturnValue() Value { return i.val }

// CastKind returns the Cast's variant.
func (i *Instruction) CastKind() CastKind { return i.castKind }

// CastOperand returns the Cast's source operand.
func (i *Instruction) CastOperand() Value { return i.castOp }

// IsTerminator reports whether this opcode ends a basic block, per the
// invariant that every block has exactly one terminator, as its last
// instruction.
func (o Opcode) IsTerminator() bool {
	switch o {
	case OpJump, OpBranch, OpReturn:
		return true
	default:
		return false
	}
}
