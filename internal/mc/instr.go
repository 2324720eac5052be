package mc

import "github.com/armccomp/armcc/internal/ir"

// MCOpcode is the tag of the MC Instruction sum type.
type MCOpcode byte

const (
	mcOpInvalid MCOpcode = iota
	OpPrologue
	OpMov
	OpVMov
	OpBinOp
	OpFBinOp
	OpCmp
	OpFCmp
	OpBr
	OpLDR
	OpSTR
	OpVLDR
	OpVSTR
	OpVCVT
	OpCall
	OpTailCall
	OpRet
)

// MovKind distinguishes a Mov's source-operand shape.
type MovKind byte

const (
	MovReg   MovKind = iota // MOV dst, src
	MovImm                  // MOV dst, #imm  (fits the rotated-8-bit encoding)
	MovWT                   // MOVW/MOVT pair materialising a 32-bit immediate
)

// VMovKind distinguishes the VFP move variants used by casts and parallel
// moves.
type VMovKind byte

const (
	VMovCPY VMovKind = iota // VMOV sN, sM      (float <-> float copy)
	VMovS2A                 // VMOV rN, sM      (VFP -> core)
	VMovA2S                 // VMOV sN, rM      (core -> VFP)
)

// VCVTKind distinguishes the float<->int and float<->double conversions.
type VCVTKind byte

const (
	VCVTF2I VCVTKind = iota
	VCVTI2F
	VCVTF2D
	VCVTD2F
)

// CondCode is an ARM condition code, used by conditional branches and the
// boolean-materialising conditional MOV that follows a CMP/FCMP.
type CondCode byte

const (
	CondAL CondCode = iota // always
	CondEQ
	CondNE
	CondLT
	CondLE
	CondGT
	CondGE
)

func (c CondCode) Negate() CondCode {
	switch c {
	case CondEQ:
		return CondNE
	case CondNE:
		return CondEQ
	case CondLT:
		return CondGE
	case CondLE:
		return CondGT
	case CondGT:
		return CondLE
	case CondGE:
		return CondLT
	default:
		return CondAL
	}
}

// BinOpKind is the integer ALU operator set the MC builder lowers
// ir.BinOpKind into.
type BinOpKind byte

const (
	BinADD BinOpKind = iota
	BinSUB
	BinMUL
	BinSDIV
	BinSREM
)

// Instruction is a single MC instruction. As in internal/ir, every
// variant's operands live in one flattened struct selected by Opcode.
type Instruction struct {
	Opcode MCOpcode

	// Defs/Uses drive the register allocator's liveness computation;
	// InConstraints/OutConstraints pin specific defs/uses to specific
	// physical registers per the calling convention.
	Defs, Uses       []VReg
	InConstraints    []Constraint
	OutConstraints   []Constraint

	// Mov / VMov, and reused as the destination register for BinOp/FBinOp.
	MovKind  MovKind
	VMovKind VMovKind
	Dst      Operand
	Src      Operand

	// BinOp / FBinOp
	BinOp BinOpKind
	Lhs   Operand
	Rhs   Operand // Operand2: an immediate is only ever legal here.

	// Cmp / FCmp, and the conditional MOV that follows to materialise a
	// boolean result.
	CmpLhs, CmpRhs Operand
	BoolDst        Operand

	// Br
	Cond   CondCode
	Target ir.BasicBlockID

	// LDR/STR/VLDR/VSTR
	MemReg     Operand // the loaded-into or stored-from register
	MemAddr    Operand // a VReg (already-computed address) or a StackOperand

	// VCVT
	VCVT VCVTKind

	// Call / TailCall
	Callee   ir.FunctionID
	CallArgs []Operand

	// Ret
	RetVal Operand
	HasRet bool
}
