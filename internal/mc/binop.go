package mc

import (
	"fmt"

	"github.com/armccomp/armcc/internal/ir"
)

var intBinOpMap = map[ir.BinOpKind]BinOpKind{
	ir.BinAdd: BinADD, ir.BinSub: BinSUB, ir.BinMul: BinMUL, ir.BinDiv: BinSDIV, ir.BinMod: BinSREM,
}

var condMap = map[ir.BinOpKind]CondCode{
	ir.BinLT: CondLT, ir.BinLE: CondLE, ir.BinGT: CondGT, ir.BinGE: CondGE, ir.BinEQ: CondEQ, ir.BinNE: CondNE,
}

// noImmOps never accept an immediate Operand2 on this ISA.
var noImmOps = map[BinOpKind]bool{BinMUL: true, BinSDIV: true, BinSREM: true}

func (b *Builder) lowerBinOp(instr *ir.Instruction) error {
	lhsV, rhsV := instr.BinOpOperands()
	isFloat := lhsV.Type() != nil && lhsV.Type().IsFloat()
	lhs := b.operandFor(lhsV)
	rhs := b.operandFor(rhsV)

	if cond, ok := condMap[instr.BinOpKind()]; ok {
		dst := b.vregs.Int()
		if isFloat {
			lhs, rhs = toFloatReg(b, lhs), toFloatReg(b, rhs)
			b.emit(&Instruction{Opcode: OpFCmp, CmpLhs: lhs, CmpRhs: rhs, Cond: cond, BoolDst: RegOperand(dst), Defs: []VReg{dst}})
		} else {
			lhs = toReg(b, lhs)
			rhs = expandOperand2(b, rhs)
			b.emit(&Instruction{Opcode: OpCmp, CmpLhs: lhs, CmpRhs: rhs, Cond: cond, BoolDst: RegOperand(dst), Defs: []VReg{dst}})
		}
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	}

	op, ok := intBinOpMap[instr.BinOpKind()]
	if !ok {
		return fmt.Errorf("mc: unhandled binop kind")
	}
	if isFloat {
		dst := b.vregs.Float()
		lhs, rhs = toFloatReg(b, lhs), toFloatReg(b, rhs)
		b.emit(&Instruction{Opcode: OpFBinOp, BinOp: op, Lhs: lhs, Rhs: rhs, Dst: RegOperand(dst), Defs: []VReg{dst}})
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	}

	dst := b.vregs.Int()
	lhs = toReg(b, lhs)
	if noImmOps[op] {
		rhs = toReg(b, rhs)
	} else {
		rhs = expandOperand2(b, rhs)
	}
	b.emit(&Instruction{Opcode: OpBinOp, BinOp: op, Lhs: lhs, Rhs: rhs, Dst: RegOperand(dst), Defs: []VReg{dst}})
	b.valueLoc[instr.Result().ID()] = RegOperand(dst)
	return nil
}
