package mc

import "github.com/armccomp/armcc/internal/ir"

// lowerGEP strength-reduces an address computation into an ADD of a
// constant byte offset, or an ADD of an index scaled by MUL when the index
// is not itself a compile-time constant. Every GEP this module's builder
// ever emits carries exactly two indices: a leading always-zero index that
// steps through the base pointer itself, and the real per-dimension index.
func (b *Builder) lowerGEP(instr *ir.Instruction) error {
	indices := instr.GEPIndices()
	idx := indices[len(indices)-1]
	elemTy := instr.Result().Type().Elem()
	stride := int64(elemTy.Size())

	base := toReg(b, b.operandFor(instr.GEPBase()))
	dst := b.freshVReg(nil)

	if b.m.ValueKind(idx) == ir.ValueKindConst {
		c := b.m.ConstData(idx)
		off := c.Int * stride
		if off == 0 {
			b.valueLoc[instr.Result().ID()] = base
			return nil
		}
		imm := expandOperand2(b, ImmOperand(Imm{Kind: ImmInt, Int: off}))
		b.emit(&Instruction{Opcode: OpBinOp, BinOp: BinADD, Dst: RegOperand(dst), Lhs: base, Rhs: imm, Defs: []VReg{dst}})
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	}

	offset := toReg(b, b.operandFor(idx))
	if stride != 1 {
		mulDst := b.vregs.Int()
		strideOp := toReg(b, ImmOperand(Imm{Kind: ImmInt, Int: stride})) // MUL never takes an immediate Operand2.
		b.emit(&Instruction{Opcode: OpBinOp, BinOp: BinMUL, Dst: RegOperand(mulDst), Lhs: offset, Rhs: strideOp, Defs: []VReg{mulDst}})
		offset = RegOperand(mulDst)
	}
	b.emit(&Instruction{Opcode: OpBinOp, BinOp: BinADD, Dst: RegOperand(dst), Lhs: base, Rhs: offset, Defs: []VReg{dst}})
	b.valueLoc[instr.Result().ID()] = RegOperand(dst)
	return nil
}
