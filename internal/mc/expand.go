package mc

// expandImm returns an Operand holding v: an Imm directly when it fits the
// rotated 8-bit encoding, otherwise a register loaded with v via a
// MOVW/MOVT pair.
func expandImm(b *Builder, v int64) Operand {
	if FitsImmediate(v) {
		return ImmOperand(Imm{Kind: ImmInt, Int: v})
	}
	dst := b.vregs.Int()
	b.emit(&Instruction{Opcode: OpMov, MovKind: MovWT, Dst: RegOperand(dst), Src: ImmOperand(Imm{Kind: ImmInt, Int: v}), Defs: []VReg{dst}})
	return RegOperand(dst)
}

// expandOperand2 ensures op is directly usable as an ARM Operand2: a
// register, or an immediate that fits the rotated 8-bit encoding. Anything
// else is first materialised into a register.
func expandOperand2(b *Builder, op Operand) Operand {
	switch op.Kind {
	case OperandImm:
		if op.Imm.Kind == ImmInt && FitsImmediate(op.Imm.Int) {
			return op
		}
		return toReg(b, op)
	case OperandStack:
		return toReg(b, op)
	default:
		return op
	}
}

// toReg materialises op into an integer-bank register: a no-op for an
// already-register operand, a MOV for an immediate, and a load for a
// frame-relative stack operand.
func toReg(b *Builder, op Operand) Operand {
	switch op.Kind {
	case OperandReg:
		return op
	case OperandImm:
		dst := b.vregs.Int()
		kind := MovImm
		if !(op.Imm.Kind == ImmInt && FitsImmediate(op.Imm.Int)) {
			kind = MovWT
		}
		b.emit(&Instruction{Opcode: OpMov, MovKind: kind, Dst: RegOperand(dst), Src: op, Defs: []VReg{dst}})
		return RegOperand(dst)
	case OperandStack:
		dst := b.vregs.Int()
		b.emit(&Instruction{Opcode: OpLDR, MemReg: RegOperand(dst), MemAddr: op, Defs: []VReg{dst}})
		return RegOperand(dst)
	default:
		return op
	}
}

// toFloatReg is toReg's VFP-bank counterpart.
func toFloatReg(b *Builder, op Operand) Operand {
	switch op.Kind {
	case OperandReg:
		return op
	case OperandImm:
		dst := b.vregs.Float()
		b.emit(&Instruction{Opcode: OpVMov, VMovKind: VMovCPY, Dst: RegOperand(dst), Src: op, Defs: []VReg{dst}})
		return RegOperand(dst)
	case OperandStack:
		dst := b.vregs.Float()
		b.emit(&Instruction{Opcode: OpVLDR, MemReg: RegOperand(dst), MemAddr: op, Defs: []VReg{dst}})
		return RegOperand(dst)
	default:
		return op
	}
}

// expandStackOperand resolves a frame-relative StackOperand whose offset
// does not fit a single addressing-mode immediate into an explicit address
// computation. preRegalloc allocates a fresh virtual register for the base
// address (the ordinary case, before the register allocator has run);
// otherwise it borrows the permanently reserved ip scratch register, the
// only register the allocator guarantees free across a single addressing
// sequence after it has assigned everything else.
func expandStackOperand(b *Builder, so StackOperand, preRegalloc bool) Operand {
	if FitsImmediate(abs(so.Offset)) {
		return StackOp(so)
	}
	base := FromRealReg(Fp)
	if so.Kind == CallParam {
		base = FromRealReg(Sp) // outgoing arguments are addressed sp-plus.
	}
	scratch := base
	if preRegalloc {
		scratch = b.vregs.Int()
	} else {
		scratch = FromRealReg(Ip)
	}
	imm := expandImm(b, abs(so.Offset))
	op := BinADD
	if so.Offset < 0 {
		op = BinSUB
	}
	b.emit(&Instruction{Opcode: OpBinOp, BinOp: op, Dst: RegOperand(scratch), Lhs: RegOperand(base), Rhs: imm, Defs: []VReg{scratch}, Uses: []VReg{base}})
	return RegOperand(scratch)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
