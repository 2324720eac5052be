package mc

import (
	"github.com/armccomp/armcc/internal/ir"
	"github.com/armccomp/armcc/internal/types"
)

// lowerCall marshals arguments into the callee's resolved ABI locations and
// emits the call, pinning every register argument and the result (if any)
// with an explicit Constraint so the register allocator cannot relocate
// them across the call boundary.
func (b *Builder) lowerCall(instr *ir.Instruction) error {
	callee := b.m.FunctionView(instr.Callee())
	args := instr.Args()

	fnABI, err := b.abi.Resolve(b.m, callee)
	if err != nil {
		return err
	}

	argABIs, stackSize := fnABI.Args, fnABI.ArgStackSize
	if callee.IsVariadic() {
		fixed := make([]*types.Type, len(callee.Params()))
		for i, p := range callee.Params() {
			fixed[i] = p.Type()
		}
		argTypes := make([]*types.Type, len(args))
		for i, a := range args {
			argTypes[i] = a.Type()
		}
		argABIs, stackSize, err = ResolveVariadicCall(fixed, argTypes)
		if err != nil {
			return err
		}
	}
	b.stack.NoteCallParams(stackSize)

	call := &Instruction{Opcode: OpCall, Callee: instr.Callee()}
	if instr.MustTail() {
		call.Opcode = OpTailCall
	}

	for i, a := range args {
		argABI := argABIs[i]
		val := b.operandFor(a)
		if callee.IsVariadic() && i >= len(callee.Params()) && argABI.Type.Builtin() == types.Double && a.Type().Builtin() == types.Float {
			dst := b.vregs.Float() // variadic-tail float promoted to double
			b.emit(&Instruction{Opcode: OpVCVT, VCVT: VCVTF2D, Dst: RegOperand(dst), Src: toFloatReg(b, val), Defs: []VReg{dst}})
			val = RegOperand(dst)
		}
		if argABI.Kind == ArgKindStack {
			op := OpSTR
			if argABI.Type.IsFloat() {
				op, val = OpVSTR, toFloatReg(b, val)
			} else {
				val = toReg(b, val)
			}
			b.emit(&Instruction{Opcode: op, MemReg: val, MemAddr: StackOp(StackOperand{Kind: CallParam, Offset: argABI.Offset})})
			continue
		}
		preg := FromRealReg(argABI.Reg)
		if argABI.Type.IsFloat() {
			b.emit(&Instruction{Opcode: OpVMov, VMovKind: VMovCPY, Dst: RegOperand(preg), Src: toFloatReg(b, val), Defs: []VReg{preg}})
		} else {
			b.emit(&Instruction{Opcode: OpMov, MovKind: MovReg, Dst: RegOperand(preg), Src: toReg(b, val), Defs: []VReg{preg}})
		}
		call.InConstraints = append(call.InConstraints, Constraint{VReg: preg, Real: argABI.Reg})
		call.Uses = append(call.Uses, preg)
	}

	if instr.Result().Valid() {
		res := mustResult(fnABI)
		dst := FromRealReg(res.Reg)
		call.Defs = append(call.Defs, dst)
		call.OutConstraints = append(call.OutConstraints, Constraint{VReg: dst, Real: res.Reg})
		b.emit(call)
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	}
	b.emit(call)
	return nil
}
