package mc

import (
	"fmt"

	"github.com/armccomp/armcc/internal/ir"
	"github.com/armccomp/armcc/internal/types"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "mc")

// Builder lowers an ir.Module into an AsmModule of ARM-family instructions
// over virtual registers with explicit ABI-pinning constraints, such that a
// later register allocator can assign physical registers without violating
// the calling convention.
type Builder struct {
	abi *ABIResolver

	m        *ir.Module
	vregs    VRegAllocator
	valueLoc map[ir.ValueID]Operand
	blocks   map[ir.BasicBlockID]*AsmBlock
	stack    *StackState
	curFn    *AsmFunction
	curBlock *AsmBlock
	curABI   *ABI
}

// NewBuilder returns an empty Builder with a fresh ABI cache.
func NewBuilder() *Builder {
	return &Builder{abi: NewABIResolver()}
}

// BuildModule lowers every global and function in m into an AsmModule.
func (b *Builder) BuildModule(m *ir.Module) (*AsmModule, error) {
	out := &AsmModule{}
	for _, g := range m.Globals() {
		asmG := &AsmGlobal{Name: m.ValueName(g), Size: g.Type().Elem().Size(), Init: m.GlobalInitializer(g)}
		if asmG.Init.Kind == ir.ConstInt && asmG.Init.Int == 0 && asmG.Init.Elements == nil {
			out.BSSGlobals = append(out.BSSGlobals, asmG)
		} else {
			out.Globals = append(out.Globals, asmG)
		}
	}
	for _, fn := range m.Functions() {
		asmFn, err := b.buildFunction(m, fn)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fn.Name(), err)
		}
		out.Functions = append(out.Functions, asmFn)
	}
	return out, nil
}

func (b *Builder) buildFunction(m *ir.Module, fn ir.Function) (*AsmFunction, error) {
	log.WithField("func", fn.Name()).Debug("lowering function")

	abi, err := b.abi.Resolve(m, fn)
	if err != nil {
		return nil, err
	}

	asmFn := &AsmFunction{Name: fn.Name(), IsExternal: fn.IsExternal(), ABI: abi, StackState: &StackState{}}
	if fn.IsExternal() {
		return asmFn, nil
	}

	b.m = m
	b.vregs = VRegAllocator{}
	b.valueLoc = make(map[ir.ValueID]Operand)
	b.blocks = make(map[ir.BasicBlockID]*AsmBlock)
	b.stack = asmFn.StackState
	b.curABI = abi
	b.curFn = asmFn

	irBlocks := fn.Blocks()
	var prevAsm *AsmBlock
	for _, bb := range irBlocks {
		asmBB := &AsmBlock{ID: bb.ID(), Name: bb.Name(), Preds: bb.Preds(), Succs: bb.Succs()}
		b.blocks[bb.ID()] = asmBB
		asmFn.Blocks = append(asmFn.Blocks, asmBB)
		if prevAsm != nil {
			prevAsm.Next = asmBB
		}
		prevAsm = asmBB
	}
	asmFn.Entry = b.blocks[fn.Entry().ID()]

	b.lowerParams(fn, abi, asmFn.Entry)

	for _, bb := range irBlocks {
		b.curBlock = b.blocks[bb.ID()]
		for _, instr := range bb.Instructions() {
			if instr.Opcode() == ir.OpPhi {
				continue // resolved in the post-pass below, once every block's pred/succ is known.
			}
			if err := b.lowerInstruction(instr); err != nil {
				return nil, err
			}
		}
	}

	if err := b.deconstructPhis(irBlocks); err != nil {
		return nil, err
	}
	return asmFn, nil
}

// lowerParams prepends the Prologue instruction to the entry block: its
// defs are the vregs standing in for parameters that arrived in a
// register, each pinned via an out-constraint to the exact physical
// register the ABI assigned.
func (b *Builder) lowerParams(fn ir.Function, abi *ABI, entry *AsmBlock) {
	prologue := &Instruction{Opcode: OpPrologue}
	params := fn.Params()
	for i, p := range params {
		arg := abi.Args[i]
		if arg.Kind == ArgKindStack {
			b.valueLoc[p.ID()] = StackOp(StackOperand{Kind: SelfArg, Offset: arg.Offset})
			continue
		}
		vreg := b.freshVReg(p.Type())
		prologue.Defs = append(prologue.Defs, vreg)
		prologue.OutConstraints = append(prologue.OutConstraints, Constraint{VReg: vreg, Real: arg.Reg})
		b.valueLoc[p.ID()] = RegOperand(vreg)
	}
	entry.Insts = append([]*Instruction{prologue}, entry.Insts...)
}

func (b *Builder) freshVReg(ty *types.Type) VReg {
	if ty != nil && ty.IsFloat() {
		return b.vregs.Float()
	}
	return b.vregs.Int()
}

// operandFor resolves an already-lowered Value to its Operand: a register
// for instruction results and register-resident params, a stack operand for
// stack-resident params, or an immediate for a Const.
func (b *Builder) operandFor(v ir.Value) Operand {
	if loc, ok := b.valueLoc[v.ID()]; ok {
		return loc
	}
	if b.m.ValueKind(v) == ir.ValueKindConst {
		c := b.m.ConstData(v)
		switch c.Kind {
		case ir.ConstFloat:
			return ImmOperand(Imm{Kind: ImmFloat, Float: c.Float})
		case ir.ConstBool:
			i := int64(0)
			if c.Bool {
				i = 1
			}
			return ImmOperand(Imm{Kind: ImmInt, Int: i})
		default:
			return ImmOperand(Imm{Kind: ImmInt, Int: c.Int})
		}
	}
	if b.m.ValueKind(v) == ir.ValueKindGlobalVariable {
		return ImmOperand(Imm{Kind: ImmLabel, Label: b.m.ValueName(v)})
	}
	// Unreached on well-formed IR: every non-constant operand is defined
	// by a prior instruction.
	return ImmOperand(Imm{Kind: ImmInt})
}

func (b *Builder) emit(instr *Instruction) {
	b.curBlock.Append(instr)
}

func (b *Builder) lowerInstruction(instr *ir.Instruction) error {
	switch instr.Opcode() {
	case ir.OpAlloca:
		return b.lowerAlloca(instr)
	case ir.OpLoad:
		return b.lowerLoad(instr)
	case ir.OpStore:
		return b.lowerStore(instr)
	case ir.OpGEP:
		return b.lowerGEP(instr)
	case ir.OpBinOp:
		return b.lowerBinOp(instr)
	case ir.OpCall:
		return b.lowerCall(instr)
	case ir.OpCast:
		return b.lowerCast(instr)
	case ir.OpJump:
		b.emit(&Instruction{Opcode: OpBr, Cond: CondAL, Target: instr.JumpTarget()})
		return nil
	case ir.OpBranch:
		return b.lowerBranch(instr)
	case ir.OpReturn:
		return b.lowerReturn(instr)
	default:
		return fmt.Errorf("mc: unhandled IR opcode %s", instr.Opcode())
	}
}

func (b *Builder) lowerAlloca(instr *ir.Instruction) error {
	so := b.stack.AllocLocal(int64(instr.AllocaType().Size()))
	dst := b.freshVReg(nil)
	base := FromRealReg(Fp)
	imm := expandOperand2(b, ImmOperand(Imm{Kind: ImmInt, Int: abs(so.Offset)}))
	b.emit(&Instruction{Opcode: OpBinOp, BinOp: BinSUB, Dst: RegOperand(dst), Lhs: RegOperand(base), Rhs: imm, Defs: []VReg{dst}, Uses: []VReg{base}})
	b.valueLoc[instr.Result().ID()] = RegOperand(dst)
	return nil
}

func (b *Builder) lowerLoad(instr *ir.Instruction) error {
	addr := b.operandFor(instr.Addr())
	dst := b.freshVReg(instr.Result().Type())
	op := OpLDR
	if instr.Result().Type().IsFloat() {
		op = OpVLDR
	}
	b.emit(&Instruction{Opcode: op, MemReg: RegOperand(dst), MemAddr: addr, Defs: []VReg{dst}})
	b.valueLoc[instr.Result().ID()] = RegOperand(dst)
	return nil
}

func (b *Builder) lowerStore(instr *ir.Instruction) error {
	addr := b.operandFor(instr.Addr())
	val := b.operandFor(instr.StoredValue())
	op := OpSTR
	if instr.StoredValue().Type() != nil && instr.StoredValue().Type().IsFloat() {
		op, val = OpVSTR, toFloatReg(b, val)
	} else {
		val = toReg(b, val) // STR never takes an immediate source operand.
	}
	b.emit(&Instruction{Opcode: op, MemReg: val, MemAddr: addr})
	return nil
}

func (b *Builder) lowerCast(instr *ir.Instruction) error {
	src := b.operandFor(instr.CastOperand())
	switch instr.CastKind() {
	case ir.CastType, ir.CastZExt:
		b.valueLoc[instr.Result().ID()] = src
		return nil
	case ir.CastFPExt:
		dst := b.freshVReg(instr.Result().Type())
		b.emit(&Instruction{Opcode: OpVCVT, VCVT: VCVTF2D, Dst: RegOperand(dst), Src: src, Defs: []VReg{dst}})
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	case ir.CastF2I:
		mid := b.vregs.Float()
		b.emit(&Instruction{Opcode: OpVCVT, VCVT: VCVTF2I, Dst: RegOperand(mid), Src: src, Defs: []VReg{mid}})
		dst := b.vregs.Int()
		b.emit(&Instruction{Opcode: OpVMov, VMovKind: VMovS2A, Dst: RegOperand(dst), Src: RegOperand(mid), Defs: []VReg{dst}})
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	case ir.CastI2F:
		mid := b.vregs.Float()
		b.emit(&Instruction{Opcode: OpVMov, VMovKind: VMovA2S, Dst: RegOperand(mid), Src: src, Defs: []VReg{mid}})
		dst := b.vregs.Float()
		b.emit(&Instruction{Opcode: OpVCVT, VCVT: VCVTI2F, Dst: RegOperand(dst), Src: RegOperand(mid), Defs: []VReg{dst}})
		b.valueLoc[instr.Result().ID()] = RegOperand(dst)
		return nil
	default:
		return fmt.Errorf("mc: unhandled cast kind")
	}
}

func (b *Builder) lowerBranch(instr *ir.Instruction) error {
	cond := b.operandFor(instr.BranchCond())
	trueBB, falseBB := instr.BranchTargets()
	zero := ImmOperand(Imm{Kind: ImmInt})
	b.emit(&Instruction{Opcode: OpCmp, CmpLhs: cond, CmpRhs: zero})
	// Branch on NE to the true target when it is not the fallthrough block,
	// else branch on EQ to the false target, to minimise fallthrough cost.
	if b.fallsThroughTo(trueBB) {
		b.emit(&Instruction{Opcode: OpBr, Cond: CondEQ, Target: falseBB})
		b.emit(&Instruction{Opcode: OpBr, Cond: CondAL, Target: trueBB})
	} else {
		b.emit(&Instruction{Opcode: OpBr, Cond: CondNE, Target: trueBB})
		b.emit(&Instruction{Opcode: OpBr, Cond: CondAL, Target: falseBB})
	}
	return nil
}

// fallsThroughTo reports whether target is the next block in layout order
// after the current block, i.e. reaching it needs no branch at all.
func (b *Builder) fallsThroughTo(target ir.BasicBlockID) bool {
	next := b.curBlock.Next
	return next != nil && next.ID == target
}

func (b *Builder) lowerReturn(instr *ir.Instruction) error {
	ret := &Instruction{Opcode: OpRet}
	if instr.ReturnValue().Valid() {
		val := b.operandFor(instr.ReturnValue())
		abi := mustResult(b.curABI)
		dst := FromRealReg(abi.Reg)
		if abi.Type != nil && abi.Type.IsFloat() {
			val = toFloatReg(b, val)
			b.emit(&Instruction{Opcode: OpVMov, VMovKind: VMovCPY, Dst: RegOperand(dst), Src: val, Defs: []VReg{dst}})
		} else {
			val = toReg(b, val)
			b.emit(&Instruction{Opcode: OpMov, MovKind: MovReg, Dst: RegOperand(dst), Src: val, Defs: []VReg{dst}})
		}
		ret.HasRet = true
		ret.RetVal = RegOperand(dst)
		ret.Uses = append(ret.Uses, dst)
		ret.InConstraints = append(ret.InConstraints, Constraint{VReg: dst, Real: abi.Reg})
	}
	b.emit(ret)
	return nil
}

func mustResult(abi *ABI) *ABIArg {
	if abi.Result == nil {
		return &ABIArg{Reg: R0}
	}
	return abi.Result
}
