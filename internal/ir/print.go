package ir

import (
	"fmt"
	"strings"
)

// Print renders m in an LLVM-like textual form, naming values with a fresh
// InstNamer.
func Print(m *Module) string {
	namer := NewInstNamer()
	namer.Run(m)
	var sb strings.Builder
	for _, fn := range m.Functions() {
		printFunction(&sb, m, fn, namer)
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, m *Module, fn Function, namer *InstNamer) {
	params := fn.Params()
	paramStrs := make([]string, len(params))
	for i, p := range params {
		paramStrs[i] = fmt.Sprintf("%s %s", p.Type(), namer.Name(p.ID()))
	}
	kw := "define"
	if fn.IsExternal() {
		kw = "declare"
	}
	fmt.Fprintf(sb, "%s %s @%s(%s)", kw, fn.ReturnType(), fn.Name(), strings.Join(paramStrs, ", "))
	if fn.IsExternal() {
		sb.WriteString("\n\n")
		return
	}
	sb.WriteString(" {\n")
	for _, bb := range fn.Blocks() {
		fmt.Fprintf(sb, "%s:\n", bb.Name())
		for _, instr := range bb.Instructions() {
			sb.WriteString("  ")
			printInstruction(sb, m, instr, namer)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n\n")
}

func printInstruction(sb *strings.Builder, m *Module, instr *Instruction, namer *InstNamer) {
	result := ""
	if instr.Result().Valid() {
		result = namer.Name(instr.Result().ID()) + " = "
	}
	switch instr.Opcode() {
	case OpAlloca:
		fmt.Fprintf(sb, "%salloca %s", result, instr.AllocaType())
	case OpLoad:
		fmt.Fprintf(sb, "%sload %s, ptr %s", result, instr.typ, namer.Name(instr.Addr().ID()))
	case OpStore:
		fmt.Fprintf(sb, "store %s, ptr %s", namer.Name(instr.StoredValue().ID()), namer.Name(instr.Addr().ID()))
	case OpGEP:
		idxs := make([]string, len(instr.GEPIndices()))
		for i, ix := range instr.GEPIndices() {
			idxs[i] = namer.Name(ix.ID())
		}
		fmt.Fprintf(sb, "%sgep %s, %s", result, namer.Name(instr.GEPBase().ID()), strings.Join(idxs, ", "))
	case OpBinOp:
		l, r := instr.BinOpOperands()
		fmt.Fprintf(sb, "%s%s %s, %s, %s", result, instr.BinOpKind(), instr.typ, namer.Name(l.ID()), namer.Name(r.ID()))
	case OpCall:
		args := make([]string, len(instr.Args()))
		for i, a := range instr.Args() {
			args[i] = namer.Name(a.ID())
		}
		fmt.Fprintf(sb, "%scall @%s(%s)", result, m.function(instr.Callee()).Name(), strings.Join(args, ", "))
	case OpPhi:
		parts := make([]string, len(instr.Incomings()))
		for i, in := range instr.Incomings() {
			parts[i] = fmt.Sprintf("[%s, %s]", namer.Name(in.Value.ID()), m.block(in.Block).Name())
		}
		fmt.Fprintf(sb, "%sphi %s %s", result, instr.typ, strings.Join(parts, ", "))
	case OpJump:
		fmt.Fprintf(sb, "br %s", m.block(instr.JumpTarget()).Name())
	case OpBranch:
		t, f := instr.BranchTargets()
		fmt.Fprintf(sb, "br %s, %s, %s", namer.Name(instr.BranchCond().ID()), m.block(t).Name(), m.block(f).Name())
	case OpReturn:
		if instr.ReturnValue().Valid() {
			fmt.Fprintf(sb, "ret %s", namer.Name(instr.ReturnValue().ID()))
		} else {
			sb.WriteString("ret void")
		}
	case OpCast:
		fmt.Fprintf(sb, "%scast %s %s to %s", result, castKindName(instr.CastKind()), namer.Name(instr.CastOperand().ID()), instr.typ)
	}
}

func castKindName(k CastKind) string {
	switch k {
	case CastType:
		return "bitcast"
	case CastF2I:
		return "f2i"
	case CastI2F:
		return "i2f"
	case CastFPExt:
		return "fpext"
	case CastZExt:
		return "zext"
	default:
		return "cast"
	}
}

func (k BinOpKind) String() string {
	switch k {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinMod:
		return "mod"
	case BinLT:
		return "lt"
	case BinLE:
		return "le"
	case BinGT:
		return "gt"
	case BinGE:
		return "ge"
	case BinEQ:
		return "eq"
	case BinNE:
		return "ne"
	default:
		return "?"
	}
}
