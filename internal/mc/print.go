package mc

import (
	"fmt"
	"strings"
)

// Print renders an AsmModule as a readable pseudo-assembly listing: every
// virtual register named by its VReg.String (pinned reals print as their
// register name, unpinned virtuals as vN/vfN), every stack operand named by
// its StackOperandKind and fp/sp-relative offset.
func Print(m *AsmModule) string {
	var sb strings.Builder
	for _, g := range m.BSSGlobals {
		fmt.Fprintf(&sb, ".bss %s, %d\n", g.Name, g.Size)
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, ".data %s, %d\n", g.Name, g.Size)
	}
	for _, fn := range m.Functions {
		printFunction(&sb, fn)
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, fn *AsmFunction) {
	if fn.IsExternal {
		fmt.Fprintf(sb, ".extern %s\n\n", fn.Name)
		return
	}
	fmt.Fprintf(sb, "%s:\n", fn.Name)
	for b := fn.Entry; b != nil; b = b.Next {
		fmt.Fprintf(sb, "%s:\n", b.Name)
		for _, instr := range b.Insts {
			sb.WriteString("  ")
			printInstruction(sb, instr)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return o.Reg.String()
	case OperandImm:
		switch o.Imm.Kind {
		case ImmFloat:
			return fmt.Sprintf("#%g", o.Imm.Float)
		case ImmLabel:
			return "=" + o.Imm.Label
		default:
			return fmt.Sprintf("#%d", o.Imm.Int)
		}
	case OperandStack:
		return fmt.Sprintf("[%s:%d]", o.Stack.Kind, o.Stack.Offset)
	default:
		return "?"
	}
}

func (k BinOpKind) String() string {
	switch k {
	case BinADD:
		return "add"
	case BinSUB:
		return "sub"
	case BinMUL:
		return "mul"
	case BinSDIV:
		return "sdiv"
	case BinSREM:
		return "srem"
	default:
		return "?"
	}
}

func (c CondCode) String() string {
	switch c {
	case CondEQ:
		return "eq"
	case CondNE:
		return "ne"
	case CondLT:
		return "lt"
	case CondLE:
		return "le"
	case CondGT:
		return "gt"
	case CondGE:
		return "ge"
	default:
		return "al"
	}
}

func printInstruction(sb *strings.Builder, instr *Instruction) {
	switch instr.Opcode {
	case OpPrologue:
		sb.WriteString("prologue")
	case OpMov:
		fmt.Fprintf(sb, "mov%s %s, %s", movSuffix(instr.MovKind), instr.Dst, instr.Src)
	case OpVMov:
		fmt.Fprintf(sb, "vmov %s, %s", instr.Dst, instr.Src)
	case OpBinOp:
		fmt.Fprintf(sb, "%s %s, %s, %s", instr.BinOp, instr.Dst, instr.Lhs, instr.Rhs)
	case OpFBinOp:
		fmt.Fprintf(sb, "v%s.f64 %s, %s, %s", instr.BinOp, instr.Dst, instr.Lhs, instr.Rhs)
	case OpCmp:
		fmt.Fprintf(sb, "cmp %s, %s -> %s", instr.CmpLhs, instr.CmpRhs, instr.BoolDst)
	case OpFCmp:
		fmt.Fprintf(sb, "vcmp.f64 %s, %s -> %s", instr.CmpLhs, instr.CmpRhs, instr.BoolDst)
	case OpBr:
		fmt.Fprintf(sb, "b%s bb%d", instr.Cond, instr.Target)
	case OpLDR:
		fmt.Fprintf(sb, "ldr %s, %s", instr.MemReg, instr.MemAddr)
	case OpSTR:
		fmt.Fprintf(sb, "str %s, %s", instr.MemReg, instr.MemAddr)
	case OpVLDR:
		fmt.Fprintf(sb, "vldr %s, %s", instr.MemReg, instr.MemAddr)
	case OpVSTR:
		fmt.Fprintf(sb, "vstr %s, %s", instr.MemReg, instr.MemAddr)
	case OpVCVT:
		fmt.Fprintf(sb, "vcvt %s, %s", instr.Dst, instr.Src)
	case OpCall:
		fmt.Fprintf(sb, "bl fn%d", instr.Callee)
	case OpTailCall:
		fmt.Fprintf(sb, "b fn%d", instr.Callee)
	case OpRet:
		if instr.HasRet {
			fmt.Fprintf(sb, "mov r0, %s; bx lr", instr.RetVal)
		} else {
			sb.WriteString("bx lr")
		}
	default:
		sb.WriteString("?")
	}
}

func movSuffix(k MovKind) string {
	switch k {
	case MovImm:
		return ""
	case MovWT:
		return "32"
	default:
		return ""
	}
}
