// Package mc implements MC operands and stack layout, the VFP
// calling-convention resolver, the ARM-family MC instruction set, and the
// IR-to-MC builder (phi deconstruction, immediate/stack-operand expansion,
// GEP strength reduction).
package mc

import "fmt"

// VReg is a virtual register: an unbounded identifier resolved to a
// physical register or stack slot by the register allocator (out of scope
// for this module). Bit 32 tags the float/int register bank and bits
// [33:41) optionally carry a permanently pinned RealReg, set via
// FromRealReg for registers that never pass through allocation.
type VReg uint64

const (
	vregFloatBit  = uint64(1) << 32
	vregRealShift = 33
)

// NewIntVReg returns a fresh, unpinned integer-bank virtual register.
func NewIntVReg(id uint32) VReg { return VReg(id) }

// NewFloatVReg returns a fresh, unpinned VFP-bank virtual register.
func NewFloatVReg(id uint32) VReg { return VReg(id) | VReg(vregFloatBit) }

// FromRealReg returns a VReg permanently pinned to a physical register, used
// for the always-fixed frame registers (fp, sp, ip) that never pass through
// register allocation.
func FromRealReg(r RealReg) VReg {
	v := VReg(r)<<vregRealShift | VReg(uint32(r)) // id mirrors the RealReg for readable names
	if r.IsFloat() {
		v |= VReg(vregFloatBit)
	}
	return v
}

// ID returns the bare identifier, without the register-bank or pin tags.
func (v VReg) ID() uint32 { return uint32(v) }

// IsFloat reports whether v lives in the VFP register bank.
func (v VReg) IsFloat() bool { return uint64(v)&vregFloatBit != 0 }

// PinnedReal returns the RealReg this VReg is permanently pinned to, or
// RealRegInvalid if it is a genuine virtual register awaiting allocation.
func (v VReg) PinnedReal() RealReg { return RealReg(v >> vregRealShift) }

func (v VReg) String() string {
	if r := v.PinnedReal(); r != RealRegInvalid {
		return r.String()
	}
	if v.IsFloat() {
		return fmt.Sprintf("vf%d", v.ID())
	}
	return fmt.Sprintf("v%d", v.ID())
}

// VRegAllocator hands out fresh VRegs with sequential ids per bank.
type VRegAllocator struct{ nextInt, nextFloat uint32 }

func (a *VRegAllocator) Int() VReg {
	v := NewIntVReg(a.nextInt)
	a.nextInt++
	return v
}

func (a *VRegAllocator) Float() VReg {
	v := NewFloatVReg(a.nextFloat)
	a.nextFloat++
	return v
}

// RealReg is a physical ARM-family register.
type RealReg byte

const (
	RealRegInvalid RealReg = iota
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	Fp // r11
	Ip // r12, scratch register used by post-regalloc stack expansion
	Sp // r13
	Lr // r14
	Pc // r15
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	S12
	S13
	S14
	S15
	D0
	D1
	D2
	D3
	D4
	D5
	D6
	D7
)

var realRegNames = [...]string{
	RealRegInvalid: "invalid",
	R0: "r0", R1: "r1", R2: "r2", R3: "r3", R4: "r4", R5: "r5", R6: "r6", R7: "r7",
	R8: "r8", R9: "r9", R10: "r10", Fp: "fp", Ip: "ip", Sp: "sp", Lr: "lr", Pc: "pc",
	S0: "s0", S1: "s1", S2: "s2", S3: "s3", S4: "s4", S5: "s5", S6: "s6", S7: "s7",
	S8: "s8", S9: "s9", S10: "s10", S11: "s11", S12: "s12", S13: "s13", S14: "s14", S15: "s15",
	D0: "d0", D1: "d1", D2: "d2", D3: "d3", D4: "d4", D5: "d5", D6: "d6", D7: "d7",
}

func (r RealReg) String() string { return realRegNames[r] }

// IsFloat reports whether r is a VFP register.
func (r RealReg) IsFloat() bool { return r >= S0 }

// IntArgRegs is the ordered pool of integer/pointer argument registers.
var IntArgRegs = []RealReg{R0, R1, R2, R3}

// SingleArgRegs is the ordered pool of single-precision argument registers.
var SingleArgRegs = []RealReg{S0, S1, S2, S3, S4, S5, S6, S7, S8, S9, S10, S11, S12, S13, S14, S15}

// DoubleArgRegs is the ordered pool of double-precision argument registers.
var DoubleArgRegs = []RealReg{D0, D1, D2, D3, D4, D5, D6, D7}

// Constraint pins a VReg to a RealReg at one instruction boundary: the
// contract the register allocator must honour for a pinned virtual
// register.
type Constraint struct {
	VReg VReg
	Real RealReg
}

// ImmKind tags an Imm operand's payload.
type ImmKind byte

const (
	ImmInt ImmKind = iota
	ImmFloat
	ImmLabel
)

// Imm is an immediate operand: an integer, a float bit-pattern, or a label
// reference (for literal-pool loads and branch targets).
type Imm struct {
	Kind  ImmKind
	Int   int64
	Float float64
	Label string
}

// FitsImmediate reports whether v encodes as an ARM rotated 8-bit immediate.
// Never fatal if it doesn't: the caller always falls back to synthesising
// the value via a MOVW/MOVT pair.
func FitsImmediate(v int64) bool {
	if v < 0 || v > 0xffffffff {
		return false
	}
	u := uint32(v)
	for rot := 0; rot < 32; rot += 2 {
		rotated := (u << rot) | (u >> (32 - rot))
		if rotated <= 0xff {
			return true
		}
	}
	return false
}

// StackOperandKind distinguishes the four kinds of frame-relative storage.
type StackOperandKind byte

const (
	SelfArg   StackOperandKind = iota // an incoming argument spilled by the caller, fp-plus
	Local                             // a local variable's Alloca slot, fp-minus
	Spill                             // a register-allocator spill slot, fp-minus
	CallParam                         // an outgoing argument for a call, sp-plus
)

func (k StackOperandKind) String() string {
	switch k {
	case SelfArg:
		return "self_arg"
	case Local:
		return "local"
	case Spill:
		return "spill"
	case CallParam:
		return "call_param"
	default:
		return "?"
	}
}

// StackOperand addresses a frame-relative memory location.
type StackOperand struct {
	Kind   StackOperandKind
	Offset int64
}

// Operand is an instruction operand: a virtual register, an immediate, or a
// stack location. Exactly one of the three is meaningful, selected by Kind.
type Operand struct {
	Kind  OperandKind
	Reg   VReg
	Imm   Imm
	Stack StackOperand
}

type OperandKind byte

const (
	OperandReg OperandKind = iota
	OperandImm
	OperandStack
)

func RegOperand(r VReg) Operand   { return Operand{Kind: OperandReg, Reg: r} }
func ImmOperand(i Imm) Operand    { return Operand{Kind: OperandImm, Imm: i} }
func StackOp(s StackOperand) Operand { return Operand{Kind: OperandStack, Stack: s} }
