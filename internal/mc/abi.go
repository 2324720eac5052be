package mc

import (
	"fmt"

	"github.com/armccomp/armcc/internal/ir"
	"github.com/armccomp/armcc/internal/types"
)

// ArgKind is the kind of an ABIArg's location.
type ArgKind byte

const (
	ArgKindReg ArgKind = iota
	ArgKindStack
)

// ABIArg is one parameter or result's resolved location.
type ABIArg struct {
	Index  int
	Kind   ArgKind
	Reg    RealReg
	Offset int64
	Type   *types.Type
}

// ABI is a function's fully resolved calling convention: every parameter
// and result's location, plus the stack-slot size its spilled
// arguments require.
type ABI struct {
	Args         []ABIArg
	Result       *ABIArg // nil for void
	ArgStackSize int64
}

// ErrBadABI is raised when a parameter's type has no representation under
// this convention.
type ErrBadABI struct {
	Type *types.Type
}

func (e *ErrBadABI) Error() string { return fmt.Sprintf("bad ABI: unsupported parameter type %s", e.Type) }

// ABIResolver resolves and memoizes each function's ABI, so a function's
// prologue and every call site that targets it share one resolution.
type ABIResolver struct {
	cache map[ir.FunctionID]*ABI
}

// NewABIResolver returns an empty resolver.
func NewABIResolver() *ABIResolver {
	return &ABIResolver{cache: make(map[ir.FunctionID]*ABI)}
}

// Resolve returns fn's cached ABI, computing it on first use.
func (r *ABIResolver) Resolve(m *ir.Module, fn ir.Function) (*ABI, error) {
	if cached, ok := r.cache[fn.ID()]; ok {
		return cached, nil
	}
	abi, err := resolveStatic(fn.Params(), fn.ReturnType())
	if err != nil {
		return nil, err
	}
	r.cache[fn.ID()] = abi
	return abi, nil
}

// resolveStatic assigns the non-variadic VFP/hard-float hybrid convention:
// integer/pointer args consume r0..r3 then spill; float args consume
// s0..s15 (single) or d0..d7 (double) then spill; the result takes r0 or
// s0/d0.
func resolveStatic(params []ir.Value, retTy *types.Type) (*ABI, error) {
	abi := &ABI{Args: make([]ABIArg, len(params))}
	intIdx, singleIdx, doubleIdx := 0, 0, 0
	var stackOffset int64

	for i, p := range params {
		ty := p.Type()
		arg := ABIArg{Index: i, Type: ty}
		switch {
		case ty.IsInt():
			if intIdx < len(IntArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, IntArgRegs[intIdx]
				intIdx++
			} else {
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 4
			}
		case ty.IsFloat() && ty.Builtin() == types.Double:
			if doubleIdx < len(DoubleArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, DoubleArgRegs[doubleIdx]
				doubleIdx++
			} else {
				if stackOffset%8 != 0 {
					stackOffset += 4
				}
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 8
			}
		case ty.IsFloat():
			if singleIdx < len(SingleArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, SingleArgRegs[singleIdx]
				singleIdx++
			} else {
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 4
			}
		default:
			return nil, &ErrBadABI{Type: ty}
		}
		abi.Args[i] = arg
	}
	abi.ArgStackSize = alignTo(stackOffset, 8)

	if retTy != nil && !(retTy.IsBuiltin() && retTy.Builtin() == types.Void) {
		res := ABIArg{Type: retTy, Kind: ArgKindReg}
		switch {
		case retTy.IsInt():
			res.Reg = R0
		case retTy.Builtin() == types.Double:
			res.Reg = D0
		case retTy.IsFloat():
			res.Reg = S0
		default:
			return nil, &ErrBadABI{Type: retTy}
		}
		abi.Result = &res
	}
	return abi, nil
}

// ResolveVariadicCall resolves a per-call-site convention for a variadic
// callee: fixed parameters consume the same lanes as resolveStatic, and
// every variadic argument (beyond the fixed parameter count) is assigned
// purely by its runtime type, with single-precision floats promoted to
// double first.
func ResolveVariadicCall(fixedParams []*types.Type, argTypes []*types.Type) ([]ABIArg, int64, error) {
	args := make([]ABIArg, len(argTypes))
	intIdx, singleIdx, doubleIdx := 0, 0, 0
	var stackOffset int64

	for i, ty := range argTypes {
		promoted := ty
		if i >= len(fixedParams) && ty.IsFloat() && ty.Builtin() != types.Double {
			promoted = doubleType(ty)
		}
		arg := ABIArg{Index: i, Type: promoted}
		switch {
		case promoted.IsInt():
			if intIdx < len(IntArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, IntArgRegs[intIdx]
				intIdx++
			} else {
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 4
			}
		case promoted.Builtin() == types.Double:
			if doubleIdx < len(DoubleArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, DoubleArgRegs[doubleIdx]
				doubleIdx++
			} else if intIdx+intIdx%2+1 < len(IntArgRegs) {
				// Split the double across a free even/odd integer register pair.
				intIdx += intIdx % 2
				arg.Kind, arg.Reg = ArgKindReg, IntArgRegs[intIdx]
				intIdx += 2
			} else {
				if stackOffset%8 != 0 {
					stackOffset += 4
				}
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 8
			}
		default:
			if singleIdx < len(SingleArgRegs) {
				arg.Kind, arg.Reg = ArgKindReg, SingleArgRegs[singleIdx]
				singleIdx++
			} else {
				arg.Kind, arg.Offset = ArgKindStack, stackOffset
				stackOffset += 4
			}
		}
		args[i] = arg
	}
	return args, alignTo(stackOffset, 8), nil
}

var doubleTypeTable = types.NewTable()

func doubleType(_ *types.Type) *types.Type { return doubleTypeTable.Builtin(types.Double) }

func alignTo(n int64, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}
