package mc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A true two-cycle (v1<-v2, v2<-v1, the classic swap pattern) cannot be
// constructed through ir.EmitPhi's public API, since it takes a complete,
// immutable incomings list with no way to patch a forward reference to a
// sibling phi after the fact. resolveParallelMoves is exercised directly
// here instead, with hand-built parallelMove values standing in for what
// deconstructPhis would have produced from such a pair of phis.
func TestResolveParallelMoves_TwoCycleSwap(t *testing.T) {
	b := &Builder{vregs: VRegAllocator{}}
	v1 := b.vregs.Int()
	v2 := b.vregs.Int()

	moves := []parallelMove{
		{dst: v1, src: RegOperand(v2)},
		{dst: v2, src: RegOperand(v1)},
	}
	out := resolveParallelMoves(b, moves)
	require.Len(t, out, 3, "a two-cycle breaks into save-to-scratch plus one move per register")

	scratch := out[0].Dst.Reg
	require.Equal(t, OpMov, out[0].Opcode)
	require.Equal(t, RegOperand(v1), out[0].Src, "scratch must save the cycle entry's original value before it is clobbered")
	require.Equal(t, scratch, out[0].Dst.Reg)

	require.Equal(t, v1, out[1].Dst.Reg)
	require.Equal(t, RegOperand(v2), out[1].Src, "v1 takes v2's live value first")

	require.Equal(t, v2, out[2].Dst.Reg)
	require.Equal(t, RegOperand(scratch), out[2].Src, "v2 closes the cycle from the saved scratch, not from the now-overwritten v1")
}

// A three-cycle (v1<-v2, v2<-v3, v3<-v1) must resolve the same way: one
// scratch register holding the entry's original value, every move replayed
// in chain order, and the final move reading from scratch.
func TestResolveParallelMoves_ThreeCycle(t *testing.T) {
	b := &Builder{vregs: VRegAllocator{}}
	v1 := b.vregs.Int()
	v2 := b.vregs.Int()
	v3 := b.vregs.Int()

	moves := []parallelMove{
		{dst: v1, src: RegOperand(v2)},
		{dst: v2, src: RegOperand(v3)},
		{dst: v3, src: RegOperand(v1)},
	}
	out := resolveParallelMoves(b, moves)
	require.Len(t, out, 4)

	scratch := out[0].Dst.Reg
	require.Equal(t, RegOperand(v1), out[0].Src)
	require.Equal(t, v1, out[1].Dst.Reg)
	require.Equal(t, RegOperand(v2), out[1].Src)
	require.Equal(t, v2, out[2].Dst.Reg)
	require.Equal(t, RegOperand(v3), out[2].Src)
	require.Equal(t, v3, out[3].Dst.Reg)
	require.Equal(t, RegOperand(scratch), out[3].Src)
}

// A move chain that is not a cycle (v1<-v2 must read the old v2 before
// v2<-v3 overwrites it) needs no scratch register at all.
func TestResolveParallelMoves_AcyclicChainNeedsNoScratch(t *testing.T) {
	b := &Builder{vregs: VRegAllocator{}}
	v1 := b.vregs.Int()
	v2 := b.vregs.Int()
	v3 := b.vregs.Int()

	moves := []parallelMove{
		{dst: v1, src: RegOperand(v2)},
		{dst: v2, src: RegOperand(v3)},
	}
	out := resolveParallelMoves(b, moves)
	require.Len(t, out, 2)
	require.Equal(t, v1, out[0].Dst.Reg, "v1<-v2 must run before v2<-v3 overwrites the old v2")
	require.Equal(t, RegOperand(v2), out[0].Src)
	require.Equal(t, v2, out[1].Dst.Reg)
}
