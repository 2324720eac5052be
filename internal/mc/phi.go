package mc

import "github.com/armccomp/armcc/internal/ir"

// deconstructPhis replaces every Phi at the head of a block with a parallel
// move inserted at the end of each predecessor, run once per function after
// every block's instructions have been lowered and every predecessor's
// successor set is final.
func (b *Builder) deconstructPhis(blocks []ir.BasicBlock) error {
	for _, bb := range blocks {
		var phis []*ir.Instruction
		for _, instr := range bb.Instructions() {
			if instr.Opcode() != ir.OpPhi {
				break // Phis are required to be a block's leading instructions.
			}
			phis = append(phis, instr)
		}
		if len(phis) == 0 {
			continue
		}

		// Resolve every phi's destination register up front: one phi's
		// incoming value can itself be a sibling phi in the same block (the
		// swap pattern), and that sibling's destination must already be
		// assigned before operandFor resolves it below.
		for _, phi := range phis {
			b.phiDst(phi)
		}

		preds := bb.Preds()
		for _, pred := range preds {
			predBB := b.m.Block(pred)
			if len(preds) > 1 && len(predBB.Succs()) > 1 {
				return &ErrCriticalEdgeNotSplit{Pred: predBB.Name(), Block: bb.Name()}
			}

			var moves []parallelMove
			for _, phi := range phis {
				for _, inc := range phi.Incomings() {
					if inc.Block != pred {
						continue
					}
					moves = append(moves, parallelMove{
						dst:   b.phiDst(phi),
						src:   b.operandFor(inc.Value),
						float: phi.Result().Type() != nil && phi.Result().Type().IsFloat(),
					})
				}
			}
			asmPred := b.blocks[pred]
			for _, instr := range resolveParallelMoves(b, moves) {
				asmPred.InsertBeforeTerminator(instr)
			}
		}
	}
	return nil
}

// phiDst returns (allocating on first use) the register a Phi's result
// lives in: every predecessor's parallel move writes into this same
// register, so readers of the Phi's value after the merge point see it
// regardless of which edge was taken.
func (b *Builder) phiDst(phi *ir.Instruction) VReg {
	if loc, ok := b.valueLoc[phi.Result().ID()]; ok && loc.Kind == OperandReg {
		return loc.Reg
	}
	v := b.freshVReg(phi.Result().Type())
	b.valueLoc[phi.Result().ID()] = RegOperand(v)
	return v
}

// parallelMove is one simultaneous dst<-src assignment in a Phi's
// deconstruction at a single predecessor edge.
type parallelMove struct {
	dst   VReg
	src   Operand
	float bool
}

// resolveParallelMoves serialises a set of simultaneous moves into an
// order-safe sequence of ordinary moves: a move whose destination is read by
// another pending move must happen after that read, and any dst<-src chain
// that closes into a cycle is broken with one scratch register per cycle.
func resolveParallelMoves(b *Builder, moves []parallelMove) []*Instruction {
	if len(moves) == 0 {
		return nil
	}

	readers := make(map[VReg]int, len(moves))
	for _, m := range moves {
		if m.src.Kind == OperandReg {
			readers[m.src.Reg]++
		}
	}

	var ready, waiting []parallelMove
	for _, m := range moves {
		if readers[m.dst] > 0 {
			waiting = append(waiting, m)
		} else {
			ready = append(ready, m)
		}
	}

	var out []*Instruction
	for len(ready) > 0 {
		m := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		out = append(out, emitMove(m.dst, m.src, m.float))
		if m.src.Kind != OperandReg {
			continue
		}
		readers[m.src.Reg]--

		remaining := waiting[:0]
		for _, w := range waiting {
			if w.dst == m.src.Reg && readers[w.dst] == 0 {
				ready = append(ready, w)
			} else {
				remaining = append(remaining, w)
			}
		}
		waiting = remaining
	}

	// Everything left forms one or more cycles; break each at an arbitrary
	// entry with one scratch register.
	visited := make(map[VReg]bool, len(waiting))
	index := make(map[VReg]parallelMove, len(waiting))
	for _, m := range waiting {
		index[m.dst] = m
	}
	for _, start := range waiting {
		if visited[start.dst] {
			continue
		}
		var cycle []parallelMove
		cur := start.dst
		for {
			m, ok := index[cur]
			if !ok || visited[cur] {
				break
			}
			visited[cur] = true
			cycle = append(cycle, m)
			if m.src.Kind != OperandReg {
				break
			}
			cur = m.src.Reg
		}
		if len(cycle) == 0 {
			continue
		}
		scratch := b.vregs.Int()
		if cycle[0].float {
			scratch = b.vregs.Float()
		}
		// cycle[0].dst's original value is about to be overwritten, but
		// cycle[len-1]'s move needs it (the chain wraps around): save it to
		// scratch, replay every move in chain order using still-live
		// values, then close the loop with the saved value.
		out = append(out, emitMove(scratch, RegOperand(cycle[0].dst), cycle[0].float))
		for i := 0; i < len(cycle); i++ {
			src := cycle[i].src
			if i == len(cycle)-1 {
				src = RegOperand(scratch)
			}
			out = append(out, emitMove(cycle[i].dst, src, cycle[i].float))
		}
	}
	return out
}

func emitMove(dst VReg, src Operand, isFloat bool) *Instruction {
	if isFloat {
		return &Instruction{Opcode: OpVMov, VMovKind: VMovCPY, Dst: RegOperand(dst), Src: src, Defs: []VReg{dst}}
	}
	return &Instruction{Opcode: OpMov, MovKind: MovReg, Dst: RegOperand(dst), Src: src, Defs: []VReg{dst}}
}
