package ir

import "github.com/armccomp/armcc/internal/types"

// This file holds the constructors for each IR instruction variant. Each
// emits into the module's current block and returns the instruction's
// result Value (ValueInvalid for instructions with no result).

var tbl = types.NewTable()

// EmitAlloca reserves sizeof(ty) bytes of stack storage and yields its
// address. Unlike the other constructors it does not use the current block:
// the Alloca is placed at the head of the current function's entry block.
func (m *Module) EmitAlloca(ty *types.Type) Value {
	instr := m.allocInstr(OpAlloca, tbl.Pointer(ty))
	instr.allocaType = ty
	entry := m.blocks.View(int(m.functions.View(int(m.curFunc)).entry))
	instr.block = entry.id
	instr.next = entry.rootInstr
	if entry.rootInstr == invalidInstructionID {
		entry.tailInstr = instr.id
	} else {
		m.instructions.View(int(entry.rootInstr)).prev = instr.id
	}
	entry.rootInstr = instr.id
	return instr.result
}

// EmitLoad reads the value stored at addr.
func (m *Module) EmitLoad(addr Value, ty *types.Type) Value {
	instr := m.allocInstr(OpLoad, ty)
	instr.addr = addr
	m.insert(instr)
	return instr.result
}

// EmitStore writes val to addr. Store has no result.
func (m *Module) EmitStore(addr, val Value) {
	instr := m.allocInstr(OpStore, nil)
	instr.addr = addr
	instr.val = val
	m.insert(instr)
}

// EmitGEP computes an address by stepping through base's aggregate type
// using indices, outermost first.
func (m *Module) EmitGEP(base Value, indices []Value, resultTy *types.Type) Value {
	instr := m.allocInstr(OpGEP, tbl.Pointer(resultTy))
	instr.base = base
	instr.indices = indices
	m.insert(instr)
	return instr.result
}

// EmitBinOp computes lhs `op` rhs.
func (m *Module) EmitBinOp(op BinOpKind, lhs, rhs Value, ty *types.Type) Value {
	instr := m.allocInstr(OpBinOp, ty)
	instr.binOp = op
	instr.lhs, instr.rhs = lhs, rhs
	m.insert(instr)
	return instr.result
}

// EmitCall invokes callee with args. resultTy is nil for a void call.
func (m *Module) EmitCall(callee FunctionID, args []Value, resultTy *types.Type, mustTail bool) Value {
	instr := m.allocInstr(OpCall, resultTy)
	instr.callee = callee
	instr.args = args
	instr.mustTail = mustTail
	m.insert(instr)
	return instr.result
}

// EmitPhi appends a Phi instruction to the current block. Phis only land at
// the head of a block if callers emit all of them before any non-Phi
// instruction.
func (m *Module) EmitPhi(incomings []PhiIncoming, ty *types.Type) Value {
	instr := m.allocInstr(OpPhi, ty)
	instr.incomings = incomings
	m.insert(instr)
	return instr.result
}

// EmitJump closes the current block with an unconditional jump to target.
func (m *Module) EmitJump(target BasicBlockID) {
	instr := m.allocInstr(OpJump, nil)
	instr.target = target
	m.insert(instr)
}

// EmitBranch closes the current block with a conditional branch.
func (m *Module) EmitBranch(cond Value, trueBB, falseBB BasicBlockID) {
	instr := m.allocInstr(OpBranch, nil)
	instr.cond = cond
	instr.trueBB, instr.falseBB = trueBB, falseBB
	m.insert(instr)
}

// EmitReturn closes the current block. val is ValueInvalid for `return;`.
func (m *Module) EmitReturn(val Value) {
	instr := m.allocInstr(OpReturn, nil)
	instr.val = val
	m.insert(instr)
}

// EmitCast converts op to ty via kind.
func (m *Module) EmitCast(kind CastKind, op Value, ty *types.Type) Value {
	instr := m.allocInstr(OpCast, ty)
	instr.castKind = kind
	instr.castOp = op
	m.insert(instr)
	return instr.result
}
