package ir

import (
	"github.com/armccomp/armcc/internal/ast"
	"github.com/armccomp/armcc/internal/types"
)

// Module is the per-translation-unit value arena, the name→function and
// name→global-variable maps, the symbol→definition map, and the builder's
// insertion point (current function, current block).
type Module struct {
	Name string

	values       types.Pool[valueData]
	blocks       types.Pool[basicBlock]
	instructions types.Pool[Instruction]
	functions    types.Pool[function]

	functionsByName map[string]Value
	globalsByName   map[string]Value
	globalOrder     []Value

	// Sym2Def maps a semantic-analyzer symbol id to the IR value that backs
	// its storage: an Alloca in some function's entry block for locals and
	// parameters, or a GlobalVariable for globals.
	Sym2Def map[ast.SymbolID]Value

	curFunc  FunctionID
	curBlock BasicBlockID
}

const noFunction FunctionID = 0xffffffff

// NewModule returns an empty Module ready for the builder to populate.
func NewModule(name string) *Module {
	return &Module{
		Name:            name,
		values:          types.NewPool[valueData](),
		blocks:          types.NewPool[basicBlock](),
		instructions:    types.NewPool[Instruction](),
		functions:       types.NewPool[function](),
		functionsByName: make(map[string]Value),
		globalsByName:   make(map[string]Value),
		Sym2Def:         make(map[ast.SymbolID]Value),
		curFunc:         noFunction,
		curBlock:        invalidBasicBlockID,
	}
}

// Functions returns every function in declaration order of allocation.
func (m *Module) Functions() []Function {
	out := make([]Function, m.functions.Allocated())
	for i := range out {
		out[i] = m.function(FunctionID(i))
	}
	return out
}

// FunctionByName looks up a declared function by name.
func (m *Module) FunctionByName(name string) (Value, bool) {
	v, ok := m.functionsByName[name]
	return v, ok
}

// GlobalByName looks up a declared global variable by name.
func (m *Module) GlobalByName(name string) (Value, bool) {
	v, ok := m.globalsByName[name]
	return v, ok
}

// Globals returns every global variable in declaration order.
func (m *Module) Globals() []Value {
	return append([]Value(nil), m.globalOrder...)
}

// CurrentFunction returns the function the builder is currently emitting
// into.
func (m *Module) CurrentFunction() Function { return m.function(m.curFunc) }

// CurrentBlock returns the block the builder is currently emitting into.
func (m *Module) CurrentBlock() BasicBlock { return m.block(m.curBlock) }

// SetInsertPoint moves the builder's cursor to the given block.
func (m *Module) SetInsertPoint(bb BasicBlockID) { m.curBlock = bb }

// --- value/global/function allocation -------------------------------------

// AllocConst allocates a Const value.
func (m *Module) AllocConst(ty *types.Type, c ConstValue) Value {
	v := m.newValue(ValueKindConst, ty)
	vd := m.values.View(int(v.ID()))
	vd.constKind = c.Kind
	vd.constInt = c.Int
	vd.constFloat = c.Float
	vd.constBool = c.Bool
	return v
}

// ConstData returns the flattened constant payload for a Const value.
func (m *Module) ConstData(v Value) ConstValue {
	vd := m.values.View(int(v.ID()))
	return ConstValue{Kind: vd.constKind, Int: vd.constInt, Float: vd.constFloat, Bool: vd.constBool}
}

// AllocGlobal allocates a GlobalVariable value, registers it by name and
// records its symbol-table entry.
func (m *Module) AllocGlobal(name string, ty *types.Type, sym ast.SymbolID, init *ConstValue) Value {
	v := m.newValue(ValueKindGlobalVariable, types.NewTable().Pointer(ty))
	vd := m.values.View(int(v.ID()))
	vd.name = name
	if init != nil {
		vd.globalInit = *init
	} else {
		vd.globalInit = ConstValue{Kind: ConstInt} // bss: zero-initialized
	}
	m.globalsByName[name] = v
	m.globalOrder = append(m.globalOrder, v)
	m.Sym2Def[sym] = v
	return v
}

// GlobalInitializer returns the recorded initializer for a global variable.
func (m *Module) GlobalInitializer(v Value) ConstValue {
	return m.values.View(int(v.ID())).globalInit
}

// AllocParam allocates a Variable value representing an incoming parameter.
func (m *Module) AllocParam(name string, ty *types.Type) Value {
	v := m.newValue(ValueKindVariable, ty)
	m.values.View(int(v.ID())).name = name
	return v
}

// DeclareFunction allocates a Function value and, unless external, an entry
// block, which becomes the insertion point. It returns the Function Value
// and the new function's FunctionID.
func (m *Module) DeclareFunction(name string, retTy *types.Type, isExternal, isVariadic bool) (Value, FunctionID) {
	fnID := FunctionID(m.functions.Allocated())
	fn := m.functions.Allocate()
	fn.id = fnID
	fn.name = name
	fn.retTy = retTy
	fn.isExternal = isExternal
	fn.isVariadic = isVariadic
	fn.entry = invalidBasicBlockID

	v := m.newValue(ValueKindFunction, types.NewTable().Function(&types.Signature{Results: nonVoidResults(retTy)}))
	m.values.View(int(v.ID())).funcID = fnID
	m.functionsByName[name] = v

	m.curFunc = fnID
	if !isExternal {
		entry := m.newBasicBlock("entry")
		m.appendBlock(entry)
		fn.entry = entry
		m.curBlock = entry
	}
	return v, fnID
}

func nonVoidResults(t *types.Type) []*types.Type {
	if t == nil || t.Kind() == types.KindBuiltin && t.Builtin() == types.Void {
		return nil
	}
	return []*types.Type{t}
}

// SetParams records a function's incoming parameter values, in order.
func (m *Module) SetParams(fnID FunctionID, params []Value) {
	m.functions.View(int(fnID)).params = params
}

// --- basic block allocation -------------------------------------------------

// NewBasicBlock allocates and immediately appends a block to the current
// function.
func (m *Module) NewBasicBlock(name string) BasicBlockID {
	id := m.newBasicBlock(name)
	m.appendBlock(id)
	return id
}

// ReserveBasicBlock allocates a block without appending it, to be appended
// later at a controlled point (e.g. a loop's exit block, reserved before
// its body so break statements can target it).
func (m *Module) ReserveBasicBlock(name string) BasicBlockID {
	return m.newBasicBlock(name)
}

// AppendBlock links a previously reserved block into the current function.
func (m *Module) AppendBlock(id BasicBlockID) {
	m.appendBlock(id)
}

func (m *Module) newBasicBlock(name string) BasicBlockID {
	id := BasicBlockID(m.blocks.Allocated())
	bb := m.blocks.Allocate()
	bb.id = id
	bb.name = name
	bb.fn = m.curFunc
	bb.rootInstr = invalidInstructionID
	bb.tailInstr = invalidInstructionID
	return id
}

func (m *Module) appendBlock(id BasicBlockID) {
	bb := m.blocks.View(int(id))
	if bb.appended {
		return
	}
	bb.appended = true
	fn := m.functions.View(int(bb.fn))
	fn.blocks = append(fn.blocks, id)
}

// --- instruction emission ---------------------------------------------------

func (m *Module) allocInstr(op Opcode, ty *types.Type) *Instruction {
	id := InstructionID(m.instructions.Allocated())
	instr := m.instructions.Allocate()
	instr.id = id
	instr.opcode = op
	instr.typ = ty
	instr.prev, instr.next = invalidInstructionID, invalidInstructionID
	if ty != nil {
		instr.result = m.newValue(ValueKindInstruction, ty)
		m.values.View(int(instr.result.ID())).instrID = id
	} else {
		instr.result = ValueInvalid
	}
	return instr
}

// insert appends instr to the current block's instruction list, maintaining
// the block's pred/succ sets when instr is a terminator.
func (m *Module) insert(instr *Instruction) {
	bb := m.blocks.View(int(m.curBlock))
	instr.block = m.curBlock
	if bb.rootInstr == invalidInstructionID {
		bb.rootInstr = instr.id
	} else {
		tail := m.instructions.View(int(bb.tailInstr))
		tail.next = instr.id
		instr.prev = bb.tailInstr
	}
	bb.tailInstr = instr.id

	if instr.opcode.IsTerminator() {
		bb.sealed = true
		switch instr.opcode {
		case OpJump:
			m.addEdge(m.curBlock, instr.target)
		case OpBranch:
			m.addEdge(m.curBlock, instr.trueBB)
			m.addEdge(m.curBlock, instr.falseBB)
		}
	}
}

func (m *Module) addEdge(from, to BasicBlockID) {
	toBB := m.blocks.View(int(to))
	toBB.preds = append(toBB.preds, predInfo{block: from, branch: m.blocks.View(int(from)).tailInstr})
	fromBB := m.blocks.View(int(from))
	fromBB.succs = append(fromBB.succs, to)
}

// Instruction returns the read-only view for an internal InstructionID.
func (m *Module) Instruction(id InstructionID) *Instruction { return m.instructions.View(int(id)) }

// Block exposes the read-only view of a block by id, for consumers outside
// this package (the MC builder, the printer).
func (m *Module) Block(id BasicBlockID) BasicBlock { return m.block(id) }

// FunctionView exposes the read-only view of a function by id.
func (m *Module) FunctionView(id FunctionID) Function { return m.function(id) }
