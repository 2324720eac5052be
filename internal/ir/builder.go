package ir

import (
	"fmt"

	"github.com/armccomp/armcc/internal/ast"
	"github.com/armccomp/armcc/internal/types"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "ir")

// loopFrame is the dynamically-scoped state pushed/popped around loop
// constructs, giving break/continue a target without threading one through
// every statement-lowering call.
type loopFrame struct {
	breakTarget, continueTarget BasicBlockID
}

// Builder walks an annotated AST and a symbol table and emits a Module of
// pre-SSA, basic-block-structured IR.
type Builder struct {
	m         *Module
	syms      ast.SymbolTable
	loopStack []loopFrame
}

// NewBuilder returns a Builder bound to the given symbol table.
func NewBuilder(syms ast.SymbolTable) *Builder {
	return &Builder{syms: syms}
}

// Build lowers an entire translation unit into a fresh Module.
func (b *Builder) Build(name string, tu *ast.TransUnit) (*Module, error) {
	b.m = NewModule(name)
	for _, vd := range tu.VarDecls {
		b.buildGlobal(vd)
	}
	for _, fd := range tu.FuncDecls {
		log.WithField("func", fd.Name).Debug("lowering function")
		if err := b.buildFunction(fd); err != nil {
			return nil, fmt.Errorf("function %q: %w", fd.Name, err)
		}
	}
	return b.m, nil
}

// --- declarations ------------------------------------------------------

func (b *Builder) buildGlobal(vd *ast.VarDecl) {
	var init *ConstValue
	switch v := vd.Init.(type) {
	case ast.ScalarInit:
		cv := b.constFromExpr(v.Expr)
		init = &cv
	case ast.ListInit:
		queue := append([]ast.InitVal(nil), v.Items...)
		cv := b.buildConstArrayInit(&queue, vd.Type)
		init = &cv
	}
	b.m.AllocGlobal(vd.Name, vd.Type, vd.SemaRef.SymbolID, init)
}

func (b *Builder) buildFunction(fd *ast.FuncDecl) error {
	isExternal := fd.IsExternal()
	_, fnID := b.m.DeclareFunction(fd.Name, fd.RetTy, isExternal, false)

	params := make([]Value, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = b.m.AllocParam(p.Name, p.Type)
	}
	b.m.SetParams(fnID, params)

	if isExternal {
		return nil
	}

	for i, p := range fd.Params {
		alloca := b.m.EmitAlloca(p.Type)
		b.m.Sym2Def[p.SemaRef.SymbolID] = alloca
		b.m.EmitStore(alloca, params[i])
	}

	if fd.Body != nil {
		return b.buildStmt(fd.Body)
	}
	return nil
}

func (b *Builder) buildLocalDecl(vd *ast.VarDecl) error {
	alloca := b.m.EmitAlloca(vd.Type)
	b.m.Sym2Def[vd.SemaRef.SymbolID] = alloca

	switch v := vd.Init.(type) {
	case ast.ScalarInit:
		val, err := b.buildExpr(v.Expr, false)
		if err != nil {
			return err
		}
		b.m.EmitStore(alloca, val)
	case ast.ListInit:
		queue := append([]ast.InitVal(nil), v.Items...)
		return b.buildArrayInitVal(alloca, &queue, vd.Type)
	}
	return nil
}

// --- array initializers -------------------------------------------------

// buildArrayInitVal lowers a (possibly under- or over-nested) braced
// initializer into a sequence of GEP+Store instructions in row-major order,
// consuming a FIFO queue shared across the whole recursion so a flat tail of
// scalars can spill across an array-of-array boundary.
func (b *Builder) buildArrayInitVal(ptr Value, queue *[]ast.InitVal, arrTy *types.Type) error {
	i32 := tbl.Builtin(types.Int)
	zero := b.m.AllocConst(i32, ConstValue{Kind: ConstInt})
	dim := arrTy.ArrayLen()
	elemTy := arrTy.ArrayElem()

	for i := 0; i < dim; i++ {
		if len(*queue) == 0 {
			break // remaining elements are implicitly zero.
		}
		idxI := b.m.AllocConst(i32, ConstValue{Kind: ConstInt, Int: int64(i)})
		gep := b.m.EmitGEP(ptr, []Value{zero, idxI}, elemTy)

		if elemTy.IsArray() {
			if li, ok := (*queue)[0].(ast.ListInit); ok {
				*queue = (*queue)[1:]
				sub := append([]ast.InitVal(nil), li.Items...)
				if err := b.buildArrayInitVal(gep, &sub, elemTy); err != nil {
					return err
				}
			} else if err := b.buildArrayInitVal(gep, queue, elemTy); err != nil {
				// Under-nested: the caller's items are flat, so the
				// sub-array peels directly off the same outer queue.
				return err
			}
			continue
		}

		scalar := firstScalar((*queue)[0])
		*queue = (*queue)[1:]
		if scalar == nil {
			continue
		}
		val, err := b.buildExpr(scalar, false)
		if err != nil {
			return err
		}
		b.m.EmitStore(gep, val)
	}
	return nil
}

// firstScalar extracts the leaf expression from an InitVal, unwrapping one
// level of over-nesting (a lone scalar wrapped in an extra brace pair).
func firstScalar(iv ast.InitVal) ast.Expr {
	switch v := iv.(type) {
	case ast.ScalarInit:
		return v.Expr
	case ast.ListInit:
		if len(v.Items) == 1 {
			return firstScalar(v.Items[0])
		}
	}
	return nil
}

// buildConstArrayInit is buildArrayInitVal's constant-folding twin, used for
// global-variable initializers: it shares the same FIFO/dimension-walk
// algorithm but produces one flat, row-major list of scalar ConstValues (one
// per element, zero where the initializer runs out) rather than emitting
// GEP/Store instructions, since a global's initial value is static data, not
// a procedural sequence of stores.
func (b *Builder) buildConstArrayInit(queue *[]ast.InitVal, arrTy *types.Type) ConstValue {
	dim := arrTy.ArrayLen()
	elemTy := arrTy.ArrayElem()
	var elems []ConstValue

	for i := 0; i < dim; i++ {
		var head ast.InitVal // stays nil once the queue is exhausted: the rest is zero.
		if len(*queue) > 0 {
			head = (*queue)[0]
		}
		if elemTy.IsArray() {
			if li, ok := head.(ast.ListInit); ok {
				*queue = (*queue)[1:]
				sub := append([]ast.InitVal(nil), li.Items...)
				elems = append(elems, b.buildConstArrayInit(&sub, elemTy).Elements...)
			} else {
				elems = append(elems, b.buildConstArrayInit(queue, elemTy).Elements...)
			}
			continue
		}
		var cv ConstValue
		if head != nil {
			if scalar := firstScalar(head); scalar != nil {
				cv = b.constFromExpr(scalar)
			}
			*queue = (*queue)[1:]
		}
		elems = append(elems, cv)
	}
	return ConstValue{Elements: elems}
}

func (b *Builder) constFromExpr(e ast.Expr) ConstValue {
	switch v := e.(type) {
	case *ast.IntLit:
		return ConstValue{Kind: ConstInt, Int: v.Value}
	case *ast.FloatLit:
		return ConstValue{Kind: ConstFloat, Float: v.Value}
	case *ast.BoolLit:
		return ConstValue{Kind: ConstBool, Bool: v.Value}
	default:
		return ConstValue{}
	}
}

// --- statements ----------------------------------------------------------

func (b *Builder) buildStmt(s ast.Stmt) error {
	switch v := s.(type) {
	case *ast.BlockStmt:
		for _, st := range v.Stmts {
			if err := b.buildStmt(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStmt:
		return b.buildIf(v)
	case *ast.WhileStmt:
		return b.buildWhile(v)
	case *ast.ForStmt:
		return b.buildFor(v)
	case *ast.BreakStmt:
		if len(b.loopStack) == 0 {
			return &ErrBreakOutsideLoop{}
		}
		b.m.EmitJump(b.loopStack[len(b.loopStack)-1].breakTarget)
		return nil
	case *ast.ContinueStmt:
		if len(b.loopStack) == 0 {
			return &ErrContinueOutsideLoop{}
		}
		b.m.EmitJump(b.loopStack[len(b.loopStack)-1].continueTarget)
		return nil
	case *ast.ReturnStmt:
		val := ValueInvalid
		if v.Expr != nil {
			var err error
			val, err = b.buildExpr(v.Expr, false)
			if err != nil {
				return err
			}
		}
		b.m.EmitReturn(val)
		return nil
	case *ast.ExprStmt:
		_, err := b.buildExpr(v.Expr, false)
		return err
	case *ast.DeclStmt:
		return b.buildLocalDecl(v.Decl)
	default:
		return &ErrUnsupportedConstruct{Construct: fmt.Sprintf("statement %T", s)}
	}
}

func (b *Builder) buildIf(s *ast.IfStmt) error {
	trueBB := b.m.ReserveBasicBlock("if.then")
	exitBB := b.m.ReserveBasicBlock("if.end")
	falseBB := exitBB
	if s.Else != nil {
		falseBB = b.m.ReserveBasicBlock("if.else")
	}

	b.lowerCond(s.Cond, trueBB, falseBB)

	b.m.AppendBlock(trueBB)
	b.m.SetInsertPoint(trueBB)
	if err := b.buildStmt(s.Then); err != nil {
		return err
	}
	b.m.EmitJump(exitBB)

	if s.Else != nil {
		b.m.AppendBlock(falseBB)
		b.m.SetInsertPoint(falseBB)
		if err := b.buildStmt(s.Else); err != nil {
			return err
		}
		b.m.EmitJump(exitBB)
	}

	b.m.AppendBlock(exitBB)
	b.m.SetInsertPoint(exitBB)
	return nil
}

func (b *Builder) buildWhile(s *ast.WhileStmt) error {
	condBB := b.m.NewBasicBlock("while.cond")
	bodyBB := b.m.NewBasicBlock("while.body")
	endBB := b.m.ReserveBasicBlock("while.end")

	b.m.EmitJump(condBB)

	b.m.SetInsertPoint(condBB)
	b.lowerCond(s.Cond, bodyBB, endBB)

	b.m.SetInsertPoint(bodyBB)
	b.loopStack = append(b.loopStack, loopFrame{breakTarget: endBB, continueTarget: condBB})
	err := b.buildStmt(s.Body)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	if err != nil {
		return err
	}
	b.m.EmitJump(condBB)

	b.m.AppendBlock(endBB)
	b.m.SetInsertPoint(endBB)
	return nil
}

func (b *Builder) buildFor(s *ast.ForStmt) error {
	if s.Init != nil {
		if err := b.buildStmt(s.Init); err != nil {
			return err
		}
	}

	condBB := b.m.NewBasicBlock("for.cond")
	bodyBB := b.m.NewBasicBlock("for.body")
	updateBB := b.m.NewBasicBlock("for.update")
	endBB := b.m.ReserveBasicBlock("for.end")

	b.m.EmitJump(condBB)
	b.m.SetInsertPoint(condBB)
	if s.Cond != nil {
		b.lowerCond(s.Cond, bodyBB, endBB)
	} else {
		b.m.EmitJump(bodyBB)
	}

	b.m.SetInsertPoint(bodyBB)
	b.loopStack = append(b.loopStack, loopFrame{breakTarget: endBB, continueTarget: updateBB})
	err := b.buildStmt(s.Body)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	if err != nil {
		return err
	}
	b.m.EmitJump(updateBB)

	b.m.SetInsertPoint(updateBB)
	if s.Update != nil {
		if _, err := b.buildExpr(s.Update, false); err != nil {
			return err
		}
	}
	b.m.EmitJump(condBB)

	b.m.AppendBlock(endBB)
	b.m.SetInsertPoint(endBB)
	return nil
}

// lowerCond lowers a condition expression directly to a branch between
// trueBB and falseBB, short-circuiting && and || so a boolean operator never
// materializes a value it only uses as a branch condition.
func (b *Builder) lowerCond(cond ast.Expr, trueBB, falseBB BasicBlockID) {
	if bin, ok := cond.(*ast.Binary); ok {
		switch bin.Op {
		case ast.OpLAnd:
			next := b.m.ReserveBasicBlock("and.rhs")
			b.lowerCond(bin.Left, next, falseBB)
			b.m.AppendBlock(next)
			b.m.SetInsertPoint(next)
			b.lowerCond(bin.Right, trueBB, falseBB)
			return
		case ast.OpLOr:
			next := b.m.ReserveBasicBlock("or.rhs")
			b.lowerCond(bin.Left, trueBB, next)
			b.m.AppendBlock(next)
			b.m.SetInsertPoint(next)
			b.lowerCond(bin.Right, trueBB, falseBB)
			return
		}
	}
	val, err := b.buildExpr(cond, false)
	if err != nil {
		// A condition that fails to lower cannot produce a meaningful
		// branch; emit an always-false branch so the CFG stays well-formed.
		// lowerCond has no error return, so the failure is logged here and
		// the branch falls through to falseBB.
		log.WithError(err).Error("condition lowering failed")
		b.m.EmitJump(falseBB)
		return
	}
	b.m.EmitBranch(val, trueBB, falseBB)
}

// --- expressions -----------------------------------------------------------

// buildExpr lowers e. isLval governs whether an identifier or memory-access
// expression yields its address (for assignment's LHS) or its loaded value.
func (b *Builder) buildExpr(e ast.Expr, isLval bool) (Value, error) {
	switch v := e.(type) {
	case *ast.Ident:
		addr, ok := b.m.Sym2Def[v.SemaRef.SymbolID]
		if !ok {
			return ValueInvalid, &ErrSemanticMissingDefinition{SymbolID: uint32(v.SemaRef.SymbolID)}
		}
		if isLval {
			return addr, nil
		}
		return b.m.EmitLoad(addr, v.ExprType()), nil

	case *ast.IntLit:
		return b.m.AllocConst(v.ExprType(), ConstValue{Kind: ConstInt, Int: v.Value}), nil
	case *ast.FloatLit:
		return b.m.AllocConst(v.ExprType(), ConstValue{Kind: ConstFloat, Float: v.Value}), nil
	case *ast.BoolLit:
		return b.m.AllocConst(v.ExprType(), ConstValue{Kind: ConstBool, Bool: v.Value}), nil

	case *ast.Assign:
		lhs, err := b.buildExpr(v.LHS, true)
		if err != nil {
			return ValueInvalid, err
		}
		rhs, err := b.buildExpr(v.RHS, false)
		if err != nil {
			return ValueInvalid, err
		}
		b.m.EmitStore(lhs, rhs)
		return rhs, nil

	case *ast.Unary:
		return b.buildUnary(v)

	case *ast.Binary:
		return b.buildBinary(v)

	case *ast.Call:
		return b.buildCall(v)

	default:
		return ValueInvalid, &ErrUnsupportedConstruct{Construct: fmt.Sprintf("expression %T", e)}
	}
}

func (b *Builder) buildUnary(u *ast.Unary) (Value, error) {
	switch u.Op {
	case ast.UnaryPlus, ast.UnaryMinus:
		val, err := b.buildExpr(u.Operand, false)
		if err != nil {
			return ValueInvalid, err
		}
		ty := u.ExprType()
		zero := b.zeroOf(ty)
		op := BinAdd
		if u.Op == ast.UnaryMinus {
			op = BinSub
		}
		return b.m.EmitBinOp(op, zero, val, ty), nil
	default:
		return ValueInvalid, &ErrUnsupportedConstruct{Construct: "unary operator " + unaryOpName(u.Op)}
	}
}

func unaryOpName(op ast.UnaryOp) string {
	switch op {
	case ast.UnaryNot:
		return "!"
	case ast.UnaryBitNot:
		return "~"
	case ast.UnaryPreInc, ast.UnaryPostInc:
		return "++"
	case ast.UnaryPreDec, ast.UnaryPostDec:
		return "--"
	default:
		return "?"
	}
}

func (b *Builder) zeroOf(ty *types.Type) Value {
	if ty.IsFloat() {
		return b.m.AllocConst(ty, ConstValue{Kind: ConstFloat})
	}
	return b.m.AllocConst(ty, ConstValue{Kind: ConstInt})
}

var binOpMap = map[ast.BinOp]BinOpKind{
	ast.OpAdd: BinAdd, ast.OpSub: BinSub, ast.OpMul: BinMul, ast.OpDiv: BinDiv, ast.OpMod: BinMod,
	ast.OpLT: BinLT, ast.OpLE: BinLE, ast.OpGT: BinGT, ast.OpGE: BinGE, ast.OpEQ: BinEQ, ast.OpNE: BinNE,
}

func (b *Builder) buildBinary(bin *ast.Binary) (Value, error) {
	if bin.Op == ast.OpLAnd || bin.Op == ast.OpLOr {
		// A boolean operator used as a value (not as a branch condition)
		// still must not materialize a compare it doesn't need: lower it
		// through the same short-circuit machinery, writing the result to a
		// fresh local so both arms define it before the value is read.
		return b.buildShortCircuitValue(bin)
	}
	lhs, err := b.buildExpr(bin.Left, false)
	if err != nil {
		return ValueInvalid, err
	}
	rhs, err := b.buildExpr(bin.Right, false)
	if err != nil {
		return ValueInvalid, err
	}
	op, ok := binOpMap[bin.Op]
	if !ok {
		return ValueInvalid, &ErrUnsupportedConstruct{Construct: "binary operator"}
	}
	return b.m.EmitBinOp(op, lhs, rhs, bin.ExprType()), nil
}

// buildShortCircuitValue materializes a &&/|| expression's boolean result
// via a scratch alloca: both branches store 1/0 into it and a Load yields
// the value. This keeps the branch-free short-circuit rule intact for
// conditions used directly in `if`/`while`/`for` (they go through lowerCond
// and never call this), while still giving a well-defined value when the
// same operator appears in value position (e.g. `x = a || b;`).
func (b *Builder) buildShortCircuitValue(bin *ast.Binary) (Value, error) {
	ty := bin.ExprType()
	slot := b.m.EmitAlloca(ty)

	trueBB := b.m.ReserveBasicBlock("sc.true")
	falseBB := b.m.ReserveBasicBlock("sc.false")
	exitBB := b.m.ReserveBasicBlock("sc.end")

	b.lowerCond(bin, trueBB, falseBB)

	b.m.AppendBlock(trueBB)
	b.m.SetInsertPoint(trueBB)
	b.m.EmitStore(slot, b.m.AllocConst(ty, ConstValue{Kind: ConstBool, Bool: true, Int: 1}))
	b.m.EmitJump(exitBB)

	b.m.AppendBlock(falseBB)
	b.m.SetInsertPoint(falseBB)
	b.m.EmitStore(slot, b.m.AllocConst(ty, ConstValue{Kind: ConstBool, Bool: false}))
	b.m.EmitJump(exitBB)

	b.m.AppendBlock(exitBB)
	b.m.SetInsertPoint(exitBB)
	return b.m.EmitLoad(slot, ty), nil
}

func (b *Builder) buildCall(c *ast.Call) (Value, error) {
	fnVal, ok := b.m.FunctionByName(c.Callee)
	if !ok {
		return ValueInvalid, &ErrSemanticMissingDefinition{Identifier: c.Callee}
	}
	fnID := b.m.values.View(int(fnVal.ID())).funcID

	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		val, err := b.buildExpr(a, false)
		if err != nil {
			return ValueInvalid, err
		}
		args[i] = val
	}

	var resultTy *types.Type
	retTy := b.m.function(fnID).ReturnType()
	if retTy != nil && !(retTy.IsBuiltin() && retTy.Builtin() == types.Void) {
		resultTy = retTy
	}
	return b.m.EmitCall(fnID, args, resultTy, false), nil
}
