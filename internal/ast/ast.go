// Package ast defines the annotated-AST and symbol-table surface that the
// IR builder consumes. The lexer, parser and semantic analyzer that produce
// these values live outside this module; this package is the minimal,
// concrete contract they must satisfy so the builder compiles and runs
// against real data instead of an unspecified interface.
package ast

import "github.com/armccomp/armcc/internal/types"

// SymbolID identifies a declaration as resolved by the semantic analyzer.
type SymbolID uint32

// Symbol is what the semantic analyzer records for one declaration.
type Symbol struct {
	ID   SymbolID
	Name string
	Type *types.Type
}

// SymbolTable answers identifier-reference resolution queries. The real
// implementation lives in the semantic analyzer; this module only consumes
// it through this interface.
type SymbolTable interface {
	ResolveSymbolByID(id SymbolID) (Symbol, bool)
}

// SemaRef is attached to every declaration and identifier reference by the
// semantic analyzer, carrying the resolved symbol id.
type SemaRef struct {
	SymbolID SymbolID
}

// TransUnit is a whole translation unit: top-level variable and function
// declarations, in source order.
type TransUnit struct {
	VarDecls  []*VarDecl
	FuncDecls []*FuncDecl
}

// VarDecl is a (possibly global) variable declaration.
type VarDecl struct {
	Name    string
	Type    *types.Type
	Init    InitVal // nil if uninitialized
	SemaRef *SemaRef
}

// Param is one formal parameter of a function declaration.
type Param struct {
	Name    string
	Type    *types.Type
	SemaRef *SemaRef
}

// FuncDecl is a function declaration, optionally external (no body).
type FuncDecl struct {
	Name   string
	RetTy  *types.Type
	Params []*Param
	Body   *BlockStmt // nil when external
}

// IsExternal reports whether this declaration has no body to lower.
func (f *FuncDecl) IsExternal() bool { return f.Body == nil }

// InitVal is either a scalar initializer expression or a nested brace list,
// consumed in order (depth-first, row-major) by array-initializer lowering.
type InitVal interface{ isInitVal() }

// ScalarInit wraps a single initializer expression.
type ScalarInit struct{ Expr Expr }

// ListInit is a braced, possibly nested, list of initializers.
type ListInit struct{ Items []InitVal }

func (ScalarInit) isInitVal() {}
func (ListInit) isInitVal()   {}

// Stmt is a statement node.
type Stmt interface{ isStmt() }

type (
	BlockStmt struct{ Stmts []Stmt }

	IfStmt struct {
		Cond Expr
		Then Stmt
		Else Stmt // nil if no else clause
	}

	WhileStmt struct {
		Cond Expr
		Body Stmt
	}

	ForStmt struct {
		Init   Stmt // nil if absent; always an ExprStmt or DeclStmt
		Cond   Expr // nil means "always true"
		Update Expr // nil if absent
		Body   Stmt
	}

	BreakStmt    struct{}
	ContinueStmt struct{}

	ReturnStmt struct{ Expr Expr } // Expr nil for `return;`

	ExprStmt struct{ Expr Expr }

	DeclStmt struct{ Decl *VarDecl }
)

func (*BlockStmt) isStmt()    {}
func (*IfStmt) isStmt()       {}
func (*WhileStmt) isStmt()    {}
func (*ForStmt) isStmt()      {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*ReturnStmt) isStmt()   {}
func (*ExprStmt) isStmt()     {}
func (*DeclStmt) isStmt()     {}

// Expr is an expression node. Every Expr carries its inferred Type, filled
// in by the semantic analyzer.
type Expr interface {
	isExpr()
	ExprType() *types.Type
}

type exprBase struct{ Type *types.Type }

func (e exprBase) ExprType() *types.Type { return e.Type }

// BinOp is the set of binary operators the builder understands.
type BinOp byte

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLT
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
	OpLAnd
	OpLOr
)

type (
	Ident struct {
		exprBase
		SemaRef *SemaRef
	}

	IntLit struct {
		exprBase
		Value int64
	}

	FloatLit struct {
		exprBase
		Value float64
	}

	BoolLit struct {
		exprBase
		Value bool
	}

	Unary struct {
		exprBase
		Op      UnaryOp
		Operand Expr
	}

	Binary struct {
		exprBase
		Op          BinOp
		Left, Right Expr
	}

	Assign struct {
		exprBase
		LHS, RHS Expr
	}

	Call struct {
		exprBase
		Callee string
		Args   []Expr
	}
)

// UnaryOp enumerates the unary operators this subset supports. Only Plus and
// Minus are implemented; the rest surface as UnsupportedConstruct so the
// builder names the gap rather than silently mishandling it.
type UnaryOp byte

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

func (*Ident) isExpr()    {}
func (*IntLit) isExpr()   {}
func (*FloatLit) isExpr() {}
func (*BoolLit) isExpr()  {}
func (*Unary) isExpr()    {}
func (*Binary) isExpr()   {}
func (*Assign) isExpr()   {}
func (*Call) isExpr()     {}
