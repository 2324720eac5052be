package ast

import (
	"encoding/json"
	"fmt"

	"github.com/armccomp/armcc/internal/types"
)

// This file is the concrete bridge across the lexer/parser/semantic-analyzer
// boundary: a JSON encoding of an already-resolved translation unit, the
// shape a real front end would hand this module. cmd/armcc's build/emit-ir
// subcommands read this format directly; nothing in this module ever
// tokenizes or parses C source text.

// typeSpec is a JSON type descriptor: builtin names ("int", "float",
// "void", ...), or a composite tagged by kind.
type typeSpec struct {
	Kind string `json:"kind"`

	Builtin string `json:"builtin,omitempty"`

	Elem *typeSpec `json:"elem,omitempty"` // pointer / array element

	Len      int  `json:"len,omitempty"`
	Complete bool `json:"complete,omitempty"`

	Params   []typeSpec `json:"params,omitempty"`
	Result   *typeSpec  `json:"result,omitempty"`
	Variadic bool       `json:"variadic,omitempty"`
}

var builtinByName = map[string]types.Builtin{
	"void": types.Void, "bool": types.Bool, "char": types.Char, "uchar": types.UChar,
	"short": types.Short, "ushort": types.UShort, "int": types.Int, "uint": types.UInt,
	"int64": types.Int64, "uint64": types.UInt64, "float": types.Float, "double": types.Double,
}

func (t *typeSpec) resolve(tbl *types.Table) (*types.Type, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case "builtin":
		b, ok := builtinByName[t.Builtin]
		if !ok {
			return nil, fmt.Errorf("ast: unknown builtin type %q", t.Builtin)
		}
		return tbl.Builtin(b), nil
	case "pointer":
		elem, err := t.Elem.resolve(tbl)
		if err != nil {
			return nil, err
		}
		return tbl.Pointer(elem), nil
	case "array":
		elem, err := t.Elem.resolve(tbl)
		if err != nil {
			return nil, err
		}
		if !t.Complete {
			return tbl.IncompleteArray(elem), nil
		}
		return tbl.Array(elem, t.Len), nil
	case "function":
		results := make([]*types.Type, 0, 1)
		if t.Result != nil {
			rt, err := t.Result.resolve(tbl)
			if err != nil {
				return nil, err
			}
			if rt != nil {
				results = append(results, rt)
			}
		}
		params := make([]*types.Type, len(t.Params))
		for i := range t.Params {
			pt, err := t.Params[i].resolve(tbl)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		return tbl.Function(&types.Signature{Params: params, Results: results, Variadic: t.Variadic}), nil
	default:
		return nil, fmt.Errorf("ast: unknown type kind %q", t.Kind)
	}
}

type semaRefSpec struct {
	SymbolID uint32 `json:"symbol_id"`
	Name     string `json:"name"`
}

type initValSpec struct {
	Kind  string         `json:"kind"` // "scalar" | "list"
	Expr  *exprSpec      `json:"expr,omitempty"`
	Items []*initValSpec `json:"items,omitempty"`
}

func (iv *initValSpec) resolve(tbl *types.Table, syms *symbolTable) (InitVal, error) {
	switch iv.Kind {
	case "scalar":
		e, err := iv.Expr.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return ScalarInit{Expr: e}, nil
	case "list":
		items := make([]InitVal, len(iv.Items))
		for i, it := range iv.Items {
			v, err := it.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return ListInit{Items: items}, nil
	default:
		return nil, fmt.Errorf("ast: unknown init kind %q", iv.Kind)
	}
}

type varDeclSpec struct {
	Name    string       `json:"name"`
	Type    typeSpec     `json:"type"`
	Init    *initValSpec `json:"init,omitempty"`
	SemaRef semaRefSpec  `json:"sema_ref"`
}

func (v *varDeclSpec) resolve(tbl *types.Table, syms *symbolTable) (*VarDecl, error) {
	ty, err := (&v.Type).resolve(tbl)
	if err != nil {
		return nil, err
	}
	syms.define(SymbolID(v.SemaRef.SymbolID), v.SemaRef.Name, ty)
	vd := &VarDecl{Name: v.Name, Type: ty, SemaRef: &SemaRef{SymbolID: SymbolID(v.SemaRef.SymbolID)}}
	if v.Init != nil {
		init, err := v.Init.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		vd.Init = init
	}
	return vd, nil
}

type paramSpec struct {
	Name    string      `json:"name"`
	Type    typeSpec    `json:"type"`
	SemaRef semaRefSpec `json:"sema_ref"`
}

type funcDeclSpec struct {
	Name   string      `json:"name"`
	RetTy  typeSpec    `json:"ret_type"`
	Params []paramSpec `json:"params"`
	Body   *stmtSpec   `json:"body,omitempty"`
}

func (f *funcDeclSpec) resolve(tbl *types.Table, syms *symbolTable) (*FuncDecl, error) {
	retTy, err := (&f.RetTy).resolve(tbl)
	if err != nil {
		return nil, err
	}
	params := make([]*Param, len(f.Params))
	for i, p := range f.Params {
		pty, err := (&p.Type).resolve(tbl)
		if err != nil {
			return nil, err
		}
		syms.define(SymbolID(p.SemaRef.SymbolID), p.SemaRef.Name, pty)
		params[i] = &Param{Name: p.Name, Type: pty, SemaRef: &SemaRef{SymbolID: SymbolID(p.SemaRef.SymbolID)}}
	}
	fd := &FuncDecl{Name: f.Name, RetTy: retTy, Params: params}
	if f.Body != nil {
		body, err := f.Body.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		block, ok := body.(*BlockStmt)
		if !ok {
			return nil, fmt.Errorf("ast: function %q body must be a block", f.Name)
		}
		fd.Body = block
	}
	return fd, nil
}

// stmtSpec and exprSpec are tagged unions over every concrete Stmt/Expr
// variant; only the fields relevant to Kind are populated.
type stmtSpec struct {
	Kind string `json:"kind"`

	Stmts []*stmtSpec `json:"stmts,omitempty"` // block

	Cond   *exprSpec `json:"cond,omitempty"`
	Then   *stmtSpec `json:"then,omitempty"`
	Else   *stmtSpec `json:"else,omitempty"`
	Body   *stmtSpec `json:"body,omitempty"`
	Init   *stmtSpec `json:"init,omitempty"`
	Update *exprSpec `json:"update,omitempty"`
	Expr   *exprSpec `json:"expr,omitempty"`

	Decl *varDeclSpec `json:"decl,omitempty"`
}

func (s *stmtSpec) resolve(tbl *types.Table, syms *symbolTable) (Stmt, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Kind {
	case "block":
		stmts := make([]Stmt, len(s.Stmts))
		for i, st := range s.Stmts {
			r, err := st.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
			stmts[i] = r
		}
		return &BlockStmt{Stmts: stmts}, nil
	case "if":
		cond, err := s.Cond.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		then, err := s.Then.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		els, err := s.Else.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := s.Cond.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		body, err := s.Body.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil
	case "for":
		init, err := s.Init.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		var cond Expr
		if s.Cond != nil {
			cond, err = s.Cond.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
		}
		var update Expr
		if s.Update != nil {
			update, err = s.Update.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
		}
		body, err := s.Body.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &ForStmt{Init: init, Cond: cond, Update: update, Body: body}, nil
	case "break":
		return &BreakStmt{}, nil
	case "continue":
		return &ContinueStmt{}, nil
	case "return":
		var e Expr
		if s.Expr != nil {
			var err error
			e, err = s.Expr.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStmt{Expr: e}, nil
	case "expr":
		e, err := s.Expr.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: e}, nil
	case "decl":
		vd, err := s.Decl.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &DeclStmt{Decl: vd}, nil
	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q", s.Kind)
	}
}

type exprSpec struct {
	Kind string `json:"kind"`

	Type typeSpec `json:"type"`

	SemaRef *semaRefSpec `json:"sema_ref,omitempty"` // ident

	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty"`

	Op      string    `json:"op,omitempty"`
	Operand *exprSpec `json:"operand,omitempty"`
	Left    *exprSpec `json:"left,omitempty"`
	Right   *exprSpec `json:"right,omitempty"`
	LHS     *exprSpec `json:"lhs,omitempty"`
	RHS     *exprSpec `json:"rhs,omitempty"`

	Callee string      `json:"callee,omitempty"`
	Args   []*exprSpec `json:"args,omitempty"`
}

var unaryOpByName = map[string]UnaryOp{
	"+": UnaryPlus, "-": UnaryMinus, "!": UnaryNot, "~": UnaryBitNot,
	"++pre": UnaryPreInc, "--pre": UnaryPreDec, "++post": UnaryPostInc, "--post": UnaryPostDec,
}

var binOpByName = map[string]BinOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"<": OpLT, "<=": OpLE, ">": OpGT, ">=": OpGE, "==": OpEQ, "!=": OpNE,
	"&&": OpLAnd, "||": OpLOr,
}

func (e *exprSpec) resolve(tbl *types.Table, syms *symbolTable) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	ty, err := (&e.Type).resolve(tbl)
	if err != nil {
		return nil, err
	}
	base := exprBase{Type: ty}
	switch e.Kind {
	case "ident":
		if e.SemaRef == nil {
			return nil, fmt.Errorf("ast: ident missing sema_ref")
		}
		return &Ident{exprBase: base, SemaRef: &SemaRef{SymbolID: SymbolID(e.SemaRef.SymbolID)}}, nil
	case "int":
		return &IntLit{exprBase: base, Value: e.Int}, nil
	case "float":
		return &FloatLit{exprBase: base, Value: e.Float}, nil
	case "bool":
		return &BoolLit{exprBase: base, Value: e.Bool}, nil
	case "unary":
		op, ok := unaryOpByName[e.Op]
		if !ok {
			return nil, fmt.Errorf("ast: unknown unary operator %q", e.Op)
		}
		operand, err := e.Operand.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &Unary{exprBase: base, Op: op, Operand: operand}, nil
	case "binary":
		op, ok := binOpByName[e.Op]
		if !ok {
			return nil, fmt.Errorf("ast: unknown binary operator %q", e.Op)
		}
		left, err := e.Left.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		right, err := e.Right.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &Binary{exprBase: base, Op: op, Left: left, Right: right}, nil
	case "assign":
		lhs, err := e.LHS.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		rhs, err := e.RHS.resolve(tbl, syms)
		if err != nil {
			return nil, err
		}
		return &Assign{exprBase: base, LHS: lhs, RHS: rhs}, nil
	case "call":
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			v, err := a.resolve(tbl, syms)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &Call{exprBase: base, Callee: e.Callee, Args: args}, nil
	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", e.Kind)
	}
}

// symbolTable is the concrete SymbolTable built while decoding a JSON
// translation unit: every declaring SemaRef (variable declarations and
// function parameters) registers its symbol; SemaRefs on identifier uses
// only refer to those entries and register nothing.
type symbolTable struct {
	byID map[SymbolID]Symbol
}

func newSymbolTable() *symbolTable { return &symbolTable{byID: make(map[SymbolID]Symbol)} }

func (s *symbolTable) define(id SymbolID, name string, ty *types.Type) {
	s.byID[id] = Symbol{ID: id, Name: name, Type: ty}
}

func (s *symbolTable) ResolveSymbolByID(id SymbolID) (Symbol, bool) {
	sym, ok := s.byID[id]
	return sym, ok
}

type transUnitSpec struct {
	VarDecls  []*varDeclSpec  `json:"var_decls"`
	FuncDecls []*funcDeclSpec `json:"func_decls"`
}

// DecodeJSON parses a translation unit in the JSON contract format produced
// by an external front end, returning both the AST and the symbol table
// built from the declaration and parameter SemaRefs it contains.
func DecodeJSON(data []byte) (*TransUnit, SymbolTable, error) {
	var spec transUnitSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, nil, fmt.Errorf("ast: decoding translation unit: %w", err)
	}
	tbl := types.NewTable()
	syms := newSymbolTable()

	tu := &TransUnit{}
	for _, vd := range spec.VarDecls {
		v, err := vd.resolve(tbl, syms)
		if err != nil {
			return nil, nil, err
		}
		tu.VarDecls = append(tu.VarDecls, v)
	}
	for _, fd := range spec.FuncDecls {
		f, err := fd.resolve(tbl, syms)
		if err != nil {
			return nil, nil, err
		}
		tu.FuncDecls = append(tu.FuncDecls, f)
	}
	return tu, syms, nil
}
