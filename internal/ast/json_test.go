package ast_test

import (
	"testing"

	"github.com/armccomp/armcc/internal/ast"
	"github.com/armccomp/armcc/internal/types"
	"github.com/stretchr/testify/require"
)

func intType() string { return `{"kind":"builtin","builtin":"int"}` }

func TestDecodeJSON_FunctionWithBodyAndSymbolTable(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f", "ret_type": ` + intType() + `,
			"params": [
				{"name": "a", "type": ` + intType() + `, "sema_ref": {"symbol_id": 1, "name": "a"}}
			],
			"body": {"kind": "block", "stmts": [
				{"kind": "return", "expr": {
					"kind": "binary", "op": "+", "type": ` + intType() + `,
					"left": {"kind": "ident", "type": ` + intType() + `, "sema_ref": {"symbol_id": 1, "name": "a"}},
					"right": {"kind": "int", "type": ` + intType() + `, "int": 1}
				}}
			]}
		}]
	}`
	tu, syms, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	require.Len(t, tu.FuncDecls, 1)

	fd := tu.FuncDecls[0]
	require.Equal(t, "f", fd.Name)
	require.False(t, fd.IsExternal())
	require.Len(t, fd.Params, 1)
	require.Equal(t, "a", fd.Params[0].Name)

	sym, ok := syms.ResolveSymbolByID(ast.SymbolID(1))
	require.True(t, ok)
	require.Equal(t, "a", sym.Name)
	require.Equal(t, types.Int, sym.Type.Builtin())

	require.Len(t, fd.Body.Stmts, 1)
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
}

func TestDecodeJSON_ExternalFunctionHasNilBody(t *testing.T) {
	src := `{"func_decls": [{"name": "puts", "ret_type": ` + intType() + `, "params": []}]}`
	tu, _, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	require.True(t, tu.FuncDecls[0].IsExternal())
}

func TestDecodeJSON_ArrayInitializerList(t *testing.T) {
	src := `{
		"var_decls": [{
			"name": "g",
			"type": {"kind": "array", "elem": ` + intType() + `, "len": 2, "complete": true},
			"init": {"kind": "list", "items": [
				{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 1}},
				{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 2}}
			]},
			"sema_ref": {"symbol_id": 10, "name": "g"}
		}]
	}`
	tu, _, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	vd := tu.VarDecls[0]
	list, ok := vd.Init.(ast.ListInit)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
}

func TestDecodeJSON_UnknownTypeKindErrors(t *testing.T) {
	src := `{"var_decls": [{"name": "g", "type": {"kind": "bogus"}, "sema_ref": {"symbol_id": 1, "name": "g"}}]}`
	_, _, err := ast.DecodeJSON([]byte(src))
	require.Error(t, err)
}

func TestDecodeJSON_UnknownBinaryOperatorErrors(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f", "ret_type": ` + intType() + `, "params": [],
			"body": {"kind": "block", "stmts": [
				{"kind": "expr", "expr": {
					"kind": "binary", "op": "??", "type": ` + intType() + `,
					"left": {"kind": "int", "type": ` + intType() + `, "int": 1},
					"right": {"kind": "int", "type": ` + intType() + `, "int": 2}
				}}
			]}
		}]
	}`
	_, _, err := ast.DecodeJSON([]byte(src))
	require.Error(t, err)
}

func TestDecodeJSON_MalformedJSONErrors(t *testing.T) {
	_, _, err := ast.DecodeJSON([]byte("{not json"))
	require.Error(t, err)
}

func TestDecodeJSON_PointerAndFunctionTypes(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f",
			"ret_type": {"kind": "pointer", "elem": ` + intType() + `},
			"params": [
				{"name": "cb", "type": {"kind": "function", "result": ` + intType() + `, "params": [` + intType() + `], "variadic": false},
				 "sema_ref": {"symbol_id": 1, "name": "cb"}}
			]
		}]
	}`
	tu, syms, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	fd := tu.FuncDecls[0]
	require.True(t, fd.RetTy.IsPointer())

	sym, ok := syms.ResolveSymbolByID(ast.SymbolID(1))
	require.True(t, ok)
	require.True(t, sym.Type.IsFunction())
}
