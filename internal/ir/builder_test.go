package ir_test

import (
	"testing"

	"github.com/armccomp/armcc/internal/ast"
	"github.com/armccomp/armcc/internal/ir"
	"github.com/stretchr/testify/require"
)

// buildModule decodes a JSON translation unit and lowers it into an IR
// module, exactly the path cmd/armcc's build/emit-ir subcommands take.
func buildModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	tu, syms, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	m, err := ir.NewBuilder(syms).Build("t", tu)
	require.NoError(t, err)
	return m
}

// findFunc locates a function view by name among every function the module
// declares.
func findFunc(t *testing.T, m *ir.Module, name string) ir.Function {
	t.Helper()
	for _, fn := range m.Functions() {
		if fn.Name() == name {
			return fn
		}
	}
	t.Fatalf("function %q not found", name)
	return ir.Function{}
}

func intType() string { return `{"kind":"builtin","builtin":"int"}` }

func TestBuilder_EmptyWhileBody(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f", "ret_type": ` + intType() + `, "params": [],
			"body": {"kind": "block", "stmts": [
				{"kind": "while",
				 "cond": {"kind": "int", "type": ` + intType() + `, "int": 0},
				 "body": {"kind": "block", "stmts": []}},
				{"kind": "return", "expr": {"kind": "int", "type": ` + intType() + `, "int": 0}}
			]}
		}]
	}`
	m := buildModule(t, src)
	fn := findFunc(t, m, "f")

	blocks := fn.Blocks()
	require.NotEmpty(t, blocks)

	// Every block must still end in a terminator even though the loop body
	// is empty: the cond block branches straight to the loop exit.
	var sawBranch, sawReturn bool
	for _, bb := range blocks {
		term := bb.Terminator()
		require.NotNil(t, term, "block %s has no terminator", bb.Name())
		switch term.Opcode() {
		case ir.OpBranch:
			sawBranch = true
		case ir.OpReturn:
			sawReturn = true
		}
	}
	require.True(t, sawBranch, "expected a conditional branch lowering the while condition")
	require.True(t, sawReturn, "expected the trailing return to lower")
}

func TestBuilder_ShortCircuitOr(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f", "ret_type": ` + intType() + `,
			"params": [
				{"name": "a", "type": ` + intType() + `, "sema_ref": {"symbol_id": 1, "name": "a"}},
				{"name": "b", "type": ` + intType() + `, "sema_ref": {"symbol_id": 2, "name": "b"}}
			],
			"body": {"kind": "block", "stmts": [
				{"kind": "return", "expr": {
					"kind": "binary", "op": "||", "type": ` + intType() + `,
					"left":  {"kind": "ident", "type": ` + intType() + `, "sema_ref": {"symbol_id": 1, "name": "a"}},
					"right": {"kind": "ident", "type": ` + intType() + `, "sema_ref": {"symbol_id": 2, "name": "b"}}
				}}
			]}
		}]
	}`
	m := buildModule(t, src)
	fn := findFunc(t, m, "f")

	// Short-circuit || must lower into at least one conditional branch
	// (evaluating "a" first and skipping "b" when it is already true)
	// rather than a plain boolean BinOp.
	var sawBranch bool
	for _, bb := range fn.Blocks() {
		for _, instr := range bb.Instructions() {
			if instr.Opcode() == ir.OpBranch {
				sawBranch = true
			}
			require.NotEqual(t, ir.OpBinOp, instr.Opcode(), "|| must not lower to a single eager BinOp")
		}
	}
	require.True(t, sawBranch, "short-circuit || must materialise a conditional branch")
}

func TestBuilder_NestedArrayInit(t *testing.T) {
	src := `{
		"var_decls": [{
			"name": "g",
			"type": {"kind": "array", "elem": {"kind": "array", "elem": ` + intType() + `, "len": 2, "complete": true}, "len": 2, "complete": true},
			"init": {"kind": "list", "items": [
				{"kind": "list", "items": [
					{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 1}},
					{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 2}}
				]},
				{"kind": "list", "items": [
					{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 3}},
					{"kind": "scalar", "expr": {"kind": "int", "type": ` + intType() + `, "int": 4}}
				]}
			]},
			"sema_ref": {"symbol_id": 10, "name": "g"}
		}],
		"func_decls": []
	}`
	m := buildModule(t, src)
	g, ok := m.GlobalByName("g")
	require.True(t, ok)
	init := m.GlobalInitializer(g)
	require.Len(t, init.Elements, 4)
	require.Equal(t, int64(1), init.Elements[0].Int)
	require.Equal(t, int64(4), init.Elements[3].Int)
}

func TestBuilder_BreakInNestedLoop(t *testing.T) {
	src := `{
		"func_decls": [{
			"name": "f", "ret_type": ` + intType() + `, "params": [],
			"body": {"kind": "block", "stmts": [
				{"kind": "while",
				 "cond": {"kind": "int", "type": ` + intType() + `, "int": 1},
				 "body": {"kind": "block", "stmts": [
					{"kind": "while",
					 "cond": {"kind": "int", "type": ` + intType() + `, "int": 1},
					 "body": {"kind": "block", "stmts": [
						{"kind": "break"}
					 ]}},
					{"kind": "break"}
				 ]}},
				{"kind": "return", "expr": {"kind": "int", "type": ` + intType() + `, "int": 0}}
			]}
		}]
	}`
	m := buildModule(t, src)
	fn := findFunc(t, m, "f")

	// Both breaks must each resolve to a Jump; neither should target the
	// same block, since the inner break exits only its own loop.
	var jumps []ir.BasicBlockID
	breakTargets := make(map[ir.BasicBlockID]bool)
	for _, bb := range fn.Blocks() {
		if term := bb.Terminator(); term != nil && term.Opcode() == ir.OpJump {
			jumps = append(jumps, term.JumpTarget())
		}
		for _, instr := range bb.Instructions() {
			if instr.Opcode() == ir.OpJump && m.Block(instr.JumpTarget()).Name() == "while.end" {
				breakTargets[instr.JumpTarget()] = true
			}
		}
	}
	require.GreaterOrEqual(t, len(jumps), 2, "expected at least one Jump per break plus loop back-edges")
	require.Len(t, breakTargets, 2, "the inner and outer break must target different loop-exit blocks")
}

func TestBuilder_CallWithFiveIntArgs(t *testing.T) {
	src := `{
		"func_decls": [
			{"name": "sum5", "ret_type": ` + intType() + `, "params": [
				{"name": "a", "type": ` + intType() + `, "sema_ref": {"symbol_id": 1, "name": "a"}},
				{"name": "b", "type": ` + intType() + `, "sema_ref": {"symbol_id": 2, "name": "b"}},
				{"name": "c", "type": ` + intType() + `, "sema_ref": {"symbol_id": 3, "name": "c"}},
				{"name": "d", "type": ` + intType() + `, "sema_ref": {"symbol_id": 4, "name": "d"}},
				{"name": "e", "type": ` + intType() + `, "sema_ref": {"symbol_id": 5, "name": "e"}}
			]},
			{"name": "f", "ret_type": ` + intType() + `, "params": [],
			 "body": {"kind": "block", "stmts": [
				{"kind": "return", "expr": {
					"kind": "call", "callee": "sum5", "type": ` + intType() + `,
					"args": [
						{"kind": "int", "type": ` + intType() + `, "int": 1},
						{"kind": "int", "type": ` + intType() + `, "int": 2},
						{"kind": "int", "type": ` + intType() + `, "int": 3},
						{"kind": "int", "type": ` + intType() + `, "int": 4},
						{"kind": "int", "type": ` + intType() + `, "int": 5}
					]
				}}
			 ]}}
		]
	}`
	m := buildModule(t, src)
	fn := findFunc(t, m, "f")

	var call *ir.Instruction
	for _, bb := range fn.Blocks() {
		for _, instr := range bb.Instructions() {
			if instr.Opcode() == ir.OpCall {
				call = instr
			}
		}
	}
	require.NotNil(t, call)
	require.Len(t, call.Args(), 5)
}
