package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTU = `{
	"func_decls": [{
		"name": "f", "ret_type": {"kind":"builtin","builtin":"int"}, "params": [],
		"body": {"kind": "block", "stmts": [
			{"kind": "return", "expr": {"kind": "int", "type": {"kind":"builtin","builtin":"int"}, "int": 42}}
		]}
	}]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleTU), 0o644))
	return path
}

func TestEmitIRCmd_PrintsLoweredModule(t *testing.T) {
	path := writeSample(t)
	var out, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"emit-ir", path})
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "f")
	require.Empty(t, errBuf.String())
}

func TestBuildCmd_PrintsLoweredAssembly(t *testing.T) {
	path := writeSample(t)
	var out, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"build", path})
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "f:")
	require.Contains(t, out.String(), "bx lr")
}

func TestBuildCmd_MissingFileReportsError(t *testing.T) {
	var out, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"build", filepath.Join(t.TempDir(), "missing.json")})
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	require.Error(t, cmd.Execute())
	require.Contains(t, errBuf.String(), "error:")
}
