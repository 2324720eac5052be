package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/armccomp/armcc/internal/ast"
	"github.com/armccomp/armcc/internal/ir"
)

// loadModule reads the JSON translation unit at path and lowers it to IR,
// naming the resulting ir.Module after the file's base name.
func loadModule(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tu, syms, err := ast.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b := ir.NewBuilder(syms)
	m, err := b.Build(name, tu)
	if err != nil {
		return nil, fmt.Errorf("building IR for %s: %w", path, err)
	}
	return m, nil
}
