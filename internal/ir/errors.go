package ir

import "fmt"

// ErrSemanticMissingDefinition is raised when an identifier reference has no
// Sym2Def entry: the semantic analyzer resolved it, but the builder never
// recorded a defining Alloca or GlobalVariable for it.
type ErrSemanticMissingDefinition struct {
	SymbolID   uint32
	Identifier string
}

func (e *ErrSemanticMissingDefinition) Error() string {
	return fmt.Sprintf("missing definition for symbol %d (%q)", e.SymbolID, e.Identifier)
}

// ErrBreakOutsideLoop is raised by a `break` with an empty loop stack.
type ErrBreakOutsideLoop struct{}

func (*ErrBreakOutsideLoop) Error() string { return "break outside loop" }

// ErrContinueOutsideLoop is raised by a `continue` with an empty loop stack.
type ErrContinueOutsideLoop struct{}

func (*ErrContinueOutsideLoop) Error() string { return "continue outside loop" }

// ErrUnsupportedConstruct marks a feature the builder recognizes by name but
// does not lower: prefix/postfix ++/--, unary ~/!, struct member access,
// indexed access, do-while, string/char literals.
type ErrUnsupportedConstruct struct {
	Construct string
}

func (e *ErrUnsupportedConstruct) Error() string {
	return fmt.Sprintf("unimplemented: %s", e.Construct)
}

// UnsupportedConstruct satisfies internal/diag's classification interface so
// the CLI reports this error as a warning rather than a fatal error.
func (e *ErrUnsupportedConstruct) UnsupportedConstruct() bool { return true }
