// Command armcc drives the IR and MC builders end to end: it reads a
// translation unit in the JSON bridge format internal/ast.DecodeJSON
// accepts (the contract a real lexer/parser/semantic-analyzer front end
// would produce), lowers it to IR, then to ARM-family MC, and prints
// whichever stage was requested.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
