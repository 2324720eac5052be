// Package diag provides the CLI's logging and diagnostic-severity helpers:
// verbosity control for the root logrus logger, a NewLogger helper for
// package-tagged entries, and a small Severity type the CLI uses to color a
// reported error on a terminal.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// NewLogger returns a package-scoped logrus entry tagged with pkg, the same
// shape as the entries internal/ir and internal/mc build for themselves with
// logrus.WithField("pkg", ...).
func NewLogger(pkg string) *logrus.Entry {
	return logrus.WithField("pkg", pkg)
}

// SetVerbose raises the root logger to debug level, driven by the CLI's
// -v/--verbose flag.
func SetVerbose(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}

// Severity classifies a reported diagnostic for terminal coloring.
type Severity byte

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan)
)

// Report writes one diagnostic line to w, colored by severity unless color
// was disabled because stdout is not a terminal (see init): red for fatal
// errors (every error type in internal/ir and internal/mc), yellow for
// UnsupportedConstruct placeholders, cyan for informational notes.
func Report(w io.Writer, sev Severity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch sev {
	case SeverityWarning:
		warningColor.Fprintln(w, "warning: "+msg)
	case SeverityNote:
		noteColor.Fprintln(w, "note: "+msg)
	default:
		errorColor.Fprintln(w, "error: "+msg)
	}
}

// ReportErr classifies err by its concrete type and reports it at the
// matching severity: an UnsupportedConstruct is a warning (the
// construct is simply unimplemented, not a malformed program), everything
// else is an error.
func ReportErr(w io.Writer, err error) {
	if isUnsupported(err) {
		Report(w, SeverityWarning, "%s", err)
		return
	}
	Report(w, SeverityError, "%s", err)
}

// unsupportedErr is satisfied by internal/ir's ErrUnsupportedConstruct
// without importing internal/ir here, keeping diag dependency-free of the
// builder packages it serves.
type unsupportedErr interface {
	UnsupportedConstruct() bool
}

func isUnsupported(err error) bool {
	var u unsupportedErr
	return errors.As(err, &u) && u.UnsupportedConstruct()
}

// init disables color when stdout is not a terminal (CI logs, pipes),
// matching fatih/color's own auto-detection but made explicit so tests
// never produce ANSI-laden golden output.
func init() {
	if !isTerminal(os.Stdout) {
		color.NoColor = true
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
