package diag_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/armccomp/armcc/internal/diag"
	"github.com/stretchr/testify/require"
)

func TestReport_PrefixesBySeverity(t *testing.T) {
	cases := []struct {
		sev    diag.Severity
		prefix string
	}{
		{diag.SeverityError, "error: "},
		{diag.SeverityWarning, "warning: "},
		{diag.SeverityNote, "note: "},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		diag.Report(&buf, c.sev, "bad thing: %d", 7)
		require.Equal(t, c.prefix+"bad thing: 7\n", buf.String())
	}
}

// unsupportedErr satisfies diag's private UnsupportedConstruct interface
// without depending on internal/ir, mirroring ir.ErrUnsupportedConstruct's
// shape.
type unsupportedErr struct{ msg string }

func (e unsupportedErr) Error() string            { return e.msg }
func (e unsupportedErr) UnsupportedConstruct() bool { return true }

func TestReportErr_ClassifiesUnsupportedAsWarning(t *testing.T) {
	var buf bytes.Buffer
	diag.ReportErr(&buf, unsupportedErr{msg: "goto is not supported"})
	require.Equal(t, "warning: goto is not supported\n", buf.String())
}

func TestReportErr_ClassifiesPlainErrorAsError(t *testing.T) {
	var buf bytes.Buffer
	diag.ReportErr(&buf, errors.New("malformed program"))
	require.Equal(t, "error: malformed program\n", buf.String())
}

func TestSetVerbose_DoesNotPanic(t *testing.T) {
	diag.SetVerbose(true)
	diag.SetVerbose(false)
}
