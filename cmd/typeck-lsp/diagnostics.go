package main

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/gorustic/typeck"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/fixture"
)

// diagnosticsFor parses contents as a fixture, runs it through the
// typecheck pipeline, and converts whatever diag.Error values came back
// into protocol.Diagnostic values (LSP positions are 0-based; hir.Span's
// Location fields are 1-based the way the teacher's own ast spans are, so
// every line/column is shifted down by one here exactly as
// cmd/lsp-server/main.go's validate already does for parse errors).
func diagnosticsFor(contents string) ([]protocol.Diagnostic, error) {
	built, err := fixture.Load([]byte(contents))
	if err != nil {
		return nil, err
	}

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)

	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		diagnostics = append(diagnostics, toDiagnostic(e))
	}
	return diagnostics, nil
}

func toDiagnostic(e diag.Error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	span := e.Span()
	message := e.Message()

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      protocol.UInteger(max0(span.Start.Line - 1)),
				Character: protocol.UInteger(max0(span.Start.Column - 1)),
			},
			End: protocol.Position{
				Line:      protocol.UInteger(max0(span.End.Line - 1)),
				Character: protocol.UInteger(max0(span.End.Column - 1)),
			},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// max0 clamps a 1-based location's zero-indexed translation at zero, since
// hir.NoSpan carries Line/Column 0 (never negative) for diagnostics with no
// real source position.
func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
