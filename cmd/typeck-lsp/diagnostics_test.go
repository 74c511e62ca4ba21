package main

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsForReturnsNoneForAWellTypedFixture(t *testing.T) {
	diags, err := diagnosticsFor(`
params:
  - name: x
    type: u32
returnType: u32
body:
  kind: ident
  name: x
`)

	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestDiagnosticsForReportsAnInvalidFixtureDocument(t *testing.T) {
	_, err := diagnosticsFor("not: [valid")
	require.Error(t, err)
}

func TestDiagnosticsForConvertsACoercionFailureIntoADiagnostic(t *testing.T) {
	diags, err := diagnosticsFor(`
returnType: "&mut u32"
body:
  kind: literal
  lit: bool
  text: "true"
`)

	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.NotEmpty(t, diags[0].Message)
}

func TestToDiagnosticShiftsOneBasedSpansDownToZeroBasedPositions(t *testing.T) {
	span := hir.Span{
		Start: hir.Location{Line: 3, Column: 5},
		End:   hir.Location{Line: 3, Column: 9},
	}
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	boolTy := types.NewPrimitiveType(nil, types.PrimBool)
	e := diag.NewTypeMismatch(u32, boolTy, span)

	got := toDiagnostic(e)

	assert.Equal(t, protocol.UInteger(2), got.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(4), got.Range.Start.Character)
	assert.Equal(t, protocol.UInteger(2), got.Range.End.Line)
	assert.Equal(t, protocol.UInteger(8), got.Range.End.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, *got.Severity)
}

func TestToDiagnosticClampsNoSpanAtZero(t *testing.T) {
	e := diag.NewUnresolvedInference(hir.NoSpan)

	got := toDiagnostic(e)

	assert.Equal(t, protocol.UInteger(0), got.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(0), got.Range.Start.Character)
}
