package fixture

import (
	"testing"

	"github.com/gorustic/typeck"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuildsAnIdentityFunctionFromAnIdentBody(t *testing.T) {
	raw := []byte(`
params:
  - name: x
    type: u32
returnType: u32
body:
  kind: ident
  name: x
`)

	built, err := Load(raw)
	require.NoError(t, err)
	require.Len(t, built.Params, 1)

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)
	require.Empty(t, errs)
}

func TestLoadBuildsALiteralBodyCoercedToTheReturnType(t *testing.T) {
	raw := []byte(`
returnType: u32
body:
  kind: literal
  lit: int
  text: "1"
`)

	built, err := Load(raw)
	require.NoError(t, err)
	require.Empty(t, built.Params)

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)
	require.Empty(t, errs)
	assert.True(t, types.Equals(built.Arena.Get(built.Body).ResultType(), built.ReturnType))
}

func TestLoadBuildsABinopBodyAgainstTheRegisteredOperatorImpls(t *testing.T) {
	raw := []byte(`
params:
  - name: a
    type: u32
  - name: b
    type: u32
returnType: u32
body:
  kind: binop
  op: "+"
  lhs:
    kind: ident
    name: a
  rhs:
    kind: ident
    name: b
`)

	built, err := Load(raw)
	require.NoError(t, err)

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)
	require.Empty(t, errs)
}

func TestLoadBuildsAComparisonBodyReturningBool(t *testing.T) {
	raw := []byte(`
params:
  - name: a
    type: u32
  - name: b
    type: u32
returnType: bool
body:
  kind: binop
  op: "<"
  lhs:
    kind: ident
    name: a
  rhs:
    kind: ident
    name: b
`)

	built, err := Load(raw)
	require.NoError(t, err)

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)
	require.Empty(t, errs)
}

func TestLoadRejectsAnUnknownIdentifier(t *testing.T) {
	raw := []byte(`
returnType: u32
body:
  kind: ident
  name: nope
`)

	_, err := Load(raw)
	require.Error(t, err)
}

func TestLoadRejectsAnUnsupportedTypeSpelling(t *testing.T) {
	raw := []byte(`
returnType: "[u32; 4]"
body:
  kind: literal
  lit: int
  text: "1"
`)

	_, err := Load(raw)
	require.Error(t, err)
}

func TestParseTypeHandlesBorrowPrefixes(t *testing.T) {
	shared, err := ParseType("&u32")
	require.NoError(t, err)
	assert.True(t, types.Equals(shared, types.NewBorrowType(nil, types.Shared, types.NewPrimitiveType(nil, types.PrimU32))))

	unique, err := ParseType("&mut u32")
	require.NoError(t, err)
	assert.True(t, types.Equals(unique, types.NewBorrowType(nil, types.Unique, types.NewPrimitiveType(nil, types.PrimU32))))
}
