package driver

import (
	"testing"

	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32() types.Type { return types.NewPrimitiveType(nil, types.PrimU32) }

func newDriver() (*Driver, *hir.Arena, *ivar.Store, *rules.RuleSet) {
	arena := hir.NewArena()
	ivars := ivar.NewStore()
	rs := rules.NewRuleSet()
	crate := collaborators.NewStaticCrateInfo()
	return New(arena, ivars, rs, crate), arena, ivars, rs
}

func TestRunResolvesASingleCoercionOnTheFirstPass(t *testing.T) {
	d, arena, ivars, rs := newDriver()

	lit := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	litIvar := ivars.NewTypeIvar(nil, types.InferClassInteger)
	arena.Get(lit).SetResultType(litIvar)
	rs.AddCoercion(u32(), lit, hir.NoSpan)

	err := d.Run()

	require.NoError(t, err)
	assert.True(t, rs.IsEmpty())
	assert.True(t, types.Equals(ivars.GetDeep(litIvar), u32()))
}

func TestRunChainsThroughTwoIterationsOnceTheFirstCoercionPinsTheSecond(t *testing.T) {
	d, arena, ivars, rs := newDriver()

	x := ivars.NewTypeIvar(nil, types.InferClassNone)
	y := ivars.NewTypeIvar(nil, types.InferClassNone)

	xNode := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(xNode).SetResultType(x)
	yNode := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "2"}})
	arena.Get(yNode).SetResultType(y)

	// x must coerce to y (both still unbound: the kernel can't decide this
	// rule alone and defers it), while y separately must coerce to a
	// concrete u32 (resolves immediately). Only once y is pinned does the
	// first rule's fallthrough-to-Equality case fire on a later pass.
	rs.AddCoercion(y, xNode, hir.NoSpan)
	rs.AddCoercion(u32(), yNode, hir.NoSpan)

	err := d.Run()

	require.NoError(t, err)
	assert.True(t, rs.IsEmpty())
	assert.True(t, types.Equals(ivars.GetDeep(x), u32()))
	assert.True(t, types.Equals(ivars.GetDeep(y), u32()))
}

func TestRunAppliesAGenericDefaultWhenNothingElseEverDecidesAnIvar(t *testing.T) {
	d, _, ivars, _ := newDriver()

	p := ivars.NewTypeIvar(nil, types.InferClassNone)
	d.Possibility.RegisterDefault(p.ID, u32())

	err := d.Run()

	require.NoError(t, err)
	assert.True(t, types.Equals(ivars.GetDeep(p), u32()))
}

func TestRunReportsFailureWhenTwoIvarsOnlyEverConstrainEachOther(t *testing.T) {
	d, arena, ivars, rs := newDriver()

	x := ivars.NewTypeIvar(nil, types.InferClassNone)
	y := ivars.NewTypeIvar(nil, types.InferClassNone)
	xNode := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(xNode).SetResultType(x)

	// x must coerce to y and nothing else in the rule set ever supplies a
	// concrete type for either: check_coerce_tys reports Unknown every
	// ordinary pass, and the fallback ladder's single-survivor step can only
	// ever point each one back at the other, never at anything concrete.
	// This is correctly unresolvable, not a driver bug: with zero outside
	// information there is nothing to pin x or y to.
	rs.AddCoercion(y, xNode, hir.NoSpan)

	err := d.Run()

	require.Error(t, err)
	var driverErr *Error
	require.ErrorAs(t, err, &driverErr)
	assert.False(t, rs.IsEmpty())
}

func TestRunAttachesAMismatchedBorrowClassDiagWhenABorrowCannotStrengthen(t *testing.T) {
	d, arena, _, rs := newDriver()

	shared := types.NewBorrowType(nil, types.Shared, u32())
	unique := types.NewBorrowType(nil, types.Unique, u32())
	node := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(node).SetResultType(shared)
	// &u32 can never strengthen to &mut u32: check_coerce_tys's pointer-
	// family step fails outright rather than deferring, unlike the
	// still-unbound-ivar case the other failure test covers.
	rs.AddCoercion(unique, node, hir.NoSpan)

	err := d.Run()

	require.Error(t, err)
	var driverErr *Error
	require.ErrorAs(t, err, &driverErr)
	require.NotNil(t, driverErr.Diag)
	var mismatch *diag.MismatchedBorrowClass
	require.ErrorAs(t, driverErr.Diag, &mismatch)
}

func TestRunFailsWithSpareRulesWhenAnAssociatedRuleCanNeverMakeProgress(t *testing.T) {
	d, _, ivars, rs := newDriver()

	implTy := ivars.NewTypeIvar(nil, types.InferClassNone)
	rs.AddAssociated(rules.Associated{
		Span:   hir.NoSpan,
		Trait:  []string{"example", "Greet"},
		ImplTy: implTy,
	})

	err := d.Run()

	require.Error(t, err)
	var driverErr *Error
	require.ErrorAs(t, err, &driverErr)
	assert.Contains(t, driverErr.Reason, "spare rules")
	assert.False(t, rs.IsEmpty())
}
