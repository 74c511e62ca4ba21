package revisit

import (
	"testing"

	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() (*Resolver, *hir.Arena, *ivar.Store, *collaborators.StaticCrateInfo) {
	arena := hir.NewArena()
	ivars := ivar.NewStore()
	rs := rules.NewRuleSet()
	crate := collaborators.NewStaticCrateInfo()
	return NewResolver(arena, ivars, rs, crate), arena, ivars, crate
}

// settled allocates a node whose result type is already a concrete, known
// type (never an unresolved ivar) so a revisit handler can act on it
// immediately.
func settled(arena *hir.Arena, ty types.Type) hir.NodeID {
	id := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(id).SetResultType(ty)
	return id
}

// pending allocates a node whose result type is a fresh, still-unbound ivar.
func pending(arena *hir.Arena, ivars *ivar.Store) hir.NodeID {
	iv := ivars.NewTypeIvar(nil, types.InferClassNone)
	id := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(id).SetResultType(iv)
	return id
}

func u32() types.Type    { return types.NewPrimitiveType(nil, types.PrimU32) }
func usize() types.Type  { return types.NewPrimitiveType(nil, types.PrimUSize) }
func boolTy() types.Type { return types.NewPrimitiveType(nil, types.PrimBool) }

func TestResolveCastPinsUnboundIntegerToUsizeForPointerTarget(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	iv := ivars.NewTypeIvar(nil, types.InferClassInteger)
	operand := arena.New(&hir.LiteralExpr{Lit: hir.Lit{Kind: hir.LitInt, Text: "1"}})
	arena.Get(operand).SetResultType(iv)

	target := types.NewPointerType(nil, types.Shared, u32())
	castID := arena.New(&hir.CastExpr{Operand: operand, TargetType: target})
	idx := rv.Rules.AddNodeRevisit(rules.RevisitCast, castID, -1)

	ok := rv.resolveCast(rules.NodeRevisit{Idx: idx, Kind: rules.RevisitCast, NodePtr: castID, ResultIvar: -1}, false)

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(iv.ID), usize()))
}

func TestResolveCastLeavesPlainPrimitiveCastAloneAndSucceeds(t *testing.T) {
	rv, arena, _, _ := newResolver()
	operand := settled(arena, u32())
	castID := arena.New(&hir.CastExpr{Operand: operand, TargetType: types.NewPrimitiveType(nil, types.PrimI64)})

	ok := rv.resolveCast(rules.NodeRevisit{NodePtr: castID, ResultIvar: -1}, false)

	assert.True(t, ok)
}

func TestResolveCastStaysPendingWhileOperandUnbound(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	operand := pending(arena, ivars)
	castID := arena.New(&hir.CastExpr{Operand: operand, TargetType: u32()})

	ok := rv.resolveCast(rules.NodeRevisit{NodePtr: castID, ResultIvar: -1}, false)

	assert.False(t, ok)
}

func TestResolveFieldFindsDirectField(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Point"})
	crate.RegisterField(self, "x", u32())

	object := settled(arena, self)
	fieldID := arena.New(&hir.FieldExpr{Object: object, Field: "x"})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveField(rules.NodeRevisit{NodePtr: fieldID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), u32()))
}

func TestResolveFieldAutoderefsThroughBorrowAndInsertsDeref(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Point"})
	crate.RegisterField(self, "x", u32())

	object := settled(arena, types.NewBorrowType(nil, types.Shared, self))
	fieldExpr := &hir.FieldExpr{Object: object, Field: "x"}
	fieldID := arena.New(fieldExpr)
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveField(rules.NodeRevisit{NodePtr: fieldID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), u32()))

	reread := arena.Get(fieldID).(*hir.FieldExpr)
	assert.Equal(t, object, reread.Object, "the wrapper is installed in place, at the original node id")
	deref, ok := arena.Get(reread.Object).(*hir.CoerceDerefExpr)
	require.True(t, ok, "one autoderef step must be recorded as a CoerceDerefExpr wrapper")
	relocated := arena.Get(deref.Operand)
	assert.True(t, types.Equals(relocated.ResultType(), types.NewBorrowType(nil, types.Shared, self)), "the original borrowed operand moved to a fresh slot under the wrapper")
}

func TestResolveFieldReportsNoSuchFieldWhenFieldNotFound(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	object := settled(arena, u32())
	fieldID := arena.New(&hir.FieldExpr{Object: object, Field: "x"})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveField(rules.NodeRevisit{NodePtr: fieldID, ResultIvar: resultIv.ID})

	assert.True(t, ok)
	assert.Len(t, rv.Errors, 1)
}

func TestResolveDerefBorrowResolvesDirectlyToInner(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	operand := settled(arena, types.NewBorrowType(nil, types.Shared, u32()))
	derefID := arena.New(&hir.DerefExpr{Operand: operand})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveDeref(rules.NodeRevisit{NodePtr: derefID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), u32()))
}

func TestResolveDerefNonPointerDefersToAssociatedRule(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	self := types.NewPathType(nil, []string{"Custom"})
	operand := settled(arena, self)
	derefID := arena.New(&hir.DerefExpr{Operand: operand})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveDeref(rules.NodeRevisit{NodePtr: derefID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	var assoc []rules.Associated
	rv.Rules.EachAssociated(func(a rules.Associated) bool { assoc = append(assoc, a); return true })
	require.Len(t, assoc, 1)
	assert.Equal(t, []string{"core", "ops", "Deref"}, assoc[0].Trait)
	assert.Equal(t, "Target", assoc[0].AssocName)
	assert.True(t, types.Equals(assoc[0].ImplTy, self))
}

func TestResolveIndexResolvesDirectlyFromImplAssocTypes(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Vec"}, u32())
	require.NoError(t, crate.RegisterImpl([]string{"core", "ops", "Index"}, self, collaborators.TraitImpl{
		ImplType:    self,
		TraitParams: []types.Type{usize()},
		AssocTypes:  map[string]types.Type{"Output": u32()},
	}))

	object := settled(arena, self)
	index := settled(arena, usize())
	indexID := arena.New(&hir.IndexExpr{Object: object, Index: index})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveIndex(rules.NodeRevisit{NodePtr: indexID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), u32()))
}

func TestResolveIndexFallsBackToAssociatedWhenOutputUnavailable(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Vec"}, u32())
	require.NoError(t, crate.RegisterImpl([]string{"core", "ops", "Index"}, self, collaborators.TraitImpl{
		ImplType:    self,
		TraitParams: []types.Type{usize()},
		AssocTypes:  map[string]types.Type{},
	}))

	object := settled(arena, self)
	index := settled(arena, usize())
	indexID := arena.New(&hir.IndexExpr{Object: object, Index: index})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveIndex(rules.NodeRevisit{NodePtr: indexID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	var assoc []rules.Associated
	rv.Rules.EachAssociated(func(a rules.Associated) bool { assoc = append(assoc, a); return true })
	require.Len(t, assoc, 1)
	assert.Equal(t, []string{"core", "ops", "Index"}, assoc[0].Trait)
	assert.Equal(t, "Output", assoc[0].AssocName)
}

func TestResolveIndexStaysPendingWithNoMatchingImpl(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	object := settled(arena, u32())
	index := settled(arena, usize())
	indexID := arena.New(&hir.IndexExpr{Object: object, Index: index})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveIndex(rules.NodeRevisit{NodePtr: indexID, ResultIvar: resultIv.ID})

	assert.False(t, ok)
}

func TestResolveEmplaceEmitsBoxerAssociatedWithDefaultPlacer(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	value := settled(arena, u32())
	empID := arena.New(&hir.EmplaceExpr{Place: hir.NoNode, Value: value})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveEmplace(rules.NodeRevisit{NodePtr: empID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	var assoc []rules.Associated
	rv.Rules.EachAssociated(func(a rules.Associated) bool { assoc = append(assoc, a); return true })
	require.Len(t, assoc, 1)
	assert.Equal(t, []string{"core", "ops", "Boxer"}, assoc[0].Trait)
	assert.Equal(t, "Output", assoc[0].AssocName)
	assert.True(t, types.Equals(assoc[0].ImplTy, u32()), "the default placer is the value's own type")
}

func TestResolveEmplaceStaysPendingUntilPlaceResolved(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	value := settled(arena, u32())
	place := pending(arena, ivars)
	empID := arena.New(&hir.EmplaceExpr{Place: place, Value: value})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveEmplace(rules.NodeRevisit{NodePtr: empID, ResultIvar: resultIv.ID})

	assert.False(t, ok)
}

func TestResolveBlockDivergesUpgradesBlockWhenTailDiverges(t *testing.T) {
	rv, arena, _, _ := newResolver()
	tail := settled(arena, types.NewDivergeType(nil))
	blockExpr := &hir.BlockExpr{Stmts: []hir.NodeID{tail}}
	blockID := arena.New(blockExpr)

	ok := rv.resolveBlockDiverges(rules.NodeRevisit{NodePtr: blockID, ResultIvar: -1})

	require.True(t, ok)
	_, diverges := arena.Get(blockID).ResultType().(*types.DivergeType)
	assert.True(t, diverges)
}

func TestResolveBlockDivergesLeavesNonDivergingTailAlone(t *testing.T) {
	rv, arena, _, _ := newResolver()
	tail := settled(arena, u32())
	blockID := arena.New(&hir.BlockExpr{Stmts: []hir.NodeID{tail}})
	arena.Get(blockID).SetResultType(u32())

	ok := rv.resolveBlockDiverges(rules.NodeRevisit{NodePtr: blockID, ResultIvar: -1})

	require.True(t, ok)
	assert.True(t, types.Equals(arena.Get(blockID).ResultType(), u32()))
}

func TestResolveBlockDivergesStaysPendingWhileTailUnbound(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	tail := pending(arena, ivars)
	blockID := arena.New(&hir.BlockExpr{Stmts: []hir.NodeID{tail}})

	ok := rv.resolveBlockDiverges(rules.NodeRevisit{NodePtr: blockID, ResultIvar: -1})

	assert.False(t, ok)
}

func TestResolveBlockDivergesTreatsEmptyBlockAsDone(t *testing.T) {
	rv, arena, _, _ := newResolver()
	blockID := arena.New(&hir.BlockExpr{Stmts: nil})

	ok := rv.resolveBlockDiverges(rules.NodeRevisit{NodePtr: blockID, ResultIvar: -1})

	assert.True(t, ok)
}

func TestResolveCallValueDirectSignatureCoercesArgsAndSetsResult(t *testing.T) {
	rv, arena, ivars, _ := newResolver()
	fnTy := types.NewFunctionType(nil, "", false, []types.Type{u32()}, boolTy(), 0)
	callee := settled(arena, fnTy)
	arg := pending(arena, ivars)
	callID := arena.New(&hir.CallValueExpr{Callee: callee, Args: []hir.NodeID{arg}})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveCallValue(rules.NodeRevisit{NodePtr: callID, ResultIvar: resultIv.ID})

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), boolTy()))

	var coercions []rules.Coercion
	rv.Rules.EachCoercion(func(c rules.Coercion) bool { coercions = append(coercions, c); return true })
	require.Len(t, coercions, 1)
	assert.Equal(t, arg, coercions[0].NodePtr)
	assert.True(t, types.Equals(coercions[0].TargetType, u32()))
}

func TestResolveCallValueFallsBackToFnOnceSearchViaAutoderef(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	closureLike := types.NewPathType(nil, []string{"MyFn"})
	borrowed := types.NewBorrowType(nil, types.Shared, closureLike)

	require.NoError(t, crate.RegisterImpl([]string{"core", "ops", "FnOnce"}, closureLike, collaborators.TraitImpl{
		ImplType:    closureLike,
		TraitParams: []types.Type{types.NewTupleType(nil, u32())},
	}))

	callee := settled(arena, borrowed)
	arg := settled(arena, u32())
	callExpr := &hir.CallValueExpr{Callee: callee, Args: []hir.NodeID{arg}}
	callID := arena.New(callExpr)
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveCallValue(rules.NodeRevisit{NodePtr: callID, ResultIvar: resultIv.ID})

	require.True(t, ok)

	reread := arena.Get(callID).(*hir.CallValueExpr)
	assert.Equal(t, callee, reread.Callee, "the wrapper is installed in place, at the original node id")
	deref, isDeref := arena.Get(reread.Callee).(*hir.CoerceDerefExpr)
	require.True(t, isDeref, "the borrow must be dereffed to reach the FnOnce impl")
	relocated := arena.Get(deref.Operand)
	assert.True(t, types.Equals(relocated.ResultType(), borrowed), "the original borrow operand moved to a fresh slot under the wrapper")

	var assoc []rules.Associated
	rv.Rules.EachAssociated(func(a rules.Associated) bool { assoc = append(assoc, a); return true })
	require.Len(t, assoc, 1)
	assert.Equal(t, []string{"core", "ops", "FnOnce"}, assoc[0].Trait)
}

func TestResolveCallMethodResolvesUniqueCandidateAndCoercesArgs(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Widget"})
	sig := types.NewFunctionType(nil, "", false, []types.Type{u32()}, boolTy(), 0)
	require.NoError(t, crate.RegisterImpl([]string{"pkg", "Frobber"}, self, collaborators.TraitImpl{
		ImplType:   self,
		AssocTypes: map[string]types.Type{"frob": sig},
	}))

	receiver := settled(arena, self)
	arg := pending(arena, ivars)
	callExpr := &hir.CallMethodExpr{Receiver: receiver, Method: "frob", Args: []hir.NodeID{arg}}
	callID := arena.New(callExpr)
	callExpr.SetCache("inScopeTraits", [][]string{{"pkg", "Frobber"}})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveCallMethod(rules.NodeRevisit{NodePtr: callID, ResultIvar: resultIv.ID}, false)

	require.True(t, ok)
	assert.True(t, types.Equals(ivars.Get(resultIv.ID), boolTy()))

	var coercions []rules.Coercion
	rv.Rules.EachCoercion(func(c rules.Coercion) bool { coercions = append(coercions, c); return true })
	require.Len(t, coercions, 1)
	assert.Equal(t, arg, coercions[0].NodePtr)

	cachedPath, ok := callExpr.Cache("methodPath")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg", "Frobber", "frob"}, cachedPath)
}

func TestResolveCallMethodInsertsOneDerefPerAutoderefLevel(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Widget"})
	sig := types.NewFunctionType(nil, "", false, nil, boolTy(), 0)
	require.NoError(t, crate.RegisterImpl([]string{"pkg", "Frobber"}, self, collaborators.TraitImpl{
		ImplType:   self,
		AssocTypes: map[string]types.Type{"frob": sig},
	}))

	receiver := settled(arena, types.NewBorrowType(nil, types.Shared, self))
	callExpr := &hir.CallMethodExpr{Receiver: receiver, Method: "frob"}
	callID := arena.New(callExpr)
	callExpr.SetCache("inScopeTraits", [][]string{{"pkg", "Frobber"}})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveCallMethod(rules.NodeRevisit{NodePtr: callID, ResultIvar: resultIv.ID}, false)

	require.True(t, ok)
	reread := arena.Get(callID).(*hir.CallMethodExpr)
	assert.Equal(t, receiver, reread.Receiver, "the wrapper is installed in place, at the original node id")
	deref, isDeref := arena.Get(reread.Receiver).(*hir.CoerceDerefExpr)
	require.True(t, isDeref)
	relocated := arena.Get(deref.Operand)
	assert.True(t, types.Equals(relocated.ResultType(), types.NewBorrowType(nil, types.Shared, self)), "the original borrowed receiver moved to a fresh slot under the wrapper")
}

func TestResolveCallMethodStaysPendingOnAmbiguousCandidates(t *testing.T) {
	rv, arena, ivars, crate := newResolver()
	self := types.NewPathType(nil, []string{"Widget"})
	sig := types.NewFunctionType(nil, "", false, nil, boolTy(), 0)
	require.NoError(t, crate.RegisterImpl([]string{"pkg", "FrobberA"}, self, collaborators.TraitImpl{
		ImplType:   self,
		AssocTypes: map[string]types.Type{"frob": sig},
	}))
	require.NoError(t, crate.RegisterImpl([]string{"pkg", "FrobberB"}, self, collaborators.TraitImpl{
		ImplType:   self,
		AssocTypes: map[string]types.Type{"frob": sig},
	}))

	receiver := settled(arena, self)
	callExpr := &hir.CallMethodExpr{Receiver: receiver, Method: "frob"}
	callID := arena.New(callExpr)
	callExpr.SetCache("inScopeTraits", [][]string{{"pkg", "FrobberA"}, {"pkg", "FrobberB"}})
	resultIv := ivars.NewTypeIvar(nil, types.InferClassNone)

	ok := rv.resolveCallMethod(rules.NodeRevisit{NodePtr: callID, ResultIvar: resultIv.ID}, false)

	assert.False(t, ok, "two equally in-scope candidates at the same level stay ambiguous")
}

func TestRunPassRemovesResolvedRevisitsAndKeepsPending(t *testing.T) {
	rv, arena, ivars, _ := newResolver()

	doneOperand := settled(arena, u32())
	doneCastID := arena.New(&hir.CastExpr{Operand: doneOperand, TargetType: types.NewPrimitiveType(nil, types.PrimI64)})
	doneIdx := rv.Rules.AddNodeRevisit(rules.RevisitCast, doneCastID, -1)

	pendingOperand := pending(arena, ivars)
	pendingCastID := arena.New(&hir.CastExpr{Operand: pendingOperand, TargetType: u32()})
	pendingIdx := rv.Rules.AddNodeRevisit(rules.RevisitCast, pendingCastID, -1)

	progressed := rv.RunPass(false)

	assert.True(t, progressed)
	var remaining []rules.NodeRevisit
	rv.Rules.EachNodeRevisit(func(r rules.NodeRevisit) bool { remaining = append(remaining, r); return true })
	require.Len(t, remaining, 1)
	assert.Equal(t, pendingIdx, remaining[0].Idx)
	assert.NotEqual(t, doneIdx, remaining[0].Idx)
}
