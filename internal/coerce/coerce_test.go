package coerce

import (
	"testing"

	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKernel() (*Kernel, *hir.Arena) {
	arena := hir.NewArena()
	return &Kernel{
		Ivars:  ivar.NewStore(),
		Arena:  arena,
		Crate:  collaborators.NewStaticCrateInfo(),
		Mutate: true,
	}, arena
}

func TestCheckCoerceTypesEqualTypesYieldsEquality(t *testing.T) {
	k, _ := newKernel()
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	assert.Equal(t, Equality, k.CheckCoerceTypes(u32, u32, hir.NoNode))
}

func TestCheckCoerceTypesDivergeAlwaysEquates(t *testing.T) {
	k, _ := newKernel()
	bang := types.NewDivergeType(nil)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	assert.Equal(t, Equality, k.CheckCoerceTypes(u32, bang, hir.NoNode))
	assert.Equal(t, Equality, k.CheckCoerceTypes(bang, u32, hir.NoNode))
}

func TestCheckCoerceTypesIntegerClassMatchesPrimitive(t *testing.T) {
	k, _ := newKernel()
	store := k.Ivars
	classIvar := store.NewTypeIvar(nil, types.InferClassInteger)
	u64 := types.NewPrimitiveType(nil, types.PrimU64)
	assert.Equal(t, Equality, k.CheckCoerceTypes(u64, classIvar, hir.NoNode))
}

func TestCheckCoerceTypesBothUnboundRecordsPossibility(t *testing.T) {
	k, _ := newKernel()
	store := k.Ivars
	a := store.NewTypeIvar(nil, types.InferClassNone)
	b := store.NewTypeIvar(nil, types.InferClassNone)

	var recordedTo, recordedFrom int
	rec := &countingRecorder{}
	k.Recorder = rec

	result := k.CheckCoerceTypes(b, a, hir.NoNode)
	assert.Equal(t, Unknown, result)
	recordedTo = rec.toCalls
	recordedFrom = rec.fromCalls
	assert.Equal(t, 1, recordedTo)
	assert.Equal(t, 1, recordedFrom)
}

type countingRecorder struct {
	toCalls, fromCalls, boundedCalls int
}

func (c *countingRecorder) RecordCoerceTo(int, types.Type, bool)   { c.toCalls++ }
func (c *countingRecorder) RecordCoerceFrom(int, types.Type, bool) { c.fromCalls++ }
func (c *countingRecorder) RecordBounded(int, types.Type)          { c.boundedCalls++ }

func TestCheckCoerceTypesBorrowStrengthReductionRejectsWidening(t *testing.T) {
	k, _ := newKernel()
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	sharedSrc := types.NewBorrowType(nil, types.Shared, u32)
	uniqueDst := types.NewBorrowType(nil, types.Unique, u32)

	// &u32 cannot coerce to &mut u32: source mutability must be >= dest.
	assert.Equal(t, Fail, k.CheckCoerceTypes(uniqueDst, sharedSrc, hir.NoNode))
}

func TestCheckCoerceTypesBorrowStrengthReductionAllowsNarrowing(t *testing.T) {
	k, _ := newKernel()
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	uniqueSrc := types.NewBorrowType(nil, types.Unique, u32)
	sharedDst := types.NewBorrowType(nil, types.Shared, u32)

	assert.Equal(t, Equality, k.CheckCoerceTypes(sharedDst, uniqueSrc, hir.NoNode))
}

func TestCheckUnsizeTypesArrayToSlice(t *testing.T) {
	k, _ := newKernel()
	u8 := types.NewPrimitiveType(nil, types.PrimU8)
	arr := types.NewArrayType(nil, u8, &types.EvaluatedConst{Bytes: []byte{4}})
	sl := types.NewSliceType(nil, u8)

	assert.Equal(t, Unsize, k.CheckUnsizeTypes(sl, arr, hir.NoNode))
}

func TestCheckCoerceTypesClosureToFunctionInsertsCast(t *testing.T) {
	k, arena := newKernel()
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	cl := types.NewClosureType(nil, 1, []types.Type{u32}, u32)
	fn := types.NewFunctionType(nil, "Rust", false, []types.Type{u32}, u32, 0)

	id := arena.New(&hir.IdentExpr{BindingSlot: 0})
	result := k.CheckCoerceTypes(fn, cl, id)
	require.Equal(t, Custom, result)

	node := arena.Get(id)
	castNode, ok := node.(*hir.CoerceCastExpr)
	require.True(t, ok, "expected the closure node to be wrapped in a CoerceCastExpr")
	_, ok = arena.Get(castNode.Operand).(*hir.IdentExpr)
	assert.True(t, ok, "the original IdentExpr should be preserved as the cast's operand")
}
