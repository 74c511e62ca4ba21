package possibility

import (
	"testing"

	"github.com/gorustic/typeck/internal/coerce"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker() (*Tracker, *ivar.Store) {
	store := ivar.NewStore()
	k := &coerce.Kernel{Ivars: store, Arena: hir.NewArena(), Crate: collaborators.NewStaticCrateInfo(), Mutate: false}
	return NewTracker(k), store
}

func TestCoincidenceEquatesSharedType(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)

	tr.RecordCoerceTo(iv.ID, u32, true)
	tr.RecordCoerceFrom(iv.ID, u32, true)

	d := tr.CheckIvarPoss(iv.ID, FallbackNone)
	require.True(t, d.Resolved)
	assert.Equal(t, "coincidence", d.Step)
	assert.True(t, types.Equals(d.Ty, u32))
}

func TestSingleSurvivorWhenOnlyOneCandidateRecorded(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)

	tr.RecordCoerceTo(iv.ID, u32, true)

	d := tr.CheckIvarPoss(iv.ID, FallbackNone)
	require.True(t, d.Resolved)
	assert.Equal(t, "single-survivor", d.Step)
	assert.True(t, types.Equals(d.Ty, u32))
}

func TestNoProgressWhenMultipleUnrelatedCandidates(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	u64 := types.NewPrimitiveType(nil, types.PrimU64)

	tr.RecordCoerceTo(iv.ID, u32, true)
	tr.RecordCoerceTo(iv.ID, u64, true)

	d := tr.CheckIvarPoss(iv.ID, FallbackNone)
	assert.False(t, d.Resolved)
}

func TestFallbackBackwardsPinsSoleDestination(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	tr.ForceNoTo(iv.ID) // force the single-survivor step to find nothing on its own

	tr.RecordCoerceTo(iv.ID, u32, true)

	// with the coerce_to list forced out of the survivor set, only the
	// Backwards fallback itself can pick the sole destination.
	d := tr.CheckIvarPoss(iv.ID, FallbackBackwards)
	require.True(t, d.Resolved)
	assert.Equal(t, "fallback-backwards", d.Step)
	assert.True(t, types.Equals(d.Ty, u32))
}

func TestRecordBoundedPreservesInsertionOrderAndDedups(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	u64 := types.NewPrimitiveType(nil, types.PrimU64)

	tr.RecordBounded(iv.ID, u64)
	tr.RecordBounded(iv.ID, u32)
	tr.RecordBounded(iv.ID, u64) // duplicate, must not reorder or double-add

	s := tr.state(iv.ID)
	require.Len(t, s.bounded, 2)
	assert.True(t, types.Equals(s.bounded[0], u64), "insertion order must be preserved")
	assert.True(t, types.Equals(s.bounded[1], u32))
}

func TestFallbackPickFirstBoundAcceptsFirstWhenBoundsIncludeSelf(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	u32 := types.NewPrimitiveType(nil, types.PrimU32)
	u64 := types.NewPrimitiveType(nil, types.PrimU64)

	tr.RecordBounded(iv.ID, u32)
	tr.RecordBounded(iv.ID, u64)
	tr.MarkBoundsIncludeSelf(iv.ID)
	// two coerce_to targets, so the single-survivor step cannot pick one,
	// and neither is compatible with either concrete bound, so the
	// existing-rules check can't cleanly pick a bound on its own.
	tr.RecordCoerceTo(iv.ID, types.NewPrimitiveType(nil, types.PrimBool), true)
	tr.RecordCoerceTo(iv.ID, types.NewPrimitiveType(nil, types.PrimChar), true)

	d := tr.CheckIvarPoss(iv.ID, FallbackPickFirstBound)
	require.True(t, d.Resolved)
	assert.Equal(t, "fallback-pick-first-bound", d.Step)
	assert.True(t, types.Equals(d.Ty, u32), "must prefer the first bound after de-duplication")
}

func TestClearPreservesDefaults(t *testing.T) {
	tr, store := newTestTracker()
	iv := store.NewTypeIvar(nil, types.InferClassNone)
	i32 := types.NewPrimitiveType(nil, types.PrimI32)

	tr.RegisterDefault(iv.ID, i32)
	tr.RecordCoerceTo(iv.ID, types.NewPrimitiveType(nil, types.PrimU64), true)

	tr.Clear()

	assert.Len(t, tr.Defaults(iv.ID), 1)
	assert.True(t, types.Equals(tr.Defaults(iv.ID)[0], i32))
	assert.Empty(t, tr.state(iv.ID).coerceTo, "non-default possibilities must be cleared")
}
