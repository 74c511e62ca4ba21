package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestPrune(t *testing.T) {
	u32 := NewPrimitiveType(nil, PrimU32)
	iv := NewInferType(nil, 1, InferClassNone)
	iv.ResolvedTo = u32

	assert.Same(t, u32, Prune(iv))
	assert.Equal(t, "?1", (&InferType{ID: 1}).String())
}

func TestEqualsStructural(t *testing.T) {
	a := NewTupleType(nil, NewPrimitiveType(nil, PrimU8), NewPrimitiveType(nil, PrimBool))
	b := NewTupleType(nil, NewPrimitiveType(nil, PrimU8), NewPrimitiveType(nil, PrimBool))
	c := NewTupleType(nil, NewPrimitiveType(nil, PrimU8), NewPrimitiveType(nil, PrimU8))

	assert.True(t, Equals(a, b))
	assert.False(t, Equals(a, c))
}

func TestEqualsIvarByIdentityNotStructure(t *testing.T) {
	iv1 := NewInferType(nil, 1, InferClassNone)
	iv2 := NewInferType(nil, 2, InferClassNone)
	assert.False(t, Equals(iv1, iv2))

	iv1Again := NewInferType(nil, 1, InferClassNone)
	assert.True(t, Equals(iv1, iv1Again))
}

func TestGoCmpStructuralDiff(t *testing.T) {
	a := NewBorrowType(nil, Shared, NewSliceType(nil, NewPrimitiveType(nil, PrimU8)))
	b := NewBorrowType(nil, Shared, NewSliceType(nil, NewPrimitiveType(nil, PrimU8)))

	diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(base{}), cmpopts.EquateComparable())
	assert.Empty(t, diff)
}

func TestContainsIvar(t *testing.T) {
	iv := NewInferType(nil, 5, InferClassNone)
	arr := NewArrayType(nil, NewBorrowType(nil, Shared, iv), &EvaluatedConst{Bytes: []byte{3}})
	assert.True(t, ContainsIvar(arr, 5))
	assert.False(t, ContainsIvar(arr, 6))
}

func TestMutabilityOrder(t *testing.T) {
	assert.True(t, Owned.AtLeast(Unique))
	assert.True(t, Unique.AtLeast(Shared))
	assert.False(t, Shared.AtLeast(Unique))
}
