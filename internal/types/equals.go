package types

import "slices"

// Equals reports structural equality after pruning both sides. Ivars are
// equal only to themselves (by ID) — two distinct unresolved ivars are
// never structurally equal even if they might later unify to the same
// thing, matching how the teacher's go-cmp-based type_system tests compare
// TypeVarType by ID rather than by Instance.
func Equals(a, b Type) bool {
	a, b = Prune(a), Prune(b)
	switch av := a.(type) {
	case *InferType:
		bv, ok := b.(*InferType)
		return ok && av.ID == bv.ID
	case *DivergeType:
		_, ok := b.(*DivergeType)
		return ok
	case *PrimitiveType:
		bv, ok := b.(*PrimitiveType)
		return ok && av.Kind == bv.Kind
	case *PathType:
		bv, ok := b.(*PathType)
		if !ok || !slices.Equal(av.Path, bv.Path) || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equals(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *GenericType:
		bv, ok := b.(*GenericType)
		return ok && av.Name == bv.Name
	case *TraitObjectType:
		bv, ok := b.(*TraitObjectType)
		if !ok || !slices.Equal(av.Trait, bv.Trait) || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equals(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *ErasedType:
		bv, ok := b.(*ErasedType)
		return ok && av.AliasID == bv.AliasID
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		return ok && Equals(av.Inner, bv.Inner) && ConstEquals(av.Size, bv.Size)
	case *SliceType:
		bv, ok := b.(*SliceType)
		return ok && Equals(av.Inner, bv.Inner)
	case *TupleType:
		bv, ok := b.(*TupleType)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equals(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *BorrowType:
		bv, ok := b.(*BorrowType)
		return ok && av.Mutability == bv.Mutability && Equals(av.Inner, bv.Inner)
	case *PointerType:
		bv, ok := b.(*PointerType)
		return ok && av.Mutability == bv.Mutability && Equals(av.Inner, bv.Inner)
	case *NamedFunctionType:
		bv, ok := b.(*NamedFunctionType)
		return ok && slices.Equal(av.Path, bv.Path)
	case *FunctionType:
		bv, ok := b.(*FunctionType)
		if !ok || av.ABI != bv.ABI || av.Unsafe != bv.Unsafe || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equals(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return Equals(av.Ret, bv.Ret)
	case *ClosureType:
		bv, ok := b.(*ClosureType)
		return ok && av.NodeID == bv.NodeID
	case *GeneratorType:
		bv, ok := b.(*GeneratorType)
		return ok && av.NodeID == bv.NodeID
	default:
		return false
	}
}

func ConstEquals(a, b ConstGeneric) bool {
	a, b = PruneConst(a), PruneConst(b)
	switch av := a.(type) {
	case *InferConst:
		bv, ok := b.(*InferConst)
		return ok && av.ID == bv.ID
	case *GenericConst:
		bv, ok := b.(*GenericConst)
		return ok && av.Name == bv.Name
	case *EvaluatedConst:
		bv, ok := b.(*EvaluatedConst)
		return ok && slices.Equal(av.Bytes, bv.Bytes)
	case *UnevaluatedConst:
		bv, ok := b.(*UnevaluatedConst)
		return ok && av.ExprID == bv.ExprID
	default:
		return false
	}
}

// IsUnboundInfer reports whether t is an Infer ivar with no resolution yet
// (used pervasively by the coerce kernel and possibility tracker to decide
// "both sides infer with no class").
func IsUnboundInfer(t Type) bool {
	t = Prune(t)
	iv, ok := t.(*InferType)
	return ok && iv.Class == InferClassNone
}

// ContainsIvar reports whether id occurs anywhere inside t, used by
// ivar.Store.Set's occurs-check (spec.md §4.1).
func ContainsIvar(t Type, id int) bool {
	t = Prune(t)
	switch t := t.(type) {
	case *InferType:
		return t.ID == id
	case *PathType:
		for _, a := range t.Args {
			if ContainsIvar(a, id) {
				return true
			}
		}
		return false
	case *TraitObjectType:
		for _, p := range t.Params {
			if ContainsIvar(p, id) {
				return true
			}
		}
		return false
	case *ArrayType:
		return ContainsIvar(t.Inner, id)
	case *SliceType:
		return ContainsIvar(t.Inner, id)
	case *TupleType:
		for _, e := range t.Elems {
			if ContainsIvar(e, id) {
				return true
			}
		}
		return false
	case *BorrowType:
		return ContainsIvar(t.Inner, id)
	case *PointerType:
		return ContainsIvar(t.Inner, id)
	case *FunctionType:
		for _, a := range t.Args {
			if ContainsIvar(a, id) {
				return true
			}
		}
		return ContainsIvar(t.Ret, id)
	case *ClosureType:
		for _, a := range t.Args {
			if ContainsIvar(a, id) {
				return true
			}
		}
		return ContainsIvar(t.Ret, id)
	default:
		return false
	}
}
