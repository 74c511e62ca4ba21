// Package coerce implements the coercion/unsize kernel of spec.md §4.4:
// check_coerce_tys and check_unsize_tys, the pair of functions every
// Coercion rule (and several NodeRevisit kinds) call to decide whether one
// type can flow into another, possibly rewriting the HIR in the process.
//
// Grounded on the teacher's internal/checker/unify.go and unify_mut.go,
// which run a similar "ordered cascade of special cases, falling through to
// plain equality" shape for TypeScript's structural subtyping; the cascade
// here implements Rust coercion instead of TS assignability, but keeps the
// teacher's "function returns a verdict, caller decides what to do with it"
// idiom rather than raising a Go error at the first failed special case.
package coerce

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/types"
)

// Result is the five-way verdict of spec.md §4.4.
type Result int

const (
	Equality Result = iota
	Custom
	Unsize
	Unknown
	Fail
)

func (r Result) String() string {
	switch r {
	case Equality:
		return "Equality"
	case Custom:
		return "Custom"
	case Unsize:
		return "Unsize"
	case Unknown:
		return "Unknown"
	case Fail:
		return "Fail"
	default:
		return "?"
	}
}

// Recorder is how the kernel reports an ambiguous coercion pair back to
// whatever owns ivar possibility bookkeeping (internal/possibility in
// production). Kept as a narrow interface, not a direct import, so
// internal/possibility can depend on this package for its virtual-try
// without creating an import cycle (SPEC_FULL.md §2.1 btree.Map note on
// `internal/possibility`'s `bounded` storage applies on the other side of
// this interface).
type Recorder interface {
	RecordCoerceTo(ivarID int, dst types.Type, isCoerce bool)
	RecordCoerceFrom(ivarID int, src types.Type, isCoerce bool)
	RecordBounded(ivarID int, candidate types.Type)
}

// NopRecorder discards every record; used by virtual-try callers (the
// possibility tracker's own bounded-intersection check) that must not have
// side effects (spec.md §4.6 "each virtual-try uses the read-only form").
type NopRecorder struct{}

func (NopRecorder) RecordCoerceTo(int, types.Type, bool)   {}
func (NopRecorder) RecordCoerceFrom(int, types.Type, bool) {}
func (NopRecorder) RecordBounded(int, types.Type)          {}

// Kernel bundles the collaborators the cascade needs: the ivar store (to
// resolve infer variables and perform the final equate), the HIR arena (to
// splice in Deref/Borrow/Cast/Unsize wrapper nodes), the crate's trait-impl
// database (CoerceUnsized/Unsize impl lookup), and a possibility Recorder.
type Kernel struct {
	Ivars    *ivar.Store
	Arena    *hir.Arena
	Crate    collaborators.CrateInfo
	Recorder Recorder
	// Mutate enables HIR node rewriting: with Mutate=false the kernel only
	// computes the verdict and leaves the arena untouched, which is how the
	// possibility tracker's virtual-try uses it, per spec.md §4.6.
	Mutate bool
}

func (k *Kernel) recorder() Recorder {
	if k.Recorder != nil {
		return k.Recorder
	}
	return NopRecorder{}
}

// CheckCoerceTypes implements spec.md §4.4's check_coerce_tys(dst, src).
// node is the NodeID currently producing src (NoNode when called from a
// context with nothing to rewrite, e.g. a virtual-try).
func (k *Kernel) CheckCoerceTypes(dst, src types.Type, node hir.NodeID) Result {
	dst, src = k.resolve(dst), k.resolve(src)

	// 1. dst == src under the current ivar store.
	if types.Equals(dst, src) {
		return Equality
	}

	// 2. Diverge on either side always equates (never coerces into
	// something concrete on its own, and the other way only equates).
	if isDiverge(dst) || isDiverge(src) {
		return Equality
	}

	// 3. class-tagged literal infer against a matching primitive.
	if classMatchesPrimitive(dst, src) {
		return Equality
	}

	// 4. both sides unbound infer with no class: record the possibility
	// pair and defer.
	if types.IsUnboundInfer(dst) && types.IsUnboundInfer(src) {
		dstIv := dst.(*types.InferType)
		srcIv := src.(*types.InferType)
		k.recorder().RecordCoerceTo(srcIv.ID, dst, true)
		k.recorder().RecordCoerceFrom(dstIv.ID, src, true)
		return Unknown
	}

	// 5. CoerceUnsized impl search when either side is generic/opaque/bounded.
	if isOpaqueOrGeneric(dst) || isOpaqueOrGeneric(src) {
		if r, ok := k.tryCoerceUnsizedImpl(dst, src); ok {
			return r
		}
	}

	// 7. pointer-family strength reduction.
	if r, ok := k.tryPointerFamily(dst, src, node); ok {
		return r
	}

	// 8. Closure -> Function.
	if cl, ok := src.(*types.ClosureType); ok {
		if fn, ok2 := dst.(*types.FunctionType); ok2 {
			return k.closureToFunction(cl, fn, node)
		}
	}

	// 9. NamedFunction/Function -> Function.
	if r, ok := k.tryFunctionToFunction(dst, src, node); ok {
		return r
	}

	// 10. fall through.
	return Equality
}

// CheckUnsizeTypes implements spec.md §4.4's check_unsize_tys(dst, src),
// the unsizing half of the cascade (array->slice, trait-object widening,
// concrete->trait-object, autoderef-matching, and the Unsize trait itself).
func (k *Kernel) CheckUnsizeTypes(dst, src types.Type, node hir.NodeID) Result {
	dst, src = k.resolve(dst), k.resolve(src)

	if arr, ok := src.(*types.ArrayType); ok {
		if sl, ok2 := dst.(*types.SliceType); ok2 && types.Equals(arr.Inner, sl.Inner) {
			return Unsize
		}
	}

	if srcTO, ok := src.(*types.TraitObjectType); ok {
		if dstTO, ok2 := dst.(*types.TraitObjectType); ok2 {
			if r, ok3 := k.traitObjectToTraitObject(dstTO, srcTO); ok3 {
				return r
			}
		}
	}

	if dstTO, ok := dst.(*types.TraitObjectType); ok {
		if _, srcIsTO := src.(*types.TraitObjectType); !srcIsTO {
			return k.concreteToTraitObject(dstTO, src, node)
		}
	}

	if r, ok := k.tryAutoderefMatch(dst, src, node); ok {
		return r
	}

	if r, ok := k.tryUnsizeTraitImpl(dst, src); ok {
		return r
	}

	return Equality
}

func (k *Kernel) resolve(t types.Type) types.Type {
	t = types.Prune(t)
	if iv, ok := t.(*types.InferType); ok && k.Ivars != nil {
		return k.Ivars.Get(iv.ID)
	}
	return t
}

func isDiverge(t types.Type) bool {
	_, ok := t.(*types.DivergeType)
	return ok
}

// classMatchesPrimitive implements step 3: an integer- or float-class infer
// unifies with any primitive of the matching kind.
func classMatchesPrimitive(dst, src types.Type) bool {
	if match, ok := classMatches(dst, src); ok {
		return match
	}
	match, ok := classMatches(src, dst)
	return ok && match
}

func classMatches(ivarSide, primSide types.Type) (matched bool, applicable bool) {
	iv, ok := ivarSide.(*types.InferType)
	if !ok || iv.Class == types.InferClassNone {
		return false, false
	}
	prim, ok := primSide.(*types.PrimitiveType)
	if !ok {
		return false, true
	}
	switch iv.Class {
	case types.InferClassInteger:
		return prim.Kind.IsInteger(), true
	case types.InferClassFloat:
		return prim.Kind.IsFloat(), true
	default:
		return false, true
	}
}

func isOpaqueOrGeneric(t types.Type) bool {
	switch t.(type) {
	case *types.ErasedType, *types.GenericType, *types.TraitObjectType:
		return true
	}
	return false
}

// tryCoerceUnsizedImpl implements step 5/6: look for a `CoerceUnsized` impl
// relating src to dst; a unique match is reported as Unsize directly, with
// no further check_unsize_tys on the impl's designated parameter (the
// solver does not model per-field StructMarkings in its reduced type
// grammar — SPEC_FULL.md carries spec.md's type grammar unchanged, which has
// no struct-field representation of its own).
func (k *Kernel) tryCoerceUnsizedImpl(dst, src types.Type) (Result, bool) {
	var candidates []collaborators.TraitImpl
	k.Crate.FindTraitImpls([]string{"core", "ops", "CoerceUnsized"}, []types.Type{dst}, src, func(impl collaborators.TraitImpl, verdict collaborators.MatchVerdict) bool {
		if verdict != collaborators.Unequal {
			candidates = append(candidates, impl)
		}
		return true
	})
	switch len(candidates) {
	case 0:
		return Unknown, false
	case 1:
		return Unsize, true
	default:
		return Unknown, true
	}
}

// tryPointerFamily implements step 7: Pointer->Pointer, Borrow->Pointer,
// Borrow->Borrow strength reduction (destination mutability must be <= the
// source's under Shared < Unique < Owned).
func (k *Kernel) tryPointerFamily(dst, src types.Type, node hir.NodeID) (Result, bool) {
	srcBorrow, srcIsBorrow := src.(*types.BorrowType)
	srcPtr, srcIsPtr := src.(*types.PointerType)
	dstBorrow, dstIsBorrow := dst.(*types.BorrowType)
	dstPtr, dstIsPtr := dst.(*types.PointerType)

	if !srcIsBorrow && !srcIsPtr {
		return Unknown, false
	}
	if !dstIsBorrow && !dstIsPtr {
		return Unknown, false
	}

	var srcMut, dstMut types.Mutability
	var srcInner, dstInner types.Type
	if srcIsBorrow {
		srcMut, srcInner = srcBorrow.Mutability, srcBorrow.Inner
	} else {
		srcMut, srcInner = srcPtr.Mutability, srcPtr.Inner
	}
	if dstIsBorrow {
		dstMut, dstInner = dstBorrow.Mutability, dstBorrow.Inner
	} else {
		dstMut, dstInner = dstPtr.Mutability, dstPtr.Inner
	}

	if !srcMut.AtLeast(dstMut) {
		return Fail, true
	}

	if srcIsBorrow && dstIsPtr {
		// strength reduction by reference-to-pointer cast.
		if k.Mutate && node != hir.NoNode {
			k.wrap(node, func(operand hir.NodeID) hir.Expr {
				return &hir.CoerceCastExpr{Operand: operand}
			})
		}
	}

	if srcIsBorrow && dstIsBorrow && dstMut != srcMut {
		// implicit reborrow, e.g. &mut T -> &T.
		if k.Mutate && node != hir.NoNode {
			k.wrap(node, func(operand hir.NodeID) hir.Expr {
				return &hir.CoerceBorrowExpr{Mutability: dstMut, Operand: operand}
			})
		}
	}

	return k.CheckUnsizeTypes(dstInner, srcInner, node), true
}

func (k *Kernel) closureToFunction(cl *types.ClosureType, fn *types.FunctionType, node hir.NodeID) Result {
	if len(cl.Args) != len(fn.Args) {
		return Fail
	}
	for i := range cl.Args {
		if !types.Equals(cl.Args[i], fn.Args[i]) {
			return Fail
		}
	}
	if !types.Equals(cl.Ret, fn.Ret) {
		return Fail
	}
	if fn.ABI != "Rust" {
		return Fail
	}
	if k.Mutate && node != hir.NoNode {
		k.wrap(node, func(operand hir.NodeID) hir.Expr {
			return &hir.CoerceCastExpr{Operand: operand}
		})
	}
	return Custom
}

func (k *Kernel) tryFunctionToFunction(dst, src types.Type, node hir.NodeID) (Result, bool) {
	var srcPath []string
	var srcArgs []types.Type
	var srcRet types.Type
	var srcABI string
	var srcUnsafe bool
	var srcHRL int

	switch s := src.(type) {
	case *types.NamedFunctionType:
		srcPath, srcArgs, srcRet, srcABI = s.Path, s.Args, s.Ret, "Rust"
	case *types.FunctionType:
		srcArgs, srcRet, srcABI, srcUnsafe, srcHRL = s.Args, s.Ret, s.ABI, s.Unsafe, s.HRLCount
	default:
		return Unknown, false
	}
	_ = srcPath

	dstFn, ok := dst.(*types.FunctionType)
	if !ok {
		return Unknown, false
	}
	if dstFn.ABI != srcABI {
		return Fail, true
	}
	if srcUnsafe && !dstFn.Unsafe {
		return Fail, true
	}
	if dstFn.HRLCount != srcHRL {
		// HRL arity-count-only check (SPEC_FULL.md §9.1.3).
		return Fail, true
	}
	if len(dstFn.Args) != len(srcArgs) {
		return Fail, true
	}
	for i := range srcArgs {
		if !types.Equals(dstFn.Args[i], srcArgs[i]) {
			return Fail, true
		}
	}
	if !types.Equals(dstFn.Ret, srcRet) {
		return Fail, true
	}
	if k.Mutate && node != hir.NoNode {
		k.wrap(node, func(operand hir.NodeID) hir.Expr {
			return &hir.CoerceCastExpr{Operand: operand}
		})
	}
	return Custom, true
}

func (k *Kernel) traitObjectToTraitObject(dst, src *types.TraitObjectType) (Result, bool) {
	if !pathEqual(dst.Trait, src.Trait) {
		return Fail, true
	}
	if len(dst.Params) != len(src.Params) {
		return Fail, true
	}
	for i := range dst.Params {
		if !types.Equals(dst.Params[i], src.Params[i]) {
			return Fail, true
		}
	}
	if !markersSubset(dst.Markers, src.Markers) {
		return Fail, true
	}
	return Unsize, true
}

func (k *Kernel) concreteToTraitObject(dst *types.TraitObjectType, src types.Type, node hir.NodeID) Result {
	// every ATY bound and marker bound surfaces as a deferred Associated
	// rule in the real driver; the kernel itself only reports Unsize here,
	// leaving rule emission to the caller (internal/revisit / internal/assoc),
	// which has access to the RuleSet this package intentionally does not
	// depend on.
	_ = src
	if k.Mutate && node != hir.NoNode {
		k.wrap(node, func(operand hir.NodeID) hir.Expr {
			return &hir.CoerceUnsizeExpr{Operand: operand}
		})
	}
	return Unsize
}

// tryAutoderefMatch walks the autoderef chain of src looking for a step
// that equals dst exactly (types.Equals), inserting the deref chain.
func (k *Kernel) tryAutoderefMatch(dst, src types.Type, node hir.NodeID) (Result, bool) {
	cur := src
	depth := 0
	for {
		if types.Equals(cur, dst) {
			if depth == 0 {
				return Unknown, false
			}
			if k.Mutate && node != hir.NoNode {
				for i := 0; i < depth; i++ {
					k.wrap(node, func(operand hir.NodeID) hir.Expr {
						return &hir.CoerceDerefExpr{Operand: operand}
					})
				}
			}
			return Custom, true
		}
		next, ok := k.Crate.Autoderef(cur)
		if !ok {
			return Unknown, false
		}
		cur = next
		depth++
	}
}

func (k *Kernel) tryUnsizeTraitImpl(dst, src types.Type) (Result, bool) {
	var fuzzy []collaborators.TraitImpl
	var exact bool
	k.Crate.FindTraitImpls([]string{"core", "ops", "Unsize"}, []types.Type{dst}, src, func(impl collaborators.TraitImpl, verdict collaborators.MatchVerdict) bool {
		switch verdict {
		case collaborators.Equal:
			exact = true
			return false
		case collaborators.Fuzzy:
			fuzzy = append(fuzzy, impl)
		}
		return true
	})
	if exact {
		return Unsize, true
	}
	if len(fuzzy) == 1 {
		return Unsize, true
	}
	return Unknown, false
}

// wrap reseats the node at id behind a new wrapper, per spec.md §9's "arena
// reseat" design note: the old node is relocated to a fresh slot and
// referenced as the wrapper's Operand.
func (k *Kernel) wrap(id hir.NodeID, makeWrapper func(operand hir.NodeID) hir.Expr) {
	old := k.Arena.Get(id)
	childID := k.Arena.New(old)
	k.Arena.Replace(id, makeWrapper(childID))
}

func pathEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// markersSubset reports whether every marker trait in dst also appears in
// src (spec.md §4.4 step on trait-object->trait-object: "destination
// markers must be a subset of source markers").
func markersSubset(dst, src [][]string) bool {
	for _, dm := range dst {
		found := false
		for _, sm := range src {
			if pathEqual(dm, sm) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
