package advrevisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

// bindingMode is the "default binding mode" rustc threads through a match
// arm's pattern tree once the scrutinee turns out to be a reference: Move
// until the first `&`/`&mut` layer is peeled, then Ref/RefMut, permanently
// downgrading to Ref the moment a shared layer is seen even if a `&mut`
// layer follows underneath it (spec.md §4.8).
type bindingMode struct {
	isRef      bool
	mutability types.Mutability
}

// resolveMatchErgonomics implements spec.md §4.8: wait for the scrutinee's
// type (recording a possibility guess per arm pattern while it's still
// unbound), then peel its `&`/`&mut` wrapper layers once and re-walk every
// arm's pattern tree, upgrading each leaf binding to the mode that peeling
// implies.
func (r *Resolver) resolveMatchErgonomics(p MatchErgonomicsPayload, isFallback bool) bool {
	matchNode, ok := r.Arena.Get(p.Match).(*hir.MatchExpr)
	if !ok {
		return true
	}
	scrutNode := r.Arena.Get(matchNode.Scrutinee)
	scrutTy := r.resolve(scrutNode.ResultType())

	if types.IsUnboundInfer(scrutTy) {
		if r.Possibility != nil {
			iv := scrutTy.(*types.InferType)
			for _, arm := range matchNode.Arms {
				if arm.Pattern == hir.NoPat {
					continue
				}
				if guess := r.possibleTypeFromPattern(r.Arena.GetPat(arm.Pattern)); guess != nil {
					r.Possibility.RecordBounded(iv.ID, guess)
				}
			}
		}
		return false
	}

	derefCount, mode, inner := peelReferences(scrutTy)
	for _, arm := range matchNode.Arms {
		if arm.Pattern == hir.NoPat {
			continue
		}
		r.applyErgonomics(arm.Pattern, inner, mode, derefCount)
	}
	return true
}

func peelReferences(t types.Type) (count int, mode bindingMode, inner types.Type) {
	cur := types.Prune(t)
	for {
		b, ok := cur.(*types.BorrowType)
		if !ok {
			break
		}
		switch {
		case !mode.isRef:
			mode = bindingMode{isRef: true, mutability: b.Mutability}
		case b.Mutability == types.Shared:
			mode.mutability = types.Shared
		}
		count++
		cur = types.Prune(b.Inner)
	}
	return count, mode, cur
}

// applyErgonomics distributes ty/mode down through pat, upgrading every leaf
// Ident binding to a borrow of the given mutability when mode.isRef, and
// recording each visited pattern's implicit deref count (spec.md §6's
// "pattern deref count" per-node cache).
func (r *Resolver) applyErgonomics(patID hir.PatID, ty types.Type, mode bindingMode, derefCount int) {
	pat := r.Arena.GetPat(patID)
	pat.SetCache("implicitDerefCount", derefCount)

	switch p := pat.(type) {
	case *hir.IdentPatNode:
		bound := ty
		if mode.isRef {
			bound = types.NewBorrowType(nil, mode.mutability, ty)
		}
		r.Arena.SetBindingType(p.BindingSlot, bound)
		if p.Sub != hir.NoPat {
			r.applyErgonomics(p.Sub, ty, mode, derefCount)
		}

	case *hir.RefPatNode:
		// an explicit &/&mut pattern takes over the deref itself, so its own
		// subtree reverts to plain Move bindings.
		r.applyErgonomics(p.Inner, ty, bindingMode{}, 0)

	case *hir.TuplePatNode:
		if p.RestIndex >= 0 {
			return
		}
		if tup, ok := types.Prune(ty).(*types.TupleType); ok && len(tup.Elems) == len(p.Elems) {
			for i, sub := range p.Elems {
				r.applyErgonomics(sub, tup.Elems[i], mode, derefCount)
			}
		}

	case *hir.LitPatNode, *hir.WildcardPatNode, *hir.StructPatNode,
		*hir.TupleVariantPatNode, *hir.PathPatNode, *hir.SlicePatNode:
		// nothing further to redistribute here: these shapes' own
		// sub-pattern typing already runs through FindField/fresh ivars
		// (enumerate/pattern.go) or a dedicated revisit (SplitTuple/
		// SlicePat/SplitSlicePat) that resolves against the concrete
		// scrutinee independently of the borrow layers peeled here.
	}
}

// possibleTypeFromPattern builds the coarse "shape guess" spec.md §4.8
// records as a possibility while the scrutinee is still an unbound infer:
// enough structure to let the possibility tracker narrow candidates, not a
// fully resolved type.
func (r *Resolver) possibleTypeFromPattern(pat hir.Pat) types.Type {
	switch p := pat.(type) {
	case *hir.TuplePatNode:
		if p.RestIndex >= 0 {
			return nil
		}
		elems := make([]types.Type, len(p.Elems))
		for i := range elems {
			elems[i] = r.Ivars.NewTypeIvar(nil, types.InferClassNone)
		}
		return types.NewTupleType(nil, elems...)
	case *hir.StructPatNode:
		return types.NewPathType(nil, p.Path)
	case *hir.TupleVariantPatNode:
		return types.NewPathType(nil, p.Path)
	case *hir.PathPatNode:
		return types.NewPathType(nil, p.Path)
	default:
		return nil
	}
}
