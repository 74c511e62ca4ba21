package advrevisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

// bindSub distributes ty onto pat's sub-patterns once ty is concrete enough
// to do so, mirroring internal/enumerate/pattern.go's bindPattern/
// bindTuplePat eager cases. Kept here (rather than shared with enumerate)
// because a resolver only runs once enumerate itself couldn't bind eagerly;
// if a nested sub-pattern still isn't resolvable, bindSub defers it exactly
// the way enumerate does, by stashing the expected type on the pattern's own
// cache and queuing a fresh AdvRevisit for it.
func (r *Resolver) bindSub(pat hir.PatID, ty types.Type) {
	switch p := r.Arena.GetPat(pat).(type) {
	case *hir.IdentPatNode:
		r.Arena.SetBindingType(p.BindingSlot, ty)
		if p.Sub != hir.NoPat {
			r.bindSub(p.Sub, ty)
		}

	case *hir.WildcardPatNode:
		// nothing to bind

	case *hir.LitPatNode:
		// the literal's own type must match ty; nothing further to bind

	case *hir.RefPatNode:
		if b, ok := types.Prune(ty).(*types.BorrowType); ok {
			r.bindSub(p.Inner, b.Inner)
			return
		}
		r.bindSub(p.Inner, r.Ivars.NewTypeIvar(nil, types.InferClassNone))

	case *hir.TuplePatNode:
		r.bindTuple(pat, p, ty)

	case *hir.SlicePatNode:
		r.bindSlice(pat, p, ty)

	case *hir.StructPatNode:
		for _, f := range p.Fields {
			fieldTy, ok := r.Crate.FindField(ty, f.Name)
			if !ok {
				fieldTy = r.Ivars.NewTypeIvar(nil, types.InferClassNone)
			}
			r.bindSub(f.Pat, fieldTy)
		}

	case *hir.TupleVariantPatNode:
		for _, sub := range p.Elems {
			r.bindSub(sub, r.Ivars.NewTypeIvar(nil, types.InferClassNone))
		}

	case *hir.PathPatNode:
		// unit struct/enum variant or named constant: nothing to bind
	}
}

// bindTuple implements the non-deferred half of resolveSplitTuple's job:
// once the tuple pattern's expected type is a concrete *types.TupleType,
// split it around the `..` rest marker (if any) and bind every element.
// Patterns with no rest marker that reach here (nested inside some other
// deferred pattern) are bound directly rather than requeued, since nothing
// further needs to become concrete first.
func (r *Resolver) bindTuple(pat hir.PatID, p *hir.TuplePatNode, ty types.Type) {
	tup, ok := types.Prune(ty).(*types.TupleType)
	if !ok {
		// shape mismatch or still unresolved: nothing sound to distribute
		return
	}

	if p.RestIndex < 0 {
		if len(tup.Elems) != len(p.Elems) {
			return
		}
		for i, sub := range p.Elems {
			r.bindSub(sub, tup.Elems[i])
		}
		return
	}

	if len(tup.Elems) < len(p.Elems)-1 {
		return
	}
	before := p.Elems[:p.RestIndex]
	after := p.Elems[p.RestIndex:]
	for i, sub := range before {
		r.bindSub(sub, tup.Elems[i])
	}
	tailStart := len(tup.Elems) - len(after)
	for i, sub := range after {
		r.bindSub(sub, tup.Elems[tailStart+i])
	}
	p.SetCache("restAbsorbed", tailStart-len(before))
}

// bindSlice is bindTuple's analogue for [T; N] / [T] scrutinees: the
// element type is uniform, so Before/After/RestSlot all just bind against
// inner, but the absorbed count still needs a concrete array length to
// compute when there's a rest marker.
func (r *Resolver) bindSlice(pat hir.PatID, p *hir.SlicePatNode, ty types.Type) {
	inner, length, hasLength := sliceElemType(ty)
	if inner == nil {
		return
	}
	for _, sub := range p.Before {
		r.bindSub(sub, inner)
	}
	for _, sub := range p.After {
		r.bindSub(sub, inner)
	}
	if p.HasRest && p.RestSlot >= 0 {
		restTy := types.Type(types.NewSliceType(nil, inner))
		if hasLength {
			absorbed := length - len(p.Before) - len(p.After)
			if absorbed < 0 {
				absorbed = 0
			}
			p.SetCache("restAbsorbed", absorbed)
		}
		r.Arena.SetBindingType(p.RestSlot, restTy)
	}
}

func sliceElemType(ty types.Type) (inner types.Type, length int, hasLength bool) {
	switch t := types.Prune(ty).(type) {
	case *types.SliceType:
		return t.Inner, 0, false
	case *types.ArrayType:
		if lit, ok := types.PruneConst(t.Size).(*types.EvaluatedConst); ok {
			if n, ok := evaluatedConstAsInt(lit); ok {
				return t.Inner, n, true
			}
		}
		return t.Inner, 0, false
	case *types.BorrowType:
		return sliceElemType(t.Inner)
	default:
		return nil, 0, false
	}
}

func evaluatedConstAsInt(c *types.EvaluatedConst) (int, bool) {
	if len(c.Bytes) == 0 || len(c.Bytes) > 8 {
		return 0, false
	}
	var v uint64
	for i := len(c.Bytes) - 1; i >= 0; i-- {
		v = v<<8 | uint64(c.Bytes[i])
	}
	return int(v), true
}
