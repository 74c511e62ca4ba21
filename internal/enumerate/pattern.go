package enumerate

import (
	"fmt"

	"github.com/gorustic/typeck/internal/advrevisit"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// BindPattern exposes the enumerator's own pattern-binding walk to callers
// assembling a function's rule set, so a function's argument patterns bind
// to their declared parameter types (spec.md §6's Typecheck entry point)
// before EnumerateBody ever walks the body and starts resolving IdentExpr
// lookups against those same binding slots.
func (e *Enumerator) BindPattern(pat hir.PatID, expected types.Type) {
	e.bindPattern(NewEnumScope(), pat, expected)
}

// bindPattern ties every binding slot reachable from pat to its expected
// type, recursing through the sub-pattern shapes eagerly when the expected
// type is already concrete enough, and deferring to an AdvRevisit
// (internal/advrevisit, spec.md §4.8) when it is not.
func (e *Enumerator) bindPattern(scope *EnumScope, pat hir.PatID, expected types.Type) {
	if pat == hir.NoPat {
		return
	}
	switch p := e.Arena.GetPat(pat).(type) {
	case *hir.IdentPatNode:
		e.Arena.SetBindingType(p.BindingSlot, expected)
		if p.Sub != hir.NoPat {
			e.bindPattern(scope, p.Sub, expected)
		}

	case *hir.WildcardPatNode:
		// nothing to bind

	case *hir.LitPatNode:
		// the pattern's own literal type must match the scrutinee; there is
		// no sub-expression or binding slot here to attach a rule to, so
		// nothing further is required of the enumerator.

	case *hir.RefPatNode:
		inner := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
		e.bindPattern(scope, p.Inner, inner)

	case *hir.TuplePatNode:
		e.bindTuplePat(scope, pat, p, expected)

	case *hir.SlicePatNode:
		p.SetCache(advrevisit.ExpectedTypeCacheKey, expected)
		if p.HasRest {
			e.Rules.AddAdvRevisit(rules.AdvSplitSlicePat, p.PatSpan(), advrevisit.SplitSlicePatPayload{Pattern: pat})
		} else {
			e.Rules.AddAdvRevisit(rules.AdvSlicePat, p.PatSpan(), advrevisit.SlicePatPayload{Pattern: pat})
		}

	case *hir.StructPatNode:
		for _, f := range p.Fields {
			fieldTy, ok := e.Crate.FindField(expected, f.Name)
			if !ok {
				fieldTy = e.Ivars.NewTypeIvar(nil, types.InferClassNone)
			}
			e.bindPattern(scope, f.Pat, fieldTy)
		}

	case *hir.TupleVariantPatNode:
		for _, sub := range p.Elems {
			e.bindPattern(scope, sub, e.Ivars.NewTypeIvar(nil, types.InferClassNone))
		}

	case *hir.PathPatNode:
		// unit struct/enum variant or named constant: nothing to bind.

	default:
		panic(fmt.Sprintf("enumerate: unhandled pattern kind %T", p))
	}
}

// bindTuplePat splits a tuple pattern's elements against a known TupleType
// eagerly, or defers the whole split to AdvSplitTuple (spec.md §4.8) when
// the scrutinee isn't concrete yet or the pattern carries a `..` rest.
func (e *Enumerator) bindTuplePat(scope *EnumScope, pat hir.PatID, p *hir.TuplePatNode, expected types.Type) {
	if p.RestIndex >= 0 {
		p.SetCache(advrevisit.ExpectedTypeCacheKey, expected)
		e.Rules.AddAdvRevisit(rules.AdvSplitTuple, p.PatSpan(), advrevisit.SplitTuplePayload{Pattern: pat})
		return
	}
	if tup, ok := types.Prune(expected).(*types.TupleType); ok && len(tup.Elems) == len(p.Elems) {
		for i, sub := range p.Elems {
			e.bindPattern(scope, sub, tup.Elems[i])
		}
		return
	}
	p.SetCache(advrevisit.ExpectedTypeCacheKey, expected)
	e.Rules.AddAdvRevisit(rules.AdvSplitTuple, p.PatSpan(), advrevisit.SplitTuplePayload{Pattern: pat})
}
