package advrevisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

// resolveSlicePat implements spec.md §4.9's fixed-shape slice pattern leg: a
// `[a, b, c]` pattern (no `..`) can't bind its elements until the scrutinee's
// element type is known, since a slice/array's element type isn't visible on
// the pattern itself.
func (r *Resolver) resolveSlicePat(p SlicePatPayload, isFallback bool) bool {
	pat, ok := r.Arena.GetPat(p.Pattern).(*hir.SlicePatNode)
	if !ok {
		return true
	}
	expected := r.expectedTypeOf(pat)
	if expected == nil {
		return true
	}
	resolved := r.resolve(expected)
	if types.IsUnboundInfer(resolved) {
		return false
	}
	r.bindSlice(p.Pattern, pat, resolved)
	return true
}

// resolveSplitSlicePat is resolveSlicePat's analogue for `[a, ..rest, z]`:
// the same deferred-until-concrete wait, then bindSlice handles splitting
// Before/After around the rest binding and (when the array length is
// statically known) recording how many elements the rest slot absorbed.
func (r *Resolver) resolveSplitSlicePat(p SplitSlicePatPayload, isFallback bool) bool {
	pat, ok := r.Arena.GetPat(p.Pattern).(*hir.SlicePatNode)
	if !ok {
		return true
	}
	expected := r.expectedTypeOf(pat)
	if expected == nil {
		return true
	}
	resolved := r.resolve(expected)
	if types.IsUnboundInfer(resolved) {
		return false
	}
	r.bindSlice(p.Pattern, pat, resolved)
	return true
}
