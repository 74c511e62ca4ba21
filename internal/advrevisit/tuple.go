package advrevisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

// resolveSplitTuple implements the SplitTuple leg of spec.md §4.9: a tuple
// pattern with a `..` rest marker can't be bound until the scrutinee's
// element count is known, since the rest position's width depends on it.
// Once the expected type resolves to a concrete tuple, bindTuple does the
// actual element-by-element split; until then the rule stays pending.
func (r *Resolver) resolveSplitTuple(p SplitTuplePayload, isFallback bool) bool {
	pat, ok := r.Arena.GetPat(p.Pattern).(*hir.TuplePatNode)
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
	r.bindTuple(p.Pattern, pat, resolved)
	return true
}
