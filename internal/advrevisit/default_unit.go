package advrevisit

import "github.com/gorustic/typeck/internal/types"

// resolveDefaultUnit implements the "default to unit" leg of spec.md §4.7's
// fallback ladder: a statement-position expression's result ivar becomes `()`
// if nothing else has pinned it down by the time the driver forces this
// AdvRevisit's fallback pass. On a non-fallback pass it only ever checks
// whether something else already resolved the node and, if so, clears the
// rule; it never forces the default itself until isFallback is true, so an
// ordinary rule (say, a later coercion) still gets first claim on the ivar.
func (r *Resolver) resolveDefaultUnit(p DefaultUnitPayload, isFallback bool) bool {
	node := r.Arena.Get(p.Node)
	rt := r.resolve(node.ResultType())
	if !types.IsUnboundInfer(rt) {
		return true
	}
	if !isFallback {
		return false
	}
	iv := rt.(*types.InferType)
	r.Ivars.Set(iv.ID, types.NewTupleType(nil))
	return true
}
