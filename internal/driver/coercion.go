package driver

import (
	"github.com/gorustic/typeck/internal/coerce"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// runCoercionPass tries every pending Coercion rule once. check_coerce_tys
// only decides the shape of the conversion (spec.md §4.4) and, when it
// mutates the HIR at all, reseats the node behind a wrapper — it never pins
// the ivars that made the decision true. Applying that decision (equating
// whatever's left unresolved in dst/src, then stamping the node's final
// result type) is this package's job, the same division of labour
// internal/assoc draws between resolveUniqueCandidate's impl search and its
// own call to equate.
func (d *Driver) runCoercionPass() (progressed bool) {
	var done []int
	d.Rules.EachCoercion(func(c rules.Coercion) bool {
		if d.resolveCoercion(c) {
			done = append(done, c.Idx)
			progressed = true
		}
		return true
	})
	for _, idx := range done {
		d.Rules.RemoveCoercion(idx)
	}
	return progressed
}

func (d *Driver) resolveCoercion(c rules.Coercion) bool {
	node := d.Arena.Get(c.NodePtr)
	src := d.Ivars.GetDeep(node.ResultType())
	dst := d.Ivars.GetDeep(c.TargetType)

	result := d.Coerce.CheckCoerceTypes(dst, src, c.NodePtr)
	switch result {
	case coerce.Fail:
		var failDiag diag.Error = diag.NewInvalidCoercion(dst, src, c.Span)
		if expected, actual, ok := borrowStrengthIncrease(dst, src); ok {
			failDiag = diag.NewMismatchedBorrowClass(expected, actual, c.Span)
		}
		d.Errors = append(d.Errors, &Error{Reason: failDiag.Error(), Diag: failDiag})
		return true
	case coerce.Unknown:
		return false
	default: // Equality, Custom, Unsize
		if !d.equate(dst, src) {
			mismatch := diag.NewTypeMismatch(dst, src, c.Span)
			d.Errors = append(d.Errors, &Error{Reason: mismatch.Error(), Diag: mismatch})
			return true
		}
		// the kernel may have reseated the node (wrap splices in a Deref/
		// Borrow/Cast/Unsize wrapper at the same id via Arena.Replace), so
		// re-fetch it before stamping the final result type.
		d.Arena.Get(c.NodePtr).SetResultType(dst)
		return true
	}
}

// borrowStrengthIncrease reports whether a Fail verdict traces back
// specifically to dst/src both being in the borrow/pointer family with dst
// demanding a stronger mutability than src offers (spec.md §7's
// MismatchedBorrowClass, "strength increase attempted") — mirroring
// coerce.Kernel.tryPointerFamily's own AtLeast check rather than extending
// coerce.Result with a new variant (internal/possibility checks coerce.Fail
// by value in two places already and must keep seeing that exact verdict).
func borrowStrengthIncrease(dst, src types.Type) (expected, actual types.Mutability, ok bool) {
	srcMut, srcOk := mutabilityOf(src)
	dstMut, dstOk := mutabilityOf(dst)
	if !srcOk || !dstOk {
		return 0, 0, false
	}
	if srcMut.AtLeast(dstMut) {
		return 0, 0, false
	}
	return dstMut, srcMut, true
}

func mutabilityOf(t types.Type) (types.Mutability, bool) {
	switch tt := t.(type) {
	case *types.BorrowType:
		return tt.Mutability, true
	case *types.PointerType:
		return tt.Mutability, true
	default:
		return 0, false
	}
}
