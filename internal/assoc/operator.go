package assoc

import (
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// isShift reports whether trait is Shl/Shr, the two operators whose RHS
// need not equal the LHS type (spec.md §4.5 step 1 "LHS==RHS except on
// shifts"). Grounded on internal/enumerate/enumerate.go's enumerateBinOp,
// which pre-coerces every other arithmetic/bitwise op's RHS to the LHS type
// before emitting its Associated rule but deliberately leaves a shift's RHS
// as its own independent numeric type.
func isShift(trait []string) bool {
	return len(trait) == 3 && trait[1] == "ops" && (trait[2] == "Shl" || trait[2] == "Shr")
}

func isNumericPrimitive(t types.Type) bool {
	p, ok := types.Prune(t).(*types.PrimitiveType)
	return ok && (p.Kind.IsInteger() || p.Kind.IsFloat())
}

// tryBuiltinOperator implements spec.md §4.5 step 1: when an operator rule's
// impl type and every trait parameter are concrete numeric primitives, the
// built-in semantics apply directly without a trait-impl search — result is
// the LHS type, and LHS must equal RHS except on shifts (whose RHS is
// enumerated independently; see enumerateBinOp). Comparison operators carry
// no result type (AssocName == ""), so there's nothing left to equate once
// the operand check passes.
func (s *Solver) tryBuiltinOperator(a rules.Associated) bool {
	if !a.IsOperator || !isNumericPrimitive(a.ImplTy) {
		return false
	}
	for _, p := range a.TraitParams {
		if !isNumericPrimitive(p) {
			return false
		}
	}
	if !isShift(a.Trait) {
		for _, p := range a.TraitParams {
			if !types.Equals(a.ImplTy, p) {
				return false
			}
		}
	}
	if a.AssocName != "" && a.ResultTy != nil {
		if !s.equate(a.ResultTy, a.ImplTy) {
			return false
		}
	}
	return true
}
