package revisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveDeref implements spec.md §4.3 "Deref": a borrow or raw pointer
// operand resolves directly to its inner type; anything else defers to a
// Deref::Target Associated rule for internal/assoc to settle once the
// operand's type implements a custom Deref.
func (rv *Resolver) resolveDeref(r rules.NodeRevisit) bool {
	deref := rv.Arena.Get(r.NodePtr).(*hir.DerefExpr)
	operandTy := rv.currentType(deref.Operand)

	if _, stillUnbound := operandTy.(*types.InferType); stillUnbound {
		return false
	}

	switch t := operandTy.(type) {
	case *types.BorrowType:
		rv.Ivars.Set(r.ResultIvar, t.Inner)
		return true
	case *types.PointerType:
		rv.Ivars.Set(r.ResultIvar, t.Inner)
		return true
	default:
		rv.Rules.AddAssociated(rules.Associated{
			Span:        rv.Arena.Get(r.NodePtr).Span(),
			ResultTy:    rv.Ivars.Get(r.ResultIvar),
			Trait:       []string{"core", "ops", "Deref"},
			ImplTy:      operandTy,
			AssocName:   "Target",
		})
		return true
	}
}
