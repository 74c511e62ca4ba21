package revisit

import (
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveField implements spec.md §4.3 "Field": autoderef the object's type
// until a field of the given name is found, inserting a Deref node for each
// step taken. Once objTy is concrete, exhausting the chain without a match
// is terminal (no later pass changes the chain), so it reports NoSuchField
// rather than staying pending forever.
func (rv *Resolver) resolveField(r rules.NodeRevisit) bool {
	field := rv.Arena.Get(r.NodePtr).(*hir.FieldExpr)
	objTy := rv.currentType(field.Object)

	if _, stillUnbound := objTy.(*types.InferType); stillUnbound {
		return false
	}

	chain := autoderefChain(rv.Crate, objTy)
	for depth, step := range chain {
		fieldTy, ok := rv.Crate.FindField(step, field.Field)
		if !ok {
			continue
		}
		for i := 0; i < depth; i++ {
			wrap(rv.Arena, field.Object, func(operand hir.NodeID) hir.Expr {
				return &hir.CoerceDerefExpr{Operand: operand}
			})
		}
		rv.Ivars.Set(r.ResultIvar, fieldTy)
		return true
	}
	rv.Errors = append(rv.Errors, diag.NewNoSuchField(objTy, field.Field, rv.Arena.Get(r.NodePtr).Span()))
	return true
}
