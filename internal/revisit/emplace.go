package revisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveEmplace implements SPEC_FULL.md §9.1's emplace-sugar supplement
// (`box EXPR`): the constructed value's type comes from the Boxer::Output
// associated type of whatever placer the emplace targets (the default
// allocator's placer when Place is absent), grounded on
// original_source/expr_cs__enum.cpp's Node_Emplace installing a
// Placer/Boxer trait pair.
func (rv *Resolver) resolveEmplace(r rules.NodeRevisit) bool {
	emp := rv.Arena.Get(r.NodePtr).(*hir.EmplaceExpr)
	valueTy := rv.currentType(emp.Value)

	if _, stillUnbound := valueTy.(*types.InferType); stillUnbound {
		return false
	}

	placeTy := valueTy
	if emp.Place != hir.NoNode {
		placeTy = rv.currentType(emp.Place)
		if _, stillUnbound := placeTy.(*types.InferType); stillUnbound {
			return false
		}
	}

	rv.Rules.AddAssociated(rules.Associated{
		Span:        rv.Arena.Get(r.NodePtr).Span(),
		ResultTy:    rv.Ivars.Get(r.ResultIvar),
		Trait:       []string{"core", "ops", "Boxer"},
		TraitParams: []types.Type{valueTy},
		ImplTy:      placeTy,
		AssocName:   "Output",
	})
	return true
}
