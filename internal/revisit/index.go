package revisit

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveIndex implements spec.md §4.3 "Index": walk the autoderef chain of
// the indexed value looking for an Index<IdxTy> impl; on a unique match,
// insert the Deref nodes that chain took and emit an Associated rule for
// its Output (internal/assoc monomorphises the impl's own AssocTypes entry,
// which this package does not attempt to do itself since it has no access
// to the impl's generic substitution machinery internal/enumerate's
// subst.go owns).
func (rv *Resolver) resolveIndex(r rules.NodeRevisit) bool {
	idx := rv.Arena.Get(r.NodePtr).(*hir.IndexExpr)
	objTy := rv.currentType(idx.Object)
	idxTy := rv.currentType(idx.Index)

	if _, stillUnbound := objTy.(*types.InferType); stillUnbound {
		return false
	}

	chain := autoderefChain(rv.Crate, objTy)
	for depth, step := range chain {
		var matches []collaborators.TraitImpl
		rv.Crate.FindTraitImpls([]string{"core", "ops", "Index"}, []types.Type{idxTy}, step, func(impl collaborators.TraitImpl, verdict collaborators.MatchVerdict) bool {
			if verdict != collaborators.Unequal {
				matches = append(matches, impl)
			}
			return true
		})
		if len(matches) != 1 {
			continue
		}
		for i := 0; i < depth; i++ {
			wrap(rv.Arena, idx.Object, func(operand hir.NodeID) hir.Expr {
				return &hir.CoerceDerefExpr{Operand: operand}
			})
		}
		if out, ok := matches[0].AssocTypes["Output"]; ok {
			rv.Ivars.Set(r.ResultIvar, out)
		} else {
			rv.Rules.AddAssociated(rules.Associated{
				Span:        rv.Arena.Get(r.NodePtr).Span(),
				ResultTy:    rv.Ivars.Get(r.ResultIvar),
				Trait:       []string{"core", "ops", "Index"},
				TraitParams: []types.Type{idxTy},
				ImplTy:      matches[0].ImplType,
				AssocName:   "Output",
			})
		}
		return true
	}
	return false
}
