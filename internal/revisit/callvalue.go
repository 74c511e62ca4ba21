package revisit

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveCallValue implements spec.md §4.3 "CallValue": a closure, function
// pointer, or named function type has a directly-known signature; anything
// else falls back to an FnOnce search via autoderef, deferring the result
// to an Output Associated rule.
func (rv *Resolver) resolveCallValue(r rules.NodeRevisit) bool {
	call := rv.Arena.Get(r.NodePtr).(*hir.CallValueExpr)
	calleeTy := rv.currentType(call.Callee)

	if _, stillUnbound := calleeTy.(*types.InferType); stillUnbound {
		return false
	}

	var args []types.Type
	var ret types.Type
	switch t := calleeTy.(type) {
	case *types.ClosureType:
		args, ret = t.Args, t.Ret
	case *types.FunctionType:
		args, ret = t.Args, t.Ret
	case *types.NamedFunctionType:
		args, ret = t.Args, t.Ret
	}

	if ret != nil {
		if len(args) != len(call.Args) {
			return false
		}
		for i, argID := range call.Args {
			rv.Rules.AddCoercion(args[i], argID, rv.Arena.Get(argID).Span())
		}
		rv.Ivars.Set(r.ResultIvar, ret)
		return true
	}

	chain := autoderefChain(rv.Crate, calleeTy)
	argTuple := make([]types.Type, len(call.Args))
	for i, argID := range call.Args {
		argTuple[i] = rv.currentType(argID)
	}
	params := []types.Type{types.NewTupleType(nil, argTuple...)}

	for depth, step := range chain {
		var matches []collaborators.TraitImpl
		rv.Crate.FindTraitImpls([]string{"core", "ops", "FnOnce"}, params, step, func(impl collaborators.TraitImpl, verdict collaborators.MatchVerdict) bool {
			if verdict != collaborators.Unequal {
				matches = append(matches, impl)
			}
			return true
		})
		if len(matches) != 1 {
			continue
		}
		for i := 0; i < depth; i++ {
			wrap(rv.Arena, call.Callee, func(operand hir.NodeID) hir.Expr {
				return &hir.CoerceDerefExpr{Operand: operand}
			})
		}
		rv.Rules.AddAssociated(rules.Associated{
			Span:        rv.Arena.Get(r.NodePtr).Span(),
			ResultTy:    rv.Ivars.Get(r.ResultIvar),
			Trait:       []string{"core", "ops", "FnOnce"},
			TraitParams: params,
			ImplTy:      matches[0].ImplType,
			AssocName:   "Output",
		})
		return true
	}
	return false
}
