package assoc

import "github.com/gorustic/typeck/internal/types"

// substVisitor replaces a GenericType reference by name, the same
// generic-parameter substitution internal/enumerate/subst.go uses to
// monomorphise a callee's signature against a call site's type arguments;
// reimplemented here (rather than exported from internal/enumerate) since
// this package substitutes an impl's own generics, not a function's.
type substVisitor struct {
	types.DefaultTypeVisitor
	subst map[string]types.Type
}

func (v substVisitor) EnterType(t types.Type) types.Type {
	if g, ok := t.(*types.GenericType); ok {
		if r, ok := v.subst[g.Name]; ok {
			return r
		}
	}
	return nil
}

func substituteType(t types.Type, subst map[string]types.Type) types.Type {
	if t == nil || len(subst) == 0 {
		return t
	}
	return t.Accept(substVisitor{subst: subst})
}

func substituteTypes(ts []types.Type, subst map[string]types.Type) []types.Type {
	if len(subst) == 0 {
		return ts
	}
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		out[i] = substituteType(t, subst)
	}
	return out
}

// bindSelfGeneric computes the substitution implied by a Fuzzy verdict.
// collaborators.StaticCrateInfo's compareSelfTypes only ever reports Fuzzy
// when the impl's self type is a bare GenericType (e.g. `impl<T> Trait for
// T`), so the whole concrete query type becomes that one generic's binding.
// An Equal verdict needs no substitution: impl_ty and the impl's self type
// are already structurally identical.
func bindSelfGeneric(implSelf types.Type, query types.Type) map[string]types.Type {
	g, ok := types.Prune(implSelf).(*types.GenericType)
	if !ok {
		return nil
	}
	return map[string]types.Type{g.Name: query}
}
