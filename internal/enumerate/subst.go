package enumerate

import "github.com/gorustic/typeck/internal/types"

// substVisitor replaces a GenericType reference by name, the way the
// teacher's TypeParamSubstitutionVisitor (named in internal/types/visitor.go's
// doc comment) substitutes a call site's type arguments into a generic
// signature before it's used.
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

// monomorphiseSubst pairs a callee's own generics with the path's explicit
// type arguments positionally, falling back to each generic's own default
// when the call site left it elided (spec.md §4.2 "monomorphising the
// callee's signature against path parameters").
func monomorphiseSubst(generics []*types.TypeParamDef, args []types.Type) map[string]types.Type {
	if len(generics) == 0 {
		return nil
	}
	subst := make(map[string]types.Type, len(generics))
	for i, g := range generics {
		if i < len(args) {
			subst[g.Name] = args[i]
		} else if g.Default != nil {
			subst[g.Name] = g.Default
		}
	}
	return subst
}

func substituteFunctionType(sig *types.FunctionType, subst map[string]types.Type) *types.FunctionType {
	if len(subst) == 0 {
		return sig
	}
	return types.NewFunctionType(sig.Provenance(), sig.ABI, sig.Unsafe, substituteTypes(sig.Args, subst), substituteType(sig.Ret, subst), sig.HRLCount)
}
