package fixture

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/types"
)

var numericPrims = []types.PrimKind{
	types.PrimI8, types.PrimI16, types.PrimI32, types.PrimI64, types.PrimI128, types.PrimISize,
	types.PrimU8, types.PrimU16, types.PrimU32, types.PrimU64, types.PrimU128, types.PrimUSize,
	types.PrimF32, types.PrimF64,
}

var arithmeticTraits = [][]string{
	{"core", "ops", "Add"}, {"core", "ops", "Sub"}, {"core", "ops", "Mul"},
	{"core", "ops", "Div"}, {"core", "ops", "Rem"},
	{"core", "ops", "BitAnd"}, {"core", "ops", "BitOr"}, {"core", "ops", "BitXor"},
}

var comparisonTraits = [][]string{
	{"core", "cmp", "PartialEq"}, {"core", "cmp", "PartialOrd"},
}

// RegisterBuiltinOperators gives every primitive numeric type the operator
// impls mrustc treats as intrinsic rather than ordinary trait impls
// (spec.md's type grammar has no room for "builtin" operators distinct from
// the Trait/ImplTy machinery collaborators.CrateInfo already exposes, so a
// fixture that exercises arithmetic registers them here the same way a real
// embedder's crate database would have them pre-populated from core).
func RegisterBuiltinOperators(crate *collaborators.StaticCrateInfo) {
	for _, prim := range numericPrims {
		self := types.NewPrimitiveType(nil, prim)
		for _, trait := range arithmeticTraits {
			_ = crate.RegisterImpl(trait, self, collaborators.TraitImpl{
				ImplType:    self,
				TraitParams: []types.Type{self},
				AssocTypes:  map[string]types.Type{"Output": self},
			})
		}
		for _, trait := range comparisonTraits {
			_ = crate.RegisterImpl(trait, self, collaborators.TraitImpl{
				ImplType:    self,
				TraitParams: []types.Type{self},
			})
		}
	}
}
