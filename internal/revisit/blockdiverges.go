package revisit

import (
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveBlockDiverges implements spec.md §4.3 "Block diverges": once the
// tail statement's type is known, a block whose tail diverges is itself
// upgraded to Diverge. A block with no tail statement (every statement
// non-tail, or empty) is already unit from enumeration and has nothing left
// to check here. Defaulting an unresolved tail to unit is deliberately left
// to the driver's fallback pass (spec.md §4.3's "defaults to unit only in
// fallback mode"), not performed by this revisit.
func (rv *Resolver) resolveBlockDiverges(r rules.NodeRevisit) bool {
	block := rv.Arena.Get(r.NodePtr).(*hir.BlockExpr)
	if len(block.Stmts) == 0 {
		return true
	}

	tail := block.Stmts[len(block.Stmts)-1]
	tailTy := rv.currentType(tail)

	if _, stillUnbound := tailTy.(*types.InferType); stillUnbound {
		return false
	}

	if _, diverges := tailTy.(*types.DivergeType); diverges {
		block.SetResultType(types.NewDivergeType(nil))
	}
	return true
}
