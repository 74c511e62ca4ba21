package assoc

import "github.com/gorustic/typeck/internal/types"

// hasUnpinnedErased implements spec.md §4.5 step 4's "carries magic
// (placeholder) parameters not yet instantiated" gate: an `impl Trait`
// position (types.ErasedType) whose ivar.Store.ErasedAlias.CurrentType is
// still nil hasn't had its first occurrence pin it to a concrete type yet,
// so a trait-impl search against it would search against nothing real.
// Applied to the rule's own impl_ty/trait_params before find_trait_impls
// ever runs, rather than per-candidate, since an unpinned erased position
// makes the query itself unsearchable regardless of which impl might
// eventually match it.
func (s *Solver) hasUnpinnedErased(t types.Type) bool {
	switch tt := s.resolve(t).(type) {
	case *types.ErasedType:
		return s.Ivars.ErasedAlias(tt.AliasID).CurrentType == nil
	case *types.PathType:
		for _, a := range tt.Args {
			if s.hasUnpinnedErased(a) {
				return true
			}
		}
		return false
	case *types.TupleType:
		for _, e := range tt.Elems {
			if s.hasUnpinnedErased(e) {
				return true
			}
		}
		return false
	case *types.ArrayType:
		return s.hasUnpinnedErased(tt.Inner)
	case *types.SliceType:
		return s.hasUnpinnedErased(tt.Inner)
	case *types.BorrowType:
		return s.hasUnpinnedErased(tt.Inner)
	case *types.PointerType:
		return s.hasUnpinnedErased(tt.Inner)
	default:
		return false
	}
}
