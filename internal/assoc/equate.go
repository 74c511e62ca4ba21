package assoc

import (
	"slices"

	"github.com/gorustic/typeck/internal/types"
)

// equate performs the structural equate that ivar.Store.Unify does not
// (internal/coerce never writes to the store itself, so the plain "pin an
// unresolved ivar nested anywhere inside a structural type" case lives
// here, where spec.md §4.5 step 4's "equate impl_ty and trait parameters"
// actually needs it). Mirrors types.Equals's cascade exactly, except an unresolved
// ivar on either side is pinned rather than compared by ID.
func (s *Solver) equate(dst, src types.Type) bool {
	dst, src = s.resolve(dst), s.resolve(src)
	if types.Equals(dst, src) {
		return true
	}
	if di, ok := dst.(*types.InferType); ok {
		return s.Ivars.Set(di.ID, src)
	}
	if si, ok := src.(*types.InferType); ok {
		return s.Ivars.Set(si.ID, dst)
	}
	switch d := dst.(type) {
	case *types.PathType:
		sv, ok := src.(*types.PathType)
		if !ok || !slices.Equal(d.Path, sv.Path) || len(d.Args) != len(sv.Args) {
			return false
		}
		for i := range d.Args {
			if !s.equate(d.Args[i], sv.Args[i]) {
				return false
			}
		}
		return true
	case *types.TupleType:
		sv, ok := src.(*types.TupleType)
		if !ok || len(d.Elems) != len(sv.Elems) {
			return false
		}
		for i := range d.Elems {
			if !s.equate(d.Elems[i], sv.Elems[i]) {
				return false
			}
		}
		return true
	case *types.ArrayType:
		sv, ok := src.(*types.ArrayType)
		return ok && s.equate(d.Inner, sv.Inner) && types.ConstEquals(d.Size, sv.Size)
	case *types.SliceType:
		sv, ok := src.(*types.SliceType)
		return ok && s.equate(d.Inner, sv.Inner)
	case *types.BorrowType:
		sv, ok := src.(*types.BorrowType)
		return ok && d.Mutability == sv.Mutability && s.equate(d.Inner, sv.Inner)
	case *types.PointerType:
		sv, ok := src.(*types.PointerType)
		return ok && d.Mutability == sv.Mutability && s.equate(d.Inner, sv.Inner)
	case *types.FunctionType:
		sv, ok := src.(*types.FunctionType)
		if !ok || d.ABI != sv.ABI || d.Unsafe != sv.Unsafe || len(d.Args) != len(sv.Args) {
			return false
		}
		for i := range d.Args {
			if !s.equate(d.Args[i], sv.Args[i]) {
				return false
			}
		}
		return s.equate(d.Ret, sv.Ret)
	default:
		return false
	}
}
