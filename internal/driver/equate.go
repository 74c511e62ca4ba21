package driver

import (
	"slices"

	"github.com/gorustic/typeck/internal/types"
)

// equate structurally pins whatever's left unresolved once check_coerce_tys
// has decided dst and src agree in shape (Equality/Custom/Unsize): any ivar
// still free anywhere inside either type gets set to the other side's
// matching piece. Same cascade as internal/assoc's own equate (itself
// grounded on types.Equals), kept as its own small copy here rather than
// exported from internal/assoc, since the two packages pin ivars for
// unrelated rule kinds and neither should import the other just for this.
func (d *Driver) equate(dst, src types.Type) bool {
	dst, src = d.Ivars.GetDeep(dst), d.Ivars.GetDeep(src)
	if types.Equals(dst, src) {
		return true
	}
	if di, ok := dst.(*types.InferType); ok {
		return d.Ivars.Set(di.ID, src)
	}
	if si, ok := src.(*types.InferType); ok {
		return d.Ivars.Set(si.ID, dst)
	}
	switch dt := dst.(type) {
	case *types.PathType:
		sv, ok := src.(*types.PathType)
		if !ok || !slices.Equal(dt.Path, sv.Path) || len(dt.Args) != len(sv.Args) {
			return false
		}
		for i := range dt.Args {
			if !d.equate(dt.Args[i], sv.Args[i]) {
				return false
			}
		}
		return true
	case *types.TupleType:
		sv, ok := src.(*types.TupleType)
		if !ok || len(dt.Elems) != len(sv.Elems) {
			return false
		}
		for i := range dt.Elems {
			if !d.equate(dt.Elems[i], sv.Elems[i]) {
				return false
			}
		}
		return true
	case *types.ArrayType:
		sv, ok := src.(*types.ArrayType)
		return ok && d.equate(dt.Inner, sv.Inner) && types.ConstEquals(dt.Size, sv.Size)
	case *types.SliceType:
		sv, ok := src.(*types.SliceType)
		return ok && d.equate(dt.Inner, sv.Inner)
	case *types.BorrowType:
		sv, ok := src.(*types.BorrowType)
		return ok && dt.Mutability == sv.Mutability && d.equate(dt.Inner, sv.Inner)
	case *types.PointerType:
		sv, ok := src.(*types.PointerType)
		return ok && dt.Mutability == sv.Mutability && d.equate(dt.Inner, sv.Inner)
	case *types.FunctionType:
		sv, ok := src.(*types.FunctionType)
		if !ok || dt.ABI != sv.ABI || dt.Unsafe != sv.Unsafe || len(dt.Args) != len(sv.Args) {
			return false
		}
		for i := range dt.Args {
			if !d.equate(dt.Args[i], sv.Args[i]) {
				return false
			}
		}
		return d.equate(dt.Ret, sv.Ret)
	default:
		return false
	}
}
