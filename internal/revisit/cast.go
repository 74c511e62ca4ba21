package revisit

import (
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveCast implements spec.md §4.3 "Cast": primitive<->primitive and
// pointer-family casts are allowed once both sides are known, but only along
// the sub-rules spec.md §4.3 lists (castAllowed); an unbound integer-class
// source ivar casting to a raw pointer is pinned to usize first (the only
// case a cast can itself narrow an ivar, rather than merely validate one
// already narrowed elsewhere), then checked the same as any other cast.
// isFallback is unused here: once the operand type is concrete, cast
// legality is deterministic and won't change on a later pass.
func (rv *Resolver) resolveCast(r rules.NodeRevisit, isFallback bool) bool {
	cast := rv.Arena.Get(r.NodePtr).(*hir.CastExpr)
	srcTy := rv.currentType(cast.Operand)

	iv, srcIsIvar := srcTy.(*types.InferType)
	if srcIsIvar && iv.Class == types.InferClassNone {
		return false
	}

	if _, dstIsPtr := cast.TargetType.(*types.PointerType); dstIsPtr {
		if srcIsIvar && iv.Class == types.InferClassInteger {
			rv.Ivars.Set(iv.ID, types.NewPrimitiveType(nil, types.PrimUSize))
			srcTy = rv.currentType(cast.Operand)
		}
	}

	if !castAllowed(cast.TargetType, srcTy) {
		rv.Errors = append(rv.Errors, diag.NewInvalidCast(srcTy, cast.TargetType, rv.Arena.Get(r.NodePtr).Span()))
	}

	return true
}

// castAllowed implements spec.md §4.3's Cast legality sub-rules:
// primitive<->primitive, &T->*T with strength reduction, *T->*U unconstrained,
// and fn/closure->pointer. Closure->fn capture-nothing legality is "checked
// later" per spec.md and is out of scope here.
func castAllowed(dst, src types.Type) bool {
	if sp, ok := src.(*types.PrimitiveType); ok {
		dp, ok := dst.(*types.PrimitiveType)
		if !ok {
			return false
		}
		return primCastAllowed(dp.Kind, sp.Kind)
	}
	switch s := src.(type) {
	case *types.BorrowType:
		dp, ok := dst.(*types.PointerType)
		if !ok {
			return false
		}
		return s.Mutability.AtLeast(dp.Mutability)
	case *types.PointerType:
		_, ok := dst.(*types.PointerType)
		return ok
	case *types.FunctionType, *types.NamedFunctionType, *types.ClosureType:
		_, ok := dst.(*types.PointerType)
		return ok
	default:
		return false
	}
}

// primCastAllowed implements the primitive<->primitive sub-rules: bool only
// casts to an integer, char only to/from u8 (or any integer, char->int
// direction), and otherwise any integer/float casts to any integer/float.
func primCastAllowed(dst, src types.PrimKind) bool {
	switch src {
	case types.PrimBool:
		return dst.IsInteger()
	case types.PrimChar:
		return dst == types.PrimU8 || dst.IsInteger()
	default:
		if !src.IsInteger() && !src.IsFloat() {
			return false
		}
		if dst == types.PrimChar {
			return src == types.PrimU8
		}
		return dst.IsInteger() || dst.IsFloat()
	}
}
