package assoc

import (
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/types"
)

// AssocTypeExpander deep-resolves every ivar occurrence inside a type
// through the ivar store, not just the outermost one ivar.Store.GetDeep
// handles. This is spec.md §4.5's "expand_associated_types pre-pass":
// this codebase's type grammar has no dedicated `<T as Trait>::Item`
// projection variant (an associated type's value is just whatever its
// rule's result ivar got Set to), so the expansion that matters is making
// sure a nested ivar pinned by an earlier rule this same pass — including
// one a previous Associated rule resolved — is visible as its concrete
// value before the next rule's find_trait_impls search runs, rather than as
// the stale Infer placeholder it carried when first enumerated.
type AssocTypeExpander struct {
	types.DefaultTypeVisitor
	Ivars *ivar.Store
}

func (v AssocTypeExpander) ExitType(t types.Type) types.Type {
	if iv, ok := t.(*types.InferType); ok {
		resolved := v.Ivars.GetDeep(iv)
		if _, stillInfer := resolved.(*types.InferType); !stillInfer {
			return resolved
		}
	}
	return nil
}

func expandAssocTypes(ivars *ivar.Store, t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return t.Accept(AssocTypeExpander{Ivars: ivars})
}
