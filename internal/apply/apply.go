// Package apply is the writeback visitor of spec.md §2's sixth and final
// data-flow step: once internal/driver reaches a fixed point, this package
// walks the HIR arena one more time, resolves every ivar the solver ever
// allocated down to its final concrete value, and asserts none remain
// (spec.md §8's "every ExprNode.m_res_type is ivar-free" and "every pattern
// binding is ivar-free" invariants). A node or binding still carrying a free
// ivar after the driver returned success is itself a bug surfaced here as
// diag.UnresolvedInference, not silently tolerated.
//
// Grounded on the teacher's internal/checker/infer_module.go finalize pass:
// walk every declaration once inference for it finishes, assert its result
// is fully resolved, and write the resolved value back into long-lived
// storage other passes will read from afterward.
package apply

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/types"
)

// Applier owns the arena/ivar-store pair the driver already resolved; Run
// mutates the arena in place.
type Applier struct {
	Arena *hir.Arena
	Ivars *ivar.Store
	Crate collaborators.CrateInfo

	Errors []diag.Error
}

func New(arena *hir.Arena, ivars *ivar.Store, crate collaborators.CrateInfo) *Applier {
	return &Applier{Arena: arena, Ivars: ivars, Crate: crate}
}

// Run walks every node the arena has ever allocated plus every pattern
// binding slot, replacing each one's type with its fully-resolved form and
// recording an UnresolvedInference error for any that still contain a free
// ivar. It is idempotent: a node/binding already holding a concrete,
// ivar-free type resolves to itself unchanged, so calling Run again after a
// successful run produces the same tree and no new errors (spec.md §8).
func (a *Applier) Run() []diag.Error {
	a.Errors = nil
	for id := 1; id < a.Arena.NodeCount(); id++ {
		node := a.Arena.Get(hir.NodeID(id))
		resolved, ok := a.resolve(node.ResultType())
		node.SetResultType(resolved)
		if !ok {
			a.Errors = append(a.Errors, diag.NewUnresolvedInference(node.Span()))
		}
	}

	for slot, b := range a.Arena.Bindings() {
		resolved, ok := a.resolve(b.Type)
		a.Arena.SetBindingType(slot, resolved)
		if !ok {
			a.Errors = append(a.Errors, diag.NewUnresolvedInference(hir.NoSpan))
		}
	}

	a.checkSized()

	return a.Errors
}

// checkSized reports diag.UnsizedWhereSized for every ivar a Sized-demanding
// position flagged (spec.md §4.1 sized_flags) that nonetheless resolved to a
// type internal/collaborators.CrateInfo.TypeIsSized reports as unsized (a
// bare slice, str, or trait object with no indirection around it). An ivar
// still unresolved at this point already has its own UnresolvedInference
// above, so it is skipped here rather than double-reported.
func (a *Applier) checkSized() {
	if a.Crate == nil {
		return
	}
	for _, sv := range a.Ivars.SizedIvars() {
		rootTy := a.Ivars.Get(sv.ID)
		if _, stillInfer := rootTy.(*types.InferType); stillInfer {
			continue
		}
		resolved, ok := a.resolve(rootTy)
		if !ok {
			continue
		}
		if a.Crate.TypeIsSized(resolved) == collaborators.Unequal {
			a.Errors = append(a.Errors, diag.NewUnsizedWhereSized(resolved, sv.Span))
		}
	}
}

// resolve deep-resolves every ivar occurrence inside t and reports whether
// the result is entirely ivar-free. A nil type (a binding slot nothing ever
// wrote to, or a node kind enumerate never assigns a result type to) counts
// as already resolved; there is nothing to write back or complain about.
func (a *Applier) resolve(t types.Type) (types.Type, bool) {
	if t == nil {
		return nil, true
	}
	v := &resolver{ivars: a.Ivars}
	out := t.Accept(v)
	return out, !v.unresolved
}

// resolver is the deep-resolution visitor: the same shape as
// internal/assoc's AssocTypeExpander (ExitType replaces a resolved ivar
// occurrence with its concrete value, post-order so children are already
// resolved by the time a composite node's own ExitType runs), plus an
// unresolved flag AssocTypeExpander has no need for since its caller never
// needs to distinguish "fully expanded" from "still has holes" the way the
// applier must.
type resolver struct {
	types.DefaultTypeVisitor
	ivars      *ivar.Store
	unresolved bool
}

func (v *resolver) ExitType(t types.Type) types.Type {
	iv, ok := t.(*types.InferType)
	if !ok {
		return nil
	}
	deep := v.ivars.GetDeep(iv)
	if _, stillInfer := deep.(*types.InferType); stillInfer {
		v.unresolved = true
		return nil
	}
	// deep came from a slot the store filled in independently of this walk
	// (internal/driver's equate pins an ivar to a whole subtree in one
	// Ivars.Set call), so it may itself still carry unresolved ivars nested
	// inside it that post-order traversal of the original t never visited.
	// Re-running it through Accept with the same visitor reaches those too.
	return deep.Accept(v)
}
