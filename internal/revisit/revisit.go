// Package revisit resolves the NodeRevisit rules internal/enumerate queues
// for Cast, Index, Deref, CallValue, CallMethod, Field, Emplace, and
// block-divergence nodes (spec.md §4.3). Each kind is tried once per driver
// pass; a handler either completes (the rule is removed) or leaves it
// pending for the next pass once more ivars have resolved.
//
// Grounded on internal/checker/member_access.go's MemberAccessKey sum
// (property vs. index access resolved against a structural type) for the
// general "per-node-kind resolver, called once per pass until it commits or
// stays pending" shape, and on original_source/src/hir_typeck/expr_cs__enum.cpp's
// per-node revisit functions (Node_CallMethod, Node_Index, Node_Deref,
// Node_Field, Node_Emplace, ...) for the actual autoderef-search algorithms
// each handler runs.
package revisit

import (
	"github.com/gorustic/typeck/internal/coerce"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// Resolver bundles the state every per-kind handler needs. Errors accumulates
// every diag.Error a handler raised on a rule it nonetheless reports as
// complete (spec.md §7: "reported immediately at the rule's span", not
// retried) — internal/driver surfaces Errors[0] the same way it already
// does for internal/assoc.Solver.Errors.
type Resolver struct {
	Arena  *hir.Arena
	Ivars  *ivar.Store
	Rules  *rules.RuleSet
	Crate  collaborators.CrateInfo
	Coerce *coerce.Kernel

	Errors []diag.Error
}

func NewResolver(arena *hir.Arena, ivars *ivar.Store, rs *rules.RuleSet, crate collaborators.CrateInfo) *Resolver {
	return &Resolver{
		Arena: arena, Ivars: ivars, Rules: rs, Crate: crate,
		Coerce: &coerce.Kernel{Ivars: ivars, Arena: arena, Crate: crate, Mutate: true},
	}
}

// RunPass tries every currently pending NodeRevisit once, removing each one
// whose handler reports completion. isFallback mirrors AdvRevisit.RunPass's
// flag (spec.md §4.7's pseudo-loop runs node revisits a second time with
// is_fallback=true once every other rung stalls): only CallMethod's
// tie-break rule (c), and the AmbiguousMethod report when it still leaves
// more than one candidate, wait for a fallback pass; the NoSuchField,
// NoSuchMethod and InvalidCast reports fire on whichever pass finds them. It
// returns whether any rule completed, the signal internal/driver uses
// alongside ivar.Store.TakeChanged to decide whether another pass is
// warranted.
func (rv *Resolver) RunPass(isFallback bool) (progressed bool) {
	var done []int
	rv.Rules.EachNodeRevisit(func(r rules.NodeRevisit) bool {
		if rv.resolveOne(r, isFallback) {
			done = append(done, r.Idx)
			progressed = true
		}
		return true
	})
	for _, idx := range done {
		rv.Rules.RemoveNodeRevisit(idx)
	}
	return progressed
}

func (rv *Resolver) resolveOne(r rules.NodeRevisit, isFallback bool) bool {
	switch r.Kind {
	case rules.RevisitCast:
		return rv.resolveCast(r, isFallback)
	case rules.RevisitIndex:
		return rv.resolveIndex(r)
	case rules.RevisitDeref:
		return rv.resolveDeref(r)
	case rules.RevisitCallValue:
		return rv.resolveCallValue(r)
	case rules.RevisitCallMethod:
		return rv.resolveCallMethod(r, isFallback)
	case rules.RevisitField:
		return rv.resolveField(r)
	case rules.RevisitEmplace:
		return rv.resolveEmplace(r)
	case rules.RevisitBlockDiverges:
		return rv.resolveBlockDiverges(r)
	default:
		return false
	}
}

// currentType resolves a node's own result type through the ivar store, the
// way every handler below needs to see "what this sub-expression actually
// turned out to be" rather than the raw (possibly still-Infer) type stamped
// on it at enumeration time.
func (rv *Resolver) currentType(id hir.NodeID) types.Type {
	return rv.Ivars.GetDeep(rv.Arena.Get(id).ResultType())
}

// wrap reseats node behind a freshly built wrapper, the same arena-reseat
// idiom coerce.Kernel.wrap uses to splice in a compiler-inserted node.
func wrap(arena *hir.Arena, id hir.NodeID, makeWrapper func(operand hir.NodeID) hir.Expr) {
	old := arena.Get(id)
	childID := arena.New(old)
	arena.Replace(id, makeWrapper(childID))
}

func autoderefChain(crate collaborators.CrateInfo, ty types.Type) []types.Type {
	chain := []types.Type{ty}
	cur := ty
	for {
		next, ok := crate.Autoderef(cur)
		if !ok {
			return chain
		}
		chain = append(chain, next)
		cur = next
	}
}
