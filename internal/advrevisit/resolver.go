package advrevisit

import (
	"fmt"

	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/possibility"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// Resolver drives the AdvRevisit family of spec.md §3/§4.8: match ergonomics,
// split-tuple, slice-pattern shape resolution, and default-to-unit. Grounded
// on internal/revisit.Resolver's "snapshot every pending rule, ask the
// handler to commit or stay, remove what committed" driver shape, extended
// with the is_fallback flag spec.md §4.7's pseudo-loop threads through every
// AdvRevisit call (a plain rule pass with is_fallback=false, then one more
// forced pass with is_fallback=true once nothing else in the ladder moved).
type Resolver struct {
	Arena       *hir.Arena
	Ivars       *ivar.Store
	Rules       *rules.RuleSet
	Crate       collaborators.CrateInfo
	Possibility *possibility.Tracker
}

func NewResolver(arena *hir.Arena, ivars *ivar.Store, rs *rules.RuleSet, crate collaborators.CrateInfo, poss *possibility.Tracker) *Resolver {
	return &Resolver{Arena: arena, Ivars: ivars, Rules: rs, Crate: crate, Possibility: poss}
}

// RunPass tries every pending AdvRevisit once, removing the ones whose
// handler reports completion.
func (r *Resolver) RunPass(isFallback bool) (progressed bool) {
	var done []int
	r.Rules.EachAdvRevisit(func(a rules.AdvRevisit) bool {
		if r.resolveOne(a, isFallback) {
			done = append(done, a.Idx)
			progressed = true
		}
		return true
	})
	for _, idx := range done {
		r.Rules.RemoveAdvRevisit(idx)
	}
	return progressed
}

func (r *Resolver) resolve(t types.Type) types.Type {
	return r.Ivars.GetDeep(t)
}

func (r *Resolver) resolveOne(a rules.AdvRevisit, isFallback bool) bool {
	switch a.Kind {
	case rules.AdvMatchErgonomics:
		return r.resolveMatchErgonomics(a.Payload.(MatchErgonomicsPayload), isFallback)
	case rules.AdvSplitTuple:
		return r.resolveSplitTuple(a.Payload.(SplitTuplePayload), isFallback)
	case rules.AdvSlicePat:
		return r.resolveSlicePat(a.Payload.(SlicePatPayload), isFallback)
	case rules.AdvSplitSlicePat:
		return r.resolveSplitSlicePat(a.Payload.(SplitSlicePatPayload), isFallback)
	case rules.AdvDefaultUnit:
		return r.resolveDefaultUnit(a.Payload.(DefaultUnitPayload), isFallback)
	default:
		panic(fmt.Sprintf("advrevisit: unhandled kind %s", a.Kind))
	}
}

// expectedTypeOf recovers the type internal/enumerate stashed on pat's cache
// when it deferred that pattern's binding instead of distributing it eagerly.
func (r *Resolver) expectedTypeOf(pat hir.Pat) types.Type {
	v, ok := pat.Cache(ExpectedTypeCacheKey)
	if !ok {
		return nil
	}
	return v.(types.Type)
}
