// Package possibility implements the possibility tracker and check_ivar_poss
// decision sequence of spec.md §4.6: per-ivar bookkeeping of candidate types
// gathered while rules are processed each pass, consulted when a full pass
// makes no other progress.
//
// Grounded on original_source/src/hir_typeck/expr_cs.cpp's
// Context::possible_equate_type_* family and Context::check_ivar_poss, which
// the teacher has no direct analogue for (its checker resolves structural
// types eagerly, never defers to a possibility pool); the Go shape here
// instead follows the teacher's general "collaborator struct holding several
// parallel maps, one accessor method per concern" idiom seen in
// checker.Scope, generalized from string-keyed maps to ivar-id-keyed ones.
package possibility

import (
	"github.com/gorustic/typeck/internal/coerce"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
	"github.com/tidwall/btree"
)

// FallbackMode is the fallback ladder of spec.md §4.6 step 6, tried in this
// exact order by the driver (spec.md §4.7; SPEC_FULL.md §9.2 item 3).
type FallbackMode int

const (
	FallbackNone FallbackMode = iota
	FallbackBackwards
	FallbackAssume
	FallbackIgnoreWeakDisable
	FallbackPickFirstBound
	FallbackFinalOption
)

func (m FallbackMode) String() string {
	switch m {
	case FallbackBackwards:
		return "Backwards"
	case FallbackAssume:
		return "Assume"
	case FallbackIgnoreWeakDisable:
		return "IgnoreWeakDisable"
	case FallbackPickFirstBound:
		return "PickFirstBound"
	case FallbackFinalOption:
		return "FinalOption"
	default:
		return "None"
	}
}

// coercePair is one (type, is_coerce) entry of spec.md §3's coerce_to/
// coerce_from lists; is_coerce distinguishes true coercions (pointer/fn/
// closure) from unsizings.
type coercePair struct {
	Ty       types.Type
	IsCoerce bool
}

// ivarState is the per-ivar record of spec.md §3 "Possibility tracker":
// {force_disable, force_no_to, force_no_from, coerce_to, coerce_from,
// defaults, has_bounded, bounds_include_self, bounded}.
type ivarState struct {
	forceDisable bool
	forceNoTo    bool
	forceNoFrom  bool

	coerceTo   []coercePair
	coerceFrom []coercePair

	defaults []types.Type // preserved across Clear (spec.md §3 "defaults preserved")

	hasBounded        bool
	boundsIncludeSelf bool
	// bounded is append-only and ordered by insertion; boundedSeen mirrors
	// its membership into a btree.Set keyed by the type's String() so
	// RecordBounded's duplicate check never reorders bounded itself
	// (SPEC_FULL.md §9.2 item 1).
	bounded     []types.Type
	boundedSeen btree.Set[string]
}

func newIvarState() *ivarState { return &ivarState{} }

// Tracker is the PossibilityTracker of spec.md §4.6.
type Tracker struct {
	ivars  map[int]*ivarState
	kernel *coerce.Kernel
}

func NewTracker(kernel *coerce.Kernel) *Tracker {
	return &Tracker{ivars: make(map[int]*ivarState), kernel: kernel}
}

func (t *Tracker) state(id int) *ivarState {
	s, ok := t.ivars[id]
	if !ok {
		s = newIvarState()
		t.ivars[id] = s
	}
	return s
}

// --- coerce.Recorder implementation: the coerce kernel calls these back
// whenever check_coerce_tys/check_unsize_tys finds both sides unresolved
// (spec.md §4.4 step 4) or a multi-candidate CoerceUnsized/Unsize search
// (step 5 / check_unsize_tys's Unsize-trait lookup).

func (t *Tracker) RecordCoerceTo(ivarID int, dst types.Type, isCoerce bool) {
	s := t.state(ivarID)
	s.coerceTo = append(s.coerceTo, coercePair{Ty: dst, IsCoerce: isCoerce})
}

func (t *Tracker) RecordCoerceFrom(ivarID int, src types.Type, isCoerce bool) {
	s := t.state(ivarID)
	s.coerceFrom = append(s.coerceFrom, coercePair{Ty: src, IsCoerce: isCoerce})
}

func (t *Tracker) RecordBounded(ivarID int, candidate types.Type) {
	s := t.state(ivarID)
	s.hasBounded = true
	key := candidate.String()
	if s.boundedSeen.Contains(key) {
		return
	}
	s.boundedSeen.Insert(key)
	s.bounded = append(s.bounded, candidate)
}

// MarkBoundsIncludeSelf records that the ivar itself was among the
// candidates a trait-impl search returned (spec.md §3
// "bounds_include_self").
func (t *Tracker) MarkBoundsIncludeSelf(ivarID int) {
	t.state(ivarID).boundsIncludeSelf = true
}

func (t *Tracker) ForceDisable(ivarID int)  { t.state(ivarID).forceDisable = true }
func (t *Tracker) ForceNoTo(ivarID int)     { t.state(ivarID).forceNoTo = true }
func (t *Tracker) ForceNoFrom(ivarID int)   { t.state(ivarID).forceNoFrom = true }
func (t *Tracker) IsDisabled(id int) bool   { return t.state(id).forceDisable }

// RegisterDefault records a generic-defaults candidate (spec.md §4.7
// "apply generic defaults registered from type-param defaults"); defaults
// survive Clear.
func (t *Tracker) RegisterDefault(ivarID int, ty types.Type) {
	s := t.state(ivarID)
	s.defaults = append(s.defaults, ty)
}

func (t *Tracker) Defaults(ivarID int) []types.Type { return t.state(ivarID).defaults }

// Clear resets every per-pass possibility record while preserving defaults
// (spec.md §3 "cleared at the end of each driver pass (defaults
// preserved)").
func (t *Tracker) Clear() {
	for id, s := range t.ivars {
		t.ivars[id] = &ivarState{defaults: s.defaults}
	}
}

// Decision is the outcome of CheckIvarPoss: either a concrete type to equate
// the ivar to, or "no progress" (resolved == false).
type Decision struct {
	Ty       types.Type
	Resolved bool
	Step     string // which decision step fired, for tracing
}

// CheckIvarPoss implements spec.md §4.6's check_ivar_poss for one ivar,
// trying each decision step in order under the given fallback mode.
func (t *Tracker) CheckIvarPoss(ivarID int, mode FallbackMode) Decision {
	s := t.state(ivarID)
	if s.forceDisable && mode < FallbackIgnoreWeakDisable {
		return Decision{}
	}

	ignoreWeak := mode >= FallbackIgnoreWeakDisable

	// 1. Coincidence: a type in both coerce_to and coerce_from.
	if d, ok := t.coincidence(s); ok {
		return d
	}

	// 2. Bounded intersection.
	if s.hasBounded && !s.boundsIncludeSelf {
		if d, ok := t.boundedIntersection(s); ok {
			return d
		}
	}

	// 3 + 4. Pointer-family ordering, then deref-subsumption pruning, over
	// the union of coerce_to/coerce_from candidates.
	survivors := t.prunedCandidates(s, ignoreWeak)

	// 5. Single survivor.
	if len(survivors) == 1 {
		return Decision{Ty: survivors[0], Resolved: true, Step: "single-survivor"}
	}

	// 6. Fallback modes, relaxing one safeguard class each.
	switch mode {
	case FallbackBackwards:
		if d, ok := t.fallbackBackwards(s); ok {
			return d
		}
	case FallbackAssume:
		if d, ok := t.fallbackAssume(survivors); ok {
			return d
		}
	case FallbackIgnoreWeakDisable:
		// already folded into the forceDisable/forceNoTo/forceNoFrom checks
		// above via ignoreWeak; re-run single-survivor with weak guards off.
		if len(survivors) == 1 {
			return Decision{Ty: survivors[0], Resolved: true, Step: "ignore-weak-disable"}
		}
	case FallbackPickFirstBound:
		if d, ok := t.fallbackPickFirstBound(s); ok {
			return d
		}
	case FallbackFinalOption:
		if d, ok := t.fallbackFinalOption(s, survivors); ok {
			return d
		}
	}

	return Decision{}
}

func (t *Tracker) coincidence(s *ivarState) (Decision, bool) {
	for _, to := range s.coerceTo {
		for _, from := range s.coerceFrom {
			if types.Equals(to.Ty, from.Ty) {
				return Decision{Ty: to.Ty, Resolved: true, Step: "coincidence"}, true
			}
		}
	}
	return Decision{}, false
}

// boundedIntersection implements step 2: find the unique bound that is
// still compatible with the ivar's own recorded coercion pairs, checked via
// a read-only (Mutate=false) virtual try of the coerce kernel. We scope
// "every pending rule and every recorded possibility" (spec.md §4.6 step 2)
// down to this ivar's own coerce_to/coerce_from pairs: the driver is the
// only place with a live RuleSet to check a bound against every other
// pending rule, and calls BoundedIntersectionAgainstRules (below) instead
// once it has one; this method is the self-contained fallback used when no
// RuleSet is available (e.g. unit tests of this package in isolation).
func (t *Tracker) boundedIntersection(s *ivarState) (Decision, bool) {
	var survivors []types.Type
	for _, cand := range s.bounded {
		if t.candidateSatisfiesPairs(cand, s) {
			survivors = append(survivors, cand)
		}
	}
	if len(survivors) == 1 {
		return Decision{Ty: survivors[0], Resolved: true, Step: "bounded-intersection"}, true
	}
	return Decision{}, false
}

// BoundedIntersectionAgainstRules is boundedIntersection's full form: dst
// candidates are virtually checked against every one of the supplied
// pending Coercion targets, not just this ivar's own coerce_to/coerce_from
// lists. The driver calls this once per pass with its live rule set.
func (t *Tracker) BoundedIntersectionAgainstRules(ivarID int, pendingTargets []types.Type) (Decision, bool) {
	s := t.state(ivarID)
	if !s.hasBounded || s.boundsIncludeSelf {
		return Decision{}, false
	}
	var survivors []types.Type
	for _, cand := range s.bounded {
		ok := t.candidateSatisfiesPairs(cand, s)
		for _, target := range pendingTargets {
			if ok {
				k := &coerce.Kernel{Ivars: t.kernel.Ivars, Crate: t.kernel.Crate, Mutate: false}
				r := k.CheckCoerceTypes(target, cand, hir.NoNode)
				if r == coerce.Fail {
					ok = false
					break
				}
			}
		}
		if ok {
			survivors = append(survivors, cand)
		}
	}
	if len(survivors) == 1 {
		return Decision{Ty: survivors[0], Resolved: true, Step: "bounded-intersection-rules"}, true
	}
	return Decision{}, false
}

func (t *Tracker) candidateSatisfiesPairs(cand types.Type, s *ivarState) bool {
	k := &coerce.Kernel{Ivars: t.kernel.Ivars, Crate: t.kernel.Crate, Mutate: false}
	for _, to := range s.coerceTo {
		if !t.virtualCheckOK(k.CheckCoerceTypes(to.Ty, cand, hir.NoNode), to.Ty, cand) {
			return false
		}
	}
	for _, from := range s.coerceFrom {
		if !t.virtualCheckOK(k.CheckCoerceTypes(cand, from.Ty, hir.NoNode), cand, from.Ty) {
			return false
		}
	}
	return true
}

// virtualCheckOK turns a coerce.Result into pass/fail for a virtual-try: a
// Fail verdict always fails; an Equality verdict between two types that are
// already both concrete and structurally different also fails, since
// nothing downstream will ever equate them (step 1 of check_coerce_tys would
// already have matched them if they were equal).
func (t *Tracker) virtualCheckOK(r coerce.Result, dst, src types.Type) bool {
	if r == coerce.Fail {
		return false
	}
	if r == coerce.Equality && t.isConcrete(dst) && t.isConcrete(src) && !types.Equals(dst, src) {
		return false
	}
	return true
}

func (t *Tracker) isConcrete(ty types.Type) bool {
	iv, ok := types.Prune(ty).(*types.InferType)
	if !ok {
		return true
	}
	_, stillInfer := t.kernel.Ivars.Get(iv.ID).(*types.InferType)
	return !stillInfer
}

// prunedCandidates implements steps 3 and 4: pointer-family ordering then
// deref-subsumption pruning over the union of coerce_to/coerce_from
// candidates (spec.md §4.6 "among coercion possibilities").
func (t *Tracker) prunedCandidates(s *ivarState, ignoreWeak bool) []types.Type {
	var all []types.Type
	if !s.forceNoTo || ignoreWeak {
		for _, to := range s.coerceTo {
			all = append(all, to.Ty)
		}
	}
	if !s.forceNoFrom || ignoreWeak {
		for _, from := range s.coerceFrom {
			all = append(all, from.Ty)
		}
	}
	all = dedupTypes(all)
	all = pointerFamilyOrder(all)
	all = t.pruneDerefSubsumed(all)
	return all
}

// pointerFamilyOrder implements step 3: among Borrow/Pointer candidates,
// keep only the maximal-ranked ones under the fixed partial order (Borrow >
// Pointer; Unique > Shared; sized inner > unsized inner). Non-pointer
// candidates pass through untouched since the order only applies "among
// coercion possibilities" that are themselves pointer-like.
func pointerFamilyOrder(cands []types.Type) []types.Type {
	type ranked struct {
		ty   types.Type
		rank [3]int
	}
	var pointerish []ranked
	var rest []types.Type
	for _, c := range cands {
		if r, ok := pointerRank(c); ok {
			pointerish = append(pointerish, ranked{ty: c, rank: r})
		} else {
			rest = append(rest, c)
		}
	}
	if len(pointerish) == 0 {
		return rest
	}
	best := pointerish[0].rank
	for _, p := range pointerish[1:] {
		if rankLess(best, p.rank) {
			best = p.rank
		}
	}
	for _, p := range pointerish {
		if p.rank == best {
			rest = append(rest, p.ty)
		}
	}
	return rest
}

func rankLess(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// pointerRank scores a Borrow/Pointer type: [category, mutability, sized].
// category: Borrow=1, Pointer=0. sized is left at 0 here (a full sizedness
// probe needs CrateInfo and a concrete inner, deferred to the driver's
// rule-aware bounded-intersection path); this still orders Borrow above
// Pointer and Unique above Shared exactly as spec.md §4.6 step 3 requires.
func pointerRank(t types.Type) ([3]int, bool) {
	switch v := t.(type) {
	case *types.BorrowType:
		return [3]int{1, int(v.Mutability), 0}, true
	case *types.PointerType:
		return [3]int{0, int(v.Mutability), 0}, true
	default:
		return [3]int{}, false
	}
}

// pruneDerefSubsumed implements step 4: if source A dereferences to source
// B already in the set, drop A.
func (t *Tracker) pruneDerefSubsumed(cands []types.Type) []types.Type {
	drop := make(map[int]bool)
	for i, a := range cands {
		cur := a
		for {
			next, ok := t.kernel.Crate.Autoderef(cur)
			if !ok {
				break
			}
			for j, b := range cands {
				if j != i && types.Equals(next, b) {
					drop[i] = true
				}
			}
			cur = next
		}
	}
	var out []types.Type
	for i, c := range cands {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

func dedupTypes(ts []types.Type) []types.Type {
	var out []types.Type
	for _, t := range ts {
		dup := false
		for _, o := range out {
			if types.Equals(t, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// fallbackBackwards: when the ivar has exactly one recorded coerce_to
// destination (and no conflicting coerce_from), pin it to that destination
// even without the step 1-5 corroboration (spec.md §4.6 step 6 "Backwards").
func (t *Tracker) fallbackBackwards(s *ivarState) (Decision, bool) {
	if len(s.coerceTo) == 1 && len(s.coerceFrom) == 0 {
		return Decision{Ty: s.coerceTo[0].Ty, Resolved: true, Step: "fallback-backwards"}, true
	}
	if len(s.coerceFrom) == 1 && len(s.coerceTo) == 0 {
		return Decision{Ty: s.coerceFrom[0].Ty, Resolved: true, Step: "fallback-backwards"}, true
	}
	return Decision{}, false
}

// fallbackAssume picks the most-permissive pointer type when all surviving
// options are compatible (spec.md §4.6 step 6 "Assume"): the maximal-rank
// pointer-family candidate, or the sole non-pointer survivor.
func (t *Tracker) fallbackAssume(survivors []types.Type) (Decision, bool) {
	if len(survivors) == 0 {
		return Decision{}, false
	}
	ranked := pointerFamilyOrder(survivors)
	if len(ranked) >= 1 {
		return Decision{Ty: ranked[0], Resolved: true, Step: "fallback-assume"}, true
	}
	return Decision{}, false
}

// fallbackPickFirstBound accepts the first bounded candidate, in insertion
// order, that passes the existing-rules check; if bounds_include_self and
// none cleanly pass, it still accepts the first candidate outright
// (SPEC_FULL.md §9.2 item 1).
func (t *Tracker) fallbackPickFirstBound(s *ivarState) (Decision, bool) {
	if !s.hasBounded || len(s.bounded) == 0 {
		return Decision{}, false
	}
	for _, cand := range s.bounded {
		if t.candidateSatisfiesPairs(cand, s) {
			return Decision{Ty: cand, Resolved: true, Step: "fallback-pick-first-bound"}, true
		}
	}
	if s.boundsIncludeSelf {
		return Decision{Ty: s.bounded[0], Resolved: true, Step: "fallback-pick-first-bound"}, true
	}
	return Decision{}, false
}

// fallbackFinalOption picks the first surviving coercion/bound even if
// ivars remain among the other possibilities (spec.md §4.6 step 6
// "FinalOption").
func (t *Tracker) fallbackFinalOption(s *ivarState, survivors []types.Type) (Decision, bool) {
	if len(survivors) > 0 {
		return Decision{Ty: survivors[0], Resolved: true, Step: "fallback-final-option"}, true
	}
	if len(s.coerceTo) > 0 {
		return Decision{Ty: s.coerceTo[0].Ty, Resolved: true, Step: "fallback-final-option"}, true
	}
	if len(s.coerceFrom) > 0 {
		return Decision{Ty: s.coerceFrom[0].Ty, Resolved: true, Step: "fallback-final-option"}, true
	}
	if len(s.bounded) > 0 {
		return Decision{Ty: s.bounded[0], Resolved: true, Step: "fallback-final-option"}, true
	}
	return Decision{}, false
}
