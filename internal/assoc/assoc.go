// Package assoc implements the associated-type rule solver of spec.md §4.5:
// given an Associated rule `<impl_ty as Trait<trait_params>>::assoc_name ==
// result_ty` (or, when assoc_name == "", merely `impl_ty: Trait<trait_params>`),
// find the impl that satisfies it and equate the pieces it pins down.
//
// Grounded on internal/revisit.Resolver's "snapshot every pending rule, ask
// its handler to commit or stay pending, remove what committed" shape
// (internal/revisit/revisit.go's RunPass) for the per-pass driver loop, and
// on original_source/src/hir_typeck/expr_cs.cpp's Context::find_trait_impls
// callback plus Context::m_ivars.expand_associated_types for the algorithm
// itself. internal/enumerate/enumerate.go's enumerateBinOp/enumerateUniOp are
// the ground truth for exactly how an operator's Associated rule is shaped,
// consulted by the built-in-numeric short-circuit in operator.go.
package assoc

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/possibility"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// Error reports an Associated rule that could not be satisfied: zero
// candidate impls survived find_trait_impls and impl_ty was already fully
// concrete (spec.md §4.5 step 5). Diag carries the structured
// diag.NoApplicableImpl kind spec.md §7 mandates for this case; the Span/
// Trait/ImplTy fields stay for callers (tests, possibility recording) that
// want the raw pieces without unwrapping Diag.
type Error struct {
	Span   hir.Span
	Trait  []string
	ImplTy types.Type
	Diag   diag.Error
}

func (e *Error) Error() string {
	return e.Diag.Error()
}

func pathString(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "::"
		}
		s += p
	}
	return s
}

// Solver bundles the collaborators spec.md §4.5 needs: the ivar store (to
// resolve and equate), the crate's trait-impl database, the rule set (to
// re-emit where-clause bounds as fresh Associated rules), and the
// possibility tracker (to record candidates when more than one survives).
type Solver struct {
	Ivars       *ivar.Store
	Crate       collaborators.CrateInfo
	Rules       *rules.RuleSet
	Possibility *possibility.Tracker

	Errors []*Error
}

func NewSolver(ivars *ivar.Store, crate collaborators.CrateInfo, rs *rules.RuleSet, poss *possibility.Tracker) *Solver {
	return &Solver{Ivars: ivars, Crate: crate, Rules: rs, Possibility: poss}
}

// RunPass tries every currently pending Associated rule once, removing each
// one whose handler reports completion (including the terminal "raised an
// error" case of step 5, which removes the rule since retrying it can never
// do anything different). Mirrors internal/revisit.Resolver.RunPass.
func (s *Solver) RunPass() (progressed bool) {
	var done []int
	s.Rules.EachAssociated(func(a rules.Associated) bool {
		if s.resolveOne(a) {
			done = append(done, a.Idx)
			progressed = true
		}
		return true
	})
	for _, idx := range done {
		s.Rules.RemoveAssociated(idx)
	}
	return progressed
}

func (s *Solver) resolve(t types.Type) types.Type {
	return s.Ivars.GetDeep(t)
}

// resolveOne implements spec.md §4.5 steps 1-6 for a single rule.
func (s *Solver) resolveOne(a rules.Associated) bool {
	// the expand_associated_types pre-pass (spec.md §4.5 closing paragraph):
	// deep-resolve every ivar nested inside the rule's types, not just the
	// outermost one GetDeep handles, so a result pinned by an earlier rule
	// this same pass is visible before find_trait_impls runs.
	a.ImplTy = expandAssocTypes(s.Ivars, a.ImplTy)
	if a.ResultTy != nil {
		a.ResultTy = expandAssocTypes(s.Ivars, a.ResultTy)
	}
	expandedParams := make([]types.Type, len(a.TraitParams))
	for i, p := range a.TraitParams {
		expandedParams[i] = expandAssocTypes(s.Ivars, p)
	}
	a.TraitParams = expandedParams

	if s.tryBuiltinOperator(a) {
		return true
	}

	if s.hasUnpinnedErased(a.ImplTy) {
		return false
	}
	for _, p := range a.TraitParams {
		if s.hasUnpinnedErased(p) {
			return false
		}
	}

	var equalMatches, fuzzyMatches []collaborators.TraitImpl
	s.Crate.FindTraitImpls(a.Trait, a.TraitParams, a.ImplTy, func(impl collaborators.TraitImpl, verdict collaborators.MatchVerdict) bool {
		switch verdict {
		case collaborators.Equal:
			equalMatches = append(equalMatches, impl)
		case collaborators.Fuzzy:
			fuzzyMatches = append(fuzzyMatches, impl)
		}
		return true
	})

	// step 3: an exact (Equal) match is strictly more specific than any
	// blanket (Fuzzy) one, so it alone forms the surviving overlap group
	// whenever one exists; Fuzzy candidates only compete among themselves.
	candidates := equalMatches
	if len(candidates) == 0 {
		candidates = fuzzyMatches
	}

	switch len(candidates) {
	case 1:
		return s.resolveUniqueCandidate(a, candidates[0])
	case 0:
		return s.resolveNoCandidates(a)
	default:
		s.recordPossibilities(a, candidates)
		return false
	}
}

// resolveUniqueCandidate implements step 4: bind the impl's self-position
// generic (if its self type is a bare GenericType, the only shape
// collaborators.StaticCrateInfo ever reports Fuzzy for), equate impl_ty and
// every trait param against the impl's own (monomorphised) values, equate
// the looked-up assoc_name type against result_ty, and re-emit the impl's
// where-clauses as fresh Associated rules.
func (s *Solver) resolveUniqueCandidate(a rules.Associated, impl collaborators.TraitImpl) bool {
	subst := bindSelfGeneric(impl.ImplType, a.ImplTy)

	if !s.equate(a.ImplTy, substituteType(impl.ImplType, subst)) {
		return false
	}
	if len(a.TraitParams) != len(impl.TraitParams) {
		return false
	}
	for i := range a.TraitParams {
		if !s.equate(a.TraitParams[i], substituteType(impl.TraitParams[i], subst)) {
			return false
		}
	}

	if a.AssocName != "" {
		assocTy, ok := impl.AssocTypes[a.AssocName]
		if !ok {
			return false
		}
		if !s.equate(a.ResultTy, substituteType(assocTy, subst)) {
			return false
		}
	}

	for _, w := range impl.Where {
		s.Rules.AddAssociated(rules.Associated{
			Span:        a.Span,
			Trait:       w.Trait,
			TraitParams: substituteTypes(w.Params, subst),
			ImplTy:      substituteType(w.Ty, subst),
		})
	}
	return true
}

// resolveNoCandidates implements step 5.
func (s *Solver) resolveNoCandidates(a rules.Associated) bool {
	if isUnsizeTrait(a.Trait) {
		if len(a.TraitParams) == 1 {
			s.equate(a.ImplTy, a.TraitParams[0])
		}
		return true
	}
	if !s.isFullyConcrete(a.ImplTy) {
		return false
	}
	s.Errors = append(s.Errors, &Error{
		Span: a.Span, Trait: a.Trait, ImplTy: a.ImplTy,
		Diag: diag.NewNoApplicableImpl(a.Trait, a.ImplTy, a.Span),
	})
	return true
}

func isUnsizeTrait(trait []string) bool {
	return len(trait) > 0 && trait[len(trait)-1] == "Unsize"
}

// recordPossibilities implements step 6: each surviving candidate's
// trait-param / assoc-type values become a possibility on whichever ivar
// the rule's own corresponding position still carries.
func (s *Solver) recordPossibilities(a rules.Associated, candidates []collaborators.TraitImpl) {
	if s.Possibility == nil {
		return
	}
	for _, impl := range candidates {
		subst := bindSelfGeneric(impl.ImplType, a.ImplTy)
		for i, p := range a.TraitParams {
			if i >= len(impl.TraitParams) {
				break
			}
			if iv, ok := types.Prune(p).(*types.InferType); ok {
				s.Possibility.RecordBounded(iv.ID, substituteType(impl.TraitParams[i], subst))
			}
		}
		if a.AssocName != "" && a.ResultTy != nil {
			if iv, ok := types.Prune(a.ResultTy).(*types.InferType); ok {
				if assocTy, ok2 := impl.AssocTypes[a.AssocName]; ok2 {
					s.Possibility.RecordBounded(iv.ID, substituteType(assocTy, subst))
				}
			}
		}
	}
}

// isFullyConcrete reports whether t contains no unresolved ivar anywhere,
// deep-resolving through the store at every nested position (spec.md §4.5
// step 5's "impl type is fully concrete" gate on raising an error).
func (s *Solver) isFullyConcrete(t types.Type) bool {
	switch tt := s.resolve(t).(type) {
	case *types.InferType:
		return false
	case *types.PathType:
		for _, a := range tt.Args {
			if !s.isFullyConcrete(a) {
				return false
			}
		}
		return true
	case *types.TraitObjectType:
		for _, p := range tt.Params {
			if !s.isFullyConcrete(p) {
				return false
			}
		}
		return true
	case *types.ArrayType:
		return s.isFullyConcrete(tt.Inner)
	case *types.SliceType:
		return s.isFullyConcrete(tt.Inner)
	case *types.TupleType:
		for _, e := range tt.Elems {
			if !s.isFullyConcrete(e) {
				return false
			}
		}
		return true
	case *types.BorrowType:
		return s.isFullyConcrete(tt.Inner)
	case *types.PointerType:
		return s.isFullyConcrete(tt.Inner)
	case *types.FunctionType:
		for _, a := range tt.Args {
			if !s.isFullyConcrete(a) {
				return false
			}
		}
		return s.isFullyConcrete(tt.Ret)
	default:
		return true
	}
}
