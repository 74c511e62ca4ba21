package revisit

import (
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// resolveCallMethod implements spec.md §4.3 "CallMethod": autoderef-based
// method search against the call site's in-scope traits (stashed on the
// node by internal/enumerate under the "inScopeTraits" cache key) plus
// inherent impls, pruned per spec.md's (a)-(c) tie-break order. Zero
// candidates is always a terminal NoSuchMethod (the receiver type is already
// concrete, so another pass can't change it); more than one candidate stays
// pending until isFallback, at which point tie-break (c) gets a chance to
// settle it and, failing that, it becomes a terminal AmbiguousMethod
// (spec.md §7's "in fallback, still multiple candidates").
func (rv *Resolver) resolveCallMethod(r rules.NodeRevisit, isFallback bool) bool {
	call := rv.Arena.Get(r.NodePtr).(*hir.CallMethodExpr)
	receiverTy := rv.currentType(call.Receiver)
	span := rv.Arena.Get(r.NodePtr).Span()

	if _, stillUnbound := receiverTy.(*types.InferType); stillUnbound {
		return false
	}

	var traits [][]string
	if cached, ok := call.Cache("inScopeTraits"); ok {
		traits, _ = cached.([][]string)
	}

	candidates := rv.Crate.AutoderefFindMethod(traits, receiverTy, call.Method)
	candidates = pruneMethodCandidates(candidates)

	if len(candidates) == 0 {
		rv.Errors = append(rv.Errors, diag.NewNoSuchMethod(receiverTy, call.Method, span))
		return true
	}
	if len(candidates) != 1 {
		if !isFallback {
			return false
		}
		candidates = pruneMethodCandidatesFallback(candidates)
		if len(candidates) != 1 {
			rv.Errors = append(rv.Errors, diag.NewAmbiguousMethod(receiverTy, call.Method, len(candidates), span))
			return true
		}
	}
	chosen := candidates[0]

	for i := 0; i < chosen.AutorefLevel; i++ {
		wrap(rv.Arena, call.Receiver, func(operand hir.NodeID) hir.Expr {
			return &hir.CoerceDerefExpr{Operand: operand}
		})
	}

	if len(chosen.Sig.Args) == len(call.Args) {
		for i, argID := range call.Args {
			rv.Rules.AddCoercion(chosen.Sig.Args[i], argID, rv.Arena.Get(argID).Span())
		}
	} else {
		rv.Errors = append(rv.Errors, diag.NewArityMismatch(len(chosen.Sig.Args), len(call.Args), span))
	}
	rv.Ivars.Set(r.ResultIvar, chosen.Sig.Ret)
	call.SetCache("methodPath", chosen.Path)
	return true
}

// pruneMethodCandidatesFallback applies tie-break (c), the step spec.md §4.3
// reserves for a fallback pass: prefer whichever surviving candidates were
// explicitly brought into scope by the current trait context, eliminating
// any reached only through a blanket/inherent search.
func pruneMethodCandidatesFallback(cands []collaborators.MethodCandidate) []collaborators.MethodCandidate {
	var inScope []collaborators.MethodCandidate
	for _, c := range cands {
		if c.ExplicitlyInScope {
			inScope = append(inScope, c)
		}
	}
	if len(inScope) == 0 {
		return cands
	}
	return inScope
}

// pruneMethodCandidates narrows a multi-candidate method search down per
// spec.md §4.3's tie-break steps (a) keep only the highest autoref level and
// (b) de-duplicate by trait path; step (c) only applies in fallback, so it
// lives in pruneMethodCandidatesFallback instead.
func pruneMethodCandidates(cands []collaborators.MethodCandidate) []collaborators.MethodCandidate {
	if len(cands) <= 1 {
		return cands
	}

	maxLevel := cands[0].AutorefLevel
	for _, c := range cands[1:] {
		if c.AutorefLevel > maxLevel {
			maxLevel = c.AutorefLevel
		}
	}
	var byLevel []collaborators.MethodCandidate
	for _, c := range cands {
		if c.AutorefLevel == maxLevel {
			byLevel = append(byLevel, c)
		}
	}
	if len(byLevel) <= 1 {
		return byLevel
	}

	seen := map[string]bool{}
	var deduped []collaborators.MethodCandidate
	for _, c := range byLevel {
		key := pathKey(c.Path)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, c)
	}
	return deduped
}

func pathKey(path []string) string {
	key := ""
	for _, p := range path {
		key += p + "::"
	}
	return key
}
