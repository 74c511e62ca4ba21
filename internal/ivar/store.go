// Package ivar implements the inference-variable store: the single source
// of truth for the current best guess of every type/value ivar allocated
// during typecheck (spec.md §4.1). It is grounded on the teacher's
// type_system.Prune (alias-chain walk with path compression) and
// checker.Unify's bind step (internal/checker/unify.go), generalized from a
// single TypeVarType.Instance pointer field to a store-indexed array so
// ivars can be referenced by a plain int id from anywhere in the solver
// without holding a pointer to the InferType node that introduced them.
package ivar

import (
	"fmt"

	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/provenance"
	"github.com/gorustic/typeck/internal/types"
)

// typeSlot is either a free representative (Value != nil, AliasOf == -1) or
// an alias to another id (AliasOf >= 0, Value == nil).
type typeSlot struct {
	Value     types.Type
	AliasOf   int
	Class     types.InferClass
	Sized     bool     // observed in a Sized-demanding position (spec.md §4.1)
	SizedSpan hir.Span // where that demand was first observed
}

type constSlot struct {
	Value   types.ConstGeneric
	AliasOf int
}

// ErasedAlias is one `impl Trait` position's resolved identity, keyed by
// AliasID so repeated occurrences of the same erased-type position in a
// signature unify onto one concrete type (spec.md §4.1).
type ErasedAlias struct {
	Params      []types.Type
	CurrentType types.Type // nil until the first occurrence pins it
}

// Store is the IvarStore of spec.md §4.1.
type Store struct {
	types  []typeSlot
	consts []constSlot
	erased []ErasedAlias

	changed bool
}

func NewStore() *Store {
	return &Store{}
}

// NewTypeIvar allocates a fresh type ivar and returns the Infer type
// referencing it.
func (s *Store) NewTypeIvar(p provenance.Provenance, class types.InferClass) *types.InferType {
	id := len(s.types)
	s.types = append(s.types, typeSlot{AliasOf: -1, Class: class})
	return types.NewInferType(p, id, class)
}

// NewValueIvar allocates a fresh const-generic ivar.
func (s *Store) NewValueIvar(p provenance.Provenance) *types.InferConst {
	id := len(s.consts)
	s.consts = append(s.consts, constSlot{AliasOf: -1})
	return types.NewInferConst(p, id)
}

// NewErasedAlias registers a new `impl Trait` alias position.
func (s *Store) NewErasedAlias(params []types.Type) int {
	id := len(s.erased)
	s.erased = append(s.erased, ErasedAlias{Params: params})
	return id
}

func (s *Store) ErasedAlias(id int) *ErasedAlias { return &s.erased[id] }

// Count returns the number of type ivars allocated so far, so a caller that
// needs to sweep every one (the driver's possibility-tracker fallback ladder,
// spec.md §4.6/§4.7) can range over 0..Count() without this package exposing
// its slot slice directly.
func (s *Store) Count() int { return len(s.types) }

func (s *Store) root(id int) int {
	for s.types[id].AliasOf != -1 {
		id = s.types[id].AliasOf
	}
	return id
}

// Get resolves one level of an ivar: if the ivar at id has a representative
// value (after following any alias chain, with path compression), returns
// it; otherwise returns an Infer type for its (possibly path-compressed)
// root id.
func (s *Store) Get(id int) types.Type {
	root := s.root(id)
	// path compression: point every node on the chain directly at root.
	for cur := id; cur != root; {
		next := s.types[cur].AliasOf
		s.types[cur].AliasOf = root
		cur = next
	}
	slot := &s.types[root]
	if slot.Value != nil {
		return slot.Value
	}
	return types.NewInferType(nil, root, slot.Class)
}

// GetDeep resolves only the outermost ivar of t: it prunes t and, if the
// result is an Infer type, returns the store's current value for that ivar
// (or the Infer type of its root when unset). It does not resolve ivars
// nested inside that value, and a value that is itself another ivar is
// returned as is, without looking that ivar up in turn.
func (s *Store) GetDeep(t types.Type) types.Type {
	t = types.Prune(t)
	iv, ok := t.(*types.InferType)
	if !ok {
		return t
	}
	resolved := s.Get(iv.ID)
	if _, stillInfer := resolved.(*types.InferType); stillInfer {
		return resolved
	}
	return types.Prune(resolved)
}

// MarkSized records that the ivar at id was observed in a Sized-demanding
// position (spec.md §4.1 sized_flags), keeping the span of the first such
// observation for diagnostics.
func (s *Store) MarkSized(id int, span hir.Span) {
	root := s.root(id)
	if !s.types[root].Sized {
		s.types[root].SizedSpan = span
	}
	s.types[root].Sized = true
}

func (s *Store) IsSized(id int) bool { return s.types[s.root(id)].Sized }

// SizedIvar is one ivar a Sized-demanding position observed, for
// internal/apply to check against its resolved type once the driver
// finishes.
type SizedIvar struct {
	ID   int
	Span hir.Span
}

// SizedIvars returns every root ivar ever marked Sized.
func (s *Store) SizedIvars() []SizedIvar {
	var out []SizedIvar
	for id := range s.types {
		if s.types[id].AliasOf != -1 {
			continue
		}
		if s.types[id].Sized {
			out = append(out, SizedIvar{ID: id, Span: s.types[id].SizedSpan})
		}
	}
	return out
}

// Unify aliases the younger ivar to the older one when both sides are free,
// and a free side to the one that has a representative (spec.md §4.1
// "unify(a, b)"). It never compares structure: when both sides already have
// representatives it only records the alias. Nothing outside this package's
// tests calls Unify; the structural equates in internal/driver and
// internal/assoc pin ivars through Set instead.
func (s *Store) Unify(a, b int) {
	ra, rb := s.root(a), s.root(b)
	if ra == rb {
		return
	}
	// alias the younger (higher id, allocated later) to the older.
	older, younger := ra, rb
	if rb < ra {
		older, younger = rb, ra
	}
	sa, sb := &s.types[ra], &s.types[rb]
	switch {
	case sa.Value == nil && sb.Value == nil:
		s.types[younger].AliasOf = older
		// merge class constraints: the more restrictive class wins.
		if s.types[older].Class == types.InferClassNone {
			s.types[older].Class = s.types[younger].Class
		}
		if s.types[younger].Sized && !s.types[older].Sized {
			s.types[older].SizedSpan = s.types[younger].SizedSpan
		}
		s.types[older].Sized = s.types[older].Sized || s.types[younger].Sized
	case sa.Value != nil && sb.Value == nil:
		s.types[rb].AliasOf = ra
	case sa.Value == nil && sb.Value != nil:
		s.types[ra].AliasOf = rb
	default:
		// both already have representatives; Unify does not compare them, so
		// a caller must have checked structural equality itself before
		// calling Unify in this case. We still record the alias so later
		// Get() calls converge, matching the teacher's Unify which asserts
		// equality then returns without clobbering either representative.
		s.types[younger].AliasOf = older
	}
	s.MarkChanged()
}

// Set writes ty into the (free) slot at id. If ty transitively mentions id
// (an occurs-check cycle), Set leaves the slot unset and returns false. It
// does not break the cycle with a fresh ivar and an Associated rule, and
// neither do its callers: the equates in internal/driver and internal/assoc
// treat a false return as a failed equate.
func (s *Store) Set(id int, ty types.Type) (ok bool) {
	root := s.root(id)
	if s.types[root].Value != nil {
		panic(fmt.Sprintf("ivar: slot %d already set", root))
	}
	if types.ContainsIvar(ty, root) {
		return false
	}
	s.types[root].Value = ty
	s.MarkChanged()
	return true
}

// SetConst is Set's ConstGeneric analogue.
func (s *Store) SetConst(id int, v types.ConstGeneric) bool {
	root := s.rootConst(id)
	if s.consts[root].Value != nil {
		panic(fmt.Sprintf("ivar: const slot %d already set", root))
	}
	s.consts[root].Value = v
	s.MarkChanged()
	return true
}

func (s *Store) rootConst(id int) int {
	for s.consts[id].AliasOf != -1 {
		id = s.consts[id].AliasOf
	}
	return id
}

func (s *Store) GetConst(id int) types.ConstGeneric {
	root := s.rootConst(id)
	for cur := id; cur != root; {
		next := s.consts[cur].AliasOf
		s.consts[cur].AliasOf = root
		cur = next
	}
	slot := &s.consts[root]
	if slot.Value != nil {
		return slot.Value
	}
	return types.NewInferConst(nil, root)
}

func (s *Store) UnifyConst(a, b int) {
	ra, rb := s.rootConst(a), s.rootConst(b)
	if ra == rb {
		return
	}
	older, younger := ra, rb
	if rb < ra {
		older, younger = rb, ra
	}
	s.consts[younger].AliasOf = older
	s.MarkChanged()
}

// MarkChanged is called by every mutation; TakeChanged is polled once per
// driver pass and clears the flag (spec.md §4.1 "changed flag").
func (s *Store) MarkChanged() { s.changed = true }

func (s *Store) TakeChanged() bool {
	c := s.changed
	s.changed = false
	return c
}

// IsResolved reports whether the ivar at id currently has a concrete
// (non-Infer) representative.
func (s *Store) IsResolved(id int) bool {
	_, stillInfer := s.Get(id).(*types.InferType)
	return !stillInfer
}
