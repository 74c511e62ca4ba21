// Package rules holds the four rule kinds of spec.md §3 "Rules" — Coercion
// (applied eagerly), Coercion/Associated/NodeRevisit/AdvRevisit deferred —
// and the RuleSet container that stores them. Grounded on
// original_source/src/hir_typeck/expr_cs.hpp's Context::Coercion/Associated
// structs and Context::Revisitor interface (the direct C++ origin of these
// four rule kinds), reimplemented as Go structs/a tagged sum instead of
// structs-with-friend-operator<< and a virtual-dispatch Revisitor base
// class, per spec.md §9's "tagged sum instead of heap closures" note.
package rules

import (
	"fmt"

	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
	"github.com/tidwall/btree"
)

// Coercion requires the expression at NodePtr to yield a type coercible to
// TargetType; resolving it may rewrite the node (spec.md §3 "Coercion").
type Coercion struct {
	Idx        int
	TargetType types.Type
	NodePtr    hir.NodeID
	Span       hir.Span
}

func (c Coercion) String() string {
	return fmt.Sprintf("R%d: coerce node#%d -> %s", c.Idx, c.NodePtr, c.TargetType)
}

// Associated asserts <ImplTy as Trait<TraitParams>>::AssocName == ResultTy,
// or, when AssocName == "", merely that ImplTy: Trait<TraitParams>
// (spec.md §3 "Associated").
type Associated struct {
	Idx         int
	Span        hir.Span
	ResultTy    types.Type // nil when AssocName == ""
	Trait       []string
	TraitParams []types.Type
	ImplTy      types.Type
	AssocName   string
	IsOperator  bool
}

func (a Associated) String() string {
	if a.AssocName == "" {
		return fmt.Sprintf("R%d: req %s impl %s", a.Idx, a.ImplTy, a.Trait)
	}
	return fmt.Sprintf("R%d: <%s as %s>::%s == %s", a.Idx, a.ImplTy, a.Trait, a.AssocName, a.ResultTy)
}

// NodeRevisitKind tags which per-node revisit algorithm applies (spec.md
// §4.3 plus the Emplace supplement of SPEC_FULL.md §9.1.1).
type NodeRevisitKind int

const (
	RevisitCast NodeRevisitKind = iota
	RevisitIndex
	RevisitDeref
	RevisitCallValue
	RevisitCallMethod
	RevisitField
	RevisitEmplace
	RevisitBlockDiverges
)

func (k NodeRevisitKind) String() string {
	switch k {
	case RevisitCast:
		return "Cast"
	case RevisitIndex:
		return "Index"
	case RevisitDeref:
		return "Deref"
	case RevisitCallValue:
		return "CallValue"
	case RevisitCallMethod:
		return "CallMethod"
	case RevisitField:
		return "Field"
	case RevisitEmplace:
		return "Emplace"
	case RevisitBlockDiverges:
		return "BlockDiverges"
	default:
		return "?"
	}
}

// NodeRevisit is a pointer to a HIR node whose final type depends on
// information not yet available (spec.md §3 "NodeRevisit").
type NodeRevisit struct {
	Idx     int
	Kind    NodeRevisitKind
	NodePtr hir.NodeID
	// ResultIvar is the ivar id the revisit must eventually resolve, used by
	// Index/Deref/CallValue/CallMethod/Field to equate their Output/Target
	// associated type once found.
	ResultIvar int
}

func (r NodeRevisit) String() string {
	return fmt.Sprintf("R%d: revisit(%s) node#%d", r.Idx, r.Kind, r.NodePtr)
}

// AdvRevisitKind tags the advanced-revisit closures of spec.md §3
// "AdvRevisit" (match ergonomics, split-tuple, slice-pattern shape
// resolution, default-to-unit of statement results).
type AdvRevisitKind int

const (
	AdvMatchErgonomics AdvRevisitKind = iota
	AdvSplitTuple
	AdvSlicePat
	AdvSplitSlicePat
	AdvDefaultUnit
)

func (k AdvRevisitKind) String() string {
	switch k {
	case AdvMatchErgonomics:
		return "MatchErgonomics"
	case AdvSplitTuple:
		return "SplitTuple"
	case AdvSlicePat:
		return "SlicePat"
	case AdvSplitSlicePat:
		return "SplitSlicePat"
	case AdvDefaultUnit:
		return "DefaultUnit"
	default:
		return "?"
	}
}

// AdvRevisit is an opaque closure-like rule: a kind tag plus the payload its
// handler in internal/advrevisit needs. Payload is kept as `any` (populated
// with a kind-specific struct from internal/advrevisit) rather than growing
// one field per kind here, matching spec.md §9's "tagged sum rather than
// heap closures" note while still letting each kind carry its own shape.
type AdvRevisit struct {
	Idx     int
	Kind    AdvRevisitKind
	Span    hir.Span
	Payload any
}

func (r AdvRevisit) String() string {
	return fmt.Sprintf("R%d: adv-revisit(%s)", r.Idx, r.Kind)
}

// RuleSet holds all four rule kinds, each in an ordered map keyed by rule
// index so iteration order is deterministic and insertion order is
// preserved (spec.md §5 "ordering guarantees ... correctness requirement";
// SPEC_FULL.md §9.2 item 1 on insertion-order preservation).
type RuleSet struct {
	nextIdx int

	coercions   btree.Map[int, Coercion]
	associated  btree.Map[int, Associated]
	nodeRevisit btree.Map[int, NodeRevisit]
	advRevisit  btree.Map[int, AdvRevisit]
}

func NewRuleSet() *RuleSet { return &RuleSet{} }

func (rs *RuleSet) nextID() int {
	id := rs.nextIdx
	rs.nextIdx++
	return id
}

func (rs *RuleSet) AddCoercion(target types.Type, node hir.NodeID, span hir.Span) int {
	idx := rs.nextID()
	rs.coercions.Set(idx, Coercion{Idx: idx, TargetType: target, NodePtr: node, Span: span})
	return idx
}

func (rs *RuleSet) AddAssociated(a Associated) int {
	a.Idx = rs.nextID()
	rs.associated.Set(a.Idx, a)
	return a.Idx
}

func (rs *RuleSet) AddNodeRevisit(kind NodeRevisitKind, node hir.NodeID, resultIvar int) int {
	idx := rs.nextID()
	rs.nodeRevisit.Set(idx, NodeRevisit{Idx: idx, Kind: kind, NodePtr: node, ResultIvar: resultIvar})
	return idx
}

func (rs *RuleSet) AddAdvRevisit(kind AdvRevisitKind, span hir.Span, payload any) int {
	idx := rs.nextID()
	rs.advRevisit.Set(idx, AdvRevisit{Idx: idx, Kind: kind, Span: span, Payload: payload})
	return idx
}

func (rs *RuleSet) RemoveCoercion(idx int)    { rs.coercions.Delete(idx) }
func (rs *RuleSet) RemoveAssociated(idx int)  { rs.associated.Delete(idx) }
func (rs *RuleSet) RemoveNodeRevisit(idx int) { rs.nodeRevisit.Delete(idx) }
func (rs *RuleSet) RemoveAdvRevisit(idx int)  { rs.advRevisit.Delete(idx) }

// snapshotValues walks an ordered btree.Map in ascending key order and
// copies out its values. Each* below snapshots before calling f so a
// handler is free to remove the current (or any other) rule from the set
// mid-iteration, the way the driver does every pass.
func snapshotValues[V any](m *btree.Map[int, V]) []V {
	values := make([]V, 0, m.Len())
	iter := m.Iter()
	for ok := iter.First(); ok; ok = iter.Next() {
		values = append(values, iter.Value())
	}
	return values
}

// Each Each* method iterates in ascending rule-index order (insertion
// order, since indexes are assigned monotonically), which is what makes
// per-pass processing order deterministic (spec.md §5).
func (rs *RuleSet) EachCoercion(f func(Coercion) bool) {
	for _, c := range snapshotValues(&rs.coercions) {
		if !f(c) {
			return
		}
	}
}
func (rs *RuleSet) EachAssociated(f func(Associated) bool) {
	for _, a := range snapshotValues(&rs.associated) {
		if !f(a) {
			return
		}
	}
}
func (rs *RuleSet) EachNodeRevisit(f func(NodeRevisit) bool) {
	for _, r := range snapshotValues(&rs.nodeRevisit) {
		if !f(r) {
			return
		}
	}
}
func (rs *RuleSet) EachAdvRevisit(f func(AdvRevisit) bool) {
	for _, r := range snapshotValues(&rs.advRevisit) {
		if !f(r) {
			return
		}
	}
}

func (rs *RuleSet) Len() int {
	return rs.coercions.Len() + rs.associated.Len() + rs.nodeRevisit.Len() + rs.advRevisit.Len()
}

func (rs *RuleSet) IsEmpty() bool { return rs.Len() == 0 }
