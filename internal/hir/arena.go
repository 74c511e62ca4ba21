// Package hir is the arena-owned High-level Intermediate Representation the
// solver operates on. Per the "re-architecture" design note in spec.md §9,
// the teacher's pointer-linked ast.Expr tree is replaced here by an arena of
// nodes addressed by index (NodeID); inserting a compiler coercion becomes
// "allocate a new node, reseat the parent's child index", never a raw
// pointer mutation. Node-kind representation itself (a closed sum-type
// interface with per-kind marker methods) keeps the teacher's internal/ast
// idiom; node kinds are dispatched by type switch, not via an Accept method.
package hir

import (
	"fmt"

	"github.com/gorustic/typeck/internal/types"
)

// NodeID indexes into an Arena. The zero value is never a valid node (arenas
// start allocation at 1) so a zero NodeID can double as "absent" in optional
// child fields without a separate pointer/bool pair.
type NodeID int

const NoNode NodeID = 0

// Arena owns every Expr in one function body's HIR tree plus the flat
// pattern-binding vector described in spec.md §3 ("Bindings").
type Arena struct {
	nodes    []Expr
	pats     []Pat
	bindings []Binding
}

// Binding is one pattern-binding slot: {name, type}, filled during pattern
// handling and read back by the applier (spec.md §3 "Bindings").
type Binding struct {
	Name string
	Type types.Type
}

func NewArena() *Arena {
	// index 0 is reserved as NoNode/NoPat; push placeholders so real entries start at 1.
	return &Arena{nodes: []Expr{nil}, pats: []Pat{nil}}
}

// NewPat allocates a fresh pattern node and returns its PatID.
func (a *Arena) NewPat(p Pat) PatID {
	a.pats = append(a.pats, p)
	return PatID(len(a.pats) - 1)
}

// GetPat returns the pattern stored at id.
func (a *Arena) GetPat(id PatID) Pat {
	if id == NoPat || int(id) >= len(a.pats) {
		panic(fmt.Sprintf("hir: invalid PatID %d", id))
	}
	return a.pats[id]
}

// New allocates a fresh node and returns its NodeID.
func (a *Arena) New(e Expr) NodeID {
	a.nodes = append(a.nodes, e)
	return NodeID(len(a.nodes) - 1)
}

// Get returns the node currently stored at id. Panics on an out-of-range or
// NoNode id — every caller in this module is expected to hold a valid id
// obtained from New/a child field, matching the teacher's "pointers are
// always valid once constructed" invariant.
func (a *Arena) Get(id NodeID) Expr {
	if id == NoNode || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("hir: invalid NodeID %d", id))
	}
	return a.nodes[id]
}

// Replace reseats the node at id to newNode and returns the node that was
// there before, so the caller can fold it in as newNode's child (this is
// exactly how the coerce kernel installs a Deref/Borrow/Cast/Unsize wrapper
// around an existing subtree — spec.md §4.4/§9).
func (a *Arena) Replace(id NodeID, newNode Expr) Expr {
	old := a.nodes[id]
	a.nodes[id] = newNode
	return old
}

// NewBindingSlot appends a new (as yet untyped) binding slot and returns its
// index, to be filled in by SetBindingType once the pattern's sub-type is
// known.
func (a *Arena) NewBindingSlot(name string) int {
	a.bindings = append(a.bindings, Binding{Name: name})
	return len(a.bindings) - 1
}

func (a *Arena) Bindings() []Binding { return a.bindings }

// NodeCount returns one past the highest NodeID ever allocated, so a caller
// that needs to sweep every node (the applier's writeback walk) can range
// over 1..NodeCount() without this package exposing its node slice directly,
// the same reason ivar.Store exposes Count for the driver's possibility
// sweep.
func (a *Arena) NodeCount() int { return len(a.nodes) }

func (a *Arena) Binding(slot int) Binding { return a.bindings[slot] }

// SetBindingType fills in a previously-allocated binding slot's type. Called
// repeatedly as pattern handling refines the guess and once more, finally,
// by the applier.
func (a *Arena) SetBindingType(slot int, t types.Type) {
	a.bindings[slot].Type = t
}
