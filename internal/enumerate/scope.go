package enumerate

import "github.com/gorustic/typeck/internal/hir"

// loopFrame is one entry of the loop-label stack a `break` resolves
// against: which loop node it targets, and the ivar id that accumulates
// every break value's type (spec.md §4.2 "Loop").
type loopFrame struct {
	label      string
	node       hir.NodeID
	resultIvar int
}

// EnumScope is a parent-chained per-block scope, adapted from the teacher's
// checker.Scope{Parent, Namespace} idiom (internal/checker/scope.go):
// instead of a namespace it carries the two pieces of context spec.md §4.2
// requires survive across nested enumeration — the stack of loop labels a
// `break` can target, and any traits brought into scope locally on top of
// the module's top-level in-scope list.
type EnumScope struct {
	parent *EnumScope
	traits [][]string
	loop   *loopFrame
}

func NewEnumScope() *EnumScope { return &EnumScope{} }

// withLoop pushes a new loop frame, the way checker.Scope.WithNewScope
// pushes a new namespace frame.
func (s *EnumScope) withLoop(label string, node hir.NodeID, resultIvar int) *EnumScope {
	return &EnumScope{parent: s, loop: &loopFrame{label: label, node: node, resultIvar: resultIvar}}
}

// withTraits pushes a block-local set of additionally in-scope traits.
func (s *EnumScope) withTraits(traits [][]string) *EnumScope {
	if len(traits) == 0 {
		return s
	}
	return &EnumScope{parent: s, traits: traits}
}

// findLoop resolves a break's target: the innermost loop when label is
// empty, otherwise the nearest enclosing loop whose own label matches.
func (s *EnumScope) findLoop(label string) *loopFrame {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.loop != nil && (label == "" || cur.loop.label == label) {
			return cur.loop
		}
	}
	return nil
}

// localTraits collects every trait path brought into scope by an enclosing
// block, innermost first.
func (s *EnumScope) localTraits() [][]string {
	var out [][]string
	for cur := s; cur != nil; cur = cur.parent {
		out = append(out, cur.traits...)
	}
	return out
}
