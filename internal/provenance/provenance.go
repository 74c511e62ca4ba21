// Package provenance tracks where a Type or rule came from: a HIR node, a
// pattern, or a type annotation, so diagnostics can point at a span without
// the type/ivar packages needing to import the HIR package directly.
package provenance

//sumtype:decl
type Provenance interface{ isProvenance() }

func (*NodeProvenance) isProvenance()    {}
func (*PatternProvenance) isProvenance() {}
func (*RuleProvenance) isProvenance()    {}

// NodeProvenance ties a type back to the HIR node whose result type it is.
// NodeID is an internal/hir.NodeID; kept as a plain int here to avoid an
// import cycle between internal/hir and internal/types.
type NodeProvenance struct {
	NodeID int
}

// PatternProvenance ties a type back to a pattern-binding slot.
type PatternProvenance struct {
	BindingSlot int
}

// RuleProvenance ties a type back to the rule that introduced it, for
// error messages that want to say "required by rule R12" the way the
// original's Coercion/Associated operator<< dumps do.
type RuleProvenance struct {
	RuleIdx int
}
