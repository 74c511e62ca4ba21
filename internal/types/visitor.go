package types

// TypeVisitor mirrors the teacher's type_system.TypeVisitor: EnterType may
// substitute a replacement before descending into children (returning nil
// leaves the node as-is), ExitType may substitute a replacement after
// children have been rebuilt.
type TypeVisitor interface {
	EnterType(t Type) Type
	ExitType(t Type) Type
}

// DefaultTypeVisitor is the identity visitor, for embedding in visitors
// that only care about a handful of node kinds (the teacher's
// TypeParamSubstitutionVisitor embeds nothing and implements both methods
// directly; ours embed this instead: AssocTypeExpander and the
// substitution visitor in internal/assoc, the substitution visitor in
// internal/enumerate, and the resolver in internal/apply).
type DefaultTypeVisitor struct{}

func (DefaultTypeVisitor) EnterType(t Type) Type { return nil }
func (DefaultTypeVisitor) ExitType(t Type) Type  { return nil }
