package hir

import "github.com/gorustic/typeck/internal/types"

// PatID indexes into the same kind of arena storage as NodeID but for
// patterns, kept as a distinct type so a pattern can never be passed where
// an expression NodeID is expected and vice versa.
type PatID int

const NoPat PatID = 0

//sumtype:decl
type Pat interface {
	isPat()
	PatSpan() Span
	// Cache/SetCache hold a per-pattern memo (implicit deref count,
	// split-tuple/split-slice absorption counts — spec.md §6), the same
	// string-keyed idiom Node.Cache uses for expressions.
	Cache(key string) (any, bool)
	SetCache(key string, v any)
}

func (*IdentPatNode) isPat()        {}
func (*WildcardPatNode) isPat()     {}
func (*LitPatNode) isPat()          {}
func (*RefPatNode) isPat()          {}
func (*TuplePatNode) isPat()        {}
func (*SlicePatNode) isPat()        {}
func (*StructPatNode) isPat()       {}
func (*TupleVariantPatNode) isPat() {}
func (*PathPatNode) isPat()         {}

type patBase struct {
	span   Span
	caches map[string]any
}

func (p patBase) PatSpan() Span { return p.span }

func (p *patBase) Cache(key string) (any, bool) {
	if p.caches == nil {
		return nil, false
	}
	v, ok := p.caches[key]
	return v, ok
}

func (p *patBase) SetCache(key string, v any) {
	if p.caches == nil {
		p.caches = make(map[string]any)
	}
	p.caches[key] = v
}

// IdentPatNode binds the matched value (or, under match ergonomics, a
// reference to it — spec.md §4.8) to a new binding slot.
type IdentPatNode struct {
	patBase
	BindingSlot int
	Sub         PatID // NoPat, unless this is an `ident @ sub-pattern` binding
}

type WildcardPatNode struct{ patBase }

type LitPatNode struct {
	patBase
	Lit Lit
}

// RefPatNode is an explicit `&pat` / `&mut pat` pattern, as opposed to the
// implicit dereferencing that match ergonomics performs automatically.
type RefPatNode struct {
	patBase
	Mutability types.Mutability
	Inner      PatID
}

type TuplePatNode struct {
	patBase
	Elems []PatID
	// RestIndex is the position of a `..` rest marker, or -1 if absent
	// (SPEC_FULL.md §4.9/"SplitTuple" advanced revisit).
	RestIndex int
}

type SlicePatNode struct {
	patBase
	Before    []PatID
	RestSlot  int // binding slot for `..rest`, or -1 if no rest pattern
	HasRest   bool
	After     []PatID
}

type StructFieldPat struct {
	Name string
	Pat  PatID
}

type StructPatNode struct {
	patBase
	Path   []string
	Fields []StructFieldPat
	HasDotDot bool // `Struct { a, .. }`
}

type TupleVariantPatNode struct {
	patBase
	Path  []string
	Elems []PatID
}

// PathPatNode matches a unit struct/enum variant or a named constant by
// path, with no sub-patterns.
type PathPatNode struct {
	patBase
	Path []string
}
