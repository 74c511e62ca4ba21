// Package advrevisit resolves the AdvRevisit rules of spec.md §3/§4.8: match
// ergonomics, split-tuple, slice-pattern shape resolution, and the
// default-to-unit statement-result rule. This file only declares the
// kind-specific payload structs internal/enumerate attaches to each
// rules.AdvRevisit it queues; the resolvers that consume them live
// alongside it in this package.
package advrevisit

import "github.com/gorustic/typeck/internal/hir"

// ExpectedTypeCacheKey is the hir.Pat cache slot internal/enumerate stashes
// the scrutinee/declared type under whenever it defers a pattern's binding
// to one of this package's resolvers instead of distributing it eagerly
// (enumerate/pattern.go's bindTuplePat and the SlicePatNode case of
// bindPattern) — the payload structs below only name the pattern itself, so
// this is how a resolver recovers what it's meant to bind against.
const ExpectedTypeCacheKey = "expectedType"

// MatchErgonomicsPayload names the match expression whose arm patterns must
// be re-walked once the scrutinee's type is known, adjusting each binding's
// mode (by value vs. by reference) the way a `match &opt { Some(x) => .. }`
// implicitly binds x as `&T` (spec.md §4.8).
type MatchErgonomicsPayload struct {
	Match hir.NodeID
}

// SplitTuplePayload names a tuple pattern with a `..` rest marker, deferred
// until the scrutinee's element count is known so the rest can absorb the
// correct number of positions.
type SplitTuplePayload struct {
	Pattern hir.PatID
}

// SlicePatPayload names a fixed-shape slice pattern (no `..`) deferred until
// the scrutinee's element type is known.
type SlicePatPayload struct {
	Pattern hir.PatID
}

// SplitSlicePatPayload names a slice pattern with a `..rest` marker,
// deferred until the scrutinee's length (if statically known) can be split
// around the rest binding.
type SplitSlicePatPayload struct {
	Pattern hir.PatID
}

// DefaultUnitPayload names a statement-position expression whose result ivar
// should default to `()` if nothing else pins it by the time the driver
// runs the adv-revisit pass in fallback mode (spec.md §4.7).
type DefaultUnitPayload struct {
	Node hir.NodeID
}
