// Package collaborators defines the five interfaces the solver consumes
// instead of owning its own trait-impl database, autoderef table, or method
// resolver (spec.md §1/§6). It is grounded on the teacher's
// internal/checker.PackageRegistry — a simple in-memory registry a real
// toolchain embedder would back with a module resolver — generalized from
// "map[string]*Namespace" to the five lookup shapes spec.md §6 names.
//
// original_source/src/hir_typeck/expr_cs.hpp and expr_cs__enum.cpp call these
// as free functions taking a Context&; SPEC_FULL.md §4.9 abstracts them into
// named Go interfaces so the driver and its sub-solvers depend on behaviour,
// not on a concrete database implementation.
package collaborators

import (
	"github.com/gorustic/typeck/internal/types"
)

// MatchVerdict is the outcome of comparing a candidate impl's self type
// against the type being solved for (spec.md §4.5 step 2: "Equal, Fuzzy,
// Unequal").
type MatchVerdict int

const (
	Unequal MatchVerdict = iota
	Fuzzy
	Equal
)

// TraitImpl is one candidate implementation returned by FindTraitImpls.
type TraitImpl struct {
	ImplType    types.Type
	TraitParams []types.Type
	Generics    []*types.TypeParamDef
	// AssocTypes maps associated-type names to their definition in this impl
	// (possibly itself mentioning the impl's own generics, to be
	// monomorphised by the caller once the impl is selected).
	AssocTypes map[string]types.Type
	Where      []WhereClause
}

// WhereClause is one `impl<T> ... where T: Trait<Params>` bound, re-emitted
// as an Associated rule once an impl is selected (spec.md §4.5 step 4).
type WhereClause struct {
	Ty     types.Type
	Trait  []string
	Params []types.Type
}

// FindTraitImplsCallback receives each candidate impl together with its
// match verdict against the queried self type; returning false stops the
// search early (spec.md §6 "find_trait_impls(trait, params, ty, callback)").
type FindTraitImplsCallback func(impl TraitImpl, verdict MatchVerdict) (keepGoing bool)

// MethodCandidate is one candidate returned by AutoderefFindMethod.
type MethodCandidate struct {
	AutorefLevel int // autoderef steps from the receiver type to the type the method was found on
	Path         []string
	Sig          *types.FunctionType
	// ExplicitlyInScope records whether this candidate came from a trait the
	// caller brought into scope with an explicit `use`, as opposed to a
	// blanket impl found only by searching every visible trait
	// (SPEC_FULL.md §9.1.4, the CallMethod fallback tie-break supplement).
	ExplicitlyInScope bool
}

// CrateInfo is the read-only handle to path resolution, lang items, and the
// trait-impl database (spec.md §6 "crate_info").
type CrateInfo interface {
	// FindTraitImpls yields every impl of trait<params> for ty via callback,
	// stopping early if callback returns false.
	FindTraitImpls(trait []string, params []types.Type, ty types.Type, cb FindTraitImplsCallback)
	// Autoderef returns the type one level of `*` away from ty (following a
	// Deref impl), or ok=false when ty cannot be dereferenced further.
	Autoderef(ty types.Type) (result types.Type, ok bool)
	// AutoderefFindMethod walks the autoderef chain of ty looking for
	// methodName among the named in-scope traits (plus inherent impls).
	AutoderefFindMethod(traits [][]string, ty types.Type, methodName string) []MethodCandidate
	// FindField returns the type of field name on ty, if ty has one
	// directly (the revisit Field handler performs the autoderef walk).
	FindField(ty types.Type, name string) (types.Type, bool)
	// TypeIsSized reports whether ty is statically Sized.
	TypeIsSized(ty types.Type) MatchVerdict
	// LangItem resolves a well-known path (e.g. "Box", "String") to its
	// canonical item path, for the handful of lang items the kernel needs
	// by name (spec.md §9 "Context::m_lang_Box").
	LangItem(name string) ([]string, bool)
	// ResolveFunction looks up a free function or associated function by its
	// fully-qualified path, returning its (possibly still generic) signature
	// alongside its own generics and where-bounds so a CallPath site can
	// monomorphise it against the path's own type arguments (spec.md §4.2
	// "CallPath — resolve target function signature").
	ResolveFunction(path []string) (FunctionItem, bool)
}

// FunctionItem is what ResolveFunction returns: a callee signature plus the
// generics and where-bounds a CallPath site must monomorphise and re-emit as
// Associated rules (spec.md §4.2 "emit Associated for every where bound on
// the callee").
type FunctionItem struct {
	Sig      *types.FunctionType
	Generics []*types.TypeParamDef
	Where    []WhereClause
}

// ModuleState is the per-typecheck-call context spec.md §6 names:
// "current impl generics, item generics, in-scope traits (stack), module
// path, enclosing trait".
type ModuleState struct {
	ImplGenerics   []*types.TypeParamDef
	ItemGenerics   []*types.TypeParamDef
	InScopeTraits  [][]string
	ModulePath     []string
	EnclosingTrait []string // nil when the item being checked is not a trait method
}

// OperatorTraits maps a BinOp/UniOp token to the operator trait it desugars
// to, e.g. "+" -> ops::Add, shared by the rule enumerator (internal/enumerate)
// and the associated-type solver (internal/assoc) so both consult one table
// instead of duplicating a per-operator switch (SPEC_FULL.md §4.9, grounded
// on original_source/src/hir_typeck/expr_cs__enum.cpp's Node_BinOp handling).
var OperatorTraits = map[string][]string{
	"+":   {"core", "ops", "Add"},
	"-":   {"core", "ops", "Sub"},
	"*":   {"core", "ops", "Mul"},
	"/":   {"core", "ops", "Div"},
	"%":   {"core", "ops", "Rem"},
	"&":   {"core", "ops", "BitAnd"},
	"|":   {"core", "ops", "BitOr"},
	"^":   {"core", "ops", "BitXor"},
	"<<":  {"core", "ops", "Shl"},
	">>":  {"core", "ops", "Shr"},
	"==":  {"core", "cmp", "PartialEq"},
	"!=":  {"core", "cmp", "PartialEq"},
	"<":   {"core", "cmp", "PartialOrd"},
	"<=":  {"core", "cmp", "PartialOrd"},
	">":   {"core", "cmp", "PartialOrd"},
	">=":  {"core", "cmp", "PartialOrd"},
	"neg": {"core", "ops", "Neg"},
	"not": {"core", "ops", "Not"},
}

// OperatorAssocName names the associated type an operator trait resolves
// through ("Output" for every arithmetic/bitwise op; comparisons resolve to
// bool directly and carry no associated type, so AssocName == "" for them).
func OperatorAssocName(trait []string) string {
	if len(trait) == 3 && (trait[1] == "cmp") {
		return ""
	}
	return "Output"
}
