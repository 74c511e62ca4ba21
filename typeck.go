// Package typeck is the repository's public facade: the single entry point
// spec.md §6 names, wiring internal/enumerate, internal/driver, and
// internal/apply into the one `Typecheck` call a host (cmd/typeck-fixture,
// cmd/typeck-lsp, or an embedder's own driver loop) makes per function body.
//
// Grounded on the teacher's cmd/lsp-server and cmd/escalier entry points,
// both of which construct a checker.Checker once per compilation unit and
// call a single top-level method rather than exposing the checker's internal
// passes individually; this package plays the same role for the three
// internal packages spec.md §2 chains together.
package typeck

import (
	"github.com/gorustic/typeck/internal/apply"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/driver"
	"github.com/gorustic/typeck/internal/enumerate"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// Param is one function-argument pattern paired with its declared type,
// spec.md §6's "argPatterns" — a slice rather than a single pattern because
// a function signature binds one pattern per parameter, each independently.
type Param struct {
	Pattern hir.PatID
	Type    types.Type
}

// Typecheck runs the full pipeline of spec.md §2 over one function body:
// bind every argument pattern, enumerate the body into ivars and rules,
// drive every sub-solver to a fixed point, then apply the solved types back
// onto the arena. It returns every diagnostic recorded along the way; a nil
// (or empty) result means the body typechecked cleanly with every ivar
// resolved.
//
// A failed driver run short-circuits before the applier ever walks the
// arena (there is nothing left to resolve once the fixed point was never
// reached): every diag.Error the driver's own passes attached to a rule
// along the way is returned, not just the one that finally tripped the
// "spare rules"/iteration-cap condition, matching SPEC_FULL.md §7's
// propagation policy ("recorded... without aborting the rest of the
// pass"). Only once the driver succeeds does the applier run and
// contribute its own UnresolvedInference diagnostics, if any.
func Typecheck(
	crate collaborators.CrateInfo,
	module *collaborators.ModuleState,
	params []Param,
	returnType types.Type,
	exprRoot hir.NodeID,
	arena *hir.Arena,
) []diag.Error {
	ivars := ivar.NewStore()
	rs := rules.NewRuleSet()

	enumerator := enumerate.NewEnumerator(arena, ivars, rs, crate, module, returnType)
	for _, p := range params {
		enumerator.BindPattern(p.Pattern, p.Type)
	}
	enumerator.EnumerateBody(exprRoot)
	rs.AddCoercion(returnType, exprRoot, arena.Get(exprRoot).Span())

	// Errors enumeration recorded on an otherwise-completed rule (an arity
	// mismatch at a call site, say) are permanent and reported regardless of
	// how the rest of the run goes (SPEC_FULL.md §7's "recorded... without
	// aborting the rest of the pass").
	errs := append([]diag.Error(nil), *enumerator.Errors...)

	d := driver.New(arena, ivars, rs, crate)
	if err := d.Run(); err != nil {
		for _, derr := range d.Errors {
			if derr.Diag != nil {
				errs = append(errs, derr.Diag)
			}
		}
		if len(errs) == 0 {
			errs = append(errs, diag.NewUnresolvedInference(hir.NoSpan))
		}
		return errs
	}

	errs = append(errs, apply.New(arena, ivars, crate).Run()...)
	return errs
}
