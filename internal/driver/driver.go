// Package driver implements the fixed-point driver of spec.md §4.7: the
// outer loop that repeatedly runs every sub-solver (coercion kernel,
// associated-type solver, node revisits, advanced revisits) until nothing
// more changes, then works down the possibility-tracker fallback ladder in
// the documented order before giving up.
//
// Grounded on the overall shape of original_source/src/hir_typeck/expr_cs.cpp's
// Context::equate_types_from_shadow driver (try every rule kind, check a
// changed flag, escalate through fallback strategies, clear per-pass state),
// generalized from that single C++ function's inline control flow into a Go
// struct with one method per ladder rung so each rung stays independently
// testable.
package driver

import (
	"fmt"
	"os"

	"github.com/gorustic/typeck/internal/advrevisit"
	"github.com/gorustic/typeck/internal/assoc"
	"github.com/gorustic/typeck/internal/coerce"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/possibility"
	"github.com/gorustic/typeck/internal/revisit"
	"github.com/gorustic/typeck/internal/rules"
)

// MaxIter is the hard iteration cap spec.md §4.7 calls for ("≈1000").
const MaxIter = 1000

// Error reports the driver's own terminal failure: the iteration cap was
// hit, or a pass under the strictest fallback made no progress while rules
// still remained ("spare rules"). Diag carries the matching spec.md §7 kind
// when the failure traces back to one specific rule (a coercion that failed
// outright, a type mismatch after an otherwise-successful coercion) rather
// than the driver's own termination condition; callers that only care about
// "did it fail" can ignore it and read Reason.
type Error struct {
	Reason string
	Diag   diag.Error
}

func (e *Error) Error() string { return "typeck driver: " + e.Reason }

func (e *Error) Unwrap() error {
	if e.Diag == nil {
		return nil
	}
	return e.Diag
}

// Driver bundles every sub-solver spec.md §4 introduces plus the shared
// state (arena, ivar store, rule set) they all mutate.
type Driver struct {
	Arena *hir.Arena
	Ivars *ivar.Store
	Rules *rules.RuleSet
	Crate collaborators.CrateInfo

	Coerce      *coerce.Kernel
	Assoc       *assoc.Solver
	NodeRevisit *revisit.Resolver
	AdvRevisit  *advrevisit.Resolver
	Possibility *possibility.Tracker

	// Trace, when set, logs each ladder rung's outcome to Stderr the way
	// the teacher's own cmd/lsp-server logs request handling.
	Trace bool

	// MaxIter overrides the hard iteration cap (defaults to package MaxIter
	// in New); tests shrink it to exercise the cap without 1000 idle passes.
	MaxIter int

	Errors []*Error
}

// New wires every sub-solver from the shared collaborators, matching the
// construction spec.md §4 lays out: one ivar store, one rule set, one
// coercion kernel (built with Mutate: true so it may rewrite HIR and record
// possibilities as it goes), and a possibility tracker built on that same
// kernel.
func New(arena *hir.Arena, ivars *ivar.Store, rs *rules.RuleSet, crate collaborators.CrateInfo) *Driver {
	kernel := &coerce.Kernel{Ivars: ivars, Arena: arena, Crate: crate, Mutate: true}
	poss := possibility.NewTracker(kernel)
	kernel.Recorder = poss
	return &Driver{
		Arena:       arena,
		Ivars:       ivars,
		Rules:       rs,
		Crate:       crate,
		Coerce:      kernel,
		Assoc:       assoc.NewSolver(ivars, crate, rs, poss),
		NodeRevisit: revisit.NewResolver(arena, ivars, rs, crate),
		AdvRevisit:  advrevisit.NewResolver(arena, ivars, rs, crate, poss),
		Possibility: poss,
		MaxIter:     MaxIter,
	}
}

func (d *Driver) trace(format string, args ...any) {
	if d.Trace {
		fmt.Fprintf(os.Stderr, "driver: "+format+"\n", args...)
	}
}

// Run drives every rule to completion or reports failure, implementing the
// pseudo-loop of spec.md §4.7 exactly (each rung below is one labelled line
// of that loop).
func (d *Driver) Run() error {
	for iter := 0; iter < d.MaxIter; iter++ {
		if d.runMainPasses() {
			continue
		}

		if d.sweepPossibility(possibility.FallbackNone) {
			continue
		}
		if d.sweepPossibility(possibility.FallbackBackwards) {
			continue
		}
		if d.sweepPossibility(possibility.FallbackAssume) {
			continue
		}
		if d.sweepPossibility(possibility.FallbackIgnoreWeakDisable) {
			continue
		}

		d.NodeRevisit.RunPass(true)
		d.AdvRevisit.RunPass(true)

		if d.sweepPossibility(possibility.FallbackPickFirstBound) {
			continue
		}
		if d.sweepPossibility(possibility.FallbackFinalOption) {
			continue
		}

		defaulted := d.applyGenericDefaults()
		d.Possibility.Clear()
		if defaulted {
			continue
		}

		if d.Rules.IsEmpty() {
			return d.firstError()
		}
		err := &Error{Reason: "spare rules: no progress under strictest fallback"}
		d.Errors = append(d.Errors, err)
		return err
	}
	err := &Error{Reason: fmt.Sprintf("exceeded %d iterations", d.MaxIter)}
	d.Errors = append(d.Errors, err)
	return err
}

// runMainPasses runs every eager sub-solver once and reports whether any of
// them changed ivar-store state this iteration (spec.md §4.7's "if changed
// this iteration → continue").
func (d *Driver) runMainPasses() bool {
	d.runCoercionPass()
	d.Assoc.RunPass()
	d.NodeRevisit.RunPass(false)
	d.AdvRevisit.RunPass(false)

	changed := d.Ivars.TakeChanged()
	d.trace("main passes: changed=%v rules remaining=%d", changed, d.Rules.Len())
	return changed
}

// firstError surfaces whatever sub-solver recorded a failure once the rule
// set has fully drained (the coercion kernel's own Fail verdicts and the
// associated-type solver's no-candidate errors both accumulate independently
// of the driver's own "spare rules" condition).
func (d *Driver) firstError() error {
	if len(d.Errors) > 0 {
		return d.Errors[0]
	}
	if len(d.NodeRevisit.Errors) > 0 {
		de := d.NodeRevisit.Errors[0]
		err := &Error{Reason: de.Error(), Diag: de}
		d.Errors = append(d.Errors, err)
		return err
	}
	if len(d.Assoc.Errors) > 0 {
		ae := d.Assoc.Errors[0]
		err := &Error{Reason: ae.Error(), Diag: ae.Diag}
		d.Errors = append(d.Errors, err)
		return err
	}
	return nil
}
