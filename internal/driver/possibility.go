package driver

import (
	"github.com/gorustic/typeck/internal/possibility"
	"github.com/gorustic/typeck/internal/types"
)

// sweepPossibility tries check_ivar_poss against every still-unresolved
// ivar under the given fallback mode (spec.md §4.7's "try possibility
// tracker, mode=X" lines), pinning whichever ones it manages to decide.
// Ivars.Count lets this range over every slot ever allocated without
// internal/ivar exposing its slice; IsUnboundInfer plus the ID == id check
// skip slots that already resolved (directly or by becoming an alias
// pointing elsewhere) so each root ivar is only ever decided once.
func (d *Driver) sweepPossibility(mode possibility.FallbackMode) bool {
	changed := false
	for id := 0; id < d.Ivars.Count(); id++ {
		cur := d.Ivars.Get(id)
		iv, stillUnbound := cur.(*types.InferType)
		if !stillUnbound || iv.ID != id {
			continue
		}
		dec := d.Possibility.CheckIvarPoss(id, mode)
		if !dec.Resolved {
			continue
		}
		if d.Ivars.Set(id, dec.Ty) {
			changed = true
		}
	}
	d.trace("possibility sweep (%s): changed=%v", mode, changed)
	return changed
}

// applyGenericDefaults implements spec.md §4.7's penultimate rung: any ivar
// still unresolved after every fallback mode has had its turn gets pinned to
// the first type-param default registered against it, if any were. Ties
// (more than one default candidate) resolve to the earliest-registered one,
// since defaults are registered in declaration order and a later default can
// only apply when an earlier type parameter's own default already fixed it.
// An integer- or float-class ivar with no registered default gets
// types.DefaultIntegerKind or types.DefaultFloatKind.
func (d *Driver) applyGenericDefaults() bool {
	changed := false
	for id := 0; id < d.Ivars.Count(); id++ {
		cur := d.Ivars.Get(id)
		iv, stillUnbound := cur.(*types.InferType)
		if !stillUnbound || iv.ID != id {
			continue
		}
		defaults := d.Possibility.Defaults(id)
		if len(defaults) == 0 {
			switch iv.Class {
			case types.InferClassInteger:
				defaults = []types.Type{types.NewPrimitiveType(nil, types.DefaultIntegerKind)}
			case types.InferClassFloat:
				defaults = []types.Type{types.NewPrimitiveType(nil, types.DefaultFloatKind)}
			default:
				continue
			}
		}
		if d.Ivars.Set(id, defaults[0]) {
			changed = true
		}
	}
	d.trace("generic defaults: changed=%v", changed)
	return changed
}
