package fixture

import (
	"fmt"

	"github.com/gorustic/typeck/internal/hir"
)

// build lowers one Expr into the arena, resolving "ident" names against the
// slot table a parameter's binding pattern allocated, the same
// binding-slot indirection IdentExpr always goes through.
func (e *Expr) build(arena *hir.Arena, names map[string]int) (hir.NodeID, error) {
	switch e.Kind {
	case "literal":
		lit, err := e.buildLit()
		if err != nil {
			return hir.NoNode, err
		}
		return arena.New(&hir.LiteralExpr{Lit: lit}), nil

	case "ident":
		slot, ok := names[e.Name]
		if !ok {
			return hir.NoNode, fmt.Errorf("fixture: unknown identifier %q", e.Name)
		}
		return arena.New(&hir.IdentExpr{BindingSlot: slot}), nil

	case "binop":
		if e.Lhs == nil || e.Rhs == nil {
			return hir.NoNode, fmt.Errorf("fixture: binop requires both lhs and rhs")
		}
		lhs, err := e.Lhs.build(arena, names)
		if err != nil {
			return hir.NoNode, err
		}
		rhs, err := e.Rhs.build(arena, names)
		if err != nil {
			return hir.NoNode, err
		}
		op, err := ParseBinOp(e.Op)
		if err != nil {
			return hir.NoNode, err
		}
		return arena.New(&hir.BinOpExpr{Op: op, Left: lhs, Right: rhs}), nil

	default:
		return hir.NoNode, fmt.Errorf("fixture: unknown body expr kind %q", e.Kind)
	}
}

func (e *Expr) buildLit() (hir.Lit, error) {
	switch e.Lit {
	case "int":
		return hir.Lit{Kind: hir.LitInt, Text: e.Text, Suffix: e.Suffix}, nil
	case "float":
		return hir.Lit{Kind: hir.LitFloat, Text: e.Text, Suffix: e.Suffix}, nil
	case "bool":
		return hir.Lit{Kind: hir.LitBool, Text: e.Text}, nil
	default:
		return hir.Lit{}, fmt.Errorf("fixture: unknown literal kind %q", e.Lit)
	}
}
