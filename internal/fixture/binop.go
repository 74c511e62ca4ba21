package fixture

import (
	"fmt"

	"github.com/gorustic/typeck/internal/hir"
)

// ParseBinOp is the inverse of internal/enumerate's own binOpToken: a
// fixture spells operators the same way internal/collaborators.OperatorTraits
// keys them.
func ParseBinOp(tok string) (hir.BinOp, error) {
	switch tok {
	case "+":
		return hir.OpAdd, nil
	case "-":
		return hir.OpSub, nil
	case "*":
		return hir.OpMul, nil
	case "/":
		return hir.OpDiv, nil
	case "%":
		return hir.OpRem, nil
	case "&":
		return hir.OpBitAnd, nil
	case "|":
		return hir.OpBitOr, nil
	case "^":
		return hir.OpBitXor, nil
	case "<<":
		return hir.OpShl, nil
	case ">>":
		return hir.OpShr, nil
	case "==":
		return hir.OpEq, nil
	case "!=":
		return hir.OpNe, nil
	case "<":
		return hir.OpLt, nil
	case "<=":
		return hir.OpLe, nil
	case ">":
		return hir.OpGt, nil
	case ">=":
		return hir.OpGe, nil
	case "&&":
		return hir.OpAndAnd, nil
	case "||":
		return hir.OpOrOr, nil
	default:
		return 0, fmt.Errorf("fixture: unknown operator token %q", tok)
	}
}
