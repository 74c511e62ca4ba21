package fixture

import (
	"fmt"
	"strings"

	"github.com/gorustic/typeck/internal/types"
)

// ParseType reads the small subset of the Rust type grammar spec.md §3
// needs for a fixture: primitive names verbatim, and a leading "&"/"&mut "
// borrow prefix applied recursively. It deliberately does not attempt the
// rest of the grammar (paths, arrays, tuples, function types) — a fixture
// exercising those builds the *Type values directly against the internal
// packages instead of going through the YAML front door.
func ParseType(s string) (types.Type, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "&mut "); ok {
		inner, err := ParseType(rest)
		if err != nil {
			return nil, err
		}
		return types.NewBorrowType(nil, types.Unique, inner), nil
	}
	if rest, ok := strings.CutPrefix(s, "&"); ok {
		inner, err := ParseType(rest)
		if err != nil {
			return nil, err
		}
		return types.NewBorrowType(nil, types.Shared, inner), nil
	}

	switch types.PrimKind(s) {
	case types.PrimBool, types.PrimChar, types.PrimStr,
		types.PrimI8, types.PrimI16, types.PrimI32, types.PrimI64, types.PrimI128, types.PrimISize,
		types.PrimU8, types.PrimU16, types.PrimU32, types.PrimU64, types.PrimU128, types.PrimUSize,
		types.PrimF32, types.PrimF64:
		return types.NewPrimitiveType(nil, types.PrimKind(s)), nil
	}
	return nil, fmt.Errorf("fixture: unsupported type spelling %q", s)
}
