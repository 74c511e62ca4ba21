// Package fixture loads the small YAML shape cmd/typeck-fixture and
// cmd/typeck-lsp both accept: one function's argument patterns, its declared
// return type, and a body expression tree built from the handful of hir.Expr
// kinds simple enough to spell by hand in a fixture file. Both commands
// share this package rather than duplicating it, the same way the teacher's
// cmd/escalier and cmd/lsp-server both import internal/compiler instead of
// each rolling their own pipeline glue.
package fixture

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/gorustic/typeck"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

// Fixture is the top-level YAML document shape, mirroring the field names
// of spec.md §6's Typecheck signature directly.
type Fixture struct {
	Params     []Param `yaml:"params"`
	ReturnType string  `yaml:"returnType"`
	Body       Expr    `yaml:"body"`
}

type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Expr is one body-expression node. Only "literal", "ident", and "binop"
// are supported — anything richer is built programmatically against
// internal/hir the way the internal packages' own tests do.
type Expr struct {
	Kind   string `yaml:"kind"`
	Lit    string `yaml:"lit"`
	Text   string `yaml:"text"`
	Suffix string `yaml:"suffix"`
	Name   string `yaml:"name"`
	Op     string `yaml:"op"`
	Lhs    *Expr  `yaml:"lhs"`
	Rhs    *Expr  `yaml:"rhs"`
}

// Built is everything Load assembles from one Fixture, ready to pass
// straight to typeck.Typecheck.
type Built struct {
	Arena      *hir.Arena
	Crate      *collaborators.StaticCrateInfo
	Module     *collaborators.ModuleState
	Params     []typeck.Param
	ReturnType types.Type
	Body       hir.NodeID
}

// Load parses raw as a Fixture and lowers it into HIR ready for
// typeck.Typecheck, registering the builtin arithmetic/comparison operator
// impls every numeric primitive needs before any Associated rule the body's
// binops emit can ever resolve.
func Load(raw []byte) (*Built, error) {
	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	arena := hir.NewArena()
	crate := collaborators.NewStaticCrateInfo()
	RegisterBuiltinOperators(crate)

	names := make(map[string]int, len(fx.Params))
	var params []typeck.Param
	for _, p := range fx.Params {
		ty, err := ParseType(p.Type)
		if err != nil {
			return nil, err
		}
		slot := arena.NewBindingSlot(p.Name)
		pat := arena.NewPat(&hir.IdentPatNode{BindingSlot: slot, Sub: hir.NoPat})
		names[p.Name] = slot
		params = append(params, typeck.Param{Pattern: pat, Type: ty})
	}

	returnType, err := ParseType(fx.ReturnType)
	if err != nil {
		return nil, err
	}

	body, err := fx.Body.build(arena, names)
	if err != nil {
		return nil, err
	}

	return &Built{
		Arena:      arena,
		Crate:      crate,
		Module:     &collaborators.ModuleState{},
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}, nil
}
