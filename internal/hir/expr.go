package hir

import "github.com/gorustic/typeck/internal/types"

// Node is the common surface every HIR expression exposes: a span for
// diagnostics and a mutable result-type slot (spec.md §3 "ExprNode.m_res_type").
// Per spec.md §9's design note, node kinds are dispatched by type switch
// (not a separate Visitor/Accept double-dispatch hierarchy) the way the
// teacher's checker.inferExpr already does its own per-kind switch instead
// of routing through ast.Visitor for inference itself.
type Node interface {
	Span() Span
	ResultType() types.Type
	SetResultType(types.Type)
}

//sumtype:decl
type Expr interface {
	Node
	isExpr()
}

func (*BlockExpr) isExpr()          {}
func (*LetExpr) isExpr()            {}
func (*IfExpr) isExpr()             {}
func (*MatchExpr) isExpr()          {}
func (*LoopExpr) isExpr()           {}
func (*BreakExpr) isExpr()          {}
func (*ReturnExpr) isExpr()         {}
func (*YieldExpr) isExpr()          {}
func (*BinOpExpr) isExpr()          {}
func (*UniOpExpr) isExpr()          {}
func (*BorrowExpr) isExpr()         {}
func (*RawBorrowExpr) isExpr()      {}
func (*CastExpr) isExpr()           {}
func (*IndexExpr) isExpr()          {}
func (*DerefExpr) isExpr()          {}
func (*EmplaceExpr) isExpr()        {}
func (*CallValueExpr) isExpr()      {}
func (*CallMethodExpr) isExpr()     {}
func (*CallPathExpr) isExpr()       {}
func (*FieldExpr) isExpr()          {}
func (*ClosureExpr) isExpr()        {}
func (*LiteralExpr) isExpr()        {}
func (*TupleExpr) isExpr()          {}
func (*ArrayListExpr) isExpr()      {}
func (*ArraySizedExpr) isExpr()     {}
func (*StructLiteralExpr) isExpr()  {}
func (*TupleVariantExpr) isExpr()   {}
func (*UnitVariantExpr) isExpr()    {}
func (*IdentExpr) isExpr()          {}
// Compiler-inserted coercion wrapper nodes (spec.md §6 "Output mutations").
func (*CoerceDerefExpr) isExpr()   {}
func (*CoerceBorrowExpr) isExpr()  {}
func (*CoerceCastExpr) isExpr()    {}
func (*CoerceUnsizeExpr) isExpr()  {}

// base is embedded by value in every concrete node and provides the
// span/result-type/cache bookkeeping shared across all kinds.
type base struct {
	span       Span
	resultType types.Type
	caches     map[string]any
}

func (b *base) Span() Span                  { return b.span }
func (b *base) ResultType() types.Type      { return b.resultType }
func (b *base) SetResultType(t types.Type)  { b.resultType = t }

// Cache stores a per-node memo (method path, call argument types, autoref
// class, pattern deref count, split-tuple totals — spec.md §6) under a
// string key so each revisit kind owns its own slot without a field per
// possible cache on every node.
func (b *base) Cache(key string) (any, bool) {
	if b.caches == nil {
		return nil, false
	}
	v, ok := b.caches[key]
	return v, ok
}

func (b *base) SetCache(key string, v any) {
	if b.caches == nil {
		b.caches = make(map[string]any)
	}
	b.caches[key] = v
}

func NewBase(span Span) base { return base{span: span} }

type BlockExpr struct {
	base
	Stmts []NodeID
}

// LetExpr corresponds to spec.md §4.2 "Let": pattern vs. declared type,
// value coerced to the declared type (or equated when the declared type is
// the wildcard `_`).
type LetExpr struct {
	base
	Pattern     PatID
	DeclaredTy  types.Type // nil when elided
	Value       NodeID
}

type IfExpr struct {
	base
	Cond NodeID
	Then NodeID
	Else NodeID // NoNode when there is no else branch
}

type MatchArm struct {
	Pattern PatID
	Guard   NodeID // NoNode when absent
	Body    NodeID
}

type MatchExpr struct {
	base
	Scrutinee NodeID
	Arms      []MatchArm
}

type LoopExpr struct {
	base
	Label string
	Body  NodeID
	// Breaks is populated during enumeration by collecting every BreakExpr
	// that targets this loop. No rule reads it: each break constrains the
	// loop's result ivar directly as it is enumerated (spec.md §4.2 "Loop").
	Breaks []NodeID
}

type BreakExpr struct {
	base
	Label      string
	Value      NodeID // NoNode for a bare `break`
	LoopTarget NodeID // NoNode until the enumerator resolves the label
}

type ReturnExpr struct {
	base
	Value NodeID // NoNode for a bare `return`
}

type YieldExpr struct {
	base
	Value NodeID
}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAndAnd
	OpOrOr
)

func (op BinOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

func (op BinOp) IsShift() bool { return op == OpShl || op == OpShr }

func (op BinOp) IsLogical() bool { return op == OpAndAnd || op == OpOrOr }

type BinOpExpr struct {
	base
	Op    BinOp
	Left  NodeID
	Right NodeID
}

type UniOp int

const (
	OpNot UniOp = iota
	OpNeg
)

type UniOpExpr struct {
	base
	Op      UniOp
	Operand NodeID
}

type BorrowExpr struct {
	base
	Mutability types.Mutability
	Operand    NodeID
}

type RawBorrowExpr struct {
	base
	Mutability types.Mutability
	Operand    NodeID
}

type CastExpr struct {
	base
	Operand    NodeID
	TargetType types.Type
}

type IndexExpr struct {
	base
	Object NodeID
	Index  NodeID
}

type DerefExpr struct {
	base
	Operand NodeID
}

// EmplaceExpr is `box EXPR` / placement-new sugar (SPEC_FULL.md §9.1.1).
type EmplaceExpr struct {
	base
	Place NodeID // NoNode for the default (global) allocator/placer
	Value NodeID
}

type CallValueExpr struct {
	base
	Callee NodeID
	Args   []NodeID
}

type CallMethodExpr struct {
	base
	Receiver NodeID
	Method   string
	Args     []NodeID
}

type CallPathExpr struct {
	base
	Path     []string
	PathArgs []types.Type
	Args     []NodeID
}

type FieldExpr struct {
	base
	Object NodeID
	Field  string
}

type ClosureParam struct {
	Pattern PatID
	TypeAnn types.Type // nil when elided
}

type ClosureExpr struct {
	base
	Params      []ClosureParam
	DeclaredRet types.Type // nil when elided
	Body        NodeID
	IsAsync     bool
}

type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitByteString
	LitBool
	LitChar
)

type Lit struct {
	Kind   LitKind
	Text   string // raw textual literal, e.g. "1", "1u32", "3.14"
	Suffix string // explicit type suffix, e.g. "u32"; "" when elided
}

type LiteralExpr struct {
	base
	Lit Lit
}

type TupleExpr struct {
	base
	Elems []NodeID
}

type ArrayListExpr struct {
	base
	Elems []NodeID
}

type ArraySizedExpr struct {
	base
	Elem NodeID
	Size types.ConstGeneric
}

type StructLiteralField struct {
	Name  string
	Value NodeID
}

type StructLiteralExpr struct {
	base
	Path   []string
	Fields []StructLiteralField
	Spread NodeID // NoNode when there is no `..base` spread
}

type TupleVariantExpr struct {
	base
	Path  []string
	Elems []NodeID
}

type UnitVariantExpr struct {
	base
	Path []string
}

// IdentExpr is a local-variable reference; its type is looked up from the
// binding table populated by pattern handling, not from a rule of its own.
type IdentExpr struct {
	base
	BindingSlot int
}

// --- compiler-inserted coercion wrapper nodes ---

type CoerceDerefExpr struct {
	base
	Operand NodeID
}

type CoerceBorrowExpr struct {
	base
	Mutability types.Mutability
	Operand    NodeID
}

type CoerceCastExpr struct {
	base
	Operand NodeID
}

type CoerceUnsizeExpr struct {
	base
	Operand NodeID
}
