// Package enumerate is the rule-enumeration visitor of spec.md §4.2: a
// single pass over one function body's HIR that assigns an ivar or
// structural type to every expression, binds every pattern, and emits the
// Coercion/Associated/NodeRevisit/AdvRevisit rules the driver will later
// solve to a fixed point. Grounded on the teacher's checker.inferExpr
// (internal/checker/infer_expr.go): a big type-switch over expression kinds,
// recursing into sub-expressions and accumulating alongside the recursion
// rather than through a separate Visitor/Accept hierarchy.
package enumerate

import (
	"fmt"
	"os"

	"github.com/gorustic/typeck/internal/advrevisit"
	"github.com/gorustic/typeck/internal/collaborators"
	"github.com/gorustic/typeck/internal/diag"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/ivar"
	"github.com/gorustic/typeck/internal/provenance"
	"github.com/gorustic/typeck/internal/rules"
	"github.com/gorustic/typeck/internal/types"
)

// Enumerator bundles the shared state every per-node handler needs: the
// arena it walks, the ivar store it allocates from, the rule set it feeds,
// and the collaborator/module context spec.md §6 passes in from outside.
type Enumerator struct {
	Arena  *hir.Arena
	Ivars  *ivar.Store
	Rules  *rules.RuleSet
	Crate  collaborators.CrateInfo
	Module *collaborators.ModuleState

	// ReturnType is the declared return type of the function/closure body
	// currently being walked; a Return expression coerces its value to it.
	ReturnType types.Type

	Trace bool

	// Errors accumulates diagnostics an enumeration handler can already tell
	// are permanent (a call's argument count against its resolved signature)
	// without waiting on the driver. A pointer so enumerateClosure's nested
	// Enumerator for a closure body shares the same backing slice instead of
	// starting its own.
	Errors *[]diag.Error

	yieldIvar int // -1 until the body's first Yield allocates it
}

// NewEnumerator constructs an Enumerator ready to walk one function body.
func NewEnumerator(arena *hir.Arena, ivars *ivar.Store, rs *rules.RuleSet, crate collaborators.CrateInfo, module *collaborators.ModuleState, returnType types.Type) *Enumerator {
	errs := make([]diag.Error, 0)
	return &Enumerator{
		Arena: arena, Ivars: ivars, Rules: rs, Crate: crate, Module: module,
		ReturnType: returnType, Errors: &errs, yieldIvar: -1,
	}
}

// addError records a diagnostic against the shared Errors slice.
func (e *Enumerator) addError(err diag.Error) {
	*e.Errors = append(*e.Errors, err)
}

func (e *Enumerator) trace(format string, args ...any) {
	if e.Trace {
		fmt.Fprintf(os.Stderr, "enumerate: "+format+"\n", args...)
	}
}

// EnumerateBody walks a whole function/closure body from its root
// expression, returning the body's own result type; the caller (top-level
// driver entry point) is responsible for coercing it to ReturnType itself,
// the same way this package coerces a nested closure's body to its own
// declared return.
func (e *Enumerator) EnumerateBody(root hir.NodeID) types.Type {
	return e.EnumerateExpr(NewEnumScope(), root)
}

// EnumerateExpr dispatches on the node's concrete kind, the way
// checker.inferExpr dispatches on expr.(type), then writes the resolved
// type back onto the node itself before returning it.
func (e *Enumerator) EnumerateExpr(scope *EnumScope, id hir.NodeID) types.Type {
	node := e.Arena.Get(id)
	e.trace("node#%d -> %T", id, node)

	var result types.Type
	switch n := node.(type) {
	case *hir.BlockExpr:
		result = e.enumerateBlock(scope, id, n)
	case *hir.LetExpr:
		result = e.enumerateLet(scope, n)
	case *hir.IfExpr:
		result = e.enumerateIf(scope, n)
	case *hir.MatchExpr:
		result = e.enumerateMatch(scope, id, n)
	case *hir.LoopExpr:
		result = e.enumerateLoop(scope, id, n)
	case *hir.BreakExpr:
		result = e.enumerateBreak(scope, id, n)
	case *hir.ReturnExpr:
		result = e.enumerateReturn(scope, n)
	case *hir.YieldExpr:
		result = e.enumerateYield(scope, n)
	case *hir.BinOpExpr:
		result = e.enumerateBinOp(scope, id, n)
	case *hir.UniOpExpr:
		result = e.enumerateUniOp(scope, id, n)
	case *hir.BorrowExpr:
		result = e.enumerateBorrow(scope, n)
	case *hir.RawBorrowExpr:
		result = e.enumerateRawBorrow(scope, n)
	case *hir.CastExpr:
		result = e.enumerateCast(scope, id, n)
	case *hir.IndexExpr:
		result = e.enumerateIndex(scope, id, n)
	case *hir.DerefExpr:
		result = e.enumerateDeref(scope, id, n)
	case *hir.EmplaceExpr:
		result = e.enumerateEmplace(scope, id, n)
	case *hir.CallValueExpr:
		result = e.enumerateCallValue(scope, id, n)
	case *hir.CallMethodExpr:
		result = e.enumerateCallMethod(scope, id, n)
	case *hir.CallPathExpr:
		result = e.enumerateCallPath(scope, id, n)
	case *hir.FieldExpr:
		result = e.enumerateField(scope, id, n)
	case *hir.ClosureExpr:
		result = e.enumerateClosure(scope, id, n)
	case *hir.LiteralExpr:
		result = e.enumerateLiteral(n)
	case *hir.TupleExpr:
		result = e.enumerateTuple(scope, id, n)
	case *hir.ArrayListExpr:
		result = e.enumerateArrayList(scope, id, n)
	case *hir.ArraySizedExpr:
		result = e.enumerateArraySized(scope, id, n)
	case *hir.StructLiteralExpr:
		result = e.enumerateStructLiteral(scope, id, n)
	case *hir.TupleVariantExpr:
		result = e.enumerateTupleVariant(scope, id, n)
	case *hir.UnitVariantExpr:
		result = e.enumerateUnitVariant(id, n)
	case *hir.IdentExpr:
		result = e.enumerateIdent(n)
	default:
		panic(fmt.Sprintf("enumerate: unhandled node kind %T", node))
	}

	node.SetResultType(result)
	return result
}

func (e *Enumerator) unit() types.Type       { return types.NewTupleType(nil) }
func (e *Enumerator) boolType() types.Type   { return types.NewPrimitiveType(nil, types.PrimBool) }

func nodeProv(id hir.NodeID) provenance.Provenance {
	return &provenance.NodeProvenance{NodeID: int(id)}
}

// constUsize builds the EvaluatedConst little-endian encoding of a small
// non-negative integer, for array lengths derived from literal/list shape
// rather than an explicit `[T; N]` size expression.
func constUsize(n int) types.ConstGeneric {
	if n < 256 {
		return &types.EvaluatedConst{Bytes: []byte{byte(n)}}
	}
	return &types.EvaluatedConst{Bytes: []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}}
}

func (e *Enumerator) yieldIvarID() int {
	if e.yieldIvar == -1 {
		e.yieldIvar = e.Ivars.NewTypeIvar(nil, types.InferClassNone).ID
	}
	return e.yieldIvar
}

// inScopeTraits combines the block-local traits pushed onto scope with the
// module's top-level in-scope list (spec.md §4.2 closing note: "the
// enumerator preserves per-scope knowledge of in-scope traits for later
// method lookup").
func (e *Enumerator) inScopeTraits(scope *EnumScope) [][]string {
	out := scope.localTraits()
	return append(out, e.Module.InScopeTraits...)
}

// --- control flow ---

func (e *Enumerator) enumerateBlock(scope *EnumScope, id hir.NodeID, n *hir.BlockExpr) types.Type {
	if len(n.Stmts) == 0 {
		return e.unit()
	}
	var last types.Type
	for i, stmtID := range n.Stmts {
		ty := e.EnumerateExpr(scope, stmtID)
		if i < len(n.Stmts)-1 {
			// a non-tail statement's value is discarded; default it to ()
			// unless something else already pinned it, the way a `1;`
			// expression statement's otherwise-useless result settles to
			// unit rather than lingering as an unconstrained ivar.
			e.Rules.AddAdvRevisit(rules.AdvDefaultUnit, e.Arena.Get(stmtID).Span(), advrevisit.DefaultUnitPayload{Node: stmtID})
		} else {
			last = ty
		}
	}
	// the block's own declared type may need upgrading to Diverge once every
	// path through it is known to diverge, even though no single statement
	// is syntactically in tail position with that information yet.
	e.Rules.AddNodeRevisit(rules.RevisitBlockDiverges, id, -1)
	return last
}

func (e *Enumerator) enumerateLet(scope *EnumScope, n *hir.LetExpr) types.Type {
	valueTy := e.EnumerateExpr(scope, n.Value)
	declared := n.DeclaredTy
	if declared == nil {
		// no annotation: the binding's type is simply whatever the value
		// enumerated to, with nothing further to coerce.
		declared = valueTy
	} else {
		e.Rules.AddCoercion(declared, n.Value, e.Arena.Get(n.Value).Span())
	}
	e.bindPattern(scope, n.Pattern, declared)
	return e.unit()
}

func (e *Enumerator) enumerateIf(scope *EnumScope, n *hir.IfExpr) types.Type {
	e.EnumerateExpr(scope, n.Cond)
	e.Rules.AddCoercion(e.boolType(), n.Cond, e.Arena.Get(n.Cond).Span())

	e.EnumerateExpr(scope, n.Then)
	if n.Else == hir.NoNode {
		e.Rules.AddCoercion(e.unit(), n.Then, e.Arena.Get(n.Then).Span())
		return e.unit()
	}

	e.EnumerateExpr(scope, n.Else)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddCoercion(result, n.Then, e.Arena.Get(n.Then).Span())
	e.Rules.AddCoercion(result, n.Else, e.Arena.Get(n.Else).Span())
	return result
}

func (e *Enumerator) enumerateMatch(scope *EnumScope, id hir.NodeID, n *hir.MatchExpr) types.Type {
	scrutTy := e.EnumerateExpr(scope, n.Scrutinee)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)

	for _, arm := range n.Arms {
		e.bindPattern(scope, arm.Pattern, scrutTy)
		if arm.Guard != hir.NoNode {
			e.EnumerateExpr(scope, arm.Guard)
			e.Rules.AddCoercion(e.boolType(), arm.Guard, e.Arena.Get(arm.Guard).Span())
		}
		e.EnumerateExpr(scope, arm.Body)
		e.Rules.AddCoercion(result, arm.Body, e.Arena.Get(arm.Body).Span())
	}

	// Payload names the match expression itself (not just its scrutinee) so
	// the resolver can walk every arm's pattern tree, not only inspect the
	// scrutinee's type in isolation.
	e.Rules.AddAdvRevisit(rules.AdvMatchErgonomics, e.Arena.Get(n.Scrutinee).Span(), advrevisit.MatchErgonomicsPayload{Match: id})
	return result
}

func (e *Enumerator) enumerateLoop(scope *EnumScope, id hir.NodeID, n *hir.LoopExpr) types.Type {
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	inner := scope.withLoop(n.Label, id, result.ID)
	e.EnumerateExpr(inner, n.Body)
	return e.Ivars.Get(result.ID)
}

func (e *Enumerator) enumerateBreak(scope *EnumScope, id hir.NodeID, n *hir.BreakExpr) types.Type {
	frame := scope.findLoop(n.Label)
	if frame == nil {
		panic("enumerate: break outside of any enclosing loop")
	}
	n.LoopTarget = frame.node
	if loopNode, ok := e.Arena.Get(frame.node).(*hir.LoopExpr); ok {
		loopNode.Breaks = append(loopNode.Breaks, id)
	}

	if n.Value == hir.NoNode {
		// a bare `break` always carries (), settled immediately rather than
		// routed through a rule with no node to anchor it to; harmless to
		// call more than once since every bare break targeting the same
		// loop agrees on the same value.
		if !e.Ivars.IsResolved(frame.resultIvar) {
			e.Ivars.Set(frame.resultIvar, e.unit())
		}
	} else {
		e.EnumerateExpr(scope, n.Value)
		e.Rules.AddCoercion(e.Ivars.Get(frame.resultIvar), n.Value, e.Arena.Get(n.Value).Span())
	}
	return types.NewDivergeType(nil)
}

func (e *Enumerator) enumerateReturn(scope *EnumScope, n *hir.ReturnExpr) types.Type {
	if n.Value != hir.NoNode {
		e.EnumerateExpr(scope, n.Value)
		e.Rules.AddCoercion(e.ReturnType, n.Value, e.Arena.Get(n.Value).Span())
	}
	return types.NewDivergeType(nil)
}

func (e *Enumerator) enumerateYield(scope *EnumScope, n *hir.YieldExpr) types.Type {
	e.EnumerateExpr(scope, n.Value)
	e.Rules.AddCoercion(e.Ivars.Get(e.yieldIvarID()), n.Value, e.Arena.Get(n.Value).Span())
	return e.unit()
}

// --- operators ---

func binOpToken(op hir.BinOp) string {
	switch op {
	case hir.OpAdd:
		return "+"
	case hir.OpSub:
		return "-"
	case hir.OpMul:
		return "*"
	case hir.OpDiv:
		return "/"
	case hir.OpRem:
		return "%"
	case hir.OpBitAnd:
		return "&"
	case hir.OpBitOr:
		return "|"
	case hir.OpBitXor:
		return "^"
	case hir.OpShl:
		return "<<"
	case hir.OpShr:
		return ">>"
	case hir.OpEq:
		return "=="
	case hir.OpNe:
		return "!="
	case hir.OpLt:
		return "<"
	case hir.OpLe:
		return "<="
	case hir.OpGt:
		return ">"
	case hir.OpGe:
		return ">="
	default:
		panic(fmt.Sprintf("enumerate: binOpToken called on non-overloadable op %d", op))
	}
}

func (e *Enumerator) enumerateBinOp(scope *EnumScope, id hir.NodeID, n *hir.BinOpExpr) types.Type {
	leftTy := e.EnumerateExpr(scope, n.Left)
	rightTy := e.EnumerateExpr(scope, n.Right)

	if n.Op.IsLogical() {
		e.Rules.AddCoercion(e.boolType(), n.Left, e.Arena.Get(n.Left).Span())
		e.Rules.AddCoercion(e.boolType(), n.Right, e.Arena.Get(n.Right).Span())
		return e.boolType()
	}

	trait := collaborators.OperatorTraits[binOpToken(n.Op)]
	span := e.Arena.Get(id).Span()

	if n.Op.IsComparison() {
		e.Rules.AddAssociated(rules.Associated{
			Span:        span,
			Trait:       trait,
			TraitParams: []types.Type{rightTy},
			ImplTy:      leftTy,
			AssocName:   "",
			IsOperator:  true,
		})
		return e.boolType()
	}

	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	if n.Op.IsShift() {
		// shift relaxes the usual "both operands equal" requirement: the
		// rhs's type is whatever it already enumerated to, unconstrained
		// against the lhs.
		e.Rules.AddAssociated(rules.Associated{
			Span: span, ResultTy: result, Trait: trait,
			TraitParams: []types.Type{rightTy}, ImplTy: leftTy,
			AssocName: collaborators.OperatorAssocName(trait), IsOperator: true,
		})
		return result
	}

	// arithmetic/bitwise: operands are conventionally equal, so the rhs is
	// coerced to the lhs's type before the operator trait is searched.
	e.Rules.AddCoercion(leftTy, n.Right, e.Arena.Get(n.Right).Span())
	e.Rules.AddAssociated(rules.Associated{
		Span: span, ResultTy: result, Trait: trait,
		TraitParams: []types.Type{leftTy}, ImplTy: leftTy,
		AssocName: collaborators.OperatorAssocName(trait), IsOperator: true,
	})
	return result
}

func (e *Enumerator) enumerateUniOp(scope *EnumScope, id hir.NodeID, n *hir.UniOpExpr) types.Type {
	operandTy := e.EnumerateExpr(scope, n.Operand)
	token := "neg"
	if n.Op == hir.OpNot {
		token = "not"
	}
	trait := collaborators.OperatorTraits[token]
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddAssociated(rules.Associated{
		Span: e.Arena.Get(id).Span(), ResultTy: result, Trait: trait,
		ImplTy: operandTy, AssocName: "Output", IsOperator: true,
	})
	return result
}

// --- pointers and placement ---

func (e *Enumerator) enumerateBorrow(scope *EnumScope, n *hir.BorrowExpr) types.Type {
	inner := e.EnumerateExpr(scope, n.Operand)
	return types.NewBorrowType(nil, n.Mutability, inner)
}

func (e *Enumerator) enumerateRawBorrow(scope *EnumScope, n *hir.RawBorrowExpr) types.Type {
	inner := e.EnumerateExpr(scope, n.Operand)
	return types.NewPointerType(nil, n.Mutability, inner)
}

func (e *Enumerator) enumerateCast(scope *EnumScope, id hir.NodeID, n *hir.CastExpr) types.Type {
	e.EnumerateExpr(scope, n.Operand)
	e.Rules.AddNodeRevisit(rules.RevisitCast, id, -1)
	return n.TargetType
}

func (e *Enumerator) enumerateIndex(scope *EnumScope, id hir.NodeID, n *hir.IndexExpr) types.Type {
	e.EnumerateExpr(scope, n.Object)
	e.EnumerateExpr(scope, n.Index)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddNodeRevisit(rules.RevisitIndex, id, result.ID)
	return result
}

func (e *Enumerator) enumerateDeref(scope *EnumScope, id hir.NodeID, n *hir.DerefExpr) types.Type {
	e.EnumerateExpr(scope, n.Operand)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddNodeRevisit(rules.RevisitDeref, id, result.ID)
	return result
}

func (e *Enumerator) enumerateEmplace(scope *EnumScope, id hir.NodeID, n *hir.EmplaceExpr) types.Type {
	if n.Place != hir.NoNode {
		e.EnumerateExpr(scope, n.Place)
	}
	e.EnumerateExpr(scope, n.Value)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddNodeRevisit(rules.RevisitEmplace, id, result.ID)
	return result
}

// --- calls and member access ---

func (e *Enumerator) enumerateCallValue(scope *EnumScope, id hir.NodeID, n *hir.CallValueExpr) types.Type {
	e.EnumerateExpr(scope, n.Callee)
	for _, a := range n.Args {
		e.EnumerateExpr(scope, a)
	}
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddNodeRevisit(rules.RevisitCallValue, id, result.ID)
	return result
}

func (e *Enumerator) enumerateCallMethod(scope *EnumScope, id hir.NodeID, n *hir.CallMethodExpr) types.Type {
	e.EnumerateExpr(scope, n.Receiver)
	for _, a := range n.Args {
		e.EnumerateExpr(scope, a)
	}
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	// the method resolver needs this call site's in-scope traits, which only
	// exist as a transient scope-chain value here; stash them on the node's
	// cache the way a method path or autoref class is cached (hir.base.Cache).
	n.SetCache("inScopeTraits", e.inScopeTraits(scope))
	e.Rules.AddNodeRevisit(rules.RevisitCallMethod, id, result.ID)
	return result
}

func (e *Enumerator) enumerateCallPath(scope *EnumScope, id hir.NodeID, n *hir.CallPathExpr) types.Type {
	for _, a := range n.Args {
		e.EnumerateExpr(scope, a)
	}
	item, ok := e.Crate.ResolveFunction(n.Path)
	if !ok {
		// unresolved callee path: still walk the arguments so the rest of
		// the body proceeds. No diagnostic names the path itself; the call's
		// fresh result ivar is left for later rules to pin.
		return e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	}

	subst := monomorphiseSubst(item.Generics, n.PathArgs)
	sig := substituteFunctionType(item.Sig, subst)
	span := e.Arena.Get(id).Span()

	if len(n.Args) != len(sig.Args) {
		e.addError(diag.NewArityMismatch(len(sig.Args), len(n.Args), span))
	}
	for i, argID := range n.Args {
		if i < len(sig.Args) {
			e.Rules.AddCoercion(sig.Args[i], argID, e.Arena.Get(argID).Span())
		}
	}
	for _, wc := range item.Where {
		e.Rules.AddAssociated(rules.Associated{
			Span:        span,
			Trait:       wc.Trait,
			TraitParams: substituteTypes(wc.Params, subst),
			ImplTy:      substituteType(wc.Ty, subst),
		})
	}
	return sig.Ret
}

func (e *Enumerator) enumerateField(scope *EnumScope, id hir.NodeID, n *hir.FieldExpr) types.Type {
	e.EnumerateExpr(scope, n.Object)
	result := e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	e.Rules.AddNodeRevisit(rules.RevisitField, id, result.ID)
	return result
}

// --- closures, literals, aggregates ---

func (e *Enumerator) enumerateClosure(scope *EnumScope, id hir.NodeID, n *hir.ClosureExpr) types.Type {
	args := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		pty := p.TypeAnn
		if pty == nil {
			pty = e.Ivars.NewTypeIvar(nil, types.InferClassNone)
		}
		args[i] = pty
		e.bindPattern(scope, p.Pattern, pty)
	}

	ret := n.DeclaredRet
	if ret == nil {
		ret = e.Ivars.NewTypeIvar(nil, types.InferClassNone)
	}

	// a closure's body is enumerated with its own "current return" frame so
	// a nested return/yield targets the closure, not the enclosing function.
	inner := &Enumerator{
		Arena: e.Arena, Ivars: e.Ivars, Rules: e.Rules, Crate: e.Crate, Module: e.Module,
		ReturnType: ret, Trace: e.Trace, Errors: e.Errors, yieldIvar: -1,
	}
	inner.EnumerateExpr(NewEnumScope(), n.Body)
	e.Rules.AddCoercion(ret, n.Body, e.Arena.Get(n.Body).Span())

	return types.NewClosureType(nodeProv(id), int(id), args, ret)
}

func (e *Enumerator) enumerateLiteral(n *hir.LiteralExpr) types.Type {
	switch n.Lit.Kind {
	case hir.LitInt:
		if n.Lit.Suffix != "" {
			return types.NewPrimitiveType(nil, types.PrimKind(n.Lit.Suffix))
		}
		return e.Ivars.NewTypeIvar(nil, types.InferClassInteger)
	case hir.LitFloat:
		if n.Lit.Suffix != "" {
			return types.NewPrimitiveType(nil, types.PrimKind(n.Lit.Suffix))
		}
		return e.Ivars.NewTypeIvar(nil, types.InferClassFloat)
	case hir.LitBool:
		return types.NewPrimitiveType(nil, types.PrimBool)
	case hir.LitChar:
		return types.NewPrimitiveType(nil, types.PrimChar)
	case hir.LitString:
		return types.NewBorrowType(nil, types.Shared, types.NewPrimitiveType(nil, types.PrimStr))
	case hir.LitByteString:
		// Text carries the literal's already-decoded bytes for this kind
		// (unlike LitInt/LitFloat's raw source spelling), so its length is
		// the array's N directly.
		arr := types.NewArrayType(nil, types.NewPrimitiveType(nil, types.PrimU8), constUsize(len(n.Lit.Text)))
		return types.NewBorrowType(nil, types.Shared, arr)
	default:
		panic(fmt.Sprintf("enumerate: unknown literal kind %d", n.Lit.Kind))
	}
}

func (e *Enumerator) enumerateTuple(scope *EnumScope, id hir.NodeID, n *hir.TupleExpr) types.Type {
	elems := make([]types.Type, len(n.Elems))
	for i, el := range n.Elems {
		elems[i] = e.EnumerateExpr(scope, el)
	}
	return types.NewTupleType(nodeProv(id), elems...)
}

func (e *Enumerator) enumerateArrayList(scope *EnumScope, id hir.NodeID, n *hir.ArrayListExpr) types.Type {
	if len(n.Elems) == 0 {
		return types.NewArrayType(nodeProv(id), e.Ivars.NewTypeIvar(nil, types.InferClassNone), constUsize(0))
	}
	first := e.EnumerateExpr(scope, n.Elems[0])
	e.markSized(first, e.Arena.Get(id).Span())
	for _, el := range n.Elems[1:] {
		e.EnumerateExpr(scope, el)
		e.Rules.AddCoercion(first, el, e.Arena.Get(el).Span())
	}
	return types.NewArrayType(nodeProv(id), first, constUsize(len(n.Elems)))
}

func (e *Enumerator) enumerateArraySized(scope *EnumScope, id hir.NodeID, n *hir.ArraySizedExpr) types.Type {
	elemTy := e.EnumerateExpr(scope, n.Elem)
	e.markSized(elemTy, e.Arena.Get(id).Span())
	return types.NewArrayType(nodeProv(id), elemTy, n.Size)
}

// markSized flags ty's ivar (if it still is one) as observed in a
// Sized-demanding position (spec.md §4.1 sized_flags); a ty that is already
// concrete is neither flagged nor checked for sizedness here.
func (e *Enumerator) markSized(ty types.Type, span hir.Span) {
	if iv, ok := types.Prune(ty).(*types.InferType); ok {
		e.Ivars.MarkSized(iv.ID, span)
	}
}

func (e *Enumerator) enumerateStructLiteral(scope *EnumScope, id hir.NodeID, n *hir.StructLiteralExpr) types.Type {
	selfTy := types.NewPathType(nodeProv(id), n.Path)
	for _, f := range n.Fields {
		fieldTy, ok := e.Crate.FindField(selfTy, f.Name)
		if !ok {
			fieldTy = e.Ivars.NewTypeIvar(nil, types.InferClassNone)
		}
		e.EnumerateExpr(scope, f.Value)
		e.Rules.AddCoercion(fieldTy, f.Value, e.Arena.Get(f.Value).Span())
	}
	if n.Spread != hir.NoNode {
		e.EnumerateExpr(scope, n.Spread)
		e.Rules.AddCoercion(selfTy, n.Spread, e.Arena.Get(n.Spread).Span())
	}
	return selfTy
}

func (e *Enumerator) enumerateTupleVariant(scope *EnumScope, id hir.NodeID, n *hir.TupleVariantExpr) types.Type {
	for _, el := range n.Elems {
		e.EnumerateExpr(scope, el)
	}
	return types.NewPathType(nodeProv(id), n.Path)
}

func (e *Enumerator) enumerateUnitVariant(id hir.NodeID, n *hir.UnitVariantExpr) types.Type {
	return types.NewPathType(nodeProv(id), n.Path)
}

func (e *Enumerator) enumerateIdent(n *hir.IdentExpr) types.Type {
	return e.Arena.Binding(n.BindingSlot).Type
}
