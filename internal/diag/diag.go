// Package diag holds the closed set of error kinds spec.md §7 names: one
// struct per kind, each carrying whatever it needs to render a message and
// a span, matching the teacher's internal/checker.Error shape (a closed
// interface with an isError marker per concrete struct, Span()/Message()
// methods, no wrapped/generic catch-all).
package diag

import (
	"strconv"

	"github.com/gorustic/typeck/internal/diag/message"
	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
)

type Error interface {
	error
	isError()
	Span() hir.Span
	Message() string
}

func (e TypeMismatch) isError()          {}
func (e UnresolvedInference) isError()   {}
func (e InvalidCoercion) isError()       {}
func (e InvalidCast) isError()           {}
func (e NoSuchField) isError()           {}
func (e NoSuchMethod) isError()          {}
func (e AmbiguousMethod) isError()       {}
func (e NoApplicableImpl) isError()      {}
func (e ArityMismatch) isError()         {}
func (e MismatchedBorrowClass) isError() {}
func (e UnsizedWhereSized) isError()     {}

// TypeMismatch reports two types a coercion rule required to be equal that
// could not be equated when the driver resolved that rule.
type TypeMismatch struct {
	Expected types.Type
	Actual   types.Type
	span     hir.Span
}

func NewTypeMismatch(expected, actual types.Type, span hir.Span) *TypeMismatch {
	return &TypeMismatch{Expected: expected, Actual: actual, span: span}
}

func (e *TypeMismatch) Span() hir.Span { return e.span }
func (e *TypeMismatch) Message() string {
	return "mismatched types: expected " + e.Expected.String() + ", found " + e.Actual.String()
}
func (e *TypeMismatch) Error() string { return e.Message() + " at " + e.span.String() }

// UnresolvedInference reports an ivar the applier still found free once
// every sub-solver and fallback rung had already run (spec.md §8's "every
// ExprNode.m_res_type is ivar-free" invariant failing to hold).
type UnresolvedInference struct {
	span hir.Span
}

func NewUnresolvedInference(span hir.Span) *UnresolvedInference {
	return &UnresolvedInference{span: span}
}

func (e *UnresolvedInference) Span() hir.Span  { return e.span }
func (e *UnresolvedInference) Message() string { return "type annotations needed" }
func (e *UnresolvedInference) Error() string   { return e.Message() + " at " + e.span.String() }

// InvalidCoercion reports check_coerce_tys returning Fail for a Coercion
// rule: the two types neither unify nor admit any of the coercion kinds
// spec.md §4.4 lists (deref, unsize, pointer weakening, never-to-any).
type InvalidCoercion struct {
	Dst  types.Type
	Src  types.Type
	span hir.Span
}

func NewInvalidCoercion(dst, src types.Type, span hir.Span) *InvalidCoercion {
	return &InvalidCoercion{Dst: dst, Src: src, span: span}
}

func (e *InvalidCoercion) Span() hir.Span { return e.span }
func (e *InvalidCoercion) Message() string {
	return "cannot coerce " + e.Src.String() + " to " + e.Dst.String()
}
func (e *InvalidCoercion) Error() string { return e.Message() + " at " + e.span.String() }

// InvalidCast reports a node-revisit cast resolver finding no primitive/
// pointer cast relation between operand and target (spec.md §4.6's Cast
// revisit kind).
type InvalidCast struct {
	From types.Type
	To   types.Type
	span hir.Span
}

func NewInvalidCast(from, to types.Type, span hir.Span) *InvalidCast {
	return &InvalidCast{From: from, To: to, span: span}
}

func (e *InvalidCast) Span() hir.Span { return e.span }
func (e *InvalidCast) Message() string {
	return "invalid cast from " + e.From.String() + " to " + e.To.String()
}
func (e *InvalidCast) Error() string { return e.Message() + " at " + e.span.String() }

// NoSuchField reports a Field node-revisit whose receiver type has no field
// of the requested name, after autoderef.
type NoSuchField struct {
	Receiver types.Type
	Field    string
	span     hir.Span
}

func NewNoSuchField(receiver types.Type, field string, span hir.Span) *NoSuchField {
	return &NoSuchField{Receiver: receiver, Field: field, span: span}
}

func (e *NoSuchField) Span() hir.Span { return e.span }
func (e *NoSuchField) Message() string {
	return "no field `" + e.Field + "` on type " + e.Receiver.String()
}
func (e *NoSuchField) Error() string { return e.Message() + " at " + e.span.String() }

// NoSuchMethod reports a CallMethod node-revisit whose receiver type (after
// autoderef) has no inherent or trait method of the requested name.
type NoSuchMethod struct {
	Receiver types.Type
	Method   string
	span     hir.Span
}

func NewNoSuchMethod(receiver types.Type, method string, span hir.Span) *NoSuchMethod {
	return &NoSuchMethod{Receiver: receiver, Method: method, span: span}
}

func (e *NoSuchMethod) Span() hir.Span { return e.span }
func (e *NoSuchMethod) Message() string {
	return "no method named `" + e.Method + "` found for type " + e.Receiver.String()
}
func (e *NoSuchMethod) Error() string { return e.Message() + " at " + e.span.String() }

// AmbiguousMethod reports a CallMethod node-revisit whose autoderef_find_method
// search turned up more than one equally-applicable candidate.
type AmbiguousMethod struct {
	Receiver   types.Type
	Method     string
	Candidates int
	span       hir.Span
}

func NewAmbiguousMethod(receiver types.Type, method string, candidates int, span hir.Span) *AmbiguousMethod {
	return &AmbiguousMethod{Receiver: receiver, Method: method, Candidates: candidates, span: span}
}

func (e *AmbiguousMethod) Span() hir.Span { return e.span }
func (e *AmbiguousMethod) Message() string {
	return "multiple applicable methods named `" + e.Method + "` found for type " + e.Receiver.String() +
		" (" + strconv.Itoa(e.Candidates) + " candidates)"
}
func (e *AmbiguousMethod) Error() string { return e.Message() + " at " + e.span.String() }

// NoApplicableImpl reports an Associated rule whose find_trait_impls search
// came back empty once ImplTy settled to something concrete.
type NoApplicableImpl struct {
	Trait  []string
	ImplTy types.Type
	span   hir.Span
}

func NewNoApplicableImpl(trait []string, implTy types.Type, span hir.Span) *NoApplicableImpl {
	return &NoApplicableImpl{Trait: trait, ImplTy: implTy, span: span}
}

func (e *NoApplicableImpl) Span() hir.Span { return e.span }
func (e *NoApplicableImpl) Message() string {
	name := ""
	for i, seg := range e.Trait {
		if i > 0 {
			name += "::"
		}
		name += seg
	}
	return "the trait bound `" + e.ImplTy.String() + ": " + name + "` is not satisfied"
}
func (e *NoApplicableImpl) Error() string { return e.Message() + " at " + e.span.String() }

// ArityMismatch reports a CallValue/CallMethod/CallPath node-revisit whose
// argument count does not match the target signature's parameter count.
type ArityMismatch struct {
	Expected int
	Actual   int
	span     hir.Span
}

func NewArityMismatch(expected, actual int, span hir.Span) *ArityMismatch {
	return &ArityMismatch{Expected: expected, Actual: actual, span: span}
}

func (e *ArityMismatch) Span() hir.Span { return e.span }
func (e *ArityMismatch) Message() string {
	return "this function takes " + message.Count(e.Expected, "argument") +
		" but " + message.Count(e.Actual, "argument") + " supplied"
}
func (e *ArityMismatch) Error() string { return e.Message() + " at " + e.span.String() }

// MismatchedBorrowClass reports a BorrowType/PointerType coercion whose
// destination demands more mutability than the source offers (e.g. coercing
// &T where &mut T was required); the driver's coercion pass raises it when
// check_coerce_tys fails on such a pair.
type MismatchedBorrowClass struct {
	Expected types.Mutability
	Actual   types.Mutability
	span     hir.Span
}

func NewMismatchedBorrowClass(expected, actual types.Mutability, span hir.Span) *MismatchedBorrowClass {
	return &MismatchedBorrowClass{Expected: expected, Actual: actual, span: span}
}

func (e *MismatchedBorrowClass) Span() hir.Span { return e.span }
func (e *MismatchedBorrowClass) Message() string {
	return "mismatched borrow class: expected " + e.Expected.String() + ", found " + e.Actual.String()
}
func (e *MismatchedBorrowClass) Error() string { return e.Message() + " at " + e.span.String() }

// UnsizedWhereSized reports a position that requires a sized type (spec.md
// §4.9's type_is_sized collaborator) receiving an unsized one (a bare slice,
// str, or trait object) with no borrow/pointer/box indirection around it.
type UnsizedWhereSized struct {
	Type types.Type
	span hir.Span
}

func NewUnsizedWhereSized(t types.Type, span hir.Span) *UnsizedWhereSized {
	return &UnsizedWhereSized{Type: t, span: span}
}

func (e *UnsizedWhereSized) Span() hir.Span { return e.span }
func (e *UnsizedWhereSized) Message() string {
	return "the size for value of type " + e.Type.String() + " cannot be known at compile time"
}
func (e *UnsizedWhereSized) Error() string { return e.Message() + " at " + e.span.String() }
