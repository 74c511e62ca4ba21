// Package types defines the Rust type grammar used throughout the solver:
// Type, the closed sum of type formers named in the specification, and
// ConstGeneric, the closed sum of const-generic value forms. Both follow
// the teacher's sum-type-over-interface idiom: a closed interface with one
// unexported marker method per concrete struct, declared directly beneath
// a //sumtype:decl comment.
package types

import (
	"fmt"
	"strings"

	"github.com/gorustic/typeck/internal/provenance"
)

// InferClass narrows what an untyped integer/float literal ivar may unify
// with before it is pinned to a concrete primitive.
type InferClass int

const (
	InferClassNone InferClass = iota
	InferClassInteger
	InferClassFloat
)

func (c InferClass) String() string {
	switch c {
	case InferClassInteger:
		return "integer"
	case InferClassFloat:
		return "float"
	default:
		return "none"
	}
}

//sumtype:decl
type Type interface {
	isType()
	Provenance() provenance.Provenance
	SetProvenance(provenance.Provenance)
	Accept(TypeVisitor) Type
	String() string
	Copy() Type
}

func (*InferType) isType()         {}
func (*DivergeType) isType()       {}
func (*PrimitiveType) isType()     {}
func (*PathType) isType()          {}
func (*GenericType) isType()       {}
func (*TraitObjectType) isType()   {}
func (*ErasedType) isType()        {}
func (*ArrayType) isType()         {}
func (*SliceType) isType()         {}
func (*TupleType) isType()         {}
func (*BorrowType) isType()        {}
func (*PointerType) isType()       {}
func (*NamedFunctionType) isType() {}
func (*FunctionType) isType()      {}
func (*ClosureType) isType()       {}
func (*GeneratorType) isType()     {}

// Prune follows Infer indirection recorded on the node itself: while t is an
// Infer ivar whose ResolvedTo field is set (mirroring TypeVarType.Instance
// in the teacher), Prune follows it. ivar.Store never sets ResolvedTo, and
// Prune never consults the IvarStore directly — callers that need the
// store's current value use ivar.Store.GetDeep, which calls Prune before
// and after its store lookup.
func Prune(t Type) Type {
	for {
		iv, ok := t.(*InferType)
		if !ok || iv.ResolvedTo == nil {
			return t
		}
		t = iv.ResolvedTo
	}
}

// base provides the provenance bookkeeping shared by every Type.
type base struct {
	prov provenance.Provenance
}

func (b *base) Provenance() provenance.Provenance      { return b.prov }
func (b *base) SetProvenance(p provenance.Provenance)  { b.prov = p }

// InferType is an inference variable: a placeholder awaiting resolution by
// the ivar store. ID indexes into ivar.Store's type array. ResolvedTo is not
// written by ivar.Store.Set, which records the value in the store's own
// slot; when some other code sets it, it lets Prune short-circuit without a
// store round-trip.
type InferType struct {
	base
	ID         int
	Class      InferClass
	ResolvedTo Type
}

func NewInferType(p provenance.Provenance, id int, class InferClass) *InferType {
	return &InferType{base: base{prov: p}, ID: id, Class: class}
}

func (t *InferType) Accept(v TypeVisitor) Type {
	pruned := Prune(t)
	if pruned != t {
		return pruned.Accept(v)
	}
	if r := v.EnterType(pruned); r != nil {
		if it, ok := r.(*InferType); ok {
			t = it
		}
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}

func (t *InferType) String() string {
	if t.ResolvedTo != nil {
		return Prune(t).String()
	}
	if t.Class != InferClassNone {
		return fmt.Sprintf("?%d:%s", t.ID, t.Class)
	}
	return fmt.Sprintf("?%d", t.ID)
}

func (t *InferType) Copy() Type {
	cp := *t
	return &cp
}

// DivergeType is the never/"!" type: it coerces to anything (spec.md §4.4
// step 2) but nothing coerces to it except itself.
type DivergeType struct{ base }

func NewDivergeType(p provenance.Provenance) *DivergeType { return &DivergeType{base{p}} }
func (t *DivergeType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*DivergeType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *DivergeType) String() string { return "!" }
func (t *DivergeType) Copy() Type     { cp := *t; return &cp }

// PrimKind enumerates the Rust scalar primitives.
type PrimKind string

const (
	PrimBool PrimKind = "bool"
	PrimChar PrimKind = "char"
	PrimStr  PrimKind = "str"
	PrimI8   PrimKind = "i8"
	PrimI16  PrimKind = "i16"
	PrimI32  PrimKind = "i32"
	PrimI64  PrimKind = "i64"
	PrimI128 PrimKind = "i128"
	PrimISize PrimKind = "isize"
	PrimU8   PrimKind = "u8"
	PrimU16  PrimKind = "u16"
	PrimU32  PrimKind = "u32"
	PrimU64  PrimKind = "u64"
	PrimU128 PrimKind = "u128"
	PrimUSize PrimKind = "usize"
	PrimF32  PrimKind = "f32"
	PrimF64  PrimKind = "f64"
)

func (k PrimKind) IsInteger() bool {
	switch k {
	case PrimI8, PrimI16, PrimI32, PrimI64, PrimI128, PrimISize,
		PrimU8, PrimU16, PrimU32, PrimU64, PrimU128, PrimUSize:
		return true
	}
	return false
}

func (k PrimKind) IsFloat() bool {
	return k == PrimF32 || k == PrimF64
}

// DefaultIntegerKind and DefaultFloatKind are the language defaults applied
// by the driver's generic-defaults pass (spec.md §4.7) when an integer- or
// float-class ivar survives to the end with no registered default.
const DefaultIntegerKind = PrimI32
const DefaultFloatKind = PrimF64

type PrimitiveType struct {
	base
	Kind PrimKind
}

func NewPrimitiveType(p provenance.Provenance, kind PrimKind) *PrimitiveType {
	return &PrimitiveType{base{p}, kind}
}
func (t *PrimitiveType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*PrimitiveType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *PrimitiveType) String() string { return string(t.Kind) }
func (t *PrimitiveType) Copy() Type     { cp := *t; return &cp }

// PathType names a concrete item (struct/enum/union/trait-object-free path)
// by its resolved path, plus type arguments and an optional const generics
// list (Binding is set once the path has been resolved against CrateInfo,
// mirroring TypeRefType.TypeAlias in the teacher).
type PathType struct {
	base
	Path       []string
	Args       []Type
	ConstArgs  []ConstGeneric
	Binding    *ItemBinding
}

// ItemBinding records what a PathType resolved to, populated by the
// (out-of-scope) name-resolution collaborator before typecheck begins.
type ItemBinding struct {
	Kind   string // "struct", "enum", "union", "trait-alias", ...
	Fields map[string]Type
}

func NewPathType(p provenance.Provenance, path []string, args ...Type) *PathType {
	return &PathType{base: base{p}, Path: path, Args: args}
}

func (t *PathType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if pt, ok := r.(*PathType); ok {
			t = pt
		} else {
			return r.Accept(v)
		}
	}
	changed := false
	newArgs := make([]Type, len(t.Args))
	for i, a := range t.Args {
		na := a.Accept(v)
		if na != a {
			changed = true
		}
		newArgs[i] = na
	}
	result := Type(t)
	if changed {
		cp := *t
		cp.Args = newArgs
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}

func (t *PathType) String() string {
	s := strings.Join(t.Path, "::")
	if len(t.Args) > 0 {
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	return s
}
func (t *PathType) Copy() Type { cp := *t; return &cp }

// GenericType is a reference to an in-scope type parameter (e.g. `T`).
type GenericType struct {
	base
	Name    string
	Binding *TypeParamDef
}

type TypeParamDef struct {
	Name    string
	Bounds  []TraitBound
	Default Type
}

type TraitBound struct {
	Trait  []string
	Params []Type
}

func NewGenericType(p provenance.Provenance, name string) *GenericType {
	return &GenericType{base: base{p}, Name: name}
}
func (t *GenericType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*GenericType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *GenericType) String() string { return t.Name }
func (t *GenericType) Copy() Type     { cp := *t; return &cp }

// TraitObjectType is `dyn Trait<Params> + Marker1 + Marker2 + 'lifetime`.
type TraitObjectType struct {
	base
	Trait    []string
	Params   []Type
	Markers  [][]string // auxiliary marker traits, e.g. Send, Sync
	Lifetime string     // "" when elided
}

func NewTraitObjectType(p provenance.Provenance, trait []string, params []Type, markers [][]string, lifetime string) *TraitObjectType {
	return &TraitObjectType{base: base{p}, Trait: trait, Params: params, Markers: markers, Lifetime: lifetime}
}
func (t *TraitObjectType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*TraitObjectType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *TraitObjectType) String() string {
	s := "dyn " + strings.Join(t.Trait, "::")
	if len(t.Params) > 0 {
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	for _, m := range t.Markers {
		s += " + " + strings.Join(m, "::")
	}
	return s
}
func (t *TraitObjectType) Copy() Type { cp := *t; return &cp }

// ErasedType is `impl Trait`, a caller-opaque alias whose concrete identity
// is resolved once from the function body. AliasID indexes
// ivar.Store.ErasedTypeAliases so repeated occurrences of the same `impl
// Trait` position unify (spec.md §4.1).
type ErasedType struct {
	base
	AliasID int
	Trait   []string
	Params  []Type
}

func NewErasedType(p provenance.Provenance, aliasID int, trait []string, params []Type) *ErasedType {
	return &ErasedType{base: base{p}, AliasID: aliasID, Trait: trait, Params: params}
}
func (t *ErasedType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*ErasedType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *ErasedType) String() string {
	return "impl " + strings.Join(t.Trait, "::")
}
func (t *ErasedType) Copy() Type { cp := *t; return &cp }

// ArrayType is `[T; N]`.
type ArrayType struct {
	base
	Inner Type
	Size  ConstGeneric
}

func NewArrayType(p provenance.Provenance, inner Type, size ConstGeneric) *ArrayType {
	return &ArrayType{base: base{p}, Inner: inner, Size: size}
}
func (t *ArrayType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if at, ok := r.(*ArrayType); ok {
			t = at
		} else {
			return r.Accept(v)
		}
	}
	newInner := t.Inner.Accept(v)
	result := Type(t)
	if newInner != t.Inner {
		cp := *t
		cp.Inner = newInner
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *ArrayType) String() string { return fmt.Sprintf("[%s; %s]", t.Inner.String(), t.Size.String()) }
func (t *ArrayType) Copy() Type     { cp := *t; return &cp }

// SliceType is `[T]` (always behind a Borrow or Pointer in surface syntax,
// but represented bare here, the way the teacher represents array element
// types bare under ArrayType).
type SliceType struct {
	base
	Inner Type
}

func NewSliceType(p provenance.Provenance, inner Type) *SliceType {
	return &SliceType{base: base{p}, Inner: inner}
}
func (t *SliceType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if st, ok := r.(*SliceType); ok {
			t = st
		} else {
			return r.Accept(v)
		}
	}
	newInner := t.Inner.Accept(v)
	result := Type(t)
	if newInner != t.Inner {
		cp := *t
		cp.Inner = newInner
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *SliceType) String() string { return "[" + t.Inner.String() + "]" }
func (t *SliceType) Copy() Type     { cp := *t; return &cp }

// TupleType is `(T0, T1, ...)`.
type TupleType struct {
	base
	Elems []Type
}

func NewTupleType(p provenance.Provenance, elems ...Type) *TupleType {
	return &TupleType{base: base{p}, Elems: elems}
}
func (t *TupleType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if tt, ok := r.(*TupleType); ok {
			t = tt
		} else {
			return r.Accept(v)
		}
	}
	changed := false
	newElems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		ne := e.Accept(v)
		if ne != e {
			changed = true
		}
		newElems[i] = ne
	}
	result := Type(t)
	if changed {
		cp := *t
		cp.Elems = newElems
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) Copy() Type { cp := *t; return &cp }

// Mutability has the total order Shared < Unique < Owned for Borrow, and
// Shared <= Unique for Pointer (spec.md §3). Owned is only meaningful on a
// BorrowType (it models `Box<T>`-as-borrow-like-ownership in the rare spots
// the solver treats them uniformly, per original_source's m_resolve code).
type Mutability int

const (
	Shared Mutability = iota
	Unique
	Owned
)

func (m Mutability) String() string {
	switch m {
	case Unique:
		return "mut "
	case Owned:
		return "owned "
	default:
		return ""
	}
}

// AtLeast reports whether m is allowed in a position that demands min,
// i.e. m >= min under the Shared < Unique < Owned order.
func (m Mutability) AtLeast(min Mutability) bool { return m >= min }

type BorrowType struct {
	base
	Mutability Mutability
	Inner      Type
}

func NewBorrowType(p provenance.Provenance, mut Mutability, inner Type) *BorrowType {
	return &BorrowType{base: base{p}, Mutability: mut, Inner: inner}
}
func (t *BorrowType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if bt, ok := r.(*BorrowType); ok {
			t = bt
		} else {
			return r.Accept(v)
		}
	}
	newInner := t.Inner.Accept(v)
	result := Type(t)
	if newInner != t.Inner {
		cp := *t
		cp.Inner = newInner
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *BorrowType) String() string { return "&" + t.Mutability.String() + t.Inner.String() }
func (t *BorrowType) Copy() Type     { cp := *t; return &cp }

type PointerType struct {
	base
	Mutability Mutability // Shared ("*const") or Unique ("*mut") only
	Inner      Type
}

func NewPointerType(p provenance.Provenance, mut Mutability, inner Type) *PointerType {
	return &PointerType{base: base{p}, Mutability: mut, Inner: inner}
}
func (t *PointerType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if pt, ok := r.(*PointerType); ok {
			t = pt
		} else {
			return r.Accept(v)
		}
	}
	newInner := t.Inner.Accept(v)
	result := Type(t)
	if newInner != t.Inner {
		cp := *t
		cp.Inner = newInner
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *PointerType) String() string {
	kw := "*const "
	if t.Mutability == Unique {
		kw = "*mut "
	}
	return kw + t.Inner.String()
}
func (t *PointerType) Copy() Type { cp := *t; return &cp }

// NamedFunctionType is the singleton zero-sized type of a specific named
// function item (before it decays to a FunctionType at a call site or
// coercion, spec.md §4.4 step 9).
type NamedFunctionType struct {
	base
	Path []string
	Args []Type // monomorphised argument types, for the decay check
	Ret  Type
}

func NewNamedFunctionType(p provenance.Provenance, path []string, args []Type, ret Type) *NamedFunctionType {
	return &NamedFunctionType{base: base{p}, Path: path, Args: args, Ret: ret}
}
func (t *NamedFunctionType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*NamedFunctionType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *NamedFunctionType) String() string { return "fn " + strings.Join(t.Path, "::") }
func (t *NamedFunctionType) Copy() Type     { cp := *t; return &cp }

// FunctionType is a function pointer type, `extern "ABI" [unsafe] fn(Args) -> Ret`.
type FunctionType struct {
	base
	ABI      string // "Rust" is the default/native ABI
	Unsafe   bool
	Args     []Type
	Ret      Type
	HRLCount int // count of higher-ranked lifetimes; see SPEC_FULL.md §9.1.3
}

func NewFunctionType(p provenance.Provenance, abi string, unsafe bool, args []Type, ret Type, hrls int) *FunctionType {
	if abi == "" {
		abi = "Rust"
	}
	return &FunctionType{base: base{p}, ABI: abi, Unsafe: unsafe, Args: args, Ret: ret, HRLCount: hrls}
}
func (t *FunctionType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if ft, ok := r.(*FunctionType); ok {
			t = ft
		} else {
			return r.Accept(v)
		}
	}
	changed := false
	newArgs := make([]Type, len(t.Args))
	for i, a := range t.Args {
		na := a.Accept(v)
		if na != a {
			changed = true
		}
		newArgs[i] = na
	}
	newRet := t.Ret.Accept(v)
	if newRet != t.Ret {
		changed = true
	}
	result := Type(t)
	if changed {
		cp := *t
		cp.Args = newArgs
		cp.Ret = newRet
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	prefix := ""
	if t.Unsafe {
		prefix = "unsafe "
	}
	abi := ""
	if t.ABI != "Rust" {
		abi = fmt.Sprintf("extern %q ", t.ABI)
	}
	return fmt.Sprintf("%s%sfn(%s) -> %s", prefix, abi, strings.Join(parts, ", "), t.Ret.String())
}
func (t *FunctionType) Copy() Type { cp := *t; return &cp }

// ClosureType is the unique, unnameable type of one closure expression.
type ClosureType struct {
	base
	NodeID int
	Args   []Type
	Ret    Type
}

func NewClosureType(p provenance.Provenance, nodeID int, args []Type, ret Type) *ClosureType {
	return &ClosureType{base: base{p}, NodeID: nodeID, Args: args, Ret: ret}
}
func (t *ClosureType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		if ct, ok := r.(*ClosureType); ok {
			t = ct
		} else {
			return r.Accept(v)
		}
	}
	changed := false
	newArgs := make([]Type, len(t.Args))
	for i, a := range t.Args {
		na := a.Accept(v)
		if na != a {
			changed = true
		}
		newArgs[i] = na
	}
	newRet := t.Ret.Accept(v)
	if newRet != t.Ret {
		changed = true
	}
	result := Type(t)
	if changed {
		cp := *t
		cp.Args = newArgs
		cp.Ret = newRet
		result = &cp
	}
	if r := v.ExitType(result); r != nil {
		return r
	}
	return result
}
func (t *ClosureType) String() string { return fmt.Sprintf("closure#%d", t.NodeID) }
func (t *ClosureType) Copy() Type     { cp := *t; return &cp }

// GeneratorType is the unique type of one `async`/generator body.
type GeneratorType struct {
	base
	NodeID int
}

func NewGeneratorType(p provenance.Provenance, nodeID int) *GeneratorType {
	return &GeneratorType{base: base{p}, NodeID: nodeID}
}
func (t *GeneratorType) Accept(v TypeVisitor) Type {
	if r := v.EnterType(t); r != nil {
		t = r.(*GeneratorType)
	}
	if r := v.ExitType(t); r != nil {
		return r
	}
	return t
}
func (t *GeneratorType) String() string { return fmt.Sprintf("generator#%d", t.NodeID) }
func (t *GeneratorType) Copy() Type     { cp := *t; return &cp }
