package types

import (
	"fmt"

	"github.com/gorustic/typeck/internal/provenance"
)

//sumtype:decl
type ConstGeneric interface {
	isConstGeneric()
	String() string
	Copy() ConstGeneric
}

func (*InferConst) isConstGeneric()      {}
func (*GenericConst) isConstGeneric()    {}
func (*EvaluatedConst) isConstGeneric()  {}
func (*UnevaluatedConst) isConstGeneric() {}

// InferConst is a const-generic inference variable; ID indexes
// ivar.Store's value array, mirroring InferType's ID into the type array.
type InferConst struct {
	ID         int
	ResolvedTo ConstGeneric
	prov       provenance.Provenance
}

func NewInferConst(p provenance.Provenance, id int) *InferConst {
	return &InferConst{ID: id, prov: p}
}
func (c *InferConst) String() string {
	if c.ResolvedTo != nil {
		return PruneConst(c).String()
	}
	return fmt.Sprintf("?c%d", c.ID)
}
func (c *InferConst) Copy() ConstGeneric { cp := *c; return &cp }

// GenericConst is a reference to an in-scope const generic parameter.
type GenericConst struct {
	Name string
}

func (c *GenericConst) String() string     { return c.Name }
func (c *GenericConst) Copy() ConstGeneric { cp := *c; return &cp }

// EvaluatedConst is a fully-evaluated const value, stored as its
// little-endian byte representation (the original keeps a byte buffer
// rather than a typed literal so any const-evaluable type can be stored
// uniformly; we follow that rather than growing a second literal grammar).
type EvaluatedConst struct {
	Bytes []byte
}

func (c *EvaluatedConst) String() string {
	// Array/slice lengths are the overwhelmingly common case; render as an
	// unsigned little-endian integer when short enough, else show the byte
	// count (mirrors the debug dump in Node_ArraySized handling).
	if len(c.Bytes) <= 8 {
		var v uint64
		for i := len(c.Bytes) - 1; i >= 0; i-- {
			v = v<<8 | uint64(c.Bytes[i])
		}
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("<%d bytes>", len(c.Bytes))
}
func (c *EvaluatedConst) Copy() ConstGeneric {
	cp := &EvaluatedConst{Bytes: make([]byte, len(c.Bytes))}
	copy(cp.Bytes, c.Bytes)
	return cp
}

// UnevaluatedConst is a const-generic expression awaiting the (out-of-scope)
// const evaluator; ExprID is a hir.NodeID kept as a plain int to avoid an
// import cycle, matching NodeProvenance's NodeID field.
type UnevaluatedConst struct {
	ExprID int
}

func (c *UnevaluatedConst) String() string     { return fmt.Sprintf("{const expr#%d}", c.ExprID) }
func (c *UnevaluatedConst) Copy() ConstGeneric { cp := *c; return &cp }

// PruneConst is ConstGeneric's analogue of Prune.
func PruneConst(c ConstGeneric) ConstGeneric {
	for {
		iv, ok := c.(*InferConst)
		if !ok || iv.ResolvedTo == nil {
			return c
		}
		c = iv.ResolvedTo
	}
}
