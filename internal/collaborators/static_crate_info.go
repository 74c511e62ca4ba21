package collaborators

import (
	"fmt"

	"github.com/gorustic/typeck/internal/types"
	"github.com/tidwall/btree"
)

// implKey identifies one registered impl by trait path + self-type string,
// so StaticCrateInfo.RegisterImpl can reject an accidental duplicate the same
// way PackageRegistry.Register rejects a re-registered package identity.
type implKey struct {
	trait string
	self  string
}

// StaticCrateInfo is the in-memory CrateInfo suitable for tests and the
// fixture CLI (SPEC_FULL.md §4.9), grounded directly on
// internal/checker.PackageRegistry's "map keyed by identity, Register
// rejects duplicates, Lookup/Has read it back" shape. Impls are additionally
// kept in an ordered btree.Map so FindTraitImpls enumerates candidates in
// registration order, matching the driver's requirement that rule and
// candidate processing be deterministic (spec.md §5).
type StaticCrateInfo struct {
	seen  map[implKey]bool
	impls btree.Map[int, registeredImpl]
	next  int

	fields   map[string]map[string]types.Type // self-type string -> field name -> type
	sized    map[string]MatchVerdict
	langItems map[string][]string
	functions map[string]FunctionItem // path string -> signature
}

type registeredImpl struct {
	trait []string
	self  types.Type
	impl  TraitImpl
}

func NewStaticCrateInfo() *StaticCrateInfo {
	return &StaticCrateInfo{
		seen:      make(map[implKey]bool),
		fields:    make(map[string]map[string]types.Type),
		sized:     make(map[string]MatchVerdict),
		langItems: make(map[string][]string),
		functions: make(map[string]FunctionItem),
	}
}

// RegisterFunction makes path resolvable by ResolveFunction.
func (c *StaticCrateInfo) RegisterFunction(path []string, item FunctionItem) {
	c.functions[pathKey(path)] = item
}

// RegisterImpl adds one trait impl for ty, in the same "reject duplicates"
// spirit as PackageRegistry.Register.
func (c *StaticCrateInfo) RegisterImpl(trait []string, self types.Type, impl TraitImpl) error {
	key := implKey{trait: pathKey(trait), self: self.String()}
	if c.seen[key] {
		return fmt.Errorf("collaborators: impl of %s for %s is already registered", pathKey(trait), self)
	}
	c.seen[key] = true
	idx := c.next
	c.next++
	c.impls.Set(idx, registeredImpl{trait: trait, self: self, impl: impl})
	return nil
}

func (c *StaticCrateInfo) RegisterField(self types.Type, name string, ty types.Type) {
	key := self.String()
	if c.fields[key] == nil {
		c.fields[key] = make(map[string]types.Type)
	}
	c.fields[key][name] = ty
}

func (c *StaticCrateInfo) RegisterSized(self types.Type, v MatchVerdict) {
	c.sized[self.String()] = v
}

func (c *StaticCrateInfo) RegisterLangItem(name string, path []string) {
	c.langItems[name] = path
}

func (c *StaticCrateInfo) FindTraitImpls(trait []string, params []types.Type, ty types.Type, cb FindTraitImplsCallback) {
	want := pathKey(trait)
	iter := c.impls.Iter()
	for ok := iter.First(); ok; ok = iter.Next() {
		ri := iter.Value()
		if pathKey(ri.trait) != want {
			continue
		}
		verdict := compareSelfTypes(ty, ri.self)
		if verdict == Unequal {
			continue
		}
		if !cb(ri.impl, verdict) {
			return
		}
	}
}

func (c *StaticCrateInfo) Autoderef(ty types.Type) (types.Type, bool) {
	ty = types.Prune(ty)
	if b, ok := ty.(*types.BorrowType); ok {
		return b.Inner, true
	}
	if p, ok := ty.(*types.PointerType); ok {
		return p.Inner, true
	}
	return nil, false
}

func (c *StaticCrateInfo) AutoderefFindMethod(traits [][]string, ty types.Type, methodName string) []MethodCandidate {
	var out []MethodCandidate
	cur := ty
	level := 0
	for {
		for _, trait := range traits {
			c.FindTraitImpls(trait, nil, cur, func(impl TraitImpl, verdict MatchVerdict) bool {
				if verdict == Unequal {
					return true
				}
				if sig, ok := impl.AssocTypes[methodName].(*types.FunctionType); ok {
					out = append(out, MethodCandidate{AutorefLevel: level, Path: append(append([]string{}, trait...), methodName), Sig: sig, ExplicitlyInScope: true})
				}
				return true
			})
		}
		next, ok := c.Autoderef(cur)
		if !ok {
			break
		}
		cur = next
		level++
	}
	return out
}

func (c *StaticCrateInfo) FindField(ty types.Type, name string) (types.Type, bool) {
	fields, ok := c.fields[ty.String()]
	if !ok {
		return nil, false
	}
	t, ok := fields[name]
	return t, ok
}

func (c *StaticCrateInfo) TypeIsSized(ty types.Type) MatchVerdict {
	if v, ok := c.sized[ty.String()]; ok {
		return v
	}
	// every primitive, tuple-of-sized, and array is Sized by construction;
	// slices/trait-objects are the only bare-unsized formers we know about.
	switch ty.(type) {
	case *types.SliceType, *types.TraitObjectType:
		return Unequal
	default:
		return Equal
	}
}

func (c *StaticCrateInfo) LangItem(name string) ([]string, bool) {
	p, ok := c.langItems[name]
	return p, ok
}

func (c *StaticCrateInfo) ResolveFunction(path []string) (FunctionItem, bool) {
	item, ok := c.functions[pathKey(path)]
	return item, ok
}

func pathKey(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "::"
		}
		s += p
	}
	return s
}

// compareSelfTypes is the Equal/Fuzzy/Unequal verdict spec.md §4.5 step 2
// describes: an exact structural match is Equal, a generic impl parameter
// standing in for any concrete type is Fuzzy, anything else is Unequal.
func compareSelfTypes(query, implSelf types.Type) MatchVerdict {
	if _, ok := types.Prune(implSelf).(*types.GenericType); ok {
		return Fuzzy
	}
	if types.Equals(query, implSelf) {
		return Equal
	}
	return Unequal
}
