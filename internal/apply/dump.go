package apply

import (
	"fmt"

	"github.com/gorustic/typeck/internal/hir"
	"github.com/gorustic/typeck/internal/types"
	"github.com/tidwall/sjson"
)

// Dump renders every node's resolved type and every binding's resolved type
// as JSON, for cmd/typeck-fixture's --dump-json flag and for this package's
// own snapshot tests. Keys are prefixed (node_N, binding_N) rather than bare
// integers so sjson treats each branch as an object rather than guessing at
// array semantics from a numeric path segment.
func Dump(arena *hir.Arena) string {
	doc := "{}"
	for id := 1; id < arena.NodeCount(); id++ {
		node := arena.Get(hir.NodeID(id))
		doc = setJSON(doc, fmt.Sprintf("nodes.node_%d.kind", id), fmt.Sprintf("%T", node))
		doc = setJSON(doc, fmt.Sprintf("nodes.node_%d.type", id), typeString(node.ResultType()))
	}
	for slot, b := range arena.Bindings() {
		doc = setJSON(doc, fmt.Sprintf("bindings.binding_%d.name", slot), b.Name)
		doc = setJSON(doc, fmt.Sprintf("bindings.binding_%d.type", slot), typeString(b.Type))
	}
	return doc
}

func setJSON(doc, path, value string) string {
	out, err := sjson.Set(doc, path, value)
	if err != nil {
		// only reachable if path itself is malformed, which it never is here
		// since every segment is built from a known-good NodeID/slot index.
		panic("apply: sjson.Set failed for " + path + ": " + err.Error())
	}
	return out
}

func typeString(t types.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
