// Package node defines the tagged-value tree the resolver walks: Node, the
// reference table that chases @ref alias chains, and the bookkeeping records
// (UnresolvedReference, MissingField, MapRehashEntry) the resolver core
// accumulates while draining its work stack.
//
// Node's own JSON codec doubles as the wire-contract boundary of this package:
// the generic tokenizer/parser that would normally hand the resolver a raw
// tree is an external collaborator out of scope for this module (spec §1), so
// decodeObject/decodeArrayItems in decode.go play that role for callers that start
// from plain JSON bytes instead of building a Node tree directly.
package node

import "errors"

// ErrCorruptNode marks a structural invariant violation in the wire shape
// (e.g. "@keys" without "@items", or a "@ref" node carrying other content).
var ErrCorruptNode = errors.New("node: corrupt node")

// Kind classifies a Node's shape for traversal dispatch.
type Kind int

const (
	KindScalar Kind = iota
	KindRef
	KindArray
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindRef:
		return "ref"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "scalar"
	}
}

// Node is the tagged value produced ahead of type binding: a scalar, an
// array/collection node, a map node (Keys/Items in lockstep), or a record
// (Fields) node, each optionally carrying @id/@ref/@type.
type Node struct {
	ID    *int64 // @id, unique across the document
	RefID *int64 // @ref, mutually exclusive with all other content

	Type     string // declared @type
	HintType string // caller-context hint: parent field type or array element type

	Fields *FieldMap // record shape: ordered field name -> child node
	Keys   []*Node   // map shape: Keys[i] pairs with Items[i]
	Items  []*Node   // array/collection/map/enum-set shape

	Value any // scalar shape

	Target   any  // the under-construction (or finished) instance
	Finished bool // Target is fully populated; further traversal is a no-op
}

// Kind reports which traversal shape n has, per spec §3's invariants,
// checked in this order: RefID set means ref; Keys non-nil means map shape;
// Fields non-nil means record shape (even if Items is also set); Items
// non-nil means array shape; otherwise the node is a scalar.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindScalar
	}
	switch {
	case n.RefID != nil:
		return KindRef
	case n.Keys != nil:
		return KindMap
	case n.Fields != nil:
		return KindRecord
	case n.Items != nil:
		return KindArray
	default:
		return KindScalar
	}
}

// EffectiveType returns the node's declared @type if present, else the
// caller-supplied hint type — the first step of type resolution (spec §4.4).
func (n *Node) EffectiveType() string {
	if n.Type != "" {
		return n.Type
	}
	return n.HintType
}

// FieldMap is an insertion-ordered name -> child-node map, mirroring the
// order fields appeared in the source document so MapStrategy's generic-map
// output round-trips predictably.
type FieldMap struct {
	order []string
	byKey map[string]*Node
}

// NewFieldMap returns an empty, ready-to-use FieldMap.
func NewFieldMap() *FieldMap {
	return &FieldMap{byKey: make(map[string]*Node)}
}

// Set inserts or overwrites the child at name, tracking first-seen order.
func (f *FieldMap) Set(name string, n *Node) {
	if _, exists := f.byKey[name]; !exists {
		f.order = append(f.order, name)
	}
	f.byKey[name] = n
}

// Get returns the child at name, if any.
func (f *FieldMap) Get(name string) (*Node, bool) {
	v, ok := f.byKey[name]
	return v, ok
}

// Names returns field names in first-seen order.
func (f *FieldMap) Names() []string { return f.order }

// Len reports the number of fields.
func (f *FieldMap) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}
