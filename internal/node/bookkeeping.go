package node

// PatchKind discriminates where an UnresolvedReference's resolved target
// must be written once the referenced node finishes (spec §4.2).
type PatchKind int

const (
	// PatchField writes into a named field of a record target.
	PatchField PatchKind = iota
	// PatchIndexed overwrites a placeholder at a fixed array/list slot.
	PatchIndexed
	// PatchAppended appends to a non-indexable collection after traversal.
	PatchAppended
)

func (k PatchKind) String() string {
	switch k {
	case PatchField:
		return "field"
	case PatchIndexed:
		return "indexed"
	case PatchAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// UnresolvedReference records a forward @ref encountered during traversal.
// Kind and RefID describe *what* was deferred, for diagnostics; Apply is the
// closure the patch pass invokes with the referenced node's resolved target
// — the strategy that created the entry knows how to write into its own
// parent target (field-by-name, slot-by-index, or append), so the patch
// pass itself stays shape-agnostic (spec §4.2).
type UnresolvedReference struct {
	Kind  PatchKind
	RefID int64
	Apply func(resolved any) error
}

// MissingField records a source field with nowhere to go: present on the
// node but absent on the target type. Not an error (spec §7) — reported via
// the optional missing-field handler after cleanup.
type MissingField struct {
	Target any
	Name   string
	Value  any
}

// MapRehashEntry marks a hash-based container node whose final population
// must wait until every element's identity (and thus hash code) is stable,
// i.e. until after the patch pass (spec §4.6).
type MapRehashEntry struct {
	Node   *Node
	Rehash func() error
}
