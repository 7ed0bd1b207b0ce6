package resolver

import (
	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// populateRecord walks a record-shape node's fields in source order, writing
// each into the target instantiate already allocated (spec §4.1 record
// shape, §4.5). A field absent from the target type is not an error: it is
// still resolved (for its graph-identity side effects) and recorded as a
// MissingField, reported once cleanup completes (spec §7, §8 property 6).
func (r *Resolver) populateRecord(n *node.Node, resolved typeresolve.Resolved) error {
	if n.Fields == nil {
		n.Finished = true
		return nil
	}
	for _, name := range n.Fields.Names() {
		fieldName := name
		child, _ := n.Fields.Get(fieldName)
		hintType, exists := r.strategy.FieldType(resolved, fieldName)

		if !exists {
			entry := &node.MissingField{Target: n.Target, Name: fieldName}
			r.missing = append(r.missing, entry)
			if err := r.placeChild(child, hintType, func(v any) error {
				entry.Value = v
				return nil
			}, node.PatchField); err != nil {
				return err
			}
			continue
		}

		target := n.Target
		typeNameForFault := resolved.TypeName
		if err := r.placeChild(child, hintType, func(v any) error {
			if err := r.strategy.SetField(target, fieldName, v); err != nil {
				return diag.ResolveError{diag.FieldAccessFailure(typeNameForFault, fieldName, err)}
			}
			return nil
		}, node.PatchField); err != nil {
			return err
		}
	}
	n.Finished = true
	return nil
}
