package resolver

import (
	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/eventbus"
	"github.com/openbindings/graphresolve/internal/events"
)

// cleanup runs the fixed-order post-traversal pipeline of spec §4.2/§4.6/§7:
// patch every forward reference, rehash every hash-based container (which
// depends on patch having already stabilized element identities), then
// report missing fields. Any failure aborts the whole Resolve call; nothing
// here is partially recovered.
func (r *Resolver) cleanup() error {
	resolved, err := r.runPatchPass()
	eventbus.Publish(r.ctx, events.PatchPass{Resolved: resolved, Err: err})
	if err != nil {
		return err
	}

	containers, err := r.runRehashPass()
	eventbus.Publish(r.ctx, events.RehashPass{Containers: containers, Err: err})
	if err != nil {
		return err
	}

	r.runMissingFieldPass()
	return nil
}

// runPatchPass implements spec §4.2: for each deferred forward reference,
// look up its target (chasing alias chains), and apply the resolved value
// through the closure the original traversal step registered. A reference
// whose target was never defined, or whose node still has no target at
// this point, is an UnknownReference fault. Traversal defers every
// unresolvable field/slot @ref to this pass; the only other places that
// raise the fault are a root @ref in Resolve and a factory's resolveChild.
func (r *Resolver) runPatchPass() (int, error) {
	count := 0
	for _, u := range r.unresolved {
		target, ok := r.refs.Resolve(u.RefID)
		if !ok {
			return count, diag.ResolveError{diag.UnknownReference(u.RefID)}
		}
		if target.Target == nil {
			return count, diag.ResolveError{diag.UnknownReferenceUnresolvedTarget(u.RefID)}
		}
		if err := u.Apply(target.Target); err != nil {
			return count, diag.ResolveError{diag.FieldAccessFailure("", u.Kind.String(), err)}
		}
		count++
	}
	return count, nil
}

// runRehashPass implements spec §4.6: runs strictly after the patch pass, so
// every element written into a hash-based container's scratch storage has
// its final, patched identity before the container is rebuilt.
func (r *Resolver) runRehashPass() (int, error) {
	for i, entry := range r.rehash {
		if err := entry.Rehash(); err != nil {
			return i, diag.ResolveError{diag.InstantiationFailure("container rehash", err)}
		}
	}
	return len(r.rehash), nil
}

// runMissingFieldPass implements spec §7/§8 property 6: the optional handler
// sees each missing field exactly once, only after both patch and rehash
// have completed, so its Value is whatever the field ultimately resolved to.
func (r *Resolver) runMissingFieldPass() {
	for _, m := range r.missing {
		if r.opts.MissingFieldHandler != nil {
			r.opts.MissingFieldHandler(m.Target, m.Name, m.Value)
		}
		eventbus.Publish(r.ctx, events.MissingFieldReported{TargetType: typeOfValue(m.Target), Field: m.Name})
	}
}
