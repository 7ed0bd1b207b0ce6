package resolver

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/openbindings/graphresolve/internal/convert"
	"github.com/openbindings/graphresolve/internal/descriptor"
	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/eventbus"
	"github.com/openbindings/graphresolve/internal/events"
	"github.com/openbindings/graphresolve/internal/factory"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/protobind"
	"github.com/openbindings/graphresolve/internal/reqid"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// registerProtobindOnce wires internal/protobind's descriptor.Source in
// exactly once per process: a proto.Message resolver target then has its
// fields described and set through protoreflect instead of the struct-tag
// scan (SPEC_FULL.md DOMAIN STACK, google.golang.org/protobuf row).
var registerProtobindOnce sync.Once

// Resolver owns one traversal's work stack, visited set, and cleanup lists.
// Per spec §5 it is not safe for concurrent or overlapping Resolve calls —
// each call resets all of this state before it starts.
type Resolver struct {
	opts         Options
	typeResolver *typeresolve.TypeResolver
	strategy     Strategy
	ctx          context.Context

	refs          *node.ReferenceTable
	stack         []*node.Node
	visited       map[*node.Node]bool
	unresolved    []*node.UnresolvedReference
	rehash        []*node.MapRehashEntry
	missing       []*node.MissingField
	resolvedCache map[*node.Node]typeresolve.Resolved
}

// New builds a Resolver from opts, filling in the defaults spec §6 describes
// (a DefaultConverter, empty registries, ObjectStrategy unless ModeJSONObjects).
func New(opts Options) *Resolver {
	registerProtobindOnce.Do(func() {
		descriptor.RegisterSource(protobind.Source{})
	})
	if opts.Converter == nil {
		opts.Converter = convert.DefaultConverter{}
	}
	if opts.Factories == nil {
		opts.Factories = factory.NewRegistry()
	}
	if opts.TypeRegistry == nil {
		opts.TypeRegistry = typeresolve.NewRegistry()
	}

	tr := typeresolve.New(opts.TypeRegistry, typeresolve.Options{
		UnknownTypeClass: opts.UnknownTypeClass,
		GenericMapMode:   opts.Mode == ModeJSONObjects,
		CoercedClasses:   opts.CoercedClasses,
	})

	r := &Resolver{opts: opts, typeResolver: tr}
	if opts.Mode == ModeJSONObjects {
		r.strategy = &mapStrategy{converter: opts.Converter}
	} else {
		r.strategy = &objectStrategy{converter: opts.Converter}
	}
	return r
}

// Resolve implements spec §4.1/§4.2: given a fully parsed Node tree and the
// type the caller expects at the root, it returns the reconstructed,
// fully-patched, fully-rehashed instance, or the aggregate error raised along
// the way.
func (r *Resolver) Resolve(ctx context.Context, root *node.Node, declaredRoot reflect.Type) (any, error) {
	if root == nil {
		return nil, nil
	}

	refs, err := node.CollectReferences(root)
	if err != nil {
		return nil, diag.ResolveError{diag.CorruptNode(err.Error())}
	}

	entry := root
	if root.Kind() == node.KindRef {
		target, ok := refs.Resolve(*root.RefID)
		if !ok {
			return nil, diag.ResolveError{diag.UnknownReference(*root.RefID)}
		}
		entry = target
	}
	if entry.Finished {
		return entry.Target, nil
	}

	r.reset(refs)
	ctx, _ = reqid.NewContext(ctx)
	r.ctx = ctx
	start := time.Now()
	eventbus.Publish(ctx, events.ResolveStart{DeclaredRootType: typeName(declaredRoot)})

	if declaredRoot != nil && entry.HintType == "" {
		entry.HintType = typeName(declaredRoot)
	}
	r.push(entry)

	resolveErr := r.drain()
	if resolveErr == nil {
		resolveErr = r.cleanup()
	}
	eventbus.Publish(ctx, events.ResolveFinish{Err: resolveErr, Duration: time.Since(start)})
	if resolveErr != nil {
		return nil, resolveErr
	}

	if declaredRoot != nil {
		if err := checkRootType(entry.Target, declaredRoot); err != nil {
			return nil, err
		}
	}
	return entry.Target, nil
}

func (r *Resolver) reset(refs *node.ReferenceTable) {
	r.refs = refs
	r.stack = nil
	r.visited = make(map[*node.Node]bool)
	r.unresolved = nil
	r.rehash = nil
	r.missing = nil
	r.resolvedCache = make(map[*node.Node]typeresolve.Resolved)
}

func (r *Resolver) push(n *node.Node) { r.stack = append(r.stack, n) }

// drain pops the work stack until empty, instantiating and populating each
// node at most once (spec §8 property 5: identity-based, not count-based).
func (r *Resolver) drain() error {
	for len(r.stack) > 0 {
		n := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		if n == nil || n.Finished || r.visited[n] {
			continue
		}
		r.visited[n] = true
		if err := r.instantiate(n); err != nil {
			return err
		}
		if n.Finished {
			continue
		}
		if err := r.dispatchPopulate(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) dispatchPopulate(n *node.Node) error {
	resolved := r.resolvedCache[n]
	switch n.Kind() {
	case node.KindArray:
		return r.populateArrayLike(n, resolved)
	case node.KindMap:
		return r.populateMapShape(n, resolved)
	case node.KindRecord:
		return r.populateRecord(n, resolved)
	default:
		return nil
	}
}

func checkRootType(target any, declared reflect.Type) error {
	if target == nil {
		return nil
	}
	vt := reflect.TypeOf(target)
	if vt.AssignableTo(declared) || vt.ConvertibleTo(declared) {
		return nil
	}
	return diag.ResolveError{diag.RootTypeMismatch(vt.String(), declared.String())}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func zeroValue(t reflect.Type) any {
	if t == nil {
		return nil
	}
	return reflect.Zero(t).Interface()
}

func typeOfValue(v any) string {
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).String()
}
