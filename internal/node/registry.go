package node

import (
	"fmt"
	"path"
	"sort"

	"github.com/vk/ninjaplan/internal/origin"
)

// Registry deduplicates nodes by identity for one resolution pass. It is
// owned by a Project and passed wherever node creation occurs; there is no
// package-level instance, so independent projects never share nodes.
type Registry struct {
	nodes map[string]Node
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Node)}
}

// File returns the unique FileNode for a path, creating it on first use.
// It fails if the path is already registered as a different node kind.
func (r *Registry) File(p string, org origin.Origin) (*FileNode, error) {
	id := path.Clean(p)
	if existing, ok := r.nodes[id]; ok {
		fn, ok := existing.(*FileNode)
		if !ok {
			return nil, fmt.Errorf("path %s already registered as %T (declared at %s)", id, existing, existing.Origin())
		}
		return fn, nil
	}
	fn := &FileNode{base: base{id: id, origin: org}, path: id}
	r.add(fn)
	return fn, nil
}

// Dir returns the unique DirNode for a path and role, creating it on first
// use. A path cannot serve as both a target-collector and a source
// member-list directory.
func (r *Registry) Dir(p string, role DirRole, org origin.Origin) (*DirNode, error) {
	id := path.Clean(p)
	if existing, ok := r.nodes[id]; ok {
		dn, ok := existing.(*DirNode)
		if !ok {
			return nil, fmt.Errorf("path %s already registered as %T (declared at %s)", id, existing, existing.Origin())
		}
		if dn.role != role {
			return nil, fmt.Errorf("directory %s declared with conflicting roles (first declared at %s)", id, dn.Origin())
		}
		return dn, nil
	}
	dn := &DirNode{base: base{id: id, origin: org}, path: id, role: role}
	r.add(dn)
	return dn, nil
}

// Value returns the unique ValueNode for a name, creating it on first use.
func (r *Registry) Value(name, value string, org origin.Origin) (*ValueNode, error) {
	if existing, ok := r.nodes[name]; ok {
		vn, ok := existing.(*ValueNode)
		if !ok {
			return nil, fmt.Errorf("name %s already registered as %T (declared at %s)", name, existing, existing.Origin())
		}
		return vn, nil
	}
	vn := &ValueNode{base: base{id: name, origin: org}, value: value}
	r.add(vn)
	return vn, nil
}

// Alias returns the unique AliasNode for a name, creating it on first use.
func (r *Registry) Alias(name string, org origin.Origin) (*AliasNode, error) {
	if existing, ok := r.nodes[name]; ok {
		an, ok := existing.(*AliasNode)
		if !ok {
			return nil, fmt.Errorf("name %s already registered as %T (declared at %s)", name, existing, existing.Origin())
		}
		return an, nil
	}
	an := &AliasNode{base: base{id: name, origin: org}}
	r.add(an)
	return an, nil
}

// Lookup returns a registered node by identity.
func (r *Registry) Lookup(id string) (Node, bool) {
	n, ok := r.nodes[path.Clean(id)]
	return n, ok
}

// All returns every registered node in registration order.
func (r *Registry) All() []Node {
	out := make([]Node, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.nodes[id])
	}
	return out
}

// Sorted returns every registered node ordered by identity. Generators use
// this when a stable, declaration-independent order is wanted.
func (r *Registry) Sorted() []Node {
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.nodes[id])
	}
	return out
}

func (r *Registry) add(n Node) {
	r.nodes[n.ID()] = n
	r.order = append(r.order, n.ID())
}
