// Package node defines the vertices of the build dependency graph. Nodes
// carry identity and dependency lists only; commands are attached by the
// resolver as Producer records, and all file nodes are created through a
// project-owned Registry so one path maps to exactly one instance.
package node

import (
	"github.com/vk/ninjaplan/internal/origin"
)

// Node is one vertex in the dependency graph.
type Node interface {
	// ID is the canonical identity: a path for file and directory nodes,
	// a name for value and alias nodes.
	ID() string
	// ExplicitDeps are user-declared dependencies, in declaration order.
	ExplicitDeps() []Node
	// ImplicitDeps are scanner/depfile-discovered dependencies. The build
	// executor populates these at build time; the core only carries them.
	ImplicitDeps() []Node
	// Producer describes the build step creating this node, nil for sources.
	Producer() *Producer
	// SetProducer attaches the build step that creates this node.
	SetProducer(p *Producer)
	// Depend appends dependencies, skipping any already present.
	Depend(deps ...Node)
	// Origin is the declaration site, for diagnostics.
	Origin() origin.Origin
}

// base carries the state shared by every node variant.
type base struct {
	id       string
	explicit []Node
	implicit []Node
	producer *Producer
	origin   origin.Origin
}

func (b *base) ID() string             { return b.id }
func (b *base) ExplicitDeps() []Node   { return b.explicit }
func (b *base) ImplicitDeps() []Node   { return b.implicit }
func (b *base) Producer() *Producer    { return b.producer }
func (b *base) SetProducer(p *Producer) { b.producer = p }
func (b *base) Origin() origin.Origin  { return b.origin }

func (b *base) Depend(deps ...Node) {
	for _, d := range deps {
		if d == nil || b.hasDep(d) {
			continue
		}
		b.explicit = append(b.explicit, d)
	}
}

func (b *base) hasDep(n Node) bool {
	for _, d := range b.explicit {
		if d.ID() == n.ID() {
			return true
		}
	}
	return false
}

// AddImplicit records a discovered dependency, skipping duplicates.
func (b *base) AddImplicit(deps ...Node) {
	for _, d := range deps {
		dup := false
		for _, have := range b.implicit {
			if have.ID() == d.ID() {
				dup = true
				break
			}
		}
		if !dup {
			b.implicit = append(b.implicit, d)
		}
	}
}

// FileNode is a node backed by a file-system path. The file may not exist
// yet when the node represents a build output.
type FileNode struct {
	base
	path string
}

// Path returns the file path this node wraps.
func (f *FileNode) Path() string { return f.path }

// DirRole distinguishes the two directory-node semantics. The role is fixed
// at construction; it is never inferred from usage.
type DirRole int

const (
	// DirAsTarget means the directory is up to date iff all declared
	// members are up to date (collector semantics).
	DirAsTarget DirRole = iota
	// DirAsSource means the directory stands for its declared members
	// only, so unrelated files appearing on disk cause no rebuilds.
	DirAsSource
)

// DirNode is a directory with an explicit member list.
type DirNode struct {
	base
	path    string
	role    DirRole
	members []Node
}

// Path returns the directory path.
func (d *DirNode) Path() string { return d.path }

// Role returns the construction-time role of this directory node.
func (d *DirNode) Role() DirRole { return d.role }

// Members returns the declared member nodes, in declaration order.
func (d *DirNode) Members() []Node { return d.members }

// AddMember declares a member of this directory, skipping duplicates.
func (d *DirNode) AddMember(n Node) {
	for _, m := range d.members {
		if m.ID() == n.ID() {
			return
		}
	}
	d.members = append(d.members, n)
	if d.role == DirAsTarget {
		d.Depend(n)
	}
}

// ValueNode is a named computed value, such as a configuration hash,
// usable as a dependency without a backing file.
type ValueNode struct {
	base
	value string
}

// Value returns the computed value.
func (v *ValueNode) Value() string { return v.value }

// SetValue replaces the computed value.
func (v *ValueNode) SetValue(value string) { v.value = value }

// AliasNode is a named group of other nodes with no file output. Generators
// emit it as a no-op grouping step.
type AliasNode struct {
	base
	members []Node
}

// Members returns the aliased nodes, in declaration order.
func (a *AliasNode) Members() []Node { return a.members }

// AddMember adds a node to the alias, skipping duplicates.
func (a *AliasNode) AddMember(n Node) {
	for _, m := range a.members {
		if m.ID() == n.ID() {
			return
		}
	}
	a.members = append(a.members, n)
	a.Depend(n)
}
