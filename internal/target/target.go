// Package target holds the declarative description of one build artifact
// and the usage-requirement propagation rules. A Target is pure
// configuration before resolution and a concrete graph fragment after:
// its node accessors fail loudly until the resolver marks it resolved.
package target

import (
	"fmt"

	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/node"
	"github.com/vk/ninjaplan/internal/origin"
)

// Kind classifies what a target builds.
type Kind string

const (
	StaticLibrary Kind = "static_library"
	SharedLibrary Kind = "shared_library"
	Program       Kind = "program"
	// Interface is a header-only library: no sources, only requirements.
	Interface Kind = "interface"
	// Object compiles sources without linking anything.
	Object Kind = "object"
	// Install copies other targets' outputs into a destination directory.
	Install Kind = "install"
	// InstallAs copies exactly one source to an explicit destination path.
	InstallAs Kind = "install_as"
	// Archive bundles resolved sources into a tar or zip file.
	Archive Kind = "archive"
)

// concrete reports whether a kind is expected to produce output from
// sources, so that an empty source list deserves a warning.
func (k Kind) concrete() bool {
	switch k {
	case StaticLibrary, SharedLibrary, Program, Object:
		return true
	}
	return false
}

// Link is one dependency edge to another target. Private edges apply the
// dependency's public requirements to this target only; they are never
// propagated further up.
type Link struct {
	Target  *Target
	Private bool
}

// SourceRef is a source declared as either an existing node or a path that
// the resolver materializes through the project registry.
type SourceRef struct {
	Path string
	Node node.Node
}

// PendingSource is a source reference that cannot resolve until the
// referenced target has output nodes, replayed in the resolver's second
// phase so declaration order does not matter.
type PendingSource struct {
	Target *Target
	Path   string
	Node   node.Node
}

// NotResolvedError is returned when resolved-only accessors are used on a
// target that has not been through resolution.
type NotResolvedError struct {
	Name string
}

func (e *NotResolvedError) Error() string {
	return fmt.Sprintf("target %q queried before resolution", e.Name)
}

// Target describes one build artifact.
type Target struct {
	Name string
	Kind Kind
	Env  *env.Environment

	// Public requirements propagate to every transitive dependent;
	// Private ones apply only when building this target's own sources.
	Public  Requirements
	Private Requirements

	// OutputName overrides the toolchain's default output file name.
	OutputName string

	// InstallDir is the destination directory for Install targets;
	// InstallAsDest the full destination path for InstallAs targets;
	// ArchiveOutput the archive path and ArchiveFormat "tar" or "zip".
	InstallDir    string
	InstallAsDest string
	ArchiveOutput string
	ArchiveFormat string

	Origin origin.Origin

	sources  []SourceRef
	links    []Link
	pending  []PendingSource
	objects  []*node.FileNode
	outputs  []*node.FileNode
	resolved bool

	// Languages are the source languages seen during resolution, used
	// for linker selection.
	Languages map[string]bool
}

// New creates an unresolved target of the given kind.
func New(name string, kind Kind, e *env.Environment, org origin.Origin) *Target {
	return &Target{
		Name:      name,
		Kind:      kind,
		Env:       e,
		Origin:    org,
		Languages: make(map[string]bool),
	}
}

// AddSource appends a path source.
func (t *Target) AddSource(path string) *Target {
	t.sources = append(t.sources, SourceRef{Path: path})
	return t
}

// AddSourceNode appends an already-materialized node source.
func (t *Target) AddSourceNode(n node.Node) *Target {
	t.sources = append(t.sources, SourceRef{Node: n})
	return t
}

// Sources returns the declared sources in order.
func (t *Target) Sources() []SourceRef { return t.sources }

// Link adds public dependency edges: the dependencies' public requirements
// apply here and keep propagating to this target's dependents.
func (t *Target) Link(deps ...*Target) *Target {
	for _, d := range deps {
		t.addLink(Link{Target: d})
	}
	return t
}

// LinkPrivate adds private dependency edges: the dependencies' public
// requirements apply here but stop propagating.
func (t *Target) LinkPrivate(deps ...*Target) *Target {
	for _, d := range deps {
		t.addLink(Link{Target: d, Private: true})
	}
	return t
}

func (t *Target) addLink(l Link) {
	for _, have := range t.links {
		if have.Target == l.Target {
			return
		}
	}
	t.links = append(t.links, l)
}

// Links returns the dependency edges in declaration order.
func (t *Target) Links() []Link { return t.links }

// AddPending queues a deferred source reference for the second resolution
// phase.
func (t *Target) AddPending(p PendingSource) {
	t.pending = append(t.pending, p)
}

// Pending returns the queued deferred references.
func (t *Target) Pending() []PendingSource { return t.pending }

// ClearPending marks the deferred references as replayed.
func (t *Target) ClearPending() { t.pending = nil }

// Resolved reports whether resolution populated this target's nodes.
func (t *Target) Resolved() bool { return t.resolved }

// MarkResolved transitions the target to its resolved state.
func (t *Target) MarkResolved() { t.resolved = true }

// AddObjectNode and AddOutputNode are used by the resolver while
// materializing the graph.
func (t *Target) AddObjectNode(n *node.FileNode) { t.objects = append(t.objects, n) }
func (t *Target) AddOutputNode(n *node.FileNode) { t.outputs = append(t.outputs, n) }

// ObjectNodes returns the compiled object nodes. It fails before resolution.
func (t *Target) ObjectNodes() ([]*node.FileNode, error) {
	if !t.resolved {
		return nil, &NotResolvedError{Name: t.Name}
	}
	return t.objects, nil
}

// OutputNodes returns the final output nodes. It fails before resolution.
func (t *Target) OutputNodes() ([]*node.FileNode, error) {
	if !t.resolved {
		return nil, &NotResolvedError{Name: t.Name}
	}
	return t.outputs, nil
}

// TransitiveDeps returns every reachable dependency once, depth-first with
// dependencies listed before their dependents.
func (t *Target) TransitiveDeps() []*Target {
	var out []*Target
	visited := map[string]bool{}
	var walk func(cur *Target)
	walk = func(cur *Target) {
		for _, l := range cur.links {
			if visited[l.Target.Name] {
				continue
			}
			visited[l.Target.Name] = true
			walk(l.Target)
			out = append(out, l.Target)
		}
	}
	walk(t)
	return out
}

// AllLanguages returns the languages of this target and every transitive
// dependency, for linker selection.
func (t *Target) AllLanguages() []string {
	seen := map[string]bool{}
	var out []string
	add := func(tt *Target) {
		for lang := range tt.Languages {
			if !seen[lang] {
				seen[lang] = true
				out = append(out, lang)
			}
		}
	}
	add(t)
	for _, dep := range t.TransitiveDeps() {
		add(dep)
	}
	return out
}
