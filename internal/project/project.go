// Package project ties the build description together: it owns the node
// registry, the registered environments, the declared targets and the
// default set, and computes the dependency order resolution runs in.
package project

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/node"
	"github.com/vk/ninjaplan/internal/origin"
	"github.com/vk/ninjaplan/internal/target"
)

// DependencyCycleError reports a cycle between targets. Cycle holds the
// full path, with the repeated target at both ends.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Alias is a named phony grouping of targets.
type Alias struct {
	Name    string
	Members []*target.Target
	Origin  origin.Origin
}

// Project is the root object a build description populates.
type Project struct {
	name     string
	rootDir  string
	buildDir string

	Nodes *node.Registry

	envs     []*env.Environment
	envNames map[string]bool

	targets     map[string]*target.Target
	targetOrder []*target.Target

	aliases    []*Alias
	aliasNames map[string]bool
	defaults   []*target.Target

	log *slog.Logger
}

// New creates an empty project. rootDir is where source paths are
// anchored, buildDir where generated files land.
func New(name, rootDir, buildDir string) *Project {
	return &Project{
		name:       name,
		rootDir:    rootDir,
		buildDir:   buildDir,
		Nodes:      node.NewRegistry(),
		envNames:   make(map[string]bool),
		targets:    make(map[string]*target.Target),
		aliasNames: make(map[string]bool),
		log:        slog.Default(),
	}
}

func (p *Project) Name() string     { return p.name }
func (p *Project) RootDir() string  { return p.rootDir }
func (p *Project) BuildDir() string { return p.buildDir }

// SetLogger replaces the logger used for declaration-time warnings.
func (p *Project) SetLogger(l *slog.Logger) { p.log = l }

// RegisterEnvironment records an environment under a project-unique name
// and returns the name actually assigned. Environment names key generated
// build rules, so collisions are renamed rather than rejected.
func (p *Project) RegisterEnvironment(e *env.Environment) string {
	name := uniquify(e.Name(), func(n string) bool { return p.envNames[n] })
	if name != e.Name() {
		p.log.Warn("duplicate environment name, renaming",
			"declared", e.Name(), "assigned", name)
		e.SetName(name)
	}
	p.envNames[name] = true
	p.envs = append(p.envs, e)
	return name
}

// Environments returns all registered environments in registration order.
func (p *Project) Environments() []*env.Environment { return p.envs }

// Environment looks up a registered environment by name.
func (p *Project) Environment(name string) (*env.Environment, bool) {
	for _, e := range p.envs {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// NewTarget declares a target. A name already in use is deterministically
// renamed with a numeric suffix and a warning, so repeated declarations
// (common with generated install steps) never abort the build description.
func (p *Project) NewTarget(name string, kind target.Kind, e *env.Environment, org origin.Origin) *target.Target {
	assigned := uniquify(name, func(n string) bool { _, ok := p.targets[n]; return ok })
	if assigned != name {
		p.log.Warn("duplicate target name, renaming",
			"declared", name, "assigned", assigned, "origin", org.String())
	}
	t := target.New(assigned, kind, e, org)
	p.targets[assigned] = t
	p.targetOrder = append(p.targetOrder, t)
	return t
}

// StaticLibrary declares a static library target.
func (p *Project) StaticLibrary(name string, e *env.Environment, org origin.Origin) *target.Target {
	return p.NewTarget(name, target.StaticLibrary, e, org)
}

// SharedLibrary declares a shared library target.
func (p *Project) SharedLibrary(name string, e *env.Environment, org origin.Origin) *target.Target {
	return p.NewTarget(name, target.SharedLibrary, e, org)
}

// Program declares an executable target.
func (p *Project) Program(name string, e *env.Environment, org origin.Origin) *target.Target {
	return p.NewTarget(name, target.Program, e, org)
}

// Interface declares a header-only target carrying requirements but no
// sources or outputs.
func (p *Project) Interface(name string, org origin.Origin) *target.Target {
	return p.NewTarget(name, target.Interface, nil, org)
}

// Object declares a compile-only target.
func (p *Project) Object(name string, e *env.Environment, org origin.Origin) *target.Target {
	return p.NewTarget(name, target.Object, e, org)
}

// Install declares a target that copies its sources into dir.
func (p *Project) Install(name, dir string, e *env.Environment, org origin.Origin) *target.Target {
	t := p.NewTarget(name, target.Install, e, org)
	t.InstallDir = dir
	return t
}

// InstallAs declares a target that copies one source to dest.
func (p *Project) InstallAs(name, dest string, e *env.Environment, org origin.Origin) *target.Target {
	t := p.NewTarget(name, target.InstallAs, e, org)
	t.InstallAsDest = dest
	return t
}

// Archive declares a target that bundles its sources into output using
// format ("tar" or "zip").
func (p *Project) Archive(name, output, format string, e *env.Environment, org origin.Origin) *target.Target {
	t := p.NewTarget(name, target.Archive, e, org)
	t.ArchiveOutput = output
	t.ArchiveFormat = format
	return t
}

// Target looks up a declared target by its assigned name.
func (p *Project) Target(name string) (*target.Target, bool) {
	t, ok := p.targets[name]
	return t, ok
}

// Targets returns all targets in declaration order.
func (p *Project) Targets() []*target.Target { return p.targetOrder }

// AddAlias declares a phony alias over the given members. The name is
// reserved in the node registry as an AliasNode, so an alias can never
// shadow a target, another alias, or a file path already in the graph.
func (p *Project) AddAlias(name string, org origin.Origin, members ...*target.Target) *Alias {
	assigned := uniquify(name, func(n string) bool {
		if p.aliasNames[n] {
			return true
		}
		if _, taken := p.targets[n]; taken {
			return true
		}
		_, taken := p.Nodes.Lookup(n)
		return taken
	})
	if assigned != name {
		p.log.Warn("duplicate alias name, renaming",
			"declared", name, "assigned", assigned, "origin", org.String())
	}
	if _, err := p.Nodes.Alias(assigned, org); err != nil {
		p.log.Warn("alias name could not be registered", "alias", assigned, "error", err)
	}
	a := &Alias{Name: assigned, Members: members, Origin: org}
	p.aliasNames[assigned] = true
	p.aliases = append(p.aliases, a)
	return a
}

// Aliases returns declared aliases in declaration order.
func (p *Project) Aliases() []*Alias { return p.aliases }

// SetDefault appends targets to the default build set.
func (p *Project) SetDefault(targets ...*target.Target) {
	p.defaults = append(p.defaults, targets...)
}

// Defaults returns the default build set in declaration order.
func (p *Project) Defaults() []*target.Target { return p.defaults }

// SortedTargets returns every target in an order where each target's link
// dependencies come before the target itself. Declaration order is
// preserved among independent targets. A cycle aborts with
// DependencyCycleError carrying the full cycle path.
func (p *Project) SortedTargets() ([]*target.Target, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[*target.Target]int, len(p.targetOrder))
	var order []*target.Target
	var stack []string

	var visit func(t *target.Target) error
	visit = func(t *target.Target) error {
		switch state[t] {
		case visited:
			return nil
		case visiting:
			// Trim the stack to where the cycle starts so the error
			// shows only the loop itself.
			cycle := append(cycleTail(stack, t.Name), t.Name)
			return &DependencyCycleError{Cycle: cycle}
		}
		state[t] = visiting
		stack = append(stack, t.Name)
		for _, l := range t.Links() {
			if err := visit(l.Target); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[t] = visited
		order = append(order, t)
		return nil
	}

	for _, t := range p.targetOrder {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleTail(stack []string, name string) []string {
	for i, s := range stack {
		if s == name {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}

func uniquify(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
