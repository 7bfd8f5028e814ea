// Package env holds the mutable build configuration: per-tool variable
// namespaces plus cross-tool variables, grouped into named environments
// that substitution expands against. Environments deep-copy on clone and
// every clone registers with the owning project, because two environments
// with different values must never share generated build rules.
package env

import (
	"sort"

	"github.com/vk/ninjaplan/internal/origin"
	"github.com/vk/ninjaplan/internal/subst"
)

// Registrar is the part of a project an environment registers with. It
// returns the unique name the project assigned, which generators use to
// key per-environment rules.
type Registrar interface {
	RegisterEnvironment(e *Environment) string
}

// Environment is a named bag of tool namespaces and cross-tool variables.
type Environment struct {
	name      string
	tools     map[string]*ToolConfig
	toolOrder []string
	vars      map[string]any
	toolchain Toolchain
	registrar Registrar
	origin    origin.Origin
}

// New creates an environment, applies the toolchain's defaults, and
// registers it with the registrar. reg may be nil in tests.
func New(name string, tc Toolchain, reg Registrar, org origin.Origin) *Environment {
	e := &Environment{
		name:  name,
		tools: make(map[string]*ToolConfig),
		vars: map[string]any{
			"build_dir": "build",
			"variant":   "default",
		},
		toolchain: tc,
		registrar: reg,
		origin:    org,
	}
	if tc != nil {
		tc.Setup(e)
	}
	if reg != nil {
		e.name = reg.RegisterEnvironment(e)
	}
	return e
}

// Name returns the project-unique environment name.
func (e *Environment) Name() string { return e.name }

// SetName is called by the registrar when it has to uniquify the name.
func (e *Environment) SetName(name string) { e.name = name }

// Origin returns where the environment was declared.
func (e *Environment) Origin() origin.Origin { return e.origin }

// Toolchain returns the originating toolchain, which clones share.
func (e *Environment) Toolchain() Toolchain { return e.toolchain }

// AddTool returns the named tool namespace, creating it if needed.
func (e *Environment) AddTool(name string) *ToolConfig {
	if t, ok := e.tools[name]; ok {
		return t
	}
	t := NewToolConfig(name)
	e.tools[name] = t
	e.toolOrder = append(e.toolOrder, name)
	return t
}

// Tool returns the named tool namespace, or nil when absent.
func (e *Environment) Tool(name string) *ToolConfig {
	return e.tools[name]
}

// HasTool reports whether the named tool is configured.
func (e *Environment) HasTool(name string) bool {
	_, ok := e.tools[name]
	return ok
}

// ToolNames returns the configured tool names in declaration order.
func (e *Environment) ToolNames() []string {
	return append([]string(nil), e.toolOrder...)
}

// SortedToolNames returns tool names ordered by name, for deterministic
// generator output.
func (e *Environment) SortedToolNames() []string {
	names := e.ToolNames()
	sort.Strings(names)
	return names
}

// Set stores a cross-tool variable.
func (e *Environment) Set(key string, value any) {
	e.vars[key] = value
}

// Get returns a cross-tool variable.
func (e *Environment) Get(key string) (any, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// GetString returns a cross-tool scalar variable, or "" when unset.
func (e *Environment) GetString(key string) string {
	if s, ok := e.vars[key].(string); ok {
		return s
	}
	return ""
}

// Namespace builds the merged substitution namespace: cross-tool variables
// at the top, each tool nested under its name.
func (e *Environment) Namespace() *subst.Namespace {
	data := make(map[string]any, len(e.vars)+len(e.tools))
	for k, v := range e.vars {
		data[k] = v
	}
	for name, tool := range e.tools {
		data[name] = subst.NewNamespace(tool.namespaceData())
	}
	return subst.NewNamespace(data)
}

// Subst expands a template against this environment's namespace, with
// call-site overrides layered on top, and joins the result into a string.
func (e *Environment) Subst(template string, overrides map[string]any) (string, error) {
	return subst.Expand(template, e.namespaceWith(overrides))
}

// SubstTokens expands a template to discrete tokens for per-token escaping.
func (e *Environment) SubstTokens(template string, overrides map[string]any) ([]subst.Token, error) {
	return subst.ExpandTokens(template, e.namespaceWith(overrides))
}

func (e *Environment) namespaceWith(overrides map[string]any) *subst.Namespace {
	ns := e.Namespace()
	if len(overrides) > 0 {
		ns = ns.Layer(overrides)
	}
	return ns
}

// Clone deep-copies the environment: every tool namespace and variable is
// copied by value, the toolchain reference is shared, and the clone
// registers itself with the owning project so it gets its own build rules.
func (e *Environment) Clone() *Environment {
	return e.cloneNamed(e.name, 2)
}

// CloneAs deep-copies the environment under a new declared name.
func (e *Environment) CloneAs(name string) *Environment {
	return e.cloneNamed(name, 2)
}

func (e *Environment) cloneNamed(name string, skip int) *Environment {
	c := &Environment{
		name:      name,
		tools:     make(map[string]*ToolConfig, len(e.tools)),
		toolOrder: append([]string(nil), e.toolOrder...),
		vars:      make(map[string]any, len(e.vars)),
		toolchain: e.toolchain,
		registrar: e.registrar,
		origin:    origin.Capture(skip),
	}
	for name, tool := range e.tools {
		c.tools[name] = tool.Clone()
	}
	for k, v := range e.vars {
		switch val := v.(type) {
		case []string:
			c.vars[k] = append([]string(nil), val...)
		default:
			c.vars[k] = v
		}
	}
	if c.registrar != nil {
		c.name = c.registrar.RegisterEnvironment(c)
	}
	return c
}
