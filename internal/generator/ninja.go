package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/node"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/subst"
)

// ruleOverrides keeps build-statement variables symbolic while a rule
// command template is expanded: "$$includes" survives expansion as the
// literal "$includes" ninja resolves per build.
var ruleOverrides = map[string]any{
	"in":          "$$in",
	"out":         "$$out",
	"includes":    "$$includes",
	"defines":     "$$defines",
	"extra_flags": "$$extra_flags",
	"ldflags":     "$$ldflags",
	"libdirs":     "$$libdirs",
	"libs":        "$$libs",
}

// builtinCommands are the rules for steps no toolchain owns.
var builtinCommands = map[string]string{
	"copy":  "cp $in $out",
	"tar":   "tar -czf $out $in",
	"zip":   "zip -q -j $out $in",
	"mkdir": "mkdir -p $out",
}

type ninjaRule struct {
	name      string
	command   string
	depfile   string
	depsStyle string
}

// Ninja writes a build.ninja file for the resolved node graph.
type Ninja struct {
	fileName string
}

// NewNinja creates the ninja generator.
func NewNinja() *Ninja {
	return &Ninja{fileName: "build.ninja"}
}

func (g *Ninja) Name() string { return "ninja" }

// Generate writes outputDir/build.ninja. Rules are emitted per
// environment and tool, so two environments never share flag settings
// even when they run the same compiler.
func (g *Ninja) Generate(ctx context.Context, p *project.Project, outputDir string) error {
	log := ctxlog.FromContext(ctx)

	rel := newRelativizer(p, outputDir)

	rules := make(map[string]*ninjaRule)
	var builds bytes.Buffer
	buildCount := 0

	for _, n := range p.Nodes.All() {
		prod := n.Producer()
		if prod == nil {
			continue
		}
		rule, err := g.ruleFor(p, prod, rules)
		if err != nil {
			return err
		}
		g.writeBuild(&builds, n, prod, rule, rel)
		buildCount++
	}

	var phonies bytes.Buffer
	if err := g.writePhonies(&phonies, p, rel); err != nil {
		return err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "# Build plan for %s. Generated file, do not edit.\n", p.Name())
	out.WriteString("ninja_required_version = 1.3\n\n")

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := rules[name]
		fmt.Fprintf(&out, "rule %s\n  command = %s\n  description = $description\n", r.name, r.command)
		if r.depfile != "" {
			fmt.Fprintf(&out, "  depfile = %s\n", r.depfile)
		}
		if r.depsStyle != "" {
			fmt.Fprintf(&out, "  deps = %s\n", r.depsStyle)
		}
		out.WriteByte('\n')
	}

	out.Write(builds.Bytes())
	out.Write(phonies.Bytes())

	if defaults := g.defaultLine(p, rel); defaults != "" {
		out.WriteString(defaults)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	target := filepath.Join(outputDir, g.fileName)
	if err := os.WriteFile(target, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", g.fileName, err)
	}
	log.Info("wrote ninja build file", "path", target, "rules", len(rules), "builds", buildCount)
	return nil
}

func (g *Ninja) ruleFor(p *project.Project, prod *node.Producer, rules map[string]*ninjaRule) (*ninjaRule, error) {
	name := ruleName(prod)
	if r, ok := rules[name]; ok {
		return r, nil
	}

	var command string
	if prod.EnvName == "" {
		cmd, ok := builtinCommands[prod.Tool]
		if !ok {
			return nil, fmt.Errorf("no builtin command for tool %q", prod.Tool)
		}
		command = cmd
	} else {
		e, ok := p.Environment(prod.EnvName)
		if !ok {
			return nil, fmt.Errorf("producer references unknown environment %q", prod.EnvName)
		}
		expanded, err := e.Subst("${"+prod.Tool+"."+prod.CommandVar+"}", ruleOverrides)
		if err != nil {
			return nil, fmt.Errorf("expanding %s.%s for environment %q: %w", prod.Tool, prod.CommandVar, prod.EnvName, err)
		}
		command = expanded
	}

	r := &ninjaRule{
		name:      name,
		command:   command,
		depfile:   prod.Depfile,
		depsStyle: prod.DepsStyle,
	}
	rules[name] = r
	return r, nil
}

func (g *Ninja) writeBuild(w *bytes.Buffer, n node.Node, prod *node.Producer, rule *ninjaRule, rel subst.Relativizer) {
	sourceSet := make(map[node.Node]bool, len(prod.Sources))
	ins := make([]string, 0, len(prod.Sources))
	for _, s := range prod.Sources {
		sourceSet[s] = true
		ins = append(ins, escapePath(rel(nodePath(s), subst.ProjectRelative)))
	}

	var implicit []string
	for _, d := range n.ExplicitDeps() {
		if !sourceSet[d] {
			implicit = append(implicit, escapePath(rel(nodePath(d), subst.ProjectRelative)))
		}
	}
	for _, d := range n.ImplicitDeps() {
		implicit = append(implicit, escapePath(rel(nodePath(d), subst.ProjectRelative)))
	}

	fmt.Fprintf(w, "build %s: %s", escapePath(rel(nodePath(n), subst.ProjectRelative)), rule.name)
	if len(ins) > 0 {
		fmt.Fprintf(w, " %s", strings.Join(ins, " "))
	}
	if len(implicit) > 0 {
		fmt.Fprintf(w, " | %s", strings.Join(implicit, " "))
	}
	if len(prod.OrderOnly) > 0 {
		oo := make([]string, 0, len(prod.OrderOnly))
		for _, d := range prod.OrderOnly {
			oo = append(oo, escapePath(rel(nodePath(d), subst.ProjectRelative)))
		}
		fmt.Fprintf(w, " || %s", strings.Join(oo, " "))
	}
	w.WriteByte('\n')

	for _, name := range prod.VarOrder {
		rendered := subst.RenderAll(prod.Vars[name], rel)
		for i, v := range rendered {
			rendered[i] = subst.EscapeDollars(v)
		}
		fmt.Fprintf(w, "  %s = %s\n", name, strings.Join(rendered, " "))
	}
	if prod.Description != "" {
		fmt.Fprintf(w, "  description = %s\n", prod.Description)
	}
	w.WriteByte('\n')
}

// writePhonies emits convenience phony targets: one per named target with
// outputs, one per alias, and one per collector directory node.
func (g *Ninja) writePhonies(w *bytes.Buffer, p *project.Project, rel subst.Relativizer) error {
	for _, t := range p.Targets() {
		if !t.Resolved() {
			continue
		}
		outs, err := t.OutputNodes()
		if err != nil || len(outs) == 0 {
			continue
		}
		if _, taken := p.Nodes.Lookup(t.Name); taken {
			continue
		}
		paths := make([]string, 0, len(outs))
		skip := false
		for _, o := range outs {
			rendered := escapePath(rel(o.Path(), subst.ProjectRelative))
			if rendered == t.Name {
				skip = true
				break
			}
			paths = append(paths, rendered)
		}
		if skip {
			continue
		}
		fmt.Fprintf(w, "build %s: phony %s\n", escapeName(t.Name), strings.Join(paths, " "))
	}

	for _, a := range p.Aliases() {
		var paths []string
		for _, m := range a.Members {
			outs, err := m.OutputNodes()
			if err != nil {
				continue
			}
			for _, o := range outs {
				paths = append(paths, escapePath(rel(o.Path(), subst.ProjectRelative)))
			}
		}
		fmt.Fprintf(w, "build %s: phony %s\n", escapeName(a.Name), strings.Join(paths, " "))
	}

	for _, n := range p.Nodes.All() {
		dir, ok := n.(*node.DirNode)
		if !ok || dir.Role() != node.DirAsTarget {
			continue
		}
		// Directories with a creating step already get a build statement.
		if dir.Producer() != nil || len(dir.Members()) == 0 {
			continue
		}
		var paths []string
		for _, m := range dir.Members() {
			paths = append(paths, escapePath(rel(nodePath(m), subst.ProjectRelative)))
		}
		fmt.Fprintf(w, "build %s: phony %s\n", escapePath(rel(dir.Path(), subst.ProjectRelative)), strings.Join(paths, " "))
	}
	return nil
}

func (g *Ninja) defaultLine(p *project.Project, rel subst.Relativizer) string {
	var paths []string
	for _, t := range p.Defaults() {
		outs, err := t.OutputNodes()
		if err != nil {
			continue
		}
		for _, o := range outs {
			paths = append(paths, escapePath(rel(o.Path(), subst.ProjectRelative)))
		}
	}
	if len(paths) == 0 {
		return ""
	}
	return "default " + strings.Join(paths, " ") + "\n"
}

func ruleName(prod *node.Producer) string {
	if prod.EnvName == "" {
		return prod.Tool
	}
	switch prod.CommandVar {
	case "objcmd", "libcmd":
		return prod.EnvName + "_" + prod.Tool
	}
	return prod.EnvName + "_" + prod.Tool + "_" + strings.TrimSuffix(prod.CommandVar, "cmd")
}

// newRelativizer maps project-relative node paths to paths valid from the
// directory the build file lives in.
func newRelativizer(p *project.Project, outputDir string) subst.Relativizer {
	prefix := "."
	if r, err := filepath.Rel(outputDir, p.RootDir()); err == nil {
		prefix = filepath.ToSlash(r)
	}
	return func(pth string, kind subst.PathKind) string {
		switch kind {
		case subst.AbsolutePath:
			return pth
		case subst.BuildRelative:
			pth = path.Join(p.BuildDir(), pth)
		}
		if prefix == "." || path.IsAbs(pth) {
			return pth
		}
		return path.Join(prefix, pth)
	}
}

func nodePath(n node.Node) string {
	switch v := n.(type) {
	case *node.FileNode:
		return v.Path()
	case *node.DirNode:
		return v.Path()
	}
	return n.ID()
}

// escapePath escapes a path for ninja: "$", space, and ":" are special.
func escapePath(s string) string {
	s = strings.ReplaceAll(s, "$", "$$")
	s = strings.ReplaceAll(s, " ", "$ ")
	s = strings.ReplaceAll(s, ":", "$:")
	return s
}

func escapeName(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "$", "$$"), " ", "$ ")
}
