// Package hclloader reads HCL build descriptions and populates a project.
// Targets may reference each other in any order, across files: all target
// blocks are declared first and link, install, archive, and alias
// references are wired in a second pass.
package hclloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/fsutil"
	"github.com/vk/ninjaplan/internal/origin"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/target"
	"github.com/vk/ninjaplan/internal/toolchain"
)

// Extension is the suffix build description files carry.
const Extension = ".hcl"

// Loader parses build descriptions into a populated project.
type Loader struct {
	goos string
}

// NewLoader creates a loader for the host platform.
func NewLoader() *Loader {
	return &Loader{goos: runtime.GOOS}
}

type parsedFile struct {
	path string
	root fileRoot
}

// Load parses path, which is either one description file or a directory
// searched recursively for *.hcl files, and returns the populated project.
func (l *Loader) Load(ctx context.Context, path string) (*project.Project, error) {
	log := ctxlog.FromContext(ctx)

	files, rootDir, err := l.describe(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s build descriptions under %s", Extension, path)
	}
	log.Debug("discovered build descriptions", "count", len(files), "root", rootDir)

	parser := hclparse.NewParser()
	parsed := make([]parsedFile, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}
		parsed = append(parsed, parsedFile{path: file, root: root})
	}

	p, err := l.newProject(parsed, rootDir)
	if err != nil {
		return nil, err
	}
	envs, err := l.buildEnvironments(p, parsed)
	if err != nil {
		return nil, err
	}
	if err := l.buildTargets(ctx, p, parsed, envs); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Loader) describe(path string) (files []string, rootDir string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("build description %s: %w", path, err)
	}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, Extension)
		return files, path, err
	}
	return []string{path}, filepath.Dir(path), nil
}

// newProject creates the project from the first `project` block, or from
// the root directory name when no file declares one.
func (l *Loader) newProject(parsed []parsedFile, rootDir string) (*project.Project, error) {
	name := ""
	buildDir := "build"
	for _, f := range parsed {
		pb := f.root.Project
		if pb == nil {
			continue
		}
		if name != "" {
			return nil, fmt.Errorf("%s: duplicate project block (project %q already declared)", f.path, name)
		}
		name = pb.Name
		if pb.BuildDir != "" {
			buildDir = pb.BuildDir
		}
	}
	if name == "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			abs = rootDir
		}
		name = filepath.Base(abs)
	}
	return project.New(name, rootDir, buildDir), nil
}

// buildEnvironments creates all declared environments. Blocks with a
// `base` clone another environment, so creation loops until every base is
// available; what never resolves is unknown or cyclic.
func (l *Loader) buildEnvironments(p *project.Project, parsed []parsedFile) (map[string]*env.Environment, error) {
	type envDecl struct {
		block *environmentBlock
		file  string
	}
	var pending []envDecl
	for _, f := range parsed {
		for _, b := range f.root.Environments {
			pending = append(pending, envDecl{block: b, file: f.path})
		}
	}

	envs := make(map[string]*env.Environment)
	for len(pending) > 0 {
		progress := false
		var next []envDecl
		for _, d := range pending {
			b := d.block
			if b.Base != "" {
				base, ok := envs[b.Base]
				if !ok {
					next = append(next, d)
					continue
				}
				e := base.CloneAs(b.Name)
				if err := l.applyEnvBlock(e, b, d.file); err != nil {
					return nil, err
				}
				envs[b.Name] = e
				progress = true
				continue
			}

			tc := toolchain.Default(l.goos)
			if b.Toolchain != "" {
				named, ok := toolchain.ByName(b.Toolchain)
				if !ok {
					return nil, &UnknownToolchainError{Name: b.Toolchain, Environment: b.Name}
				}
				tc = named
			}
			e := env.New(b.Name, tc, p, origin.At(d.file, 0))
			if err := l.applyEnvBlock(e, b, d.file); err != nil {
				return nil, err
			}
			envs[b.Name] = e
			progress = true
		}
		if !progress {
			names := make([]string, 0, len(next))
			for _, d := range next {
				names = append(names, d.block.Name)
			}
			sort.Strings(names)
			return nil, &UnresolvedBaseError{Names: names}
		}
		pending = next
	}

	for _, e := range envs {
		e.Set("build_dir", p.BuildDir())
	}
	return envs, nil
}

func (l *Loader) applyEnvBlock(e *env.Environment, b *environmentBlock, file string) error {
	if b.Variant != "" {
		e.Set("variant", b.Variant)
	}
	for _, tb := range b.Tools {
		tool := e.AddTool(tb.Name)
		attrs, diags := tb.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("%s: tool %q in environment %q: %w", file, tb.Name, b.Name, diags)
		}
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val, diags := attrs[name].Expr.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("%s: tool %q attribute %q: %w", file, tb.Name, name, diags)
			}
			goVal, err := attrValue(val)
			if err != nil {
				return fmt.Errorf("%s: tool %q attribute %q: %w", file, tb.Name, name, err)
			}
			tool.Set(name, goVal)
		}
	}
	return nil
}

// attrValue converts a cty value into the string or string-list form tool
// configurations hold.
func attrValue(v cty.Value) (any, error) {
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		list, err := convert.Convert(v, cty.List(cty.String))
		if err != nil {
			return nil, err
		}
		out := []string{}
		for it := list.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ev.AsString())
		}
		return out, nil
	case ty == cty.Number || ty == cty.Bool:
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, err
		}
		return s.AsString(), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

// pendingLinks collects by-name references for the wiring pass.
type pendingLinks struct {
	target      *target.Target
	link        []string
	linkPrivate []string
}

func (l *Loader) buildTargets(ctx context.Context, p *project.Project, parsed []parsedFile, envs map[string]*env.Environment) error {
	log := ctxlog.FromContext(ctx)

	pickEnv := func(name, targetName string) (*env.Environment, error) {
		if name != "" {
			e, ok := envs[name]
			if !ok {
				return nil, &UnknownEnvironmentError{Name: name, Target: targetName}
			}
			return e, nil
		}
		return l.defaultEnv(p, parsed, envs)
	}

	var links []pendingLinks

	for _, f := range parsed {
		org := origin.At(f.path, 0)

		for _, b := range f.root.Libraries {
			e, err := pickEnv(b.Environment, b.Name)
			if err != nil {
				return err
			}
			kind := target.StaticLibrary
			switch b.Kind {
			case "", "static":
			case "shared":
				kind = target.SharedLibrary
			default:
				return fmt.Errorf("%s: library %q: unknown kind %q", f.path, b.Name, b.Kind)
			}
			t := p.NewTarget(b.Name, kind, e, org)
			t.OutputName = b.OutputName
			addSources(t, b.Sources)
			applyRequirements(&t.Public, b.Public)
			applyRequirements(&t.Private, b.Private)
			links = append(links, pendingLinks{target: t, link: b.Link, linkPrivate: b.LinkPrivate})
		}

		for _, b := range f.root.Programs {
			e, err := pickEnv(b.Environment, b.Name)
			if err != nil {
				return err
			}
			t := p.Program(b.Name, e, org)
			t.OutputName = b.OutputName
			addSources(t, b.Sources)
			applyRequirements(&t.Private, b.Private)
			links = append(links, pendingLinks{target: t, link: b.Link, linkPrivate: b.LinkPrivate})
			if b.Default {
				p.SetDefault(t)
			}
		}

		for _, b := range f.root.ObjectLibraries {
			e, err := pickEnv(b.Environment, b.Name)
			if err != nil {
				return err
			}
			t := p.Object(b.Name, e, org)
			addSources(t, b.Sources)
			applyRequirements(&t.Private, b.Private)
			links = append(links, pendingLinks{target: t, link: b.Link})
		}

		for _, b := range f.root.Interfaces {
			t := p.Interface(b.Name, org)
			applyRequirements(&t.Public, b.Public)
			links = append(links, pendingLinks{target: t, link: b.Link})
		}
	}

	// Packaging targets also declare before wiring so installs can chain.
	for _, f := range parsed {
		org := origin.At(f.path, 0)

		for _, b := range f.root.Installs {
			e, _ := envFor(b.Environment, envs)
			t := p.Install(b.Name, b.Dir, e, org)
			links = append(links, pendingLinks{target: t, link: b.Targets})
			for _, file := range b.Files {
				t.AddPending(target.PendingSource{Path: file})
			}
		}

		for _, b := range f.root.InstallAs {
			if (b.Target == "") == (b.File == "") {
				return fmt.Errorf("%s: install_as %q needs exactly one of target or file", f.path, b.Name)
			}
			e, _ := envFor(b.Environment, envs)
			t := p.InstallAs(b.Name, b.Dest, e, org)
			if b.Target != "" {
				links = append(links, pendingLinks{target: t, link: []string{b.Target}})
			} else {
				t.AddPending(target.PendingSource{Path: b.File})
			}
		}

		for _, b := range f.root.Archives {
			format := b.Format
			if format == "" {
				format = "tar"
			}
			if format != "tar" && format != "zip" {
				return fmt.Errorf("%s: archive %q: unknown format %q", f.path, b.Name, format)
			}
			e, _ := envFor(b.Environment, envs)
			t := p.Archive(b.Name, b.Output, format, e, org)
			links = append(links, pendingLinks{target: t, link: b.Targets})
			for _, file := range b.Files {
				t.AddPending(target.PendingSource{Path: file})
			}
		}
	}

	// Wiring pass: every named reference now has a declared target.
	for _, pl := range links {
		for _, name := range pl.link {
			dep, ok := p.Target(name)
			if !ok {
				return &UnknownTargetError{Name: name, Referrer: pl.target.Name}
			}
			switch pl.target.Kind {
			case target.Install, target.InstallAs, target.Archive:
				pl.target.AddPending(target.PendingSource{Target: dep})
			default:
				pl.target.Link(dep)
			}
		}
		for _, name := range pl.linkPrivate {
			dep, ok := p.Target(name)
			if !ok {
				return &UnknownTargetError{Name: name, Referrer: pl.target.Name}
			}
			pl.target.LinkPrivate(dep)
		}
	}

	for _, f := range parsed {
		org := origin.At(f.path, 0)
		for _, b := range f.root.Aliases {
			members := make([]*target.Target, 0, len(b.Targets))
			for _, name := range b.Targets {
				m, ok := p.Target(name)
				if !ok {
					return &UnknownTargetError{Name: name, Referrer: b.Name}
				}
				members = append(members, m)
			}
			p.AddAlias(b.Name, org, members...)
		}
	}

	log.Debug("build description loaded",
		"targets", len(p.Targets()), "environments", len(envs), "aliases", len(p.Aliases()))
	return nil
}

// defaultEnv picks the environment for targets that name none: the first
// declared environment, or a platform-default one created on demand.
func (l *Loader) defaultEnv(p *project.Project, parsed []parsedFile, envs map[string]*env.Environment) (*env.Environment, error) {
	for _, f := range parsed {
		for _, b := range f.root.Environments {
			return envs[b.Name], nil
		}
	}
	if e, ok := envs["default"]; ok {
		return e, nil
	}
	e := env.New("default", toolchain.Default(l.goos), p, origin.Origin{})
	e.Set("build_dir", p.BuildDir())
	envs["default"] = e
	return e, nil
}

func envFor(name string, envs map[string]*env.Environment) (*env.Environment, bool) {
	e, ok := envs[name]
	return e, ok
}

func addSources(t *target.Target, sources []string) {
	for _, s := range sources {
		t.AddSource(s)
	}
}

func applyRequirements(dst *target.Requirements, b *requirementsBlock) {
	if b == nil {
		return
	}
	dst.IncludeDirs = append(dst.IncludeDirs, b.IncludeDirs...)
	dst.Defines = append(dst.Defines, b.Defines...)
	dst.CompileFlags = append(dst.CompileFlags, b.CompileFlags...)
	dst.LinkFlags = append(dst.LinkFlags, b.LinkFlags...)
	dst.LinkLibs = append(dst.LinkLibs, b.LinkLibs...)
	dst.LibDirs = append(dst.LibDirs, b.LibDirs...)
}
