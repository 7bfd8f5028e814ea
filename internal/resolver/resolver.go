// Package resolver turns declared targets into a concrete node graph. It
// runs in two phases: first every target gets object and output nodes in
// dependency order, then pending source references (installs, archives)
// are replayed against the outputs the first phase produced, so
// declaration order between producers and consumers never matters.
package resolver

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/node"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/subst"
	"github.com/vk/ninjaplan/internal/target"
)

type objectKey struct {
	source string
	hash   string
}

// Resolver resolves one project. Resolving an already-resolved project is
// a no-op, so Resolve is safe to call more than once.
type Resolver struct {
	project *project.Project

	// objects caches one object node per (source, compile settings) pair
	// so the same file compiled with identical flags is shared between
	// targets instead of compiled twice.
	objects map[objectKey]*node.FileNode

	// fileExists is swappable for tests.
	fileExists func(string) bool
}

// New creates a resolver for the project.
func New(p *project.Project) *Resolver {
	r := &Resolver{
		project: p,
		objects: make(map[objectKey]*node.FileNode),
	}
	r.fileExists = func(rel string) bool {
		full := rel
		if !filepath.IsAbs(full) {
			full = filepath.Join(p.RootDir(), filepath.FromSlash(rel))
		}
		_, err := os.Stat(full)
		return err == nil
	}
	return r
}

// SetFileExists overrides on-disk source checking.
func (r *Resolver) SetFileExists(fn func(string) bool) { r.fileExists = fn }

// Resolve processes every target: dependencies first, then pending source
// references once all outputs exist.
func (r *Resolver) Resolve(ctx context.Context) error {
	order, err := r.project.SortedTargets()
	if err != nil {
		return err
	}
	for _, t := range order {
		if t.Resolved() {
			continue
		}
		if err := r.resolveTarget(ctx, t); err != nil {
			return err
		}
	}
	visiting := make(map[*target.Target]bool)
	for _, t := range order {
		if len(t.Pending()) > 0 {
			if err := r.resolvePending(ctx, t, visiting, nil); err != nil {
				return err
			}
		}
	}
	r.populateAliasNodes()
	return nil
}

// populateAliasNodes fills each declared alias's node with the output
// nodes its member targets resolved to.
func (r *Resolver) populateAliasNodes() {
	for _, a := range r.project.Aliases() {
		n, ok := r.project.Nodes.Lookup(a.Name)
		if !ok {
			continue
		}
		an, ok := n.(*node.AliasNode)
		if !ok {
			continue
		}
		for _, m := range a.Members {
			outs, err := m.OutputNodes()
			if err != nil {
				continue
			}
			for _, o := range outs {
				an.AddMember(o)
			}
		}
	}
}

func (r *Resolver) resolveTarget(ctx context.Context, t *target.Target) error {
	log := ctxlog.FromContext(ctx)

	switch t.Kind {
	case target.Interface:
		t.MarkResolved()
		return nil
	case target.Install, target.InstallAs, target.Archive:
		// Handled in the pending phase.
		return nil
	}

	e := t.Env
	if e == nil {
		return &NoEnvironmentError{Target: t.Name, Kind: string(t.Kind)}
	}
	tc := e.Toolchain()

	effective := target.Effective(t, tc.SeparatedArgFlags())
	for _, f := range tc.CompileFlagsForKind(string(t.Kind)) {
		effective.CompileFlags = appendUnique(effective.CompileFlags, f)
	}

	for _, ref := range t.Sources() {
		src, err := r.sourceFile(t, ref)
		if err != nil {
			return err
		}
		if src == nil {
			continue
		}
		obj, err := r.objectNode(t, src, effective, e)
		if err != nil {
			return err
		}
		t.AddObjectNode(obj)
	}

	t.MarkResolved()
	objs, _ := t.ObjectNodes()

	if len(objs) == 0 {
		if kindConcrete(t.Kind) {
			log.Warn("target has no sources, no output will be generated", "target", t.Name)
		}
		return nil
	}

	switch t.Kind {
	case target.Object:
		for _, o := range objs {
			t.AddOutputNode(o)
		}
		return nil
	case target.StaticLibrary:
		return r.staticLibraryOutput(t, e, objs)
	case target.SharedLibrary:
		return r.linkedOutput(t, e, objs, effective, "sharedcmd", sharedName(tc, t))
	case target.Program:
		return r.linkedOutput(t, e, objs, effective, "progcmd", programName(tc, t))
	}
	return nil
}

// outputFile registers an output node, rejecting paths a previous step
// already produces so no link or copy step is silently replaced.
func (r *Resolver) outputFile(t *target.Target, p string) (*node.FileNode, error) {
	out, err := r.project.Nodes.File(p, t.Origin)
	if err != nil {
		return nil, err
	}
	if out.Producer() != nil {
		return nil, &OutputConflictError{Path: out.Path(), Target: t.Name}
	}
	return out, nil
}

// dirStep returns the step creating an output's directory, used as an
// order-only prerequisite: the directory must exist before the output is
// written, but its timestamp never dirties the output.
func (r *Resolver) dirStep(t *target.Target, outPath string) ([]node.Node, error) {
	dir := path.Dir(outPath)
	if dir == "." || dir == "/" {
		return nil, nil
	}
	dn, err := r.project.Nodes.Dir(dir, node.DirAsTarget, t.Origin)
	if err != nil {
		return nil, err
	}
	if dn.Producer() == nil {
		dn.SetProducer(&node.Producer{
			Tool:        "mkdir",
			CommandVar:  "mkdircmd",
			Description: "MKDIR " + dir,
		})
	}
	return []node.Node{dn}, nil
}

// sourceFile materializes one source reference as a file node, checking
// that sources nothing produces actually exist on disk.
func (r *Resolver) sourceFile(t *target.Target, ref target.SourceRef) (*node.FileNode, error) {
	var fn *node.FileNode
	if ref.Node != nil {
		f, ok := ref.Node.(*node.FileNode)
		if !ok {
			return nil, nil
		}
		fn = f
	} else {
		f, err := r.project.Nodes.File(ref.Path, t.Origin)
		if err != nil {
			return nil, err
		}
		fn = f
	}
	if fn.Producer() == nil && !r.fileExists(fn.Path()) {
		return nil, &MissingSourceError{Path: fn.Path(), Target: t.Name}
	}
	return fn, nil
}

func (r *Resolver) objectNode(t *target.Target, src *node.FileNode, effective target.Requirements, e *env.Environment) (*node.FileNode, error) {
	tc := e.Toolchain()
	suffix := path.Ext(src.Path())
	handler, ok := tc.SourceHandler(suffix)
	if !ok {
		return nil, &ToolMissingError{Suffix: suffix, Target: t.Name}
	}
	if !e.HasTool(handler.Tool) {
		return nil, &ToolMissingError{Suffix: suffix, Tool: handler.Tool, Target: t.Name}
	}
	t.Languages[handler.Language] = true

	key := objectKey{source: src.Path(), hash: effective.CompileHash()}
	if obj, hit := r.objects[key]; hit {
		return obj, nil
	}

	objSuffix := handler.ObjectSuffix
	if objSuffix == "" {
		objSuffix = tc.ObjectSuffix()
	}
	stem := strings.TrimSuffix(path.Base(src.Path()), suffix)
	// The "obj." prefix keeps the object directory from colliding with an
	// output file of the same name.
	objPath := path.Join(r.project.BuildDir(), "obj."+t.Name, stem+objSuffix)

	obj, err := r.outputFile(t, objPath)
	if err != nil {
		return nil, err
	}
	obj.Depend(src)
	orderOnly, err := r.dirStep(t, objPath)
	if err != nil {
		return nil, err
	}

	p := &node.Producer{
		EnvName:     e.Name(),
		Tool:        handler.Tool,
		CommandVar:  handler.CommandVar,
		Language:    handler.Language,
		Sources:     []node.Node{src},
		OrderOnly:   orderOnly,
		Depfile:     handler.Depfile,
		DepsStyle:   handler.DepsStyle,
		Description: strings.ToUpper(handler.Tool) + " " + path.Base(src.Path()),
	}
	px := tc.Prefixes()
	p.SetVar("includes", pathTokens(px.Include, effective.IncludeDirs))
	p.SetVar("defines", textTokens(px.Define, effective.Defines))
	p.SetVar("extra_flags", textTokens("", effective.CompileFlags))
	obj.SetProducer(p)

	r.objects[key] = obj
	return obj, nil
}

func (r *Resolver) staticLibraryOutput(t *target.Target, e *env.Environment, objs []*node.FileNode) error {
	tc := e.Toolchain()
	name := t.OutputName
	if name == "" {
		name = tc.StaticLibraryName(t.Name)
	}
	outPath := path.Join(r.project.BuildDir(), name)
	out, err := r.outputFile(t, outPath)
	if err != nil {
		return err
	}
	for _, o := range objs {
		out.Depend(o)
	}
	orderOnly, err := r.dirStep(t, outPath)
	if err != nil {
		return err
	}
	out.SetProducer(&node.Producer{
		EnvName:     e.Name(),
		Tool:        tc.ArchiverTool(),
		CommandVar:  "libcmd",
		Sources:     fileNodes(objs),
		OrderOnly:   orderOnly,
		Description: "AR " + name,
	})
	t.AddOutputNode(out)
	return nil
}

func (r *Resolver) linkedOutput(t *target.Target, e *env.Environment, objs []*node.FileNode, effective target.Requirements, commandVar, name string) error {
	tc := e.Toolchain()
	outPath := path.Join(r.project.BuildDir(), name)
	out, err := r.outputFile(t, outPath)
	if err != nil {
		return err
	}
	for _, o := range objs {
		out.Depend(o)
	}
	// Relinking is needed whenever a dependency library changes.
	for _, dep := range t.TransitiveDeps() {
		if !dep.Resolved() {
			continue
		}
		depOuts, err := dep.OutputNodes()
		if err != nil {
			continue
		}
		for _, d := range depOuts {
			out.Depend(d)
		}
	}

	orderOnly, err := r.dirStep(t, outPath)
	if err != nil {
		return err
	}
	p := &node.Producer{
		EnvName:     e.Name(),
		Tool:        tc.LinkerTool(t.AllLanguages()),
		CommandVar:  commandVar,
		Language:    linkLanguage(t),
		Sources:     fileNodes(objs),
		OrderOnly:   orderOnly,
		Description: "LINK " + name,
	}
	px := tc.Prefixes()
	p.SetVar("ldflags", textTokens("", effective.LinkFlags))
	p.SetVar("libdirs", pathTokens(px.LibDir, effective.LibDirs))
	p.SetVar("libs", textTokens(px.Lib, effective.LinkLibs))
	out.SetProducer(p)
	t.AddOutputNode(out)
	return nil
}

// resolvePending replays install, install_as, and archive source
// references now that output nodes exist. Source targets with their own
// pending references are resolved first, so installs can chain. Pending
// references bypass the link graph, so cycles among them are detected
// here with the visiting set and fail like any other dependency cycle.
func (r *Resolver) resolvePending(ctx context.Context, t *target.Target, visiting map[*target.Target]bool, trail []string) error {
	pending := t.Pending()
	if len(pending) == 0 {
		return nil
	}
	if visiting[t] {
		return &project.DependencyCycleError{Cycle: append(cycleStart(trail, t.Name), t.Name)}
	}
	visiting[t] = true
	trail = append(trail, t.Name)
	for _, p := range pending {
		if p.Target != nil && len(p.Target.Pending()) > 0 {
			if err := r.resolvePending(ctx, p.Target, visiting, trail); err != nil {
				return err
			}
		}
	}
	delete(visiting, t)

	var sources []*node.FileNode
	for _, p := range pending {
		switch {
		case p.Target != nil:
			outs, err := p.Target.OutputNodes()
			if err != nil {
				return err
			}
			sources = append(sources, outs...)
		case p.Node != nil:
			if f, ok := p.Node.(*node.FileNode); ok {
				sources = append(sources, f)
			}
		case p.Path != "":
			f, err := r.project.Nodes.File(p.Path, t.Origin)
			if err != nil {
				return err
			}
			if f.Producer() == nil && !r.fileExists(f.Path()) {
				return &MissingSourceError{Path: f.Path(), Target: t.Name}
			}
			sources = append(sources, f)
		}
	}

	switch t.Kind {
	case target.Install:
		for _, src := range sources {
			if err := r.copyNode(t, src, path.Join(t.InstallDir, path.Base(src.Path()))); err != nil {
				return err
			}
		}
	case target.InstallAs:
		if len(sources) != 1 {
			return &InstallArityError{Target: t.Name, Count: len(sources)}
		}
		if err := r.copyNode(t, sources[0], t.InstallAsDest); err != nil {
			return err
		}
	case target.Archive:
		if err := r.archiveNode(t, sources); err != nil {
			return err
		}
	}

	t.ClearPending()
	t.MarkResolved()
	return nil
}

func (r *Resolver) copyNode(t *target.Target, src *node.FileNode, dest string) error {
	out, err := r.outputFile(t, dest)
	if err != nil {
		return err
	}
	out.Depend(src)
	orderOnly, err := r.dirStep(t, dest)
	if err != nil {
		return err
	}
	out.SetProducer(&node.Producer{
		Tool:        "copy",
		CommandVar:  "copycmd",
		Sources:     []node.Node{src},
		OrderOnly:   orderOnly,
		Description: "COPY " + path.Base(dest),
	})
	t.AddOutputNode(out)
	return nil
}

func (r *Resolver) archiveNode(t *target.Target, sources []*node.FileNode) error {
	out, err := r.outputFile(t, t.ArchiveOutput)
	if err != nil {
		return err
	}
	tool := t.ArchiveFormat
	if tool == "" {
		tool = "tar"
	}
	srcs := make([]node.Node, 0, len(sources))
	for _, s := range sources {
		out.Depend(s)
		srcs = append(srcs, s)
	}
	orderOnly, err := r.dirStep(t, t.ArchiveOutput)
	if err != nil {
		return err
	}
	out.SetProducer(&node.Producer{
		Tool:        tool,
		CommandVar:  "archivecmd",
		Sources:     srcs,
		OrderOnly:   orderOnly,
		Description: strings.ToUpper(tool) + " " + path.Base(t.ArchiveOutput),
	})
	t.AddOutputNode(out)
	return nil
}

func kindConcrete(k target.Kind) bool {
	switch k {
	case target.StaticLibrary, target.SharedLibrary, target.Program, target.Object:
		return true
	}
	return false
}

func linkLanguage(t *target.Target) string {
	if t.Languages["cxx"] || t.Languages["objcxx"] {
		return "cxx"
	}
	return "c"
}

func sharedName(tc env.Toolchain, t *target.Target) string {
	if t.OutputName != "" {
		return t.OutputName
	}
	return tc.SharedLibraryName(t.Name)
}

func programName(tc env.Toolchain, t *target.Target) string {
	if t.OutputName != "" {
		return t.OutputName
	}
	return tc.ProgramName(t.Name)
}

func pathTokens(prefix string, paths []string) []subst.Token {
	out := make([]subst.Token, 0, len(paths))
	for _, p := range paths {
		out = append(out, subst.PathToken{Prefix: prefix, Path: p, Kind: subst.ProjectRelative})
	}
	return out
}

func textTokens(prefix string, values []string) []subst.Token {
	out := make([]subst.Token, 0, len(values))
	for _, v := range values {
		out = append(out, subst.TextToken(prefix+v))
	}
	return out
}

func fileNodes(objs []*node.FileNode) []node.Node {
	out := make([]node.Node, 0, len(objs))
	for _, o := range objs {
		out = append(out, o)
	}
	return out
}

// cycleStart trims the trail to where the repeated target first appears,
// so the reported path is only the loop itself.
func cycleStart(trail []string, name string) []string {
	for i, s := range trail {
		if s == name {
			return append([]string(nil), trail[i:]...)
		}
	}
	return append([]string(nil), trail...)
}

func appendUnique(dst []string, v string) []string {
	for _, have := range dst {
		if have == v {
			return dst
		}
	}
	return append(dst, v)
}
