package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/origin"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/resolver"
	"github.com/vk/ninjaplan/internal/target"
	"github.com/vk/ninjaplan/internal/toolchain"
)

func resolved(t *testing.T, build func(p *project.Project, e *env.Environment)) *project.Project {
	t.Helper()
	p := project.New("demo", ".", "build")
	e := env.New("base", toolchain.NewGCC(), p, origin.Origin{})
	build(p, e)
	r := resolver.New(p)
	r.SetFileExists(func(string) bool { return true })
	require.NoError(t, r.Resolve(context.Background()))
	return p
}

func generate(t *testing.T, p *project.Project) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, NewNinja().Generate(context.Background(), p, dir))
	data, err := os.ReadFile(filepath.Join(dir, "build.ninja"))
	require.NoError(t, err)
	return string(data)
}

func TestNinjaProgram(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		app.Private.IncludeDirs = []string{"include"}
		app.Private.Defines = []string{"DEBUG=1"}
		p.SetDefault(app)
	})
	out := generate(t, p)

	assert.Contains(t, out, "rule base_cc\n  command = gcc $extra_flags $defines $includes -MD -MF $out.d -c -o $out $in\n  description = $description\n  depfile = $out.d\n  deps = gcc\n")
	assert.Contains(t, out, "rule base_link_prog\n  command = gcc $ldflags -o $out $in $libdirs $libs\n")
	assert.Contains(t, out, "rule mkdir\n  command = mkdir -p $out\n")
	assert.Contains(t, out, "build build/obj.app: mkdir\n")
	assert.Contains(t, out, "build build/obj.app/main.o: base_cc src/main.c || build/obj.app\n")
	assert.Contains(t, out, "  includes = -Iinclude\n")
	assert.Contains(t, out, "  defines = -DDEBUG=1\n")
	assert.Contains(t, out, "  description = CC main.c\n")
	assert.Contains(t, out, "build build/app: base_link_prog build/obj.app/main.o || build\n")
	assert.Contains(t, out, "build app: phony build/app\n")
	assert.Contains(t, out, "default build/app\n")
}

func TestNinjaStaticLibraryAndLinkDeps(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		lib := p.StaticLibrary("util", e, origin.Origin{})
		lib.AddSource("src/util.c")
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		app.Link(lib)
	})
	out := generate(t, p)

	assert.Contains(t, out, "rule base_ar\n  command = ar rcs $out $in\n")
	assert.Contains(t, out, "build build/libutil.a: base_ar build/obj.util/util.o || build\n")
	// The library is an implicit input of the link, not a $in entry.
	assert.Contains(t, out, "build build/app: base_link_prog build/obj.app/main.o | build/libutil.a || build\n")
}

func TestNinjaDeterministic(t *testing.T) {
	build := func(p *project.Project, e *env.Environment) {
		lib := p.StaticLibrary("util", e, origin.Origin{})
		lib.AddSource("src/util.c")
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		app.Link(lib)
		p.SetDefault(app)
	}
	first := generate(t, resolved(t, build))
	second := generate(t, resolved(t, build))
	assert.Equal(t, first, second)
}

func TestNinjaClonedEnvironmentsKeepSeparateRules(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		fast := e.Clone()
		fast.Tool("cc").AddFlags("-O3")

		a := p.Program("a", e, origin.Origin{})
		a.AddSource("src/a.c")
		b := p.Program("b", fast, origin.Origin{})
		b.AddSource("src/b.c")
	})
	out := generate(t, p)

	assert.Contains(t, out, "rule base_cc\n  command = gcc $extra_flags")
	assert.Contains(t, out, "rule base_2_cc\n  command = gcc -O3 $extra_flags")
	assert.Contains(t, out, "build build/obj.b/b.o: base_2_cc src/b.c || build/obj.b\n")

	// The -O3 flag must not bleed into the original environment's rule.
	for _, line := range []string{"rule base_cc\n  command = gcc -O3"} {
		assert.NotContains(t, out, line)
	}
}

func TestNinjaEscapesSpecialCharacters(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/my file.c")
	})
	out := generate(t, p)
	assert.Contains(t, out, "src/my$ file.c")
}

func TestNinjaInstallUsesCopyRule(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		inst := p.Install("install_app", "dist/bin", e, origin.Origin{})
		inst.AddPending(target.PendingSource{Target: app})
	})
	out := generate(t, p)

	assert.Contains(t, out, "rule copy\n  command = cp $in $out\n")
	assert.Contains(t, out, "build dist/bin/app: copy build/app || dist/bin\n")
}

func TestNinjaAliasPhony(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		p.AddAlias("all", origin.Origin{}, app)
	})
	out := generate(t, p)
	assert.Contains(t, out, "build all: phony build/app\n")
}

func TestNinjaErrorLeavesNoFile(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		e.Tool("cc").Set("objcmd", "$cc.cmd $no_such_var -c -o $$out $$in")
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
	})

	dir := t.TempDir()
	err := NewNinja().Generate(context.Background(), p, dir)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "build.ninja"))
	assert.True(t, os.IsNotExist(statErr))
}
