package hclloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ninjaplan/internal/target"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoadFullDescription(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"build.hcl": `
project "calc" {
  build_dir = "out"
}

environment "base" {
  toolchain = "gcc"
  tool "cc" {
    flags = ["-O2", "-Wall"]
  }
}

library "math" {
  environment = "base"
  sources     = ["src/math.c"]
  public {
    include_dirs = ["include"]
  }
}

program "calc" {
  environment = "base"
  sources     = ["src/main.c"]
  link        = ["math"]
  default     = true
}
`,
	})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "calc", p.Name())
	assert.Equal(t, "out", p.BuildDir())

	e, ok := p.Environment("base")
	require.True(t, ok)
	assert.Equal(t, "gcc", e.Toolchain().Name())
	assert.Equal(t, []string{"-O2", "-Wall"}, e.Tool("cc").Flags())

	math, ok := p.Target("math")
	require.True(t, ok)
	assert.Equal(t, target.StaticLibrary, math.Kind)
	assert.Equal(t, []string{"include"}, math.Public.IncludeDirs)

	calc, ok := p.Target("calc")
	require.True(t, ok)
	require.Len(t, calc.Links(), 1)
	assert.Same(t, math, calc.Links()[0].Target)

	require.Len(t, p.Defaults(), 1)
	assert.Same(t, calc, p.Defaults()[0])
}

func TestLoadSingleFilePath(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"plan.hcl": `
program "tool" {
  sources = ["main.c"]
}
`,
	})

	p, err := NewLoader().Load(context.Background(), filepath.Join(dir, "plan.hcl"))
	require.NoError(t, err)

	tool, ok := p.Target("tool")
	require.True(t, ok)
	// No environment block: a platform default is created.
	require.NotNil(t, tool.Env)
}

func TestEnvironmentBaseClone(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"build.hcl": `
environment "fast" {
  base = "base"
  tool "cc" {
    flags = ["-O3"]
  }
}

environment "base" {
  toolchain = "gcc"
  tool "cc" {
    flags = ["-O0"]
  }
}
`,
	})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	base, ok := p.Environment("base")
	require.True(t, ok)
	fast, ok := p.Environment("fast")
	require.True(t, ok)

	assert.Equal(t, []string{"-O0"}, base.Tool("cc").Flags())
	assert.Equal(t, []string{"-O3"}, fast.Tool("cc").Flags())
	assert.Same(t, base.Toolchain(), fast.Toolchain())
}

func TestCrossFileReferences(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		// Sorted file order puts the install before the program.
		"a_install.hcl": `
install "install_app" {
  dir     = "dist/bin"
  targets = ["app"]
}
alias "all" {
  targets = ["app"]
}
`,
		"b_app.hcl": `
environment "base" {
  toolchain = "gcc"
}
program "app" {
  environment = "base"
  sources     = ["main.c"]
}
`,
	})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	inst, ok := p.Target("install_app")
	require.True(t, ok)
	require.Len(t, inst.Pending(), 1)
	app, _ := p.Target("app")
	assert.Same(t, app, inst.Pending()[0].Target)

	require.Len(t, p.Aliases(), 1)
	assert.Equal(t, "all", p.Aliases()[0].Name)
}

func TestInstallAsValidation(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"build.hcl": `
install_as "conf" {
  dest = "etc/app.conf"
}
`,
	})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of target or file")
}

func TestUnknownReferences(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
		want error
	}{
		{
			name: "unknown link target",
			hcl: `program "app" {
  sources = ["a.c"]
  link    = ["nope"]
}`,
			want: &UnknownTargetError{},
		},
		{
			name: "unknown environment",
			hcl: `program "app" {
  environment = "nope"
  sources     = ["a.c"]
}`,
			want: &UnknownEnvironmentError{},
		},
		{
			name: "unknown toolchain",
			hcl:  `environment "e" { toolchain = "tcl" }`,
			want: &UnknownToolchainError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"build.hcl": tt.hcl})
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			switch tt.want.(type) {
			case *UnknownTargetError:
				var e *UnknownTargetError
				assert.ErrorAs(t, err, &e)
			case *UnknownEnvironmentError:
				var e *UnknownEnvironmentError
				assert.ErrorAs(t, err, &e)
			case *UnknownToolchainError:
				var e *UnknownToolchainError
				assert.ErrorAs(t, err, &e)
			}
		})
	}
}

func TestUnresolvedEnvironmentBases(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"build.hcl": `
environment "a" { base = "b" }
environment "b" { base = "a" }
`,
	})

	_, err := NewLoader().Load(context.Background(), dir)
	var unresolved *UnresolvedBaseError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"a", "b"}, unresolved.Names)
}

func TestArchiveAndSharedLibrary(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"build.hcl": `
environment "base" { toolchain = "gcc" }

library "plugin" {
  environment = "base"
  kind        = "shared"
  sources     = ["plugin.c"]
}

archive "dist" {
  output  = "dist/plugin.tar.gz"
  targets = ["plugin"]
  files   = ["README.md"]
}
`,
	})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	plugin, _ := p.Target("plugin")
	assert.Equal(t, target.SharedLibrary, plugin.Kind)

	dist, _ := p.Target("dist")
	assert.Equal(t, target.Archive, dist.Kind)
	assert.Equal(t, "tar", dist.ArchiveFormat)
	require.Len(t, dist.Pending(), 2)
}
