package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/origin"
	"github.com/vk/ninjaplan/internal/project"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"ninja", "compile_commands", "mermaid"} {
		g, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, g.Name())
	}
	_, ok := ByName("xcode")
	assert.False(t, ok)
}

func TestCompileCommands(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		app.Private.IncludeDirs = []string{"include"}
	})

	dir := t.TempDir()
	require.NoError(t, NewCompileCommands().Generate(context.Background(), p, dir))

	data, err := os.ReadFile(filepath.Join(dir, "compile_commands.json"))
	require.NoError(t, err)

	var entries []compileEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "src/main.c", e.File)
	assert.Equal(t, "build/obj.app/main.o", e.Output)
	assert.Contains(t, e.Command, "gcc")
	assert.Contains(t, e.Command, "-Iinclude")
	assert.Contains(t, e.Command, "-c -o build/obj.app/main.o src/main.c")
	assert.NotContains(t, e.Command, "$in")
	assert.NotContains(t, e.Command, "$includes")
}

func TestCompileCommandsSkipsNonCompileSteps(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		lib := p.StaticLibrary("util", e, origin.Origin{})
		lib.AddSource("src/util.c")
	})

	dir := t.TempDir()
	require.NoError(t, NewCompileCommands().Generate(context.Background(), p, dir))

	data, err := os.ReadFile(filepath.Join(dir, "compile_commands.json"))
	require.NoError(t, err)

	var entries []compileEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	// One compile, no entry for the archive step.
	require.Len(t, entries, 1)
	assert.Equal(t, "src/util.c", entries[0].File)
}

func TestMermaid(t *testing.T) {
	p := resolved(t, func(p *project.Project, e *env.Environment) {
		lib := p.StaticLibrary("util", e, origin.Origin{})
		lib.AddSource("src/util.c")
		hidden := p.StaticLibrary("impl", e, origin.Origin{})
		hidden.AddSource("src/impl.c")

		app := p.Program("app", e, origin.Origin{})
		app.AddSource("src/main.c")
		app.Link(lib)
		app.LinkPrivate(hidden)
	})

	dir := t.TempDir()
	require.NoError(t, NewMermaid().Generate(context.Background(), p, dir))

	data, err := os.ReadFile(filepath.Join(dir, "deps.mmd"))
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "title: demo dependencies")
	assert.Contains(t, out, "flowchart LR")
	assert.Contains(t, out, `app(["app"])`)
	assert.Contains(t, out, `util["util"]`)
	assert.Contains(t, out, "util --> app")
	assert.Contains(t, out, "impl -.-> app")
}
