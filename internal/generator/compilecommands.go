package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/node"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/subst"
)

// compileEntry is one record of the clang compilation database format.
type compileEntry struct {
	Directory string `json:"directory"`
	File      string `json:"file"`
	Command   string `json:"command"`
	Output    string `json:"output"`
}

// CompileCommands writes a compile_commands.json compilation database
// covering every compile step, for clangd and similar tools.
type CompileCommands struct{}

// NewCompileCommands creates the compilation database generator.
func NewCompileCommands() *CompileCommands {
	return &CompileCommands{}
}

func (g *CompileCommands) Name() string { return "compile_commands" }

func (g *CompileCommands) Generate(ctx context.Context, p *project.Project, outputDir string) error {
	log := ctxlog.FromContext(ctx)

	dir, err := filepath.Abs(p.RootDir())
	if err != nil {
		dir = p.RootDir()
	}

	entries := make([]compileEntry, 0)
	for _, t := range p.Targets() {
		if !t.Resolved() {
			continue
		}
		objs, err := t.ObjectNodes()
		if err != nil {
			continue
		}
		for _, obj := range objs {
			entry, ok, err := g.entryFor(p, obj, dir)
			if err != nil {
				return err
			}
			if ok {
				entries = append(entries, entry)
			}
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compilation database: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	target := filepath.Join(outputDir, "compile_commands.json")
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing compile_commands.json: %w", err)
	}
	log.Info("wrote compilation database", "path", target, "entries", len(entries))
	return nil
}

func (g *CompileCommands) entryFor(p *project.Project, obj *node.FileNode, dir string) (compileEntry, bool, error) {
	prod := obj.Producer()
	if prod == nil || prod.EnvName == "" || len(prod.Sources) != 1 {
		return compileEntry{}, false, nil
	}
	src, ok := prod.Sources[0].(*node.FileNode)
	if !ok {
		return compileEntry{}, false, nil
	}
	e, ok := p.Environment(prod.EnvName)
	if !ok {
		return compileEntry{}, false, fmt.Errorf("object %q references unknown environment %q", obj.Path(), prod.EnvName)
	}

	overrides := map[string]any{
		"in":          src.Path(),
		"out":         obj.Path(),
		"includes":    "",
		"defines":     "",
		"extra_flags": "",
		"ldflags":     "",
		"libdirs":     "",
		"libs":        "",
	}
	for name, tokens := range prod.Vars {
		overrides[name] = subst.ShellCommand(tokens, subst.ShellBash)
	}

	command, err := e.Subst("${"+prod.Tool+"."+prod.CommandVar+"}", overrides)
	if err != nil {
		return compileEntry{}, false, fmt.Errorf("expanding command for %q: %w", obj.Path(), err)
	}
	// Command templates carry literal $in/$out through expansion; put the
	// real paths in for the database.
	command = strings.ReplaceAll(command, "$out", obj.Path())
	command = strings.ReplaceAll(command, "$in", src.Path())
	// Expansion of empty variables leaves double spaces behind.
	command = strings.Join(strings.Fields(command), " ")

	return compileEntry{
		Directory: dir,
		File:      src.Path(),
		Command:   command,
		Output:    obj.Path(),
	}, true, nil
}
