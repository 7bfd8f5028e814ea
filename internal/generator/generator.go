// Package generator writes build files for a resolved project. Each
// generator assembles its whole output in memory and writes it in one
// step, so a generation error never leaves a truncated file behind.
package generator

import (
	"context"

	"github.com/vk/ninjaplan/internal/project"
)

// Generator produces build files for a resolved project in outputDir.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p *project.Project, outputDir string) error
}

// ByName returns the named generator. Known names: "ninja",
// "compile_commands", "mermaid".
func ByName(name string) (Generator, bool) {
	switch name {
	case "ninja":
		return NewNinja(), true
	case "compile_commands":
		return NewCompileCommands(), true
	case "mermaid":
		return NewMermaid(), true
	}
	return nil, false
}
