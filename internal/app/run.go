package app

import (
	"context"
	"fmt"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/generator"
	"github.com/vk/ninjaplan/internal/hclloader"
	"github.com/vk/ninjaplan/internal/resolver"
)

// Run executes the main application logic: load, resolve, generate.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	// Unknown generator names fail before any work happens.
	gens := make([]generator.Generator, 0, len(a.config.Generators))
	for _, name := range a.config.Generators {
		g, ok := generator.ByName(name)
		if !ok {
			return fmt.Errorf("unknown generator %q", name)
		}
		gens = append(gens, g)
	}

	loader := hclloader.NewLoader()
	p, err := loader.Load(ctx, a.config.DescriptionPath)
	if err != nil {
		return fmt.Errorf("failed to load build description: %w", err)
	}
	p.SetLogger(a.logger)
	a.logger.Debug("Build description loaded.", "project", p.Name(), "targets", len(p.Targets()))

	if err := resolver.New(p).Resolve(ctx); err != nil {
		return fmt.Errorf("failed to resolve targets: %w", err)
	}
	a.logger.Debug("Dependency graph resolved.", "nodes", len(p.Nodes.All()))

	outputDir := a.config.OutputDir
	if outputDir == "" {
		outputDir = p.RootDir()
	}
	for _, g := range gens {
		if err := g.Generate(ctx, p, outputDir); err != nil {
			return fmt.Errorf("generator %q failed: %w", g.Name(), err)
		}
		a.logger.Info("Output generated.", "generator", g.Name(), "dir", outputDir)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
