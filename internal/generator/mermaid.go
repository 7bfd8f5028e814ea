package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/ninjaplan/internal/ctxlog"
	"github.com/vk/ninjaplan/internal/project"
	"github.com/vk/ninjaplan/internal/target"
)

// Mermaid writes the target dependency graph as a mermaid flowchart,
// renderable in markdown viewers and the mermaid live editor.
type Mermaid struct {
	direction string
	fileName  string
}

// NewMermaid creates the mermaid generator with left-to-right layout.
func NewMermaid() *Mermaid {
	return &Mermaid{direction: "LR", fileName: "deps.mmd"}
}

func (g *Mermaid) Name() string { return "mermaid" }

func (g *Mermaid) Generate(ctx context.Context, p *project.Project, outputDir string) error {
	log := ctxlog.FromContext(ctx)

	var out bytes.Buffer
	fmt.Fprintf(&out, "---\ntitle: %s dependencies\n---\n", p.Name())
	fmt.Fprintf(&out, "flowchart %s\n", g.direction)

	targets := p.Targets()
	if len(targets) == 0 {
		out.WriteString("  empty[no targets]\n")
	}
	for _, t := range targets {
		fmt.Fprintf(&out, "  %s\n", mermaidNode(t))
	}
	for _, t := range targets {
		for _, l := range t.Links() {
			edge := "-->"
			if l.Private {
				edge = "-.->"
			}
			fmt.Fprintf(&out, "  %s %s %s\n", mermaidID(l.Target.Name), edge, mermaidID(t.Name))
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outputDir, g.fileName)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", g.fileName, err)
	}
	log.Info("wrote dependency diagram", "path", path, "targets", len(targets))
	return nil
}

// mermaidNode picks a node shape by target kind: stadium for programs,
// rectangle for libraries, hexagon for interfaces, parallelogram for
// packaging steps.
func mermaidNode(t *target.Target) string {
	id := mermaidID(t.Name)
	switch t.Kind {
	case target.Program:
		return fmt.Sprintf("%s([%q])", id, t.Name)
	case target.Interface:
		return fmt.Sprintf("%s{{%q}}", id, t.Name)
	case target.Install, target.InstallAs, target.Archive:
		return fmt.Sprintf("%s[/%q/]", id, t.Name)
	}
	return fmt.Sprintf("%s[%q]", id, t.Name)
}

func mermaidID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
