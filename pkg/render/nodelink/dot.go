// Package nodelink renders the garden's exchange topology as a Graphviz
// node-link graph: one node per plant, one undirected edge per interacting
// pair.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/render"
)

// Options configures interaction graph rendering.
type Options struct {
	// Detailed includes size and nutrient inventories in node labels.
	// When false, only the variety name and position are shown.
	Detailed bool
}

// speciesFill maps each species to its node fill color, loosely matching
// the nutrient it produces.
var speciesFill = map[garden.Species]string{
	garden.SpeciesRhododendron: "lightpink",
	garden.SpeciesGeranium:     "palegreen",
	garden.SpeciesBegonia:      "lightblue",
}

// ToDOT converts a garden to Graphviz DOT format. The resulting DOT string
// can be rendered with [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Edges are undirected because nutrient exchange is mutual; node fill
// encodes the species.
func ToDOT(g *garden.Garden, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph garden {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=12];\n")
	buf.WriteString("\n")

	for _, p := range g.Plants {
		label := fmtLabel(p, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%s, pos=\"%.2f,%.2f\"];\n",
			nodeID(p), label, speciesFill[p.Variety.Species], p.Position.X, p.Position.Y)
	}

	buf.WriteString("\n")
	for _, pair := range g.InteractionPairs() {
		fmt.Fprintf(&buf, "  %q -- %q;\n", nodeID(pair[0]), nodeID(pair[1]))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID keeps node names readable while staying unique: the variety name
// plus a short prefix of the plant's UUID.
func nodeID(p *garden.Plant) string {
	id := p.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return p.Variety.Name + "-" + id
}

func fmtLabel(p *garden.Plant, detailed bool) string {
	base := fmt.Sprintf("%s\n(%.1f, %.1f)", p.Variety.Name, p.Position.X, p.Position.Y)
	if !detailed {
		return base
	}

	parts := []string{fmt.Sprintf("size: %.1f", p.Size)}
	for _, n := range garden.Nutrients {
		parts = append(parts, fmt.Sprintf("%s: %.1f", n, p.Inventory[n]))
	}
	return base + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF renders a garden's interaction graph straight to PDF.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
func RenderPDF(g *garden.Garden, opts Options) ([]byte, error) {
	svg, err := RenderSVG(ToDOT(g, opts))
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a garden's interaction graph straight to PNG at the
// given scale factor.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
func RenderPNG(g *garden.Garden, opts Options, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ToDOT(g, opts))
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
