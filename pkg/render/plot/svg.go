// Package plot draws a placed garden to scale as SVG: one circle per
// plant, colored by species, with optional exchange edges.
package plot

import (
	"bytes"
	"fmt"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// Species palette. Fill is the plant body, stroke its outline.
var (
	speciesFill = map[garden.Species]string{
		garden.SpeciesRhododendron: "#f4a6b8",
		garden.SpeciesGeranium:     "#a8d8a8",
		garden.SpeciesBegonia:      "#a6c8f4",
	}
	speciesStroke = map[garden.Species]string{
		garden.SpeciesRhododendron: "#c25b77",
		garden.SpeciesGeranium:     "#4e8f4e",
		garden.SpeciesBegonia:      "#4e74b0",
	}
)

// SVGOption configures garden plot rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale     float64
	showEdges bool
	labels    bool
}

// WithScale sets the pixels-per-garden-unit factor (default 40).
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithEdges draws a line between every interacting pair.
func WithEdges() SVGOption { return func(r *svgRenderer) { r.showEdges = true } }

// WithLabels writes each plant's variety name at its center.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws the garden to scale. The garden's y axis points up, so
// plot coordinates are flipped against SVG's screen-down convention.
func RenderSVG(g *garden.Garden, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 40}
	for _, opt := range opts {
		opt(&r)
	}

	w := g.Width * r.scale
	h := g.Height * r.scale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="%.0f" height="%.0f" fill="#f7f5ef" stroke="#b0a990"/>`+"\n", w, h)

	if r.showEdges {
		for _, pair := range g.InteractionPairs() {
			x1, y1 := r.point(g, pair[0].Position)
			x2, y2 := r.point(g, pair[1].Position)
			fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#999" stroke-dasharray="4 3"/>`+"\n",
				x1, y1, x2, y2)
		}
	}

	for _, p := range g.Plants {
		cx, cy := r.point(g, p.Position)
		fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
			cx, cy, float64(p.Variety.Radius)*r.scale,
			speciesFill[p.Variety.Species], speciesStroke[p.Variety.Species])
		if r.labels {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-size="%.0f" fill="#333">%s</text>`+"\n",
				cx, cy, r.scale*0.3, p.Variety.Name)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) point(g *garden.Garden, pos garden.Position) (float64, float64) {
	return pos.X * r.scale, (g.Height - pos.Y) * r.scale
}
