// Package render provides visualization rendering for garden layouts.
//
// # Overview
//
// This package contains the rendering pipeline that transforms placed
// gardens into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Scaled garden plots (in [plot] subpackage)
//   - Interaction graphs (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both renderers share them.
//
//	svg := plot.RenderSVG(g, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Garden Plots
//
// The [plot] subpackage draws the garden to scale: one circle per plant,
// colored by species, with optional exchange edges between interacting
// pairs.
//
// # Interaction Graphs
//
// The [nodelink] subpackage renders the garden's exchange topology as a
// Graphviz graph. Plants appear as nodes connected by undirected edges
// wherever nutrients flow.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [plot]: github.com/verdantlabs/verdant/pkg/render/plot
// [nodelink]: github.com/verdantlabs/verdant/pkg/render/nodelink
package render
