package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/layout"
	"github.com/verdantlabs/verdant/pkg/render"
	"github.com/verdantlabs/verdant/pkg/render/nodelink"
	"github.com/verdantlabs/verdant/pkg/render/plot"
)

const (
	vizPlot  = "plot"  // spatial top-down view of the garden
	vizGraph = "graph" // node-link interaction graph

	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"

	defaultPlotScale = 40  // pixels per garden unit
	defaultPNGScale  = 2.0 // raster upscale factor
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	vizTypes []string // visualization types: "plot", "graph"
	formats  []string // output formats: "svg", "pdf", "png"
	detailed bool     // show nutrient reservoirs in graph labels
	edges    bool     // draw interaction edges in the plot view
	labels   bool     // draw variety names in the plot view
	scale    float64  // plot scale in pixels per garden unit
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var vizTypesStr, formatsStr string
	opts := renderOpts{
		scale: defaultPlotScale,
	}

	cmd := &cobra.Command{
		Use:   "render [layout]",
		Short: "Render a saved layout to SVG, PDF, or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.vizTypes = parseVizTypes(vizTypesStr)
			opts.formats = parseFormats(formatsStr)
			if err := validateVizTypes(opts.vizTypes); err != nil {
				return err
			}
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): plot (default), graph (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show nutrient reservoirs in graph labels")
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "draw interaction edges in the plot view")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw variety names in the plot view")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "plot scale in pixels per garden unit")

	return cmd
}

func (c *CLI) runRender(path string, opts *renderOpts) error {
	l, err := layout.Load(path)
	if err != nil {
		return err
	}
	g, err := l.Garden()
	if err != nil {
		return err
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(path, filepath.Ext(path))
	}
	single := len(opts.vizTypes) == 1 && len(opts.formats) == 1 && opts.output != ""

	for _, viz := range opts.vizTypes {
		for _, format := range opts.formats {
			data, err := renderOne(g, viz, format, opts)
			if err != nil {
				return err
			}

			out := opts.output
			if !single {
				out = fmt.Sprintf("%s.%s.%s", base, viz, format)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", out)
			}
			printFile(out)
		}
	}

	printSuccess("Rendered layout")
	printStats(len(g.Plants), len(g.InteractionPairs()))
	return nil
}

// renderOne produces a single visualization in a single format.
func renderOne(g *garden.Garden, viz, format string, opts *renderOpts) ([]byte, error) {
	switch viz {
	case vizGraph:
		gOpts := nodelink.Options{Detailed: opts.detailed}
		switch format {
		case formatSVG:
			return nodelink.RenderSVG(nodelink.ToDOT(g, gOpts))
		case formatPDF:
			return nodelink.RenderPDF(g, gOpts)
		case formatPNG:
			return nodelink.RenderPNG(g, gOpts, defaultPNGScale)
		}
	case vizPlot:
		var pOpts []plot.SVGOption
		if opts.scale != defaultPlotScale {
			pOpts = append(pOpts, plot.WithScale(opts.scale))
		}
		if opts.edges {
			pOpts = append(pOpts, plot.WithEdges())
		}
		if opts.labels {
			pOpts = append(pOpts, plot.WithLabels())
		}
		svg := plot.RenderSVG(g, pOpts...)
		switch format {
		case formatSVG:
			return svg, nil
		case formatPDF:
			return render.ToPDF(svg)
		case formatPNG:
			return render.ToPNG(svg, defaultPNGScale)
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown visualization %q format %q", viz, format)
}

// parseVizTypes parses the --type flag into a slice of visualization types.
// If empty, defaults to ["plot"].
func parseVizTypes(s string) []string {
	if s == "" {
		return []string{vizPlot}
	}
	return strings.Split(s, ",")
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

func validateVizTypes(types []string) error {
	for _, t := range types {
		if t != vizPlot && t != vizGraph {
			return errors.New(errors.ErrCodeInvalidInput, "unknown visualization type %q (valid: plot, graph)", t)
		}
	}
	return nil
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if f != formatSVG && f != formatPDF && f != formatPNG {
			return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (valid: svg, pdf, png)", f)
		}
	}
	return nil
}
