package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/layout"
	"github.com/verdantlabs/verdant/pkg/nursery"
	"github.com/verdantlabs/verdant/pkg/observability"
	"github.com/verdantlabs/verdant/pkg/search"
	"github.com/verdantlabs/verdant/pkg/sim"
)

const (
	defaultGardenWidth  = 16
	defaultGardenHeight = 10
	defaultRandomCount  = 20
	defaultLayoutFile   = "layout.json"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	config      string  // TOML config file path
	catalog     string  // JSON variety catalog path
	output      string  // layout output path
	width       float64 // garden width
	height      float64 // garden height
	seed        int64   // random catalog seed (when no catalog file)
	count       int     // random catalog size
	turns       int     // simulation horizon for scoring
	softSeconds float64 // soft time budget
	hardSeconds float64 // hard timeout
	parallel    bool    // parallel candidate evaluation
	workers     int     // worker count for parallel evaluation
	noCache     bool    // disable the sim trace cache
	redis       string  // redis address for a shared sim cache
	watch       bool    // live progress TUI
}

// planCommand creates the plan command, the main entry point for placement
// search.
func (c *CLI) planCommand() *cobra.Command {
	opts := planOpts{
		output: defaultLayoutFile,
		width:  defaultGardenWidth,
		height: defaultGardenHeight,
		count:  defaultRandomCount,
	}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Search for a plant placement that maximizes projected growth",
		Long: `Plan searches for plant placements in a bounded garden. Varieties come
from a JSON catalog file or a seeded random generator. The search builds a
starter group, replicates it across open space, and fills the remainder,
degrading its own depth parameters when a run falls behind its time budget.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file (verdant.toml)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "JSON variety catalog file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "layout output file")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "garden width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "garden height")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random catalog seed (used when no catalog file is given)")
	cmd.Flags().IntVar(&opts.count, "count", opts.count, "random catalog size")
	cmd.Flags().IntVar(&opts.turns, "turns", 0, "simulation horizon for candidate scoring")
	cmd.Flags().Float64Var(&opts.softSeconds, "soft-budget", 0, "soft time budget in seconds")
	cmd.Flags().Float64Var(&opts.hardSeconds, "hard-timeout", 0, "hard timeout in seconds")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "evaluate candidate batches in parallel")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker count for parallel evaluation")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the simulation trace cache")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address for a shared simulation cache")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show live search progress")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, opts *planOpts) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}

	varieties, source, err := loadVarieties(cfg, opts)
	if err != nil {
		return err
	}

	width, height := opts.width, opts.height
	if cfg.Garden.Width > 0 {
		width = cfg.Garden.Width
	}
	if cfg.Garden.Height > 0 {
		height = cfg.Garden.Height
	}
	if err := errors.ValidateDimensions(width, height); err != nil {
		return err
	}

	searchOpts := cfg.searchOptions()
	applyPlanFlags(&searchOpts, opts)
	searchOpts.Logger = c.Logger

	simCache, err := newCache(ctx, opts.noCache, opts.redis)
	if err != nil {
		return err
	}
	defer simCache.Close()
	searchOpts.Simulator = sim.NewCached(sim.Engine{}, simCache)

	g := garden.New(width, height)
	planner, err := search.New(g, varieties, searchOpts)
	if err != nil {
		return err
	}

	printInfo("Planning %gx%g garden with %d varieties (%s)", width, height, len(varieties), source)

	result, err := c.runSearch(ctx, planner, opts.watch)
	if err != nil {
		return err
	}

	l := layout.FromGarden(result.Garden)
	l.Turns = result.Tuning.Final.Turns
	l.Projected = result.Score
	l.Elapsed = result.Tuning.Elapsed.Seconds()
	if err := l.Save(opts.output); err != nil {
		return err
	}

	printPlanSummary(result)
	printFile(opts.output)
	printNextStep("Render it", fmt.Sprintf("verdant render %s", opts.output))
	return nil
}

// runSearch executes the planner with either a live TUI or a spinner.
func (c *CLI) runSearch(ctx context.Context, planner *search.Planner, watch bool) (*search.Result, error) {
	if watch {
		return runPlanTUI(ctx, planner)
	}

	spinner := newSpinnerWithContext(ctx, "Searching placements...")
	observability.SetSearchHooks(&spinnerHooks{spinner: spinner})
	defer observability.Reset()

	spinner.Start()
	result, err := planner.Run(ctx)
	if err != nil {
		spinner.StopWithError("Search failed")
		return nil, err
	}
	if spinner.Cancelled() {
		spinner.Stop()
		return nil, ctx.Err()
	}
	spinner.StopWithSuccess(fmt.Sprintf("Placed %d plants", result.Placed))
	return result, nil
}

// spinnerHooks keeps the spinner message in step with the search phase.
type spinnerHooks struct {
	observability.NoopSearchHooks
	spinner *Spinner
	placed  int
}

func (h *spinnerHooks) OnPhaseChange(_ context.Context, _, to string) {
	h.spinner.SetMessage(fmt.Sprintf("%s (%d placed)", to, h.placed))
}

func (h *spinnerHooks) OnPlacement(_ context.Context, _ string, _, _, _ float64) {
	h.placed++
}

// loadVarieties resolves the variety source: explicit catalog flag, config
// catalog, or the seeded random generator.
func loadVarieties(cfg *Config, opts *planOpts) ([]garden.Variety, string, error) {
	path := opts.catalog
	if path == "" {
		path = cfg.Garden.Catalog
	}
	if path != "" {
		vs, err := nursery.LoadCatalog(path)
		return vs, path, err
	}

	seed := opts.seed
	if seed == 0 {
		seed = cfg.Garden.Seed
	}
	count := opts.count
	if cfg.Garden.Count > 0 && count == defaultRandomCount {
		count = cfg.Garden.Count
	}
	return nursery.GenerateRandom(seed, count), fmt.Sprintf("seed %d", seed), nil
}

// applyPlanFlags lets explicit flags override config file values.
func applyPlanFlags(so *search.Options, opts *planOpts) {
	if opts.turns > 0 {
		so.Turns = opts.turns
	}
	if opts.softSeconds > 0 {
		so.SoftBudget = secondsToDuration(opts.softSeconds)
	}
	if opts.hardSeconds > 0 {
		so.HardTimeout = secondsToDuration(opts.hardSeconds)
	}
	if opts.parallel {
		so.Parallel = true
	}
	if opts.workers > 0 {
		so.Workers = opts.workers
	}
}

// =============================================================================
// Summary Output
// =============================================================================

// printPlanSummary prints the run outcome: placement counts, score, governor
// activity, and the per-plant analysis.
func printPlanSummary(result *search.Result) {
	printNewline()
	fmt.Println(StyleTitle.Render("Plan Summary"))
	printKeyValue("Placed", fmt.Sprintf("%d plants", result.Placed))
	printKeyValue("Starter", fmt.Sprintf("%d plants", result.StarterSize))
	printKeyValue("Replicas", fmt.Sprintf("%d copies", result.Replicas))
	printKeyValue("Score", fmt.Sprintf("%.2f", result.Score))
	printKeyValue("Elapsed", result.Tuning.Elapsed.Round(time.Millisecond).String())

	if result.Tuning.Scaled {
		printWarning("Search depth was scaled down to meet the time budget")
		printDetail("turns %d → %d, top-k %d → %d",
			result.Tuning.Original.Turns, result.Tuning.Final.Turns,
			result.Tuning.Original.HeuristicTopK, result.Tuning.Final.HeuristicTopK)
	}
	if result.Tuning.TimedOut {
		printWarning("Hard timeout reached; layout may be incomplete")
	}

	printPlantAnalysis(result.Garden)
}

// printPlantAnalysis prints the species breakdown and per-plant interaction
// partners.
func printPlantAnalysis(g *garden.Garden) {
	if len(g.Plants) == 0 {
		return
	}

	bySpecies := map[garden.Species]int{}
	for _, p := range g.Plants {
		bySpecies[p.Variety.Species]++
	}
	printNewline()
	for _, s := range garden.AllSpecies {
		if bySpecies[s] > 0 {
			printDetail("%-13s %d", string(s), bySpecies[s])
		}
	}

	printNewline()
	for _, p := range g.Plants {
		partners := g.Interacting(p)
		printDetail("%-16s r%d at (%.1f, %.1f)  %d partners",
			p.Variety.Name, p.Variety.Radius, p.Position.X, p.Position.Y, len(partners))
	}
}
