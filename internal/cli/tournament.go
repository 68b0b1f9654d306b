package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/pkg/cache"
	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/layout"
	"github.com/verdantlabs/verdant/pkg/nursery"
	"github.com/verdantlabs/verdant/pkg/search"
	"github.com/verdantlabs/verdant/pkg/sim"
	"github.com/verdantlabs/verdant/pkg/store"
)

// tournamentOpts holds the command-line flags for the tournament command.
type tournamentOpts struct {
	config      string  // TOML config shared by every entry
	width       float64 // garden width
	height      float64 // garden height
	softSeconds float64 // per-entry soft budget
	hardSeconds float64 // per-entry hard timeout
	mongoURI    string  // MongoDB connection string for result persistence
	redis       string  // redis address for a shared sim cache
	keepGoing   bool    // continue past failed entries
}

// tournamentCommand creates the tournament command, which plans every
// catalog in a directory and ranks the results.
func (c *CLI) tournamentCommand() *cobra.Command {
	opts := tournamentOpts{
		width:  defaultGardenWidth,
		height: defaultGardenHeight,
	}

	cmd := &cobra.Command{
		Use:   "tournament [dir]",
		Short: "Plan every catalog in a directory and rank the results",
		Long: `Tournament runs the placement search once per catalog file in the given
directory, under the same garden dimensions and time budgets, and ranks the
entries by projected growth. Results can be persisted to MongoDB and a
shared Redis cache lets a fleet of runners reuse simulation traces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTournament(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file applied to every entry")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "garden width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "garden height")
	cmd.Flags().Float64Var(&opts.softSeconds, "soft-budget", 0, "per-entry soft budget in seconds")
	cmd.Flags().Float64Var(&opts.hardSeconds, "hard-timeout", 0, "per-entry hard timeout in seconds")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for result persistence")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address for a shared simulation cache")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "continue past failed entries")

	return cmd
}

func (c *CLI) runTournament(ctx context.Context, dir string, opts *tournamentOpts) error {
	catalogs, err := findCatalogs(dir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}

	st, err := c.newStore(ctx, opts.mongoURI)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	simCache, err := newCache(ctx, false, opts.redis)
	if err != nil {
		return err
	}
	defer simCache.Close()

	printInfo("Running %d entries in %gx%g gardens", len(catalogs), opts.width, opts.height)

	var runs []store.Run
	for _, path := range catalogs {
		run, err := c.runEntry(ctx, path, cfg, opts, simCache)
		if err != nil {
			if opts.keepGoing {
				printError("%s: %v", filepath.Base(path), err)
				continue
			}
			return err
		}
		if err := st.Save(ctx, run); err != nil {
			return err
		}
		runs = append(runs, *run)
		printSuccess("%-24s score %8.2f  %2d plants  %5.1fs", run.Name, run.Score, run.Placed, run.Elapsed)
	}

	printRanking(runs)
	return nil
}

// runEntry plans a single catalog under the shared settings.
func (c *CLI) runEntry(ctx context.Context, path string, cfg *Config, opts *tournamentOpts, simCache cache.Cache) (*store.Run, error) {
	varieties, err := nursery.LoadCatalog(path)
	if err != nil {
		return nil, err
	}

	searchOpts := cfg.searchOptions()
	if opts.softSeconds > 0 {
		searchOpts.SoftBudget = secondsToDuration(opts.softSeconds)
	}
	if opts.hardSeconds > 0 {
		searchOpts.HardTimeout = secondsToDuration(opts.hardSeconds)
	}
	searchOpts.Logger = c.Logger
	searchOpts.Simulator = sim.NewCached(sim.Engine{}, simCache)

	g := garden.New(opts.width, opts.height)
	planner, err := search.New(g, varieties, searchOpts)
	if err != nil {
		return nil, err
	}

	result, err := planner.Run(ctx)
	if err != nil {
		return nil, err
	}

	l := layout.FromGarden(result.Garden)
	l.Turns = result.Tuning.Final.Turns
	l.Projected = result.Score
	l.Elapsed = result.Tuning.Elapsed.Seconds()

	return &store.Run{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Catalog:  path,
		Layout:   *l,
		Score:    result.Score,
		Placed:   result.Placed,
		Replicas: result.Replicas,
		Elapsed:  result.Tuning.Elapsed.Seconds(),
		Scaled:   result.Tuning.Scaled,
		TimedOut: result.Tuning.TimedOut,
	}, nil
}

// newStore selects the result store backend. Without a Mongo URI results
// live in memory for the duration of the run.
func (c *CLI) newStore(ctx context.Context, mongoURI string) (store.Store, error) {
	if mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
}

// findCatalogs lists the JSON catalog files in dir, sorted by name.
func findCatalogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog directory %s", dir)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no catalog files in %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

// printRanking prints the entries ordered by score.
func printRanking(runs []store.Run) {
	if len(runs) == 0 {
		return
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Score > runs[j].Score })

	printNewline()
	fmt.Println(StyleTitle.Render("Ranking"))
	for i, r := range runs {
		marker := "  "
		if i == 0 {
			marker = StyleSuccess.Render("★ ")
		}
		fmt.Printf("%s%2d. %-24s %s\n", marker, i+1, r.Name,
			StyleNumber.Render(fmt.Sprintf("%.2f", r.Score)))
	}
}
