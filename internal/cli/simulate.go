package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/layout"
	"github.com/verdantlabs/verdant/pkg/sim"
)

const defaultSimTurns = 100

// simulateCommand creates the simulate command for replaying growth over a
// saved layout.
func (c *CLI) simulateCommand() *cobra.Command {
	var turns int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate [layout]",
		Short: "Run the growth engine over a saved layout",
		Long: `Simulate replays the nutrient exchange and growth rules over a saved
layout for a fixed number of turns and reports the growth history and
per-plant outcomes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd.Context(), args[0], turns, verbose)
		},
	}

	cmd.Flags().IntVarP(&turns, "turns", "t", defaultSimTurns, "number of turns to simulate")
	cmd.Flags().BoolVar(&verbose, "per-plant", false, "show per-plant outcomes")

	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, path string, turns int, perPlant bool) error {
	l, err := layout.Load(path)
	if err != nil {
		return err
	}
	g, err := l.Garden()
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	trace, err := sim.Run(ctx, g, turns)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Simulated %d turns over %d plants", turns, len(g.Plants)))

	printSimSummary(trace, turns)
	if perPlant {
		printPerPlant(g)
	}
	return nil
}

// printSimSummary prints growth milestones from the trace.
func printSimSummary(trace sim.Trace, turns int) {
	printNewline()
	fmt.Println(StyleTitle.Render("Growth Summary"))
	printKeyValue("Final", fmt.Sprintf("%.2f", trace.Final()))

	for _, turn := range []int{1, 5, 10, 25, 50, 100} {
		if turn <= len(trace) {
			printKeyValue(fmt.Sprintf("Turn %d", turn), fmt.Sprintf("%.2f", trace[turn-1]))
		}
	}
	if turns >= 2 && len(trace) >= 2 {
		delta := trace.Final() - trace[len(trace)/2-1]
		printKeyValue("Late gain", fmt.Sprintf("%.2f", delta))
	}
}

// printPerPlant prints each plant's final size and saturation.
func printPerPlant(g *garden.Garden) {
	printNewline()
	for _, p := range g.Plants {
		partners := g.Interacting(p)
		printDetail("%-16s %-13s size %6.2f (%3.0f%%)  %d partners",
			p.Variety.Name, string(p.Variety.Species), p.Size, p.GrowthPercent(), len(partners))
	}
}
