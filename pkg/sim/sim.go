// Package sim implements the garden growth and exchange simulation.
//
// A simulation turn has three phases: daytime nutrient production, evening
// nutrient exchange between interacting plants, and overnight growth. The
// engine is deterministic and side-effect-free on its input garden: every
// run operates on a private clone.
package sim

import (
	"context"
	"fmt"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// Trace records the total garden size after each simulated turn.
type Trace []float64

// Final returns the garden size after the last turn, or 0 for an empty trace.
func (t Trace) Final() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// Simulator advances a garden by a number of turns and reports the per-turn
// size trace. Implementations must not mutate the input garden and must be
// deterministic for deterministic inputs.
type Simulator interface {
	Simulate(ctx context.Context, g *garden.Garden, turns int) (Trace, error)
}

// Run is the package-level convenience: clone, simulate, trace.
func Run(ctx context.Context, g *garden.Garden, turns int) (Trace, error) {
	return Engine{}.Simulate(ctx, g, turns)
}

// Engine is the reference Simulator.
type Engine struct{}

// Simulate clones g and advances it turn by turn. The context is checked
// between turns so long simulations stop promptly on cancellation.
func (Engine) Simulate(ctx context.Context, g *garden.Garden, turns int) (Trace, error) {
	if g == nil {
		return nil, fmt.Errorf("simulate: nil garden")
	}
	if turns < 0 {
		return nil, fmt.Errorf("simulate: negative turn count %d", turns)
	}

	work := g.Clone()
	trace := make(Trace, 0, turns)
	for i := 0; i < turns; i++ {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		runTurn(work)
		trace = append(trace, work.TotalGrowth())
	}
	return trace, nil
}

// Advance runs turns in place on g, returning the trace. Used by the
// simulate command where the caller wants the grown garden back.
func Advance(g *garden.Garden, turns int) Trace {
	trace := make(Trace, 0, turns)
	for i := 0; i < turns; i++ {
		runTurn(g)
		trace = append(trace, g.TotalGrowth())
	}
	return trace
}

func runTurn(g *garden.Garden) {
	for _, p := range g.Plants {
		produce(p)
	}
	exchange(g)
	for _, p := range g.Plants {
		grow(p)
	}
}

// produce adds each nutrient coefficient to the plant's inventory, clamped
// to reservoir capacity. Production is all-or-nothing: if any consumption
// would drive an inventory negative, the plant produces nothing this turn.
func produce(p *garden.Plant) {
	for n, coeff := range p.Variety.Coefficients {
		if p.Inventory[n]+coeff < 0 {
			return
		}
	}
	cap := p.Variety.ReservoirCapacity()
	for n, coeff := range p.Variety.Coefficients {
		next := p.Inventory[n] + coeff
		if next > cap {
			next = cap
		}
		p.Inventory[n] = next
	}
}

// grow consumes radius units of every nutrient and adds radius to size,
// but only while all reservoirs hold at least 2× radius and the plant is
// below its maximum size.
func grow(p *garden.Plant) {
	r := float64(p.Variety.Radius)
	if p.Size >= p.Variety.MaxSize() {
		return
	}
	for _, n := range garden.Nutrients {
		if p.Inventory[n] < 2*r {
			return
		}
	}
	for _, n := range garden.Nutrients {
		p.Inventory[n] -= r
	}
	p.Size += r
}
