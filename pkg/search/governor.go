package search

import (
	"context"
	"math"
	"time"

	"github.com/verdantlabs/verdant/pkg/observability"
)

// windowSize bounds the rolling iteration-time window.
const windowSize = 10

// Coverage thresholds for estimating remaining iterations. Placements get
// harder to fit as the garden fills, so fewer of the remaining varieties
// will actually land.
const (
	coverageLow  = 0.30
	coverageHigh = 0.60
)

// governor watches wall-clock spend and scales the four depth/breadth
// parameters to keep the run inside its soft budget, flagging a hard stop
// when the absolute timeout nears. It owns all tuning state for one run
// and is never shared across runs.
type governor struct {
	clock    func() time.Time
	start    time.Time
	soft     time.Duration
	hard     time.Duration
	margin   time.Duration
	interval int
	minScale float64

	window     []time.Duration
	iterations int

	baseline Params
	current  Params
	scale    float64
	scaled   bool
	timedOut bool
}

func newGovernor(opts *Options) *governor {
	base := Params{
		Turns:            opts.Turns,
		AdaptiveTurnsMin: opts.AdaptiveTurnsMin,
		RefineTurns:      opts.RefineTurns,
		HeuristicTopK:    opts.HeuristicTopK,
	}
	return &governor{
		clock:    opts.Clock,
		start:    opts.Clock(),
		soft:     opts.SoftBudget,
		hard:     opts.HardTimeout,
		margin:   opts.TimeoutMargin,
		interval: opts.CheckInterval,
		minScale: opts.MinScale,
		baseline: base,
		current:  base,
		scale:    1.0,
	}
}

// Params returns the currently active depth parameters.
func (gov *governor) Params() Params { return gov.current }

// Elapsed returns wall-clock time since search start.
func (gov *governor) Elapsed() time.Duration { return gov.clock().Sub(gov.start) }

// TimedOut reports whether the hard-timeout flag is set, setting it first
// if the remaining budget has dropped below the safety margin. Phases
// check this once per iteration and exit their loops cleanly.
func (gov *governor) TimedOut(ctx context.Context) bool {
	if gov.timedOut {
		return true
	}
	if gov.hard-gov.Elapsed() < gov.margin {
		gov.timedOut = true
		observability.Search().OnDeadline(ctx, gov.Elapsed())
	}
	return gov.timedOut
}

// Observe records one iteration's wall-clock duration and reports whether
// this iteration is due for a budget check.
func (gov *governor) Observe(d time.Duration) bool {
	gov.window = append(gov.window, d)
	if len(gov.window) > windowSize {
		gov.window = gov.window[1:]
	}
	gov.iterations++
	return gov.iterations%gov.interval == 0
}

func (gov *governor) avgIterTime() time.Duration {
	if len(gov.window) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range gov.window {
		sum += d
	}
	return sum / time.Duration(len(gov.window))
}

// remainingIterations discounts the unplaced-variety count by coverage.
func remainingIterations(coverage float64, unplaced int) float64 {
	switch {
	case coverage < coverageLow:
		return float64(unplaced)
	case coverage <= coverageHigh:
		return 0.7 * float64(unplaced)
	default:
		return 0.5 * float64(unplaced)
	}
}

// Check projects total completion time and rescales parameters. Scaling is
// recomputed from the original baselines each time, so repeated checks
// never compound. Returns true when the active parameters changed.
func (gov *governor) Check(ctx context.Context, coverage float64, unplaced int) bool {
	elapsed := gov.Elapsed()
	projected := elapsed + time.Duration(float64(gov.avgIterTime())*remainingIterations(coverage, unplaced))

	switch {
	case projected > time.Duration(1.1*float64(gov.soft)):
		newScale := clamp(0.9*float64(gov.soft)/float64(projected), gov.minScale, 1.0)
		if newScale >= gov.scale {
			return false
		}
		gov.scale = newScale
		gov.scaled = true
	case projected < time.Duration(0.7*float64(gov.soft)) && gov.scaled:
		// Pace recovered: restore halfway toward the baseline, never past it.
		gov.scale = math.Min(1.0, gov.scale+(1.0-gov.scale)/2)
		if gov.scale > 0.99 {
			gov.scale = 1.0
			gov.scaled = false
		}
	default:
		return false
	}

	gov.current = Params{
		Turns:            scaleFloor(gov.baseline.Turns, gov.scale, floorTurns),
		AdaptiveTurnsMin: scaleFloor(gov.baseline.AdaptiveTurnsMin, gov.scale, floorAdaptiveMin),
		RefineTurns:      scaleFloor(gov.baseline.RefineTurns, gov.scale, floorRefineTurns),
		HeuristicTopK:    scaleFloor(gov.baseline.HeuristicTopK, gov.scale, floorHeuristicTop),
	}
	observability.Search().OnBudgetAdjust(ctx, gov.scale, gov.current.Turns, gov.current.HeuristicTopK)
	return true
}

// scaleFloor applies scale to the baseline value with an absolute floor.
func scaleFloor(base int, scale float64, floor int) int {
	v := int(float64(base) * scale)
	if v < floor {
		v = floor
	}
	if v > base {
		v = base
	}
	return v
}

// Report summarizes governor activity for the result interface.
func (gov *governor) Report() TuningReport {
	return TuningReport{
		Original: gov.baseline,
		Final:    gov.current,
		Scaled:   gov.scaled,
		TimedOut: gov.timedOut,
		Elapsed:  gov.Elapsed(),
	}
}
