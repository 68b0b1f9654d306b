package search

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verdantlabs/verdant/pkg/sim"
)

// Default search parameters. These are the baselines the governor scales
// down from when a run falls behind its time budget.
const (
	// DefaultTurns is the simulation horizon for candidate scoring. The
	// horizon decays as the garden fills (see adaptiveTurns).
	DefaultTurns = 100

	// DefaultAdaptiveTurnsMin is the simulation horizon floor for
	// late-stage placements.
	DefaultAdaptiveTurnsMin = 40

	// DefaultAdaptiveTurnsAlpha shapes the horizon decay curve. Values
	// below 1 decay slowly early and faster later.
	DefaultAdaptiveTurnsAlpha = 0.7

	// DefaultAreaPower is the exponent of the sub-quadratic area law used
	// to normalize scores, area = π × r^p.
	DefaultAreaPower = 1.5

	// DefaultShortTermWeight and DefaultLongTermWeight blend early growth
	// (turns 1-5) against sustained growth (turns 6 onward).
	DefaultShortTermWeight = 0.2
	DefaultLongTermWeight  = 1.0

	// DefaultMaxCandidates caps the candidate positions per iteration.
	DefaultMaxCandidates = 50

	// DefaultDedupTolerance collapses candidate positions closer than
	// this distance.
	DefaultDedupTolerance = 0.5

	// DefaultHeuristicTopK is the number of grouped candidates that go on
	// to simulation-backed scoring.
	DefaultHeuristicTopK = 32

	// DefaultRefineTopK and DefaultRefineTurns drive the final deep
	// re-evaluation of the best simulation-scored candidates.
	DefaultRefineTopK  = 4
	DefaultRefineTurns = 500

	// DefaultEpsilon is the improvement threshold below which the greedy
	// loop stops. Slightly negative to tolerate scoring noise.
	DefaultEpsilon = -10.0

	// DefaultAngleSamples is the number of tangency angles sampled around
	// each placed plant during candidate generation.
	DefaultAngleSamples = 12

	// DefaultMaxAnchorPairs bounds the plant pairs considered for circle
	// intersection candidates.
	DefaultMaxAnchorPairs = 20

	// Governor defaults.
	DefaultSoftBudget    = 60 * time.Second
	DefaultHardTimeout   = 90 * time.Second
	DefaultCheckInterval = 5
	DefaultMinScale      = 0.5
	DefaultTimeoutMargin = 5 * time.Second

	// Parallel evaluation defaults.
	DefaultWorkers           = 4
	DefaultParallelThreshold = 8
)

// Absolute parameter floors. Governor scaling never pushes a parameter
// below its floor, so search quality degrades but never collapses.
const (
	floorTurns        = 20
	floorAdaptiveMin  = 10
	floorRefineTurns  = 50
	floorHeuristicTop = 4
)

// Options configures a planning run.
type Options struct {
	// Scoring depth
	Turns              int     `json:"turns,omitempty"`
	AdaptiveTurnsMin   int     `json:"adaptive_turns_min,omitempty"`
	AdaptiveTurnsAlpha float64 `json:"adaptive_turns_alpha,omitempty"`
	AreaPower          float64 `json:"area_power,omitempty"`
	ShortTermWeight    float64 `json:"short_term_weight,omitempty"`
	LongTermWeight     float64 `json:"long_term_weight,omitempty"`

	// Candidate generation
	MaxCandidates  int     `json:"max_candidates,omitempty"`
	DedupTolerance float64 `json:"dedup_tolerance,omitempty"`
	AngleSamples   int     `json:"angle_samples,omitempty"`
	MaxAnchorPairs int     `json:"max_anchor_pairs,omitempty"`

	// Pruning and refinement
	HeuristicTopK int     `json:"heuristic_top_k,omitempty"`
	RefineTopK    int     `json:"refine_top_k,omitempty"`
	RefineTurns   int     `json:"refine_turns,omitempty"`
	Epsilon       float64 `json:"epsilon,omitempty"`

	// Time governance
	SoftBudget    time.Duration `json:"soft_budget,omitempty"`
	HardTimeout   time.Duration `json:"hard_timeout,omitempty"`
	CheckInterval int           `json:"check_interval,omitempty"`
	MinScale      float64       `json:"min_scale,omitempty"`
	TimeoutMargin time.Duration `json:"timeout_margin,omitempty"`

	// Parallel evaluation
	Parallel          bool `json:"parallel,omitempty"`
	Workers           int  `json:"workers,omitempty"`
	ParallelThreshold int  `json:"parallel_threshold,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger      `json:"-"`
	Simulator sim.Simulator    `json:"-"`
	Clock     func() time.Time `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Turns == 0 {
		o.Turns = DefaultTurns
	}
	if o.Turns < 0 {
		return fmt.Errorf("turns must be positive, got %d", o.Turns)
	}
	if o.AdaptiveTurnsMin == 0 {
		o.AdaptiveTurnsMin = DefaultAdaptiveTurnsMin
	}
	if o.AdaptiveTurnsMin > o.Turns {
		o.AdaptiveTurnsMin = o.Turns
	}
	if o.AdaptiveTurnsAlpha == 0 {
		o.AdaptiveTurnsAlpha = DefaultAdaptiveTurnsAlpha
	}
	if o.AreaPower == 0 {
		o.AreaPower = DefaultAreaPower
	}
	if o.ShortTermWeight == 0 {
		o.ShortTermWeight = DefaultShortTermWeight
	}
	if o.LongTermWeight == 0 {
		o.LongTermWeight = DefaultLongTermWeight
	}

	if o.MaxCandidates == 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.DedupTolerance == 0 {
		o.DedupTolerance = DefaultDedupTolerance
	}
	if o.AngleSamples == 0 {
		o.AngleSamples = DefaultAngleSamples
	}
	if o.MaxAnchorPairs == 0 {
		o.MaxAnchorPairs = DefaultMaxAnchorPairs
	}

	if o.HeuristicTopK == 0 {
		o.HeuristicTopK = DefaultHeuristicTopK
	}
	if o.RefineTopK == 0 {
		o.RefineTopK = DefaultRefineTopK
	}
	if o.RefineTurns == 0 {
		o.RefineTurns = DefaultRefineTurns
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}

	if o.SoftBudget == 0 {
		o.SoftBudget = DefaultSoftBudget
	}
	if o.HardTimeout == 0 {
		o.HardTimeout = DefaultHardTimeout
	}
	if o.SoftBudget > o.HardTimeout {
		return fmt.Errorf("soft budget %s exceeds hard timeout %s", o.SoftBudget, o.HardTimeout)
	}
	if o.CheckInterval == 0 {
		o.CheckInterval = DefaultCheckInterval
	}
	if o.MinScale == 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MinScale < 0 || o.MinScale > 1 {
		return fmt.Errorf("min scale must be in (0, 1], got %g", o.MinScale)
	}
	if o.TimeoutMargin == 0 {
		o.TimeoutMargin = DefaultTimeoutMargin
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.ParallelThreshold == 0 {
		o.ParallelThreshold = DefaultParallelThreshold
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Simulator == nil {
		o.Simulator = sim.Engine{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}

	o.validated = true
	return nil
}
