package search

import (
	"time"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// Phase identifies a stage of the placement state machine. Transitions are
// one-directional: BUILD_STARTER → REPLICATE → FILL_REMAINING → DONE.
type Phase string

// Placement phases.
const (
	PhaseBuildStarter  Phase = "BUILD_STARTER"
	PhaseReplicate     Phase = "REPLICATE"
	PhaseFillRemaining Phase = "FILL_REMAINING"
	PhaseDone          Phase = "DONE"
)

// Params are the four depth/breadth parameters the governor scales.
type Params struct {
	Turns            int `json:"turns"`
	AdaptiveTurnsMin int `json:"adaptive_turns_min"`
	RefineTurns      int `json:"refine_turns"`
	HeuristicTopK    int `json:"heuristic_top_k"`
}

// TuningReport records how the governor adjusted the run.
type TuningReport struct {
	Original Params        `json:"original"`
	Final    Params        `json:"final"`
	Scaled   bool          `json:"scaled"`
	TimedOut bool          `json:"timed_out"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Result is the outcome of a planning run.
type Result struct {
	// Garden holds the committed placements.
	Garden *garden.Garden

	// Score is the weighted growth score of the final garden.
	Score float64

	// Placed is the number of plants committed.
	Placed int

	// StarterSize is the size of the starter group after pruning.
	StarterSize int

	// Replicas is the number of starter group copies placed during
	// replication.
	Replicas int

	// Tuning reports governor activity.
	Tuning TuningReport
}
