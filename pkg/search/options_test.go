package search

import (
	"testing"
	"time"
)

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Turns != DefaultTurns {
		t.Errorf("expected turns %d, got %d", DefaultTurns, opts.Turns)
	}
	if opts.AdaptiveTurnsMin != DefaultAdaptiveTurnsMin {
		t.Errorf("expected adaptive min %d, got %d", DefaultAdaptiveTurnsMin, opts.AdaptiveTurnsMin)
	}
	if opts.AreaPower != DefaultAreaPower {
		t.Errorf("expected area power %g, got %g", DefaultAreaPower, opts.AreaPower)
	}
	if opts.MaxCandidates != DefaultMaxCandidates {
		t.Errorf("expected max candidates %d, got %d", DefaultMaxCandidates, opts.MaxCandidates)
	}
	if opts.HeuristicTopK != DefaultHeuristicTopK {
		t.Errorf("expected top-k %d, got %d", DefaultHeuristicTopK, opts.HeuristicTopK)
	}
	if opts.Epsilon != DefaultEpsilon {
		t.Errorf("expected epsilon %g, got %g", DefaultEpsilon, opts.Epsilon)
	}
	if opts.SoftBudget != DefaultSoftBudget {
		t.Errorf("expected soft budget %s, got %s", DefaultSoftBudget, opts.SoftBudget)
	}
	if opts.HardTimeout != DefaultHardTimeout {
		t.Errorf("expected hard timeout %s, got %s", DefaultHardTimeout, opts.HardTimeout)
	}
	if opts.Simulator == nil {
		t.Error("expected default simulator")
	}
	if opts.Logger == nil {
		t.Error("expected default logger")
	}
	if opts.Clock == nil {
		t.Error("expected default clock")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Turns: 50, HeuristicTopK: 12}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	turns, topK := opts.Turns, opts.HeuristicTopK

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if opts.Turns != turns || opts.HeuristicTopK != topK {
		t.Errorf("second call changed options: turns %d→%d, top-k %d→%d",
			turns, opts.Turns, topK, opts.HeuristicTopK)
	}
}

func TestOptionsClampsAdaptiveMinToTurns(t *testing.T) {
	opts := Options{Turns: 30}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.AdaptiveTurnsMin != 30 {
		t.Errorf("expected adaptive min clamped to 30, got %d", opts.AdaptiveTurnsMin)
	}
}

func TestOptionsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "negative turns",
			opts: Options{Turns: -5},
		},
		{
			name: "soft budget exceeds hard timeout",
			opts: Options{SoftBudget: 2 * time.Minute, HardTimeout: time.Minute},
		},
		{
			name: "min scale above one",
			opts: Options{MinScale: 1.5},
		},
		{
			name: "negative min scale",
			opts: Options{MinScale: -0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
