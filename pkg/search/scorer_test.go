package search

import (
	"context"
	"math"
	"testing"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/sim"
)

// stubSim returns a canned trace regardless of the garden.
type stubSim struct {
	trace sim.Trace
	err   error
}

func (s stubSim) Simulate(_ context.Context, _ *garden.Garden, _ int) (sim.Trace, error) {
	return s.trace, s.err
}

func TestLensArea(t *testing.T) {
	tests := []struct {
		name      string
		r1, r2, d float64
		want      float64
	}{
		{"disjoint", 1, 1, 3, 0},
		{"touching", 1, 1, 2, 0},
		{"coincident", 2, 2, 0, math.Pi * 4},
		{"contained", 3, 1, 1, math.Pi},
		{"half overlap unit circles", 1, 1, 1, 2*math.Acos(0.5) - 0.5*math.Sqrt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lensArea(tt.r1, tt.r2, tt.d)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("lensArea(%g, %g, %g) = %g, want %g", tt.r1, tt.r2, tt.d, got, tt.want)
			}
		})
	}
}

func TestLensAreaSymmetric(t *testing.T) {
	a := lensArea(3, 1, 2.5)
	b := lensArea(1, 3, 2.5)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("lens area not symmetric: %g vs %g", a, b)
	}
}

func TestSegmentArea(t *testing.T) {
	tests := []struct {
		name string
		r, h float64
		want float64
	}{
		{"beyond reach", 2, 3, 0},
		{"at boundary", 2, 2, 0},
		{"center on boundary", 2, 0, math.Pi * 2},
		{"fully outside", 2, -2, math.Pi * 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segmentArea(tt.r, tt.h)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("segmentArea(%g, %g) = %g, want %g", tt.r, tt.h, got, tt.want)
			}
		})
	}
}

func TestEffectiveAreaOpenSpace(t *testing.T) {
	g := garden.New(50, 50)
	v := testVariety("solo", garden.SpeciesGeranium, 1)

	got := effectiveArea(g, v, garden.Position{X: 25, Y: 25}, 1.5)
	if math.Abs(got-math.Pi) > 1e-9 {
		t.Errorf("expected full footprint %g, got %g", math.Pi, got)
	}
}

func TestEffectiveAreaCornerPenalty(t *testing.T) {
	g := garden.New(50, 50)
	v := testVariety("corner", garden.SpeciesGeranium, 1)

	// A plant centered on the corner spills half its footprint past the two
	// boundaries, penalized at half weight.
	got := effectiveArea(g, v, garden.Position{X: 0, Y: 0}, 1.5)
	want := math.Pi / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected corner area %g, got %g", want, got)
	}
}

func TestEffectiveAreaFloor(t *testing.T) {
	g := garden.New(50, 50)
	big := testVariety("big", garden.SpeciesRhododendron, 3)
	if g.Place(big, garden.Position{X: 25, Y: 25}) == nil {
		t.Fatal("failed to place plant")
	}

	small := testVariety("small", garden.SpeciesGeranium, 1)
	got := effectiveArea(g, small, garden.Position{X: 25, Y: 25}, 1.5)
	if got != 0.01 {
		t.Errorf("expected floor 0.01 for fully overlapped candidate, got %g", got)
	}
}

func TestProductionScoreWeighsDeficits(t *testing.T) {
	g := garden.New(20, 20)
	rhodo := testVariety("rhodo", garden.SpeciesRhododendron, 1)
	if g.Place(rhodo, garden.Position{X: 5, Y: 5}) == nil {
		t.Fatal("failed to place plant")
	}
	if g.Place(rhodo, garden.Position{X: 15, Y: 15}) == nil {
		t.Fatal("failed to place plant")
	}

	// Garden totals: R=4, G=-1, B=-1. Rank weights: G=3, B=2, R=1.
	geranium := testVariety("geranium", garden.SpeciesGeranium, 1)
	gotG := productionScore(g, geranium)
	wantG := 2*3.0 - 0.5*1 - 0.5*2
	if math.Abs(gotG-wantG) > 1e-9 {
		t.Errorf("geranium score = %g, want %g", gotG, wantG)
	}

	gotR := productionScore(g, rhodo)
	wantR := 2*1.0 - 0.5*3 - 0.5*2
	if math.Abs(gotR-wantR) > 1e-9 {
		t.Errorf("rhododendron score = %g, want %g", gotR, wantR)
	}
	if gotR >= gotG {
		t.Errorf("producing the surplus nutrient should score below filling the deficit: %g >= %g", gotR, gotG)
	}
}

func TestExchangePotential(t *testing.T) {
	rhodo := testVariety("rhodo", garden.SpeciesRhododendron, 3)
	geranium := testVariety("geranium", garden.SpeciesGeranium, 1)

	t.Run("no partners", func(t *testing.T) {
		g := garden.New(20, 20)
		nbrs := signatureNeighbors(g, geranium, garden.Position{X: 10, Y: 10})
		if got := exchangePotential(g, geranium, nbrs); got != 0 {
			t.Errorf("expected 0 with no partners, got %g", got)
		}
	})

	t.Run("single partner", func(t *testing.T) {
		g := garden.New(20, 20)
		if g.Place(rhodo, garden.Position{X: 5, Y: 5}) == nil {
			t.Fatal("failed to place plant")
		}
		// Own offer 5×1×0.25 = 1.25, partner offers 3.75; min is 1.25.
		nbrs := signatureNeighbors(g, geranium, garden.Position{X: 8, Y: 5})
		got := exchangePotential(g, geranium, nbrs)
		if math.Abs(got-1.25) > 1e-9 {
			t.Errorf("expected 1.25, got %g", got)
		}
	})

	t.Run("offer split across partners", func(t *testing.T) {
		g := garden.New(20, 20)
		if g.Place(rhodo, garden.Position{X: 5, Y: 5}) == nil {
			t.Fatal("failed to place plant")
		}
		if g.Place(rhodo, garden.Position{X: 11, Y: 5}) == nil {
			t.Fatal("failed to place plant")
		}
		// Candidate between two partners splits its offer: 0.625 per pair.
		nbrs := signatureNeighbors(g, geranium, garden.Position{X: 8, Y: 5})
		got := exchangePotential(g, geranium, nbrs)
		if math.Abs(got-1.25) > 1e-9 {
			t.Errorf("expected 1.25 across two partners, got %g", got)
		}
	})

	t.Run("same species excluded", func(t *testing.T) {
		g := garden.New(20, 20)
		if g.Place(geranium, garden.Position{X: 5, Y: 5}) == nil {
			t.Fatal("failed to place plant")
		}
		nbrs := signatureNeighbors(g, geranium, garden.Position{X: 6, Y: 5})
		if got := exchangePotential(g, geranium, nbrs); got != 0 {
			t.Errorf("expected 0 against same species, got %g", got)
		}
	})
}

func TestHeuristicScoreEqualWithinSignatureClass(t *testing.T) {
	g := garden.New(20, 20)
	rhodo := testVariety("rhodo", garden.SpeciesRhododendron, 3)
	if g.Place(rhodo, garden.Position{X: 10, Y: 10}) == nil {
		t.Fatal("failed to place plant")
	}

	// Distances 1.6 and 1.9 from the same neighbor fall in the same
	// distance bucket, so the candidates share a signature and must score
	// identically despite the raw gap between them.
	v := testVariety("geranium", garden.SpeciesGeranium, 1)
	near := garden.Position{X: 11.6, Y: 10}
	far := garden.Position{X: 11.9, Y: 10}
	if patternSignature(g, v, near) != patternSignature(g, v, far) {
		t.Fatal("expected the candidates to share a signature")
	}

	a := heuristicScore(g, v, near, 1.5)
	b := heuristicScore(g, v, far, 1.5)
	if a != b {
		t.Errorf("scores differ within one signature class: %g vs %g", a, b)
	}
}

func TestSimulateAndScore(t *testing.T) {
	ctx := context.Background()
	g := garden.New(10, 10)
	if g.Place(testVariety("p", garden.SpeciesGeranium, 1), garden.Position{X: 5, Y: 5}) == nil {
		t.Fatal("failed to place plant")
	}

	t.Run("blends short and long term", func(t *testing.T) {
		s := stubSim{trace: sim.Trace{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
		got, err := simulateAndScore(ctx, s, g, 10, 0.2, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// short = 15 over 5 turns, long = 40 over 5 turns.
		want := 0.2/5*15 + 1.0/5*40
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("expected %g, got %g", want, got)
		}
	})

	t.Run("short horizon uses final growth", func(t *testing.T) {
		s := stubSim{trace: sim.Trace{1, 2, 3}}
		got, err := simulateAndScore(ctx, s, g, 3, 0.2, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3 {
			t.Errorf("expected final growth 3, got %g", got)
		}
	})

	t.Run("averages per plant", func(t *testing.T) {
		pair := garden.New(10, 10)
		pair.Place(testVariety("a", garden.SpeciesGeranium, 1), garden.Position{X: 2, Y: 2})
		pair.Place(testVariety("b", garden.SpeciesBegonia, 1), garden.Position{X: 8, Y: 8})
		s := stubSim{trace: sim.Trace{2, 4}}
		got, err := simulateAndScore(ctx, s, pair, 2, 0.2, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 2 {
			t.Errorf("expected per-plant score 2, got %g", got)
		}
	})

	t.Run("empty garden scores zero", func(t *testing.T) {
		empty := garden.New(10, 10)
		got, err := simulateAndScore(ctx, stubSim{}, empty, 10, 0.2, 1.0)
		if err != nil || got != 0 {
			t.Errorf("expected 0, nil for empty garden, got %g, %v", got, err)
		}
	})
}

func TestEvaluatePlacementRejections(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	v := testVariety("v", garden.SpeciesGeranium, 1)

	g := garden.New(10, 10)
	if g.Place(testVariety("a", garden.SpeciesRhododendron, 1), garden.Position{X: 5, Y: 5}) == nil {
		t.Fatal("failed to place plant")
	}

	t.Run("collision", func(t *testing.T) {
		got := evaluatePlacement(ctx, sim.Engine{}, g, v, garden.Position{X: 5, Y: 5}, 10, &opts, 0)
		if !math.IsInf(got, -1) {
			t.Errorf("expected -Inf for colliding placement, got %g", got)
		}
	})

	t.Run("simulator failure", func(t *testing.T) {
		s := stubSim{err: context.DeadlineExceeded}
		got := evaluatePlacement(ctx, s, g, v, garden.Position{X: 8, Y: 5}, 10, &opts, 0)
		if !math.IsInf(got, -1) {
			t.Errorf("expected -Inf on simulator error, got %g", got)
		}
	})
}

func TestAdaptiveTurns(t *testing.T) {
	p := Params{Turns: 100, AdaptiveTurnsMin: 40}

	tests := []struct {
		placed, total int
		want          int
	}{
		{0, 10, 100},
		{1, 10, 80},
		{5, 10, 60},
		{9, 10, 40},
		{10, 10, 40},
	}
	for _, tt := range tests {
		if got := adaptiveTurns(tt.placed, tt.total, p, 0.7); got != tt.want {
			t.Errorf("adaptiveTurns(%d, %d) = %d, want %d", tt.placed, tt.total, got, tt.want)
		}
	}
}

func TestAdaptiveTurnsMonotone(t *testing.T) {
	p := Params{Turns: 100, AdaptiveTurnsMin: 40}
	prev := adaptiveTurns(0, 20, p, 0.7)
	for placed := 1; placed <= 20; placed++ {
		cur := adaptiveTurns(placed, 20, p, 0.7)
		if cur > prev {
			t.Fatalf("horizon grew from %d to %d at placed=%d", prev, cur, placed)
		}
		if cur < p.AdaptiveTurnsMin {
			t.Fatalf("horizon %d fell below floor %d", cur, p.AdaptiveTurnsMin)
		}
		prev = cur
	}
}

func TestAdaptiveTurnsEdgeCases(t *testing.T) {
	if got := adaptiveTurns(3, 0, Params{Turns: 100, AdaptiveTurnsMin: 40}, 0.7); got != 100 {
		t.Errorf("zero total should return full horizon, got %d", got)
	}
	if got := adaptiveTurns(5, 10, Params{Turns: 40, AdaptiveTurnsMin: 40}, 0.7); got != 40 {
		t.Errorf("flat horizon should pass through, got %d", got)
	}
}
