package search

import (
	"testing"

	"github.com/verdantlabs/verdant/pkg/garden"
)

func TestGenerateCandidatesEmptyGarden(t *testing.T) {
	g := garden.New(16, 10)
	opts := testOptions(t)
	varieties := []garden.Variety{testVariety("a", garden.SpeciesRhododendron, 3)}

	positions := generateCandidates(g, varieties, &opts)
	if len(positions) == 0 {
		t.Fatal("expected candidates for an empty garden")
	}
	if len(positions) > opts.MaxCandidates {
		t.Errorf("candidate count %d exceeds cap %d", len(positions), opts.MaxCandidates)
	}
	for _, pos := range positions {
		if !g.WithinBounds(pos) {
			t.Errorf("candidate %v out of bounds", pos)
		}
	}
}

func TestGenerateCandidatesStayInBounds(t *testing.T) {
	g := garden.New(16, 10)
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	if g.Place(anchor, garden.Position{X: 1, Y: 1}) == nil {
		t.Fatal("failed to place anchor")
	}

	opts := testOptions(t)
	varieties := []garden.Variety{testVariety("b", garden.SpeciesGeranium, 1)}
	for _, pos := range generateCandidates(g, varieties, &opts) {
		if !g.WithinBounds(pos) {
			t.Errorf("candidate %v out of bounds", pos)
		}
	}
}

func TestGridPositionsSkipPlantCores(t *testing.T) {
	g := garden.New(10, 10)
	v := testVariety("big", garden.SpeciesRhododendron, 3)
	if g.Place(v, garden.Position{X: 5, Y: 5}) == nil {
		t.Fatal("failed to place plant")
	}

	positions := gridPositions(g)
	center := garden.Position{X: 5, Y: 5}
	for _, pos := range positions {
		if pos.Distance(center) < 0.9*3 {
			t.Errorf("position %v lies inside the plant core", pos)
		}
	}

	// Far corners are untouched by the core exclusion.
	found := false
	for _, pos := range positions {
		if pos.X == 0 && pos.Y == 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected open corner (0,0) in the grid")
	}
}

func TestTangencyPositionsWithinReach(t *testing.T) {
	g := garden.New(20, 20)
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	center := garden.Position{X: 10, Y: 10}
	if g.Place(anchor, center) == nil {
		t.Fatal("failed to place anchor")
	}

	v := testVariety("small", garden.SpeciesGeranium, 1)
	positions := tangencyPositions(g, v, 12)
	if len(positions) != 12*len(tangencyFactors) {
		t.Fatalf("expected %d samples, got %d", 12*len(tangencyFactors), len(positions))
	}

	reach := v.InteractionRange(anchor)
	for _, pos := range positions {
		d := pos.Distance(center)
		if d >= reach {
			t.Errorf("tangency sample %v at distance %g is out of exchange reach %g", pos, d, reach)
		}
	}
}

func TestTangencyPositionsSkipSameSpecies(t *testing.T) {
	g := garden.New(20, 20)
	v := testVariety("g", garden.SpeciesGeranium, 1)
	if g.Place(v, garden.Position{X: 10, Y: 10}) == nil {
		t.Fatal("failed to place plant")
	}
	if got := tangencyPositions(g, v, 12); len(got) != 0 {
		t.Errorf("expected no samples around same-species plants, got %d", len(got))
	}
}

func TestIntersectionPositionsTouchBothAnchors(t *testing.T) {
	g := garden.New(20, 20)
	a := testVariety("a", garden.SpeciesRhododendron, 3)
	b := testVariety("b", garden.SpeciesGeranium, 1)
	pa := garden.Position{X: 5, Y: 5}
	pb := garden.Position{X: 10, Y: 5}
	if g.Place(a, pa) == nil || g.Place(b, pb) == nil {
		t.Fatal("failed to place anchors")
	}

	v := testVariety("c", garden.SpeciesBegonia, 1)
	positions := intersectionPositions(g, v, 20)
	if len(positions) == 0 {
		t.Fatal("expected intersection candidates")
	}
	for _, pos := range positions {
		if pos.Distance(pa) >= v.InteractionRange(a) {
			t.Errorf("candidate %v cannot reach the first anchor", pos)
		}
		if pos.Distance(pb) >= v.InteractionRange(b) {
			t.Errorf("candidate %v cannot reach the second anchor", pos)
		}
	}
}

func TestIntersectionPositionsNeedTwoAnchors(t *testing.T) {
	g := garden.New(20, 20)
	a := testVariety("a", garden.SpeciesRhododendron, 3)
	if g.Place(a, garden.Position{X: 10, Y: 10}) == nil {
		t.Fatal("failed to place anchor")
	}
	v := testVariety("c", garden.SpeciesBegonia, 1)
	if got := intersectionPositions(g, v, 20); got != nil {
		t.Errorf("expected nil with a single anchor, got %d positions", len(got))
	}
}

func TestDedupPositions(t *testing.T) {
	positions := []garden.Position{
		{X: 0, Y: 0},
		{X: 0.2, Y: 0},
		{X: 5, Y: 5},
		{X: 5.1, Y: 5.3},
	}
	got := dedupPositions(positions, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct positions, got %d", len(got))
	}
	if got[0].X != 0 || got[1].X != 5 {
		t.Errorf("expected first-seen positions retained, got %v", got)
	}
}

func TestCapPositions(t *testing.T) {
	positions := make([]garden.Position, 100)
	for i := range positions {
		positions[i] = garden.Position{X: float64(i)}
	}

	got := capPositions(positions, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 positions, got %d", len(got))
	}
	if got[0].X != 0 {
		t.Errorf("expected first position retained, got %v", got[0])
	}
	// Even stride keeps the survivors spread across the input.
	if got[9].X < 80 {
		t.Errorf("expected late positions represented, last survivor %v", got[9])
	}

	small := positions[:5]
	if kept := capPositions(small, 10); len(kept) != 5 {
		t.Errorf("undersized input should pass through, got %d", len(kept))
	}
}
