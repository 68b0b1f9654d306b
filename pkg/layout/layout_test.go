package layout

import (
	"path/filepath"
	"testing"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
)

func testVariety(species garden.Species, radius int) garden.Variety {
	coeffs := map[garden.Nutrient]float64{
		garden.NutrientR: -0.5,
		garden.NutrientG: -0.5,
		garden.NutrientB: -0.5,
	}
	coeffs[species.Produces()] = 2
	return garden.Variety{
		Name:         "test-" + string(species),
		Species:      species,
		Radius:       radius,
		Coefficients: coeffs,
	}
}

func TestRoundTrip(t *testing.T) {
	g := garden.New(16, 10)
	g.Place(testVariety(garden.SpeciesRhododendron, 2), garden.Position{X: 8, Y: 5})
	g.Place(testVariety(garden.SpeciesGeranium, 1), garden.Position{X: 10.5, Y: 5})

	l := FromGarden(g)
	l.Turns = 100
	l.Projected = 250

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := l.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Turns != 100 || loaded.Projected != 250 {
		t.Errorf("metadata lost: %+v", loaded)
	}
	if len(loaded.Plants) != 2 {
		t.Fatalf("expected 2 plants, got %d", len(loaded.Plants))
	}

	rebuilt, err := loaded.Garden()
	if err != nil {
		t.Fatalf("garden: %v", err)
	}
	if len(rebuilt.Plants) != 2 {
		t.Fatalf("expected 2 placed plants, got %d", len(rebuilt.Plants))
	}
	if got := rebuilt.Plants[0].Position; got != (garden.Position{X: 8, Y: 5}) {
		t.Errorf("position lost: %+v", got)
	}
}

func TestGardenRejectsInvalidLayout(t *testing.T) {
	l := &Layout{
		Width:  16,
		Height: 10,
		Plants: []Placement{
			{Variety: testVariety(garden.SpeciesRhododendron, 2), Position: garden.Position{X: 8, Y: 5}},
			// Too close to the first plant for either radius.
			{Variety: testVariety(garden.SpeciesGeranium, 2), Position: garden.Position{X: 8.5, Y: 5}},
		},
	}
	if _, err := l.Garden(); !errors.Is(err, errors.ErrCodeInvalidPlacement) {
		t.Errorf("expected INVALID_PLACEMENT, got %v", err)
	}

	l = &Layout{Width: 0, Height: 10}
	if _, err := l.Garden(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for zero width, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("expected LAYOUT_NOT_FOUND, got %v", err)
	}
}
