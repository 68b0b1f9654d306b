package search

import (
	"testing"

	"github.com/verdantlabs/verdant/pkg/garden"
)

func TestPatternSignature(t *testing.T) {
	g := garden.New(16, 10)
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	if g.Place(anchor, garden.Position{X: 8, Y: 5}) == nil {
		t.Fatal("failed to place anchor")
	}
	v := testVariety("small", garden.SpeciesGeranium, 1)

	t.Run("mirror placements share a signature", func(t *testing.T) {
		above := patternSignature(g, v, garden.Position{X: 8, Y: 8})
		below := patternSignature(g, v, garden.Position{X: 8, Y: 2})
		if above != below {
			t.Errorf("mirror placements differ: %q vs %q", above, below)
		}
	})

	t.Run("distance bucket changes the signature", func(t *testing.T) {
		// Distances 3.0 and 3.6 fall into different half-unit buckets.
		near := patternSignature(g, v, garden.Position{X: 11, Y: 5})
		far := patternSignature(g, v, garden.Position{X: 11.6, Y: 5})
		if near == far {
			t.Error("different distance buckets should not share a signature")
		}
	})

	t.Run("variety changes the signature", func(t *testing.T) {
		other := testVariety("other", garden.SpeciesBegonia, 1)
		a := patternSignature(g, v, garden.Position{X: 11, Y: 5})
		b := patternSignature(g, other, garden.Position{X: 11, Y: 5})
		if a == b {
			t.Error("different varieties should not share a signature")
		}
	})

	t.Run("same species neighbors are ignored", func(t *testing.T) {
		sig := patternSignature(g, anchor, garden.Position{X: 14, Y: 5})
		empty := patternSignature(garden.New(16, 10), anchor, garden.Position{X: 14, Y: 5})
		if sig != empty {
			t.Errorf("same-species neighbor leaked into signature: %q vs %q", sig, empty)
		}
	})
}

func TestPatternCacheInvalidateIsLocal(t *testing.T) {
	g := garden.New(50, 50)
	cache := newPatternCache()
	v := testVariety("small", garden.SpeciesGeranium, 1)

	nearPos := garden.Position{X: 2, Y: 2}
	farPos := garden.Position{X: 40, Y: 40}
	staleSig := cache.Signature(g, v, nearPos)
	cache.Signature(g, v, farPos)
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", cache.Len())
	}

	// Commit a plant next to nearPos and invalidate around it. Only the
	// nearby entry may be dropped.
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	plant := g.Place(anchor, garden.Position{X: 4, Y: 2})
	if plant == nil {
		t.Fatal("failed to place plant")
	}
	cache.Invalidate(plant.Position, plant.Variety.Radius)
	if cache.Len() != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", cache.Len())
	}

	// Recomputing the invalidated entry must pick up the new neighbor.
	freshSig := cache.Signature(g, v, nearPos)
	if freshSig == staleSig {
		t.Error("signature did not change after a neighbor was committed")
	}
}

func TestPatternCacheMemoizes(t *testing.T) {
	g := garden.New(20, 20)
	cache := newPatternCache()
	v := testVariety("small", garden.SpeciesGeranium, 1)
	pos := garden.Position{X: 10, Y: 10}

	first := cache.Signature(g, v, pos)
	second := cache.Signature(g, v, pos)
	if first != second {
		t.Errorf("repeated lookups disagree: %q vs %q", first, second)
	}
	if cache.Len() != 1 {
		t.Errorf("expected a single cached entry, got %d", cache.Len())
	}
}

func TestGroupBySignatureKeepsBestRepresentative(t *testing.T) {
	g := garden.New(16, 10)
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	if g.Place(anchor, garden.Position{X: 8, Y: 5}) == nil {
		t.Fatal("failed to place anchor")
	}
	v := testVariety("small", garden.SpeciesGeranium, 1)

	// Both candidates sit in the same distance bucket; the closer one has
	// the better space score and must represent the group.
	cands := []Candidate{
		{Variety: v, Position: garden.Position{X: 11.4, Y: 5}},
		{Variety: v, Position: garden.Position{X: 11, Y: 5}},
	}
	grouped := groupBySignature(g, cands, newPatternCache())
	if len(grouped) != 1 {
		t.Fatalf("expected 1 group, got %d", len(grouped))
	}
	if grouped[0].Position.X != 11 {
		t.Errorf("expected the closer candidate as representative, got %v", grouped[0].Position)
	}
}

func TestGroupBySignaturePreservesOrder(t *testing.T) {
	g := garden.New(16, 10)
	anchor := testVariety("anchor", garden.SpeciesRhododendron, 3)
	if g.Place(anchor, garden.Position{X: 8, Y: 5}) == nil {
		t.Fatal("failed to place anchor")
	}

	small := testVariety("small", garden.SpeciesGeranium, 1)
	other := testVariety("other", garden.SpeciesBegonia, 1)
	cands := []Candidate{
		{Variety: small, Position: garden.Position{X: 11, Y: 5}},
		{Variety: other, Position: garden.Position{X: 5, Y: 5}},
	}
	grouped := groupBySignature(g, cands, newPatternCache())
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if grouped[0].Variety.Name != "small" || grouped[1].Variety.Name != "other" {
		t.Errorf("group order not first-seen: %s, %s", grouped[0].Variety.Name, grouped[1].Variety.Name)
	}
}
