package search

import (
	"math"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// Candidate is a proposed placement, alive only within one search iteration.
type Candidate struct {
	Variety  garden.Variety
	Position garden.Position
}

// Tangency sampling fractions of the interaction distance. Placements at
// 70-95% of the range sit well inside exchange reach without crowding.
var tangencyFactors = []float64{0.7, 0.8, 0.9, 0.95}

// Circle intersection shrink factors. The tighter factor biases toward
// strong overlap with both anchors.
var intersectionFactors = []float64{0.95, 0.8}

// generateCandidates produces a bounded set of candidate positions for the
// current garden. Pure function of its inputs.
//
// An empty garden gets a coarse uniform grid. Otherwise positions come from
// three sources: an integer grid scan of open space, intersection points of
// interaction circles around placed plant pairs, and tangency samples around
// individual plants. The merged set is deduplicated and capped.
func generateCandidates(g *garden.Garden, varieties []garden.Variety, opts *Options) []garden.Position {
	if len(g.Plants) == 0 {
		return capPositions(gridPositions(g), opts.MaxCandidates)
	}

	positions := gridPositions(g)
	for _, v := range varieties {
		positions = append(positions, intersectionPositions(g, v, opts.MaxAnchorPairs)...)
		positions = append(positions, tangencyPositions(g, v, opts.AngleSamples)...)
	}

	positions = dedupPositions(filterInBounds(g, positions), opts.DedupTolerance)
	return capPositions(positions, opts.MaxCandidates)
}

// gridPositions scans integer coordinates, skipping points inside the core
// of an existing plant.
func gridPositions(g *garden.Garden) []garden.Position {
	var out []garden.Position
	for x := 0; x <= int(g.Width); x++ {
		for y := 0; y <= int(g.Height); y++ {
			pos := garden.Position{X: float64(x), Y: float64(y)}
			open := true
			for _, p := range g.Plants {
				if pos.Distance(p.Position) < float64(p.Variety.Radius)*0.9 {
					open = false
					break
				}
			}
			if open {
				out = append(out, pos)
			}
		}
	}
	return out
}

// intersectionPositions computes where a plant of variety v could touch two
// placed plants at once: the intersections of the pair's interaction
// circles, slightly shrunk to guarantee strong overlap.
func intersectionPositions(g *garden.Garden, v garden.Variety, maxPairs int) []garden.Position {
	var anchors []*garden.Plant
	for _, p := range g.Plants {
		if p.Variety.Species != v.Species {
			anchors = append(anchors, p)
		}
	}
	if len(anchors) < 2 {
		return nil
	}

	var out []garden.Position
	pairs := 0
	for i := 0; i < len(anchors) && pairs < maxPairs; i++ {
		for j := i + 1; j < len(anchors) && pairs < maxPairs; j++ {
			p1, p2 := anchors[i], anchors[j]
			r1 := p1.Variety.InteractionRange(v)
			r2 := p2.Variety.InteractionRange(v)
			for _, f := range intersectionFactors {
				out = append(out, garden.CircleIntersections(p1.Position, r1*f, p2.Position, r2*f)...)
			}
			pairs++
		}
	}
	return out
}

// tangencyPositions samples points around each interactable plant at
// several angles and several fractions of the interaction distance.
func tangencyPositions(g *garden.Garden, v garden.Variety, angleSamples int) []garden.Position {
	var out []garden.Position
	anchors := 0
	for _, p := range g.Plants {
		if p.Variety.Species == v.Species {
			continue
		}
		if anchors >= 10 {
			break
		}
		anchors++

		dist := p.Variety.InteractionRange(v)
		for i := 0; i < angleSamples; i++ {
			angle := 2 * math.Pi * float64(i) / float64(angleSamples)
			for _, f := range tangencyFactors {
				out = append(out, p.Position.Add(
					dist*f*math.Cos(angle),
					dist*f*math.Sin(angle),
				))
			}
		}
	}
	return out
}

func filterInBounds(g *garden.Garden, positions []garden.Position) []garden.Position {
	out := positions[:0]
	for _, pos := range positions {
		if g.WithinBounds(pos) {
			out = append(out, pos)
		}
	}
	return out
}

// dedupPositions collapses positions closer than tol, keeping the first.
func dedupPositions(positions []garden.Position, tol float64) []garden.Position {
	var out []garden.Position
	for _, pos := range positions {
		dup := false
		for _, kept := range out {
			if pos.Distance(kept) < tol {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, pos)
		}
	}
	return out
}

// capPositions keeps at most max positions. An oversized set is thinned by
// even stride so the survivors stay spatially representative.
func capPositions(positions []garden.Position, max int) []garden.Position {
	if max <= 0 || len(positions) <= max {
		return positions
	}
	out := make([]garden.Position, 0, max)
	stride := float64(len(positions)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, positions[int(float64(i)*stride)])
	}
	return out
}
