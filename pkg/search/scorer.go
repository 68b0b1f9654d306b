package search

import (
	"context"
	"math"
	"sort"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/sim"
)

// shortTermTurns is the window treated as short-term growth when blending
// the simulation trace.
const shortTermTurns = 5

// effectiveArea is the candidate's interaction footprint under the
// sub-quadratic area law, reduced by overlap with existing plants and by
// spillover past the garden boundary. The sub-quadratic exponent keeps
// large- and small-radius varieties comparable; a plain r² law would make
// radius-3 plants nine times as expensive as radius-1.
func effectiveArea(g *garden.Garden, v garden.Variety, pos garden.Position, power float64) float64 {
	r := float64(v.Radius)
	base := math.Pi * math.Pow(r, power)

	// Fraction of the true footprint circle overlapped by neighbors.
	footprint := math.Pi * r * r
	var overlap float64
	for _, p := range g.Plants {
		overlap += lensArea(r, float64(p.Variety.Radius), pos.Distance(p.Position))
	}
	overlapFrac := math.Min(overlap/footprint, 1)
	outsideFrac := math.Min(boundarySpill(g, pos, r)/footprint, 1)

	// Boundary spillover is penalized at half weight: a plant against the
	// edge still exchanges on its inward side.
	eff := base * (1 - overlapFrac - 0.5*outsideFrac)
	return math.Max(eff, 0.01)
}

// heuristicArea is the Tier-1 counterpart of effectiveArea: the overlap
// deduction is computed from the bucketed distances of the candidate's
// interaction signature instead of raw neighbor positions. Same-species
// plants do not interact and are left out of the deduction.
func heuristicArea(g *garden.Garden, v garden.Variety, pos garden.Position, nbrs []signatureNeighbor, power float64) float64 {
	r := float64(v.Radius)
	base := math.Pi * math.Pow(r, power)

	footprint := math.Pi * r * r
	var overlap float64
	for _, nb := range nbrs {
		overlap += lensArea(r, float64(nb.plant.Variety.Radius), nb.dist())
	}
	overlapFrac := math.Min(overlap/footprint, 1)
	outsideFrac := math.Min(boundarySpill(g, pos, r)/footprint, 1)

	eff := base * (1 - overlapFrac - 0.5*outsideFrac)
	return math.Max(eff, 0.01)
}

// boundarySpill is the footprint area of a radius-r circle at pos lying
// past the garden boundary, summed over the four edges as circular
// segments.
func boundarySpill(g *garden.Garden, pos garden.Position, r float64) float64 {
	var outside float64
	outside += segmentArea(r, pos.X)          // left
	outside += segmentArea(r, g.Width-pos.X)  // right
	outside += segmentArea(r, pos.Y)          // bottom
	outside += segmentArea(r, g.Height-pos.Y) // top
	return outside
}

// lensArea returns the overlap area of two circles with radii r1, r2 whose
// centers are d apart.
func lensArea(r1, r2, d float64) float64 {
	if d >= r1+r2 {
		return 0
	}
	small, large := math.Min(r1, r2), math.Max(r1, r2)
	if d <= large-small {
		return math.Pi * small * small
	}
	d1 := (d*d + r1*r1 - r2*r2) / (2 * d)
	d2 := d - d1
	a1 := r1*r1*math.Acos(clamp(d1/r1, -1, 1)) - d1*math.Sqrt(math.Max(r1*r1-d1*d1, 0))
	a2 := r2*r2*math.Acos(clamp(d2/r2, -1, 1)) - d2*math.Sqrt(math.Max(r2*r2-d2*d2, 0))
	return a1 + a2
}

// segmentArea returns the area of the circular segment of radius r that
// lies beyond a boundary at distance h from the center. Zero when the
// circle does not reach the boundary.
func segmentArea(r, h float64) float64 {
	if h >= r {
		return 0
	}
	if h <= -r {
		return math.Pi * r * r
	}
	return r*r*math.Acos(clamp(h/r, -1, 1)) - h*math.Sqrt(math.Max(r*r-h*h, 0))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// productionScore weights the candidate variety's coefficients by the
// garden's current nutrient deficits, rank-based: the scarcest nutrient
// gets weight 3, the middle 2, the most plentiful 1.
func productionScore(g *garden.Garden, v garden.Variety) float64 {
	totals := make(map[garden.Nutrient]float64, len(garden.Nutrients))
	for _, p := range g.Plants {
		for n, coeff := range p.Variety.Coefficients {
			totals[n] += coeff
		}
	}

	ranked := make([]garden.Nutrient, len(garden.Nutrients))
	copy(ranked, garden.Nutrients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]] < totals[ranked[j]]
	})

	weights := map[garden.Nutrient]float64{
		ranked[0]: 3, // scarcest
		ranked[1]: 2,
		ranked[2]: 1,
	}

	var score float64
	for n, coeff := range v.Coefficients {
		score += coeff * weights[n]
	}
	return score
}

// exchangePotential estimates the steady-state trade volume a plant of
// variety v would see across its signature neighbors. Each side's offer
// is 25% of an assumed half-full reservoir (5×radius), split across its
// partners; the traded amount per pair is the minimum of the two offers.
func exchangePotential(g *garden.Garden, v garden.Variety, nbrs []signatureNeighbor) float64 {
	if len(nbrs) == 0 {
		return 0
	}

	ownOffer := 5 * float64(v.Radius) * 0.25 / float64(len(nbrs))

	var total float64
	for _, nb := range nbrs {
		// Partner count includes the candidate itself.
		count := 1
		for _, other := range g.Plants {
			if other == nb.plant || other.Variety.Species == nb.plant.Variety.Species {
				continue
			}
			if other.Position.Distance(nb.plant.Position) <= nb.plant.Variety.InteractionRange(other.Variety) {
				count++
			}
		}
		theirOffer := 5 * float64(nb.plant.Variety.Radius) * 0.25 / float64(count)
		total += math.Min(ownOffer, theirOffer)
	}
	return total
}

// heuristicScore is the Tier-1 analytic score: production value plus
// exchange potential, normalized by effective area. No simulation.
// Neighbor geometry enters only through the distance buckets recorded in
// the candidate's interaction signature, never through raw positions, so
// every candidate in a signature class is scored from the same neighbor
// geometry.
func heuristicScore(g *garden.Garden, v garden.Variety, pos garden.Position, power float64) float64 {
	nbrs := signatureNeighbors(g, v, pos)
	area := heuristicArea(g, v, pos, nbrs, power)
	return (productionScore(g, v) + exchangePotential(g, v, nbrs)) / area
}

// simulateAndScore runs the simulator for turns and blends short-term
// (turns 1-5) against long-term growth, averaged per plant. A short
// horizon falls back to plain final growth.
func simulateAndScore(ctx context.Context, s sim.Simulator, g *garden.Garden, turns int, wShort, wLong float64) (float64, error) {
	if len(g.Plants) == 0 {
		return 0, nil
	}
	trace, err := s.Simulate(ctx, g, turns)
	if err != nil {
		return 0, err
	}

	var total float64
	if turns <= shortTermTurns {
		total = trace.Final()
	} else {
		var short, long float64
		for i, v := range trace {
			if i < shortTermTurns {
				short += v
			} else {
				long += v
			}
		}
		total = wShort/shortTermTurns*short + wLong/float64(turns-shortTermTurns)*long
	}
	return total / float64(len(g.Plants)), nil
}

// evaluatePlacement is the Tier-2/Tier-3 score for committing (v, pos):
// the change in weighted garden score after simulating the trial clone,
// normalized by the candidate's effective area. Returns -Inf for
// candidates the garden rejects or the simulator fails on.
func evaluatePlacement(ctx context.Context, s sim.Simulator, g *garden.Garden, v garden.Variety, pos garden.Position, turns int, opts *Options, currentScore float64) float64 {
	trial := g.Clone()
	if trial.Place(v, pos) == nil {
		return math.Inf(-1)
	}

	newScore, err := simulateAndScore(ctx, s, trial, turns, opts.ShortTermWeight, opts.LongTermWeight)
	if err != nil {
		return math.Inf(-1)
	}

	delta := newScore
	if len(g.Plants) > 0 {
		delta = newScore - currentScore
	}
	return delta / effectiveArea(g, v, pos, opts.AreaPower)
}

// adaptiveTurns decays the simulation horizon as the garden fills:
// turns = T_max × (T_min/T_max)^(progress^alpha), rounded to the nearest
// ten and floored at T_min. Early placements shape the whole layout and
// deserve the deep horizon; late gap-fills do not.
func adaptiveTurns(placed, total int, p Params, alpha float64) int {
	if total == 0 || p.Turns <= p.AdaptiveTurnsMin {
		return p.Turns
	}
	progress := float64(placed) / float64(total)
	ratio := float64(p.AdaptiveTurnsMin) / float64(p.Turns)
	dynamic := float64(p.Turns) * math.Pow(ratio, math.Pow(progress, alpha))

	rounded := int(math.Round(dynamic/10) * 10)
	if rounded < p.AdaptiveTurnsMin {
		return p.AdaptiveTurnsMin
	}
	return rounded
}
