package search

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// distBucket is the width of the distance quantization used in interaction
// signatures. Neighbors at distances within the same bucket are treated as
// geometrically equivalent.
const distBucket = 0.5

// maxInteractionRange is the largest possible interaction distance,
// two radius-3 plants. Used to bound cache invalidation.
const maxInteractionRange = 6.0

// signatureNeighbor pairs a plant a candidate would interact with and
// that neighbor's distance bucket. Tier-1 scoring reads distances back
// through dist, so every candidate in a signature class is scored from
// the same neighbor geometry.
type signatureNeighbor struct {
	plant  *garden.Plant
	bucket int
}

// dist is the midpoint of the neighbor's distance bucket.
func (n signatureNeighbor) dist() float64 {
	return (float64(n.bucket) + 0.5) * distBucket
}

// signatureNeighbors lists the plants a candidate of variety v at pos
// would interact with, each tagged with its distance bucket.
func signatureNeighbors(g *garden.Garden, v garden.Variety, pos garden.Position) []signatureNeighbor {
	var nbrs []signatureNeighbor
	for _, p := range g.Plants {
		if p.Variety.Species == v.Species {
			continue
		}
		d := pos.Distance(p.Position)
		if d < v.InteractionRange(p.Variety) {
			nbrs = append(nbrs, signatureNeighbor{plant: p, bucket: int(d / distBucket)})
		}
	}
	return nbrs
}

// patternSignature canonicalizes what a candidate would touch: its own
// variety plus the multiset of (neighbor species, distance bucket) pairs
// within interaction range. Candidates sharing a signature have
// near-identical expected growth, so one evaluation stands in for all.
func patternSignature(g *garden.Garden, v garden.Variety, pos garden.Position) string {
	nbrs := signatureNeighbors(g, v, pos)
	neighbors := make([]string, 0, len(nbrs))
	for _, nb := range nbrs {
		neighbors = append(neighbors, fmt.Sprintf("%s@%d", nb.plant.Variety.Species, nb.bucket))
	}
	sort.Strings(neighbors)
	return v.Signature() + "|" + strings.Join(neighbors, ",")
}

// patternCache memoizes signatures keyed by quantized position and variety,
// bucketed into a spatial grid so a committed plant invalidates only the
// entries it could have changed instead of the whole cache.
type patternCache struct {
	cellSize float64
	cells    map[[2]int]map[string]string
}

func newPatternCache() *patternCache {
	return &patternCache{
		cellSize: 2 * distBucket,
		cells:    make(map[[2]int]map[string]string),
	}
}

func (c *patternCache) cellOf(pos garden.Position) [2]int {
	return [2]int{
		int(math.Floor(pos.X / c.cellSize)),
		int(math.Floor(pos.Y / c.cellSize)),
	}
}

func (c *patternCache) key(v garden.Variety, pos garden.Position) string {
	// Quantize to the dedup tolerance so float jitter maps to one entry.
	return fmt.Sprintf("%.1f:%.1f:%s", pos.X, pos.Y, v.Signature())
}

// Signature returns the cached signature for (v, pos), computing and
// storing it on miss.
func (c *patternCache) Signature(g *garden.Garden, v garden.Variety, pos garden.Position) string {
	cell := c.cellOf(pos)
	key := c.key(v, pos)
	if entries, ok := c.cells[cell]; ok {
		if sig, ok := entries[key]; ok {
			return sig
		}
	}

	sig := patternSignature(g, v, pos)
	entries := c.cells[cell]
	if entries == nil {
		entries = make(map[string]string)
		c.cells[cell] = entries
	}
	entries[key] = sig
	return sig
}

// Invalidate drops every cached entry whose interaction radius could
// overlap a plant just committed at pos. Entries further away keep their
// signatures.
func (c *patternCache) Invalidate(pos garden.Position, radius int) {
	// A cached position can only be affected if it lies within its own
	// maximum interaction range plus the new plant's reach.
	reach := maxInteractionRange + float64(radius)
	minCell := c.cellOf(garden.Position{X: pos.X - reach, Y: pos.Y - reach})
	maxCell := c.cellOf(garden.Position{X: pos.X + reach, Y: pos.Y + reach})

	for cx := minCell[0]; cx <= maxCell[0]; cx++ {
		for cy := minCell[1]; cy <= maxCell[1]; cy++ {
			delete(c.cells, [2]int{cx, cy})
		}
	}
}

// Len reports the number of cached signatures, for tests.
func (c *patternCache) Len() int {
	var n int
	for _, entries := range c.cells {
		n += len(entries)
	}
	return n
}

// groupedCandidate is the representative of one interaction pattern class.
type groupedCandidate struct {
	Candidate
	signature  string
	spaceScore float64
}

// groupBySignature collapses candidates into one representative per
// interaction pattern. The representative is the member closest to the
// existing plants (best space utilization); for an empty garden, the one
// closest to the garden center.
func groupBySignature(g *garden.Garden, candidates []Candidate, cache *patternCache) []groupedCandidate {
	best := make(map[string]groupedCandidate)
	var order []string

	for _, cand := range candidates {
		sig := cache.Signature(g, cand.Variety, cand.Position)
		score := spaceScore(g, cand.Position)
		cur, seen := best[sig]
		if !seen {
			order = append(order, sig)
		}
		if !seen || score > cur.spaceScore {
			best[sig] = groupedCandidate{Candidate: cand, signature: sig, spaceScore: score}
		}
	}

	out := make([]groupedCandidate, 0, len(order))
	for _, sig := range order {
		out = append(out, best[sig])
	}
	return out
}

// spaceScore prefers positions close to existing plants, or close to the
// garden center when the garden is empty. Higher is better.
func spaceScore(g *garden.Garden, pos garden.Position) float64 {
	if len(g.Plants) == 0 {
		center := garden.Position{X: g.Width / 2, Y: g.Height / 2}
		return -pos.Distance(center)
	}
	minDist := math.Inf(1)
	for _, p := range g.Plants {
		if d := pos.Distance(p.Position); d < minDist {
			minDist = d
		}
	}
	return -minDist
}
