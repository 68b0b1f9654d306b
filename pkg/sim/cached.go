package sim

import (
	"context"
	"encoding/json"

	"github.com/verdantlabs/verdant/pkg/cache"
	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/observability"
)

// Cached memoizes simulation traces in a cache.Cache. The placement search
// evaluates many candidates against identical base snapshots, so repeated
// traces are common enough to make memoization worthwhile.
type Cached struct {
	inner Simulator
	cache cache.Cache
}

// NewCached wraps inner with trace memoization. A nil cache disables
// memoization.
func NewCached(inner Simulator, c cache.Cache) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Cached{inner: inner, cache: c}
}

// Simulate returns a cached trace when the (snapshot, turns) pair has been
// simulated before, and otherwise delegates to the inner simulator and
// stores the result. Cache failures are ignored: the simulation result is
// always authoritative.
func (c *Cached) Simulate(ctx context.Context, g *garden.Garden, turns int) (Trace, error) {
	snap, err := snapshot(g)
	if err != nil {
		return c.inner.Simulate(ctx, g, turns)
	}
	key := cache.TraceKey(snap, turns)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		var trace Trace
		if err := json.Unmarshal(data, &trace); err == nil {
			observability.Cache().OnHit(ctx, "trace")
			return trace, nil
		}
	}
	observability.Cache().OnMiss(ctx, "trace")

	trace, err := c.inner.Simulate(ctx, g, turns)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(trace); err == nil {
		_ = c.cache.Set(ctx, key, data, cache.TTLTrace)
		observability.Cache().OnSet(ctx, "trace", len(data))
	}
	return trace, nil
}

// snapshotPlant is the identity-free serialization of a plant used for
// cache keys: two gardens that differ only in plant IDs simulate
// identically and should share trace entries.
type snapshotPlant struct {
	Species   garden.Species              `json:"species"`
	Radius    int                         `json:"radius"`
	Coeffs    map[garden.Nutrient]float64 `json:"coeffs"`
	Position  garden.Position             `json:"position"`
	Size      float64                     `json:"size"`
	Inventory map[garden.Nutrient]float64 `json:"inventory"`
}

func snapshot(g *garden.Garden) ([]byte, error) {
	plants := make([]snapshotPlant, len(g.Plants))
	for i, p := range g.Plants {
		plants[i] = snapshotPlant{
			Species:   p.Variety.Species,
			Radius:    p.Variety.Radius,
			Coeffs:    p.Variety.Coefficients,
			Position:  p.Position,
			Size:      p.Size,
			Inventory: p.Inventory,
		}
	}
	return json.Marshal(struct {
		Width  float64         `json:"width"`
		Height float64         `json:"height"`
		Plants []snapshotPlant `json:"plants"`
	}{g.Width, g.Height, plants})
}
