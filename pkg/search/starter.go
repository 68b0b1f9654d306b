package search

import (
	"context"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/observability"
)

// starterTemplate is the rigid replica of the starter group: member offsets
// from the group's local origin plus the variety each slot needs. Once
// captured it is pure data; replication is translation plus collision and
// inventory checks, never re-optimization.
type starterTemplate struct {
	offsets   []garden.Position
	varieties []garden.Variety
	required  map[string]int
}

// captureTemplate normalizes the starter members so the minimum x and y sit
// at the local origin and records each member's offset and variety.
func captureTemplate(members []*garden.Plant) *starterTemplate {
	if len(members) == 0 {
		return nil
	}

	minX, minY := members[0].Position.X, members[0].Position.Y
	for _, m := range members[1:] {
		if m.Position.X < minX {
			minX = m.Position.X
		}
		if m.Position.Y < minY {
			minY = m.Position.Y
		}
	}

	t := &starterTemplate{required: make(map[string]int)}
	for _, m := range members {
		t.offsets = append(t.offsets, garden.Position{
			X: m.Position.X - minX,
			Y: m.Position.Y - minY,
		})
		t.varieties = append(t.varieties, m.Variety)
		t.required[m.Variety.Signature()]++
	}
	return t
}

// fitsAt reports whether every member of the template, translated to the
// given origin, stays in bounds and respects spacing against all existing
// plants and against the other members.
func (t *starterTemplate) fitsAt(g *garden.Garden, origin garden.Position) bool {
	placed := make([]int, 0, len(t.offsets))
	for i, off := range t.offsets {
		target := origin.Add(off.X, off.Y)
		if !g.WithinBounds(target) {
			return false
		}
		if !g.CanPlace(t.varieties[i], target) {
			return false
		}
		for _, j := range placed {
			minDist := float64(t.varieties[i].Radius)
			if r := float64(t.varieties[j].Radius); r > minDist {
				minDist = r
			}
			if target.Distance(origin.Add(t.offsets[j].X, t.offsets[j].Y)) < minDist {
				return false
			}
		}
		placed = append(placed, i)
	}
	return true
}

// placeAt commits the whole template at origin, consuming inventory. On any
// member failure the already placed members are rolled back and their
// varieties returned.
func (t *starterTemplate) placeAt(g *garden.Garden, inv *garden.Inventory, origin garden.Position) bool {
	var placed []*garden.Plant
	for i, off := range t.offsets {
		v := t.varieties[i]
		if !inv.Take(v) {
			t.rollback(g, inv, placed)
			return false
		}
		plant := g.Place(v, origin.Add(off.X, off.Y))
		if plant == nil {
			inv.Return(v)
			t.rollback(g, inv, placed)
			return false
		}
		placed = append(placed, plant)
	}
	return true
}

func (t *starterTemplate) rollback(g *garden.Garden, inv *garden.Inventory, placed []*garden.Plant) {
	for _, p := range placed {
		g.Remove(p.ID)
		inv.Return(p.Variety)
	}
}

// replicate scans candidate origins across the garden in row-major order
// and stamps the template wherever it fits and inventory allows. No scorer
// calls happen here; the phase's cost is pure collision geometry. Returns
// the number of copies placed.
//
// A template below three members is never replicated: its copies cannot
// give every member two interacting species, so they would all be pruned
// again later.
func (p *Planner) replicate(ctx context.Context) int {
	t := p.template
	if t == nil || len(t.offsets) < 3 {
		return 0
	}

	copies := 0
	for p.inv.Has(t.required) {
		if p.gov.TimedOut(ctx) {
			break
		}

		found := false
	scan:
		for y := 0; y <= int(p.g.Height); y++ {
			for x := 0; x <= int(p.g.Width); x++ {
				origin := garden.Position{X: float64(x), Y: float64(y)}
				if !t.fitsAt(p.g, origin) {
					continue
				}
				if !t.placeAt(p.g, p.inv, origin) {
					continue
				}
				copies++
				found = true
				p.log.Debug("replicated starter group", "copy", copies, "x", x, "y", y)
				for i := range t.offsets {
					p.cache.Invalidate(origin.Add(t.offsets[i].X, t.offsets[i].Y), t.varieties[i].Radius)
				}
				observability.Search().OnPlacement(ctx, "starter-group", origin.X, origin.Y, 0)
				break scan
			}
		}
		if !found {
			break
		}
	}
	return copies
}
