// Package garden defines the domain model for plant placement: varieties,
// placed plants, the bounded 2-D garden, and the geometric rules that
// constrain placement and nutrient exchange.
//
// Two plants may never have centers closer than the larger of their radii,
// and every center must lie inside the garden rectangle. Two plants of
// different species interact (exchange nutrients) when their centers are
// closer than the sum of their radii.
package garden

// Default garden dimensions.
const (
	DefaultWidth  = 16.0
	DefaultHeight = 10.0
)

// Garden is the bounded rectangle and the ordered collection of placed
// plants. It is not safe for concurrent mutation; the placement controller
// owns the authoritative instance and hands clones to trial evaluations.
type Garden struct {
	Width  float64  `json:"width" bson:"width"`
	Height float64  `json:"height" bson:"height"`
	Plants []*Plant `json:"plants" bson:"plants"`
}

// New creates an empty garden with the given dimensions.
func New(width, height float64) *Garden {
	return &Garden{Width: width, Height: height}
}

// WithinBounds reports whether pos lies inside the garden rectangle.
func (g *Garden) WithinBounds(pos Position) bool {
	return pos.X >= 0 && pos.X <= g.Width && pos.Y >= 0 && pos.Y <= g.Height
}

// CanPlace reports whether a plant of variety v may be placed at pos:
// the center must be in bounds and at distance ≥ max(r_new, r_existing)
// from every placed plant.
func (g *Garden) CanPlace(v Variety, pos Position) bool {
	if !g.WithinBounds(pos) {
		return false
	}
	for _, p := range g.Plants {
		minDist := float64(v.Radius)
		if r := float64(p.Variety.Radius); r > minDist {
			minDist = r
		}
		if pos.Distance(p.Position) < minDist {
			return false
		}
	}
	return true
}

// Place validates and commits a new plant, returning it, or nil if the
// position violates the bounds or spacing constraints.
func (g *Garden) Place(v Variety, pos Position) *Plant {
	if !g.CanPlace(v, pos) {
		return nil
	}
	p := NewPlant(v, pos)
	g.Plants = append(g.Plants, p)
	return p
}

// Remove deletes the plant with the given ID, preserving order.
// It reports whether a plant was removed.
func (g *Garden) Remove(id string) bool {
	for i, p := range g.Plants {
		if p.ID == id {
			g.Plants = append(g.Plants[:i], g.Plants[i+1:]...)
			return true
		}
	}
	return false
}

// Interacting returns the plants that exchange nutrients with p: different
// species, centers closer than the sum of the radii.
func (g *Garden) Interacting(p *Plant) []*Plant {
	var out []*Plant
	for _, other := range g.Plants {
		if other == p || other.Variety.Species == p.Variety.Species {
			continue
		}
		if p.Position.Distance(other.Position) < p.Variety.InteractionRange(other.Variety) {
			out = append(out, other)
		}
	}
	return out
}

// InteractingSpecies returns the set of species a plant of variety v at pos
// would exchange with. Same-species neighbors never count.
func (g *Garden) InteractingSpecies(v Variety, pos Position) map[Species]bool {
	species := make(map[Species]bool)
	for _, p := range g.Plants {
		if p.Variety.Species == v.Species {
			continue
		}
		if pos.Distance(p.Position) < v.InteractionRange(p.Variety) {
			species[p.Variety.Species] = true
		}
	}
	return species
}

// InteractionPairs returns every interacting pair exactly once.
func (g *Garden) InteractionPairs() [][2]*Plant {
	var pairs [][2]*Plant
	for i, p := range g.Plants {
		for _, q := range g.Plants[i+1:] {
			if p.Variety.Species == q.Variety.Species {
				continue
			}
			if p.Position.Distance(q.Position) < p.Variety.InteractionRange(q.Variety) {
				pairs = append(pairs, [2]*Plant{p, q})
			}
		}
	}
	return pairs
}

// TotalGrowth returns the summed size of all plants.
func (g *Garden) TotalGrowth() float64 {
	var total float64
	for _, p := range g.Plants {
		total += p.Size
	}
	return total
}

// Clone returns a deep copy of the garden. Trial placements mutate the
// clone; the authoritative garden is only ever mutated by its owner.
func (g *Garden) Clone() *Garden {
	cp := &Garden{Width: g.Width, Height: g.Height}
	if len(g.Plants) > 0 {
		cp.Plants = make([]*Plant, len(g.Plants))
		for i, p := range g.Plants {
			cp.Plants[i] = p.Clone()
		}
	}
	return cp
}

// Coverage estimates the fraction of garden area claimed by the plants'
// interaction footprints, with overlap deduplicated by sampling the garden
// on a uniform grid of roughly samples points.
func (g *Garden) Coverage(samples int) float64 {
	if g.Width <= 0 || g.Height <= 0 || len(g.Plants) == 0 || samples <= 0 {
		return 0
	}

	// Grid with aspect ratio matching the garden.
	nx := int(float64(samples) * g.Width / (g.Width + g.Height))
	if nx < 1 {
		nx = 1
	}
	ny := samples / nx
	if ny < 1 {
		ny = 1
	}

	covered := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			pos := Position{
				X: (float64(i) + 0.5) * g.Width / float64(nx),
				Y: (float64(j) + 0.5) * g.Height / float64(ny),
			}
			for _, p := range g.Plants {
				if pos.Distance(p.Position) <= 2*float64(p.Variety.Radius) {
					covered++
					break
				}
			}
		}
	}
	return float64(covered) / float64(nx*ny)
}
