package garden

import "github.com/google/uuid"

// Plant is a Variety instance committed to a position. Identity is assigned
// at creation and never changes; re-placement means removal and re-creation.
//
// Size and Inventory carry the simulation state: they start at zero and
// half-full reservoirs respectively and are advanced by the growth engine.
type Plant struct {
	ID        string               `json:"id" bson:"id"`
	Variety   Variety              `json:"variety" bson:"variety"`
	Position  Position             `json:"position" bson:"position"`
	Size      float64              `json:"size" bson:"size"`
	Inventory map[Nutrient]float64 `json:"inventory" bson:"inventory"`
}

// NewPlant creates a plant at the given position with a fresh identity,
// zero size, and each nutrient reservoir filled to half capacity.
func NewPlant(v Variety, pos Position) *Plant {
	inv := make(map[Nutrient]float64, len(Nutrients))
	for _, n := range Nutrients {
		inv[n] = v.ReservoirCapacity() / 2
	}
	return &Plant{
		ID:        uuid.NewString(),
		Variety:   v,
		Position:  pos,
		Inventory: inv,
	}
}

// ReservoirCapacity returns the per-nutrient storage limit, 10× radius.
func (v Variety) ReservoirCapacity() float64 {
	return 10 * float64(v.Radius)
}

// MaxSize returns the growth ceiling, 100 × radius².
func (v Variety) MaxSize() float64 {
	return 100 * float64(v.Radius) * float64(v.Radius)
}

// Clone returns a deep copy of the plant, preserving its identity.
func (p *Plant) Clone() *Plant {
	inv := make(map[Nutrient]float64, len(p.Inventory))
	for n, amt := range p.Inventory {
		inv[n] = amt
	}
	cp := *p
	cp.Inventory = inv
	return &cp
}

// GrowthPercent returns the plant's size as a fraction of its maximum, 0-100.
func (p *Plant) GrowthPercent() float64 {
	max := p.Variety.MaxSize()
	if max == 0 {
		return 0
	}
	return 100 * p.Size / max
}
