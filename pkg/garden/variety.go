package garden

import (
	"fmt"
	"sort"
	"strings"
)

// Nutrient identifies one of the three micronutrients exchanged between plants.
type Nutrient string

// The three micronutrients.
const (
	NutrientR Nutrient = "R"
	NutrientG Nutrient = "G"
	NutrientB Nutrient = "B"
)

// Nutrients lists all micronutrients in canonical order.
var Nutrients = []Nutrient{NutrientR, NutrientG, NutrientB}

// Species identifies a plant species. Each species produces exactly one
// nutrient and consumes the other two; only plants of different species
// can exchange nutrients.
type Species string

// The three plant species.
const (
	SpeciesRhododendron Species = "RHODODENDRON"
	SpeciesGeranium     Species = "GERANIUM"
	SpeciesBegonia      Species = "BEGONIA"
)

// AllSpecies lists every species in canonical order.
var AllSpecies = []Species{SpeciesRhododendron, SpeciesGeranium, SpeciesBegonia}

// Produces returns the nutrient this species produces.
func (s Species) Produces() Nutrient {
	switch s {
	case SpeciesRhododendron:
		return NutrientR
	case SpeciesGeranium:
		return NutrientG
	case SpeciesBegonia:
		return NutrientB
	}
	return ""
}

// Variety is an immutable plant template: species, footprint radius, and
// per-nutrient production/consumption coefficients. Multiple identical
// Variety instances may exist in an inventory (a multiset).
type Variety struct {
	Name         string               `json:"name" bson:"name"`
	Species      Species              `json:"species" bson:"species"`
	Radius       int                  `json:"radius" bson:"radius"`
	Coefficients map[Nutrient]float64 `json:"coefficients" bson:"coefficients"`
}

// Validate checks the variety against the growth rules: radius 1-3, every
// coefficient within ±2r, the species' own nutrient produced and the other
// two consumed, and positive net production.
func (v Variety) Validate() error {
	if v.Radius < 1 || v.Radius > 3 {
		return fmt.Errorf("variety %s: radius must be 1, 2 or 3, got %d", v.Name, v.Radius)
	}

	produced := v.Species.Produces()
	if produced == "" {
		return fmt.Errorf("variety %s: unknown species %q", v.Name, v.Species)
	}

	limit := 2 * float64(v.Radius)
	var sum float64
	for _, n := range Nutrients {
		c, ok := v.Coefficients[n]
		if !ok {
			return fmt.Errorf("variety %s: missing coefficient for nutrient %s", v.Name, n)
		}
		if c < -limit || c > limit {
			return fmt.Errorf("variety %s: coefficient for %s is %g, must be within ±%g", v.Name, n, c, limit)
		}
		if n == produced && c <= 0 {
			return fmt.Errorf("variety %s: %s must produce %s (coefficient > 0), got %g", v.Name, v.Species, n, c)
		}
		if n != produced && c >= 0 {
			return fmt.Errorf("variety %s: %s must consume %s (coefficient < 0), got %g", v.Name, v.Species, n, c)
		}
		sum += c
	}

	if sum <= 0 {
		return fmt.Errorf("variety %s: net production %g must be positive", v.Name, sum)
	}
	return nil
}

// Signature returns a canonical identity string for the variety template.
// Two instances with the same signature are behaviorally interchangeable,
// which is what inventory counting and pattern grouping rely on.
func (v Variety) Signature() string {
	parts := make([]string, 0, len(v.Coefficients))
	for n, c := range v.Coefficients {
		parts = append(parts, fmt.Sprintf("%s=%g", n, c))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%s|%d|%s", v.Name, v.Species, v.Radius, strings.Join(parts, ","))
}

// InteractionRange returns the distance below which a plant of this variety
// can exchange nutrients with a plant of the other variety.
func (v Variety) InteractionRange(other Variety) float64 {
	return float64(v.Radius + other.Radius)
}
