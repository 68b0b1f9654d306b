// Package nursery supplies the plant varieties available to a planning run,
// either loaded from a JSON catalog file or generated pseudo-randomly from
// a seed.
package nursery

import (
	"encoding/json"
	"math/rand"
	"os"
	"strconv"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
)

// catalogFile is the on-disk catalog format. Count expands a single entry
// into multiple identical instances.
type catalogFile struct {
	Seed      *int64         `json:"seed,omitempty"`
	Varieties []catalogEntry `json:"varieties"`
}

type catalogEntry struct {
	Name         string                      `json:"name"`
	Species      garden.Species              `json:"species"`
	Radius       int                         `json:"radius"`
	Coefficients map[garden.Nutrient]float64 `json:"nutrient_coefficients"`
	Count        int                         `json:"count,omitempty"`
}

// LoadCatalog reads a JSON variety catalog and returns the expanded multiset
// of validated varieties. Entries with a count of n contribute n identical
// instances.
func LoadCatalog(path string) ([]garden.Variety, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "reading catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog bytes.
func ParseCatalog(data []byte) ([]garden.Variety, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "parsing catalog")
	}
	if len(file.Varieties) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog contains no varieties")
	}

	var out []garden.Variety
	for _, entry := range file.Varieties {
		if err := errors.ValidateVarietyName(entry.Name); err != nil {
			return nil, err
		}
		v := garden.Variety{
			Name:         entry.Name,
			Species:      entry.Species,
			Radius:       entry.Radius,
			Coefficients: entry.Coefficients,
		}
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVariety, err, "catalog entry %s", entry.Name)
		}

		count := entry.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog entry %s: negative count %d", entry.Name, count)
		}
		for i := 0; i < count; i++ {
			out = append(out, v)
		}
	}
	return out, nil
}

// LoadInventory is LoadCatalog followed by inventory construction.
func LoadInventory(path string) (*garden.Inventory, error) {
	varieties, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return garden.NewInventory(varieties), nil
}

// GenerateRandom produces count valid varieties from a seeded generator.
// The same seed always yields the same catalog, which keeps tournament runs
// reproducible.
func GenerateRandom(seed int64, count int) []garden.Variety {
	rng := rand.New(rand.NewSource(seed))
	out := make([]garden.Variety, 0, count)
	for i := 0; i < count; i++ {
		species := garden.AllSpecies[rng.Intn(len(garden.AllSpecies))]
		radius := 1 + rng.Intn(3)
		out = append(out, garden.Variety{
			Name:         string(species) + "_" + strconv.Itoa(i+1),
			Species:      species,
			Radius:       radius,
			Coefficients: randomCoefficients(rng, species, radius),
		})
	}
	return out
}

// randomCoefficients draws a coefficient set that always satisfies the
// validation rules: produced nutrient positive, the other two negative,
// everything within ±2r, and a strictly positive net sum.
func randomCoefficients(rng *rand.Rand, species garden.Species, radius int) map[garden.Nutrient]float64 {
	limit := 2 * float64(radius)
	produced := species.Produces()

	// The lower bound keeps budget-first at or above the 0.1 consumption
	// floor, so the net sum stays positive even after rounding.
	producedVal := uniform(rng, 0.5, limit)
	budget := producedVal - 0.1

	var consumed []garden.Nutrient
	for _, n := range garden.Nutrients {
		if n != produced {
			consumed = append(consumed, n)
		}
	}

	first := uniform(rng, 0.1, min(budget*0.6, limit))
	second := uniform(rng, 0.1, min(budget-first, limit))

	return map[garden.Nutrient]float64{
		produced:    round2(producedVal),
		consumed[0]: round2(-first),
		consumed[1]: round2(-second),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	if v >= 0 {
		return float64(int(v*100+0.5)) / 100
	}
	return -float64(int(-v*100+0.5)) / 100
}
