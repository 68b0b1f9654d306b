// Package layout defines the serialized output of a planning run: the
// placed plants, the dimensions they were placed in, and the projected
// growth. Layouts are what the CLI writes to disk, the API serves, and
// the tournament store persists.
package layout

import (
	"encoding/json"
	"os"
	"time"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
)

// Placement is one committed plant in a layout.
type Placement struct {
	Variety  garden.Variety  `json:"variety" bson:"variety"`
	Position garden.Position `json:"position" bson:"position"`
}

// Layout is a complete placement plan plus run metadata.
type Layout struct {
	Width     float64     `json:"width" bson:"width"`
	Height    float64     `json:"height" bson:"height"`
	Plants    []Placement `json:"plants" bson:"plants"`
	Turns     int         `json:"turns" bson:"turns"`
	Projected float64     `json:"projected_growth" bson:"projected_growth"`
	Elapsed   float64     `json:"elapsed_seconds" bson:"elapsed_seconds"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// FromGarden captures g's plants as a layout.
func FromGarden(g *garden.Garden) *Layout {
	l := &Layout{
		Width:     g.Width,
		Height:    g.Height,
		CreatedAt: time.Now().UTC(),
	}
	for _, p := range g.Plants {
		l.Plants = append(l.Plants, Placement{Variety: p.Variety, Position: p.Position})
	}
	return l
}

// Garden rebuilds a placeable garden from the layout. Placements that
// violate the spacing rules are rejected, so a tampered layout cannot
// produce an invalid garden.
func (l *Layout) Garden() (*garden.Garden, error) {
	if err := errors.ValidateDimensions(l.Width, l.Height); err != nil {
		return nil, err
	}
	g := garden.New(l.Width, l.Height)
	for i, p := range l.Plants {
		if err := p.Variety.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVariety, err, "layout plant %d", i)
		}
		if g.Place(p.Variety, p.Position) == nil {
			return nil, errors.New(errors.ErrCodeInvalidPlacement,
				"layout plant %d (%s) at (%g, %g) violates placement rules",
				i, p.Variety.Name, p.Position.X, p.Position.Y)
		}
	}
	return g, nil
}

// Save writes the layout as indented JSON.
func (l *Layout) Save(path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding layout")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// Load reads a layout from a JSON file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeLayoutNotFound, err, "layout %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing layout %s", path)
	}
	return &l, nil
}
