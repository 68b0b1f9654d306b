package garden

import "math"

// Position is a point in garden coordinates.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Distance returns the Euclidean distance to other.
func (p Position) Distance(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the position translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// CircleIntersections returns the intersection points of two circles,
// which may be zero (disjoint or nested), one (tangent), or two points.
// These are the natural anchor positions for a plant that should touch
// both circles' owners.
func CircleIntersections(c1 Position, r1 float64, c2 Position, r2 float64) []Position {
	d := c1.Distance(c2)
	if d > r1+r2 || d < math.Abs(r1-r2) || d == 0 {
		return nil
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h2 := r1*r1 - a*a
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)

	// Base point on the line between the centers.
	px := c1.X + a*(c2.X-c1.X)/d
	py := c1.Y + a*(c2.Y-c1.Y)/d

	if h == 0 {
		return []Position{{X: px, Y: py}}
	}

	ox := h * (c2.Y - c1.Y) / d
	oy := h * (c2.X - c1.X) / d
	return []Position{
		{X: px + ox, Y: py - oy},
		{X: px - ox, Y: py + oy},
	}
}
