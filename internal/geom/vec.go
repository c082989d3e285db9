// Package geom holds the 2D primitives shared by the folding pipeline.
// Every predicate takes its tolerance explicitly.
package geom

import (
	"math"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// Vec is a 2D point or direction.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// FromPoint converts a crease pattern point.
func FromPoint(p model.Point2D) Vec { return Vec{X: p.X, Y: p.Y} }

// Point converts back to a crease pattern point.
func (a Vec) Point() model.Point2D { return model.Point2D{X: a.X, Y: a.Y} }

func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y} }
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y} }
func (a Vec) Scale(s float64) Vec { return Vec{a.X * s, a.Y * s} }
func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec) Cross(b Vec) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec) Len() float64 { return math.Hypot(a.X, a.Y) }
func (a Vec) Dist(b Vec) float64 { return a.Sub(b).Len() }
func (a Vec) Mid(b Vec) Vec { return Vec{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }
func (a Vec) Lerp(b Vec, t float64) Vec {
	return Vec{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Equal reports whether a and b are within eps of each other.
func (a Vec) Equal(b Vec, eps float64) bool {
	return a.Dist(b) <= eps
}

// Unit returns the direction of a, or the zero vector for a zero-length input.
func (a Vec) Unit() Vec {
	l := a.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{a.X / l, a.Y / l}
}

// Angle returns the direction of a in [0, 2π).
func (a Vec) Angle() float64 {
	t := math.Atan2(a.Y, a.X)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

// Less orders points by X then Y; used for deterministic sorting.
func (a Vec) Less(b Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Orientation returns +1 when c lies left of the directed line a→b (CCW turn),
// -1 when it lies right, and 0 when its distance to the line is within eps.
func Orientation(a, b, c Vec, eps float64) int {
	ab := b.Sub(a)
	l := ab.Len()
	if l == 0 {
		return 0
	}
	d := ab.Cross(c.Sub(a)) / l
	switch {
	case d > eps:
		return 1
	case d < -eps:
		return -1
	}
	return 0
}

// ReflectAcross mirrors p across the infinite line through a and b.
func ReflectAcross(p, a, b Vec) Vec {
	d := b.Sub(a).Unit()
	ap := p.Sub(a)
	foot := a.Add(d.Scale(ap.Dot(d)))
	return foot.Scale(2).Sub(p)
}

// NormalizeAngle maps t into [0, 2π).
func NormalizeAngle(t float64) float64 {
	t = math.Mod(t, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}
