package game

import (
	"math"
	"math/rand"
)

type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) IsZero() bool         { return a.X == 0 && a.Y == 0 }

// Norm returns the unit vector of a, or the zero vector when a has no length.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return a.Scale(1 / l)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rect is an axis-aligned rectangle, Min inclusive and Max inclusive.
type Rect struct {
	Min Vec2
	Max Vec2
}

func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{X: minX, Y: minY}, Max: Vec2{X: maxX, Y: maxY}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Valid() bool {
	return r.Max.X > r.Min.X && r.Max.Y > r.Min.Y
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{X: Clamp(p.X, r.Min.X, r.Max.X), Y: Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// Sample draws a point uniformly from the rectangle.
func (r Rect) Sample(rng *rand.Rand) Vec2 {
	return Vec2{
		X: r.Min.X + rng.Float64()*r.Width(),
		Y: r.Min.Y + rng.Float64()*r.Height(),
	}
}

// Inset shrinks the rectangle by margin on every side. A margin that would
// invert the rectangle collapses it to its center.
func (r Rect) Inset(margin float64) Rect {
	out := Rect{
		Min: Vec2{X: r.Min.X + margin, Y: r.Min.Y + margin},
		Max: Vec2{X: r.Max.X - margin, Y: r.Max.Y - margin},
	}
	if !out.Valid() {
		c := Vec2{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
		return Rect{Min: c, Max: c}
	}
	return out
}
