package game

import (
	"math/rand"
)

// Overlap is one intersection reported for the current tick. Wall overlaps
// carry only A.
type Overlap struct {
	A, B EntityID
	Wall bool
}

// Physics is the movement and overlap collaborator. It reports every pair
// that intersects on every tick; it does not dedupe sustained contact.
type Physics interface {
	// MoveToward returns the velocity that carries from toward target at speed.
	MoveToward(from, target Vec2, speed float64) Vec2
	// Advance returns the entity's position after dt at its current velocity.
	Advance(e Entity, dt float64) Vec2
	Overlaps(w *World) []Overlap
}

// Arena describes the playable area.
type Arena struct {
	Bounds      Rect
	Walls       []Rect
	SpawnMargin float64
}

func DefaultArena() Arena {
	return Arena{
		Bounds:      NewRect(0, 0, ArenaW, ArenaH),
		SpawnMargin: ArenaSpawnMargin,
	}
}

// OpenArea is the region enemies may spawn in.
func (a Arena) OpenArea() Rect {
	return a.Bounds.Inset(a.SpawnMargin)
}

func (a Arena) Center() Vec2 {
	return Vec2{X: (a.Bounds.Min.X + a.Bounds.Max.X) / 2, Y: (a.Bounds.Min.Y + a.Bounds.Max.Y) / 2}
}

func (a Arena) InWall(p Vec2, radius float64) bool {
	for _, w := range a.Walls {
		if circleRect(p, radius, w) {
			return true
		}
	}
	return false
}

// SamplePoint draws a point uniformly from the open area, retrying a bounded
// number of times to avoid walls.
func (a Arena) SamplePoint(rng *rand.Rand) Vec2 {
	area := a.OpenArea()
	p := area.Sample(rng)
	for i := 0; i < 16 && a.InWall(p, 0); i++ {
		p = area.Sample(rng)
	}
	return p
}

// ArenaPhysics is a circle-body collaborator: bodies are clamped to the arena
// bounds and stopped by walls, projectiles fly free and report a wall overlap
// once they leave the bounds or touch a wall.
type ArenaPhysics struct {
	Arena Arena
}

func NewArenaPhysics(a Arena) *ArenaPhysics {
	return &ArenaPhysics{Arena: a}
}

func (p *ArenaPhysics) MoveToward(from, target Vec2, speed float64) Vec2 {
	dir := target.Sub(from)
	if dir.Len() < 1e-6 {
		return Vec2{}
	}
	return dir.Norm().Scale(speed)
}

func (p *ArenaPhysics) Advance(e Entity, dt float64) Vec2 {
	next := e.Pos.Add(e.Vel.Scale(dt))
	if e.Kind == KindProjectile {
		return next
	}
	next = p.Arena.Bounds.Inset(e.Radius).Clamp(next)
	if p.Arena.InWall(next, e.Radius) {
		return e.Pos
	}
	return next
}

var overlapPairs = [][2]EntityKind{
	{KindPlayer, KindEnemy},
	{KindAttackHitbox, KindEnemy},
	{KindProjectile, KindEnemy},
	{KindPlayer, KindPickup},
}

func (p *ArenaPhysics) Overlaps(w *World) []Overlap {
	var out []Overlap
	for _, pair := range overlapPairs {
		as := w.IDs(pair[0])
		if len(as) == 0 {
			continue
		}
		bs := w.IDs(pair[1])
		for _, a := range as {
			ea, _ := w.Get(a)
			for _, b := range bs {
				eb, _ := w.Get(b)
				if circles(ea.Pos, ea.Radius, eb.Pos, eb.Radius) {
					out = append(out, Overlap{A: a, B: b})
				}
			}
		}
	}
	for _, id := range w.IDs(KindProjectile) {
		e, _ := w.Get(id)
		if !p.Arena.Bounds.Contains(e.Pos) || p.Arena.InWall(e.Pos, e.Radius) {
			out = append(out, Overlap{A: id, Wall: true})
		}
	}
	return out
}

func circles(a Vec2, ra float64, b Vec2, rb float64) bool {
	r := ra + rb
	d := a.Sub(b)
	return d.Dot(d) <= r*r
}

func circleRect(c Vec2, radius float64, r Rect) bool {
	closest := r.Clamp(c)
	d := c.Sub(closest)
	return d.Dot(d) <= radius*radius
}
