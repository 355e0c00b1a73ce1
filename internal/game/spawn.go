package game

import "math/rand"

// Director keeps the hostile population topped up on a fixed cadence. It
// only decides where and when; the session does the spawning.
type Director struct {
	Interval float64
	Cap      int

	arena Arena
	rng   *rand.Rand
	acc   float64
}

func NewDirector(interval float64, maxAlive int, arena Arena, rng *rand.Rand) *Director {
	return &Director{Interval: interval, Cap: maxAlive, arena: arena, rng: rng}
}

// Tick advances the cadence clock and returns the spawn points due now. alive
// is the current enemy count; the result never takes it past Cap.
func (d *Director) Tick(dt float64, alive int) []Vec2 {
	if d.Interval <= 0 {
		return nil
	}
	d.acc += dt
	var out []Vec2
	for d.acc >= d.Interval {
		d.acc -= d.Interval
		if alive < d.Cap {
			out = append(out, d.arena.SamplePoint(d.rng))
			alive++
		}
	}
	return out
}

// RespawnPoint picks the position of a replacement after a kill. Respawns
// ignore Cap; the next cadence tick re-checks it.
func (d *Director) RespawnPoint() Vec2 {
	return d.arena.SamplePoint(d.rng)
}

func (s *Session) spawnEnemy(pos Vec2) EntityID {
	id := s.World.Spawn(KindEnemy, pos, EntityAttrs{
		Radius: s.tuning.EnemyRadius,
		Health: s.tuning.EnemyMaxHealth,
	})
	s.log.Debug().Int64("enemy", int64(id)).Float64("x", pos.X).Float64("y", pos.Y).Msg("enemy spawned")
	return id
}

func (s *Session) runDirector(dt float64) {
	for _, p := range s.Director.Tick(dt, s.World.Count(KindEnemy)) {
		s.spawnEnemy(p)
	}
}
