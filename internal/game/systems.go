package game

func (s *Session) moveEntities(dt float64) {
	updatePlayer(s, dt)
	updateEnemies(s, dt)
	updateProjectiles(s, dt)
}

func updatePlayer(s *Session, dt float64) {
	world := s.World
	e, ok := world.Get(s.player)
	tr := world.Transform(s.player)
	if !ok || tr == nil {
		return
	}
	tr.Vel = s.intent.Scale(s.tuning.PlayerSpeed)
	e.Vel = tr.Vel
	tr.Pos = s.physics.Advance(e, dt)
}

// updateEnemies chases the player, except while an enemy is knocked back:
// then it slides along its knockback direction instead.
func updateEnemies(s *Session, dt float64) {
	world := s.World
	target := Vec2{}
	if ptr := world.Transform(s.player); ptr != nil {
		target = ptr.Pos
	}
	world.ForEachAlive(KindEnemy, func(id EntityID) {
		tr := world.Transform(id)
		st := world.Status(id)
		if tr == nil || st == nil {
			return
		}
		if st.Has(FlagKnockedBack) {
			tr.Vel = st.KnockbackDir.Scale(s.tuning.KnockbackSpeed)
		} else {
			tr.Vel = s.physics.MoveToward(tr.Pos, target, s.tuning.EnemySpeed)
		}
		if !tr.Vel.IsZero() {
			tr.Facing = tr.Vel.Norm()
		}
		e, _ := world.Get(id)
		tr.Pos = s.physics.Advance(e, dt)
	})
}

func updateProjectiles(s *Session, dt float64) {
	world := s.World
	world.ForEachAlive(KindProjectile, func(id EntityID) {
		tr := world.Transform(id)
		if tr == nil {
			return
		}
		e, _ := world.Get(id)
		tr.Pos = s.physics.Advance(e, dt)
	})
}
