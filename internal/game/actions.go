package game

// SetMoveIntent sets the player's movement direction. Components are in
// [-1, 1]; diagonals are normalized. A non-zero intent also turns the player
// to a cardinal facing, with the vertical axis taking precedence.
func (s *Session) SetMoveIntent(dir Vec2) bool {
	if !s.running() {
		return false
	}
	if dir.Len() > 1 {
		dir = dir.Norm()
	}
	s.intent = dir
	if tr := s.World.Transform(s.player); tr != nil {
		if f := cardinalFacing(dir); !f.IsZero() {
			tr.Facing = f
		}
	}
	return true
}

func cardinalFacing(dir Vec2) Vec2 {
	var f Vec2
	if dir.X < 0 {
		f = Vec2{X: -1}
	} else if dir.X > 0 {
		f = Vec2{X: 1}
	}
	if dir.Y < 0 {
		f = Vec2{Y: -1}
	} else if dir.Y > 0 {
		f = Vec2{Y: 1}
	}
	return f
}

// Slash places a melee hitbox in front of the player. Only one slash can be
// out at a time.
func (s *Session) Slash() (EntityID, bool) {
	if !s.running() {
		return 0, false
	}
	tr := s.World.Transform(s.player)
	st := s.World.Status(s.player)
	if tr == nil || st == nil || st.Has(FlagSlashing) {
		return 0, false
	}
	pos := tr.Pos.Add(tr.Facing.Scale(s.tuning.SlashOffset))
	id := s.World.Spawn(KindAttackHitbox, pos, EntityAttrs{
		Facing: tr.Facing,
		Radius: s.tuning.SlashRadius,
		Damage: s.tuning.MeleeDamage,
		Source: s.player,
	})
	st.Set(FlagSlashing)
	player := s.player
	s.Effects.Arm(id, EffectHitboxTTL, s.tuning.SlashDuration, func() {
		s.World.Destroy(id)
		if st := s.World.Status(player); st != nil {
			st.Clear(FlagSlashing)
		}
	})
	return id, true
}

// Shoot fires a projectile along the player's facing. It fails while
// MaxProjectiles are in flight.
func (s *Session) Shoot() (EntityID, bool) {
	if !s.running() {
		return 0, false
	}
	if s.World.Count(KindProjectile) >= s.tuning.MaxProjectiles {
		return 0, false
	}
	tr := s.World.Transform(s.player)
	if tr == nil {
		return 0, false
	}
	facing := tr.Facing
	if facing.IsZero() {
		facing = Vec2{X: 1}
	}
	id := s.World.Spawn(KindProjectile, tr.Pos.Add(facing.Scale(s.tuning.ProjectileOffset)), EntityAttrs{
		Vel:    facing.Scale(s.tuning.ProjectileSpeed),
		Facing: facing,
		Radius: s.tuning.ProjectileRadius,
		Damage: s.tuning.ProjectileDamage,
		Source: s.player,
	})
	s.Effects.Arm(id, EffectProjectileTTL, s.tuning.ProjectileLifetime, func() {
		s.World.Destroy(id)
	})
	return id, true
}
