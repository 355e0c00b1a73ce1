package game

type kindPair struct{ a, b EntityKind }

func (s *Session) resolveOverlaps() {
	for _, ov := range s.physics.Overlaps(s.World) {
		if !s.running() {
			return
		}
		s.dispatchOverlap(ov)
	}
}

// dispatchOverlap routes an overlap to its handler by the kinds involved.
// Pairs with no rule are ignored.
func (s *Session) dispatchOverlap(ov Overlap) {
	ka, ok := s.World.Kind(ov.A)
	if !ok {
		return
	}
	if ov.Wall {
		if ka == KindProjectile {
			s.onProjectileWallOverlap(ov.A)
		}
		return
	}
	kb, ok := s.World.Kind(ov.B)
	if !ok {
		return
	}
	switch (kindPair{ka, kb}) {
	case kindPair{KindPlayer, KindEnemy}:
		s.onPlayerEnemyOverlap(ov.A, ov.B)
	case kindPair{KindEnemy, KindPlayer}:
		s.onPlayerEnemyOverlap(ov.B, ov.A)
	case kindPair{KindAttackHitbox, KindEnemy}, kindPair{KindProjectile, KindEnemy}:
		s.onAttackEnemyOverlap(ov.A, ov.B)
	case kindPair{KindEnemy, KindAttackHitbox}, kindPair{KindEnemy, KindProjectile}:
		s.onAttackEnemyOverlap(ov.B, ov.A)
	case kindPair{KindPlayer, KindPickup}:
		s.onPlayerPickupOverlap(ov.A, ov.B)
	case kindPair{KindPickup, KindPlayer}:
		s.onPlayerPickupOverlap(ov.B, ov.A)
	}
}

// onPlayerEnemyOverlap applies contact damage unless the player is inside
// its grace window. Killing the player freezes the session.
func (s *Session) onPlayerEnemyOverlap(player, enemy EntityID) {
	if !s.running() || !s.World.Alive(player) || !s.World.Alive(enemy) {
		return
	}
	st := s.World.Status(player)
	hp := s.World.Health(player)
	if st == nil || hp == nil || st.Has(FlagInvincible) {
		return
	}
	dead := hp.Apply(s.tuning.ContactDamage)
	s.damageApplied(KindPlayer, s.tuning.ContactDamage)
	s.log.Debug().Int("hp", hp.HP).Int64("enemy", int64(enemy)).Msg("player hit")
	if dead {
		s.freeze()
		return
	}
	st.Set(FlagInvincible)
	s.Effects.Arm(player, EffectInvincible, s.tuning.PlayerGrace, func() {
		if st := s.World.Status(player); st != nil {
			st.Clear(FlagInvincible)
		}
	})
}

// onAttackEnemyOverlap is the damage path shared by slash hitboxes and
// projectiles. A projectile that lands damage is used up.
func (s *Session) onAttackEnemyOverlap(attack, enemy EntityID) {
	if !s.running() || !s.World.Alive(attack) || !s.World.Alive(enemy) {
		return
	}
	atk := s.World.Attack(attack)
	st := s.World.Status(enemy)
	hp := s.World.Health(enemy)
	etr := s.World.Transform(enemy)
	if atk == nil || st == nil || hp == nil || etr == nil || st.Has(FlagInvincible) {
		return
	}
	kind, _ := s.World.Kind(attack)
	from := s.knockbackOrigin(attack, atk)
	pos := etr.Pos

	dead := hp.Apply(atk.Damage)
	s.damageApplied(KindEnemy, atk.Damage)
	if kind == KindProjectile {
		s.World.Destroy(attack)
	}
	if dead {
		s.killEnemy(enemy, pos)
		return
	}

	st.Set(FlagInvincible)
	s.Effects.Arm(enemy, EffectInvincible, s.tuning.EnemyGrace, func() {
		if st := s.World.Status(enemy); st != nil {
			st.Clear(FlagInvincible)
		}
	})

	dir := pos.Sub(from.pos).Norm()
	if dir.IsZero() {
		dir = from.facing.Norm()
	}
	if dir.IsZero() {
		dir = Vec2{X: 1}
	}
	st.KnockbackDir = dir
	st.Set(FlagKnockedBack)
	s.Effects.Arm(enemy, EffectKnockback, s.tuning.KnockbackDuration, func() {
		if st := s.World.Status(enemy); st != nil {
			st.Clear(FlagKnockedBack)
			st.KnockbackDir = Vec2{}
		}
	})
}

type attackOrigin struct {
	pos    Vec2
	facing Vec2
}

// knockbackOrigin is the point an enemy is pushed away from: the attack's
// source while it lives, else the attack itself.
func (s *Session) knockbackOrigin(attack EntityID, atk *AttackComponent) attackOrigin {
	var o attackOrigin
	if tr := s.World.Transform(attack); tr != nil {
		o.pos = tr.Pos
		o.facing = tr.Facing
		if o.facing.IsZero() {
			o.facing = tr.Vel
		}
	}
	if atk.Source != 0 {
		if src := s.World.Transform(atk.Source); src != nil {
			o.pos = src.Pos
			if o.facing.IsZero() {
				o.facing = src.Facing
			}
		}
	}
	return o
}

// killEnemy removes the enemy, pays the kill reward and rolls the drop.
func (s *Session) killEnemy(enemy EntityID, pos Vec2) {
	if !s.World.Destroy(enemy) {
		return
	}
	s.score.Add(s.tuning.KillReward)
	s.kills++
	if s.metrics != nil {
		s.metrics.EnemyKilled()
	}
	s.log.Debug().Int64("enemy", int64(enemy)).Uint64("score", s.score.Value()).Msg("enemy killed")

	if s.rng.Float64() < s.tuning.DropChance {
		s.spawnPickup(pos)
	}
	if s.tuning.RespawnOnKill {
		s.Effects.ArmTagged(SessionOwner, EffectRespawn, enemy, s.tuning.RespawnDelay, func() {
			s.spawnEnemy(s.Director.RespawnPoint())
		})
	}
}

func (s *Session) spawnPickup(pos Vec2) EntityID {
	id := s.World.Spawn(KindPickup, pos, EntityAttrs{Radius: s.tuning.PickupRadius})
	s.Effects.Arm(id, EffectPickupTTL, s.tuning.PickupLifetime, func() {
		s.World.Destroy(id)
	})
	return id
}

func (s *Session) onProjectileWallOverlap(projectile EntityID) {
	if !s.running() {
		return
	}
	if kind, ok := s.World.Kind(projectile); !ok || kind != KindProjectile {
		return
	}
	s.World.Destroy(projectile)
}

func (s *Session) onPlayerPickupOverlap(player, pickup EntityID) {
	if !s.running() || !s.World.Alive(player) {
		return
	}
	if !s.World.Destroy(pickup) {
		return
	}
	s.score.Add(s.tuning.PickupReward)
	if s.metrics != nil {
		s.metrics.PickupCollected()
	}
}

func (s *Session) damageApplied(target EntityKind, amount int) {
	if s.metrics != nil {
		s.metrics.DamageApplied(target, amount)
	}
}
