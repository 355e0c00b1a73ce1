package game

import "testing"

func aliveSet(ids ...EntityID) (func(EntityID) bool, map[EntityID]bool) {
	set := map[EntityID]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(id EntityID) bool { return set[id] }, set
}

func TestArmReplacesEffectOfSameKind(t *testing.T) {
	alive, _ := aliveSet(1)
	s := NewEffectScheduler(alive)
	first, second := 0, 0
	s.Arm(1, EffectInvincible, 0.25, func() { first++ })
	s.Arm(1, EffectInvincible, 0.5, func() { second++ })

	if s.Len() != 1 {
		t.Fatalf("expected one effect after re-arm, got %d", s.Len())
	}
	s.Tick(0.25)
	if first != 0 || second != 0 {
		t.Fatalf("replaced effect fired: first=%d second=%d", first, second)
	}
	s.Tick(0.25)
	if first != 0 || second != 1 {
		t.Fatalf("expected only the replacement to fire once, first=%d second=%d", first, second)
	}
	s.Tick(1)
	if second != 1 {
		t.Errorf("effect fired more than once")
	}
}

func TestArmOnDeadOwnerIsNoop(t *testing.T) {
	alive, _ := aliveSet(1)
	s := NewEffectScheduler(alive)
	if s.Arm(2, EffectKnockback, 1, func() { t.Errorf("effect on dead owner fired") }) {
		t.Errorf("Arm on a dead owner should report false")
	}
	if s.Len() != 0 {
		t.Errorf("expected no pending effects, got %d", s.Len())
	}
	s.Tick(2)
}

func TestSameTickExpiriesFireInArmingOrder(t *testing.T) {
	alive, _ := aliveSet(1, 2, 3)
	s := NewEffectScheduler(alive)
	var order []EntityID
	s.Arm(3, EffectInvincible, 0.5, func() { order = append(order, 3) })
	s.Arm(1, EffectKnockback, 0.25, func() { order = append(order, 1) })
	s.Arm(2, EffectInvincible, 0.5, func() { order = append(order, 2) })

	s.Tick(0.5)
	if len(order) != 3 || order[0] != 3 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected arming order [3 1 2], got %v", order)
	}
}

func TestEffectCancelledByEarlierCallbackDoesNotFire(t *testing.T) {
	alive, set := aliveSet(1, 2)
	s := NewEffectScheduler(alive)
	fired := false
	s.Arm(1, EffectHitboxTTL, 0.125, func() {
		delete(set, 2)
		s.CancelAll(2)
	})
	s.Arm(2, EffectPickupTTL, 0.125, func() { fired = true })

	s.Tick(0.125)
	if fired {
		t.Errorf("effect cancelled earlier in the same tick still fired")
	}
}

func TestEffectArmedByCallbackWaitsForNextTick(t *testing.T) {
	alive, _ := aliveSet(1)
	s := NewEffectScheduler(alive)
	chained := false
	s.Arm(1, EffectInvincible, 0.125, func() {
		s.Arm(1, EffectKnockback, 0.125, func() { chained = true })
	})

	s.Tick(0.125)
	if chained {
		t.Fatalf("effect armed during a tick was decremented in the same tick")
	}
	if rem, ok := s.Remaining(1, EffectKnockback); !ok || rem != 0.125 {
		t.Fatalf("expected chained effect pending with 0.125s, got %v %v", rem, ok)
	}
	s.Tick(0.125)
	if !chained {
		t.Errorf("chained effect did not fire on the following tick")
	}
}

func TestTaggedEffectsCoexist(t *testing.T) {
	s := NewEffectScheduler(func(id EntityID) bool { return id == SessionOwner })
	fired := 0
	s.ArmTagged(SessionOwner, EffectRespawn, 7, 1, func() { fired++ })
	s.ArmTagged(SessionOwner, EffectRespawn, 8, 1, func() { fired++ })
	if s.Len() != 2 {
		t.Fatalf("expected two respawns pending, got %d", s.Len())
	}
	pending := s.Pending()
	if pending[0].Tag != 7 || pending[1].Tag != 8 {
		t.Errorf("expected pending tags [7 8], got %+v", pending)
	}
	s.Tick(1)
	if fired != 2 {
		t.Errorf("expected both respawns to fire, got %d", fired)
	}
}

func TestDestroyCancelsEntityEffects(t *testing.T) {
	w := newWorld()
	s := NewEffectScheduler(w.Alive)
	w.OnDestroy(s.CancelAll)
	id := w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1})
	s.Arm(id, EffectInvincible, 1, func() { t.Errorf("effect outlived its entity") })
	s.Arm(id, EffectKnockback, 1, func() { t.Errorf("effect outlived its entity") })

	w.Destroy(id)
	if s.Len() != 0 {
		t.Fatalf("expected effects cancelled on destroy, %d left", s.Len())
	}
	s.Tick(2)
}
