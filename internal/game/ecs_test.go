package game

import "testing"

func TestSpawnAttachesComponentsByKind(t *testing.T) {
	w := newWorld()
	enemy := w.Spawn(KindEnemy, Vec2{X: 10, Y: 20}, EntityAttrs{Radius: 8, Health: 20})
	shot := w.Spawn(KindProjectile, Vec2{}, EntityAttrs{Radius: 3, Damage: 2, Source: enemy})
	pickup := w.Spawn(KindPickup, Vec2{}, EntityAttrs{Radius: 6})

	if h := w.Health(enemy); h == nil || h.HP != 20 || h.Max != 20 {
		t.Fatalf("expected enemy health 20/20, got %+v", h)
	}
	if w.Attack(enemy) != nil {
		t.Errorf("enemy should not carry an attack component")
	}
	if a := w.Attack(shot); a == nil || a.Damage != 2 || a.Source != enemy {
		t.Fatalf("expected projectile attack {2 %d}, got %+v", enemy, a)
	}
	if w.Health(shot) != nil || w.Health(pickup) != nil {
		t.Errorf("only players and enemies carry health")
	}
	e, ok := w.Get(enemy)
	if !ok || e.Pos != (Vec2{X: 10, Y: 20}) || e.Kind != KindEnemy {
		t.Fatalf("unexpected entity copy %+v", e)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	w := newWorld()
	calls := 0
	w.OnDestroy(func(EntityID) { calls++ })
	id := w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 5})

	if !w.Destroy(id) {
		t.Fatalf("first destroy should remove the entity")
	}
	if w.Destroy(id) {
		t.Errorf("second destroy should be a no-op")
	}
	if w.Destroy(EntityID(999)) {
		t.Errorf("destroying an unknown id should be a no-op")
	}
	if calls != 1 {
		t.Errorf("expected destroy hook to run once, ran %d times", calls)
	}
	if w.Alive(id) || w.Transform(id) != nil || w.Health(id) != nil {
		t.Errorf("destroyed entity still has state")
	}
	if _, ok := w.Get(id); ok {
		t.Errorf("Get returned a destroyed entity")
	}
}

func TestForEachAliveSkipsEntitiesDestroyedMidIteration(t *testing.T) {
	w := newWorld()
	a := w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1})
	b := w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1})
	c := w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1})

	var visited []EntityID
	w.ForEachAlive(KindEnemy, func(id EntityID) {
		visited = append(visited, id)
		if id == a {
			w.Destroy(b)
			w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1})
		}
	})

	if len(visited) != 2 || visited[0] != a || visited[1] != c {
		t.Fatalf("expected to visit [%d %d], got %v", a, c, visited)
	}
	if w.Count(KindEnemy) != 3 {
		t.Errorf("expected 3 enemies after iteration, got %d", w.Count(KindEnemy))
	}
}

func TestIDsAreSortedAndFilteredByKind(t *testing.T) {
	w := newWorld()
	var enemies []EntityID
	for i := 0; i < 5; i++ {
		enemies = append(enemies, w.Spawn(KindEnemy, Vec2{}, EntityAttrs{Health: 1}))
		w.Spawn(KindPickup, Vec2{}, EntityAttrs{})
	}
	ids := w.IDs(KindEnemy)
	if len(ids) != len(enemies) {
		t.Fatalf("expected %d enemy ids, got %d", len(enemies), len(ids))
	}
	for i := range ids {
		if ids[i] != enemies[i] {
			t.Fatalf("ids out of order: %v", ids)
		}
	}
}

func TestHealthApplyClampsAtZero(t *testing.T) {
	h := HealthComponent{HP: 3, Max: 10}
	if h.Apply(2) {
		t.Fatalf("3-2 should not be dead")
	}
	if !h.Apply(5) {
		t.Fatalf("1-5 should be dead")
	}
	if h.HP != 0 {
		t.Errorf("expected HP clamped to 0, got %d", h.HP)
	}
}
