package game

import "sort"

type EntityID int64

// SessionOwner owns effects that belong to the session rather than to an
// entity, such as delayed respawns. Entity ids start at 1.
const SessionOwner EntityID = 0

type EntityKind uint8

const (
	KindPlayer EntityKind = iota + 1
	KindEnemy
	KindProjectile
	KindPickup
	KindAttackHitbox
)

func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindProjectile:
		return "projectile"
	case KindPickup:
		return "pickup"
	case KindAttackHitbox:
		return "attack_hitbox"
	default:
		return "unknown"
	}
}

type StatusFlag uint8

const (
	FlagInvincible StatusFlag = 1 << iota
	FlagKnockedBack
	FlagSlashing
)

type ComponentKey string

const (
	CompTransform ComponentKey = "transform"
	CompBody      ComponentKey = "body"
	CompHealth    ComponentKey = "health"
	CompStatus    ComponentKey = "status"
	CompAttack    ComponentKey = "attack"
)

type Transform struct {
	Pos    Vec2
	Vel    Vec2
	Facing Vec2
}

type Body struct {
	Radius float64
}

type HealthComponent struct {
	HP  int
	Max int
}

// Apply subtracts amount and clamps at zero. It reports whether the entity
// is now dead.
func (h *HealthComponent) Apply(amount int) bool {
	h.HP -= amount
	if h.HP < 0 {
		h.HP = 0
	}
	return h.HP <= 0
}

type StatusComponent struct {
	Flags        StatusFlag
	KnockbackDir Vec2
}

func (s *StatusComponent) Has(f StatusFlag) bool { return s.Flags&f != 0 }
func (s *StatusComponent) Set(f StatusFlag)      { s.Flags |= f }
func (s *StatusComponent) Clear(f StatusFlag)    { s.Flags &^= f }

// AttackComponent marks an entity that deals damage on contact.
type AttackComponent struct {
	Damage int
	Source EntityID
}

// EntityAttrs carries the optional per-kind state handed to Spawn.
type EntityAttrs struct {
	Vel    Vec2
	Facing Vec2
	Radius float64
	Health int
	Damage int
	Source EntityID
}

// Entity is a read-only copy of an entity's state.
type Entity struct {
	ID        EntityID
	Kind      EntityKind
	Pos       Vec2
	Vel       Vec2
	Facing    Vec2
	Radius    float64
	Health    int
	MaxHealth int
	Flags     StatusFlag
}

func (e Entity) Has(f StatusFlag) bool { return e.Flags&f != 0 }

// World is the entity registry. Entities live in kinds; their state lives in
// per-component stores keyed by id. Destroy removes both and notifies the
// destroy hooks, which is how the effect scheduler drops an entity's effects.
type World struct {
	nextEntity EntityID
	kinds      map[EntityID]EntityKind
	components map[ComponentKey]map[EntityID]any
	onDestroy  []func(EntityID)
}

func newWorld() *World {
	return &World{
		nextEntity: 0,
		kinds:      make(map[EntityID]EntityKind),
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

// OnDestroy registers a hook invoked after an entity is removed.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

func (w *World) NewEntity(kind EntityKind) EntityID {
	w.nextEntity++
	w.kinds[w.nextEntity] = kind
	return w.nextEntity
}

// Spawn creates an entity of kind at pos. Health is only attached to players
// and enemies; damage only to projectiles and attack hitboxes.
func (w *World) Spawn(kind EntityKind, pos Vec2, attrs EntityAttrs) EntityID {
	id := w.NewEntity(kind)
	w.SetComponent(id, CompTransform, &Transform{Pos: pos, Vel: attrs.Vel, Facing: attrs.Facing})
	w.SetComponent(id, CompBody, &Body{Radius: attrs.Radius})
	w.SetComponent(id, CompStatus, &StatusComponent{})
	switch kind {
	case KindPlayer, KindEnemy:
		hp := attrs.Health
		if hp <= 0 {
			hp = 1
		}
		w.SetComponent(id, CompHealth, &HealthComponent{HP: hp, Max: hp})
	case KindProjectile, KindAttackHitbox:
		w.SetComponent(id, CompAttack, &AttackComponent{Damage: attrs.Damage, Source: attrs.Source})
	}
	return id
}

// Destroy removes the entity. It is safe to call on an id that was already
// destroyed or never existed; it reports whether anything was removed.
func (w *World) Destroy(id EntityID) bool {
	if _, ok := w.kinds[id]; !ok {
		return false
	}
	delete(w.kinds, id)
	for _, store := range w.components {
		delete(store, id)
	}
	for _, fn := range w.onDestroy {
		fn(id)
	}
	return true
}

func (w *World) Alive(id EntityID) bool {
	_, ok := w.kinds[id]
	return ok
}

func (w *World) Kind(id EntityID) (EntityKind, bool) {
	k, ok := w.kinds[id]
	return k, ok
}

// Get returns a copy of the entity's state.
func (w *World) Get(id EntityID) (Entity, bool) {
	kind, ok := w.kinds[id]
	if !ok {
		return Entity{}, false
	}
	e := Entity{ID: id, Kind: kind}
	if tr := w.Transform(id); tr != nil {
		e.Pos, e.Vel, e.Facing = tr.Pos, tr.Vel, tr.Facing
	}
	if b := w.Body(id); b != nil {
		e.Radius = b.Radius
	}
	if h := w.Health(id); h != nil {
		e.Health, e.MaxHealth = h.HP, h.Max
	}
	if st := w.Status(id); st != nil {
		e.Flags = st.Flags
	}
	return e, true
}

func (w *World) Count(kind EntityKind) int {
	n := 0
	for _, k := range w.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// IDs returns the live ids of kind in ascending order.
func (w *World) IDs(kind EntityKind) []EntityID {
	var ids []EntityID
	for id, k := range w.kinds {
		if k == kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ForEachAlive visits every live entity of kind. The id set is snapshotted
// before the first callback; ids destroyed by an earlier callback are
// skipped and entities spawned during iteration are not visited.
func (w *World) ForEachAlive(kind EntityKind, fn func(EntityID)) {
	for _, id := range w.IDs(kind) {
		if !w.Alive(id) {
			continue
		}
		fn(id)
	}
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) Transform(id EntityID) *Transform {
	if v, ok := w.GetComponent(id, CompTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) Body(id EntityID) *Body {
	if v, ok := w.GetComponent(id, CompBody); ok {
		if t, ok := v.(*Body); ok {
			return t
		}
	}
	return nil
}

func (w *World) Health(id EntityID) *HealthComponent {
	if v, ok := w.GetComponent(id, CompHealth); ok {
		if t, ok := v.(*HealthComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) Status(id EntityID) *StatusComponent {
	if v, ok := w.GetComponent(id, CompStatus); ok {
		if t, ok := v.(*StatusComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) Attack(id EntityID) *AttackComponent {
	if v, ok := w.GetComponent(id, CompAttack); ok {
		if t, ok := v.(*AttackComponent); ok {
			return t
		}
	}
	return nil
}
