package game

import "sort"

type EffectKind uint8

const (
	EffectInvincible EffectKind = iota + 1
	EffectKnockback
	EffectHitboxTTL
	EffectProjectileTTL
	EffectPickupTTL
	EffectRespawn
)

func (k EffectKind) String() string {
	switch k {
	case EffectInvincible:
		return "invincible"
	case EffectKnockback:
		return "knockback"
	case EffectHitboxTTL:
		return "hitbox_ttl"
	case EffectProjectileTTL:
		return "projectile_ttl"
	case EffectPickupTTL:
		return "pickup_ttl"
	case EffectRespawn:
		return "respawn"
	default:
		return "unknown"
	}
}

type effectKey struct {
	owner EntityID
	kind  EffectKind
	tag   EntityID
}

// TimedEffect is a pending transition. OnExpire runs once when Remaining
// reaches zero.
type TimedEffect struct {
	Owner     EntityID
	Kind      EffectKind
	Tag       EntityID
	Remaining float64

	onExpire func()
	seq      uint64
}

// EffectScheduler holds every pending timed transition of a session. At most
// one effect exists per (owner, kind, tag); arming again replaces it.
type EffectScheduler struct {
	alive   func(EntityID) bool
	effects map[effectKey]*TimedEffect
	seq     uint64
}

// NewEffectScheduler returns a scheduler that refuses effects for owners the
// alive predicate rejects.
func NewEffectScheduler(alive func(EntityID) bool) *EffectScheduler {
	return &EffectScheduler{
		alive:   alive,
		effects: make(map[effectKey]*TimedEffect),
	}
}

// Arm schedules onExpire to run after duration seconds, replacing any effect
// of the same kind on owner. Arming for a dead owner does nothing and
// returns false.
func (s *EffectScheduler) Arm(owner EntityID, kind EffectKind, duration float64, onExpire func()) bool {
	return s.ArmTagged(owner, kind, 0, duration, onExpire)
}

// ArmTagged is Arm with an extra discriminator so that several effects of
// one kind can share an owner.
func (s *EffectScheduler) ArmTagged(owner EntityID, kind EffectKind, tag EntityID, duration float64, onExpire func()) bool {
	if s.alive != nil && !s.alive(owner) {
		return false
	}
	s.seq++
	s.effects[effectKey{owner: owner, kind: kind, tag: tag}] = &TimedEffect{
		Owner:     owner,
		Kind:      kind,
		Tag:       tag,
		Remaining: duration,
		onExpire:  onExpire,
		seq:       s.seq,
	}
	return true
}

// CancelAll drops every effect owned by owner without running them.
func (s *EffectScheduler) CancelAll(owner EntityID) {
	for key := range s.effects {
		if key.owner == owner {
			delete(s.effects, key)
		}
	}
}

// Tick advances every effect armed before this call by dt and then fires the
// expired ones in arming order. An effect cancelled by an earlier callback in
// the same tick does not fire; effects armed by a callback start counting on
// the next tick.
func (s *EffectScheduler) Tick(dt float64) {
	if len(s.effects) == 0 {
		return
	}
	active := s.ordered()
	var expired []*TimedEffect
	for _, e := range active {
		e.Remaining -= dt
		if e.Remaining <= 0 {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		key := effectKey{owner: e.Owner, kind: e.Kind, tag: e.Tag}
		if s.effects[key] != e {
			continue
		}
		delete(s.effects, key)
		if e.onExpire != nil {
			e.onExpire()
		}
	}
}

// Remaining reports the time left on the untagged effect of kind on owner.
func (s *EffectScheduler) Remaining(owner EntityID, kind EffectKind) (float64, bool) {
	e, ok := s.effects[effectKey{owner: owner, kind: kind}]
	if !ok {
		return 0, false
	}
	return e.Remaining, true
}

func (s *EffectScheduler) Active(owner EntityID, kind EffectKind) bool {
	return s.ActiveTagged(owner, kind, 0)
}

func (s *EffectScheduler) ActiveTagged(owner EntityID, kind EffectKind, tag EntityID) bool {
	_, ok := s.effects[effectKey{owner: owner, kind: kind, tag: tag}]
	return ok
}

// Pending returns copies of all pending effects in arming order.
func (s *EffectScheduler) Pending() []TimedEffect {
	active := s.ordered()
	out := make([]TimedEffect, len(active))
	for i, e := range active {
		out[i] = TimedEffect{Owner: e.Owner, Kind: e.Kind, Tag: e.Tag, Remaining: e.Remaining}
	}
	return out
}

func (s *EffectScheduler) Len() int { return len(s.effects) }

func (s *EffectScheduler) ordered() []*TimedEffect {
	out := make([]*TimedEffect, 0, len(s.effects))
	for _, e := range s.effects {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
