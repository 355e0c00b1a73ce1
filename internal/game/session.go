package game

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"SolanaRogue/internal/ledger"
)

type SessionState uint8

const (
	SessionRunning SessionState = iota
	SessionFrozen
	SessionScoreSubmitted
)

func (s SessionState) String() string {
	switch s {
	case SessionRunning:
		return "running"
	case SessionFrozen:
		return "frozen"
	case SessionScoreSubmitted:
		return "score_submitted"
	default:
		return "unknown"
	}
}

// Score only grows.
type Score struct{ v uint64 }

func (s *Score) Add(n uint64) { s.v += n }
func (s Score) Value() uint64 { return s.v }

// Metrics receives combat events. A nil Metrics is valid.
type Metrics interface {
	SessionStarted()
	EnemyKilled()
	PickupCollected()
	DamageApplied(target EntityKind, amount int)
}

type SessionConfig struct {
	Tuning  Tuning
	Arena   Arena
	Physics Physics // defaults to ArenaPhysics over Arena
	Seed    int64
	Log     zerolog.Logger
	Metrics Metrics
	// OnFrozen runs once, synchronously, when the player dies.
	OnFrozen func(*Session)
}

// Session is one play-through. It is not safe for concurrent use; the Room
// serializes access.
type Session struct {
	ID       uuid.UUID
	Now      float64
	World    *World
	Effects  *EffectScheduler
	Director *Director

	tuning  Tuning
	arena   Arena
	physics Physics
	rng     *rand.Rand

	player EntityID
	state  SessionState
	score  Score
	kills  int
	intent Vec2

	lastCommit *ledger.CommitResult
	onFrozen   func(*Session)
	log        zerolog.Logger
	metrics    Metrics
}

func NewSession(cfg SessionConfig) *Session {
	tuning := SanitizeTuning(cfg.Tuning)
	arena := cfg.Arena
	if !arena.Bounds.Valid() {
		arena = DefaultArena()
	}
	physics := cfg.Physics
	if physics == nil {
		physics = NewArenaPhysics(arena)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	id := uuid.New()

	s := &Session{
		ID:       id,
		World:    newWorld(),
		Director: NewDirector(tuning.SpawnInterval, tuning.EnemyCap, arena, rng),
		tuning:   tuning,
		arena:    arena,
		physics:  physics,
		rng:      rng,
		state:    SessionRunning,
		onFrozen: cfg.OnFrozen,
		log:      cfg.Log.With().Str("session", id.String()).Logger(),
		metrics:  cfg.Metrics,
	}
	s.Effects = NewEffectScheduler(func(owner EntityID) bool {
		return owner == SessionOwner || s.World.Alive(owner)
	})
	s.World.OnDestroy(s.Effects.CancelAll)

	s.player = s.World.Spawn(KindPlayer, arena.Center(), EntityAttrs{
		Facing: Vec2{X: 1},
		Radius: tuning.PlayerRadius,
		Health: tuning.PlayerMaxHealth,
	})
	if tuning.InitialEnemy && tuning.EnemyCap > 0 {
		s.spawnEnemy(s.Director.RespawnPoint())
	}
	if s.metrics != nil {
		s.metrics.SessionStarted()
	}
	s.log.Info().Msg("session started")
	return s
}

func (s *Session) State() SessionState { return s.state }
func (s *Session) Score() uint64       { return s.score.Value() }
func (s *Session) Player() EntityID    { return s.player }
func (s *Session) running() bool       { return s.state == SessionRunning }

func (s *Session) LastCommit() *ledger.CommitResult {
	if s.lastCommit == nil {
		return nil
	}
	c := *s.lastCommit
	return &c
}

// Tick advances one simulation step: effects decay, then the director and
// movement run, then this step's overlaps are resolved. A frozen session does
// not tick.
func (s *Session) Tick(dt float64) {
	if !s.running() || dt <= 0 {
		return
	}
	s.Now += dt
	s.Effects.Tick(dt)
	s.runDirector(dt)
	s.moveEntities(dt)
	s.resolveOverlaps()
}

// freeze ends gameplay. Enemies are cleared without rewards and every
// pending session effect is dropped.
func (s *Session) freeze() {
	if s.state != SessionRunning {
		return
	}
	s.state = SessionFrozen
	s.intent = Vec2{}
	if tr := s.World.Transform(s.player); tr != nil {
		tr.Vel = Vec2{}
	}
	for _, id := range s.World.IDs(KindEnemy) {
		s.World.Destroy(id)
	}
	s.Effects.CancelAll(SessionOwner)
	s.log.Info().Uint64("score", s.score.Value()).Int("kills", s.kills).Msg("player died, session frozen")
	if s.onFrozen != nil {
		s.onFrozen(s)
	}
}

// ApplyCommitResult records the outcome of the session's commit. A skipped
// commit leaves the session Frozen; confirmed and failed ones move it to
// ScoreSubmitted. It reports whether the result was applied.
func (s *Session) ApplyCommitResult(res ledger.CommitResult) bool {
	if s.state != SessionFrozen || res.SessionID != s.ID.String() {
		return false
	}
	switch res.Outcome {
	case ledger.OutcomeSkipped:
		s.lastCommit = &res
		return true
	case ledger.OutcomeConfirmed, ledger.OutcomeFailed:
		s.lastCommit = &res
		s.state = SessionScoreSubmitted
		return true
	default:
		return false
	}
}

// View is the state exposed to the UI.
type View struct {
	SessionID   string
	State       SessionState
	Now         float64
	Score       uint64
	Kills       int
	Player      Entity
	Enemies     []Entity
	Projectiles []Entity
	Pickups     []Entity
	Hitboxes    []Entity
	LastCommit  *ledger.CommitResult
}

func (s *Session) View() View {
	v := View{
		SessionID:  s.ID.String(),
		State:      s.state,
		Now:        s.Now,
		Score:      s.score.Value(),
		Kills:      s.kills,
		LastCommit: s.LastCommit(),
	}
	v.Player, _ = s.World.Get(s.player)
	v.Enemies = s.entities(KindEnemy)
	v.Projectiles = s.entities(KindProjectile)
	v.Pickups = s.entities(KindPickup)
	v.Hitboxes = s.entities(KindAttackHitbox)
	return v
}

func (s *Session) entities(kind EntityKind) []Entity {
	ids := s.World.IDs(kind)
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.World.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}
