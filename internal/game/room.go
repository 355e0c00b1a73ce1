package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"SolanaRogue/internal/ledger"
)

// Committer runs the score commit protocol for one session.
type Committer interface {
	Commit(ctx context.Context, req ledger.CommitRequest) ledger.CommitResult
}

// CommitRecorder archives finished commit attempts.
type CommitRecorder interface {
	RecordCommit(ctx context.Context, res ledger.CommitResult) error
}

// RoomMetrics is Metrics plus commit outcomes.
type RoomMetrics interface {
	Metrics
	CommitFinished(outcome ledger.Outcome)
}

// WalletBinding is a connected wallet. Balance is in lamports and is zero
// until the ledger has been asked.
type WalletBinding struct {
	Address ledger.PublicKey
	Signer  ledger.Signer
	Balance uint64
}

type RoomConfig struct {
	Tuning    Tuning
	Arena     Arena
	Physics   Physics
	Committer Committer
	Recorder  CommitRecorder
	Metrics   RoomMetrics
	Log       zerolog.Logger
}

// Room owns the current session of one player. Mu serializes ticks, input
// and commit result delivery.
type Room struct {
	ID string
	Mu sync.Mutex

	cfg     RoomConfig
	session *Session
	wallet  *WalletBinding
	conns   int
	log     zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	commits sync.WaitGroup
}

func newRoom(id string, cfg RoomConfig) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		ID:     id,
		cfg:    cfg,
		log:    cfg.Log.With().Str("room", id).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
	r.session = r.newSessionLocked()
	return r
}

func (r *Room) newSessionLocked() *Session {
	var metrics Metrics
	if r.cfg.Metrics != nil {
		metrics = r.cfg.Metrics
	}
	return NewSession(SessionConfig{
		Tuning:   r.cfg.Tuning,
		Arena:    r.cfg.Arena,
		Physics:  r.cfg.Physics,
		Seed:     rand.Int63(),
		Log:      r.log,
		Metrics:  metrics,
		OnFrozen: r.dispatchCommitLocked,
	})
}

func (r *Room) Tick() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.session.Tick(Dt)
}

// SessionLocked returns the current session. Callers must hold Mu.
func (r *Room) SessionLocked() *Session { return r.session }

func (r *Room) Move(dir Vec2) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.session.SetMoveIntent(dir)
}

func (r *Room) Slash() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	_, ok := r.session.Slash()
	return ok
}

func (r *Room) Shoot() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	_, ok := r.session.Shoot()
	return ok
}

// Restart replaces the session. A commit still running for the old session
// finishes in the background and its result is not applied.
func (r *Room) Restart() string {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	old := r.session.ID.String()
	r.session = r.newSessionLocked()
	r.log.Info().Str("previous", old).Str("session", r.session.ID.String()).Msg("session restarted")
	return r.session.ID.String()
}

func (r *Room) BindWallet(b WalletBinding) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.wallet = &b
	r.log.Info().Str("wallet", b.Address.String()).Msg("wallet bound")
}

// ReleaseSigner unbinds the wallet if signer still holds it.
func (r *Room) ReleaseSigner(s ledger.Signer) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.wallet == nil || r.wallet.Signer != s {
		return false
	}
	r.wallet = nil
	return true
}

// SetWalletBalance updates the balance if address is still the bound wallet.
func (r *Room) SetWalletBalance(address ledger.PublicKey, lamports uint64) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.wallet != nil && r.wallet.Address == address {
		r.wallet.Balance = lamports
	}
}

func (r *Room) Wallet() (WalletBinding, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.wallet == nil {
		return WalletBinding{}, false
	}
	return *r.wallet, true
}

// RoomView is a session View plus the wallet state.
type RoomView struct {
	View
	Wallet        string
	WalletBalance uint64
}

func (r *Room) View() RoomView {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	v := RoomView{View: r.session.View()}
	if r.wallet != nil {
		v.Wallet = r.wallet.Address.String()
		v.WalletBalance = r.wallet.Balance
	}
	return v
}

func (r *Room) Attach() {
	r.Mu.Lock()
	r.conns++
	r.Mu.Unlock()
}

func (r *Room) Detach() {
	r.Mu.Lock()
	if r.conns > 0 {
		r.conns--
	}
	r.Mu.Unlock()
}

func (r *Room) Empty() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.conns == 0
}

// dispatchCommitLocked is the session's OnFrozen hook. Without a wallet the
// commit is skipped on the spot; otherwise it runs in the background and
// reports back through deliverCommit.
func (r *Room) dispatchCommitLocked(s *Session) {
	req := ledger.CommitRequest{
		SessionID: s.ID.String(),
		Score:     s.Score(),
	}
	if r.wallet == nil || r.cfg.Committer == nil {
		now := time.Now()
		res := ledger.CommitResult{
			SessionID:  req.SessionID,
			Score:      req.Score,
			Outcome:    ledger.OutcomeSkipped,
			StartedAt:  now,
			FinishedAt: now,
		}
		s.ApplyCommitResult(res)
		r.commitFinished(res.Outcome)
		return
	}
	req.Wallet = r.wallet.Address
	req.Signer = r.wallet.Signer

	r.commits.Add(1)
	go func() {
		defer r.commits.Done()
		r.deliverCommit(r.cfg.Committer.Commit(r.ctx, req))
	}()
}

// deliverCommit is the single point where a commit result re-enters the
// room. Results for a session that is no longer current are archived but
// not applied.
func (r *Room) deliverCommit(res ledger.CommitResult) {
	r.commitFinished(res.Outcome)
	if r.cfg.Recorder != nil && res.Outcome != ledger.OutcomeRejected {
		if err := r.cfg.Recorder.RecordCommit(context.WithoutCancel(r.ctx), res); err != nil {
			r.log.Error().Err(err).Str("session", res.SessionID).Msg("archive commit")
		}
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.session.ID.String() != res.SessionID {
		r.log.Info().Str("session", res.SessionID).Str("outcome", string(res.Outcome)).Msg("discarding commit result for stale session")
		return
	}
	if !r.session.ApplyCommitResult(res) {
		r.log.Warn().Str("session", res.SessionID).Str("state", r.session.State().String()).Msg("commit result not applied")
	}
}

func (r *Room) commitFinished(o ledger.Outcome) {
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.CommitFinished(o)
	}
}

// WaitCommits blocks until every background commit has delivered.
func (r *Room) WaitCommits() {
	r.commits.Wait()
}

// Close cancels running commits and waits for them.
func (r *Room) Close() {
	r.cancel()
	r.commits.Wait()
}

type Hub struct {
	Rooms map[string]*Room
	Mu    sync.Mutex

	cfg RoomConfig
}

func NewHub(cfg RoomConfig) *Hub {
	return &Hub{Rooms: map[string]*Room{}, cfg: cfg}
}

func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return h.getRoomLocked(id)
}

// JoinRoom returns the room with a connection already counted, so that a
// concurrent cleanup cannot drop it before the caller attaches.
func (h *Hub) JoinRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r := h.getRoomLocked(id)
	r.Attach()
	return r
}

func (h *Hub) getRoomLocked(id string) *Room {
	r, ok := h.Rooms[id]
	if !ok {
		r = newRoom(id, h.cfg)
		h.Rooms[id] = r
	}
	return r
}

// CleanupEmptyRooms drops rooms nobody is connected to.
func (h *Hub) CleanupEmptyRooms() int {
	h.Mu.Lock()
	var closed []*Room
	for id, r := range h.Rooms {
		if r.Empty() {
			delete(h.Rooms, id)
			closed = append(closed, r)
		}
	}
	h.Mu.Unlock()
	for _, r := range closed {
		r.Close()
	}
	return len(closed)
}

func (h *Hub) rooms() []*Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	out := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		out = append(out, r)
	}
	return out
}

// Run ticks every room at SimHz until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / SimHz))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, r := range h.rooms() {
				r.Tick()
			}
		}
	}
}

// Close shuts every room down.
func (h *Hub) Close() {
	for _, r := range h.rooms() {
		r.Close()
	}
}
