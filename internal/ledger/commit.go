package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSkipped means no wallet was bound. It is not an error.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeRejected means another commit for the same session was running.
	OutcomeRejected Outcome = "rejected"
)

type CommitRequest struct {
	SessionID string
	Wallet    PublicKey
	Signer    Signer
	Score     uint64
}

// CommitResult is the terminal report of one commit attempt.
type CommitResult struct {
	SessionID  string    `json:"sessionId"`
	Wallet     string    `json:"wallet,omitempty"`
	Score      uint64    `json:"score"`
	Outcome    Outcome   `json:"outcome"`
	Step       string    `json:"step,omitempty"`
	Signature  string    `json:"signature,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	err error
}

// Err returns the failure cause, nil unless Outcome is failed or rejected.
func (r CommitResult) Err() error { return r.err }

// Timeouts bound each commit step. Zero means no limit beyond the caller's
// context.
type Timeouts struct {
	Checkpoint time.Duration
	Sign       time.Duration
	Submit     time.Duration
	Confirm    time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Checkpoint: 10 * time.Second,
		Sign:       2 * time.Minute,
		Submit:     15 * time.Second,
		Confirm:    60 * time.Second,
	}
}

// Committer runs the score commit protocol. It never retries: every call
// makes at most one submission, and concurrent calls for the same session
// are rejected while one is running.
type Committer struct {
	ledger   Ledger
	program  PublicKey
	timeouts Timeouts
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCommitter(l Ledger, program PublicKey, timeouts Timeouts, log zerolog.Logger) *Committer {
	return &Committer{
		ledger:   l,
		program:  program,
		timeouts: timeouts,
		log:      log,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

func (c *Committer) acquire(session string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[session]; busy {
		return false
	}
	c.inFlight[session] = struct{}{}
	return true
}

func (c *Committer) release(session string) {
	c.mu.Lock()
	delete(c.inFlight, session)
	c.mu.Unlock()
}

// Commit runs checkpoint, build, sign, submit and confirm in order and
// returns at the first failing step.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) CommitResult {
	res := CommitResult{
		SessionID: req.SessionID,
		Score:     req.Score,
		StartedAt: c.now(),
	}
	if !req.Wallet.IsZero() {
		res.Wallet = req.Wallet.String()
	}
	log := c.log.With().Str("session", req.SessionID).Uint64("score", req.Score).Logger()

	if req.Signer == nil || req.Wallet.IsZero() {
		res.Outcome = OutcomeSkipped
		res.FinishedAt = c.now()
		log.Debug().Msg("no wallet bound, commit skipped")
		return res
	}
	if !c.acquire(req.SessionID) {
		res.Outcome = OutcomeRejected
		res.err = ErrCommitInFlight
		res.Error = ErrCommitInFlight.Error()
		res.FinishedAt = c.now()
		log.Warn().Msg("duplicate commit rejected")
		return res
	}
	defer c.release(req.SessionID)

	sig, err := c.run(ctx, req)
	res.FinishedAt = c.now()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.err = err
		res.Error = err.Error()
		var se *StepError
		if errors.As(err, &se) {
			res.Step = se.Step.String()
		}
		if !sig.IsZero() {
			res.Signature = sig.String()
		}
		log.Warn().Err(err).Str("step", res.Step).Msg("score commit failed")
		return res
	}
	res.Outcome = OutcomeConfirmed
	res.Signature = sig.String()
	log.Info().Str("signature", res.Signature).Msg("score committed")
	return res
}

func (c *Committer) run(ctx context.Context, req CommitRequest) (Signature, error) {
	var cp Checkpoint
	err := c.step(ctx, StepCheckpoint, c.timeouts.Checkpoint, func(ctx context.Context) error {
		var err error
		cp, err = c.ledger.RecentCheckpoint(ctx)
		return err
	})
	if err != nil {
		return Signature{}, err
	}

	tx, err := BuildScoreTransaction(c.program, req.Wallet, cp.Blockhash, req.Score)
	if err != nil {
		return Signature{}, &StepError{Step: StepBuild, Err: err}
	}

	err = c.step(ctx, StepSign, c.timeouts.Sign, func(ctx context.Context) error {
		if err := req.Signer.SignTransaction(ctx, tx); err != nil {
			return err
		}
		return tx.VerifySignatures()
	})
	if err != nil {
		return Signature{}, err
	}

	var sig Signature
	err = c.step(ctx, StepSubmit, c.timeouts.Submit, func(ctx context.Context) error {
		var err error
		sig, err = c.ledger.Submit(ctx, tx.Serialize())
		return err
	})
	if err != nil {
		return Signature{}, err
	}

	err = c.step(ctx, StepConfirm, c.timeouts.Confirm, func(ctx context.Context) error {
		return c.ledger.Confirm(ctx, sig, cp)
	})
	return sig, err
}

func (c *Committer) step(ctx context.Context, step Step, timeout time.Duration, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c.log.Debug().Str("step", step.String()).Msg("commit step")
	if err := fn(ctx); err != nil {
		return &StepError{Step: step, Err: err}
	}
	return nil
}
