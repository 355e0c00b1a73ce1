package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"SolanaRogue/internal/ledger"
)

type signReply struct {
	sig ledger.Signature
	err error
}

// RemoteSigner forwards sign requests to the browser wallet on the other
// end of a websocket and waits for its reply.
type RemoteSigner struct {
	pub  ledger.PublicKey
	send func(msgType string, payload any) error

	mu      sync.Mutex
	pending map[string]chan signReply
	closed  bool
}

func NewRemoteSigner(pub ledger.PublicKey, send func(msgType string, payload any) error) *RemoteSigner {
	return &RemoteSigner{
		pub:     pub,
		send:    send,
		pending: make(map[string]chan signReply),
	}
}

func (s *RemoteSigner) PublicKey() ledger.PublicKey { return s.pub }

// SignTransaction sends a sign:request carrying the serialized message and
// blocks until the client answers, cancels, or ctx ends.
func (s *RemoteSigner) SignTransaction(ctx context.Context, tx *ledger.Transaction) error {
	id := uuid.NewString()
	reply := make(chan signReply, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ledger.ErrSignatureCancelled
	}
	s.pending[id] = reply
	s.mu.Unlock()
	defer s.forget(id)

	req := signRequestDTO{
		RequestID: id,
		Wallet:    s.pub.String(),
		Message:   base64.StdEncoding.EncodeToString(tx.Message.Serialize()),
	}
	if err := s.send("sign:request", req); err != nil {
		return fmt.Errorf("send sign request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-reply:
		if r.err != nil {
			return r.err
		}
		return tx.AddSignature(s.pub, r.sig)
	}
}

func (s *RemoteSigner) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *RemoteSigner) reply(id string, r signReply) bool {
	s.mu.Lock()
	ch, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	ch <- r
	return true
}

// Resolve hands the client's signature to the waiting request. It reports
// false for an unknown or already answered request id.
func (s *RemoteSigner) Resolve(id string, sig ledger.Signature) bool {
	return s.reply(id, signReply{sig: sig})
}

func (s *RemoteSigner) Cancel(id string) bool {
	return s.reply(id, signReply{err: ledger.ErrSignatureCancelled})
}

// Close cancels every pending request and refuses new ones.
func (s *RemoteSigner) Close() {
	s.mu.Lock()
	s.closed = true
	pending := s.pending
	s.pending = make(map[string]chan signReply)
	s.mu.Unlock()
	for _, ch := range pending {
		ch <- signReply{err: ledger.ErrSignatureCancelled}
	}
}

func (s *RemoteSigner) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
