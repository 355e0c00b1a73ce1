// Package ledger commits final scores to a Solana program. It builds the
// legacy transaction wire format itself, asks an external Signer for the
// wallet signature and talks to the cluster over JSON-RPC.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

const (
	PublicKeySize = 32
	HashSize      = 32
	SignatureSize = 64

	LamportsPerSOL = 1_000_000_000
)

type PublicKey [PublicKeySize]byte

func (k PublicKey) String() string { return EncodeBase58(k[:]) }
func (k PublicKey) IsZero() bool   { return k == PublicKey{} }

func ParsePublicKey(s string) (PublicKey, error) {
	var k PublicKey
	b, err := DecodeBase58(s)
	if err != nil {
		return k, fmt.Errorf("parse public key: %w", err)
	}
	if len(b) != PublicKeySize {
		return k, fmt.Errorf("parse public key: want %d bytes, got %d", PublicKeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// Hash is a recent blockhash.
type Hash [HashSize]byte

func (h Hash) String() string { return EncodeBase58(h[:]) }

func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := DecodeBase58(s)
	if err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("parse hash: want %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Signature is an ed25519 signature. The fee payer's signature doubles as the
// transaction id.
type Signature [SignatureSize]byte

func (s Signature) String() string { return EncodeBase58(s[:]) }
func (s Signature) IsZero() bool   { return s == Signature{} }

func ParseSignature(str string) (Signature, error) {
	var s Signature
	b, err := DecodeBase58(str)
	if err != nil {
		return s, fmt.Errorf("parse signature: %w", err)
	}
	if len(b) != SignatureSize {
		return s, fmt.Errorf("parse signature: want %d bytes, got %d", SignatureSize, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Checkpoint is the recent network state a transaction is anchored to.
type Checkpoint struct {
	Blockhash            Hash
	LastValidBlockHeight uint64
}

// Ledger is the cluster a score commit is sent to.
type Ledger interface {
	RecentCheckpoint(ctx context.Context) (Checkpoint, error)
	// Balance returns the account balance in lamports.
	Balance(ctx context.Context, account PublicKey) (uint64, error)
	// Submit sends a fully signed, serialized transaction.
	Submit(ctx context.Context, raw []byte) (Signature, error)
	// Confirm blocks until sig is confirmed, fails, or cp expires.
	Confirm(ctx context.Context, sig Signature, cp Checkpoint) error
}

// Signer holds a wallet's signing capability. SignTransaction adds the
// signer's signature to tx; it may block on user interaction and returns
// ErrSignatureCancelled when the user declines.
type Signer interface {
	PublicKey() PublicKey
	SignTransaction(ctx context.Context, tx *Transaction) error
}

func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

var (
	ErrNoWallet           = errors.New("no wallet bound")
	ErrCommitInFlight     = errors.New("commit already in flight")
	ErrSignatureCancelled = errors.New("signature request cancelled")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrNotConfirmed       = errors.New("transaction not confirmed")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrScoreOutOfRange    = errors.New("score out of range")
)

// Step names a stage of the commit protocol.
type Step uint8

const (
	StepNone Step = iota
	StepCheckpoint
	StepBuild
	StepSign
	StepSubmit
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepCheckpoint:
		return "checkpoint"
	case StepBuild:
		return "build"
	case StepSign:
		return "sign"
	case StepSubmit:
		return "submit"
	case StepConfirm:
		return "confirm"
	default:
		return "none"
	}
}

// StepError reports which commit step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }
