package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
)

// KeypairSigner signs with a local ed25519 key, without user interaction.
type KeypairSigner struct {
	key ed25519.PrivateKey
	pub PublicKey
}

func NewKeypairSigner(key ed25519.PrivateKey) *KeypairSigner {
	s := &KeypairSigner{key: key}
	copy(s.pub[:], key.Public().(ed25519.PublicKey))
	return s
}

// LoadKeypair reads a keypair file in the Solana CLI format: a JSON array of
// the 64 bytes of seed followed by public key.
func LoadKeypair(path string) (*KeypairSigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("decode keypair %s: %w", path, err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair %s: want %d bytes, got %d", path, ed25519.PrivateKeySize, len(ints))
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair %s: byte %d out of range", path, i)
		}
		b[i] = byte(v)
	}
	key := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if string(key[ed25519.SeedSize:]) != string(b[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("keypair %s: public key does not match seed", path)
	}
	return NewKeypairSigner(key), nil
}

func (s *KeypairSigner) PublicKey() PublicKey { return s.pub }

func (s *KeypairSigner) SignTransaction(ctx context.Context, tx *Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.Sign(s.key)
}
