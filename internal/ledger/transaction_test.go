package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = b
	return ed25519.NewKeyFromSeed(seed)
}

func testProgram() PublicKey {
	var p PublicKey
	for i := range p {
		p[i] = byte(200 + i%50)
	}
	return p
}

func TestBuildScoreTransactionLayout(t *testing.T) {
	signer := NewKeypairSigner(testKey(7))
	var bh Hash
	bh[0], bh[31] = 0xAA, 0xBB

	tx, err := BuildScoreTransaction(testProgram(), signer.PublicKey(), bh, 1234)
	require.NoError(t, err)

	msg := tx.Message.Serialize()
	// header, keys, blockhash, one instruction
	assert.Equal(t, []byte{1, 0, 1}, msg[:3])
	assert.Equal(t, byte(2), msg[3])
	wallet := signer.PublicKey()
	program := testProgram()
	assert.Equal(t, wallet[:], msg[4:36])
	assert.Equal(t, program[:], msg[36:68])
	assert.Equal(t, bh[:], msg[68:100])
	ix := msg[100:]
	assert.Equal(t, []byte{1, 1, 1, 0, 4}, ix[:5])
	assert.Equal(t, uint32(1234), binary.LittleEndian.Uint32(ix[5:9]))
	assert.Len(t, ix, 9)

	require.NoError(t, signer.SignTransaction(context.Background(), tx))
	require.NoError(t, tx.VerifySignatures())
	raw := tx.Serialize()
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, tx.ID().String(), EncodeBase58(raw[1:65]))
	assert.Equal(t, msg, raw[65:])
}

func TestBuildScoreTransactionValidation(t *testing.T) {
	wallet := NewKeypairSigner(testKey(1)).PublicKey()

	_, err := BuildScoreTransaction(testProgram(), PublicKey{}, Hash{}, 1)
	assert.ErrorIs(t, err, ErrNoWallet)

	_, err = BuildScoreTransaction(PublicKey{}, wallet, Hash{}, 1)
	assert.Error(t, err)

	_, err = BuildScoreTransaction(wallet, wallet, Hash{}, 1)
	assert.Error(t, err)

	_, err = BuildScoreTransaction(testProgram(), wallet, Hash{}, math.MaxUint32+1)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
}

func TestAddSignatureChecksMessage(t *testing.T) {
	key := testKey(3)
	signer := NewKeypairSigner(key)
	tx, err := BuildScoreTransaction(testProgram(), signer.PublicKey(), Hash{}, 5)
	require.NoError(t, err)

	assert.Error(t, tx.VerifySignatures(), "unsigned transaction must not verify")

	var forged Signature
	copy(forged[:], ed25519.Sign(key, []byte("something else")))
	assert.ErrorIs(t, tx.AddSignature(signer.PublicKey(), forged), ErrInvalidSignature)

	other := NewKeypairSigner(testKey(4))
	var sig Signature
	copy(sig[:], ed25519.Sign(testKey(4), tx.Message.Serialize()))
	assert.Error(t, tx.AddSignature(other.PublicKey(), sig), "non-signer key")

	copy(sig[:], ed25519.Sign(key, tx.Message.Serialize()))
	require.NoError(t, tx.AddSignature(signer.PublicKey(), sig))
	require.NoError(t, tx.VerifySignatures())

	// tampering after signing invalidates the signature
	tx.Message.Instructions[0].Data[0]++
	assert.True(t, errors.Is(tx.VerifySignatures(), ErrInvalidSignature))
}

func TestKeypairSignerHonoursContext(t *testing.T) {
	signer := NewKeypairSigner(testKey(9))
	tx, err := BuildScoreTransaction(testProgram(), signer.PublicKey(), Hash{}, 5)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, signer.SignTransaction(ctx, tx), context.Canceled)
	assert.True(t, tx.ID().IsZero())
}
