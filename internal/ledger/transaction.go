package ledger

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// MessageHeader counts the signing and read-only accounts at the front of
// AccountKeys.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// Message is a legacy (unversioned) transaction message.
type Message struct {
	Header          MessageHeader
	AccountKeys     []PublicKey
	RecentBlockhash Hash
	Instructions    []CompiledInstruction
}

// Serialize returns the bytes that signers sign.
func (m *Message) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteByte(m.Header.NumRequiredSignatures)
	buf.WriteByte(m.Header.NumReadonlySignedAccounts)
	buf.WriteByte(m.Header.NumReadonlyUnsignedAccounts)
	writeCompactU16(&buf, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		buf.Write(k[:])
	}
	buf.Write(m.RecentBlockhash[:])
	writeCompactU16(&buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf.WriteByte(ix.ProgramIDIndex)
		writeCompactU16(&buf, len(ix.Accounts))
		buf.Write(ix.Accounts)
		writeCompactU16(&buf, len(ix.Data))
		buf.Write(ix.Data)
	}
	return buf.Bytes()
}

// Transaction pairs a message with one signature slot per required signer.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

func (tx *Transaction) signerIndex(key PublicKey) int {
	n := int(tx.Message.Header.NumRequiredSignatures)
	for i := 0; i < n && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i] == key {
			return i
		}
	}
	return -1
}

// Sign signs the message with a local key.
func (tx *Transaction) Sign(key ed25519.PrivateKey) error {
	var pub PublicKey
	copy(pub[:], key.Public().(ed25519.PublicKey))
	var sig Signature
	copy(sig[:], ed25519.Sign(key, tx.Message.Serialize()))
	return tx.AddSignature(pub, sig)
}

// AddSignature places a signature produced elsewhere into the signer's slot
// after checking it against the message.
func (tx *Transaction) AddSignature(signer PublicKey, sig Signature) error {
	i := tx.signerIndex(signer)
	if i < 0 {
		return fmt.Errorf("%s is not a required signer", signer)
	}
	if !ed25519.Verify(ed25519.PublicKey(signer[:]), tx.Message.Serialize(), sig[:]) {
		return ErrInvalidSignature
	}
	tx.Signatures[i] = sig
	return nil
}

func (tx *Transaction) VerifySignatures() error {
	msg := tx.Message.Serialize()
	n := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != n {
		return fmt.Errorf("want %d signatures, have %d", n, len(tx.Signatures))
	}
	for i, sig := range tx.Signatures {
		key := tx.Message.AccountKeys[i]
		if sig.IsZero() {
			return fmt.Errorf("missing signature for %s", key)
		}
		if !ed25519.Verify(ed25519.PublicKey(key[:]), msg, sig[:]) {
			return fmt.Errorf("%w for %s", ErrInvalidSignature, key)
		}
	}
	return nil
}

// ID is the fee payer's signature.
func (tx *Transaction) ID() Signature {
	if len(tx.Signatures) == 0 {
		return Signature{}
	}
	return tx.Signatures[0]
}

// Serialize returns the wire form sent to sendTransaction.
func (tx *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	writeCompactU16(&buf, len(tx.Signatures))
	for _, s := range tx.Signatures {
		buf.Write(s[:])
	}
	buf.Write(tx.Message.Serialize())
	return buf.Bytes()
}

// EncodeScore is the instruction payload of update_score: the score as a
// little-endian u32.
func EncodeScore(score uint64) ([]byte, error) {
	if score > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	}
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(score))
	return data, nil
}

// BuildScoreTransaction builds the unsigned score commit: one instruction to
// program whose only account is the wallet, signer and writable, which also
// pays the fee.
func BuildScoreTransaction(program, wallet PublicKey, blockhash Hash, score uint64) (*Transaction, error) {
	if wallet.IsZero() {
		return nil, ErrNoWallet
	}
	if program.IsZero() {
		return nil, errors.New("program id not set")
	}
	if program == wallet {
		return nil, errors.New("program id equals wallet")
	}
	data, err := EncodeScore(score)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]Signature, 1),
		Message: Message{
			Header: MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys:     []PublicKey{wallet, program},
			RecentBlockhash: blockhash,
			Instructions: []CompiledInstruction{{
				ProgramIDIndex: 1,
				Accounts:       []uint8{0},
				Data:           data,
			}},
		},
	}, nil
}

func writeCompactU16(buf *bytes.Buffer, n int) {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}
