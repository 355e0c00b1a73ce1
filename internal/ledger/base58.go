package ledger

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

var ErrInvalidBase58 = errors.New("invalid base58")

// EncodeBase58 encodes b with the Bitcoin alphabet used for Solana keys and
// signatures.
func EncodeBase58(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base58.Encode(b)
}

func DecodeBase58(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase58, err)
	}
	return b, nil
}
