package ledger

import (
	"bytes"
	"errors"
	"testing"
)

func TestBase58Vectors(t *testing.T) {
	cases := []struct {
		raw  []byte
		want string
	}{
		{nil, ""},
		{[]byte{0}, "1"},
		{[]byte{0, 0, 1}, "112"},
		{[]byte("Hello World!"), "2NEpo7TZRRrLZSi2U"},
		{make([]byte, 32), "11111111111111111111111111111111"},
	}
	for _, tc := range cases {
		if got := EncodeBase58(tc.raw); got != tc.want {
			t.Errorf("EncodeBase58(%x) = %q, want %q", tc.raw, got, tc.want)
		}
		back, err := DecodeBase58(tc.want)
		if err != nil {
			t.Fatalf("DecodeBase58(%q): %v", tc.want, err)
		}
		if !bytes.Equal(back, tc.raw) && !(len(back) == 0 && len(tc.raw) == 0) {
			t.Errorf("DecodeBase58(%q) = %x, want %x", tc.want, back, tc.raw)
		}
	}
}

func TestBase58RoundTripKeys(t *testing.T) {
	for seed := 0; seed < 64; seed++ {
		var k PublicKey
		for i := range k {
			k[i] = byte(seed*31 + i*7)
		}
		k[0] = byte(seed % 3) // exercise leading zeros
		parsed, err := ParsePublicKey(k.String())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if parsed != k {
			t.Fatalf("seed %d: round trip mismatch", seed)
		}
	}
}

func TestBase58RejectsBadInput(t *testing.T) {
	for _, s := range []string{"0", "O", "I", "l", "abc+"} {
		if _, err := DecodeBase58(s); !errors.Is(err, ErrInvalidBase58) {
			t.Errorf("DecodeBase58(%q) err = %v", s, err)
		}
	}
	if _, err := ParsePublicKey("2NEpo7TZRRrLZSi2U"); err == nil {
		t.Fatal("short key should not parse")
	}
}
