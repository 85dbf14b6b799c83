package pke

import (
	"errors"
	"math"
	"testing"

	"github.com/BackendStack21/ggh-go/core"
)

// FuzzDecrypt feeds arbitrary ciphertexts to both decryption modes.
func FuzzDecrypt(f *testing.F) {
	kp, err := NewKeyPairFromBasis(scaledIdentity(2, 20), core.DefaultParams(2), fixtureSeed("fuzz"))
	if err != nil {
		f.Fatal(err)
	}

	f.Add(0.0, 0.0)
	f.Add(41.0, -39.4)
	f.Add(1e15, -1e15)
	f.Add(math.NaN(), 1.0)
	f.Add(math.Inf(1), 0.0)

	f.Fuzz(func(t *testing.T, x, y float64) {
		// Should not panic, may return error
		_, _ = kp.Decrypt([]float64{x, y})
		_, _ = kp.DecryptStrict([]float64{x, y})
	})
}

// FuzzRoundTrip checks that small integer messages survive noise on a wide basis.
func FuzzRoundTrip(f *testing.F) {
	kp, err := NewKeyPairFromBasis(scaledIdentity(2, 20), core.DefaultParams(2), fixtureSeed("fuzz round trip"))
	if err != nil {
		f.Fatal(err)
	}

	f.Add(int32(3), int32(5))
	f.Add(int32(-1000000), int32(1000000))

	f.Fuzz(func(t *testing.T, a, b int32) {
		msg := []float64{float64(a), float64(b)}
		ct, err := kp.Encrypt(msg)
		if errors.Is(err, ErrMessageOutOfRange) {
			t.Skip()
		}
		if err != nil {
			t.Fatal(err)
		}
		got, err := kp.DecryptStrict(ct)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != msg[0] || got[1] != msg[1] {
			t.Fatalf("decrypted %v, want %v", got, msg)
		}
	})
}
