package pke

import (
	"testing"

	ggh "github.com/BackendStack21/ggh-go"
	"github.com/BackendStack21/ggh-go/core"
	"github.com/BackendStack21/ggh-go/lattice"
)

// =============================================================================
// Key generation
// =============================================================================

func benchmarkGenerateKeyPair(b *testing.B, params ggh.Params) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := GenerateKeyPair(params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerateKeyPair_GGH2(b *testing.B) { benchmarkGenerateKeyPair(b, core.GGH2Params) }
func BenchmarkGenerateKeyPair_GGH3(b *testing.B) { benchmarkGenerateKeyPair(b, core.GGH3Params) }

// =============================================================================
// Encrypt / Decrypt
// =============================================================================

func benchmarkKeyPair(b *testing.B) *KeyPair {
	b.Helper()
	basis := lattice.NewIntMatrix(4, 4)
	for i := 0; i < 4; i++ {
		basis.SetInt64(i, i, 20)
	}
	kp, err := NewKeyPairFromBasis(basis, core.GGH4Params, fixtureSeed("bench"))
	if err != nil {
		b.Fatal(err)
	}
	return kp
}

func BenchmarkEncrypt_GGH4(b *testing.B) {
	kp := benchmarkKeyPair(b)
	msg := []float64{12, -7, 30, 4}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := kp.Encrypt(msg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecrypt_GGH4(b *testing.B) {
	kp := benchmarkKeyPair(b)
	ct, err := kp.Encrypt([]float64{12, -7, 30, 4})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := kp.DecryptStrict(ct); err != nil {
			b.Fatal(err)
		}
	}
}
