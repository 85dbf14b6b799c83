package utils

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"runtime"

	lutils "github.com/tuneinsight/lattigo/v4/utils"
)

// MinSeedLength is the minimum length of a seed accepted by NewSeededSource.
const MinSeedLength = 32

var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand, which relies on the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := RandReader.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Source is the randomness capability consumed by the basis and unimodular generators
// and by encryption noise. Implementations need not be safe for concurrent use.
type Source interface {
	// Intn returns a uniform integer in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Int64Range returns a uniform integer in [lo, hi]. It panics if hi < lo.
	Int64Range(lo, hi int64) int64
	// Bool returns a uniform bit.
	Bool() bool
}

// PRNGSource draws uniform integers from a keyed PRNG stream by rejection sampling.
// Two sources built from the same seed produce the same sequence.
type PRNGSource struct {
	prng io.Reader
	buf  [8]byte
}

// NewSeededSource returns a deterministic source keyed by seed.
func NewSeededSource(seed []byte) (*PRNGSource, error) {
	if len(seed) < MinSeedLength {
		return nil, fmt.Errorf("seed must be at least %d bytes", MinSeedLength)
	}
	prng, err := lutils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, fmt.Errorf("keyed prng: %w", err)
	}
	return &PRNGSource{prng: prng}, nil
}

// NewRandomSource returns a source keyed from the operating system's CSPRNG.
func NewRandomSource() (*PRNGSource, error) {
	seed, err := SecureRandomBytes(MinSeedLength)
	if err != nil {
		return nil, err
	}
	defer Zeroize(seed)
	return NewSeededSource(seed)
}

// next reads one 64-bit word. Keyed PRNG reads do not fail; a failing reader
// means the source was built around something else and cannot continue.
func (s *PRNGSource) next() uint64 {
	if _, err := io.ReadFull(s.prng, s.buf[:]); err != nil {
		panic(fmt.Errorf("prng read: %w", err))
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// Uint64n returns a uniform integer in [0, bound). It panics if bound is 0.
func (s *PRNGSource) Uint64n(bound uint64) uint64 {
	if bound == 0 {
		panic("Uint64n: zero bound")
	}
	threshold := (math.MaxUint64 / bound) * bound
	for {
		word := s.next()
		if word < threshold {
			return word % bound
		}
	}
}

// Intn returns a uniform integer in [0, n).
func (s *PRNGSource) Intn(n int) int {
	if n <= 0 {
		panic("Intn: n must be positive")
	}
	return int(s.Uint64n(uint64(n)))
}

// Int64Range returns a uniform integer in [lo, hi].
func (s *PRNGSource) Int64Range(lo, hi int64) int64 {
	if hi < lo {
		panic(fmt.Sprintf("Int64Range: empty range [%d, %d]", lo, hi))
	}
	span := uint64(hi-lo) + 1
	if span == 0 {
		// [math.MinInt64, math.MaxInt64]
		return int64(s.next())
	}
	return int64(uint64(lo) + s.Uint64n(span))
}

// Bool returns a uniform bit.
func (s *PRNGSource) Bool() bool {
	return s.next()&1 == 1
}

// ValidateSeedEntropy checks if a seed has sufficient entropy.
// It performs basic statistical tests to reject obviously weak seeds (e.g., all zeros, sequential).
// This is a sanity check, not a rigorous randomness test.
func ValidateSeedEntropy(seed []byte) error {
	if len(seed) < MinSeedLength {
		return errors.New("seed must be at least 32 bytes")
	}

	first := seed[0]
	allSame := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != first {
			allSame = false
			break
		}
	}
	if allSame {
		return errors.New("seed has low entropy: all bytes are identical")
	}

	isAscending := true
	isDescending := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != byte((int(seed[i-1])+1)%256) {
			isAscending = false
		}
		if seed[i] != byte((int(seed[i-1])-1+256)%256) {
			isDescending = false
		}
		if !isAscending && !isDescending {
			break
		}
	}
	if isAscending || isDescending {
		return errors.New("seed has low entropy: sequential pattern detected")
	}

	unique := make(map[byte]struct{})
	for _, b := range seed {
		unique[b] = struct{}{}
		if len(unique) >= 8 {
			break
		}
	}
	if len(unique) < 8 {
		return errors.New("seed has low entropy: insufficient byte diversity")
	}

	return nil
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroizeBigInts sets every integer to zero in place, clearing the backing words first.
func ZeroizeBigInts(s []*big.Int) {
	for _, x := range s {
		if x == nil {
			continue
		}
		words := x.Bits()
		for i := range words {
			words[i] = 0
		}
		x.SetInt64(0)
	}
	runtime.KeepAlive(s)
}
