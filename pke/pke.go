// Package pke implements GGH public-key encryption.
//
// The private key is a near-orthogonal basis B. The public key is P = B*U for a random
// unimodular U, a basis of the same lattice that is useless for decoding. A message m is
// encrypted as c = P*m + e with small noise e; the holder of B recovers the lattice point
// P*m with Babai rounding and reads m off its coordinates in P.
package pke

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"gonum.org/v1/gonum/mat"

	ggh "github.com/BackendStack21/ggh-go"
	"github.com/BackendStack21/ggh-go/core"
	"github.com/BackendStack21/ggh-go/lattice"
	"github.com/BackendStack21/ggh-go/sampling"
	"github.com/BackendStack21/ggh-go/utils"
)

const (
	DomainBasis      = "ggh-pke-basis-v1"
	DomainUnimodular = "ggh-pke-unimodular-v1"
	DomainNoise      = "ggh-pke-noise-v1"
)

var (
	// ErrDimensionMismatch indicates a message or ciphertext whose length differs from the key dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidMessage indicates a message with NaN or infinite entries.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidCiphertext indicates a ciphertext with NaN or infinite entries.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrMessageOutOfRange indicates a ciphertext coordinate float64 cannot hold exactly.
	ErrMessageOutOfRange = errors.New("message out of range")

	// ErrDecodingFailed indicates Babai decoding with the private basis failed.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrPublicKeySingular indicates the decoded point could not be expressed in the public basis.
	ErrPublicKeySingular = errors.New("public basis is singular")

	// ErrKeyZeroized indicates the private basis was wiped.
	ErrKeyZeroized = errors.New("private basis has been zeroized")

	// ErrBasisRejected indicates a caller-supplied basis unusable as a private key.
	ErrBasisRejected = errors.New("basis rejected")
)

// maxCiphertext is the largest magnitude a ciphertext coordinate may have.
var maxCiphertext = new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), utils.FloatExactBits))

// KeyPair holds a GGH private basis together with its public basis.
// A KeyPair is safe for concurrent use.
type KeyPair struct {
	params ggh.Params

	private *lattice.IntMatrix
	public  *lattice.IntMatrix

	keyMu    sync.RWMutex // guards private and zeroized
	zeroized bool

	noiseMu sync.Mutex
	noise   utils.Source
}

// GenerateKeyPair generates a key pair from fresh operating system randomness.
func GenerateKeyPair(params ggh.Params) (*KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}

	seed, err := utils.SecureRandomBytes(utils.MinSeedLength)
	if err != nil {
		return nil, err
	}

	kp, err := GenerateKeyPairFromSeed(params, seed)
	utils.Zeroize(seed)
	return kp, err
}

// GenerateKeyPairFromSeed generates a deterministic key pair from seed.
func GenerateKeyPairFromSeed(params ggh.Params, seed []byte) (*KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	basisSeed := utils.HashWithDomain(DomainBasis, seed)
	defer utils.Zeroize(basisSeed)
	src, err := utils.NewSeededSource(basisSeed)
	if err != nil {
		return nil, err
	}

	basis, err := sampling.GoodBasis(params.Dimension, params.BasisParameter, src, params.MaxBasisAttempts)
	if err != nil {
		return nil, fmt.Errorf("private basis: %w", err)
	}
	return newKeyPair(basis, params, seed)
}

// NewKeyPairFromBasis builds a key pair around a caller-chosen private basis. The basis must be
// square with dimension params.Dimension and Hadamard ratio above lattice.OrthogonalityThreshold.
// It is copied; seed drives the unimodular transform and the encryption noise.
func NewKeyPairFromBasis(basis *lattice.IntMatrix, params ggh.Params, seed []byte) (*KeyPair, error) {
	if basis == nil {
		return nil, fmt.Errorf("%w: nil basis", ErrBasisRejected)
	}
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := checkSeed(seed); err != nil {
		return nil, err
	}
	r, c := basis.Dims()
	if r != c || r != params.Dimension {
		return nil, fmt.Errorf("%w: basis is %dx%d, dimension is %d", ErrDimensionMismatch, r, c, params.Dimension)
	}
	if !sampling.AcceptableBasis(basis) {
		return nil, fmt.Errorf("%w: Hadamard ratio %.4f does not exceed %.2f",
			ErrBasisRejected, lattice.ExactHadamardRatio(basis), lattice.OrthogonalityThreshold)
	}
	return newKeyPair(basis.Clone(), params, seed)
}

func checkSeed(seed []byte) error {
	if len(seed) < utils.MinSeedLength {
		return fmt.Errorf("seed must be at least %d bytes", utils.MinSeedLength)
	}
	return utils.ValidateSeedEntropy(seed)
}

// newKeyPair takes ownership of basis.
func newKeyPair(basis *lattice.IntMatrix, params ggh.Params, seed []byte) (*KeyPair, error) {
	uniSeed := utils.HashWithDomain(DomainUnimodular, seed)
	noiseSeed := utils.HashWithDomain(DomainNoise, seed)
	defer utils.Zeroize(uniSeed)
	defer utils.Zeroize(noiseSeed)

	uniSrc, err := utils.NewSeededSource(uniSeed)
	if err != nil {
		return nil, err
	}
	noise, err := utils.NewSeededSource(noiseSeed)
	if err != nil {
		return nil, err
	}

	u, err := sampling.UnimodularProduct(params.Dimension, params.UnimodularIterations, uniSrc, sampling.ProductOptions{
		MaxAttempts: params.MaxUnimodularAttempts,
		MaxBits:     params.MaxUnimodularBits,
	})
	if err != nil {
		basis.Zero()
		return nil, fmt.Errorf("unimodular transform: %w", err)
	}

	public := lattice.Mul(basis, u)
	u.Zero()

	if public.MaxBitLen() > utils.FloatExactBits {
		basis.Zero()
		return nil, fmt.Errorf("%w: public basis entries exceed %d bits", utils.ErrOverflow, utils.FloatExactBits)
	}

	return &KeyPair{
		params:  params,
		private: basis,
		public:  public,
		noise:   noise,
	}, nil
}

// Encrypt returns P*m + e where every noise entry is drawn uniformly from
// [-NoiseParameter, NoiseParameter]. Each call draws fresh noise.
func (kp *KeyPair) Encrypt(message []float64) ([]float64, error) {
	n := kp.params.Dimension
	if len(message) != n {
		return nil, fmt.Errorf("%w: message has %d entries, key dimension is %d", ErrDimensionMismatch, len(message), n)
	}
	if !utils.AllFinite(message) {
		return nil, ErrInvalidMessage
	}

	m := make([]*big.Rat, n)
	for i, v := range message {
		m[i] = new(big.Rat).SetFloat64(v)
	}

	kp.noiseMu.Lock()
	e := make([]int64, n)
	d := kp.params.NoiseParameter
	for i := range e {
		e[i] = kp.noise.Int64Range(-d, d)
	}
	kp.noiseMu.Unlock()

	ct := make([]float64, n)
	sum, term := new(big.Rat), new(big.Rat)
	for r := 0; r < n; r++ {
		sum.SetInt64(e[r])
		for j := 0; j < n; j++ {
			term.SetInt(kp.public.At(r, j))
			sum.Add(sum, term.Mul(term, m[j]))
		}
		if sum.IsInt() {
			f, err := utils.ExactFloat64(sum.Num())
			if err != nil {
				return nil, fmt.Errorf("%w: coordinate %d: %w", ErrMessageOutOfRange, r, err)
			}
			ct[r] = f
			continue
		}
		if new(big.Rat).Abs(sum).Cmp(maxCiphertext) > 0 {
			return nil, fmt.Errorf("%w: coordinate %d exceeds 2^%d", ErrMessageOutOfRange, r, utils.FloatExactBits)
		}
		// Fractional messages give fractional coordinates, which float64 may round.
		ct[r], _ = sum.Float64()
	}
	return ct, nil
}

// Decrypt recovers the message from ct. When Babai decoding with the private basis fails,
// the zero vector stands in for the decoded lattice point, so the result is the zero
// message rather than an error. Use DecryptStrict to observe decoding failures.
// Non-finite ciphertexts are rejected with ErrInvalidCiphertext in both modes.
func (kp *KeyPair) Decrypt(ct []float64) ([]float64, error) {
	return kp.decrypt(ct, false)
}

// DecryptStrict is Decrypt but reports a Babai decoding failure as ErrDecodingFailed
// wrapping the lattice error.
func (kp *KeyPair) DecryptStrict(ct []float64) ([]float64, error) {
	return kp.decrypt(ct, true)
}

func (kp *KeyPair) decrypt(ct []float64, strict bool) ([]float64, error) {
	n := kp.params.Dimension
	if len(ct) != n {
		return nil, fmt.Errorf("%w: ciphertext has %d entries, key dimension is %d", ErrDimensionMismatch, len(ct), n)
	}
	if !utils.AllFinite(ct) {
		return nil, ErrInvalidCiphertext
	}

	kp.keyMu.RLock()
	if kp.zeroized {
		kp.keyMu.RUnlock()
		return nil, ErrKeyZeroized
	}
	point, err := lattice.ClosestLatticePoint(kp.private, ct)
	kp.keyMu.RUnlock()
	if err != nil {
		if strict {
			return nil, fmt.Errorf("%w: %w", ErrDecodingFailed, err)
		}
		point = make([]*big.Int, n)
		for i := range point {
			point[i] = new(big.Int)
		}
	}

	coords, err := lattice.Coordinates(kp.public, point)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublicKeySingular, err)
	}

	message := make([]float64, n)
	for i, c := range coords {
		message[i], err = utils.ExactFloat64(lattice.RoundRat(c))
		if err != nil {
			return nil, fmt.Errorf("message coordinate %d: %w", i, err)
		}
	}
	return message, nil
}

// Params returns the parameters the key pair was generated with.
func (kp *KeyPair) Params() ggh.Params {
	return kp.params
}

// Dimension returns the lattice dimension.
func (kp *KeyPair) Dimension() int {
	return kp.params.Dimension
}

// PublicKey returns a copy of the public basis.
func (kp *KeyPair) PublicKey() *mat.Dense {
	return kp.public.Dense()
}

// PublicBasis returns an exact copy of the public basis.
func (kp *KeyPair) PublicBasis() *lattice.IntMatrix {
	return kp.public.Clone()
}

// PrivateBasis returns a copy of the private basis.
func (kp *KeyPair) PrivateBasis() *mat.Dense {
	kp.keyMu.RLock()
	defer kp.keyMu.RUnlock()
	return kp.private.Dense()
}

// PublicHadamardRatio returns the Hadamard ratio of the public basis.
func (kp *KeyPair) PublicHadamardRatio() float64 {
	return lattice.ExactHadamardRatio(kp.public)
}

// PrivateHadamardRatio returns the Hadamard ratio of the private basis.
func (kp *KeyPair) PrivateHadamardRatio() float64 {
	kp.keyMu.RLock()
	defer kp.keyMu.RUnlock()
	return lattice.ExactHadamardRatio(kp.private)
}

// Zeroize wipes the private basis. The key pair can still encrypt but no longer decrypt.
func (kp *KeyPair) Zeroize() {
	kp.keyMu.Lock()
	defer kp.keyMu.Unlock()
	kp.private.Zero()
	kp.zeroized = true
}
