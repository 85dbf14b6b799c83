// Package ggh implements the GGH (Goldreich-Goldwasser-Halevi) lattice public-key cryptosystem.
//
// A private "good" basis with Hadamard ratio above 0.95 is hidden behind a public basis
// obtained by multiplying it with a random unimodular matrix. Both bases generate the same
// lattice, but only the good one lets Babai's rounding algorithm recover the lattice point
// closest to a noisy ciphertext.
//
// WARNING: GGH is broken by lattice reduction and embedding attacks in realistic dimensions.
// This package is a numerical primitive for study and testing, not a production cipher.
package ggh

// Level names a parameter preset.
type Level string

const (
	// GGH2 is the two-dimensional preset used by the worked examples.
	GGH2 Level = "GGH-2"
	// GGH3 is the three-dimensional preset.
	GGH3 Level = "GGH-3"
	// GGH4 is the four-dimensional preset. Good-basis sampling is noticeably slower here.
	GGH4 Level = "GGH-4"
	// Custom marks parameters built with core.DefaultParams or by hand.
	Custom Level = "custom"
)

// Params contains the complete parameter set for key generation and encryption.
type Params struct {
	Level Level `json:"level"`

	Dimension      int   `json:"dimension"`       // Lattice dimension n
	BasisParameter int64 `json:"basis_parameter"` // Private basis entries are drawn from [-p, p]
	NoiseParameter int64 `json:"noise_parameter"` // Noise entries are drawn from [-d, d]

	// UnimodularIterations is the number of random unimodular factors multiplied together
	// to build the basis-transforming matrix.
	UnimodularIterations int `json:"unimodular_iterations"`

	MaxBasisAttempts      int `json:"max_basis_attempts"`      // Bound on good-basis resampling
	MaxUnimodularAttempts int `json:"max_unimodular_attempts"` // Bound on redraws per unimodular factor

	// MaxUnimodularBits caps the bit length of every entry of the unimodular product.
	// It keeps the public key and ciphertexts inside the range where float64 holds
	// integers exactly.
	MaxUnimodularBits int `json:"max_unimodular_bits"`
}
