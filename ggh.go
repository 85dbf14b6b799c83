package ggh

// Version of the ggh-go implementation.
const Version = "0.3.0"

// API summary:
//
// Key pairs:
//   - pke.GenerateKeyPair(params) - Generate a key pair from fresh OS randomness
//   - pke.GenerateKeyPairFromSeed(params, seed) - Deterministic key generation
//   - pke.NewKeyPairFromBasis(basis, params, seed) - Key pair around a caller-chosen good basis
//   - kp.Encrypt(message) - Ciphertext = public basis * message + noise
//   - kp.Decrypt(ciphertext) - Babai decoding, zero-vector fallback on decode failure
//   - kp.DecryptStrict(ciphertext) - Babai decoding, decode failure returned as an error
//
// Lattice primitives:
//   - lattice.Decompose(vector, basis) - Coordinates of a vector in a basis (LU)
//   - lattice.HadamardRatio(basis) - Basis quality in (0, 1]
//   - lattice.ClosestVector(basis, target) - Babai rounding
//
// Generators:
//   - sampling.GoodBasis(size, parameter, src, maxAttempts) - Basis with ratio > 0.95
//   - sampling.RandomUnimodular(size, src, maxAttempts) - Integer matrix with det = +-1
//
// Parameters:
//   - core.GetParams(level) - Presets GGH-2, GGH-3, GGH-4
//   - core.DefaultParams(dimension) - basis parameter 2n+10, noise 2, 8 unimodular factors
