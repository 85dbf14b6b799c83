// Package core provides parameter sets and validation for GGH.
package core

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"

	ggh "github.com/BackendStack21/ggh-go"
	"github.com/BackendStack21/ggh-go/utils"
)

const (
	// DefaultNoiseParameter is the noise bound of the interactive demo.
	DefaultNoiseParameter = 2
	// DefaultUnimodularIterations is the number of unimodular factors in the public transform.
	DefaultUnimodularIterations = 8
	// DefaultMaxBasisAttempts bounds good-basis resampling.
	DefaultMaxBasisAttempts = 1 << 20
	// DefaultMaxUnimodularAttempts bounds redraws of a single unimodular factor.
	DefaultMaxUnimodularAttempts = 1 << 12
	// DefaultMaxUnimodularBits caps entries of the unimodular product at 32 bits.
	DefaultMaxUnimodularBits = 32

	// maxUnimodularBits leaves room for the basis entries and the message
	// below the 53-bit float64 mantissa.
	maxUnimodularBits = 40
)

// GGH2Params is the two-dimensional preset.
var GGH2Params = ggh.Params{
	Level:                 ggh.GGH2,
	Dimension:             2,
	BasisParameter:        14,
	NoiseParameter:        DefaultNoiseParameter,
	UnimodularIterations:  DefaultUnimodularIterations,
	MaxBasisAttempts:      DefaultMaxBasisAttempts,
	MaxUnimodularAttempts: DefaultMaxUnimodularAttempts,
	MaxUnimodularBits:     DefaultMaxUnimodularBits,
}

// GGH3Params is the three-dimensional preset.
var GGH3Params = ggh.Params{
	Level:                 ggh.GGH3,
	Dimension:             3,
	BasisParameter:        16,
	NoiseParameter:        DefaultNoiseParameter,
	UnimodularIterations:  DefaultUnimodularIterations,
	MaxBasisAttempts:      DefaultMaxBasisAttempts,
	MaxUnimodularAttempts: DefaultMaxUnimodularAttempts,
	MaxUnimodularBits:     DefaultMaxUnimodularBits,
}

// GGH4Params is the four-dimensional preset.
var GGH4Params = ggh.Params{
	Level:                 ggh.GGH4,
	Dimension:             4,
	BasisParameter:        18,
	NoiseParameter:        DefaultNoiseParameter,
	UnimodularIterations:  DefaultUnimodularIterations,
	MaxBasisAttempts:      DefaultMaxBasisAttempts,
	MaxUnimodularAttempts: DefaultMaxUnimodularAttempts,
	MaxUnimodularBits:     DefaultMaxUnimodularBits,
}

// GetParams returns the parameter set for the given preset.
func GetParams(level ggh.Level) (ggh.Params, error) {
	switch level {
	case ggh.GGH2:
		return GGH2Params, nil
	case ggh.GGH3:
		return GGH3Params, nil
	case ggh.GGH4:
		return GGH4Params, nil
	default:
		return ggh.Params{}, fmt.Errorf("unknown parameter level: %s", level)
	}
}

// DefaultParams builds parameters for an arbitrary dimension the way the interactive
// demo does: basis entries in [-(2n+10), 2n+10], noise bound 2, eight
// unimodular factors.
func DefaultParams(dimension int) ggh.Params {
	return ggh.Params{
		Level:                 ggh.Custom,
		Dimension:             dimension,
		BasisParameter:        int64(2*dimension + 10),
		NoiseParameter:        DefaultNoiseParameter,
		UnimodularIterations:  DefaultUnimodularIterations,
		MaxBasisAttempts:      DefaultMaxBasisAttempts,
		MaxUnimodularAttempts: DefaultMaxUnimodularAttempts,
		MaxUnimodularBits:     DefaultMaxUnimodularBits,
	}
}

// ValidateParams validates the parameter set for consistency.
func ValidateParams(params ggh.Params) error {
	if err := utils.CheckPositive(params.Dimension, "dimension"); err != nil {
		return err
	}
	if params.Dimension > utils.MaxDimension {
		return fmt.Errorf("dimension %d exceeds limit %d", params.Dimension, utils.MaxDimension)
	}
	if params.BasisParameter <= 0 {
		return errors.New("basis parameter must be positive")
	}
	if params.BasisParameter > utils.MaxEntryBound {
		return errors.New("basis parameter exceeds limit")
	}
	if params.NoiseParameter < 0 {
		return errors.New("noise parameter must be non-negative")
	}
	if params.NoiseParameter > utils.MaxEntryBound {
		return errors.New("noise parameter exceeds limit")
	}
	if params.UnimodularIterations < 0 {
		return errors.New("unimodular iterations must be non-negative")
	}
	if err := utils.CheckPositive(params.MaxBasisAttempts, "max basis attempts"); err != nil {
		return err
	}
	if err := utils.CheckPositive(params.MaxUnimodularAttempts, "max unimodular attempts"); err != nil {
		return err
	}
	if err := utils.CheckPositive(params.MaxUnimodularBits, "max unimodular bits"); err != nil {
		return err
	}
	if params.MaxUnimodularBits > maxUnimodularBits {
		return fmt.Errorf("max unimodular bits should be at most %d", maxUnimodularBits)
	}
	return nil
}

// Equal reports whether two parameter sets are identical.
func Equal(a, b ggh.Params) bool {
	return cmp.Equal(a, b)
}
