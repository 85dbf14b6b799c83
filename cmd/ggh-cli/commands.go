package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	ggh "github.com/BackendStack21/ggh-go"
	"github.com/BackendStack21/ggh-go/core"
	"github.com/BackendStack21/ggh-go/lattice"
	"github.com/BackendStack21/ggh-go/pke"
	"github.com/BackendStack21/ggh-go/sampling"
	"github.com/BackendStack21/ggh-go/utils"
)

// DemoReport is the JSON form of a demo run
type DemoReport struct {
	Params              ggh.Params  `json:"params"`
	PublicKey           [][]float64 `json:"public_key"`
	PublicHadamardRatio float64     `json:"public_hadamard_ratio"`
	Message             []float64   `json:"message"`
	Ciphertext          []float64   `json:"ciphertext"`
	Decrypted           []float64   `json:"decrypted"`
	Match               bool        `json:"match"`
}

// RatioReport is the JSON form of the ratio command
type RatioReport struct {
	Ratio            float64 `json:"ratio"`
	ExactRatio       float64 `json:"exact_ratio,omitempty"`
	Determinant      float64 `json:"determinant"`
	ExactDeterminant string  `json:"exact_determinant,omitempty"`
	Acceptable       bool    `json:"acceptable"`
}

// DecomposeReport is the JSON form of the decompose command
type DecomposeReport struct {
	Coordinates []float64 `json:"coordinates"`
	Rounded     []float64 `json:"rounded"`
	Closest     []float64 `json:"closest,omitempty"`
	BabaiError  string    `json:"babai_error,omitempty"`
}

func runDemo(args []string, in io.Reader, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)

	if !config.HasParams {
		line, err := prompt(reader, out, "Please insert the key dimension: ")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return fmt.Errorf("input not an integer: '%s'", line)
		}
		config.Params = core.DefaultParams(n)
	}
	params := config.params()
	if err := core.ValidateParams(params); err != nil {
		return err
	}

	msgStr := getArg(args, "--message", "-m")
	if msgStr == "" {
		msgStr, err = prompt(reader, out, "Enter the integer elements of the vector separated by spaces: ")
		if err != nil {
			return err
		}
	}
	message, err := parseVector(msgStr)
	if err != nil {
		return err
	}
	if len(message) != params.Dimension {
		return fmt.Errorf("message has %d entries, key dimension is %d", len(message), params.Dimension)
	}

	start := time.Now()
	kp, err := newKeyPair(params, config.Seed)
	if err != nil {
		return fmt.Errorf("key generation: %w", err)
	}
	defer kp.Zeroize()
	if config.Verbose {
		log.Printf("key generation took %v", time.Since(start))
	}

	ct, err := kp.Encrypt(message)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	decrypt := kp.Decrypt
	if config.Strict {
		decrypt = kp.DecryptStrict
	}
	decrypted, err := decrypt(ct)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if config.Verbose {
		log.Printf("largest ciphertext entry: %v", utils.MaxAbs(ct))
	}

	report := DemoReport{
		Params:              params,
		PublicKey:           denseRows(kp.PublicKey()),
		PublicHadamardRatio: kp.PublicHadamardRatio(),
		Message:             message,
		Ciphertext:          ct,
		Decrypted:           decrypted,
		Match:               equalVectors(message, decrypted),
	}

	if config.OutputFormat == FormatJSON {
		return writeJSON(out, report)
	}

	fmt.Fprintf(out, "Public key\n%v\n", mat.Formatted(kp.PublicKey(), mat.Squeeze()))
	fmt.Fprintf(out, "Public key Hadamard ratio\n%v\n", report.PublicHadamardRatio)
	fmt.Fprintf(out, "Original message: %v\n", message)
	fmt.Fprintf(out, "Encrypted message: %v\n", ct)
	fmt.Fprintf(out, "Decrypted message: %v\n", decrypted)
	if !report.Match {
		fmt.Fprintln(out, "Decryption did not recover the message (noise too large for this basis)")
	}
	return nil
}

func equalVectors(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runRatio(args []string, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	matStr := getArg(args, "--matrix", "-m")
	if matStr == "" {
		return errors.New(`--matrix is required, e.g. --matrix "1 0; 0 1"`)
	}
	m, err := parseMatrix(matStr)
	if err != nil {
		return err
	}
	if r, c := m.Dims(); r != c {
		return fmt.Errorf("basis must be square, got %dx%d", r, c)
	}

	report := RatioReport{
		Ratio:       lattice.HadamardRatio(m),
		Determinant: lattice.Det(m),
	}
	if basis, err := lattice.IntMatrixFromDense(m); err == nil {
		report.ExactRatio = lattice.ExactHadamardRatio(basis)
		report.ExactDeterminant = basis.Det().String()
		report.Acceptable = sampling.AcceptableBasis(basis)
	} else {
		report.Acceptable = report.Ratio > lattice.OrthogonalityThreshold
	}

	if config.OutputFormat == FormatJSON {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "Hadamard ratio: %.6f\n", report.Ratio)
	if report.ExactDeterminant != "" {
		fmt.Fprintf(out, "Exact ratio:    %.6f\n", report.ExactRatio)
		fmt.Fprintf(out, "Determinant:    %s\n", report.ExactDeterminant)
	} else {
		fmt.Fprintf(out, "Determinant:    %v\n", report.Determinant)
	}
	fmt.Fprintf(out, "Good basis (ratio > %.2f): %t\n", lattice.OrthogonalityThreshold, report.Acceptable)
	return nil
}

func runDecompose(args []string, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	matStr := getArg(args, "--matrix", "-m")
	vecStr := getArg(args, "--vector", "-x")
	if matStr == "" || vecStr == "" {
		return errors.New("--matrix and --vector are required")
	}
	basis, err := parseMatrix(matStr)
	if err != nil {
		return err
	}
	target, err := parseVector(vecStr)
	if err != nil {
		return err
	}

	coords, err := lattice.Decompose(target, basis)
	if err != nil {
		return err
	}
	report := DecomposeReport{Coordinates: coords, Rounded: utils.RoundAll(coords)}

	if hasFlag(args, "--babai", "-b") {
		closest, err := lattice.ClosestVector(basis, target)
		switch {
		case errors.Is(err, lattice.ErrIllConditionedBasis):
			report.BabaiError = fmt.Sprintf("not orthogonal enough (ratio %.4f <= %.2f)",
				lattice.HadamardRatio(basis), lattice.OrthogonalityThreshold)
		case err != nil:
			report.BabaiError = err.Error()
		default:
			report.Closest = closest
		}
	}

	if config.OutputFormat == FormatJSON {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "Coordinates: %v\n", report.Coordinates)
	fmt.Fprintf(out, "Rounded:     %v\n", report.Rounded)
	if report.Closest != nil {
		fmt.Fprintf(out, "Closest lattice vector: %v\n", report.Closest)
	}
	if report.BabaiError != "" {
		fmt.Fprintf(out, "Babai decoding refused: %s\n", report.BabaiError)
	}
	return nil
}

func runParams(args []string, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}

	var list []ggh.Params
	if config.HasParams {
		list = append(list, config.params())
	} else {
		for _, level := range []ggh.Level{ggh.GGH2, ggh.GGH3, ggh.GGH4} {
			p, err := core.GetParams(level)
			if err != nil {
				return err
			}
			list = append(list, p)
		}
	}
	for _, p := range list {
		if err := core.ValidateParams(p); err != nil {
			return fmt.Errorf("%s: %w", p.Level, err)
		}
	}

	if config.OutputFormat == FormatJSON {
		return writeJSON(out, list)
	}
	for _, p := range list {
		fmt.Fprintf(out, "%-7s dimension=%d basis=[-%d, %d] noise=[-%d, %d] unimodular factors=%d max bits=%d\n",
			p.Level, p.Dimension, p.BasisParameter, p.BasisParameter,
			p.NoiseParameter, p.NoiseParameter, p.UnimodularIterations, p.MaxUnimodularBits)
	}
	return nil
}

func runBenchmark(args []string, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	if !config.HasParams {
		config.Params = core.GGH2Params
	}
	params := config.params()

	iterationsStr := getArg(args, "--iterations", "-n")
	iterations := 10
	if iterationsStr != "" {
		_, _ = fmt.Sscanf(iterationsStr, "%d", &iterations)
	}
	if iterations < 1 {
		iterations = 1
	}

	fmt.Fprintf(out, "GGH Benchmark Results\n")
	fmt.Fprintf(out, "=====================\n")
	fmt.Fprintf(out, "Level: %s (dimension %d)\n", params.Level, params.Dimension)
	fmt.Fprintf(out, "Iterations: %d\n\n", iterations)

	// KeyGen
	var keygenTotal time.Duration
	var kp *pke.KeyPair
	for i := 0; i < iterations; i++ {
		start := time.Now()
		kp, err = pke.GenerateKeyPair(params)
		keygenTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("keygen: %w", err)
		}
	}
	fmt.Fprintf(out, "  KeyGen:  %v (avg)\n", keygenTotal/time.Duration(iterations))

	message := make([]float64, params.Dimension)
	for i := range message {
		message[i] = float64(i + 1)
	}

	// Encrypt
	var encryptTotal time.Duration
	var ct []float64
	for i := 0; i < iterations; i++ {
		start := time.Now()
		ct, err = kp.Encrypt(message)
		encryptTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
	}
	fmt.Fprintf(out, "  Encrypt: %v (avg)\n", encryptTotal/time.Duration(iterations))

	// Decrypt
	var decryptTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_, err := kp.Decrypt(ct)
		decryptTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("decrypt: %w", err)
		}
	}
	fmt.Fprintf(out, "  Decrypt: %v (avg)\n", decryptTotal/time.Duration(iterations))

	// Good-basis sampling
	src, err := utils.NewRandomSource()
	if err != nil {
		return err
	}
	attempts := 0
	for i := 0; i < iterations; i++ {
		_, stats, err := sampling.GoodBasisStats(params.Dimension, params.BasisParameter, src, params.MaxBasisAttempts)
		if err != nil {
			return fmt.Errorf("good basis: %w", err)
		}
		attempts += stats.Attempts
	}
	fmt.Fprintf(out, "  Basis attempts: %.1f (avg)\n", float64(attempts)/float64(iterations))
	return nil
}
