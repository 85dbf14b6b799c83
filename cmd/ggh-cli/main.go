// Package main provides the ggh-cli command line interface for GGH operations.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	ggh "github.com/BackendStack21/ggh-go"
	"github.com/BackendStack21/ggh-go/core"
	"github.com/BackendStack21/ggh-go/pke"
	"github.com/BackendStack21/ggh-go/utils"
)

const (
	version = "0.3.0"
	appName = "ggh-cli"

	// seedDomain separates passphrase-derived key seeds from every other hash use.
	seedDomain = "ggh-cli-seed-v1"
)

// OutputFormat represents the output format for reports
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	Params    ggh.Params
	HasParams bool // --dim or --level was given

	Noise    int64
	HasNoise bool

	OutputFormat OutputFormat
	OutputFile   string
	Seed         string
	Verbose      bool
	Strict       bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix(appName + ": ")

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	case "version", "--version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("ggh-go library version %s\n", ggh.Version)
	case "demo":
		err = runDemo(args, os.Stdin, os.Stdout)
	case "ratio":
		err = runRatio(args, os.Stdout)
	case "decompose":
		err = runDecompose(args, os.Stdout)
	case "params":
		err = runParams(args, os.Stdout)
	case "benchmark":
		err = runBenchmark(args, os.Stdout)
	case "analysis":
		err = runAnalysis(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s - GGH lattice cryptosystem CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    demo        Generate a key pair, encrypt a message and decrypt it again
    ratio       Hadamard ratio of a basis
    decompose   Coordinates of a vector in a basis, optionally Babai rounding
    params      Show parameter presets
    benchmark   Run performance benchmarks
    analysis    Sample random bases and write an HTML report
    version     Show version information
    help        Show this help message

OPTIONS:
    -d, --dim <n>          Lattice dimension (basis parameter 2n+10, noise 2)
    -l, --level <level>    Preset: 2, 3, 4 (GGH-2, GGH-3, GGH-4)
    -e, --noise <d>        Noise bound override
    -m, --message <v>      Message entries separated by spaces or commas
    -s, --seed <phrase>    Derive the key deterministically from a passphrase
    -f, --format <fmt>     Output format: text, json
    -o, --output <file>    Output file (analysis report)
    --strict               Report Babai decoding failures instead of decrypting to zero
    -v, --verbose          Log progress to stderr

EXAMPLES:
    # Interactive walkthrough
    %s demo

    # Non-interactive, reproducible
    %s demo --dim 3 --message "12 -7 30" --seed "correct horse"

    # Basis quality
    %s ratio --matrix "2 1; 1 3"

    # Coordinates and closest lattice vector
    %s decompose --matrix "20 0; 0 20" --vector "41 -39.4" --babai

    # Ratio distribution report
    %s analysis --dim 3 --samples 5000 --output report.html
`, appName, appName, appName, appName, appName, appName, appName)
}

func parseConfig(args []string) (CLIConfig, error) {
	config := CLIConfig{OutputFormat: FormatText}

	dim := getArg(args, "--dim", "-d")
	level := getArg(args, "--level", "-l")
	switch {
	case dim != "":
		n, err := strconv.Atoi(dim)
		if err != nil {
			return config, fmt.Errorf("invalid dimension '%s'", dim)
		}
		config.Params = core.DefaultParams(n)
		config.HasParams = true
	case level != "":
		lvl, err := parseLevel(level)
		if err != nil {
			return config, err
		}
		config.Params, err = core.GetParams(lvl)
		if err != nil {
			return config, err
		}
		config.HasParams = true
	}

	if noise := getArg(args, "--noise", "-e"); noise != "" {
		d, err := strconv.ParseInt(noise, 10, 64)
		if err != nil {
			return config, fmt.Errorf("invalid noise bound '%s'", noise)
		}
		config.Noise = d
		config.HasNoise = true
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "text", "":
		config.OutputFormat = FormatText
	case "json":
		config.OutputFormat = FormatJSON
	default:
		return config, fmt.Errorf("invalid format '%s'. Must be one of: text, json", format)
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.Seed = getArg(args, "--seed", "-s")
	config.Verbose = hasFlag(args, "--verbose", "-v")
	config.Strict = hasFlag(args, "--strict", "")

	return config, nil
}

// params returns the configured parameters with overrides applied.
func (c CLIConfig) params() ggh.Params {
	p := c.Params
	if c.HasNoise {
		p.NoiseParameter = c.Noise
	}
	return p
}

func parseLevel(s string) (ggh.Level, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "_", "-")) {
	case "2", "GGH-2", "GGH2":
		return ggh.GGH2, nil
	case "3", "GGH-3", "GGH3":
		return ggh.GGH3, nil
	case "4", "GGH-4", "GGH4":
		return ggh.GGH4, nil
	default:
		return "", fmt.Errorf("invalid level '%s'. Must be one of: 2, 3, 4", s)
	}
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

// newKeyPair generates a fresh key pair, or a reproducible one when a passphrase is given.
func newKeyPair(params ggh.Params, passphrase string) (*pke.KeyPair, error) {
	if passphrase == "" {
		return pke.GenerateKeyPair(params)
	}
	seed := utils.Shake256WithDomain(seedDomain, []byte(passphrase), utils.MinSeedLength)
	defer utils.Zeroize(seed)
	return pke.GenerateKeyPairFromSeed(params, seed)
}

func prompt(r *bufio.Reader, w io.Writer, text string) (string, error) {
	fmt.Fprint(w, text)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseVector reads numbers separated by spaces or commas.
func parseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, errors.New("empty vector")
	}
	v := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid number: '%s'", f)
		}
		v[i] = x
	}
	return v, nil
}

// parseMatrix reads rows separated by semicolons, e.g. "2 1; 1 3".
func parseMatrix(s string) (*mat.Dense, error) {
	var data []float64
	cols := -1
	rows := 0
	for _, row := range strings.Split(s, ";") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		v, err := parseVector(row)
		if err != nil {
			return nil, err
		}
		if cols >= 0 && len(v) != cols {
			return nil, fmt.Errorf("row %d has %d entries, expected %d", rows+1, len(v), cols)
		}
		cols = len(v)
		rows++
		data = append(data, v...)
	}
	if rows == 0 {
		return nil, errors.New("empty matrix")
	}
	if err := utils.CheckLength(len(data), utils.MaxMatrixElements); err != nil {
		return nil, fmt.Errorf("matrix too large: %w", err)
	}
	return mat.NewDense(rows, cols, data), nil
}

// denseRows converts a matrix into nested slices for JSON output.
func denseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
