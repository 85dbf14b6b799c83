package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	v, err := parseVector(" 3 5,-7\t2.5 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5, -7, 2.5}, v)

	_, err = parseVector("")
	assert.Error(t, err)
	_, err = parseVector("1 two 3")
	assert.Error(t, err)
}

func TestParseMatrix(t *testing.T) {
	m, err := parseMatrix("2 1; 1 3;")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.0, m.At(1, 0))
	assert.Equal(t, 3.0, m.At(1, 1))

	_, err = parseMatrix("1 2; 3")
	assert.Error(t, err)
	_, err = parseMatrix(" ; ")
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	config, err := parseConfig([]string{"--level", "GGH-3", "--noise", "0", "-f", "json", "--strict"})
	require.NoError(t, err)
	assert.True(t, config.HasParams)
	assert.Equal(t, 3, config.params().Dimension)
	assert.Equal(t, int64(0), config.params().NoiseParameter)
	assert.Equal(t, FormatJSON, config.OutputFormat)
	assert.True(t, config.Strict)

	config, err = parseConfig([]string{"-d", "5"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), config.params().BasisParameter)
	assert.Equal(t, int64(2), config.params().NoiseParameter)

	_, err = parseConfig([]string{"--level", "7"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"--dim", "x"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"--format", "xml"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"--noise", "lots"})
	assert.Error(t, err)
}

func TestGetArg(t *testing.T) {
	args := []string{"--dim", "3", "-m", "1 2 3", "--verbose"}
	assert.Equal(t, "3", getArg(args, "--dim", "-d"))
	assert.Equal(t, "1 2 3", getArg(args, "--message", "-m"))
	assert.Equal(t, "", getArg(args, "--seed", "-s"))
	assert.Equal(t, "", getArg(args, "--verbose", ""))
	assert.True(t, hasFlag(args, "--verbose", "-v"))
	assert.False(t, hasFlag(args, "--strict", ""))
}

func TestDemo_JSON(t *testing.T) {
	var out bytes.Buffer
	args := []string{"--dim", "2", "--noise", "0", "--message", "3 5", "--seed", "demo test", "--format", "json"}
	require.NoError(t, runDemo(args, strings.NewReader(""), &out))

	var report DemoReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Match)
	assert.Equal(t, []float64{3, 5}, report.Decrypted)
	assert.Len(t, report.PublicKey, 2)
	assert.Greater(t, report.PublicHadamardRatio, 0.0)

	// Same passphrase, same key.
	var again bytes.Buffer
	require.NoError(t, runDemo(args, strings.NewReader(""), &again))
	var report2 DemoReport
	require.NoError(t, json.Unmarshal(again.Bytes(), &report2))
	assert.Equal(t, report.PublicKey, report2.PublicKey)
}

func TestDemo_Prompts(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("2\n-4 9\n")
	require.NoError(t, runDemo([]string{"--noise", "0"}, in, &out))

	text := out.String()
	assert.Contains(t, text, "Please insert the key dimension: ")
	assert.Contains(t, text, "Enter the integer elements of the vector separated by spaces: ")
	assert.Contains(t, text, "Public key Hadamard ratio")
	assert.Contains(t, text, "Original message: [-4 9]")
	assert.Contains(t, text, "Decrypted message: [-4 9]")
}

func TestDemo_Errors(t *testing.T) {
	var out bytes.Buffer
	err := runDemo([]string{"--dim", "2", "--message", "1 2 3"}, strings.NewReader(""), &out)
	assert.Error(t, err)

	err = runDemo(nil, strings.NewReader("two\n"), &out)
	assert.Error(t, err)

	err = runDemo([]string{"--dim", "0", "--message", "1"}, strings.NewReader(""), &out)
	assert.Error(t, err)

	err = runDemo([]string{"--dim", "2"}, strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestRatio(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRatio([]string{"--matrix", "20 0; 0 20", "--format", "json"}, &out))

	var report RatioReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.InDelta(t, 1.0, report.Ratio, 1e-12)
	assert.InDelta(t, 1.0, report.ExactRatio, 1e-12)
	assert.Equal(t, "400", report.ExactDeterminant)
	assert.True(t, report.Acceptable)

	out.Reset()
	require.NoError(t, runRatio([]string{"-m", "1 1 1; 1 1 1; 1 1 1"}, &out))
	assert.Contains(t, out.String(), "Hadamard ratio: 0.000000")
	assert.Contains(t, out.String(), "Good basis (ratio > 0.95): false")

	assert.Error(t, runRatio(nil, &out))
	assert.Error(t, runRatio([]string{"-m", "1 2 3; 4 5 6"}, &out))
}

func TestDecompose(t *testing.T) {
	var out bytes.Buffer
	args := []string{"--matrix", "20 0; 0 20", "--vector", "41 -39.4", "--babai", "--format", "json"}
	require.NoError(t, runDecompose(args, &out))

	var report DecomposeReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.InDeltaSlice(t, []float64{2.05, -1.97}, report.Coordinates, 1e-12)
	assert.Equal(t, []float64{2, -2}, report.Rounded)
	assert.InDeltaSlice(t, []float64{40, -40}, report.Closest, 1e-12)
}

func TestDecompose_Refusals(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDecompose([]string{"-m", "1 1; 0 1", "-x", "0.4 0.6", "-b"}, &out))
	assert.Contains(t, out.String(), "Babai decoding refused: not orthogonal enough")

	err := runDecompose([]string{"-m", "1 1 1; 1 1 1; 1 1 1", "-x", "1 2 3"}, &out)
	assert.ErrorContains(t, err, "singular basis")

	assert.Error(t, runDecompose([]string{"-m", "1 0; 0 1"}, &out))
}

func TestParams(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runParams(nil, &out))
	text := out.String()
	assert.Contains(t, text, "GGH-2")
	assert.Contains(t, text, "GGH-3")
	assert.Contains(t, text, "GGH-4")

	out.Reset()
	require.NoError(t, runParams([]string{"--dim", "6", "-f", "json"}, &out))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(22), list[0]["basis_parameter"])
}

func TestBenchmark(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runBenchmark([]string{"--iterations", "2"}, &out))
	text := out.String()
	assert.Contains(t, text, "GGH Benchmark Results")
	assert.Contains(t, text, "KeyGen:")
	assert.Contains(t, text, "Decrypt:")
	assert.Contains(t, text, "Basis attempts:")
}

func TestAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	var out bytes.Buffer
	args := []string{"--dim", "2", "--samples", "200", "--max-dim", "3", "--runs", "2", "--seed", "analysis", "-o", path, "-f", "json"}
	require.NoError(t, runAnalysis(args, &out))

	var summary AnalysisSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 200, summary.Samples)
	assert.Equal(t, []int{2, 3}, summary.Dimensions)
	assert.GreaterOrEqual(t, summary.AcceptanceRate, 0.0)
	assert.LessOrEqual(t, summary.AcceptanceRate, 1.0)
	for _, a := range summary.MeanAttempts {
		assert.GreaterOrEqual(t, a, 1.0)
	}

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")

	assert.Error(t, runAnalysis([]string{"--samples", "0"}, &out))
}
