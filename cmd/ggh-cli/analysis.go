package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/BackendStack21/ggh-go/core"
	"github.com/BackendStack21/ggh-go/lattice"
	"github.com/BackendStack21/ggh-go/sampling"
	"github.com/BackendStack21/ggh-go/utils"
)

const histogramBins = 20

// AnalysisSummary is printed after the report is written
type AnalysisSummary struct {
	Dimension      int       `json:"dimension"`
	Samples        int       `json:"samples"`
	AcceptanceRate float64   `json:"acceptance_rate"`
	MeanRatio      float64   `json:"mean_ratio"`
	Dimensions     []int     `json:"dimensions"`
	MeanAttempts   []float64 `json:"mean_attempts"`
	Report         string    `json:"report"`
}

func intArg(args []string, long, short string, def int) (int, error) {
	s := getArg(args, long, short)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid value for %s: '%s'", long, s)
	}
	return v, nil
}

// runAnalysis samples random bases, measures how often they pass the 0.95 threshold and how
// many draws a good basis costs per dimension, and renders both as an HTML page.
func runAnalysis(args []string, out io.Writer) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}
	if !config.HasParams {
		config.Params = core.DefaultParams(2)
	}
	params := config.params()
	if err := core.ValidateParams(params); err != nil {
		return err
	}

	samples, err := intArg(args, "--samples", "-n", 1000)
	if err != nil {
		return err
	}
	maxDim, err := intArg(args, "--max-dim", "", 4)
	if err != nil {
		return err
	}
	runs, err := intArg(args, "--runs", "", 5)
	if err != nil {
		return err
	}
	path := config.OutputFile
	if path == "" {
		path = "ggh_analysis.html"
	}

	var src utils.Source
	if config.Seed != "" {
		seed := utils.Shake256WithDomain(seedDomain, []byte(config.Seed), utils.MinSeedLength)
		src, err = utils.NewSeededSource(seed)
		utils.Zeroize(seed)
	} else {
		src, err = utils.NewRandomSource()
	}
	if err != nil {
		return err
	}

	// Ratio distribution at the configured dimension.
	ratios := make([]float64, samples)
	accepted := 0
	for i := range ratios {
		basis := sampling.RandomBasis(params.Dimension, params.BasisParameter, src)
		ratios[i] = lattice.ExactHadamardRatio(basis)
		if sampling.AcceptableBasis(basis) {
			accepted++
		}
	}
	counts := make([]int, histogramBins)
	for _, r := range ratios {
		bin := int(r * histogramBins)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	// Cost of a good basis per dimension.
	var dims []int
	var meanAttempts []float64
	for d := 2; d <= maxDim; d++ {
		p := core.DefaultParams(d)
		attempts := make([]int, runs)
		for r := range attempts {
			_, stats, err := sampling.GoodBasisStats(d, p.BasisParameter, src, params.MaxBasisAttempts)
			if err != nil {
				return fmt.Errorf("dimension %d: %w", d, err)
			}
			attempts[r] = stats.Attempts
		}
		dims = append(dims, d)
		meanAttempts = append(meanAttempts, floats.Sum(utils.ToFloat64(attempts))/float64(runs))
		if config.Verbose {
			log.Printf("dimension %d: %.1f attempts per good basis", d, meanAttempts[len(meanAttempts)-1])
		}
	}

	page := components.NewPage()
	page.AddCharts(
		newRatioHistogram(params.Dimension, counts, samples, accepted),
		newAttemptsChart(dims, meanAttempts, runs),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	summary := AnalysisSummary{
		Dimension:      params.Dimension,
		Samples:        samples,
		AcceptanceRate: float64(accepted) / float64(samples),
		MeanRatio:      floats.Sum(ratios) / float64(samples),
		Dimensions:     dims,
		MeanAttempts:   meanAttempts,
		Report:         path,
	}
	if config.OutputFormat == FormatJSON {
		return writeJSON(out, summary)
	}
	fmt.Fprintf(out, "Dimension %d, %d random bases\n", summary.Dimension, summary.Samples)
	fmt.Fprintf(out, "  Mean Hadamard ratio: %.4f\n", summary.MeanRatio)
	fmt.Fprintf(out, "  Acceptance rate (> %.2f): %.4f\n", lattice.OrthogonalityThreshold, summary.AcceptanceRate)
	for i, d := range dims {
		fmt.Fprintf(out, "  Dimension %d: %.1f draws per good basis\n", d, meanAttempts[i])
	}
	fmt.Fprintln(out, "Report:", path)
	return nil
}

func newRatioHistogram(dim int, counts []int, samples, accepted int) *charts.Bar {
	labels := make([]string, len(counts))
	items := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = fmt.Sprintf("%.2f", (float64(i)+0.5)/histogramBins)
		items[i] = opts.BarData{Value: c}
	}

	title := fmt.Sprintf("Hadamard ratio of random %dx%d bases", dim, dim)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("n=%d, accepted=%d", samples, accepted),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "GGH basis analysis", Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ratio"}),
	)
	bar.SetXAxis(labels).
		AddSeries("count", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func newAttemptsChart(dims []int, meanAttempts []float64, runs int) *charts.Line {
	labels := make([]string, len(dims))
	items := make([]opts.LineData, len(dims))
	for i, d := range dims {
		labels[i] = strconv.Itoa(d)
		items[i] = opts.LineData{Value: meanAttempts[i]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Draws per good basis",
			Subtitle: fmt.Sprintf("mean of %d runs, basis parameter 2n+10", runs),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "dimension"}),
	)
	line.SetXAxis(labels).AddSeries("attempts", items)
	return line
}
