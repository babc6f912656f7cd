// Command analyze-filter prints the stage plan of a sample rate change and
// the DC gain and alias rejection of each stage's polyphase filter.
//
// Usage:
//
//	analyze-filter -in 960000 -out 48000
//	analyze-filter -in 240000 -out 44100 -window blackmanharris -semi 16
package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"strings"

	sdr "github.com/tphakala/go-sdr-pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/filter"
	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"gonum.org/v1/gonum/floats"
)

const (
	// Plan defaults (match the FM receiver)
	defaultInputRate  = 960000
	defaultOutputRate = 48000
	defaultMaxFactor  = sdr.DefaultMaxStageFactor
	defaultSemiLength = sdr.DefaultFilterSemiLength
	defaultTransition = sdr.DefaultTransitionFrequency

	// Stopband starts this far above the cutoff, as a multiple of it.
	stopbandFactor = 1.5

	// Display limits
	maxPhasesToShow = 5
	minPoints       = 4096
)

// stageReport summarizes one stage's filter.
type stageReport struct {
	spec        pipeline.StageSpec
	cutoff      float64
	phaseGains  []float64
	minGain     float64
	maxGain     float64
	stopbandDB  float64
	edgeDB      float64
	kernelTaps  int
	phaseLength int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	inRate := flag.Int("in", defaultInputRate, "Input sample rate in Hz")
	outRate := flag.Int("out", defaultOutputRate, "Output sample rate in Hz")
	maxFactor := flag.Int("max-factor", defaultMaxFactor, "Largest decimation factor of one stage")
	semi := flag.Int("semi", defaultSemiLength, "Filter semi-length")
	transition := flag.Float64("transition", defaultTransition, "Cutoff in cycles per sample of the slower rate")
	windowName := flag.String("window", "blackman", "Kernel window: "+strings.Join(filter.WindowNames(), ", "))
	flag.Parse()

	window, err := sdr.WindowByName(*windowName)
	if err != nil {
		return err
	}

	plan, err := pipeline.BuildPlan(*inRate, *outRate, *maxFactor, *semi)
	if err != nil {
		return err
	}

	fmt.Println("=== Analyzing Stage Filters ===")
	fmt.Printf("Plan: %s (%d Hz -> %d Hz, latency %.1f input samples)\n\n", plan, *inRate, *outRate, plan.Latency())

	for i, spec := range plan.Stages() {
		report, err := analyzeStage(spec, *semi, *transition, window)
		if err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
		printStage(i, report)
	}
	return nil
}

// analyzeStage synthesizes the kernel a stage would use and measures it.
func analyzeStage(spec pipeline.StageSpec, semi int, transition float64, window sdr.Window) (*stageReport, error) {
	cfg := sdr.DefaultResamplerConfig(spec.Up, spec.Down)
	cfg.FilterSemiLength = semi
	cfg.TransitionFrequency = transition
	cfg.Window = window
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factor := max(spec.Up, spec.Down)
	cutoff := transition / float64(factor)
	kernel, err := sdr.SincKernel(2*semi*factor, cutoff, false, window)
	if err != nil {
		return nil, err
	}

	bank, err := sdr.PolyphaseBank(spec.Up, kernel, float32(spec.Up))
	if err != nil {
		return nil, err
	}

	report := &stageReport{
		spec:        spec,
		cutoff:      cutoff,
		phaseGains:  make([]float64, len(bank)),
		kernelTaps:  len(kernel),
		phaseLength: len(bank[0]),
	}
	for p, phase := range bank {
		var dc float64
		for _, c := range phase {
			dc += float64(c)
		}
		report.phaseGains[p] = dc
	}
	report.minGain = floats.Min(report.phaseGains)
	report.maxGain = floats.Max(report.phaseGains)

	coeffs := make([]float64, len(kernel))
	for i, c := range kernel {
		coeffs[i] = float64(c)
	}
	resp, err := filter.ComputeResponse(coeffs, max(minPoints, len(coeffs)))
	if err != nil {
		return nil, err
	}
	var stopband []float64
	for i, f := range resp.Frequencies {
		if math.Abs(f) >= stopbandFactor*cutoff {
			stopband = append(stopband, resp.MagnitudeDB[i])
		}
	}
	report.stopbandDB = math.Inf(-1)
	if len(stopband) > 0 {
		report.stopbandDB = floats.Max(stopband)
	}
	report.edgeDB = filter.MagnitudeDB(cmplx.Abs(sdr.FrequencyResponse(kernel, cutoff)))
	return report, nil
}

func printStage(i int, r *stageReport) {
	fmt.Printf("Stage %d: %d/%d (ratio %.6f)\n", i, r.spec.Up, r.spec.Down, r.spec.Ratio())
	fmt.Printf("  Kernel: %d taps, %d phases of %d taps\n", r.kernelTaps, len(r.phaseGains), r.phaseLength)
	fmt.Printf("  Cutoff: %.6f cycles/sample (%.2f dB)\n", r.cutoff, r.edgeDB)
	fmt.Printf("  Stopband peak (|f| >= %.1f x cutoff): %.1f dB\n", stopbandFactor, r.stopbandDB)

	fmt.Println("  DC gain per phase:")
	for p := range min(len(r.phaseGains), maxPhasesToShow) {
		fmt.Printf("    Phase %3d: %.10f\n", p, r.phaseGains[p])
	}
	if len(r.phaseGains) > maxPhasesToShow {
		fmt.Printf("    ... (%d more phases)\n", len(r.phaseGains)-maxPhasesToShow)
	}
	fmt.Printf("  DC gain range: [%.10f, %.10f]\n\n", r.minGain, r.maxGain)
}
