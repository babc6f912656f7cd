// Package pipeline defines the contract shared by the per-component sample
// engines, the buffers they keep between calls, and the planner that splits a
// large rational rate change into a chain of cheaper stages.
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
)

// Stage is a single float32 processing engine driven one block at a time.
// Engines own their history; callers never see it.
type Stage interface {
	// Process appends the outputs for src to dst and returns the result.
	// An empty src is a no-op.
	Process(dst, src []float32) []float32

	// OutputCount returns how many samples the next Process call will
	// append for an input of n samples.
	OutputCount(n int) int

	// Reset clears internal state back to construction time.
	Reset()

	// Latency returns the stage latency in input samples.
	Latency() int
}

// StageSpec specifies one rational stage of a rate-change chain.
type StageSpec struct {
	Up   int // Interpolation factor
	Down int // Decimation factor
	Taps int // Prototype filter length
}

// Ratio returns the stage's output/input rate ratio.
func (s StageSpec) Ratio() float64 {
	return float64(s.Up) / float64(s.Down)
}

// Plan is a chain of rational stages whose product converts inputRate to
// outputRate exactly.
type Plan struct {
	stages []StageSpec
	up     int
	down   int
}

// BuildPlan decomposes inputRate → outputRate into stages.
//
// The reduced ratio up/down is split as follows. While the overall change
// is a decimation, prime factors of down are grouped greedily (largest
// first) into pure decimation stages of at most maxFactor. A factor is only
// taken while the intermediate rate stays at or above outputRate. Whatever
// remains, together with up, forms one final rational stage.
//
// Parameters:
//
//	inputRate, outputRate: Sample rates in Hz, both positive
//	maxFactor: Largest decimation factor of a pure stage (>= 2)
//	semiLength: Filter semi-length; each stage gets 2·semi·max(up,down) taps
//
// Returns:
//
//	A plan with at least one stage
//	Error if parameters are invalid
func BuildPlan(inputRate, outputRate, maxFactor, semiLength int) (*Plan, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive: %d -> %d", inputRate, outputRate)
	}
	if maxFactor < minStageFactor {
		return nil, fmt.Errorf("max stage factor must be >= %d: %d", minStageFactor, maxFactor)
	}
	if semiLength < 1 {
		return nil, fmt.Errorf("filter semi-length must be positive: %d", semiLength)
	}

	g := mathutil.GCD(inputRate, outputRate)
	p := &Plan{
		up:     outputRate / g,
		down:   inputRate / g,
		stages: make([]StageSpec, 0, defaultStageCapacity),
	}

	done := 1
	if p.up < p.down {
		factors := primeFactors(p.down)
		for {
			d := 1
			rest := make([]int, 0, len(factors))
			for _, f := range factors {
				if d*f <= maxFactor && done*d*f*p.up <= p.down {
					d *= f
					continue
				}
				rest = append(rest, f)
			}
			if d == 1 {
				break
			}
			p.stages = append(p.stages, stageSpec(1, d, semiLength))
			done *= d
			factors = rest
		}
	}

	finalUp, finalDown := p.up, p.down/done
	if finalUp != 1 || finalDown != 1 {
		gg := mathutil.GCD(finalUp, finalDown)
		p.stages = append(p.stages, stageSpec(finalUp/gg, finalDown/gg, semiLength))
	}
	if len(p.stages) == 0 {
		// Equal rates still pass through one filtering stage.
		p.stages = append(p.stages, stageSpec(1, 1, semiLength))
	}
	return p, nil
}

func stageSpec(up, down, semiLength int) StageSpec {
	return StageSpec{Up: up, Down: down, Taps: tapsPerSide * semiLength * max(up, down)}
}

// primeFactors returns the prime factors of n in descending order.
func primeFactors(n int) []int {
	var factors []int
	for f := 2; f*f <= n; f++ {
		for n%f == 0 {
			factors = append(factors, f)
			n /= f
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	slices.Reverse(factors)
	return factors
}

// Stages returns a copy of the planned stages in processing order.
func (p *Plan) Stages() []StageSpec {
	return slices.Clone(p.stages)
}

// Factors returns the reduced overall interpolation and decimation factors.
func (p *Plan) Factors() (up, down int) {
	return p.up, p.down
}

// Ratio returns the overall output/input rate ratio.
func (p *Plan) Ratio() float64 {
	return float64(p.up) / float64(p.down)
}

// Latency returns the summed group delay of every stage filter, expressed
// in samples at the plan's input rate.
func (p *Plan) Latency() float64 {
	var latency float64
	cumulative := 1.0 // input samples per stage-input sample
	for _, s := range p.stages {
		// Group delay sits at the stage's upsampled rate.
		latency += float64(s.Taps-1) / latencyDivisor / float64(s.Up) * cumulative
		cumulative /= s.Ratio()
	}
	return latency
}

// String formats the plan as a chain such as "1/5 -> 1/5 -> 1/2".
func (p *Plan) String() string {
	parts := make([]string, len(p.stages))
	for i, s := range p.stages {
		parts[i] = fmt.Sprintf("%d/%d", s.Up, s.Down)
	}
	return strings.Join(parts, " -> ")
}
