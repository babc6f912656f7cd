package sdr

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-sdr-pipeline/internal/engine"
	"github.com/tphakala/go-sdr-pipeline/internal/filter"
	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
)

// ResamplerConfig configures a rational resampler.
type ResamplerConfig struct {
	// Up is the interpolation factor (>= 1).
	Up int

	// Down is the decimation factor (>= 1).
	Down int

	// Kernel is the prototype low pass at the upsampled rate. When empty a
	// windowed-sinc kernel is synthesized from the fields below.
	Kernel []float32

	// FilterSemiLength sets the synthesized kernel length to
	// 2·FilterSemiLength·max(up, down) taps.
	FilterSemiLength int

	// TransitionFrequency is the synthesized cutoff in cycles per sample
	// of the slower of the two rates, (0, 0.5]. The kernel cutoff is
	// TransitionFrequency / max(up, down).
	TransitionFrequency float64

	// Window shapes the synthesized kernel. Nil selects Blackman.
	Window Window
}

// DefaultResamplerConfig returns a config that synthesizes its kernel
// with the default semi-length and transition frequency.
func DefaultResamplerConfig(up, down int) ResamplerConfig {
	return ResamplerConfig{
		Up:                  up,
		Down:                down,
		FilterSemiLength:    DefaultFilterSemiLength,
		TransitionFrequency: DefaultTransitionFrequency,
		Window:              Blackman,
	}
}

// Validate checks the configuration.
func (c *ResamplerConfig) Validate() error {
	if c.Up < 1 {
		return fmt.Errorf("%w: interpolation factor must be >= 1: %d", ErrInvalidConfig, c.Up)
	}
	if c.Down < 1 {
		return fmt.Errorf("%w: decimation factor must be >= 1: %d", ErrInvalidConfig, c.Down)
	}
	if len(c.Kernel) > 0 {
		return nil
	}
	if c.FilterSemiLength < 1 {
		return fmt.Errorf("%w: filter semi-length must be >= 1: %d", ErrInvalidConfig, c.FilterSemiLength)
	}
	if c.TransitionFrequency <= 0 || c.TransitionFrequency > 0.5 || math.IsNaN(c.TransitionFrequency) {
		return fmt.Errorf("%w: transition frequency must be in (0, 0.5]: %f", ErrInvalidConfig, c.TransitionFrequency)
	}
	return nil
}

// kernel returns the prototype, synthesizing it when none was supplied.
func (c *ResamplerConfig) kernel() ([]float32, error) {
	if len(c.Kernel) > 0 {
		return c.Kernel, nil
	}
	g := mathutil.GCD(c.Up, c.Down)
	factor := max(c.Up, c.Down) / g
	length := kernelLengthFactor * c.FilterSemiLength * factor
	k, err := filter.SincKernel(length, c.TransitionFrequency/float64(factor), false, c.Window, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return toFloat32(k), nil
}

// UpFIRDown is a rational resampler stage: upsample by up, low pass,
// downsample by down, through a polyphase bank.
//
// Timing is exact across blocks of any size; OutputCount predicts the
// length of the next output block.
type UpFIRDown[E Element] struct {
	*Transform[E, E]
	engines []*engine.UpFIRDown
}

// NewUpFIRDown returns a resampler for cfg.
func NewUpFIRDown[E Element](cfg ResamplerConfig) (*UpFIRDown[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kernel, err := cfg.kernel()
	if err != nil {
		return nil, err
	}
	engines, err := newEngines[E](func() (*engine.UpFIRDown, error) {
		return engine.NewUpFIRDown(cfg.Up, cfg.Down, kernel)
	})
	if err != nil {
		return nil, err
	}

	r := &UpFIRDown[E]{engines: engines}
	r.Transform = NewTransform[E, E]("UpFIRDown", r.apply)
	up, down := r.Factors()
	r.setRate(float64(up) / float64(down))
	r.log.WithFields(logrus.Fields{
		"up":      up,
		"down":    down,
		"taps":    len(kernel),
		"padding": engines[0].Padding(),
	}).Debug("designed resampler")
	return r, nil
}

func (r *UpFIRDown[E]) apply(in, out *Samples[E]) {
	runEngines(r.engines, in, out)
}

// Factors returns the gcd-reduced interpolation and decimation factors.
func (r *UpFIRDown[E]) Factors() (up, down int) { return r.engines[0].Factors() }

// OutputCount returns the exact length of the output block for an input
// block of n samples.
func (r *UpFIRDown[E]) OutputCount(n int) int { return r.engines[0].OutputCount(n) }

// Latency returns the group delay in input samples.
func (r *UpFIRDown[E]) Latency() int { return r.engines[0].Latency() }

// Reset restores the initial history and timing.
func (r *UpFIRDown[E]) Reset() { resetEngines(r.engines) }
