package sdr

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/tphakala/go-sdr-pipeline/internal/filter"
	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// SpectrumConfig configures the spectrum estimators.
type SpectrumConfig struct {
	// Size is the FFT length N.
	Size int

	// Overlap is the number of samples successive segments share,
	// 0 <= Overlap < Size. Segments start Size-Overlap samples apart.
	Overlap int

	// Window is evaluated in periodic mode and scaled to unit power. Nil
	// selects Hann.
	Window Window

	// Smoothing is the weight of each new spectrum in SmoothedSpectrum's
	// exponential average, (0, 1].
	Smoothing float64

	// Freeze makes SmoothedSpectrum hold the first spectrum computed after
	// a read until the next read.
	Freeze bool
}

// DefaultSpectrumConfig returns a 1024-point Hann spectrum without
// overlap and smoothing 0.1.
func DefaultSpectrumConfig() SpectrumConfig {
	return SpectrumConfig{
		Size:      DefaultFFTSize,
		Window:    Hann,
		Smoothing: DefaultSmoothing,
	}
}

// Validate checks the configuration.
func (c *SpectrumConfig) Validate() error {
	if c.Size < 2 {
		return fmt.Errorf("%w: FFT size must be at least 2: %d", ErrInvalidConfig, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d outside [0, %d)", ErrInvalidConfig, c.Overlap, c.Size)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 || math.IsNaN(c.Smoothing) {
		return fmt.Errorf("%w: smoothing must be in (0, 1]: %g", ErrInvalidConfig, c.Smoothing)
	}
	return nil
}

// periodogram computes windowed |FFT|² of one segment.
type periodogram struct {
	fft    *fourier.CmplxFFT
	window []float64
	seq    []complex128
	coeffs []complex128
	power  []float64
}

func newPeriodogram(n int, w Window) *periodogram {
	if w == nil {
		w = Hann
	}
	window := filter.Periodic(n, w, 1)
	// Unit power window, with the √2/√N FFT scale folded in.
	var sumsq float64
	for _, v := range window {
		sumsq += v * v
	}
	scale := math.Sqrt2 / (math.Sqrt(sumsq/float64(n)) * math.Sqrt(float64(n)))
	floats.Scale(scale, window)

	return &periodogram{
		fft:    fourier.NewCmplxFFT(n),
		window: window,
		seq:    make([]complex128, n),
		coeffs: make([]complex128, n),
		power:  make([]float64, n),
	}
}

// set loads sample k of the segment.
func (p *periodogram) set(k int, re, im float32) {
	w := p.window[k]
	p.seq[k] = complex(w*float64(re), w*float64(im))
}

// compute transforms the loaded segment and returns |X[k]|² in natural
// bin order. The slice is reused by the next call.
func (p *periodogram) compute() []float64 {
	p.fft.Coefficients(p.coeffs, p.seq)
	for k, c := range p.coeffs {
		a := cmplx.Abs(c)
		p.power[k] = a * a
	}
	return p.power
}

// decibels writes 10·log10(power) + offset with zero frequency rotated to
// the centre of dst.
func (p *periodogram) decibels(dst []float32, power []float64, offset float64) {
	for i := range dst {
		dst[i] = float32(powerDecibels*math.Log10(power[p.fft.ShiftIdx(i)]) + offset)
	}
}

// frequencies returns the bin frequencies matching the decibels order.
func (p *periodogram) frequencies(sampleHz float64) []float64 {
	out := make([]float64, len(p.window))
	for i := range out {
		out[i] = p.fft.Freq(p.fft.ShiftIdx(i)) * sampleHz
	}
	return out
}

// floorDecibels is the value reported for bins with no data.
var floorDecibels = float32(powerDecibels * math.Log10(spectrumFloor))

func fillFloor(dst []float32) {
	for i := range dst {
		dst[i] = floorDecibels
	}
}

// Spectrum averages windowed FFT power over segments of a complex stream.
//
// Segments of Size samples start every Size-Overlap samples regardless of
// block boundaries; samples left over from one block are carried into the
// next. ReadDB returns the average since the previous read and starts a new
// one.
type Spectrum struct {
	Consumer[complex64]
	n, d int
	pg   *periodogram

	mu    sync.Mutex
	sum   []float64
	count int
	carry *Samples[complex64]
}

// NewSpectrum returns a block-averaging estimator.
func NewSpectrum(cfg SpectrumConfig) (*Spectrum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Spectrum{
		n:     cfg.Size,
		d:     cfg.Size - cfg.Overlap,
		pg:    newPeriodogram(cfg.Size, cfg.Window),
		sum:   make([]float64, cfg.Size),
		carry: NewSamples[complex64](cfg.Size),
	}
	floats.AddConst(spectrumFloor, s.sum)
	s.Consumer.init(s, nodeLogger("Spectrum", newID()))
	return s, nil
}

// Size returns the FFT length.
func (s *Spectrum) Size() int { return s.n }

// Process accumulates every complete segment of the stream so far.
func (s *Spectrum) Process(block *Samples[complex64]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Segments index the virtual stream carry ++ block.
	nc := s.carry.Len()
	total := nc + block.Len()
	start := 0
	for ; start+s.n <= total; start += s.d {
		for k := range s.n {
			if i := start + k; i < nc {
				s.pg.set(k, s.carry.re[i], s.carry.im[i])
			} else {
				s.pg.set(k, block.re[i-nc], block.im[i-nc])
			}
		}
		floats.Add(s.sum, s.pg.compute())
		s.count++
	}

	if start < nc {
		s.carry.RemoveRange(0, start)
		s.carry.AppendRange(block, 0, block.Len())
	} else {
		s.carry.Clear()
		s.carry.AppendRange(block, start-nc, block.Len())
	}
}

// ReadDB returns the average power in dB per bin, zero frequency at index
// Size/2, and resets the average. Before any segment has completed every
// bin reads -150 dB.
func (s *Spectrum) ReadDB() []float32 {
	out := make([]float32, s.n)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		fillFloor(out)
		return out
	}
	s.pg.decibels(out, s.sum, -powerDecibels*math.Log10(float64(s.count)))
	for i := range s.sum {
		s.sum[i] = spectrumFloor
	}
	s.count = 0
	return out
}

// Frequencies returns the frequency in Hz of each ReadDB bin at the
// upstream sample rate.
func (s *Spectrum) Frequencies() []float64 {
	return s.pg.frequencies(s.SampleFrequency())
}

// SmoothedSpectrum tracks the latest Size samples and folds a new FFT of
// them into an exponential average every Size-Overlap samples.
//
// With Freeze set, the first spectrum folded in after a read is held until
// the next read, so a slow reader sees one coherent frame however fast the
// stream runs.
type SmoothedSpectrum struct {
	Consumer[complex64]
	n, d   int
	alpha  float64
	freeze bool
	pg     *periodogram

	mu      sync.Mutex
	re, im  *pipeline.RingBuffer
	pending int
	average []float64
	fresh   bool
	frozen  bool
	scratch []float32
}

// NewSmoothedSpectrum returns a sliding-window estimator.
func NewSmoothedSpectrum(cfg SpectrumConfig) (*SmoothedSpectrum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &SmoothedSpectrum{
		n:       cfg.Size,
		d:       cfg.Size - cfg.Overlap,
		alpha:   cfg.Smoothing,
		freeze:  cfg.Freeze,
		pg:      newPeriodogram(cfg.Size, cfg.Window),
		re:      pipeline.NewRingBuffer(cfg.Size),
		im:      pipeline.NewRingBuffer(cfg.Size),
		average: make([]float64, cfg.Size),
		scratch: make([]float32, 2*cfg.Size),
	}
	floats.AddConst(spectrumFloor, s.average)
	s.Consumer.init(s, nodeLogger("SmoothedSpectrum", newID()))
	return s, nil
}

// Size returns the FFT length.
func (s *SmoothedSpectrum) Size() int { return s.n }

// Process slides the window over block.
func (s *SmoothedSpectrum) Process(block *Samples[complex64]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for from := 0; from < block.Len(); {
		k := min(s.d-s.pending, block.Len()-from)
		s.re.Write(block.re[from : from+k])
		s.im.Write(block.im[from : from+k])
		s.pending += k
		from += k
		if s.pending == s.d {
			s.pending = 0
			s.update()
		}
	}
}

// update folds the spectrum of the current window into the average.
func (s *SmoothedSpectrum) update() {
	if !s.re.Full() || s.frozen {
		return
	}
	re, im := s.scratch[:s.n], s.scratch[s.n:]
	s.re.Snapshot(re)
	s.im.Snapshot(im)
	for k := range s.n {
		s.pg.set(k, re[k], im[k])
	}
	floats.Scale(1-s.alpha, s.average)
	floats.AddScaled(s.average, s.alpha, s.pg.compute())
	s.fresh = true
	if s.freeze {
		s.frozen = true
	}
}

// ReadDB returns the smoothed power in dB per bin, zero frequency at index
// Size/2, and re-arms a frozen estimator. Before the first spectrum every
// bin reads -150 dB.
func (s *SmoothedSpectrum) ReadDB() []float32 {
	out := make([]float32, s.n)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
	if !s.fresh {
		fillFloor(out)
		return out
	}
	s.pg.decibels(out, s.average, 0)
	return out
}

// Frequencies returns the frequency in Hz of each ReadDB bin at the
// upstream sample rate.
func (s *SmoothedSpectrum) Frequencies() []float64 {
	return s.pg.frequencies(s.SampleFrequency())
}
