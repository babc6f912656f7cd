package sdr

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
)

// FMReceiverConfig configures a broadcast FM receiver chain.
type FMReceiverConfig struct {
	// InputRate is the complex input sample rate in Hz.
	InputRate int

	// TuneOffsetHz is the station's offset from the input centre
	// frequency. The mixer shifts it to zero.
	TuneOffsetHz float64

	// IFRate is the rate the demodulator runs at, in Hz.
	IFRate int

	// AudioRate is the output rate in Hz.
	AudioRate int

	// Deviation is the peak FM deviation in Hz.
	Deviation float64

	// ChannelBandwidth is the one-sided channel filter cutoff in Hz.
	ChannelBandwidth float64

	// AudioBandwidth is the one-sided audio filter cutoff in Hz.
	AudioBandwidth float64

	// DeemphasisTau is the de-emphasis time constant in seconds; zero
	// disables de-emphasis.
	DeemphasisTau float64

	// MaxStageFactor bounds the decimation factor of one resampler stage.
	MaxStageFactor int

	// FilterSemiLength sizes each stage kernel at 2·semi·max(up, down) taps.
	FilterSemiLength int

	// Window shapes the stage kernels. Nil selects Blackman.
	Window Window
}

// DefaultFMReceiverConfig returns a broadcast FM configuration for an input
// at inputRate with the station at tuneOffsetHz.
func DefaultFMReceiverConfig(inputRate int, tuneOffsetHz float64) FMReceiverConfig {
	return FMReceiverConfig{
		InputRate:        inputRate,
		TuneOffsetHz:     tuneOffsetHz,
		IFRate:           DefaultIFRate,
		AudioRate:        DefaultAudioRate,
		Deviation:        DefaultFMDeviation,
		ChannelBandwidth: DefaultChannelBandwidth,
		AudioBandwidth:   DefaultAudioBandwidth,
		DeemphasisTau:    DefaultDeemphasisTau,
		MaxStageFactor:   DefaultMaxStageFactor,
		FilterSemiLength: DefaultFilterSemiLength,
		Window:           Blackman,
	}
}

// Validate checks the configuration.
func (c *FMReceiverConfig) Validate() error {
	switch {
	case c.InputRate <= 0 || c.IFRate <= 0 || c.AudioRate <= 0:
		return fmt.Errorf("%w: sample rates must be positive: input %d, IF %d, audio %d",
			ErrInvalidConfig, c.InputRate, c.IFRate, c.AudioRate)
	case c.IFRate > c.InputRate:
		return fmt.Errorf("%w: IF rate %d above input rate %d", ErrInvalidConfig, c.IFRate, c.InputRate)
	case math.Abs(c.TuneOffsetHz) > float64(c.InputRate)/2:
		return fmt.Errorf("%w: tune offset %.0f Hz outside the input band", ErrInvalidConfig, c.TuneOffsetHz)
	case c.Deviation <= 0 || c.Deviation > float64(c.IFRate)/2:
		return fmt.Errorf("%w: deviation must be in (0, IF/2]: %f", ErrInvalidConfig, c.Deviation)
	case c.ChannelBandwidth <= 0 || c.ChannelBandwidth > float64(c.IFRate)/2:
		return fmt.Errorf("%w: channel bandwidth must be in (0, IF/2]: %f", ErrInvalidConfig, c.ChannelBandwidth)
	case c.AudioBandwidth <= 0 || c.AudioBandwidth > float64(min(c.IFRate, c.AudioRate))/2:
		return fmt.Errorf("%w: audio bandwidth must be in (0, audio/2]: %f", ErrInvalidConfig, c.AudioBandwidth)
	case c.DeemphasisTau < 0:
		return fmt.Errorf("%w: de-emphasis time constant must not be negative: %f", ErrInvalidConfig, c.DeemphasisTau)
	}
	return nil
}

// FMReceiver is a broadcast FM receiver: a mixer tuning the station to
// zero, a decimating channel filter down to the IF rate, the demodulator,
// de-emphasis, and an audio resampler.
//
// The receiver is a chain of ordinary stages; Attach feeds it and Output
// is the audio source to attach sinks to.
type FMReceiver struct {
	cfg         FMReceiverConfig
	mixer       *Mixer[complex64]
	channel     []*UpFIRDown[complex64]
	demod       *FMDemodulate
	deemphasis  *Biquad[float32]
	audio       []*UpFIRDown[float32]
	channelPlan *pipeline.Plan
	audioPlan   *pipeline.Plan
	log         *logrus.Entry
}

// NewFMReceiver builds the receiver chain for cfg.
func NewFMReceiver(cfg FMReceiverConfig) (*FMReceiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &FMReceiver{cfg: cfg, log: nodeLogger("FMReceiver", newID())}

	var err error
	if r.mixer, err = NewMixer[complex64](-cfg.TuneOffsetHz, float64(cfg.InputRate)); err != nil {
		return nil, err
	}

	if r.channelPlan, r.channel, err = buildResamplerChain[complex64](cfg.InputRate, cfg.IFRate,
		cfg.ChannelBandwidth, cfg); err != nil {
		return nil, err
	}
	r.channel[0].Attach(r.mixer)

	if r.demod, err = NewFMDemodulate(cfg.Deviation / float64(cfg.IFRate)); err != nil {
		return nil, err
	}
	r.demod.Attach(r.channel[len(r.channel)-1])

	var audioIn Source[float32] = r.demod
	if cfg.DeemphasisTau > 0 {
		if r.deemphasis, err = NewFMDeemphasis(float64(cfg.IFRate), cfg.DeemphasisTau); err != nil {
			return nil, err
		}
		r.deemphasis.Attach(r.demod)
		audioIn = r.deemphasis
	}

	if r.audioPlan, r.audio, err = buildResamplerChain[float32](cfg.IFRate, cfg.AudioRate,
		cfg.AudioBandwidth, cfg); err != nil {
		return nil, err
	}
	r.audio[0].Attach(audioIn)

	r.log.WithFields(logrus.Fields{
		"channel": r.channelPlan.String(),
		"audio":   r.audioPlan.String(),
		"offset":  cfg.TuneOffsetHz,
	}).Debug("built FM receiver")
	return r, nil
}

// buildResamplerChain plans inRate → outRate and builds one resampler per
// planned stage, each attached to the previous one. Every stage kernel
// cuts off at cutoffHz or at the Nyquist frequency of the slower side of
// the stage, whichever is lower.
func buildResamplerChain[E Element](inRate, outRate int, cutoffHz float64,
	cfg FMReceiverConfig) (*pipeline.Plan, []*UpFIRDown[E], error) {
	plan, err := pipeline.BuildPlan(inRate, outRate, cfg.MaxStageFactor, cfg.FilterSemiLength)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	specs := plan.Stages()
	stages := make([]*UpFIRDown[E], 0, len(specs))
	rate := float64(inRate)
	for _, s := range specs {
		next := rate * s.Ratio()
		upsampled := rate * float64(s.Up)
		ft := min(cutoffHz, min(rate, next)/2) / upsampled
		kernel, err := SincKernel(s.Taps, ft, false, cfg.Window)
		if err != nil {
			return nil, nil, err
		}
		stage, err := NewUpFIRDown[E](ResamplerConfig{Up: s.Up, Down: s.Down, Kernel: kernel})
		if err != nil {
			return nil, nil, err
		}
		if len(stages) > 0 {
			stage.Attach(stages[len(stages)-1])
		}
		stages = append(stages, stage)
		rate = next
	}
	return plan, stages, nil
}

// Attach feeds the receiver from src.
func (r *FMReceiver) Attach(src Source[complex64]) { r.mixer.Attach(src) }

// AttachAsync subscribes the receiver to src on pool.
func (r *FMReceiver) AttachAsync(src Source[complex64], pool *Pool) { r.mixer.AttachAsync(src, pool) }

// Detach disconnects the receiver from its source.
func (r *FMReceiver) Detach() { r.mixer.Detach() }

// Output returns the audio source.
func (r *FMReceiver) Output() Source[float32] { return r.audio[len(r.audio)-1] }

// Tune moves the mixer to a new station offset in Hz.
func (r *FMReceiver) Tune(offsetHz float64) error {
	if math.Abs(offsetHz) > float64(r.cfg.InputRate)/2 {
		return fmt.Errorf("%w: tune offset %.0f Hz outside the input band", ErrInvalidConfig, offsetHz)
	}
	r.mixer.Oscillator().SetFrequency(-twoPi * offsetHz / float64(r.cfg.InputRate))
	r.cfg.TuneOffsetHz = offsetHz
	r.log.WithField("offset", offsetHz).Debug("tuned")
	return nil
}

// Stages returns the number of resampler stages before and after the
// demodulator.
func (r *FMReceiver) Stages() (channel, audio int) { return len(r.channel), len(r.audio) }

// Latency returns the filter group delay of the chain in seconds.
func (r *FMReceiver) Latency() float64 {
	return r.channelPlan.Latency()/float64(r.cfg.InputRate) + r.audioPlan.Latency()/float64(r.cfg.IFRate)
}

// Reset clears the state of every stage. The mixer keeps its tuning.
func (r *FMReceiver) Reset() {
	for _, s := range r.channel {
		s.Reset()
	}
	r.demod.Reset()
	if r.deemphasis != nil {
		r.deemphasis.Reset()
	}
	for _, s := range r.audio {
		s.Reset()
	}
}

// String describes the chain, e.g. "Mixer -> 1/5 -> FM -> 1/5".
func (r *FMReceiver) String() string {
	return fmt.Sprintf("Mixer -> %s -> FM -> %s", r.channelPlan, r.audioPlan)
}
