// Command sdr-wav runs the SDR pipeline over WAV files.
//
// Complex baseband is stored as stereo PCM with I on the left channel and
// Q on the right. Audio is mono.
//
// Usage:
//
//	sdr-wav -mode fm-mod -deviation 5000 audio.wav iq.wav
//	sdr-wav -mode fm-demod -deviation 5000 iq.wav audio.wav
//	sdr-wav -mode am-mod -carrier 2000 audio.wav iq.wav
//	sdr-wav -mode am-demod iq.wav audio.wav
//	sdr-wav -mode receive -offset 100000 -rate 48 iq.wav audio.wav
//	sdr-wav -mode spectrum -fft 2048 iq.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	sdr "github.com/tphakala/go-sdr-pipeline"
)

const (
	// Frames per block read from the input file.
	bufferSize = 4096

	// Blocks queued between the file reader and the pipeline.
	blockQueue = 4

	// Channel count constants
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	kHzToHz          = 1000
	maxInt16         = 32767.0
	maxInt24         = 8388607.0
	maxInt32         = 2147483647.0
	progressInterval = 10 // Log progress every N%
	percentScale     = 100
	pcmFormat        = 1

	// CLI defaults
	defaultDeviation = 5000.0
	defaultCarrier   = 0.0
	defaultAMFactor  = 0.5
	defaultAMLevel   = 0.5
	defaultRateKHz   = 48.0
	defaultPeaks     = 5
)

// Modes
const (
	modeFMMod    = "fm-mod"
	modeFMDemod  = "fm-demod"
	modeAMMod    = "am-mod"
	modeAMDemod  = "am-demod"
	modeReceive  = "receive"
	modeSpectrum = "spectrum"
)

var errUsage = errors.New("insufficient arguments")

// options holds the parsed command line.
type options struct {
	mode      string
	input     string
	output    string
	deviation float64
	carrier   float64
	factor    float64
	offset    float64
	rateHz    int
	fftSize   int
	peaks     int
	agc       bool
	parallel  bool
	verbose   bool
}

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	mode := flag.String("mode", modeFMDemod, "Processing mode: fm-mod, fm-demod, am-mod, am-demod, receive, spectrum")
	deviation := flag.Float64("deviation", defaultDeviation, "FM peak deviation in Hz")
	carrier := flag.Float64("carrier", defaultCarrier, "AM carrier frequency in Hz")
	factor := flag.Float64("factor", defaultAMFactor, "AM modulation depth")
	offset := flag.Float64("offset", 0, "Station offset from the input centre in Hz (receive)")
	rateKHz := flag.Float64("rate", defaultRateKHz, "Audio output rate in kHz (receive)")
	fftSize := flag.Int("fft", sdr.DefaultFFTSize, "FFT size (spectrum)")
	peaks := flag.Int("peaks", defaultPeaks, "Number of spectrum peaks to report")
	agc := flag.Bool("agc", false, "Normalize the output level with a block AGC")
	parallel := flag.Bool("parallel", true, "Write the output on a worker goroutine")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	minArgs := 2
	if *mode == modeSpectrum {
		minArgs = 1
	}
	if len(args) < minArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav [output.wav]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -mode fm-mod -deviation 5000 voice.wav iq.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode receive -offset 100000 capture.wav audio.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode spectrum capture.wav\n", os.Args[0])
		return errUsage
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
		sdr.Logger().SetLevel(logrus.DebugLevel)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := options{
		mode:      *mode,
		input:     args[0],
		deviation: *deviation,
		carrier:   *carrier,
		factor:    *factor,
		offset:    *offset,
		rateHz:    int(*rateKHz * kHzToHz),
		fftSize:   *fftSize,
		peaks:     *peaks,
		agc:       *agc,
		parallel:  *parallel,
		verbose:   *verbose,
	}
	if len(args) > 1 {
		opts.output = args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := runMode(ctx, &opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if opts.output == "" {
		return nil
	}
	fmt.Printf("Processed %s -> %s (%s)\n", filepath.Base(opts.input), filepath.Base(opts.output), opts.mode)
	fmt.Printf("  %d Hz -> %d Hz (%d -> %d channels, %d-bit)\n",
		stats.inputRate, stats.outputRate, stats.inputChannels, stats.outputChannels, stats.bitDepth)
	fmt.Printf("  %d frames -> %d frames\n", stats.inputFrames, stats.outputFrames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.inputRate)/elapsed.Seconds())
	return nil
}

// runStats summarizes one run.
type runStats struct {
	inputRate      int
	outputRate     int
	inputChannels  int
	outputChannels int
	bitDepth       int
	inputFrames    int64
	outputFrames   int64
}

// runMode opens the input and runs the pipeline selected by opts.mode.
func runMode(ctx context.Context, opts *options) (*runStats, error) {
	input, err := openWAVInput(opts.input, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	switch opts.mode {
	case modeFMMod, modeAMMod:
		if input.channels != monoChannels {
			return nil, fmt.Errorf("%s needs mono audio input, got %d channels", opts.mode, input.channels)
		}
		return runModulator(ctx, input, opts)
	case modeFMDemod, modeAMDemod, modeReceive:
		if input.channels != stereoChannels {
			return nil, fmt.Errorf("%s needs stereo I/Q input, got %d channels", opts.mode, input.channels)
		}
		return runDemodulator(ctx, input, opts)
	case modeSpectrum:
		if input.channels != stereoChannels {
			return nil, fmt.Errorf("%s needs stereo I/Q input, got %d channels", opts.mode, input.channels)
		}
		return runSpectrum(ctx, input, opts)
	default:
		return nil, fmt.Errorf("unknown mode: %q", opts.mode)
	}
}

// runModulator turns mono audio into I/Q at the same rate.
func runModulator(ctx context.Context, input *wavInputInfo, opts *options) (*runStats, error) {
	var mod interface {
		head[float32]
		sdr.Source[complex64]
	}
	switch opts.mode {
	case modeFMMod:
		m, err := sdr.NewFMModulate(opts.deviation / float64(input.rate))
		if err != nil {
			return nil, err
		}
		mod = m
	default:
		m, err := sdr.NewAMModulate(opts.carrier, float64(input.rate), defaultAMLevel, opts.factor, false)
		if err != nil {
			return nil, err
		}
		mod = m
	}

	return process[float32, complex64](ctx, input, opts, decodeReal, (*wavOutputWriter).writeComplex, mod, mod)
}

// runDemodulator turns I/Q into mono audio.
func runDemodulator(ctx context.Context, input *wavInputInfo, opts *options) (*runStats, error) {
	var (
		first  head[complex64]
		output sdr.Source[float32]
	)
	switch opts.mode {
	case modeFMDemod:
		d, err := sdr.NewFMDemodulate(opts.deviation / float64(input.rate))
		if err != nil {
			return nil, err
		}
		first, output = d, d
	case modeAMDemod:
		d, err := sdr.NewAMEnvelopeDemodulate(opts.factor)
		if err != nil {
			return nil, err
		}
		first, output = d, d
	default:
		r, err := sdr.NewFMReceiver(receiverConfig(input.rate, opts))
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"chain":   r.String(),
			"latency": r.Latency(),
		}).Info("receiver")
		first, output = r, r.Output()
	}

	if opts.agc {
		a := sdr.NewAutoGainControl[float32]()
		a.Attach(output)
		output = a
	}
	return process(ctx, input, opts, decodeComplex, (*wavOutputWriter).writeReal, first, output)
}

// receiverConfig fits the broadcast defaults to the input rate.
func receiverConfig(inputRate int, opts *options) sdr.FMReceiverConfig {
	cfg := sdr.DefaultFMReceiverConfig(inputRate, opts.offset)
	cfg.IFRate = min(cfg.IFRate, inputRate)
	cfg.AudioRate = opts.rateHz
	cfg.ChannelBandwidth = min(cfg.ChannelBandwidth, float64(cfg.IFRate)/2)
	cfg.Deviation = min(cfg.Deviation, float64(cfg.IFRate)/2)
	cfg.AudioBandwidth = min(cfg.AudioBandwidth, float64(min(cfg.IFRate, cfg.AudioRate))/2)
	return cfg
}

// runSpectrum averages the spectrum of the whole input and logs its
// strongest bins.
func runSpectrum(ctx context.Context, input *wavInputInfo, opts *options) (*runStats, error) {
	cfg := sdr.DefaultSpectrumConfig()
	cfg.Size = opts.fftSize
	spec, err := sdr.NewSpectrum(cfg)
	if err != nil {
		return nil, err
	}

	stats, err := process[complex64, float32](ctx, input, opts, decodeComplex, nil, spec, nil)
	if err != nil {
		return nil, err
	}

	db := spec.ReadDB()
	freqs := spec.Frequencies()
	for _, i := range strongestBins(db, opts.peaks) {
		logrus.WithFields(logrus.Fields{
			"hz": freqs[i],
			"db": db[i],
		}).Info("peak")
	}
	return stats, nil
}

// strongestBins returns the indices of the n largest values, largest
// first.
func strongestBins(db []float32, n int) []int {
	n = min(n, len(db))
	out := make([]int, 0, n)
	used := make([]bool, len(db))
	for range n {
		best := -1
		for i, v := range db {
			if !used[i] && (best < 0 || v > db[best]) {
				best = i
			}
		}
		used[best] = true
		out = append(out, best)
	}
	return out
}
