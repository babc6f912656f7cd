package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	sdr "github.com/tphakala/go-sdr-pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
	"golang.org/x/sync/errgroup"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if getMaxValue(bitDepth) == 0 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported bit depth %d: %s", bitDepth, path)
	}

	if verbose {
		logrus.WithFields(logrus.Fields{
			"rate":     format.SampleRate,
			"channels": format.NumChannels,
			"bits":     bitDepth,
		}).Debug("input format")
	}

	// Get total duration for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(format.SampleRate)),
		format:      format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// getMaxValue returns the full scale of a PCM bit depth, or zero when the
// depth is unsupported.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return 0
	}
}

// channelsFor returns the WAV channel count that stores E.
func channelsFor[E sdr.Element]() int {
	var zero E
	if _, ok := any(zero).(complex64); ok {
		return stereoChannels
	}
	return monoChannels
}

// decodeReal scales mono PCM values to a real block.
func decodeReal(data []int, scale float32) *sdr.Samples[float32] {
	values := make([]float32, len(data))
	for i, v := range data {
		values[i] = float32(v) * scale
	}
	return sdr.RealSamples(values)
}

// decodeComplex scales interleaved I/Q PCM values to a complex block.
func decodeComplex(data []int, scale float32) *sdr.Samples[complex64] {
	n := len(data) / stereoChannels
	re := make([]float32, n)
	im := make([]float32, n)
	for i := range n {
		re[i] = float32(data[2*i]) * scale
		im[i] = float32(data[2*i+1]) * scale
	}
	return sdr.ComplexSamples(re, im)
}

// wavOutputWriter encodes blocks to a PCM WAV file.
type wavOutputWriter struct {
	file        *os.File
	encoder     *wav.Encoder
	buf         *audio.IntBuffer
	maxVal      float32
	interleaved []float32
	frames      int64
}

// createWAVOutput creates the output file and its encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	maxVal := getMaxValue(bitDepth)
	if maxVal == 0 {
		return nil, fmt.Errorf("unsupported output bit depth: %d", bitDepth)
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
		maxVal: float32(maxVal),
	}, nil
}

// writeReal writes a real block as mono frames.
func (w *wavOutputWriter) writeReal(block *sdr.Samples[float32]) error {
	w.frames += int64(block.Len())
	return w.writeInterleaved(block.Real())
}

// writeComplex writes a complex block as stereo I/Q frames.
func (w *wavOutputWriter) writeComplex(block *sdr.Samples[complex64]) error {
	n := block.Len()
	if cap(w.interleaved) < stereoChannels*n {
		w.interleaved = make([]float32, stereoChannels*n)
	}
	w.interleaved = w.interleaved[:stereoChannels*n]
	simdops.Float32Ops().Interleave2(w.interleaved, block.Real(), block.Imag())
	w.frames += int64(n)
	return w.writeInterleaved(w.interleaved)
}

// writeInterleaved clips values to full scale and encodes them.
func (w *wavOutputWriter) writeInterleaved(values []float32) error {
	if len(values) == 0 {
		return nil
	}
	if cap(w.buf.Data) < len(values) {
		w.buf.Data = make([]int, len(values))
	}
	w.buf.Data = w.buf.Data[:len(values)]
	for i, v := range values {
		w.buf.Data[i] = int(math.Round(float64(max(-1, min(1, v)) * w.maxVal)))
	}
	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// Frames returns the number of frames written.
func (w *wavOutputWriter) Frames() int64 { return w.frames }

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		logrus.Debugf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// head is the first node of a chain.
type head[I sdr.Element] interface {
	Attach(src sdr.Source[I])
	AttachAsync(src sdr.Source[I], pool *sdr.Pool)
}

// process streams the input through the chain starting at first and, when
// output and write are set, encodes output to opts.output.
//
// The file is decoded on its own goroutine and handed to a ChannelSource.
// With opts.parallel the chain runs on a pool worker, so decoding, DSP and
// encoding overlap.
func process[I, O sdr.Element](
	ctx context.Context,
	input *wavInputInfo,
	opts *options,
	decode func(data []int, scale float32) *sdr.Samples[I],
	write func(w *wavOutputWriter, block *sdr.Samples[O]) error,
	first head[I],
	output sdr.Source[O],
) (stats *runStats, err error) {
	blocks := make(chan *sdr.Samples[I], blockQueue)
	src, err := sdr.NewChannelSource(blocks, float64(input.rate))
	if err != nil {
		return nil, err
	}

	if opts.parallel {
		pool, perr := sdr.NewPool(runtime.GOMAXPROCS(0))
		if perr != nil {
			return nil, perr
		}
		defer pool.Close()
		first.AttachAsync(src, pool)
	} else {
		first.Attach(src)
	}

	stats = &runStats{
		inputRate:     input.rate,
		inputChannels: input.channels,
		bitDepth:      input.bitDepth,
	}

	var (
		out      *wavOutputWriter
		writeErr error
	)
	if output != nil && write != nil && opts.output != "" {
		stats.outputRate = int(math.Round(output.SampleFrequency()))
		stats.outputChannels = channelsFor[O]()
		out, err = createWAVOutput(opts.output, stats.outputRate, input.bitDepth, stats.outputChannels)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		sink := sdr.NewFuncSink(func(block *sdr.Samples[O]) {
			if writeErr == nil {
				writeErr = write(out, block)
			}
		})
		output.Connect(sink)
		defer output.Disconnect(sink)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(blocks)
		n, err := readBlocks(gctx, input, blocks, decode, newProgressTracker(input.totalFrames, opts.verbose))
		stats.inputFrames = n
		return err
	})
	g.Go(func() error {
		return src.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if writeErr != nil {
		return nil, writeErr
	}
	if out != nil {
		stats.outputFrames = out.Frames()
	}
	return stats, nil
}

// readBlocks decodes the input into blocks of at most bufferSize frames
// and sends them on blocks. It returns the number of frames read.
func readBlocks[I sdr.Element](
	ctx context.Context,
	input *wavInputInfo,
	blocks chan<- *sdr.Samples[I],
	decode func(data []int, scale float32) *sdr.Samples[I],
	progress *progressTracker,
) (int64, error) {
	buf := &audio.IntBuffer{
		Format:         input.format,
		Data:           make([]int, bufferSize*input.channels),
		SourceBitDepth: input.bitDepth,
	}
	scale := float32(1 / getMaxValue(input.bitDepth))

	var frames int64
	for {
		// PCMBuffer counts interleaved values, not frames.
		n, err := input.decoder.PCMBuffer(buf)
		if err != nil {
			return frames, fmt.Errorf("failed to read samples: %w", err)
		}
		if n == 0 {
			return frames, nil
		}

		block := decode(buf.Data[:n], scale)
		frames += int64(n / input.channels)
		progress.reportIfNeeded(frames)

		select {
		case blocks <- block:
		case <-ctx.Done():
			return frames, ctx.Err()
		}
	}
}
