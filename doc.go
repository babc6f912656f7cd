// Package sdr provides a streaming DSP pipeline for software-defined radio
// in pure Go.
//
// Sources push blocks of real (float32) or complex (complex64) samples
// through transforms to sinks. Complex blocks are stored in split layout,
// with real and imaginary parts in separate contiguous slices, so the FIR,
// polyphase and dot-product kernels run on plain float32 vectors via
// github.com/tphakala/simd.
//
// # Features
//
//   - Producer/consumer nodes with ping-pong buffers and sync or async fan-out
//   - FIR and IIR filters with exact continuity across arbitrary block sizes
//   - Rational polyphase resampling with closed-form output counts
//   - Table and direct oscillators, mixer PLL and Costas carrier recovery
//   - AGC, DC removal, FM and AM modulation and demodulation
//   - Windowed-sinc, Kaiser, notch and peak kernel design
//   - Block-averaged and smoothed FFT spectrum estimation
//
// # Quick Start
//
// Build a chain by attaching stages to their upstream source:
//
//	osc, err := sdr.NewOscillator[complex64](1000, 48000, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lp, err := sdr.LowPass(63, 4000, 48000, sdr.Hann)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fir, err := sdr.NewFIRFilter[complex64](lp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fir.Attach(osc)
//
//	spec, err := sdr.NewSpectrum(sdr.DefaultSpectrumConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	spec.Attach(fir)
//
//	osc.Generate(4096)
//	db := spec.ReadDB()
//
// # Dispatch
//
// [Producer.Produce] swaps the write and read buffers and hands the frozen
// read buffer to every subscribed sink. Synchronous sinks run inline in
// registration order. Asynchronous sinks run on the [Pool] passed to
// [Producer.ConnectAsync]; the producer joins that batch before its next
// swap, so a sink never sees its block overwritten and a slow sink applies
// backpressure to the whole upstream chain.
//
// # Thread Safety
//
// A node is driven by one goroutine at a time: whoever calls Process or
// Produce. Sink registration and the snapshot readers ([Spectrum.ReadDB],
// [SmoothedSpectrum.ReadDB], [ScopeData.Snapshot], [Collector.Samples]) are
// safe to call from other goroutines.
//
// # Logging
//
// The package logs through logrus. [SetLogger] replaces the package logger;
// setting SDR_DEBUG=true in the environment enables debug output from the
// default one.
package sdr
