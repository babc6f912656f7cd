package sdr

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
)

// componentCount returns the number of float32 components of E.
func componentCount[E Element]() int {
	if isComplex[E]() {
		return 2
	}
	return 1
}

// newEngines builds one engine per sample component. Complex stages filter
// the real and imaginary parts independently with identical engines.
func newEngines[E Element, S pipeline.Stage](build func() (S, error)) ([]S, error) {
	engines := make([]S, componentCount[E]())
	for i := range engines {
		e, err := build()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		engines[i] = e
	}
	return engines, nil
}

// runEngines appends the engine outputs for in to out.
func runEngines[E Element, S pipeline.Stage](engines []S, in, out *Samples[E]) {
	out.re = engines[0].Process(out.re, in.re)
	if len(engines) > 1 {
		out.im = engines[1].Process(out.im, in.im)
	}
}

// resetEngines resets every component engine.
func resetEngines[S pipeline.Stage](engines []S) {
	for _, e := range engines {
		e.Reset()
	}
}
