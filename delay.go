package sdr

import "github.com/tphakala/go-sdr-pipeline/internal/engine"

// Delay shifts the stream right by a fixed number of samples, starting
// with zeros. Output blocks have the length of the input blocks.
type Delay[E Element] struct {
	*Transform[E, E]
	engines []*engine.DelayLine
}

// NewDelay returns a delay of n >= 0 samples.
func NewDelay[E Element](n int) (*Delay[E], error) {
	engines, err := newEngines[E](func() (*engine.DelayLine, error) { return engine.NewDelayLine(n) })
	if err != nil {
		return nil, err
	}
	d := &Delay[E]{engines: engines}
	d.Transform = NewTransform[E, E]("Delay", d.apply)
	return d, nil
}

func (d *Delay[E]) apply(in, out *Samples[E]) {
	runEngines(d.engines, in, out)
}

// Reset refills the delay with zeros.
func (d *Delay[E]) Reset() { resetEngines(d.engines) }
