package sdr

import "github.com/tphakala/go-sdr-pipeline/internal/engine"

// MovingAverage is a length-D boxcar average stage with an O(1) update per
// sample. The window starts filled with zeros.
type MovingAverage[E Element] struct {
	*Transform[E, E]
	engines []*engine.MovingAverage
}

// NewMovingAverage returns an average over length >= 1 samples.
func NewMovingAverage[E Element](length int) (*MovingAverage[E], error) {
	engines, err := newEngines[E](func() (*engine.MovingAverage, error) { return engine.NewMovingAverage(length) })
	if err != nil {
		return nil, err
	}
	m := &MovingAverage[E]{engines: engines}
	m.Transform = NewTransform[E, E]("MovingAverage", m.apply)
	return m, nil
}

func (m *MovingAverage[E]) apply(in, out *Samples[E]) {
	runEngines(m.engines, in, out)
}

// Reset zeroes the window.
func (m *MovingAverage[E]) Reset() { resetEngines(m.engines) }

// DCRemove is a DC blocker: two cascaded length-D moving averages
// subtracted from the input delayed to match their group delay.
type DCRemove[E Element] struct {
	*Transform[E, E]
	first  []*engine.MovingAverage
	second []*engine.MovingAverage
}

// NewDCRemove returns a DC blocker with averaging length >= 1. Longer
// averages give a narrower notch and a longer settling time.
func NewDCRemove[E Element](length int) (*DCRemove[E], error) {
	build := func() (*engine.MovingAverage, error) { return engine.NewMovingAverage(length) }
	first, err := newEngines[E](build)
	if err != nil {
		return nil, err
	}
	second, err := newEngines[E](build)
	if err != nil {
		return nil, err
	}
	d := &DCRemove[E]{first: first, second: second}
	d.Transform = NewTransform[E, E]("DCRemove", d.apply)
	return d, nil
}

func (d *DCRemove[E]) apply(in, out *Samples[E]) {
	out.re = removeDC(d.first[0], d.second[0], out.re, in.re)
	if len(d.first) > 1 {
		out.im = removeDC(d.first[1], d.second[1], out.im, in.im)
	}
}

func removeDC(first, second *engine.MovingAverage, dst, src []float32) []float32 {
	for _, x := range src {
		mean := second.Step(first.Step(x))
		dst = append(dst, first.Oldest()-mean)
	}
	return dst
}

// Reset zeroes both averages.
func (d *DCRemove[E]) Reset() {
	resetEngines(d.first)
	resetEngines(d.second)
}
