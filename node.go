package sdr

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// newID returns a unique node id.
func newID() string { return xid.New().String() }

// subscription is a registered sink. A nil pool means synchronous.
type subscription[O Element] struct {
	sink Sink[O]
	pool *Pool
}

// Producer is the source half of a node: a ping-pong buffer pair, the
// subscribed sinks and the produce protocol.
//
// The owner fills Buffer and calls Produce. Produce joins the previous
// asynchronous batch, swaps the buffers, starts the asynchronous sinks and
// runs the synchronous ones inline in registration order.
type Producer[O Element] struct {
	name string
	id   string
	log  *logrus.Entry

	mu       sync.Mutex
	sinks    []subscription[O]
	dispatch []subscription[O]

	write   *Samples[O]
	read    *Samples[O]
	pending *errgroup.Group

	sinkWait    *TimeReport
	sinkProcess *TimeReport
}

// NewProducer returns a producer with empty buffers.
func NewProducer[O Element](name string) *Producer[O] {
	id := newID()
	return &Producer[O]{
		name:        name,
		id:          id,
		log:         nodeLogger(name, id),
		write:       NewSamples[O](0),
		read:        NewSamples[O](0),
		sinkWait:    NewTimeReport(name+" sink wait", 0),
		sinkProcess: NewTimeReport(name+" sink process", 0),
	}
}

// Name returns the node name.
func (p *Producer[O]) Name() string { return p.name }

// ID returns the unique node id.
func (p *Producer[O]) ID() string { return p.id }

// Connect subscribes a synchronous sink.
func (p *Producer[O]) Connect(sink Sink[O]) {
	p.subscribe(sink, nil)
}

// ConnectAsync subscribes a sink that runs on pool.
func (p *Producer[O]) ConnectAsync(sink Sink[O], pool *Pool) {
	if pool == nil {
		panic(fmt.Sprintf("sdr: %s: async sink needs a pool", p.name))
	}
	p.subscribe(sink, pool)
}

func (p *Producer[O]) subscribe(sink Sink[O], pool *Pool) {
	p.mu.Lock()
	p.sinks = append(p.sinks, subscription[O]{sink: sink, pool: pool})
	p.mu.Unlock()
	p.log.WithFields(logrus.Fields{"sink": fmt.Sprintf("%T", sink), "async": pool != nil}).Debug("connected sink")
}

// Disconnect removes every subscription of sink.
func (p *Producer[O]) Disconnect(sink Sink[O]) {
	p.mu.Lock()
	before := len(p.sinks)
	kept := p.sinks[:0]
	for _, s := range p.sinks {
		if s.sink != sink {
			kept = append(kept, s)
		}
	}
	clear(p.sinks[len(kept):])
	p.sinks = kept
	removed := before - len(kept)
	p.mu.Unlock()
	p.log.WithFields(logrus.Fields{"sink": fmt.Sprintf("%T", sink), "removed": removed}).Debug("disconnected sink")
}

// Sinks returns the number of subscribed sinks.
func (p *Producer[O]) Sinks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sinks)
}

// Buffer returns the write buffer to fill before Produce.
func (p *Producer[O]) Buffer() *Samples[O] { return p.write }

// Output returns the last published block.
func (p *Producer[O]) Output() *Samples[O] { return p.read }

// Produce publishes the write buffer.
//
// When clear is set the outgoing read buffer is emptied before it becomes
// the next write buffer; otherwise it keeps its samples and new ones are
// appended after them.
func (p *Producer[O]) Produce(clear bool) {
	p.Wait()

	if clear {
		p.read.Clear()
	}
	p.write, p.read = p.read, p.write
	block := p.read

	p.mu.Lock()
	p.dispatch = append(p.dispatch[:0], p.sinks...)
	p.mu.Unlock()

	for _, s := range p.dispatch {
		if s.pool == nil {
			continue
		}
		if p.pending == nil {
			p.pending = new(errgroup.Group)
		}
		sink, pool := s.sink, s.pool
		p.pending.Go(func() error {
			return pool.run(func() { sink.Process(block) })
		})
	}

	p.sinkProcess.Start()
	for _, s := range p.dispatch {
		if s.pool == nil {
			s.sink.Process(block)
		}
	}
	p.sinkProcess.Stop()
}

// Wait joins the outstanding asynchronous batch, if any. Produce calls it
// before every swap; owners call it once more at shutdown.
func (p *Producer[O]) Wait() {
	if p.pending == nil {
		return
	}
	p.sinkWait.Start()
	err := p.pending.Wait()
	p.sinkWait.Stop()
	p.pending = nil
	if err != nil {
		p.log.WithError(err).Warn("async sink dispatch failed")
	}
}

// SinkWaitTime reports the time spent joining asynchronous batches.
func (p *Producer[O]) SinkWaitTime() *TimeReport { return p.sinkWait }

// SinkProcessTime reports the time spent in synchronous sinks.
func (p *Producer[O]) SinkProcessTime() *TimeReport { return p.sinkProcess }

// Consumer is the sink half of a node: its upstream source and the sink
// identity it registers there.
type Consumer[I Element] struct {
	self     Sink[I]
	clog     *logrus.Entry
	mu       sync.Mutex
	upstream Source[I]
}

// NewConsumer returns a consumer that registers self with its upstream.
func NewConsumer[I Element](self Sink[I], name string) *Consumer[I] {
	return &Consumer[I]{self: self, clog: nodeLogger(name, newID())}
}

func (c *Consumer[I]) init(self Sink[I], log *logrus.Entry) {
	c.self = self
	c.clog = log
}

// Attach subscribes the node to src synchronously, detaching it from any
// previous upstream first.
func (c *Consumer[I]) Attach(src Source[I]) {
	c.attach(src, nil)
}

// AttachAsync subscribes the node to src on pool, detaching it from any
// previous upstream first.
func (c *Consumer[I]) AttachAsync(src Source[I], pool *Pool) {
	c.attach(src, pool)
}

func (c *Consumer[I]) attach(src Source[I], pool *Pool) {
	c.Detach()
	if src == nil {
		return
	}
	c.mu.Lock()
	c.upstream = src
	c.mu.Unlock()
	if pool != nil {
		src.ConnectAsync(c.self, pool)
	} else {
		src.Connect(c.self)
	}
	c.clog.WithField("source", fmt.Sprintf("%T", src)).Debug("attached")
}

// Detach unsubscribes the node from its upstream.
func (c *Consumer[I]) Detach() {
	c.mu.Lock()
	src := c.upstream
	c.upstream = nil
	c.mu.Unlock()
	if src == nil {
		return
	}
	src.Disconnect(c.self)
	c.clog.WithField("source", fmt.Sprintf("%T", src)).Debug("detached")
}

// Upstream returns the attached source, nil when detached.
func (c *Consumer[I]) Upstream() Source[I] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upstream
}

// SampleFrequency returns the upstream rate, NaN when detached.
func (c *Consumer[I]) SampleFrequency() float64 {
	src := c.Upstream()
	if src == nil {
		return math.NaN()
	}
	return src.SampleFrequency()
}

// TransformFunc computes an output block from an input block. out is
// empty on entry.
type TransformFunc[I, O Element] func(in *Samples[I], out *Samples[O])

// Transform is a node that is both a sink of its upstream and a source to
// its downstream.
//
// Process runs the transform function into the write buffer and produces
// it. Concrete stages embed *Transform and supply their function; an ad-hoc
// stage can be built directly with NewTransform.
type Transform[I, O Element] struct {
	*Producer[O]
	Consumer[I]

	fn   TransformFunc[I, O]
	rate float64
}

// NewTransform returns a transform running fn at an unchanged rate.
func NewTransform[I, O Element](name string, fn TransformFunc[I, O]) *Transform[I, O] {
	t := &Transform[I, O]{Producer: NewProducer[O](name), fn: fn, rate: 1}
	t.Consumer.init(t, t.Producer.log)
	return t
}

// Process transforms block and publishes the result.
func (t *Transform[I, O]) Process(block *Samples[I]) {
	if t.fn == nil {
		panic(fmt.Errorf("%w: %s", ErrNoTransform, t.name))
	}
	t.fn(block, t.write)
	t.Produce(true)
}

// SampleFrequency returns the output rate: the upstream rate scaled by the
// stage's rate factor, NaN when detached.
func (t *Transform[I, O]) SampleFrequency() float64 {
	return t.Consumer.SampleFrequency() * t.rate
}

// setRate sets the output to input rate factor.
func (t *Transform[I, O]) setRate(rate float64) { t.rate = rate }

// rename changes the node name used in logs.
func (t *Transform[I, O]) rename(name string) {
	t.Producer.name = name
	t.Producer.log = nodeLogger(name, t.id)
	t.Consumer.clog = t.Producer.log
}
