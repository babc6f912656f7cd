package sdr

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeReport accumulates the durations of repeated Start/Stop intervals.
//
// A Stop without a preceding Start, or an interval that is not positive,
// counts as bad and is excluded from the statistics. Intervals longer than
// the high threshold are counted separately. Reset takes effect at the next
// Start so an interval in progress is not lost.
type TimeReport struct {
	name string
	high time.Duration
	now  func() time.Time

	mu        sync.Mutex
	started   time.Time
	running   bool
	resetNext bool
	stats     TimeStats
}

// TimeStats is a snapshot of a TimeReport.
type TimeStats struct {
	Count int           // accepted intervals
	High  int           // intervals longer than the threshold
	Bad   int           // unmatched stops and non-positive intervals
	Total time.Duration // sum of accepted intervals
	Min   time.Duration
	Max   time.Duration
}

// Mean returns the average accepted interval, zero when there is none.
func (s TimeStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// NewTimeReport returns a report named name. A positive high counts
// intervals longer than it; zero disables the count.
func NewTimeReport(name string, high time.Duration) *TimeReport {
	return &TimeReport{name: name, high: high, now: time.Now}
}

// Start marks the beginning of an interval.
func (r *TimeReport) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resetNext {
		r.stats = TimeStats{}
		r.resetNext = false
	}
	r.started = r.now()
	r.running = true
}

// Stop ends the current interval and records it.
func (r *TimeReport) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		r.stats.Bad++
		return
	}
	r.running = false

	d := r.now().Sub(r.started)
	if d <= 0 {
		r.stats.Bad++
		return
	}
	if r.high > 0 && d > r.high {
		r.stats.High++
	}
	if r.stats.Count == 0 || d < r.stats.Min {
		r.stats.Min = d
	}
	if d > r.stats.Max {
		r.stats.Max = d
	}
	r.stats.Count++
	r.stats.Total += d
}

// Reset clears the statistics at the next Start.
func (r *TimeReport) Reset() {
	r.mu.Lock()
	r.resetNext = true
	r.mu.Unlock()
}

// Stats returns a snapshot of the statistics.
func (r *TimeReport) Stats() TimeStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Name returns the report name.
func (r *TimeReport) Name() string { return r.name }

// String formats the statistics on one line.
func (r *TimeReport) String() string {
	s := r.Stats()
	if s.Count == 0 && s.Bad == 0 {
		return fmt.Sprintf("%s: %s", r.name, timeReportUnused)
	}
	return fmt.Sprintf("%s: count=%d mean=%v min=%v max=%v high=%d bad=%d",
		r.name, s.Count, s.Mean(), s.Min, s.Max, s.High, s.Bad)
}

// Log writes the statistics through the package logger at info level.
func (r *TimeReport) Log() {
	s := r.Stats()
	entry := Logger().WithField("report", r.name)
	if s.Count == 0 && s.Bad == 0 {
		entry.Info(timeReportUnused)
		return
	}
	entry.WithFields(logrus.Fields{
		"count": s.Count,
		"mean":  s.Mean(),
		"min":   s.Min,
		"max":   s.Max,
		"high":  s.High,
		"bad":   s.Bad,
	}).Info("timing")
}

// CycleTime is a sink that times the interval between successive blocks.
// The first block only starts the clock and counts as bad.
type CycleTime[E Element] struct {
	*TimeReport
}

// NewCycleTime returns a cycle timer with the given high threshold.
func NewCycleTime[E Element](name string, high time.Duration) *CycleTime[E] {
	return &CycleTime[E]{TimeReport: NewTimeReport(name, high)}
}

// Process records the time since the previous block.
func (c *CycleTime[E]) Process(_ *Samples[E]) {
	c.Stop()
	c.Start()
}
