package sdr

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a clock that advances by the given steps in turn.
func fakeClock(steps ...time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	i := 0
	return func() time.Time {
		now = now.Add(steps[i%len(steps)])
		i++
		return now
	}
}

func TestTimeReport_Statistics(t *testing.T) {
	r := NewTimeReport("stage", 15*time.Millisecond)
	// Each Start/Stop pair reads the clock twice; intervals are the odd steps.
	r.now = fakeClock(time.Second, 10*time.Millisecond, time.Second, 20*time.Millisecond,
		time.Second, 30*time.Millisecond)

	for range 3 {
		r.Start()
		r.Stop()
	}

	s := r.Stats()
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.High)
	assert.Zero(t, s.Bad)
	assert.Equal(t, 10*time.Millisecond, s.Min)
	assert.Equal(t, 30*time.Millisecond, s.Max)
	assert.Equal(t, 20*time.Millisecond, s.Mean())
	assert.Contains(t, r.String(), "count=3")
}

func TestTimeReport_BadIntervals(t *testing.T) {
	r := NewTimeReport("bad", 0)
	r.now = fakeClock(time.Second, 0)

	r.Stop()
	r.Start()
	r.Stop()

	s := r.Stats()
	assert.Equal(t, 2, s.Bad, "unmatched stop and zero interval")
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Mean())
}

func TestTimeReport_DeferredReset(t *testing.T) {
	r := NewTimeReport("reset", 0)
	r.now = fakeClock(time.Millisecond)

	r.Start()
	r.Stop()
	r.Start()
	r.Reset()
	r.Stop()
	assert.Equal(t, 2, r.Stats().Count, "reset waits for the next start")

	r.Start()
	r.Stop()
	assert.Equal(t, 1, r.Stats().Count)
}

func TestTimeReport_Unused(t *testing.T) {
	r := NewTimeReport("idle", 0)
	assert.Equal(t, "idle: unused", r.String())
	assert.Equal(t, "idle", r.Name())
}

func TestTimeReport_Log(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	SetLogger(l)
	defer SetLogger(nil)

	r := NewTimeReport("logged", 0)
	r.now = fakeClock(time.Millisecond)
	r.Start()
	r.Stop()
	r.Log()

	out := buf.String()
	assert.Contains(t, out, "report=logged")
	assert.Contains(t, out, "count=1")
}

func TestCycleTime(t *testing.T) {
	c := NewCycleTime[float32]("cycle", 0)
	c.now = fakeClock(5 * time.Millisecond)

	src := newFixedSource[float32](1000)
	src.Connect(c)
	for range 4 {
		src.publish(1)
	}

	s := c.Stats()
	assert.Equal(t, 1, s.Bad, "first block only starts the clock")
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 5*time.Millisecond, s.Mean())
}

func TestScopeData(t *testing.T) {
	_, err := NewScopeData(0, 4, 1000)
	require.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewScopeData(2, 3, 1000)
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot())

	s.Sample(1, 2)
	s.Sample(3, 4)
	s.Sample(5, 6)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, s.Snapshot())

	s.Sample(7, 8)
	assert.Equal(t, [][]float32{{7, 8}}, s.Snapshot(), "a full scope starts over")

	assert.Panics(t, func() { s.Sample(1) })

	s.Clear()
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 2, s.NumItems())
	assert.Equal(t, 3, s.NumPoints())
	assert.Equal(t, 1000.0, s.SampleFrequency())
}
