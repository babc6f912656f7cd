package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_KeepsLatest(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		writes   [][]float32
		expected []float32
	}{
		{"Partial", 4, [][]float32{{1, 2}}, []float32{1, 2}},
		{"ExactlyFull", 4, [][]float32{{1, 2}, {3, 4}}, []float32{1, 2, 3, 4}},
		{"Wraps", 4, [][]float32{{1, 2, 3}, {4, 5, 6}}, []float32{3, 4, 5, 6}},
		{"OversizedWrite", 3, [][]float32{{1}, {2, 3, 4, 5, 6}}, []float32{4, 5, 6}},
		{"ManySmallWrites", 3, [][]float32{{1}, {2}, {3}, {4}, {5}}, []float32{3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRingBuffer(tt.capacity)
			for _, w := range tt.writes {
				rb.Write(w)
			}
			got := make([]float32, tt.capacity)
			n := rb.Snapshot(got)
			assert.Equal(t, tt.expected, got[:n])
			assert.Equal(t, len(tt.expected), rb.Len())
		})
	}
}

func TestRingBuffer_ClearAndCapacity(t *testing.T) {
	rb := NewRingBuffer(0)
	assert.Equal(t, 1, rb.Capacity())

	rb = NewRingBuffer(4)
	rb.Write([]float32{1, 2, 3, 4})
	assert.True(t, rb.Full())

	rb.Clear()
	assert.Equal(t, 0, rb.Len())
	assert.False(t, rb.Full())
	assert.Equal(t, 0, rb.Snapshot(make([]float32, 4)))
}

func TestFIFOBuffer_Order(t *testing.T) {
	f := NewFIFOBuffer(3)
	f.Write([]float32{1, 2, 3})
	f.Write([]float32{4, 5, 6, 7, 8}) // forces growth

	require.Equal(t, 8, f.Len())
	dst := make([]float32, 5)
	n := f.ReadInto(dst)
	assert.Equal(t, 5, n)
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, dst)

	f.Write([]float32{9})
	dst = make([]float32, 10)
	n = f.ReadInto(dst)
	assert.Equal(t, []float32{6, 7, 8, 9}, dst[:n])
	assert.Equal(t, 0, f.Len())
}

func TestFIFOBuffer_Clear(t *testing.T) {
	f := NewFIFOBuffer(4)
	f.Write([]float32{1, 2})
	f.Clear()
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, f.ReadInto(make([]float32, 2)))
}
