package pipeline

// RingBuffer keeps the latest capacity samples of a stream.
// Writing past capacity overwrites the oldest samples.
// It is not safe for concurrent use; owners guard it with their own lock.
type RingBuffer struct {
	data     []float32
	writePos int
	size     int
}

// NewRingBuffer creates a history buffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{data: make([]float32, capacity)}
}

// Write appends samples, discarding the oldest once the buffer is full.
func (b *RingBuffer) Write(samples []float32) {
	capacity := len(b.data)
	if len(samples) >= capacity {
		// Only the newest capacity samples survive.
		copy(b.data, samples[len(samples)-capacity:])
		b.writePos = 0
		b.size = capacity
		return
	}
	for len(samples) > 0 {
		n := copy(b.data[b.writePos:], samples)
		samples = samples[n:]
		b.writePos = (b.writePos + n) % capacity
		b.size = min(b.size+n, capacity)
	}
}

// Snapshot copies the held samples, oldest first, into dst and returns the
// number copied.
func (b *RingBuffer) Snapshot(dst []float32) int {
	n := min(len(dst), b.size)
	start := (b.writePos - b.size + len(b.data)) % len(b.data)
	for i := range n {
		dst[i] = b.data[(start+i)%len(b.data)]
	}
	return n
}

// Len returns the number of samples held.
func (b *RingBuffer) Len() int { return b.size }

// Capacity returns the buffer capacity.
func (b *RingBuffer) Capacity() int { return len(b.data) }

// Full reports whether the buffer holds capacity samples.
func (b *RingBuffer) Full() bool { return b.size == len(b.data) }

// Clear removes all samples from the buffer.
func (b *RingBuffer) Clear() {
	b.writePos = 0
	b.size = 0
}

// FIFOBuffer is a growable first-in first-out sample queue.
// It avoids the overhead of modulo operations by using power-of-2 sizes.
// It is not safe for concurrent use.
type FIFOBuffer struct {
	data     []float32
	mask     int // Capacity - 1 (for bitwise AND instead of modulo)
	size     int
	readPos  uint32
	writePos uint32
}

// NewFIFOBuffer creates a new FIFO buffer.
// Capacity is rounded up to the nearest power of 2.
func NewFIFOBuffer(capacity int) *FIFOBuffer {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}
	return &FIFOBuffer{
		data: make([]float32, cap2),
		mask: cap2 - 1,
	}
}

// Write adds samples to the back of the queue, growing it when full.
func (f *FIFOBuffer) Write(samples []float32) {
	for _, sample := range samples {
		if f.size >= len(f.data) {
			f.grow()
		}
		f.data[f.writePos&uint32(f.mask)] = sample
		f.writePos++
		f.size++
	}
}

// ReadInto pops up to len(dst) samples from the front of the queue into dst
// and returns the number read.
func (f *FIFOBuffer) ReadInto(dst []float32) int {
	n := min(len(dst), f.size)
	for i := range n {
		dst[i] = f.data[f.readPos&uint32(f.mask)]
		f.readPos++
	}
	f.size -= n
	return n
}

// Len returns the number of queued samples.
func (f *FIFOBuffer) Len() int { return f.size }

// Clear empties the queue, keeping its capacity.
func (f *FIFOBuffer) Clear() {
	f.size = 0
	f.readPos = 0
	f.writePos = 0
}

// grow doubles the FIFO buffer capacity.
func (f *FIFOBuffer) grow() {
	newCap := len(f.data) * bufferGrowthFactor
	newData := make([]float32, newCap)

	for i := 0; i < f.size; i++ {
		newData[i] = f.data[(f.readPos+uint32(i))&uint32(f.mask)]
	}

	f.data = newData
	f.mask = newCap - 1
	f.readPos = 0
	f.writePos = uint32(f.size)
}
