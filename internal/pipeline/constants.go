package pipeline

// Buffer sizing
const (
	bufferGrowthFactor   = 2 // Factor for FIFO growth
	defaultStageCapacity = 4 // Initial capacity for the plan's stage slice
)

// Decimation planning
const (
	// DefaultMaxStageFactor bounds the decimation factor of a single
	// pure-decimation stage.
	DefaultMaxStageFactor = 8

	// DefaultSemiLength is the filter semi-length used to size stage taps.
	DefaultSemiLength = 12

	minStageFactor = 2
	tapsPerSide    = 2
	latencyDivisor = 2.0
)
