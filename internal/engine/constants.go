package engine

// Group delay of a linear-phase FIR is (taps-1)/2 samples.
const latencyDivisor = 2
