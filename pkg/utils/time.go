package utils

import "math"

// IntervalClock maps simulated timestamps onto fixed-length scheduling
// intervals. Ticks fire at offset, offset+length, offset+2*length, ...
type IntervalClock struct {
	Length float64
	Offset float64
}

// NewIntervalClock creates a clock with the given interval length and tick offset
func NewIntervalClock(length, offset float64) IntervalClock {
	return IntervalClock{Length: length, Offset: offset}
}

// Slot returns the zero-based interval index containing t
func (c IntervalClock) Slot(t float64) int {
	if c.Length <= 0 || t < 0 {
		return 0
	}
	return int(t / c.Length)
}

// IntervalStart returns the start of the interval containing t
func (c IntervalClock) IntervalStart(t float64) float64 {
	return float64(c.Slot(t)) * c.Length
}

// TickTime returns the timestamp of the n-th tick
func (c IntervalClock) TickTime(n int) float64 {
	return float64(n)*c.Length + c.Offset
}

// IsBoundary reports whether t is a tick time, i.e. (t - offset) mod length == 0
func (c IntervalClock) IsBoundary(t float64) bool {
	if c.Length <= 0 {
		return false
	}
	shifted := t - c.Offset
	if shifted < -Epsilon {
		return false
	}
	rem := math.Mod(shifted, c.Length)
	if rem < 0 {
		rem += c.Length
	}
	return ApproxEqual(rem, 0, Epsilon) || ApproxEqual(rem, c.Length, Epsilon)
}
