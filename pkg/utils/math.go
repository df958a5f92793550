package utils

import (
	"math"
)

// Epsilon is the tolerance used when comparing simulated timestamps
const Epsilon = 1e-9

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ApproxEqual reports whether a and b differ by less than tol
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}
