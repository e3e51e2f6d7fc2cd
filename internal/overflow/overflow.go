// Package overflow provides checked int64 arithmetic for epoch second
// math, where wrapping around would silently corrupt timestamps.
package overflow

import "math"

// Add returns a+b and reports whether the sum stayed in int64 range.
func Add(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// Sub returns a-b and reports whether the difference stayed in int64 range.
func Sub(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

// Mul returns a*b and reports whether the product stayed in int64 range.
func Mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}
