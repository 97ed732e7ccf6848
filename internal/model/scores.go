package model

import "math"

const (
	MinScore = 0
	MaxScore = 100
)

// ClampScore pulls v into [lo, hi] and rounds to the nearest integer.
// Clamping an already clamped score returns it unchanged.
func ClampScore(v float64, lo, hi int) int {
	if math.IsNaN(v) {
		return lo
	}
	r := math.Round(v)
	if r < float64(lo) {
		return lo
	}
	if r > float64(hi) {
		return hi
	}
	return int(r)
}

// clampField clamps a numeric map entry in place; non-numbers are left for
// the schema to reject.
func clampField(m map[string]interface{}, key string, lo, hi int) {
	if f, ok := m[key].(float64); ok {
		m[key] = ClampScore(f, lo, hi)
	}
}
