package search

import (
	"math"
	"time"
)

// recencyWeight returns the stepwise recency weight keyed on the age of
// lastAccessed, per spec.md §4.15's table.
func recencyWeight(age time.Duration) float64 {
	switch {
	case age < 24*time.Hour:
		return 8.0
	case age < 4*24*time.Hour:
		return 6.0
	case age < 14*24*time.Hour:
		return 4.0
	case age < 31*24*time.Hour:
		return 2.0
	case age < 90*24*time.Hour:
		return 1.0
	default:
		return 0.5
	}
}

// Frecency combines accessCount and the recency of lastAccessed into a
// single score: sqrt(max(accessCount, 1) * weight).
func Frecency(accessCount int, lastAccessed, now time.Time) float64 {
	n := accessCount
	if n < 1 {
		n = 1
	}
	weight := recencyWeight(now.Sub(lastAccessed))
	return math.Sqrt(float64(n) * weight)
}
