package object

import "math"

// ScoreTracker accumulates the session score.
type ScoreTracker struct {
	total     int
	listeners []func(total int)
}

// NewScoreTracker creates a tracker at zero.
func NewScoreTracker() *ScoreTracker {
	return &ScoreTracker{}
}

// Add rounds amount to the nearest integer and adds it to the total.
// Negative, NaN and infinite amounts add nothing. The total saturates at
// math.MaxInt. It returns the points added.
func (s *ScoreTracker) Add(amount float64) int {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	points := math.MaxInt
	// float64(math.MaxInt) rounds up to 2^63, which does not fit in an int
	if rounded := math.Round(amount); rounded < float64(math.MaxInt) {
		points = int(rounded)
	}
	points = min(points, math.MaxInt-s.total)
	if points == 0 {
		return 0
	}
	s.total += points
	for _, fn := range s.listeners {
		fn(s.total)
	}
	return points
}

// Total returns the running total.
func (s *ScoreTracker) Total() int {
	return s.total
}

// OnChange registers fn to receive the new total after every change.
func (s *ScoreTracker) OnChange(fn func(total int)) {
	s.listeners = append(s.listeners, fn)
}
