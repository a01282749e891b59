package service

import (
	"sort"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// percentages extracts normalized percentage scores, skipping malformed
// records (zero question count) entirely.
func percentages(scores []models.Score) []float64 {
	values := make([]float64, 0, len(scores))
	for _, score := range scores {
		if value, ok := score.Percentage(); ok {
			values = append(values, value)
		}
	}

	return values
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	total := 0.0
	for _, value := range values {
		total += value
	}

	return total / float64(len(values))
}

// median returns the middle element for odd counts and the average of the two
// middle elements for even counts. Returns 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// mode returns the most frequent value. Ties break toward the smallest value
// so the result is deterministic for identical input. Returns 0 for an empty
// slice.
func mode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	counts := make(map[float64]int, len(values))
	for _, value := range values {
		counts[value]++
	}

	best := values[0]
	bestCount := 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}

	return best
}

// maxOf returns the largest value, or 0 for an empty slice.
func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	best := values[0]
	for _, value := range values[1:] {
		if value > best {
			best = value
		}
	}

	return best
}
