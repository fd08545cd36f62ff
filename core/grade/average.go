package grade

import (
	"math"
	"strconv"
)

// NotAvailable is the current grade of a student who has not been graded yet.
const NotAvailable = "N/A"

// Average returns the mean of scores rounded to one decimal, eg. "83.7", or NotAvailable.
func Average(scores []float64) string {
	if len(scores) == 0 {
		return NotAvailable
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := math.Round(sum/float64(len(scores))*10) / 10
	return strconv.FormatFloat(mean, 'f', 1, 64)
}

// Scores extracts the scores of grades.
func Scores(grades []Detail) []float64 {
	scores := make([]float64, 0, len(grades))
	for _, g := range grades {
		scores = append(scores, g.Score)
	}
	return scores
}
