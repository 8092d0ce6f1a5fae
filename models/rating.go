package models

import "math"

// AverageRating computes the displayed average from a running rating sum and
// a submission counter, rounded to one decimal. A zero counter yields 0.
func AverageRating(rating float64, totalRatings int) float64 {
	if totalRatings == 0 {
		return 0
	}
	return math.Round(rating/float64(totalRatings)*10) / 10
}
