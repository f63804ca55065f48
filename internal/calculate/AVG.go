package calculate

import "github.com/Alias1177/Recommender/models"

// average calculates simple average
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// SMA returns the mean of the latest period values
func SMA(values []float64, period int) models.Reading {
	if period <= 0 || len(values) < period {
		return models.Unavailable
	}
	return models.Some(average(values[len(values)-period:]))
}

// Closes extracts close prices from bars
func Closes(bars []models.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
