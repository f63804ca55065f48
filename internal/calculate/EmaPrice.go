package calculate

import "github.com/Alias1177/Recommender/models"

// EMASeries returns the EMA at every index. The first period-1 entries are
// unavailable; index period-1 holds the SMA seed.
func EMASeries(values []float64, period int) []models.Reading {
	out := make([]models.Reading, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = models.Some(ema)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = models.Some(ema)
	}

	return out
}

// EMA returns the exponential moving average at the last value
func EMA(values []float64, period int) models.Reading {
	series := EMASeries(values, period)
	if len(series) == 0 {
		return models.Unavailable
	}
	return series[len(series)-1]
}
