package calculate

import (
	"math"

	"github.com/Alias1177/Recommender/models"
)

// DeviationPeriod is the moving average the deviation rate is measured against
const DeviationPeriod = 25

// DeviationRate returns how far the last value sits from its SMA, in percent
func DeviationRate(values []float64, period int) models.Reading {
	sma := SMA(values, period)
	if !sma.Valid || sma.Value == 0 {
		return models.Unavailable
	}
	last := values[len(values)-1]
	return models.Some((last - sma.Value) / sma.Value * 100)
}

// PercentChange returns the change of the last value versus bars ago, in percent
func PercentChange(values []float64, bars int) models.Reading {
	if bars <= 0 || len(values) < bars+1 {
		return models.Unavailable
	}
	base := values[len(values)-1-bars]
	if base == 0 {
		return models.Unavailable
	}
	return models.Some((values[len(values)-1] - base) / base * 100)
}

// WeeklyChange is the trailing five-bar percent change
func WeeklyChange(values []float64) models.Reading {
	return PercentChange(values, 5)
}

// RealizedVolatility is the annualized standard deviation of daily log
// returns over the window, in percent.
func RealizedVolatility(values []float64, window int) models.Reading {
	if window < 2 || len(values) < window+1 {
		return models.Unavailable
	}

	series := values[len(values)-window-1:]
	returns := make([]float64, 0, window)
	for i := 1; i < len(series); i++ {
		if series[i-1] <= 0 || series[i] <= 0 {
			return models.Unavailable
		}
		returns = append(returns, math.Log(series[i]/series[i-1]))
	}

	mean := average(returns)
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return models.Some(math.Sqrt(variance) * math.Sqrt(252) * 100)
}
