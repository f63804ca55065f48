package calculate

import "github.com/Alias1177/Recommender/models"

// RSIPeriod is the standard Wilder lookback
const RSIPeriod = 14

// RSI calculates Wilder's relative strength index. It needs period+1 values;
// a series without losses yields 100.
func RSI(values []float64, period int) models.Reading {
	if period <= 0 || len(values) < period+1 {
		return models.Unavailable
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the rest of the data
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return models.Some(100)
	}

	rs := avgGain / avgLoss
	return models.Some(100.0 - (100.0 / (1.0 + rs)))
}
