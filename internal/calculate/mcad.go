package calculate

import "github.com/Alias1177/Recommender/models"

// Standard MACD periods
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD calculates MACD(12, 26, 9)
func MACD(values []float64) models.MACDResult {
	return MACDWith(values, MACDFast, MACDSlow, MACDSignal)
}

// MACDWith calculates MACD for custom periods. The line is available once
// slowPeriod values exist; signal and histogram need signalPeriod-1 more.
func MACDWith(values []float64, fastPeriod, slowPeriod, signalPeriod int) models.MACDResult {
	var result models.MACDResult
	if fastPeriod <= 0 || signalPeriod <= 0 || slowPeriod <= fastPeriod {
		return result
	}
	if len(values) < slowPeriod {
		return result
	}

	fast := EMASeries(values, fastPeriod)
	slow := EMASeries(values, slowPeriod)

	line := make([]float64, 0, len(values)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(values); i++ {
		line = append(line, fast[i].Value-slow[i].Value)
	}

	last := line[len(line)-1]
	result.Line = models.Some(last)

	signal := EMA(line, signalPeriod)
	if signal.Valid {
		result.Signal = signal
		result.Histogram = models.Some(last - signal.Value)
	}

	return result
}
