package calculate

import "github.com/Alias1177/Recommender/models"

// trendLookback is how many bars back the SMA slope is measured
const trendLookback = 5

// TrendOf classifies the trend of an SMA: up when price is above a rising
// average, down when below a falling one.
func TrendOf(values []float64, period int) models.Trend {
	if len(values) < period+trendLookback {
		return models.TrendUnknown
	}

	now := SMA(values, period)
	before := SMA(values[:len(values)-trendLookback], period)
	if !now.Valid || !before.Valid {
		return models.TrendUnknown
	}

	last := values[len(values)-1]
	switch {
	case last > now.Value && now.Value > before.Value:
		return models.TrendUp
	case last < now.Value && now.Value < before.Value:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}
