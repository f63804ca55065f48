package analyze

import (
	"github.com/Alias1177/Recommender/internal/calculate"
	"github.com/Alias1177/Recommender/internal/patterns"
	"github.com/Alias1177/Recommender/models"
)

// maxLevels limits how many support/resistance levels are reported
const maxLevels = 3

// Analyze runs indicators, candlestick and chart pattern recognition and the
// aggregator over an oldest-first bar sequence.
func Analyze(bars []models.PriceBar) models.Analysis {
	indicators := calculate.Compute(bars)
	candle := patterns.ClassifyCandle(bars)
	opts := patterns.DefaultChartOptions()
	chart := patterns.DetectChartPatterns(bars, opts)

	analysis := models.Analysis{
		Indicators: indicators,
		Candle:     candle,
		Chart:      chart,
		Composite:  Aggregate(candle, indicators.RSI, indicators.MACD.Histogram, chart),
	}

	support, resistance := patterns.SupportResistance(bars, opts)
	analysis.Support = levelPrices(support)
	analysis.Resistance = levelPrices(resistance)

	return analysis
}

func levelPrices(levels []patterns.PriceLevel) []float64 {
	if len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}
	var out []float64
	for _, l := range levels {
		out = append(out, l.Price)
	}
	return out
}
