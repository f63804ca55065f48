package calculate

import "github.com/Alias1177/Recommender/models"

// VolatilityWindow is the number of daily returns used for realized volatility
const VolatilityWindow = 20

// Compute calculates the indicator snapshot for the last bar. Nothing is
// cached between calls.
func Compute(bars []models.PriceBar) models.IndicatorResult {
	result := models.IndicatorResult{
		MediumTrend: models.TrendUnknown,
		LongTrend:   models.TrendUnknown,
	}
	if len(bars) == 0 {
		return result
	}

	closes := Closes(bars)
	result.Close = closes[len(closes)-1]
	result.RSI = RSI(closes, RSIPeriod)
	result.MACD = MACD(closes)
	result.SMA5 = SMA(closes, 5)
	result.SMA25 = SMA(closes, 25)
	result.SMA75 = SMA(closes, 75)
	result.EMA12 = EMA(closes, MACDFast)
	result.EMA26 = EMA(closes, MACDSlow)
	result.Deviation = DeviationRate(closes, DeviationPeriod)
	result.Bollinger = Bands(closes, BandsPeriod, BandsWidth)
	result.WeeklyChange = WeeklyChange(closes)
	result.Volatility = RealizedVolatility(closes, VolatilityWindow)
	result.MediumTrend = TrendOf(closes, 25)
	result.LongTrend = TrendOf(closes, 75)

	return result
}
