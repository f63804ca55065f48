package patterns

import (
	"math"

	"github.com/Alias1177/Recommender/models"
)

// Candlestick pattern names
const (
	PatternNone             = "none"
	PatternDoji             = "doji"
	PatternDragonflyDoji    = "dragonfly doji"
	PatternGravestoneDoji   = "gravestone doji"
	PatternHammer           = "hammer"
	PatternHangingMan       = "hanging man"
	PatternInvertedHammer   = "inverted hammer"
	PatternShootingStar     = "shooting star"
	PatternBullishMarubozu  = "bullish marubozu"
	PatternBearishMarubozu  = "bearish marubozu"
	PatternBullishHarami    = "bullish harami"
	PatternBearishHarami    = "bearish harami"
	PatternPiercingLine     = "piercing line"
	PatternDarkCloudCover   = "dark cloud cover"
	PatternBullishEngulfing = "bullish engulfing"
	PatternBearishEngulfing = "bearish engulfing"
	PatternThreeSoldiers    = "three white soldiers"
	PatternThreeCrows       = "three black crows"
	PatternMorningStar      = "morning star"
	PatternEveningStar      = "evening star"
)

// Shape ratios
const (
	dojiBodyRatio     = 0.10
	marubozuRatio     = 0.95
	longWickRatio     = 2.0
	dragonflyWick     = 0.60
	solidBodyRatio    = 0.50
	starBodyRatio     = 0.30
	candleLookbackMax = 4
)

func bodySize(b models.PriceBar) float64  { return math.Abs(b.Close - b.Open) }
func candleRange(b models.PriceBar) float64 { return b.High - b.Low }
func upperWick(b models.PriceBar) float64 { return b.High - math.Max(b.Open, b.Close) }
func lowerWick(b models.PriceBar) float64 { return math.Min(b.Open, b.Close) - b.Low }
func isBullish(b models.PriceBar) bool    { return b.Close > b.Open }
func isBearish(b models.PriceBar) bool    { return b.Close < b.Open }
func bodyMid(b models.PriceBar) float64   { return (b.Open + b.Close) / 2 }

func signal(name string, dir models.Signal, strength float64, index int) models.PatternSignal {
	return models.PatternSignal{Name: name, Direction: dir, Strength: strength, Index: index}
}

// priorTrend looks at up to four bars before the last one
func priorTrend(bars []models.PriceBar) models.Trend {
	n := len(bars)
	start := n - 1 - candleLookbackMax
	if start < 0 {
		start = 0
	}
	prior := bars[start : n-1]
	if len(prior) < 2 {
		return models.TrendFlat
	}
	delta := prior[len(prior)-1].Close - prior[0].Close
	switch {
	case delta > 0:
		return models.TrendUp
	case delta < 0:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

// ClassifyCandle classifies the last bar, using up to four predecessors for
// context and multi-bar patterns. The strongest match wins; on equal strength
// the first one checked is kept.
func ClassifyCandle(bars []models.PriceBar) models.PatternSignal {
	if len(bars) == 0 {
		return signal(PatternNone, models.SignalNeutral, 0, -1)
	}

	idx := len(bars) - 1
	last := bars[idx]
	if candleRange(last) <= 0 {
		return signal(PatternNone, models.SignalNeutral, 0, idx)
	}

	var matches []models.PatternSignal
	if len(bars) >= 3 {
		matches = append(matches, threeBarPatterns(bars[idx-2], bars[idx-1], last, idx)...)
	}
	if len(bars) >= 2 {
		matches = append(matches, twoBarPatterns(bars[idx-1], last, idx)...)
	}
	matches = append(matches, singleBarPatterns(last, priorTrend(bars), idx)...)

	best := signal(PatternNone, models.SignalNeutral, 0, idx)
	for _, m := range matches {
		if m.Strength > best.Strength {
			best = m
		}
	}
	return best
}

func threeBarPatterns(first, middle, last models.PriceBar, idx int) []models.PatternSignal {
	var out []models.PatternSignal

	firstSolid := candleRange(first) > 0 && bodySize(first) >= candleRange(first)*solidBodyRatio
	smallStar := bodySize(middle) <= bodySize(first)*starBodyRatio

	// Утренняя звезда
	if isBearish(first) && firstSolid && smallStar &&
		bodyMid(middle) < first.Close &&
		isBullish(last) && last.Close > bodyMid(first) {
		out = append(out, signal(PatternMorningStar, models.SignalBuy, 85, idx))
	}

	// Вечерняя звезда
	if isBullish(first) && firstSolid && smallStar &&
		bodyMid(middle) > first.Close &&
		isBearish(last) && last.Close < bodyMid(first) {
		out = append(out, signal(PatternEveningStar, models.SignalSell, 85, idx))
	}

	trio := []models.PriceBar{first, middle, last}
	if soldiers(trio) {
		out = append(out, signal(PatternThreeSoldiers, models.SignalBuy, 75, idx))
	}
	if crows(trio) {
		out = append(out, signal(PatternThreeCrows, models.SignalSell, 75, idx))
	}

	return out
}

func solid(b models.PriceBar) bool {
	r := candleRange(b)
	return r > 0 && bodySize(b) >= r*solidBodyRatio
}

func soldiers(trio []models.PriceBar) bool {
	for i, b := range trio {
		if !isBullish(b) || !solid(b) {
			return false
		}
		if i == 0 {
			continue
		}
		prev := trio[i-1]
		if b.Close <= prev.Close || b.Open < prev.Open || b.Open > prev.Close {
			return false
		}
	}
	return true
}

func crows(trio []models.PriceBar) bool {
	for i, b := range trio {
		if !isBearish(b) || !solid(b) {
			return false
		}
		if i == 0 {
			continue
		}
		prev := trio[i-1]
		if b.Close >= prev.Close || b.Open > prev.Open || b.Open < prev.Close {
			return false
		}
	}
	return true
}

func twoBarPatterns(prev, last models.PriceBar, idx int) []models.PatternSignal {
	var out []models.PatternSignal

	switch {
	case isBearish(prev) && isBullish(last):
		if last.Open <= prev.Close && last.Close >= prev.Open && bodySize(last) > bodySize(prev) {
			out = append(out, signal(PatternBullishEngulfing, models.SignalBuy, 80, idx))
		}
		if last.Open < prev.Close && last.Close > bodyMid(prev) && last.Close < prev.Open {
			out = append(out, signal(PatternPiercingLine, models.SignalBuy, 72, idx))
		}
		if solid(prev) && last.Open >= prev.Close && last.Close <= prev.Open && bodySize(last) < bodySize(prev) {
			out = append(out, signal(PatternBullishHarami, models.SignalBuy, 62, idx))
		}
	case isBullish(prev) && isBearish(last):
		if last.Open >= prev.Close && last.Close <= prev.Open && bodySize(last) > bodySize(prev) {
			out = append(out, signal(PatternBearishEngulfing, models.SignalSell, 80, idx))
		}
		if last.Open > prev.Close && last.Close < bodyMid(prev) && last.Close > prev.Open {
			out = append(out, signal(PatternDarkCloudCover, models.SignalSell, 72, idx))
		}
		if solid(prev) && last.Open <= prev.Close && last.Close >= prev.Open && bodySize(last) < bodySize(prev) {
			out = append(out, signal(PatternBearishHarami, models.SignalSell, 62, idx))
		}
	}

	return out
}

func singleBarPatterns(b models.PriceBar, trend models.Trend, idx int) []models.PatternSignal {
	r := candleRange(b)
	body := bodySize(b)
	upper := upperWick(b)
	lower := lowerWick(b)

	if body <= r*dojiBodyRatio {
		switch {
		case upper <= r*dojiBodyRatio && lower >= r*dragonflyWick:
			return []models.PatternSignal{signal(PatternDragonflyDoji, models.SignalBuy, 65, idx)}
		case lower <= r*dojiBodyRatio && upper >= r*dragonflyWick:
			return []models.PatternSignal{signal(PatternGravestoneDoji, models.SignalSell, 65, idx)}
		default:
			return []models.PatternSignal{signal(PatternDoji, models.SignalNeutral, 60, idx)}
		}
	}

	var out []models.PatternSignal
	if body >= r*marubozuRatio {
		if isBullish(b) {
			out = append(out, signal(PatternBullishMarubozu, models.SignalBuy, 65, idx))
		} else {
			out = append(out, signal(PatternBearishMarubozu, models.SignalSell, 65, idx))
		}
	}

	if lower >= body*longWickRatio && upper <= body {
		if trend == models.TrendUp {
			out = append(out, signal(PatternHangingMan, models.SignalSell, 65, idx))
		} else {
			out = append(out, signal(PatternHammer, models.SignalBuy, 70, idx))
		}
	}

	if upper >= body*longWickRatio && lower <= body {
		if trend == models.TrendDown {
			out = append(out, signal(PatternInvertedHammer, models.SignalBuy, 60, idx))
		} else {
			out = append(out, signal(PatternShootingStar, models.SignalSell, 70, idx))
		}
	}

	return out
}
