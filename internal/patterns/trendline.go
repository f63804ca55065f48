package patterns

import (
	"math"
	"sort"

	"github.com/Alias1177/Recommender/models"
)

// line is a straight line through two bars, in index/price space
type line struct {
	x1, x2 int
	y1, y2 float64
}

func (l line) at(x int) float64 {
	slope := (l.y2 - l.y1) / float64(l.x2-l.x1)
	return l.y1 + slope*float64(x-l.x1)
}

// mostSignificant picks the two extrema with the most extreme price, returned
// in index order.
func mostSignificant(idx []int, price func(int) float64, highest bool) (int, int, bool) {
	if len(idx) < 2 {
		return 0, 0, false
	}
	ranked := append([]int(nil), idx...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if highest {
			return price(ranked[i]) > price(ranked[j])
		}
		return price(ranked[i]) < price(ranked[j])
	})
	a, b := ranked[0], ranked[1]
	if a > b {
		a, b = b, a
	}
	return a, b, true
}

func trendlineBreaks(bars []models.PriceBar, maxima, minima []int, opts ChartOptions) []models.PatternSignal {
	var out []models.PatternSignal
	lastIdx := len(bars) - 1
	closePrice := lastClose(bars)

	high := func(i int) float64 { return bars[i].High }
	low := func(i int) float64 { return bars[i].Low }

	if a, b, ok := mostSignificant(maxima, high, true); ok {
		resistance := line{a, b, bars[a].High, bars[b].High}.at(lastIdx)
		if resistance > 0 && closePrice > resistance*(1+opts.TrendNoise) {
			excess := (closePrice - resistance) / resistance
			out = append(out, models.PatternSignal{
				Name: PatternTrendlineBreakout, Direction: models.SignalBuy,
				Strength: capStrength(60 + 10*excess/opts.TrendNoise), Price: models.Some(resistance), Index: lastIdx,
			})
		}
	}

	if a, b, ok := mostSignificant(minima, low, false); ok {
		support := line{a, b, bars[a].Low, bars[b].Low}.at(lastIdx)
		if support > 0 && closePrice < support*(1-opts.TrendNoise) {
			excess := (support - closePrice) / support
			out = append(out, models.PatternSignal{
				Name: PatternTrendlineBreakdown, Direction: models.SignalSell,
				Strength: capStrength(60 + 10*excess/opts.TrendNoise), Price: models.Some(support), Index: lastIdx,
			})
		}
	}

	return out
}

// PriceLevel is a horizontal level built from clustered extrema
type PriceLevel struct {
	Price   float64
	Touches int
}

// clusterLevels groups prices lying within band of the running cluster mean
func clusterLevels(prices []float64, band float64) []PriceLevel {
	if len(prices) == 0 {
		return nil
	}
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	var levels []PriceLevel
	sum, count := sorted[0], 1
	for _, p := range sorted[1:] {
		mean := sum / float64(count)
		if mean != 0 && math.Abs(p-mean)/mean <= band {
			sum += p
			count++
			continue
		}
		levels = append(levels, PriceLevel{Price: mean, Touches: count})
		sum, count = p, 1
	}
	levels = append(levels, PriceLevel{Price: sum / float64(count), Touches: count})

	// Strongest first
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Touches > levels[j].Touches
	})
	return levels
}

// SupportResistance returns support and resistance levels touched at least
// twice, strongest first.
func SupportResistance(bars []models.PriceBar, opts ChartOptions) (support, resistance []PriceLevel) {
	if len(bars) < MinChartBars {
		return nil, nil
	}
	maxima, minima := findExtrema(bars, opts.Window)
	return touchedLevels(bars, minima, true, opts.TouchBand), touchedLevels(bars, maxima, false, opts.TouchBand)
}

func touchedLevels(bars []models.PriceBar, idx []int, lows bool, band float64) []PriceLevel {
	prices := make([]float64, 0, len(idx))
	for _, i := range idx {
		if lows {
			prices = append(prices, bars[i].Low)
		} else {
			prices = append(prices, bars[i].High)
		}
	}
	var out []PriceLevel
	for _, lvl := range clusterLevels(prices, band) {
		if lvl.Touches >= 2 {
			out = append(out, lvl)
		}
	}
	return out
}

func levelTouches(bars []models.PriceBar, maxima, minima []int, opts ChartOptions) []models.PatternSignal {
	var out []models.PatternSignal
	lastIdx := len(bars) - 1
	last := bars[lastIdx]

	for _, lvl := range touchedLevels(bars, minima, true, opts.TouchBand) {
		if math.Abs(last.Low-lvl.Price)/lvl.Price <= opts.TouchBand && last.Close > lvl.Price {
			out = append(out, models.PatternSignal{
				Name: PatternSupportBounce, Direction: models.SignalBuy,
				Strength: capStrength(55 + 10*float64(lvl.Touches)), Price: models.Some(lvl.Price), Index: lastIdx,
			})
			break
		}
	}

	for _, lvl := range touchedLevels(bars, maxima, false, opts.TouchBand) {
		if math.Abs(last.High-lvl.Price)/lvl.Price <= opts.TouchBand && last.Close < lvl.Price {
			out = append(out, models.PatternSignal{
				Name: PatternResistanceRejection, Direction: models.SignalSell,
				Strength: capStrength(55 + 10*float64(lvl.Touches)), Price: models.Some(lvl.Price), Index: lastIdx,
			})
			break
		}
	}

	return out
}
