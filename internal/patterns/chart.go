package patterns

import (
	"math"

	"github.com/Alias1177/Recommender/models"
)

// Chart pattern names
const (
	PatternDoubleTop           = "double top"
	PatternDoubleBottom        = "double bottom"
	PatternHeadAndShoulders    = "head and shoulders"
	PatternInverseHeadShoulder = "inverse head and shoulders"
	PatternTrendlineBreakout   = "trendline breakout"
	PatternTrendlineBreakdown  = "trendline breakdown"
	PatternSupportBounce       = "support bounce"
	PatternResistanceRejection = "resistance rejection"
	PatternGapDownFill         = "gap-down fill"
	PatternGapUpFill           = "gap-up fill"
)

// MinChartBars is the shortest history chart patterns are searched in
const MinChartBars = 15

// ChartOptions tunes the chart pattern detector. Fractions, not percent.
type ChartOptions struct {
	Window        int
	Tolerance     float64
	MinSeparation int
	HeadMargin    float64
	TrendNoise    float64
	TouchBand     float64
	GapThreshold  float64
}

// DefaultChartOptions returns the standard detector settings
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Window:        2,
		Tolerance:     0.03,
		MinSeparation: 3,
		HeadMargin:    0.02,
		TrendNoise:    0.01,
		TouchBand:     0.01,
		GapThreshold:  0.02,
	}
}

// DetectChartPatterns scans the bars for multi-bar formations. Every detected
// pattern is reported; none suppresses another.
func DetectChartPatterns(bars []models.PriceBar, opts ChartOptions) []models.PatternSignal {
	if len(bars) < MinChartBars {
		return nil
	}
	if opts.Window <= 0 {
		opts = DefaultChartOptions()
	}

	maxima, minima := findExtrema(bars, opts.Window)

	var out []models.PatternSignal
	out = append(out, doubleTops(bars, maxima, minima, opts)...)
	out = append(out, headAndShoulders(bars, maxima, minima, opts)...)
	out = append(out, trendlineBreaks(bars, maxima, minima, opts)...)
	out = append(out, levelTouches(bars, maxima, minima, opts)...)
	out = append(out, gapFills(bars, opts)...)
	return out
}

// findExtrema returns indices of strict local highs and lows, where a bar must
// beat w neighbours on each side.
func findExtrema(bars []models.PriceBar, w int) (maxima, minima []int) {
	for i := w; i < len(bars)-w; i++ {
		isMax, isMin := true, true
		for j := 1; j <= w; j++ {
			if bars[i].High <= bars[i-j].High || bars[i].High <= bars[i+j].High {
				isMax = false
			}
			if bars[i].Low >= bars[i-j].Low || bars[i].Low >= bars[i+j].Low {
				isMin = false
			}
		}
		if isMax {
			maxima = append(maxima, i)
		}
		if isMin {
			minima = append(minima, i)
		}
	}
	return maxima, minima
}

func capStrength(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func relDiff(a, b float64) float64 {
	m := math.Max(math.Abs(a), math.Abs(b))
	if m == 0 {
		return 0
	}
	return math.Abs(a-b) / m
}

func lowestLow(bars []models.PriceBar, from, to int) float64 {
	low := math.Inf(1)
	for i := from; i <= to; i++ {
		low = math.Min(low, bars[i].Low)
	}
	return low
}

func highestHigh(bars []models.PriceBar, from, to int) float64 {
	high := math.Inf(-1)
	for i := from; i <= to; i++ {
		high = math.Max(high, bars[i].High)
	}
	return high
}

func lastClose(bars []models.PriceBar) float64 {
	return bars[len(bars)-1].Close
}

func doubleTops(bars []models.PriceBar, maxima, minima []int, opts ChartOptions) []models.PatternSignal {
	var out []models.PatternSignal
	lastIdx := len(bars) - 1

	if len(maxima) >= 2 {
		a, b := maxima[len(maxima)-2], maxima[len(maxima)-1]
		ha, hb := bars[a].High, bars[b].High
		diff := relDiff(ha, hb)
		neckline := lowestLow(bars, a+1, b-1)
		lower := math.Min(ha, hb)
		if diff <= opts.Tolerance && b-a >= opts.MinSeparation && (lower-neckline)/lower >= opts.Tolerance {
			strength := 60 + 25*(1-diff/opts.Tolerance)
			if lastClose(bars) < neckline {
				strength += 15
			}
			out = append(out, models.PatternSignal{
				Name: PatternDoubleTop, Direction: models.SignalSell,
				Strength: capStrength(strength), Price: models.Some(neckline), Index: lastIdx,
			})
		}
	}

	if len(minima) >= 2 {
		a, b := minima[len(minima)-2], minima[len(minima)-1]
		la, lb := bars[a].Low, bars[b].Low
		diff := relDiff(la, lb)
		neckline := highestHigh(bars, a+1, b-1)
		higher := math.Max(la, lb)
		if diff <= opts.Tolerance && b-a >= opts.MinSeparation && higher > 0 && (neckline-higher)/higher >= opts.Tolerance {
			strength := 60 + 25*(1-diff/opts.Tolerance)
			if lastClose(bars) > neckline {
				strength += 15
			}
			out = append(out, models.PatternSignal{
				Name: PatternDoubleBottom, Direction: models.SignalBuy,
				Strength: capStrength(strength), Price: models.Some(neckline), Index: lastIdx,
			})
		}
	}

	return out
}

func headAndShoulders(bars []models.PriceBar, maxima, minima []int, opts ChartOptions) []models.PatternSignal {
	var out []models.PatternSignal
	lastIdx := len(bars) - 1

	if len(maxima) >= 3 {
		l, h, r := maxima[len(maxima)-3], maxima[len(maxima)-2], maxima[len(maxima)-1]
		left, head, right := bars[l].High, bars[h].High, bars[r].High
		flank := relDiff(left, right)
		if head >= left*(1+opts.HeadMargin) && head >= right*(1+opts.HeadMargin) && flank <= opts.Tolerance {
			neckline := (lowestLow(bars, l+1, h-1) + lowestLow(bars, h+1, r-1)) / 2
			strength := 65 + 20*(1-flank/opts.Tolerance)
			if lastClose(bars) < neckline {
				strength += 15
			}
			out = append(out, models.PatternSignal{
				Name: PatternHeadAndShoulders, Direction: models.SignalSell,
				Strength: capStrength(strength), Price: models.Some(neckline), Index: lastIdx,
			})
		}
	}

	if len(minima) >= 3 {
		l, h, r := minima[len(minima)-3], minima[len(minima)-2], minima[len(minima)-1]
		left, head, right := bars[l].Low, bars[h].Low, bars[r].Low
		flank := relDiff(left, right)
		if head <= left*(1-opts.HeadMargin) && head <= right*(1-opts.HeadMargin) && flank <= opts.Tolerance {
			neckline := (highestHigh(bars, l+1, h-1) + highestHigh(bars, h+1, r-1)) / 2
			strength := 65 + 20*(1-flank/opts.Tolerance)
			if lastClose(bars) > neckline {
				strength += 15
			}
			out = append(out, models.PatternSignal{
				Name: PatternInverseHeadShoulder, Direction: models.SignalBuy,
				Strength: capStrength(strength), Price: models.Some(neckline), Index: lastIdx,
			})
		}
	}

	return out
}
