package patterns

import "github.com/Alias1177/Recommender/models"

// gapFills reports the most recent gap in each direction that a later bar
// traded back into. A filled gap-down votes buy, a filled gap-up votes sell.
func gapFills(bars []models.PriceBar, opts ChartOptions) []models.PatternSignal {
	lastUp, lastDown := -1, -1
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		if prevClose <= 0 {
			continue
		}
		switch {
		case bars[i].Open > prevClose*(1+opts.GapThreshold):
			lastUp = i
		case bars[i].Open < prevClose*(1-opts.GapThreshold):
			lastDown = i
		}
	}

	var out []models.PatternSignal
	if lastDown > 0 {
		if sig, ok := gapFill(bars, lastDown, false, opts); ok {
			out = append(out, sig)
		}
	}
	if lastUp > 0 {
		if sig, ok := gapFill(bars, lastUp, true, opts); ok {
			out = append(out, sig)
		}
	}
	return out
}

func gapFill(bars []models.PriceBar, gapIdx int, up bool, opts ChartOptions) (models.PatternSignal, bool) {
	level := bars[gapIdx-1].Close
	size := (bars[gapIdx].Open - level) / level
	if !up {
		size = -size
	}

	for j := gapIdx + 1; j < len(bars); j++ {
		filled := bars[j].High >= level
		if up {
			filled = bars[j].Low <= level
		}
		if !filled {
			continue
		}

		sig := models.PatternSignal{
			Name:      PatternGapDownFill,
			Direction: models.SignalBuy,
			Strength:  capStrength(60 + 10*(size/opts.GapThreshold-1)),
			Price:     models.Some(level),
			Index:     j,
		}
		if up {
			sig.Name = PatternGapUpFill
			sig.Direction = models.SignalSell
		}
		return sig, true
	}
	return models.PatternSignal{}, false
}
