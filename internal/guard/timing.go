package guard

import (
	"fmt"

	"github.com/Alias1177/Recommender/internal/analyze"
	"github.com/Alias1177/Recommender/internal/calculate"
	"github.com/Alias1177/Recommender/models"
)

// Timing thresholds, deviation in percent
const (
	PullbackDeviationPct = 5.0
	ReboundDeviationPct  = -5.0
)

// SMAPeriodFor returns the moving average a timing hint refers to
func SMAPeriodFor(p models.Period) int {
	switch p {
	case models.PeriodShort:
		return 5
	case models.PeriodLong:
		return 75
	default:
		return 25
	}
}

// ClassifyTiming adds an entry or exit hint to an accepted buy or sell.
// Buys far above the average wait for a pullback, sells far below it wait
// for a rebound.
func ClassifyTiming(action Action, closes []float64, rsi models.Reading, period int) models.Timing {
	if action == ActionHold {
		return models.Timing{Kind: models.TimingNone}
	}

	target := calculate.SMA(closes, period)
	dev := calculate.DeviationRate(closes, period)
	r, rsiOK := rsi.Get()
	d, devOK := dev.Get()

	if action == ActionBuy {
		if devOK && (d >= PullbackDeviationPct || (rsiOK && r >= analyze.RSIOverbought && d > 0)) {
			return models.Timing{
				Kind:   models.TimingWaitPullback,
				Period: period,
				Target: target,
				Note:   fmt.Sprintf("wait for a pullback toward the %d-day average near %s", period, target),
			}
		}
		return models.Timing{Kind: models.TimingEnterNow, Period: period, Target: target}
	}

	if devOK && (d <= ReboundDeviationPct || (rsiOK && r <= analyze.RSIOversold && d < 0)) {
		return models.Timing{
			Kind:   models.TimingWaitRebound,
			Period: period,
			Target: target,
			Note:   fmt.Sprintf("wait for a rebound toward the %d-day average near %s", period, target),
		}
	}
	return models.Timing{Kind: models.TimingExitNow, Period: period, Target: target}
}
