package guard

import (
	"fmt"
	"math"

	"github.com/Alias1177/Recommender/models"
)

// Guard names, in chain order
const (
	GuardCompositeVeto    = "composite_veto"
	GuardConfidenceFloor  = "confidence_floor"
	GuardDecline          = "decline"
	GuardSurge            = "surge"
	GuardFundamentalRisk  = "fundamental_risk"
	GuardMarketCrash      = "market_crash"
	GuardOverheat         = "overheat"
	GuardOversoldBonus    = "oversold_bonus"
	GuardPanicSell        = "panic_sell"
	GuardTrendProtection  = "trend_protection"
	GuardRecentPurchase   = "recent_purchase"
	GuardRelativeStrength = "relative_strength"
	GuardSameDaySkip      = "same_day_skip"
)

// compositeVeto blocks a buy against a strong technical sell signal
func compositeVeto(f Facts, d Decision) Decision {
	c := f.Composite
	if d.Action != ActionBuy || c.Direction != models.SignalSell || c.Strength < VetoStrength {
		return d
	}
	d = d.demote(GuardCompositeVeto, fmt.Sprintf(
		"technical signals point to sell with strength %.0f, buying against them is not recommended", c.Strength))
	d.Confidence = math.Max(VetoMinConfidence, c.Strength/100)
	return d
}

func confidenceFloor(_ Facts, d Decision) Decision {
	if d.Action != ActionSell || d.Confidence >= ConfidenceFloor {
		return d
	}
	return d.demote(GuardConfidenceFloor, fmt.Sprintf(
		"sell confidence %.2f is below the required %.2f", d.Confidence, ConfidenceFloor))
}

func decline(f Facts, d Decision) Decision {
	weekly, ok := f.Indicators.WeeklyChange.Get()
	if !ok || d.Action != ActionBuy || weekly > f.Thresholds.DeclinePct {
		return d
	}
	d = d.demote(GuardDecline, fmt.Sprintf(
		"price fell %.1f%% over the last week, past the %.0f%% decline limit; wait for the drop to settle", weekly, f.Thresholds.DeclinePct))
	return d.adjust(-DeclinePenalty)
}

func surge(f Facts, d Decision) Decision {
	weekly, ok := f.Indicators.WeeklyChange.Get()
	if !ok || f.Thresholds.SurgeDisabled || d.Action != ActionBuy || weekly < f.Thresholds.SurgePct {
		return d
	}
	return d.demote(GuardSurge, fmt.Sprintf(
		"price rose %.1f%% over the last week, beyond the %.0f%% surge limit; chasing the spike is risky", weekly, f.Thresholds.SurgePct))
}

func fundamentalRisk(f Facts, d Decision) Decision {
	if d.Action != ActionBuy {
		return d
	}
	if f.Instrument.Delisting {
		return d.demote(GuardFundamentalRisk, "the instrument is flagged for delisting")
	}
	vol, ok := f.Volatility.Get()
	if !ok || f.Instrument.Profitable || vol <= HighVolatilityPct {
		return d
	}
	return d.demote(GuardFundamentalRisk, fmt.Sprintf(
		"the company is unprofitable and volatility is %.0f%%, above %.0f%%", vol, HighVolatilityPct))
}

func marketCrash(f Facts, d Decision) Decision {
	if d.Action != ActionBuy || !f.Instrument.Market.Crashing {
		return d
	}
	return d.demote(GuardMarketCrash, "the broad market is crashing, new buys are on hold")
}

func overheat(f Facts, d Decision) Decision {
	dev, ok := f.Indicators.Deviation.Get()
	if !ok || d.Action != ActionBuy || dev <= f.Thresholds.OverheatPct {
		return d
	}
	d = d.demote(GuardOverheat, fmt.Sprintf(
		"price is %.1f%% above its 25-day average; moving-average deviation over %.0f%% signals an overheated move", dev, f.Thresholds.OverheatPct))
	return d.adjust(-OverheatPenalty)
}

// oversoldBonus raises confidence in a buy of a sound, calm instrument that
// trades well below its average
func oversoldBonus(f Facts, d Decision) Decision {
	dev, ok := f.Indicators.Deviation.Get()
	if !ok || d.Action != ActionBuy || dev >= f.Thresholds.OversoldPct || !f.Instrument.Profitable {
		return d
	}
	vol, ok := f.Volatility.Get()
	if !ok || vol >= LowVolatilityPct {
		return d
	}
	bonus := math.Min(MaxOversoldBonus, (f.Thresholds.OversoldPct-dev)/100+0.05)
	d = d.annotate(GuardOversoldBonus, fmt.Sprintf(
		"price is %.1f%% below its 25-day average on a profitable, low-volatility name", -dev))
	return d.adjust(bonus)
}

func panicSell(f Facts, d Decision) Decision {
	dev, ok := f.Indicators.Deviation.Get()
	if !ok || d.Action != ActionSell || dev > f.Thresholds.PanicPct {
		return d
	}
	return d.demote(GuardPanicSell, fmt.Sprintf(
		"price is already %.1f%% below its 25-day average; too cheap to abandon here, selling now would lock in a panic low", -dev))
}

// notDeepLoss reports whether the position's unrealized result is above the loss floor
func notDeepLoss(f Facts) bool {
	pnl, ok := f.PnL.Get()
	return ok && pnl > LossFloorPct
}

func trendProtection(f Facts, d Decision) Decision {
	if d.Action != ActionSell || d.CriticalChange || !notDeepLoss(f) {
		return d
	}
	medium, long := f.Indicators.MediumTrend, f.Indicators.LongTrend
	if medium != models.TrendUp && long != models.TrendUp {
		return d
	}
	return d.demote(GuardTrendProtection, fmt.Sprintf(
		"the trend is still up (medium %s, long %s) and the position is %.1f%% from entry", medium, long, f.PnL.Value))
}

func recentPurchase(f Facts, d Decision) Decision {
	pos := f.Instrument.Position
	if d.Action != ActionSell || d.CriticalChange || pos == nil || !notDeepLoss(f) {
		return d
	}
	held := models.DaysBetween(pos.EntryDate, f.AsOf)
	if held < 0 || held >= RecentPurchaseDays {
		return d
	}
	return d.demote(GuardRecentPurchase, fmt.Sprintf(
		"the position was opened %d days ago; give it at least %d days unless something critical changed", held, RecentPurchaseDays))
}

func relativeStrength(f Facts, d Decision) Decision {
	if d.Action != ActionSell || !notDeepLoss(f) {
		return d
	}
	own, ok := f.Indicators.WeeklyChange.Get()
	if !ok {
		return d
	}
	benchmark, label := f.Instrument.Market.WeeklyChange, "market"
	if !benchmark.Valid {
		benchmark, label = f.Instrument.Sector.WeeklyChange, "sector"
	}
	if !benchmark.Valid || own-benchmark.Value < RelativeStrengthPts {
		return d
	}
	return d.demote(GuardRelativeStrength, fmt.Sprintf(
		"the stock moved %.1f%% this week against %.1f%% for the %s; the weakness is the %s's, not the stock's",
		own, benchmark.Value, label, label))
}

// sharedGuards apply to every variant
func sharedGuards() Chain {
	return Chain{
		{Name: GuardCompositeVeto, Apply: compositeVeto},
		{Name: GuardConfidenceFloor, Apply: confidenceFloor},
		{Name: GuardDecline, ShortTerm: true, Apply: decline},
		{Name: GuardSurge, ShortTerm: true, Apply: surge},
		{Name: GuardFundamentalRisk, ShortTerm: true, Apply: fundamentalRisk},
		{Name: GuardMarketCrash, ShortTerm: true, Apply: marketCrash},
		{Name: GuardOverheat, ShortTerm: true, Apply: overheat},
		{Name: GuardOversoldBonus, ShortTerm: true, Apply: oversoldBonus},
		{Name: GuardPanicSell, Apply: panicSell},
	}
}

// OwnedChain is the full chain used for positions the user holds
func OwnedChain() Chain {
	return append(sharedGuards(),
		Guard{Name: GuardTrendProtection, Apply: trendProtection},
		Guard{Name: GuardRecentPurchase, Apply: recentPurchase},
		Guard{Name: GuardRelativeStrength, Apply: relativeStrength},
	)
}

// WatchChain is the chain for instruments the user does not own yet
func WatchChain() Chain {
	return sharedGuards()
}
