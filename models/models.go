package models

import (
	"time"
)

// PriceBar represents a single daily OHLC bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Signal is a directional vote
type Signal string

const (
	SignalBuy     Signal = "buy"
	SignalSell    Signal = "sell"
	SignalNeutral Signal = "neutral"
)

// Trend classifies a moving average slope
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "unknown"
)

// MACDResult holds MACD line, signal and histogram
type MACDResult struct {
	Line      Reading `json:"line"`
	Signal    Reading `json:"signal"`
	Histogram Reading `json:"histogram"`
}

// Bands holds Bollinger band values
type Bands struct {
	Upper  Reading `json:"upper"`
	Middle Reading `json:"middle"`
	Lower  Reading `json:"lower"`
}

// IndicatorResult is the indicator snapshot for the last bar of a series
type IndicatorResult struct {
	Close        float64    `json:"close"`
	RSI          Reading    `json:"rsi"`
	MACD         MACDResult `json:"macd"`
	SMA5         Reading    `json:"sma_5"`
	SMA25        Reading    `json:"sma_25"`
	SMA75        Reading    `json:"sma_75"`
	EMA12        Reading    `json:"ema_12"`
	EMA26        Reading    `json:"ema_26"`
	Deviation    Reading    `json:"deviation_pct"` // close vs SMA(25)
	Bollinger    Bands      `json:"bollinger"`
	WeeklyChange Reading    `json:"weekly_change_pct"`
	Volatility   Reading    `json:"volatility_pct"` // annualized
	MediumTrend  Trend      `json:"medium_trend"`
	LongTrend    Trend      `json:"long_trend"`
}

// PatternSignal is the outcome of a candlestick or chart pattern check
type PatternSignal struct {
	Name      string  `json:"name"`
	Direction Signal  `json:"direction"`
	Strength  float64 `json:"strength"`
	Price     Reading `json:"price"`
	Index     int     `json:"index"`
}

// CompositeSignal is the merged view of all pattern and indicator votes
type CompositeSignal struct {
	Direction      Signal   `json:"direction"`
	Strength       float64  `json:"strength"`
	Reasons        []string `json:"reasons"`
	BuyWeight      float64  `json:"buy_weight"`
	SellWeight     float64  `json:"sell_weight"`
	PossibleWeight float64  `json:"possible_weight"`
}

// Analysis bundles everything computed from one price history
type Analysis struct {
	Indicators IndicatorResult `json:"indicators"`
	Candle     PatternSignal   `json:"candle"`
	Chart      []PatternSignal `json:"chart_patterns"`
	Composite  CompositeSignal `json:"composite"`
	Support    []float64       `json:"support,omitempty"`
	Resistance []float64       `json:"resistance,omitempty"`
}

// Candidate is the unvetted recommendation proposed by the narrative advisor
type Candidate struct {
	Direction      string  `json:"direction" validate:"required"`
	Confidence     float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reason         string  `json:"reason"`
	Caution        string  `json:"caution,omitempty"`
	SuggestedPrice float64 `json:"suggested_price,omitempty" validate:"gte=0"`
	SellFraction   float64 `json:"sell_fraction,omitempty" validate:"gte=0,lte=1"`
	Condition      string  `json:"condition,omitempty"`
	CriticalChange bool    `json:"critical_change,omitempty"`
}

// Style is the investor's risk style
type Style string

const (
	StyleConservative Style = "conservative"
	StyleBalanced     Style = "balanced"
	StyleAggressive   Style = "aggressive"
)

// Period is the investment horizon
type Period string

const (
	PeriodShort  Period = "short"
	PeriodMedium Period = "medium"
	PeriodLong   Period = "long"
)

// Tolerance is the stated loss tolerance
type Tolerance string

const (
	ToleranceLow    Tolerance = "low"
	ToleranceMedium Tolerance = "medium"
	ToleranceHigh   Tolerance = "high"
)

// RiskProfile describes the user the recommendation is for
type RiskProfile struct {
	Style     Style     `json:"style" yaml:"style"`
	Period    Period    `json:"period" yaml:"period"`
	Tolerance Tolerance `json:"tolerance" yaml:"tolerance"`
}

// DefaultRiskProfile is used when no profile is supplied
func DefaultRiskProfile() RiskProfile {
	return RiskProfile{Style: StyleBalanced, Period: PeriodMedium, Tolerance: ToleranceMedium}
}

// Position is an owned holding
type Position struct {
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
	Quantity   float64   `json:"quantity"`
}

// MarketCap buckets
type MarketCap string

const (
	MarketCapSmall MarketCap = "small"
	MarketCapMid   MarketCap = "mid"
	MarketCapLarge MarketCap = "large"
)

// MarketSnapshot summarizes the broad market index
type MarketSnapshot struct {
	Trend        Trend   `json:"trend"`
	Crashing     bool    `json:"crashing"`
	WeeklyChange Reading `json:"weekly_change_pct"`
}

// SectorSnapshot summarizes the instrument's sector
type SectorSnapshot struct {
	WeeklyChange Reading `json:"weekly_change_pct"`
	Score        Reading `json:"score"`
}

// InstrumentContext carries everything about the instrument besides its prices
type InstrumentContext struct {
	Ticker        string         `json:"ticker"`
	Name          string         `json:"name"`
	SectorName    string         `json:"sector_name"`
	Profitable    bool           `json:"profitable"`
	Volatility    Reading        `json:"volatility_pct"`
	MarketCap     MarketCap      `json:"market_cap"`
	Delisting     bool           `json:"delisting"`
	SurfacedToday bool           `json:"surfaced_today"`
	Market        MarketSnapshot `json:"market"`
	Sector        SectorSnapshot `json:"sector"`
	Profile       *RiskProfile   `json:"profile,omitempty"`
	Position      *Position      `json:"position,omitempty"`
}

// RiskProfileOrDefault returns the attached profile or the default one
func (c InstrumentContext) RiskProfileOrDefault() RiskProfile {
	if c.Profile == nil {
		return DefaultRiskProfile()
	}
	p := *c.Profile
	def := DefaultRiskProfile()
	if p.Style == "" {
		p.Style = def.Style
	}
	if p.Period == "" {
		p.Period = def.Period
	}
	if p.Tolerance == "" {
		p.Tolerance = def.Tolerance
	}
	return p
}

// TimingKind is the entry/exit timing hint
type TimingKind string

const (
	TimingNone         TimingKind = "none"
	TimingEnterNow     TimingKind = "enter_now"
	TimingWaitPullback TimingKind = "wait_pullback"
	TimingExitNow      TimingKind = "exit_now"
	TimingWaitRebound  TimingKind = "wait_rebound"
)

// Timing is the secondary classification attached to an accepted buy or sell
type Timing struct {
	Kind   TimingKind `json:"kind"`
	Period int        `json:"sma_period,omitempty"`
	Target Reading    `json:"target"`
	Note   string     `json:"note,omitempty"`
}

// FinalRecommendation is the corrected recommendation returned to callers
type FinalRecommendation struct {
	ID             string          `json:"id,omitempty"`
	Variant        string          `json:"variant"`
	Ticker         string          `json:"ticker"`
	Direction      string          `json:"direction"`
	Confidence     float64         `json:"confidence"`
	Reason         string          `json:"reason"`
	Caution        string          `json:"caution,omitempty"`
	SuggestedPrice float64         `json:"suggested_price,omitempty"`
	SellFraction   float64         `json:"sell_fraction,omitempty"`
	Condition      string          `json:"condition,omitempty"`
	Original       Candidate       `json:"original"`
	Annotations    []string        `json:"annotations,omitempty"`
	FiredGuards    []string        `json:"fired_guards,omitempty"`
	Timing         Timing          `json:"timing"`
	Composite      CompositeSignal `json:"composite"`
	Indicators     IndicatorResult `json:"indicators"`
	AsOf           time.Time       `json:"as_of"`
}
