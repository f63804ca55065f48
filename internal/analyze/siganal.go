package analyze

import (
	"fmt"
	"math"

	"github.com/Alias1177/Recommender/models"
)

// Vote thresholds
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
	rsiBaseVote   = 60.0
	macdVote      = 50.0
	maxVote       = 100.0
)

// rsiVote maps RSI into a directional vote. Strength grows from 60 at the
// threshold to 100 at the extreme.
func rsiVote(rsi float64) (models.Signal, float64) {
	switch {
	case rsi >= RSIOverbought:
		return models.SignalSell, math.Min(maxVote, rsiBaseVote+(rsi-RSIOverbought)*4/3)
	case rsi <= RSIOversold:
		return models.SignalBuy, math.Min(maxVote, rsiBaseVote+(RSIOversold-rsi)*4/3)
	default:
		return models.SignalNeutral, 0
	}
}

type vote struct {
	direction models.Signal
	strength  float64
	reason    string
}

// Aggregate merges the candlestick signal, RSI, MACD histogram and chart
// patterns into one composite signal. Each available input may contribute at
// most 100 to its side; strength is the winning side's share of the total
// possible weight. Equal weights resolve to neutral.
func Aggregate(candle models.PatternSignal, rsi, macdHist models.Reading, chart []models.PatternSignal) models.CompositeSignal {
	var votes []vote

	if candle.Index >= 0 {
		votes = append(votes, vote{
			direction: candle.Direction,
			strength:  candle.Strength,
			reason:    fmt.Sprintf("candlestick %s (%.0f)", candle.Name, candle.Strength),
		})
	}

	if r, ok := rsi.Get(); ok {
		dir, strength := rsiVote(r)
		label := "neutral"
		if dir == models.SignalSell {
			label = "overbought"
		} else if dir == models.SignalBuy {
			label = "oversold"
		}
		votes = append(votes, vote{dir, strength, fmt.Sprintf("RSI %.1f %s", r, label)})
	}

	if h, ok := macdHist.Get(); ok {
		v := vote{direction: models.SignalNeutral, reason: "MACD histogram flat"}
		switch {
		case h > 0:
			v = vote{models.SignalBuy, macdVote, "MACD histogram positive"}
		case h < 0:
			v = vote{models.SignalSell, macdVote, "MACD histogram negative"}
		}
		votes = append(votes, v)
	}

	for _, p := range chart {
		votes = append(votes, vote{
			direction: p.Direction,
			strength:  math.Min(maxVote, p.Strength),
			reason:    fmt.Sprintf("chart %s (%.0f)", p.Name, p.Strength),
		})
	}

	result := models.CompositeSignal{
		Direction:      models.SignalNeutral,
		Reasons:        []string{},
		PossibleWeight: maxVote * float64(len(votes)),
	}

	for _, v := range votes {
		switch v.direction {
		case models.SignalBuy:
			result.BuyWeight += v.strength
		case models.SignalSell:
			result.SellWeight += v.strength
		}
	}

	winning := 0.0
	switch {
	case result.BuyWeight > result.SellWeight:
		result.Direction = models.SignalBuy
		winning = result.BuyWeight
	case result.SellWeight > result.BuyWeight:
		result.Direction = models.SignalSell
		winning = result.SellWeight
	default:
		return result
	}

	if result.PossibleWeight > 0 {
		result.Strength = math.Max(0, math.Min(100, winning/result.PossibleWeight*100))
	}

	for _, v := range votes {
		if v.direction == result.Direction {
			result.Reasons = append(result.Reasons, v.reason)
		}
	}

	return result
}
