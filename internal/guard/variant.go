package guard

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Recommender/internal/analyze"
	"github.com/Alias1177/Recommender/internal/calculate"
	"github.com/Alias1177/Recommender/models"
)

// Variant names
const (
	VariantOwned = "owned"
	VariantWatch = "watch"
)

var (
	// OwnedVocabulary labels recommendations for held positions
	OwnedVocabulary = Vocabulary{Buy: "buy", Hold: "hold", Sell: "sell"}
	// WatchVocabulary labels recommendations for watch-list instruments
	WatchVocabulary = Vocabulary{Buy: "buy", Hold: "stay", Sell: "avoid"}
)

var validate = validator.New()

// engine is shared by both variants; they differ only in vocabulary and chain
type engine struct {
	variant string
	vocab   Vocabulary
	chain   Chain
	table   Table
	logger  zerolog.Logger
}

func newEngine(variant string, vocab Vocabulary, chain Chain, table Table) engine {
	if len(table) == 0 {
		table = DefaultTable()
	}
	return engine{
		variant: variant,
		vocab:   vocab,
		chain:   chain,
		table:   table,
		logger:  log.With().Str("component", "guard_"+variant).Logger(),
	}
}

// Owned evaluates candidates for positions the user already holds
type Owned struct {
	engine engine
}

// NewOwned creates the owned-position engine. A nil table uses DefaultTable.
func NewOwned(table Table) *Owned {
	return &Owned{engine: newEngine(VariantOwned, OwnedVocabulary, OwnedChain(), table)}
}

// Evaluate corrects an owned-position candidate
func (o *Owned) Evaluate(ic models.InstrumentContext, bars []models.PriceBar, c models.Candidate) (models.FinalRecommendation, error) {
	return o.engine.evaluate(ic, bars, c)
}

// Watch evaluates candidates for instruments the user does not own
type Watch struct {
	engine engine
}

// NewWatch creates the watch-list engine. A nil table uses DefaultTable.
func NewWatch(table Table) *Watch {
	return &Watch{engine: newEngine(VariantWatch, WatchVocabulary, WatchChain(), table)}
}

// Evaluate corrects a watch-list candidate. Any position on the context is ignored.
func (w *Watch) Evaluate(ic models.InstrumentContext, bars []models.PriceBar, c models.Candidate) (models.FinalRecommendation, error) {
	ic.Position = nil
	return w.engine.evaluate(ic, bars, c)
}

// checkCandidate enforces the advisor contract
func (e engine) checkCandidate(c models.Candidate) (Action, error) {
	if err := validate.Var(c.Direction, "oneof="+e.vocab.oneOf()); err != nil {
		return ActionHold, fmt.Errorf("%w: direction %q is not one of %s", ErrMalformedCandidate, c.Direction, e.vocab.oneOf())
	}
	if err := validate.Struct(c); err != nil {
		return ActionHold, fmt.Errorf("%w: %v", ErrMalformedCandidate, err)
	}
	return e.vocab.Parse(c.Direction)
}

func (e engine) evaluate(ic models.InstrumentContext, bars []models.PriceBar, c models.Candidate) (models.FinalRecommendation, error) {
	if len(bars) == 0 {
		return models.FinalRecommendation{}, fmt.Errorf("%s %s: %w", e.variant, ic.Ticker, ErrNoPriceHistory)
	}

	action, err := e.checkCandidate(c)
	if err != nil {
		return models.FinalRecommendation{}, fmt.Errorf("%s %s: %w", e.variant, ic.Ticker, err)
	}

	analysis := analyze.Analyze(bars)
	profile := ic.RiskProfileOrDefault()
	facts := Facts{
		Indicators: analysis.Indicators,
		Composite:  analysis.Composite,
		Instrument: ic,
		Thresholds: e.table.For(profile.Style),
		Volatility: ic.Volatility,
		AsOf:       bars[len(bars)-1].Date,
	}
	if !facts.Volatility.Valid {
		facts.Volatility = analysis.Indicators.Volatility
	}
	if pos := ic.Position; pos != nil && pos.EntryPrice > 0 {
		facts.PnL = models.Some((analysis.Indicators.Close - pos.EntryPrice) / pos.EntryPrice * 100)
	}

	d := e.chain.Run(facts, decisionFrom(c, action))
	timing := ClassifyTiming(d.Action, calculate.Closes(bars), analysis.Indicators.RSI, SMAPeriodFor(profile.Period))

	if correctedBy(d.Fired) {
		e.logger.Debug().
			Str("ticker", ic.Ticker).
			Str("from", c.Direction).
			Str("to", e.vocab.Label(d.Action)).
			Strs("guards", d.Fired).
			Msg("Guards fired")
	}

	return models.FinalRecommendation{
		Variant:        e.variant,
		Ticker:         ic.Ticker,
		Direction:      e.vocab.Label(d.Action),
		Confidence:     d.Confidence,
		Reason:         d.Reason,
		Caution:        d.Caution,
		SuggestedPrice: d.SuggestedPrice,
		SellFraction:   d.SellFraction,
		Condition:      d.Condition,
		Original:       c,
		Annotations:    d.Annotations,
		FiredGuards:    d.Fired,
		Timing:         timing,
		Composite:      analysis.Composite,
		Indicators:     analysis.Indicators,
		AsOf:           facts.AsOf,
	}, nil
}

// correctedBy reports whether any guard other than the same-day skip marker fired
func correctedBy(fired []string) bool {
	for _, g := range fired {
		if g != GuardSameDaySkip {
			return true
		}
	}
	return false
}
