package guard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Alias1177/Recommender/models"
)

// Action is a variant-independent direction
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// Risk orders actions: hold is the safest, buy and sell are equally risky
func (a Action) Risk() int {
	if a == ActionHold {
		return 0
	}
	return 1
}

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "hold"
	}
}

// Vocabulary is the set of labels a variant uses for its actions
type Vocabulary struct {
	Buy  string
	Hold string
	Sell string
}

// Label returns the variant label for an action
func (v Vocabulary) Label(a Action) string {
	switch a {
	case ActionBuy:
		return v.Buy
	case ActionSell:
		return v.Sell
	default:
		return v.Hold
	}
}

// Parse maps a label onto an action. Unknown labels are rejected.
func (v Vocabulary) Parse(label string) (Action, error) {
	switch label {
	case v.Buy:
		return ActionBuy, nil
	case v.Hold:
		return ActionHold, nil
	case v.Sell:
		return ActionSell, nil
	}
	return ActionHold, fmt.Errorf("%w: direction %q is not one of %s", ErrMalformedCandidate, label, v.oneOf())
}

func (v Vocabulary) oneOf() string {
	return strings.Join([]string{v.Buy, v.Hold, v.Sell}, " ")
}

// Decision is the candidate as it moves through the chain
type Decision struct {
	Action         Action
	Confidence     float64
	Reason         string
	Caution        string
	SuggestedPrice float64
	SellFraction   float64
	Condition      string
	CriticalChange bool
	Annotations    []string
	Fired          []string
}

func decisionFrom(c models.Candidate, action Action) Decision {
	return Decision{
		Action:         action,
		Confidence:     c.Confidence,
		Reason:         c.Reason,
		Caution:        c.Caution,
		SuggestedPrice: c.SuggestedPrice,
		SellFraction:   c.SellFraction,
		Condition:      c.Condition,
		CriticalChange: c.CriticalChange,
	}
}

// annotate records a fired guard without touching the direction. Slices are
// copied so earlier decisions stay unchanged.
func (d Decision) annotate(name, note string) Decision {
	d.Annotations = append(d.Annotations[:len(d.Annotations):len(d.Annotations)], note)
	d.Fired = append(d.Fired[:len(d.Fired):len(d.Fired)], name)
	return d
}

// demote forces hold, replaces the reason with the note and drops the
// structured buy/sell fields.
func (d Decision) demote(name, note string) Decision {
	d = d.annotate(name, note)
	d.Action = ActionHold
	d.Reason = note
	d.SuggestedPrice = 0
	d.SellFraction = 0
	d.Condition = ""
	return d
}

func (d Decision) adjust(delta float64) Decision {
	d.Confidence = clamp01(d.Confidence + delta)
	return d
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Facts is the read-only evidence every guard sees
type Facts struct {
	Indicators models.IndicatorResult
	Composite  models.CompositeSignal
	Instrument models.InstrumentContext
	Thresholds Thresholds
	Volatility models.Reading
	PnL        models.Reading
	AsOf       time.Time
}

// Guard is one step of the override chain
type Guard struct {
	Name string
	// ShortTerm guards are skipped when the instrument was already surfaced today
	ShortTerm bool
	Apply     func(Facts, Decision) Decision
}

// Chain is an ordered list of guards folded left to right
type Chain []Guard

// Run folds the decision through every guard. A step that would raise risk
// or flip buy and sell is discarded.
func (c Chain) Run(f Facts, d Decision) Decision {
	skipShortTerm := f.Instrument.SurfacedToday
	if skipShortTerm {
		d = d.annotate(GuardSameDaySkip, "already surfaced today, short-term guards skipped")
	}

	for _, g := range c {
		if g.ShortTerm && skipShortTerm {
			continue
		}
		next := g.Apply(f, d)
		if next.Action != d.Action && next.Action.Risk() >= d.Action.Risk() {
			continue
		}
		next.Confidence = clamp01(next.Confidence)
		d = next
	}
	return d
}
