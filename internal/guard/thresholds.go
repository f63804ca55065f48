package guard

import "github.com/Alias1177/Recommender/models"

// Fixed guard constants
const (
	VetoStrength        = 70.0
	ConfidenceFloor     = 0.8
	VetoMinConfidence   = 0.5
	DeclinePenalty      = 0.10
	OverheatPenalty     = 0.15
	MaxOversoldBonus    = 0.10
	HighVolatilityPct   = 50.0
	LowVolatilityPct    = 30.0
	LossFloorPct        = -15.0
	RecentPurchaseDays  = 7
	RelativeStrengthPts = 3.0
)

// Thresholds holds the style-dependent guard thresholds, all in percent.
// SurgePct may only be zero when SurgeDisabled is set.
type Thresholds struct {
	DeclinePct    float64 `yaml:"decline_pct" validate:"lt=0"`
	SurgePct      float64 `yaml:"surge_pct" validate:"required_unless=SurgeDisabled true,omitempty,gt=0"`
	SurgeDisabled bool    `yaml:"surge_disabled"`
	OverheatPct   float64 `yaml:"overheat_pct" validate:"gt=0"`
	OversoldPct   float64 `yaml:"oversold_pct" validate:"lt=0"`
	PanicPct      float64 `yaml:"panic_pct" validate:"lt=0"`
}

// Table maps a risk style to its thresholds
type Table map[models.Style]Thresholds

// DefaultTable returns the built-in thresholds. Balanced is the default row.
func DefaultTable() Table {
	return Table{
		models.StyleConservative: {
			DeclinePct:  -15,
			SurgePct:    20,
			OverheatPct: 8,
			OversoldPct: -10,
			PanicPct:    -20,
		},
		models.StyleBalanced: {
			DeclinePct:  -20,
			SurgePct:    30,
			OverheatPct: 10,
			OversoldPct: -10,
			PanicPct:    -20,
		},
		models.StyleAggressive: {
			DeclinePct:    -25,
			SurgeDisabled: true,
			OverheatPct:   15,
			OversoldPct:   -12,
			PanicPct:      -20,
		},
	}
}

// For returns the row for style, falling back to the balanced row
func (t Table) For(style models.Style) Thresholds {
	if row, ok := t[style]; ok {
		return row
	}
	if row, ok := t[models.StyleBalanced]; ok {
		return row
	}
	return DefaultTable()[models.StyleBalanced]
}
