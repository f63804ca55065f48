package models

import "context"

// PriceHistoryProvider returns oldest-first daily bars covering lookback trading days
type PriceHistoryProvider interface {
	History(ctx context.Context, ticker string, lookback int) ([]PriceBar, error)
}

// NarrativeAdvisor proposes a candidate recommendation for an analysis
type NarrativeAdvisor interface {
	Advise(ctx context.Context, ticker string, variant string, analysis Analysis) (Candidate, error)
}

// MarketProvider returns the broad market snapshot
type MarketProvider interface {
	Market(ctx context.Context) (MarketSnapshot, error)
}

// SectorProvider returns the snapshot for a sector
type SectorProvider interface {
	Sector(ctx context.Context, sector string) (SectorSnapshot, error)
}

// SurfacedStore remembers which tickers were already surfaced on a given day
type SurfacedStore interface {
	WasSurfaced(ctx context.Context, ticker string, day string) (bool, error)
	MarkSurfaced(ctx context.Context, ticker string, day string, rec FinalRecommendation) error
}

// Notifier delivers final recommendations to users
type Notifier interface {
	Notify(ctx context.Context, rec FinalRecommendation) error
}
