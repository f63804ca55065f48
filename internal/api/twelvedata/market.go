package twelvedata

import (
	"context"
	"fmt"

	"github.com/Alias1177/Recommender/internal/analyze"
	"github.com/Alias1177/Recommender/models"
)

// snapshotLookback covers the 25-bar trend plus slope window
const snapshotLookback = 40

// Market builds market and sector snapshots from index or ETF bars
type Market struct {
	client   *Client
	symbol   string
	crashPct float64
	sectors  map[string]string
}

// NewMarket creates snapshot providers backed by client. symbol is the
// broad index, sectors maps sector names to their tracking symbols.
func NewMarket(client *Client, symbol string, crashPct float64, sectors map[string]string) *Market {
	return &Market{client: client, symbol: symbol, crashPct: crashPct, sectors: sectors}
}

// Market returns the broad market snapshot
func (m *Market) Market(ctx context.Context) (models.MarketSnapshot, error) {
	bars, err := m.client.History(ctx, m.symbol, snapshotLookback)
	if err != nil {
		return models.MarketSnapshot{Trend: models.TrendUnknown}, fmt.Errorf("market %s: %w", m.symbol, err)
	}
	return MarketSnapshot(bars, m.crashPct), nil
}

// Sector returns the snapshot for a sector. Unknown sectors yield an
// empty snapshot.
func (m *Market) Sector(ctx context.Context, sector string) (models.SectorSnapshot, error) {
	symbol, ok := m.sectors[sector]
	if !ok {
		return models.SectorSnapshot{}, nil
	}
	bars, err := m.client.History(ctx, symbol, snapshotLookback)
	if err != nil {
		return models.SectorSnapshot{}, fmt.Errorf("sector %s: %w", sector, err)
	}
	return SectorSnapshot(bars), nil
}

// MarketSnapshot summarizes index bars. A weekly drop at or below crashPct
// marks the market as crashing.
func MarketSnapshot(bars []models.PriceBar, crashPct float64) models.MarketSnapshot {
	indicators := analyze.Analyze(bars).Indicators
	weekly, ok := indicators.WeeklyChange.Get()
	return models.MarketSnapshot{
		Trend:        indicators.MediumTrend,
		Crashing:     ok && weekly <= crashPct,
		WeeklyChange: indicators.WeeklyChange,
	}
}

// SectorSnapshot summarizes sector bars. The score is the composite
// strength, negative when the composite points to sell.
func SectorSnapshot(bars []models.PriceBar) models.SectorSnapshot {
	analysis := analyze.Analyze(bars)
	snapshot := models.SectorSnapshot{WeeklyChange: analysis.Indicators.WeeklyChange}
	if len(bars) == 0 {
		return snapshot
	}

	score := analysis.Composite.Strength
	switch analysis.Composite.Direction {
	case models.SignalSell:
		score = -score
	case models.SignalNeutral:
		score = 0
	}
	snapshot.Score = models.Some(score)
	return snapshot
}
