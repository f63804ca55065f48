package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Recommender/internal/analyze"
	"github.com/Alias1177/Recommender/internal/guard"
	"github.com/Alias1177/Recommender/models"
)

// Pipeline stages used in logs and metrics
const (
	StageHistory  = "history"
	StageContext  = "context"
	StageAdvisor  = "advisor"
	StageEvaluate = "evaluate"
	StageStore    = "store"
	StageNotify   = "notify"
)

// InstrumentRepository supplies the static instrument context and open positions
type InstrumentRepository interface {
	Instrument(ctx context.Context, ticker string) (models.InstrumentContext, error)
	Position(ctx context.Context, ticker string) (*models.Position, error)
}

// Options wires the collaborators. Prices and Advisor are required, the
// rest may be nil.
type Options struct {
	Prices      models.PriceHistoryProvider
	Advisor     models.NarrativeAdvisor
	Market      models.MarketProvider
	Sectors     models.SectorProvider
	Instruments InstrumentRepository
	Store       models.SurfacedStore
	Notifier    models.Notifier
	Thresholds  guard.Table
	Profile     models.RiskProfile
	Lookback    int
	Workers     int
	Registerer  prometheus.Registerer
	NewID       func() string
}

// Service runs provider, analysis, advisor and the guard engine for a ticker
type Service struct {
	opts    Options
	owned   *guard.Owned
	watch   *guard.Watch
	metrics *Metrics
	logger  zerolog.Logger
}

// New creates a Service
func New(opts Options) *Service {
	if opts.Lookback <= 0 {
		opts.Lookback = 120
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Profile == (models.RiskProfile{}) {
		opts.Profile = models.DefaultRiskProfile()
	}

	return &Service{
		opts:    opts,
		owned:   guard.NewOwned(opts.Thresholds),
		watch:   guard.NewWatch(opts.Thresholds),
		metrics: NewMetrics(opts.Registerer),
		logger:  log.With().Str("component", "recommender").Logger(),
	}
}

// Recommend produces the final recommendation for ticker. The owned variant
// is used when a position is open, the watch variant otherwise.
func (s *Service) Recommend(ctx context.Context, ticker string) (models.FinalRecommendation, error) {
	start := time.Now()
	logger := s.logger.With().Str("ticker", ticker).Logger()

	ic, err := s.instrument(ctx, ticker)
	if err != nil {
		s.metrics.RecordError(StageContext)
		return models.FinalRecommendation{}, err
	}

	historyStart := time.Now()
	bars, err := s.opts.Prices.History(ctx, ticker, s.opts.Lookback)
	s.metrics.RecordLatency(StageHistory, time.Since(historyStart).Seconds())
	if err != nil {
		s.metrics.RecordError(StageHistory)
		return models.FinalRecommendation{}, fmt.Errorf("price history %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		s.metrics.RecordError(StageHistory)
		return models.FinalRecommendation{}, fmt.Errorf("price history %s: %w", ticker, guard.ErrNoPriceHistory)
	}

	day := models.DayKey(bars[len(bars)-1].Date)
	s.enrich(ctx, &ic, day, logger)

	variant := guard.VariantWatch
	if ic.Position != nil {
		variant = guard.VariantOwned
	}

	adviseStart := time.Now()
	candidate, err := s.opts.Advisor.Advise(ctx, ticker, variant, analyze.Analyze(bars))
	s.metrics.RecordLatency(StageAdvisor, time.Since(adviseStart).Seconds())
	if err != nil {
		s.metrics.RecordError(StageAdvisor)
		return models.FinalRecommendation{}, fmt.Errorf("advisor %s: %w", ticker, err)
	}

	var rec models.FinalRecommendation
	if variant == guard.VariantOwned {
		rec, err = s.owned.Evaluate(ic, bars, candidate)
	} else {
		rec, err = s.watch.Evaluate(ic, bars, candidate)
	}
	if err != nil {
		s.metrics.RecordError(StageEvaluate)
		return models.FinalRecommendation{}, err
	}
	rec.ID = s.opts.NewID()
	s.metrics.recordRecommendation(rec.Variant, rec.Direction, candidate.Direction, rec.FiredGuards)

	logger.Info().
		Str("variant", rec.Variant).
		Str("proposed", candidate.Direction).
		Str("direction", rec.Direction).
		Float64("confidence", rec.Confidence).
		Strs("guards", rec.FiredGuards).
		Msg("Recommendation ready")

	if !ic.SurfacedToday {
		s.surface(ctx, day, rec, logger)
	}

	s.metrics.RecordLatency("total", time.Since(start).Seconds())
	return rec, nil
}

func (s *Service) instrument(ctx context.Context, ticker string) (models.InstrumentContext, error) {
	ic := models.InstrumentContext{Ticker: ticker, Profitable: true, MarketCap: models.MarketCapMid}
	if s.opts.Instruments != nil {
		var err error
		if ic, err = s.opts.Instruments.Instrument(ctx, ticker); err != nil {
			return ic, fmt.Errorf("instrument %s: %w", ticker, err)
		}
		pos, err := s.opts.Instruments.Position(ctx, ticker)
		if err != nil {
			return ic, fmt.Errorf("position %s: %w", ticker, err)
		}
		ic.Position = pos
	}
	ic.Profile = mergeProfile(ic.Profile, s.opts.Profile)
	return ic, nil
}

// mergeProfile fills the fields a stored profile leaves empty from fallback
func mergeProfile(stored *models.RiskProfile, fallback models.RiskProfile) *models.RiskProfile {
	merged := fallback
	if stored == nil {
		return &merged
	}
	if stored.Style != "" {
		merged.Style = stored.Style
	}
	if stored.Period != "" {
		merged.Period = stored.Period
	}
	if stored.Tolerance != "" {
		merged.Tolerance = stored.Tolerance
	}
	return &merged
}

// enrich fills market, sector and surfaced-today facts. These lookups are
// best effort: a failure leaves the fact unavailable and the guard skipped.
func (s *Service) enrich(ctx context.Context, ic *models.InstrumentContext, day string, logger zerolog.Logger) {
	ic.Market.Trend = models.TrendUnknown
	if s.opts.Market != nil {
		if market, err := s.opts.Market.Market(ctx); err != nil {
			s.metrics.RecordError(StageContext)
			logger.Warn().Err(err).Msg("Market snapshot unavailable")
		} else {
			ic.Market = market
		}
	}

	if s.opts.Sectors != nil && ic.SectorName != "" {
		if sector, err := s.opts.Sectors.Sector(ctx, ic.SectorName); err != nil {
			s.metrics.RecordError(StageContext)
			logger.Warn().Err(err).Str("sector", ic.SectorName).Msg("Sector snapshot unavailable")
		} else {
			ic.Sector = sector
		}
	}

	if s.opts.Store != nil {
		surfaced, err := s.opts.Store.WasSurfaced(ctx, ic.Ticker, day)
		if err != nil {
			s.metrics.RecordError(StageStore)
			logger.Warn().Err(err).Msg("Surfaced lookup failed")
		}
		ic.SurfacedToday = surfaced
	}
}

func (s *Service) surface(ctx context.Context, day string, rec models.FinalRecommendation, logger zerolog.Logger) {
	if s.opts.Store != nil {
		if err := s.opts.Store.MarkSurfaced(ctx, rec.Ticker, day, rec); err != nil {
			s.metrics.RecordError(StageStore)
			logger.Error().Err(err).Msg("Failed to mark recommendation as surfaced")
		}
	}
	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.Notify(ctx, rec); err != nil {
			s.metrics.RecordError(StageNotify)
			logger.Error().Err(err).Msg("Failed to notify")
		}
	}
}

// Result is the outcome for one ticker of a scan
type Result struct {
	Ticker         string
	Recommendation models.FinalRecommendation
	Err            error
}

// Scan recommends every ticker using a bounded number of workers. Results
// keep the order of tickers.
func (s *Service) Scan(ctx context.Context, tickers []string) []Result {
	results := make([]Result, len(tickers))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers && w < len(tickers); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := s.Recommend(ctx, tickers[i])
				results[i] = Result{Ticker: tickers[i], Recommendation: rec, Err: err}
			}
		}()
	}

	for i := range tickers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = Result{Ticker: tickers[i], Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
