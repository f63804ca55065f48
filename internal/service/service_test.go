package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Alias1177/Recommender/internal/cache"
	"github.com/Alias1177/Recommender/internal/guard"
	"github.com/Alias1177/Recommender/models"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// risingBars climb from 100 to 130 over 30 sessions
func risingBars() []models.PriceBar {
	bars := make([]models.PriceBar, 30)
	prev := 100.0
	for i := range bars {
		c := 100 + 30*float64(i)/29
		bars[i] = models.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Open:  prev,
			High:  math.Max(prev, c) + 0.2,
			Low:   math.Min(prev, c) - 0.2,
			Close: c,
		}
		prev = c
	}
	return bars
}

type fakePrices map[string][]models.PriceBar

func (f fakePrices) History(_ context.Context, ticker string, _ int) ([]models.PriceBar, error) {
	bars, ok := f[ticker]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return bars, nil
}

type fakeAdvisor struct {
	mu         sync.Mutex
	candidates map[string]models.Candidate
	variants   map[string]string
	err        error
}

func (f *fakeAdvisor) Advise(_ context.Context, ticker, variant string, _ models.Analysis) (models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.variants == nil {
		f.variants = map[string]string{}
	}
	f.variants[ticker] = variant
	return f.candidates[ticker], f.err
}

type fakeRepo struct {
	positions map[string]*models.Position
	profiles  map[string]*models.RiskProfile
}

func (f fakeRepo) Instrument(_ context.Context, ticker string) (models.InstrumentContext, error) {
	return models.InstrumentContext{Ticker: ticker, Profitable: true, SectorName: "Tech", Profile: f.profiles[ticker]}, nil
}

func (f fakeRepo) Position(_ context.Context, ticker string) (*models.Position, error) {
	return f.positions[ticker], nil
}

type fakeMarket struct{ err error }

func (f fakeMarket) Market(context.Context) (models.MarketSnapshot, error) {
	return models.MarketSnapshot{Trend: models.TrendUp, WeeklyChange: models.Some(1)}, f.err
}

type recordingNotifier struct {
	mu   sync.Mutex
	recs []models.FinalRecommendation
}

func (r *recordingNotifier) Notify(_ context.Context, rec models.FinalRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

type fixture struct {
	svc      *Service
	reg      *prometheus.Registry
	advisor  *fakeAdvisor
	store    *cache.MemoryStore
	notifier *recordingNotifier
}

func newFixture(market models.MarketProvider) fixture {
	f := fixture{
		reg: prometheus.NewRegistry(),
		advisor: &fakeAdvisor{candidates: map[string]models.Candidate{
			"HOT": {Direction: "buy", Confidence: 0.7, Reason: "momentum"},
			"OWN": {Direction: "sell", Confidence: 0.9, Reason: "take profit"},
		}},
		store:    cache.NewMemoryStore(),
		notifier: &recordingNotifier{},
	}
	f.svc = New(Options{
		Prices:      fakePrices{"HOT": risingBars(), "OWN": risingBars()},
		Advisor:     f.advisor,
		Market:      market,
		Instruments: fakeRepo{positions: map[string]*models.Position{"OWN": {EntryPrice: 125, EntryDate: start, Quantity: 10}}},
		Store:       f.store,
		Notifier:    f.notifier,
		Registerer:  f.reg,
		NewID:       func() string { return "rec-1" },
	})
	return f
}

func TestService_RecommendWatch(t *testing.T) {
	f := newFixture(fakeMarket{})
	ctx := context.Background()

	rec, err := f.svc.Recommend(ctx, "HOT")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.ID != "rec-1" || rec.Variant != guard.VariantWatch || rec.Direction != "stay" {
		t.Errorf("rec = %s/%s/%s", rec.ID, rec.Variant, rec.Direction)
	}
	if f.advisor.variants["HOT"] != guard.VariantWatch {
		t.Errorf("advisor asked for %q", f.advisor.variants["HOT"])
	}

	day := models.DayKey(start.AddDate(0, 0, 29))
	if stored, ok := f.store.Get("HOT", day); !ok || stored.ID != "rec-1" {
		t.Errorf("store = %+v, %v", stored, ok)
	}
	if len(f.notifier.recs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.recs))
	}

	if got := testutil.ToFloat64(f.svc.metrics.recommendations.WithLabelValues("watch", "stay")); got != 1 {
		t.Errorf("recommendations metric = %v", got)
	}
	if got := testutil.ToFloat64(f.svc.metrics.overrides.WithLabelValues("watch")); got != 1 {
		t.Errorf("overrides metric = %v", got)
	}
	if got := testutil.ToFloat64(f.svc.metrics.guardsFired.WithLabelValues(guard.GuardOverheat)); got != 1 {
		t.Errorf("guards metric = %v", got)
	}

	// the same day again: short-term guards are skipped and nobody is notified twice
	rec, err = f.svc.Recommend(ctx, "HOT")
	if err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}
	if rec.Direction != "buy" {
		t.Errorf("second direction = %s, want buy", rec.Direction)
	}
	if len(f.notifier.recs) != 1 {
		t.Errorf("notifications = %d, want still 1", len(f.notifier.recs))
	}
}

func TestService_RecommendOwned(t *testing.T) {
	f := newFixture(nil)

	rec, err := f.svc.Recommend(context.Background(), "OWN")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Variant != guard.VariantOwned || f.advisor.variants["OWN"] != guard.VariantOwned {
		t.Fatalf("variant = %s", rec.Variant)
	}
	if rec.Direction != "hold" {
		t.Errorf("direction = %s, want hold (uptrend protects the position)", rec.Direction)
	}
}

func TestService_Errors(t *testing.T) {
	f := newFixture(nil)

	if _, err := f.svc.Recommend(context.Background(), "MISSING"); err == nil {
		t.Error("Recommend() error = nil for unknown symbol")
	}
	if got := testutil.ToFloat64(f.svc.metrics.errorsTotal.WithLabelValues(StageHistory)); got != 1 {
		t.Errorf("history errors = %v", got)
	}

	f.advisor.err = errors.New("rate limited")
	if _, err := f.svc.Recommend(context.Background(), "HOT"); err == nil {
		t.Error("Recommend() error = nil for advisor failure")
	}
	if len(f.notifier.recs) != 0 {
		t.Error("failed recommendations must not be surfaced")
	}
}

func TestService_MalformedCandidate(t *testing.T) {
	f := newFixture(nil)
	f.advisor.candidates["HOT"] = models.Candidate{Direction: "hold", Confidence: 0.5}

	_, err := f.svc.Recommend(context.Background(), "HOT")
	if !errors.Is(err, guard.ErrMalformedCandidate) {
		t.Errorf("Recommend() error = %v, want ErrMalformedCandidate", err)
	}
}

func TestService_MarketFailureDegrades(t *testing.T) {
	f := newFixture(fakeMarket{err: errors.New("timeout")})

	if _, err := f.svc.Recommend(context.Background(), "HOT"); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := testutil.ToFloat64(f.svc.metrics.errorsTotal.WithLabelValues(StageContext)); got != 1 {
		t.Errorf("context errors = %v", got)
	}
}

func TestService_Scan(t *testing.T) {
	f := newFixture(nil)
	tickers := []string{"HOT", "MISSING", "OWN"}

	results := f.svc.Scan(context.Background(), tickers)
	if len(results) != len(tickers) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Ticker != tickers[i] {
			t.Errorf("result %d ticker = %s, want %s", i, r.Ticker, tickers[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("MISSING should fail")
	}
}

// reboundBars hold at 125, slide to 100 and recover to 125 within a week:
// +25% weekly change, about 4% above the 25-day average and a neutral RSI
func reboundBars() []models.PriceBar {
	closes := []float64{
		125, 125, 125, 125, 125, 125, 125, 125, 125, 125,
		125, 125, 125, 125, 125, 125, 125, 125, 125, 125,
		120, 115, 110, 105, 100,
		105, 110, 115, 120, 125,
	}
	bars := make([]models.PriceBar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Open:  prev,
			High:  math.Max(prev, c),
			Low:   math.Min(prev, c),
			Close: c,
		}
		prev = c
	}
	return bars
}

func TestService_PartialStoredProfile(t *testing.T) {
	tests := []struct {
		name       string
		configured models.Style
		direction  string
		surge      bool
	}{
		{name: "conservative surge limit applies", configured: models.StyleConservative, direction: "stay", surge: true},
		{name: "balanced surge limit is not reached", configured: models.StyleBalanced, direction: "buy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(Options{
				Prices: fakePrices{"JUMP": reboundBars()},
				Advisor: &fakeAdvisor{candidates: map[string]models.Candidate{
					"JUMP": {Direction: "buy", Confidence: 0.7, Reason: "recovery"},
				}},
				Market: fakeMarket{},
				Instruments: fakeRepo{profiles: map[string]*models.RiskProfile{
					"JUMP": {Period: models.PeriodLong},
				}},
				Store:      cache.NewMemoryStore(),
				Profile:    models.RiskProfile{Style: tt.configured, Period: models.PeriodShort, Tolerance: models.ToleranceLow},
				Registerer: prometheus.NewRegistry(),
			})

			rec, err := svc.Recommend(context.Background(), "JUMP")
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if rec.Direction != tt.direction {
				t.Errorf("direction = %s, want %s (fired %v)", rec.Direction, tt.direction, rec.FiredGuards)
			}
			fired := false
			for _, g := range rec.FiredGuards {
				fired = fired || g == guard.GuardSurge
			}
			if fired != tt.surge {
				t.Errorf("surge fired = %v, want %v (fired %v)", fired, tt.surge, rec.FiredGuards)
			}
		})
	}
}

func TestMergeProfile(t *testing.T) {
	configured := models.RiskProfile{Style: models.StyleConservative, Period: models.PeriodShort, Tolerance: models.ToleranceLow}

	tests := []struct {
		name   string
		stored *models.RiskProfile
		want   models.RiskProfile
	}{
		{name: "nothing stored", want: configured},
		{
			name:   "period only",
			stored: &models.RiskProfile{Period: models.PeriodLong},
			want:   models.RiskProfile{Style: models.StyleConservative, Period: models.PeriodLong, Tolerance: models.ToleranceLow},
		},
		{
			name:   "style only",
			stored: &models.RiskProfile{Style: models.StyleAggressive},
			want:   models.RiskProfile{Style: models.StyleAggressive, Period: models.PeriodShort, Tolerance: models.ToleranceLow},
		},
		{
			name:   "complete",
			stored: &models.RiskProfile{Style: models.StyleBalanced, Period: models.PeriodMedium, Tolerance: models.ToleranceHigh},
			want:   models.RiskProfile{Style: models.StyleBalanced, Period: models.PeriodMedium, Tolerance: models.ToleranceHigh},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeProfile(tt.stored, configured)
			if got == nil || *got != tt.want {
				t.Errorf("mergeProfile() = %+v, want %+v", got, tt.want)
			}
			if tt.stored != nil && got == tt.stored {
				t.Error("mergeProfile() must not alias the stored profile")
			}
		})
	}
}
