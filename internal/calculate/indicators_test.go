package calculate

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/Recommender/models"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// randomWalk produces a deterministic positive price series
func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	price := 100.0
	for i := range values {
		price *= 1 + (r.Float64()-0.5)*0.04
		values[i] = price
	}
	return values
}

func linear(n int, from, to float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return values
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   models.Reading
	}{
		{"empty", nil, 5, models.Unavailable},
		{"short window", []float64{1, 2, 3}, 5, models.Unavailable},
		{"zero period", []float64{1, 2, 3}, 0, models.Unavailable},
		{"exact window", []float64{10, 11, 12, 13, 14}, 5, models.Some(12)},
		{"latest window only", []float64{10, 11, 12, 13, 14, 15, 16}, 5, models.Some(14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.values, tt.period)
			if got.Valid != tt.want.Valid {
				t.Fatalf("SMA() valid = %v, want %v", got.Valid, tt.want.Valid)
			}
			if got.Valid {
				assertClose(t, "SMA", got.Value, tt.want.Value, 1e-9)
			}
		})
	}
}

func TestSMA_MatchesTalib(t *testing.T) {
	values := randomWalk(120, 1)
	for _, period := range []int{5, 25, 75} {
		want := talib.Sma(values, period)
		for end := period; end <= len(values); end++ {
			got := SMA(values[:end], period)
			if !got.Valid {
				t.Fatalf("SMA(%d) unavailable at %d", period, end)
			}
			assertClose(t, "SMA", got.Value, want[end-1], 1e-9)
		}
	}
}

func TestEMA_MatchesTalib(t *testing.T) {
	values := randomWalk(120, 2)
	for _, period := range []int{12, 26} {
		want := talib.Ema(values, period)
		series := EMASeries(values, period)
		for i := range values {
			if i < period-1 {
				if series[i].Valid {
					t.Fatalf("EMA(%d) available before warm-up at %d", period, i)
				}
				continue
			}
			assertClose(t, "EMA", series[i].Value, want[i], 1e-9)
		}
	}
}

func TestEMA_SeedIsSMA(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	got := EMA(values[:3], 3)
	assertClose(t, "seed", got.Value, 4, 1e-12)

	// k = 0.5: (8-4)*0.5+4 = 6, (10-6)*0.5+6 = 8
	got = EMA(values, 3)
	assertClose(t, "EMA", got.Value, 8, 1e-12)
}

func TestRSI_KnownValues(t *testing.T) {
	closes := []float64{
		44.3389, 44.0902, 44.1497, 43.6124, 44.3278, 44.8264, 45.0955, 45.4245,
		45.8433, 46.0826, 45.8931, 46.0328, 45.6140, 46.2820, 46.2820,
	}

	got := RSI(closes, 14)
	if !got.Valid {
		t.Fatal("RSI unavailable with period+1 values")
	}
	assertClose(t, "RSI first value", got.Value, 70.53, 0.01)

	got = RSI(append(closes, 46.0028), 14)
	assertClose(t, "RSI smoothed", got.Value, 66.32, 0.01)

	if RSI(closes[:14], 14).Valid {
		t.Error("RSI should be unavailable with only period values")
	}
}

func TestRSI_MatchesTalib(t *testing.T) {
	values := randomWalk(100, 3)
	want := talib.Rsi(values, RSIPeriod)
	for end := RSIPeriod + 1; end <= len(values); end++ {
		got := RSI(values[:end], RSIPeriod)
		assertClose(t, "RSI", got.Value, want[end-1], 1e-6)
	}
}

func TestRSI_NoLossIsHundred(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"strictly rising", linear(30, 100, 130)},
		{"non-decreasing with plateaus", []float64{1, 1, 2, 2, 3, 3, 3, 4, 5, 5, 6, 7, 7, 8, 9, 9, 10}},
		{"flat", linear(20, 50, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.values, 14)
			if !got.Valid || got.Value != 100 {
				t.Errorf("RSI() = %v, want 100", got)
			}
		})
	}
}

func TestRSI_Bounds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		values := randomWalk(60, seed)
		for end := 1; end <= len(values); end++ {
			got := RSI(values[:end], 14)
			if got.Valid && (got.Value < 0 || got.Value > 100) {
				t.Fatalf("seed %d end %d: RSI %v out of bounds", seed, end, got.Value)
			}
		}
	}

	falling := linear(30, 130, 100)
	if got := RSI(falling, 14); !got.Valid || got.Value != 0 {
		t.Errorf("RSI(falling) = %v, want 0", got)
	}
}

func TestMACD_WarmUp(t *testing.T) {
	tests := []struct {
		name       string
		bars       int
		wantLine   bool
		wantSignal bool
	}{
		{"25 bars", 25, false, false},
		{"26 bars", 26, true, false},
		{"33 bars", 33, true, false},
		{"34 bars", 34, true, true},
		{"60 bars", 60, true, true},
	}

	values := randomWalk(60, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MACD(values[:tt.bars])
			if got.Line.Valid != tt.wantLine {
				t.Errorf("line valid = %v, want %v", got.Line.Valid, tt.wantLine)
			}
			if got.Signal.Valid != tt.wantSignal || got.Histogram.Valid != tt.wantSignal {
				t.Errorf("signal/histogram valid = %v/%v, want %v", got.Signal.Valid, got.Histogram.Valid, tt.wantSignal)
			}
		})
	}
}

func TestMACD_Components(t *testing.T) {
	values := randomWalk(80, 5)
	got := MACD(values)

	fast := EMA(values, 12)
	slow := EMA(values, 26)
	assertClose(t, "line", got.Line.Value, fast.Value-slow.Value, 1e-9)
	assertClose(t, "histogram", got.Histogram.Value, got.Line.Value-got.Signal.Value, 1e-12)

	if res := MACDWith(values, 26, 12, 9); res.Line.Valid {
		t.Error("MACDWith should reject fast >= slow")
	}
}

func TestDeviationRate(t *testing.T) {
	flat := linear(30, 100, 100)
	got := DeviationRate(flat, 25)
	assertClose(t, "flat", got.Value, 0, 1e-12)

	drop := append(linear(30, 100, 100), 75)
	// SMA25 = (24*100+75)/25 = 99
	got = DeviationRate(drop, 25)
	assertClose(t, "drop", got.Value, (75-99.0)/99.0*100, 1e-9)

	if DeviationRate(flat[:24], 25).Valid {
		t.Error("deviation should be unavailable below the SMA window")
	}
	if DeviationRate(linear(25, 0, 0), 25).Valid {
		t.Error("deviation should be unavailable for a zero SMA")
	}
}

func TestBands(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := Bands(values, 8, 2)
	// mean 5, population sd 2
	assertClose(t, "middle", got.Middle.Value, 5, 1e-12)
	assertClose(t, "upper", got.Upper.Value, 9, 1e-12)
	assertClose(t, "lower", got.Lower.Value, 1, 1e-12)

	short := Bands(values[:5], 8, 2)
	if short.Upper.Valid || short.Middle.Valid || short.Lower.Valid {
		t.Error("bands should be all unavailable below the window")
	}
}

func TestPercentChange(t *testing.T) {
	values := []float64{100, 90, 95, 100, 110, 125, 132}
	got := WeeklyChange(values)
	assertClose(t, "weekly", got.Value, 46.666667, 1e-6)

	if WeeklyChange(values[:5]).Valid {
		t.Error("weekly change needs six values")
	}
	if PercentChange([]float64{0, 1}, 1).Valid {
		t.Error("zero base should be unavailable")
	}
}

func TestRealizedVolatility(t *testing.T) {
	if got := RealizedVolatility(linear(30, 100, 100), 20); !got.Valid || got.Value != 0 {
		t.Errorf("flat volatility = %v, want 0", got)
	}
	if RealizedVolatility(linear(20, 100, 110), 20).Valid {
		t.Error("volatility needs window+1 values")
	}

	calm := RealizedVolatility(randomWalk(60, 6), 20)
	values := randomWalk(60, 6)
	for i := range values {
		if i%2 == 0 {
			values[i] *= 1.1
		}
	}
	wild := RealizedVolatility(values, 20)
	if !(wild.Value > calm.Value) {
		t.Errorf("expected choppier series to be more volatile: %v <= %v", wild.Value, calm.Value)
	}
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   models.Trend
	}{
		{"rising", linear(40, 100, 140), models.TrendUp},
		{"falling", linear(40, 140, 100), models.TrendDown},
		{"flat", linear(40, 100, 100), models.TrendFlat},
		{"too short", linear(20, 100, 140), models.TrendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendOf(tt.values, 25); got != tt.want {
				t.Errorf("TrendOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := randomWalk(80, 7)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}

	got := Compute(bars)
	if got.Close != closes[len(closes)-1] {
		t.Errorf("Close = %v, want %v", got.Close, closes[len(closes)-1])
	}
	for name, r := range map[string]models.Reading{
		"rsi": got.RSI, "macd": got.MACD.Histogram, "sma75": got.SMA75,
		"deviation": got.Deviation, "weekly": got.WeeklyChange, "volatility": got.Volatility,
	} {
		if !r.Valid {
			t.Errorf("%s unavailable with 80 bars", name)
		}
	}
	if got.LongTrend == models.TrendUnknown {
		t.Error("long trend should be known with 80 bars")
	}

	// deterministic
	again := Compute(bars)
	if again.RSI != got.RSI || again.MACD != got.MACD || again.Deviation != got.Deviation {
		t.Error("Compute is not deterministic")
	}

	empty := Compute(nil)
	if empty.RSI.Valid || empty.MediumTrend != models.TrendUnknown {
		t.Error("empty input should yield an unavailable snapshot")
	}
}
