package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestSome(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"number", 1.5, true},
		{"zero", 0, true},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Some(tt.value); got.Valid != tt.valid {
				t.Errorf("Some(%v).Valid = %v, want %v", tt.value, got.Valid, tt.valid)
			}
		})
	}
}

func TestReadingAccessors(t *testing.T) {
	if v, ok := Some(3.14159).Get(); !ok || v != 3.14159 {
		t.Errorf("Get() = %v, %v", v, ok)
	}
	if _, ok := Unavailable.Get(); ok {
		t.Error("Unavailable.Get() reported a value")
	}
	if got := Some(3.14159).String(); got != "3.14" {
		t.Errorf("String() = %q, want 3.14", got)
	}
	if got := Unavailable.String(); got != "n/a" {
		t.Errorf("String() = %q, want n/a", got)
	}
}

func TestReadingJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Reading `json:"a"`
		B Reading `json:"b"`
	}{A: Some(12.5), B: Unavailable})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":12.5,"b":null}` {
		t.Errorf("got %s", out)
	}

	var r Reading
	if err := json.Unmarshal([]byte("null"), &r); err != nil || r.Valid {
		t.Errorf("null should decode to unavailable, got %v (%v)", r, err)
	}
}

func TestRiskProfileOrDefault(t *testing.T) {
	var ctx InstrumentContext
	if got := ctx.RiskProfileOrDefault(); got != DefaultRiskProfile() {
		t.Errorf("missing profile = %+v, want default", got)
	}

	ctx.Profile = &RiskProfile{Style: StyleAggressive}
	got := ctx.RiskProfileOrDefault()
	if got.Style != StyleAggressive || got.Period != PeriodMedium {
		t.Errorf("partial profile = %+v", got)
	}
}

func TestBarsForLookback(t *testing.T) {
	if got := BarsForLookback("1day", 100); got != 111 {
		t.Errorf("BarsForLookback(1day, 100) = %d, want 111", got)
	}
	if got := BarsForLookback("1week", 0); got < 1 {
		t.Errorf("BarsForLookback should never be below 1, got %d", got)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, start.AddDate(0, 0, 6)); got != 6 {
		t.Errorf("DaysBetween = %d, want 6", got)
	}
	if DayKey(start) != "2024-03-01" {
		t.Errorf("DayKey = %s", DayKey(start))
	}
}
