package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)

	second.RecordError(StageAdvisor)
	if got := testutil.ToFloat64(first.errorsTotal.WithLabelValues(StageAdvisor)); got != 1 {
		t.Errorf("errors seen through the first Metrics = %v, want 1", got)
	}
	if first.latency != second.latency {
		t.Error("histogram was registered twice instead of reused")
	}
}

func TestNew_DefaultRegistererTwice(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("second New() panicked: %v", r)
		}
	}()

	a := New(Options{Prices: fakePrices{}, Advisor: &fakeAdvisor{}})
	b := New(Options{Prices: fakePrices{}, Advisor: &fakeAdvisor{}})
	if a.metrics.recommendations != b.metrics.recommendations {
		t.Error("services on the default registerer should share collectors")
	}
}

func TestRegister_ConflictPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("register() accepted a collector with conflicting labels")
		}
	}()
	register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recommender_errors_total", Help: "Errors by pipeline stage"},
		[]string{"component"},
	))
}
