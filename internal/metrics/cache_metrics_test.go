package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCacheMetrics(t *testing.T) {
	m := NewCacheMetricsWithRegisterer(prometheus.NewRegistry())

	if m.hits == nil {
		t.Error("hits counter should not be nil")
	}
	if m.fetches == nil {
		t.Error("fetches counter should not be nil")
	}
	if m.coalesced == nil {
		t.Error("coalesced counter should not be nil")
	}
	if m.fetchDuration == nil {
		t.Error("fetchDuration histogram should not be nil")
	}
	if m.partitionSize == nil {
		t.Error("partitionSize gauge should not be nil")
	}
	if m.summarySize == nil {
		t.Error("summarySize gauge should not be nil")
	}
}

func TestCacheMetrics_Record(t *testing.T) {
	m := NewCacheMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordHit("pending")
	m.RecordHit("pending")
	m.RecordCoalesced("completed")
	m.RecordFetch("pending", FetchResultSuccess, 20*time.Millisecond)
	m.RecordFetch("pending", FetchResultError, time.Millisecond)
	m.SetPartitionSize("pending", 7)
	m.SetSummarySize(3)

	if got := counterValue(t, m.hits.WithLabelValues("pending")); got != 2 {
		t.Errorf("expected 2 hits, got %v", got)
	}
	if got := counterValue(t, m.coalesced.WithLabelValues("completed")); got != 1 {
		t.Errorf("expected 1 coalesced call, got %v", got)
	}
	if got := counterValue(t, m.fetches.WithLabelValues("pending", FetchResultError)); got != 1 {
		t.Errorf("expected 1 failed fetch, got %v", got)
	}
	if got := gaugeValue(t, m.partitionSize.WithLabelValues("pending")); got != 7 {
		t.Errorf("expected partition size 7, got %v", got)
	}
	if got := gaugeValue(t, m.summarySize); got != 3 {
		t.Errorf("expected summary size 3, got %v", got)
	}

	metric := &dto.Metric{}
	observer := m.fetchDuration.WithLabelValues("pending").(prometheus.Histogram)
	if err := observer.Write(metric); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if metric.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("expected 2 duration samples, got %d", metric.GetHistogram().GetSampleCount())
	}
}

func TestCacheMetrics_NilSafe(t *testing.T) {
	var m *CacheMetrics

	m.RecordHit("pending")
	m.RecordCoalesced("pending")
	m.RecordFetch("pending", FetchResultSuccess, time.Second)
	m.SetPartitionSize("pending", 1)
	m.SetSummarySize(1)
}

func TestCacheMetrics_AlreadyRegisteredReused(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := NewCacheMetricsWithRegisterer(registry)
	second := NewCacheMetricsWithRegisterer(registry)

	first.RecordHit("pending")
	if got := counterValue(t, second.hits.WithLabelValues("pending")); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := c.Write(metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return metric.GetGauge().GetValue()
}
