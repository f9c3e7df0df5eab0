package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты загрузки партиции.
const (
	FetchResultSuccess = "success"
	FetchResultError   = "error"
)

// CacheMetrics содержит метрики кэша заказов.
// Все методы безопасны для nil-получателя: кэш без метрик просто ничего не пишет.
type CacheMetrics struct {
	hits      *prometheus.CounterVec
	fetches   *prometheus.CounterVec
	coalesced *prometheus.CounterVec

	fetchDuration *prometheus.HistogramVec

	partitionSize *prometheus.GaugeVec
	summarySize   prometheus.Gauge
}

// NewCacheMetrics создаёт метрики в DefaultRegisterer.
func NewCacheMetrics() *CacheMetrics {
	return NewCacheMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCacheMetricsWithRegisterer создаёт метрики в переданном реестре.
func NewCacheMetricsWithRegisterer(registerer prometheus.Registerer) *CacheMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CacheMetrics{
		hits: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kitchen_cache_hits_total",
			Help: "Reads served from a loaded partition without a remote call",
		}, []string{"partition"}),
		fetches: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kitchen_cache_fetches_total",
			Help: "Remote partition fetches grouped by result",
		}, []string{"partition", "result"}),
		coalesced: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kitchen_cache_coalesced_total",
			Help: "Callers that joined an in-flight fetch instead of issuing a new one",
		}, []string{"partition"}),
		fetchDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "kitchen_cache_fetch_duration_seconds",
			Help:    "Duration of remote partition fetches in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"partition"}),
		partitionSize: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "kitchen_cache_partition_orders",
			Help: "Number of orders currently held by a partition",
		}, []string{"partition"}),
		summarySize: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "kitchen_weekly_summary_products",
			Help: "Number of distinct products in the current weekly summary",
		}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordHit фиксирует чтение из загруженной партиции.
func (m *CacheMetrics) RecordHit(partition string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(partition).Inc()
}

// RecordCoalesced фиксирует вызов, присоединившийся к уже идущей загрузке.
func (m *CacheMetrics) RecordCoalesced(partition string) {
	if m == nil {
		return
	}
	m.coalesced.WithLabelValues(partition).Inc()
}

// RecordFetch фиксирует результат и длительность удалённой загрузки.
func (m *CacheMetrics) RecordFetch(partition, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(partition, result).Inc()
	m.fetchDuration.WithLabelValues(partition).Observe(duration.Seconds())
}

// SetPartitionSize обновляет число заказов в партиции.
func (m *CacheMetrics) SetPartitionSize(partition string, size int) {
	if m == nil {
		return
	}
	m.partitionSize.WithLabelValues(partition).Set(float64(size))
}

// SetSummarySize обновляет число продуктов в недельной сводке.
func (m *CacheMetrics) SetSummarySize(size int) {
	if m == nil {
		return
	}
	m.summarySize.Set(float64(size))
}
