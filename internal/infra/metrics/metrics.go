package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RecordsSaved   *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	SinkErrors     *prometheus.CounterVec
	SinkDuration   *prometheus.HistogramVec
}

// New создаёт отдельный реестр, чтобы тесты не конфликтовали с глобальным.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_records_saved_total",
			Help: "Inventory records appended to the sink.",
		}, []string{"store"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_records_skipped_total",
			Help: "Entries dropped because both stock and purchase were zero.",
		}, []string{"store"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_sink_errors_total",
			Help: "Failed sink operations.",
		}, []string{"op"}),
		SinkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_sink_duration_seconds",
			Help:    "Sink operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RecordsSaved, m.RecordsSkipped, m.SinkErrors, m.SinkDuration,
	)
	return m
}

// ObserveSink учитывает длительность и ошибку операции с хранилищем.
func (m *Metrics) ObserveSink(op string, started time.Time, err error) {
	m.SinkDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.SinkErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
