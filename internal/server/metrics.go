package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type metrics struct {
	registry *prometheus.Registry
	uploads  *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Counter
}

// newMetrics uses a private registry so several servers can coexist in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weektable",
			Name:      "uploads_total",
			Help:      "Uploaded workbooks by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weektable",
			Name:      "upload_duration_seconds",
			Help:      "Time spent storing and parsing an upload.",
			Buckets:   prometheus.DefBuckets,
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weektable",
			Name:      "upload_rows_total",
			Help:      "Rows returned from parsed uploads.",
		}),
	}
	m.registry.MustRegister(
		m.uploads,
		m.duration,
		m.rows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observeUpload(outcome string, start time.Time, rows int) {
	m.uploads.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(start).Seconds())
	m.rows.Add(float64(rows))
}

func (m *metrics) handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
