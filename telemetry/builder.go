package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Builder registers namespaced collectors on one registry
type Builder struct {
	reg       prometheus.Registerer
	namespace string
}

func NewBuilder(reg prometheus.Registerer, namespace string) *Builder {
	return &Builder{reg: reg, namespace: namespace}
}

func (b *Builder) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: b.namespace, Name: name, Help: help}, labels)
	b.reg.MustRegister(c)
	return c
}

func (b *Builder) Histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: b.namespace, Name: name, Help: help, Buckets: buckets}, labels)
	b.reg.MustRegister(h)
	return h
}

func (b *Builder) Gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: b.namespace, Name: name, Help: help}, labels)
	b.reg.MustRegister(g)
	return g
}

// RequestMetrics is the total/duration/errors triple shared by every client-side metric set
type RequestMetrics struct {
	Total    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Errors   *prometheus.CounterVec
}

func (b *Builder) NewRequestMetrics(prefix string, buckets []float64, labels ...string) *RequestMetrics {
	return &RequestMetrics{
		Total:    b.Counter(prefix+"_total", "Total number of "+prefix, labels...),
		Duration: b.Histogram(prefix+"_duration_seconds", prefix+" duration distribution", buckets, labels...),
		Errors:   b.Counter(prefix+"_errors_total", "Total number of failed "+prefix, labels...),
	}
}

func (m *RequestMetrics) Record(elapsed time.Duration, err error, labels ...string) {
	m.Total.WithLabelValues(labels...).Inc()
	m.Duration.WithLabelValues(labels...).Observe(elapsed.Seconds())
	if err != nil {
		m.Errors.WithLabelValues(labels...).Inc()
	}
}
