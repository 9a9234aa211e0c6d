package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses (2s - 15s) ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// --- Gateway timeouts ---
	20000, 30000, 60000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "histogram":
		metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "summary":
		metric = prometheus.NewSummary(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	}
	return metric
}

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var MetricsPaymentOutcome = &Metric{
	ID:          "payOutcome",
	Name:        "payment_outcome_total",
	Description: "Membership payment operations partitioned by operation and outcome.",
	Type:        "counter_vec",
	Args:        []string{"operation", "outcome"},
}

const (
	RefererKey = "X-Referer"
)

// Recorder records business metrics for the payment flows. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	dur      *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewRecorder registers the business metrics on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	dur := NewMetric(MetricsBusinessProcess, "memberpay").(*prometheus.HistogramVec)
	outcomes := NewMetric(MetricsPaymentOutcome, "memberpay").(*prometheus.CounterVec)
	for _, c := range []prometheus.Collector{dur, outcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &Recorder{dur: dur, outcomes: outcomes}, nil
}

// Observe records one finished operation.
func (r *Recorder) Observe(operation, outcome string, start time.Time) {
	if r == nil {
		return
	}
	r.dur.WithLabelValues("payment", operation).Observe(MillisecondsSince(start))
	r.outcomes.WithLabelValues(operation, outcome).Inc()
}

// Outcomes exposes the outcome counter for tests and dashboards.
func (r *Recorder) Outcomes() *prometheus.CounterVec {
	if r == nil {
		return nil
	}
	return r.outcomes
}

// MillisecondsSince returns the elapsed time since start in milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
}
