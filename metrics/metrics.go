package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// PromCollector records remote lookups made by extraction strategies.
type PromCollector struct {
	hist *prometheus.HistogramVec
	cnt  *prometheus.CounterVec
}

func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	hist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cityweather",
			Name:      "lookup_duration_seconds",
			Help:      "Remote lookup latencies",
		},
		[]string{"provider", "kind"},
	)
	cnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cityweather",
			Name:      "lookups_total",
			Help:      "Remote lookup counts",
		},
		[]string{"provider", "kind", "result"},
	)
	reg.MustRegister(hist, cnt)
	return &PromCollector{hist: hist, cnt: cnt}
}

func (p *PromCollector) ObserveLookup(provider, kind string, err error, duration time.Duration) {
	result := resultOK
	if err != nil {
		result = resultError
	}

	p.hist.WithLabelValues(provider, kind).Observe(duration.Seconds())
	p.cnt.WithLabelValues(provider, kind, result).Inc()
}
