package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serveMetrics are registered on a private registry per server so that
// several servers, or tests, never collide on the default registry.
type serveMetrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	lastUnitCost prometheus.Gauge
	routeSteps   prometheus.Gauge
}

// newServeMetrics labels the unit cost gauge with the served route's
// target only; requests for other targets do not add series.
func newServeMetrics(target string) *serveMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &serveMetrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routecost",
			Name:      "cost_requests_total",
			Help:      "Cost requests served, by HTTP status code.",
		}, []string{"code"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routecost",
			Name:      "cost_duration_seconds",
			Help:      "Time spent computing one costing run.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		lastUnitCost: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   "routecost",
			Name:        "unit_cost",
			Help:        "Unit cost of the route target from the most recent successful costing.",
			ConstLabels: prometheus.Labels{"target": target},
		}),
		routeSteps: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "routecost",
			Name:      "route_steps",
			Help:      "Number of synthesis steps in the loaded route.",
		}),
	}
}
