package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered on an injected registerer, never the global default
type metrics struct {
	seeds    prometheus.Counter
	results  prometheus.Counter
	searches *prometheus.CounterVec
	active   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &metrics{
		seeds: f.NewCounter(prometheus.CounterOpts{
			Namespace: "seedsearch",
			Name:      "seeds_searched_total",
			Help:      "Seeds evaluated by the kernel across all searches",
		}),
		results: f.NewCounter(prometheus.CounterOpts{
			Namespace: "seedsearch",
			Name:      "results_total",
			Help:      "Matches recorded across all searches",
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedsearch",
			Name:      "searches_total",
			Help:      "Searches that reached a terminal state",
		}, []string{"state"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "seedsearch",
			Name:      "searches_active",
			Help:      "Searches currently running or paused",
		}),
	}
}
